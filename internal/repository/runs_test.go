package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Appa019/Coleta-dados-faturas/internal/common"
	"github.com/Appa019/Coleta-dados-faturas/internal/entity"
)

func newSQLiteRepo(t *testing.T) RunRepository {
	t.Helper()
	db, err := OpenSQLite(MemoryPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewRunRepository(db, DialectSQLite, nil)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func sampleRun(source string, started time.Time) *entity.Run {
	run := entity.NewRun(source, started)
	run.Marker = "DIST_EE"
	run.FinishedAt = started.Add(3 * time.Second)
	run.Included = 2
	run.Excluded = 1
	run.Results = []entity.ExtractionResult{
		{
			FileName:       "A/DIST_EE_1.pdf",
			InstallationID: "3001234567",
			BillingPeriod:  "03/2024",
			LineItems: []entity.LineItem{{
				Item:       "Energia Elétrica",
				Unit:       "kWh",
				Quantity:   entity.Amount(decimal.RequireFromString("100")),
				TotalValue: entity.Amount(decimal.RequireFromString("50.25")),
			}},
		},
		{FileName: "B/DIST_EE_2.pdf", LineItems: []entity.LineItem{}, Error: "decode failed: wrong password"},
	}
	return run
}

func TestRunRepository_SaveAndGet(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	run := sampleRun("faturas.zip", time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC))

	require.NoError(t, repo.SaveRun(ctx, run))

	got, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "faturas.zip", got.Source)
	assert.Equal(t, "DIST_EE", got.Marker)
	assert.True(t, run.StartedAt.Equal(got.StartedAt))
	assert.True(t, run.FinishedAt.Equal(got.FinishedAt))
	assert.Equal(t, 2, got.Included)
	assert.Equal(t, 1, got.Excluded)

	require.Len(t, got.Results, 2)
	first := got.Results[0]
	assert.Equal(t, "3001234567", first.InstallationID)
	require.Len(t, first.LineItems, 1)
	assert.True(t, first.LineItems[0].TotalValue.Decimal.Equal(decimal.RequireFromString("50.25")))
	assert.False(t, first.LineItems[0].UnitValue.Valid)
	assert.Equal(t, "decode failed: wrong password", got.Results[1].Error)
	assert.NotNil(t, got.Results[1].LineItems)
}

func TestRunRepository_GetMissing(t *testing.T) {
	repo := newSQLiteRepo(t)
	_, err := repo.GetRun(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestRunRepository_DuplicateID(t *testing.T) {
	repo := newSQLiteRepo(t)
	run := sampleRun("a.zip", time.Now())
	require.NoError(t, repo.SaveRun(context.Background(), run))

	err := repo.SaveRun(context.Background(), run)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDatabase))
}

func TestRunRepository_List(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)

	older := sampleRun("old.zip", base)
	newer := sampleRun("new.zip", base.Add(500*time.Millisecond))
	empty := entity.NewRun("empty", base.Add(-time.Hour))
	empty.FinishedAt = empty.StartedAt
	for _, r := range []*entity.Run{older, newer, empty} {
		require.NoError(t, repo.SaveRun(ctx, r))
	}

	list, err := repo.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "new.zip", list[0].Run.Source)
	assert.Equal(t, "old.zip", list[1].Run.Source)
	assert.Equal(t, 2, list[0].Documents)
	assert.Equal(t, 1, list[0].Failures)
	assert.Equal(t, 0, list[2].Documents)

	list, err = repo.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRebind(t *testing.T) {
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", Rebind("SELECT * FROM t WHERE a = ? AND b = ?"))
	assert.Equal(t, "SELECT 1", Rebind("SELECT 1"))
}

func TestRunRepository_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DB_URL")
	if dsn == "" {
		t.Skip("TEST_DB_URL not set")
	}
	ctx := context.Background()
	db, pool, err := OpenPostgres(ctx, Config{DSN: dsn, DialTimeout: 5 * time.Second}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, pool, nil) })
	require.NoError(t, HealthCheck(ctx, db, time.Second, nil))

	repo := NewRunRepository(db, DialectPostgres, nil)
	require.NoError(t, repo.Migrate(ctx))

	run := sampleRun("pg.zip", time.Now())
	require.NoError(t, repo.SaveRun(ctx, run))
	got, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, got.Results, 2)
}

func TestOpenSQLite_UnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := OpenSQLite(filepath.Join(blocker, "sub", "runs.db"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}
