package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Appa019/Coleta-dados-faturas/internal/common"
	"github.com/Appa019/Coleta-dados-faturas/internal/entity"
)

// RunSummary is a stored run without its results.
type RunSummary struct {
	Run       entity.Run
	Documents int
	Failures  int
}

type RunRepository interface {
	Migrate(ctx context.Context) error
	SaveRun(ctx context.Context, run *entity.Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*entity.Run, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}

type runRepository struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

func NewRunRepository(db *sql.DB, dialect Dialect, logger *slog.Logger) RunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &runRepository{db: db, dialect: dialect, logger: logger}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS extraction_runs (
		id          TEXT PRIMARY KEY,
		source      TEXT NOT NULL,
		marker      TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		included    INTEGER NOT NULL,
		excluded    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS extraction_results (
		run_id          TEXT NOT NULL REFERENCES extraction_runs(id) ON DELETE CASCADE,
		position        INTEGER NOT NULL,
		file_name       TEXT NOT NULL,
		installation_id TEXT NOT NULL,
		billing_period  TEXT NOT NULL,
		line_items      TEXT NOT NULL,
		error           TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS extraction_runs_started_at_idx ON extraction_runs (started_at)`,
}

// Migrate creates the tables when missing.
func (r *runRepository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			r.logger.Error("failed to migrate", "error", err)
			return common.NewAppError(common.CodeDatabase, "migrate", errors.Join(common.ErrDatabase, err))
		}
	}
	return nil
}

// SaveRun stores the run and all its results in one transaction.
func (r *runRepository) SaveRun(ctx context.Context, run *entity.Run) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return r.fail("begin save run", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, r.rebind(
		`INSERT INTO extraction_runs (id, source, marker, started_at, finished_at, included, excluded)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		run.ID.String(), run.Source, run.Marker,
		formatTime(run.StartedAt), formatTime(run.FinishedAt),
		run.Included, run.Excluded,
	)
	if err != nil {
		return r.fail("insert run", err)
	}

	insert := r.rebind(
		`INSERT INTO extraction_results (run_id, position, file_name, installation_id, billing_period, line_items, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for i, res := range run.Results {
		items := res.LineItems
		if items == nil {
			items = []entity.LineItem{}
		}
		b, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("marshal line items for %s: %w", res.FileName, err)
		}
		if _, err := tx.ExecContext(ctx, insert,
			run.ID.String(), i, res.FileName, res.InstallationID, res.BillingPeriod, string(b), res.Error,
		); err != nil {
			return r.fail("insert result", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return r.fail("commit run", err)
	}
	r.logger.Info("run.saved", "run_id", run.ID.String(), "results", len(run.Results))
	return nil
}

// GetRun loads a run with its results in stored order.
func (r *runRepository) GetRun(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(
		`SELECT id, source, marker, started_at, finished_at, included, excluded
		 FROM extraction_runs WHERE id = ?`), id.String())
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", "run "+id.String(), common.ErrNotFound)
	}
	if err != nil {
		return nil, r.fail("get run", err)
	}

	rows, err := r.db.QueryContext(ctx, r.rebind(
		`SELECT file_name, installation_id, billing_period, line_items, error
		 FROM extraction_results WHERE run_id = ? ORDER BY position`), id.String())
	if err != nil {
		return nil, r.fail("get results", err)
	}
	defer func() { _ = rows.Close() }()

	run.Results = []entity.ExtractionResult{}
	for rows.Next() {
		var (
			res   entity.ExtractionResult
			items string
		)
		if err := rows.Scan(&res.FileName, &res.InstallationID, &res.BillingPeriod, &items, &res.Error); err != nil {
			return nil, r.fail("scan result", err)
		}
		if err := json.Unmarshal([]byte(items), &res.LineItems); err != nil {
			return nil, fmt.Errorf("decode line items for %s: %w", res.FileName, err)
		}
		if res.LineItems == nil {
			res.LineItems = []entity.LineItem{}
		}
		run.Results = append(run.Results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("iterate results", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. limit <= 0 means 20.
func (r *runRepository) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, r.rebind(
		`SELECT r.id, r.source, r.marker, r.started_at, r.finished_at, r.included, r.excluded,
		        COUNT(x.position),
		        COALESCE(SUM(CASE WHEN x.error <> '' THEN 1 ELSE 0 END), 0)
		 FROM extraction_runs r
		 LEFT JOIN extraction_results x ON x.run_id = r.id
		 GROUP BY r.id, r.source, r.marker, r.started_at, r.finished_at, r.included, r.excluded
		 ORDER BY r.started_at DESC
		 LIMIT ?`), limit)
	if err != nil {
		return nil, r.fail("list runs", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RunSummary
	for rows.Next() {
		var (
			s                 RunSummary
			id, started, done string
		)
		if err := rows.Scan(&id, &s.Run.Source, &s.Run.Marker, &started, &done,
			&s.Run.Included, &s.Run.Excluded, &s.Documents, &s.Failures); err != nil {
			return nil, r.fail("scan run", err)
		}
		if err := fillRun(&s.Run, id, started, done); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("iterate runs", err)
	}
	return out, nil
}

func (r *runRepository) fail(op string, err error) error {
	r.logger.Error("database operation failed", "op", op, "error", err)
	return common.NewAppError(common.CodeDatabase, op, errors.Join(common.ErrDatabase, err))
}

// rebind rewrites ? placeholders as $1..$n for postgres.
func (r *runRepository) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}
	return Rebind(query)
}

// Rebind rewrites ? placeholders as $1..$n.
func Rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func scanRun(row *sql.Row) (*entity.Run, error) {
	var (
		run               entity.Run
		id, started, done string
	)
	if err := row.Scan(&id, &run.Source, &run.Marker, &started, &done, &run.Included, &run.Excluded); err != nil {
		return nil, err
	}
	if err := fillRun(&run, id, started, done); err != nil {
		return nil, err
	}
	return &run, nil
}

func fillRun(run *entity.Run, id, started, done string) error {
	var err error
	if run.ID, err = uuid.Parse(id); err != nil {
		return fmt.Errorf("parse run id %q: %w", id, err)
	}
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, done); err != nil {
		return fmt.Errorf("parse finished_at: %w", err)
	}
	return nil
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
