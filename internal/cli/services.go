package cli

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Appa019/Coleta-dados-faturas/internal/common"
	"github.com/Appa019/Coleta-dados-faturas/internal/decoder"
	"github.com/Appa019/Coleta-dados-faturas/internal/pipeline"
	"github.com/Appa019/Coleta-dados-faturas/internal/processor"
	"github.com/Appa019/Coleta-dados-faturas/internal/repository"
	"github.com/Appa019/Coleta-dados-faturas/internal/table"
)

// services is what the commands need; Close releases the store.
type services struct {
	pipeline *pipeline.Service
	runs     repository.RunRepository
	close    func()
}

func (s *services) Close() {
	if s.close != nil {
		s.close()
	}
}

// newServices is swapped in tests.
var newServices = defaultServices

func defaultServices(ctx context.Context, c *common.Config, opts pipeline.Options, withStore bool, logger *slog.Logger) (*services, error) {
	s := &services{}
	if withStore {
		runs, closeFn, err := OpenRunStore(ctx, c, logger)
		if err != nil {
			return nil, err
		}
		s.runs = runs
		s.close = closeFn
	}
	s.pipeline = pipeline.NewDefaultService(NewProcessor(c, logger), s.runs, opts, logger)
	return s, nil
}

// NewProcessor builds the document processor from configuration.
func NewProcessor(c *common.Config, logger *slog.Logger) *processor.Processor {
	dec := decoder.New(decoder.Config{
		Pdftotext: c.Decoder.Pdftotext,
		Passwords: c.Decoder.Passwords,
		Timeout:   c.Decoder.Timeout,
	}, logger)
	rec := table.NewReconstructor(table.WithDedupPolicy(c.Dedup()))
	return processor.NewProcessor(dec, rec, logger)
}

// OpenRunStore opens postgres when a DSN is configured, SQLite otherwise,
// and migrates the schema.
func OpenRunStore(ctx context.Context, c *common.Config, logger *slog.Logger) (repository.RunRepository, func(), error) {
	var (
		db      *sql.DB
		pool    *pgxpool.Pool
		dialect = repository.DialectSQLite
		err     error
	)
	if c.Database.DSN != "" {
		dialect = repository.DialectPostgres
		db, pool, err = repository.OpenPostgres(ctx, repository.Config{
			DSN:             c.Database.DSN,
			MaxConns:        c.Database.MaxConns,
			MinConns:        c.Database.MinConns,
			MaxConnLifetime: c.Database.MaxConnLifetime,
			MaxConnIdleTime: c.Database.MaxConnIdleTime,
			DialTimeout:     c.Database.DialTimeout,
		}, logger)
	} else {
		db, err = repository.OpenSQLite(c.Database.SQLitePath, logger)
	}
	if err != nil {
		return nil, nil, common.NewAppError(common.CodeDatabase, "open run store", err)
	}

	runs := repository.NewRunRepository(db, dialect, logger)
	if err := runs.Migrate(ctx); err != nil {
		repository.Close(db, pool, logger)
		return nil, nil, err
	}
	return runs, func() { repository.Close(db, pool, logger) }, nil
}
