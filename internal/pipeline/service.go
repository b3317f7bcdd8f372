// Package pipeline wires collection, batch extraction, report rendering and
// run persistence into the operations exposed by the CLI and the daemon.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Appa019/Coleta-dados-faturas/internal/archive"
	"github.com/Appa019/Coleta-dados-faturas/internal/batch"
	"github.com/Appa019/Coleta-dados-faturas/internal/common"
	"github.com/Appa019/Coleta-dados-faturas/internal/entity"
	"github.com/Appa019/Coleta-dados-faturas/internal/export"
	"github.com/Appa019/Coleta-dados-faturas/internal/ingest"
	"github.com/Appa019/Coleta-dados-faturas/internal/repository"
)

// Options controls where reports go.
type Options struct {
	OutputDir  string
	ReportName string // empty -> faturas_<run>.xlsx
	WriteJSON  bool
	Marker     string
}

// Report describes a finished run.
type Report struct {
	Run      *entity.Run
	Summary  entity.BatchSummary
	XLSXPath string
	JSONPath string
	Files    []ingest.FileResult
}

// Service runs batches and keeps their reports.
type Service struct {
	collector   *ingest.Collector
	coordinator *batch.Coordinator
	renderer    *export.Renderer
	runs        repository.RunRepository
	opts        Options
	logger      *slog.Logger
	now         func() time.Time
}

// NewService builds a Service. runs may be nil to skip persistence.
func NewService(
	collector *ingest.Collector,
	coordinator *batch.Coordinator,
	renderer *export.Renderer,
	runs repository.RunRepository,
	opts Options,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &Service{
		collector:   collector,
		coordinator: coordinator,
		renderer:    renderer,
		runs:        runs,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

// RunPaths collects PDFs and zip bundles under paths and runs them as one batch.
func (s *Service) RunPaths(ctx context.Context, paths []string) (*Report, error) {
	run := entity.NewRun(sourceLabel(paths), s.now())
	run.Marker = s.opts.Marker
	ctx = common.WithRunID(ctx, run.ID.String())
	logger := common.LoggerFromContext(ctx, s.logger)

	col, err := s.collector.Collect(ctx, paths)
	if err != nil {
		logger.Error("pipeline.collect.failed", "error", err)
		return nil, err
	}
	run.Included = len(col.Documents)
	run.Excluded = col.Archive.Excluded
	run.Results = s.coordinator.Run(ctx, col.Documents)

	rep, err := s.finish(ctx, run)
	if rep != nil {
		rep.Files = col.Files
	}
	return rep, err
}

// RunArchive runs the marker-matching entries of one zip archive.
func (s *Service) RunArchive(ctx context.Context, name string, data []byte) (*Report, error) {
	run := entity.NewRun(name, s.now())
	run.Marker = s.opts.Marker
	ctx = common.WithRunID(ctx, run.ID.String())

	ar, err := s.coordinator.RunArchive(ctx, data)
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Error("pipeline.archive.failed", "archive", name, "error", err)
		return nil, err
	}
	run.Included = ar.Stats.Included
	run.Excluded = ar.Stats.Excluded
	run.Results = ar.Results
	return s.finish(ctx, run)
}

// Rerender writes the report of a stored run again.
func (s *Service) Rerender(ctx context.Context, run *entity.Run) (*Report, error) {
	ctx = common.WithRunID(ctx, run.ID.String())
	return s.write(ctx, run)
}

func (s *Service) finish(ctx context.Context, run *entity.Run) (*Report, error) {
	run.FinishedAt = s.now().UTC()

	rep, err := s.write(ctx, run)
	if err != nil {
		return nil, err
	}
	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, run); err != nil {
			return rep, err
		}
	}

	common.LoggerFromContext(ctx, s.logger).Info("pipeline.run.ok",
		"source", run.Source,
		"documents", rep.Summary.Documents,
		"failures", rep.Summary.Failures,
		"excluded", run.Excluded,
		"xlsx", rep.XLSXPath,
		"elapsed_ms", run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
	)
	return rep, nil
}

func (s *Service) write(ctx context.Context, run *entity.Run) (*Report, error) {
	rep := &Report{Run: run, Summary: run.Summary()}

	if err := os.MkdirAll(s.opts.OutputDir, 0o755); err != nil {
		return nil, common.NewAppError(common.CodeExport, "create output dir", err)
	}

	xlsx, err := s.renderer.Render(run.Results)
	if err != nil {
		return nil, common.NewAppError(common.CodeExport, "render xlsx", err)
	}
	name := s.opts.ReportName
	if name == "" {
		name = fmt.Sprintf("faturas_%s.xlsx", run.ID.String()[:8])
	}
	rep.XLSXPath = filepath.Join(s.opts.OutputDir, name)
	if err := os.WriteFile(rep.XLSXPath, xlsx, 0o644); err != nil {
		return nil, common.NewAppError(common.CodeExport, "write xlsx", err)
	}

	if s.opts.WriteJSON {
		var buf bytes.Buffer
		if err := export.WriteJSON(&buf, run.Results); err != nil {
			return nil, err
		}
		rep.JSONPath = trimExt(rep.XLSXPath) + ".json"
		if err := os.WriteFile(rep.JSONPath, buf.Bytes(), 0o644); err != nil {
			return nil, common.NewAppError(common.CodeExport, "write json", err)
		}
	}
	return rep, nil
}

func sourceLabel(paths []string) string {
	switch len(paths) {
	case 0:
		return ""
	case 1:
		return paths[0]
	}
	return fmt.Sprintf("%s (+%d)", paths[0], len(paths)-1)
}

func trimExt(p string) string {
	return p[:len(p)-len(filepath.Ext(p))]
}

// NewDefaultService wires the standard stack: zip unpacker, marker filter,
// and the given processor.
func NewDefaultService(proc batch.DocumentProcessor, runs repository.RunRepository, opts Options, logger *slog.Logger) *Service {
	unpacker := archive.NewZipUnpacker(logger)
	return NewService(
		ingest.NewCollector(unpacker, opts.Marker, logger),
		batch.NewCoordinator(proc, unpacker, opts.Marker, logger),
		export.NewRenderer(logger),
		runs,
		opts,
		logger,
	)
}
