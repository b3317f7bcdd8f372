package pipeline

import (
	"context"
	"time"

	"github.com/Appa019/Coleta-dados-faturas/internal/async"
	"github.com/Appa019/Coleta-dados-faturas/internal/common"
)

// JobHandler runs every queued file as its own batch with its own report.
func (s *Service) JobHandler() async.Handler {
	return async.HandlerFunc(func(ctx context.Context, job async.Job) error {
		if job.TraceID != "" {
			ctx = common.WithLogger(ctx, s.logger.With("trace_id", job.TraceID))
		}
		rep, err := s.RunPaths(ctx, []string{job.Path})
		if err != nil {
			return err
		}
		s.logger.Info("pipeline.job.ok",
			"path", job.Path,
			"documents", rep.Summary.Documents,
			"failures", rep.Summary.Failures,
			"xlsx", rep.XLSXPath,
			"elapsed_ms", time.Since(job.SubmittedAt).Milliseconds(),
		)
		return nil
	})
}
