// Package batch runs the document processor over a sequence of documents
// or over the filtered contents of an archive.
package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/Appa019/Coleta-dados-faturas/internal/archive"
	"github.com/Appa019/Coleta-dados-faturas/internal/entity"
)

// DocumentProcessor extracts one document.
type DocumentProcessor interface {
	Process(ctx context.Context, doc entity.RawDocument) entity.ExtractionResult
}

// Unpacker yields archive entries that pass the filter.
type Unpacker interface {
	Unpack(ctx context.Context, data []byte, f archive.Filter) ([]archive.Entry, archive.Stats, error)
}

// ArchiveRun is the outcome of processing an archive.
type ArchiveRun struct {
	Results []entity.ExtractionResult
	Stats   archive.Stats
}

// Coordinator processes documents strictly one at a time in input order.
type Coordinator struct {
	processor DocumentProcessor
	unpacker  Unpacker
	marker    string
	logger    *slog.Logger
}

// NewCoordinator builds a Coordinator. marker restricts archive entries.
func NewCoordinator(p DocumentProcessor, u Unpacker, marker string, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if u == nil {
		u = archive.NewZipUnpacker(logger)
	}
	return &Coordinator{processor: p, unpacker: u, marker: marker, logger: logger}
}

// Run returns exactly one result per document, in input order. A per-document
// failure is recorded in its result and never stops the batch.
func (c *Coordinator) Run(ctx context.Context, docs []entity.RawDocument) []entity.ExtractionResult {
	start := time.Now()
	results := make([]entity.ExtractionResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, c.processor.Process(ctx, doc))
	}

	s := entity.Summarize(results)
	c.logger.Info("batch.run.done",
		"documents", s.Documents,
		"successes", s.Successes,
		"failures", s.Failures,
		"items", s.LineItems,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results
}

// RunArchive unpacks data, keeps the entries whose name contains the marker
// and runs them. An unreadable archive is the only error.
func (c *Coordinator) RunArchive(ctx context.Context, data []byte) (ArchiveRun, error) {
	entries, stats, err := c.unpacker.Unpack(ctx, data, archive.MarkerFilter{Marker: c.marker})
	if err != nil {
		return ArchiveRun{Results: []entity.ExtractionResult{}, Stats: stats}, err
	}

	docs := make([]entity.RawDocument, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, entity.RawDocument{Name: e.Name, Data: e.Data})
	}
	c.logger.Info("batch.archive.filtered",
		"marker", c.marker,
		"included", stats.Included,
		"excluded", stats.Excluded,
	)
	return ArchiveRun{Results: c.Run(ctx, docs), Stats: stats}, nil
}
