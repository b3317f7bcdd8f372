// Package processor turns one raw invoice into one ExtractionResult.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Appa019/Coleta-dados-faturas/constants"
	"github.com/Appa019/Coleta-dados-faturas/internal/decoder"
	"github.com/Appa019/Coleta-dados-faturas/internal/entity"
	"github.com/Appa019/Coleta-dados-faturas/internal/fields"
	"github.com/Appa019/Coleta-dados-faturas/internal/section"
	"github.com/Appa019/Coleta-dados-faturas/internal/table"
)

// TextDecoder turns document bytes into text.
type TextDecoder interface {
	Decode(ctx context.Context, data []byte) (decoder.Result, error)
}

// Processor runs decode, field extraction, section location and table
// reconstruction for a single document.
type Processor struct {
	decoder TextDecoder
	fields  *fields.Extractor
	locator *section.Locator
	table   *table.Reconstructor
	logger  *slog.Logger
}

// NewProcessor wires the extraction stages. rec may be nil for the default
// reconstructor.
func NewProcessor(dec TextDecoder, rec *table.Reconstructor, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = table.NewReconstructor()
	}
	return &Processor{
		decoder: dec,
		fields:  fields.NewExtractor(nil),
		locator: section.NewLocator(nil),
		table:   rec,
		logger:  logger,
	}
}

// Process never fails: problems are reported in the result's Error field.
func (p *Processor) Process(ctx context.Context, doc entity.RawDocument) (res entity.ExtractionResult) {
	start := time.Now()
	res = entity.ExtractionResult{FileName: doc.Name, LineItems: []entity.LineItem{}}

	defer func() {
		if r := recover(); r != nil {
			res = entity.ExtractionResult{
				FileName:  doc.Name,
				LineItems: []entity.LineItem{},
				Error:     fmt.Sprintf("unexpected failure: %v", r),
			}
			p.logger.Error("processor.panic", "file", doc.Name, "panic", r)
		}
	}()

	decoded, err := p.decoder.Decode(ctx, doc.Data)
	if err != nil {
		res.Error = fmt.Sprintf("%s: %v", constants.DecodeFailurePrefix, err)
		p.logger.Warn("processor.decode.failed",
			"file", doc.Name,
			"attempts", decoded.Attempts,
			"error", err,
		)
		return res
	}

	res = p.Extract(doc.Name, decoded.Text)
	p.logger.Info("processor.doc.done",
		"file", doc.Name,
		"source", decoded.Source,
		"unlocked", decoded.Unlocked,
		"pages", decoded.Pages,
		"installation_id", res.InstallationID,
		"billing_period", res.BillingPeriod,
		"items", len(res.LineItems),
		"status", res.Status(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res
}

// Extract runs the text stages over already decoded text.
func (p *Processor) Extract(name, text string) entity.ExtractionResult {
	res := entity.ExtractionResult{
		FileName:       name,
		InstallationID: p.fields.InstallationID(text),
		BillingPeriod:  p.fields.BillingPeriod(text),
	}
	res.LineItems = p.table.Reconstruct(p.locator.Locate(text))
	if len(res.LineItems) == 0 {
		res.Error = constants.EmptyTableMessage
	}
	return res
}
