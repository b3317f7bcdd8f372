package entity

import (
	"time"

	"github.com/google/uuid"
)

// Run is a persisted batch execution.
type Run struct {
	ID         uuid.UUID          `json:"id"`
	Source     string             `json:"source"`
	Marker     string             `json:"marker,omitempty"`
	StartedAt  time.Time          `json:"startedAt"`
	FinishedAt time.Time          `json:"finishedAt"`
	Included   int                `json:"included"`
	Excluded   int                `json:"excluded"`
	Results    []ExtractionResult `json:"results"`
}

// NewRun starts a run record for source.
func NewRun(source string, now time.Time) *Run {
	return &Run{
		ID:        uuid.New(),
		Source:    source,
		StartedAt: now.UTC(),
		Results:   []ExtractionResult{},
	}
}

// Summary summarizes the run's results.
func (r *Run) Summary() BatchSummary {
	return Summarize(r.Results)
}
