// Package fields pulls header fields (installation identifier, billing
// period) out of invoice text.
package fields

import (
	"github.com/Appa019/Coleta-dados-faturas/internal/patterns"
)

// Extractor applies the ordered identifier and period alternatives.
type Extractor struct {
	lib *patterns.Library
}

// NewExtractor builds an Extractor over lib (patterns.Default when nil).
func NewExtractor(lib *patterns.Library) *Extractor {
	if lib == nil {
		lib = patterns.Default()
	}
	return &Extractor{lib: lib}
}

// InstallationID returns the first valid identifier, or "".
func (e *Extractor) InstallationID(text string) string {
	return firstMatch(e.lib.Installation, text)
}

// BillingPeriod returns the first period found, rendered "MM/YYYY" (or
// "<month>/YYYY" for named months), or "".
func (e *Extractor) BillingPeriod(text string) string {
	return firstMatch(e.lib.Period, text)
}

// firstMatch walks alternatives in priority order and, within each, every
// occurrence left to right.
func firstMatch(alternatives []patterns.Pattern, text string) string {
	for _, p := range alternatives {
		for _, m := range p.Re.FindAllStringSubmatch(text, -1) {
			if v := p.Render(m); p.Accepts(v) {
				return v
			}
		}
	}
	return ""
}
