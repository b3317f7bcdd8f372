// Package table rebuilds invoice line items from the text of an item section.
package table

import (
	"strings"
	"unicode/utf8"

	"github.com/Appa019/Coleta-dados-faturas/constants"
	"github.com/Appa019/Coleta-dados-faturas/internal/entity"
	"github.com/Appa019/Coleta-dados-faturas/internal/numeric"
	"github.com/Appa019/Coleta-dados-faturas/internal/patterns"
)

const (
	minLineLen  = 10
	minLabelLen = 4
)

// Reconstructor turns section lines into line items.
type Reconstructor struct {
	lib    *patterns.Library
	policy constants.DedupPolicy
}

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithDedupPolicy selects how repeated rows are collapsed.
func WithDedupPolicy(p constants.DedupPolicy) Option {
	return func(r *Reconstructor) { r.policy = p }
}

// WithLibrary overrides the pattern catalogue.
func WithLibrary(lib *patterns.Library) Option {
	return func(r *Reconstructor) {
		if lib != nil {
			r.lib = lib
		}
	}
}

// NewReconstructor returns a Reconstructor that keeps the first row per item.
func NewReconstructor(opts ...Option) *Reconstructor {
	r := &Reconstructor{lib: patterns.Default(), policy: constants.DedupByItem}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Reconstruct parses section into line items in encounter order. Lines that
// fit neither row shape are dropped. The result is never nil.
func (r *Reconstructor) Reconstruct(section string) []entity.LineItem {
	items := make([]entity.LineItem, 0)
	for _, raw := range strings.Split(section, "\n") {
		line := strings.TrimSpace(raw)
		if utf8.RuneCountInString(line) < minLineLen {
			continue
		}
		if r.lib.HeaderRow.Re.MatchString(line) {
			continue
		}
		if li, ok := r.parseLine(line); ok {
			items = append(items, li)
		}
	}
	return r.dedup(items)
}

func (r *Reconstructor) parseLine(line string) (entity.LineItem, bool) {
	if m := r.lib.FullRow.Re.FindStringSubmatch(line); m != nil {
		label := strings.TrimSpace(m[1])
		if !r.validLabel(label) {
			return entity.LineItem{}, false
		}
		return entity.LineItem{
			Item:       label,
			Unit:       m[2],
			Quantity:   numeric.ParseNull(m[3]),
			UnitValue:  numeric.ParseNull(m[4]),
			TotalValue: numeric.ParseNull(m[5]),
		}, true
	}

	if m := r.lib.SimpleRow.Re.FindStringSubmatch(line); m != nil {
		label := strings.TrimSpace(m[1])
		if utf8.RuneCountInString(label) < minLabelLen || r.lib.NonItemLabel.Re.MatchString(label) {
			return entity.LineItem{}, false
		}
		if !r.validLabel(label) {
			return entity.LineItem{}, false
		}
		return entity.LineItem{
			Item:       label,
			TotalValue: numeric.ParseNull(m[2]),
		}, true
	}
	return entity.LineItem{}, false
}

func (r *Reconstructor) validLabel(label string) bool {
	return label != "" && !r.lib.IsStructureKeyword(label)
}

func (r *Reconstructor) dedup(items []entity.LineItem) []entity.LineItem {
	if r.policy == constants.DedupNone {
		return items
	}
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, li := range items {
		key := li.Item
		if r.policy == constants.DedupByItemAndUnit {
			key += "\x00" + li.Unit
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, li)
	}
	return out
}
