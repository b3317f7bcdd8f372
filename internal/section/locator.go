// Package section finds the item table region of an invoice's text.
package section

import (
	"github.com/Appa019/Coleta-dados-faturas/internal/patterns"
)

// DefaultTail is how far past an end marker the section is extended so
// trailing total lines stay inside it. Measured in characters.
const DefaultTail = 200

// Locator cuts the item section out of extracted text.
type Locator struct {
	lib  *patterns.Library
	tail int
}

// NewLocator builds a Locator over lib (patterns.Default when nil).
func NewLocator(lib *patterns.Library) *Locator {
	if lib == nil {
		lib = patterns.Default()
	}
	return &Locator{lib: lib, tail: DefaultTail}
}

// Locate returns the item section, or "" when the text has no section start.
func (l *Locator) Locate(text string) string {
	start, end, ok := l.LocateSpan(text)
	if !ok {
		return ""
	}
	return text[start:end]
}

// LocateSpan returns byte offsets of the section. The end is the earliest
// end marker after the start marker, advanced by the tail and clamped to the
// text; without an end marker the section runs to the end of text.
func (l *Locator) LocateSpan(text string) (start, end int, ok bool) {
	loc := l.lib.SectionStart.Re.FindStringIndex(text)
	if loc == nil {
		return 0, 0, false
	}
	start = loc[0]
	searchFrom := loc[1]

	earliest := -1
	for _, p := range l.lib.SectionEnd {
		m := p.Re.FindStringIndex(text[searchFrom:])
		if m == nil {
			continue
		}
		if at := searchFrom + m[0]; earliest < 0 || at < earliest {
			earliest = at
		}
	}
	if earliest < 0 {
		return start, len(text), true
	}
	return start, advanceRunes(text, earliest, l.tail), true
}

// advanceRunes moves n characters forward from byte offset off, stopping at
// the end of s.
func advanceRunes(s string, off, n int) int {
	for i := range s[off:] {
		if n == 0 {
			return off + i
		}
		n--
	}
	return len(s)
}
