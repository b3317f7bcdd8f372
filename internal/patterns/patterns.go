// Package patterns holds the ordered recognition catalogue used to read
// electricity invoices: identifier and period alternatives, item-section
// boundaries and table-row shapes. Patterns are data so every alternative
// can be enumerated and tested on its own.
package patterns

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Kind groups patterns by purpose.
type Kind string

const (
	KindInstallation Kind = "installation"
	KindPeriod       Kind = "period"
	KindSectionStart Kind = "section_start"
	KindSectionEnd   Kind = "section_end"
	KindHeaderRow    Kind = "header_row"
	KindFullRow      Kind = "full_row"
	KindSimpleRow    Kind = "simple_row"
	KindNonItem      Kind = "non_item"
)

// Pattern is one catalogue entry.
type Pattern struct {
	Name string
	Kind Kind
	Re   *regexp.Regexp
	// MinLen is the minimum rune length of the rendered capture; 0 means any.
	MinLen int
}

// Groups returns the number of capture groups.
func (p Pattern) Groups() int {
	return p.Re.NumSubexp()
}

// Render joins the capture groups of a submatch: "g1/g2" for two groups,
// g1 for one, the whole match otherwise.
func (p Pattern) Render(m []string) string {
	switch {
	case len(m) >= 3 && p.Groups() >= 2:
		return strings.TrimSpace(m[1]) + "/" + strings.TrimSpace(m[2])
	case len(m) >= 2:
		return strings.TrimSpace(m[1])
	case len(m) == 1:
		return strings.TrimSpace(m[0])
	}
	return ""
}

// Accepts applies the validity constraint to a rendered value.
func (p Pattern) Accepts(v string) bool {
	return v != "" && len([]rune(v)) >= p.MinLen
}

// Library is the immutable pattern catalogue.
type Library struct {
	Installation []Pattern
	Period       []Pattern
	SectionStart Pattern
	SectionEnd   []Pattern
	HeaderRow    Pattern
	FullRow      Pattern
	SimpleRow    Pattern
	NonItemLabel Pattern

	structure map[string]struct{}
}

const (
	monthNames = `janeiro|fevereiro|mar[cç]o|abril|maio|junho|julho|agosto|setembro|outubro|novembro|dezembro`
	monthAbbr  = `jan|fev|mar|abr|mai|jun|jul|ago|set|out|nov|dez`
	periodTag  = `(?:m[eê]s\s+de\s+)?(?:refer[eê]ncia|compet[eê]ncia|m[eê]s\s*/\s*ano)`
	amount     = `(-?\d[\d.,]*-?)`
)

var (
	defaultOnce sync.Once
	defaultLib  *Library
)

// Default returns the shared catalogue.
func Default() *Library {
	defaultOnce.Do(func() {
		defaultLib = build()
	})
	return defaultLib
}

func build() *Library {
	p := func(name string, kind Kind, expr string, minLen int) Pattern {
		return Pattern{Name: name, Kind: kind, Re: regexp.MustCompile(expr), MinLen: minLen}
	}

	lib := &Library{
		Installation: []Pattern{
			p("installation_number", KindInstallation,
				`(?i)(?:(?:n[uú]mero|n[º°o]\.?)\s+d[ae]\s+)?instala[cç][aã]o\s*[:\-]?\s*(?:n[º°o]\.?\s*)?(\d{8,12})\b`, 8),
			p("consumer_unit", KindInstallation,
				`(?i)(?:unidade\s+consumidora|\bUC\b)\s*[:\-]?\s*(?:n[º°o]\.?\s*)?(\d{8,12})\b`, 8),
			p("client_code", KindInstallation,
				`(?i)c[oó]d(?:igo|\.)?\s+(?:d[oe]\s+)?cliente\s*[:\-]?\s*(\d{8,12})\b`, 8),
			p("client_consumer", KindInstallation,
				`(?i)cliente\s*/\s*consumidor\s*[:\-]?\s*(\d{8,12})\b`, 8),
			p("positional", KindInstallation,
				`(?i)\b(\d{10,12})\s+(?:tarifa|grupo|modalidade)`, 8),
		},
		Period: []Pattern{
			p("labeled_numeric", KindPeriod,
				`(?i)`+periodTag+`\s*[:\-]?\s*(0[1-9]|1[0-2])\s*[/\-]\s*(\d{4})\b`, 0),
			p("labeled_month_name", KindPeriod,
				`(?i)`+periodTag+`\s*[:\-]?\s*(`+monthNames+`)\s*(?:de\s+|/\s*)?(\d{4})\b`, 0),
			p("bare_numeric", KindPeriod,
				`\b(0[1-9]|1[0-2])/(\d{4})\b`, 0),
			p("month_abbreviation", KindPeriod,
				`(?i)\b(`+monthAbbr+`)[/\-\s]?(\d{4})\b`, 0),
		},
		SectionStart: p("items_start", KindSectionStart,
			`(?i)itens\s+d[ae]\s+fatura|detalhamento\s+d[ae]\s+fatura|detalhes\s+(?:d[oe]\s+)?faturamento`, 0),
		SectionEnd: []Pattern{
			p("invoice_total", KindSectionEnd,
				`(?i)total\s+(?:d[ae]\s+)?fatura|total\s+a\s+pagar|total\s+geral|valor\s+total`, 0),
			p("notes", KindSectionEnd,
				`(?i)informa[cç][oõ]es\s+importantes|observa[cç][oõ]es`, 0),
			p("history", KindSectionEnd,
				`(?i)hist[oó]rico\s+de\s+consumo|dados\s+t[eé]cnicos`, 0),
		},
		HeaderRow: p("header", KindHeaderRow,
			`(?i)\b(?:itens?|unid(?:ade)?|quant(?:idade)?|qtd|valor(?:es)?|pre[cç]o\s+unit(?:[aá]rio)?|descri[cç][aã]o)\b|-{3,}|={3,}|_{3,}`, 0),
		FullRow: p("full_row", KindFullRow,
			`^(.+?)\s+(\pL{1,6})\s+`+amount+`\s+`+amount+`\s+`+amount+`$`, 0),
		SimpleRow: p("simple_row", KindSimpleRow,
			`^(.+?)\s+(-?(?:R\$\s*)?\d[\d.,]*-?)$`, 0),
		NonItemLabel: p("non_item", KindNonItem,
			`(?i)\b(?:sub)?total\b|\bp[aá]gina\b|\bfolha\b`, 0),
	}

	lib.structure = make(map[string]struct{})
	for _, w := range []string{
		"item", "itens", "unidade", "unid", "quantidade", "quant", "qtd",
		"valor", "valores", "preco unitario", "descricao",
		"total", "subtotal", "pagina", "folha",
	} {
		lib.structure[w] = struct{}{}
	}
	return lib
}

// All lists every pattern in catalogue order.
func (l *Library) All() []Pattern {
	out := make([]Pattern, 0, len(l.Installation)+len(l.Period)+len(l.SectionEnd)+5)
	out = append(out, l.Installation...)
	out = append(out, l.Period...)
	out = append(out, l.SectionStart)
	out = append(out, l.SectionEnd...)
	out = append(out, l.HeaderRow, l.FullRow, l.SimpleRow, l.NonItemLabel)
	return out
}

// IsStructureKeyword reports whether label is a table-structure word
// (header or total) rather than a billed item.
func (l *Library) IsStructureKeyword(label string) bool {
	_, ok := l.structure[strings.Join(strings.Fields(Fold(label)), " ")]
	return ok
}

// Fold lowercases s and strips diacritics ("Elétrica" -> "eletrica").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
