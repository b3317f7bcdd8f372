// Package numeric parses Brazilian-formatted amounts as they appear in
// invoice text ("1.234,56", "45-", "R$ 12,30").
package numeric

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonNumeric = regexp.MustCompile(`[^0-9,.\-]`)

// Parse converts raw into a decimal. ok is false when nothing numeric
// remains after cleanup or the cleaned token is malformed.
//
// Rules: when both '.' and ',' occur, '.' groups thousands and ',' is the
// decimal mark. With ',' alone, exactly three digits after the last comma
// mean a thousands group ("1,234"); any other tail is decimal ("1234,56",
// "100,0"). A trailing '-' marks a negative value.
func Parse(raw string) (decimal.Decimal, bool) {
	s := nonNumeric.ReplaceAllString(raw, "")
	if s == "" {
		return decimal.Zero, false
	}

	if strings.HasSuffix(s, "-") {
		s = "-" + strings.TrimRight(s, "-")
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.Trim(s, "-")
	if s == "" || strings.Contains(s, "-") {
		return decimal.Zero, false
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		last := strings.LastIndex(s, ",")
		if len(s)-last-1 == 3 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s[:last], ",", "") + "." + s[last+1:]
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

// Normalize is Parse with failures mapped to zero.
func Normalize(raw string) decimal.Decimal {
	d, _ := Parse(raw)
	return d
}

// ParseNull returns a set NullDecimal for parseable input, unset otherwise.
func ParseNull(raw string) decimal.NullDecimal {
	d, ok := Parse(raw)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
