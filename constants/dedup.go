package constants

import (
	"strings"
)

// DedupPolicy decides which reconstructed rows count as duplicates.
type DedupPolicy string

const (
	// DedupByItem keeps the first row for each label.
	DedupByItem DedupPolicy = "item"
	// DedupByItemAndUnit keeps the first row for each (label, unit) pair.
	DedupByItemAndUnit DedupPolicy = "item_unit"
	// DedupNone keeps every row.
	DedupNone DedupPolicy = "none"
)

var allPolicies = []DedupPolicy{
	DedupByItem,
	DedupByItemAndUnit,
	DedupNone,
}

func DedupPolicies() []string {
	result := make([]string, len(allPolicies))
	for i, p := range allPolicies {
		result[i] = string(p)
	}
	return result
}

// CanonicalizeDedup maps a configured value onto a policy. Unknown or empty
// values fall back to DedupByItem and report false.
func CanonicalizeDedup(input string) (DedupPolicy, bool) {
	if input == "" {
		return DedupByItem, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]DedupPolicy{
		"first":     DedupByItem,
		"label":     DedupByItem,
		"item+unit": DedupByItemAndUnit,
		"item,unit": DedupByItemAndUnit,
		"off":       DedupNone,
		"all":       DedupNone,
		"keep_all":  DedupNone,
	}

	if p, ok := synonyms[normalized]; ok {
		return p, true
	}

	for _, p := range allPolicies {
		if normalized == string(p) {
			return p, true
		}
	}

	return DedupByItem, false
}
