package query

import "strings"

// TagPatterns parses a comma-separated tag filter string into ordered LIKE
// patterns, one per segment. Segments are NOT trimmed: "原創, 插畫" yields a
// second pattern "% 插畫%" with the leading space, and an empty segment
// yields "%%" which matches every row. Both behaviors are load-bearing for
// existing clients. Empty input yields nil.
func TagPatterns(s string) []string {
	if s == "" {
		return nil
	}
	segments := strings.Split(s, ",")
	patterns := make([]string, 0, len(segments))
	for _, seg := range segments {
		patterns = append(patterns, "%"+seg+"%")
	}
	return patterns
}

// TagConditions maps a comma-separated tag filter string onto
// case-insensitive contains predicates against column, preserving input
// order. Empty input yields nil.
func TagConditions(s, column string) []Predicate {
	patterns := TagPatterns(s)
	if patterns == nil {
		return nil
	}
	conditions := make([]Predicate, 0, len(patterns))
	for _, p := range patterns {
		conditions = append(conditions, ILike(column, p))
	}
	return conditions
}
