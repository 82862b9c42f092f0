// Package strings provides small string-slice helpers.
package strings

import "strings"

// DedupeAndTrim trims whitespace from every element and drops empties and
// duplicates, keeping first-seen order. Batch ward imports run through this
// before any name reaches the store.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
