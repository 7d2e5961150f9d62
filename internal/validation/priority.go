package validation

import (
	"sort"
	"strings"
)

// priorityTable ranks missing-field names for clarification phrasing.
// Lower is asked first; unmatched names sink to the bottom.
var priorityTable = map[string]int{
	"origin":               1,
	"destination":          1,
	"container_type":       2,
	"container_count":      2,
	"requested_dates":      2,
	"shipment_date":        2,
	"commodity":            3,
	"weight":               3,
	"volume":               3,
	"name":                 4,
	"email":                4,
	"phone":                4,
	"company":              4,
	"contact_information":  4,
	"special_requirements": 4,
}

const defaultPriority = 99

// Prioritize stably sorts a raw missing-fields list by the priority
// table, breaking ties within a priority alphabetically. Matching is
// case-insensitive, exact or substring in either direction.
func Prioritize(raw []string) []string {
	out := make([]string, len(raw))
	copy(out, raw)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := fieldPriority(out[i]), fieldPriority(out[j])
		if pi != pj {
			return pi < pj
		}
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

func fieldPriority(field string) int {
	norm := normalizeField(field)
	best := defaultPriority
	for key, prio := range priorityTable {
		keyNorm := strings.ReplaceAll(key, "_", " ")
		if norm == keyNorm || strings.Contains(norm, keyNorm) || strings.Contains(keyNorm, norm) {
			if prio < best {
				best = prio
			}
		}
	}
	return best
}

func normalizeField(field string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(field), "_", " "))
}
