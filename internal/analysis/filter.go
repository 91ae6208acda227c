package analysis

import (
	"vgsales_dashboard/internal/dataset"
)

// Criteria restricts a table by set membership. Each non-empty field is a set
// of allowed values; fields are AND-combined, empty fields impose nothing.
type Criteria struct {
	Years     []int    `json:"years,omitempty"`
	Platforms []string `json:"platforms,omitempty"`
	Genres    []string `json:"genres,omitempty"`
}

// IsEmpty reports whether no field is set.
func (c Criteria) IsEmpty() bool {
	return len(c.Years) == 0 && len(c.Platforms) == 0 && len(c.Genres) == 0
}

// Filter applies c to t. When the active criteria match no row the full table
// is returned instead of an empty one.
func Filter(t *dataset.Table, c Criteria) *dataset.Table {
	out, _ := FilterWithFallback(t, c)
	return out
}

// FilterWithFallback is Filter that also reports whether the empty-result
// fallback replaced the filtered table with t.
func FilterWithFallback(t *dataset.Table, c Criteria) (*dataset.Table, bool) {
	if c.IsEmpty() {
		return t, false
	}

	years := make(map[int]bool, len(c.Years))
	for _, y := range c.Years {
		years[y] = true
	}
	platforms := toSet(c.Platforms)
	genres := toSet(c.Genres)

	out := t.Where(func(r dataset.GameRecord) bool {
		if len(years) > 0 && !years[r.Year] {
			return false
		}
		if len(platforms) > 0 && !platforms[r.Platform] {
			return false
		}
		if len(genres) > 0 && !genres[r.Genre] {
			return false
		}
		return true
	})
	if out.Len() == 0 {
		return t, true
	}
	return out, false
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
