package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// GameRecord is one normalized row of the sales dataset. Sales figures are in
// millions of units; regional columns are not reconciled against Global.
type GameRecord struct {
	Title     string  `json:"title"`
	Platform  string  `json:"platform"`
	Year      int     `json:"year"`
	Genre     string  `json:"genre"`
	Publisher string  `json:"publisher,omitempty"`
	Developer string  `json:"developer,omitempty"`
	Rating    string  `json:"rating,omitempty"`
	NA        float64 `json:"sales_na"`
	EU        float64 `json:"sales_eu"`
	JP        float64 `json:"sales_jp"`
	Other     float64 `json:"sales_other"`
	Global    float64 `json:"sales_global"`

	// Franchise is set by analysis.FranchiseClassifier.Annotate and is never
	// stored.
	Franchise string `json:"franchise,omitempty"`
}

// SalesColumn selects one of the five sales figures of a record.
type SalesColumn int

const (
	SalesGlobal SalesColumn = iota
	SalesNA
	SalesEU
	SalesJP
	SalesOther
)

var salesColumnNames = [...]string{
	SalesGlobal: "global",
	SalesNA:     "na",
	SalesEU:     "eu",
	SalesJP:     "jp",
	SalesOther:  "other",
}

// SalesColumns lists every column in declaration order.
func SalesColumns() []SalesColumn {
	return []SalesColumn{SalesGlobal, SalesNA, SalesEU, SalesJP, SalesOther}
}

func (c SalesColumn) String() string {
	if c < 0 || int(c) >= len(salesColumnNames) {
		return fmt.Sprintf("SalesColumn(%d)", int(c))
	}
	return salesColumnNames[c]
}

// Of returns the value of the column for r.
func (c SalesColumn) Of(r GameRecord) float64 {
	switch c {
	case SalesNA:
		return r.NA
	case SalesEU:
		return r.EU
	case SalesJP:
		return r.JP
	case SalesOther:
		return r.Other
	default:
		return r.Global
	}
}

// ParseSalesColumn accepts the short names returned by String, with or without
// a "sales_" prefix.
func ParseSalesColumn(s string) (SalesColumn, error) {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "sales_")
	for i, n := range salesColumnNames {
		if n == name {
			return SalesColumn(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sales column: %q", s)
}

// Table is the immutable, normalized record set. Every transformation returns
// a new Table; the receiver is never modified.
type Table struct {
	records []GameRecord
}

// NewTable copies records into a new Table.
func NewTable(records []GameRecord) *Table {
	out := make([]GameRecord, len(records))
	copy(out, records)
	return &Table{records: out}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// At returns the i-th record by value.
func (t *Table) At(i int) GameRecord {
	return t.records[i]
}

// Records returns a copy of the underlying rows.
func (t *Table) Records() []GameRecord {
	out := make([]GameRecord, t.Len())
	if t != nil {
		copy(out, t.records)
	}
	return out
}

// Where returns the rows for which keep reports true.
func (t *Table) Where(keep func(GameRecord) bool) *Table {
	out := make([]GameRecord, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if keep(t.records[i]) {
			out = append(out, t.records[i])
		}
	}
	return &Table{records: out}
}

// Map returns a new table with fn applied to every row.
func (t *Table) Map(fn func(GameRecord) GameRecord) *Table {
	out := make([]GameRecord, t.Len())
	for i := 0; i < t.Len(); i++ {
		out[i] = fn(t.records[i])
	}
	return &Table{records: out}
}

// Sum totals col over every row.
func (t *Table) Sum(col SalesColumn) float64 {
	var total float64
	for i := 0; i < t.Len(); i++ {
		total += col.Of(t.records[i])
	}
	return total
}

// Years returns the distinct release years in ascending order.
func (t *Table) Years() []int {
	seen := map[int]bool{}
	var years []int
	for i := 0; i < t.Len(); i++ {
		y := t.records[i].Year
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

// Platforms returns the distinct platforms in ascending order.
func (t *Table) Platforms() []string {
	return t.distinct(func(r GameRecord) string { return r.Platform })
}

// Genres returns the distinct genres in ascending order.
func (t *Table) Genres() []string {
	return t.distinct(func(r GameRecord) string { return r.Genre })
}

func (t *Table) distinct(field func(GameRecord) string) []string {
	seen := map[string]bool{}
	var values []string
	for i := 0; i < t.Len(); i++ {
		v := field(t.records[i])
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
