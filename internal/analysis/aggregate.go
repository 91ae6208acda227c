package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"vgsales_dashboard/internal/dataset"
)

// GroupKey selects the grouping field of an aggregation.
type GroupKey int

const (
	ByPlatform GroupKey = iota
	ByYear
	ByGenre
	ByFranchise
	ByPublisher
)

var groupKeyNames = [...]string{
	ByPlatform:  "platform",
	ByYear:      "year",
	ByGenre:     "genre",
	ByFranchise: "franchise",
	ByPublisher: "publisher",
}

func (k GroupKey) String() string {
	if k < 0 || int(k) >= len(groupKeyNames) {
		return fmt.Sprintf("GroupKey(%d)", int(k))
	}
	return groupKeyNames[k]
}

func ParseGroupKey(s string) (GroupKey, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range groupKeyNames {
		if n == name {
			return GroupKey(i), nil
		}
	}
	return 0, fmt.Errorf("unknown group key: %q", s)
}

// Value extracts the group value of r. ByFranchise expects an annotated
// table; unannotated rows fall into OtherFranchise.
func (k GroupKey) Value(r dataset.GameRecord) string {
	switch k {
	case ByYear:
		return strconv.Itoa(r.Year)
	case ByGenre:
		return r.Genre
	case ByFranchise:
		if r.Franchise == "" {
			return OtherFranchise
		}
		return r.Franchise
	case ByPublisher:
		return r.Publisher
	default:
		return r.Platform
	}
}

// less orders group values ascending: numerically for years, lexically
// otherwise. It is the tie-break for every ranking in this package.
func (k GroupKey) less(a, b string) bool {
	if k == ByYear {
		ai, aerr := strconv.Atoi(a)
		bi, berr := strconv.Atoi(b)
		if aerr == nil && berr == nil {
			return ai < bi
		}
	}
	return a < b
}

// Group is one aggregated group value.
type Group struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Count is one counted group value.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// SumBy totals col per distinct key value. Groups without rows are absent.
func SumBy(t *dataset.Table, key GroupKey, col dataset.SalesColumn) map[string]float64 {
	sums := map[string]float64{}
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		sums[key.Value(r)] += col.Of(r)
	}
	return sums
}

// CountBy counts rows per distinct key value.
func CountBy(t *dataset.Table, key GroupKey) map[string]int {
	counts := map[string]int{}
	for i := 0; i < t.Len(); i++ {
		counts[key.Value(t.At(i))]++
	}
	return counts
}

// Ranked returns every group of SumBy ordered by descending sum, ties by
// ascending key.
func Ranked(t *dataset.Table, key GroupKey, col dataset.SalesColumn) []Group {
	return rankSums(SumBy(t, key, col), key)
}

func rankSums(sums map[string]float64, key GroupKey) []Group {
	groups := make([]Group, 0, len(sums))
	for k, v := range sums {
		groups = append(groups, Group{Key: k, Value: v})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Value != groups[j].Value {
			return groups[i].Value > groups[j].Value
		}
		return key.less(groups[i].Key, groups[j].Key)
	})
	return groups
}

// TopN returns at most n groups of Ranked. n <= 0 yields no groups.
func TopN(t *dataset.Table, key GroupKey, col dataset.SalesColumn, n int) []Group {
	if n <= 0 {
		return nil
	}
	return limit(Ranked(t, key, col), n)
}

// TopCount returns at most n key values by descending row count, ties by
// ascending key.
func TopCount(t *dataset.Table, key GroupKey, n int) []Count {
	if n <= 0 {
		return nil
	}
	counts := CountBy(t, key)
	out := make([]Count, 0, len(counts))
	for k, c := range counts {
		out = append(out, Count{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return key.less(out[i].Key, out[j].Key)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ShareOfTotal returns each group's percentage of the grand total of col over
// t. A zero grand total gives 0 for every group.
func ShareOfTotal(t *dataset.Table, key GroupKey, col dataset.SalesColumn) map[string]float64 {
	sums := SumBy(t, key, col)
	total := t.Sum(col)
	shares := make(map[string]float64, len(sums))
	for k, v := range sums {
		shares[k] = percent(v, total)
	}
	return shares
}

// YearSeries returns the sales of col per release year in ascending year
// order.
func YearSeries(t *dataset.Table, col dataset.SalesColumn) []Group {
	sums := SumBy(t, ByYear, col)
	out := make([]Group, 0, len(sums))
	for k, v := range sums {
		out = append(out, Group{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return ByYear.less(out[i].Key, out[j].Key) })
	return out
}

// GameSale is a single title's figure in one sales column.
type GameSale struct {
	Title    string  `json:"title"`
	Platform string  `json:"platform"`
	Year     int     `json:"year"`
	Genre    string  `json:"genre"`
	Sales    float64 `json:"sales"`
}

// TopGames returns the n best-selling rows of t by col, ties by title then
// platform.
func TopGames(t *dataset.Table, col dataset.SalesColumn, n int) []GameSale {
	if n <= 0 {
		return nil
	}
	games := make([]GameSale, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		r := t.At(i)
		games = append(games, GameSale{
			Title:    r.Title,
			Platform: r.Platform,
			Year:     r.Year,
			Genre:    r.Genre,
			Sales:    col.Of(r),
		})
	}
	sort.Slice(games, func(i, j int) bool {
		if games[i].Sales != games[j].Sales {
			return games[i].Sales > games[j].Sales
		}
		if games[i].Title != games[j].Title {
			return games[i].Title < games[j].Title
		}
		return games[i].Platform < games[j].Platform
	})
	if len(games) > n {
		games = games[:n]
	}
	return games
}

func limit(groups []Group, n int) []Group {
	if n > 0 && len(groups) > n {
		return groups[:n]
	}
	return groups
}

func percent(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

// AggregateOp names an aggregation offered to the UI.
type AggregateOp string

const (
	OpSum   AggregateOp = "sum"
	OpCount AggregateOp = "count"
	OpTop   AggregateOp = "top"
	OpShare AggregateOp = "share"
)

func ParseAggregateOp(s string) (AggregateOp, error) {
	switch op := AggregateOp(strings.ToLower(strings.TrimSpace(s))); op {
	case OpSum, OpCount, OpTop, OpShare:
		return op, nil
	}
	return "", fmt.Errorf("unknown aggregation: %q", s)
}

// Aggregation is the ranked result of Aggregate. Counts is set for OpCount,
// Groups for every other op (sums, or percentages for OpShare).
type Aggregation struct {
	Op     AggregateOp `json:"op"`
	Key    string      `json:"key"`
	Column string      `json:"column,omitempty"`
	Groups []Group     `json:"groups,omitempty"`
	Counts []Count     `json:"counts,omitempty"`
}

// Aggregate runs op over t grouped by key. Results are ranked like TopN. For
// OpTop n <= 0 yields nothing; for the other ops it keeps every group.
func Aggregate(t *dataset.Table, op AggregateOp, key GroupKey, col dataset.SalesColumn, n int) Aggregation {
	out := Aggregation{Op: op, Key: key.String(), Column: col.String()}
	switch op {
	case OpTop:
		out.Groups = TopN(t, key, col, n)
	case OpSum:
		out.Groups = limit(Ranked(t, key, col), n)
	case OpShare:
		out.Groups = limit(rankSums(ShareOfTotal(t, key, col), key), n)
	case OpCount:
		out.Column = ""
		if n <= 0 {
			n = t.Len()
		}
		out.Counts = TopCount(t, key, n)
	}
	return out
}
