package analysis

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgsales_dashboard/internal/dataset"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

var allKeys = []GroupKey{ByPlatform, ByYear, ByGenre, ByFranchise, ByPublisher}

func TestSumByPartitionsTotal(t *testing.T) {
	table := NewFranchiseClassifier(DefaultFranchiseConfig().Franchises).Annotate(salesTable())
	for _, key := range allKeys {
		for _, col := range dataset.SalesColumns() {
			var sum float64
			for _, v := range SumBy(table, key, col) {
				sum += v
			}
			assert.InDelta(t, table.Sum(col), sum, 1e-9, "%s/%s", key, col)
		}
	}
}

func TestSumByPlatform(t *testing.T) {
	got := SumBy(salesTable(), ByPlatform, dataset.SalesGlobal)
	want := map[string]float64{
		"Wii":  118.35,
		"NES":  40.24,
		"DS":   47.88,
		"X360": 29.34,
		"PS4":  8.49,
		"GB":   61.63,
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("SumBy mismatch (-want +got):\n%s", diff)
	}
}

func TestTopNOrdering(t *testing.T) {
	table := salesTable()
	for _, key := range allKeys {
		ranked := Ranked(table, key, dataset.SalesNA)
		for n := -1; n <= len(ranked)+2; n++ {
			top := TopN(table, key, dataset.SalesNA, n)
			if n <= 0 {
				assert.Empty(t, top)
				continue
			}
			want := n
			if len(ranked) < n {
				want = len(ranked)
			}
			require.Len(t, top, want)
			assert.Equal(t, ranked[:want], top, "TopN must be a prefix of the full ranking")
			for i := 1; i < len(top); i++ {
				assert.GreaterOrEqual(t, top[i-1].Value, top[i].Value)
			}
		}
	}
}

func TestTopNTieBreak(t *testing.T) {
	table := dataset.NewTable([]dataset.GameRecord{
		{Title: "a", Year: 2001, Genre: "Racing", Platform: "PS2", Global: 1},
		{Title: "b", Year: 998, Genre: "Action", Platform: "N64", Global: 1},
		{Title: "c", Year: 2003, Genre: "Puzzle", Platform: "GB", Global: 2},
	})

	assert.Equal(t, []Group{
		{Key: "Puzzle", Value: 2},
		{Key: "Action", Value: 1},
		{Key: "Racing", Value: 1},
	}, TopN(table, ByGenre, dataset.SalesGlobal, 3))

	assert.Equal(t, []Group{
		{Key: "2003", Value: 2},
		{Key: "998", Value: 1},
		{Key: "2001", Value: 1},
	}, TopN(table, ByYear, dataset.SalesGlobal, 5))
}

func TestShareOfTotal(t *testing.T) {
	t.Run("sums to 100", func(t *testing.T) {
		for _, col := range dataset.SalesColumns() {
			var sum float64
			for _, v := range ShareOfTotal(salesTable(), ByGenre, col) {
				sum += v
			}
			assert.InDelta(t, 100, sum, 1e-9, col.String())
		}
	})

	t.Run("zero total", func(t *testing.T) {
		table := dataset.NewTable([]dataset.GameRecord{
			{Title: "a", Year: 2001, Genre: "Racing", NA: 1},
			{Title: "b", Year: 2002, Genre: "Action", NA: 2},
		})
		shares := ShareOfTotal(table, ByGenre, dataset.SalesJP)
		require.Len(t, shares, 2)
		for genre, v := range shares {
			assert.False(t, math.IsNaN(v), genre)
			assert.Zero(t, v, genre)
		}
	})
}

func TestCountBy(t *testing.T) {
	counts := CountBy(salesTable(), ByPlatform)
	assert.Equal(t, map[string]int{"Wii": 2, "NES": 1, "DS": 2, "X360": 2, "PS4": 1, "GB": 2}, counts)

	assert.Equal(t, []Count{{Key: "2005", Count: 2}}, TopCount(salesTable(), ByYear, 1))
	assert.Equal(t, []Count{
		{Key: "DS", Count: 2},
		{Key: "GB", Count: 2},
		{Key: "Wii", Count: 2},
	}, TopCount(salesTable(), ByPlatform, 3))
	assert.Empty(t, TopCount(salesTable(), ByPlatform, 0))
}

func TestYearSeries(t *testing.T) {
	series := YearSeries(salesTable(), dataset.SalesGlobal)
	keys := make([]string, 0, len(series))
	for _, g := range series {
		keys = append(keys, g.Key)
	}
	assert.Equal(t, []string{"1985", "1989", "1996", "2005", "2006", "2008", "2010", "2011", "2015"}, keys)
	assert.InDelta(t, 47.88, series[3].Value, 1e-9)
}

func TestTopGames(t *testing.T) {
	games := TopGames(salesTable(), dataset.SalesJP, 3)
	require.Len(t, games, 3)
	assert.Equal(t, "Pokemon Red/Pokemon Blue", games[0].Title)
	assert.Equal(t, "Super Mario Bros.", games[1].Title)
	assert.Equal(t, "Tetris", games[2].Title)
	assert.InDelta(t, 10.22, games[0].Sales, 1e-9)

	tied := dataset.NewTable([]dataset.GameRecord{
		{Title: "Same", Platform: "PS2", Year: 2001, Genre: "Action", Global: 1},
		{Title: "Same", Platform: "GC", Year: 2001, Genre: "Action", Global: 1},
		{Title: "Another", Platform: "PS2", Year: 2001, Genre: "Action", Global: 1},
	})
	got := TopGames(tied, dataset.SalesGlobal, 10)
	assert.Equal(t, []string{"Another/PS2", "Same/GC", "Same/PS2"}, []string{
		got[0].Title + "/" + got[0].Platform,
		got[1].Title + "/" + got[1].Platform,
		got[2].Title + "/" + got[2].Platform,
	})
	assert.Empty(t, TopGames(tied, dataset.SalesGlobal, 0))
}

func TestGroupKey(t *testing.T) {
	for _, key := range allKeys {
		parsed, err := ParseGroupKey(" " + key.String() + " ")
		require.NoError(t, err)
		assert.Equal(t, key, parsed)
	}
	_, err := ParseGroupKey("console")
	assert.Error(t, err)

	rec := dataset.GameRecord{Title: "Halo 3", Platform: "X360", Year: 2007, Genre: "Shooter", Publisher: "Microsoft"}
	assert.Equal(t, OtherFranchise, ByFranchise.Value(rec))
	assert.Equal(t, "2007", ByYear.Value(rec))
	assert.Equal(t, "Microsoft", ByPublisher.Value(rec))
}

func TestAggregate(t *testing.T) {
	table := salesTable()

	top := Aggregate(table, OpTop, ByPlatform, dataset.SalesGlobal, 2)
	assert.Equal(t, "platform", top.Key)
	assert.Equal(t, "global", top.Column)
	want := []Group{{Key: "Wii", Value: 118.35}, {Key: "GB", Value: 61.63}}
	if diff := cmp.Diff(want, top.Groups, approx); diff != "" {
		t.Errorf("top mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, Aggregate(table, OpTop, ByPlatform, dataset.SalesGlobal, 0).Groups)

	sum := Aggregate(table, OpSum, ByPlatform, dataset.SalesGlobal, 0)
	assert.Len(t, sum.Groups, 6)
	assert.Equal(t, "PS4", sum.Groups[5].Key)

	share := Aggregate(table, OpShare, ByPlatform, dataset.SalesGlobal, 0)
	var total float64
	for _, g := range share.Groups {
		total += g.Value
	}
	assert.InDelta(t, 100, total, 1e-9)
	assert.Equal(t, "Wii", share.Groups[0].Key)

	count := Aggregate(table, OpCount, ByPlatform, dataset.SalesGlobal, 3)
	assert.Empty(t, count.Column)
	assert.Nil(t, count.Groups)
	assert.Equal(t, []Count{{Key: "DS", Count: 2}, {Key: "GB", Count: 2}, {Key: "Wii", Count: 2}}, count.Counts)
	assert.Len(t, Aggregate(table, OpCount, ByPlatform, dataset.SalesGlobal, 0).Counts, 6)
}

func TestAggregateByPublisher(t *testing.T) {
	table := dataset.NewTable([]dataset.GameRecord{
		{Title: "Wii Sports", Platform: "Wii", Year: 2006, Genre: "Sports", Publisher: "Nintendo", Global: 82.53},
		{Title: "FIFA 16", Platform: "PS4", Year: 2015, Genre: "Sports", Publisher: "Electronic Arts", Global: 8.49},
		{Title: "FIFA 17", Platform: "PS4", Year: 2016, Genre: "Sports", Publisher: "Electronic Arts", Global: 7.59},
	})
	got := Aggregate(table, OpSum, ByPublisher, dataset.SalesGlobal, 0)
	want := []Group{{Key: "Nintendo", Value: 82.53}, {Key: "Electronic Arts", Value: 16.08}}
	if diff := cmp.Diff(want, got.Groups, approx); diff != "" {
		t.Errorf("publisher sums mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAggregateOp(t *testing.T) {
	for _, s := range []string{"sum", "COUNT", " top ", "share"} {
		_, err := ParseAggregateOp(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseAggregateOp("median")
	assert.ErrorContains(t, err, "unknown aggregation")
}
