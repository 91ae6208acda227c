package analysis

import (
	"fmt"
	"strings"

	"vgsales_dashboard/internal/dataset"
)

// Region names a sales column for display.
type Region struct {
	Name   string              `json:"name"`
	Column dataset.SalesColumn `json:"-"`
}

// DefaultRegions is the comparison order; ties in most/least popular go to
// the earlier region.
func DefaultRegions() []Region {
	return []Region{
		{Name: "North America", Column: dataset.SalesNA},
		{Name: "Europe", Column: dataset.SalesEU},
		{Name: "Japan", Column: dataset.SalesJP},
		{Name: "Rest of World", Column: dataset.SalesOther},
		{Name: "Global", Column: dataset.SalesGlobal},
	}
}

// FindRegion looks a region up by name (case-insensitive) or by column name.
func FindRegion(regions []Region, name string) (Region, error) {
	want := strings.TrimSpace(name)
	for _, r := range regions {
		if strings.EqualFold(r.Name, want) || strings.EqualFold(r.Column.String(), want) {
			return r, nil
		}
	}
	return Region{}, fmt.Errorf("unknown region: %q", name)
}

// RegionShare is a genre's standing in one region.
type RegionShare struct {
	Region   string  `json:"region"`
	SharePct float64 `json:"share_pct"`
	Rank     int     `json:"rank"`
}

// RegionComparison is a genre's share and rank across regions.
type RegionComparison struct {
	Genre        string        `json:"genre"`
	Regions      []RegionShare `json:"regions"`
	MostPopular  string        `json:"most_popular_region"`
	LeastPopular string        `json:"least_popular_region"`
}

// CompareRegion computes, for every region, the genre's percentage of that
// region's sales and its 1-based rank among all genres there. Rank is 0 when
// the genre has no rows in t.
func CompareRegion(t *dataset.Table, genre string, regions []Region) RegionComparison {
	out := RegionComparison{
		Genre:   genre,
		Regions: make([]RegionShare, 0, len(regions)),
	}
	var most, least float64
	for i, region := range regions {
		sums := SumBy(t, ByGenre, region.Column)
		var total float64
		for _, v := range sums {
			total += v
		}
		share := RegionShare{
			Region:   region.Name,
			SharePct: percent(sums[genre], total),
		}
		for pos, g := range rankSums(sums, ByGenre) {
			if g.Key == genre {
				share.Rank = pos + 1
				break
			}
		}
		out.Regions = append(out.Regions, share)

		if i == 0 || share.SharePct > most {
			out.MostPopular, most = region.Name, share.SharePct
		}
		if i == 0 || share.SharePct < least {
			out.LeastPopular, least = region.Name, share.SharePct
		}
	}
	return out
}

// Share returns the standing of the genre in the named region.
func (rc RegionComparison) Share(region string) (RegionShare, bool) {
	for _, s := range rc.Regions {
		if s.Region == region {
			return s, true
		}
	}
	return RegionShare{}, false
}

func (rc RegionComparison) share(region string) float64 {
	s, _ := rc.Share(region)
	return s.SharePct
}

// RegionVerdict is the comparison seen from one selected region.
type RegionVerdict struct {
	Selected        string  `json:"selected"`
	SharePct        float64 `json:"share_pct"`
	Rank            int     `json:"rank"`
	MostPopular     string  `json:"most_popular_region"`
	MostIsSelected  bool    `json:"most_is_selected"`
	MostDelta       float64 `json:"most_delta_pct"`
	LeastPopular    string  `json:"least_popular_region"`
	LeastIsSelected bool    `json:"least_is_selected"`
	LeastDelta      float64 `json:"least_delta_pct"`
}

// Against reports the most and least popular regions relative to selected.
// When selected is itself the extreme, the IsSelected flag is set and the
// delta stays zero.
func (rc RegionComparison) Against(selected string) RegionVerdict {
	own, _ := rc.Share(selected)
	v := RegionVerdict{
		Selected:     selected,
		SharePct:     own.SharePct,
		Rank:         own.Rank,
		MostPopular:  rc.MostPopular,
		LeastPopular: rc.LeastPopular,
	}
	if rc.MostPopular == selected {
		v.MostIsSelected = true
	} else {
		v.MostDelta = rc.share(rc.MostPopular) - own.SharePct
	}
	if rc.LeastPopular == selected {
		v.LeastIsSelected = true
	} else {
		v.LeastDelta = own.SharePct - rc.share(rc.LeastPopular)
	}
	return v
}

// RegionDrillDown is the per-genre detail shown for the selected region.
type RegionDrillDown struct {
	Comparison  RegionComparison `json:"comparison"`
	Verdict     RegionVerdict    `json:"verdict"`
	TopGames    []GameSale       `json:"top_games"`
	Evolution   []Group          `json:"evolution"`
	GenreShares []Group          `json:"genre_shares"`
}

// DrillDown combines CompareRegion with the selected region's top five games
// of the genre, the genre's sales per year there, and the top eight genre
// shares there.
func DrillDown(t *dataset.Table, genre string, selected Region, regions []Region) RegionDrillDown {
	comparison := CompareRegion(t, genre, regions)
	ofGenre := t.Where(func(r dataset.GameRecord) bool { return r.Genre == genre })

	shares := limit(rankSums(ShareOfTotal(t, ByGenre, selected.Column), ByGenre), 8)

	return RegionDrillDown{
		Comparison:  comparison,
		Verdict:     comparison.Against(selected.Name),
		TopGames:    TopGames(ofGenre, selected.Column, 5),
		Evolution:   YearSeries(ofGenre, selected.Column),
		GenreShares: shares,
	}
}

// RegionSeries returns YearSeries of every region, keyed by region name.
func RegionSeries(t *dataset.Table, regions []Region) map[string][]Group {
	out := make(map[string][]Group, len(regions))
	for _, r := range regions {
		out[r.Name] = YearSeries(t, r.Column)
	}
	return out
}
