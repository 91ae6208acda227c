package charts

import (
	"fmt"
	"strconv"

	"vgsales_dashboard/internal/analysis"
)

// Names lists the charts served by name.
var Names = []string{"platforms", "years", "franchises", "franchise", "regions", "genres", "evolution", "series"}

const salesAxis = "Sales (millions)"

func Platforms(d analysis.Dashboard) BarChart {
	return BarChart{
		Title:  fmt.Sprintf("Top 10 platforms - %s", d.Region),
		XLabel: "Platform",
		YLabel: salesAxis,
		Bars:   groupBars(d.Platforms, nil),
	}
}

func Years(d analysis.Dashboard) LineChart {
	return LineChart{
		Title:  fmt.Sprintf("Sales per year - %s", d.Region),
		XLabel: "Year",
		YLabel: salesAxis,
		Series: []Series{yearSeries(d.Region, "", d.Years)},
	}
}

func Franchises(d analysis.Dashboard) BarChart {
	bars := make([]Bar, 0, len(d.Franchises))
	for _, f := range d.Franchises {
		bars = append(bars, Bar{Label: f.Franchise, Value: f.Sales, Color: f.Color})
	}
	return BarChart{
		Title:  fmt.Sprintf("Top 15 franchises - %s", d.Region),
		XLabel: "Franchise",
		YLabel: salesAxis,
		Bars:   bars,
	}
}

// FranchiseGames charts the best-selling titles of one franchise.
func FranchiseGames(f analysis.FranchiseDetail, region string) BarChart {
	bars := make([]Bar, 0, len(f.TopGames))
	for _, g := range f.TopGames {
		bars = append(bars, Bar{Label: g.Title, Value: g.Sales, Color: f.Color})
	}
	return BarChart{
		Title:  fmt.Sprintf("Top %s games - %s", f.Franchise, region),
		XLabel: "Game",
		YLabel: salesAxis,
		Bars:   bars,
	}
}

// RegionShares charts the compared genre's share per region with the
// drill-down region highlighted.
func RegionShares(dd analysis.RegionDrillDown) BarChart {
	bars := make([]Bar, 0, len(dd.Comparison.Regions))
	for _, r := range dd.Comparison.Regions {
		col := defaultBarColor
		if r.Region == dd.Verdict.Selected {
			col = highlightColor
		}
		bars = append(bars, Bar{Label: r.Region, Value: r.SharePct, Color: col})
	}
	return BarChart{
		Title:  fmt.Sprintf("%s share by region (%%)", dd.Comparison.Genre),
		XLabel: "Region",
		YLabel: "Share (%)",
		Bars:   bars,
	}
}

// GenreShares charts the top genre shares of the drill-down region with the
// compared genre highlighted.
func GenreShares(dd analysis.RegionDrillDown) BarChart {
	genre := dd.Comparison.Genre
	return BarChart{
		Title:  fmt.Sprintf("Genre share - %s", dd.Verdict.Selected),
		XLabel: "Genre",
		YLabel: "Share (%)",
		Bars: groupBars(dd.GenreShares, func(key string) string {
			if key == genre {
				return highlightColor
			}
			return defaultBarColor
		}),
	}
}

// GenreEvolution charts the compared genre per year in the drill-down region.
func GenreEvolution(dd analysis.RegionDrillDown) LineChart {
	return LineChart{
		Title:  fmt.Sprintf("%s per year - %s", dd.Comparison.Genre, dd.Verdict.Selected),
		XLabel: "Year",
		YLabel: salesAxis,
		Series: []Series{yearSeries(dd.Comparison.Genre, highlightColor, dd.Evolution)},
	}
}

// RegionSeries draws one line per region.
func RegionSeries(series map[string][]analysis.Group, regions []analysis.Region) LineChart {
	palette := []string{"#1F77B4", "#FF7F0E", "#2CA02C", "#D62728", "#9467BD"}
	out := LineChart{Title: "Sales per year by region", XLabel: "Year", YLabel: salesAxis}
	for i, r := range regions {
		out.Series = append(out.Series, yearSeries(r.Name, palette[i%len(palette)], series[r.Name]))
	}
	return out
}

func groupBars(groups []analysis.Group, color func(string) string) []Bar {
	bars := make([]Bar, 0, len(groups))
	for _, g := range groups {
		b := Bar{Label: g.Key, Value: g.Value}
		if color != nil {
			b.Color = color(g.Key)
		}
		bars = append(bars, b)
	}
	return bars
}

func yearSeries(name, color string, groups []analysis.Group) Series {
	s := Series{Name: name, Color: color}
	for _, g := range groups {
		year, err := strconv.Atoi(g.Key)
		if err != nil {
			continue
		}
		s.Points = append(s.Points, Point{X: float64(year), Y: g.Value})
	}
	return s
}
