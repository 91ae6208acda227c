package analysis

import (
	"strconv"

	"vgsales_dashboard/internal/dataset"
)

const (
	topPlatforms      = 10
	topFranchises     = 15
	topFranchiseGames = 10
)

// Overview holds the headline metrics of a filtered view.
type Overview struct {
	TopYear      int    `json:"top_year"`
	TopYearCount int    `json:"top_year_count"`
	TopGenre     string `json:"top_genre"`
	TopPlatform  string `json:"top_platform"`
	Records      int    `json:"records"`
	Fallback     bool   `json:"fallback"`
}

// FranchiseStat is one franchise's total and its position in the top list.
// Rank is 0 when the franchise is outside the list.
type FranchiseStat struct {
	Franchise string  `json:"franchise"`
	Sales     float64 `json:"sales"`
	Rank      int     `json:"rank"`
	Color     string  `json:"color"`
}

// FranchiseDetail summarises the games of one franchise.
type FranchiseDetail struct {
	Franchise string     `json:"franchise"`
	Color     string     `json:"color"`
	Games     int        `json:"games"`
	FirstYear int        `json:"first_year"`
	LastYear  int        `json:"last_year"`
	Sales     float64    `json:"sales"`
	AvgSales  float64    `json:"avg_sales"`
	TopGames  []GameSale `json:"top_games"`
}

// Dashboard is everything the main page shows for one selection.
type Dashboard struct {
	Region     string          `json:"region"`
	Overview   Overview        `json:"overview"`
	Platforms  []Group         `json:"platforms"`
	Years      []Group         `json:"years"`
	Franchises []FranchiseStat `json:"franchises"`
	Spotlight  []FranchiseStat `json:"spotlight"`
}

// View is a filtered and franchise-annotated table ready for aggregation.
type View struct {
	Table    *dataset.Table
	Fallback bool
}

// NewView filters t and annotates the result with classifier.
func NewView(t *dataset.Table, c Criteria, classifier *FranchiseClassifier) View {
	filtered, fallback := FilterWithFallback(t, c)
	return View{Table: classifier.Annotate(filtered), Fallback: fallback}
}

// BuildDashboard computes the main page for view in the given region.
func BuildDashboard(view View, region Region, cfg FranchiseConfig) Dashboard {
	t := view.Table
	out := Dashboard{
		Region:    region.Name,
		Overview:  buildOverview(t, region.Column),
		Platforms: TopN(t, ByPlatform, region.Column, topPlatforms),
		Years:     YearSeries(t, region.Column),
	}
	out.Overview.Fallback = view.Fallback

	for i, g := range TopFranchises(t, region.Column, topFranchises) {
		out.Franchises = append(out.Franchises, FranchiseStat{
			Franchise: g.Key,
			Sales:     g.Value,
			Rank:      i + 1,
			Color:     cfg.Color(g.Key),
		})
	}

	for _, name := range cfg.Spotlight {
		stat := FranchiseStat{Franchise: name, Color: cfg.Color(name)}
		for _, f := range out.Franchises {
			if f.Franchise == name {
				stat = f
				break
			}
		}
		out.Spotlight = append(out.Spotlight, stat)
	}
	return out
}

func buildOverview(t *dataset.Table, col dataset.SalesColumn) Overview {
	o := Overview{Records: t.Len()}
	if top := TopCount(t, ByYear, 1); len(top) > 0 {
		o.TopYear, _ = strconv.Atoi(top[0].Key)
		o.TopYearCount = top[0].Count
	}
	if top := TopN(t, ByGenre, col, 1); len(top) > 0 {
		o.TopGenre = top[0].Key
	}
	if top := TopN(t, ByPlatform, col, 1); len(top) > 0 {
		o.TopPlatform = top[0].Key
	}
	return o
}

// TopFranchises ranks known franchises by sales in col, leaving out
// OtherFranchise.
func TopFranchises(t *dataset.Table, col dataset.SalesColumn, n int) []Group {
	if n <= 0 {
		return nil
	}
	ranked := Ranked(t, ByFranchise, col)
	out := make([]Group, 0, n)
	for _, g := range ranked {
		if g.Key == OtherFranchise {
			continue
		}
		out = append(out, g)
		if len(out) == n {
			break
		}
	}
	return out
}

// DescribeFranchise returns the detail card of one franchise over an annotated
// table. A franchise without games has zero year range and average.
func DescribeFranchise(t *dataset.Table, franchise string, col dataset.SalesColumn, cfg FranchiseConfig) FranchiseDetail {
	games := t.Where(func(r dataset.GameRecord) bool { return r.Franchise == franchise })
	d := FranchiseDetail{
		Franchise: franchise,
		Color:     cfg.Color(franchise),
		Games:     games.Len(),
		Sales:     games.Sum(col),
		TopGames:  TopGames(games, col, topFranchiseGames),
	}
	if years := games.Years(); len(years) > 0 {
		d.FirstYear = years[0]
		d.LastYear = years[len(years)-1]
	}
	if d.Games > 0 {
		d.AvgSales = d.Sales / float64(d.Games)
	}
	return d
}
