package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"vgsales_dashboard/internal/analysis"
	"vgsales_dashboard/internal/dataset"
)

func TestMain(m *testing.M) {
	// gocloud.dev/blob pulls in opencensus, whose view worker starts in init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func testApp(t *testing.T) *dashboardApp {
	t.Helper()
	table := dataset.NewTable([]dataset.GameRecord{
		{Title: "Wii Sports", Platform: "Wii", Year: 2006, Genre: "Sports", NA: 41.49, EU: 29.02, JP: 3.77, Other: 8.46, Global: 82.53},
		{Title: "Super Mario Bros.", Platform: "NES", Year: 1985, Genre: "Platform", NA: 29.08, EU: 3.58, JP: 6.81, Other: 0.77, Global: 40.24},
		{Title: "Mario Kart Wii", Platform: "Wii", Year: 2008, Genre: "Racing", NA: 15.85, EU: 12.88, JP: 3.79, Other: 3.31, Global: 35.82},
		{Title: "Call of Duty: Black Ops", Platform: "X360", Year: 2010, Genre: "Shooter", NA: 9.7, EU: 3.68, JP: 0.11, Other: 1.13, Global: 14.61},
		{Title: "FIFA 16", Platform: "PS4", Year: 2015, Genre: "Sports", NA: 1.11, EU: 6.06, JP: 0.06, Other: 1.26, Global: 8.49},
	})
	a, err := newDashboardApp(table, "testdata", analysis.DefaultFranchiseConfig(), "Global", nil)
	require.NoError(t, err)
	return a
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestIndex(t *testing.T) {
	h := newServer(testApp(t), nil).routes()

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "/api/report")

	assert.Equal(t, http.StatusNotFound, get(t, h, "/missing").Code)
}

func TestOptions(t *testing.T) {
	h := newServer(testApp(t), nil).routes()

	var opts options
	decode(t, get(t, h, "/api/options"), &opts)
	assert.Equal(t, []string{"North America", "Europe", "Japan", "Rest of World", "Global"}, opts.Regions)
	assert.Equal(t, []int{1985, 2006, 2008, 2010, 2015}, opts.Years)
	assert.Equal(t, []string{"NES", "PS4", "Wii", "X360"}, opts.Platforms)
	assert.Equal(t, []string{"Call of Duty", "FIFA", "Mario", "Pokémon"}, opts.Spotlight)
	assert.Contains(t, opts.Charts, "platforms")
}

func TestReport(t *testing.T) {
	h := newServer(testApp(t), nil).routes()

	var p reportPayload
	decode(t, get(t, h, "/api/report?platform=Wii&region=Europe"), &p)
	assert.Equal(t, "Europe", p.Dashboard.Region)
	assert.Equal(t, 2, p.Dashboard.Overview.Records)
	assert.False(t, p.Dashboard.Overview.Fallback)
	assert.Equal(t, []string{"Wii"}, p.Criteria.Platforms)
	assert.Nil(t, p.Franchise)
	assert.Nil(t, p.Region)
}

func TestReportFallsBackWhenNothingMatches(t *testing.T) {
	h := newServer(testApp(t), nil).routes()

	var p reportPayload
	decode(t, get(t, h, "/api/report?year=9999"), &p)
	assert.True(t, p.Dashboard.Overview.Fallback)
	assert.Equal(t, 5, p.Dashboard.Overview.Records)
}

func TestBadQuery(t *testing.T) {
	h := newServer(testApp(t), nil).routes()

	for _, target := range []string{
		"/api/report?year=abc",
		"/api/report?region=Mars",
		"/api/region?compare_region=Mars",
		"/api/franchise?franchise=Nope",
		"/api/charts/platforms.png?year=x",
	} {
		t.Run(target, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, get(t, h, target).Code)
		})
	}
}

func TestFranchise(t *testing.T) {
	h := newServer(testApp(t), nil).routes()

	var body struct {
		Region string                   `json:"region"`
		Detail analysis.FranchiseDetail `json:"detail"`
	}
	decode(t, get(t, h, "/api/franchise?franchise=Mario&region=North+America"), &body)
	assert.Equal(t, "North America", body.Region)
	assert.Equal(t, "Mario", body.Detail.Franchise)
	assert.Equal(t, 2, body.Detail.Games)
	assert.Equal(t, 1985, body.Detail.FirstYear)
	assert.Equal(t, 2008, body.Detail.LastYear)
	assert.InDelta(t, 44.93, body.Detail.Sales, 1e-9)
}

func TestRegionDrillDown(t *testing.T) {
	h := newServer(testApp(t), nil).routes()

	var body struct {
		Fallback  bool                     `json:"fallback"`
		DrillDown analysis.RegionDrillDown `json:"drill_down"`
	}
	decode(t, get(t, h, "/api/region?compare_genre=Sports&compare_region=Europe"), &body)
	dd := body.DrillDown
	assert.Equal(t, "Sports", dd.Comparison.Genre)
	assert.Equal(t, "Europe", dd.Verdict.Selected)
	require.Len(t, dd.Comparison.Regions, 5)
	require.NotEmpty(t, dd.TopGames)
	assert.Equal(t, "Wii Sports", dd.TopGames[0].Title)
}

func TestSeries(t *testing.T) {
	h := newServer(testApp(t), nil).routes()

	var p seriesPayload
	decode(t, get(t, h, "/api/series?platform=Wii,NES"), &p)
	assert.Equal(t, []int{1985, 2006, 2008}, p.Years)
	require.Contains(t, p.Regions, "Japan")
	assert.InDeltaSlice(t, []float64{6.81, 3.77, 3.79}, p.Regions["Japan"], 1e-9)
	for name, values := range p.Regions {
		assert.Len(t, values, len(p.Years), name)
	}
}

func TestAggregate(t *testing.T) {
	h := newServer(testApp(t), nil).routes()

	var top aggregatePayload
	decode(t, get(t, h, "/api/aggregate?key=platform&column=jp&op=top&n=2"), &top)
	assert.Equal(t, analysis.OpTop, top.Op)
	assert.Equal(t, "jp", top.Column)
	require.Len(t, top.Groups, 2)
	assert.Equal(t, "Wii", top.Groups[0].Key)
	assert.InDelta(t, 7.56, top.Groups[0].Value, 1e-9)
	assert.Equal(t, "NES", top.Groups[1].Key)

	var byRegion aggregatePayload
	decode(t, get(t, h, "/api/aggregate?key=platform&region=Japan"), &byRegion)
	assert.Equal(t, "jp", byRegion.Column)
	assert.Len(t, byRegion.Groups, 4)

	var count aggregatePayload
	decode(t, get(t, h, "/api/aggregate?key=genre&op=count"), &count)
	require.NotEmpty(t, count.Counts)
	assert.Equal(t, analysis.Count{Key: "Sports", Count: 2}, count.Counts[0])

	var share aggregatePayload
	decode(t, get(t, h, "/api/aggregate?key=franchise&op=share"), &share)
	var total float64
	for _, g := range share.Groups {
		total += g.Value
	}
	assert.InDelta(t, 100, total, 1e-9)
}

func TestAggregateBadArguments(t *testing.T) {
	h := newServer(testApp(t), nil).routes()

	for _, target := range []string{
		"/api/aggregate",
		"/api/aggregate?key=studio",
		"/api/aggregate?key=platform&column=mars",
		"/api/aggregate?key=platform&op=median",
		"/api/aggregate?key=platform&n=ten",
		"/api/aggregate?key=platform&year=abc",
	} {
		t.Run(target, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, get(t, h, target).Code)
		})
	}
}

func TestChart(t *testing.T) {
	h := newServer(testApp(t), nil).routes()

	rec := get(t, h, "/api/charts/platforms.png?region=Japan")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	_, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/charts/pie.png").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/charts/platforms").Code)
}

func TestParseQuery(t *testing.T) {
	raw, err := parseQuery(url.Values{
		"year":           {"2006", "2008,2010"},
		"platform":       {"Wii, DS", ""},
		"genre":          {"Sports"},
		"region":         {"jp"},
		"compare_genre":  {"Racing"},
		"compare_region": {"eu"},
		"franchise":      {"Mario"},
	})
	require.NoError(t, err)
	assert.Equal(t, rawQuery{
		Region:    "jp",
		Years:     []int{2006, 2008, 2010},
		Platforms: []string{"Wii", "DS"},
		Genres:    []string{"Sports"},
		Genre:     "Racing",
		Compare:   "eu",
		Franchise: "Mario",
	}, raw)

	_, err = parseQuery(url.Values{"year": {"20x6"}})
	assert.Error(t, err)
}

func TestResolveDefaults(t *testing.T) {
	a := testApp(t)

	q, err := a.resolve(rawQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Global", q.Region.Name)
	assert.Equal(t, "North America", q.Compare.Name)
	assert.Equal(t, "Call of Duty", q.Franchise)
	assert.True(t, q.Criteria.IsEmpty())

	q, err = a.resolve(rawQuery{Franchise: analysis.OtherFranchise})
	require.NoError(t, err)
	assert.Equal(t, analysis.OtherFranchise, q.Franchise)
}
