package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"vgsales_dashboard/internal/analysis"
	"vgsales_dashboard/internal/dataset"
	"vgsales_dashboard/internal/store"
)

// dashboardApp holds the loaded dataset and everything derived once at
// startup. It is read-only after construction.
type dashboardApp struct {
	table      *dataset.Table
	source     string
	franchises analysis.FranchiseConfig
	classifier *analysis.FranchiseClassifier
	regions    []analysis.Region
	region     analysis.Region
	logger     *zap.Logger
}

func newDashboardApp(t *dataset.Table, source string, fc analysis.FranchiseConfig, defaultRegion string, logger *zap.Logger) (*dashboardApp, error) {
	regions := analysis.DefaultRegions()
	region, err := analysis.FindRegion(regions, defaultRegion)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &dashboardApp{
		table:      t,
		source:     source,
		franchises: fc,
		classifier: analysis.NewFranchiseClassifier(fc.Franchises),
		regions:    regions,
		region:     region,
		logger:     logger,
	}, nil
}

// openDashboard loads the dataset named by the global config.
func openDashboard(ctx context.Context) (*dashboardApp, error) {
	t, source, err := loadTable(ctx)
	if err != nil {
		return nil, err
	}
	fc, err := analysis.LoadFranchiseConfig(cfg.Franchises)
	if err != nil {
		return nil, err
	}
	return newDashboardApp(t, source, fc, cfg.Region, logger)
}

func loadTable(ctx context.Context) (*dataset.Table, string, error) {
	if cfg.Snapshot == "" {
		t, _, err := loadSource(ctx)
		return t, cfg.Source, err
	}

	st, err := store.Open(cfg.Snapshot)
	if err != nil {
		return nil, "", err
	}
	defer st.Close()

	snapshot, t, err := st.LoadLatest(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoSnapshot) {
			return nil, "", fmt.Errorf("snapshot %s: %w; run the snapshot command first", cfg.Snapshot, err)
		}
		return nil, "", err
	}
	logger.Info("dataset loaded from snapshot",
		zap.String("snapshot", cfg.Snapshot),
		zap.Int64("id", snapshot.ID),
		zap.String("source", snapshot.Source),
		zap.Int("kept", t.Len()))
	return t, snapshot.Source, nil
}

func loadSource(ctx context.Context) (*dataset.Table, dataset.Stats, error) {
	return dataset.LoadWithStats(ctx, cfg.Source, dataset.Options{
		Client:    &http.Client{Timeout: cfg.HTTPTimeout},
		UserAgent: cfg.UserAgent,
		Logger:    logger,
	})
}

// rawQuery is a selection as typed by the user, before validation.
type rawQuery struct {
	Region    string
	Years     []int
	Platforms []string
	Genres    []string
	Genre     string
	Compare   string
	Franchise string
}

type query struct {
	Region    analysis.Region
	Criteria  analysis.Criteria
	Genre     string
	Compare   analysis.Region
	Franchise string
}

func flagQuery() rawQuery {
	return rawQuery{
		Region:    cfg.Region,
		Years:     sel.years,
		Platforms: sel.platforms,
		Genres:    sel.genres,
		Genre:     sel.compareGenre,
		Compare:   sel.compareRegion,
		Franchise: sel.franchise,
	}
}

func (a *dashboardApp) resolve(raw rawQuery) (query, error) {
	q := query{
		Region: a.region,
		Criteria: analysis.Criteria{
			Years:     raw.Years,
			Platforms: trimAll(raw.Platforms),
			Genres:    trimAll(raw.Genres),
		},
		Genre:   strings.TrimSpace(raw.Genre),
		Compare: a.regions[0],
	}
	if raw.Region != "" {
		r, err := analysis.FindRegion(a.regions, raw.Region)
		if err != nil {
			return query{}, err
		}
		q.Region = r
	}
	if raw.Compare != "" {
		r, err := analysis.FindRegion(a.regions, raw.Compare)
		if err != nil {
			return query{}, fmt.Errorf("compare: %w", err)
		}
		q.Compare = r
	}

	q.Franchise = strings.TrimSpace(raw.Franchise)
	if q.Franchise == "" {
		q.Franchise = a.defaultFranchise()
	} else if !a.knownFranchise(q.Franchise) {
		return query{}, fmt.Errorf("unknown franchise: %q", q.Franchise)
	}
	return q, nil
}

func (a *dashboardApp) defaultFranchise() string {
	if len(a.franchises.Spotlight) > 0 {
		return a.franchises.Spotlight[0]
	}
	if names := a.classifier.Names(); len(names) > 0 {
		return names[0]
	}
	return analysis.OtherFranchise
}

func (a *dashboardApp) knownFranchise(name string) bool {
	if name == analysis.OtherFranchise {
		return true
	}
	for _, n := range a.classifier.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func (a *dashboardApp) view(q query) analysis.View {
	v := analysis.NewView(a.table, q.Criteria, a.classifier)
	if v.Fallback {
		a.logger.Debug("no rows match selection, showing unfiltered data",
			zap.Ints("years", q.Criteria.Years),
			zap.Strings("platforms", q.Criteria.Platforms),
			zap.Strings("genres", q.Criteria.Genres))
	}
	return v
}

// compareGenre is the selected genre, or the first genre of the view.
func compareGenre(v analysis.View, q query) string {
	if q.Genre != "" {
		return q.Genre
	}
	if genres := v.Table.Genres(); len(genres) > 0 {
		return genres[0]
	}
	return ""
}

// options lists the values the selection controls offer.
type options struct {
	Regions    []string `json:"regions"`
	Years      []int    `json:"years"`
	Platforms  []string `json:"platforms"`
	Genres     []string `json:"genres"`
	Franchises []string `json:"franchises"`
	Spotlight  []string `json:"spotlight"`
	Charts     []string `json:"charts"`
}

func (a *dashboardApp) options(charts []string) options {
	regions := make([]string, 0, len(a.regions))
	for _, r := range a.regions {
		regions = append(regions, r.Name)
	}
	return options{
		Regions:    regions,
		Years:      a.table.Years(),
		Platforms:  a.table.Platforms(),
		Genres:     a.table.Genres(),
		Franchises: a.classifier.Names(),
		Spotlight:  a.franchises.Spotlight,
		Charts:     charts,
	}
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func ensureDirForFile(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
