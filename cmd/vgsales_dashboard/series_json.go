package main

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"vgsales_dashboard/internal/analysis"
)

type seriesPayload struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Criteria    analysis.Criteria    `json:"criteria"`
	Fallback    bool                 `json:"fallback"`
	Years       []int                `json:"years"`
	Regions     map[string][]float64 `json:"regions"`
}

// computeSeries returns yearly sales per region aligned on the years of the
// view; a region without sales in a year gets 0 there.
func (a *dashboardApp) computeSeries(q query) seriesPayload {
	v := a.view(q)
	years := v.Table.Years()
	index := make(map[string]int, len(years))
	for i, y := range years {
		index[strconv.Itoa(y)] = i
	}

	regions := make(map[string][]float64, len(a.regions))
	for name, groups := range analysis.RegionSeries(v.Table, a.regions) {
		values := make([]float64, len(years))
		for _, g := range groups {
			if i, ok := index[g.Key]; ok {
				values[i] = g.Value
			}
		}
		regions[name] = values
	}

	return seriesPayload{
		GeneratedAt: time.Now().UTC(),
		Criteria:    q.Criteria,
		Fallback:    v.Fallback,
		Years:       years,
		Regions:     regions,
	}
}

var seriesJSONCmd = &cobra.Command{
	Use:   "series-json",
	Short: "Write yearly sales per region as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		q, err := a.resolve(flagQuery())
		if err != nil {
			return err
		}
		outPath, _ := cmd.Flags().GetString("out")
		return writeJSON(outPath, cmd.OutOrStdout(), a.computeSeries(q))
	},
}

func init() {
	seriesJSONCmd.Flags().String("out", "series.json", "output file path or '-' for stdout")
}
