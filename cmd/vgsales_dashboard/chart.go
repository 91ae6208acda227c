package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"vgsales_dashboard/internal/analysis"
	"vgsales_dashboard/internal/charts"
)

// buildChart returns the named chart for q.
func (a *dashboardApp) buildChart(name string, q query) (charts.Chart, error) {
	switch name {
	case "platforms", "years", "franchises":
		d := analysis.BuildDashboard(a.view(q), q.Region, a.franchises)
		switch name {
		case "platforms":
			return charts.Platforms(d), nil
		case "years":
			return charts.Years(d), nil
		default:
			return charts.Franchises(d), nil
		}
	case "franchise":
		v := a.view(q)
		return charts.FranchiseGames(analysis.DescribeFranchise(v.Table, q.Franchise, q.Region.Column, a.franchises), q.Region.Name), nil
	case "regions", "genres", "evolution":
		v := a.view(q)
		dd := analysis.DrillDown(v.Table, compareGenre(v, q), q.Compare, a.regions)
		switch name {
		case "regions":
			return charts.RegionShares(dd), nil
		case "genres":
			return charts.GenreShares(dd), nil
		default:
			return charts.GenreEvolution(dd), nil
		}
	case "series":
		return charts.RegionSeries(analysis.RegionSeries(a.view(q).Table, a.regions), a.regions), nil
	}
	return nil, fmt.Errorf("unknown chart %q (available: %s)", name, strings.Join(charts.Names, ", "))
}

// writeChart renders the named chart to stdout when path is "-", otherwise
// to path in the format its extension names (png, svg, pdf, ...).
func (a *dashboardApp) writeChart(stdout io.Writer, path, name string, q query, width, height vg.Length) error {
	c, err := a.buildChart(name, q)
	if err != nil {
		return err
	}
	if path == "-" {
		return charts.Render(stdout, c, width, height)
	}
	if err := ensureDirForFile(path); err != nil {
		return err
	}
	return charts.Save(path, c, width, height)
}

var chartCmd = &cobra.Command{
	Use:   "chart NAME",
	Short: "Render one dashboard chart as PNG, SVG or PDF",
	Long:  "Render one dashboard chart. The format follows the --out extension. NAME is one of: " + strings.Join(charts.Names, ", ") + ".",
	Args:  cobra.ExactArgs(1),
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
		width, _ := cmd.Flags().GetFloat64("width")
		height, _ := cmd.Flags().GetFloat64("height")
		if outPath == "" {
			outPath = args[0] + ".png"
		}

		return a.writeChart(cmd.OutOrStdout(), outPath, args[0], q, vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch)
	},
}

func init() {
	chartCmd.Flags().String("out", "", "output path, format from its extension, or '-' for PNG on stdout (default: NAME.png)")
	chartCmd.Flags().Float64("width", 10, "width in inches")
	chartCmd.Flags().Float64("height", 6, "height in inches")
}
