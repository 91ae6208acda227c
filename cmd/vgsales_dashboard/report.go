package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"vgsales_dashboard/internal/analysis"
)

type reportPayload struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	Source      string                    `json:"source"`
	Criteria    analysis.Criteria         `json:"criteria"`
	Dashboard   analysis.Dashboard        `json:"dashboard"`
	Franchise   *analysis.FranchiseDetail `json:"franchise,omitempty"`
	Region      *analysis.RegionDrillDown `json:"region,omitempty"`
}

// computeReport builds the dashboard for q. With details set it also
// includes the franchise card and the regional drill-down.
func (a *dashboardApp) computeReport(q query, details bool) reportPayload {
	v := a.view(q)
	payload := reportPayload{
		GeneratedAt: time.Now().UTC(),
		Source:      a.source,
		Criteria:    q.Criteria,
		Dashboard:   analysis.BuildDashboard(v, q.Region, a.franchises),
	}
	if details {
		fd := analysis.DescribeFranchise(v.Table, q.Franchise, q.Region.Column, a.franchises)
		dd := analysis.DrillDown(v.Table, compareGenre(v, q), q.Compare, a.regions)
		payload.Franchise = &fd
		payload.Region = &dd
	}
	return payload
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the dashboard as text tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		q, err := a.resolve(flagQuery())
		if err != nil {
			return err
		}
		top, _ := cmd.Flags().GetInt("top")
		writeTextReport(cmd.OutOrStdout(), a.computeReport(q, true), top)
		return nil
	},
}

func init() {
	reportCmd.Flags().Int("top", 10, "rows shown per ranking")
}

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	warnColor    = color.New(color.FgYellow)
	goodColor    = color.New(color.FgGreen)
)

func writeTextReport(w io.Writer, p reportPayload, top int) {
	d := p.Dashboard
	headingColor.Fprintf(w, "Video game sales - %s\n", d.Region)
	fmt.Fprintf(w, "Source: %s\n", p.Source)
	if d.Overview.Fallback {
		warnColor.Fprintln(w, "No games match the filters; showing unfiltered data.")
	}
	fmt.Fprintln(w)

	headingColor.Fprintln(w, "Overview")
	renderTable(w, []string{"Metric", "Value"}, [][]string{
		{"Games", strconv.Itoa(d.Overview.Records)},
		{"Top release year", fmt.Sprintf("%d (%d games)", d.Overview.TopYear, d.Overview.TopYearCount)},
		{"Top genre", d.Overview.TopGenre},
		{"Top platform", d.Overview.TopPlatform},
	})

	headingColor.Fprintln(w, "Top platforms")
	renderTable(w, []string{"#", "Platform", "Sales"}, groupRows(d.Platforms, top))

	headingColor.Fprintln(w, "Top franchises")
	var rows [][]string
	for _, f := range d.Franchises {
		if top > 0 && len(rows) == top {
			break
		}
		rows = append(rows, []string{strconv.Itoa(f.Rank), f.Franchise, millions(f.Sales)})
	}
	renderTable(w, []string{"#", "Franchise", "Sales"}, rows)

	headingColor.Fprintln(w, "Spotlight")
	rows = nil
	for _, f := range d.Spotlight {
		rows = append(rows, []string{f.Franchise, millions(f.Sales), rankLabel(f.Rank)})
	}
	renderTable(w, []string{"Franchise", "Sales", "Rank"}, rows)

	if fd := p.Franchise; fd != nil {
		headingColor.Fprintf(w, "%s games\n", fd.Franchise)
		rows = nil
		for _, g := range fd.TopGames {
			rows = append(rows, []string{g.Title, g.Platform, strconv.Itoa(g.Year), millions(g.Sales)})
		}
		renderTable(w, []string{"Game", "Platform", "Year", "Sales"}, rows)
		fmt.Fprintf(w, "Games: %d  Period: %s  Average per game: %s\n\n",
			fd.Games, period(fd.FirstYear, fd.LastYear), millions(fd.AvgSales))
	}

	if dd := p.Region; dd != nil {
		writeRegionReport(w, dd)
	}
}

func writeRegionReport(w io.Writer, dd *analysis.RegionDrillDown) {
	v := dd.Verdict
	headingColor.Fprintf(w, "%s in %s\n", dd.Comparison.Genre, v.Selected)
	fmt.Fprintf(w, "Share: %.1f%%  Rank: %s\n", v.SharePct, rankLabel(v.Rank))
	if v.MostIsSelected {
		goodColor.Fprintln(w, "Most popular in: this region")
	} else {
		fmt.Fprintf(w, "Most popular in: %s (+%.1f%%)\n", v.MostPopular, v.MostDelta)
	}
	if v.LeastIsSelected {
		warnColor.Fprintln(w, "Least popular in: this region")
	} else {
		fmt.Fprintf(w, "Least popular in: %s (-%.1f%%)\n", v.LeastPopular, v.LeastDelta)
	}
	fmt.Fprintln(w)

	var rows [][]string
	for _, r := range dd.Comparison.Regions {
		rows = append(rows, []string{r.Region, fmt.Sprintf("%.1f%%", r.SharePct), rankLabel(r.Rank)})
	}
	renderTable(w, []string{"Region", "Share", "Rank"}, rows)

	rows = nil
	for _, g := range dd.TopGames {
		rows = append(rows, []string{g.Title, g.Platform, strconv.Itoa(g.Year), millions(g.Sales)})
	}
	renderTable(w, []string{"Game", "Platform", "Year", "Sales"}, rows)
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
	fmt.Fprintln(w)
}

func groupRows(groups []analysis.Group, top int) [][]string {
	var rows [][]string
	for i, g := range groups {
		if top > 0 && i == top {
			break
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), g.Key, millions(g.Value)})
	}
	return rows
}

func millions(v float64) string {
	return fmt.Sprintf("$%.2fM", v)
}

func rankLabel(rank int) string {
	if rank == 0 {
		return "N/A"
	}
	return "#" + strconv.Itoa(rank)
}

func period(first, last int) string {
	if first == 0 {
		return "-"
	}
	return fmt.Sprintf("%d - %d", first, last)
}
