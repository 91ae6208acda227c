package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"vgsales_dashboard/internal/analysis"
)

const (
	SheetOverview   = "Overview"
	SheetPlatforms  = "Platforms"
	SheetYears      = "Years"
	SheetFranchises = "Franchises"
	SheetFranchise  = "Franchise games"
	SheetRegions    = "Regions"
	SheetDrillDown  = "Region games"
)

// Workbook is the content of an export. Franchise and Region are optional.
type Workbook struct {
	Dashboard analysis.Dashboard
	Criteria  analysis.Criteria
	Franchise *analysis.FranchiseDetail
	Region    *analysis.RegionDrillDown
}

type sheet struct {
	name    string
	headers []string
	rows    [][]any
}

// Write encodes wb as an XLSX document into w.
func Write(w io.Writer, wb Workbook) error {
	f, err := build(wb)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// SaveAs writes wb to path.
func SaveAs(path string, wb Workbook) error {
	f, err := build(wb)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func build(wb Workbook) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetOverview); err != nil {
		f.Close()
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	for _, s := range sheets(wb) {
		if s.name != SheetOverview {
			if _, err := f.NewSheet(s.name); err != nil {
				f.Close()
				return nil, err
			}
		}
		if err := writeSheet(f, s, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}
	return f, nil
}

func sheets(wb Workbook) []sheet {
	d := wb.Dashboard
	o := d.Overview
	out := []sheet{{
		name:    SheetOverview,
		headers: []string{"Metric", "Value"},
		rows: [][]any{
			{"Region", d.Region},
			{"Years", joinInts(wb.Criteria.Years)},
			{"Platforms", joinStrings(wb.Criteria.Platforms)},
			{"Genres", joinStrings(wb.Criteria.Genres)},
			{"Showing unfiltered data", o.Fallback},
			{"Games", o.Records},
			{"Top release year", o.TopYear},
			{"Games in top year", o.TopYearCount},
			{"Top genre", o.TopGenre},
			{"Top platform", o.TopPlatform},
		},
	}}

	out = append(out, groupSheet(SheetPlatforms, "Platform", d.Platforms))
	out = append(out, groupSheet(SheetYears, "Year", d.Years))

	franchises := sheet{name: SheetFranchises, headers: []string{"Rank", "Franchise", "Sales"}}
	for _, f := range d.Franchises {
		franchises.rows = append(franchises.rows, []any{f.Rank, f.Franchise, f.Sales})
	}
	out = append(out, franchises)

	if fd := wb.Franchise; fd != nil {
		s := sheet{name: SheetFranchise, headers: []string{"Title", "Platform", "Year", "Genre", "Sales"}}
		for _, g := range fd.TopGames {
			s.rows = append(s.rows, []any{g.Title, g.Platform, g.Year, g.Genre, g.Sales})
		}
		s.rows = append(s.rows,
			[]any{},
			[]any{"Franchise", fd.Franchise},
			[]any{"Games", fd.Games},
			[]any{"First year", fd.FirstYear},
			[]any{"Last year", fd.LastYear},
			[]any{"Average sales per game", fd.AvgSales},
		)
		out = append(out, s)
	}

	if dd := wb.Region; dd != nil {
		s := sheet{name: SheetRegions, headers: []string{"Region", "Share (%)", "Rank"}}
		for _, r := range dd.Comparison.Regions {
			s.rows = append(s.rows, []any{r.Region, r.SharePct, rankCell(r.Rank)})
		}
		s.rows = append(s.rows,
			[]any{},
			[]any{"Genre", dd.Comparison.Genre},
			[]any{"Most popular region", dd.Comparison.MostPopular},
			[]any{"Least popular region", dd.Comparison.LeastPopular},
		)
		out = append(out, s)

		games := sheet{name: SheetDrillDown, headers: []string{"Title", "Platform", "Year", "Sales"}}
		for _, g := range dd.TopGames {
			games.rows = append(games.rows, []any{g.Title, g.Platform, g.Year, g.Sales})
		}
		out = append(out, games)
	}
	return out
}

func groupSheet(name, key string, groups []analysis.Group) sheet {
	s := sheet{name: name, headers: []string{key, "Sales"}}
	for _, g := range groups {
		s.rows = append(s.rows, []any{g.Key, g.Value})
	}
	return s
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	for i, header := range s.headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(s.name, cell, header); err != nil {
			return err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.name, col, col, 22); err != nil {
			return err
		}
	}
	if len(s.headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(s.headers), 1)
		if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
			return err
		}
	}
	for r, row := range s.rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(s.name, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func rankCell(rank int) any {
	if rank == 0 {
		return "N/A"
	}
	return rank
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return joinStrings(parts)
}

func joinStrings(values []string) string {
	if len(values) == 0 {
		return "all"
	}
	return strings.Join(values, ", ")
}
