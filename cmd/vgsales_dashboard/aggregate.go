package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vgsales_dashboard/internal/analysis"
	"vgsales_dashboard/internal/dataset"
)

const defaultTopN = 10

type aggregateRequest struct {
	Op     analysis.AggregateOp
	Key    analysis.GroupKey
	Column dataset.SalesColumn
	N      int
}

// parseAggregate validates the aggregation arguments. An empty op means top,
// an empty column means col, and an empty n means defaultTopN for top and
// every group otherwise.
func parseAggregate(op, key, column, n string, col dataset.SalesColumn) (aggregateRequest, error) {
	req := aggregateRequest{Op: analysis.OpTop, Column: col}
	var err error
	if strings.TrimSpace(op) != "" {
		if req.Op, err = analysis.ParseAggregateOp(op); err != nil {
			return aggregateRequest{}, err
		}
	}
	if req.Key, err = analysis.ParseGroupKey(key); err != nil {
		return aggregateRequest{}, err
	}
	if strings.TrimSpace(column) != "" {
		if req.Column, err = dataset.ParseSalesColumn(column); err != nil {
			return aggregateRequest{}, err
		}
	}
	if n = strings.TrimSpace(n); n == "" {
		if req.Op == analysis.OpTop {
			req.N = defaultTopN
		}
	} else if req.N, err = strconv.Atoi(n); err != nil {
		return aggregateRequest{}, fmt.Errorf("invalid n: %q", n)
	}
	return req, nil
}

type aggregatePayload struct {
	Criteria analysis.Criteria `json:"criteria"`
	Fallback bool              `json:"fallback"`
	analysis.Aggregation
}

func (a *dashboardApp) aggregate(q query, req aggregateRequest) aggregatePayload {
	v := a.view(q)
	return aggregatePayload{
		Criteria:    q.Criteria,
		Fallback:    v.Fallback,
		Aggregation: analysis.Aggregate(v.Table, req.Op, req.Key, req.Column, req.N),
	}
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Sum, count, rank or share sales grouped by one field",
	Long: `Group the selected games by platform, year, genre, franchise or publisher
and print the sum, row count, top-N or percentage share of a sales column
(global, na, eu, jp, other). The column defaults to the --region column.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		q, err := a.resolve(flagQuery())
		if err != nil {
			return err
		}
		op, _ := cmd.Flags().GetString("op")
		key, _ := cmd.Flags().GetString("by")
		column, _ := cmd.Flags().GetString("column")
		n, _ := cmd.Flags().GetString("limit")
		req, err := parseAggregate(op, key, column, n, q.Region.Column)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON("-", cmd.OutOrStdout(), a.aggregate(q, req))
		}
		writeAggregation(cmd.OutOrStdout(), a.aggregate(q, req))
		return nil
	},
}

func init() {
	aggregateCmd.Flags().String("op", "top", "sum, count, top or share")
	aggregateCmd.Flags().String("by", "platform", "platform, year, genre, franchise or publisher")
	aggregateCmd.Flags().String("column", "", "sales column: global, na, eu, jp, other (default: region column)")
	aggregateCmd.Flags().String("limit", "", "number of groups (default: 10 for top, all otherwise)")
	aggregateCmd.Flags().Bool("json", false, "print JSON instead of a table")
}

func writeAggregation(w io.Writer, p aggregatePayload) {
	if p.Fallback {
		warnColor.Fprintln(w, "No games match the filters; showing unfiltered data.")
	}
	var rows [][]string
	if p.Op == analysis.OpCount {
		for i, c := range p.Counts {
			rows = append(rows, []string{strconv.Itoa(i + 1), c.Key, strconv.Itoa(c.Count)})
		}
		renderTable(w, []string{"#", p.Key, "Games"}, rows)
		return
	}
	for i, g := range p.Groups {
		value := millions(g.Value)
		if p.Op == analysis.OpShare {
			value = fmt.Sprintf("%.1f%%", g.Value)
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), g.Key, value})
	}
	renderTable(w, []string{"#", p.Key, p.Column}, rows)
}
