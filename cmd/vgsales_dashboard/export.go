package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vgsales_dashboard/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export-xlsx",
	Short: "Write the dashboard and regional comparison to an Excel workbook",
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

		p := a.computeReport(q, true)
		wb := export.Workbook{
			Dashboard: p.Dashboard,
			Criteria:  p.Criteria,
			Franchise: p.Franchise,
			Region:    p.Region,
		}
		if outPath == "-" {
			return export.Write(cmd.OutOrStdout(), wb)
		}
		if err := ensureDirForFile(outPath); err != nil {
			return err
		}
		if err := export.SaveAs(outPath, wb); err != nil {
			return err
		}
		logger.Info("workbook written", zap.String("path", outPath))
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "vgsales.xlsx", "output XLSX path or '-' for stdout")
}
