package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var reportJSONCmd = &cobra.Command{
	Use:   "report-json",
	Short: "Write the dashboard, franchise card and regional drill-down as JSON",
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
		return writeJSON(outPath, cmd.OutOrStdout(), a.computeReport(q, true))
	},
}

func init() {
	reportJSONCmd.Flags().String("out", "report.json", "output file path or '-' for stdout")
}

// writeJSON encodes payload to path, or to stdout when path is "-".
func writeJSON(path string, stdout io.Writer, payload any) (err error) {
	out := stdout
	if path != "-" {
		if err := ensureDirForFile(path); err != nil {
			return err
		}
		file, ferr := os.Create(path)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close %s: %w", path, cerr)
			}
		}()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
