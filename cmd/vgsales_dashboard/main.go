package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vgsales_dashboard/internal/config"
	"vgsales_dashboard/internal/logging"
)

var (
	cfgFile string
	cfg     config.Config
	logger  = zap.NewNop()

	sel selectionFlags
)

// selectionFlags mirror the dashboard controls.
type selectionFlags struct {
	years         []int
	platforms     []string
	genres        []string
	compareGenre  string
	compareRegion string
	franchise     string
}

var rootCmd = &cobra.Command{
	Use:   "vgsales_dashboard",
	Short: "Video game sales dashboard",
	Long: `Explore video game sales by platform, year, genre, franchise and region.

Data is read from a CSV source (local path, http(s), file:// or s3:// URL) or
from a SQLite snapshot written by the snapshot command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg = loaded

		l, err := logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml)")
	pf.String("source", config.DefaultSource, "CSV source: path, http(s), file:// or s3:// URL")
	pf.String("snapshot", "", "read the dataset from this SQLite snapshot (optional cache written by the snapshot command) instead of the source")
	pf.String("franchises", "franchises.yaml", "franchise list (yaml)")
	pf.Duration("http-timeout", 0, "timeout for fetching the source")
	pf.String("region", "", "sales region: Global, North America, Europe, Japan, Rest of World")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: console or json")
	pf.String("log-file", "", "rotate logs into this file instead of stderr")

	pf.IntSliceVar(&sel.years, "year", nil, "release years to keep (repeatable)")
	pf.StringSliceVar(&sel.platforms, "platform", nil, "platforms to keep (repeatable)")
	pf.StringSliceVar(&sel.genres, "genre", nil, "genres to keep (repeatable)")
	pf.StringVar(&sel.compareGenre, "compare-genre", "", "genre for the regional comparison (default: first genre)")
	pf.StringVar(&sel.compareRegion, "compare-region", "", "region for the regional drill-down (default: North America)")
	pf.StringVar(&sel.franchise, "franchise", "", "franchise to detail (default: first spotlight franchise)")

	rootCmd.AddCommand(serveCmd, reportCmd, reportJSONCmd, seriesJSONCmd, aggregateCmd, exportCmd, chartCmd, snapshotCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
