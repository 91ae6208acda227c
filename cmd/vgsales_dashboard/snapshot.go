package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vgsales_dashboard/internal/store"
)

const defaultSnapshotPath = "data/vgsales.db"

// takeSnapshot loads the configured source once and stores the normalized
// table in st.
func takeSnapshot(ctx context.Context, st *store.Store) (store.Snapshot, error) {
	t, stats, err := loadSource(ctx)
	if err != nil {
		return store.Snapshot{}, err
	}
	if t.Len() == 0 {
		return store.Snapshot{}, fmt.Errorf("source %s has no usable rows", cfg.Source)
	}

	snapshot := store.Snapshot{
		CollectedAt:  time.Now().UTC(),
		Source:       cfg.Source,
		Rows:         stats.Rows,
		Kept:         stats.Kept,
		MissingYear:  stats.MissingYear,
		MissingGenre: stats.MissingGenre,
	}
	id, err := st.SaveTable(ctx, snapshot, t)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	snapshot.ID = id
	return snapshot, nil
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Optional ingestion cache: store the normalized source in SQLite",
	Long: `Optional offline ingestion cache. Load and normalize the CSV source once and
store the result in a SQLite file. Other commands read it with --snapshot
instead of refetching the source; they never write to it. This is the only
command that writes a snapshot, and the dashboard works without one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Snapshot
		if path == "" {
			path = defaultSnapshotPath
		}
		st, err := store.Open(path)
		if err != nil {
			return err
		}
		defer st.Close()

		if list, _ := cmd.Flags().GetBool("list"); list {
			snapshots, err := st.ListSnapshots(cmd.Context())
			if err != nil {
				return err
			}
			writeSnapshotList(cmd.OutOrStdout(), snapshots)
			return nil
		}

		// The snapshot is always taken from the source, never from itself.
		snapshot, err := takeSnapshot(cmd.Context(), st)
		if err != nil {
			return err
		}
		logger.Info("saved snapshot",
			zap.Int64("id", snapshot.ID),
			zap.String("path", path),
			zap.Int("rows", snapshot.Rows),
			zap.Int("kept", snapshot.Kept))
		fmt.Fprintf(cmd.OutOrStdout(), "saved snapshot %d (%d of %d rows kept) to %s\n", snapshot.ID, snapshot.Kept, snapshot.Rows, path)
		return nil
	},
}

func init() {
	snapshotCmd.Flags().Bool("list", false, "list stored snapshots instead of taking one")
}

func writeSnapshotList(w io.Writer, snapshots []store.Snapshot) {
	rows := make([][]string, 0, len(snapshots))
	for _, s := range snapshots {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.CollectedAt.Format(time.RFC3339),
			s.Source,
			strconv.Itoa(s.Kept),
			strconv.Itoa(s.MissingYear),
			strconv.Itoa(s.MissingGenre),
		})
	}
	renderTable(w, []string{"ID", "Collected", "Source", "Games", "No year", "No genre"}, rows)
}
