package cli

import (
	"fmt"

	"github.com/rcliao/vibecast/internal/kv"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics (sqlite only)",
		RunE:  runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	svc, done, err := openService()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer done()

	sq, ok := svc.Store().(*kv.SQLiteStore)
	if !ok {
		return fmt.Errorf("backend %q has no statistics", svc.Backend())
	}

	stats, err := sq.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	printJSON(cmd, stats)
	return nil
}
