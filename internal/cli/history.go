package cli

import (
	"fmt"

	"github.com/rcliao/vibecast/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List episode reactions",
		RunE:  runHistory,
	}

	cmd.Flags().Bool("summary", false, "Print totals per mood instead of entries")
	cmd.Flags().IntP("limit", "l", 0, "Only the most recent N entries (0 = all)")

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	summary, _ := cmd.Flags().GetBool("summary")
	limit, _ := cmd.Flags().GetInt("limit")

	svc, done, err := openService()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer done()

	if summary {
		sum := svc.Summary(cmd.Context())
		if textOutput() {
			fmt.Fprintf(cmd.OutOrStdout(), "%d episode(s), average aura %.2f\n", sum.Episodes, sum.AverageAura)
			for _, mood := range model.Moods {
				if n := sum.ByMood[mood]; n > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s %d\n", mood, n)
				}
			}
			return nil
		}
		printJSON(cmd, sum)
		return nil
	}

	snap := svc.History(cmd.Context())
	entries := snap.Entries
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	if textOutput() {
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No podcast history yet.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  hosted by %s  aura %d  you felt %s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04"), e.EpisodeName, e.Host, e.AuraScore, e.MoodReaction)
		}
		return nil
	}
	snap.Entries = entries
	printJSON(cmd, snap)
	return nil
}
