package cli

import (
	"fmt"
	"strings"

	"github.com/rcliao/vibecast/internal/app"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "react [episode name]",
		Short: "Record a mood reaction to a finished episode",
		Long:  "Append a mood reaction to the history, with a snapshot of the current aura score. Mood is one of 😌 🧠 💥 😭 😴 or calm, mind-blown, hyped, moved, sleepy.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runReact,
	}

	cmd.Flags().StringP("mood", "m", "", "Mood reaction (required)")
	cmd.Flags().String("host", "", "Host name(s) of the episode")

	cmd.MarkFlagRequired("mood")

	RootCmd.AddCommand(cmd)
}

func runReact(cmd *cobra.Command, args []string) error {
	mood, _ := cmd.Flags().GetString("mood")
	host, _ := cmd.Flags().GetString("host")

	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return fmt.Errorf("episode name is required")
	}

	svc, done, err := openService()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer done()

	e, saved, err := svc.React(cmd.Context(), app.ReactParams{
		EpisodeName: name,
		Host:        host,
		Mood:        mood,
	})
	if err != nil {
		return fmt.Errorf("react: %w", err)
	}

	if textOutput() {
		if saved {
			fmt.Fprintf(cmd.OutOrStdout(), "You felt %s after %q (aura %d)\n", e.MoodReaction, e.EpisodeName, e.AuraScore)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Reaction not saved: store unavailable")
		}
		return nil
	}
	printJSON(cmd, struct {
		Saved bool        `json:"saved"`
		Entry interface{} `json:"entry"`
	}{saved, e})
	return nil
}
