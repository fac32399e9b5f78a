package cli

import (
	"fmt"
	"strconv"

	"github.com/rcliao/vibecast/internal/aura"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "aura [score]",
		Short: "Show the aura presentation",
		Long:  "Show the tagline, color, vibe label and quote for a score, or for the stored state when no score is given. Never advances the state.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAura,
	}

	cmd.Flags().String("host", "", "Host name for the motivational quote")

	RootCmd.AddCommand(cmd)
}

func runAura(cmd *cobra.Command, args []string) error {
	host, _ := cmd.Flags().GetString("host")

	if len(args) == 1 {
		score, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("score must be an integer: %w", err)
		}
		p := aura.Present(score, host)
		if textOutput() {
			fmt.Fprintf(cmd.OutOrStdout(), "%d: %s / %s / %s\n", score, p.VibeLabel, p.Color, p.Tagline)
			if p.Quote != "" {
				fmt.Fprintln(cmd.OutOrStdout(), p.Quote)
			}
			return nil
		}
		printJSON(cmd, p)
		return nil
	}

	svc, done, err := openService()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer done()

	v := svc.Peek(cmd.Context(), host)
	if textOutput() {
		writeView(cmd.OutOrStdout(), v)
		return nil
	}
	printJSON(cmd, v)
	return nil
}
