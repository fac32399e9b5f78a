package cli

import (
	"fmt"
	"io"

	"github.com/rcliao/vibecast/internal/app"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Record today's app open and show the aura",
		Long:  "Advance the aura state for today (at most once per calendar day) and print the score, streak and display strings.",
		RunE:  runOpen,
	}

	cmd.Flags().String("host", "", "Host name for the motivational quote")

	RootCmd.AddCommand(cmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	host, _ := cmd.Flags().GetString("host")

	svc, done, err := openService()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer done()

	v := svc.Foreground(cmd.Context(), host)

	if textOutput() {
		writeView(cmd.OutOrStdout(), v)
		return nil
	}
	printJSON(cmd, v)
	return nil
}

func writeView(w io.Writer, v app.View) {
	st := v.State
	fmt.Fprintf(w, "Aura %d (%s, %s)\n", st.AuraScore, v.Presentation.VibeLabel, v.Presentation.Color)
	fmt.Fprintln(w, v.Presentation.Tagline)
	if v.Presentation.Quote != "" {
		fmt.Fprintln(w, v.Presentation.Quote)
	}
	fmt.Fprintf(w, "streak: %d day(s), missed: %d, last opened: %s\n",
		st.StreakCount, st.ConsecutiveMissedDays, st.LastOpenedDate)
}
