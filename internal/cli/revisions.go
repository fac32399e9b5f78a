package cli

import (
	"encoding/json"
	"fmt"

	"github.com/rcliao/vibecast/internal/aura"
	"github.com/rcliao/vibecast/internal/history"
	"github.com/rcliao/vibecast/internal/kv"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "revisions [aura|history]",
		Short: "Show retained revisions of a stored key (sqlite only)",
		Args:  cobra.ExactArgs(1),
		RunE:  runRevisions,
	}

	cmd.Flags().Bool("values", false, "Include the stored values")

	RootCmd.AddCommand(cmd)
}

type revisionView struct {
	kv.Revision
	Value json.RawMessage `json:"value,omitempty"`
}

func runRevisions(cmd *cobra.Command, args []string) error {
	withValues, _ := cmd.Flags().GetBool("values")

	var key string
	switch args[0] {
	case "aura":
		key = aura.StateKey
	case "history":
		key = history.Key
	default:
		key = args[0]
	}

	svc, done, err := openService()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer done()

	sq, ok := svc.Store().(*kv.SQLiteStore)
	if !ok {
		return fmt.Errorf("backend %q keeps no revisions", svc.Backend())
	}

	revs, err := sq.Revisions(cmd.Context(), key)
	if err != nil {
		return fmt.Errorf("revisions: %w", err)
	}

	if textOutput() {
		for _, r := range revs {
			fmt.Fprintf(cmd.OutOrStdout(), "v%d  %s  %s  %d bytes\n", r.Version, r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Size)
		}
		return nil
	}

	out := make([]revisionView, 0, len(revs))
	for _, r := range revs {
		v := revisionView{Revision: r}
		if withValues && json.Valid(r.Value) {
			v.Value = r.Value
		}
		out = append(out, v)
	}
	printJSON(cmd, out)
	return nil
}
