package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rcliao/vibecast/internal/app"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import history (and optionally aura state) from JSON",
		Long:  "Import from a file or stdin. Expects the format produced by export. History entries are appended in order.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runImport,
	}

	cmd.Flags().Bool("with-aura", false, "Also replace the stored aura state")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	withAura, _ := cmd.Flags().GetBool("with-aura")

	var r io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open file: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var doc app.Export
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}

	svc, done, err := openService()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer done()

	res, err := svc.Import(cmd.Context(), doc, withAura)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	if textOutput() {
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d, aura restored: %v\n", res.Imported, res.Skipped, res.AuraRestored)
		return nil
	}
	printJSON(cmd, res)
	return nil
}
