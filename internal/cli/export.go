package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the aura state and history as JSON",
		Long:  "Export the stored aura state and the full reaction history as one JSON document, suitable for import on another device.",
		RunE:  runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	svc, done, err := openService()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer done()

	printJSON(cmd, svc.Export(cmd.Context()))
	return nil
}
