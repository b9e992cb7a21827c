package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lexcodex/cartograph/scanner"
	"github.com/lexcodex/cartograph/tui"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [path]",
		Short: "Open the terminal dashboard for a codebase",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			abs, err := filepath.Abs(root)
			if err != nil {
				return err
			}
			id := scanner.ProjectID(abs)
			result, err := scanner.Scan(cmd.Context(), abs, id)
			if err != nil {
				return err
			}
			rescan := func(ctx context.Context) (*scanner.ScanResult, error) {
				return scanner.Scan(ctx, abs, id)
			}
			return tui.Run(cmd.Context(), result, rescan)
		},
	}
}
