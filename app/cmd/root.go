// Package cmd wires the cartograph cobra command tree.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexcodex/cartograph/persistence"
)

var (
	cfgFile string

	globalCfg *persistence.Config
)

// Execute is the entry point for the CLI.
func Execute() {
	ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI under a caller-owned context so signal
// cancellation reaches long-running commands like serve and bridge.
func ExecuteContext(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd wires the cobra tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cartograph",
		Short:         "Codebase risk mapping for humans and coding agents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile == "" {
				cfgFile = persistence.DefaultConfigPath()
			}
			cfg, err := persistence.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			globalCfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to the cartograph config file")

	root.AddCommand(
		newScanCmd(),
		newServeCmd(),
		newBridgeCmd(),
		newTUICmd(),
		newConfigCmd(),
	)
	return root
}
