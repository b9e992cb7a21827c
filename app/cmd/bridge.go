package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexcodex/cartograph/bridge"
)

func newBridgeCmd() *cobra.Command {
	var serverURL string
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Expose the loaded project to coding agents over stdio JSON-RPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Stdout carries the protocol; logs must go to stderr.
			logger := log.New(os.Stderr, "bridge: ", log.LstdFlags)
			return bridge.NewServer(serverURL, logger).RunStdio(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&serverURL, "server-url", bridge.DefaultServerURL, "Dashboard API base URL")
	return cmd
}
