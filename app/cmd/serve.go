package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lexcodex/cartograph/persistence"
	"github.com/lexcodex/cartograph/server"
)

// DefaultPort matches the dashboard port the bridge expects.
const DefaultPort = 3000

func newServeCmd() *cobra.Command {
	var (
		port    int
		dbPath  string
		preload string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			// .env keeps DEEPSEEK_API_KEY out of shell history. Absence
			// is fine.
			_ = godotenv.Load()

			logger := log.New(os.Stderr, "cartograph: ", log.LstdFlags)

			recent := persistence.NewRecentProjects("")
			registry := server.NewRegistry(recent)

			var chat persistence.ChatHistory
			store, err := persistence.OpenChatStore(dbPath)
			if err != nil {
				logger.Printf("chat store unavailable, using in-memory history: %v", err)
				chat = persistence.NewMemoryChatHistory()
			} else {
				defer store.Close()
				chat = store
			}

			if preload != "" {
				abs, err := filepath.Abs(preload)
				if err != nil {
					return err
				}
				project, err := registry.Load(cmd.Context(), abs)
				if err != nil {
					return err
				}
				logger.Printf("loaded %s (%d files, health %d/100)",
					project.Name, len(project.Scan.Nodes), project.Scan.Metadata.HealthScore)
			}

			api := &server.APIServer{
				Registry:   registry,
				Chat:       chat,
				Config:     globalCfg,
				ConfigPath: cfgFile,
				Logger:     logger,
			}
			return api.ServeContext(cmd.Context(), fmt.Sprintf(":%d", port))
		},
	}
	cmd.Flags().IntVar(&port, "port", DefaultPort, "Port to listen on")
	cmd.Flags().StringVar(&dbPath, "db", "", "Chat history database path (default ~/.cartograph/chat.db)")
	cmd.Flags().StringVar(&preload, "load", "", "Project directory to load at startup")
	return cmd
}
