package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newConfigCmd registers subcommands that inspect or mutate config.yaml.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or modify the cartograph config",
	}
	cmd.AddCommand(newConfigGetCmd(), newConfigSetCmd())
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Read a config value (api_key, model)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "api_key":
				fmt.Fprintln(cmd.OutOrStdout(), maskKey(globalCfg.APIKey))
			case "model":
				fmt.Fprintln(cmd.OutOrStdout(), globalCfg.Model)
			default:
				return fmt.Errorf("unknown key %q (valid: api_key, model)", args[0])
			}
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Update a config value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "api_key":
				globalCfg.APIKey = args[1]
			case "model":
				globalCfg.Model = args[1]
			default:
				return fmt.Errorf("unknown key %q (valid: api_key, model)", args[0])
			}
			if err := globalCfg.Save(cfgFile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
			return nil
		},
	}
}

// maskKey hides all but the tail of a secret for display.
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
