package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lexcodex/cartograph/scanner"
)

// AgentContextFilename is written into the scanned project root so coding
// agents pick the risk map up from disk.
const AgentContextFilename = "CODEBASE_AGENT_CONTEXT.md"

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	summaryLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	summaryGoodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	summaryWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	summaryBadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func newScanCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a codebase and print its risk summary",
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
			result, err := scanner.Scan(cmd.Context(), abs, scanner.ProjectID(abs))
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printSummary(cmd, result)

			// Best effort: a missing context file never fails the scan.
			ctxPath := filepath.Join(abs, AgentContextFilename)
			if err := os.WriteFile(ctxPath, []byte(result.AgentContext), 0o644); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s %s\n",
					summaryLabelStyle.Render("agent context written to"), ctxPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full scan result as JSON")
	return cmd
}

func printSummary(cmd *cobra.Command, result *scanner.ScanResult) {
	out := cmd.OutOrStdout()
	meta := result.Metadata

	healthStyle := summaryGoodStyle
	switch {
	case meta.HealthScore < 40:
		healthStyle = summaryBadStyle
	case meta.HealthScore < 70:
		healthStyle = summaryWarnStyle
	}

	fmt.Fprintln(out, summaryTitleStyle.Render("🗺️  "+meta.ProjectName))
	fmt.Fprintf(out, "%s %d\n", summaryLabelStyle.Render("files          "), meta.TotalFiles)
	fmt.Fprintf(out, "%s %d\n", summaryLabelStyle.Render("import edges   "), meta.TotalEdges)
	fmt.Fprintf(out, "%s %d\n", summaryLabelStyle.Render("binding points "), meta.TotalBindingPoints)
	fmt.Fprintf(out, "%s %s\n", summaryLabelStyle.Render("languages      "), strings.Join(meta.Languages, ", "))
	fmt.Fprintf(out, "%s %s\n", summaryLabelStyle.Render("health         "),
		healthStyle.Render(fmt.Sprintf("%d/100", meta.HealthScore)))

	if len(result.CriticalFiles) > 0 {
		fmt.Fprintln(out, "\n"+summaryTitleStyle.Render("Critical files"))
		for i, cf := range result.CriticalFiles {
			if i == 5 {
				fmt.Fprintf(out, "  %s\n", summaryLabelStyle.Render(fmt.Sprintf("... and %d more", len(result.CriticalFiles)-5)))
				break
			}
			fmt.Fprintf(out, "  %s  %s\n",
				summaryBadStyle.Render(fmt.Sprintf("%5.1f", cf.RiskScore)), cf.File)
		}
	}
}
