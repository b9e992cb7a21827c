package scanner

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Report thresholds.
const (
	riskTierCritical = 75.0
	riskTierHigh     = 50.0
	riskTierModerate = 25.0

	// criticalRiskFloor filters the critical-files shortlist and, inverted,
	// the safe-to-modify section of the agent context.
	criticalRiskFloor = 15.0

	criticalListCap    = 20
	agentCriticalCap   = 10
	agentSafeCap       = 10
	dependentsNameCap  = 8
	wideFanInThreshold = 5

	// rootGroup collects files sitting directly at the scan root.
	rootGroup = "."
)

// tagExplanations is the fixed tag→sentence table of the per-file report.
var tagExplanations = map[string]string{
	TagInterface:       "Defines a contract other files must follow. Changes break implementers.",
	TagEventDriven:     "Sends/receives events. Changes silently break listeners.",
	TagAPIEndpoint:     "Handles API requests. Route/response changes affect all clients.",
	TagAPIConsumer:     "Makes network calls. URL/payload changes cause failures.",
	TagDataModel:       "Defines data storage. Schema changes can corrupt data.",
	TagConfigDependent: "Reads env vars/config. Missing values = runtime crashes.",
	TagStateManagement: "Manages app state. Changes ripple through UI.",
	TagUnsafeCode:      "Contains unsafe/low-level code. Memory safety risks.",
	TagConcurrent:      "Uses concurrency. Race conditions easy to introduce.",
}

// assemble runs the report stage and freezes the snapshot.
func (s *scan) assemble() *ScanResult {
	byID := make(map[string]*FileNode, len(s.nodes))
	for _, n := range s.nodes {
		byID[n.ID] = n
	}
	for _, n := range s.nodes {
		n.PlainEnglish = explainNode(n, byID, s.edges)
	}

	groups := make(map[string][]string)
	for _, n := range s.nodes {
		group := rootGroup
		if parts := strings.Split(n.Path, "/"); len(parts) > 1 {
			group = parts[0]
		}
		groups[group] = append(groups[group], n.ID)
	}

	clusters := make(map[string][]ConcernEntry)
	for _, n := range s.nodes {
		for _, c := range n.Concerns {
			clusters[c] = append(clusters[c], ConcernEntry{ID: n.ID, Name: n.Name, Risk: n.RiskScore})
		}
	}

	ranked := make([]*FileNode, len(s.nodes))
	copy(ranked, s.nodes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RiskScore > ranked[j].RiskScore
	})
	var critical []CriticalFile
	for _, n := range ranked {
		if len(critical) >= criticalListCap {
			break
		}
		if n.RiskScore > criticalRiskFloor {
			critical = append(critical, CriticalFile{
				File:          n.Path,
				RiskScore:     n.RiskScore,
				FanIn:         n.FanIn,
				Tags:          n.Tags,
				BindingPoints: len(n.BindingPoints),
			})
		}
	}

	totalBindings := 0
	langSet := make(map[string]struct{})
	for _, n := range s.nodes {
		totalBindings += len(n.BindingPoints)
		langSet[n.Language] = struct{}{}
	}
	languages := make([]string, 0, len(langSet))
	for lang := range langSet {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	return &ScanResult{
		Metadata: Metadata{
			ProjectRoot:        s.root,
			ProjectName:        filepath.Base(s.root),
			ScannedAt:          time.Now(),
			TotalFiles:         len(s.nodes),
			TotalEdges:         len(s.edges),
			TotalBindingPoints: totalBindings,
			Languages:          languages,
			HealthScore:        healthScore(s.nodes),
		},
		Nodes:           s.nodes,
		Edges:           s.edges,
		Groups:          groups,
		ConcernClusters: clusters,
		CriticalFiles:   critical,
		AgentContext:    agentContext(critical, s.nodes),
	}
}

// explainNode renders the per-file natural-language explanation: a risk-tier
// headline, a pluralization-aware fan-in sentence, one sentence per
// recognized tag, and the direct dependents that may break, capped and in
// edge order.
func explainNode(n *FileNode, byID map[string]*FileNode, edges []Edge) string {
	var paragraphs []string

	switch {
	case n.RiskScore >= riskTierCritical:
		paragraphs = append(paragraphs, fmt.Sprintf("⚠️ **%s** is critical. Treat changes with extreme care.", n.Name))
	case n.RiskScore >= riskTierHigh:
		paragraphs = append(paragraphs, fmt.Sprintf("🟡 **%s** is important — several parts of your project rely on it.", n.Name))
	case n.RiskScore >= riskTierModerate:
		paragraphs = append(paragraphs, fmt.Sprintf("🟢 **%s** has moderate connections. Fairly safe but check linked files.", n.Name))
	default:
		paragraphs = append(paragraphs, fmt.Sprintf("✅ **%s** is isolated. Low risk to modify.", n.Name))
	}

	switch {
	case n.FanIn > wideFanInThreshold:
		paragraphs = append(paragraphs, fmt.Sprintf("**%d other files depend on this.** Changes cascade widely.", n.FanIn))
	case n.FanIn == 1:
		paragraphs = append(paragraphs, "1 file depends on this.")
	case n.FanIn > 1:
		paragraphs = append(paragraphs, fmt.Sprintf("%d files depend on this.", n.FanIn))
	}

	for _, tag := range n.Tags {
		if expl, ok := tagExplanations[tag]; ok {
			paragraphs = append(paragraphs, fmt.Sprintf("**%s** — %s", tag, expl))
		}
	}

	var dependents []string
	for _, e := range edges {
		if e.Target != n.ID {
			continue
		}
		if src, ok := byID[e.Source]; ok {
			dependents = append(dependents, src.Name)
			if len(dependents) == dependentsNameCap {
				break
			}
		}
	}
	if len(dependents) > 0 {
		paragraphs = append(paragraphs, "**If you change this, these may break:** "+strings.Join(dependents, ", "))
	}

	return strings.Join(paragraphs, "\n\n")
}

// agentContext renders the fixed-format hand-off document for AI agents.
// The section layout is stable on purpose: downstream tools parse it
// loosely.
func agentContext(critical []CriticalFile, nodes []*FileNode) string {
	lines := []string{
		"# ⚠️ CODEBASE RISK MAP — READ BEFORE MODIFYING",
		"",
		"## 🔴 Critical Files (DO NOT modify without review)",
		"",
	}
	for i, cf := range critical {
		if i >= agentCriticalCap {
			break
		}
		lines = append(lines, fmt.Sprintf("- **%s** — Risk: %s/100 | Dependents: %d | %s",
			cf.File, formatRisk(cf.RiskScore), cf.FanIn, strings.Join(cf.Tags, " ")))
	}

	lines = append(lines, "", "## 🟡 Binding Points", "")
	for _, n := range nodes {
		if len(n.BindingPoints) <= 1 {
			continue
		}
		var categories []string
		seen := make(map[string]struct{})
		for _, bp := range n.BindingPoints {
			if _, ok := seen[bp.Type]; !ok {
				seen[bp.Type] = struct{}{}
				categories = append(categories, bp.Type)
			}
		}
		lines = append(lines, fmt.Sprintf("- `%s`: %s", n.Path, strings.Join(categories, ", ")))
	}

	lines = append(lines, "", "## 🟢 Safe to Modify", "")
	safest := make([]*FileNode, len(nodes))
	copy(safest, nodes)
	sort.SliceStable(safest, func(i, j int) bool {
		return safest[i].RiskScore < safest[j].RiskScore
	})
	for i, n := range safest {
		if i >= agentSafeCap {
			break
		}
		if n.RiskScore < criticalRiskFloor {
			lines = append(lines, fmt.Sprintf("- `%s` (risk: %s)", n.Path, formatRisk(n.RiskScore)))
		}
	}
	return strings.Join(lines, "\n")
}

// formatRisk prints a risk score with one decimal, the same way everywhere
// the document embeds one.
func formatRisk(score float64) string {
	return fmt.Sprintf("%.1f", score)
}
