package llm

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lexcodex/cartograph/scanner"
)

// Context-size bounds. The character cap approximates an 8k-token budget at
// the usual four characters per token.
const (
	maxContextChars = 32000
	maxContextFiles = 10
	filesPerConcern = 3
	minQueryWordLen = 3
)

// fileRefPatterns pull explicit file references out of a chat query, e.g.
// "in auth.py", "`src/api.ts`", or a bare filename.
var fileRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`in\s+([a-zA-Z0-9_/.-]+\.[a-z]+)`),
	regexp.MustCompile("`([a-zA-Z0-9_/.-]+\\.[a-z]+)`"),
	regexp.MustCompile(`file\s+([a-zA-Z0-9_/.-]+\.[a-z]+)`),
	regexp.MustCompile(`([a-zA-Z0-9_/-]+\.(?:py|ts|tsx|js|jsx|java|go|rs|cpp|c|h))\b`),
}

// BuildContext assembles the bounded prompt context for a query from one
// scan snapshot: project overview, the curated agent-context risk map, then
// details for up to ten query-relevant files. includeFiles are node ids the
// caller wants present regardless of the query.
func BuildContext(query string, res *scanner.ScanResult, includeFiles []string) string {
	if res == nil || len(res.Nodes) == 0 {
		return "No codebase loaded."
	}

	var parts []string
	meta := res.Metadata
	parts = append(parts, fmt.Sprintf("PROJECT: %s\nHEALTH: %d/100\nLANGUAGES: %s\nTOTAL FILES: %d",
		meta.ProjectName, meta.HealthScore, strings.Join(meta.Languages, ", "), meta.TotalFiles))
	if res.AgentContext != "" {
		parts = append(parts, res.AgentContext)
	}

	for _, id := range relevantFiles(query, res, includeFiles) {
		n := res.NodeByID(id)
		if n == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("\nFILE: %s\nRISK: %s/100\nTAGS: %s\nCONCERNS: %s\nEXPLANATION: %s",
			n.Path, fmt.Sprintf("%.1f", n.RiskScore), strings.Join(n.Tags, ", "),
			strings.Join(n.Concerns, ", "), n.PlainEnglish))
	}

	full := strings.Join(parts, "\n\n")
	if len(full) > maxContextChars {
		// Back off to a rune boundary so the cut never splits a multi-byte
		// character.
		cut := maxContextChars
		for cut > 0 && !utf8.RuneStart(full[cut]) {
			cut--
		}
		full = full[:cut]
	}
	return full
}

// relevantFiles picks node ids for the query: explicitly mentioned files
// first, then concern-cluster matches, then path/name word matches, then the
// caller's includes. Deduplicated in order, capped at maxContextFiles.
func relevantFiles(query string, res *scanner.ScanResult, includeFiles []string) []string {
	queryLower := strings.ToLower(query)

	var ids []string
	for _, ref := range mentionedFiles(queryLower) {
		for _, n := range res.Nodes {
			if strings.Contains(strings.ToLower(n.Path), ref) {
				ids = append([]string{n.ID}, ids...)
				break
			}
		}
	}

	for concern, entries := range res.ConcernClusters {
		if !strings.Contains(queryLower, concern) {
			continue
		}
		for i, e := range entries {
			if i >= filesPerConcern {
				break
			}
			ids = append(ids, e.ID)
		}
	}

	words := strings.Fields(queryLower)
	for _, n := range res.Nodes {
		pathLower := strings.ToLower(n.Path)
		nameLower := strings.ToLower(n.Name)
		for _, w := range words {
			if len(w) >= minQueryWordLen && (strings.Contains(pathLower, w) || strings.Contains(nameLower, w)) {
				ids = append(ids, n.ID)
				break
			}
		}
	}

	ids = append(ids, includeFiles...)

	seen := make(map[string]struct{}, len(ids))
	var out []string
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if len(out) == maxContextFiles {
			break
		}
	}
	return out
}

// mentionedFiles extracts deduplicated file references from the lowercased
// query.
func mentionedFiles(queryLower string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, re := range fileRefPatterns {
		for _, m := range re.FindAllStringSubmatch(queryLower, -1) {
			ref := m[1]
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			out = append(out, ref)
		}
	}
	return out
}
