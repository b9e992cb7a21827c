package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllBindingPatternsCompile(t *testing.T) {
	for lang, raw := range rawBindingPatterns {
		assert.Len(t, bindingPatterns[lang], len(raw), "language %s dropped a pattern", lang)
	}
}

func TestEveryLanguageHasAKnownExtension(t *testing.T) {
	known := make(map[string]struct{})
	for _, lang := range languageByExt {
		known[lang] = struct{}{}
	}
	for lang := range rawBindingPatterns {
		_, ok := known[lang]
		assert.True(t, ok, "pattern table for %s has no extension mapping", lang)
	}
}

func TestMatchName(t *testing.T) {
	// No capture groups: the whole match is the name.
	assert.Equal(t, "go worker", matchName([]string{"go worker"}))

	// Either/or groups: the first non-empty one wins.
	assert.Equal(t, "flask", matchName([]string{"from flask import", "flask", ""}))
	assert.Equal(t, "os", matchName([]string{"import os", "", "os"}))

	// All groups empty yields nothing.
	assert.Equal(t, "", matchName([]string{"match", "", ""}))
}

func extractOne(lang, content string) *FileNode {
	n := &FileNode{ID: "1", Language: lang, Lines: strings.Count(content, "\n") + 1, Complexity: ComplexityLow}
	s := &scan{nodes: []*FileNode{n}, contents: map[string]string{"1": content}}
	s.extract()
	return n
}

func TestExtractGoPatterns(t *testing.T) {
	n := extractOne("go", `import "fmt"

type Store interface {
	Get(key string) string
}

func serve() {
	http.HandleFunc("/health", handler)
	go worker()
}
`)
	var categories []string
	for _, bp := range n.BindingPoints {
		categories = append(categories, bp.Type)
	}
	assert.Contains(t, categories, "imports")
	assert.Contains(t, categories, "interfaces")
	assert.Contains(t, categories, "http_handlers")
	assert.Contains(t, categories, "goroutines")
	assert.Equal(t, []string{"fmt"}, n.Imports)
}

func TestExtractDuplicateImportsKept(t *testing.T) {
	n := extractOne("python", "import os\nimport os\n")
	assert.Equal(t, []string{"os", "os"}, n.Imports)
}

func TestExtractBindingLineNumbers(t *testing.T) {
	n := extractOne("typescript", "const x = 1;\ninterface Props {}\n")
	require.NotEmpty(t, n.BindingPoints)
	var found bool
	for _, bp := range n.BindingPoints {
		if bp.Type == "interfaces" {
			assert.Equal(t, "Props", bp.Name)
			assert.Equal(t, 2, bp.Line)
			found = true
		}
	}
	assert.True(t, found)
}

func TestExtractComplexityThresholds(t *testing.T) {
	assert.Equal(t, ComplexityLow, extractOne("python", strings.Repeat("x = 1\n", 99)).Complexity)
	assert.Equal(t, ComplexityMedium, extractOne("python", strings.Repeat("x = 1\n", 150)).Complexity)
	assert.Equal(t, ComplexityHigh, extractOne("python", strings.Repeat("x = 1\n", 400)).Complexity)
}

func TestUnknownLanguageYieldsNoBindings(t *testing.T) {
	n := extractOne("cobol", "MOVE A TO B\n")
	assert.Empty(t, n.BindingPoints)
	assert.Empty(t, n.Imports)
}
