package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/lexcodex/cartograph/scanner"
)

func contextFixture() *scanner.ScanResult {
	return &scanner.ScanResult{
		Metadata: scanner.Metadata{
			ProjectName: "demo",
			HealthScore: 72,
			Languages:   []string{"python", "typescript"},
			TotalFiles:  3,
		},
		AgentContext: "# RISK MAP\nsome context",
		Nodes: []*scanner.FileNode{
			{ID: "n1", Path: "src/auth.py", Name: "auth.py", RiskScore: 61.5,
				Tags: []string{"🌐 api-endpoint"}, Concerns: []string{"authentication"},
				PlainEnglish: "auth explanation"},
			{ID: "n2", Path: "src/payments.ts", Name: "payments.ts", RiskScore: 12,
				Concerns: []string{"payments"}, PlainEnglish: "payments explanation"},
			{ID: "n3", Path: "util.ts", Name: "util.ts", RiskScore: 3,
				PlainEnglish: "util explanation"},
		},
		ConcernClusters: map[string][]scanner.ConcernEntry{
			"payments": {{ID: "n2", Name: "payments.ts", Risk: 12}},
		},
	}
}

func TestBuildContextEmptySnapshot(t *testing.T) {
	assert.Equal(t, "No codebase loaded.", BuildContext("q", nil, nil))
	assert.Equal(t, "No codebase loaded.", BuildContext("q", &scanner.ScanResult{}, nil))
}

func TestBuildContextHeaderAndAgentDoc(t *testing.T) {
	got := BuildContext("anything", contextFixture(), nil)
	assert.Contains(t, got, "PROJECT: demo")
	assert.Contains(t, got, "HEALTH: 72/100")
	assert.Contains(t, got, "LANGUAGES: python, typescript")
	assert.Contains(t, got, "TOTAL FILES: 3")
	assert.Contains(t, got, "# RISK MAP")
}

func TestBuildContextMentionedFile(t *testing.T) {
	got := BuildContext("what does auth.py do?", contextFixture(), nil)
	assert.Contains(t, got, "FILE: src/auth.py")
	assert.Contains(t, got, "RISK: 61.5/100")
	assert.Contains(t, got, "auth explanation")
}

func TestBuildContextConcernCluster(t *testing.T) {
	got := BuildContext("tell me about payments handling", contextFixture(), nil)
	assert.Contains(t, got, "FILE: src/payments.ts")
}

func TestBuildContextExplicitIncludes(t *testing.T) {
	got := BuildContext("zzz nothing matches", contextFixture(), []string{"n3"})
	assert.Contains(t, got, "FILE: util.ts")
}

func TestBuildContextTruncated(t *testing.T) {
	res := contextFixture()
	res.AgentContext = strings.Repeat("x", 50000)
	got := BuildContext("q", res, nil)
	assert.Len(t, got, maxContextChars)
}

func TestBuildContextTruncatesOnRuneBoundary(t *testing.T) {
	// Shift the byte offset of the cap across sub-tests so at least one run
	// would land the cut inside a three-byte rune.
	for pad := 0; pad < 4; pad++ {
		res := contextFixture()
		res.Metadata.ProjectName = "demo" + strings.Repeat("x", pad)
		res.AgentContext = strings.Repeat("€", 20000)
		got := BuildContext("q", res, nil)
		assert.LessOrEqual(t, len(got), maxContextChars)
		assert.GreaterOrEqual(t, len(got), maxContextChars-utf8.UTFMax)
		assert.True(t, utf8.ValidString(got))
	}
}

func TestRelevantFilesDedupedAndCapped(t *testing.T) {
	res := &scanner.ScanResult{Metadata: scanner.Metadata{ProjectName: "p", TotalFiles: 1}}
	for i := 0; i < 20; i++ {
		res.Nodes = append(res.Nodes, &scanner.FileNode{
			ID:   string(rune('a' + i)),
			Path: "pkg/handler" + string(rune('a'+i)) + ".go",
			Name: "handler.go",
		})
	}
	ids := relevantFiles("explain the handler files", res, []string{"a", "a"})
	assert.Len(t, ids, maxContextFiles)
	seen := map[string]struct{}{}
	for _, id := range ids {
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestMentionedFiles(t *testing.T) {
	refs := mentionedFiles("look in src/auth.py and `web/app.tsx` please")
	assert.Contains(t, refs, "src/auth.py")
	assert.Contains(t, refs, "web/app.tsx")
}
