package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreRiskWeights(t *testing.T) {
	hub := &FileNode{
		FanIn: 4,
		Lines: 100,
		Tags:  []string{TagAPIEndpoint},
	}
	for i := 0; i < 10; i++ {
		hub.BindingPoints = append(hub.BindingPoints, BindingPoint{Name: "bp", Type: "exports", Line: i + 1})
	}
	leaf := &FileNode{Lines: 50}

	s := &scan{nodes: []*FileNode{hub, leaf}}
	s.scoreRisk()

	// Hub maxes fan-in (35), binding density (25), and lines (10), plus one
	// of four risk tags (3.75).
	assert.InDelta(t, 73.8, hub.RiskScore, 0.01)
	// Leaf only carries half the max line count.
	assert.InDelta(t, 5.0, leaf.RiskScore, 0.01)
}

func TestScoreRiskBindingSaturation(t *testing.T) {
	dense := &FileNode{Lines: 1}
	for i := 0; i < 50; i++ {
		dense.BindingPoints = append(dense.BindingPoints, BindingPoint{Name: "bp", Type: "exports", Line: i + 1})
	}
	s := &scan{nodes: []*FileNode{dense}}
	s.scoreRisk()

	// Fifty binding points score no higher than ten.
	assert.InDelta(t, weightBindings+weightLines, dense.RiskScore, 0.01)
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, clampScore(-3))
	assert.Equal(t, 100.0, clampScore(250))
	assert.Equal(t, 42.4, clampScore(42.44))
	assert.Equal(t, 42.5, clampScore(42.45))
}

func TestHealthScore(t *testing.T) {
	assert.Equal(t, 100, healthScore(nil))

	// One untested critical file: 100 - 40 - 30.
	assert.Equal(t, 30, healthScore([]*FileNode{{RiskScore: 100}}))

	// The same file with tests: 100 - 40 + 20.
	assert.Equal(t, 80, healthScore([]*FileNode{{RiskScore: 100, HasTests: true}}))

	// Risk below 50 never counts as critical-untested.
	assert.Equal(t, 84, healthScore([]*FileNode{{RiskScore: 40}}))
}

func TestMarkTestsRelief(t *testing.T) {
	tested := &FileNode{Name: "app.test.js", Path: "app.test.js", RiskScore: 30}
	low := &FileNode{Name: "util_test.go", Path: "util_test.go", RiskScore: 5}
	plain := &FileNode{Name: "app.js", Path: "app.js", RiskScore: 30}

	s := &scan{nodes: []*FileNode{tested, low, plain}}
	s.markTests()

	assert.True(t, tested.HasTests)
	assert.Equal(t, 10.0, tested.RiskScore)
	assert.Contains(t, tested.Tags, TagTest)

	// Relief floors at zero.
	assert.Equal(t, 0.0, low.RiskScore)

	assert.False(t, plain.HasTests)
	assert.Equal(t, 30.0, plain.RiskScore)
}

func TestIsTestFile(t *testing.T) {
	assert.True(t, isTestFile("test_auth.py", "test_auth.py"))
	assert.True(t, isTestFile("auth.spec.ts", "src/auth.spec.ts"))
	assert.True(t, isTestFile("helper.js", "__tests__/helper.js"))
	assert.True(t, isTestFile("AuthTests.swift", "Sources/AuthTests.swift"))
	assert.False(t, isTestFile("contest.js", "src/contest.js"))
}
