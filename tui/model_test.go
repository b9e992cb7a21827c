package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/cartograph/scanner"
)

func fixtureResult() *scanner.ScanResult {
	return &scanner.ScanResult{
		Metadata: scanner.Metadata{
			ProjectRoot:        "/work/demo",
			ProjectName:        "demo",
			TotalFiles:         2,
			TotalEdges:         1,
			TotalBindingPoints: 4,
			Languages:          []string{"go"},
			HealthScore:        85,
		},
		Groups: map[string][]string{".": {"a"}, "server": {"b"}},
		CriticalFiles: []scanner.CriticalFile{
			{File: "server/api.go", RiskScore: 62.5, FanIn: 4, Tags: []string{"🌐 api-endpoint"}, BindingPoints: 6},
		},
		ConcernClusters: map[string][]scanner.ConcernEntry{
			"networking": {{ID: "b", Name: "api.go", Risk: 62.5}},
		},
		AgentContext: "# RISK MAP\nbody",
	}
}

func sized(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func TestViewBeforeFirstResize(t *testing.T) {
	m := NewModel(fixtureResult(), nil)
	assert.Equal(t, "Initializing...", m.View())
}

func TestOverviewTab(t *testing.T) {
	m := sized(NewModel(fixtureResult(), nil))
	view := m.View()
	assert.Contains(t, view, "demo")
	assert.Contains(t, view, "/work/demo")
	assert.Contains(t, view, "85/100")
	assert.Contains(t, view, "Overview")
}

func TestTabSwitching(t *testing.T) {
	m := sized(NewModel(fixtureResult(), nil))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	m = updated.(Model)
	assert.Equal(t, tabCritical, m.activeTab)
	assert.Contains(t, m.View(), "server/api.go")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	assert.Equal(t, tabConcerns, m.activeTab)
	assert.Contains(t, m.View(), "networking")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("4")})
	m = updated.(Model)
	assert.Contains(t, m.View(), "# RISK MAP")

	// Wraps around backwards.
	m.activeTab = tabOverview
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = updated.(Model)
	assert.Equal(t, tabAgentContext, m.activeTab)
}

func TestRescanReplacesSnapshot(t *testing.T) {
	rescan := func(ctx context.Context) (*scanner.ScanResult, error) {
		return nil, nil
	}
	m := sized(NewModel(fixtureResult(), rescan))

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = updated.(Model)
	assert.True(t, m.scanning)
	require.NotNil(t, cmd)

	fresh := fixtureResult()
	fresh.Metadata.ProjectName = "renamed"
	updated, _ = m.Update(rescanDoneMsg{result: fresh})
	m = updated.(Model)
	assert.False(t, m.scanning)
	assert.Contains(t, m.View(), "renamed")
}

func TestRescanErrorShownInStatusBar(t *testing.T) {
	m := sized(NewModel(fixtureResult(), nil))
	updated, _ := m.Update(rescanDoneMsg{err: errors.New("scan blew up")})
	m = updated.(Model)
	assert.Contains(t, m.View(), "scan blew up")
	// The previous snapshot stays on screen.
	assert.NotNil(t, m.result)
}

func TestQuitKeys(t *testing.T) {
	m := sized(NewModel(fixtureResult(), nil))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
