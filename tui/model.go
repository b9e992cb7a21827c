// Package tui renders a read-only terminal dashboard over one scan
// snapshot: tabbed views for the overview, critical files, concern
// clusters, and the agent context document.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lexcodex/cartograph/scanner"
)

// RescanFunc rebuilds the snapshot; the dashboard calls it on the rescan
// keybinding.
type RescanFunc func(ctx context.Context) (*scanner.ScanResult, error)

// Run opens the dashboard for the given snapshot and blocks until the user
// quits.
func Run(ctx context.Context, result *scanner.ScanResult, rescan RescanFunc) error {
	model := NewModel(result, rescan)
	program := tea.NewProgram(
		model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	_, err := program.Run()
	return err
}

// Tab indices, in display order.
const (
	tabOverview = iota
	tabCritical
	tabConcerns
	tabAgentContext
	tabCount
)

var tabNames = [tabCount]string{"Overview", "Critical Files", "Concerns", "Agent Context"}

// Model implements the Bubble Tea Model interface over one ScanResult.
type Model struct {
	result *scanner.ScanResult
	rescan RescanFunc

	body    *viewport.Model
	spinner spinner.Model

	activeTab int
	scanning  bool
	scanErr   error

	width  int
	height int
	ready  bool
}

// NewModel builds the dashboard model.
func NewModel(result *scanner.ScanResult, rescan RescanFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		result:  result,
		rescan:  rescan,
		spinner: sp,
	}
}

type rescanDoneMsg struct {
	result *scanner.ScanResult
	err    error
}

// Init fulfills the Bubble Tea Model interface.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update applies incoming Bubble Tea messages to mutate the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case rescanDoneMsg:
		m.scanning = false
		m.scanErr = msg.err
		if msg.err == nil {
			m.result = msg.result
		}
		m.refreshBody()
		return m, nil
	case spinner.TickMsg:
		if !m.scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	headerHeight := 2
	statusHeight := 1
	bodyHeight := msg.Height - headerHeight - statusHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	if !m.ready {
		vp := viewport.New(msg.Width, bodyHeight)
		m.body = &vp
		m.ready = true
	} else {
		m.body.Width = msg.Width
		m.body.Height = bodyHeight
	}
	m.refreshBody()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab", "right", "l":
		m.activeTab = (m.activeTab + 1) % tabCount
		m.refreshBody()
		return m, nil
	case "shift+tab", "left", "h":
		m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		m.refreshBody()
		return m, nil
	case "1", "2", "3", "4":
		m.activeTab = int(msg.String()[0] - '1')
		m.refreshBody()
		return m, nil
	case "r":
		if m.rescan == nil || m.scanning {
			return m, nil
		}
		m.scanning = true
		m.scanErr = nil
		return m, tea.Batch(m.spinner.Tick, m.runRescan())
	default:
		if m.body == nil {
			return m, nil
		}
		var cmd tea.Cmd
		*m.body, cmd = m.body.Update(msg)
		return m, cmd
	}
}

func (m Model) runRescan() tea.Cmd {
	rescan := m.rescan
	return func() tea.Msg {
		result, err := rescan(context.Background())
		return rescanDoneMsg{result: result, err: err}
	}
}

func (m *Model) refreshBody() {
	if m.body == nil {
		return
	}
	m.body.SetContent(m.renderTab())
	m.body.GotoTop()
}
