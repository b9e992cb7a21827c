package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View composes the tab bar, the active tab body, and the status bar.
func (m Model) View() string {
	if !m.ready || m.body == nil {
		return "Initializing..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.body.View(),
		m.renderStatusBar(),
	)
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("cartograph")
	if m.result != nil {
		title += dimStyle.Render("  " + m.result.Metadata.ProjectName)
	}
	tabs := make([]string, 0, tabCount)
	for i, name := range tabNames {
		if i == m.activeTab {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, tabStyle.Render(name))
		}
	}
	return title + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderStatusBar() string {
	left := "tab/1-4 switch | r rescan | q quit"
	if m.scanning {
		left = m.spinner.View() + " rescanning..."
	} else if m.scanErr != nil {
		left = dangerStyle.Render("rescan failed: " + m.scanErr.Error())
	}
	return statusStyle.Width(m.width).Render(left)
}

func (m Model) renderTab() string {
	if m.result == nil {
		return dimStyle.Render("No project loaded.")
	}
	switch m.activeTab {
	case tabCritical:
		return m.renderCritical()
	case tabConcerns:
		return m.renderConcerns()
	case tabAgentContext:
		return m.result.AgentContext
	default:
		return m.renderOverview()
	}
}

func (m Model) renderOverview() string {
	meta := m.result.Metadata
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Project") + "\n")
	b.WriteString(fmt.Sprintf("  Root       %s\n", meta.ProjectRoot))
	b.WriteString(fmt.Sprintf("  Scanned    %s\n", meta.ScannedAt.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("  Files      %d\n", meta.TotalFiles))
	b.WriteString(fmt.Sprintf("  Edges      %d\n", meta.TotalEdges))
	b.WriteString(fmt.Sprintf("  Bindings   %d\n", meta.TotalBindingPoints))
	b.WriteString(fmt.Sprintf("  Languages  %s\n", strings.Join(meta.Languages, ", ")))
	b.WriteString("  Health     " + healthStyle(meta.HealthScore).Render(fmt.Sprintf("%d/100", meta.HealthScore)) + "\n")

	if len(m.result.Groups) > 0 {
		b.WriteString("\n" + sectionStyle.Render("Directories") + "\n")
		names := make([]string, 0, len(m.result.Groups))
		for name := range m.result.Groups {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(fmt.Sprintf("  %-24s %d files\n", name, len(m.result.Groups[name])))
		}
	}
	return b.String()
}

func (m Model) renderCritical() string {
	if len(m.result.CriticalFiles) == 0 {
		return safeStyle.Render("No critical files. Nothing stands out as high risk.")
	}
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Critical files, highest risk first") + "\n\n")
	for _, cf := range m.result.CriticalFiles {
		score := riskStyle(cf.RiskScore).Render(fmt.Sprintf("%5.1f", cf.RiskScore))
		b.WriteString(fmt.Sprintf("  %s  %s\n", score, cf.File))
		detail := fmt.Sprintf("         fan-in %d, %d binding points", cf.FanIn, cf.BindingPoints)
		if len(cf.Tags) > 0 {
			detail += ", " + strings.Join(cf.Tags, " ")
		}
		b.WriteString(dimStyle.Render(detail) + "\n")
	}
	return b.String()
}

func (m Model) renderConcerns() string {
	if len(m.result.ConcernClusters) == 0 {
		return dimStyle.Render("No concern clusters detected.")
	}
	names := make([]string, 0, len(m.result.ConcernClusters))
	for name := range m.result.ConcernClusters {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		entries := m.result.ConcernClusters[name]
		b.WriteString(sectionStyle.Render(name) + dimStyle.Render(fmt.Sprintf("  %d files", len(entries))) + "\n")
		for _, e := range entries {
			score := riskStyle(e.Risk).Render(fmt.Sprintf("%5.1f", e.Risk))
			b.WriteString(fmt.Sprintf("  %s  %s\n", score, e.Name))
		}
		b.WriteString("\n")
	}
	return b.String()
}
