package navigator

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/davrell/reqnest/internal/theme"
	"github.com/davrell/reqnest/internal/workspace"
)

// ListView renders the tree with an optional height constraint. grabbedID
// highlights the node held by an in-flight move gesture.
func ListView(m *Model, th theme.Theme, width, height int, focus bool, grabbedID string) string {
	if m == nil {
		return ""
	}
	if width < 1 {
		width = 1
	}

	m.SetViewportHeight(height)
	rows := m.VisibleRows()
	var out []string
	for i, row := range rows {
		selected := (m.offset + i) == m.sel
		grabbed := grabbedID != "" && row.Node != nil && row.Node.ID == grabbedID
		out = append(out, renderRow(row, selected, grabbed, th, width, focus))
	}
	return strings.Join(out, "\n")
}

func renderRow(row Flat, selected, grabbed bool, th theme.Theme, width int, focus bool) string {
	n := row.Node
	if n == nil {
		return ""
	}

	pad := strings.Repeat("  ", row.Level)
	parts := []string{pad, rowIcon(n)}
	if n.Kind == workspace.KindRequest && n.Method != "" {
		parts = append(parts, renderMethodBadge(n.Method, th))
	}

	title := n.Title
	if n.Dirty {
		title += " *"
	}

	titleStyle := th.TreeTitle
	if selected {
		titleStyle = th.TreeTitleSelected
	}
	if grabbed {
		titleStyle = th.TreeGrabbed
	}
	if !focus {
		titleStyle = titleStyle.Faint(true)
	}
	parts = append(parts, " ", titleStyle.Render(title))

	line := strings.Join(parts, "")
	truncated := ansi.Truncate(line, width, "")
	if len(truncated) < len(line) {
		indicator := th.TreeSubtitle.Render(" +")
		avail := width - lipgloss.Width(indicator)
		if avail < 0 {
			avail = 0
		}
		truncated = ansi.Truncate(truncated, avail, "") + indicator
	}
	return lipgloss.NewStyle().Width(width).Render(truncated)
}

func rowIcon(n *Node) string {
	switch n.Kind {
	case workspace.KindCollection, workspace.KindFolder:
		if len(n.Children) == 0 {
			return "·"
		}
		return caret(n.Expanded)
	default:
		return " "
	}
}

func caret(expanded bool) string {
	if expanded {
		return "▾"
	}
	return "▸"
}

func renderMethodBadge(method string, th theme.Theme) string {
	label := strings.ToUpper(strings.TrimSpace(method))
	return th.TreeBadge.Foreground(th.MethodColor(label)).Render(label)
}
