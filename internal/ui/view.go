package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/davrell/reqnest/internal/bindings"
	"github.com/davrell/reqnest/internal/ui/navigator"
)

func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	sidebarW := int(float64(m.width) * m.cfg.Layout.SidebarWidth)
	if sidebarW < 20 {
		sidebarW = 20
	}
	mainW := m.width - sidebarW - 4
	if mainW < 20 {
		mainW = 20
	}
	contentH := m.height - 4
	if contentH < 4 {
		contentH = 4
	}

	sidebar := m.viewSidebar(sidebarW-2, contentH)
	main := m.viewMain(mainW, contentH)

	row := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.th.SidebarBorder.Width(sidebarW).Height(contentH).Render(sidebar),
		main,
	)
	return lipgloss.JoinVertical(lipgloss.Left, row, m.viewStatus())
}

func (m *Model) viewSidebar(width, height int) string {
	var parts []string
	if m.filtering || m.nav.Filter() != "" {
		parts = append(parts, m.th.FieldLabel.Render("/")+m.filter.View())
		height--
	}
	listH := height
	if listH < 1 {
		listH = 1
	}
	parts = append(parts, navigator.ListView(m.nav, m.th, width, listH, m.focus == focusTree, m.grabbedID))
	return strings.Join(parts, "\n")
}

func (m *Model) viewMain(width, height int) string {
	tabs := m.viewTabs(width)
	consoleH := int(float64(height) * m.cfg.Layout.ConsoleSplit)
	if consoleH < 3 {
		consoleH = 3
	}
	editorH := height - consoleH - 3
	if editorH < 3 {
		editorH = 3
	}

	var editor string
	if m.renaming {
		editor = m.th.FieldLabel.Render("rename: ") + m.renameInput.View()
	} else if m.diffMode {
		editor = m.viewDiff(width - 2)
	} else {
		editor = m.viewEditor()
	}

	editorPane := m.th.EditorBorder.Width(width).Height(editorH).Render(editor)
	consolePane := m.th.ConsoleBorder.Width(width).Height(consoleH).Render(m.viewConsole(consoleH))
	return lipgloss.JoinVertical(lipgloss.Left, tabs, editorPane, consolePane)
}

func (m *Model) viewTabs(width int) string {
	docs := m.eng.Sessions().Documents()
	if len(docs) == 0 {
		return m.th.Tabs.Render("no open requests")
	}
	active := m.eng.Sessions().Active()
	var parts []string
	for _, d := range docs {
		label := d.Title
		if label == "" {
			label = "untitled"
		}
		if m.eng.Sessions().IsDirty(d.ID) {
			label += " " + m.th.TabDirty.Render("*")
		}
		style := m.th.TabInactive
		if active != nil && d.ID == active.ID {
			style = m.th.TabActive
		}
		parts = append(parts, style.Render(label))
	}
	line := strings.Join(parts, " ")
	return runewidth.Truncate(line, width*4, "…")
}

func (m *Model) viewEditor() string {
	if m.eng.Sessions().Active() == nil {
		return m.th.TreeSubtitle.Render("open a request from the tree (enter)")
	}
	label := func(name string, idx int) string {
		style := m.th.FieldLabel
		if m.focus == focusEditor && m.field == idx {
			style = style.Underline(true)
		}
		return style.Render(name)
	}
	lines := []string{
		label("method", fieldMethod) + " " + m.method.View(),
		label("url", fieldURL) + " " + m.url.View(),
		label("headers", fieldHeaders),
		m.headers.View(),
		label("body", fieldBody),
		m.body.View(),
		label("script", fieldScript),
		m.script.View(),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewDiff(width int) string {
	diff := m.unsavedDiff()
	var out []string
	for _, line := range strings.Split(diff, "\n") {
		style := m.th.ConsoleLine
		switch {
		case strings.HasPrefix(line, "+"):
			style = m.th.DiffAdd
		case strings.HasPrefix(line, "-"):
			style = m.th.DiffDel
		}
		out = append(out, style.Render(runewidth.Truncate(line, width, "…")))
	}
	return strings.Join(out, "\n")
}

func (m *Model) viewConsole(height int) string {
	doc := m.eng.Sessions().Active()
	if doc == nil {
		return m.th.TreeSubtitle.Render("console")
	}
	lines := doc.Console()
	if len(lines) == 0 {
		return m.th.TreeSubtitle.Render("console (empty)")
	}
	visible := height - 2
	if visible < 1 {
		visible = 1
	}
	off := m.consoleOff
	if off > len(lines)-visible {
		off = len(lines) - visible
	}
	if off < 0 {
		off = 0
	}
	end := off + visible
	if end > len(lines) {
		end = len(lines)
	}
	var out []string
	for _, l := range lines[off:end] {
		out = append(out, m.th.ConsoleLine.Render(l))
	}
	return strings.Join(out, "\n")
}

func (m *Model) viewStatus() string {
	left := m.th.StatusBarKey.Render("reqnest")
	msg := m.status
	style := m.th.StatusBarValue
	if m.statusErr {
		style = m.th.Error
	}
	hint := m.th.StatusBar.Render(m.hintLine())
	if msg == "" {
		return left + " " + hint
	}
	return left + " " + style.Render(msg) + " " + hint
}

func (m *Model) hintLine() string {
	if m.grabbedID != "" {
		return "space drop · " + m.keys.Key(bindings.ActionCanvasDrop) + " canvas · esc cancel"
	}
	switch m.focus {
	case focusTree:
		return "enter open · space move · " +
			m.keys.Key(bindings.ActionNewRequest) + "/" +
			m.keys.Key(bindings.ActionNewFolder) + "/" +
			m.keys.Key(bindings.ActionNewCollection) + " new · " +
			m.keys.Key(bindings.ActionRename) + " rename · " +
			m.keys.Key(bindings.ActionDelete) + " delete · " +
			m.keys.Key(bindings.ActionFilter) + " filter · tab editor"
	case focusEditor:
		return "tab field · " +
			m.keys.Key(bindings.ActionSave) + " save · " +
			m.keys.Key(bindings.ActionDiff) + " diff · " +
			m.keys.Key(bindings.ActionCopyURL) + " copy url · " +
			m.keys.Key(bindings.ActionConsole) + " console · esc tree"
	default:
		return "j/k scroll · esc back"
	}
}

// resizeFields keeps the input widgets sized to the editor pane.
func (m *Model) resizeFields() {
	sidebarW := int(float64(m.width) * m.cfg.Layout.SidebarWidth)
	mainW := m.width - sidebarW - 6
	if mainW < 20 {
		mainW = 20
	}
	m.method.Width = 12
	m.url.Width = mainW - 6
	areaH := (m.height - 10) / 3
	if areaH < 2 {
		areaH = 2
	}
	m.headers.SetWidth(mainW)
	m.headers.SetHeight(areaH)
	m.body.SetWidth(mainW)
	m.body.SetHeight(areaH)
	m.script.SetWidth(mainW)
	m.script.SetHeight(areaH)
}
