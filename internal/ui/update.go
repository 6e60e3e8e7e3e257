package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/davrell/reqnest/internal/bindings"
	"github.com/davrell/reqnest/internal/workspace"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeFields()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pendingDelete != "" {
		return m.handleConfirmDelete(msg)
	}
	if m.pendingClose != "" {
		return m.handleConfirmClose(msg)
	}
	if m.renaming {
		return m.handleRename(msg)
	}
	if m.filtering {
		return m.handleFilter(msg)
	}

	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// Document-level actions apply regardless of focus; they are bound to
	// chord keys that never collide with text entry.
	if action, ok := m.keys.Lookup(key); ok {
		switch action {
		case bindings.ActionSave:
			m.saveActive()
			return m, nil
		case bindings.ActionNextDoc:
			m.cycleDoc(1)
			return m, nil
		case bindings.ActionPrevDoc:
			m.cycleDoc(-1)
			return m, nil
		case bindings.ActionCloseDoc:
			m.closeActive()
			return m, nil
		}
	}

	switch m.focus {
	case focusTree:
		return m.handleTreeKey(msg)
	case focusEditor:
		return m.handleEditorKey(msg)
	case focusConsole:
		return m.handleConsoleKey(msg)
	}
	return m, nil
}

func (m *Model) handleTreeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.focus = focusEditor
		m.focusField(m.field)
		return m, nil
	case "j", "down":
		m.nav.Move(1)
		return m, nil
	case "k", "up":
		m.nav.Move(-1)
		return m, nil
	case "g", "home":
		m.nav.SelectFirst()
		return m, nil
	case "G", "end":
		m.nav.SelectLast()
		return m, nil
	case "enter":
		m.treeActivate()
		return m, nil
	case " ":
		m.treeGrabOrDrop()
		return m, nil
	case "esc":
		if m.grabbedID != "" {
			m.grabbedID = ""
			m.setStatus("move cancelled", false)
		} else if m.nav.Filter() != "" {
			m.nav.SetFilter("")
		}
		return m, nil
	}

	action, ok := m.keys.Lookup(msg.String())
	if !ok {
		return m, nil
	}
	switch action {
	case bindings.ActionQuit:
		return m, tea.Quit
	case bindings.ActionCanvasDrop:
		m.treeDropCanvas()
	case bindings.ActionNewRequest:
		m.treeCreate(workspace.KindRequest)
	case bindings.ActionNewFolder:
		m.treeCreate(workspace.KindFolder)
	case bindings.ActionNewCollection:
		m.treeCreate(workspace.KindCollection)
	case bindings.ActionRename:
		m.treeStartRename()
	case bindings.ActionDelete:
		if sel := m.nav.Selected(); sel != nil {
			m.pendingDelete = sel.ID
			m.setStatus("delete "+sel.Title+" and everything inside? (y/n)", false)
		}
	case bindings.ActionFilter:
		m.filtering = true
		m.filter.SetValue(m.nav.Filter())
		m.filter.Focus()
	}
	return m, nil
}

func (m *Model) treeActivate() {
	sel := m.nav.Selected()
	if sel == nil {
		return
	}
	if sel.Kind != workspace.KindRequest {
		m.nav.ToggleExpanded()
		return
	}
	m.syncEditable()
	doc, err := m.eng.Sessions().Open(sel.ID)
	if err != nil {
		m.reportErr(err)
		return
	}
	m.loadPayload(doc.Editable())
	m.focus = focusEditor
	m.focusField(m.field)
	m.rebuildTree()
}

func (m *Model) treeGrabOrDrop() {
	sel := m.nav.Selected()
	if sel == nil {
		return
	}
	if m.grabbedID == "" {
		m.grabbedID = sel.ID
		m.setStatus("moving "+sel.Title, false)
		return
	}
	m.performDrop(sel.ID)
}

func (m *Model) treeDropCanvas() {
	if m.grabbedID == "" {
		return
	}
	m.performDrop("")
}

func (m *Model) performDrop(targetID string) {
	dragged := m.grabbedID
	m.grabbedID = ""
	verdict, err := m.eng.Drop(m.ctx(), dragged, targetID)
	if err != nil {
		m.reportErr(err)
		m.rebuildTree()
		return
	}
	m.setStatus("drop: "+verdict.String(), false)
	m.rebuildTree()
	m.nav.SelectByID(dragged)
}

func (m *Model) treeCreate(kind workspace.NodeKind) {
	sel := m.nav.Selected()
	var id string
	var err error
	switch kind {
	case workspace.KindCollection:
		var c workspace.Collection
		c, err = m.eng.CreateCollection(m.ctx(), "new collection")
		id = c.ID
	case workspace.KindFolder:
		parent := m.containerFor(sel)
		if parent == "" {
			m.setStatus("select a collection or folder first", true)
			return
		}
		var f workspace.Folder
		f, err = m.eng.CreateFolder(m.ctx(), parent, "new folder")
		id = f.ID
	case workspace.KindRequest:
		parent := m.containerFor(sel)
		if parent == "" {
			m.setStatus("select a collection or folder first", true)
			return
		}
		var r workspace.Request
		r, err = m.eng.CreateRequest(m.ctx(), parent, "new request")
		id = r.ID
	}
	if err != nil {
		m.reportErr(err)
		return
	}
	m.rebuildTree()
	m.nav.SelectByID(id)
	m.treeStartRename()
}

func (m *Model) treeStartRename() {
	sel := m.nav.Selected()
	if sel == nil {
		return
	}
	m.renaming = true
	m.renameID = sel.ID
	m.renameInput.SetValue(sel.Title)
	m.renameInput.CursorEnd()
	m.renameInput.Focus()
}

func (m *Model) handleRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := m.renameInput.Value()
		if err := m.eng.Rename(m.ctx(), m.renameID, name); err != nil {
			m.reportErr(err)
		} else if doc := m.eng.Sessions().ByRequest(m.renameID); doc != nil {
			doc.Title = name
		}
		m.renaming = false
		m.renameInput.Blur()
		m.rebuildTree()
		m.nav.SelectByID(m.renameID)
		return m, nil
	case "esc":
		m.renaming = false
		m.renameInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return m, cmd
}

func (m *Model) handleFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		if msg.String() == "esc" {
			m.filter.SetValue("")
			m.nav.SetFilter("")
		}
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.nav.SetFilter(m.filter.Value())
	return m, cmd
}

func (m *Model) handleConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.pendingDelete
	m.pendingDelete = ""
	if msg.String() != "y" {
		m.setStatus("delete cancelled", false)
		return m, nil
	}
	if err := m.eng.Delete(m.ctx(), id); err != nil {
		m.reportErr(err)
	} else {
		m.setStatus("deleted", false)
	}
	if next := m.eng.Sessions().Active(); next != nil {
		m.loadPayload(next.Editable())
	} else {
		m.loadPayload(workspace.Payload{})
	}
	m.rebuildTree()
	return m, nil
}

func (m *Model) handleConfirmClose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.pendingClose
	m.pendingClose = ""
	if msg.String() != "y" {
		m.setStatus("close cancelled", false)
		return m, nil
	}
	m.eng.Sessions().Close(id)
	m.afterClose()
	return m, nil
}

func (m *Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.diffMode {
			m.diffMode = false
			return m, nil
		}
		m.blurFields()
		m.focus = focusTree
		return m, nil
	case "tab":
		m.focusField((m.field + 1) % fieldCount)
		return m, nil
	case "shift+tab":
		m.focusField((m.field + fieldCount - 1) % fieldCount)
		return m, nil
	}

	// Editor-pane actions stay on chord keys so plain runes still type.
	if action, ok := m.keys.Lookup(msg.String()); ok && msg.Type != tea.KeyRunes {
		switch action {
		case bindings.ActionDiff:
			m.diffMode = !m.diffMode
			return m, nil
		case bindings.ActionCopyURL:
			m.copyURL()
			return m, nil
		case bindings.ActionConsole:
			m.blurFields()
			m.focus = focusConsole
			return m, nil
		}
	}
	if m.diffMode {
		return m, nil
	}

	var cmd tea.Cmd
	switch m.field {
	case fieldMethod:
		m.method, cmd = m.method.Update(msg)
	case fieldURL:
		m.url, cmd = m.url.Update(msg)
	case fieldHeaders:
		m.headers, cmd = m.headers.Update(msg)
	case fieldBody:
		m.body, cmd = m.body.Update(msg)
	case fieldScript:
		m.script, cmd = m.script.Update(msg)
	}
	m.syncEditable()
	return m, cmd
}

func (m *Model) handleConsoleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if action, ok := m.keys.Lookup(msg.String()); ok && action == bindings.ActionConsole {
		m.focus = focusEditor
		m.focusField(m.field)
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.focus = focusEditor
		m.focusField(m.field)
	case "j", "down":
		m.consoleOff++
	case "k", "up":
		if m.consoleOff > 0 {
			m.consoleOff--
		}
	case "g":
		m.consoleOff = 0
	}
	return m, nil
}

func (m *Model) focusField(idx int) {
	m.blurFields()
	m.field = idx
	switch idx {
	case fieldMethod:
		m.method.Focus()
	case fieldURL:
		m.url.Focus()
	case fieldHeaders:
		m.headers.Focus()
	case fieldBody:
		m.body.Focus()
	case fieldScript:
		m.script.Focus()
	}
}

func (m *Model) blurFields() {
	m.method.Blur()
	m.url.Blur()
	m.headers.Blur()
	m.body.Blur()
	m.script.Blur()
}
