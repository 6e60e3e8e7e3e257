package ui

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-udiff"

	"github.com/davrell/reqnest/internal/workspace"
)

// collectPayload gathers the editor fields into a payload snapshot. The
// description is not editable in this pane, so the active document's value
// carries through unchanged.
func (m *Model) collectPayload() workspace.Payload {
	p := workspace.Payload{
		Method:  strings.ToUpper(strings.TrimSpace(m.method.Value())),
		URL:     strings.TrimSpace(m.url.Value()),
		Headers: m.headers.Value(),
		Body:    m.body.Value(),
		Script:  m.script.Value(),
	}
	if doc := m.eng.Sessions().Active(); doc != nil {
		p.Description = doc.Editable().Description
	}
	return p
}

// loadPayload pushes a document's editable snapshot into the editor fields.
func (m *Model) loadPayload(p workspace.Payload) {
	m.method.SetValue(p.Method)
	m.url.SetValue(p.URL)
	m.headers.SetValue(p.Headers)
	m.body.SetValue(p.Body)
	m.script.SetValue(p.Script)
}

// syncEditable records the current editor state into the active document so
// dirty detection and tab switches see live values.
func (m *Model) syncEditable() {
	doc := m.eng.Sessions().Active()
	if doc == nil {
		return
	}
	if err := m.eng.Sessions().SetEditable(doc.ID, m.collectPayload()); err != nil {
		m.reportErr(err)
	}
}

func (m *Model) saveActive() {
	doc := m.eng.Sessions().Active()
	if doc == nil {
		m.setStatus("no open document", true)
		return
	}
	m.syncEditable()
	if err := m.eng.Sessions().Save(doc.ID); err != nil {
		m.reportErr(err)
		return
	}
	m.eng.Sessions().AppendConsole(doc.ID, "saved "+doc.Title)
	m.setStatus("saved "+doc.Title, false)
	m.rebuildTree()
}

// activateDoc switches tabs, carrying the leaving editor state into the
// document being left and loading the entered one.
func (m *Model) activateDoc(docID string) {
	leaving := m.collectPayload()
	var leavingPtr *workspace.Payload
	if m.eng.Sessions().Active() != nil {
		leavingPtr = &leaving
	}
	doc, err := m.eng.Sessions().Activate(docID, leavingPtr)
	if err != nil {
		m.reportErr(err)
		return
	}
	m.loadPayload(doc.Editable())
	m.consoleOff = 0
	m.diffMode = false
}

func (m *Model) cycleDoc(delta int) {
	docs := m.eng.Sessions().Documents()
	if len(docs) == 0 {
		return
	}
	active := m.eng.Sessions().Active()
	idx := 0
	if active != nil {
		for i, d := range docs {
			if d.ID == active.ID {
				idx = (i + delta + len(docs)) % len(docs)
				break
			}
		}
	}
	m.activateDoc(docs[idx].ID)
}

func (m *Model) closeActive() {
	doc := m.eng.Sessions().Active()
	if doc == nil {
		return
	}
	m.syncEditable()
	if m.cfg.ConfirmCloseDirty && m.eng.Sessions().IsDirty(doc.ID) {
		m.pendingClose = doc.ID
		m.setStatus("discard unsaved changes to "+doc.Title+"? (y/n)", false)
		return
	}
	m.eng.Sessions().Close(doc.ID)
	m.afterClose()
}

func (m *Model) afterClose() {
	if next := m.eng.Sessions().Active(); next != nil {
		m.loadPayload(next.Editable())
	} else {
		m.loadPayload(workspace.Payload{})
		m.focus = focusTree
	}
	m.rebuildTree()
}

func (m *Model) copyURL() {
	url := strings.TrimSpace(m.url.Value())
	if url == "" {
		m.setStatus("nothing to copy", true)
		return
	}
	if err := clipboard.WriteAll(url); err != nil {
		m.reportErr(err)
		return
	}
	m.setStatus("url copied", false)
}

// unsavedDiff renders a unified diff between the saved baseline and the
// in-progress edits of the active document.
func (m *Model) unsavedDiff() string {
	doc := m.eng.Sessions().Active()
	if doc == nil {
		return ""
	}
	m.syncEditable()
	before := payloadText(doc.Baseline())
	after := payloadText(doc.Editable())
	if before == after {
		return "no unsaved changes"
	}
	return udiff.Unified("saved", "editing", before, after)
}

func payloadText(p workspace.Payload) string {
	var b strings.Builder
	b.WriteString("method: " + p.Method + "\n")
	b.WriteString("url: " + p.URL + "\n")
	b.WriteString("headers:\n" + p.Headers + "\n")
	b.WriteString("body:\n" + p.Body + "\n")
	b.WriteString("script:\n" + p.Script + "\n")
	return b.String()
}
