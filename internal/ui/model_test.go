package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/davrell/reqnest/internal/config"
	"github.com/davrell/reqnest/internal/engine"
	"github.com/davrell/reqnest/internal/theme"
	"github.com/davrell/reqnest/internal/workspace"
)

type fakeStore struct {
	cols     []workspace.Collection
	folders  []workspace.Folder
	requests []workspace.Request
	payloads map[string]workspace.Payload
}

func newFakeStore() *fakeStore {
	return &fakeStore{payloads: make(map[string]workspace.Payload)}
}

func (s *fakeStore) LoadWorkspace(context.Context) ([]workspace.Collection, []workspace.Folder, []workspace.Request, error) {
	return s.cols, s.folders, s.requests, nil
}

func (s *fakeStore) SyncStructure(_ context.Context, cols []workspace.Collection, folders []workspace.Folder, requests []workspace.Request) error {
	s.cols = append([]workspace.Collection(nil), cols...)
	s.folders = append([]workspace.Folder(nil), folders...)
	s.requests = append([]workspace.Request(nil), requests...)
	return nil
}

func (s *fakeStore) LoadPayload(id string) (workspace.Payload, error) {
	return s.payloads[id], nil
}

func (s *fakeStore) SavePayload(id string, p workspace.Payload) error {
	s.payloads[id] = p
	return nil
}

func fixture(t *testing.T) (*Model, workspace.Collection, workspace.Folder, workspace.Request) {
	t.Helper()
	ctx := context.Background()
	eng, err := engine.New(ctx, newFakeStore())
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	c, err := eng.CreateCollection(ctx, "api")
	if err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}
	f, err := eng.CreateFolder(ctx, c.ID, "auth")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	r, err := eng.CreateRequest(ctx, f.ID, "login")
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	cfg := config.Settings{Layout: config.DefaultLayoutSettings()}
	m := New(eng, cfg, theme.DefaultTheme(), nil)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, c, f, r
}

func TestOpenRequestLoadsEditorAndRevealsChain(t *testing.T) {
	m, c, f, r := fixture(t)

	if !m.nav.SelectByID(r.ID) {
		// Creating the request queued its ancestors, so the chain is
		// already expanded and the row visible.
		t.Fatalf("request row not visible after creation")
	}
	m.treeActivate()

	doc := m.eng.Sessions().Active()
	if doc == nil || doc.RequestID != r.ID {
		t.Fatalf("open did not activate the request document")
	}
	if m.focus != focusEditor {
		t.Fatalf("focus should land in the editor after opening")
	}

	expanded := map[string]bool{}
	for _, id := range m.nav.ExpandedIDs() {
		expanded[id] = true
	}
	if !expanded[c.ID] || !expanded[f.ID] {
		t.Fatalf("containing chain not expanded: %v", m.nav.ExpandedIDs())
	}
}

func TestExpansionSurvivesStructuralRebuild(t *testing.T) {
	m, c, f, _ := fixture(t)

	m.nav.ApplyExpanded([]string{c.ID, f.ID})
	if _, err := m.eng.CreateRequest(context.Background(), f.ID, "logout"); err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	m.rebuildTree()

	expanded := map[string]bool{}
	for _, id := range m.nav.ExpandedIDs() {
		expanded[id] = true
	}
	if !expanded[c.ID] || !expanded[f.ID] {
		t.Fatalf("expansion lost across rebuild: %v", m.nav.ExpandedIDs())
	}
}

func TestRejectedDropKeepsTree(t *testing.T) {
	m, _, f, r := fixture(t)
	ctx := context.Background()
	r2, err := m.eng.CreateRequest(ctx, f.ID, "refresh")
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	m.rebuildTree()
	before := m.eng.Snapshot()

	m.nav.SelectByID(r2.ID)
	m.treeGrabOrDrop()
	if m.grabbedID != r2.ID {
		t.Fatalf("grab did not latch: %q", m.grabbedID)
	}
	m.nav.SelectByID(r.ID)
	m.treeGrabOrDrop()

	if m.grabbedID != "" {
		t.Fatalf("drop must release the grab")
	}
	after := m.eng.Snapshot()
	if len(before) != len(after) {
		t.Fatalf("tree changed after rejected drop")
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("row %d changed after rejected drop", i)
		}
	}
}

func TestEditTypingMarksDocumentDirty(t *testing.T) {
	m, _, _, r := fixture(t)
	m.nav.SelectByID(r.ID)
	m.treeActivate()
	doc := m.eng.Sessions().Active()
	if doc == nil {
		t.Fatalf("no active document")
	}
	if m.eng.Sessions().IsDirty(doc.ID) {
		t.Fatalf("fresh document must start clean")
	}

	m.focusField(fieldURL)
	m.handleEditorKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if !m.eng.Sessions().IsDirty(doc.ID) {
		t.Fatalf("typing must dirty the document")
	}

	m.saveActive()
	if m.eng.Sessions().IsDirty(doc.ID) {
		t.Fatalf("save must clear the dirty flag")
	}
}

func TestFilterKeyRoutesToNavigator(t *testing.T) {
	m, _, _, _ := fixture(t)
	m.handleTreeKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filtering {
		t.Fatalf("slash must enter filter mode")
	}
	m.handleFilter(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("log")})
	if m.nav.Filter() != "log" {
		t.Fatalf("filter text not forwarded: %q", m.nav.Filter())
	}
	m.handleFilter(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filtering || m.nav.Filter() != "" {
		t.Fatalf("esc must clear filter mode")
	}
}
