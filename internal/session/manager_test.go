package session

import (
	"errors"
	"testing"

	"github.com/davrell/reqnest/internal/errdef"
	"github.com/davrell/reqnest/internal/order"
	"github.com/davrell/reqnest/internal/workspace"
)

type memStore struct {
	payloads map[string]workspace.Payload
	failSave bool
	failLoad bool
}

func newMemStore() *memStore {
	return &memStore{payloads: make(map[string]workspace.Payload)}
}

func (s *memStore) LoadPayload(id string) (workspace.Payload, error) {
	if s.failLoad {
		return workspace.Payload{}, errors.New("load refused")
	}
	return s.payloads[id], nil
}

func (s *memStore) SavePayload(id string, p workspace.Payload) error {
	if s.failSave {
		return errors.New("write refused")
	}
	s.payloads[id] = p
	return nil
}

type recordingRevealer struct {
	ids []string
}

func (r *recordingRevealer) ForceExpand(ids ...string) {
	r.ids = append(r.ids, ids...)
}

func fixture(t *testing.T) (*Manager, *memStore, *recordingRevealer, workspace.Request, workspace.Folder) {
	t.Helper()
	model := workspace.NewTreeModel()
	c, err := model.CreateCollection("ws", order.Append())
	if err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}
	f, err := model.CreateFolder(c.ID, "", "api", order.Append())
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	r, err := model.CreateRequest(c.ID, f.ID, "ping", order.Append())
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	store := newMemStore()
	store.payloads[r.ID] = workspace.Payload{Method: "GET", URL: "https://api.test/ping"}
	reveal := &recordingRevealer{}
	return NewManager(store, model, reveal), store, reveal, r, f
}

func TestOpenLoadsBaselineAndRevealsFolderChain(t *testing.T) {
	m, store, reveal, req, folder := fixture(t)

	doc, err := m.Open(req.ID)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if doc.Baseline() != store.payloads[req.ID] {
		t.Fatalf("baseline not loaded from store")
	}
	if doc.Editable() != doc.Baseline() {
		t.Fatalf("editable must start equal to baseline")
	}
	if len(doc.Console()) != 0 {
		t.Fatalf("console must start empty")
	}
	found := false
	for _, id := range reveal.ids {
		if id == folder.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("containing folder %s not registered for expansion, got %v", folder.ID, reveal.ids)
	}
}

func TestOpenTwiceActivatesExistingDocument(t *testing.T) {
	m, _, _, req, _ := fixture(t)
	first, _ := m.Open(req.ID)
	second, err := m.Open(req.ID)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same document, got %s and %s", first.ID, second.ID)
	}
	if len(m.Documents()) != 1 {
		t.Fatalf("expected a single tab, got %d", len(m.Documents()))
	}
}

func TestTabSwitchPreservesEditsAndResetsConsole(t *testing.T) {
	m, _, _, req, folder := fixture(t)
	model := managerModel(m)
	other, err := model.CreateRequest(req.CollectionID, folder.ID, "pong", order.Append())
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	d, _ := m.Open(req.ID)
	e, _ := m.Open(other.ID)

	// edit D's script, switch to E capturing the fields, then come back
	edited := d.Editable()
	edited.Script = "x"
	if _, err := m.Activate(d.ID, nil); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	m.AppendConsole(d.ID, "old run output")
	if _, err := m.Activate(e.ID, &edited); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	back, err := m.Activate(d.ID, nil)
	if err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if back.Editable().Script != "x" {
		t.Fatalf("in-progress edit lost: %q", back.Editable().Script)
	}
	if len(back.Console()) != 0 {
		t.Fatalf("console must reset on reactivation, got %v", back.Console())
	}
}

func TestDirtyTracksSaveAndSubsequentEdits(t *testing.T) {
	m, store, _, req, _ := fixture(t)
	doc, _ := m.Open(req.ID)
	if m.IsDirty(doc.ID) {
		t.Fatalf("fresh document must be clean")
	}

	p := doc.Editable()
	p.Body = `{"q":1}`
	if err := m.SetEditable(doc.ID, p); err != nil {
		t.Fatalf("SetEditable failed: %v", err)
	}
	if !m.IsDirty(doc.ID) {
		t.Fatalf("edit must mark document dirty")
	}
	if err := m.Save(doc.ID); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if m.IsDirty(doc.ID) {
		t.Fatalf("save must clear dirty")
	}
	if store.payloads[req.ID].Body != `{"q":1}` {
		t.Fatalf("store not updated")
	}

	p.Script = "assert(status == 200)"
	_ = m.SetEditable(doc.ID, p)
	if !m.IsDirty(doc.ID) {
		t.Fatalf("script edit must mark document dirty again")
	}
}

func TestSaveFailureKeepsBaseline(t *testing.T) {
	m, store, _, req, _ := fixture(t)
	doc, _ := m.Open(req.ID)
	p := doc.Editable()
	p.URL = "https://api.test/changed"
	_ = m.SetEditable(doc.ID, p)

	store.failSave = true
	err := m.Save(doc.ID)
	if !errdef.Is(err, errdef.CodePersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if !m.IsDirty(doc.ID) {
		t.Fatalf("failed save must leave the document dirty")
	}
}

func TestDraftRequiresBindBeforeSave(t *testing.T) {
	m, _, _, req, _ := fixture(t)
	draft := m.NewDraft("untitled")
	if err := m.Save(draft.ID); !errdef.Is(err, errdef.CodePersistence) {
		t.Fatalf("expected persistence error for unbound draft, got %v", err)
	}
	if err := m.Bind(draft.ID, req.ID); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if err := m.Save(draft.ID); err != nil {
		t.Fatalf("Save after bind failed: %v", err)
	}
}

func TestCloseActiveMovesToNeighbor(t *testing.T) {
	m, _, _, req, folder := fixture(t)
	model := managerModel(m)
	other, _ := model.CreateRequest(req.CollectionID, folder.ID, "pong", order.Append())
	a, _ := m.Open(req.ID)
	b, _ := m.Open(other.ID)

	m.Close(b.ID)
	if m.Active() == nil || m.Active().ID != a.ID {
		t.Fatalf("expected neighbor tab to activate")
	}
	m.Close(a.ID)
	if m.Active() != nil {
		t.Fatalf("expected no active document")
	}
}

func managerModel(m *Manager) *workspace.TreeModel {
	return m.model
}
