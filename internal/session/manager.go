package session

import (
	"github.com/google/uuid"

	"github.com/davrell/reqnest/internal/errdef"
	"github.com/davrell/reqnest/internal/workspace"
)

// Store is the persistent backend documents load from and save to. Calls
// are synchronous and assumed fast (local storage).
type Store interface {
	LoadPayload(requestID string) (workspace.Payload, error)
	SavePayload(requestID string, p workspace.Payload) error
}

// Revealer receives force-expand registrations so the tree reveals a
// request's containing folder chain when it is opened.
type Revealer interface {
	ForceExpand(ids ...string)
}

// Document is one open editor tab. The editable snapshot tracks in-progress
// edits, the baseline snapshot the last persisted values. The console
// buffer is ephemeral: never persisted, never shared, reset on every
// activation.
type Document struct {
	ID        string
	RequestID string
	Title     string
	editable  workspace.Payload
	baseline  workspace.Payload
	console   []string
}

func (d *Document) Editable() workspace.Payload { return d.editable }
func (d *Document) Baseline() workspace.Payload { return d.baseline }
func (d *Document) Console() []string           { return append([]string(nil), d.console...) }

// Manager holds the ordered list of open documents and the single active
// one. It owns the document list; the UI never mutates it directly.
type Manager struct {
	store  Store
	model  *workspace.TreeModel
	reveal Revealer
	docs   []*Document
	active string
	newID  func() string
}

func NewManager(store Store, model *workspace.TreeModel, reveal Revealer) *Manager {
	return &Manager{
		store:  store,
		model:  model,
		reveal: reveal,
		newID:  uuid.NewString,
	}
}

// Documents returns the open tabs in order.
func (m *Manager) Documents() []*Document {
	return append([]*Document(nil), m.docs...)
}

// Active returns the currently active document, or nil.
func (m *Manager) Active() *Document {
	return m.byID(m.active)
}

func (m *Manager) byID(id string) *Document {
	for _, d := range m.docs {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// ByRequest returns the open document editing a request, or nil.
func (m *Manager) ByRequest(requestID string) *Document {
	if requestID == "" {
		return nil
	}
	for _, d := range m.docs {
		if d.RequestID == requestID {
			return d
		}
	}
	return nil
}

// Open activates the existing document for a request, or creates one:
// baseline loads from the store, the editable snapshot starts equal to it,
// the console starts empty. The request's containing folder chain is
// registered for force-expansion so the tree reveals it on the next rebuild.
func (m *Manager) Open(requestID string) (*Document, error) {
	if existing := m.ByRequest(requestID); existing != nil {
		return m.Activate(existing.ID, nil)
	}
	req, ok := m.model.Request(requestID)
	if !ok {
		return nil, errdef.New(errdef.CodeInvalidParent, "request %s does not exist", requestID)
	}
	baseline, err := m.store.LoadPayload(requestID)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodePersistence, err, "load request")
	}
	doc := &Document{
		ID:        m.newID(),
		RequestID: requestID,
		Title:     req.Name,
		editable:  baseline,
		baseline:  baseline,
	}
	m.docs = append(m.docs, doc)
	if m.reveal != nil {
		m.reveal.ForceExpand(m.model.Ancestors(requestID)...)
	}
	return m.Activate(doc.ID, nil)
}

// NewDraft opens an unsaved new request, not yet bound to a tree node.
func (m *Manager) NewDraft(title string) *Document {
	doc := &Document{ID: m.newID(), Title: title}
	m.docs = append(m.docs, doc)
	m.active = doc.ID
	return doc
}

// Activate switches the active document. leavingFields, when non-nil, holds
// the editor's current field values and is captured into the document being
// left, so in-progress edits survive tab switches. The entered document's
// console is unconditionally reset: output never leaks between documents.
func (m *Manager) Activate(docID string, leavingFields *workspace.Payload) (*Document, error) {
	next := m.byID(docID)
	if next == nil {
		return nil, errdef.New(errdef.CodeUnknown, "document %s is not open", docID)
	}
	if prev := m.byID(m.active); prev != nil && prev.ID != docID && leavingFields != nil {
		prev.editable = *leavingFields
	}
	m.active = next.ID
	next.console = nil
	return next, nil
}

// SetEditable records an edit into a document's editable snapshot.
func (m *Manager) SetEditable(docID string, p workspace.Payload) error {
	doc := m.byID(docID)
	if doc == nil {
		return errdef.New(errdef.CodeUnknown, "document %s is not open", docID)
	}
	doc.editable = p
	return nil
}

// AppendConsole adds a line to a document's console buffer.
func (m *Manager) AppendConsole(docID, line string) {
	if doc := m.byID(docID); doc != nil {
		doc.console = append(doc.console, line)
	}
}

// IsDirty reports whether a document's editable snapshot differs from its
// baseline, field-wise, script text included.
func (m *Manager) IsDirty(docID string) bool {
	doc := m.byID(docID)
	if doc == nil {
		return false
	}
	return doc.editable != doc.baseline
}

// Bind attaches a draft document to a request node, usually right after the
// node was created for it.
func (m *Manager) Bind(docID, requestID string) error {
	doc := m.byID(docID)
	if doc == nil {
		return errdef.New(errdef.CodeUnknown, "document %s is not open", docID)
	}
	if _, ok := m.model.Request(requestID); !ok {
		return errdef.New(errdef.CodeInvalidParent, "request %s does not exist", requestID)
	}
	doc.RequestID = requestID
	return nil
}

// Save persists the editable snapshot, then promotes it to baseline. On a
// store failure nothing changes in memory: the document stays dirty and the
// error surfaces to the caller.
func (m *Manager) Save(docID string) error {
	doc := m.byID(docID)
	if doc == nil {
		return errdef.New(errdef.CodeUnknown, "document %s is not open", docID)
	}
	if doc.RequestID == "" {
		return errdef.New(errdef.CodePersistence, "document %q is not bound to a request", doc.Title)
	}
	if err := m.store.SavePayload(doc.RequestID, doc.editable); err != nil {
		return errdef.Wrap(errdef.CodePersistence, err, "save request")
	}
	doc.baseline = doc.editable
	return nil
}

// Close discards a document's in-memory state. Dirty confirmation is the
// caller's concern; by the time Close runs the decision is made.
func (m *Manager) Close(docID string) {
	for i, d := range m.docs {
		if d.ID != docID {
			continue
		}
		m.docs = append(m.docs[:i], m.docs[i+1:]...)
		if m.active == docID {
			m.active = ""
			if len(m.docs) > 0 {
				idx := i
				if idx >= len(m.docs) {
					idx = len(m.docs) - 1
				}
				m.active = m.docs[idx].ID
			}
		}
		return
	}
}

// CloseRequest closes any document bound to a request, used when the
// request (or an ancestor) is deleted.
func (m *Manager) CloseRequest(requestID string) {
	if doc := m.ByRequest(requestID); doc != nil {
		m.Close(doc.ID)
	}
}
