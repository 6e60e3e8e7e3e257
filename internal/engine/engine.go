package engine

import (
	"context"

	"github.com/davrell/reqnest/internal/dragdrop"
	"github.com/davrell/reqnest/internal/errdef"
	"github.com/davrell/reqnest/internal/expand"
	"github.com/davrell/reqnest/internal/order"
	"github.com/davrell/reqnest/internal/session"
	"github.com/davrell/reqnest/internal/workspace"
)

// Persister is the store surface the engine drives. Writes are synchronous
// and transactional: a failed sync leaves the database at the last
// consistent state.
type Persister interface {
	LoadWorkspace(ctx context.Context) ([]workspace.Collection, []workspace.Folder, []workspace.Request, error)
	SyncStructure(ctx context.Context, cols []workspace.Collection, folders []workspace.Folder, requests []workspace.Request) error
	LoadPayload(requestID string) (workspace.Payload, error)
	SavePayload(requestID string, p workspace.Payload) error
}

// Engine wires the tree model, drop policy, expansion tracker, session
// manager and store into the per-gesture control flow: validate, mutate,
// verify, persist, reconcile. One engine per workspace, driven by one UI
// thread.
type Engine struct {
	model    *workspace.TreeModel
	store    Persister
	tracker  *expand.Tracker
	sessions *session.Manager
}

// New loads the workspace from the store and assembles the engine.
func New(ctx context.Context, store Persister) (*Engine, error) {
	cols, folders, requests, err := store.LoadWorkspace(ctx)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		model:   workspace.FromEntities(cols, folders, requests),
		store:   store,
		tracker: expand.New(),
	}
	e.sessions = session.NewManager(store, e.model, e.tracker)
	return e, nil
}

func (e *Engine) Model() *workspace.TreeModel   { return e.model }
func (e *Engine) Sessions() *session.Manager    { return e.sessions }
func (e *Engine) Tracker() *expand.Tracker      { return e.tracker }
func (e *Engine) Snapshot() []workspace.Node    { return e.model.Snapshot() }

// Reconcile runs one expansion reconciliation pass over a view.
func (e *Engine) Reconcile(v expand.View) error {
	_, err := e.tracker.Reconcile(v, e.model.Ancestors)
	return err
}

// Busy reports whether a reconciliation pass is still in flight; structural
// gestures must wait it out.
func (e *Engine) Busy() bool {
	return e.tracker.Busy()
}

// guardGesture refuses a structural mutation while a reconciliation pass is
// mid-rebuild; the tree it would mutate is being redrawn from a snapshot.
func (e *Engine) guardGesture() error {
	if e.tracker.Busy() {
		return errdef.New(errdef.CodeUnknown, "gesture ignored: reconcile in flight")
	}
	return nil
}

// DragAttempt previews the drop verdict for a dragged node over a target.
// An empty target id is the canvas. No state changes.
func (e *Engine) DragAttempt(draggedID, targetID string) dragdrop.Verdict {
	draggedKind, ok := e.model.KindOf(draggedID)
	if !ok {
		return dragdrop.Reject
	}
	if targetID == "" {
		return dragdrop.Validate(draggedKind, workspace.KindCollection)
	}
	targetKind, ok := e.model.KindOf(targetID)
	if !ok {
		return dragdrop.Reject
	}
	return dragdrop.Decide(draggedKind, targetKind, e.sameSiblingGroup(draggedID, targetID))
}

func (e *Engine) sameSiblingGroup(aID, bID string) bool {
	aKind, _ := e.model.KindOf(aID)
	bKind, _ := e.model.KindOf(bID)
	if aKind != bKind {
		return false
	}
	switch aKind {
	case workspace.KindCollection:
		return true
	case workspace.KindFolder:
		a, _ := e.model.Folder(aID)
		b, _ := e.model.Folder(bID)
		return a.CollectionID == b.CollectionID && a.ParentFolderID == b.ParentFolderID
	case workspace.KindRequest:
		a, _ := e.model.Request(aID)
		b, _ := e.model.Request(bID)
		return a.CollectionID == b.CollectionID && a.FolderID == b.FolderID
	}
	return false
}

// Drop executes a validated drag gesture. A Reject verdict leaves the tree
// byte-for-byte unchanged. After an allowed drop the dragged node must still
// be reachable from the root; if not, the engine reloads the last
// consistent persisted state rather than leaving a dangling node.
func (e *Engine) Drop(ctx context.Context, draggedID, targetID string) (dragdrop.Verdict, error) {
	if err := e.guardGesture(); err != nil {
		return dragdrop.Reject, err
	}
	verdict := e.DragAttempt(draggedID, targetID)
	if verdict == dragdrop.Reject {
		return verdict, nil
	}

	var err error
	switch verdict {
	case dragdrop.AllowReorder:
		if targetID == "" || targetID == draggedID {
			err = e.model.Reorder(draggedID, order.Append())
		} else {
			err = e.model.Reorder(draggedID, order.After(targetID))
		}
	case dragdrop.AllowReparent:
		dest := targetID
		if dest == "" {
			dest, err = e.canvasCollection(draggedID)
			if err != nil {
				return dragdrop.Reject, err
			}
		}
		err = e.model.Move(draggedID, dest, order.Append())
	}
	if err != nil {
		return verdict, err
	}

	if !e.model.Reachable(draggedID) {
		reloadErr := e.Reload(ctx)
		if reloadErr != nil {
			return verdict, reloadErr
		}
		return verdict, errdef.New(errdef.CodeOrphan, "node %s unreachable after drop; workspace reloaded", draggedID)
	}

	if err := e.persist(ctx); err != nil {
		return verdict, err
	}
	e.tracker.ForceExpand(e.model.Ancestors(draggedID)...)
	return verdict, nil
}

// canvasCollection resolves the collection a canvas drop lands in: the
// dragged node's own collection root.
func (e *Engine) canvasCollection(draggedID string) (string, error) {
	if f, ok := e.model.Folder(draggedID); ok {
		return f.CollectionID, nil
	}
	if r, ok := e.model.Request(draggedID); ok {
		return r.CollectionID, nil
	}
	return "", errdef.New(errdef.CodeInvalidParent, "node %s cannot drop on the canvas", draggedID)
}

// CreateCollection adds and persists a root-level collection.
func (e *Engine) CreateCollection(ctx context.Context, name string) (workspace.Collection, error) {
	if err := e.guardGesture(); err != nil {
		return workspace.Collection{}, err
	}
	c, err := e.model.CreateCollection(name, order.Append())
	if err != nil {
		return workspace.Collection{}, err
	}
	if err := e.persist(ctx); err != nil {
		return workspace.Collection{}, err
	}
	return c, nil
}

// CreateFolder adds and persists a folder under a collection or folder.
func (e *Engine) CreateFolder(ctx context.Context, parentID, name string) (workspace.Folder, error) {
	if err := e.guardGesture(); err != nil {
		return workspace.Folder{}, err
	}
	collectionID, folderID, err := e.containerOf(parentID)
	if err != nil {
		return workspace.Folder{}, err
	}
	f, err := e.model.CreateFolder(collectionID, folderID, name, order.Append())
	if err != nil {
		return workspace.Folder{}, err
	}
	if err := e.persist(ctx); err != nil {
		return workspace.Folder{}, err
	}
	e.tracker.ForceExpand(parentID)
	return f, nil
}

// CreateRequest adds and persists a request under a collection or folder.
func (e *Engine) CreateRequest(ctx context.Context, parentID, name string) (workspace.Request, error) {
	if err := e.guardGesture(); err != nil {
		return workspace.Request{}, err
	}
	collectionID, folderID, err := e.containerOf(parentID)
	if err != nil {
		return workspace.Request{}, err
	}
	r, err := e.model.CreateRequest(collectionID, folderID, name, order.Append())
	if err != nil {
		return workspace.Request{}, err
	}
	if err := e.persist(ctx); err != nil {
		return workspace.Request{}, err
	}
	e.tracker.ForceExpand(parentID)
	return r, nil
}

func (e *Engine) containerOf(parentID string) (string, string, error) {
	if c, ok := e.model.Collection(parentID); ok {
		return c.ID, "", nil
	}
	if f, ok := e.model.Folder(parentID); ok {
		return f.CollectionID, f.ID, nil
	}
	return "", "", errdef.New(errdef.CodeInvalidParent, "parent %s is not a collection or folder", parentID)
}

// Delete removes a node, cascades, persists, closes sessions for removed
// requests and queues the surviving ancestors for expansion so the tree
// keeps them open after the rebuild.
func (e *Engine) Delete(ctx context.Context, nodeID string) error {
	if err := e.guardGesture(); err != nil {
		return err
	}
	before := make(map[string]struct{})
	for _, r := range e.model.Requests() {
		before[r.ID] = struct{}{}
	}
	ancestors, err := e.model.Delete(nodeID)
	if err != nil {
		return err
	}
	if err := e.persist(ctx); err != nil {
		return err
	}
	for id := range before {
		if _, ok := e.model.Request(id); !ok {
			e.sessions.CloseRequest(id)
		}
	}
	e.tracker.ForceExpand(ancestors...)
	return nil
}

// Rename renames a node and persists.
func (e *Engine) Rename(ctx context.Context, nodeID, name string) error {
	if err := e.guardGesture(); err != nil {
		return err
	}
	if err := e.model.Rename(nodeID, name); err != nil {
		return err
	}
	return e.persist(ctx)
}

// persist syncs the model to the store; on failure the in-memory model is
// rolled back to the store's (still consistent) state so no partial commit
// is ever visible.
func (e *Engine) persist(ctx context.Context) error {
	err := e.store.SyncStructure(ctx, e.model.Collections(), e.model.Folders(), e.model.Requests())
	if err == nil {
		return nil
	}
	if reloadErr := e.Reload(ctx); reloadErr != nil {
		return reloadErr
	}
	return errdef.Wrap(errdef.CodePersistence, err, "changes rolled back")
}

// Reload replaces the in-memory model with the last consistent persisted
// state. Open sessions keep their snapshots; documents for requests that no
// longer exist are closed.
func (e *Engine) Reload(ctx context.Context) error {
	cols, folders, requests, err := e.store.LoadWorkspace(ctx)
	if err != nil {
		return err
	}
	fresh := workspace.FromEntities(cols, folders, requests)
	*e.model = *fresh
	for _, d := range e.sessions.Documents() {
		if d.RequestID == "" {
			continue
		}
		if _, ok := e.model.Request(d.RequestID); !ok {
			e.sessions.Close(d.ID)
		}
	}
	return nil
}
