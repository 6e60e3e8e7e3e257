package workspace

import (
	"sort"

	"github.com/google/uuid"

	"github.com/davrell/reqnest/internal/errdef"
	"github.com/davrell/reqnest/internal/order"
)

// TreeModel owns the canonical entity set for one workspace. All mutations
// go through its methods; each either applies fully or leaves the model
// untouched. The model is single-actor: callers drive it from one UI thread.
type TreeModel struct {
	collections map[string]*Collection
	folders     map[string]*Folder
	requests    map[string]*Request
	newID       func() string
}

func NewTreeModel() *TreeModel {
	return &TreeModel{
		collections: make(map[string]*Collection),
		folders:     make(map[string]*Folder),
		requests:    make(map[string]*Request),
		newID:       uuid.NewString,
	}
}

// FromEntities builds a model from store rows, trusting their consistency.
func FromEntities(cols []Collection, folders []Folder, requests []Request) *TreeModel {
	m := NewTreeModel()
	for i := range cols {
		c := cols[i]
		m.collections[c.ID] = &c
	}
	for i := range folders {
		f := folders[i]
		m.folders[f.ID] = &f
	}
	for i := range requests {
		r := requests[i]
		m.requests[r.ID] = &r
	}
	return m
}

// SetIDFunc overrides id generation, used by tests and import.
func (m *TreeModel) SetIDFunc(fn func() string) {
	if fn != nil {
		m.newID = fn
	}
}

// Collections returns every collection, unordered.
func (m *TreeModel) Collections() []Collection {
	out := make([]Collection, 0, len(m.collections))
	for _, c := range m.collections {
		out = append(out, *c)
	}
	return out
}

// Folders returns every folder, unordered.
func (m *TreeModel) Folders() []Folder {
	out := make([]Folder, 0, len(m.folders))
	for _, f := range m.folders {
		out = append(out, *f)
	}
	return out
}

// Requests returns every request, unordered.
func (m *TreeModel) Requests() []Request {
	out := make([]Request, 0, len(m.requests))
	for _, r := range m.requests {
		out = append(out, *r)
	}
	return out
}

// KindOf reports the kind of a node id.
func (m *TreeModel) KindOf(id string) (NodeKind, bool) {
	if _, ok := m.collections[id]; ok {
		return KindCollection, true
	}
	if _, ok := m.folders[id]; ok {
		return KindFolder, true
	}
	if _, ok := m.requests[id]; ok {
		return KindRequest, true
	}
	return 0, false
}

func (m *TreeModel) Collection(id string) (Collection, bool) {
	c, ok := m.collections[id]
	if !ok {
		return Collection{}, false
	}
	return *c, true
}

func (m *TreeModel) Folder(id string) (Folder, bool) {
	f, ok := m.folders[id]
	if !ok {
		return Folder{}, false
	}
	return *f, true
}

func (m *TreeModel) Request(id string) (Request, bool) {
	r, ok := m.requests[id]
	if !ok {
		return Request{}, false
	}
	return *r, true
}

// CreateCollection adds a root-level collection.
func (m *TreeModel) CreateCollection(name string, p order.Placement) (Collection, error) {
	res, err := order.Resolve(m.collectionSiblings(""), p)
	if err != nil {
		return Collection{}, err
	}
	m.applyRenumber(res.Renumbered)
	c := &Collection{ID: m.newID(), Name: name, OrderIndex: res.OrderIndex}
	m.collections[c.ID] = c
	return *c, nil
}

// CreateFolder adds a folder under a collection root or another folder in
// the same collection.
func (m *TreeModel) CreateFolder(collectionID, parentFolderID, name string, p order.Placement) (Folder, error) {
	if _, ok := m.collections[collectionID]; !ok {
		return Folder{}, errdef.New(errdef.CodeInvalidParent, "collection %s does not exist", collectionID)
	}
	if parentFolderID != "" {
		parent, ok := m.folders[parentFolderID]
		if !ok || parent.CollectionID != collectionID {
			return Folder{}, errdef.New(errdef.CodeInvalidParent, "parent folder %s not in collection %s", parentFolderID, collectionID)
		}
	}
	res, err := order.Resolve(m.folderSiblings(collectionID, parentFolderID, ""), p)
	if err != nil {
		return Folder{}, err
	}
	m.applyRenumber(res.Renumbered)
	f := &Folder{
		ID:             m.newID(),
		CollectionID:   collectionID,
		ParentFolderID: parentFolderID,
		Name:           name,
		OrderIndex:     res.OrderIndex,
	}
	m.folders[f.ID] = f
	return *f, nil
}

// CreateRequest adds a request under a collection root or a folder in the
// same collection.
func (m *TreeModel) CreateRequest(collectionID, folderID, name string, p order.Placement) (Request, error) {
	if _, ok := m.collections[collectionID]; !ok {
		return Request{}, errdef.New(errdef.CodeInvalidParent, "collection %s does not exist", collectionID)
	}
	if folderID != "" {
		folder, ok := m.folders[folderID]
		if !ok || folder.CollectionID != collectionID {
			return Request{}, errdef.New(errdef.CodeInvalidParent, "folder %s not in collection %s", folderID, collectionID)
		}
	}
	res, err := order.Resolve(m.requestSiblings(collectionID, folderID, ""), p)
	if err != nil {
		return Request{}, err
	}
	m.applyRenumber(res.Renumbered)
	r := &Request{
		ID:           m.newID(),
		CollectionID: collectionID,
		FolderID:     folderID,
		Name:         name,
		OrderIndex:   res.OrderIndex,
	}
	m.requests[r.ID] = r
	return *r, nil
}

// Move reparents a folder or request. The new parent is a collection id
// (node becomes a root child of that collection) or a folder id. Collections
// cannot be moved.
func (m *TreeModel) Move(nodeID, newParentID string, p order.Placement) error {
	kind, ok := m.KindOf(nodeID)
	if !ok {
		return errdef.New(errdef.CodeInvalidParent, "node %s does not exist", nodeID)
	}
	switch kind {
	case KindCollection:
		return errdef.New(errdef.CodeInvalidParent, "collections cannot be reparented")
	case KindFolder:
		return m.moveFolder(nodeID, newParentID, p)
	case KindRequest:
		return m.moveRequest(nodeID, newParentID, p)
	}
	return errdef.New(errdef.CodeInvalidParent, "unknown node kind")
}

func (m *TreeModel) moveFolder(id, newParentID string, p order.Placement) error {
	f := m.folders[id]
	destCollection, destParent, err := m.resolveContainer(newParentID)
	if err != nil {
		return err
	}
	if destParent != "" && m.folderInSubtree(destParent, id) {
		return errdef.New(errdef.CodeCyclicMove, "folder %s cannot move into its own subtree", id)
	}
	res, err := order.Resolve(m.folderSiblings(destCollection, destParent, id), p)
	if err != nil {
		return err
	}
	m.applyRenumber(res.Renumbered)
	if f.CollectionID != destCollection {
		m.retag(id, destCollection)
	}
	f.CollectionID = destCollection
	f.ParentFolderID = destParent
	f.OrderIndex = res.OrderIndex
	return nil
}

func (m *TreeModel) moveRequest(id, newParentID string, p order.Placement) error {
	r := m.requests[id]
	destCollection, destFolder, err := m.resolveContainer(newParentID)
	if err != nil {
		return err
	}
	res, err := order.Resolve(m.requestSiblings(destCollection, destFolder, id), p)
	if err != nil {
		return err
	}
	m.applyRenumber(res.Renumbered)
	r.CollectionID = destCollection
	r.FolderID = destFolder
	r.OrderIndex = res.OrderIndex
	return nil
}

// resolveContainer maps a parent id to (collectionID, folderID). A
// collection id yields an empty folder id: root-level placement.
func (m *TreeModel) resolveContainer(parentID string) (string, string, error) {
	if c, ok := m.collections[parentID]; ok {
		return c.ID, "", nil
	}
	if f, ok := m.folders[parentID]; ok {
		return f.CollectionID, f.ID, nil
	}
	return "", "", errdef.New(errdef.CodeInvalidParent, "parent %s is not a collection or folder", parentID)
}

// retag rewrites CollectionID across a folder subtree after a cross
// collection move.
func (m *TreeModel) retag(folderID, collectionID string) {
	for _, f := range m.folders {
		if f.ParentFolderID == folderID {
			m.retag(f.ID, collectionID)
			f.CollectionID = collectionID
		}
	}
	for _, r := range m.requests {
		if r.FolderID == folderID {
			r.CollectionID = collectionID
		}
	}
}

// Reorder changes a node's position within its current sibling group.
func (m *TreeModel) Reorder(nodeID string, p order.Placement) error {
	kind, ok := m.KindOf(nodeID)
	if !ok {
		return errdef.New(errdef.CodeInvalidParent, "node %s does not exist", nodeID)
	}
	var siblings []order.Sibling
	switch kind {
	case KindCollection:
		siblings = m.collectionSiblings(nodeID)
	case KindFolder:
		f := m.folders[nodeID]
		siblings = m.folderSiblings(f.CollectionID, f.ParentFolderID, nodeID)
	case KindRequest:
		r := m.requests[nodeID]
		siblings = m.requestSiblings(r.CollectionID, r.FolderID, nodeID)
	}
	res, err := order.Resolve(siblings, p)
	if err != nil {
		return err
	}
	m.applyRenumber(res.Renumbered)
	switch kind {
	case KindCollection:
		m.collections[nodeID].OrderIndex = res.OrderIndex
	case KindFolder:
		m.folders[nodeID].OrderIndex = res.OrderIndex
	case KindRequest:
		m.requests[nodeID].OrderIndex = res.OrderIndex
	}
	return nil
}

// Rename updates a node's display name.
func (m *TreeModel) Rename(nodeID, name string) error {
	kind, ok := m.KindOf(nodeID)
	if !ok {
		return errdef.New(errdef.CodeInvalidParent, "node %s does not exist", nodeID)
	}
	switch kind {
	case KindCollection:
		m.collections[nodeID].Name = name
	case KindFolder:
		m.folders[nodeID].Name = name
	case KindRequest:
		m.requests[nodeID].Name = name
	}
	return nil
}

// Delete removes a node and cascades to its descendants. It returns the
// ancestor chain (nearest first) of the deleted node, so callers can keep
// those ancestors visually expanded after the rebuild.
func (m *TreeModel) Delete(nodeID string) ([]string, error) {
	kind, ok := m.KindOf(nodeID)
	if !ok {
		return nil, errdef.New(errdef.CodeInvalidParent, "node %s does not exist", nodeID)
	}
	ancestors := m.Ancestors(nodeID)
	switch kind {
	case KindCollection:
		for id, f := range m.folders {
			if f.CollectionID == nodeID {
				delete(m.folders, id)
			}
		}
		for id, r := range m.requests {
			if r.CollectionID == nodeID {
				delete(m.requests, id)
			}
		}
		delete(m.collections, nodeID)
	case KindFolder:
		m.deleteFolderSubtree(nodeID)
	case KindRequest:
		delete(m.requests, nodeID)
	}
	return ancestors, nil
}

func (m *TreeModel) deleteFolderSubtree(folderID string) {
	for id, f := range m.folders {
		if f.ParentFolderID == folderID {
			m.deleteFolderSubtree(id)
		}
	}
	for id, r := range m.requests {
		if r.FolderID == folderID {
			delete(m.requests, id)
		}
	}
	delete(m.folders, folderID)
}

// Ancestors returns the chain of container ids above a node, nearest first.
// For a request in folder F of collection C: [F, ..., C].
func (m *TreeModel) Ancestors(nodeID string) []string {
	var chain []string
	push := func(folderID, collectionID string) {
		for folderID != "" {
			chain = append(chain, folderID)
			f, ok := m.folders[folderID]
			if !ok {
				break
			}
			folderID = f.ParentFolderID
		}
		if collectionID != "" {
			chain = append(chain, collectionID)
		}
	}
	if f, ok := m.folders[nodeID]; ok {
		push(f.ParentFolderID, f.CollectionID)
	} else if r, ok := m.requests[nodeID]; ok {
		push(r.FolderID, r.CollectionID)
	}
	return chain
}

// Reachable reports whether a node can be walked to from the workspace root
// through existing, type-consistent parents.
func (m *TreeModel) Reachable(nodeID string) bool {
	if _, ok := m.collections[nodeID]; ok {
		return true
	}
	seen := make(map[string]bool)
	walk := func(folderID, collectionID string) bool {
		for folderID != "" {
			if seen[folderID] {
				return false
			}
			seen[folderID] = true
			f, ok := m.folders[folderID]
			if !ok || f.CollectionID != collectionID {
				return false
			}
			folderID = f.ParentFolderID
		}
		_, ok := m.collections[collectionID]
		return ok
	}
	if f, ok := m.folders[nodeID]; ok {
		return walk(f.ParentFolderID, f.CollectionID)
	}
	if r, ok := m.requests[nodeID]; ok {
		return walk(r.FolderID, r.CollectionID)
	}
	return false
}

func (m *TreeModel) folderInSubtree(candidate, rootID string) bool {
	for candidate != "" {
		if candidate == rootID {
			return true
		}
		f, ok := m.folders[candidate]
		if !ok {
			return false
		}
		candidate = f.ParentFolderID
	}
	return false
}

func (m *TreeModel) applyRenumber(renumbered []order.Sibling) {
	for _, s := range renumbered {
		if c, ok := m.collections[s.ID]; ok {
			c.OrderIndex = s.OrderIndex
		} else if f, ok := m.folders[s.ID]; ok {
			f.OrderIndex = s.OrderIndex
		} else if r, ok := m.requests[s.ID]; ok {
			r.OrderIndex = s.OrderIndex
		}
	}
}

func (m *TreeModel) collectionSiblings(exclude string) []order.Sibling {
	var out []order.Sibling
	for _, c := range m.collections {
		if c.ID == exclude {
			continue
		}
		out = append(out, order.Sibling{ID: c.ID, OrderIndex: c.OrderIndex})
	}
	return out
}

func (m *TreeModel) folderSiblings(collectionID, parentFolderID, exclude string) []order.Sibling {
	var out []order.Sibling
	for _, f := range m.folders {
		if f.ID == exclude || f.CollectionID != collectionID || f.ParentFolderID != parentFolderID {
			continue
		}
		out = append(out, order.Sibling{ID: f.ID, OrderIndex: f.OrderIndex})
	}
	return out
}

func (m *TreeModel) requestSiblings(collectionID, folderID, exclude string) []order.Sibling {
	var out []order.Sibling
	for _, r := range m.requests {
		if r.ID == exclude || r.CollectionID != collectionID || r.FolderID != folderID {
			continue
		}
		out = append(out, order.Sibling{ID: r.ID, OrderIndex: r.OrderIndex})
	}
	return out
}

// Snapshot flattens the whole tree into display order: collections by order
// index, then within each container folders before requests, each tier
// ascending.
func (m *TreeModel) Snapshot() []Node {
	var out []Node
	cols := make([]*Collection, 0, len(m.collections))
	for _, c := range m.collections {
		cols = append(cols, c)
	}
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].OrderIndex < cols[j].OrderIndex })
	for _, c := range cols {
		out = append(out, Node{
			ID:           c.ID,
			Kind:         KindCollection,
			Name:         c.Name,
			CollectionID: c.ID,
			OrderIndex:   c.OrderIndex,
		})
		out = m.appendContainer(out, c.ID, "", 1)
	}
	return out
}

func (m *TreeModel) appendContainer(out []Node, collectionID, folderID string, depth int) []Node {
	parentID := collectionID
	if folderID != "" {
		parentID = folderID
	}
	folders := make([]*Folder, 0)
	for _, f := range m.folders {
		if f.CollectionID == collectionID && f.ParentFolderID == folderID {
			folders = append(folders, f)
		}
	}
	sort.SliceStable(folders, func(i, j int) bool { return folders[i].OrderIndex < folders[j].OrderIndex })
	for _, f := range folders {
		out = append(out, Node{
			ID:           f.ID,
			Kind:         KindFolder,
			Name:         f.Name,
			ParentID:     parentID,
			CollectionID: collectionID,
			OrderIndex:   f.OrderIndex,
			Depth:        depth,
		})
		out = m.appendContainer(out, collectionID, f.ID, depth+1)
	}
	requests := make([]*Request, 0)
	for _, r := range m.requests {
		if r.CollectionID == collectionID && r.FolderID == folderID {
			requests = append(requests, r)
		}
	}
	sort.SliceStable(requests, func(i, j int) bool { return requests[i].OrderIndex < requests[j].OrderIndex })
	for _, r := range requests {
		out = append(out, Node{
			ID:           r.ID,
			Kind:         KindRequest,
			Name:         r.Name,
			ParentID:     parentID,
			CollectionID: collectionID,
			OrderIndex:   r.OrderIndex,
			Depth:        depth,
		})
	}
	return out
}
