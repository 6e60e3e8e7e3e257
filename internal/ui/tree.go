package ui

import (
	"github.com/davrell/reqnest/internal/ui/navigator"
	"github.com/davrell/reqnest/internal/workspace"
)

// treeView adapts the navigator to the expansion reconciler: the navigator
// forgets node identity on every SetNodes, so expansion is captured before
// and re-applied after each rebuild.
type treeView struct {
	m *Model
}

func (v treeView) ExpandedIDs() []string      { return v.m.nav.ExpandedIDs() }
func (v treeView) Rebuild()                   { v.m.nav.SetNodes(v.m.buildNodes()) }
func (v treeView) ApplyExpanded(ids []string) { v.m.nav.ApplyExpanded(ids) }

// rebuildTree runs one reconcile pass: capture expansion, rebuild the
// navigator from the engine snapshot, restore expansion plus any queued
// force-expands.
func (m *Model) rebuildTree() {
	if err := m.eng.Reconcile(treeView{m}); err != nil {
		m.reportErr(err)
	}
}

// buildNodes converts the flat display-ordered snapshot into the nested
// node tree the navigator renders. Depth drives nesting; the snapshot is
// already ordered folders-first within each container.
func (m *Model) buildNodes() []*navigator.Node {
	snapshot := m.eng.Snapshot()
	var roots []*navigator.Node
	stack := make([]*navigator.Node, 0, 8)
	for _, row := range snapshot {
		node := &navigator.Node{
			ID:     row.ID,
			Title:  row.Name,
			Kind:   row.Kind,
			Method: m.requestMethod(row),
			Dirty:  m.requestDirty(row),
		}
		for len(stack) > row.Depth {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
	}
	return roots
}

func (m *Model) requestMethod(row workspace.Node) string {
	if row.Kind != workspace.KindRequest {
		return ""
	}
	if doc := m.eng.Sessions().ByRequest(row.ID); doc != nil {
		if method := doc.Editable().Method; method != "" {
			return method
		}
	}
	return ""
}

func (m *Model) requestDirty(row workspace.Node) bool {
	if row.Kind != workspace.KindRequest {
		return false
	}
	doc := m.eng.Sessions().ByRequest(row.ID)
	return doc != nil && m.eng.Sessions().IsDirty(doc.ID)
}

// containerFor resolves the parent a new folder or request should land in:
// the selected container itself, or the selected request's container.
func (m *Model) containerFor(sel *navigator.Node) string {
	if sel == nil {
		return ""
	}
	switch sel.Kind {
	case workspace.KindCollection, workspace.KindFolder:
		return sel.ID
	case workspace.KindRequest:
		req, ok := m.eng.Model().Request(sel.ID)
		if !ok {
			return ""
		}
		if req.FolderID != "" {
			return req.FolderID
		}
		return req.CollectionID
	}
	return ""
}
