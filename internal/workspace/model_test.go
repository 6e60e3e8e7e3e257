package workspace

import (
	"fmt"
	"testing"

	"github.com/davrell/reqnest/internal/errdef"
	"github.com/davrell/reqnest/internal/order"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newModel(t *testing.T) *TreeModel {
	t.Helper()
	m := NewTreeModel()
	m.SetIDFunc(seqIDs())
	return m
}

func TestCreateFolderRejectsForeignParent(t *testing.T) {
	m := newModel(t)
	c1, _ := m.CreateCollection("one", order.Append())
	c2, _ := m.CreateCollection("two", order.Append())
	f, err := m.CreateFolder(c2.ID, "", "api", order.Append())
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}

	_, err = m.CreateFolder(c1.ID, f.ID, "nested", order.Append())
	if !errdef.Is(err, errdef.CodeInvalidParent) {
		t.Fatalf("expected invalid parent, got %v", err)
	}
	if len(m.Snapshot()) != 3 {
		t.Fatalf("failed create must not mutate the tree")
	}
}

func TestMoveCollectionRejected(t *testing.T) {
	m := newModel(t)
	c1, _ := m.CreateCollection("one", order.Append())
	c2, _ := m.CreateCollection("two", order.Append())

	err := m.Move(c1.ID, c2.ID, order.Append())
	if !errdef.Is(err, errdef.CodeInvalidParent) {
		t.Fatalf("expected invalid parent for collection move, got %v", err)
	}
}

func TestMoveFolderIntoOwnSubtreeRejected(t *testing.T) {
	m := newModel(t)
	c, _ := m.CreateCollection("ws", order.Append())
	outer, _ := m.CreateFolder(c.ID, "", "outer", order.Append())
	inner, _ := m.CreateFolder(c.ID, outer.ID, "inner", order.Append())
	deep, _ := m.CreateFolder(c.ID, inner.ID, "deep", order.Append())

	err := m.Move(outer.ID, deep.ID, order.Append())
	if !errdef.Is(err, errdef.CodeCyclicMove) {
		t.Fatalf("expected cyclic move error, got %v", err)
	}
	got, _ := m.Folder(outer.ID)
	if got.ParentFolderID != "" {
		t.Fatalf("rejected move must not reparent, got parent %q", got.ParentFolderID)
	}
	err = m.Move(outer.ID, outer.ID, order.Append())
	if !errdef.Is(err, errdef.CodeCyclicMove) {
		t.Fatalf("expected cyclic move onto self, got %v", err)
	}
}

func TestMoveFolderAcrossCollectionsRetagsSubtree(t *testing.T) {
	m := newModel(t)
	src, _ := m.CreateCollection("src", order.Append())
	dst, _ := m.CreateCollection("dst", order.Append())
	outer, _ := m.CreateFolder(src.ID, "", "outer", order.Append())
	inner, _ := m.CreateFolder(src.ID, outer.ID, "inner", order.Append())
	req, _ := m.CreateRequest(src.ID, inner.ID, "ping", order.Append())

	if err := m.Move(outer.ID, dst.ID, order.Append()); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	for _, id := range []string{outer.ID, inner.ID} {
		f, _ := m.Folder(id)
		if f.CollectionID != dst.ID {
			t.Fatalf("folder %s not retagged, collection %s", id, f.CollectionID)
		}
	}
	r, _ := m.Request(req.ID)
	if r.CollectionID != dst.ID {
		t.Fatalf("request not retagged, collection %s", r.CollectionID)
	}
	if !m.Reachable(req.ID) {
		t.Fatalf("moved request must stay reachable")
	}
}

func TestMoveRequestToCollectionRootUnnests(t *testing.T) {
	m := newModel(t)
	c, _ := m.CreateCollection("ws", order.Append())
	f, _ := m.CreateFolder(c.ID, "", "api", order.Append())
	r, _ := m.CreateRequest(c.ID, f.ID, "list", order.Append())

	if err := m.Move(r.ID, c.ID, order.Append()); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	got, _ := m.Request(r.ID)
	if got.FolderID != "" {
		t.Fatalf("expected root-level request, folder %q", got.FolderID)
	}
}

func TestDeleteRequestKeepsSiblingsUntouched(t *testing.T) {
	m := newModel(t)
	c, _ := m.CreateCollection("ws", order.Append())
	f, _ := m.CreateFolder(c.ID, "", "F1", order.Append())
	r1, _ := m.CreateRequest(c.ID, f.ID, "R1", order.Explicit(1000))
	r2, _ := m.CreateRequest(c.ID, f.ID, "R2", order.Explicit(2000))

	ancestors, err := m.Delete(r1.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(ancestors) != 2 || ancestors[0] != f.ID || ancestors[1] != c.ID {
		t.Fatalf("unexpected ancestor chain %v", ancestors)
	}
	got, ok := m.Request(r2.ID)
	if !ok {
		t.Fatalf("sibling deleted")
	}
	if got.OrderIndex != 2000 {
		t.Fatalf("sibling order changed: %d", got.OrderIndex)
	}
}

func TestDeleteCollectionCascades(t *testing.T) {
	m := newModel(t)
	c, _ := m.CreateCollection("ws", order.Append())
	f, _ := m.CreateFolder(c.ID, "", "api", order.Append())
	sub, _ := m.CreateFolder(c.ID, f.ID, "v2", order.Append())
	r, _ := m.CreateRequest(c.ID, sub.ID, "ping", order.Append())
	keep, _ := m.CreateCollection("other", order.Append())

	if _, err := m.Delete(c.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	for _, id := range []string{c.ID, f.ID, sub.ID, r.ID} {
		if _, ok := m.KindOf(id); ok {
			t.Fatalf("node %s survived cascade", id)
		}
	}
	if _, ok := m.Collection(keep.ID); !ok {
		t.Fatalf("unrelated collection deleted")
	}
}

func TestDeleteFolderCascadesDescendantsOnly(t *testing.T) {
	m := newModel(t)
	c, _ := m.CreateCollection("ws", order.Append())
	f, _ := m.CreateFolder(c.ID, "", "api", order.Append())
	sub, _ := m.CreateFolder(c.ID, f.ID, "v2", order.Append())
	inside, _ := m.CreateRequest(c.ID, sub.ID, "ping", order.Append())
	outside, _ := m.CreateRequest(c.ID, "", "health", order.Append())

	if _, err := m.Delete(f.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	for _, id := range []string{f.ID, sub.ID, inside.ID} {
		if _, ok := m.KindOf(id); ok {
			t.Fatalf("node %s survived folder cascade", id)
		}
	}
	if _, ok := m.Request(outside.ID); !ok {
		t.Fatalf("root request must survive folder delete")
	}
}

func TestSnapshotOrdersSiblingsByIndex(t *testing.T) {
	m := newModel(t)
	c, _ := m.CreateCollection("ws", order.Append())
	rc, _ := m.CreateRequest(c.ID, "", "C", order.AtIndex(0))
	ra, _ := m.CreateRequest(c.ID, "", "A", order.AtIndex(1))
	rb, _ := m.CreateRequest(c.ID, "", "B", order.AtIndex(2))

	snap := m.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(snap))
	}
	wantOrder := []string{rc.ID, ra.ID, rb.ID}
	for i, id := range wantOrder {
		if snap[i+1].ID != id {
			t.Fatalf("row %d: expected %s, got %s", i+1, id, snap[i+1].ID)
		}
	}
	wantIdx := []int64{0, 100, 200}
	for i, w := range wantIdx {
		if snap[i+1].OrderIndex != w {
			t.Fatalf("row %d: expected index %d, got %d", i+1, w, snap[i+1].OrderIndex)
		}
	}
}

func TestSnapshotListsFoldersBeforeRequests(t *testing.T) {
	m := newModel(t)
	c, _ := m.CreateCollection("ws", order.Append())
	r, _ := m.CreateRequest(c.ID, "", "health", order.Append())
	f, _ := m.CreateFolder(c.ID, "", "api", order.Append())

	snap := m.Snapshot()
	if snap[1].ID != f.ID || snap[2].ID != r.ID {
		t.Fatalf("expected folder tier first, got %s then %s", snap[1].ID, snap[2].ID)
	}
}

func TestReorderWithinSiblingsRenumbersWholeGroup(t *testing.T) {
	m := newModel(t)
	c, _ := m.CreateCollection("ws", order.Append())
	r1, _ := m.CreateRequest(c.ID, "", "a", order.Explicit(10))
	r2, _ := m.CreateRequest(c.ID, "", "b", order.Explicit(11))
	r3, _ := m.CreateRequest(c.ID, "", "c", order.Explicit(12))

	if err := m.Reorder(r3.ID, order.After(r1.ID)); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	snap := m.Snapshot()
	got := []string{snap[1].ID, snap[2].ID, snap[3].ID}
	want := []string{r1.ID, r3.ID, r2.ID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("display order %v, want %v", got, want)
		}
	}
	seen := map[int64]bool{}
	for _, n := range snap[1:] {
		if seen[n.OrderIndex] {
			t.Fatalf("duplicate order index %d after renumber", n.OrderIndex)
		}
		seen[n.OrderIndex] = true
	}
}

func TestTreeStaysAcyclicAcrossMutationBursts(t *testing.T) {
	m := newModel(t)
	c, _ := m.CreateCollection("ws", order.Append())
	var folders []Folder
	parent := ""
	for i := 0; i < 5; i++ {
		f, err := m.CreateFolder(c.ID, parent, fmt.Sprintf("f%d", i), order.Append())
		if err != nil {
			t.Fatalf("CreateFolder failed: %v", err)
		}
		folders = append(folders, f)
		parent = f.ID
	}
	// shuffle some moves, including attempts that must be rejected
	if err := m.Move(folders[4].ID, c.ID, order.Append()); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if err := m.Move(folders[0].ID, folders[4].ID, order.Append()); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if err := m.Move(folders[4].ID, folders[1].ID, order.Append()); !errdef.Is(err, errdef.CodeCyclicMove) {
		t.Fatalf("expected cyclic rejection, got %v", err)
	}
	for _, f := range folders {
		if !m.Reachable(f.ID) {
			t.Fatalf("folder %s unreachable after moves", f.ID)
		}
	}
	for _, n := range m.Snapshot() {
		if n.Kind != KindCollection && n.ParentID == "" {
			t.Fatalf("non-root node %s lost its parent", n.ID)
		}
	}
}

func TestRenameAllKinds(t *testing.T) {
	m := newModel(t)
	c, _ := m.CreateCollection("ws", order.Append())
	f, _ := m.CreateFolder(c.ID, "", "api", order.Append())
	r, _ := m.CreateRequest(c.ID, f.ID, "ping", order.Append())

	for _, id := range []string{c.ID, f.ID, r.ID} {
		if err := m.Rename(id, "renamed"); err != nil {
			t.Fatalf("Rename(%s) failed: %v", id, err)
		}
	}
	got, _ := m.Request(r.ID)
	if got.Name != "renamed" {
		t.Fatalf("rename not applied: %q", got.Name)
	}
}
