package expand

import (
	"github.com/davrell/reqnest/internal/errdef"
	"github.com/davrell/reqnest/internal/util"
)

// View is the render surface the tracker reconciles. The surface can only
// redraw fully; it has no memory of expansion between rebuilds, so the
// tracker captures and re-applies it around every Rebuild.
type View interface {
	ExpandedIDs() []string
	Rebuild()
	ApplyExpanded(ids []string)
}

// Override is a single-use set of node ids to force-expand on the next
// rebuild only. ConsumedBy records which rebuild used it up.
type Override struct {
	IDs        []string
	ConsumedBy uint64
}

// Tracker reconciles visual expansion state across full-tree rebuilds.
// It is single-actor: one UI thread drives it.
type Tracker struct {
	seq      uint64
	pending  []string
	inFlight bool
}

func New() *Tracker {
	return &Tracker{}
}

// ForceExpand queues node ids to be expanded by exactly the next rebuild.
// Callers register intent here before the state it derives from (current
// selection, the node being deleted) is cleared.
func (t *Tracker) ForceExpand(ids ...string) {
	for _, id := range ids {
		if id != "" {
			t.pending = append(t.pending, id)
		}
	}
}

// Pending returns the queued override ids.
func (t *Tracker) Pending() []string {
	return util.DedupeNonEmptyStrings(t.pending)
}

// Busy reports whether a reconciliation pass is in flight. Structural
// gestures must not start while this is true.
func (t *Tracker) Busy() bool {
	return t.inFlight
}

// Reconcile runs one capture/rebuild/restore cycle: capture the live
// expansion set, union in the pending override plus every override id's
// ancestors, rebuild the view, re-apply the unioned set, and consume the
// override. ancestors resolves a node id to its container chain; an
// override on a node is meaningless while an ancestor renders collapsed.
func (t *Tracker) Reconcile(v View, ancestors func(id string) []string) (Override, error) {
	if t.inFlight {
		return Override{}, errdef.New(errdef.CodeUnknown, "reconcile already in flight")
	}
	t.inFlight = true
	defer func() { t.inFlight = false }()

	expanded := append([]string(nil), v.ExpandedIDs()...)
	for _, id := range t.pending {
		expanded = append(expanded, id)
		if ancestors != nil {
			expanded = append(expanded, ancestors(id)...)
		}
	}
	expanded = util.DedupeNonEmptyStrings(expanded)

	v.Rebuild()
	v.ApplyExpanded(expanded)

	t.seq++
	consumed := Override{IDs: util.DedupeNonEmptyStrings(t.pending), ConsumedBy: t.seq}
	t.pending = nil
	return consumed, nil
}
