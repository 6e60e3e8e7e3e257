package dragdrop

import "github.com/davrell/reqnest/internal/workspace"

// Verdict is the outcome of a drop policy check. Reject means no model call
// is made and the dragged node's visual position stays put.
type Verdict int

const (
	Reject Verdict = iota
	AllowReorder
	AllowReparent
)

func (v Verdict) String() string {
	switch v {
	case AllowReorder:
		return "reorder"
	case AllowReparent:
		return "reparent"
	default:
		return "reject"
	}
}

// Validate gates a drag gesture by node kinds alone. Dropping on the empty
// canvas counts as a collection target (see TargetKind); that is the only
// way to un-nest a folder or request back to the collection root.
func Validate(dragged, target workspace.NodeKind) Verdict {
	switch dragged {
	case workspace.KindCollection:
		switch target {
		case workspace.KindCollection:
			return AllowReorder
		case workspace.KindFolder, workspace.KindRequest:
			return Reject
		}
	case workspace.KindFolder:
		switch target {
		case workspace.KindCollection, workspace.KindFolder:
			return AllowReparent
		case workspace.KindRequest:
			return Reject
		}
	case workspace.KindRequest:
		switch target {
		case workspace.KindCollection, workspace.KindFolder:
			return AllowReparent
		case workspace.KindRequest:
			return Reject
		}
	}
	return Reject
}

// Decide applies the same-type sibling special case before consulting the
// kind table: shuffling within one sibling group is always a reorder.
func Decide(dragged, target workspace.NodeKind, sameSiblingGroup bool) Verdict {
	if sameSiblingGroup && dragged == target {
		return AllowReorder
	}
	return Validate(dragged, target)
}

// TargetKind maps an optional drop target to the kind the policy table
// expects. A nil target is the empty canvas: root-level placement.
func TargetKind(target *workspace.Node) workspace.NodeKind {
	if target == nil {
		return workspace.KindCollection
	}
	return target.Kind
}
