package order

import (
	"sort"

	"github.com/davrell/reqnest/internal/errdef"
)

// SpacingUnit is the gap left between siblings on initial assignment and
// after a renumber, so manual inserts have room for midpoints.
const SpacingUnit = 100

// Sibling is one member of a sibling group, in display order when sorted by
// OrderIndex ascending.
type Sibling struct {
	ID         string
	OrderIndex int64
}

type placementKind int

const (
	placeAppend placementKind = iota
	placeBefore
	placeAfter
	placeAtIndex
	placeExplicit
)

// Placement selects where in a sibling group a node lands. The zero value
// appends.
type Placement struct {
	kind    placementKind
	sibling string
	index   int
	value   int64
}

func Append() Placement            { return Placement{kind: placeAppend} }
func Before(id string) Placement   { return Placement{kind: placeBefore, sibling: id} }
func After(id string) Placement    { return Placement{kind: placeAfter, sibling: id} }
func AtIndex(n int) Placement      { return Placement{kind: placeAtIndex, index: n} }
func Explicit(v int64) Placement   { return Placement{kind: placeExplicit, value: v} }
func (p Placement) IsExplicit() bool { return p.kind == placeExplicit }

// Resolution is the outcome of resolving a placement. When the group had no
// room for a midpoint, Renumbered holds the whole group with fresh indices
// and the caller must apply those before (or together with) the new index.
type Resolution struct {
	OrderIndex int64
	Renumbered []Sibling
}

// Resolve turns a placement into a concrete order index for a group. The
// moved or created node must not itself be part of siblings.
func Resolve(siblings []Sibling, p Placement) (Resolution, error) {
	group := make([]Sibling, len(siblings))
	copy(group, siblings)
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].OrderIndex < group[j].OrderIndex
	})

	if p.kind == placeExplicit {
		return Resolution{OrderIndex: p.value}, nil
	}

	pos, err := insertionPos(group, p)
	if err != nil {
		return Resolution{}, err
	}
	if idx, ok := indexAt(group, pos); ok {
		return Resolution{OrderIndex: idx}, nil
	}

	// Adjacent indices left no integer midpoint: renumber the whole group
	// to multiples of the spacing unit, then place in the reopened gap.
	renumbered := make([]Sibling, len(group))
	for i, s := range group {
		renumbered[i] = Sibling{ID: s.ID, OrderIndex: int64(i) * SpacingUnit}
	}
	idx, ok := indexAt(renumbered, pos)
	if !ok {
		return Resolution{}, errdef.New(errdef.CodeUnknown, "no midpoint after renumber")
	}
	return Resolution{OrderIndex: idx, Renumbered: renumbered}, nil
}

func insertionPos(group []Sibling, p Placement) (int, error) {
	switch p.kind {
	case placeAppend:
		return len(group), nil
	case placeAtIndex:
		pos := p.index
		if pos < 0 {
			pos = 0
		}
		if pos > len(group) {
			pos = len(group)
		}
		return pos, nil
	case placeBefore, placeAfter:
		for i, s := range group {
			if s.ID == p.sibling {
				if p.kind == placeBefore {
					return i, nil
				}
				return i + 1, nil
			}
		}
		return 0, errdef.New(errdef.CodeUnknown, "placement anchor %s not in sibling group", p.sibling)
	default:
		return len(group), nil
	}
}

// indexAt computes the index for inserting at pos, reporting false when the
// neighbors are too close for an integer midpoint.
func indexAt(group []Sibling, pos int) (int64, bool) {
	switch {
	case len(group) == 0:
		return 0, true
	case pos <= 0:
		return group[0].OrderIndex - SpacingUnit, true
	case pos >= len(group):
		return group[len(group)-1].OrderIndex + SpacingUnit, true
	default:
		lo := group[pos-1].OrderIndex
		hi := group[pos].OrderIndex
		if hi-lo < 2 {
			return 0, false
		}
		return lo + (hi-lo)/2, true
	}
}
