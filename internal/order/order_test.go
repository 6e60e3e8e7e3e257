package order

import "testing"

func group(idx ...int64) []Sibling {
	out := make([]Sibling, len(idx))
	for i, v := range idx {
		out[i] = Sibling{ID: string(rune('a' + i)), OrderIndex: v}
	}
	return out
}

func TestResolveAppendEmptyGroupStartsAtZero(t *testing.T) {
	res, err := Resolve(nil, Append())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.OrderIndex != 0 {
		t.Fatalf("expected 0 for first sibling, got %d", res.OrderIndex)
	}
}

func TestResolveAppendAfterLast(t *testing.T) {
	res, err := Resolve(group(0, 100), Append())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.OrderIndex != 200 {
		t.Fatalf("expected 200, got %d", res.OrderIndex)
	}
	if res.Renumbered != nil {
		t.Fatalf("append should not renumber")
	}
}

func TestResolveAtIndexMatchesSourcePositions(t *testing.T) {
	var siblings []Sibling
	for i := 0; i < 3; i++ {
		res, err := Resolve(siblings, AtIndex(i))
		if err != nil {
			t.Fatalf("Resolve failed at %d: %v", i, err)
		}
		siblings = append(siblings, Sibling{ID: string(rune('a' + i)), OrderIndex: res.OrderIndex})
	}
	want := []int64{0, 100, 200}
	for i, w := range want {
		if siblings[i].OrderIndex != w {
			t.Fatalf("index %d: expected %d, got %d", i, w, siblings[i].OrderIndex)
		}
	}
}

func TestResolveBeforeFirstGoesNegative(t *testing.T) {
	res, err := Resolve(group(0, 100), Before("a"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.OrderIndex != -100 {
		t.Fatalf("expected -100, got %d", res.OrderIndex)
	}
}

func TestResolveMidpointBetweenNeighbors(t *testing.T) {
	res, err := Resolve(group(0, 100), After("a"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.OrderIndex != 50 {
		t.Fatalf("expected 50, got %d", res.OrderIndex)
	}
}

func TestResolveRenumbersWhenGapExhausted(t *testing.T) {
	res, err := Resolve(group(10, 11), After("a"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Renumbered == nil {
		t.Fatalf("expected full-group renumber")
	}
	if res.Renumbered[0].OrderIndex != 0 || res.Renumbered[1].OrderIndex != 100 {
		t.Fatalf("unexpected renumbered indices %+v", res.Renumbered)
	}
	if res.OrderIndex != 50 {
		t.Fatalf("expected midpoint 50 after renumber, got %d", res.OrderIndex)
	}
}

func TestResolveExplicitIsVerbatim(t *testing.T) {
	res, err := Resolve(group(0, 100), Explicit(42))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.OrderIndex != 42 {
		t.Fatalf("expected verbatim 42, got %d", res.OrderIndex)
	}
}

func TestResolveUnknownAnchorFails(t *testing.T) {
	if _, err := Resolve(group(0), Before("zz")); err == nil {
		t.Fatalf("expected error for unknown anchor")
	}
}

func TestResolveAtIndexClampsOutOfRange(t *testing.T) {
	res, err := Resolve(group(0, 100), AtIndex(99))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.OrderIndex != 200 {
		t.Fatalf("expected clamp to append, got %d", res.OrderIndex)
	}
}
