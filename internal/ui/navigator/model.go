package navigator

import (
	"strings"
	"unicode"

	"github.com/davrell/reqnest/internal/ui/scroll"
	"github.com/davrell/reqnest/internal/workspace"
)

// Node is one tree row: a collection, folder, or request.
type Node struct {
	ID       string
	Title    string
	Kind     workspace.NodeKind
	Method   string
	Dirty    bool
	Expanded bool
	Children []*Node
}

// Flat is a visible row with indentation level.
type Flat struct {
	Node  *Node
	Level int
}

// Model manages tree state, selection, and filtering. It has no memory of
// node identity across SetNodes beyond the selected id; expansion is
// re-applied from outside after every rebuild.
type Model struct {
	nodes      []*Node
	flat       []Flat
	sel        int
	offset     int
	viewHeight int
	filter     string
}

func New(nodes []*Node) *Model {
	m := &Model{nodes: nodes}
	m.refresh()
	return m
}

// SetNodes replaces the tree and keeps selection stable where possible.
func (m *Model) SetNodes(nodes []*Node) {
	selected := ""
	if n := m.Selected(); n != nil {
		selected = n.ID
	}
	m.nodes = nodes
	m.refresh()
	if selected != "" {
		m.SelectByID(selected)
	}
}

// SetViewportHeight constrains the number of visible rows (0 = no limit).
func (m *Model) SetViewportHeight(height int) {
	if height < 0 {
		height = 0
	}
	m.viewHeight = height
	m.ensureVisible()
}

// SetFilter updates the text filter and refreshes visible rows. A non-empty
// filter renders every matching branch expanded without touching the stored
// expansion state.
func (m *Model) SetFilter(s string) {
	if m.filter == s {
		return
	}
	m.filter = s
	m.refresh()
}

func (m *Model) Filter() string {
	return m.filter
}

// Move shifts selection by delta, clamping to visible rows.
func (m *Model) Move(delta int) {
	if len(m.flat) == 0 {
		m.sel = -1
		m.offset = 0
		return
	}
	m.sel += delta
	m.ensureVisible()
}

func (m *Model) SelectFirst() {
	if len(m.flat) == 0 {
		m.sel = -1
		m.offset = 0
		return
	}
	m.sel = 0
	m.ensureVisible()
}

func (m *Model) SelectLast() {
	if len(m.flat) == 0 {
		m.sel = -1
		m.offset = 0
		return
	}
	m.sel = len(m.flat) - 1
	m.ensureVisible()
}

// Selected returns the active node, or nil when the tree is empty.
func (m *Model) Selected() *Node {
	if m.sel < 0 || m.sel >= len(m.flat) {
		return nil
	}
	return m.flat[m.sel].Node
}

// SelectByID selects the first visible node with the given id.
func (m *Model) SelectByID(id string) bool {
	if id == "" || len(m.flat) == 0 {
		return false
	}
	for i, row := range m.flat {
		if row.Node != nil && row.Node.ID == id {
			m.sel = i
			m.ensureVisible()
			return true
		}
	}
	return false
}

// ToggleExpanded toggles expansion on the selected node.
func (m *Model) ToggleExpanded() {
	n := m.Selected()
	if n == nil || n.Kind == workspace.KindRequest {
		return
	}
	n.Expanded = !n.Expanded
	m.refresh()
}

// ExpandedIDs returns the ids of every node currently rendering expanded.
func (m *Model) ExpandedIDs() []string {
	var ids []string
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.Expanded {
			ids = append(ids, n.ID)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range m.nodes {
		walk(n)
	}
	return ids
}

// ApplyExpanded collapses everything, then expands exactly the listed ids.
func (m *Model) ApplyExpanded(ids []string) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		n.Expanded = want[n.ID]
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range m.nodes {
		walk(n)
	}
	m.refresh()
}

// Find finds a node by id.
func (m *Model) Find(id string) *Node {
	if id == "" {
		return nil
	}
	for _, n := range m.nodes {
		if found := findNode(n, id); found != nil {
			return found
		}
	}
	return nil
}

// Rows returns the visible flattened rows.
func (m *Model) Rows() []Flat {
	return m.flat
}

// VisibleRows returns rows within the viewport window.
func (m *Model) VisibleRows() []Flat {
	if len(m.flat) == 0 {
		return nil
	}
	if m.viewHeight <= 0 {
		return m.flat
	}
	if m.offset < 0 {
		m.offset = 0
	}
	end := m.offset + m.viewHeight
	if end > len(m.flat) {
		end = len(m.flat)
	}
	return m.flat[m.offset:end]
}

func (m *Model) refresh() {
	m.flat = flatten(m.nodes, 0, m.filter)
	if len(m.flat) == 0 {
		m.sel = -1
		m.offset = 0
		return
	}
	m.ensureVisible()
}

func (m *Model) ensureVisible() {
	if len(m.flat) == 0 {
		m.sel = -1
		m.offset = 0
		return
	}
	if m.sel < 0 {
		m.sel = 0
	}
	if m.sel >= len(m.flat) {
		m.sel = len(m.flat) - 1
	}
	if m.viewHeight <= 0 {
		m.offset = 0
		return
	}
	m.offset = scroll.Align(m.sel, m.offset, m.viewHeight, len(m.flat))
}

func flatten(nodes []*Node, level int, filter string) []Flat {
	var rows []Flat
	for _, n := range nodes {
		childRows, ok := visible(n, level, filter)
		if ok {
			rows = append(rows, childRows...)
		}
	}
	return rows
}

func visible(n *Node, level int, filter string) ([]Flat, bool) {
	if n == nil {
		return nil, false
	}
	matches := nodeMatches(n, filter)
	expanded := n.Expanded
	if filter != "" {
		expanded = true
	}

	var childRows []Flat
	childMatch := false
	for _, c := range n.Children {
		rows, ok := visible(c, level+1, filter)
		if ok {
			childMatch = true
			if expanded {
				childRows = append(childRows, rows...)
			}
		}
	}

	if !matches && !childMatch {
		return nil, false
	}

	self := Flat{Node: n, Level: level}
	if len(childRows) == 0 {
		return []Flat{self}, true
	}
	return append([]Flat{self}, childRows...), true
}

func nodeMatches(n *Node, filter string) bool {
	if n == nil {
		return false
	}
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return true
	}
	queryTokens := wordsFromText(strings.ToLower(filter))
	if len(queryTokens) == 0 {
		return true
	}
	candidates := wordsFromText(strings.ToLower(n.Title + " " + n.Method + " " + n.ID))
	for _, q := range queryTokens {
		if !tokenInCandidates(q, candidates) {
			return false
		}
	}
	return true
}

func findNode(n *Node, id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := findNode(c, id); found != nil {
			return found
		}
	}
	return nil
}

func tokenInCandidates(token string, candidates []string) bool {
	if token == "" {
		return true
	}
	for _, c := range candidates {
		if strings.HasPrefix(c, token) {
			return true
		}
	}
	return false
}

func wordsFromText(text string) []string {
	if text == "" {
		return nil
	}
	var tokens []string
	var buf []rune
	allowed := func(r rune) bool {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return true
		case r == '.', r == '-', r == '_', r == ':':
			return true
		default:
			return false
		}
	}
	flush := func() {
		if len(buf) == 0 {
			return
		}
		tokens = append(tokens, string(buf))
		buf = buf[:0]
	}
	for _, r := range text {
		if allowed(r) {
			buf = append(buf, unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()
	return tokens
}
