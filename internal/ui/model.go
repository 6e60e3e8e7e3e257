package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/davrell/reqnest/internal/bindings"
	"github.com/davrell/reqnest/internal/config"
	"github.com/davrell/reqnest/internal/engine"
	"github.com/davrell/reqnest/internal/theme"
	"github.com/davrell/reqnest/internal/ui/navigator"
)

type focusArea int

const (
	focusTree focusArea = iota
	focusEditor
	focusConsole
)

// editor field indexes, cycled with tab inside the editor pane.
const (
	fieldMethod = iota
	fieldURL
	fieldHeaders
	fieldBody
	fieldScript
	fieldCount
)

// Model is the top-level bubbletea model: workspace tree on the left,
// document tabs with the request editor and its console pane on the right.
type Model struct {
	eng  *engine.Engine
	th   theme.Theme
	cfg  config.Settings
	keys *bindings.Map

	nav    *navigator.Model
	filter textinput.Model

	method  textinput.Model
	url     textinput.Model
	headers textarea.Model
	body    textarea.Model
	script  textarea.Model
	field   int

	focus     focusArea
	grabbedID string

	filtering     bool
	renaming      bool
	renameID      string
	renameInput   textinput.Model
	pendingDelete string
	pendingClose  string

	diffMode   bool
	consoleOff int

	status    string
	statusErr bool

	width  int
	height int
}

func New(eng *engine.Engine, cfg config.Settings, th theme.Theme, keys *bindings.Map) *Model {
	if keys == nil {
		keys = bindings.DefaultMap()
	}
	filter := textinput.New()
	filter.Placeholder = "filter"
	filter.CharLimit = 64

	rename := textinput.New()
	rename.CharLimit = 128

	method := textinput.New()
	method.Placeholder = "GET"
	method.CharLimit = 16

	url := textinput.New()
	url.Placeholder = "https://"

	headers := textarea.New()
	headers.Placeholder = "Header: value"
	body := textarea.New()
	script := textarea.New()

	m := &Model{
		eng:         eng,
		th:          th,
		cfg:         cfg,
		keys:        keys,
		nav:         navigator.New(nil),
		filter:      filter,
		renameInput: rename,
		method:      method,
		url:         url,
		headers:     headers,
		body:        body,
		script:      script,
	}
	m.rebuildTree()
	m.nav.SelectFirst()
	return m
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *Model) reportErr(err error) {
	if err == nil {
		return
	}
	m.setStatus(err.Error(), true)
}

func (m *Model) ctx() context.Context {
	return context.Background()
}
