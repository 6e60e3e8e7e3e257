package theme

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	toml "github.com/pelletier/go-toml/v2"
)

// Palette is the user-overridable color set. Any empty field keeps the
// built-in default.
type Palette struct {
	Accent        string `toml:"accent" json:"accent"`
	Text          string `toml:"text" json:"text"`
	Muted         string `toml:"muted" json:"muted"`
	SelectionBg   string `toml:"selection_bg" json:"selection_bg"`
	SelectionFg   string `toml:"selection_fg" json:"selection_fg"`
	SidebarBorder string `toml:"sidebar_border" json:"sidebar_border"`
	ConsoleBorder string `toml:"console_border" json:"console_border"`
	ErrorColor    string `toml:"error" json:"error"`
	SuccessColor  string `toml:"success" json:"success"`
}

// Load reads a palette override file (.toml or .json) and applies it onto
// the default theme. A missing path yields the default theme unchanged.
func Load(path string) (Theme, error) {
	th := DefaultTheme()
	if strings.TrimSpace(path) == "" {
		return th, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return th, nil
	}
	if err != nil {
		return th, fmt.Errorf("theme: read %q: %w", path, err)
	}

	var p Palette
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(raw))
		if err := dec.Decode(&p); err != nil {
			return th, fmt.Errorf("theme: parse %q: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(raw, &p); err != nil {
			return th, fmt.Errorf("theme: parse %q: %w", path, err)
		}
	default:
		return th, fmt.Errorf("theme: unsupported format %q", filepath.Ext(path))
	}
	apply(&th, p)
	return th, nil
}

func apply(th *Theme, p Palette) {
	if c, ok := color(p.Accent); ok {
		th.EditorBorder = th.EditorBorder.BorderForeground(c)
		th.TabActive = th.TabActive.Background(c)
	}
	if c, ok := color(p.Text); ok {
		th.TreeTitle = th.TreeTitle.Foreground(c)
		th.ConsoleLine = th.ConsoleLine.Foreground(c)
		th.StatusBarValue = th.StatusBarValue.Foreground(c)
	}
	if c, ok := color(p.Muted); ok {
		th.TreeSubtitle = th.TreeSubtitle.Foreground(c)
		th.TabInactive = th.TabInactive.Foreground(c)
		th.StatusBar = th.StatusBar.Foreground(c)
	}
	if c, ok := color(p.SelectionBg); ok {
		th.TreeTitleSelected = th.TreeTitleSelected.Background(c)
	}
	if c, ok := color(p.SelectionFg); ok {
		th.TreeTitleSelected = th.TreeTitleSelected.Foreground(c)
	}
	if c, ok := color(p.SidebarBorder); ok {
		th.SidebarBorder = th.SidebarBorder.BorderForeground(c)
	}
	if c, ok := color(p.ConsoleBorder); ok {
		th.ConsoleBorder = th.ConsoleBorder.BorderForeground(c)
	}
	if c, ok := color(p.ErrorColor); ok {
		th.Error = th.Error.Foreground(c)
		th.DiffDel = th.DiffDel.Foreground(c)
	}
	if c, ok := color(p.SuccessColor); ok {
		th.Success = th.Success.Foreground(c)
		th.DiffAdd = th.DiffAdd.Foreground(c)
	}
}

func color(s string) (lipgloss.Color, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return lipgloss.Color(s), true
}
