package bindings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Format identifies the serialization format for shortcut configs.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Source describes where the bindings config was loaded from.
type Source struct {
	Path   string
	Format Format
}

// Action names a rebindable command. Structural navigation keys (arrows,
// enter, tab, esc, space) are fixed and not listed here.
type Action string

const (
	ActionSave          Action = "save"
	ActionNextDoc       Action = "next_doc"
	ActionPrevDoc       Action = "prev_doc"
	ActionCloseDoc      Action = "close_doc"
	ActionNewRequest    Action = "new_request"
	ActionNewFolder     Action = "new_folder"
	ActionNewCollection Action = "new_collection"
	ActionRename        Action = "rename"
	ActionDelete        Action = "delete"
	ActionFilter        Action = "filter"
	ActionCanvasDrop    Action = "canvas_drop"
	ActionDiff          Action = "diff"
	ActionCopyURL       Action = "copy_url"
	ActionConsole       Action = "console"
	ActionQuit          Action = "quit"
)

var defaultKeys = map[Action]string{
	ActionSave:          "ctrl+s",
	ActionNextDoc:       "ctrl+n",
	ActionPrevDoc:       "ctrl+p",
	ActionCloseDoc:      "ctrl+w",
	ActionNewRequest:    "n",
	ActionNewFolder:     "N",
	ActionNewCollection: "C",
	ActionRename:        "r",
	ActionDelete:        "d",
	ActionFilter:        "/",
	ActionCanvasDrop:    "u",
	ActionDiff:          "ctrl+d",
	ActionCopyURL:       "ctrl+y",
	ActionConsole:       "ctrl+o",
	ActionQuit:          "q",
}

// Map resolves key strings (bubbletea KeyMsg.String() form) to actions.
type Map struct {
	byKey map[string]Action
}

// Lookup returns the action bound to a key, if any.
func (m *Map) Lookup(key string) (Action, bool) {
	if m == nil {
		return "", false
	}
	a, ok := m.byKey[key]
	return a, ok
}

// Key returns the key currently bound to an action, for help text.
func (m *Map) Key(action Action) string {
	if m == nil {
		return ""
	}
	for k, a := range m.byKey {
		if a == action {
			return k
		}
	}
	return ""
}

// DefaultMap builds the built-in bindings without consulting disk.
func DefaultMap() *Map {
	byKey := make(map[string]Action, len(defaultKeys))
	for action, key := range defaultKeys {
		byKey[key] = action
	}
	return &Map{byKey: byKey}
}

// Load reads bindings overrides from bindings.toml/json in dir. The file
// maps action names to key strings; a missing file falls back to defaults,
// an unknown action name fails.
func Load(dir string) (*Map, Source, error) {
	candidates := []Source{
		{Path: filepath.Join(dir, "bindings.toml"), Format: FormatTOML},
		{Path: filepath.Join(dir, "bindings.json"), Format: FormatJSON},
	}

	var accumulated error
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate.Path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			accumulated = errors.Join(
				accumulated,
				fmt.Errorf("read bindings %q: %w", candidate.Path, err),
			)
			continue
		}

		overrides, err := parseConfig(data, candidate.Format)
		if err != nil {
			return nil, Source{}, fmt.Errorf("parse bindings %q: %w", candidate.Path, err)
		}
		built, err := buildMap(overrides)
		if err != nil {
			return nil, Source{}, fmt.Errorf("apply bindings %q: %w", candidate.Path, err)
		}
		return built, candidate, nil
	}

	if accumulated != nil {
		return nil, Source{}, accumulated
	}
	return DefaultMap(), Source{Path: candidates[0].Path, Format: FormatTOML}, nil
}

func parseConfig(data []byte, format Format) (map[string]string, error) {
	overrides := make(map[string]string)
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &overrides); err != nil {
			return nil, err
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		if err := decoder.Decode(&overrides); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported bindings format %q", format)
	}
	return overrides, nil
}

func buildMap(overrides map[string]string) (*Map, error) {
	keys := make(map[Action]string, len(defaultKeys))
	for action, key := range defaultKeys {
		keys[action] = key
	}
	for name, key := range overrides {
		action := Action(strings.ToLower(strings.TrimSpace(name)))
		if _, known := keys[action]; !known {
			return nil, fmt.Errorf("unknown action %q", name)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("action %q bound to empty key", name)
		}
		keys[action] = key
	}

	byKey := make(map[string]Action, len(keys))
	for action, key := range keys {
		if clash, dup := byKey[key]; dup {
			return nil, fmt.Errorf("key %q bound to both %q and %q", key, clash, action)
		}
		byKey[key] = action
	}
	return &Map{byKey: byKey}, nil
}
