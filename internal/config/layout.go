package config

import "strings"

type LayoutSettings struct {
	SidebarWidth float64 `json:"sidebar_width" toml:"sidebar_width"`
	ConsoleSplit float64 `json:"console_split" toml:"console_split"`
}

const (
	LayoutSidebarWidthDefault = 0.25
	LayoutSidebarWidthMin     = 0.1
	LayoutSidebarWidthMax     = 0.5
	LayoutConsoleSplitDefault = 0.3
	LayoutConsoleSplitMin     = 0.1
	LayoutConsoleSplitMax     = 0.6
)

func DefaultLayoutSettings() LayoutSettings {
	return LayoutSettings{
		SidebarWidth: LayoutSidebarWidthDefault,
		ConsoleSplit: LayoutConsoleSplitDefault,
	}
}

func NormaliseLayoutSettings(in LayoutSettings) LayoutSettings {
	layout := DefaultLayoutSettings()
	layout.SidebarWidth = clampFloat(
		in.SidebarWidth,
		LayoutSidebarWidthMin,
		LayoutSidebarWidthMax,
		LayoutSidebarWidthDefault,
	)
	layout.ConsoleSplit = clampFloat(
		in.ConsoleSplit,
		LayoutConsoleSplitMin,
		LayoutConsoleSplitMax,
		LayoutConsoleSplitDefault,
	)
	return layout
}

// NormaliseExportFormat folds an export format to a supported value.
func NormaliseExportFormat(in string) string {
	switch strings.ToLower(strings.TrimSpace(in)) {
	case "yaml", "yml":
		return "yaml"
	default:
		return "json"
	}
}

func clampFloat[T ~float64](value, min, max, fallback T) T {
	if value == 0 {
		return fallback
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
