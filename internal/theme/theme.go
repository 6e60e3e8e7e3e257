package theme

import "github.com/charmbracelet/lipgloss"

// MethodColors maps HTTP verbs to badge colors in the workspace tree.
type MethodColors struct {
	GET     lipgloss.Color
	POST    lipgloss.Color
	PUT     lipgloss.Color
	PATCH   lipgloss.Color
	DELETE  lipgloss.Color
	HEAD    lipgloss.Color
	OPTIONS lipgloss.Color
	Default lipgloss.Color
}

type Theme struct {
	SidebarBorder     lipgloss.Style
	EditorBorder      lipgloss.Style
	ConsoleBorder     lipgloss.Style
	TreeTitle         lipgloss.Style
	TreeTitleSelected lipgloss.Style
	TreeSubtitle      lipgloss.Style
	TreeBadge         lipgloss.Style
	TreeGrabbed       lipgloss.Style
	Tabs              lipgloss.Style
	TabActive         lipgloss.Style
	TabInactive       lipgloss.Style
	TabDirty          lipgloss.Style
	FieldLabel        lipgloss.Style
	ConsoleLine       lipgloss.Style
	StatusBar         lipgloss.Style
	StatusBarKey      lipgloss.Style
	StatusBarValue    lipgloss.Style
	Notification      lipgloss.Style
	Error             lipgloss.Style
	Success           lipgloss.Style
	DiffAdd           lipgloss.Style
	DiffDel           lipgloss.Style
	MethodColors      MethodColors
}

func DefaultTheme() Theme {
	accent := lipgloss.Color("#7D56F4")
	base := lipgloss.NewStyle().Foreground(lipgloss.Color("#dcd7ff"))

	return Theme{
		SidebarBorder: base.BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#A78BFA")),
		EditorBorder: base.BorderStyle(lipgloss.RoundedBorder()).BorderForeground(accent),
		ConsoleBorder: base.BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5FB3B3")),
		TreeTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("#E6E1FF")),
		TreeTitleSelected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0F111A")).
			Background(lipgloss.Color("#FFD46A")).
			Bold(true),
		TreeSubtitle: lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6A86")),
		TreeBadge:    lipgloss.NewStyle().Padding(0, 1).Bold(true),
		TreeGrabbed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1020")).
			Background(lipgloss.Color("#33C481")).
			Bold(true),
		Tabs: lipgloss.NewStyle().Foreground(lipgloss.Color("#A6A1BB")).Padding(0, 1),
		TabActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FDFBFF")).
			Background(accent).
			Bold(true).
			Padding(0, 2),
		TabInactive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5E5A72")).
			Padding(0, 1),
		TabDirty:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB61E")).Bold(true),
		FieldLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("#867CC1")).Bold(true),
		ConsoleLine: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C2C0D9")),
		StatusBar:      lipgloss.NewStyle().Foreground(lipgloss.Color("#A6A1BB")).Padding(0, 1),
		StatusBarKey:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8B39")).Bold(true),
		StatusBarValue: lipgloss.NewStyle().Foreground(lipgloss.Color("#EAEAEA")),
		Notification: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E0DEF4")).
			Background(lipgloss.Color("#433C59")).
			Padding(0, 1),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6E6E")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#6EF17E")),
		DiffAdd: lipgloss.NewStyle().Foreground(lipgloss.Color("#6EF17E")),
		DiffDel: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6E6E")),
		MethodColors: MethodColors{
			GET:     lipgloss.Color("#33C481"),
			POST:    lipgloss.Color("#15AABF"),
			PUT:     lipgloss.Color("#FFB61E"),
			PATCH:   lipgloss.Color("#FF9F70"),
			DELETE:  lipgloss.Color("#FF6E6E"),
			HEAD:    lipgloss.Color("#A6A1BB"),
			OPTIONS: lipgloss.Color("#A78BFA"),
			Default: lipgloss.Color("#DCD7FF"),
		},
	}
}

// MethodColor picks the badge color for an HTTP method label.
func (t Theme) MethodColor(method string) lipgloss.Color {
	switch method {
	case "GET":
		return t.MethodColors.GET
	case "POST":
		return t.MethodColors.POST
	case "PUT":
		return t.MethodColors.PUT
	case "PATCH":
		return t.MethodColors.PATCH
	case "DELETE":
		return t.MethodColors.DELETE
	case "HEAD":
		return t.MethodColors.HEAD
	case "OPTIONS":
		return t.MethodColors.OPTIONS
	default:
		return t.MethodColors.Default
	}
}
