package browse

import (
	"github.com/ValentinKolb/asadmin/lib/profile"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// palette holds the colors of a theme
type palette struct {
	text     lipgloss.Color
	muted    lipgloss.Color
	accent   lipgloss.Color
	onAccent lipgloss.Color
	border   lipgloss.Color
	surface  lipgloss.Color
	success  lipgloss.Color
	danger   lipgloss.Color
}

var palettes = map[profile.Theme]palette{
	profile.ThemeDark: {
		text:     lipgloss.Color("#E6E6E6"),
		muted:    lipgloss.Color("#8A8A8A"),
		accent:   lipgloss.Color("#C4161C"),
		onAccent: lipgloss.Color("#FFFFFF"),
		border:   lipgloss.Color("#4A4A4A"),
		surface:  lipgloss.Color("#262626"),
		success:  lipgloss.Color("#3FB950"),
		danger:   lipgloss.Color("#F85149"),
	},
	profile.ThemeLight: {
		text:     lipgloss.Color("#1F2328"),
		muted:    lipgloss.Color("#6E7781"),
		accent:   lipgloss.Color("#A3121A"),
		onAccent: lipgloss.Color("#FFFFFF"),
		border:   lipgloss.Color("#D0D7DE"),
		surface:  lipgloss.Color("#F6F8FA"),
		success:  lipgloss.Color("#1A7F37"),
		danger:   lipgloss.Color("#CF222E"),
	},
}

type styles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	success  lipgloss.Style
	errorMsg lipgloss.Style
	label    lipgloss.Style
	panel    lipgloss.Style
	focused  lipgloss.Style
	help     lipgloss.Style
	table    table.Styles
}

func newStyles(t profile.Theme) styles {
	p, ok := palettes[t]
	if !ok {
		p = palettes[profile.DefaultTheme]
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1)

	tbl := table.DefaultStyles()
	tbl.Header = tbl.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.border).
		BorderBottom(true).
		Bold(true).
		Foreground(p.text)
	tbl.Cell = tbl.Cell.Foreground(p.text)
	tbl.Selected = tbl.Selected.
		Foreground(p.onAccent).
		Background(p.accent).
		Bold(false)

	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(p.onAccent).Background(p.accent).Padding(0, 1),
		muted:    lipgloss.NewStyle().Foreground(p.muted),
		success:  lipgloss.NewStyle().Foreground(p.success),
		errorMsg: lipgloss.NewStyle().Foreground(p.danger),
		label:    lipgloss.NewStyle().Bold(true).Foreground(p.text),
		panel:    box,
		focused:  box.BorderForeground(p.accent),
		help:     lipgloss.NewStyle().Foreground(p.muted).Background(p.surface),
		table:    tbl,
	}
}
