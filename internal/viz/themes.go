package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme colours the player chrome. The wave itself keeps its colormap.
type Theme struct {
	Name   string
	Title  lipgloss.Color
	Label  lipgloss.Color
	Value  lipgloss.Color
	Muted  lipgloss.Color
	Graph  lipgloss.Color
	Paused lipgloss.Color
	Border lipgloss.Color
}

var (
	ThemeSonar = Theme{
		Name:   "sonar",
		Title:  lipgloss.Color("#00ffcc"),
		Label:  lipgloss.Color("#5f8787"),
		Value:  lipgloss.Color("#d7ffff"),
		Muted:  lipgloss.Color("#3a5f5f"),
		Graph:  lipgloss.Color("#00d7af"),
		Paused: lipgloss.Color("#ffaf00"),
		Border: lipgloss.Color("#005f5f"),
	}

	ThemeSeismic = Theme{
		Name:   "seismic",
		Title:  lipgloss.Color("#ff5f5f"),
		Label:  lipgloss.Color("#8787af"),
		Value:  lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#5f5f87"),
		Graph:  lipgloss.Color("#5f87ff"),
		Paused: lipgloss.Color("#ffd700"),
		Border: lipgloss.Color("#3a3a5f"),
	}

	ThemeMinimal = Theme{
		Name:   "minimal",
		Title:  lipgloss.Color("#ffffff"),
		Label:  lipgloss.Color("#888888"),
		Value:  lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#555555"),
		Graph:  lipgloss.Color("#0088ff"),
		Paused: lipgloss.Color("#ffaa00"),
		Border: lipgloss.Color("#444444"),
	}

	ThemePaper = Theme{
		Name:   "paper",
		Title:  lipgloss.Color("#1c1c1c"),
		Label:  lipgloss.Color("#6c6c6c"),
		Value:  lipgloss.Color("#000000"),
		Muted:  lipgloss.Color("#a8a8a8"),
		Graph:  lipgloss.Color("#af0000"),
		Paused: lipgloss.Color("#d75f00"),
		Border: lipgloss.Color("#bcbcbc"),
	}

	Themes = []Theme{
		ThemeSonar,
		ThemeSeismic,
		ThemeMinimal,
		ThemePaper,
	}
)

// GetTheme looks a theme up by name.
func GetTheme(name string) (Theme, error) {
	if i := themeIndex(name); i >= 0 {
		return Themes[i], nil
	}
	return Theme{}, fmt.Errorf("viz: unknown theme %q, want one of %s", name, strings.Join(ThemeNames(), ", "))
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func themeIndex(name string) int {
	for i, t := range Themes {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// styles holds the lipgloss styles derived from a theme.
type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	muted  lipgloss.Style
	graph  lipgloss.Style
	paused lipgloss.Style
	panel  lipgloss.Style
}

func (t Theme) styles() styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(t.Title),
		label:  lipgloss.NewStyle().Foreground(t.Label).Width(10),
		value:  lipgloss.NewStyle().Foreground(t.Value).Bold(true),
		muted:  lipgloss.NewStyle().Foreground(t.Muted),
		graph:  lipgloss.NewStyle().Foreground(t.Graph),
		paused: lipgloss.NewStyle().Bold(true).Foreground(t.Paused),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1).
			MarginLeft(1),
	}
}
