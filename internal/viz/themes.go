package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// Theme colours the panel text and the three concentration curves.
type Theme struct {
	Name      string
	Title     lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Accent    lipgloss.Color
	Running   lipgloss.Color
	Idle      lipgloss.Color
	Error     lipgloss.Color
	Biomass   asciigraph.AnsiColor
	Substrate asciigraph.AnsiColor
	Product   asciigraph.AnsiColor
}

var (
	ThemeLab = Theme{
		Name:      "lab",
		Title:     lipgloss.Color("86"),
		Text:      lipgloss.Color("252"),
		Muted:     lipgloss.Color("245"),
		Accent:    lipgloss.Color("205"),
		Running:   lipgloss.Color("#00ff88"),
		Idle:      lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff4444"),
		Biomass:   asciigraph.Green,
		Substrate: asciigraph.Red,
		Product:   asciigraph.Blue,
	}

	ThemeRetro = Theme{
		Name:      "retro",
		Title:     lipgloss.Color("#00ff00"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Accent:    lipgloss.Color("#88ff88"),
		Running:   lipgloss.Color("#88ff88"),
		Idle:      lipgloss.Color("#ffff00"),
		Error:     lipgloss.Color("#ff0000"),
		Biomass:   asciigraph.Lime,
		Substrate: asciigraph.Yellow,
		Product:   asciigraph.Aqua,
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Title:     lipgloss.Color("#ffffff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Accent:    lipgloss.Color("#0088ff"),
		Running:   lipgloss.Color("#00ff00"),
		Idle:      lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff0000"),
		Biomass:   asciigraph.Default,
		Substrate: asciigraph.Default,
		Product:   asciigraph.Default,
	}

	Themes = []Theme{ThemeLab, ThemeRetro, ThemeMinimal}
)

// GetTheme returns a theme by name, falling back to the lab theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeLab
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeLab
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
