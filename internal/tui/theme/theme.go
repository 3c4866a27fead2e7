// Package theme holds the color palettes used by the calciq TUI.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme names every color role the screens draw with.
type Theme struct {
	Name string

	Background   lipgloss.Color
	Surface      lipgloss.Color // cards and bars
	SurfaceHover lipgloss.Color // selected row, cursor tile
	Border       lipgloss.Color
	BorderAccent lipgloss.Color

	TextDim     lipgloss.Color
	TextMuted   lipgloss.Color
	TextPrimary lipgloss.Color

	Accent       lipgloss.Color
	AccentBright lipgloss.Color

	// Budget groups.
	Needs lipgloss.Color
	Wants lipgloss.Color
	Save  lipgloss.Color

	// Memory board.
	TileBack    lipgloss.Color
	TileFace    lipgloss.Color
	TileMatched lipgloss.Color

	Green  lipgloss.Color
	Orange lipgloss.Color
	Red    lipgloss.Color
	Yellow lipgloss.Color
	Cyan   lipgloss.Color
}

// Active is the palette in use.
var Active = FlexokiDark

var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   lipgloss.Color("#100F0F"),
	Surface:      lipgloss.Color("#1C1B1A"),
	SurfaceHover: lipgloss.Color("#282726"),
	Border:       lipgloss.Color("#403E3C"),
	BorderAccent: lipgloss.Color("#3AA99F"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	AccentBright: lipgloss.Color("#5BC8BE"),
	Needs:        lipgloss.Color("#4385BE"),
	Wants:        lipgloss.Color("#CE5D97"),
	Save:         lipgloss.Color("#879A39"),
	TileBack:     lipgloss.Color("#343331"),
	TileFace:     lipgloss.Color("#FFFCF0"),
	TileMatched:  lipgloss.Color("#1A3533"),
	Green:        lipgloss.Color("#879A39"),
	Orange:       lipgloss.Color("#DA702C"),
	Red:          lipgloss.Color("#D14D41"),
	Yellow:       lipgloss.Color("#D0A215"),
	Cyan:         lipgloss.Color("#24837B"),
}

var CatppuccinMocha = Theme{
	Name:         "catppuccin-mocha",
	Background:   lipgloss.Color("#1E1E2E"),
	Surface:      lipgloss.Color("#313244"),
	SurfaceHover: lipgloss.Color("#45475A"),
	Border:       lipgloss.Color("#585B70"),
	BorderAccent: lipgloss.Color("#89B4FA"),
	TextDim:      lipgloss.Color("#6C7086"),
	TextMuted:    lipgloss.Color("#A6ADC8"),
	TextPrimary:  lipgloss.Color("#CDD6F4"),
	Accent:       lipgloss.Color("#89B4FA"),
	AccentBright: lipgloss.Color("#B4D0FB"),
	Needs:        lipgloss.Color("#89B4FA"),
	Wants:        lipgloss.Color("#F5C2E7"),
	Save:         lipgloss.Color("#A6E3A1"),
	TileBack:     lipgloss.Color("#585B70"),
	TileFace:     lipgloss.Color("#CDD6F4"),
	TileMatched:  lipgloss.Color("#293147"),
	Green:        lipgloss.Color("#A6E3A1"),
	Orange:       lipgloss.Color("#FAB387"),
	Red:          lipgloss.Color("#F38BA8"),
	Yellow:       lipgloss.Color("#F9E2AF"),
	Cyan:         lipgloss.Color("#94E2D5"),
}

var TokyoNight = Theme{
	Name:         "tokyo-night",
	Background:   lipgloss.Color("#1A1B26"),
	Surface:      lipgloss.Color("#24283B"),
	SurfaceHover: lipgloss.Color("#343A52"),
	Border:       lipgloss.Color("#565F89"),
	BorderAccent: lipgloss.Color("#7AA2F7"),
	TextDim:      lipgloss.Color("#565F89"),
	TextMuted:    lipgloss.Color("#A9B1D6"),
	TextPrimary:  lipgloss.Color("#C0CAF5"),
	Accent:       lipgloss.Color("#7AA2F7"),
	AccentBright: lipgloss.Color("#A9C1FF"),
	Needs:        lipgloss.Color("#7AA2F7"),
	Wants:        lipgloss.Color("#BB9AF7"),
	Save:         lipgloss.Color("#9ECE6A"),
	TileBack:     lipgloss.Color("#414868"),
	TileFace:     lipgloss.Color("#C0CAF5"),
	TileMatched:  lipgloss.Color("#252B3F"),
	Green:        lipgloss.Color("#9ECE6A"),
	Orange:       lipgloss.Color("#FF9E64"),
	Red:          lipgloss.Color("#F7768E"),
	Yellow:       lipgloss.Color("#E0AF68"),
	Cyan:         lipgloss.Color("#7DCFFF"),
}

// Terminal sticks to the 16 ANSI colors.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	SurfaceHover: lipgloss.Color("8"),
	Border:       lipgloss.Color("8"),
	BorderAccent: lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	Needs:        lipgloss.Color("4"),
	Wants:        lipgloss.Color("5"),
	Save:         lipgloss.Color("2"),
	TileBack:     lipgloss.Color("8"),
	TileFace:     lipgloss.Color("15"),
	TileMatched:  lipgloss.Color("0"),
	Green:        lipgloss.Color("2"),
	Orange:       lipgloss.Color("3"),
	Red:          lipgloss.Color("1"),
	Yellow:       lipgloss.Color("3"),
	Cyan:         lipgloss.Color("6"),
}

// All lists the selectable palettes, default first.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// ByName looks a palette up by name, falling back to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// Names returns the palette names in display order.
func Names() []string {
	out := make([]string, len(All))
	for i, t := range All {
		out[i] = t.Name
	}
	return out
}

func SetActive(name string) {
	Active = ByName(name)
}
