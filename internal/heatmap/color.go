package heatmap

import "strings"

// ColorToken names one step of the green or orange scale.
type ColorToken string

const (
	Green0 ColorToken = "green-0"
	Green1 ColorToken = "green-1"
	Green2 ColorToken = "green-2"
	Green3 ColorToken = "green-3"
	Green4 ColorToken = "green-4"

	Orange0 ColorToken = "orange-0"
	Orange1 ColorToken = "orange-1"
	Orange2 ColorToken = "orange-2"
	Orange3 ColorToken = "orange-3"
	Orange4 ColorToken = "orange-4"
)

var (
	greenScale  = [MaxLevel + 1]ColorToken{Green0, Green1, Green2, Green3, Green4}
	orangeScale = [MaxLevel + 1]ColorToken{Orange0, Orange1, Orange2, Orange3, Orange4}
)

// ResolveColor picks the single display color for a cell. Pending todos
// win over completed items; a day with neither gets the empty green tier.
func ResolveColor(c DayCell) ColorToken {
	switch {
	case c.HasIncompleteTodos:
		return orangeScale[Bucket(c.OrangeLevel)]
	case c.HasCompletedItems:
		return greenScale[Bucket(c.GreenLevel)]
	default:
		return Green0
	}
}

// Palette maps every token to a hex color.
type Palette map[ColorToken]string

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

func LightPalette() Palette {
	return Palette{
		Green0:  "#ebedf0",
		Green1:  "#9be9a8",
		Green2:  "#40c463",
		Green3:  "#30a14e",
		Green4:  "#216e39",
		Orange0: "#ebedf0",
		Orange1: "#fdd0a2",
		Orange2: "#fdae6b",
		Orange3: "#fd8d3c",
		Orange4: "#d94701",
	}
}

func DarkPalette() Palette {
	return Palette{
		Green0:  "#161b22",
		Green1:  "#0e4429",
		Green2:  "#006d32",
		Green3:  "#26a641",
		Green4:  "#39d353",
		Orange0: "#161b22",
		Orange1: "#5c2b0a",
		Orange2: "#9a4a12",
		Orange3: "#d9731a",
		Orange4: "#ff9a3c",
	}
}

// PaletteFor returns the palette for a theme name. Unknown names get the
// light palette.
func PaletteFor(theme string) Palette {
	if strings.EqualFold(strings.TrimSpace(theme), ThemeDark) {
		return DarkPalette()
	}
	return LightPalette()
}
