package ppu

import (
	"image/color"
	"sort"
	"strings"
)

// Palette maps the two pixel states to display colors.
type Palette struct {
	Name string
	On   color.RGBA
	Off  color.RGBA
}

// DefaultPalette is the green LCD look.
const DefaultPalette = "green"

var palettes = map[string]Palette{
	"green": {Name: "green", On: color.RGBA{30, 40, 30, 255}, Off: color.RGBA{150, 210, 150, 255}},
	"gray":  {Name: "gray", On: color.RGBA{230, 230, 230, 255}, Off: color.RGBA{100, 100, 100, 255}},
	"mono":  {Name: "mono", On: color.RGBA{255, 255, 255, 255}, Off: color.RGBA{0, 0, 0, 255}},
	"amber": {Name: "amber", On: color.RGBA{255, 176, 0, 255}, Off: color.RGBA{40, 20, 0, 255}},
	"cyan":  {Name: "cyan", On: color.RGBA{120, 230, 255, 255}, Off: color.RGBA{10, 30, 60, 255}},
}

// PaletteByName looks a palette up case-insensitively.
func PaletteByName(name string) (Palette, bool) {
	p, ok := palettes[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// PaletteNames lists the known palettes in sorted order.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for n := range palettes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
