package screen

import "image/color"

// IndexedColor references a color by 256-color palette index.
// Resolution to actual RGBA happens at render time using the palette,
// per spec 3's "24-bit with palette-index encoding" cell color model.
type IndexedColor struct {
	Index int
}

// RGBA implements color.Color with a placeholder; real resolution
// happens in ResolveColor against a ColorProfile's palette.
func (c *IndexedColor) RGBA() (r, g, b, a uint32) { return 0, 0, 0, 0xffff }

// NamedColor references a color by semantic name (foreground,
// background, cursor, dim variants, ...).
type NamedColor struct {
	Name int
}

// RGBA implements color.Color with a placeholder.
func (c *NamedColor) RGBA() (r, g, b, a uint32) { return 0, 0, 0, 0xffff }

// Named color indices for semantic colors (used with NamedColor).
const (
	NamedColorForeground       = 256
	NamedColorBackground       = 257
	NamedColorCursor           = 258
	NamedColorDimBlack         = 259
	NamedColorDimRed           = 260
	NamedColorDimGreen         = 261
	NamedColorDimYellow        = 262
	NamedColorDimBlue          = 263
	NamedColorDimMagenta       = 264
	NamedColorDimCyan          = 265
	NamedColorDimWhite         = 266
	NamedColorBrightForeground = 267
	NamedColorDimForeground    = 268
)

// DefaultPalette is the standard 256-color palette: 16 named colors
// (0-15), a 216 color cube (16-231), and 24 grayscale steps (232-255).
var DefaultPalette = [256]color.RGBA{
	{0, 0, 0, 255},
	{205, 49, 49, 255},
	{13, 188, 121, 255},
	{229, 229, 16, 255},
	{36, 114, 200, 255},
	{188, 63, 188, 255},
	{17, 168, 205, 255},
	{229, 229, 229, 255},

	{102, 102, 102, 255},
	{241, 76, 76, 255},
	{35, 209, 139, 255},
	{245, 245, 67, 255},
	{59, 142, 234, 255},
	{214, 112, 214, 255},
	{41, 184, 219, 255},
	{255, 255, 255, 255},
}

func init() {
	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				DefaultPalette[i] = color.RGBA{R: uint8(r * 51), G: uint8(g * 51), B: uint8(b * 51), A: 255}
				i++
			}
		}
	}
	for j := 0; j < 24; j++ {
		gray := uint8(8 + j*10)
		DefaultPalette[232+j] = color.RGBA{gray, gray, gray, 255}
	}
}

// DefaultForeground is the default text color.
var DefaultForeground = color.RGBA{229, 229, 229, 255}

// DefaultBackground is the default background color.
var DefaultBackground = color.RGBA{0, 0, 0, 255}

// DefaultCursorColor is the default cursor rendering color.
var DefaultCursorColor = color.RGBA{229, 229, 229, 255}

// ColorProfile lets a host override the palette/defaults used to
// resolve NamedColor/IndexedColor cells, e.g. from a loaded theme.
// The paused-rendering snapshot (spec 4.7) captures a ColorProfile
// value alongside the frozen grid so the pause survives a live theme
// change without mutating what is being displayed.
type ColorProfile struct {
	Palette    [256]color.RGBA
	Foreground color.RGBA
	Background color.RGBA
	Cursor     color.RGBA
}

// DefaultColorProfile returns a profile built from the package defaults.
func DefaultColorProfile() ColorProfile {
	return ColorProfile{Palette: DefaultPalette, Foreground: DefaultForeground, Background: DefaultBackground, Cursor: DefaultCursorColor}
}

// ResolveDefaultColor converts a color.Color to RGBA using the default
// color profile. If c is nil, returns the default foreground or
// background depending on fg.
func ResolveDefaultColor(c color.Color, fg bool) color.RGBA {
	profile := DefaultColorProfile()
	return ResolveColor(c, fg, &profile)
}

// ResolveColor converts a color.Color to RGBA using profile.
// IndexedColor and NamedColor are resolved against profile's palette
// and named defaults; any other color.Color is converted via RGBA().
func ResolveColor(c color.Color, fg bool, profile *ColorProfile) color.RGBA {
	if c == nil {
		if fg {
			return profile.Foreground
		}
		return profile.Background
	}

	switch v := c.(type) {
	case color.RGBA:
		return v
	case *IndexedColor:
		if v.Index >= 0 && v.Index < 256 {
			return profile.Palette[v.Index]
		}
		if fg {
			return profile.Foreground
		}
		return profile.Background
	case *NamedColor:
		return resolveNamedColor(v.Name, fg, profile)
	default:
		r, g, b, a := c.RGBA()
		return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
	}
}

func resolveNamedColor(name int, fg bool, profile *ColorProfile) color.RGBA {
	switch {
	case name >= 0 && name < 16:
		return profile.Palette[name]
	case name == NamedColorForeground:
		return profile.Foreground
	case name == NamedColorBackground:
		return profile.Background
	case name == NamedColorCursor:
		return profile.Cursor
	case name >= NamedColorDimBlack && name <= NamedColorDimWhite:
		base := profile.Palette[name-NamedColorDimBlack]
		return dim(base)
	case name == NamedColorBrightForeground:
		return profile.Palette[15]
	case name == NamedColorDimForeground:
		return dim(profile.Foreground)
	default:
		if fg {
			return profile.Foreground
		}
		return profile.Background
	}
}

func dim(c color.RGBA) color.RGBA {
	return color.RGBA{R: uint8(float64(c.R) * 0.66), G: uint8(float64(c.G) * 0.66), B: uint8(float64(c.B) * 0.66), A: 255}
}
