package screen

import "image/color"

// CellFlags is a bitmask of cell rendering attributes.
type CellFlags uint16

const (
	CellFlagBold CellFlags = 1 << iota
	CellFlagDim
	CellFlagItalic
	CellFlagUnderline
	CellFlagDoubleUnderline
	CellFlagCurlyUnderline
	CellFlagDottedUnderline
	CellFlagDashedUnderline
	CellFlagReverse
	CellFlagHidden
	CellFlagStrike
	CellFlagWideChar
	CellFlagWideCharSpacer
	// CellFlagWrapped marks that drawing continued onto the next row
	// without an explicit newline (next_char_was_wrapped in spec terms).
	CellFlagWrapped
	CellFlagDirty
	// CellFlagBlink covers both slow and fast SGR blink (5/6): a headless
	// grid has no frame clock of its own to distinguish blink rates, so a
	// renderer that cares about the distinction gets it from the
	// original escape sequence, not from cell state.
	CellFlagBlink
)

// maxCombiningMarks bounds the fixed per-cell combining-mark array. The
// source keeps this array small to keep Cell cheap to copy; an
// implementation that needs unbounded marks would spill to a side table
// keyed by (line, column) instead (see DESIGN.md).
const maxCombiningMarks = 3

// Cell is one grid position: primary codepoint, up to maxCombiningMarks
// combining marks, width, visual attributes, hyperlink id, and colors.
type Cell struct {
	Char  rune
	Marks [maxCombiningMarks]rune
	nmark uint8

	Width uint8 // 0, 1 or 2; 0 denotes the spacer trailing a width-2 cell

	Flags CellFlags
	Mark  uint8 // user-mark id (0 = none), distinct from CellFlags

	Fg             color.Color
	Bg             color.Color
	UnderlineColor color.Color

	HyperlinkID uint16 // 0 = none; indexes the Screen's hyperlink pool

	Image *CellImage // virtual-placement-derived image reference, nil if none
}

// NewCell returns a cell initialized with a space character, default
// colors, and width 1.
func NewCell() Cell {
	return Cell{
		Char:  ' ',
		Width: 1,
		Fg:    &NamedColor{Name: NamedColorForeground},
		Bg:    &NamedColor{Name: NamedColorBackground},
	}
}

// Reset clears the cell back to its newly-constructed state.
func (c *Cell) Reset() {
	*c = NewCell()
}

// HasFlag reports whether flag is set.
func (c *Cell) HasFlag(flag CellFlags) bool { return c.Flags&flag != 0 }

// SetFlag enables flag without touching others.
func (c *Cell) SetFlag(flag CellFlags) { c.Flags |= flag }

// ClearFlag disables flag without touching others.
func (c *Cell) ClearFlag(flag CellFlags) { c.Flags &^= flag }

// IsDirty reports whether the cell changed since the last ClearDirty.
func (c *Cell) IsDirty() bool { return c.HasFlag(CellFlagDirty) }

// MarkDirty flags the cell as changed.
func (c *Cell) MarkDirty() { c.SetFlag(CellFlagDirty) }

// ClearDirty resets the dirty flag.
func (c *Cell) ClearDirty() { c.ClearFlag(CellFlagDirty) }

// IsWide reports whether the cell holds a width-2 glyph.
func (c *Cell) IsWide() bool { return c.Width == 2 }

// IsWideSpacer reports whether the cell trails a width-2 glyph.
func (c *Cell) IsWideSpacer() bool { return c.Width == 0 }

// IsEmpty reports whether the cell holds no printable content (the
// default space glyph with no marks and no image). Used by the reflow
// engine's content-lines-before/after heuristic (spec 4.1).
func (c *Cell) IsEmpty() bool {
	return (c.Char == ' ' || c.Char == 0) && c.nmark == 0 && c.Image == nil
}

// HasImage reports whether the cell carries an image reference.
func (c *Cell) HasImage() bool { return c.Image != nil }

// NumMarks returns the number of combining marks attached to the cell.
func (c *Cell) NumMarks() int { return int(c.nmark) }

// MarkAt returns the combining mark at index i (0-based, i < NumMarks()).
func (c *Cell) MarkAt(i int) rune { return c.Marks[i] }

// AddMark attaches a combining mark to the cell. Marks beyond the fixed
// capacity are dropped silently (spec 9: "performance assumes short
// arrays"); this never errors, per spec 7's clamp-never-raise policy
// for cell operations.
func (c *Cell) AddMark(r rune) {
	if c.Char == 0 {
		return // combining marks only attach to a non-empty primary codepoint
	}
	if int(c.nmark) >= maxCombiningMarks {
		return
	}
	c.Marks[c.nmark] = r
	c.nmark++
}

// ClearMarks removes all combining marks.
func (c *Cell) ClearMarks() {
	c.Marks = [maxCombiningMarks]rune{}
	c.nmark = 0
}

// Copy returns a value copy of the cell.
func (c *Cell) Copy() Cell {
	return *c
}

// Hyperlink looks the cell's hyperlink id up in pool, or returns nil.
func (c *Cell) Hyperlink(pool *HyperlinkPool) *Hyperlink {
	if c.HyperlinkID == 0 || pool == nil {
		return nil
	}
	return pool.Get(c.HyperlinkID)
}
