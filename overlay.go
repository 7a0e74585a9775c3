package screen

// Overlay holds a transient line of content drawn over the live grid
// without mutating it — the IME composition preview a text-input
// method shows while the user is still composing a character, per spec
// 4.6. The underlying row is restored verbatim once the overlay is
// cleared; nothing about the real buffer changes while it is active.
type Overlay struct {
	active bool
	row    int
	cells  []Cell
	cursor int // column within cells the composition caret sits at
}

// SetComposition activates the overlay at the given row with the
// provided cell content (already shaped/widthed by the caller) and
// caret column, replacing any prior composition.
func (o *Overlay) SetComposition(row int, cells []Cell, cursor int) {
	o.active = true
	o.row = row
	o.cells = append(o.cells[:0], cells...)
	o.cursor = cursor
}

// Clear deactivates the overlay, after which the underlying row renders
// unmodified again.
func (o *Overlay) Clear() {
	o.active = false
	o.cells = nil
}

// Active reports whether an overlay is currently set.
func (o *Overlay) Active() bool { return o.active }

// Row returns the row the overlay applies to (meaningless if !Active()).
func (o *Overlay) Row() int { return o.row }

// Cursor returns the composition caret's column offset within the
// overlay's own cell slice.
func (o *Overlay) Cursor() int { return o.cursor }

// Apply renders the overlay over a copy of the given line's cells,
// leaving the original line (and the LineBuffer it lives in)
// untouched; callers use this only at draw time, never persisting the
// result back into the grid.
func (o *Overlay) Apply(line Line) Line {
	if !o.active {
		return line
	}
	out := Line{Cells: append([]Cell(nil), line.Cells...), Attrs: line.Attrs}
	for i, c := range o.cells {
		if i >= len(out.Cells) {
			break
		}
		out.Cells[i] = c
	}
	return out
}
