package screen

// PromptKind classifies a line's role in shell-integration marking
// (spec 4.2 "Prompt marking", OSC 133).
type PromptKind uint8

const (
	PromptKindNone PromptKind = iota
	PromptKindPromptStart
	PromptKindSecondaryPrompt
	PromptKindOutputStart
)

// LineAttrs holds the per-line metadata spec 3 calls out alongside the
// cell array: continuation state, prompt classification, and whether
// the line needs an image-placeholder rescan.
type LineAttrs struct {
	// Wrapped is true when this row's content continues onto the next
	// row without an explicit newline (the source's
	// next_char_was_wrapped, renamed per spec 9's "overloaded index"
	// guidance to avoid clashing with ring/array indices).
	Wrapped bool

	// Continued is true when this row is itself the continuation of the
	// row above (the trailing half of a logical line).
	Continued bool

	PromptKind PromptKind

	HasImagePlaceholders bool

	Dirty bool
}

// Line is a fixed-width ordered sequence of cells plus line attributes.
// Lines are value-owned by their LineBuffer slot; callers that need a
// transient view borrow a *Line from LineBuffer.Row rather than copying.
type Line struct {
	Cells []Cell
	Attrs LineAttrs
}

// NewLine allocates a blank line of the given width.
func NewLine(cols int) Line {
	cells := make([]Cell, cols)
	for i := range cells {
		cells[i] = NewCell()
	}
	return Line{Cells: cells}
}

// Clear resets every cell to blank. When keepAttrs is false, line
// attributes (wrapped/prompt-kind/has-image-placeholders) are reset too.
func (l *Line) Clear(keepAttrs bool) {
	for i := range l.Cells {
		l.Cells[i].Reset()
	}
	if !keepAttrs {
		l.Attrs = LineAttrs{}
	}
	l.Attrs.Dirty = true
}

// ClearRange resets cells in [start, end) to blank.
func (l *Line) ClearRange(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(l.Cells) {
		end = len(l.Cells)
	}
	for i := start; i < end; i++ {
		l.Cells[i].Reset()
	}
	l.Attrs.Dirty = true
}

// Resize grows or shrinks the cell array in place, preserving existing
// content at the left and padding/truncating on the right. Used by
// GrowCols-style auto-resize; the reflow engine (reflow.go) is used for
// real interactive resizes that must preserve logical paragraphs.
func (l *Line) Resize(cols int) {
	if cols == len(l.Cells) {
		return
	}
	newCells := make([]Cell, cols)
	for i := range newCells {
		if i < len(l.Cells) {
			newCells[i] = l.Cells[i]
		} else {
			newCells[i] = NewCell()
		}
	}
	l.Cells = newCells
}

// LastNonBlank returns the column index of the last non-blank,
// non-spacer cell, or -1 if the line is entirely blank.
func (l *Line) LastNonBlank() int {
	for col := len(l.Cells) - 1; col >= 0; col-- {
		c := &l.Cells[col]
		if c.IsWideSpacer() {
			continue
		}
		if !c.IsEmpty() {
			return col
		}
	}
	return -1
}

// HasContent reports whether any cell on the line carries non-default
// content; used by the reflow engine's content_lines_before/after count
// (spec 4.1).
func (l *Line) HasContent() bool {
	return l.LastNonBlank() >= 0
}

// Text returns the line's text content, wide-char spacers skipped and
// trailing blanks trimmed.
func (l *Line) Text() string {
	last := l.LastNonBlank()
	if last < 0 {
		return ""
	}
	runes := make([]rune, 0, last+1)
	for i := 0; i <= last; i++ {
		c := &l.Cells[i]
		if c.IsWideSpacer() {
			continue
		}
		if c.Char == 0 {
			runes = append(runes, ' ')
		} else {
			runes = append(runes, c.Char)
		}
	}
	return string(runes)
}
