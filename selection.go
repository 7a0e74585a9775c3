package screen

// SelectionMode names what unit a drag-to-select gesture snaps to.
type SelectionMode int

const (
	SelectionCell SelectionMode = iota
	SelectionWord
	SelectionLine
	SelectionLineFromPoint
	SelectionWordAndLineFromPoint
	SelectionRectangle
)

// SelectionKind distinguishes the user's free-form primary selection
// from a URL extent highlighted by hover/detection; apply_selection
// packs both into one per-cell bitmask so the renderer can composite
// them in a single pass (bit 1 primary, bit 2 URL, spec 4.5).
type SelectionKind uint8

const (
	SelectionBitPrimary SelectionKind = 1 << iota
	SelectionBitURL
)

// Selection is one active selection span, anchored at Start and
// extended to End; Start/End are not ordered (either may precede the
// other in reading order — Normalized returns them ordered).
type Selection struct {
	Mode       SelectionMode
	Start, End Position
	dirty      bool
}

// Normalized returns (from, to) with from never after to in reading
// order (row-major for every mode but Rectangle, which instead
// normalizes row and column independently).
func (s *Selection) Normalized() (from, to Position) {
	if s.Mode == SelectionRectangle {
		from = Position{Row: minInt(s.Start.Row, s.End.Row), Col: minInt(s.Start.Col, s.End.Col)}
		to = Position{Row: maxInt(s.Start.Row, s.End.Row), Col: maxInt(s.Start.Col, s.End.Col)}
		return
	}
	if s.Start.Before(s.End) {
		return s.Start, s.End
	}
	return s.End, s.Start
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Contains reports whether (row, col) falls within the selection given
// the owning buffer's column count (needed for row-major containment
// outside Rectangle mode).
func (s *Selection) Contains(row, col, cols int) bool {
	from, to := s.Normalized()
	if s.Mode == SelectionRectangle {
		return row >= from.Row && row <= to.Row && col >= from.Col && col <= to.Col
	}
	if row < from.Row || row > to.Row {
		return false
	}
	if row == from.Row && col < from.Col {
		return false
	}
	if row == to.Row && col > to.Col {
		return false
	}
	return true
}

// SelectionsSet holds the zero-or-one active primary selection plus any
// number of URL-highlight selections (typically zero or one, one per
// hovered link), and tracks dirtiness so the renderer only recomposes
// cell highlight state when something actually changed.
type SelectionsSet struct {
	primary *Selection
	urls    []*Selection
	dirty   bool
}

// StartSelection begins a new primary selection anchored at (row, col)
// in the given mode, replacing any existing primary selection.
func (s *SelectionsSet) StartSelection(mode SelectionMode, row, col int) {
	s.primary = &Selection{Mode: mode, Start: Position{Row: row, Col: col}, End: Position{Row: row, Col: col}, dirty: true}
	s.dirty = true
}

// UpdateSelection extends the active primary selection's end point,
// using NearestExtension semantics for word/line modes (snapping to the
// nearest word/line boundary rather than the raw cell) via the caller-
// supplied snap function; snap may be nil for raw cell extension.
func (s *SelectionsSet) UpdateSelection(row, col int, snap func(mode SelectionMode, row, col int) (int, int)) {
	if s.primary == nil {
		return
	}
	r, c := row, col
	if snap != nil {
		r, c = snap(s.primary.Mode, row, col)
	}
	s.primary.End = Position{Row: r, Col: c}
	s.primary.dirty = true
	s.dirty = true
}

// ClearSelection drops the primary selection.
func (s *SelectionsSet) ClearSelection() {
	if s.primary != nil {
		s.dirty = true
	}
	s.primary = nil
}

// Primary returns the active primary selection, or nil.
func (s *SelectionsSet) Primary() *Selection { return s.primary }

// SetURLHighlight replaces the set of URL-highlight selections with a
// single span (row, colStart)-(row, colEnd), or clears it if colStart >
// colEnd.
func (s *SelectionsSet) SetURLHighlight(row, colStart, colEnd int) {
	if colStart > colEnd {
		if len(s.urls) > 0 {
			s.dirty = true
		}
		s.urls = nil
		return
	}
	s.urls = []*Selection{{Mode: SelectionLine, Start: Position{Row: row, Col: colStart}, End: Position{Row: row, Col: colEnd}, dirty: true}}
	s.dirty = true
}

// IsDirty reports whether any selection changed since the last
// ClearDirty call.
func (s *SelectionsSet) IsDirty() bool { return s.dirty }

// ClearDirty resets the dirty flag after the renderer has consumed the
// current selection state.
func (s *SelectionsSet) ClearDirty() {
	s.dirty = false
	if s.primary != nil {
		s.primary.dirty = false
	}
	for _, u := range s.urls {
		u.dirty = false
	}
}

// Mask returns the SelectionKind bitmask covering (row, col), combining
// the primary selection and any URL highlight.
func (s *SelectionsSet) Mask(row, col, cols int) SelectionKind {
	var mask SelectionKind
	if s.primary != nil && s.primary.Contains(row, col, cols) {
		mask |= SelectionBitPrimary
	}
	for _, u := range s.urls {
		if u.Contains(row, col, cols) {
			mask |= SelectionBitURL
		}
	}
	return mask
}

// SelectedText extracts the plain-text contents of the primary
// selection from lb, joining wrapped-but-selected rows without an
// inserted newline and hard row breaks with one, and dropping the
// trailing blanks of a row that is selected through its last column
// and not wrapped, the way a terminal's "copy selection" action does.
func (s *SelectionsSet) SelectedText(lb *LineBuffer) string {
	if s.primary == nil {
		return ""
	}
	from, to := s.primary.Normalized()
	var out []rune
	for row := from.Row; row <= to.Row && row < lb.Rows(); row++ {
		line := lb.Row(row)
		startCol, endCol := 0, len(line.Cells)-1
		if s.primary.Mode == SelectionRectangle {
			startCol, endCol = from.Col, to.Col
		} else {
			if row == from.Row {
				startCol = from.Col
			}
			if row == to.Row {
				endCol = to.Col
			}
		}
		rowStart := len(out)
		for c := startCol; c <= endCol && c < len(line.Cells); c++ {
			cell := line.Cells[c]
			if cell.IsWideSpacer() {
				continue
			}
			if cell.Char == 0 {
				out = append(out, ' ')
				continue
			}
			out = append(out, cell.Char)
			for i := 0; i < cell.NumMarks(); i++ {
				out = append(out, cell.MarkAt(i))
			}
		}
		if endCol >= len(line.Cells)-1 && !line.Attrs.Wrapped {
			for len(out) > rowStart && out[len(out)-1] == ' ' {
				out = out[:len(out)-1]
			}
		}
		if row != to.Row && s.primary.Mode != SelectionRectangle && !line.Attrs.Wrapped {
			out = append(out, '\n')
		} else if row != to.Row && s.primary.Mode == SelectionRectangle {
			out = append(out, '\n')
		}
	}
	return string(out)
}

// StartSelection begins a new primary selection at (row, col) in the
// given mode against the active buffer, replacing any existing one.
func (s *Screen) StartSelection(mode SelectionMode, row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections.StartSelection(mode, row, col)
}

// UpdateSelection extends the active primary selection's end point to
// (row, col).
func (s *Screen) UpdateSelection(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections.UpdateSelection(row, col, nil)
}

// ClearSelection drops the active primary selection.
func (s *Screen) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections.ClearSelection()
}

// SelectedText returns the plain-text contents of the active primary
// selection.
func (s *Screen) SelectedText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selections.SelectedText(s.active)
}

// SetURLHighlight highlights (or clears, if colStart > colEnd) a URL
// extent on row, independent of the primary selection.
func (s *Screen) SetURLHighlight(row, colStart, colEnd int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections.SetURLHighlight(row, colStart, colEnd)
}

// SelectionMask returns the SelectionKind bitmask covering (row, col).
func (s *Screen) SelectionMask(row, col int) SelectionKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selections.Mask(row, col, s.cols)
}

// DetectURLAtCursor looks for a recognized-scheme URL run on the active
// buffer at (row, col), the convenience entry point a host's hover/click
// handler calls before falling back to hyperlink-extent lookup.
func (s *Screen) DetectURLAtCursor(row, col int) (url string, startCol, endCol int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return DetectURLAt(s.active, row, col)
}
