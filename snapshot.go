package screen

import "fmt"

// SnapshotDetail specifies how much detail a Snapshot call captures.
type SnapshotDetail string

const (
	// SnapshotDetailText returns plain text only.
	SnapshotDetailText SnapshotDetail = "text"
	// SnapshotDetailStyled returns text with style segments per line.
	SnapshotDetailStyled SnapshotDetail = "styled"
	// SnapshotDetailFull returns full cell-by-cell data.
	SnapshotDetailFull SnapshotDetail = "full"
)

// Snapshot is a point-in-time capture of the visible grid, suitable for
// a host to serialize without holding Screen's lock.
type Snapshot struct {
	Size   SnapshotSize
	Cursor SnapshotCursor
	Lines  []SnapshotLine
	Images []SnapshotImage
}

type SnapshotSize struct {
	Rows int
	Cols int
}

type SnapshotCursor struct {
	Row     int
	Col     int
	Visible bool
	Style   string
}

type SnapshotLine struct {
	Text     string
	Segments []SnapshotSegment
	Cells    []SnapshotCell
}

// SnapshotSegment is a run of cells sharing one style, produced by
// SnapshotDetailStyled.
type SnapshotSegment struct {
	Text       string
	Fg         string
	Bg         string
	Attributes SnapshotAttrs
	Hyperlink  *SnapshotLink
}

type SnapshotCell struct {
	Char       string
	Fg         string
	Bg         string
	Attributes SnapshotAttrs
	Hyperlink  *SnapshotLink
	Wide       bool
	WideSpacer bool
}

type SnapshotAttrs struct {
	Bold          bool
	Dim           bool
	Italic        bool
	Underline     bool
	Blink         bool
	Reverse       bool
	Hidden        bool
	Strikethrough bool
}

type SnapshotLink struct {
	ID  uint16
	URI string
}

// SnapshotImage is image placement metadata without pixel data.
type SnapshotImage struct {
	ID          uint32
	PlacementID uint32
	Row         int
	Col         int
	Rows        int
	Cols        int
	PixelWidth  uint32
	PixelHeight uint32
	ZIndex      int32
}

// Snapshot captures the active buffer's current state; detail controls
// how much per-line information is included.
func (s *Screen) Snapshot(detail SnapshotDetail) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		Size: SnapshotSize{Rows: s.rows, Cols: s.cols},
		Cursor: SnapshotCursor{
			Row:     s.cursor.Row,
			Col:     s.cursor.Col,
			Visible: s.cursor.Visible,
			Style:   cursorStyleToString(s.cursor.Style),
		},
		Lines: make([]SnapshotLine, s.rows),
	}

	for row := 0; row < s.rows; row++ {
		snap.Lines[row] = s.snapshotLineLocked(row, detail)
	}
	snap.Images = s.snapshotImagesLocked()

	return snap
}

func (s *Screen) snapshotImagesLocked() []SnapshotImage {
	layers := s.graphics.UpdateLayers(nil)
	if len(layers) == 0 {
		return nil
	}
	images := make([]SnapshotImage, 0, len(layers))
	for _, l := range layers {
		images = append(images, SnapshotImage{
			ID:     l.ImageID,
			Row:    l.Row,
			Col:    l.Col,
			Rows:   l.Rows,
			Cols:   l.Cols,
			ZIndex: l.ZIndex,
		})
	}
	return images
}

func (s *Screen) snapshotLineLocked(row int, detail SnapshotDetail) SnapshotLine {
	line := SnapshotLine{Text: s.active.LineContent(row)}

	switch detail {
	case SnapshotDetailStyled:
		line.Segments = s.lineToSegmentsLocked(row)
	case SnapshotDetailFull:
		line.Cells = s.lineToCellsLocked(row)
	}

	return line
}

func (s *Screen) lineToSegmentsLocked(row int) []SnapshotSegment {
	var segments []SnapshotSegment
	var current *SnapshotSegment
	var currentChars []rune

	for col := 0; col < s.cols; col++ {
		cell := s.active.Cell(row, col)
		if cell == nil || cell.IsWideSpacer() {
			continue
		}

		fg := colorToHex(cell.Fg, &s.colorProfile)
		bg := colorToHex(cell.Bg, &s.colorProfile)
		attrs := cellAttrsToSnapshot(cell)
		link := s.cellHyperlinkToSnapshotLocked(cell)

		if current == nil || !segmentMatches(current, fg, bg, attrs, link) {
			if current != nil && len(currentChars) > 0 {
				current.Text = string(currentChars)
				segments = append(segments, *current)
			}
			current = &SnapshotSegment{Fg: fg, Bg: bg, Attributes: attrs, Hyperlink: link}
			currentChars = nil
		}

		ch := cell.Char
		if ch == 0 {
			ch = ' '
		}
		currentChars = append(currentChars, ch)
	}

	if current != nil && len(currentChars) > 0 {
		current.Text = string(currentChars)
		segments = append(segments, *current)
	}

	return segments
}

func (s *Screen) lineToCellsLocked(row int) []SnapshotCell {
	cells := make([]SnapshotCell, 0, s.cols)

	for col := 0; col < s.cols; col++ {
		cell := s.active.Cell(row, col)
		if cell == nil {
			cells = append(cells, SnapshotCell{Char: " "})
			continue
		}

		ch := cell.Char
		if ch == 0 {
			ch = ' '
		}

		cells = append(cells, SnapshotCell{
			Char:       string(ch),
			Fg:         colorToHex(cell.Fg, &s.colorProfile),
			Bg:         colorToHex(cell.Bg, &s.colorProfile),
			Attributes: cellAttrsToSnapshot(cell),
			Hyperlink:  s.cellHyperlinkToSnapshotLocked(cell),
			Wide:       cell.IsWide(),
			WideSpacer: cell.IsWideSpacer(),
		})
	}

	return cells
}

func segmentMatches(seg *SnapshotSegment, fg, bg string, attrs SnapshotAttrs, link *SnapshotLink) bool {
	if seg.Fg != fg || seg.Bg != bg || seg.Attributes != attrs {
		return false
	}
	if seg.Hyperlink == nil && link == nil {
		return true
	}
	if seg.Hyperlink == nil || link == nil {
		return false
	}
	return seg.Hyperlink.URI == link.URI && seg.Hyperlink.ID == link.ID
}

func colorToHex(c interface {
	RGBA() (r, g, b, a uint32)
}, profile *ColorProfile) string {
	if c == nil {
		return ""
	}
	rgba := ResolveColor(c, true, profile)
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

func cellAttrsToSnapshot(cell *Cell) SnapshotAttrs {
	return SnapshotAttrs{
		Bold:          cell.HasFlag(CellFlagBold),
		Dim:           cell.HasFlag(CellFlagDim),
		Italic:        cell.HasFlag(CellFlagItalic),
		Underline:     cell.HasFlag(CellFlagUnderline) || cell.HasFlag(CellFlagDoubleUnderline) || cell.HasFlag(CellFlagCurlyUnderline) || cell.HasFlag(CellFlagDottedUnderline) || cell.HasFlag(CellFlagDashedUnderline),
		Blink:         cell.HasFlag(CellFlagBlink),
		Reverse:       cell.HasFlag(CellFlagReverse),
		Hidden:        cell.HasFlag(CellFlagHidden),
		Strikethrough: cell.HasFlag(CellFlagStrike),
	}
}

func (s *Screen) cellHyperlinkToSnapshotLocked(cell *Cell) *SnapshotLink {
	hl := cell.Hyperlink(s.hyperlinks)
	if hl == nil {
		return nil
	}
	return &SnapshotLink{ID: cell.HyperlinkID, URI: hl.URI}
}

func cursorStyleToString(style CursorStyle) string {
	switch style {
	case CursorStyleBlinkingBlock, CursorStyleSteadyBlock:
		return "block"
	case CursorStyleBlinkingUnderline, CursorStyleSteadyUnderline:
		return "underline"
	case CursorStyleBlinkingBar, CursorStyleSteadyBar:
		return "bar"
	default:
		return "block"
	}
}
