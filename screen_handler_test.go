package screen

import "testing"

type recordingChildWriter struct {
	escapes [][]byte
}

func (w *recordingChildWriter) WriteToChild(data []byte) (int, error) { return len(data), nil }

func (w *recordingChildWriter) WriteEscapeCodeToChild(code []byte) (int, error) {
	cp := append([]byte(nil), code...)
	w.escapes = append(w.escapes, cp)
	return len(code), nil
}

func newTestScreen(rows, cols int) (*Screen, *recordingChildWriter) {
	w := &recordingChildWriter{}
	cb := HostCallbacks{ChildWriter: w}
	s := New(WithSize(rows, cols), WithHostCallbacks(cb))
	return s, w
}

func TestInput_BasicWrite(t *testing.T) {
	s := New(WithSize(5, 10))
	s.WriteString("hi")

	row, col := s.CursorPos()
	if row != 0 || col != 2 {
		t.Fatalf("cursor = (%d,%d), want (0,2)", row, col)
	}
	cell, ok := s.Cell(0, 0)
	if !ok || cell.Char != 'h' {
		t.Fatalf("cell(0,0) = %+v, ok=%v, want 'h'", cell, ok)
	}
}

func TestInput_Autowrap(t *testing.T) {
	s, _ := newTestScreen(5, 4)
	s.WriteString("abcd")
	row, col := s.CursorPos()
	if row != 0 || col != 3 {
		t.Fatalf("before wrap: cursor = (%d,%d), want (0,3)", row, col)
	}

	s.WriteString("e")
	row, col = s.CursorPos()
	if row != 1 || col != 1 {
		t.Fatalf("after wrap: cursor = (%d,%d), want (1,1)", row, col)
	}
}

func TestInput_WideChar(t *testing.T) {
	s, _ := newTestScreen(5, 10)
	s.WriteString("中")

	cell, _ := s.Cell(0, 0)
	if !cell.IsWide() {
		t.Fatal("expected wide cell at (0,0)")
	}
	spacer, _ := s.Cell(0, 1)
	if !spacer.IsWideSpacer() {
		t.Fatal("expected wide spacer at (0,1)")
	}
	_, col := s.CursorPos()
	if col != 2 {
		t.Fatalf("cursor col = %d, want 2", col)
	}
}

func TestInput_VS16PromotesToWide(t *testing.T) {
	s, _ := newTestScreen(5, 10)
	s.WriteString("A️")

	cell, _ := s.Cell(0, 0)
	if !cell.IsWide() {
		t.Fatal("expected VS16 to promote the base cell to wide")
	}
	spacer, _ := s.Cell(0, 1)
	if !spacer.IsWideSpacer() {
		t.Fatal("expected wide spacer at (0,1) after promotion")
	}
	_, col := s.CursorPos()
	if col != 2 {
		t.Fatalf("cursor col = %d, want 2", col)
	}
}

func TestInput_VS15DemotesFromWide(t *testing.T) {
	s, _ := newTestScreen(5, 10)
	s.WriteString("中︎")

	cell, _ := s.Cell(0, 0)
	if cell.IsWide() {
		t.Fatal("expected VS15 to demote the base cell back to narrow")
	}
	spacer, _ := s.Cell(0, 1)
	if spacer.IsWideSpacer() {
		t.Fatal("expected spacer at (0,1) to be cleared after demotion")
	}
	_, col := s.CursorPos()
	if col != 1 {
		t.Fatalf("cursor col = %d, want 1", col)
	}
}

func TestInput_RegionalIndicatorPairCoalesces(t *testing.T) {
	s, _ := newTestScreen(5, 10)
	s.WriteString("\U0001F1FA\U0001F1F8") // regional indicators U, S -> a flag pair

	cell, _ := s.Cell(0, 0)
	if cell.Char != '\U0001F1FA' {
		t.Fatalf("cell(0,0).Char = %q, want the first regional indicator", cell.Char)
	}
	if cell.NumMarks() != 1 || cell.MarkAt(0) != '\U0001F1F8' {
		t.Fatal("expected the second regional indicator attached as a combining mark")
	}
	if next, _ := s.Cell(0, 1); !next.IsWideSpacer() {
		t.Fatal("expected the pair to occupy a single wide cell with a spacer at (0,1)")
	}
	_, col := s.CursorPos()
	if col != 2 {
		t.Fatalf("cursor col = %d, want 2 (one coalesced wide cell, not two)", col)
	}
}

func TestCarriageReturnLineFeed(t *testing.T) {
	s, _ := newTestScreen(5, 10)
	s.WriteString("ab\r\ncd")

	row, col := s.CursorPos()
	if row != 1 || col != 2 {
		t.Fatalf("cursor = (%d,%d), want (1,2)", row, col)
	}
	cell, _ := s.Cell(1, 0)
	if cell.Char != 'c' {
		t.Fatalf("cell(1,0) = %q, want 'c'", cell.Char)
	}
}

func TestScrollingRegionAndScrollUp(t *testing.T) {
	s, _ := newTestScreen(5, 10)
	s.WriteString("\x1b[2;4r")
	for i := 0; i < 5; i++ {
		s.WriteString("line\r\n")
	}
	row, _ := s.CursorPos()
	if row > 3 {
		t.Fatalf("cursor row %d escaped scrolling region bottom", row)
	}
}

func TestAltScreenSwapSavesAndRestoresCursor(t *testing.T) {
	s, _ := newTestScreen(5, 10)
	s.WriteString("\x1b[3;5H")
	row, col := s.CursorPos()
	if row != 2 || col != 4 {
		t.Fatalf("setup cursor = (%d,%d), want (2,4)", row, col)
	}

	s.WriteString("\x1b[?1049h")
	if !s.InAlternateScreen() {
		t.Fatal("expected alternate screen active")
	}

	s.WriteString("\x1b[?1049l")
	if s.InAlternateScreen() {
		t.Fatal("expected primary screen restored")
	}
	row, col = s.CursorPos()
	if row != 2 || col != 4 {
		t.Fatalf("cursor after restore = (%d,%d), want (2,4)", row, col)
	}
}

func TestDeviceStatusReportsCursorPosition(t *testing.T) {
	s, w := newTestScreen(5, 10)
	s.WriteString("\x1b[3;5H")
	s.WriteString("\x1b[6n")

	if len(w.escapes) == 0 {
		t.Fatal("expected a DSR response")
	}
	got := string(w.escapes[len(w.escapes)-1])
	if got != "\x1b[3;5R" {
		t.Fatalf("DSR response = %q, want %q", got, "\x1b[3;5R")
	}
}

func TestSGRBoldAndReset(t *testing.T) {
	s, _ := newTestScreen(5, 10)
	s.WriteString("\x1b[1mB")
	cell, _ := s.Cell(0, 0)
	if !cell.HasFlag(CellFlagBold) {
		t.Fatal("expected bold flag set")
	}

	s.WriteString("\x1b[0mN")
	cell, _ = s.Cell(0, 1)
	if cell.HasFlag(CellFlagBold) {
		t.Fatal("expected bold flag cleared after reset")
	}
}

func TestBackspaceMovesCursorLeft(t *testing.T) {
	s, _ := newTestScreen(5, 10)
	s.WriteString("ab\b")
	_, col := s.CursorPos()
	if col != 1 {
		t.Fatalf("cursor col = %d, want 1", col)
	}
}

func TestResetState(t *testing.T) {
	s, _ := newTestScreen(5, 10)
	s.WriteString("\x1b[1;3Hx\x1bc")

	row, col := s.CursorPos()
	if row != 0 || col != 0 {
		t.Fatalf("cursor after RIS = (%d,%d), want (0,0)", row, col)
	}
}
