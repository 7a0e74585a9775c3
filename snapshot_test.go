package screen

import "testing"

func TestSnapshot_Text(t *testing.T) {
	s := New(WithSize(2, 10))
	s.WriteString("hi")

	snap := s.Snapshot(SnapshotDetailText)
	if snap.Size.Rows != 2 || snap.Size.Cols != 10 {
		t.Fatalf("size = %+v", snap.Size)
	}
	if len(snap.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(snap.Lines))
	}
	if snap.Lines[0].Text[:2] != "hi" {
		t.Fatalf("line 0 text = %q", snap.Lines[0].Text)
	}
	if snap.Lines[0].Segments != nil || snap.Lines[0].Cells != nil {
		t.Fatal("text detail should not populate segments/cells")
	}
}

func TestSnapshot_Cursor(t *testing.T) {
	s := New(WithSize(5, 10))
	s.WriteString("\x1b[3;5H")

	snap := s.Snapshot(SnapshotDetailText)
	if snap.Cursor.Row != 2 || snap.Cursor.Col != 4 {
		t.Fatalf("cursor = %+v, want (2,4)", snap.Cursor)
	}
	if !snap.Cursor.Visible {
		t.Fatal("expected cursor visible by default")
	}
}

func TestSnapshot_Styled(t *testing.T) {
	s := New(WithSize(2, 10))
	s.WriteString("\x1b[1mbold\x1b[0mplain")

	snap := s.Snapshot(SnapshotDetailStyled)
	segs := snap.Lines[0].Segments
	if len(segs) < 2 {
		t.Fatalf("segments = %+v, want at least 2 runs", segs)
	}
	if !segs[0].Attributes.Bold {
		t.Fatalf("first segment = %+v, want bold", segs[0])
	}
	if segs[0].Text != "bold" {
		t.Fatalf("first segment text = %q", segs[0].Text)
	}
}

func TestSnapshot_Full(t *testing.T) {
	s := New(WithSize(2, 10))
	s.WriteString("中x")

	snap := s.Snapshot(SnapshotDetailFull)
	cells := snap.Lines[0].Cells
	if len(cells) != 10 {
		t.Fatalf("cells = %d, want 10", len(cells))
	}
	if !cells[0].Wide {
		t.Fatal("expected cell 0 to be wide")
	}
	if !cells[1].WideSpacer {
		t.Fatal("expected cell 1 to be a wide spacer")
	}
	if cells[2].Char != "x" {
		t.Fatalf("cells[2].Char = %q, want x", cells[2].Char)
	}
}

func TestSnapshot_Hyperlink(t *testing.T) {
	s := New(WithSize(2, 10))
	s.WriteString("\x1b]8;;https://example.com\x1b\\link\x1b]8;;\x1b\\")

	snap := s.Snapshot(SnapshotDetailFull)
	link := snap.Lines[0].Cells[0].Hyperlink
	if link == nil {
		t.Fatal("expected a hyperlink on the first cell")
	}
	if link.URI != "https://example.com" {
		t.Fatalf("hyperlink URI = %q", link.URI)
	}
}

func TestCursorStyleToString(t *testing.T) {
	cases := map[CursorStyle]string{
		CursorStyleBlinkingBlock:   "block",
		CursorStyleSteadyUnderline: "underline",
		CursorStyleBlinkingBar:     "bar",
	}
	for style, want := range cases {
		if got := cursorStyleToString(style); got != want {
			t.Errorf("cursorStyleToString(%v) = %q, want %q", style, got, want)
		}
	}
}
