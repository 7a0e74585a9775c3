package screen

import "testing"

func TestSelectionNormalized(t *testing.T) {
	sel := Selection{Start: Position{Row: 2, Col: 5}, End: Position{Row: 0, Col: 1}}
	from, to := sel.Normalized()
	if from != (Position{Row: 0, Col: 1}) || to != (Position{Row: 2, Col: 5}) {
		t.Fatalf("Normalized() = %v, %v", from, to)
	}
}

func TestSelectionsSet_SelectedText(t *testing.T) {
	s := New(WithSize(3, 10))
	s.WriteString("hello\r\nworld")

	var set SelectionsSet
	set.StartSelection(SelectionCell, 0, 0)
	set.UpdateSelection(1, 4, nil)

	got := set.SelectedText(s.active)
	want := "hello\nworld"
	if got != want {
		t.Fatalf("SelectedText() = %q, want %q", got, want)
	}
}

func TestSelectionsSet_Mask(t *testing.T) {
	var set SelectionsSet
	set.StartSelection(SelectionCell, 0, 0)
	set.UpdateSelection(0, 3, nil)

	if set.Mask(0, 1, 10)&SelectionBitPrimary == 0 {
		t.Fatal("expected primary selection bit set within range")
	}
	if set.Mask(1, 1, 10)&SelectionBitPrimary != 0 {
		t.Fatal("expected no selection bit outside range")
	}
}

func TestSelectionsSet_ClearSelection(t *testing.T) {
	var set SelectionsSet
	set.StartSelection(SelectionCell, 0, 0)
	set.ClearSelection()
	if set.Primary() != nil {
		t.Fatal("expected nil primary selection after clear")
	}
}

func TestScreen_SelectionWrappers(t *testing.T) {
	s := New(WithSize(3, 10))
	s.WriteString("hello\r\nworld")

	s.StartSelection(SelectionCell, 0, 0)
	s.UpdateSelection(1, 4)

	if got, want := s.SelectedText(), "hello\nworld"; got != want {
		t.Fatalf("SelectedText() = %q, want %q", got, want)
	}

	if s.SelectionMask(0, 0)&SelectionBitPrimary == 0 {
		t.Fatal("expected primary selection bit set at (0,0)")
	}

	s.ClearSelection()
	if s.SelectionMask(0, 0) != 0 {
		t.Fatal("expected no selection bits after ClearSelection")
	}
}

func TestScreen_SetURLHighlight(t *testing.T) {
	s := New(WithSize(3, 20))
	s.WriteString("see https://example.com now")

	s.SetURLHighlight(0, 4, 22)
	if s.SelectionMask(0, 10)&SelectionBitURL == 0 {
		t.Fatal("expected URL highlight bit set within range")
	}

	s.SetURLHighlight(0, 5, 4)
	if s.SelectionMask(0, 10)&SelectionBitURL != 0 {
		t.Fatal("expected URL highlight cleared")
	}
}

func TestScreen_DetectURLAtCursor(t *testing.T) {
	s := New(WithSize(3, 40))
	s.WriteString("go to https://example.com/path please")

	url, _, _, ok := s.DetectURLAtCursor(0, 10)
	if !ok || url != "https://example.com/path" {
		t.Fatalf("DetectURLAtCursor = %q, %v", url, ok)
	}
}
