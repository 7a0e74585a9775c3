package screen

import "testing"

func TestRuneWidth(t *testing.T) {
	tests := []struct {
		r        rune
		expected int
	}{
		{'A', 1},
		{'a', 1},
		{'1', 1},
		{' ', 1},
		{'中', 2},
		{'日', 2},
		{'本', 2},
		{'한', 2},
		{'글', 2},
	}

	for _, tt := range tests {
		if got := runeWidth(tt.r); got != tt.expected {
			t.Errorf("runeWidth(%q) = %d, want %d", tt.r, got, tt.expected)
		}
	}
}

func TestIsCombining(t *testing.T) {
	if !isCombining(0xFE0F) {
		t.Error("variation selector-16 should be combining")
	}
	if !isCombining(0x0301) {
		t.Error("combining acute accent should be combining")
	}
	if isCombining('A') {
		t.Error("'A' should not be combining")
	}
}

func TestIsIgnoredControl(t *testing.T) {
	if !isIgnoredControl(0x200B) {
		t.Error("zero-width space should be ignored")
	}
	if isIgnoredControl('x') {
		t.Error("'x' should not be ignored")
	}
}

func TestStringWidth(t *testing.T) {
	if got := StringWidth("abc"); got != 3 {
		t.Errorf("StringWidth(abc) = %d, want 3", got)
	}
	if got := StringWidth("中文"); got != 4 {
		t.Errorf("StringWidth(中文) = %d, want 4", got)
	}
}
