package screen

import "testing"

func TestDetectURLAt_Bare(t *testing.T) {
	s := New(WithSize(3, 60))
	s.WriteString("see https://example.com/path for details")

	url, start, end, ok := DetectURLAt(s.active, 0, 10)
	if !ok {
		t.Fatal("expected a URL to be detected")
	}
	if url != "https://example.com/path" {
		t.Fatalf("url = %q", url)
	}
	if start != 4 || end != 27 {
		t.Fatalf("extent = [%d,%d]", start, end)
	}
}

func TestDetectURLAt_TrailingPunctuationStripped(t *testing.T) {
	s := New(WithSize(3, 60))
	s.WriteString("visit http://example.com.")

	url, _, _, ok := DetectURLAt(s.active, 0, 8)
	if !ok {
		t.Fatal("expected a URL to be detected")
	}
	if url != "http://example.com" {
		t.Fatalf("url = %q, want trailing period stripped", url)
	}
}

func TestDetectURLAt_BracketSentinel(t *testing.T) {
	s := New(WithSize(3, 60))
	s.WriteString("(https://example.com/x)")

	url, start, _, ok := DetectURLAt(s.active, 0, 2)
	if !ok {
		t.Fatal("expected a URL to be detected")
	}
	if url != "https://example.com/x" {
		t.Fatalf("url = %q", url)
	}
	if start != 1 {
		t.Fatalf("start = %d, want 1 (after open paren)", start)
	}
}

func TestDetectURLAt_NoSchemeNoMatch(t *testing.T) {
	s := New(WithSize(3, 60))
	s.WriteString("just some words")

	_, _, _, ok := DetectURLAt(s.active, 0, 5)
	if ok {
		t.Fatal("expected no URL detected without a recognized scheme")
	}
}

func TestMarkHyperlinkExtent(t *testing.T) {
	lb := NewLineBuffer(2, 10)
	line := lb.Row(0)
	for i := 0; i < 5; i++ {
		line.Cells[i].Char = 'x'
		line.Cells[i].HyperlinkID = 7
	}

	extents := MarkHyperlinkExtent(lb, 7)
	if len(extents) != 1 {
		t.Fatalf("extents = %v, want 1 entry", extents)
	}
	if extents[0].Row != 0 || extents[0].Start != 0 || extents[0].End != 4 {
		t.Fatalf("extent = %+v, want {0,0,4}", extents[0])
	}
}

func TestMarkHyperlinkExtent_NoMatch(t *testing.T) {
	lb := NewLineBuffer(2, 10)
	if extents := MarkHyperlinkExtent(lb, 99); len(extents) != 0 {
		t.Fatalf("extents = %v, want none", extents)
	}
}

type recordingURLProvider struct {
	opened []string
}

func (p *recordingURLProvider) OnOpenURL(uri string) { p.opened = append(p.opened, uri) }

func TestOpenURL(t *testing.T) {
	p := &recordingURLProvider{}
	OpenURL(p, "https://example.com")
	if len(p.opened) != 1 || p.opened[0] != "https://example.com" {
		t.Fatalf("opened = %v", p.opened)
	}
}

func TestOpenURL_NilProvider(t *testing.T) {
	OpenURL(nil, "https://example.com")
}
