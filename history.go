package screen

// HistoryBuffer is the default in-memory ScrollbackProvider: a bounded
// ring that evicts the oldest line once MaxLines is exceeded. Hosts
// that want disk-backed or paged scrollback (spec 4.3's "pager history"
// is treated as an opaque byte stream owned by the host) supply their
// own ScrollbackProvider instead; HistoryBuffer is what Screen uses
// when none is configured.
type HistoryBuffer struct {
	lines   []Line
	maxLine int
}

// NewHistoryBuffer creates an empty history with the given capacity. A
// non-positive capacity disables scrollback (equivalent to NoopScrollback).
func NewHistoryBuffer(maxLines int) *HistoryBuffer {
	if maxLines < 0 {
		maxLines = 0
	}
	return &HistoryBuffer{maxLine: maxLines}
}

// Push appends line, evicting the oldest line if at capacity.
func (h *HistoryBuffer) Push(line Line) {
	if h.maxLine <= 0 {
		return
	}
	cp := line
	cp.Cells = append([]Cell(nil), line.Cells...)
	h.lines = append(h.lines, cp)
	if len(h.lines) > h.maxLine {
		h.lines = h.lines[len(h.lines)-h.maxLine:]
	}
}

// Len returns the number of stored lines.
func (h *HistoryBuffer) Len() int { return len(h.lines) }

// Line returns the line at index, 0 being the oldest, or a zero Line if
// out of range.
func (h *HistoryBuffer) Line(index int) Line {
	if index < 0 || index >= len(h.lines) {
		return Line{}
	}
	return h.lines[index]
}

// Clear removes all stored lines.
func (h *HistoryBuffer) Clear() { h.lines = nil }

// SetMaxLines sets the maximum capacity, trimming the oldest lines if
// the history is currently larger.
func (h *HistoryBuffer) SetMaxLines(max int) {
	if max < 0 {
		max = 0
	}
	h.maxLine = max
	if max == 0 {
		h.lines = nil
		return
	}
	if len(h.lines) > max {
		h.lines = h.lines[len(h.lines)-max:]
	}
}

// MaxLines returns the current maximum capacity.
func (h *HistoryBuffer) MaxLines() int { return h.maxLine }

// PopLineToTop removes and returns the newest stored line, for callers
// that reverse-index scrollback back onto the live grid (DECSTBM
// reverse-index at the top margin, spec 4.1). Returns false if empty.
func (h *HistoryBuffer) PopLineToTop() (Line, bool) {
	if len(h.lines) == 0 {
		return Line{}, false
	}
	last := h.lines[len(h.lines)-1]
	h.lines = h.lines[:len(h.lines)-1]
	return last, true
}

var _ ScrollbackProvider = (*HistoryBuffer)(nil)
var _ ScrollbackProvider = (*NoopScrollback)(nil)

// PromptKind-tagged navigation over recorded prompt marks.

// PromptMark records where a semantic prompt boundary (OSC 133) landed
// in the scrollback+grid's combined row numbering.
type PromptMark struct {
	// Kind distinguishes prompt-start, command-start and output-start
	// marks; OutputStart doubles as "command executed", and a
	// command-finished mark is recorded as PromptKindNone.
	Kind PromptKind
	// Row is the absolute row: the live grid's row plus the scrollback
	// length at the time of recording, so 0 is the oldest scrollback
	// line and rows only grow toward the bottom of the live grid.
	Row int
	// ExitCode is valid only for marks recorded at command completion;
	// -1 otherwise.
	ExitCode int
}

// PromptMarkTracker accumulates PromptMark values and answers the
// prompt-relative navigation queries spec 4's supplemented shell
// integration surface needs: jump to next/previous prompt, or select
// the last command's output span.
type PromptMarkTracker struct {
	marks []PromptMark
}

// NewPromptMarkTracker returns an empty tracker.
func NewPromptMarkTracker() *PromptMarkTracker {
	return &PromptMarkTracker{}
}

// Record appends a mark.
func (t *PromptMarkTracker) Record(kind PromptKind, row, exitCode int) {
	t.marks = append(t.marks, PromptMark{Kind: kind, Row: row, ExitCode: exitCode})
}

// All returns a copy of every recorded mark.
func (t *PromptMarkTracker) All() []PromptMark {
	out := make([]PromptMark, len(t.marks))
	copy(out, t.marks)
	return out
}

// Len returns the number of recorded marks.
func (t *PromptMarkTracker) Len() int { return len(t.marks) }

// Clear discards every recorded mark, e.g. on RIS (full reset) or
// ClearScrollback.
func (t *PromptMarkTracker) Clear() { t.marks = nil }

// NextPromptRow returns the row of the first PromptStart mark strictly
// after fromRow, or (0, false) if none exists.
func (t *PromptMarkTracker) NextPromptRow(fromRow int) (int, bool) {
	for _, m := range t.marks {
		if m.Kind == PromptKindPromptStart && m.Row > fromRow {
			return m.Row, true
		}
	}
	return 0, false
}

// PrevPromptRow returns the row of the last PromptStart mark strictly
// before fromRow, or (0, false) if none exists.
func (t *PromptMarkTracker) PrevPromptRow(fromRow int) (int, bool) {
	found := false
	var best int
	for _, m := range t.marks {
		if m.Kind == PromptKindPromptStart && m.Row < fromRow {
			if !found || m.Row > best {
				best = m.Row
				found = true
			}
		}
	}
	return best, found
}

// LastCommandOutput returns the [start, end) row range of the most
// recently completed command's output: from the last OutputStart mark
// up to (but not including) the next PromptStart mark after it, or up
// to endRow if the shell never emitted a matching follow-up mark.
func (t *PromptMarkTracker) LastCommandOutput(endRow int) (start, end int, ok bool) {
	outputIdx := -1
	for i := len(t.marks) - 1; i >= 0; i-- {
		if t.marks[i].Kind == PromptKindOutputStart {
			outputIdx = i
			break
		}
	}
	if outputIdx < 0 {
		return 0, 0, false
	}
	start = t.marks[outputIdx].Row
	end = endRow
	for i := outputIdx + 1; i < len(t.marks); i++ {
		if t.marks[i].Kind == PromptKindPromptStart {
			end = t.marks[i].Row
			break
		}
	}
	return start, end, true
}
