package screen

// Reflow rewraps source — a sequence of fixed-width rows linked into
// logical lines by their Wrapped flag — into rows of newCols width,
// preserving each logical line's content and remapping any cursor
// trackers given (by absolute index into source) to their new
// position. It returns the rewrapped rows plus the content-lines-before
// and content-lines-after counts, which let a caller detect whether the
// cursor was sitting beyond all real content (and should therefore be
// clamped to the end of the reflowed content rather than carried
// verbatim).
//
// A logical line is a maximal run of rows whose Wrapped chain links
// them, except that a row tagged PromptKindPromptStart always starts a
// new logical line even if the previous row's Wrapped flag says
// otherwise — the shell is expected to redraw its own prompt, so
// rewrap must not fuse a stale wrapped continuation onto it.
func Reflow(source []Line, newCols int, trackers []*Position) (dest []Line, contentLinesBefore, contentLinesAfter int) {
	if newCols <= 0 {
		return nil, 0, 0
	}

	type trackerTarget struct {
		tracker  *Position
		absIndex int // absolute index into the logical line currently being written
	}

	oldCols := 0
	for _, l := range source {
		if len(l.Cells) > oldCols {
			oldCols = len(l.Cells)
		}
	}

	for _, l := range source {
		if l.HasContent() {
			contentLinesBefore++
		}
	}

	// Map each tracker's absolute source row to (logical line index,
	// position within the row).
	type pendingTracker struct {
		logicalLine int
		rowOffset   int // row offset within the logical line
		col         int
	}
	trackerInfo := make([]pendingTracker, len(trackers))
	for i := range trackerInfo {
		trackerInfo[i].logicalLine = -1
	}

	var logicalLineStart []int // source row index where each logical line begins
	start := 0
	for i := range source {
		breakBefore := i > 0 && (!source[i-1].Attrs.Wrapped || source[i].Attrs.PromptKind == PromptKindPromptStart)
		if i > 0 && breakBefore {
			logicalLineStart = append(logicalLineStart, start)
			start = i
		}
	}
	logicalLineStart = append(logicalLineStart, start)

	for li, lineStart := range logicalLineStart {
		lineEnd := len(source)
		if li+1 < len(logicalLineStart) {
			lineEnd = logicalLineStart[li+1]
		}
		for i, tr := range trackers {
			if tr == nil || trackerInfo[i].logicalLine >= 0 {
				continue
			}
			if tr.Row >= lineStart && tr.Row < lineEnd {
				trackerInfo[i] = pendingTracker{logicalLine: li, rowOffset: tr.Row - lineStart, col: tr.Col}
			}
		}
	}

	for li, lineStart := range logicalLineStart {
		lineEnd := len(source)
		if li+1 < len(logicalLineStart) {
			lineEnd = logicalLineStart[li+1]
		}
		rows := source[lineStart:lineEnd]

		// Flatten the logical line's cells and find its content length.
		flat := make([]Cell, 0, len(rows)*oldCols)
		for _, r := range rows {
			row := make([]Cell, oldCols)
			copy(row, r.Cells)
			for j := len(r.Cells); j < oldCols; j++ {
				row[j] = NewCell()
			}
			flat = append(flat, row...)
		}
		contentLen := 0
		for i := len(flat) - 1; i >= 0; i-- {
			if !flat[i].IsEmpty() {
				contentLen = i + 1
				break
			}
		}

		promptKind := PromptKindNone
		if len(rows) > 0 {
			promptKind = rows[0].Attrs.PromptKind
		}

		destRowsNeeded := 1
		if contentLen > 0 {
			destRowsNeeded = (contentLen + newCols - 1) / newCols
		}

		firstDestRow := len(dest)
		for r := 0; r < destRowsNeeded; r++ {
			dest = append(dest, NewLine(newCols))
		}
		for i := 0; i < contentLen; i++ {
			r := i / newCols
			c := i % newCols
			dest[firstDestRow+r].Cells[c] = flat[i]
		}
		for r := 0; r < destRowsNeeded; r++ {
			dest[firstDestRow+r].Attrs.Wrapped = r < destRowsNeeded-1
		}
		dest[firstDestRow].Attrs.PromptKind = promptKind

		for i, ti := range trackerInfo {
			if ti.logicalLine != li {
				continue
			}
			absIndex := ti.rowOffset*oldCols + ti.col
			if absIndex < 0 {
				absIndex = 0
			}
			maxIndex := destRowsNeeded*newCols - 1
			if absIndex > maxIndex {
				absIndex = maxIndex
			}
			destRow := firstDestRow + absIndex/newCols
			destCol := absIndex % newCols
			trackers[i].Row = destRow
			trackers[i].Col = destCol
		}
	}

	for _, l := range dest {
		if l.HasContent() {
			contentLinesAfter++
		}
	}

	return dest, contentLinesBefore, contentLinesAfter
}

// RewrapLineBuffer rewraps the combined history+live rows of lb into
// newRows x newCols, pushing any overflow above newRows into
// newHistory (oldest first) the way a resize reallocates the main line
// buffer with a history sink (spec 4.1). Cursor trackers are positions
// expressed as an absolute index into the combined (history ++ live)
// row sequence; on return they hold their rewrapped absolute position
// in the same numbering.
func RewrapLineBuffer(history []Line, live []Line, newRows, newCols int, trackers []*Position) (newHistory []Line, newLive []Line, contentLinesBefore, contentLinesAfter int) {
	combined := make([]Line, 0, len(history)+len(live))
	combined = append(combined, history...)
	combined = append(combined, live...)

	rewrapped, before, after := Reflow(combined, newCols, trackers)

	if len(rewrapped) <= newRows {
		pad := newRows - len(rewrapped)
		newLive = make([]Line, newRows)
		for i := 0; i < pad; i++ {
			newLive[i] = NewLine(newCols)
		}
		copy(newLive[pad:], rewrapped)
		for _, tr := range trackers {
			if tr != nil {
				tr.Row += pad
			}
		}
		return nil, newLive, before, after
	}

	overflow := len(rewrapped) - newRows
	newHistory = rewrapped[:overflow]
	newLive = rewrapped[overflow:]
	for _, tr := range trackers {
		if tr != nil {
			tr.Row -= overflow
		}
	}
	return newHistory, newLive, before, after
}
