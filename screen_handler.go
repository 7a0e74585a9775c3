package screen

import (
	"encoding/base64"
	"fmt"
	"image/color"

	"github.com/danielgatis/go-ansicode"
)

// This file implements ansicode.Handler for *Screen: every callback the
// VT decoder invokes while parsing a byte stream. Screen itself never
// parses escape sequences — ansicode.Decoder does that and calls back
// into these methods, the same division of labor the source's Terminal
// type uses with its own decoder.

// writeResponseString sends a fully formatted escape-sequence reply
// (DSR/DA/OSC query answers, Kitty graphics responses) to the host's
// ChildWriter, matching the source's write_response_string.
func (s *Screen) writeResponseString(resp string) {
	if resp == "" {
		return
	}
	s.callbacks.ChildWriter.WriteEscapeCodeToChild([]byte(resp))
}

// ApplicationCommandReceived dispatches an APC sequence: a Kitty
// graphics command (identified by a leading 'G') goes to the graphics
// manager, everything else to the host's APC provider.
func (s *Screen) ApplicationCommandReceived(data []byte) {
	s.mu.Lock()
	kittyOn := s.kittyEnabled
	s.mu.Unlock()

	if kittyOn && len(data) > 0 && data[0] == 'G' {
		cmd, parseErr := ParseGraphicsCommand(data[1:])
		if parseErr != nil {
			s.writeResponseString(parseErr.Format())
			return
		}
		resp := s.graphics.Dispatch(cmd)
		if resp != nil {
			s.writeResponseString(resp.Format())
		}
		return
	}

	s.mu.RLock()
	apc := s.callbacks.APC
	s.mu.RUnlock()
	apc.Receive(data)
}

func (s *Screen) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor.Col > 0 {
		s.cursor.Col--
	}
	s.cursor.PendingWrap = false
}

func (s *Screen) Bell() {
	s.mu.RLock()
	bell := s.callbacks.Bell
	s.mu.RUnlock()
	bell.Ring()
}

func (s *Screen) CarriageReturn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Col = 0
	s.cursor.PendingWrap = false
}

func (s *Screen) ClearLine(mode ansicode.LineClearMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch mode {
	case ansicode.LineClearModeRight:
		s.active.ClearLineRange(s.cursor.Row, s.cursor.Col, s.cols)
	case ansicode.LineClearModeLeft:
		s.active.ClearLineRange(s.cursor.Row, 0, s.cursor.Col+1)
	case ansicode.LineClearModeAll:
		s.active.ClearLine(s.cursor.Row)
	}
}

func (s *Screen) ClearScreen(mode ansicode.ClearMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch mode {
	case ansicode.ClearModeBelow:
		s.active.ClearLineRange(s.cursor.Row, s.cursor.Col, s.cols)
		for row := s.cursor.Row + 1; row < s.rows; row++ {
			s.active.ClearLine(row)
		}
	case ansicode.ClearModeAbove:
		for row := 0; row < s.cursor.Row; row++ {
			s.active.ClearLine(row)
		}
		s.active.ClearLineRange(s.cursor.Row, 0, s.cursor.Col+1)
	case ansicode.ClearModeAll:
		s.active.ClearAll()
	case ansicode.ClearModeSaved:
		if s.active == s.primary {
			s.primary.ClearScrollback()
		}
	}
}

func (s *Screen) ClearTabs(mode ansicode.TabulationClearMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch mode {
	case ansicode.TabulationClearModeCurrent:
		s.active.ClearTabStop(s.cursor.Col)
	case ansicode.TabulationClearModeAll:
		s.active.ClearAllTabStops()
	}
}

func (s *Screen) ClipboardLoad(clipboard byte, terminator string) {
	s.mu.RLock()
	cb := s.callbacks.Clipboard
	s.mu.RUnlock()
	if cb == nil || !cb.Control(clipboard, false) {
		return
	}
	content := cb.Read(clipboard)
	if content == "" {
		return
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	s.writeResponseString(fmt.Sprintf("\x1b]52;%c;%s%s", clipboard, encoded, terminator))
}

func (s *Screen) ClipboardStore(clipboard byte, data []byte) {
	s.mu.RLock()
	cb := s.callbacks.Clipboard
	s.mu.RUnlock()
	if cb == nil || !cb.Control(clipboard, true) {
		return
	}
	cb.Write(clipboard, data)
}

func (s *Screen) ConfigureCharset(index ansicode.CharsetIndex, charset ansicode.Charset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := CharsetIndex(index)
	cs := Charset(charset)
	if idx >= CharsetIndexG0 && idx <= CharsetIndexG3 {
		s.charsets[idx] = cs
	}
}

func (s *Screen) Decaln() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active.FillWithE()
}

func (s *Screen) DeleteChars(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active.DeleteChars(s.cursor.Row, s.cursor.Col, n)
}

func (s *Screen) DeleteLines(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor.Row >= s.scrollTop && s.cursor.Row < s.scrollBottom {
		s.active.DeleteLines(s.cursor.Row, n, s.scrollBottom)
	}
}

func (s *Screen) DeviceStatus(n int) {
	s.mu.RLock()
	row, col := s.cursor.Row, s.cursor.Col
	s.mu.RUnlock()

	switch n {
	case 5:
		s.writeResponseString("\x1b[0n")
	case 6:
		s.writeResponseString(fmt.Sprintf("\x1b[%d;%dR", row+1, col+1))
	}
}

func (s *Screen) EraseChars(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n && s.cursor.Col+i < s.cols; i++ {
		cell := s.active.Cell(s.cursor.Row, s.cursor.Col+i)
		if cell != nil {
			cell.Reset()
			s.active.MarkDirty(s.cursor.Row, s.cursor.Col+i)
		}
	}
}

func (s *Screen) Goto(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row = s.effectiveRow(row)
	s.cursor.Row = clamp(row, 0, s.rows-1)
	s.cursor.Col = clamp(col, 0, s.cols-1)
	s.cursor.PendingWrap = false
}

func (s *Screen) GotoCol(col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Col = clamp(col, 0, s.cols-1)
	s.cursor.PendingWrap = false
}

func (s *Screen) GotoLine(row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row = s.effectiveRow(row)
	s.cursor.Row = clamp(row, 0, s.rows-1)
	s.cursor.PendingWrap = false
}

func (s *Screen) HorizontalTabSet() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active.SetTabStop(s.cursor.Col)
}

func (s *Screen) IdentifyTerminal(b byte) {
	s.writeResponseString("\x1b[?62;c")
}

// Input writes one decoded rune at the cursor, the hot path of VT
// rendering: charset translation, width computation (including
// variation-selector presentation overrides), combining-mark
// attachment, deferred ("pending") autowrap, insert-mode shifting, and
// wide-character spacer placement.
func (s *Screen) Input(r rune) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeCharset >= CharsetIndexG0 && s.activeCharset <= CharsetIndexG3 {
		r = translateCharset(s.charsets[s.activeCharset], r)
	}

	if isIgnoredControl(r) {
		return
	}

	if isVariationSelector(r) {
		s.adjustEmojiPresentationLocked(r)
		return
	}

	width := wcwidthStd(r)

	if isCombining(r) {
		s.attachMarkLocked(r)
		return
	}

	if isRegionalIndicator(r) && s.coalesceRegionalIndicatorLocked(r) {
		return
	}

	if width == 0 {
		return
	}

	if s.cursor.PendingWrap {
		s.wrapLocked()
	}

	if s.cursor.Col+width > s.cols {
		if s.autoResize {
			s.active.GrowCols(s.cursor.Row, s.cursor.Col+width)
			s.cols = s.active.Cols()
		} else if s.modes.Has(ModeLineWrap) {
			s.wrapLocked()
		} else if width == 2 {
			return
		} else {
			s.cursor.Col = s.cols - 1
		}
	}

	if s.modes.Has(ModeInsert) {
		s.active.InsertBlanks(s.cursor.Row, s.cursor.Col, width)
	}

	if s.cursor.Row < 0 || s.cursor.Row >= s.rows || s.cursor.Col < 0 || s.cursor.Col >= s.cols {
		return
	}

	cell := s.active.Cell(s.cursor.Row, s.cursor.Col)
	if cell != nil {
		*cell = s.template.Apply(r, uint8(width))
		cell.HyperlinkID = s.currentHyperlink
		if width == 2 {
			cell.SetFlag(CellFlagWideChar)
		}
		cell.MarkDirty()
		s.active.MarkDirty(s.cursor.Row, s.cursor.Col)
	}

	s.cursor.Col++

	if width == 2 && s.cursor.Col < s.cols {
		spacer := s.active.Cell(s.cursor.Row, s.cursor.Col)
		if spacer != nil {
			spacer.Reset()
			spacer.Width = 0
			spacer.Fg = s.template.Fg
			spacer.Bg = s.template.Bg
			spacer.SetFlag(CellFlagWideCharSpacer)
			s.active.MarkDirty(s.cursor.Row, s.cursor.Col)
		}
		s.cursor.Col++
	}

	if s.cursor.Col >= s.cols {
		if s.autoResize {
			// already grown above; nothing further to do
		} else if s.modes.Has(ModeLineWrap) {
			s.cursor.Col = s.cols - 1
			s.cursor.PendingWrap = true
		} else {
			s.cursor.Col = s.cols - 1
		}
	}
}

// attachMarkLocked appends a combining mark to the cell the cursor last
// wrote, or drops it if the cursor hasn't advanced past column 0 yet.
// Caller holds s.mu.
func (s *Screen) attachMarkLocked(r rune) {
	col := s.cursor.Col - 1
	if col < 0 {
		return
	}
	cell := s.active.Cell(s.cursor.Row, col)
	if cell == nil {
		return
	}
	if cell.IsWideSpacer() && col > 0 {
		col--
		cell = s.active.Cell(s.cursor.Row, col)
		if cell == nil {
			return
		}
	}
	cell.AddMark(r)
	s.active.MarkDirty(s.cursor.Row, col)
}

// adjustEmojiPresentationLocked handles the VS15/VS16 presentation
// selectors: VS16 (emoji presentation) upgrades the preceding narrow
// base cell to width 2, reserving a spacer column after it the same
// way a naturally-wide rune does; VS15 (text presentation) reverses
// that, freeing the spacer column. The selector itself is still kept
// as a combining mark on the base cell so round-tripping the cell back
// to text preserves it. Caller holds s.mu.
func (s *Screen) adjustEmojiPresentationLocked(r rune) {
	col := s.cursor.Col - 1
	if col < 0 {
		return
	}
	cell := s.active.Cell(s.cursor.Row, col)
	if cell == nil {
		return
	}
	if cell.IsWideSpacer() && col > 0 {
		col--
		cell = s.active.Cell(s.cursor.Row, col)
		if cell == nil {
			return
		}
	}
	if cell.Char == 0 {
		return
	}

	switch r {
	case runeVS16:
		if cell.Width != 2 {
			s.promoteToWideLocked(col)
		}
	case runeVS15:
		if cell.Width == 2 {
			s.demoteFromWideLocked(col)
		}
	}
	cell.AddMark(r)
	s.active.MarkDirty(s.cursor.Row, col)
}

// promoteToWideLocked widens the cell at col to width 2, writing a
// spacer into the next column and shifting the cursor past it if the
// cursor had been sitting exactly there (the ordinary case: VS16
// arrives immediately after its base rune, before anything else was
// drawn into that column). Overflow at the row's right edge is handled
// the same way a naturally-wide rune's write is. Caller holds s.mu.
func (s *Screen) promoteToWideLocked(col int) {
	cell := s.active.Cell(s.cursor.Row, col)
	if cell == nil {
		return
	}
	cell.Width = 2
	cell.SetFlag(CellFlagWideChar)
	s.active.MarkDirty(s.cursor.Row, col)

	spacerCol := col + 1
	if spacerCol >= s.cols {
		if s.modes.Has(ModeLineWrap) {
			s.cursor.Col = s.cols - 1
			s.cursor.PendingWrap = true
		}
		return
	}
	spacer := s.active.Cell(s.cursor.Row, spacerCol)
	if spacer != nil {
		spacer.Reset()
		spacer.Width = 0
		spacer.Fg = s.template.Fg
		spacer.Bg = s.template.Bg
		spacer.SetFlag(CellFlagWideCharSpacer)
		s.active.MarkDirty(s.cursor.Row, spacerCol)
	}
	if s.cursor.Col == spacerCol {
		s.cursor.Col++
		if s.cursor.Col >= s.cols {
			s.cursor.Col = s.cols - 1
			if s.modes.Has(ModeLineWrap) {
				s.cursor.PendingWrap = true
			}
		}
	}
}

// demoteFromWideLocked narrows the cell at col back to width 1,
// clearing its spacer and pulling the cursor back one column if it had
// been sitting on that spacer. Caller holds s.mu.
func (s *Screen) demoteFromWideLocked(col int) {
	cell := s.active.Cell(s.cursor.Row, col)
	if cell == nil {
		return
	}
	cell.Width = 1
	cell.ClearFlag(CellFlagWideChar)
	s.active.MarkDirty(s.cursor.Row, col)

	spacerCol := col + 1
	if spacerCol >= s.cols {
		return
	}
	spacer := s.active.Cell(s.cursor.Row, spacerCol)
	if spacer != nil && spacer.IsWideSpacer() {
		spacer.Reset()
		s.active.MarkDirty(s.cursor.Row, spacerCol)
	}
	if s.cursor.Col == spacerCol+1 {
		s.cursor.Col--
	}
}

// coalesceRegionalIndicatorLocked implements flag-pair coalescing: if
// the cell two columns back is an unpaired regional indicator (a flag
// codepoint with no marks yet), r completes the pair and is attached to
// it as a combining mark instead of occupying its own wide cell, so
// "regional indicator, regional indicator" renders as one width-2 flag
// glyph rather than two. Returns true if r was consumed this way.
// Caller holds s.mu.
func (s *Screen) coalesceRegionalIndicatorLocked(r rune) bool {
	col := s.cursor.Col - 2
	if col < 0 {
		return false
	}
	cell := s.active.Cell(s.cursor.Row, col)
	if cell == nil || !isRegionalIndicator(cell.Char) || cell.NumMarks() != 0 {
		return false
	}
	cell.AddMark(r)
	s.active.MarkDirty(s.cursor.Row, col)
	return true
}

// wrapLocked marks the current row as wrapped and advances to column 0
// of the next row, scrolling if the new row falls outside the margin.
// Caller holds s.mu.
func (s *Screen) wrapLocked() {
	s.active.SetWrapped(s.cursor.Row, true)
	s.cursor.Col = 0
	s.cursor.Row++
	s.cursor.PendingWrap = false
	s.scrollIfNeeded()
}

func (s *Screen) InsertBlank(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active.InsertBlanks(s.cursor.Row, s.cursor.Col, n)
}

func (s *Screen) InsertBlankLines(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor.Row >= s.scrollTop && s.cursor.Row < s.scrollBottom {
		s.active.InsertLines(s.cursor.Row, n, s.scrollBottom)
	}
}

func (s *Screen) LineFeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active.SetWrapped(s.cursor.Row, false)
	if s.modes.Has(ModeLineFeedNewLine) {
		s.cursor.Col = 0
	}
	s.cursor.Row++
	s.cursor.PendingWrap = false
	s.scrollIfNeeded()
}

func (s *Screen) MoveBackward(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Col = clamp(s.cursor.Col-n, 0, s.cols-1)
	s.cursor.PendingWrap = false
}

func (s *Screen) MoveBackwardTabs(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.cursor.Col = s.active.PrevTabStop(s.cursor.Col)
	}
}

func (s *Screen) MoveDown(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Row = clamp(s.cursor.Row+n, 0, s.rows-1)
}

func (s *Screen) MoveDownCr(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Row = clamp(s.cursor.Row+n, 0, s.rows-1)
	s.cursor.Col = 0
	s.cursor.PendingWrap = false
}

func (s *Screen) MoveForward(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Col = clamp(s.cursor.Col+n, 0, s.cols-1)
	s.cursor.PendingWrap = false
}

func (s *Screen) MoveForwardTabs(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.cursor.Col = s.active.NextTabStop(s.cursor.Col)
	}
}

func (s *Screen) MoveUp(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Row = clamp(s.cursor.Row-n, 0, s.rows-1)
}

func (s *Screen) MoveUpCr(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Row = clamp(s.cursor.Row-n, 0, s.rows-1)
	s.cursor.Col = 0
	s.cursor.PendingWrap = false
}

func (s *Screen) PopKeyboardMode(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyboardModes.Pop(n)
}

func (s *Screen) PopTitle() {
	s.mu.Lock()
	if len(s.titleStack) > 0 {
		s.title = s.titleStack[len(s.titleStack)-1]
		s.titleStack = s.titleStack[:len(s.titleStack)-1]
	}
	cb := s.callbacks.Title
	s.mu.Unlock()
	cb.PopTitle()
}

func (s *Screen) PrivacyMessageReceived(data []byte) {
	s.mu.RLock()
	pm := s.callbacks.PM
	s.mu.RUnlock()
	pm.Receive(data)
}

func (s *Screen) PushKeyboardMode(mode ansicode.KeyboardMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyboardModes.Push(KeyboardMode(mode))
}

func (s *Screen) PushTitle() {
	s.mu.Lock()
	s.titleStack = append(s.titleStack, s.title)
	cb := s.callbacks.Title
	s.mu.Unlock()
	cb.PushTitle()
}

func (s *Screen) ReportKeyboardMode() {
	s.mu.RLock()
	mode := s.keyboardModes.Top()
	s.mu.RUnlock()
	s.writeResponseString(fmt.Sprintf("\x1b[?%du", mode))
}

func (s *Screen) ReportModifyOtherKeys() {
	s.mu.RLock()
	modify := s.modifyOtherKeys
	s.mu.RUnlock()
	s.writeResponseString(fmt.Sprintf("\x1b[>4;%dm", modify))
}

func (s *Screen) ResetColor(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= 0 && i < 256 {
		s.colorProfile.Palette[i] = DefaultPalette[i]
	}
	cb := s.callbacks.ColorTable
	s.mu.Unlock()
	cb.ResetColorTableColor(i)
	s.mu.Lock()
}

func (s *Screen) ResetState() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active.ClearAll()
	s.cursor.Row, s.cursor.Col = 0, 0
	s.cursor.Visible = true
	s.cursor.Style = CursorStyleBlinkingBlock
	s.cursor.PendingWrap = false

	s.template = NewCellTemplate()
	s.scrollTop = 0
	s.scrollBottom = s.rows
	s.modes = NewDefaultModes()

	s.charsets = [4]Charset{}
	s.activeCharset = CharsetIndexG0

	s.colorProfile = DefaultColorProfile()
	s.keyboardModes = KeyboardModeStack{}
	s.currentHyperlink = 0
	s.promptMarks.Clear()
}

func (s *Screen) RestoreCursorPosition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restoreCursorPositionLocked()
}

// restoreCursorPositionLocked restores the saved cursor; caller holds s.mu.
func (s *Screen) restoreCursorPositionLocked() {
	if s.savedCursor == nil {
		return
	}
	s.cursor.Row = s.savedCursor.Row
	s.cursor.Col = s.savedCursor.Col
	s.cursor.PendingWrap = false
	s.template = s.savedCursor.Attrs
	if s.savedCursor.OriginMode {
		s.modes = s.modes.Set(ModeOrigin)
	} else {
		s.modes = s.modes.Clear(ModeOrigin)
	}
	s.activeCharset = s.savedCursor.GLIndex
	s.charsets = s.savedCursor.Charsets
}

func (s *Screen) ReverseIndex() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor.Row == s.scrollTop {
		s.active.ScrollDown(s.scrollTop, s.scrollBottom, 1)
	} else if s.cursor.Row > 0 {
		s.cursor.Row--
	}
}

func (s *Screen) SaveCursorPosition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCursorPositionLocked()
}

// saveCursorPositionLocked snapshots the cursor; caller holds s.mu.
func (s *Screen) saveCursorPositionLocked() {
	s.savedCursor = &SavedCursor{
		Row: s.cursor.Row, Col: s.cursor.Col,
		Attrs:      s.template,
		OriginMode: s.modes.Has(ModeOrigin),
		GLIndex:    s.activeCharset,
		Charsets:   s.charsets,
	}
}

func (s *Screen) ScrollDown(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active.ScrollDown(s.scrollTop, s.scrollBottom, n)
}

func (s *Screen) ScrollUp(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active.ScrollUp(s.scrollTop, s.scrollBottom, n)
}

func (s *Screen) SetActiveCharset(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n >= 0 && n < 4 {
		s.activeCharset = CharsetIndex(n)
	}
}

func (s *Screen) SetColor(index int, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rgba := ResolveColor(c, true, &s.colorProfile)
	switch {
	case index >= 0 && index < 256:
		s.colorProfile.Palette[index] = rgba
	case index == NamedColorForeground:
		s.colorProfile.Foreground = rgba
	case index == NamedColorBackground:
		s.colorProfile.Background = rgba
	case index == NamedColorCursor:
		s.colorProfile.Cursor = rgba
	}
}

func (s *Screen) SetCursorStyle(style ansicode.CursorStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Style = CursorStyle(style)
}

func (s *Screen) SetDynamicColor(prefix string, index int, terminator string) {
	s.mu.RLock()
	cb := s.callbacks.DynamicColor
	profile := s.colorProfile
	s.mu.RUnlock()

	if cb != nil {
		if v := cb.QueryDynamicColor(index); v != "" {
			s.writeResponseString(fmt.Sprintf("\x1b]%s;%s%s", prefix, v, terminator))
			return
		}
	}

	var rgba = profile.Foreground
	switch {
	case index >= 0 && index < 256:
		rgba = profile.Palette[index]
	case index == NamedColorBackground:
		rgba = profile.Background
	case index == NamedColorCursor:
		rgba = profile.Cursor
	}
	s.writeResponseString(fmt.Sprintf("\x1b]%s;rgb:%02x/%02x/%02x%s", prefix, rgba.R, rgba.G, rgba.B, terminator))
}

func (s *Screen) SetHyperlink(hyperlink *ansicode.Hyperlink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hyperlink == nil {
		s.currentHyperlink = 0
		return
	}
	s.currentHyperlink = s.hyperlinks.Intern(hyperlink.ID, hyperlink.URI)
}

func (s *Screen) SetKeyboardMode(mode ansicode.KeyboardMode, behavior ansicode.KeyboardModeBehavior) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b KeyboardModeBehavior
	switch behavior {
	case ansicode.KeyboardModeBehaviorUnion:
		b = KeyboardModeBehaviorUnion
	case ansicode.KeyboardModeBehaviorDifference:
		b = KeyboardModeBehaviorDifference
	default:
		b = KeyboardModeBehaviorReplace
	}
	s.keyboardModes.Set(KeyboardMode(mode), b)
}

func (s *Screen) SetKeypadApplicationMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes = s.modes.Set(ModeKeypadApplication)
}

func (s *Screen) UnsetKeypadApplicationMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes = s.modes.Clear(ModeKeypadApplication)
}

func (s *Screen) SetMode(mode ansicode.TerminalMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setModeLocked(mode, true)
}

func (s *Screen) UnsetMode(mode ansicode.TerminalMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setModeLocked(mode, false)
}

// setModeLocked applies or clears a single terminal mode flag, along
// with whatever side effect that mode carries (cursor relocation for
// DECOM, buffer swap and cursor save/restore for 1049). DEC 2026 has no
// TerminalMode member and is handled in modes_direct.go. Caller holds
// s.mu.
func (s *Screen) setModeLocked(mode ansicode.TerminalMode, set bool) {
	var m ScreenModes

	switch mode {
	case ansicode.TerminalModeCursorKeys:
		m = ModeCursorKeys
	case ansicode.TerminalModeColumnMode:
		m = ModeColumnMode
	case ansicode.TerminalModeInsert:
		m = ModeInsert
	case ansicode.TerminalModeOrigin:
		m = ModeOrigin
		if set {
			s.cursor.Row = s.scrollTop
			s.cursor.Col = 0
		}
	case ansicode.TerminalModeLineWrap:
		m = ModeLineWrap
	case ansicode.TerminalModeBlinkingCursor:
		m = ModeBlinkingCursor
	case ansicode.TerminalModeLineFeedNewLine:
		m = ModeLineFeedNewLine
	case ansicode.TerminalModeShowCursor:
		m = ModeShowCursor
		s.cursor.Visible = set
	case ansicode.TerminalModeReportMouseClicks:
		m = ModeReportMouseClicks
	case ansicode.TerminalModeReportCellMouseMotion:
		m = ModeReportCellMouseMotion
	case ansicode.TerminalModeReportAllMouseMotion:
		m = ModeReportAllMouseMotion
	case ansicode.TerminalModeReportFocusInOut:
		m = ModeReportFocusInOut
	case ansicode.TerminalModeUTF8Mouse:
		m = ModeUTF8Mouse
	case ansicode.TerminalModeSGRMouse:
		m = ModeSGRMouse
	case ansicode.TerminalModeAlternateScroll:
		m = ModeAlternateScroll
	case ansicode.TerminalModeUrgencyHints:
		m = ModeUrgencyHints
	case ansicode.TerminalModeSwapScreenAndSetRestoreCursor:
		m = ModeSwapScreenAndSetRestoreCursor
		if set {
			s.saveCursorPositionLocked()
			s.active = s.alternate
			s.active.ClearAll()
		} else {
			s.active = s.primary
			s.restoreCursorPositionLocked()
		}
	case ansicode.TerminalModeBracketedPaste:
		m = ModeBracketedPaste
	default:
		return
	}

	if set {
		s.modes = s.modes.Set(m)
	} else {
		s.modes = s.modes.Clear(m)
	}
}

// SetTerminalCharAttribute applies one SGR attribute to the drawing
// template that Input stamps onto every subsequently written cell.
func (s *Screen) SetTerminalCharAttribute(attr ansicode.TerminalCharAttribute) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch attr.Attr {
	case ansicode.CharAttributeReset:
		s.template = NewCellTemplate()

	case ansicode.CharAttributeBold:
		s.template.SetFlag(CellFlagBold)
	case ansicode.CharAttributeDim:
		s.template.SetFlag(CellFlagDim)
	case ansicode.CharAttributeItalic:
		s.template.SetFlag(CellFlagItalic)

	case ansicode.CharAttributeUnderline:
		s.template.SetFlag(CellFlagUnderline)
		s.template.ClearFlag(CellFlagDoubleUnderline | CellFlagCurlyUnderline | CellFlagDottedUnderline | CellFlagDashedUnderline)
	case ansicode.CharAttributeDoubleUnderline:
		s.template.SetFlag(CellFlagDoubleUnderline)
		s.template.ClearFlag(CellFlagUnderline | CellFlagCurlyUnderline | CellFlagDottedUnderline | CellFlagDashedUnderline)
	case ansicode.CharAttributeCurlyUnderline:
		s.template.SetFlag(CellFlagCurlyUnderline)
		s.template.ClearFlag(CellFlagUnderline | CellFlagDoubleUnderline | CellFlagDottedUnderline | CellFlagDashedUnderline)
	case ansicode.CharAttributeDottedUnderline:
		s.template.SetFlag(CellFlagDottedUnderline)
		s.template.ClearFlag(CellFlagUnderline | CellFlagDoubleUnderline | CellFlagCurlyUnderline | CellFlagDashedUnderline)
	case ansicode.CharAttributeDashedUnderline:
		s.template.SetFlag(CellFlagDashedUnderline)
		s.template.ClearFlag(CellFlagUnderline | CellFlagDoubleUnderline | CellFlagCurlyUnderline | CellFlagDottedUnderline)

	case ansicode.CharAttributeBlinkSlow, ansicode.CharAttributeBlinkFast:
		s.template.SetFlag(CellFlagBlink)
	case ansicode.CharAttributeCancelBlink:
		s.template.ClearFlag(CellFlagBlink)

	case ansicode.CharAttributeReverse:
		s.template.SetFlag(CellFlagReverse)
	case ansicode.CharAttributeHidden:
		s.template.SetFlag(CellFlagHidden)
	case ansicode.CharAttributeStrike:
		s.template.SetFlag(CellFlagStrike)

	case ansicode.CharAttributeCancelBold:
		s.template.ClearFlag(CellFlagBold)
	case ansicode.CharAttributeCancelBoldDim:
		s.template.ClearFlag(CellFlagBold | CellFlagDim)
	case ansicode.CharAttributeCancelItalic:
		s.template.ClearFlag(CellFlagItalic)
	case ansicode.CharAttributeCancelUnderline:
		s.template.ClearFlag(CellFlagUnderline | CellFlagDoubleUnderline | CellFlagCurlyUnderline | CellFlagDottedUnderline | CellFlagDashedUnderline)
	case ansicode.CharAttributeCancelReverse:
		s.template.ClearFlag(CellFlagReverse)
	case ansicode.CharAttributeCancelHidden:
		s.template.ClearFlag(CellFlagHidden)
	case ansicode.CharAttributeCancelStrike:
		s.template.ClearFlag(CellFlagStrike)

	case ansicode.CharAttributeForeground:
		s.template.Fg = s.resolveCharAttrColor(attr)
	case ansicode.CharAttributeBackground:
		s.template.Bg = s.resolveCharAttrColor(attr)
	case ansicode.CharAttributeUnderlineColor:
		if attr.RGBColor == nil && attr.IndexedColor == nil && attr.NamedColor == nil {
			s.template.UnderlineColor = nil
		} else {
			s.template.UnderlineColor = s.resolveCharAttrColor(attr)
		}
	}
}

// resolveCharAttrColor converts a decoded SGR color operand (24-bit
// RGB, 256-color index, or named slot) into the color.Color this
// package stores on cell templates, defaulting to the semantic
// foreground/background slot when the attribute carries no operand.
func (s *Screen) resolveCharAttrColor(attr ansicode.TerminalCharAttribute) color.Color {
	if attr.RGBColor != nil {
		return color.RGBA{R: attr.RGBColor.R, G: attr.RGBColor.G, B: attr.RGBColor.B, A: 255}
	}
	if attr.IndexedColor != nil {
		return &IndexedColor{Index: int(attr.IndexedColor.Index)}
	}
	if attr.NamedColor != nil {
		return &NamedColor{Name: int(*attr.NamedColor)}
	}
	switch attr.Attr {
	case ansicode.CharAttributeBackground:
		return &NamedColor{Name: NamedColorBackground}
	default:
		return &NamedColor{Name: NamedColorForeground}
	}
}

func (s *Screen) SetModifyOtherKeys(modify ansicode.ModifyOtherKeys) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modifyOtherKeys = modify
}

func (s *Screen) SetScrollingRegion(top, bottom int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	top--
	if top < 0 {
		top = 0
	}
	if bottom <= 0 || bottom > s.rows {
		bottom = s.rows
	}
	if top+1 >= bottom {
		return
	}
	s.scrollTop = top
	s.scrollBottom = bottom

	if s.modes.Has(ModeOrigin) {
		s.cursor.Row = s.scrollTop
	} else {
		s.cursor.Row = 0
	}
	s.cursor.Col = 0
	s.cursor.PendingWrap = false
}

func (s *Screen) StartOfStringReceived(data []byte) {
	s.mu.RLock()
	sos := s.callbacks.SOS
	s.mu.RUnlock()
	sos.Receive(data)
}

func (s *Screen) SetTitle(title string) {
	s.mu.Lock()
	s.title = title
	cb := s.callbacks.Title
	s.mu.Unlock()
	cb.SetTitle(title)
}

func (s *Screen) Substitute() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cell := s.active.Cell(s.cursor.Row, s.cursor.Col)
	if cell != nil {
		cell.Char = '?'
		s.active.MarkDirty(s.cursor.Row, s.cursor.Col)
	}
}

func (s *Screen) Tab(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.cursor.Col = s.active.NextTabStop(s.cursor.Col)
	}
}

func (s *Screen) TextAreaSizeChars() {
	s.mu.RLock()
	rows, cols := s.rows, s.cols
	s.mu.RUnlock()
	s.writeResponseString(fmt.Sprintf("\x1b[8;%d;%dt", rows, cols))
}

func (s *Screen) TextAreaSizePixels() {
	s.mu.RLock()
	rows, cols := s.rows, s.cols
	provider := s.sizeProvider
	s.mu.RUnlock()

	w, h := provider.WindowPixelSize()
	if w == 0 || h == 0 {
		cw, ch := provider.CellPixelSize()
		if cw == 0 {
			cw = 10
		}
		if ch == 0 {
			ch = 20
		}
		w, h = cols*cw, rows*ch
	}
	s.writeResponseString(fmt.Sprintf("\x1b[4;%d;%dt", h, w))
}

// CellSizePixels answers CSI 16 t: the host's reported cell pixel size,
// falling back to a 10x20 default matching common terminal metrics.
func (s *Screen) CellSizePixels() {
	s.mu.RLock()
	provider := s.sizeProvider
	s.mu.RUnlock()
	w, h := provider.CellPixelSize()
	if w == 0 {
		w = 10
	}
	if h == 0 {
		h = 20
	}
	s.writeResponseString(fmt.Sprintf("\x1b[6;%d;%dt", h, w))
}

// SixelReceived is a no-op: this grid's graphics surface is Kitty-only
// (see DESIGN.md); a Sixel payload is simply discarded rather than
// partially rendered.
func (s *Screen) SixelReceived(params [][]uint16, data []byte) {}
