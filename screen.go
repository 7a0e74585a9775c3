package screen

import (
	"sync"

	"github.com/danielgatis/go-ansicode"
)

// Ensure Screen implements the external VT parser's callback interface.
var _ ansicode.Handler = (*Screen)(nil)

const (
	// DefaultRows is the row count used when WithSize is not given.
	DefaultRows = 24
	// DefaultCols is the column count used when WithSize is not given.
	DefaultCols = 80
	// defaultImageMemoryBudget is the graphics manager's default quota
	// (spec 4.4's 320 MiB default before LRU eviction kicks in).
	defaultImageMemoryBudget = 320 * 1024 * 1024
)

// Screen is a headless VT-compatible grid: primary and alternate
// buffers with scrollback, cursor/attribute/mode state, the Kitty-style
// graphics manager, selection/URL detection, and shell-integration
// marks. It implements ansicode.Handler directly, so an
// *ansicode.Decoder built over a Screen is a complete VT state machine;
// Screen itself never parses escape sequences.
//
// All mutable state is guarded by a single RWMutex — semantics are
// single-threaded/cooperative (only one escape sequence is ever being
// applied at a time) and the lock exists purely to make concurrent
// callers (a reader goroutine snapshotting state while a writer
// goroutine feeds Write) safe.
type Screen struct {
	mu sync.RWMutex

	rows, cols int

	primary   *LineBuffer
	alternate *LineBuffer
	active    *LineBuffer

	cursor      *Cursor
	savedCursor *SavedCursor

	template CellTemplate

	charsets      [4]Charset
	activeCharset CharsetIndex

	scrollTop, scrollBottom int

	modes          ScreenModes
	keyboardModes  KeyboardModeStack
	modifyOtherKeys ansicode.ModifyOtherKeys

	title      string
	titleStack []string

	colorProfile      ColorProfile
	colorProfileStack []ColorProfile

	hyperlinks       *HyperlinkPool
	currentHyperlink uint16

	decoder *ansicode.Decoder

	selections SelectionsSet

	scrollbackStorage ScrollbackProvider

	callbacks HostCallbacks

	autoResize bool

	promptMarks        *PromptMarkTracker
	redrawsPromptsAtAll bool

	workingDirectory string

	userVars map[string]string

	sizeProvider SizeProvider

	graphics *GraphicsManager

	kittyEnabled bool
	sixelEnabled bool

	overlay Overlay

	pause PauseState

	lastOscResponse string
}

// SizeProvider answers pixel-level size queries (cell pixel dimensions,
// window pixel dimensions), used to answer the CSI 14 t and CSI 16 t
// size reports.
type SizeProvider interface {
	CellPixelSize() (w, h int)
	WindowPixelSize() (w, h int)
}

// NoopSizeProvider reports zero for every query.
type NoopSizeProvider struct{}

func (NoopSizeProvider) CellPixelSize() (int, int)   { return 0, 0 }
func (NoopSizeProvider) WindowPixelSize() (int, int) { return 0, 0 }

// Option configures a Screen during construction.
type Option func(*Screen)

// WithSize sets the grid dimensions. Non-positive values fall back to
// DefaultRows/DefaultCols.
func WithSize(rows, cols int) Option {
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	return func(s *Screen) {
		s.rows = rows
		s.cols = cols
	}
}

// WithScrollback sets the storage used for lines scrolled off the top
// of the primary buffer. Defaults to an in-memory HistoryBuffer with
// capacity 1000 lines; pass a custom ScrollbackProvider for disk-backed
// or paged storage.
func WithScrollback(storage ScrollbackProvider) Option {
	return func(s *Screen) {
		s.scrollbackStorage = storage
	}
}

// WithHostCallbacks sets the host-callback bundle. Any unset field
// defaults to its Noop implementation.
func WithHostCallbacks(cb HostCallbacks) Option {
	return func(s *Screen) {
		s.callbacks = cb
	}
}

// WithAutoResize enables growth mode: the grid grows rows instead of
// scrolling or wrapping, useful for capturing full output without loss.
func WithAutoResize() Option {
	return func(s *Screen) {
		s.autoResize = true
	}
}

// WithSizeProvider sets the provider used to answer pixel-size queries.
func WithSizeProvider(p SizeProvider) Option {
	return func(s *Screen) {
		s.sizeProvider = p
	}
}

// WithImageMemoryBudget sets the graphics manager's memory quota in
// bytes before LRU eviction of cached images begins (spec 4.4).
func WithImageMemoryBudget(bytes int64) Option {
	return func(s *Screen) {
		s.graphics.SetMemoryBudget(bytes)
	}
}

// WithSixel enables or disables Sixel-shaped graphics handling. Default
// is disabled: the teacher's Sixel support is not part of this grid's
// Kitty-shaped graphics command surface (see DESIGN.md).
func WithSixel(enabled bool) Option {
	return func(s *Screen) {
		s.sixelEnabled = enabled
	}
}

// WithKitty enables or disables the Kitty graphics protocol. Default
// enabled.
func WithKitty(enabled bool) Option {
	return func(s *Screen) {
		s.kittyEnabled = enabled
	}
}

// New creates a Screen with the given options, defaulting to 24x80,
// autowrap and cursor visible, an in-memory 1000-line scrollback, and
// every host callback set to its Noop implementation.
func New(opts ...Option) *Screen {
	s := &Screen{
		rows:         DefaultRows,
		cols:         DefaultCols,
		kittyEnabled: true,
		sixelEnabled: false,
		colorProfile: DefaultColorProfile(),
		userVars:     make(map[string]string),
		promptMarks:  NewPromptMarkTracker(),
		sizeProvider: NoopSizeProvider{},
		graphics:     NewGraphicsManager(defaultImageMemoryBudget),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.scrollbackStorage == nil {
		s.scrollbackStorage = NewHistoryBuffer(1000)
	}
	s.callbacks.fillDefaults()

	s.primary = NewLineBufferWithStorage(s.rows, s.cols, s.scrollbackStorage)
	s.alternate = NewLineBuffer(s.rows, s.cols)
	s.active = s.primary

	s.cursor = NewCursor()
	s.template = NewCellTemplate()
	s.hyperlinks = NewHyperlinkPool()

	s.scrollTop = 0
	s.scrollBottom = s.rows

	s.modes = NewDefaultModes()

	s.decoder = ansicode.NewDecoder(s)

	return s
}

// Rows returns the grid height in character rows.
func (s *Screen) Rows() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows
}

// Cols returns the grid width in character columns.
func (s *Screen) Cols() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cols
}

// Cell returns a copy of the cell at (row, col) in the active buffer.
// The second return is false if out of bounds.
func (s *Screen) Cell(row, col int) (Cell, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.active.Cell(row, col)
	if c == nil {
		return Cell{}, false
	}
	return *c, true
}

// CursorPos returns the current 0-based cursor position.
func (s *Screen) CursorPos() (row, col int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor.Row, s.cursor.Col
}

// CursorVisible reports whether the cursor is currently visible.
func (s *Screen) CursorVisible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor.Visible
}

// CursorStyle returns the current cursor rendering style.
func (s *Screen) CursorStyle() CursorStyle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor.Style
}

// Title returns the current window title string.
func (s *Screen) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// HasMode reports whether mode is currently enabled.
func (s *Screen) HasMode(mode ScreenModes) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modes.Has(mode)
}

// InAlternateScreen reports whether the alternate buffer is active.
func (s *Screen) InAlternateScreen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active == s.alternate
}

// Write parses raw bytes as VT escape sequences, updating Screen state.
// Implements io.Writer.
func (s *Screen) Write(data []byte) (int, error) {
	s.mu.RLock()
	rec := s.callbacks.Recording
	s.mu.RUnlock()
	rec.Record(data)
	return s.decoder.Write(data)
}

// WriteString is a convenience wrapper around Write.
func (s *Screen) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// effectiveRow adjusts row for origin mode (DECOM), which makes cursor
// addressing relative to the scrolling region's top margin.
func (s *Screen) effectiveRow(row int) int {
	if s.modes.Has(ModeOrigin) {
		return row + s.scrollTop
	}
	return row
}

// scrollIfNeeded brings the cursor back within [scrollTop, scrollBottom)
// by scrolling the active buffer, or — in auto-resize mode — by growing
// it instead of discarding content.
func (s *Screen) scrollIfNeeded() {
	if s.cursor.Row >= s.scrollBottom {
		if s.autoResize {
			toAdd := s.cursor.Row - s.scrollBottom + 1
			s.active.GrowRows(toAdd)
			s.rows = s.active.Rows()
			s.scrollBottom = s.rows
			return
		}
		n := s.cursor.Row - s.scrollBottom + 1
		s.active.ScrollUp(s.scrollTop, s.scrollBottom, n)
		s.cursor.Row = s.scrollBottom - 1
	} else if s.cursor.Row < s.scrollTop {
		n := s.scrollTop - s.cursor.Row
		s.active.ScrollDown(s.scrollTop, s.scrollBottom, n)
		s.cursor.Row = s.scrollTop
	}
}

// Resize changes the grid dimensions, rewrapping both buffers through
// Reflow so logical lines (and the cursor's position within them)
// survive the column change, and pushing any history overflow into the
// primary buffer's scrollback (spec 4.1/4.3). Invalid dimensions (<=0)
// are ignored.
//
// If the cursor sits on a row whose nearest prior prompt marker is a
// prompt-start and RedrawsPromptsAtAll is set, rows from the cursor
// downward are blanked instead of reflowed — the shell is expected to
// redraw its own prompt, so carrying stale wrapped continuation data
// forward would just be noise (spec 4.3 "Prompt marking").
func (s *Screen) Resize(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.redrawsPromptsAtAll {
		if _, found := s.nearestPriorPromptStartLocked(s.cursor.Row + s.primary.ScrollbackLen()); found {
			s.active.ClearLine(s.cursor.Row)
			for r := s.cursor.Row + 1; r < s.rows; r++ {
				s.active.ClearLine(r)
			}
		}
	}

	cursorPos := Position{Row: s.cursor.Row, Col: s.cursor.Col}
	trackers := []*Position{&cursorPos}

	if s.active == s.primary {
		history := s.drainHistoryLocked()
		live := make([]Line, s.rows)
		for i := 0; i < s.rows; i++ {
			live[i] = *s.primary.Row(i)
		}
		// cursorPos is expressed relative to live; offset it into the
		// combined (history++live) numbering RewrapLineBuffer expects.
		cursorPos.Row += len(history)

		newHistory, newLive, _, _ := RewrapLineBuffer(history, live, rows, cols, trackers)

		s.primary = NewLineBufferWithStorage(rows, cols, s.scrollbackStorage)
		for i := 0; i < rows && i < len(newLive); i++ {
			*s.primary.Row(i) = newLive[i]
		}
		for i := 0; i < len(newHistory); i++ {
			s.scrollbackStorage.Push(newHistory[i])
		}
		s.active = s.primary
	} else {
		live := make([]Line, s.rows)
		for i := 0; i < s.rows; i++ {
			live[i] = *s.alternate.Row(i)
		}
		rewrapped, _, _ := Reflow(live, cols, trackers)
		s.alternate = NewLineBuffer(rows, cols)
		for i := 0; i < rows && i < len(rewrapped); i++ {
			*s.alternate.Row(i) = rewrapped[i]
		}
		s.active = s.alternate
		// keep the other buffer's width in sync so a subsequent buffer
		// toggle doesn't resize out from under the caller
		s.primary.Resize(rows, cols)
	}

	s.rows = rows
	s.cols = cols
	s.cursor.Row = clamp(cursorPos.Row, 0, rows-1)
	s.cursor.Col = clamp(cursorPos.Col, 0, cols-1)
	s.cursor.PendingWrap = false

	s.scrollTop = 0
	s.scrollBottom = rows

	if s.graphics != nil {
		s.graphics.OnResize(rows, cols)
	}
}

// drainHistoryLocked pulls every line currently in scrollback storage
// into a slice, oldest first, and clears the store — used by Resize to
// fold history into the combined rewrap input before rebuilding it.
func (s *Screen) drainHistoryLocked() []Line {
	n := s.scrollbackStorage.Len()
	if n == 0 {
		return nil
	}
	out := make([]Line, n)
	for i := 0; i < n; i++ {
		out[i] = s.scrollbackStorage.Line(i)
	}
	s.scrollbackStorage.Clear()
	return out
}

// nearestPriorPromptStartLocked reports whether the nearest prompt mark
// at or before row is a PromptStart mark. Caller must hold s.mu.
func (s *Screen) nearestPriorPromptStartLocked(row int) (PromptMark, bool) {
	var best PromptMark
	found := false
	for _, m := range s.promptMarks.All() {
		if m.Row <= row && (!found || m.Row > best.Row) {
			best = m
			found = true
		}
	}
	return best, found && best.Kind == PromptKindPromptStart
}

// --- Scrollback accessors ---

// ScrollbackLen returns the number of lines stored in scrollback.
func (s *Screen) ScrollbackLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.primary.ScrollbackLen()
}

// ScrollbackLine returns a scrollback line, 0 being the oldest.
func (s *Screen) ScrollbackLine(index int) Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.primary.ScrollbackLine(index)
}

// ClearScrollback discards all scrollback lines.
func (s *Screen) ClearScrollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primary.ClearScrollback()
}

// SetMaxScrollback sets the scrollback capacity.
func (s *Screen) SetMaxScrollback(max int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primary.SetMaxScrollback(max)
}

// MaxScrollback returns the current scrollback capacity.
func (s *Screen) MaxScrollback() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.primary.MaxScrollback()
}

// --- Dirty tracking ---

// HasDirty reports whether any cell in the active buffer changed since
// the last ClearDirty.
func (s *Screen) HasDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active.HasDirty()
}

// DirtyCells returns positions of all cells modified since the last
// ClearDirty.
func (s *Screen) DirtyCells() []Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active.DirtyCells()
}

// ClearDirty resets dirty tracking on the active buffer.
func (s *Screen) ClearDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active.ClearAllDirty()
}

// --- Working directory (OSC 7) ---

// WorkingDirectory returns the last working-directory URI reported via
// OSC 7, or "" if none has been reported.
func (s *Screen) WorkingDirectory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workingDirectory
}

// SetWorkingDirectory records a working-directory URI and notifies the
// host callback. Stored verbatim, with no path validation or
// canonicalization — matching the source's treatment of OSC 7 payloads.
func (s *Screen) SetWorkingDirectory(uri string) {
	s.mu.Lock()
	s.workingDirectory = uri
	cb := s.callbacks.WorkingDirectory
	s.mu.Unlock()
	cb.OnWorkingDirectoryChanged(uri)
}

// --- User-defined variables ---

// SetUserVar sets a user-defined variable (OSC 1337 SetUserVar-style).
// An empty value deletes the variable.
func (s *Screen) SetUserVar(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		delete(s.userVars, name)
		return
	}
	s.userVars[name] = value
}

// UserVar returns a previously set user-defined variable and whether it
// exists.
func (s *Screen) UserVar(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.userVars[name]
	return v, ok
}

// --- Prompt marks / shell integration ---

// PromptMarks returns a copy of every recorded semantic prompt mark.
func (s *Screen) PromptMarks() []PromptMark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.promptMarks.All()
}

// NextPromptRow returns the row of the next prompt start after fromRow.
func (s *Screen) NextPromptRow(fromRow int) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.promptMarks.NextPromptRow(fromRow)
}

// PrevPromptRow returns the row of the previous prompt start before fromRow.
func (s *Screen) PrevPromptRow(fromRow int) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.promptMarks.PrevPromptRow(fromRow)
}

// LastCommandOutput returns the [start, end) row span of the most
// recently completed command's output.
func (s *Screen) LastCommandOutput() (start, end int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.promptMarks.LastCommandOutput(s.primary.ScrollbackLen() + s.rows)
}

// SetRedrawsPromptsAtAll toggles whether Resize blanks rows below an
// active prompt-start marker instead of reflowing them.
func (s *Screen) SetRedrawsPromptsAtAll(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redrawsPromptsAtAll = v
}

// --- Protocol toggles ---

// SixelEnabled reports whether Sixel-shaped graphics handling is enabled.
func (s *Screen) SixelEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sixelEnabled
}

// KittyEnabled reports whether the Kitty graphics protocol is enabled.
func (s *Screen) KittyEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kittyEnabled
}
