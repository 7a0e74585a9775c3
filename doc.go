// Package screen implements a headless, GPU-renderer-facing terminal
// screen engine: a VT100/VT220/xterm-compatible grid with reflow,
// scrollback, a Kitty-style inline graphics manager, and a
// selection/URL-detection subsystem. It has no parser and no
// renderer of its own — it implements [ansicode.Handler] directly, so
// an [ansicode.Decoder] built over a [Screen] is a complete terminal
// state machine, and a host supplies its own display by reading
// [Screen.Snapshot] or [Screen.Cell] after each write.
//
// # Quick Start
//
//	s := screen.New(screen.WithSize(24, 80))
//	s.WriteString("\x1b[31mHello \x1b[32mWorld\x1b[0m!")
//	snap := s.Snapshot(screen.SnapshotDetailText)
//	fmt.Println(snap.Lines[0].Text) // "Hello World!"
//
// # Architecture
//
//   - [Screen]: the state machine; implements [ansicode.Handler]
//   - [LineBuffer]: the 2D cell grid plus scrollback, reflow and tab
//     stops for one buffer (primary or alternate)
//   - [Cell]: one grid position — codepoint, combining marks, width,
//     flags, colors, hyperlink id, optional image reference
//   - [Cursor]: position, style, visibility, pending-wrap state
//   - [GraphicsManager]: Kitty graphics protocol command dispatch and
//     placement/render-layer bookkeeping
//
// # Dual Buffers
//
// A Screen holds a primary buffer (with scrollback) and an alternate
// buffer (full-screen apps: vim, less, htop). Applications switch
// buffers with CSI ?1049h/l:
//
//	if s.InAlternateScreen() {
//	    // a full-screen app is in control
//	}
//
// # Cells and Attributes
//
//	cell, ok := s.Cell(row, col)
//	if ok {
//	    fmt.Printf("char=%c bold=%v fg=%v\n", cell.Char, cell.HasFlag(screen.CellFlagBold), cell.Fg)
//	}
//
// Cell flags include Bold, Dim, Italic, five underline variants, Blink,
// Reverse, Hidden, Strike, plus the wide-char/wide-spacer/wrapped/dirty
// bookkeeping flags a renderer and reflow need.
//
// # Colors
//
// Colors are stored as [image/color.Color]; [NamedColor] and
// [IndexedColor] are lazily-resolved placeholders that [ResolveColor]
// turns into concrete RGBA against a [ColorProfile] (palette plus
// dynamic color overrides set via OSC 4/10-19/104-119).
//
// # Scrollback
//
// Lines scrolled off the primary buffer's top go to a
// [ScrollbackProvider]; [HistoryBuffer] is the built-in bounded
// in-memory implementation, and [Screen] accepts any other
// implementation via [WithScrollback] for a host that wants paged or
// disk-backed history instead.
//
// # Host Callbacks
//
// [HostCallbacks] aggregates the provider interfaces a host implements
// to receive terminal events — bell, title, clipboard, dynamic color,
// command-output marking, size queries, URL activation, and the
// [ChildWriter] channel that carries escape-code replies
// (DSR/CPR, OSC query responses, Kitty graphics acknowledgements) back
// to the child process. Every provider has a Noop default, so a host
// only implements the ones it cares about:
//
//	s := screen.New(
//	    screen.WithSize(24, 80),
//	    screen.WithHostCallbacks(screen.HostCallbacks{
//	        ChildWriter: ptyWriter,
//	        Bell:        myBellHandler,
//	    }),
//	)
//
// # Terminal Modes
//
//	s.HasMode(screen.ModeLineWrap)
//	s.HasMode(screen.ModeShowCursor)
//	s.HasMode(screen.ModeBracketedPaste)
//
// See [ScreenModes] for the full bit set; DEC 2026 synchronized output
// and reverse video have no ansicode.TerminalMode members and are
// exposed directly as [Screen.BeginSynchronizedOutput]/
// [Screen.SetReverseVideo] instead of routing through SetMode.
//
// # Dirty Tracking
//
//	if s.HasDirty() {
//	    for _, pos := range s.DirtyCells() {
//	        // redraw pos.Row, pos.Col
//	    }
//	    s.ClearDirty()
//	}
//
// # Selection and URLs
//
//	s.StartSelection(screen.SelectionCell, 0, 0)
//	s.UpdateSelection(2, 10)
//	text := s.SelectedText()
//	s.ClearSelection()
//
//	if url, start, end, ok := s.DetectURLAtCursor(row, col); ok {
//	    screen.OpenURL(urlProvider, url)
//	}
//
// # Snapshots
//
//	snap := s.Snapshot(screen.SnapshotDetailText)   // per-line text
//	snap := s.Snapshot(screen.SnapshotDetailStyled) // + per-run style segments
//	snap := s.Snapshot(screen.SnapshotDetailFull)   // + per-cell data instead of segments
//
// Every detail level also carries the cursor and the image placements.
//
// # Inline Images
//
// Kitty graphics protocol APCs are dispatched through [GraphicsManager];
// image data is content-addressed (SHA-256) and evicted under an LRU
// policy once [WithImageMemoryBudget] is exceeded. Sixel is explicitly
// out of scope: [Screen.SixelReceived] is a deliberate no-op.
//
// # Shell Integration
//
// OSC 133 semantic prompt marks are recorded by
// [Screen.ShellIntegrationMark] and queryable by absolute row:
//
//	next, ok := s.NextPromptRow(currentRow)
//	prev, ok := s.PrevPromptRow(currentRow)
//	start, end, ok := s.LastCommandOutput()
//
// # Auto-Resize Mode
//
// With [WithAutoResize], the grid grows to fit written content instead
// of scrolling it off, for capturing a command's complete output:
//
//	s := screen.New(screen.WithAutoResize())
//	cmd.Stdout = s
//	cmd.Run()
//	fmt.Printf("total rows: %d\n", s.Rows())
//
// # Thread Safety
//
// All [Screen] methods are safe for concurrent use; a single RWMutex
// serializes writers against readers (e.g. a render goroutine calling
// Snapshot while a PTY-reading goroutine feeds Write).
//
// # Supported Sequences
//
// Cursor motion and save/restore, erase/insert/delete (char and line),
// scrolling margins, full SGR character attributes and color modes,
// DEC private modes, device status reports, alternate screen, bracketed
// paste, mouse reporting, window title and title stack, clipboard
// (OSC 52), hyperlinks (OSC 8), shell integration (OSC 133), and Kitty
// graphics. The full escape-sequence grammar itself is parsed by
// [go-ansicode]; this package only implements the state transitions its
// [ansicode.Handler] interface calls out to.
//
// [go-ansicode]: https://github.com/danielgatis/go-ansicode
package screen
