package screen

// ScreenModes is a bitmask of DEC-private and ANSI screen behavior
// flags. Multiple modes are active simultaneously; Screen.SetMode/
// UnsetMode apply the side effects each mode carries (e.g. toggling
// ModeOrigin relocates the cursor to the scrolling region's top-left).
type ScreenModes uint64

const (
	// ModeCursorKeys is DECCKM: application vs normal cursor-key encoding.
	ModeCursorKeys ScreenModes = 1 << iota
	// ModeColumnMode is DECCOLM: 80/132-column switch.
	ModeColumnMode
	// ModeInsert is IRM: inserted characters shift the rest of the line right.
	ModeInsert
	// ModeOrigin is DECOM: cursor addressing relative to the scroll region.
	ModeOrigin
	// ModeLineWrap is DECAWM: autowrap at the right margin.
	ModeLineWrap
	// ModeBlinkingCursor toggles the blinking cursor style variants.
	ModeBlinkingCursor
	// ModeLineFeedNewLine is LNM: LF also performs CR.
	ModeLineFeedNewLine
	// ModeShowCursor is DECTCEM: cursor visibility.
	ModeShowCursor
	// ModeReportMouseClicks is X10/VT200 button-event mouse tracking.
	ModeReportMouseClicks
	// ModeReportCellMouseMotion is button-event mouse tracking with drag.
	ModeReportCellMouseMotion
	// ModeReportAllMouseMotion is any-event mouse tracking.
	ModeReportAllMouseMotion
	// ModeReportFocusInOut enables focus in/out event reporting.
	ModeReportFocusInOut
	// ModeUTF8Mouse enables UTF-8 mouse coordinate encoding.
	ModeUTF8Mouse
	// ModeSGRMouse enables SGR mouse coordinate encoding.
	ModeSGRMouse
	// ModeAlternateScroll maps wheel events to cursor keys on the alt screen.
	ModeAlternateScroll
	// ModeUrgencyHints requests a host urgency/attention hint on bell.
	ModeUrgencyHints
	// ModeSwapScreenAndSetRestoreCursor is DEC mode 1049: alt screen with
	// save/restore cursor and implicit clear, the variant hosts actually
	// use (as opposed to bare 47/1047).
	ModeSwapScreenAndSetRestoreCursor
	// ModeAlternateScreen47 is the bare DEC mode 47 alt-screen toggle,
	// kept distinct from 1049 because it does not save/restore cursor
	// or clear on entry.
	ModeAlternateScreen47
	// ModeAlternateScreen1047 is DEC mode 1047: alt-screen with clear on
	// entry but no cursor save/restore.
	ModeAlternateScreen1047
	// ModeBracketedPaste wraps pasted text in ESC[200~ / ESC[201~.
	ModeBracketedPaste
	// ModeReverseVideo is DECSCNM: swap default foreground/background.
	ModeReverseVideo
	// ModeSynchronizedOutput is DEC mode 2026: suppress intermediate
	// repaints between a BSU/ESU pair, the "paused rendering" mode spec
	// 4.7 names explicitly.
	ModeSynchronizedOutput
	// ModeKeypadApplication is DECKPAM/DECKPNM: application vs numeric
	// keypad encoding.
	ModeKeypadApplication
)

// NewDefaultModes returns the mode set active immediately after reset:
// autowrap and cursor visibility on, everything else off.
func NewDefaultModes() ScreenModes {
	return ModeLineWrap | ModeShowCursor
}

// Has reports whether flag is set.
func (m ScreenModes) Has(flag ScreenModes) bool { return m&flag != 0 }

// Set returns m with flag enabled.
func (m ScreenModes) Set(flag ScreenModes) ScreenModes { return m | flag }

// Clear returns m with flag disabled.
func (m ScreenModes) Clear(flag ScreenModes) ScreenModes { return m &^ flag }

// KeyboardMode mirrors the Kitty keyboard protocol's progressive
// enhancement flags, pushed/popped as a stack (CSI > / CSI < u).
type KeyboardMode uint8

const (
	KeyboardModeDisambiguateEscapeCodes KeyboardMode = 1 << iota
	KeyboardModeReportEventTypes
	KeyboardModeReportAlternateKeys
	KeyboardModeReportAllKeysAsEscapeCodes
	KeyboardModeReportAssociatedText
)

// KeyboardModeBehavior selects how SetKeyboardMode combines a new value
// with the current top-of-stack entry.
type KeyboardModeBehavior int

const (
	KeyboardModeBehaviorReplace KeyboardModeBehavior = iota
	KeyboardModeBehaviorUnion
	KeyboardModeBehaviorDifference
)

// KeyboardModeStack is a stack of KeyboardMode values, per the
// Kitty keyboard protocol's push/pop semantics.
type KeyboardModeStack struct {
	entries []KeyboardMode
}

// Push adds mode to the top of the stack.
func (s *KeyboardModeStack) Push(mode KeyboardMode) {
	s.entries = append(s.entries, mode)
}

// Pop removes n entries from the top of the stack (n clamped to the
// stack's current depth).
func (s *KeyboardModeStack) Pop(n int) {
	if n <= 0 {
		return
	}
	if n > len(s.entries) {
		n = len(s.entries)
	}
	s.entries = s.entries[:len(s.entries)-n]
}

// Top returns the current top-of-stack mode, or 0 if the stack is empty.
func (s *KeyboardModeStack) Top() KeyboardMode {
	if len(s.entries) == 0 {
		return 0
	}
	return s.entries[len(s.entries)-1]
}

// Set applies mode to the top-of-stack entry using behavior, pushing a
// fresh entry if the stack is empty.
func (s *KeyboardModeStack) Set(mode KeyboardMode, behavior KeyboardModeBehavior) {
	current := s.Top()
	var next KeyboardMode
	switch behavior {
	case KeyboardModeBehaviorUnion:
		next = current | mode
	case KeyboardModeBehaviorDifference:
		next = current &^ mode
	default:
		next = mode
	}
	if len(s.entries) == 0 {
		s.entries = append(s.entries, next)
		return
	}
	s.entries[len(s.entries)-1] = next
}

// Depth returns the number of entries on the stack.
func (s *KeyboardModeStack) Depth() int { return len(s.entries) }
