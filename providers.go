package screen

import "io"

// ResponseWriter writes terminal responses (cursor position reports,
// DA/DSR replies, Kitty graphics responses) back to the PTY/child.
// Typically an io.Writer connected to the child process's stdin.
type ResponseWriter = io.Writer

// NoopResponse discards all response data.
type NoopResponse struct{}

func (NoopResponse) Write(p []byte) (n int, err error) { return len(p), nil }

var _ ResponseWriter = NoopResponse{}

// --- Bell ---

// BellProvider handles bell/beep events triggered by BEL (0x07).
type BellProvider interface {
	// Ring is called when a bell character is received.
	Ring()
}

// NoopBell ignores all bell events.
type NoopBell struct{}

func (NoopBell) Ring() {}

// --- Title / Icon ---

// TitleProvider handles window title changes (OSC 0, 1, 2) and the
// title stack (push/pop, OSC 22/23 equivalents).
type TitleProvider interface {
	SetTitle(title string)
	PushTitle()
	PopTitle()
}

// NoopTitle ignores all title operations.
type NoopTitle struct{}

func (NoopTitle) SetTitle(title string) {}
func (NoopTitle) PushTitle()            {}
func (NoopTitle) PopTitle()             {}

// IconProvider handles icon name changes (OSC 1).
type IconProvider interface {
	SetIconName(name string)
}

// NoopIcon ignores icon name changes.
type NoopIcon struct{}

func (NoopIcon) SetIconName(name string) {}

// --- Dynamic / palette colors ---

// DynamicColorProvider handles OSC 10-19/104-119 dynamic and palette
// color get/set requests (foreground, background, cursor, palette
// entries, and the "reset to default" forms).
type DynamicColorProvider interface {
	// SetDynamicColor is called with the semantic color slot (using the
	// NamedColor* constants) and the requested value; query forms (a "?"
	// payload) call Query instead and get the string back through the
	// response writer, matching the host's existing reply conventions.
	SetDynamicColor(slot int, value string)
	QueryDynamicColor(slot int) string
	ResetDynamicColor(slot int)
}

// NoopDynamicColor ignores all dynamic color requests.
type NoopDynamicColor struct{}

func (NoopDynamicColor) SetDynamicColor(slot int, value string) {}
func (NoopDynamicColor) QueryDynamicColor(slot int) string      { return "" }
func (NoopDynamicColor) ResetDynamicColor(slot int)             {}

// ColorTableProvider handles OSC 4/104 palette-index color get/set.
type ColorTableProvider interface {
	SetColorTableColor(index int, value string)
	ResetColorTableColor(index int)
}

// NoopColorTable ignores all palette-index color requests.
type NoopColorTable struct{}

func (NoopColorTable) SetColorTableColor(index int, value string) {}
func (NoopColorTable) ResetColorTableColor(index int)             {}

// --- Desktop notifications ---

// DesktopNotifyProvider handles OSC 9/777-style desktop notification
// requests.
type DesktopNotifyProvider interface {
	Notify(title, body string)
}

// NoopDesktopNotify ignores all desktop notifications.
type NoopDesktopNotify struct{}

func (NoopDesktopNotify) Notify(title, body string) {}

// --- Working directory (OSC 7) ---

// WorkingDirectoryProvider is notified when the shell reports a new
// current working directory.
type WorkingDirectoryProvider interface {
	OnWorkingDirectoryChanged(uri string)
}

// NoopWorkingDirectory ignores working directory reports.
type NoopWorkingDirectory struct{}

func (NoopWorkingDirectory) OnWorkingDirectoryChanged(uri string) {}

// --- APC / PM / SOS passthrough ---

// APCProvider handles Application Program Command sequences not
// otherwise claimed by the Kitty graphics command surface.
type APCProvider interface {
	Receive(data []byte)
}

// NoopAPC ignores all APC sequences.
type NoopAPC struct{}

func (NoopAPC) Receive(data []byte) {}

// PMProvider handles Privacy Message sequences.
type PMProvider interface {
	Receive(data []byte)
}

// NoopPM ignores all PM sequences.
type NoopPM struct{}

func (NoopPM) Receive(data []byte) {}

// SOSProvider handles Start of String sequences.
type SOSProvider interface {
	Receive(data []byte)
}

// NoopSOS ignores all SOS sequences.
type NoopSOS struct{}

func (NoopSOS) Receive(data []byte) {}

// DCSProvider handles Device Control String sequences that carry a
// Kitty-flavored payload not otherwise recognized by the graphics
// command parser (the source's on_handle_kitty_dcs escape hatch).
type DCSProvider interface {
	// HandleKittyDCS is given the raw DCS payload and returns true if it
	// consumed the sequence.
	HandleKittyDCS(data []byte) bool
}

// NoopDCS never claims a DCS sequence.
type NoopDCS struct{}

func (NoopDCS) HandleKittyDCS(data []byte) bool { return false }

// --- Clipboard (OSC 52) ---

// ClipboardProvider handles clipboard read/write and the
// allow/deny-per-operation policy a host may want to apply (the
// source's on_clipboard_control).
type ClipboardProvider interface {
	// Read returns content from the specified clipboard ('c' for
	// clipboard, 'p' for primary selection).
	Read(clipboard byte) string
	// Write stores content to the specified clipboard. Control reports
	// whether the write is permitted; Write is only called when it is.
	Write(clipboard byte, data []byte)
	// Control is consulted before Read/Write; returning false silently
	// drops the request, matching a host that wants to gate OSC 52
	// behind a user-visible prompt or a permissions policy.
	Control(clipboard byte, write bool) bool
}

// NoopClipboard ignores all clipboard operations and allows everything.
type NoopClipboard struct{}

func (NoopClipboard) Read(clipboard byte) string         { return "" }
func (NoopClipboard) Write(clipboard byte, data []byte)  {}
func (NoopClipboard) Control(clipboard byte, write bool) bool { return true }

// --- File transmission (Kitty graphics file/tempfile transmission) ---

// FileTransmissionProvider gates and services the file-backed Kitty
// graphics transmission mediums (t=f direct file, t=t tempfile):
// whether a path may be read, and cleanup of any tempfile the protocol
// asked the host to delete after decoding.
type FileTransmissionProvider interface {
	// IsOkToReadImageFile reports whether path may be opened for a
	// transmission-medium 'f' (regular file) payload.
	IsOkToReadImageFile(path string) bool
	// SafeDeleteTempFile removes a transmission-medium 't' (tempfile)
	// payload after it has been consumed, applying whatever path
	// safety checks the host requires before unlinking.
	SafeDeleteTempFile(path string) error
}

// NoopFileTransmission permits nothing and deletes nothing; hosts that
// want file/tempfile transmission mediums must supply a real provider.
type NoopFileTransmission struct{}

func (NoopFileTransmission) IsOkToReadImageFile(path string) bool { return false }
func (NoopFileTransmission) SafeDeleteTempFile(path string) error { return nil }

// --- URL opening ---

// URLProvider opens a URL detected by the selection/URL subsystem
// (spec 4.5) or requested by an OSC 8 hyperlink click.
type URLProvider interface {
	OnOpenURL(uri string)
}

// NoopURL ignores open-URL requests.
type NoopURL struct{}

func (NoopURL) OnOpenURL(uri string) {}

// --- Capability negotiation ---

// CapabilitiesProvider answers request_capabilities(query) (spec
// §4's device-attributes/status family): given a query string the host
// replies with whatever capability string it wants advertised, or ""
// to decline.
type CapabilitiesProvider interface {
	RequestCapabilities(query string) string
}

// NoopCapabilities declines every capability query.
type NoopCapabilities struct{}

func (NoopCapabilities) RequestCapabilities(query string) string { return "" }

// --- Command output marking / color profile stack ---

// CommandOutputProvider is notified when a semantic prompt mark (spec
// 4.2) demarcates the start or end of a command's output, letting a
// host fold the region into its own output-marking UI independent of
// the PromptMarkTracker this module keeps internally.
type CommandOutputProvider interface {
	OnCommandOutputMarking(kind PromptKind, row int)
}

// NoopCommandOutput ignores command output marking notifications.
type NoopCommandOutput struct{}

func (NoopCommandOutput) OnCommandOutputMarking(kind PromptKind, row int) {}

// ColorProfileStackProvider is notified when a pushed color profile
// (e.g. via a theme-stack OSC) is popped, so the host can restore
// whatever color scheme it associates with the popped entry.
type ColorProfileStackProvider interface {
	OnColorProfilePopped(profile ColorProfile)
}

// NoopColorProfileStack ignores color profile pop notifications.
type NoopColorProfileStack struct{}

func (NoopColorProfileStack) OnColorProfilePopped(profile ColorProfile) {}

// --- Child process I/O ---

// ChildWriter sends bytes and escape-code replies to the child process.
// write_to_child carries raw input (e.g. paste, synthesized key
// events); write_escape_code_to_child carries protocol replies (DA/DSR,
// Kitty graphics responses) that must go out verbatim without further
// encoding.
type ChildWriter interface {
	WriteToChild(data []byte) (int, error)
	WriteEscapeCodeToChild(code []byte) (int, error)
}

// NoopChildWriter discards everything written to it.
type NoopChildWriter struct{}

func (NoopChildWriter) WriteToChild(data []byte) (int, error)           { return len(data), nil }
func (NoopChildWriter) WriteEscapeCodeToChild(code []byte) (int, error) { return len(code), nil }

// --- Scrollback storage ---

// ScrollbackProvider stores lines scrolled off the top of the primary
// buffer. Implementations can use in-memory storage, disk, a database,
// or a paging scheme; HistoryBuffer is the bundled in-memory default.
type ScrollbackProvider interface {
	// Push appends a line to scrollback. Oldest lines should be removed
	// if MaxLines is exceeded.
	Push(line Line)
	// Len returns the current number of stored lines.
	Len() int
	// Line returns the line at index, where 0 is the oldest. Returns a
	// zero Line if out of range.
	Line(index int) Line
	// Clear removes all stored lines.
	Clear()
	// SetMaxLines sets the maximum capacity, trimming if needed.
	SetMaxLines(max int)
	// MaxLines returns the current maximum capacity.
	MaxLines() int
}

// NoopScrollback discards all scrollback lines (used by the alternate
// screen buffer, which never keeps scrollback).
type NoopScrollback struct{}

func (NoopScrollback) Push(line Line)      {}
func (NoopScrollback) Len() int            { return 0 }
func (NoopScrollback) Line(index int) Line { return Line{} }
func (NoopScrollback) Clear()              {}
func (NoopScrollback) SetMaxLines(max int) {}
func (NoopScrollback) MaxLines() int       { return 0 }

// --- Recording ---

// RecordingProvider captures raw input bytes before ANSI parsing, for
// replay or debugging.
type RecordingProvider interface {
	Record(data []byte)
	Data() []byte
	Clear()
}

// NoopRecording discards all recorded input.
type NoopRecording struct{}

func (NoopRecording) Record([]byte) {}
func (NoopRecording) Data() []byte  { return nil }
func (NoopRecording) Clear()        {}

// --- Aggregate host callbacks ---

// HostCallbacks bundles every provider a Screen consults into a single
// value, the Go-idiomatic stand-in for the Python object-pointer
// callback surface spec §9 describes. Each field defaults to a Noop
// implementation in DefaultHostCallbacks/screen.New's zero-value
// handling, so a host only needs to supply the providers it cares about.
type HostCallbacks struct {
	Bell              BellProvider
	Title             TitleProvider
	Icon              IconProvider
	DynamicColor      DynamicColorProvider
	ColorTable        ColorTableProvider
	DesktopNotify     DesktopNotifyProvider
	WorkingDirectory  WorkingDirectoryProvider
	Clipboard         ClipboardProvider
	FileTransmission  FileTransmissionProvider
	URL               URLProvider
	Capabilities      CapabilitiesProvider
	CommandOutput     CommandOutputProvider
	ColorProfileStack ColorProfileStackProvider
	ChildWriter       ChildWriter
	APC               APCProvider
	PM                PMProvider
	SOS               SOSProvider
	DCS               DCSProvider
	Recording         RecordingProvider
}

// DefaultHostCallbacks returns a HostCallbacks with every field set to
// its Noop implementation.
func DefaultHostCallbacks() HostCallbacks {
	return HostCallbacks{
		Bell:              NoopBell{},
		Title:             NoopTitle{},
		Icon:              NoopIcon{},
		DynamicColor:      NoopDynamicColor{},
		ColorTable:        NoopColorTable{},
		DesktopNotify:     NoopDesktopNotify{},
		WorkingDirectory:  NoopWorkingDirectory{},
		Clipboard:         NoopClipboard{},
		FileTransmission:  NoopFileTransmission{},
		URL:               NoopURL{},
		Capabilities:      NoopCapabilities{},
		CommandOutput:     NoopCommandOutput{},
		ColorProfileStack: NoopColorProfileStack{},
		ChildWriter:       NoopChildWriter{},
		APC:               NoopAPC{},
		PM:                NoopPM{},
		SOS:               NoopSOS{},
		DCS:               NoopDCS{},
		Recording:         NoopRecording{},
	}
}

// fillDefaults replaces every nil field of cb with its Noop
// implementation, so Screen.New never has to nil-check a callback
// before invoking it.
func (cb *HostCallbacks) fillDefaults() {
	if cb.Bell == nil {
		cb.Bell = NoopBell{}
	}
	if cb.Title == nil {
		cb.Title = NoopTitle{}
	}
	if cb.Icon == nil {
		cb.Icon = NoopIcon{}
	}
	if cb.DynamicColor == nil {
		cb.DynamicColor = NoopDynamicColor{}
	}
	if cb.ColorTable == nil {
		cb.ColorTable = NoopColorTable{}
	}
	if cb.DesktopNotify == nil {
		cb.DesktopNotify = NoopDesktopNotify{}
	}
	if cb.WorkingDirectory == nil {
		cb.WorkingDirectory = NoopWorkingDirectory{}
	}
	if cb.Clipboard == nil {
		cb.Clipboard = NoopClipboard{}
	}
	if cb.FileTransmission == nil {
		cb.FileTransmission = NoopFileTransmission{}
	}
	if cb.URL == nil {
		cb.URL = NoopURL{}
	}
	if cb.Capabilities == nil {
		cb.Capabilities = NoopCapabilities{}
	}
	if cb.CommandOutput == nil {
		cb.CommandOutput = NoopCommandOutput{}
	}
	if cb.ColorProfileStack == nil {
		cb.ColorProfileStack = NoopColorProfileStack{}
	}
	if cb.ChildWriter == nil {
		cb.ChildWriter = NoopChildWriter{}
	}
	if cb.APC == nil {
		cb.APC = NoopAPC{}
	}
	if cb.PM == nil {
		cb.PM = NoopPM{}
	}
	if cb.SOS == nil {
		cb.SOS = NoopSOS{}
	}
	if cb.DCS == nil {
		cb.DCS = NoopDCS{}
	}
	if cb.Recording == nil {
		cb.Recording = NoopRecording{}
	}
}

var (
	_ BellProvider              = (*NoopBell)(nil)
	_ TitleProvider              = (*NoopTitle)(nil)
	_ IconProvider               = (*NoopIcon)(nil)
	_ DynamicColorProvider       = (*NoopDynamicColor)(nil)
	_ ColorTableProvider         = (*NoopColorTable)(nil)
	_ DesktopNotifyProvider      = (*NoopDesktopNotify)(nil)
	_ WorkingDirectoryProvider   = (*NoopWorkingDirectory)(nil)
	_ ClipboardProvider          = (*NoopClipboard)(nil)
	_ FileTransmissionProvider   = (*NoopFileTransmission)(nil)
	_ URLProvider                = (*NoopURL)(nil)
	_ CapabilitiesProvider       = (*NoopCapabilities)(nil)
	_ CommandOutputProvider      = (*NoopCommandOutput)(nil)
	_ ColorProfileStackProvider  = (*NoopColorProfileStack)(nil)
	_ ChildWriter                = (*NoopChildWriter)(nil)
	_ APCProvider                = (*NoopAPC)(nil)
	_ PMProvider                 = (*NoopPM)(nil)
	_ SOSProvider                = (*NoopSOS)(nil)
	_ DCSProvider                = (*NoopDCS)(nil)
	_ ScrollbackProvider         = (*NoopScrollback)(nil)
	_ RecordingProvider          = (*NoopRecording)(nil)
)
