package screen

import "github.com/danielgatis/go-ansicode"

// ShellIntegrationMark records an OSC 133 semantic prompt boundary at
// the cursor's current (scrollback-adjusted) row. It's the
// ansicode.Handler callback the decoder invokes for OSC 133 A/B/C/D;
// PromptMarkTracker (history.go) does the bookkeeping this method
// feeds, and callbacks.CommandOutput is notified of every mark's kind
// and row so a host can e.g. highlight the last command's output.
func (s *Screen) ShellIntegrationMark(mark ansicode.ShellIntegrationMark, exitCode int) {
	s.mu.Lock()

	scrollbackLen := s.primary.ScrollbackLen()
	absRow := s.cursor.Row + scrollbackLen

	kind := shellIntegrationMarkToPromptKind(mark)
	s.promptMarks.Record(kind, absRow, exitCode)

	cb := s.callbacks.CommandOutput
	s.mu.Unlock()

	cb.OnCommandOutputMarking(kind, absRow)
}

func shellIntegrationMarkToPromptKind(mark ansicode.ShellIntegrationMark) PromptKind {
	switch mark {
	case ansicode.PromptStart:
		return PromptKindPromptStart
	case ansicode.CommandStart:
		return PromptKindSecondaryPrompt
	case ansicode.CommandExecuted:
		return PromptKindOutputStart
	case ansicode.CommandFinished:
		return PromptKindNone
	default:
		return PromptKindNone
	}
}
