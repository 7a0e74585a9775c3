package screen

import "time"

// ansicode's TerminalMode enumeration (see screen_handler.go's exhaustive
// setModeLocked switch, which ends in a silent default for anything
// outside it) has no member for DECSCNM reverse video or DEC 2026
// synchronized output, so neither can reach Screen through SetMode/
// UnsetMode. Both still matter to a host that tracks raw DEC private
// mode numbers itself upstream of the decoder, so they're exposed here
// as direct methods rather than dropped.

// SetReverseVideo toggles DECSCNM: the renderer should swap the
// default foreground/background for the whole screen while set.
func (s *Screen) SetReverseVideo(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.modes = s.modes.Set(ModeReverseVideo)
	} else {
		s.modes = s.modes.Clear(ModeReverseVideo)
	}
}

// ReverseVideo reports whether DECSCNM is active.
func (s *Screen) ReverseVideo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modes.Has(ModeReverseVideo)
}

// BeginSynchronizedOutput starts a DEC 2026 paused-rendering window: the
// renderer should keep serving PauseSnapshot until EndSynchronizedOutput
// is called or timeout (0 for the default) elapses.
func (s *Screen) BeginSynchronizedOutput(timeout time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes = s.modes.Set(ModeSynchronizedOutput)
	s.pause.Begin(s.active, s.cursor, s.colorProfile, s.selections, timeout)
}

// EndSynchronizedOutput ends a paused-rendering window early.
func (s *Screen) EndSynchronizedOutput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes = s.modes.Clear(ModeSynchronizedOutput)
	s.pause.End()
}

// SynchronizedOutputActive reports whether a DEC 2026 pause is
// currently in effect, honoring the pause's own timeout expiry.
func (s *Screen) SynchronizedOutputActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.pause.IsActive(time.Now())
	if !active {
		s.modes = s.modes.Clear(ModeSynchronizedOutput)
	}
	return active
}

// PauseSnapshotNow returns the frozen grid snapshot while a
// synchronized-output pause is active, or nil otherwise.
func (s *Screen) PauseSnapshotNow() *PauseSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pause.IsActive(time.Now()) {
		return nil
	}
	return s.pause.Snapshot()
}
