package screen

import "testing"

func TestShellIntegrationMark_PromptStart(t *testing.T) {
	s := New(WithSize(24, 80))
	s.WriteString("\x1b]133;A\x07")

	marks := s.PromptMarks()
	if len(marks) != 1 {
		t.Fatalf("marks = %d, want 1", len(marks))
	}
	if marks[0].Kind != PromptKindPromptStart {
		t.Errorf("kind = %v, want PromptKindPromptStart", marks[0].Kind)
	}
}

func TestShellIntegrationMark_CommandFinishedExitCode(t *testing.T) {
	s := New(WithSize(24, 80))
	s.WriteString("\x1b]133;D;7\x07")

	marks := s.PromptMarks()
	if len(marks) != 1 {
		t.Fatalf("marks = %d, want 1", len(marks))
	}
	if marks[0].ExitCode != 7 {
		t.Errorf("exit code = %d, want 7", marks[0].ExitCode)
	}
}

func TestNextPrevPromptRow(t *testing.T) {
	s := New(WithSize(24, 80))
	s.WriteString("\x1b]133;A\x07line one\r\n")
	s.WriteString("\x1b]133;A\x07line two\r\n")
	s.WriteString("\x1b]133;A\x07line three\r\n")

	next, ok := s.NextPromptRow(0)
	if !ok || next != 1 {
		t.Fatalf("NextPromptRow(0) = (%d,%v), want (1,true)", next, ok)
	}

	prev, ok := s.PrevPromptRow(2)
	if !ok || prev != 1 {
		t.Fatalf("PrevPromptRow(2) = (%d,%v), want (1,true)", prev, ok)
	}
}

func TestLastCommandOutput(t *testing.T) {
	s := New(WithSize(24, 80))
	s.WriteString("\x1b]133;A\x07$ cmd\r\n")
	s.WriteString("\x1b]133;C\x07output line 1\r\n")
	s.WriteString("output line 2\r\n")
	s.WriteString("\x1b]133;D;0\x07")

	start, end, ok := s.LastCommandOutput()
	if !ok {
		t.Fatal("expected a recorded command output span")
	}
	if start != 1 || end != 24 {
		t.Fatalf("span = [%d,%d), want [1,24)", start, end)
	}
}

func TestPromptMarks_ClearedOnReset(t *testing.T) {
	s := New(WithSize(24, 80))
	s.WriteString("\x1b]133;A\x07")
	if len(s.PromptMarks()) != 1 {
		t.Fatal("expected one mark before reset")
	}

	s.WriteString("\x1bc")
	if len(s.PromptMarks()) != 0 {
		t.Fatal("expected marks cleared after RIS")
	}
}
