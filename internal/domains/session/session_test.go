package session

import "testing"

func TestLifecycleHappyPath(t *testing.T) {
	s := New()
	if s.Status() != StatusIdle {
		t.Fatalf("initial status = %q, want idle", s.Status())
	}

	if err := s.Submit(); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if s.Status() != StatusSubmitting || !s.InFlight() {
		t.Fatalf("status = %q after submit", s.Status())
	}

	if err := s.Accept(); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if s.Status() != StatusInProgress {
		t.Fatalf("status = %q after accept", s.Status())
	}

	if err := s.Succeed(); err != nil {
		t.Fatalf("Succeed: %v", err)
	}
	if !s.Terminal() || s.InFlight() {
		t.Error("succeeded session still reports in flight")
	}
	if s.Progress() != 100 {
		t.Errorf("terminal progress = %v, want 100", s.Progress())
	}
}

func TestFailRecordsMessageAndForcesProgress(t *testing.T) {
	s := New()
	s.Submit()
	s.Accept()
	s.SetProgress(37)

	if err := s.Fail("audio codec not supported"); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	snap := s.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("status = %q, want failed", snap.Status)
	}
	if snap.Error != "audio codec not supported" {
		t.Errorf("error = %q", snap.Error)
	}
	if snap.Progress != 100 {
		t.Errorf("progress = %v, want 100", snap.Progress)
	}
}

func TestFailStraightFromSubmitting(t *testing.T) {
	s := New()
	s.Submit()
	if err := s.Fail("missing api key"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if s.Status() != StatusFailed {
		t.Errorf("status = %q, want failed", s.Status())
	}
}

func TestProgressMonotonic(t *testing.T) {
	s := New()
	s.Submit()
	s.Accept()

	s.SetProgress(10)
	s.SetProgress(55)
	s.SetProgress(30) // stale report must not move it backwards
	if s.Progress() != 55 {
		t.Errorf("progress = %v, want 55", s.Progress())
	}

	s.SetProgress(250)
	if s.Progress() != 100 {
		t.Errorf("progress = %v, want clamped to 100", s.Progress())
	}
}

func TestProgressIgnoredAfterTerminal(t *testing.T) {
	s := New()
	s.Submit()
	s.Accept()
	s.Succeed()

	s.SetProgress(12)
	if s.Progress() != 100 {
		t.Errorf("progress = %v, want 100 after terminal", s.Progress())
	}
}

func TestTerminalTransitionHappensOnce(t *testing.T) {
	s := New()
	s.Submit()
	s.Accept()
	s.Succeed()

	if err := s.Fail("too late"); err == nil {
		t.Error("Fail after succeed did not error")
	}
	if s.Status() != StatusSucceeded {
		t.Errorf("status = %q, want succeeded", s.Status())
	}
	if s.Snapshot().Error != "" {
		t.Errorf("error message recorded after settled session")
	}
}

func TestSubmitRequiresIdle(t *testing.T) {
	s := New()
	s.Submit()
	if err := s.Submit(); err == nil {
		t.Error("second Submit on same session did not error")
	}
}
