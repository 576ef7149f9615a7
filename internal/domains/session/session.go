// Package session models the lifecycle of one transcription request.
// A session transitions into a terminal state exactly once and is
// replaced wholesale on the next submit, never reused.
package session

import (
	"context"

	"github.com/looplab/fsm"
)

// Status is the observable lifecycle state.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusInProgress Status = "in_progress"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// FSM event names.
const (
	eventSubmit  = "submit"
	eventAccept  = "accept"
	eventSucceed = "succeed"
	eventFail    = "fail"
)

// Session tracks one submission. Not safe for concurrent use; the
// review loop is the single writer.
type Session struct {
	machine  *fsm.FSM
	progress float64
	errMsg   string
}

// Snapshot is the value handed to handlers and subscribers.
type Snapshot struct {
	Status   Status  `json:"status"`
	Progress float64 `json:"progress"`
	Error    string  `json:"error,omitempty"`
}

func New() *Session {
	s := &Session{}
	s.machine = fsm.NewFSM(
		string(StatusIdle),
		fsm.Events{
			{Name: eventSubmit, Src: []string{string(StatusIdle)}, Dst: string(StatusSubmitting)},
			{Name: eventAccept, Src: []string{string(StatusSubmitting)}, Dst: string(StatusInProgress)},
			{Name: eventSucceed, Src: []string{string(StatusSubmitting), string(StatusInProgress)}, Dst: string(StatusSucceeded)},
			{Name: eventFail, Src: []string{string(StatusSubmitting), string(StatusInProgress)}, Dst: string(StatusFailed)},
		},
		fsm.Callbacks{
			// Terminal states always read 100, whatever the service
			// last reported.
			"enter_" + string(StatusSucceeded): func(_ context.Context, _ *fsm.Event) { s.progress = 100 },
			"enter_" + string(StatusFailed):    func(_ context.Context, _ *fsm.Event) { s.progress = 100 },
		},
	)
	return s
}

// Submit moves idle -> submitting.
func (s *Session) Submit() error {
	return s.machine.Event(context.Background(), eventSubmit)
}

// Accept moves submitting -> in_progress, fired on the first sign of
// life from the service.
func (s *Session) Accept() error {
	return s.machine.Event(context.Background(), eventAccept)
}

// Succeed terminates the session successfully.
func (s *Session) Succeed() error {
	return s.machine.Event(context.Background(), eventSucceed)
}

// Fail terminates the session with a user-visible message.
func (s *Session) Fail(msg string) error {
	if err := s.machine.Event(context.Background(), eventFail); err != nil {
		return err
	}
	s.errMsg = msg
	return nil
}

// SetProgress records service progress. Values are clamped to [0,100]
// and never move backwards; reports outside submitting/in_progress are
// ignored.
func (s *Session) SetProgress(p float64) {
	if s.Terminal() {
		return
	}
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	if p > s.progress {
		s.progress = p
	}
}

func (s *Session) Status() Status {
	return Status(s.machine.Current())
}

// InFlight reports whether a submission is still running.
func (s *Session) InFlight() bool {
	st := s.Status()
	return st == StatusSubmitting || st == StatusInProgress
}

// Terminal reports whether the session has settled.
func (s *Session) Terminal() bool {
	st := s.Status()
	return st == StatusSucceeded || st == StatusFailed
}

func (s *Session) Progress() float64 {
	return s.progress
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Status:   s.Status(),
		Progress: s.progress,
		Error:    s.errMsg,
	}
}
