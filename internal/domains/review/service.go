// Package review orchestrates the transcription lifecycle: validate an
// upload, drive the external job to completion, seed the utterance
// store, and serialize every edit that follows.
package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/xpanvictor/diarize/internal/domains/editor"
	"github.com/xpanvictor/diarize/internal/domains/session"
	"github.com/xpanvictor/diarize/internal/domains/transcript"
	"github.com/xpanvictor/diarize/internal/upload"
	"github.com/xpanvictor/diarize/pkg/Logger"
	"github.com/xpanvictor/diarize/pkg/progress"
	"github.com/xpanvictor/diarize/pkg/stt"
)

// Common errors
var (
	ErrSubmitInFlight = errors.New("a transcription is already in flight")
)

// User-facing messages for the failure taxonomy. Service errors pass
// through verbatim instead.
const (
	msgMissingKey  = "Transcription API key is not configured."
	msgEmptyResult = "The service returned no utterances."
	msgGeneric     = "Transcription failed unexpectedly. Please try again."
)

// Service is the single entry point for everything that touches review
// state. All methods are safe for concurrent use: they marshal onto
// one loop goroutine, which is the only writer.
type Service interface {
	// Run processes commands until ctx is done. Must be started
	// before any other method is called.
	Run(ctx context.Context)

	// Submit validates and stages an upload, then drives one
	// transcription job in the background. A second submit while one
	// is in flight returns ErrSubmitInFlight.
	Submit(name string, size int64, audio io.Reader) (session.Snapshot, error)
	Session() session.Snapshot

	Utterances() []transcript.Utterance
	SetSpeaker(id string, speaker transcript.Speaker) ([]transcript.Utterance, error)
	InsertAfter(index int) (transcript.Utterance, []transcript.Utterance, error)
	BeginEdit(id string) error
	UpdateDraft(text string) error

	// Subscribe registers a session-event listener and returns the
	// retained history for replay. Slow listeners miss events rather
	// than block the loop.
	Subscribe() (id int, events <-chan progress.Event, replay []progress.Event)
	Unsubscribe(id int)
}

type reviewService struct {
	validator *upload.Validator
	engine    stt.Engine
	logger    *Logger.Logger

	cmds chan func()

	// Everything below is owned by the Run loop.
	store   *transcript.Store
	editor  *editor.Controller
	sess    *session.Session
	ring    *progress.Ring
	subs    map[int]chan progress.Event
	nextSub int
}

// New wires the review service. quiet is the edit debounce period.
func New(validator *upload.Validator, engine stt.Engine, quiet time.Duration, logger *Logger.Logger) Service {
	s := &reviewService{
		validator: validator,
		engine:    engine,
		logger:    logger,
		cmds:      make(chan func(), 64),
		store:     transcript.NewStore(),
		sess:      session.New(),
		ring:      progress.NewRing(8 << 10),
		subs:      make(map[int]chan progress.Event),
	}
	s.editor = editor.New(quiet, s.store, s.enqueue)
	return s
}

// Run implements Service.
func (s *reviewService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-s.cmds:
			fn()
		}
	}
}

// enqueue hands a command to the loop without waiting for it.
func (s *reviewService) enqueue(fn func()) {
	s.cmds <- fn
}

// do runs a command on the loop and waits for it to finish.
func (s *reviewService) do(fn func()) {
	done := make(chan struct{})
	s.cmds <- func() {
		defer close(done)
		fn()
	}
	<-done
}

// Submit implements Service.
func (s *reviewService) Submit(name string, size int64, audio io.Reader) (session.Snapshot, error) {
	var snap session.Snapshot
	var retErr error

	s.do(func() {
		if s.sess.InFlight() {
			snap = s.sess.Snapshot()
			retErr = ErrSubmitInFlight
			return
		}

		// Validation failures leave both session and store untouched.
		if err := s.validator.Validate(name, size); err != nil {
			snap = s.sess.Snapshot()
			retErr = err
			return
		}

		// Fresh session; the previous one is discarded, not reused.
		sess := session.New()
		if err := sess.Submit(); err != nil {
			retErr = fmt.Errorf("start session: %w", err)
			return
		}
		s.sess = sess
		s.publish()

		if err := s.engine.Configured(); err != nil {
			s.settle(sess, nil, err)
			snap = s.sess.Snapshot()
			retErr = err
			return
		}

		path, err := stageAudio(audio)
		if err != nil {
			s.settle(sess, nil, err)
			snap = s.sess.Snapshot()
			retErr = err
			return
		}

		go s.runJob(sess, name, path)
		snap = s.sess.Snapshot()
	})

	return snap, retErr
}

// runJob drives one transcription to completion off the loop. There is
// no cancellation path: once submitted the job runs until it settles,
// even if the user walks away.
func (s *reviewService) runJob(sess *session.Session, name, path string) {
	defer os.Remove(path)

	f, err := os.Open(path)
	if err != nil {
		s.enqueue(func() { s.settle(sess, nil, fmt.Errorf("reopen staged upload: %w", err)) })
		return
	}
	defer f.Close()

	utts, err := s.engine.Transcribe(context.Background(), stt.Request{
		FileName: name,
		Audio:    f,
	}, func(p float64) {
		s.enqueue(func() { s.onProgress(sess, p) })
	})

	s.enqueue(func() { s.settle(sess, utts, err) })
}

// onProgress runs on the loop. The first report moves the session out
// of submitting.
func (s *reviewService) onProgress(sess *session.Session, p float64) {
	if sess != s.sess || sess.Terminal() {
		return
	}
	if sess.Status() == session.StatusSubmitting {
		if err := sess.Accept(); err != nil {
			s.logger.Warnf("session accept: %v", err)
		}
	}
	sess.SetProgress(p)
	s.publish()
}

// settle runs on the loop and finishes a session exactly once. On
// success the store is reseeded; on failure the store keeps whatever
// it held before.
func (s *reviewService) settle(sess *session.Session, utts []stt.RawUtterance, err error) {
	if sess != s.sess || sess.Terminal() {
		return
	}

	if err == nil {
		entries := make([]transcript.Utterance, len(utts))
		for i, u := range utts {
			entries[i] = transcript.Utterance{
				ID:      u.ID,
				Speaker: transcript.Speaker(u.Speaker),
				Text:    u.Text,
			}
		}
		err = s.store.ReplaceAll(entries)
		if err == nil {
			if ferr := sess.Succeed(); ferr != nil {
				s.logger.Errorf("session succeed: %v", ferr)
			}
			s.logger.Infof("transcription succeeded with %d utterances", len(entries))
			s.publish()
			return
		}
	}

	s.logger.Errorf("transcription failed: %v", err)
	if ferr := sess.Fail(userMessage(err)); ferr != nil {
		s.logger.Errorf("session fail: %v", ferr)
	}
	s.publish()
}

// Session implements Service.
func (s *reviewService) Session() session.Snapshot {
	var snap session.Snapshot
	s.do(func() { snap = s.sess.Snapshot() })
	return snap
}

// Utterances implements Service.
func (s *reviewService) Utterances() []transcript.Utterance {
	var utts []transcript.Utterance
	s.do(func() { utts = s.store.Utterances() })
	return utts
}

// SetSpeaker implements Service.
func (s *reviewService) SetSpeaker(id string, speaker transcript.Speaker) ([]transcript.Utterance, error) {
	var utts []transcript.Utterance
	var retErr error
	s.do(func() {
		retErr = s.store.SetSpeaker(id, speaker)
		utts = s.store.Utterances()
	})
	return utts, retErr
}

// InsertAfter implements Service.
func (s *reviewService) InsertAfter(index int) (transcript.Utterance, []transcript.Utterance, error) {
	var entry transcript.Utterance
	var utts []transcript.Utterance
	var retErr error
	s.do(func() {
		entry, retErr = s.store.InsertAfter(index)
		utts = s.store.Utterances()
	})
	return entry, utts, retErr
}

// BeginEdit implements Service.
func (s *reviewService) BeginEdit(id string) error {
	var retErr error
	s.do(func() { retErr = s.editor.BeginEdit(id) })
	return retErr
}

// UpdateDraft implements Service.
func (s *reviewService) UpdateDraft(text string) error {
	var retErr error
	s.do(func() { retErr = s.editor.UpdateDraft(text) })
	return retErr
}

// Subscribe implements Service.
func (s *reviewService) Subscribe() (int, <-chan progress.Event, []progress.Event) {
	var id int
	var ch chan progress.Event
	var replay []progress.Event
	s.do(func() {
		id = s.nextSub
		s.nextSub++
		ch = make(chan progress.Event, 16)
		s.subs[id] = ch
		replay = s.ring.Recent()
	})
	return id, ch, replay
}

// Unsubscribe implements Service.
func (s *reviewService) Unsubscribe(id int) {
	s.do(func() {
		if ch, ok := s.subs[id]; ok {
			close(ch)
			delete(s.subs, id)
		}
	})
}

// publish records the current session snapshot and fans it out.
func (s *reviewService) publish() {
	snap := s.sess.Snapshot()
	ev := progress.Event{
		Status:   string(snap.Status),
		Progress: snap.Progress,
		Error:    snap.Error,
		At:       time.Now().UTC(),
	}
	if err := s.ring.Push(ev); err != nil {
		s.logger.Warnf("event ring: %v", err)
	}
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Warnf("subscriber %d lagging, dropping event", id)
		}
	}
}

// userMessage maps the failure taxonomy onto what the user sees. Only
// explicit service errors pass through verbatim; transport detail
// stays in the logs.
func userMessage(err error) string {
	var svcErr *stt.ServiceError
	switch {
	case errors.Is(err, stt.ErrMissingAPIKey):
		return msgMissingKey
	case errors.Is(err, stt.ErrEmptyResult):
		return msgEmptyResult
	case errors.As(err, &svcErr):
		return svcErr.Message
	default:
		return msgGeneric
	}
}

// stageAudio spools the upload to a temp file so the transcription job
// can outlive the HTTP request that delivered it.
func stageAudio(r io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "diarize-upload-*")
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	return tmp.Name(), nil
}
