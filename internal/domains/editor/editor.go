// Package editor holds the transient edit session: which utterance is
// being edited, the uncommitted draft, and the quiet-period timer that
// turns a pause in typing into a commit.
package editor

import (
	"errors"
	"time"

	"github.com/xpanvictor/diarize/internal/domains/transcript"
)

// Common errors
var (
	ErrUnknownUtterance = errors.New("utterance not found")
	ErrNoActiveEdit     = errors.New("no edit in progress")
)

// Controller is a two-state machine: idle, or editing one target. All
// methods must run on the owning loop goroutine; the timer callback
// re-enters through the schedule function, so even the automatic
// commit is serialized with every other mutation.
type Controller struct {
	quiet    time.Duration
	store    *transcript.Store
	schedule func(func())

	editing  bool
	targetID string
	draft    string
	timer    *time.Timer
	gen      uint64
}

// New builds a controller committing into store after quiet elapses
// without further draft updates. schedule marshals the expiry back
// onto the owner's goroutine.
func New(quiet time.Duration, store *transcript.Store, schedule func(func())) *Controller {
	return &Controller{
		quiet:    quiet,
		store:    store,
		schedule: schedule,
	}
}

// BeginEdit starts editing the given utterance, seeding the draft from
// its committed text. Starting an edit while another is underway
// silently discards the previous draft: last edit wins.
func (c *Controller) BeginEdit(id string) error {
	u, ok := c.store.Get(id)
	if !ok {
		return ErrUnknownUtterance
	}

	c.disarm()
	c.editing = true
	c.targetID = id
	c.draft = u.Text
	return nil
}

// UpdateDraft replaces the draft and restarts the quiet-period timer.
// At most one timer is ever pending.
func (c *Controller) UpdateDraft(text string) error {
	if !c.editing {
		return ErrNoActiveEdit
	}

	c.draft = text
	c.disarm()
	gen := c.gen
	c.timer = time.AfterFunc(c.quiet, func() {
		c.schedule(func() { c.expire(gen) })
	})
	return nil
}

// Commit writes the draft into the store and returns to idle.
func (c *Controller) Commit() error {
	if !c.editing {
		return ErrNoActiveEdit
	}

	c.disarm()
	c.store.SetText(c.targetID, c.draft)
	c.editing = false
	c.targetID = ""
	c.draft = ""
	return nil
}

// Editing reports whether an edit session is active.
func (c *Controller) Editing() bool {
	return c.editing
}

// Target returns the current edit target and draft.
func (c *Controller) Target() (id, draft string, ok bool) {
	return c.targetID, c.draft, c.editing
}

// expire runs on the owning loop when the quiet timer fires. A stale
// generation means the timer was superseded after firing; drop it.
func (c *Controller) expire(gen uint64) {
	if !c.editing || gen != c.gen {
		return
	}
	_ = c.Commit()
}

// disarm cancels any pending timer and invalidates in-flight expiries.
func (c *Controller) disarm() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
