// Package progress keeps a bounded history of session events so a
// late-joining subscriber can replay what it missed. Events are stored
// as size-prefixed json frames in a byte ring; when space runs out the
// oldest frames are dropped.
package progress

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/smallnest/ringbuffer"
)

// Event is one observable change of the transcription session.
type Event struct {
	Status   string    `json:"status"`
	Progress float64   `json:"progress"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

type Ring struct {
	size int
	rb   *ringbuffer.RingBuffer
}

func NewRing(size int) *Ring {
	return &Ring{
		size: size,
		rb:   ringbuffer.New(size).SetBlocking(false),
	}
}

// Push appends an event, evicting the oldest frames when full.
func (r *Ring) Push(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	required := len(data) + 4
	if required > r.rb.Capacity() {
		return errors.New("event too large for ring")
	}

	for r.rb.Free() < required {
		if !r.dropOldestFrame() {
			r.rb.Reset()
			break
		}
	}

	if _, err := r.rb.Write(frameSize(len(data))); err != nil {
		return err
	}
	_, err = r.rb.Write(data)
	return err
}

// Recent returns the retained events in arrival order without
// consuming them.
func (r *Ring) Recent() []Event {
	if r.rb.IsEmpty() {
		return nil
	}

	buf := make([]byte, r.rb.Length())
	r.rb.Bytes(buf)

	var events []Event
	for len(buf) >= 4 {
		size := int(buf[0]) | int(buf[1])<<8 | int(buf[2])<<16 | int(buf[3])<<24
		buf = buf[4:]
		if size < 0 || size > len(buf) {
			break
		}
		var ev Event
		if err := json.Unmarshal(buf[:size], &ev); err != nil {
			break
		}
		events = append(events, ev)
		buf = buf[size:]
	}
	return events
}

func (r *Ring) Len() int {
	return len(r.Recent())
}

func (r *Ring) dropOldestFrame() bool {
	if r.rb.IsEmpty() {
		return false
	}

	sizeBytes := make([]byte, 4)
	n, err := r.rb.Read(sizeBytes)
	if err != nil || n != 4 {
		return false
	}
	size := int(sizeBytes[0]) | int(sizeBytes[1])<<8 | int(sizeBytes[2])<<16 | int(sizeBytes[3])<<24
	if size <= 0 {
		return true
	}

	skip := make([]byte, size)
	n, err = r.rb.Read(skip)
	return err == nil && n == size
}

func frameSize(n int) []byte {
	return []byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)}
}
