package transcript

import (
	"fmt"

	"github.com/google/uuid"
)

// Store is the ordered, in-memory utterance collection. It carries no
// locking: ownership belongs to the review loop goroutine, every
// mutation arrives serialized through it. Entries can be added and
// edited but never removed.
type Store struct {
	items []Utterance
}

func NewStore() *Store {
	return &Store{}
}

// ReplaceAll seeds the store from a transcription result, wiping
// whatever was there before. Ids must be unique and speakers valid.
func (s *Store) ReplaceAll(entries []Utterance) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if !e.Speaker.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidSpeaker, e.Speaker)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	s.items = make([]Utterance, len(entries))
	copy(s.items, entries)
	return nil
}

// SetSpeaker relabels exactly one entry. An absent id is a no-op, by
// contract; an invalid label is an error.
func (s *Store) SetSpeaker(id string, speaker Speaker) error {
	if !speaker.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSpeaker, speaker)
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Speaker = speaker
			return nil
		}
	}
	return nil
}

// SetText replaces the text of exactly one entry. This is the edit
// controller's commit path. An absent id is a no-op.
func (s *Store) SetText(id, text string) {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Text = text
			return
		}
	}
}

// InsertAfter creates a fresh empty utterance immediately after the
// entry at index, shifting the tail down by one. Relative order of all
// existing entries is preserved.
func (s *Store) InsertAfter(index int) (Utterance, error) {
	if index < 0 || index >= len(s.items) {
		return Utterance{}, fmt.Errorf("%w: %d (length %d)", ErrIndexOutOfRange, index, len(s.items))
	}

	entry := Utterance{
		ID:      uuid.New().String(),
		Speaker: SpeakerA,
		Text:    "",
	}

	s.items = append(s.items, Utterance{})
	copy(s.items[index+2:], s.items[index+1:])
	s.items[index+1] = entry
	return entry, nil
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (Utterance, bool) {
	for _, u := range s.items {
		if u.ID == id {
			return u, true
		}
	}
	return Utterance{}, false
}

// Utterances returns a copy of the sequence in presentation order.
func (s *Store) Utterances() []Utterance {
	out := make([]Utterance, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	return len(s.items)
}
