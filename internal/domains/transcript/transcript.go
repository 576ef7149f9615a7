package transcript

import (
	"errors"
)

// Common errors
var (
	ErrInvalidSpeaker  = errors.New("speaker is not one of the fixed labels")
	ErrDuplicateID     = errors.New("duplicate utterance id")
	ErrIndexOutOfRange = errors.New("utterance index out of range")
)

// Speaker is one of the seven fixed diarization labels. Free-text
// speaker names are not representable on purpose.
type Speaker string

const (
	SpeakerA Speaker = "Speaker A"
	SpeakerB Speaker = "Speaker B"
	SpeakerC Speaker = "Speaker C"
	SpeakerD Speaker = "Speaker D"
	SpeakerE Speaker = "Speaker E"
	SpeakerF Speaker = "Speaker F"
	SpeakerG Speaker = "Speaker G"
)

// AllSpeakers lists the labels in presentation order.
func AllSpeakers() []Speaker {
	return []Speaker{SpeakerA, SpeakerB, SpeakerC, SpeakerD, SpeakerE, SpeakerF, SpeakerG}
}

// IsValid checks if the speaker label is valid
func (s Speaker) IsValid() bool {
	switch s {
	case SpeakerA, SpeakerB, SpeakerC, SpeakerD, SpeakerE, SpeakerF, SpeakerG:
		return true
	default:
		return false
	}
}

// SpeakerFromIndex folds an arbitrary non-negative index into the
// seven-label alphabet.
func SpeakerFromIndex(index int) Speaker {
	if index < 0 {
		index = -index
	}
	return AllSpeakers()[index%7]
}

// Utterance is one speaker-attributed segment of the transcript.
type Utterance struct {
	ID      string  `json:"id"`
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}
