package model

import (
	"fmt"
	"time"
)

type VoiceID = string

// DialogueTurn is one exchange of a two-party conversation.
// Either side may be empty.
type DialogueTurn struct {
	A string `json:"a,omitempty" yaml:"a,omitempty"`
	B string `json:"b,omitempty" yaml:"b,omitempty"`
}

type Speaker string

const (
	SpeakerA Speaker = "A"
	SpeakerB Speaker = "B"
)

// QueueEntry is one speaker utterance, the unit of playback.
type QueueEntry struct {
	Text          string  `json:"text"`
	Voice         VoiceID `json:"voice"`
	DialogueIndex int     `json:"dialogueIndex"`
	Speaker       Speaker `json:"speaker"`
}

type Voice struct {
	ID     VoiceID `json:"id"`
	Name   string  `json:"name"`
	Gender string  `json:"gender,omitempty"`
}

type PlaybackState int

const (
	StateStopped PlaybackState = iota
	StatePlaying
	StatePaused
)

func (s PlaybackState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

func (s PlaybackState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *PlaybackState) UnmarshalText(b []byte) error {
	for _, state := range []PlaybackState{StateStopped, StatePlaying, StatePaused} {
		if string(b) == state.String() {
			*s = state
			return nil
		}
	}

	return fmt.Errorf("unsupported playback state %q", string(b))
}

// Status is a snapshot of a player, published whenever it changes.
type Status struct {
	State         PlaybackState `json:"state"`
	DialogueIndex int           `json:"dialogueIndex"`
	DialogueCount int           `json:"dialogueCount"`
	QueueLength   int           `json:"queueLength"`
	Speaker       Speaker       `json:"speaker,omitempty"`
	Text          string        `json:"text,omitempty"`
	CurrentTime   time.Duration `json:"currentTime"`
	Duration      time.Duration `json:"duration"`
	Progress      float64       `json:"progress"`
	Error         string        `json:"error,omitempty"`
}
