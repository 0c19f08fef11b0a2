package queue

import (
	"strings"

	"github.com/mgoltzsche/dialogue-player/internal/model"
)

type Entry = model.QueueEntry

// Build flattens dialogue turns into a play queue.
// Each turn emits its A side followed by its B side; missing sides are skipped.
func Build(turns []model.DialogueTurn, voiceA, voiceB model.VoiceID) []Entry {
	entries := make([]Entry, 0, 2*len(turns))

	for i, turn := range turns {
		if strings.TrimSpace(turn.A) != "" {
			entries = append(entries, Entry{
				Text:          turn.A,
				Voice:         voiceA,
				DialogueIndex: i,
				Speaker:       model.SpeakerA,
			})
		}

		if strings.TrimSpace(turn.B) != "" {
			entries = append(entries, Entry{
				Text:          turn.B,
				Voice:         voiceB,
				DialogueIndex: i,
				Speaker:       model.SpeakerB,
			})
		}
	}

	return entries
}

// FirstIndexOf returns the position of the first entry belonging to the given
// dialogue turn. If the turn has no entries, the next turn that has one is used.
// It returns -1 when no such entry exists.
func FirstIndexOf(entries []Entry, dialogueIndex int) int {
	for i, e := range entries {
		if e.DialogueIndex >= dialogueIndex {
			return i
		}
	}

	return -1
}

// IndexOfTurn returns the position of the first entry of exactly the given
// dialogue turn or -1 if the turn has no entries.
func IndexOfTurn(entries []Entry, dialogueIndex int) int {
	for i, e := range entries {
		if e.DialogueIndex == dialogueIndex {
			return i
		}

		if e.DialogueIndex > dialogueIndex {
			break
		}
	}

	return -1
}
