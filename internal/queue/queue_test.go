package queue

import (
	"testing"

	"github.com/mgoltzsche/dialogue-player/internal/model"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	for _, tc := range []struct {
		name     string
		turns    []model.DialogueTurn
		expected []Entry
	}{
		{
			name:     "no turns",
			turns:    nil,
			expected: []Entry{},
		},
		{
			name:  "order preserved, missing sides skipped",
			turns: []model.DialogueTurn{{A: "x", B: "y"}, {A: "z"}},
			expected: []Entry{
				{Text: "x", Voice: "va", DialogueIndex: 0, Speaker: model.SpeakerA},
				{Text: "y", Voice: "vb", DialogueIndex: 0, Speaker: model.SpeakerB},
				{Text: "z", Voice: "va", DialogueIndex: 1, Speaker: model.SpeakerA},
			},
		},
		{
			name:  "empty turn contributes nothing",
			turns: []model.DialogueTurn{{}, {B: "b only"}, {A: "  "}},
			expected: []Entry{
				{Text: "b only", Voice: "vb", DialogueIndex: 1, Speaker: model.SpeakerB},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Build(tc.turns, "va", "vb"))
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	turns := []model.DialogueTurn{{A: "1", B: "2"}, {B: "3"}, {A: "4", B: "5"}}

	require.Equal(t, Build(turns, "va", "vb"), Build(turns, "va", "vb"))
}

func TestBuildRebindsVoiceB(t *testing.T) {
	turns := []model.DialogueTurn{{A: "x", B: "y"}, {A: "z", B: "w"}}
	before := Build(turns, "va", "vb")
	after := Build(turns, "va", "vb2")

	require.Len(t, after, len(before))

	for i := range before {
		require.Equal(t, before[i].Text, after[i].Text, "text of entry %d", i)
		require.Equal(t, before[i].Speaker, after[i].Speaker, "speaker of entry %d", i)

		if after[i].Speaker == model.SpeakerB {
			require.Equal(t, "vb2", after[i].Voice, "voice of entry %d", i)
		} else {
			require.Equal(t, before[i].Voice, after[i].Voice, "voice of entry %d", i)
		}
	}
}

func TestFirstIndexOf(t *testing.T) {
	entries := Build([]model.DialogueTurn{{A: "x", B: "y"}, {}, {A: "z"}}, "va", "vb")

	require.Equal(t, 0, FirstIndexOf(entries, 0))
	require.Equal(t, 2, FirstIndexOf(entries, 1), "empty turn falls through to the next one")
	require.Equal(t, 2, FirstIndexOf(entries, 2))
	require.Equal(t, -1, FirstIndexOf(entries, 3))
	require.Equal(t, -1, FirstIndexOf(nil, 0))
}

func TestIndexOfTurn(t *testing.T) {
	entries := Build([]model.DialogueTurn{{A: "x", B: "y"}, {}, {B: "z"}}, "va", "vb")

	require.Equal(t, 0, IndexOfTurn(entries, 0))
	require.Equal(t, -1, IndexOfTurn(entries, 1), "empty turn")
	require.Equal(t, 2, IndexOfTurn(entries, 2))
	require.Equal(t, -1, IndexOfTurn(entries, 3))
}
