package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusJSON(t *testing.T) {
	b, err := json.Marshal(Status{State: StatePaused, DialogueIndex: 2, Speaker: SpeakerB})
	require.NoError(t, err)
	require.Contains(t, string(b), `"state":"paused"`)
	require.Contains(t, string(b), `"speaker":"B"`)

	var status Status

	err = json.Unmarshal(b, &status)
	require.NoError(t, err)
	require.Equal(t, StatePaused, status.State)
	require.Equal(t, 2, status.DialogueIndex)
}

func TestPlaybackStateUnmarshalTextRejectsUnknown(t *testing.T) {
	var state PlaybackState

	err := state.UnmarshalText([]byte("rewinding"))
	require.Error(t, err)
}
