package audio

import (
	"testing"
	"time"

	"github.com/mgoltzsche/dialogue-player/internal/soundgen"
	"github.com/stretchr/testify/require"
)

func TestNullOutputPlaysInRealTime(t *testing.T) {
	wave, err := (&soundgen.Generator{SampleRate: 16000}).Tone(440, 100*time.Millisecond)
	require.NoError(t, err)

	out := &NullOutput{ChunkDuration: 20 * time.Millisecond}

	h, err := out.Open(wave)
	require.NoError(t, err)
	require.Equal(t, 100*time.Millisecond, h.Duration())

	start := time.Now()

	err = h.Play()
	require.NoError(t, err)

	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("playback did not complete")
	}

	require.NoError(t, h.Err())
	require.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	require.Equal(t, 100*time.Millisecond, h.Position())
}

func TestNullOutputRelease(t *testing.T) {
	wave, err := (&soundgen.Generator{SampleRate: 16000}).Tone(440, 10*time.Second)
	require.NoError(t, err)

	out := &NullOutput{}

	h, err := out.Open(wave)
	require.NoError(t, err)

	err = h.Play()
	require.NoError(t, err)

	h.Release()

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("released playback did not terminate")
	}

	require.ErrorIs(t, h.Err(), ErrReleased)
}

func TestNullOutputRejectsInvalidAudio(t *testing.T) {
	_, err := (&NullOutput{}).Open([]byte("not a wave file"))
	require.Error(t, err)
}
