package tts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mgoltzsche/dialogue-player/internal/audio"
	"github.com/mgoltzsche/dialogue-player/internal/model"
)

type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice model.VoiceID, language string) ([]byte, error)
}

type Output interface {
	Open(waveData []byte) (audio.Handle, error)
}

// Fetcher turns text into playing audio.
// It owns the single active audio handle: starting a new one always
// releases the previous one first.
type Fetcher struct {
	Service Synthesizer
	Output  Output

	mutex   sync.Mutex
	current audio.Handle
}

// Speak releases the active audio, synthesizes the text and starts playing it.
// It returns once playback has begun.
func (f *Fetcher) Speak(ctx context.Context, text string, voice model.VoiceID, language string) (audio.Handle, error) {
	f.Release()

	b, err := f.Fetch(ctx, text, voice, language)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return f.Start(b)
}

// Fetch synthesizes the given text without touching the active audio.
func (f *Fetcher) Fetch(ctx context.Context, text string, voice model.VoiceID, language string) ([]byte, error) {
	slog.Debug(fmt.Sprintf("synthesizing speech: voice=%s language=%s text=%q", voice, language, text))

	b, err := f.Service.Synthesize(ctx, text, voice, language)
	if err != nil {
		return nil, err
	}

	if len(b) == 0 {
		return nil, ErrEmptyAudio
	}

	return b, nil
}

// Start releases the active audio and starts playing the given wave data.
func (f *Fetcher) Start(waveData []byte) (audio.Handle, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.releaseCurrent()

	h, err := f.Output.Open(waveData)
	if err != nil {
		return nil, fmt.Errorf("open speech audio: %w", err)
	}

	err = h.Play()
	if err != nil {
		h.Release()
		return nil, fmt.Errorf("play speech audio: %w", err)
	}

	f.current = h

	return h, nil
}

// Current returns the active audio handle or nil.
func (f *Fetcher) Current() audio.Handle {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	return f.current
}

// Release pauses the active audio and frees its buffer.
func (f *Fetcher) Release() {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.releaseCurrent()
}

func (f *Fetcher) releaseCurrent() {
	if f.current == nil {
		return
	}

	f.current.Pause()
	f.current.Release()
	f.current = nil
}
