package audio

import (
	"context"
	"fmt"
	"time"
)

// NullOutput plays audio without a device, at the pace a device would.
// It serves headless setups.
type NullOutput struct {
	ChunkDuration time.Duration
}

func (o *NullOutput) Open(waveData []byte) (Handle, error) {
	pcm, err := DecodeWave(waveData)
	if err != nil {
		return nil, fmt.Errorf("decode speech audio: %w", err)
	}

	chunkDuration := o.ChunkDuration
	if chunkDuration <= 0 {
		chunkDuration = 40 * time.Millisecond
	}

	chunkFrames := int(int64(pcm.SampleRate) * int64(chunkDuration) / int64(time.Second))
	ctx, cancel := context.WithCancel(context.Background())

	return NewPlayback(pcm, &pacedStream{
		ctx:        ctx,
		cancel:     cancel,
		channels:   pcm.Channels,
		sampleRate: pcm.SampleRate,
	}, chunkFrames), nil
}

type pacedStream struct {
	ctx        context.Context
	cancel     context.CancelFunc
	channels   int
	sampleRate int
}

func (s *pacedStream) Write(samples []int16) error {
	frames := len(samples) / max(s.channels, 1)
	d := time.Duration(frames) * time.Second / time.Duration(max(s.sampleRate, 1))

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

func (s *pacedStream) Close() error {
	s.cancel()
	return nil
}
