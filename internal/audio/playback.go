package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrReleased = errors.New("audio released")
	ErrPlayback = errors.New("audio playback failed")
)

// Handle is a single playable audio resource.
// Done is closed once playback completed, failed or the handle was released.
// Err returns nil after normal completion.
type Handle interface {
	Play() error
	Pause()
	Seek(pos time.Duration)
	Position() time.Duration
	Duration() time.Duration
	Playing() bool
	Done() <-chan struct{}
	Err() error
	Release()
}

// Stream receives interleaved samples.
// Write is expected to block roughly for the duration of the written audio.
type Stream interface {
	Write(samples []int16) error
	Close() error
}

var _ Handle = &Playback{}

// Playback plays PCM audio chunk-wise into a Stream and supports pausing and seeking.
type Playback struct {
	mu          sync.Mutex
	cond        *sync.Cond
	pcm         *PCM
	stream      Stream
	chunkFrames int
	channels    int
	sampleRate  int
	duration    time.Duration
	pos         int
	started     bool
	paused      bool
	released    bool
	finished    bool
	err         error
	done        chan struct{}
}

func NewPlayback(pcm *PCM, stream Stream, chunkFrames int) *Playback {
	if chunkFrames <= 0 {
		chunkFrames = pcm.SampleRate / 50
		if chunkFrames <= 0 {
			chunkFrames = 1
		}
	}

	p := &Playback{
		pcm:         pcm,
		stream:      stream,
		chunkFrames: chunkFrames,
		channels:    pcm.Channels,
		sampleRate:  pcm.SampleRate,
		duration:    pcm.Duration(),
		done:        make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	return p
}

// Play starts playback or resumes it after Pause.
func (p *Playback) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released {
		return ErrReleased
	}

	if p.finished {
		return p.err
	}

	p.paused = false

	if !p.started {
		p.started = true
		go p.run()
	} else {
		p.cond.Broadcast()
	}

	return nil
}

func (p *Playback) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.finished && !p.released {
		p.paused = true
	}
}

func (p *Playback) Seek(pos time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pos < 0 {
		pos = 0
	}

	if pos > p.duration {
		pos = p.duration
	}

	p.pos = int(int64(pos) * int64(p.sampleRate) / int64(time.Second))
}

func (p *Playback) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sampleRate == 0 {
		return 0
	}

	pos := time.Duration(p.pos) * time.Second / time.Duration(p.sampleRate)
	if pos > p.duration {
		pos = p.duration
	}

	return pos
}

func (p *Playback) Duration() time.Duration {
	return p.duration
}

func (p *Playback) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.started && !p.paused && !p.finished && !p.released
}

func (p *Playback) Done() <-chan struct{} {
	return p.done
}

func (p *Playback) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}

// Release stops playback and frees the sample buffer.
func (p *Playback) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released {
		return
	}

	p.released = true
	p.pcm = nil
	p.cond.Broadcast()

	if !p.started && !p.finished {
		// run() never started, so it cannot close the stream and done channel
		p.finished = true
		p.err = ErrReleased
		_ = p.stream.Close()
		close(p.done)
	}
}

func (p *Playback) run() {
	err := p.writeChunks()

	if cerr := p.stream.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("%w: close audio stream: %w", ErrPlayback, cerr)
	}

	p.mu.Lock()
	if p.released {
		err = ErrReleased
	}
	p.err = err
	p.finished = true
	p.pcm = nil
	p.mu.Unlock()

	close(p.done)
}

func (p *Playback) writeChunks() error {
	chunk := make([]int16, p.chunkFrames*p.channels)

	for {
		p.mu.Lock()

		for p.paused && !p.released {
			p.cond.Wait()
		}

		if p.released {
			p.mu.Unlock()
			return ErrReleased
		}

		total := p.pcm.Frames()
		if p.pos >= total {
			p.mu.Unlock()
			return nil
		}

		end := min(p.pos+p.chunkFrames, total)
		n := copy(chunk, p.pcm.Samples[p.pos*p.channels:end*p.channels])
		p.pos = end

		p.mu.Unlock()

		err := p.stream.Write(chunk[:n])
		if err != nil {
			return fmt.Errorf("%w: write audio stream: %w", ErrPlayback, err)
		}
	}
}
