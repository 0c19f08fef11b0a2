package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

// Output opens playback handles on an audio output device.
// portaudio must be initialized before Open is called.
type Output struct {
	Device        string
	ChunkDuration time.Duration

	once   sync.Once
	device *portaudio.DeviceInfo
	err    error
}

func (o *Output) Open(waveData []byte) (Handle, error) {
	o.once.Do(func() {
		o.device, o.err = outputDevice(o.Device)
	})
	if o.err != nil {
		return nil, o.err
	}

	pcm, err := DecodeWave(waveData)
	if err != nil {
		return nil, fmt.Errorf("decode speech audio: %w", err)
	}

	pcm = pcm.Resample(int(o.device.DefaultSampleRate))

	chunkDuration := o.ChunkDuration
	if chunkDuration <= 0 {
		chunkDuration = 40 * time.Millisecond
	}

	chunkFrames := int(int64(pcm.SampleRate) * int64(chunkDuration) / int64(time.Second))

	stream, err := openPortaudioStream(o.device, pcm.Channels, pcm.SampleRate, chunkFrames)
	if err != nil {
		return nil, err
	}

	return NewPlayback(pcm, stream, chunkFrames), nil
}

type portaudioStream struct {
	stream *portaudio.Stream
	buf    []int16
}

func openPortaudioStream(device *portaudio.DeviceInfo, channels, sampleRate, framesPerBuffer int) (*portaudioStream, error) {
	s := &portaudioStream{
		buf: make([]int16, framesPerBuffer*channels),
	}

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: channels,
			Latency:  device.DefaultLowOutputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: framesPerBuffer,
	}, s.buf)
	if err != nil {
		return nil, fmt.Errorf("open audio output stream: %w", err)
	}

	err = stream.Start()
	if err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("start audio output stream: %w", err)
	}

	s.stream = stream

	return s, nil
}

func (s *portaudioStream) Write(samples []int16) error {
	n := copy(s.buf, samples)
	// zero-pad the buffer after short chunk
	for i := n; i < len(s.buf); i++ {
		s.buf[i] = 0
	}

	err := s.stream.Write()
	if err == portaudio.OutputUnderflowed {
		// happens after the stream was starved, e.g. while paused
		slog.Debug("audio output underflowed")
		return nil
	}

	return err
}

func (s *portaudioStream) Close() error {
	stopErr := s.stream.Stop()
	closeErr := s.stream.Close()

	if stopErr != nil {
		return fmt.Errorf("stop audio output stream: %w", stopErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close audio output stream: %w", closeErr)
	}

	return nil
}
