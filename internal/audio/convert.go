package audio

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-audio/wav"
	"github.com/gopxl/beep/v2"
)

var ErrEmptyAudio = errors.New("empty audio")

// PCM holds interleaved 16 bit samples.
type PCM struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

func (p *PCM) Frames() int {
	if p.Channels == 0 {
		return 0
	}

	return len(p.Samples) / p.Channels
}

func (p *PCM) Duration() time.Duration {
	if p.SampleRate == 0 {
		return 0
	}

	return time.Duration(p.Frames()) * time.Second / time.Duration(p.SampleRate)
}

// DecodeWave reads a RIFF wave file with 16 bit samples into memory.
func DecodeWave(waveData []byte) (*PCM, error) {
	if len(waveData) == 0 {
		return nil, ErrEmptyAudio
	}

	decoder := wav.NewDecoder(bytes.NewReader(waveData))
	decoder.ReadInfo()
	if err := decoder.Err(); err != nil {
		return nil, fmt.Errorf("read wave file headers: %w", err)
	}

	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid wave file")
	}

	if decoder.SampleBitDepth() != 16 {
		return nil, fmt.Errorf("wave data with unsupported bit depth of %d provided, expected 16", decoder.SampleBitDepth())
	}

	buffer, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read full pcm buffer: %w", err)
	}

	if len(buffer.Data) == 0 {
		return nil, ErrEmptyAudio
	}

	samples := make([]int16, len(buffer.Data))
	for i, sample := range buffer.Data {
		samples[i] = int16(sample)
	}

	return &PCM{
		Samples:    samples,
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
	}, nil
}

// Resample converts the audio to the given sample rate.
// Audio with more than two channels is reduced to its first two channels.
func (p *PCM) Resample(sampleRate int) *PCM {
	if sampleRate <= 0 || sampleRate == p.SampleRate || p.Frames() == 0 {
		return p
	}

	channels := min(p.Channels, 2)
	resampler := beep.Resample(resampleQuality, beep.SampleRate(p.SampleRate), beep.SampleRate(sampleRate), &pcmStreamer{pcm: p})
	out := make([]int16, 0, int(int64(p.Frames())*int64(sampleRate)/int64(p.SampleRate)+1)*channels)
	buf := make([][2]float64, 512)

	for {
		n, ok := resampler.Stream(buf)
		for _, frame := range buf[:n] {
			out = append(out, toInt16(frame[0]))
			if channels == 2 {
				out = append(out, toInt16(frame[1]))
			}
		}

		if !ok {
			break
		}
	}

	return &PCM{
		Samples:    out,
		SampleRate: sampleRate,
		Channels:   channels,
	}
}

const resampleQuality = 3

// pcmStreamer exposes PCM samples as a beep.Streamer.
type pcmStreamer struct {
	pcm *PCM
	pos int
}

func (s *pcmStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	channels := s.pcm.Channels
	frames := s.pcm.Frames()

	if s.pos >= frames {
		return 0, false
	}

	for n < len(samples) && s.pos < frames {
		i := s.pos * channels
		left := float64(s.pcm.Samples[i]) / 32768
		right := left

		if channels > 1 {
			right = float64(s.pcm.Samples[i+1]) / 32768
		}

		samples[n] = [2]float64{left, right}
		n++
		s.pos++
	}

	return n, true
}

func (s *pcmStreamer) Err() error {
	return nil
}

func toInt16(v float64) int16 {
	return int16(max(-32768, min(32767, math.Round(v*32768))))
}
