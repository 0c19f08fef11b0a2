package soundgen

import (
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"time"
	"unicode/utf8"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

// Generator synthesizes sine tones as 16 bit mono RIFF wave data.
// It stands in for a real speech synthesis service during development and tests.
type Generator struct {
	SampleRate  int
	RuneLength  time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration
}

// Tone generates a wave file containing a sine tone.
func (g *Generator) Tone(frequency float64, duration time.Duration) ([]byte, error) {
	sampleRate := g.sampleRate()
	data := make([]int, int(math.Ceil(float64(duration)*float64(sampleRate)/float64(time.Second))))
	for i := range data {
		phase := frequency * float64(i) / float64(sampleRate)

		data[i] = int(math.Sin(2*math.Pi*phase) * 16383)
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		Data:           data,
		SourceBitDepth: 16,
	}

	wavFile := &writerseeker.WriterSeeker{}
	encoder := wav.NewEncoder(wavFile, buf.Format.SampleRate, 16, 1, 1)

	err := encoder.Write(buf)
	if err != nil {
		return nil, fmt.Errorf("write wav: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close wav encoder: %w", err)
	}

	b, err := io.ReadAll(wavFile.Reader())
	if err != nil {
		return nil, fmt.Errorf("read generated wav: %w", err)
	}

	return b, nil
}

// Speech generates a tone whose length is proportional to the text length and
// whose pitch is derived from the voice.
func (g *Generator) Speech(text, voice string) ([]byte, error) {
	return g.Tone(voiceFrequency(voice), g.SpeechDuration(text))
}

func (g *Generator) SpeechDuration(text string) time.Duration {
	runeLength := g.RuneLength
	if runeLength <= 0 {
		runeLength = 60 * time.Millisecond
	}

	d := time.Duration(utf8.RuneCountInString(text)) * runeLength

	if d < g.MinDuration {
		d = g.MinDuration
	}

	if g.MaxDuration > 0 && d > g.MaxDuration {
		d = g.MaxDuration
	}

	return d
}

func (g *Generator) sampleRate() int {
	if g.SampleRate <= 0 {
		return 16000
	}

	return g.SampleRate
}

func voiceFrequency(voice string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(voice))

	return 220 + float64(h.Sum32()%440)
}
