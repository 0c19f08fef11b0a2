package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mgoltzsche/dialogue-player/internal/model"
)

type Configuration struct {
	ServerURL        string   `json:"serverURL"`
	APIKey           string   `json:"apiKey,omitempty"`
	SpeechPath       string   `json:"speechPath,omitempty"`
	VoicesPath       string   `json:"voicesPath,omitempty"`
	RequestTimeout   Duration `json:"requestTimeout,omitempty"`
	OutputDevice     string   `json:"outputDevice,omitempty"`
	Language         string   `json:"language,omitempty"`
	ProgressInterval Duration `json:"progressInterval,omitempty"`
	Voices
	Dialogues []model.DialogueTurn `json:"dialogues,omitempty"`
}

// Voices assigns a TTS voice to each speaker.
type Voices struct {
	VoiceA model.VoiceID `json:"voiceA,omitempty"`
	VoiceB model.VoiceID `json:"voiceB,omitempty"`
}

// Defaults returns the configuration used when no file is provided.
func Defaults() Configuration {
	return Configuration{
		ServerURL:        "http://localhost:8080",
		SpeechPath:       "/api/tts",
		VoicesPath:       "/api/tts/voices",
		RequestTimeout:   Duration(30 * time.Second),
		Language:         "es",
		ProgressInterval: Duration(100 * time.Millisecond),
		Voices: Voices{
			VoiceA: "Lucia",
			VoiceB: "Sergio",
		},
	}
}

// Duration is a time.Duration that is written as a string like "1m30s".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any

	err := json.Unmarshal(b, &v)
	if err != nil {
		return err
	}

	switch v := v.(type) {
	case float64:
		*d = Duration(time.Duration(v) * time.Millisecond)
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}

		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}

	return nil
}

// Set parses a flag value.
func (d *Duration) Set(s string) error {
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(parsed)

	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}
