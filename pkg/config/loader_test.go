package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mgoltzsche/dialogue-player/internal/model"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
serverURL: https://tts.example.org
apiKey: secret
voiceB: Conchita
requestTimeout: 5s
progressInterval: 250
dialogues:
- a: Hola
  b: Buenos días
`))
	require.NoError(t, err)

	expected := Defaults()
	expected.ServerURL = "https://tts.example.org"
	expected.APIKey = "secret"
	expected.VoiceB = "Conchita"
	expected.RequestTimeout = Duration(5 * time.Second)
	expected.ProgressInterval = Duration(250 * time.Millisecond)
	expected.Dialogues = []model.DialogueTurn{{A: "Hola", B: "Buenos días"}}
	require.Equal(t, expected, cfg)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
}

func TestParseErrors(t *testing.T) {
	for _, c := range []struct {
		name  string
		input string
	}{
		{"unknown field", "voiceC: Hans"},
		{"invalid duration", "requestTimeout: soon"},
		{"invalid yaml", "serverURL: [unterminated"},
		{"wrong type", "dialogues: hello"},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.input))
			require.Error(t, err)
		})
	}
}

func TestFileFlag(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(file, []byte("language: en\n"), 0o600)
	require.NoError(t, err)

	cfg := Defaults()
	f := &FileFlag{Path: "/etc/dialogue-player/config.yaml", Target: &cfg}

	err = f.Set(file)
	require.NoError(t, err)
	require.True(t, f.Loaded)
	require.Equal(t, file, f.String())
	require.Equal(t, "en", cfg.Language)
	require.Equal(t, model.VoiceID("Lucia"), cfg.VoiceA, "default preserved")

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	err = f.Set(missing)
	require.ErrorContains(t, err, "load -config: read config")
	require.Equal(t, file, f.String(), "path of the last loaded file")
	require.Equal(t, "en", cfg.Language, "configuration kept after failure")

	err = f.Set("")
	require.ErrorContains(t, err, "empty config file path")
}
