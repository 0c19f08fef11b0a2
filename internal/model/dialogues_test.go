package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDialogues(t *testing.T) {
	for _, tc := range []struct {
		name     string
		input    string
		expected []DialogueTurn
	}{
		{
			name:     "empty",
			input:    "",
			expected: []DialogueTurn{},
		},
		{
			name:  "yaml list",
			input: "- a: Hola\n  b: Buenos días\n- a: ¿Qué tal?\n",
			expected: []DialogueTurn{
				{A: "Hola", B: "Buenos días"},
				{A: "¿Qué tal?"},
			},
		},
		{
			name:  "json list",
			input: `[{"a":"x","b":"y"},{"b":"z"}]`,
			expected: []DialogueTurn{
				{A: "x", B: "y"},
				{B: "z"},
			},
		},
		{
			name:  "document",
			input: "dialogues:\n- a: Bonjour\n",
			expected: []DialogueTurn{
				{A: "Bonjour"},
			},
		},
		{
			name:     "document without dialogues",
			input:    "title: x\n",
			expected: []DialogueTurn{},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			turns, err := ParseDialogues([]byte(tc.input))
			require.NoError(t, err)
			require.Equal(t, tc.expected, turns)
		})
	}
}

func TestParseDialoguesRejectsScalar(t *testing.T) {
	_, err := ParseDialogues([]byte("just text"))
	require.Error(t, err)
}

func TestLoadDialogues(t *testing.T) {
	file := filepath.Join(t.TempDir(), "dialogues.yaml")
	err := os.WriteFile(file, []byte("- a: Olá\n  b: Oi\n"), 0o600)
	require.NoError(t, err)

	turns, err := LoadDialogues(file)
	require.NoError(t, err)
	require.Equal(t, []DialogueTurn{{A: "Olá", B: "Oi"}}, turns)

	_, err = LoadDialogues(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
