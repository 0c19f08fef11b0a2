package soundgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mgoltzsche/dialogue-player/internal/model"
)

// DefaultVoices is the catalog served by the fake synthesis handler.
var DefaultVoices = []model.Voice{
	{ID: "Lucia", Name: "Lucia (es-ES)", Gender: "Female"},
	{ID: "Sergio", Name: "Sergio (es-ES)", Gender: "Male"},
	{ID: "Joanna", Name: "Joanna (en-US)", Gender: "Female"},
	{ID: "Matthew", Name: "Matthew (en-US)", Gender: "Male"},
	{ID: "Lea", Name: "Léa (fr-FR)", Gender: "Female"},
	{ID: "Camila", Name: "Camila (pt-BR)", Gender: "Female"},
}

// Synthesize generates speech offline, standing in for the TTS client.
func (g *Generator) Synthesize(_ context.Context, text string, voice model.VoiceID, _ string) ([]byte, error) {
	if strings.TrimSpace(text) == "" || voice == "" {
		return nil, errors.New("text and voice must be specified")
	}

	return g.Speech(text, voice)
}

func (g *Generator) Voices(context.Context) ([]model.Voice, error) {
	return DefaultVoices, nil
}

type synthesisRequest struct {
	Text     string `json:"text"`
	Voice    string `json:"voice"`
	Language string `json:"language"`
}

// AddRoutes registers an offline synthesis service that answers with tones
// instead of speech.
func (g *Generator) AddRoutes(mux *http.ServeMux, speechPath, voicesPath string) {
	mux.HandleFunc("POST "+speechPath, g.serveSpeech)
	mux.HandleFunc("GET "+voicesPath, serveVoices)
}

func (g *Generator) serveSpeech(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()

	var r synthesisRequest

	err := json.NewDecoder(req.Body).Decode(&r)
	if err != nil {
		http.Error(w, fmt.Sprintf("decode synthesis request: %s", err), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(r.Text) == "" || r.Voice == "" {
		http.Error(w, "text and voice must be specified", http.StatusBadRequest)
		return
	}

	b, err := g.Speech(r.Text, r.Voice)
	if err != nil {
		slog.Error(fmt.Sprintf("fake synthesis: %s", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Debug(fmt.Sprintf("fake synthesis: voice=%s language=%s text=%q", r.Voice, r.Language, r.Text))

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func serveVoices(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(DefaultVoices)
}
