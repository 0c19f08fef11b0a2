package server

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/mgoltzsche/dialogue-player/internal/model"
	"github.com/mgoltzsche/dialogue-player/internal/player"
)

// Players is a registry of independent dialogue players.
// Each player owns its own speech fetcher and thereby its own audio handle.
type Players struct {
	cfg       player.Config
	newSpeech func() player.Speech
	players   map[string]*player.Controller
	mutex     sync.Mutex
}

func NewPlayers(cfg player.Config, newSpeech func() player.Speech) *Players {
	return &Players{
		cfg:       cfg,
		newSpeech: newSpeech,
		players:   map[string]*player.Controller{},
	}
}

// Create registers a new player.
// Empty voices fall back to the configured defaults.
func (r *Players) Create(voiceA, voiceB model.VoiceID) (string, *player.Controller) {
	cfg := r.cfg
	if voiceA != "" {
		cfg.VoiceA = voiceA
	}

	if voiceB != "" {
		cfg.VoiceB = voiceB
	}

	id := uuid.NewString()
	c := player.NewController(r.newSpeech(), cfg)

	r.mutex.Lock()
	r.players[id] = c
	r.mutex.Unlock()

	slog.Info(fmt.Sprintf("created player %s", id))

	return id, c
}

func (r *Players) Get(id string) (*player.Controller, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	c, ok := r.players[id]

	return c, ok
}

// IDs returns the sorted ids of all registered players.
func (r *Players) IDs() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ids := make([]string, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

// Delete closes and unregisters a player.
func (r *Players) Delete(id string) bool {
	r.mutex.Lock()
	c, ok := r.players[id]
	delete(r.players, id)
	r.mutex.Unlock()

	if ok {
		c.Close()
		slog.Info(fmt.Sprintf("deleted player %s", id))
	}

	return ok
}

// Close closes all players.
func (r *Players) Close() {
	r.mutex.Lock()
	players := r.players
	r.players = map[string]*player.Controller{}
	r.mutex.Unlock()

	for _, c := range players {
		c.Close()
	}
}
