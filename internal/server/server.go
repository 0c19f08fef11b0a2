package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/mgoltzsche/dialogue-player/internal/model"
	"github.com/mgoltzsche/dialogue-player/internal/player"
	"github.com/mgoltzsche/dialogue-player/internal/summary"
	"github.com/mgoltzsche/dialogue-player/pkg/config"
)

const maxRequestBodySize = 1 << 20

type VoiceCatalog interface {
	Voices(ctx context.Context) ([]model.Voice, error)
}

type playerResponse struct {
	ID     string       `json:"id"`
	Status model.Status `json:"status"`
}

type createPlayerRequest struct {
	config.Voices
	Dialogues []model.DialogueTurn `json:"dialogues,omitempty"`
}

type command func(c *player.Controller) error

var commands = map[string]command{
	"play": func(c *player.Controller) error {
		return c.Play()
	},
	"pause": func(c *player.Controller) error {
		c.Pause()
		return nil
	},
	"stop": func(c *player.Controller) error {
		c.Stop()
		return nil
	},
	"next": func(c *player.Controller) error {
		c.Next()
		return nil
	},
	"previous": func(c *player.Controller) error {
		c.Previous()
		return nil
	},
}

func AddRoutes(mux *http.ServeMux, players *Players, voices VoiceCatalog) {
	mux.HandleFunc("GET /voices", func(w http.ResponseWriter, req *http.Request) {
		list, err := voices.Voices(req.Context())
		if err != nil {
			err = fmt.Errorf("list voices: %w", err)
			slog.Error(err.Error())
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusOK, list)
	})

	mux.HandleFunc("GET /players", func(w http.ResponseWriter, req *http.Request) {
		list := []playerResponse{}

		for _, id := range players.IDs() {
			if c, ok := players.Get(id); ok {
				list = append(list, playerResponse{ID: id, Status: c.Status()})
			}
		}

		writeJSON(w, http.StatusOK, list)
	})

	mux.HandleFunc("POST /players", func(w http.ResponseWriter, req *http.Request) {
		var body createPlayerRequest

		err := decodeOptionalJSON(w, req, &body)
		if err != nil {
			badRequest(w, err)
			return
		}

		id, c := players.Create(body.VoiceA, body.VoiceB)
		if len(body.Dialogues) > 0 {
			c.SetDialogues(body.Dialogues)
		}

		w.Header().Set("Location", "/players/"+id)
		writeJSON(w, http.StatusCreated, playerResponse{ID: id, Status: c.Status()})
	})

	mux.HandleFunc("GET /players/{id}", withPlayer(players, func(w http.ResponseWriter, req *http.Request, c *player.Controller) {
		writeJSON(w, http.StatusOK, playerResponse{ID: req.PathValue("id"), Status: c.Status()})
	}))

	mux.HandleFunc("DELETE /players/{id}", func(w http.ResponseWriter, req *http.Request) {
		if !players.Delete(req.PathValue("id")) {
			http.NotFound(w, req)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /players/{id}/queue", withPlayer(players, func(w http.ResponseWriter, req *http.Request, c *player.Controller) {
		writeJSON(w, http.StatusOK, c.Queue())
	}))

	mux.HandleFunc("PUT /players/{id}/dialogues", withPlayer(players, func(w http.ResponseWriter, req *http.Request, c *player.Controller) {
		b, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxRequestBodySize))
		if err != nil {
			badRequest(w, fmt.Errorf("read request body: %w", err))
			return
		}

		turns, err := model.ParseDialogues(b)
		if err != nil {
			badRequest(w, err)
			return
		}

		c.SetDialogues(turns)
		writeStatus(w, req, c)
	}))

	mux.HandleFunc("PUT /players/{id}/voices", withPlayer(players, func(w http.ResponseWriter, req *http.Request, c *player.Controller) {
		var voices config.Voices

		err := decodeOptionalJSON(w, req, &voices)
		if err != nil {
			badRequest(w, err)
			return
		}

		if voices.VoiceA == "" || voices.VoiceB == "" {
			badRequest(w, errors.New("both voiceA and voiceB must be specified"))
			return
		}

		c.SetVoices(voices.VoiceA, voices.VoiceB)
		writeStatus(w, req, c)
	}))

	mux.HandleFunc("POST /players/{id}/seek", withPlayer(players, func(w http.ResponseWriter, req *http.Request, c *player.Controller) {
		percent, err := strconv.ParseFloat(req.URL.Query().Get("percent"), 64)
		if err != nil {
			badRequest(w, fmt.Errorf("invalid percent query parameter: %w", err))
			return
		}

		if math.IsNaN(percent) || math.IsInf(percent, 0) {
			badRequest(w, fmt.Errorf("invalid percent query parameter %q: not a finite number", req.URL.Query().Get("percent")))
			return
		}

		c.Seek(percent)
		writeStatus(w, req, c)
	}))

	mux.HandleFunc("POST /players/{id}/{command}", withPlayer(players, func(w http.ResponseWriter, req *http.Request, c *player.Controller) {
		cmd, ok := commands[req.PathValue("command")]
		if !ok {
			http.NotFound(w, req)
			return
		}

		err := cmd(c)
		if err != nil {
			writeError(w, err)
			return
		}

		writeStatus(w, req, c)
	}))

	mux.HandleFunc("GET /players/{id}/events", withPlayer(players, streamStatus))

	mux.HandleFunc("POST /summaries/render", func(w http.ResponseWriter, req *http.Request) {
		b, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxRequestBodySize))
		if err != nil {
			badRequest(w, fmt.Errorf("read request body: %w", err))
			return
		}

		writeJSON(w, http.StatusOK, summary.Render(string(b)))
	})
}

func withPlayer(players *Players, handler func(http.ResponseWriter, *http.Request, *player.Controller)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		c, ok := players.Get(req.PathValue("id"))
		if !ok {
			http.Error(w, fmt.Sprintf("player %q not found", req.PathValue("id")), http.StatusNotFound)
			return
		}

		handler(w, req, c)
	}
}

// streamStatus sends the current status followed by every status change
// as JSON websocket messages until the client disconnects or the player is deleted.
func streamStatus(w http.ResponseWriter, req *http.Request, c *player.Controller) {
	conn, err := websocket.Accept(w, req, nil)
	if err != nil {
		slog.Warn(fmt.Sprintf("accept websocket connection: %s", err))
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(req.Context())
	s := c.Subscribe(ctx)
	defer s.Stop()

	enc := newStatusEncoder(ctx, conn)

	err = enc.Send(c.Status())
	if err != nil {
		slog.Debug(fmt.Sprintf("send status: %s", err))
		return
	}

	for status := range s.ResultChan() {
		err = enc.Send(status)
		if err != nil {
			slog.Debug(fmt.Sprintf("send status: %s", err))
			return
		}
	}

	if ctx.Err() == nil {
		_ = conn.Close(websocket.StatusGoingAway, "player deleted")
	}
}

func decodeOptionalJSON(w http.ResponseWriter, req *http.Request, v any) error {
	b, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxRequestBodySize))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}

	if len(b) == 0 {
		return nil
	}

	err = json.Unmarshal(b, v)
	if err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}

	return nil
}

func writeStatus(w http.ResponseWriter, req *http.Request, c *player.Controller) {
	writeJSON(w, http.StatusOK, playerResponse{ID: req.PathValue("id"), Status: c.Status()})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, player.ErrQueueEmpty):
		status = http.StatusConflict
	case errors.Is(err, player.ErrClosed):
		status = http.StatusNotFound
	}

	http.Error(w, err.Error(), status)
}

func badRequest(w http.ResponseWriter, err error) {
	slog.Debug(fmt.Sprintf("bad request: %s", err))
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Debug(fmt.Sprintf("write response: %s", err))
	}
}
