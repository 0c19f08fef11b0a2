package server

import (
	"context"
	"encoding/json"
	"io"

	"github.com/coder/websocket"
	"github.com/mgoltzsche/dialogue-player/internal/model"
)

var _ io.Writer = &websocketWriter{}

// websocketWriter writes every Write call as a single text message.
type websocketWriter struct {
	Ctx       context.Context
	Websocket *websocket.Conn
}

func (w *websocketWriter) Write(b []byte) (int, error) {
	err := w.Websocket.Write(w.Ctx, websocket.MessageText, b)
	if err != nil {
		return 0, err
	}

	return len(b), nil
}

// statusEncoder sends each status as one JSON message.
type statusEncoder struct {
	encoder *json.Encoder
}

func newStatusEncoder(ctx context.Context, conn *websocket.Conn) *statusEncoder {
	return &statusEncoder{
		encoder: json.NewEncoder(&websocketWriter{Ctx: ctx, Websocket: conn}),
	}
}

func (e *statusEncoder) Send(status model.Status) error {
	return e.encoder.Encode(status)
}
