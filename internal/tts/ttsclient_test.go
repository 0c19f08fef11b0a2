package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mgoltzsche/dialogue-player/internal/soundgen"
	"github.com/stretchr/testify/require"
)

func TestClientSynthesize(t *testing.T) {
	var received synthesisRequest
	var method, path, contentType, authHeader string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		method = req.Method
		path = req.URL.Path
		contentType = req.Header.Get("Content-Type")
		authHeader = req.Header.Get("Authorization")

		err := json.NewDecoder(req.Body).Decode(&received)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		_, _ = w.Write([]byte("RIFF fake audio"))
	}))
	defer srv.Close()

	c := &Client{URL: srv.URL, SpeechPath: "/speech", APIKey: "secret", Client: srv.Client()}

	b, err := c.Synthesize(context.Background(), "¿Dónde está la biblioteca?", "Lucia", "es")
	require.NoError(t, err)
	require.Equal(t, "RIFF fake audio", string(b))
	require.Equal(t, synthesisRequest{Text: "¿Dónde está la biblioteca?", Voice: "Lucia", Language: "es"}, received)
	require.Equal(t, http.MethodPost, method, "method")
	require.Equal(t, "/speech", path, "path")
	require.Equal(t, "application/json", contentType, "content type")
	require.Equal(t, "Bearer secret", authHeader, "authorization header")
}

func TestClientSynthesizeErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "non-2xx status",
			status: http.StatusBadGateway,
			body:   `{"error":"polly unavailable"}`,
			check: func(t *testing.T, err error) {
				var reqErr *RequestError
				require.ErrorAs(t, err, &reqErr)
				require.Equal(t, http.StatusBadGateway, reqErr.StatusCode)
				require.Contains(t, reqErr.Message, "polly unavailable")
			},
		},
		{
			name:   "empty audio",
			status: http.StatusOK,
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrEmptyAudio)
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := &Client{URL: srv.URL, Client: srv.Client()}

			_, err := c.Synthesize(context.Background(), "hola", "Lucia", "es")
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestClientVoices(t *testing.T) {
	mux := http.NewServeMux()
	g := &soundgen.Generator{RuneLength: time.Millisecond}
	g.AddRoutes(mux, "/api/tts", "/api/tts/voices")
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := &Client{URL: srv.URL, Client: srv.Client()}

	voices, err := c.Voices(context.Background())
	require.NoError(t, err)
	require.Equal(t, soundgen.DefaultVoices, voices)

	b, err := c.Synthesize(context.Background(), "hello", "Joanna", "en")
	require.NoError(t, err)
	require.NotEmpty(t, b)
}

func TestClientVoicesError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := &Client{URL: srv.URL, Client: srv.Client()}

	_, err := c.Voices(context.Background())

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, http.StatusNotFound, reqErr.StatusCode)
}
