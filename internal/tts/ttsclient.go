package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mgoltzsche/dialogue-player/internal/audio"
	"github.com/mgoltzsche/dialogue-player/internal/model"
)

// ErrEmptyAudio is returned when the synthesis service responded successfully without audio.
var ErrEmptyAudio = audio.ErrEmptyAudio

// RequestError is returned when the synthesis service responded with a non-2xx status.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("synthesis server responded with %d", e.StatusCode)
	}

	return fmt.Sprintf("synthesis server responded with %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	URL        string
	SpeechPath string
	VoicesPath string
	Client     *http.Client
	APIKey     string
}

type synthesisRequest struct {
	Text     string `json:"text"`
	Voice    string `json:"voice"`
	Language string `json:"language"`
}

// Synthesize requests speech audio for the given text.
func (c *Client) Synthesize(ctx context.Context, text string, voice model.VoiceID, language string) ([]byte, error) {
	body, err := json.Marshal(synthesisRequest{
		Text:     text,
		Voice:    voice,
		Language: language,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal speech synthesis params: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL+c.speechPath(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build speech synthesis request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/wav")

	resp, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech synthesis response body: %w", err)
	}

	if len(b) == 0 {
		return nil, ErrEmptyAudio
	}

	return b, nil
}

// Voices fetches the voice catalog.
func (c *Client) Voices(ctx context.Context) ([]model.Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL+c.voicesPath(), nil)
	if err != nil {
		return nil, fmt.Errorf("build voices request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("get voices: %w", err)
	}
	defer resp.Body.Close()

	voices := []model.Voice{}

	err = json.NewDecoder(resp.Body).Decode(&voices)
	if err != nil {
		return nil, fmt.Errorf("decode voices: %w", err)
	}

	return voices, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()

		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return nil, &RequestError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
		}
	}

	return resp, nil
}

func (c *Client) speechPath() string {
	if c.SpeechPath == "" {
		return "/api/tts"
	}

	return c.SpeechPath
}

func (c *Client) voicesPath() string {
	if c.VoicesPath == "" {
		return "/api/tts/voices"
	}

	return c.VoicesPath
}
