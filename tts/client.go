// Package tts wraps the speech-synthesis collaborator.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const synthesisTimeout = 60 * time.Second

// Client synthesizes narration audio via an edge-tts compatible HTTP service.
type Client struct {
	endpoint   string
	voice      string
	httpClient *http.Client
}

// NewClient builds a client from the configured endpoint and voice.
func NewClient(endpoint, voice string) *Client {
	return &Client{
		endpoint:   endpoint,
		voice:      voice,
		httpClient: &http.Client{Timeout: synthesisTimeout},
	}
}

type synthesisRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// Synthesize posts the text and writes the returned audio to outputPath.
func (c *Client) Synthesize(ctx context.Context, text, outputPath string) error {
	if c.endpoint == "" {
		return fmt.Errorf("tts client misconfigured: empty endpoint")
	}

	body, err := json.Marshal(synthesisRequest{Text: text, Voice: c.voice})
	if err != nil {
		return fmt.Errorf("marshal tts payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("synthesize speech: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("tts error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write audio file: %w", err)
	}
	return nil
}
