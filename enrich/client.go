package enrich

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"newsreel/types"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

const chatTimeout = 60 * time.Second

// CohereClient talks to the Cohere chat API for classification,
// summarization, and structured script generation.
type CohereClient struct {
	client *cohereclient.Client
	model  string
}

// NewCohereClient builds a chat client. The HTTP client forces HTTP/1.1
// to avoid HTTP/2 protocol errors against the Cohere edge.
func NewCohereClient(apiKey, model string) (*CohereClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("cohere api key is required")
	}
	if model == "" {
		model = "command-r"
	}

	httpClient := &http.Client{
		Timeout: chatTimeout,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}

	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &CohereClient{client: client, model: model}, nil
}

func (c *CohereClient) chat(ctx context.Context, prompt string, temperature float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message:     prompt,
		Model:       &c.model,
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("cohere chat: %w", err)
	}
	if resp == nil {
		return "", errors.New("cohere chat returned empty response")
	}
	return strings.TrimSpace(resp.Text), nil
}

// Classify returns one label from the closed category set.
func (c *CohereClient) Classify(ctx context.Context, title, description string) (string, error) {
	answer, err := c.chat(ctx, classifyPrompt(title, description), 0.2)
	if err != nil {
		return "", err
	}
	return NormalizeCategory(answer), nil
}

// Summarize returns an oral-style narration summary for the article.
func (c *CohereClient) Summarize(ctx context.Context, title, description string) (string, error) {
	return c.chat(ctx, summaryPrompt(title, description), 0.7)
}

// SegmentScript asks for a structured multi-segment narration script and
// parses the expected JSON array of {text, image_url, duration} triples.
func (c *CohereClient) SegmentScript(ctx context.Context, title, description string) ([]types.NarrationSegment, error) {
	answer, err := c.chat(ctx, scriptPrompt(title, description), 0.5)
	if err != nil {
		return nil, err
	}

	segments, err := parseScript(answer)
	if err != nil {
		return nil, err
	}
	return segments, nil
}

// parseScript tolerates models wrapping the JSON array in prose or fences.
func parseScript(answer string) ([]types.NarrationSegment, error) {
	start := strings.IndexByte(answer, '[')
	end := strings.LastIndexByte(answer, ']')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("script response contains no JSON array")
	}

	var segments []types.NarrationSegment
	if err := json.Unmarshal([]byte(answer[start:end+1]), &segments); err != nil {
		return nil, fmt.Errorf("parse script JSON: %w", err)
	}

	kept := segments[:0]
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		kept = append(kept, seg)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("script response contains no usable segments")
	}
	return kept, nil
}
