package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"newsreel/types"
)

const newsAPITimeout = 15 * time.Second

// NewsAPIClient fetches article metadata from a NewsAPI-compatible endpoint.
type NewsAPIClient struct {
	endpoint string
	apiKey   string
	language string
	pageSize int
	category string
	keyword  string
	client   *http.Client
}

// NewsAPIOptions narrows the top-headlines query.
type NewsAPIOptions struct {
	Endpoint string
	APIKey   string
	Language string
	PageSize int
	Category string
	Keyword  string
}

// NewNewsAPIClient builds a client from options.
func NewNewsAPIClient(opts NewsAPIOptions) *NewsAPIClient {
	return &NewsAPIClient{
		endpoint: opts.Endpoint,
		apiKey:   opts.APIKey,
		language: opts.Language,
		pageSize: opts.PageSize,
		category: opts.Category,
		keyword:  opts.Keyword,
		client:   &http.Client{Timeout: newsAPITimeout},
	}
}

// wire shapes of the NewsAPI top-headlines response
type newsAPIResponse struct {
	Status       string           `json:"status"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

// Fetch retrieves the current headlines and normalizes them into Articles.
func (c *NewsAPIClient) Fetch(ctx context.Context) ([]types.Article, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	if c.language != "" {
		q.Set("language", c.language)
	}
	if c.pageSize > 0 {
		q.Set("pageSize", fmt.Sprintf("%d", c.pageSize))
	}
	if c.category != "" {
		q.Set("category", c.category)
	}
	if c.keyword != "" {
		q.Set("q", c.keyword)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch headlines: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news api error: %s", resp.Status)
	}

	var payload newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode headlines: %w", err)
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("news api status %q: %s", payload.Status, payload.Message)
	}

	articles := make([]types.Article, 0, len(payload.Articles))
	for _, record := range payload.Articles {
		articles = append(articles, normalizeNewsAPI(record, c.language))
	}
	return articles, nil
}
