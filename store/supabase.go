package store

import (
	"context"
	"fmt"
	"time"

	"newsreel/types"

	postgrest "github.com/supabase-community/postgrest-go"
	supabase "github.com/supabase-community/supabase-go"
)

// Supabase is the persistence gateway over the content store's news table.
// URL is the conflict key: writing an existing URL updates the row in place.
//
// Methods take a context for interface symmetry, but this postgrest client
// version executes requests without one, so cancellation does not propagate
// to in-flight queries.
type Supabase struct {
	client *supabase.Client
	table  string
}

// Config holds Supabase project credentials.
type Config struct {
	URL   string
	Key   string
	Table string
}

// New connects the gateway. The table defaults to "news".
func New(cfg Config) (*Supabase, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}

	client, err := supabase.NewClient(cfg.URL, cfg.Key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("initialize supabase client: %w", err)
	}

	table := cfg.Table
	if table == "" {
		table = "news"
	}

	return &Supabase{client: client, table: table}, nil
}

// row mirrors the news table columns. Category and AISummary stay null
// until enrichment fills them.
type row struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	Author      string     `json:"author"`
	PublishedAt *time.Time `json:"published_at"`
	ImageURL    string     `json:"image_url"`
	Category    *string    `json:"category"`
	AISummary   *string    `json:"ai_summary"`
}

func toRow(a types.Article) row {
	r := row{
		Title:       a.Title,
		Description: a.Description,
		URL:         a.URL,
		Source:      a.Source,
		Author:      a.Author,
		PublishedAt: a.PublishedAt,
		ImageURL:    a.ImageURL,
	}
	if a.Category != "" {
		r.Category = &a.Category
	}
	if a.AISummary != "" {
		r.AISummary = &a.AISummary
	}
	return r
}

func fromRow(r row) types.Article {
	a := types.Article{
		Title:       r.Title,
		Description: r.Description,
		URL:         r.URL,
		Source:      r.Source,
		Author:      r.Author,
		PublishedAt: r.PublishedAt,
		ImageURL:    r.ImageURL,
	}
	if r.Category != nil {
		a.Category = *r.Category
	}
	if r.AISummary != nil {
		a.AISummary = *r.AISummary
	}
	return a
}

// Upsert writes the articles keyed by URL. The whole batch either lands or
// fails together; the caller treats a failure as non-fatal for the run.
func (s *Supabase) Upsert(ctx context.Context, articles []types.Article) error {
	if len(articles) == 0 {
		return nil
	}

	rows := make([]row, len(articles))
	for i, a := range articles {
		rows[i] = toRow(a)
	}

	_, _, err := s.client.From(s.table).Upsert(rows, "url", "", "").Execute()
	if err != nil {
		return fmt.Errorf("upsert %d articles: %w", len(rows), err)
	}
	return nil
}

// MissingSummary returns the most recently published articles that still
// lack an AI summary.
func (s *Supabase) MissingSummary(ctx context.Context, limit int) ([]types.Article, error) {
	var rows []row
	_, err := s.client.From(s.table).
		Select("*", "", false).
		Is("ai_summary", "null").
		Order("published_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("select missing summaries: %w", err)
	}
	return rowsToArticles(rows), nil
}

// Recent returns the newest articles by published timestamp.
func (s *Supabase) Recent(ctx context.Context, limit int) ([]types.Article, error) {
	var rows []row
	_, err := s.client.From(s.table).
		Select("*", "", false).
		Order("published_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("select recent articles: %w", err)
	}
	return rowsToArticles(rows), nil
}

// Count reports the total number of stored articles for the run summary.
func (s *Supabase) Count(ctx context.Context) (int, error) {
	_, count, err := s.client.From(s.table).
		Select("url", "exact", true).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return int(count), nil
}

func rowsToArticles(rows []row) []types.Article {
	articles := make([]types.Article, len(rows))
	for i, r := range rows {
		articles[i] = fromRow(r)
	}
	return articles
}
