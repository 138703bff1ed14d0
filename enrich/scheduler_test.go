package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"newsreel/config"
	"newsreel/types"
)

// countingClient tracks the in-flight high-water mark across calls.
type countingClient struct {
	inFlight    atomic.Int64
	highWater   atomic.Int64
	classifyErr error
	summaryErr  error
	delay       time.Duration

	mu    sync.Mutex
	calls []string
}

func (c *countingClient) track() func() {
	n := c.inFlight.Add(1)
	for {
		hw := c.highWater.Load()
		if n <= hw || c.highWater.CompareAndSwap(hw, n) {
			break
		}
	}
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	return func() { c.inFlight.Add(-1) }
}

func (c *countingClient) Classify(ctx context.Context, title, description string) (string, error) {
	defer c.track()()
	c.mu.Lock()
	c.calls = append(c.calls, "classify:"+title)
	c.mu.Unlock()
	if c.classifyErr != nil {
		return "", c.classifyErr
	}
	return "科技", nil
}

func (c *countingClient) Summarize(ctx context.Context, title, description string) (string, error) {
	defer c.track()()
	if c.summaryErr != nil {
		return "", c.summaryErr
	}
	return "摘要：" + title, nil
}

func makeArticles(n int) []types.Article {
	articles := make([]types.Article, n)
	for i := range articles {
		articles[i] = types.Article{
			Title: fmt.Sprintf("title-%d", i),
			URL:   fmt.Sprintf("https://example.com/%d", i),
		}
	}
	return articles
}

func TestSchedulerReturnsResultsInInputOrder(t *testing.T) {
	client := &countingClient{}
	s := NewScheduler(client, SchedulerConfig{Concurrency: 3, BatchSize: 4})

	articles := makeArticles(11)
	results := s.EnrichAll(context.Background(), articles)

	if len(results) != len(articles) {
		t.Fatalf("expected %d results, got %d", len(articles), len(results))
	}
	for i, r := range results {
		want := "摘要：" + articles[i].Title
		if r.Summary != want {
			t.Fatalf("result %d out of order: got %q want %q", i, r.Summary, want)
		}
		if r.Category != "科技" {
			t.Fatalf("result %d unexpected category %q", i, r.Category)
		}
	}
}

func TestSchedulerRespectsConcurrencyBudget(t *testing.T) {
	client := &countingClient{delay: 5 * time.Millisecond}
	s := NewScheduler(client, SchedulerConfig{Concurrency: 3, BatchSize: 8})

	s.EnrichAll(context.Background(), makeArticles(16))

	if hw := client.highWater.Load(); hw > 3 {
		t.Fatalf("observed %d concurrent calls, limit is 3", hw)
	}
}

func TestSchedulerClassifyFailureYieldsDefaultCategory(t *testing.T) {
	client := &countingClient{classifyErr: errors.New("rate limited")}
	s := NewScheduler(client, SchedulerConfig{Concurrency: 2, BatchSize: 4})

	articles := makeArticles(5)
	results := s.EnrichAll(context.Background(), articles)

	if len(results) != len(articles) {
		t.Fatalf("failure must not shrink the result set: got %d want %d", len(results), len(articles))
	}
	for i, r := range results {
		if r.Category != config.DefaultCategory {
			t.Fatalf("result %d: expected fallback category %q, got %q", i, config.DefaultCategory, r.Category)
		}
		if r.Summary == "" {
			t.Fatalf("result %d: summarization should still succeed", i)
		}
	}
}

func TestSchedulerSummaryFailureYieldsEmptySummary(t *testing.T) {
	client := &countingClient{summaryErr: errors.New("boom")}
	s := NewScheduler(client, SchedulerConfig{Concurrency: 2, BatchSize: 2})

	results := s.EnrichAll(context.Background(), makeArticles(3))

	for i, r := range results {
		if r.Summary != "" {
			t.Fatalf("result %d: expected empty summary on failure, got %q", i, r.Summary)
		}
		if r.Category == "" {
			t.Fatalf("result %d: category missing", i)
		}
	}
}

func TestNormalizeCategoryUnknownLabel(t *testing.T) {
	cases := map[string]string{
		"科技":        "科技",
		"分类：财经":     "财经",
		"sports":    config.DefaultCategory,
		"":          config.DefaultCategory,
		"这是一条体育新闻":  "体育",
		"完全未知的标签内容": config.DefaultCategory,
	}
	for input, want := range cases {
		if got := NormalizeCategory(input); got != want {
			t.Fatalf("NormalizeCategory(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNewSchedulerCooldownKeepsZero(t *testing.T) {
	s := NewScheduler(&countingClient{}, SchedulerConfig{Cooldown: 0})
	if s.cooldown != 0 {
		t.Fatalf("zero cooldown must be kept, got %v", s.cooldown)
	}

	s = NewScheduler(&countingClient{}, SchedulerConfig{Cooldown: -time.Second})
	if s.cooldown != config.EnrichmentCooldown {
		t.Fatalf("negative cooldown must pick the default, got %v", s.cooldown)
	}
}
