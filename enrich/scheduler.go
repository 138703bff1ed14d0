package enrich

import (
	"context"
	"log"
	"sync"
	"time"

	"newsreel/config"
	"newsreel/types"
)

// Client is the narrow surface of the AI collaborator the scheduler needs.
type Client interface {
	Classify(ctx context.Context, title, description string) (string, error)
	Summarize(ctx context.Context, title, description string) (string, error)
}

// Result is the best-effort enrichment outcome for one article.
// Category always holds a label (the default on failure); Summary stays
// empty when summarization failed so downstream synthesis can fall back.
type Result struct {
	Category string
	Summary  string
}

// Scheduler fans article enrichment out to the AI service under a
// two-level throttle: a counting permit pool caps in-flight calls, and a
// cooldown elapses between fixed-size batches. Results come back in input
// order and no single failure aborts the batch or the run.
type Scheduler struct {
	client      Client
	concurrency int
	batchSize   int
	cooldown    time.Duration
	permits     chan struct{}
}

// SchedulerConfig bounds the scheduler. Non-positive Concurrency and
// BatchSize pick the defaults. A zero Cooldown is kept (no wait between
// batches); only a negative value picks the default.
type SchedulerConfig struct {
	Concurrency int
	BatchSize   int
	Cooldown    time.Duration
}

// NewScheduler builds a scheduler over the given AI client.
func NewScheduler(client Client, cfg SchedulerConfig) *Scheduler {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = config.MaxConcurrentAICalls
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = config.EnrichmentBatchSize
	}
	if cfg.Cooldown < 0 {
		cfg.Cooldown = config.EnrichmentCooldown
	}

	return &Scheduler{
		client:      client,
		concurrency: cfg.Concurrency,
		batchSize:   cfg.BatchSize,
		cooldown:    cfg.Cooldown,
		permits:     make(chan struct{}, cfg.Concurrency),
	}
}

// EnrichAll returns exactly one Result per input article, index-aligned
// with the input slice.
func (s *Scheduler) EnrichAll(ctx context.Context, articles []types.Article) []Result {
	results := make([]Result, len(articles))

	for start := 0; start < len(articles); start += s.batchSize {
		end := start + s.batchSize
		if end > len(articles) {
			end = len(articles)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = s.enrichOne(ctx, articles[idx])
			}(i)
		}
		wg.Wait()

		if end < len(articles) {
			s.coolDown(ctx)
		}
	}

	return results
}

// enrichOne runs both enrichment calls for a single article, each under
// its own permit, and converts failures into fallbacks.
func (s *Scheduler) enrichOne(ctx context.Context, article types.Article) Result {
	result := Result{Category: config.DefaultCategory}

	s.acquire()
	category, err := s.client.Classify(ctx, article.Title, article.Description)
	s.release()
	if err != nil {
		log.Printf("[enrich] classify failed for %s: %v", article.URL, err)
	} else {
		result.Category = NormalizeCategory(category)
	}

	s.acquire()
	summary, err := s.client.Summarize(ctx, article.Title, article.Description)
	s.release()
	if err != nil {
		log.Printf("[enrich] summarize failed for %s: %v", article.URL, err)
	} else {
		result.Summary = summary
	}

	return result
}

func (s *Scheduler) acquire() { s.permits <- struct{}{} }
func (s *Scheduler) release() { <-s.permits }

func (s *Scheduler) coolDown(ctx context.Context) {
	if s.cooldown <= 0 {
		return
	}
	select {
	case <-time.After(s.cooldown):
	case <-ctx.Done():
	}
}
