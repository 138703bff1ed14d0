// Package pipeline wires the run: fetch, dedupe, enrich, persist, synthesize.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"newsreel/enrich"
	"newsreel/feed"
	"newsreel/notify"
	"newsreel/types"
)

// Source pulls article metadata from an upstream feed.
type Source interface {
	Fetch(ctx context.Context) ([]types.Article, error)
}

// Store is the content store boundary: upsert keyed by URL plus the
// filtered reads later stages need.
type Store interface {
	Upsert(ctx context.Context, articles []types.Article) error
	MissingSummary(ctx context.Context, limit int) ([]types.Article, error)
	Recent(ctx context.Context, limit int) ([]types.Article, error)
	Count(ctx context.Context) (int, error)
}

// Enricher returns one best-effort result per article, index-aligned.
type Enricher interface {
	EnrichAll(ctx context.Context, articles []types.Article) []enrich.Result
}

// SegmentPlanner converts an article into a non-empty narration plan.
type SegmentPlanner interface {
	Plan(ctx context.Context, article types.Article) []types.NarrationSegment
}

// VideoRenderer turns a planned article into one finished artifact.
type VideoRenderer interface {
	Render(ctx context.Context, article types.Article, segments []types.NarrationSegment, index int) (types.VideoArtifact, error)
}

// Notifier reports run boundaries; delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, title, body string)
}

// SeenCache skips articles already handled by a recent run.
type SeenCache interface {
	Seen(ctx context.Context, url string) bool
	Mark(ctx context.Context, url string)
}

// Publisher optionally ships a finished artifact somewhere external.
type Publisher interface {
	Publish(ctx context.Context, artifact types.VideoArtifact) error
}

// Pipeline holds the injected collaborators for one run. Seen and
// Publishers may be left empty.
type Pipeline struct {
	Sources    []Source
	Store      Store
	Enricher   Enricher
	Planner    SegmentPlanner
	Renderer   VideoRenderer
	Notifier   Notifier
	Seen       SeenCache
	Publishers []Publisher

	MaxVideos     int
	BackfillLimit int
}

// Run executes one batch end to end and returns the run report. Partial
// failure is the norm: a failing article loses its video or its enrichment
// fields, never the run.
func (p *Pipeline) Run(ctx context.Context) (types.RunReport, error) {
	var report types.RunReport

	fetched := p.fetchAll(ctx)
	report.Fetched = len(fetched)
	if len(fetched) == 0 {
		log.Printf("[pipeline] no articles fetched, aborting run")
		p.Notifier.Notify(ctx, "新闻抓取", "未获取到新闻数据")
		return report, nil
	}

	articles := feed.Deduplicate(fetched)
	report.Deduped = len(articles)
	log.Printf("[pipeline] %d articles after dedup (%d fetched)", len(articles), len(fetched))

	if p.Seen != nil {
		articles = p.dropSeen(ctx, articles)
	}

	results := p.Enricher.EnrichAll(ctx, articles)
	for i := range articles {
		articles[i].Category = results[i].Category
		articles[i].AISummary = results[i].Summary
		if results[i].Summary != "" {
			report.Enriched++
		}
	}
	log.Printf("[pipeline] enriched %d/%d articles", report.Enriched, len(articles))

	if err := p.Store.Upsert(ctx, articles); err != nil {
		log.Printf("[pipeline] store upsert failed: %v", err)
		report.Failures = append(report.Failures, fmt.Sprintf("store: %v", err))
	} else {
		report.Persisted = len(articles)
		if p.Seen != nil {
			for _, a := range articles {
				p.Seen.Mark(ctx, a.URL)
			}
		}
	}

	p.backfillSummaries(ctx, &report)

	if total, err := p.Store.Count(ctx); err == nil {
		report.StoreTotal = total
	} else {
		log.Printf("[pipeline] store count failed: %v", err)
	}

	p.synthesize(ctx, articles, &report)

	p.Notifier.Notify(ctx, "新闻抓取完成", notify.FormatRunReport(report.Persisted, report.StoreTotal))
	return report, nil
}

// fetchAll merges every source; a failing source is reported, not fatal,
// as long as another one delivers.
func (p *Pipeline) fetchAll(ctx context.Context) []types.Article {
	var all []types.Article
	for _, source := range p.Sources {
		articles, err := source.Fetch(ctx)
		if err != nil {
			log.Printf("[pipeline] source fetch failed: %v", err)
			continue
		}
		all = append(all, articles...)
	}
	return all
}

func (p *Pipeline) dropSeen(ctx context.Context, articles []types.Article) []types.Article {
	kept := articles[:0]
	for _, a := range articles {
		if p.Seen.Seen(ctx, a.URL) {
			continue
		}
		kept = append(kept, a)
	}
	if len(kept) < len(articles) {
		log.Printf("[pipeline] skipped %d articles seen in earlier runs", len(articles)-len(kept))
	}
	return kept
}

// backfillSummaries retries enrichment for stored articles whose earlier
// summary attempt failed. Only articles that gained a summary are written back.
func (p *Pipeline) backfillSummaries(ctx context.Context, report *types.RunReport) {
	limit := p.BackfillLimit
	if limit <= 0 {
		limit = 10
	}

	missing, err := p.Store.MissingSummary(ctx, limit)
	if err != nil {
		log.Printf("[pipeline] missing-summary read failed: %v", err)
		return
	}
	if len(missing) == 0 {
		return
	}

	log.Printf("[pipeline] backfilling summaries for %d stored articles", len(missing))
	results := p.Enricher.EnrichAll(ctx, missing)

	var updated []types.Article
	for i := range missing {
		if results[i].Summary == "" {
			continue
		}
		missing[i].Category = results[i].Category
		missing[i].AISummary = results[i].Summary
		updated = append(updated, missing[i])
	}
	if len(updated) == 0 {
		return
	}

	if err := p.Store.Upsert(ctx, updated); err != nil {
		log.Printf("[pipeline] backfill upsert failed: %v", err)
		return
	}
	report.Enriched += len(updated)
}

// synthesize renders a bounded top-N subset. Candidates come from the
// store (most recent first) so earlier runs' enrichment is picked up; when
// the store read fails the in-memory run set stands in.
func (p *Pipeline) synthesize(ctx context.Context, articles []types.Article, report *types.RunReport) {
	limit := p.MaxVideos
	if limit <= 0 {
		limit = 5
	}

	candidates, err := p.Store.Recent(ctx, limit)
	if err != nil {
		log.Printf("[pipeline] recent read failed: %v (using in-memory articles)", err)
		candidates = articles
		if len(candidates) > limit {
			candidates = candidates[:limit]
		}
	}

	log.Printf("[pipeline] synthesizing %d videos", len(candidates))
	for i, article := range candidates {
		artifact, err := p.renderOne(ctx, article, i)
		if err != nil {
			log.Printf("[pipeline] video failed for %s: %v", article.URL, err)
			report.Failures = append(report.Failures, fmt.Sprintf("video %s: %v", article.URL, err))
			continue
		}
		report.Videos++
		log.Printf("[pipeline] [%d/%d] video ready: %s", i+1, len(candidates), artifact.Path)

		for _, pub := range p.Publishers {
			if err := pub.Publish(ctx, artifact); err != nil {
				log.Printf("[pipeline] publish failed for %s: %v", artifact.Path, err)
			}
		}
	}
}

func (p *Pipeline) renderOne(ctx context.Context, article types.Article, index int) (types.VideoArtifact, error) {
	segments := p.Planner.Plan(ctx, article)
	if len(segments) == 0 {
		return types.VideoArtifact{}, fmt.Errorf("planner returned no segments")
	}
	return p.Renderer.Render(ctx, article, segments, index)
}
