// Package script turns an enriched article into an ordered narration plan.
package script

import (
	"context"
	"log"
	"strings"

	"newsreel/config"
	"newsreel/types"
)

// ScriptGenerator produces a structured multi-segment narration script.
type ScriptGenerator interface {
	SegmentScript(ctx context.Context, title, description string) ([]types.NarrationSegment, error)
}

// Planner decides what each article's video narrates. It never returns an
// empty plan: every tier has a defined fallback below it.
type Planner struct {
	generator ScriptGenerator
	maxChars  int
}

// NewPlanner builds a planner. maxChars bounds the description used in the
// last-resort fallback segment; zero picks the default.
func NewPlanner(generator ScriptGenerator, maxChars int) *Planner {
	if maxChars <= 0 {
		maxChars = config.MaxFallbackDescriptionChars
	}
	return &Planner{generator: generator, maxChars: maxChars}
}

// Plan resolves the narration segments for one article:
//  1. an existing AI summary becomes a single full segment;
//  2. otherwise the generator is asked for a structured script;
//  3. otherwise a single segment is built from title + truncated description.
func (p *Planner) Plan(ctx context.Context, article types.Article) []types.NarrationSegment {
	if summary := strings.TrimSpace(article.AISummary); summary != "" {
		return []types.NarrationSegment{{
			Text:         summary,
			ImageURL:     article.ImageURL,
			DurationHint: config.SegmentDurationHint,
		}}
	}

	if p.generator != nil {
		segments, err := p.generator.SegmentScript(ctx, article.Title, article.Description)
		if err == nil && len(segments) > 0 {
			for i := range segments {
				if segments[i].ImageURL == "" {
					segments[i].ImageURL = article.ImageURL
				}
			}
			return segments
		}
		if err != nil {
			log.Printf("[script] structured script failed for %s: %v", article.URL, err)
		}
	}

	return []types.NarrationSegment{p.fallbackSegment(article)}
}

// fallbackSegment narrates title + truncated description when everything
// else failed.
func (p *Planner) fallbackSegment(article types.Article) types.NarrationSegment {
	text := strings.TrimSpace(article.Title)
	if desc := strings.TrimSpace(article.Description); desc != "" {
		runes := []rune(desc)
		if len(runes) > p.maxChars {
			desc = string(runes[:p.maxChars]) + "..."
		}
		text = text + "。" + desc
	}

	return types.NarrationSegment{
		Text:         text,
		ImageURL:     article.ImageURL,
		DurationHint: config.SegmentDurationHint,
	}
}
