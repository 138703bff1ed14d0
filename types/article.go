package types

import "time"

// Article is the canonical record of one news item tracked by the pipeline.
// The URL is the identity key: the content store enforces uniqueness via
// upsert on conflict(url), and the in-run deduplicator guarantees at most
// one representative per URL before any enrichment or store call.
type Article struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	Author      string     `json:"author,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	Language    string     `json:"language,omitempty"`

	// Filled by enrichment; empty until then.
	Category  string `json:"category,omitempty"`
	AISummary string `json:"ai_summary,omitempty"`
}

// NarrationSegment is one narrated, timed unit of a synthesized video.
// DurationHint is advisory: the actual segment duration is derived from
// the synthesized audio length.
type NarrationSegment struct {
	Text         string  `json:"text"`
	ImageURL     string  `json:"image_url,omitempty"`
	DurationHint float64 `json:"duration"`
}

// VideoArtifact describes one finished file written for an article.
// Artifacts are never mutated after write; later runs supersede them.
type VideoArtifact struct {
	ArticleURL string
	Title      string
	Category   string
	Path       string
	Duration   float64
}

// RunReport aggregates the counters the pipeline pushes to the notifier
// at run boundaries.
type RunReport struct {
	Fetched    int
	Deduped    int
	Enriched   int
	Persisted  int
	StoreTotal int
	Videos     int
	Failures   []string
}
