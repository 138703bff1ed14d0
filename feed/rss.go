package feed

import (
	"context"
	"log"
	"strings"
	"time"

	"newsreel/types"

	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

const (
	rssFetchTimeout   = 20 * time.Second
	extractionTimeout = 30 * time.Second
)

// RSSSource pulls supplementary articles from RSS/Atom feeds and maps them
// into the same canonical Article shape as the headline API.
type RSSSource struct {
	feedURLs []string
	language string
	parser   *gofeed.Parser
}

// NewRSSSource builds a source over the configured feed URLs.
func NewRSSSource(feedURLs []string, language string) *RSSSource {
	return &RSSSource{
		feedURLs: feedURLs,
		language: language,
		parser:   gofeed.NewParser(),
	}
}

// Fetch parses every configured feed. A failing feed is logged and skipped;
// the remaining feeds still contribute articles.
func (s *RSSSource) Fetch(ctx context.Context) ([]types.Article, error) {
	var articles []types.Article
	for _, feedURL := range s.feedURLs {
		fetched, err := s.fetchOne(ctx, feedURL)
		if err != nil {
			log.Printf("[feed] rss fetch failed for %s: %v", feedURL, err)
			continue
		}
		articles = append(articles, fetched...)
	}
	return articles, nil
}

func (s *RSSSource) fetchOne(ctx context.Context, feedURL string) ([]types.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, rssFetchTimeout)
	defer cancel()

	parsed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	articles := make([]types.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		article := types.Article{
			Title:       strings.TrimSpace(item.Title),
			Description: strings.TrimSpace(item.Description),
			URL:         strings.TrimSpace(item.Link),
			Source:      strings.TrimSpace(parsed.Title),
			Language:    s.language,
		}
		if article.Description == "" {
			article.Description = strings.TrimSpace(item.Content)
		}
		if item.Author != nil {
			article.Author = item.Author.Name
		}
		if item.PublishedParsed != nil {
			article.PublishedAt = item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			article.PublishedAt = item.UpdatedParsed
		}
		if item.Image != nil {
			article.ImageURL = item.Image.URL
		}

		// Feeds that carry bare links still need narration text.
		if article.Description == "" && article.URL != "" {
			article.Description = extractExcerpt(article.URL)
		}

		articles = append(articles, article)
	}
	return articles, nil
}

// extractExcerpt pulls a readable excerpt from the article page itself.
// Any failure yields an empty description; the planner falls back to the title.
func extractExcerpt(articleURL string) string {
	extracted, err := readability.FromURL(articleURL, extractionTimeout)
	if err != nil {
		log.Printf("[feed] excerpt extraction failed for %s: %v", articleURL, err)
		return ""
	}
	return strings.TrimSpace(extracted.Excerpt)
}
