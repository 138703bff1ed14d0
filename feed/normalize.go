package feed

import (
	"strings"
	"time"

	"newsreel/types"
)

// normalizeNewsAPI maps one NewsAPI record into the canonical Article shape.
// Missing fields resolve through fallbacks: description falls back to the
// truncated content body, the source name falls back to the URL host.
func normalizeNewsAPI(record newsAPIArticle, language string) types.Article {
	description := strings.TrimSpace(record.Description)
	if description == "" {
		description = trimContentMarker(record.Content)
	}

	source := strings.TrimSpace(record.Source.Name)
	if source == "" {
		source = hostOf(record.URL)
	}

	article := types.Article{
		Title:       strings.TrimSpace(record.Title),
		Description: description,
		URL:         strings.TrimSpace(record.URL),
		Source:      source,
		Author:      strings.TrimSpace(record.Author),
		ImageURL:    strings.TrimSpace(record.URLToImage),
		Language:    language,
	}

	if ts, err := time.Parse(time.RFC3339, record.PublishedAt); err == nil {
		article.PublishedAt = &ts
	}

	return article
}

// trimContentMarker strips NewsAPI's "[+1234 chars]" truncation suffix.
func trimContentMarker(content string) string {
	content = strings.TrimSpace(content)
	if idx := strings.LastIndex(content, "[+"); idx > 0 {
		content = strings.TrimSpace(content[:idx])
	}
	return content
}

func hostOf(rawURL string) string {
	rest, ok := strings.CutPrefix(rawURL, "https://")
	if !ok {
		rest, ok = strings.CutPrefix(rawURL, "http://")
		if !ok {
			return ""
		}
	}
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		rest = rest[:idx]
	}
	return rest
}
