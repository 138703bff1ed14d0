package feed

import "newsreel/types"

// Deduplicate collapses repeated URLs down to one entry each while keeping
// the overall fetch order. When a URL repeats, the last occurrence wins.
// Articles with an empty URL are dropped: they have no identity to upsert on.
func Deduplicate(articles []types.Article) []types.Article {
	byURL := make(map[string]int, len(articles))
	out := make([]types.Article, 0, len(articles))

	for _, article := range articles {
		if article.URL == "" {
			continue
		}
		if idx, seen := byURL[article.URL]; seen {
			out[idx] = article
			continue
		}
		byURL[article.URL] = len(out)
		out = append(out, article)
	}

	return out
}
