// Package notify pushes run reports through the Bark notification service.
package notify

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

const pushTimeout = 5 * time.Second

// Bark sends fire-and-forget push notifications via api.day.app.
// Failures are logged only; the pipeline never depends on delivery.
type Bark struct {
	baseURL string
	client  *http.Client
}

// NewBark registers the device key. An empty key yields a disabled notifier.
func NewBark(deviceKey string) *Bark {
	baseURL := ""
	if deviceKey != "" {
		baseURL = "https://api.day.app/" + deviceKey
	}
	return &Bark{
		baseURL: baseURL,
		client:  &http.Client{Timeout: pushTimeout},
	}
}

// Notify pushes one title/body pair. Errors are swallowed after logging.
func (b *Bark) Notify(ctx context.Context, title, body string) {
	if b.baseURL == "" {
		return
	}

	params := url.Values{}
	params.Set("title", title)
	params.Set("body", body)
	params.Set("isArchive", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		log.Printf("[notify] build bark request: %v", err)
		return
	}

	resp, err := b.client.Do(req)
	if err != nil {
		log.Printf("[notify] bark push failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[notify] bark push rejected: %s", resp.Status)
		return
	}
	log.Printf("[notify] bark push sent: %s", title)
}

// FormatRunReport renders the run summary body the way the fetcher reports it.
func FormatRunReport(persisted, total int) string {
	return fmt.Sprintf("抓取: %d 条新闻 | 数据库总量: %d", persisted, total)
}
