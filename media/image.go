// Package media handles image acquisition and audio probing for synthesis.
package media

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

const imageFetchTimeout = 10 * time.Second

// ImageFetcher downloads article cover images. Feed-supplied image URLs are
// untrusted: they 404, redirect to HTML pages, or serve non-image payloads,
// so the declared content type is validated and every failure falls back to
// the shared default cover.
type ImageFetcher struct {
	defaultCover string
	client       *http.Client
}

// NewImageFetcher builds a fetcher with the shared default cover path.
func NewImageFetcher(defaultCover string) *ImageFetcher {
	return &ImageFetcher{
		defaultCover: defaultCover,
		client:       &http.Client{Timeout: imageFetchTimeout},
	}
}

// Fetch downloads imageURL to destPath and returns the path to use.
// On any failure it returns the default cover path instead.
func (f *ImageFetcher) Fetch(ctx context.Context, imageURL, destPath string) string {
	if imageURL == "" {
		return f.defaultCover
	}

	path, err := f.download(ctx, imageURL, destPath)
	if err != nil {
		log.Printf("[media] image fetch failed for %s: %v (using default cover)", imageURL, err)
		return f.defaultCover
	}
	return path
}

func (f *ImageFetcher) download(ctx context.Context, imageURL, destPath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("non-image content type %q", contentType)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}
	return destPath, nil
}
