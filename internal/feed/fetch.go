package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"newsbrief/internal/config"
	"newsbrief/internal/logger"
	"newsbrief/internal/metrics"
)

// Fetcher downloads the feeds of a category one source at a time. A failing
// source is logged and skipped; the remaining sources still contribute.
type Fetcher struct {
	registry  Registry
	client    *http.Client
	userAgent string
	pause     time.Duration
}

func NewFetcher(registry Registry, timeout, pause time.Duration) *Fetcher {
	return &Fetcher{
		registry:  registry,
		client:    &http.Client{Timeout: timeout},
		userAgent: config.DefaultUserAgent,
		pause:     pause,
	}
}

// FetchCategory returns the articles of every reachable source in the
// category, in source order. Only an unknown category is an error.
func (f *Fetcher) FetchCategory(ctx context.Context, category string) ([]Article, error) {
	sources, ok := f.registry[category]
	if !ok {
		return nil, fmt.Errorf("unknown category: %q", category)
	}

	var articles []Article
	fetched := 0
	for i, source := range sources {
		payload, err := f.fetch(ctx, source.URL)
		if err != nil {
			logger.Error("failed to fetch source", "source", source.Name, "error", err)
			metrics.Global.IncrementFeedFailures()
			continue
		}

		parsed := Parse(payload, source.Name)
		articles = append(articles, parsed...)
		fetched++
		metrics.Global.IncrementFeedsFetched()
		metrics.Global.AddArticlesParsed(len(parsed))
		logger.Info("fetched source", "source", source.Name, "articles", len(parsed))

		// Small pause between requests to be polite to the feed servers.
		if f.pause > 0 && i < len(sources)-1 {
			select {
			case <-ctx.Done():
				return articles, nil
			case <-time.After(f.pause):
			}
		}
	}

	logger.Info("category fetched", "category", category, "sources_ok", fetched, "sources_total", len(sources))
	return articles, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching feed: http %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading feed body: %w", err)
	}
	return payload, nil
}
