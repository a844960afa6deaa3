// Package app wires the pipeline together: fetch a category, check the
// cache, summarize on a miss, persist the result.
package app

import (
	"context"

	"newsbrief/internal/config"
	"newsbrief/internal/feed"
	"newsbrief/internal/logger"
	"newsbrief/internal/metrics"
	"newsbrief/internal/scraper"
	"newsbrief/internal/store"
	"newsbrief/internal/summarize"
)

type App struct {
	registry   feed.Registry
	fetcher    *feed.Fetcher
	summarizer *summarize.Client
	store      *store.Store
}

func New(cfg *config.Config) (*App, error) {
	registry, err := feed.LoadRegistry(cfg.SourcesPath)
	if err != nil {
		return nil, err
	}

	summarizer := summarize.NewClient(summarize.Config{
		APIKey:    cfg.ClaudeAPIKey,
		Model:     cfg.ClaudeModel,
		MaxTokens: cfg.MaxTokens,
		Endpoint:  cfg.APIEndpoint,
		Timeout:   cfg.APITimeout,
	}, scraper.New(cfg.ContentTimeout))

	st, err := store.New(cfg.SummariesDir, summarizer.ModelLabel())
	if err != nil {
		return nil, err
	}

	return &App{
		registry:   registry,
		fetcher:    feed.NewFetcher(registry, cfg.FeedTimeout, cfg.FetchPause),
		summarizer: summarizer,
		store:      st,
	}, nil
}

// Categories lists the configured category names.
func (a *App) Categories() []string {
	return a.registry.Categories()
}

// FetchCategory returns the articles of every reachable source in the
// category. Per-source failures are logged inside the fetcher and do not
// fail the call.
func (a *App) FetchCategory(ctx context.Context, category string) ([]feed.Article, error) {
	articles, err := a.fetcher.FetchCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	metrics.Global.SetLastRun()
	return articles, nil
}

// LoadCachedSummary returns the persisted summary for the article, if any.
func (a *App) LoadCachedSummary(article feed.Article) (feed.SummarizedArticle, bool) {
	cached, ok := a.store.Load(article)
	if ok {
		metrics.Global.IncrementCacheHits()
	}
	return cached, ok
}

// SummarizeAndCache returns the article's summary, from cache when present,
// freshly generated otherwise. Only successful summaries are persisted; a
// persistence fault is logged and the in-memory summary is still returned,
// so the caller can display it once.
func (a *App) SummarizeAndCache(ctx context.Context, article feed.Article) (feed.SummarizedArticle, error) {
	if cached, ok := a.LoadCachedSummary(article); ok {
		logger.Debug("cache hit", "link", article.Link)
		return cached, nil
	}
	metrics.Global.IncrementCacheMisses()

	summarized, err := a.summarizer.Summarize(ctx, article)
	if err != nil {
		metrics.Global.IncrementSummaryFailures()
		metrics.Global.SetError(err.Error())
		return summarized, err
	}
	metrics.Global.IncrementSummariesGenerated()

	if path, err := a.store.Save(summarized); err != nil {
		logger.Error("summary not durably saved", "link", article.Link, "error", err)
	} else {
		logger.Debug("summary cached", "path", path)
		metrics.Global.IncrementSummariesSaved()
	}

	return summarized, nil
}

// Recent lists the newest cached summaries.
func (a *App) Recent(limit int) []feed.SummarizedArticle {
	return a.store.Recent(limit)
}

// Digest renders the newest cached summaries as an RSS document.
func (a *App) Digest(title, link, description string, limit int) ([]byte, error) {
	return a.store.PublishXML(title, link, description, limit)
}
