package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched       int64
	FeedFailures       int64
	ArticlesParsed     int64
	CacheHits          int64
	CacheMisses        int64
	SummariesGenerated int64
	SummaryFailures    int64
	SummariesSaved     int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
}

var Global = &Metrics{}

func (m *Metrics) IncrementFeedsFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFetched++
}

func (m *Metrics) IncrementFeedFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedFailures++
}

func (m *Metrics) AddArticlesParsed(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesParsed += int64(n)
}

func (m *Metrics) IncrementCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *Metrics) IncrementCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *Metrics) IncrementSummariesGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesGenerated++
}

func (m *Metrics) IncrementSummaryFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummaryFailures++
}

func (m *Metrics) IncrementSummariesSaved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesSaved++
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":       m.FeedsFetched,
		"feed_failures":       m.FeedFailures,
		"articles_parsed":     m.ArticlesParsed,
		"cache_hits":          m.CacheHits,
		"cache_misses":        m.CacheMisses,
		"summaries_generated": m.SummariesGenerated,
		"summary_failures":    m.SummaryFailures,
		"summaries_saved":     m.SummariesSaved,
		"last_run_time":       m.LastRunTime.Format(time.RFC3339),
		"last_error_time":     m.LastErrorTime.Format(time.RFC3339),
		"last_error":          m.LastError,
	}
}
