// Package scraper reduces an article page to the plain text worth
// summarizing.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newsbrief/internal/config"
)

// Elements that never carry article text.
const chromeSelectors = "script, style, nav, footer, header, aside, iframe"

// Selectors for text blocks worth keeping, in document order.
const contentSelectors = "p, h1, h2, h3, article, section"

type Extractor struct {
	client    *http.Client
	userAgent string
}

func New(timeout time.Duration) *Extractor {
	return &Extractor{
		client:    &http.Client{Timeout: timeout},
		userAgent: config.DefaultUserAgent,
	}
}

// Extract fetches the article page and returns its visible text. Network
// and HTTP failures come back as errors; the caller decides the fallback.
func (e *Extractor) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetching article content: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching article content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching article content: http %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing article html: %w", err)
	}

	return extractText(doc), nil
}

func extractText(doc *goquery.Document) string {
	doc.Find(chromeSelectors).Remove()

	var blocks []string
	doc.Find(contentSelectors).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})

	// No recognizable blocks: fall back to whatever visible text the page has.
	if len(blocks) == 0 {
		return strings.TrimSpace(doc.Text())
	}

	return strings.Join(blocks, "\n\n")
}
