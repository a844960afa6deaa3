package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func feedServer(t *testing.T, items ...string) *httptest.Server {
	t.Helper()
	body := `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>`
	for i, title := range items {
		body += fmt.Sprintf(
			`<item><title>%s</title><link>https://example.com/%s/%d</link><description>d</description><pubDate>Wed, 02 Oct 2002 13:00:00 +0200</pubDate></item>`,
			title, title, i,
		)
	}
	body += `</channel></rss>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchCategorySourceOrder(t *testing.T) {
	a := feedServer(t, "alpha-one", "alpha-two")
	b := feedServer(t, "beta-one")

	registry := Registry{
		"tech": {
			{Name: "Alpha", URL: a.URL},
			{Name: "Beta", URL: b.URL},
		},
	}
	fetcher := NewFetcher(registry, time.Second, 0)

	articles, err := fetcher.FetchCategory(context.Background(), "tech")
	if err != nil {
		t.Fatalf("FetchCategory: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}
	wantTitles := []string{"alpha-one", "alpha-two", "beta-one"}
	wantSources := []string{"Alpha", "Alpha", "Beta"}
	for i, a := range articles {
		if a.Title != wantTitles[i] {
			t.Errorf("article %d title = %q, want %q", i, a.Title, wantTitles[i])
		}
		if a.Source != wantSources[i] {
			t.Errorf("article %d source = %q, want %q", i, a.Source, wantSources[i])
		}
	}
}

func TestFetchCategorySkipsFailingSource(t *testing.T) {
	ok := feedServer(t, "survivor")
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(broken.Close)

	registry := Registry{
		"tech": {
			{Name: "Broken", URL: broken.URL},
			{Name: "OK", URL: ok.URL},
		},
	}
	fetcher := NewFetcher(registry, time.Second, 0)

	articles, err := fetcher.FetchCategory(context.Background(), "tech")
	if err != nil {
		t.Fatalf("a failing source must not fail the category: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "survivor" {
		t.Fatalf("expected the surviving source's article, got %+v", articles)
	}
}

func TestFetchCategoryUnknown(t *testing.T) {
	fetcher := NewFetcher(Registry{}, time.Second, 0)
	if _, err := fetcher.FetchCategory(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}
