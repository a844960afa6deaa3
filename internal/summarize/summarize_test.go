package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"newsbrief/internal/feed"
)

type stubExtractor struct {
	content string
	err     error
	calls   int32
}

func (s *stubExtractor) Extract(ctx context.Context, url string) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.content, s.err
}

func testArticle() feed.Article {
	return feed.Article{
		Title:       "Markets rally",
		Description: "Stocks rose sharply after the announcement.",
		Link:        "https://example.com/markets-rally",
		Date:        "2002-10-02 13:00:00",
		Source:      "Example News",
	}
}

func okResponse(text string) string {
	return fmt.Sprintf(`{"content":[{"type":"text","text":%q}]}`, text)
}

func TestSummarizeWithoutKeyNoNetwork(t *testing.T) {
	extractor := &stubExtractor{content: strings.Repeat("x", 500)}
	client := NewClient(Config{APIKey: ""}, extractor)

	_, err := client.Summarize(context.Background(), testArticle())
	if !errors.Is(err, ErrAPIKeyNotSet) {
		t.Fatalf("expected ErrAPIKeyNotSet, got %v", err)
	}
	if extractor.calls != 0 {
		t.Errorf("extractor was called %d times; missing key must short-circuit", extractor.calls)
	}
	if MsgAPIKeyNotSet != "Cannot summarize: Claude API key not set." {
		t.Errorf("user-facing message changed: %q", MsgAPIKeyNotSet)
	}
}

func TestSummarizeSuccess(t *testing.T) {
	var gotBody messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Header.Get("anthropic-version") == "" {
			http.Error(w, "missing version header", http.StatusBadRequest)
			return
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, okResponse("A concise summary."))
	}))
	t.Cleanup(srv.Close)

	extractor := &stubExtractor{content: strings.Repeat("article text ", 20)}
	client := NewClient(Config{APIKey: "test-key", Endpoint: srv.URL, MaxTokens: 1000}, extractor)

	summarized, err := client.Summarize(context.Background(), testArticle())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summarized.Summary != "A concise summary." {
		t.Errorf("summary = %q", summarized.Summary)
	}
	if gotBody.MaxTokens != 1000 {
		t.Errorf("max_tokens = %d", gotBody.MaxTokens)
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages: %+v", gotBody.Messages)
	}
	prompt := gotBody.Messages[0].Content
	for _, want := range []string{"Markets rally", "Example News", "article text"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSummarizeAuthFallback(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			fmt.Fprint(w, okResponse("Summary via bearer."))
			return
		}
		http.Error(w, "unknown auth", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	extractor := &stubExtractor{content: strings.Repeat("article text ", 20)}
	client := NewClient(Config{APIKey: "test-key", Endpoint: srv.URL}, extractor)

	summarized, err := client.Summarize(context.Background(), testArticle())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summarized.Summary != "Summary via bearer." {
		t.Errorf("summary = %q", summarized.Summary)
	}
	if requests != 2 {
		t.Errorf("expected primary + fallback request, got %d", requests)
	}
}

func TestSummarizeAllSchemesRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no credentials accepted", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	extractor := &stubExtractor{content: strings.Repeat("article text ", 20)}
	client := NewClient(Config{APIKey: "test-key", Endpoint: srv.URL}, extractor)

	_, err := client.Summarize(context.Background(), testArticle())
	if err == nil {
		t.Fatal("expected error when every auth scheme is rejected")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error should carry the status code: %v", err)
	}
}

func TestSummarizeShortContentUsesDescription(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body messagesRequest
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) > 0 {
			prompt = body.Messages[0].Content
		}
		fmt.Fprint(w, okResponse("ok"))
	}))
	t.Cleanup(srv.Close)

	extractor := &stubExtractor{content: "too short"}
	client := NewClient(Config{APIKey: "test-key", Endpoint: srv.URL}, extractor)

	if _, err := client.Summarize(context.Background(), testArticle()); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !strings.Contains(prompt, "Stocks rose sharply") {
		t.Errorf("prompt should fall back to the feed description, got:\n%s", prompt)
	}
}

func TestSummarizeExtractionErrorUsesDescription(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body messagesRequest
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) > 0 {
			prompt = body.Messages[0].Content
		}
		fmt.Fprint(w, okResponse("ok"))
	}))
	t.Cleanup(srv.Close)

	extractor := &stubExtractor{err: errors.New("connection refused")}
	client := NewClient(Config{APIKey: "test-key", Endpoint: srv.URL}, extractor)

	if _, err := client.Summarize(context.Background(), testArticle()); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !strings.Contains(prompt, "Stocks rose sharply") {
		t.Errorf("prompt should fall back to the feed description, got:\n%s", prompt)
	}
}

func TestSummarizeEmptyResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content":[]}`)
	}))
	t.Cleanup(srv.Close)

	extractor := &stubExtractor{content: strings.Repeat("article text ", 20)}
	client := NewClient(Config{APIKey: "test-key", Endpoint: srv.URL}, extractor)

	if _, err := client.Summarize(context.Background(), testArticle()); err == nil {
		t.Fatal("expected error for response without content blocks")
	}
}
