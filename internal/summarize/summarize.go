// Package summarize calls the Claude messages API to produce per-article
// summaries.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"newsbrief/internal/feed"
	"newsbrief/internal/logger"
)

const (
	defaultEndpoint = "https://api.anthropic.com/v1/messages"
	defaultModel    = "claude-3-haiku-20240307"
	apiVersion      = "2023-06-01"

	// Extracted page text shorter than this is almost always a failed
	// extraction (paywall, consent page), not a short article.
	minContentRunes = 100

	// How much of an error response body is worth keeping in the error.
	maxErrorBodyBytes = 200
)

// MsgAPIKeyNotSet is the exact text shown to the user when summarization is
// attempted without a configured credential.
const MsgAPIKeyNotSet = "Cannot summarize: Claude API key not set."

// ErrAPIKeyNotSet reports a missing credential before any network call.
var ErrAPIKeyNotSet = errors.New("claude API key not set")

const promptTemplate = `Please summarize the following news article in 3-4 concise paragraphs. Maintain the factual accuracy and important details.

Title: %s
Source: %s

Article Content:
%s

Summary:`

// ContentExtractor supplies the full article text for a URL.
type ContentExtractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Config carries the explicit settings for a Client. The credential is
// passed here rather than read from the process environment so tests can
// substitute it.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
	Endpoint  string
	Timeout   time.Duration
}

type Client struct {
	cfg       Config
	client    *http.Client
	extractor ContentExtractor
}

func NewClient(cfg Config, extractor ContentExtractor) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:       cfg,
		client:    &http.Client{Timeout: cfg.Timeout},
		extractor: extractor,
	}
}

// ModelLabel is the human-readable name used in summary provenance lines.
func (c *Client) ModelLabel() string {
	if c.cfg.Model == defaultModel {
		return "Claude 3 Haiku"
	}
	return c.cfg.Model
}

// Summarize produces a summary for the article. Every failure comes back as
// an error with the article untouched; a nil error guarantees a usable
// Summary field.
func (c *Client) Summarize(ctx context.Context, article feed.Article) (feed.SummarizedArticle, error) {
	result := feed.SummarizedArticle{Article: article}

	if c.cfg.APIKey == "" {
		return result, ErrAPIKeyNotSet
	}

	content := c.articleContent(ctx, article)
	prompt := fmt.Sprintf(promptTemplate, article.Title, article.Source, content)

	summary, err := c.call(ctx, prompt)
	if err != nil {
		return result, fmt.Errorf("generating summary: %w", err)
	}

	result.Summary = summary
	return result, nil
}

// articleContent fetches the full page text, falling back to the feed's own
// description when extraction fails or returns implausibly little.
func (c *Client) articleContent(ctx context.Context, article feed.Article) string {
	content, err := c.extractor.Extract(ctx, article.Link)
	if err == nil && utf8.RuneCountInString(content) >= minContentRunes {
		return content
	}
	if err != nil {
		logger.Warn("article content unavailable, using feed description", "link", article.Link, "error", err)
	} else {
		logger.Warn("extracted content too short, using feed description", "link", article.Link, "runes", utf8.RuneCountInString(content))
	}

	if article.Description != "" {
		return article.Description
	}
	return "No content available."
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// authScheme is one way of presenting the credential. The API historically
// accepted two header conventions; they are tried in order.
type authScheme struct {
	name  string
	apply func(req *http.Request, key string)
}

var authSchemes = []authScheme{
	{name: "x-api-key", apply: func(req *http.Request, key string) {
		req.Header.Set("x-api-key", key)
	}},
	{name: "bearer", apply: func(req *http.Request, key string) {
		req.Header.Set("Authorization", "Bearer "+key)
	}},
}

// call posts the prompt and returns the first text block of the response.
// A rejected auth scheme falls through to the next one; transport failures
// do not, since retrying them is the caller's policy decision, not ours.
func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	var (
		lastStatus int
		lastBody   string
	)
	for i, scheme := range authSchemes {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
		if err != nil {
			return "", fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("anthropic-version", apiVersion)
		scheme.apply(req, c.cfg.APIKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return "", fmt.Errorf("api request failed: %w", err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return "", fmt.Errorf("reading api response: %w", readErr)
		}

		if resp.StatusCode == http.StatusOK {
			var parsed messagesResponse
			if err := json.Unmarshal(body, &parsed); err != nil {
				return "", fmt.Errorf("decoding api response: %w", err)
			}
			if len(parsed.Content) == 0 {
				return "", fmt.Errorf("no content in response")
			}
			return parsed.Content[0].Text, nil
		}

		lastStatus = resp.StatusCode
		lastBody = string(body)
		if len(lastBody) > maxErrorBodyBytes {
			lastBody = lastBody[:maxErrorBodyBytes]
		}
		if i < len(authSchemes)-1 {
			logger.Info("auth scheme rejected, trying next", "scheme", scheme.name, "status", resp.StatusCode)
		}
	}

	return "", fmt.Errorf("api request failed: %d - %s", lastStatus, lastBody)
}
