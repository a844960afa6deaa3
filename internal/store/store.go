// Package store persists one human-readable text record per summarized
// article, keyed by a short hash of the article link.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"newsbrief/internal/feed"
	"newsbrief/internal/logger"
)

const (
	recordExt     = ".txt"
	hashLen       = 8
	maxSlugRunes  = 50
	divider       = "=================================================="
	summaryMarker = "SUMMARY:\n\n"
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s-]`)
	whitespace = regexp.MustCompile(`\s+`)
	hexDigits  = regexp.MustCompile(`^[0-9a-f]+$`)
)

// Store is the on-disk summary cache. An in-memory index from link hash to
// filename replaces scanning the directory on every lookup; it is rebuilt
// once at startup and maintained on save.
type Store struct {
	dir        string
	modelLabel string

	mu    sync.Mutex
	index map[string]string
}

func New(dir, modelLabel string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating summaries dir: %w", err)
	}

	s := &Store{
		dir:        dir,
		modelLabel: modelLabel,
		index:      make(map[string]string),
	}
	if err := s.reindex(); err != nil {
		return nil, err
	}
	return s, nil
}

// hashLink derives the cache key: the first 8 hex characters of the link's
// digest. The date and title parts of a filename are cosmetic only.
func hashLink(link string) string {
	sum := sha256.Sum256([]byte(link))
	return hex.EncodeToString(sum[:])[:hashLen]
}

func slugTitle(title string) string {
	slug := nonWord.ReplaceAllString(title, "")
	slug = whitespace.ReplaceAllString(strings.TrimSpace(slug), "_")
	slug = strings.ToLower(slug)
	if runes := []rune(slug); len(runes) > maxSlugRunes {
		slug = string(runes[:maxSlugRunes])
	}
	return slug
}

func filename(article feed.Article, hash string) string {
	return fmt.Sprintf("%s_%s_%s%s", time.Now().Format("20060102"), slugTitle(article.Title), hash, recordExt)
}

// reindex rebuilds the hash index from the directory. The hash is the last
// underscore-separated segment of the filename; anything that doesn't look
// like a record is ignored. The first file seen for a hash wins.
func (s *Store) reindex() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("listing summaries dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), recordExt) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = make(map[string]string, len(names))
	for _, name := range names {
		base := strings.TrimSuffix(name, recordExt)
		parts := strings.Split(base, "_")
		hash := parts[len(parts)-1]
		if len(hash) != hashLen || !hexDigits.MatchString(hash) {
			continue
		}
		if _, taken := s.index[hash]; !taken {
			s.index[hash] = name
		}
	}
	return nil
}

// Exists reports whether a record for the article's link is already
// persisted, returning its filename, or the filename a new record would get.
func (s *Store) Exists(article feed.Article) (bool, string) {
	hash := hashLink(article.Link)

	s.mu.Lock()
	defer s.mu.Unlock()
	if name, ok := s.index[hash]; ok {
		return true, name
	}
	return false, filename(article, hash)
}

// Save persists the summarized article and returns the record path. Saving
// an already-cached link is a no-op that returns the existing path; records
// are never overwritten.
func (s *Store) Save(article feed.SummarizedArticle) (string, error) {
	hash := hashLink(article.Link)

	s.mu.Lock()
	defer s.mu.Unlock()

	if name, ok := s.index[hash]; ok {
		logger.Info("summary already cached", "file", name)
		return filepath.Join(s.dir, name), nil
	}

	name := filename(article.Article, hash)
	path := filepath.Join(s.dir, name)

	// O_EXCL keeps the exists-then-write sequence atomic even if another
	// process races us to the same link.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating summary file: %w", err)
	}
	_, werr := f.WriteString(renderRecord(article, s.modelLabel))
	cerr := f.Close()
	if werr != nil || cerr != nil {
		os.Remove(path)
		if werr == nil {
			werr = cerr
		}
		return "", fmt.Errorf("writing summary file: %w", werr)
	}

	s.index[hash] = name
	logger.Info("summary saved", "file", name)
	return path, nil
}

// Load returns the cached summary for the article's link, or false when no
// usable record exists. A file without the expected markers is treated as
// absent rather than returning partial data.
func (s *Store) Load(article feed.Article) (feed.SummarizedArticle, bool) {
	hash := hashLink(article.Link)

	s.mu.Lock()
	name, ok := s.index[hash]
	s.mu.Unlock()
	if !ok {
		return feed.SummarizedArticle{}, false
	}

	record, ok := s.readRecord(name)
	if !ok {
		return feed.SummarizedArticle{}, false
	}
	return feed.SummarizedArticle{Article: article, Summary: record.Summary}, true
}

func renderRecord(article feed.SummarizedArticle, modelLabel string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", article.Title)
	fmt.Fprintf(&b, "Source: %s\n", article.Source)
	fmt.Fprintf(&b, "Date: %s\n", article.Date)
	fmt.Fprintf(&b, "URL: %s\n", article.Link)
	b.WriteString("\n" + divider + "\n\n")
	b.WriteString(summaryMarker)
	b.WriteString(article.Summary)
	b.WriteString("\n\n" + divider + "\n")
	fmt.Fprintf(&b, "\nSummarized using %s on %s\n", modelLabel, time.Now().Format(dateLayout))
	return b.String()
}

const dateLayout = "2006-01-02 15:04:05"

// Recent returns up to limit cached summaries, newest records first.
// Corrupt or foreign files are skipped.
func (s *Store) Recent(limit int) []feed.SummarizedArticle {
	s.mu.Lock()
	names := make([]string, 0, len(s.index))
	for _, name := range s.index {
		names = append(names, name)
	}
	s.mu.Unlock()

	// Filenames start with YYYYMMDD, so a reverse sort is newest-first.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	var out []feed.SummarizedArticle
	for _, name := range names {
		if limit > 0 && len(out) >= limit {
			break
		}
		if record, ok := s.readRecord(name); ok {
			out = append(out, record)
		}
	}
	return out
}

// readRecord parses the header lines and summary body of a record file.
func (s *Store) readRecord(name string) (feed.SummarizedArticle, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		logger.Error("failed to read summary file", "file", name, "error", err)
		return feed.SummarizedArticle{}, false
	}

	content := string(data)
	record := feed.SummarizedArticle{}
	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, "Title: "):
			record.Title = strings.TrimPrefix(line, "Title: ")
		case strings.HasPrefix(line, "Source: "):
			record.Source = strings.TrimPrefix(line, "Source: ")
		case strings.HasPrefix(line, "Date: "):
			record.Date = strings.TrimPrefix(line, "Date: ")
		case strings.HasPrefix(line, "URL: "):
			record.Link = strings.TrimPrefix(line, "URL: ")
		}
		if line == divider {
			break
		}
	}

	start := strings.Index(content, summaryMarker)
	if start < 0 {
		return feed.SummarizedArticle{}, false
	}
	rest := content[start+len(summaryMarker):]
	end := strings.Index(rest, "\n\n"+divider)
	if end < 0 {
		return feed.SummarizedArticle{}, false
	}
	record.Summary = strings.TrimSpace(rest[:end])
	return record, true
}
