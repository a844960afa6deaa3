// Package feed turns syndication payloads from the configured news
// sources into a uniform article list.
package feed

// Article is a single feed entry. Link is the identity key: the summary
// cache and deduplication are keyed on it and nothing else.
type Article struct {
	Title       string
	Description string
	Link        string
	Date        string // normalized "YYYY-MM-DD HH:MM:SS", or the raw feed value if unparseable
	Source      string
}

// SummarizedArticle is an Article plus the generated summary body.
type SummarizedArticle struct {
	Article
	Summary string
}
