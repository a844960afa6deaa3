package store

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/gorilla/feeds"
)

// PublishXML renders the most recent cached summaries as an RSS 2.0
// document, so the cache can be consumed by a feed reader.
func (s *Store) PublishXML(title, link, description string, limit int) ([]byte, error) {
	out := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: link},
		Description: description,
		Created:     time.Now(),
	}

	for _, record := range s.Recent(limit) {
		created, err := time.ParseInLocation(dateLayout, record.Date, time.Local)
		if err != nil {
			created = time.Now()
		}
		out.Items = append(out.Items, &feeds.Item{
			Id:          record.Link,
			Title:       record.Title,
			Link:        &feeds.Link{Href: record.Link},
			Author:      &feeds.Author{Name: record.Source},
			Description: record.Summary,
			Created:     created,
		})
	}

	rssFeed := (&feeds.Rss{Feed: out}).RssFeed()
	bytes, err := xml.MarshalIndent(rssFeed.FeedXml(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("rendering digest: %w", err)
	}
	return bytes, nil
}
