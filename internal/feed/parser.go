package feed

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"newsbrief/internal/logger"
)

const maxDescriptionRunes = 200

// Parse converts a raw syndication payload into articles. It never fails:
// strict parsing is tried first, then a lenient tag-soup pass, and a payload
// that defeats both yields an empty list.
func Parse(payload []byte, source string) []Article {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(payload))
	if err != nil {
		logger.Warn("strict feed parse failed, using lenient parser", "source", source, "error", err)
		return parseLenient(payload, source)
	}

	articles := make([]Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		// Atom entries carry their timestamp in updated and their body in content.
		date := item.Published
		if date == "" {
			date = item.Updated
		}
		desc := item.Description
		if desc == "" {
			desc = item.Content
		}

		articles = append(articles, Article{
			Title:       strings.TrimSpace(item.Title),
			Description: cleanDescription(desc),
			Link:        strings.TrimSpace(item.Link),
			Date:        normalizeDate(date),
			Source:      source,
		})
	}
	return articles
}

// parseLenient scans tokens with a non-strict XML decoder so that malformed
// feeds (unclosed tags, bare entities, bad nesting) still yield whatever
// items can be recognized. Missing fields stay empty strings.
//
// An HTML parser is the usual tag-soup tool, but it treats <link> as a void
// element and silently drops the link text RSS items keep inside it, so the
// relaxed xml.Decoder is used instead.
func parseLenient(payload []byte, source string) []Article {
	dec := xml.NewDecoder(bytes.NewReader(payload))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var (
		articles []Article
		current  map[string]string
		isEntry  bool
		field    string
		text     strings.Builder
	)

	flush := func() {
		if current == nil {
			return
		}
		date := current["pubdate"]
		desc := current["description"]
		if isEntry {
			date = current["updated"]
			if date == "" {
				date = current["published"]
			}
			desc = current["summary"]
			if desc == "" {
				desc = current["content"]
			}
		}
		articles = append(articles, Article{
			Title:       strings.TrimSpace(current["title"]),
			Description: cleanDescription(desc),
			Link:        strings.TrimSpace(current["link"]),
			Date:        normalizeDate(date),
			Source:      source,
		})
		current = nil
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			if err != io.EOF {
				logger.Warn("lenient feed parse stopped early", "source", source, "error", err)
			}
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := strings.ToLower(t.Name.Local)
			switch name {
			case "item":
				flush()
				current, isEntry = map[string]string{}, false
			case "entry":
				flush()
				current, isEntry = map[string]string{}, true
			case "title", "description", "link", "pubdate", "summary", "content", "updated", "published":
				if current != nil {
					field = name
					text.Reset()
					// Atom puts the target in the href attribute, not the element text.
					if isEntry && name == "link" {
						for _, attr := range t.Attr {
							if strings.EqualFold(attr.Name.Local, "href") {
								current["link"] = attr.Value
							}
						}
						field = ""
					}
				}
			}
		case xml.CharData:
			if field != "" {
				text.Write(t)
			}
		case xml.EndElement:
			name := strings.ToLower(t.Name.Local)
			if name == "item" || name == "entry" {
				flush()
			}
			if field == name && current != nil {
				if _, seen := current[field]; !seen {
					current[field] = text.String()
				}
				field = ""
			}
		}
	}
	flush()

	return articles
}

// cleanDescription strips markup, collapses whitespace, and caps the text at
// maxDescriptionRunes with an ellipsis marker.
func cleanDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return ""
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(desc)); err == nil {
		desc = doc.Text()
	}
	desc = strings.Join(strings.Fields(desc), " ")

	runes := []rune(desc)
	if len(runes) > maxDescriptionRunes {
		return string(runes[:maxDescriptionRunes]) + "..."
	}
	return desc
}
