package feed

import (
	"strings"
	"time"
)

// dateLayout is the normalized timestamp format every article carries.
const dateLayout = "2006-01-02 15:04:05"

// dateFormats are tried in order; the first match wins. The set mirrors what
// the configured feeds actually emit: RFC 1123 with named and numeric zones,
// ISO 8601 with offset or literal Z, and bare dates.
var dateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05Z",
	dateLayout,
	"2006-01-02",
}

// normalizeDate converts a raw feed timestamp to dateLayout. Unrecognized
// values pass through verbatim rather than being dropped; an empty value
// becomes the current local time.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().Format(dateLayout)
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t.Format(dateLayout)
		}
	}
	return raw
}
