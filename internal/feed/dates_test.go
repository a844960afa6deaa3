package feed

import (
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"rfc822 numeric offset", "Wed, 02 Oct 2002 13:00:00 +0200", "2002-10-02 13:00:00"},
		{"rfc822 named zone", "Wed, 02 Oct 2002 13:00:00 GMT", "2002-10-02 13:00:00"},
		{"iso8601 offset", "2002-10-02T13:00:00+02:00", "2002-10-02 13:00:00"},
		{"iso8601 zulu", "2002-10-02T13:00:00Z", "2002-10-02 13:00:00"},
		{"plain datetime", "2002-10-02 13:00:00", "2002-10-02 13:00:00"},
		{"date only", "2002-10-02", "2002-10-02 00:00:00"},
		{"unparseable stays verbatim", "next Tuesday, probably", "next Tuesday, probably"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeDate(tt.in); got != tt.want {
				t.Errorf("normalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDateIdempotent(t *testing.T) {
	normalized := normalizeDate("Wed, 02 Oct 2002 13:00:00 +0200")
	if again := normalizeDate(normalized); again != normalized {
		t.Errorf("normalizing twice changed the value: %q -> %q", normalized, again)
	}
}

func TestNormalizeDateEmptyUsesNow(t *testing.T) {
	before := time.Now().Add(-time.Minute)
	got := normalizeDate("")
	after := time.Now().Add(time.Minute)

	parsed, err := time.ParseInLocation(dateLayout, got, time.Local)
	if err != nil {
		t.Fatalf("empty input should normalize to %q, got %q: %v", dateLayout, got, err)
	}
	if parsed.Before(before) || parsed.After(after) {
		t.Errorf("timestamp %v not close to now", parsed)
	}
}
