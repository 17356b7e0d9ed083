// Package domain contains the engagement scoring engine and the entities it works on.
// This package has no external dependencies (only stdlib).
package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPlatform is used when a record carries no platform label.
	DefaultPlatform = "Unknown"
	// DefaultContentType is used when a record carries no content type.
	DefaultContentType = "static"

	untitledPost = "Untitled Post"
)

// Post is a single piece of published content with its engagement counters.
// Derived values (weighted score, engagement percent) are never stored on it.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Platform    string    `json:"platform"`
	ContentType string    `json:"content_type"`
	Likes       int64     `json:"likes"`
	Comments    int64     `json:"comments"`
	Shares      int64     `json:"shares"`
	CreatedAt   time.Time `json:"created_at"` // zero when missing or unparsable
}

// Normalize applies the read-time defaults: blank labels get their defaults
// and negative counters become zero.
func (p Post) Normalize() Post {
	p.Title = strings.TrimSpace(p.Title)
	p.Platform = strings.TrimSpace(p.Platform)
	if p.Platform == "" {
		p.Platform = DefaultPlatform
	}
	p.ContentType = strings.TrimSpace(p.ContentType)
	if p.ContentType == "" {
		p.ContentType = DefaultContentType
	}
	p.Likes = nonNegative(p.Likes)
	p.Comments = nonNegative(p.Comments)
	p.Shares = nonNegative(p.Shares)

	return p
}

// HasValidDate reports whether the post can take part in time-based aggregates.
func (p Post) HasValidDate() bool {
	return !p.CreatedAt.IsZero()
}

// DisplayTitle returns the title, falling back to "Post #<id>" or "Untitled Post".
func (p Post) DisplayTitle() string {
	if t := strings.TrimSpace(p.Title); t != "" {
		return t
	}
	if p.ID != "" {
		return "Post #" + p.ID
	}

	return untitledPost
}

// PostFromRecord builds a normalized Post from a loosely typed record, such as
// a decoded JSON object or YAML mapping. Missing or non-numeric counters are 0
// and the content type may appear as content_type, contentType or type.
func PostFromRecord(rec map[string]any) Post {
	p := Post{
		ID:          idString(rec["id"]),
		Title:       stringField(rec, "title"),
		Platform:    stringField(rec, "platform"),
		ContentType: stringField(rec, "content_type", "contentType", "type"),
		Likes:       toCount(rec["likes"]),
		Comments:    toCount(rec["comments"]),
		Shares:      toCount(rec["shares"]),
		CreatedAt:   toTime(firstPresent(rec, "created_at", "createdAt")),
	}

	return p.Normalize()
}

// ParseTimestamp parses the timestamp layouts seen in record exports.
// It returns the zero time when nothing matches.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.999999-07",
		"2006-01-02 15:04:05-07",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return time.Time{}
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}

	return v
}

func firstPresent(rec map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v
		}
	}

	return nil
}

func stringField(rec map[string]any, keys ...string) string {
	switch v := firstPresent(rec, keys...).(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case float64:
		if id == math.Trunc(id) && !math.IsInf(id, 0) {
			return strconv.FormatInt(int64(id), 10)
		}

		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

// toCount coerces a loosely typed counter to an integer in [0, MaxCounter].
func toCount(v any) int64 {
	var n float64
	switch c := v.(type) {
	case int:
		n = float64(c)
	case int32:
		n = float64(c)
	case int64:
		n = float64(c)
	case uint64:
		n = float64(c)
	case float32:
		n = float64(c)
	case float64:
		n = c
	case json.Number:
		f, err := c.Float64()
		if err != nil {
			return 0
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return 0
		}
		n = f
	default:
		return 0
	}

	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0
	}
	if n >= MaxCounter {
		return MaxCounter
	}

	return min(int64(n), MaxCounter)
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		return ParseTimestamp(t)
	default:
		return time.Time{}
	}
}
