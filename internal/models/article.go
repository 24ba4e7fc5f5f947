package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gosimple/slug"
)

// MaxTitleLength is the upper bound on article titles.
const MaxTitleLength = 128

// Article represents a content item owned by a user
type Article struct {
	ID        string          `json:"id" db:"id"`
	Title     string          `json:"title" db:"title"`
	Body      json.RawMessage `json:"json_body" db:"json_body"`
	PubDate   time.Time       `json:"pub_date" db:"pub_date"`
	IsActive  bool            `json:"is_active" db:"is_active"`
	Slug      string          `json:"slug" db:"slug"`
	UserID    string          `json:"user_id" db:"user_id"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// IsPublished reports whether the article is publicly visible at the
// given instant: it must be active and its publish timestamp must not
// be in the future.
func (a *Article) IsPublished(now time.Time) bool {
	return a.IsActive && !a.PubDate.After(now)
}

// MakeSlug derives the URL-safe slug from title and publish timestamp.
// The timestamp is rendered at microsecond precision so that equal
// titles published at different instants slug differently, while
// re-slugging with an unchanged pub_date is idempotent.
func MakeSlug(title string, pubDate time.Time) string {
	return slug.Make(fmt.Sprintf("%s-%s", title, pubDate.UTC().Format("2006-01-02 15:04:05.000000")))
}
