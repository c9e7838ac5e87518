// Package library is a fixture for the source provider tests.
package library

import (
	"encoding/json"
	"time"
)

// Book is a catalogued title.
//
// Books are immutable once published.
type Book struct {
	Audit

	// ID is the catalogue number.
	ID    BookID `json:"id"`
	Title string `json:"title"`
	// Subtitle is shown under the title when present.
	Subtitle *string           `json:"subtitle,omitempty"`
	Authors  []Author          `json:"authors"`
	Labels   map[string]string `json:"labels,omitzero"`
	Scan     []byte            `json:"scan"`
	Raw      json.RawMessage   `json:"raw"`
	Hidden   string            `json:"-"`
	draft    bool
}

// BookID identifies a Book.
type BookID int64

// Audit carries bookkeeping timestamps.
type Audit struct {
	CreatedAt time.Time     `json:"created_at"`
	TTL       time.Duration `json:"ttl"`
}

type Author struct {
	Name string `json:"name"` // full name
	Born *Date  `json:"born"`
}

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct{ t time.Time }

func (d Date) MarshalText() ([]byte, error) { return []byte(d.t.Format(time.DateOnly)), nil }

// Shelf is deprecated.
//
// Deprecated: use Collection.
type Shelf struct {
	Books []Book `json:"books"`
}

// Page is one page of results.
type Page[T any] struct {
	Items []T    `json:"items"`
	Next  string `json:"next,omitempty"`
}

type Catalogue struct {
	Recent Page[Book] `json:"recent"`
}

type Printer interface {
	Print(b Book) error
}
