// Package meta holds the route metadata recorded by the declarative API.
// It lives in internal so callers outside the module can read routes but
// cannot construct them.
package meta

import (
	"reflect"

	"github.com/jhickner/servant-elm/elmgen/ir"
)

// Segment is one path component. Type is set for captures only.
type Segment struct {
	Text    string
	Capture bool
	Type    reflect.Type
}

// Query is one query parameter. For ir.QueryList, Type is the element type;
// for ir.QueryFlag it is bool.
type Query struct {
	Name string
	Kind ir.QueryKind
	Type reflect.Type
}

// RouteMetadata is everything the generator needs about one route.
type RouteMetadata struct {
	Name     string
	Method   string
	Path     []Segment
	Query    []Query
	Body     reflect.Type // nil when the route takes no body
	Response reflect.Type
	Doc      string
}

// Pattern renders the path as a route template: "/books/{id}".
func (m RouteMetadata) Pattern() string {
	if len(m.Path) == 0 {
		return "/"
	}
	out := ""
	for _, seg := range m.Path {
		if seg.Capture {
			out += "/{" + seg.Text + "}"
		} else {
			out += "/" + seg.Text
		}
	}
	return out
}

// Key identifies the route for duplicate detection. Capture names are
// ignored, so GET /books/{id} and GET /books/{isbn} share the key "GET /books/{}".
func (m RouteMetadata) Key() string {
	key := m.Method + " "
	if len(m.Path) == 0 {
		return key + "/"
	}
	for _, seg := range m.Path {
		if seg.Capture {
			key += "/{}"
		} else {
			key += "/" + seg.Text
		}
	}
	return key
}
