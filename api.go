// Package servantelm declares HTTP APIs in Go so that typed Elm clients can
// be generated for them.
//
// Routes are built with the method constructors and registered on an API:
//
//	api := servantelm.New().Register(
//	    servantelm.Get[Book]("books", servantelm.Capture[int]("id")),
//	    servantelm.Get[[]Book]("books").
//	        Query(servantelm.Param[string]("author")).
//	        Flag("inPrint"),
//	    servantelm.Post[Book]("books").Body(servantelm.BodyOf[NewBook]()),
//	)
//
// The elmgen package turns an API into an Elm module.
package servantelm

import (
	"fmt"
	"sync"

	"github.com/jhickner/servant-elm/internal/meta"
)

// API is an ordered set of routes. It is safe for concurrent use.
type API struct {
	mu     sync.RWMutex
	routes []*Route
	keys   map[string]bool
}

// New returns an empty API.
func New() *API {
	return &API{keys: make(map[string]bool)}
}

// Register appends routes in order and returns the API for chaining.
// It panics if two routes share a method and path shape, since the
// generated client could not tell them apart.
func (a *API) Register(routes ...*Route) *API {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range routes {
		if r == nil {
			panic("servantelm: nil route")
		}
		key := r.meta.Key()
		if a.keys[key] {
			panic(fmt.Sprintf("servantelm: duplicate route %s", r.meta.Key()))
		}
		a.keys[key] = true
		a.routes = append(a.routes, r)
	}
	return a
}

// Routes returns the metadata of every registered route in registration order.
func (a *API) Routes() []meta.RouteMetadata {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]meta.RouteMetadata, len(a.routes))
	for i, r := range a.routes {
		out[i] = r.Metadata()
	}
	return out
}

// Len returns the number of registered routes.
func (a *API) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.routes)
}
