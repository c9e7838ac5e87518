package servantelm

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/jhickner/servant-elm/elmgen/ir"
	"github.com/jhickner/servant-elm/internal/meta"
)

// NoContent is the response type of routes that return no body.
type NoContent = struct{}

// Route describes one endpoint. Create it with Get, Post, Put, Patch or
// Delete and refine it with the chaining methods before registering it.
type Route struct {
	meta meta.RouteMetadata
}

// PathCapture is a typed path parameter created by Capture.
type PathCapture struct {
	name string
	typ  reflect.Type
}

// Capture declares a path parameter named name whose value has type T.
func Capture[T any](name string) PathCapture {
	return PathCapture{name: name, typ: reflect.TypeFor[T]()}
}

// QueryParam is a typed query parameter created by Param.
type QueryParam struct {
	name string
	typ  reflect.Type
}

// Param declares a query parameter named name whose value has type T.
func Param[T any](name string) QueryParam {
	return QueryParam{name: name, typ: reflect.TypeFor[T]()}
}

// BodySpec is a request body type created by BodyOf.
type BodySpec struct {
	typ reflect.Type
}

// BodyOf declares a JSON request body of type T.
func BodyOf[T any]() BodySpec {
	return BodySpec{typ: reflect.TypeFor[T]()}
}

// Get declares a GET route returning Res. Path elements are strings
// (split on "/") or values returned by Capture.
func Get[Res any](path ...any) *Route { return newRoute[Res]("GET", path) }

// Post declares a POST route returning Res.
func Post[Res any](path ...any) *Route { return newRoute[Res]("POST", path) }

// Put declares a PUT route returning Res.
func Put[Res any](path ...any) *Route { return newRoute[Res]("PUT", path) }

// Patch declares a PATCH route returning Res.
func Patch[Res any](path ...any) *Route { return newRoute[Res]("PATCH", path) }

// Delete declares a DELETE route returning Res.
func Delete[Res any](path ...any) *Route { return newRoute[Res]("DELETE", path) }

func newRoute[Res any](method string, path []any) *Route {
	r := &Route{meta: meta.RouteMetadata{
		Method:   method,
		Response: reflect.TypeFor[Res](),
	}}
	for _, elem := range path {
		switch p := elem.(type) {
		case string:
			for _, part := range strings.Split(p, "/") {
				if part != "" {
					r.meta.Path = append(r.meta.Path, meta.Segment{Text: part})
				}
			}
		case PathCapture:
			if p.name == "" {
				panic("servantelm: capture without a name")
			}
			r.meta.Path = append(r.meta.Path, meta.Segment{Text: p.name, Capture: true, Type: p.typ})
		default:
			panic(fmt.Sprintf("servantelm: path element must be a string or Capture, got %T", elem))
		}
	}
	return r
}

// Query adds an optional query parameter sent as ?name=value.
func (r *Route) Query(p QueryParam) *Route {
	return r.addQuery(p.name, ir.QueryNormal, p.typ)
}

// Flag adds a boolean query parameter sent as ?name= when true.
func (r *Route) Flag(name string) *Route {
	return r.addQuery(name, ir.QueryFlag, reflect.TypeFor[bool]())
}

// QueryList adds a repeated query parameter sent as ?name[]=a&name[]=b.
// The parameter's type is the element type.
func (r *Route) QueryList(p QueryParam) *Route {
	return r.addQuery(p.name, ir.QueryList, p.typ)
}

func (r *Route) addQuery(name string, kind ir.QueryKind, typ reflect.Type) *Route {
	if name == "" {
		panic("servantelm: query parameter without a name")
	}
	r.meta.Query = append(r.meta.Query, meta.Query{Name: name, Kind: kind, Type: typ})
	return r
}

// Body sets the JSON request body.
func (r *Route) Body(b BodySpec) *Route {
	r.meta.Body = b.typ
	return r
}

// Doc attaches documentation that is emitted above the generated function.
func (r *Route) Doc(text string) *Route {
	r.meta.Doc = text
	return r
}

// Name sets a label used in diagnostics. It does not change the generated
// function name, which is derived from the method and path.
func (r *Route) Name(label string) *Route {
	r.meta.Name = label
	return r
}

// Metadata returns a copy of the route's metadata.
func (r *Route) Metadata() meta.RouteMetadata {
	m := r.meta
	m.Path = slices.Clone(m.Path)
	m.Query = slices.Clone(m.Query)
	return m
}
