package ir

import "strings"

// HTTPMethods lists the verbs an endpoint may use, in the order providers
// emit endpoints that share a path.
var HTTPMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

// IsHTTPMethod reports whether m is one of HTTPMethods (case-sensitive).
func IsHTTPMethod(m string) bool {
	for _, known := range HTTPMethods {
		if m == known {
			return true
		}
	}
	return false
}

// QueryKind is the closed set of query parameter shapes.
type QueryKind int

const (
	// QueryNormal is an optional single value: ?name=value.
	QueryNormal QueryKind = iota
	// QueryFlag is a boolean switch rendered as ?name= when set.
	QueryFlag
	// QueryList is a repeated value rendered as ?name[]=a&name[]=b.
	QueryList
)

// String returns the lower-case name of the kind.
func (k QueryKind) String() string {
	switch k {
	case QueryNormal:
		return "normal"
	case QueryFlag:
		return "flag"
	case QueryList:
		return "list"
	default:
		return "unknown"
	}
}

// ParseQueryKind parses the lower-case name produced by String.
// The empty string parses as QueryNormal.
func ParseQueryKind(s string) (QueryKind, bool) {
	switch strings.ToLower(s) {
	case "", "normal":
		return QueryNormal, true
	case "flag":
		return QueryFlag, true
	case "list":
		return QueryList, true
	default:
		return 0, false
	}
}

// PathSegment is one component of an endpoint path, root to leaf.
type PathSegment struct {
	// Name is the literal text for static segments and the parameter name
	// for captures.
	Name string

	// Capture marks a path parameter.
	Capture bool

	// Type is the capture's value type. Nil for static segments.
	Type TypeDescriptor
}

// Static returns a literal path segment.
func Static(text string) PathSegment {
	return PathSegment{Name: text}
}

// Capture returns a path parameter segment.
func Capture(name string, typ TypeDescriptor) PathSegment {
	return PathSegment{Name: name, Capture: true, Type: typ}
}

// QueryParam describes one query-string parameter.
type QueryParam struct {
	// Name is the wire name of the parameter.
	Name string

	// Kind selects how the value is rendered.
	Kind QueryKind

	// Type is the value type. For QueryList it is the element type;
	// for QueryFlag it is ignored.
	Type TypeDescriptor
}

// EndpointDescriptor represents a single API endpoint.
type EndpointDescriptor struct {
	// Name is an optional label (operationId, Go route name) used in diagnostics.
	Name string

	// HTTPMethod is the upper-case verb.
	HTTPMethod string

	// Path holds the path segments, root to leaf.
	Path []PathSegment

	// Query holds the query parameters in declaration order.
	Query []QueryParam

	// Body is the JSON request body type, or nil for endpoints without a body.
	Body TypeDescriptor

	// Response is the JSON response type. Body-less responses use Empty().
	Response TypeDescriptor

	// Documentation for this endpoint.
	Documentation Documentation
}

// PathString renders the path as a route template, e.g. "/books/{id}".
func (e EndpointDescriptor) PathString() string {
	if len(e.Path) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, seg := range e.Path {
		b.WriteByte('/')
		if seg.Capture {
			b.WriteString("{" + seg.Name + "}")
		} else {
			b.WriteString(seg.Name)
		}
	}
	return b.String()
}

// Label identifies the endpoint in diagnostics: "GET /books/{id}".
func (e EndpointDescriptor) Label() string {
	return e.HTTPMethod + " " + e.PathString()
}
