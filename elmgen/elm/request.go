package elm

import (
	"fmt"
	"strings"

	"github.com/jhickner/servant-elm/elmgen/elm/syntax"
	"github.com/jhickner/servant-elm/elmgen/ir"
)

// Segment is one path component of a request, root to leaf.
type Segment struct {
	// Text is the literal text of a static segment, or the argument name
	// bound to a capture.
	Text string

	// Capture marks a path parameter.
	Capture bool
}

// Static returns a literal path segment.
func Static(text string) Segment { return Segment{Text: text} }

// Capture returns a path segment filled from the named function argument.
func Capture(arg string) Segment { return Segment{Text: arg, Capture: true} }

// ArgKind is the closed set of query argument shapes.
type ArgKind int

const (
	ArgNormal ArgKind = iota // optional value: Maybe a
	ArgFlag                  // Bool switch
	ArgList                  // List a, repeated as name[]=
)

func (k ArgKind) String() string {
	switch k {
	case ArgNormal:
		return "normal"
	case ArgFlag:
		return "flag"
	case ArgList:
		return "list"
	}
	return fmt.Sprintf("ArgKind(%d)", int(k))
}

// QueryArg is one query-string parameter of a request.
type QueryArg struct {
	// Name is the wire name, used verbatim in the query string.
	Name string

	// Arg is the function argument holding the value. Defaults to Name.
	Arg string

	Kind ArgKind
}

func (q QueryArg) binding() string {
	if q.Arg != "" {
		return q.Arg
	}
	return q.Name
}

// Request describes one endpoint in the form the Emitter consumes.
// Requests are built once and never mutated by the emitter.
type Request struct {
	Method    string
	Segments  []Segment
	QueryArgs []QueryArg

	// ArgNames are the function parameters in order: captures, query
	// arguments, then "body" when the request has one.
	ArgNames []string

	// ArgTypes parallels ArgNames.
	ArgTypes []syntax.Type

	// Result is the decoded response type.
	Result syntax.Type

	// BodyEncoder turns the body argument into a Json.Encode.Value.
	// Nil for requests without a body.
	BodyEncoder syntax.Expr

	// Decoder parses the response payload into Result.
	Decoder syntax.Expr

	// Auxiliary declarations this request depends on. They may repeat across
	// requests; the Emitter removes textual duplicates.
	TypeDefs    []syntax.Decl
	DecoderDefs []syntax.Decl
	EncoderDefs []syntax.Decl

	// Doc is attached to the generated function.
	Doc string
}

// Path renders the segments as a route template, e.g. "/books/{id}".
func (r *Request) Path() string {
	if len(r.Segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range r.Segments {
		b.WriteByte('/')
		if s.Capture {
			b.WriteString("{" + s.Text + "}")
		} else {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// Label identifies the request in errors: "GET /books/{id}".
func (r *Request) Label() string {
	return strings.ToUpper(r.Method) + " " + r.Path()
}

// FunctionName is the synthesized name of the generated function.
func (r *Request) FunctionName() string {
	return SynthesizeName(r.Method, r.Segments)
}

// RequestError reports a malformed Request.
type RequestError struct {
	Endpoint string
	Code     string
	Message  string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}

func (r *Request) errorf(code, format string, args ...any) *RequestError {
	return &RequestError{Endpoint: r.Label(), Code: code, Message: fmt.Sprintf(format, args...)}
}

// localNames are bound inside every generated function body.
var localNames = map[string]bool{"request": true, "params": true}

// Validate rejects requests that would produce invalid Elm. It returns the
// first problem found as a *RequestError.
func (r *Request) Validate() error {
	if !ir.IsHTTPMethod(strings.ToUpper(r.Method)) {
		return r.errorf("invalid_method", "unsupported HTTP method %q", r.Method)
	}
	if r.Result == nil {
		return r.errorf("missing_result", "no result type")
	}
	if r.Decoder == nil {
		return r.errorf("missing_decoder", "no response decoder")
	}
	if len(r.ArgNames) != len(r.ArgTypes) {
		return r.errorf("arg_mismatch", "%d argument names but %d argument types", len(r.ArgNames), len(r.ArgTypes))
	}

	args := make(map[string]bool, len(r.ArgNames))
	for i, name := range r.ArgNames {
		if !isValueIdentifier(name) {
			return r.errorf("invalid_argument", "argument %q is not a valid Elm name", name)
		}
		if localNames[name] {
			return r.errorf("invalid_argument", "argument %q collides with a generated binding", name)
		}
		if args[name] {
			return r.errorf("duplicate_argument", "argument %q declared twice", name)
		}
		if r.ArgTypes[i] == nil {
			return r.errorf("missing_argument_type", "argument %q has no type", name)
		}
		args[name] = true
	}

	hasBodyArg := len(r.ArgNames) > 0 && r.ArgNames[len(r.ArgNames)-1] == "body"
	switch {
	case r.BodyEncoder != nil && !hasBodyArg:
		return r.errorf("missing_body_argument", "body encoder given but the last argument is not \"body\"")
	case r.BodyEncoder == nil && hasBodyArg:
		return r.errorf("missing_body_encoder", "argument \"body\" has no encoder")
	}

	for _, s := range r.Segments {
		if s.Text == "" {
			return r.errorf("empty_segment", "empty path segment")
		}
		if s.Capture && !args[s.Text] {
			return r.errorf("unbound_capture", "capture %q is not an argument", s.Text)
		}
	}
	for _, q := range r.QueryArgs {
		if q.Name == "" {
			return r.errorf("empty_query_name", "query argument without a name")
		}
		if q.Kind < ArgNormal || q.Kind > ArgList {
			return r.errorf("invalid_query_kind", "query argument %q has unknown kind %d", q.Name, int(q.Kind))
		}
		if !args[q.binding()] {
			return r.errorf("unbound_query", "query argument %q is not an argument", q.binding())
		}
	}
	return nil
}
