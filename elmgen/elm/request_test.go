package elm

import (
	"errors"
	"testing"

	"github.com/jhickner/servant-elm/elmgen/elm/syntax"
)

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
		code   string
	}{
		{name: "valid", mutate: func(r *Request) {}},
		{name: "lower-case method", mutate: func(r *Request) { r.Method = "get" }},
		{name: "unknown method", mutate: func(r *Request) { r.Method = "FETCH" }, code: "invalid_method"},
		{name: "no result", mutate: func(r *Request) { r.Result = nil }, code: "missing_result"},
		{name: "no decoder", mutate: func(r *Request) { r.Decoder = nil }, code: "missing_decoder"},
		{name: "names without types", mutate: func(r *Request) { r.ArgTypes = nil }, code: "arg_mismatch"},
		{name: "invalid name", mutate: func(r *Request) { r.ArgNames = []string{"Id"}; r.Segments[1] = Capture("Id") }, code: "invalid_argument"},
		{name: "reserved word", mutate: func(r *Request) { r.ArgNames = []string{"type"} }, code: "invalid_argument"},
		{name: "shadows request", mutate: func(r *Request) { r.ArgNames = []string{"request"} }, code: "invalid_argument"},
		{
			name: "duplicate argument",
			mutate: func(r *Request) {
				r.ArgNames = append(r.ArgNames, "id")
				r.ArgTypes = append(r.ArgTypes, syntax.Con("Int"))
			},
			code: "duplicate_argument",
		},
		{name: "nil argument type", mutate: func(r *Request) { r.ArgTypes = []syntax.Type{nil} }, code: "missing_argument_type"},
		{name: "encoder without body argument", mutate: func(r *Request) { r.BodyEncoder = syntax.V("encodeBook") }, code: "missing_body_argument"},
		{
			name: "body argument without encoder",
			mutate: func(r *Request) {
				r.ArgNames = append(r.ArgNames, "body")
				r.ArgTypes = append(r.ArgTypes, syntax.Con("Book"))
			},
			code: "missing_body_encoder",
		},
		{
			name: "body argument not last",
			mutate: func(r *Request) {
				r.ArgNames = []string{"body", "id"}
				r.ArgTypes = []syntax.Type{syntax.Con("Book"), syntax.Con("Int")}
				r.BodyEncoder = syntax.V("encodeBook")
			},
			code: "missing_body_argument",
		},
		{name: "unbound capture", mutate: func(r *Request) { r.Segments[1] = Capture("isbn") }, code: "unbound_capture"},
		{name: "empty segment", mutate: func(r *Request) { r.Segments[0] = Static("") }, code: "empty_segment"},
		{name: "unbound query", mutate: func(r *Request) { r.QueryArgs = []QueryArg{{Name: "q"}} }, code: "unbound_query"},
		{name: "unnamed query", mutate: func(r *Request) { r.QueryArgs = []QueryArg{{Arg: "id"}} }, code: "empty_query_name"},
		{name: "bad query kind", mutate: func(r *Request) { r.QueryArgs = []QueryArg{{Name: "id", Kind: ArgKind(7)}} }, code: "invalid_query_kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := bookByID()
			tt.mutate(req)
			err := req.Validate()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("Validate() error = %v, want *RequestError", err)
			}
			if reqErr.Code != tt.code {
				t.Errorf("Code = %q, want %q (%v)", reqErr.Code, tt.code, err)
			}
			if reqErr.Endpoint == "" {
				t.Error("Endpoint is empty")
			}
		})
	}
}

func TestRequest_Label(t *testing.T) {
	tests := []struct {
		req  *Request
		want string
	}{
		{bookByID(), "GET /books/{id}"},
		{&Request{Method: "post"}, "POST /"},
	}
	for _, tt := range tests {
		if got := tt.req.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}

func TestArgKind_String(t *testing.T) {
	for kind, want := range map[ArgKind]string{ArgNormal: "normal", ArgFlag: "flag", ArgList: "list", ArgKind(9): "ArgKind(9)"} {
		if got := kind.String(); got != want {
			t.Errorf("ArgKind(%d).String() = %q, want %q", int(kind), got, want)
		}
	}
}
