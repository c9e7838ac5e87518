package elm

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jhickner/servant-elm/elmgen/elm/syntax"
)

// Options is the generation configuration shared by every request.
type Options struct {
	// URLPrefix is prepended to every URL. Empty means no prefix fragment.
	URLPrefix string
}

// Preamble lists the imports every generated module needs.
var Preamble = []syntax.Import{
	{Module: "Json.Decode", Exposing: "(:=)"},
	{Module: "Json.Decode.Extra", Exposing: "(|:)"},
	{Module: "Json.Encode"},
	{Module: "Http"},
	{Module: "String"},
	{Module: "Task"},
	{Module: "Dict", Exposing: "Dict"},
	{Module: "Date", Exposing: "Date"},
}

// Emitter turns Requests into Elm declarations.
type Emitter struct {
	Options Options

	// Printer renders declarations. Nil uses the default printer.
	Printer *syntax.Printer

	// Workers bounds concurrent rendering in Generate. Zero uses GOMAXPROCS.
	Workers int
}

// NewEmitter returns an Emitter with the default printer.
func NewEmitter(opts Options) *Emitter {
	return &Emitter{Options: opts, Printer: &syntax.Printer{}}
}

func (e *Emitter) printer() *syntax.Printer {
	if e.Printer == nil {
		return &syntax.Printer{}
	}
	return e.Printer
}

// GenerateForRequest returns the declarations for one request in output
// order: type definitions, decoders, encoders, then the request function.
func (e *Emitter) GenerateForRequest(req *Request) ([]syntax.Decl, error) {
	fn, err := e.RequestFunction(req)
	if err != nil {
		return nil, err
	}
	decls := make([]syntax.Decl, 0, len(req.TypeDefs)+len(req.DecoderDefs)+len(req.EncoderDefs)+1)
	decls = append(decls, req.TypeDefs...)
	decls = append(decls, req.DecoderDefs...)
	decls = append(decls, req.EncoderDefs...)
	return append(decls, fn), nil
}

// RequestFunction builds the function that issues req.
func (e *Emitter) RequestFunction(req *Request) (*syntax.FuncDecl, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	argTypes := make([]syntax.Type, 0, len(req.ArgTypes)+1)
	argTypes = append(argTypes, req.ArgTypes...)
	sig, err := BuildSignature(append(argTypes, req.Result))
	if err != nil {
		return nil, &RequestError{Endpoint: req.Label(), Code: "invalid_signature", Message: err.Error()}
	}

	url := BuildURL(e.Options.URLPrefix, req.Segments)
	var bindings []syntax.Binding
	if len(req.QueryArgs) > 0 {
		bindings = append(bindings, syntax.Binding{Name: "params", Value: paramsBinding(req.QueryArgs)})
		url = syntax.Infix(url, "++", querySuffix())
	}

	var body syntax.Expr = syntax.V("Http.empty")
	if req.BodyEncoder != nil {
		encoded := syntax.Apply(syntax.V("Json.Encode.encode"), &syntax.Int{Value: 0}, syntax.Apply(req.BodyEncoder, syntax.V("body")))
		body = syntax.Apply(syntax.V("Http.string"), encoded)
	}

	request := &syntax.Record{Fields: []syntax.Field{
		{Name: "verb", Value: syntax.S(strings.ToUpper(req.Method))},
		{Name: "headers", Value: &syntax.List{Items: []syntax.Expr{
			&syntax.Tuple{Items: []syntax.Expr{syntax.S("Content-Type"), syntax.S("application/json")}},
		}}},
		{Name: "url", Value: url},
		{Name: "body", Value: body},
	}}
	bindings = append(bindings, syntax.Binding{Name: "request", Value: request})

	return &syntax.FuncDecl{
		Name:      req.FunctionName(),
		Signature: sig,
		Params:    append([]string(nil), req.ArgNames...),
		Doc:       req.Doc,
		Body: &syntax.Let{
			Bindings: bindings,
			Body: &syntax.Call{
				Fn: syntax.V("Http.fromJson"),
				Args: []syntax.Expr{
					req.Decoder,
					syntax.Apply(syntax.V("Http.send"), syntax.V("Http.defaultSettings"), syntax.V("request")),
				},
				Multiline: true,
			},
		},
	}, nil
}

// Generate renders every request and returns the declarations of the whole
// API in request order with exact textual duplicates removed, keeping the
// first occurrence. Requests are rendered concurrently.
func (e *Emitter) Generate(ctx context.Context, reqs []*Request) ([]string, error) {
	names := make(map[string]string, len(reqs))
	for _, req := range reqs {
		name := req.FunctionName()
		if prev, ok := names[name]; ok {
			return nil, &RequestError{
				Endpoint: req.Label(),
				Code:     "duplicate_function",
				Message:  fmt.Sprintf("function name %q is already used by %s", name, prev),
			}
		}
		names[name] = req.Label()
	}

	rendered := make([][]string, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	p := e.printer()
	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			decls, err := e.GenerateForRequest(req)
			if err != nil {
				return err
			}
			out := make([]string, len(decls))
			for j, d := range decls {
				out[j] = p.Decl(d)
			}
			rendered[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var flat []string
	for _, decls := range rendered {
		flat = append(flat, decls...)
	}
	return Dedupe(flat), nil
}

func (e *Emitter) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Dedupe removes exact duplicates, keeping first occurrences in order.
func Dedupe(decls []string) []string {
	seen := make(map[string]bool, len(decls))
	out := make([]string, 0, len(decls))
	for _, d := range decls {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
