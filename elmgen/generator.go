package elmgen

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	servantelm "github.com/jhickner/servant-elm"
	"github.com/jhickner/servant-elm/elmgen/elm"
	"github.com/jhickner/servant-elm/elmgen/ir"
	"github.com/jhickner/servant-elm/elmgen/provider"
	"github.com/jhickner/servant-elm/elmgen/sink"
	"github.com/jhickner/servant-elm/internal/meta"
)

// Config holds the configuration for code generation. It can be built with
// the fluent Generator API or loaded from a servant-elm.yaml file.
type Config struct {
	// OutDir is the directory where the Elm module is written.
	// Empty keeps the output in memory only.
	OutDir string `yaml:"out_dir"`

	// Provider selects the type extraction strategy for APIs declared in Go.
	// "reflection" (default) uses runtime reflection.
	// "source" uses go/packages and also carries doc comments into the output.
	Provider string `yaml:"provider" validate:"omitempty,oneof=reflection source"`

	// Packages are the Go package paths analyzed by the source provider.
	// When empty, the packages declaring the route types are used.
	Packages []string `yaml:"packages"`

	// URLPrefix is prepended to every request URL, e.g. "http://localhost:8000".
	URLPrefix string `yaml:"url_prefix"`

	// ModuleName is the dotted Elm module name. Default: "Api".
	ModuleName string `yaml:"module"`

	// Frontmatter is inserted after the module line of the generated file.
	Frontmatter string `yaml:"frontmatter"`

	// IndentSize is the number of spaces per indent level. Default: 2.
	IndentSize int `yaml:"indent" validate:"gte=0,lte=8"`

	// LineEnding is "lf" (default) or "crlf".
	LineEnding string `yaml:"line_ending" validate:"omitempty,oneof=lf crlf"`

	// PreserveComments controls doc comments in the output: "default" or "none".
	PreserveComments string `yaml:"comments" validate:"omitempty,oneof=default none"`

	// Workers bounds concurrent endpoint rendering. Zero uses GOMAXPROCS.
	Workers int `yaml:"workers" validate:"gte=0"`

	// Logger receives generation warnings. Default: slog.Default().
	Logger *slog.Logger `yaml:"-"`
}

// GenerateResult describes one generation run.
type GenerateResult struct {
	// Files holds every generated file with its content.
	Files []GeneratedFile

	// Declarations is the number of distinct top-level Elm declarations.
	Declarations int

	// Endpoints is the number of request functions.
	Endpoints int

	// Warnings contains non-fatal issues from schema building and lowering.
	Warnings []ir.Warning
}

// GeneratedFile is one output file.
type GeneratedFile struct {
	Path    string
	Content []byte
}

// Generate builds a schema from the routes registered on api and generates
// the Elm client.
func Generate(api *servantelm.API, cfg *Config) (*GenerateResult, error) {
	return GenerateContext(context.Background(), api, cfg)
}

// GenerateContext is Generate with a caller-supplied context.
func GenerateContext(ctx context.Context, api *servantelm.API, cfg *Config) (*GenerateResult, error) {
	if api == nil {
		return nil, fmt.Errorf("api is nil")
	}
	cfg = applyConfigDefaults(cfg)

	schema, err := BuildSchema(ctx, api, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}
	return generate(ctx, schema, cfg)
}

// GenerateSchema generates the Elm client for a schema produced by one of
// the providers.
func GenerateSchema(schema *ir.Schema, cfg *Config) (*GenerateResult, error) {
	return GenerateSchemaContext(context.Background(), schema, cfg)
}

// GenerateSchemaContext is GenerateSchema with a caller-supplied context.
func GenerateSchemaContext(ctx context.Context, schema *ir.Schema, cfg *Config) (*GenerateResult, error) {
	if schema == nil {
		return nil, fmt.Errorf("schema is nil")
	}
	return generate(ctx, schema, applyConfigDefaults(cfg))
}

func generate(ctx context.Context, schema *ir.Schema, cfg *Config) (*GenerateResult, error) {
	if errs := schema.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		return nil, fmt.Errorf("invalid schema: %s", strings.Join(msgs, "; "))
	}

	mem := sink.NewMemorySink()
	gen := &elm.ElmGenerator{}
	res, err := gen.Generate(ctx, schema, elm.GenerateOptions{
		Sink: mem,
		Config: elm.GeneratorConfig{
			URLPrefix:       cfg.URLPrefix,
			ModuleName:      cfg.ModuleName,
			IndentSize:      cfg.IndentSize,
			LineEnding:      cfg.LineEnding,
			TrailingNewline: true,
			EmitComments:    cfg.PreserveComments != "none",
			Frontmatter:     cfg.Frontmatter,
			Workers:         cfg.Workers,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate Elm: %w", err)
	}

	for _, w := range res.Warnings {
		attrs := []any{"code", w.Code}
		if w.TypeName != "" {
			attrs = append(attrs, "type", w.TypeName)
		}
		cfg.Logger.Warn(w.Message, attrs...)
	}

	out := &GenerateResult{
		Declarations: res.Declarations,
		Endpoints:    res.Endpoints,
		Warnings:     res.Warnings,
	}
	var fs *sink.FilesystemSink
	if cfg.OutDir != "" {
		fs = sink.NewFilesystemSink(cfg.OutDir)
		fs.SkipUnchanged = true
	}
	for _, path := range mem.Paths() {
		content := mem.Get(path)
		if fs != nil {
			if err := fs.WriteFile(ctx, path, content); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", path, err)
			}
		}
		out.Files = append(out.Files, GeneratedFile{Path: path, Content: content})
	}
	return out, nil
}

// BuildSchema converts the routes registered on api into a schema using the
// configured provider.
func BuildSchema(ctx context.Context, api *servantelm.API, cfg *Config) (*ir.Schema, error) {
	cfg = applyConfigDefaults(cfg)
	routes := api.Routes()

	// Endpoint types are always described by reflection; the builder also
	// collects every declaration reachable from them.
	reflected := &ir.Schema{}
	endpoints, err := buildEndpoints(ctx, provider.NewTypeBuilder(reflected), routes)
	if err != nil {
		return nil, err
	}

	var schema *ir.Schema
	switch cfg.Provider {
	case "reflection":
		schema = reflected
	case "source":
		schema, err = buildSchemaFromSource(ctx, routes, cfg.Packages)
		if err != nil {
			return nil, err
		}
		if schema == nil {
			schema = reflected
			break
		}
		mergeMissingTypes(schema, reflected)
	default:
		return nil, fmt.Errorf("unknown provider: %q (expected \"reflection\" or \"source\")", cfg.Provider)
	}

	schema.Endpoints = endpoints
	return schema, nil
}

// buildEndpoints converts route metadata to IR endpoints in registration order.
func buildEndpoints(ctx context.Context, tb *provider.TypeBuilder, routes []meta.RouteMetadata) ([]ir.EndpointDescriptor, error) {
	endpoints := make([]ir.EndpointDescriptor, 0, len(routes))
	for _, r := range routes {
		label := r.Method + " " + r.Pattern()
		ep := ir.EndpointDescriptor{
			Name:          r.Name,
			HTTPMethod:    r.Method,
			Documentation: documentation(r.Doc),
		}

		for _, seg := range r.Path {
			if !seg.Capture {
				ep.Path = append(ep.Path, ir.Static(seg.Text))
				continue
			}
			t, err := tb.Describe(ctx, seg.Type)
			if err != nil {
				return nil, fmt.Errorf("%s: capture %s: %w", label, seg.Text, err)
			}
			ep.Path = append(ep.Path, ir.Capture(seg.Text, t))
		}

		for _, q := range r.Query {
			t, err := tb.Describe(ctx, q.Type)
			if err != nil {
				return nil, fmt.Errorf("%s: query %s: %w", label, q.Name, err)
			}
			ep.Query = append(ep.Query, ir.QueryParam{Name: q.Name, Kind: q.Kind, Type: t})
		}

		if r.Body != nil {
			t, err := tb.Describe(ctx, r.Body)
			if err != nil {
				return nil, fmt.Errorf("%s: body: %w", label, err)
			}
			ep.Body = t
		}

		t, err := tb.Describe(ctx, r.Response)
		if err != nil {
			return nil, fmt.Errorf("%s: response: %w", label, err)
		}
		ep.Response = t

		endpoints = append(endpoints, ep)
	}
	return endpoints, nil
}

// buildSchemaFromSource runs the source provider over the packages that
// declare the routes' named types. It returns a nil schema when the routes
// reference no named types.
func buildSchemaFromSource(ctx context.Context, routes []meta.RouteMetadata, packages []string) (*ir.Schema, error) {
	roots, pkgs := collectRootTypes(routes)
	if len(roots) == 0 {
		return nil, nil
	}
	if len(packages) == 0 {
		packages = pkgs
	}

	p := &provider.SourceProvider{}
	return p.BuildSchema(ctx, provider.SourceInputOptions{
		Packages:  packages,
		RootTypes: roots,
	})
}

// collectRootTypes returns the sorted names of the non-generic named types
// used by routes, together with their packages. Generic instantiations are
// declared by the reflection fallback.
func collectRootTypes(routes []meta.RouteMetadata) (names, pkgs []string) {
	seenName := make(map[string]bool)
	seenPkg := make(map[string]bool)
	visit := func(t reflect.Type) {
		for t != nil {
			switch t.Kind() {
			case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map:
				t = t.Elem()
				continue
			}
			break
		}
		if t == nil || t.Name() == "" || isStdlib(t.PkgPath()) || strings.Contains(t.Name(), "[") {
			return
		}
		if !seenName[t.Name()] {
			seenName[t.Name()] = true
			names = append(names, t.Name())
		}
		if !seenPkg[t.PkgPath()] {
			seenPkg[t.PkgPath()] = true
			pkgs = append(pkgs, t.PkgPath())
		}
	}

	for _, r := range routes {
		for _, seg := range r.Path {
			if seg.Capture {
				visit(seg.Type)
			}
		}
		for _, q := range r.Query {
			visit(q.Type)
		}
		if r.Body != nil {
			visit(r.Body)
		}
		visit(r.Response)
	}

	slices.Sort(names)
	slices.Sort(pkgs)
	return names, pkgs
}

// isStdlib reports whether pkg is empty or a standard library package.
func isStdlib(pkg string) bool {
	first, _, _ := strings.Cut(pkg, "/")
	return !strings.Contains(first, ".")
}

// mergeMissingTypes copies declarations from src that dst lacks.
func mergeMissingTypes(dst, src *ir.Schema) {
	for _, t := range src.Types {
		if dst.FindType(t.TypeName()) == nil {
			dst.AddType(t)
		}
	}
}

// applyConfigDefaults applies default values to Config.
func applyConfigDefaults(cfg *Config) *Config {
	var result Config
	if cfg != nil {
		result = *cfg
	}

	if result.Provider == "" {
		result.Provider = "reflection"
	}
	if result.ModuleName == "" {
		result.ModuleName = elm.DefaultModuleName
	}
	if result.IndentSize == 0 {
		result.IndentSize = 2
	}
	if result.LineEnding == "" {
		result.LineEnding = "lf"
	}
	if result.PreserveComments == "" {
		result.PreserveComments = "default"
	}
	if result.Logger == nil {
		result.Logger = slog.Default()
	}

	return &result
}

func documentation(text string) ir.Documentation {
	text = strings.TrimSpace(text)
	if text == "" {
		return ir.Documentation{}
	}
	summary, _, _ := strings.Cut(text, "\n")
	return ir.Documentation{Summary: summary, Body: text}
}
