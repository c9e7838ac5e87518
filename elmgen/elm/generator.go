package elm

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jhickner/servant-elm/elmgen/elm/syntax"
	"github.com/jhickner/servant-elm/elmgen/ir"
)

// DefaultModuleName is used when GeneratorConfig.ModuleName is empty.
const DefaultModuleName = "Api"

var moduleNamePattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*(\.[A-Z][A-Za-z0-9_]*)*$`)

// ElmGenerator writes one Elm module containing the whole API client.
type ElmGenerator struct{}

// Name returns "elm".
func (g *ElmGenerator) Name() string { return "elm" }

// Generate lowers schema, renders every endpoint and writes the module to opts.Sink.
func (g *ElmGenerator) Generate(ctx context.Context, schema *ir.Schema, opts GenerateOptions) (*GenerateResult, error) {
	if schema == nil {
		return nil, fmt.Errorf("schema is nil")
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("sink is nil")
	}
	cfg := opts.Config
	if cfg.ModuleName == "" {
		cfg.ModuleName = DefaultModuleName
	}
	if !moduleNamePattern.MatchString(cfg.ModuleName) {
		return nil, fmt.Errorf("invalid Elm module name %q", cfg.ModuleName)
	}
	switch cfg.LineEnding {
	case "", "lf", "crlf":
	default:
		return nil, fmt.Errorf("invalid line ending %q (expected \"lf\" or \"crlf\")", cfg.LineEnding)
	}

	reqs, warnings, err := LowerSchema(schema, LowerOptions{EmitComments: cfg.EmitComments})
	if err != nil {
		return nil, err
	}

	printer := &syntax.Printer{}
	if cfg.IndentSize > 0 {
		printer.Indent = strings.Repeat(" ", cfg.IndentSize)
	}
	emitter := &Emitter{
		Options: Options{URLPrefix: cfg.URLPrefix},
		Printer: printer,
		Workers: cfg.Workers,
	}
	decls, err := emitter.Generate(ctx, reqs)
	if err != nil {
		return nil, err
	}

	module := &syntax.Module{
		Name:        cfg.ModuleName,
		Frontmatter: cfg.Frontmatter,
		Imports:     Preamble,
	}
	for _, d := range decls {
		module.Decls = append(module.Decls, &syntax.Raw{Text: d})
	}
	content := printer.Module(module)
	if !cfg.TrailingNewline {
		content = strings.TrimRight(content, "\n")
	}
	if cfg.LineEnding == "crlf" {
		content = strings.ReplaceAll(content, "\n", "\r\n")
	}

	path := ModulePath(cfg.ModuleName)
	if err := opts.Sink.WriteFile(ctx, path, []byte(content)); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return &GenerateResult{
		Files:        []OutputFile{{Path: path, Size: int64(len(content))}},
		Declarations: len(decls),
		Endpoints:    len(reqs),
		Warnings:     append(append([]ir.Warning(nil), schema.Warnings...), warnings...),
	}, nil
}

// ModulePath returns the source path of a dotted module name.
func ModulePath(module string) string {
	return strings.ReplaceAll(module, ".", "/") + ".elm"
}
