package elm

import (
	"context"

	"github.com/jhickner/servant-elm/elmgen/ir"
	"github.com/jhickner/servant-elm/elmgen/sink"
)

// Generator transforms a schema into target language source code.
type Generator interface {
	// Name returns the generator's identifier.
	Name() string

	// Generate produces source code for the given schema.
	Generate(ctx context.Context, schema *ir.Schema, opts GenerateOptions) (*GenerateResult, error)
}

// GenerateOptions configures generation behavior.
type GenerateOptions struct {
	// Sink receives generated output files.
	Sink sink.OutputSink

	// Config contains generator configuration.
	Config GeneratorConfig
}

// GenerateResult contains generation output metadata.
type GenerateResult struct {
	// Files lists all files that were written.
	Files []OutputFile

	// Declarations is the number of distinct top-level declarations emitted.
	Declarations int

	// Endpoints is the number of request functions emitted.
	Endpoints int

	// Warnings contains non-fatal issues encountered.
	Warnings []ir.Warning
}

// OutputFile describes a generated file.
type OutputFile struct {
	// Path is the relative path of the generated file.
	Path string

	// Size is the number of bytes written.
	Size int64
}

// GeneratorConfig holds the options of one generation run.
type GeneratorConfig struct {
	// URLPrefix is prepended to every request URL.
	URLPrefix string

	// ModuleName is the dotted Elm module name (default "Api").
	// The output path follows it: Generated.Api is written to Generated/Api.elm.
	ModuleName string

	// Formatting
	IndentSize      int    // Spaces per indent level (default 2)
	LineEnding      string // "lf" or "crlf"
	TrailingNewline bool   // Ensure files end with a newline

	// EmitComments attaches documentation comments to types and functions.
	EmitComments bool

	// Frontmatter is inserted verbatim after the module line.
	Frontmatter string

	// Workers bounds concurrent endpoint rendering. Zero uses GOMAXPROCS.
	Workers int
}
