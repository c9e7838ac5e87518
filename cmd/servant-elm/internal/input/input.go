// Package input loads API descriptions given on the command line.
package input

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jhickner/servant-elm/elmgen/ir"
	"github.com/jhickner/servant-elm/elmgen/provider"
)

// Formats accepted by Load.
const (
	FormatOpenAPI  = "openapi"
	FormatDocument = "document"
)

// Options are the input flags shared by every command.
type Options struct {
	Input  string `help:"OpenAPI 3 or API document file (YAML or JSON)." short:"i" required:"" type:"existingfile"`
	Format string `help:"Input format: openapi or document (default: detected)."`
}

// Load reads the input file and builds its schema.
func (o Options) Load(ctx context.Context) (*ir.Schema, error) {
	data, err := os.ReadFile(o.Input)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	format := o.Format
	if format == "" {
		format = Detect(data)
	}

	switch format {
	case FormatOpenAPI:
		p := &provider.OpenAPIProvider{}
		return p.BuildSchema(ctx, provider.OpenAPIInputOptions{Path: o.Input})
	case FormatDocument:
		p := &provider.DocumentProvider{}
		return p.BuildSchema(ctx, provider.DocumentInputOptions{Path: o.Input})
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}

// Detect reports FormatOpenAPI for documents with a top-level "openapi"
// key and FormatDocument otherwise.
func Detect(data []byte) string {
	var head struct {
		OpenAPI string `yaml:"openapi"`
	}
	if err := yaml.Unmarshal(data, &head); err == nil && head.OpenAPI != "" {
		return FormatOpenAPI
	}
	return FormatDocument
}
