package elmgen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	servantelm "github.com/jhickner/servant-elm"
	"github.com/jhickner/servant-elm/elmgen/internal/validate"
	"github.com/jhickner/servant-elm/elmgen/ir"
)

// DefaultConfigFile is the file name LoadConfig callers look for.
const DefaultConfigFile = "servant-elm.yaml"

// Generator provides a fluent API for code generation.
// Create with FromAPI() or FromSchema() and configure with method chaining.
//
// Example:
//
//	elmgen.FromAPI(api).
//	    WithURLPrefix("http://localhost:8000").
//	    ModuleName("Generated.Api").
//	    ToDir("./frontend/src")
type Generator struct {
	api    *servantelm.API
	schema *ir.Schema
	cfg    Config
}

// FromAPI creates a Generator for the routes registered on api.
func FromAPI(api *servantelm.API) *Generator {
	return &Generator{api: api}
}

// FromSchema creates a Generator for a schema built by one of the providers.
func FromSchema(schema *ir.Schema) *Generator {
	return &Generator{schema: schema}
}

// WithConfig replaces the current configuration, typically with one returned
// by LoadConfig. Later chained calls override individual fields.
func (g *Generator) WithConfig(cfg *Config) *Generator {
	if cfg != nil {
		g.cfg = *cfg
	}
	return g
}

// WithURLPrefix sets the prefix of every request URL.
func (g *Generator) WithURLPrefix(prefix string) *Generator {
	g.cfg.URLPrefix = prefix
	return g
}

// ModuleName sets the dotted Elm module name.
func (g *Generator) ModuleName(name string) *Generator {
	g.cfg.ModuleName = name
	return g
}

// Provider sets the type extraction strategy.
// Valid values: "reflection" (default), "source".
func (g *Generator) Provider(p string) *Generator {
	g.cfg.Provider = p
	return g
}

// Packages adds Go packages for the source provider to analyze.
func (g *Generator) Packages(pkgs ...string) *Generator {
	g.cfg.Packages = append(g.cfg.Packages, pkgs...)
	return g
}

// Frontmatter adds content after the module line of the generated file.
func (g *Generator) Frontmatter(content string) *Generator {
	g.cfg.Frontmatter = content
	return g
}

// PreserveComments controls whether doc comments are emitted.
// Valid values: "default", "none".
func (g *Generator) PreserveComments(mode string) *Generator {
	g.cfg.PreserveComments = mode
	return g
}

// Workers bounds concurrent endpoint rendering.
func (g *Generator) Workers(n int) *Generator {
	g.cfg.Workers = n
	return g
}

// WithLogger sets the logger that receives generation warnings.
func (g *Generator) WithLogger(l *slog.Logger) *Generator {
	g.cfg.Logger = l
	return g
}

// ToDir generates the module into dir.
// This is a terminal operation that writes files to disk.
func (g *Generator) ToDir(dir string) (*GenerateResult, error) {
	g.cfg.OutDir = dir
	return g.run()
}

// Generate returns the generated files in memory without writing to disk.
// Use ToDir() to write files to disk instead.
func (g *Generator) Generate() (*GenerateResult, error) {
	g.cfg.OutDir = ""
	return g.run()
}

func (g *Generator) run() (*GenerateResult, error) {
	if err := validate.Struct(g.cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if g.schema != nil {
		return GenerateSchema(g.schema, &g.cfg)
	}
	return Generate(g.api, &g.cfg)
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	defer f.Close()
	return ReadConfig(f)
}

// ReadConfig decodes and validates a YAML configuration. Unknown keys are
// rejected. An empty document yields the zero Config.
func ReadConfig(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
