package gen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jhickner/servant-elm/cmd/servant-elm/internal/input"
	"github.com/jhickner/servant-elm/elmgen"
	"github.com/jhickner/servant-elm/elmgen/sink"
)

type Cmd struct {
	Out string `arg:"" optional:"" help:"Output directory for the generated module (default: out_dir from the config file)."`
	input.Options
	Prefix   string `help:"URL prefix prepended to every request (e.g. http://localhost:8000)." short:"p"`
	Module   string `help:"Elm module name (default: Api)." short:"m"`
	Config   string `help:"Config file (default: servant-elm.yaml when present)." short:"c" type:"path"`
	NoConfig bool   `help:"Ignore servant-elm.yaml."`
	Stdout   bool   `help:"Print the module to stdout instead of writing files."`
}

func (c *Cmd) Run() error {
	return c.run(context.Background(), os.Stdout, os.Stderr)
}

func (c *Cmd) run(ctx context.Context, stdout, stderr io.Writer) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	schema, err := c.Load(ctx)
	if err != nil {
		return err
	}

	// Flags win over the config file.
	if c.Prefix != "" {
		cfg.URLPrefix = c.Prefix
	}
	if c.Module != "" {
		cfg.ModuleName = c.Module
	}
	g := elmgen.FromSchema(schema).
		WithConfig(cfg).
		WithLogger(slog.New(slog.NewTextHandler(stderr, nil)))

	if c.Stdout {
		res, err := g.Generate()
		if err != nil {
			return err
		}
		w := sink.NewWriterSink(stdout)
		for _, f := range res.Files {
			if err := w.WriteFile(ctx, f.Path, f.Content); err != nil {
				return err
			}
		}
		return nil
	}

	out := c.Out
	if out == "" {
		out = cfg.OutDir
	}
	if out == "" {
		return fmt.Errorf("no output directory: pass <out>, set out_dir in %s, or use --stdout", elmgen.DefaultConfigFile)
	}
	outDir, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	res, err := g.ToDir(outDir)
	if err != nil {
		return err
	}

	for _, f := range res.Files {
		fmt.Fprintf(stdout, "✓ Wrote %s\n", filepath.Join(outDir, f.Path))
	}
	fmt.Fprintf(stdout, "✓ %d endpoints, %d declarations\n", res.Endpoints, res.Declarations)
	return nil
}

// loadConfig reads --config, or servant-elm.yaml in the working directory
// when it exists.
func (c *Cmd) loadConfig() (*elmgen.Config, error) {
	if c.NoConfig {
		return &elmgen.Config{}, nil
	}
	if c.Config != "" {
		return elmgen.LoadConfig(c.Config)
	}
	cfg, err := elmgen.LoadConfig(elmgen.DefaultConfigFile)
	if errors.Is(err, fs.ErrNotExist) {
		return &elmgen.Config{}, nil
	}
	return cfg, err
}
