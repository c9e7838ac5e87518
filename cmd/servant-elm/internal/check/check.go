package check

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jhickner/servant-elm/cmd/servant-elm/internal/input"
	"github.com/jhickner/servant-elm/elmgen/elm"
)

type Cmd struct {
	input.Options
	JSON bool `help:"Print the parsed schema as JSON." short:"j"`
}

func (c *Cmd) Run() error {
	return c.run(context.Background(), os.Stdout, os.Stderr)
}

func (c *Cmd) run(ctx context.Context, stdout, stderr io.Writer) error {
	schema, err := c.Load(ctx)
	if err != nil {
		return err
	}
	if errs := schema.Validate(); len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(stderr, "✗ %v\n", err)
		}
		return fmt.Errorf("%d validation errors", len(errs))
	}

	// Lowering catches name clashes and types Elm cannot express.
	if _, _, err := elm.LowerSchema(schema, elm.LowerOptions{}); err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(schema)
	}

	fmt.Fprintf(stdout, "✓ %d endpoints, %d types\n", len(schema.Endpoints), len(schema.Types))
	for _, w := range schema.Warnings {
		fmt.Fprintf(stdout, "! %s: %s\n", w.Code, w.Message)
	}
	fmt.Fprintln(stdout, "✓ All types resolvable")
	return nil
}
