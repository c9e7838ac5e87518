package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/jhickner/servant-elm/cmd/servant-elm/internal/check"
	"github.com/jhickner/servant-elm/cmd/servant-elm/internal/gen"
	"github.com/jhickner/servant-elm/cmd/servant-elm/internal/serve"
)

type CLI struct {
	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate an Elm client module."`
	Check   check.Cmd  `cmd:"" help:"Validate the API description without generating files."`
	Serve   serve.Cmd  `cmd:"" help:"Start a dev server that renders the Elm module on request."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("servant-elm"),
		kong.Description("Generate Elm clients for HTTP APIs described by OpenAPI or API documents."),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
