package gen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhickner/servant-elm/cmd/servant-elm/internal/input"
)

func TestRun(t *testing.T) {
	out := t.TempDir()
	cmd := &Cmd{
		Out:      out,
		Options:  input.Options{Input: "../input/testdata/api.yaml"},
		Prefix:   "http://localhost:8000",
		Module:   "Generated.Api",
		NoConfig: true,
	}

	var stdout, stderr bytes.Buffer
	require.NoError(t, cmd.run(context.Background(), &stdout, &stderr))

	data, err := os.ReadFile(filepath.Join(out, "Generated", "Api.elm"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "module Generated.Api exposing (..)")
	assert.Contains(t, content, "getBooksBy : Int -> Task.Task Http.Error Book")
	assert.Contains(t, content, "getBooks : List String -> Task.Task Http.Error (List Book)")
	assert.Contains(t, content, `"http://localhost:8000" ++ "/" ++ "books"`)

	assert.Contains(t, stdout.String(), "✓ 2 endpoints")
	assert.Empty(t, stderr.String())
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "servant-elm.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("module: Client\nurl_prefix: http://api\ncomments: none\n"), 0o644))

	out := t.TempDir()
	cmd := &Cmd{
		Out:     out,
		Options: input.Options{Input: "../input/testdata/api.yaml"},
		Prefix:  "https://override",
		Config:  cfgPath,
	}
	var stdout, stderr bytes.Buffer
	require.NoError(t, cmd.run(context.Background(), &stdout, &stderr))

	data, err := os.ReadFile(filepath.Join(out, "Client.elm"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"https://override" ++ "/" ++ "books"`)
	assert.NotContains(t, string(data), "{-|")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		cmd  *Cmd
		want string
	}{
		{
			name: "bad input",
			cmd:  &Cmd{Out: t.TempDir(), Options: input.Options{Input: "../input/testdata/broken.yaml"}, NoConfig: true},
			want: "invalid API document",
		},
		{
			name: "bad module",
			cmd:  &Cmd{Out: t.TempDir(), Options: input.Options{Input: "../input/testdata/api.yaml"}, Module: "api", NoConfig: true},
			want: "invalid Elm module name",
		},
		{
			name: "no output directory",
			cmd:  &Cmd{Options: input.Options{Input: "../input/testdata/api.yaml"}, NoConfig: true},
			want: "no output directory",
		},
		{
			name: "missing config",
			cmd:  &Cmd{Out: t.TempDir(), Options: input.Options{Input: "../input/testdata/api.yaml"}, Config: "missing.yaml"},
			want: "read config",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := tt.cmd.run(context.Background(), &stdout, &stderr)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestRun_Stdout(t *testing.T) {
	cmd := &Cmd{
		Options:  input.Options{Input: "../input/testdata/api.yaml"},
		NoConfig: true,
		Stdout:   true,
	}
	var stdout, stderr bytes.Buffer
	require.NoError(t, cmd.run(context.Background(), &stdout, &stderr))
	assert.True(t, strings.HasPrefix(stdout.String(), "module Api exposing (..)\n"))
	assert.NotContains(t, stdout.String(), "✓")
}
