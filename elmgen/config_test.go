package elmgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(strings.NewReader(`
out_dir: frontend/src
provider: source
packages: [example.com/api]
url_prefix: http://localhost:8000
module: Generated.Api
indent: 4
line_ending: crlf
comments: none
workers: 2
`))
	require.NoError(t, err)
	assert.Equal(t, &Config{
		OutDir:           "frontend/src",
		Provider:         "source",
		Packages:         []string{"example.com/api"},
		URLPrefix:        "http://localhost:8000",
		ModuleName:       "Generated.Api",
		IndentSize:       4,
		LineEnding:       "crlf",
		PreserveComments: "none",
		Workers:          2,
	}, cfg)
}

func TestReadConfig_Empty(t *testing.T) {
	cfg, err := ReadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestReadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "unknown key", yaml: "prefix: x\n", want: "field prefix not found"},
		{name: "bad provider", yaml: "provider: magic\n", want: "Config.Provider: must be one of: reflection source"},
		{name: "bad indent", yaml: "indent: 12\n", want: "Config.IndentSize: must be at most 8"},
		{name: "bad line ending", yaml: "line_ending: cr\n", want: "Config.LineEnding"},
		{name: "malformed", yaml: "module: [\n", want: "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadConfig(strings.NewReader(tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("module: Client\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Client", cfg.ModuleName)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestGenerator_WithConfig(t *testing.T) {
	cfg, err := ReadConfig(strings.NewReader("module: Client\nurl_prefix: http://api\n"))
	require.NoError(t, err)

	res, err := FromAPI(bookstoreAPI()).WithConfig(cfg).WithURLPrefix("https://api").Generate()
	require.NoError(t, err)

	content := generated(t, res, "Client.elm")
	assert.Contains(t, content, "module Client exposing (..)")
	assert.Contains(t, content, `"https://api" ++ "/" ++ "books"`)
}
