package input

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		data string
		want string
	}{
		{"openapi: 3.0.3\npaths: {}\n", FormatOpenAPI},
		{`{"openapi": "3.1.0"}`, FormatOpenAPI},
		{"name: api\nendpoints: []\n", FormatDocument},
		{"not: [valid", FormatDocument},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Detect([]byte(tt.data)), tt.data)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		endpoints int
		types     int
	}{
		{name: "document", opts: Options{Input: "testdata/api.yaml"}, endpoints: 2, types: 1},
		{name: "openapi", opts: Options{Input: "testdata/openapi.json"}, endpoints: 1, types: 1},
		{name: "explicit format", opts: Options{Input: "testdata/openapi.json", Format: FormatOpenAPI}, endpoints: 1, types: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := tt.opts.Load(context.Background())
			require.NoError(t, err)
			assert.Len(t, schema.Endpoints, tt.endpoints)
			assert.Len(t, schema.Types, tt.types)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Options{Input: "testdata/missing.yaml"}.Load(context.Background())
	assert.ErrorContains(t, err, "read input")

	_, err = Options{Input: "testdata/broken.yaml"}.Load(context.Background())
	assert.ErrorContains(t, err, "invalid API document")

	_, err = Options{Input: "testdata/api.yaml", Format: "wsdl"}.Load(context.Background())
	assert.ErrorContains(t, err, `unknown input format "wsdl"`)
}
