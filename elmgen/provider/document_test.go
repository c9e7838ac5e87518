package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhickner/servant-elm/elmgen/internal/validate"
	"github.com/jhickner/servant-elm/elmgen/ir"
)

func TestDocumentProvider(t *testing.T) {
	p := &DocumentProvider{}
	schema, err := p.BuildSchema(context.Background(), DocumentInputOptions{Path: "testdata/bookstore.yaml"})
	require.NoError(t, err)

	assert.Equal(t, "bookstore", schema.Package.Name)
	assert.Equal(t, []string{"Book", "Author", "BookID"}, typeNames(schema))

	book := structNamed(t, schema, "Book")
	assert.Equal(t, "A catalogued title.", book.Documentation.Summary)
	assert.Equal(t, "A catalogued title.\nImmutable once published.", book.Documentation.Body)
	assert.Equal(t, ir.Ref("BookID", ""), fieldNamed(book.Fields, "id").Type)
	assert.True(t, fieldNamed(book.Fields, "subtitle").Optional)
	assert.Equal(t, ir.Slice(ir.Ref("Author", "")), fieldNamed(book.Fields, "authors").Type)
	assert.Equal(t, "rating_counts", fieldNamed(book.Fields, "ratings").JSONName)
	assert.Equal(t, ir.Map(ir.String(), ir.Int(0)), fieldNamed(book.Fields, "ratings").Type)

	author := structNamed(t, schema, "Author")
	assert.Equal(t, "Full name.", fieldNamed(author.Fields, "name").Documentation.Summary)

	require.Len(t, schema.Endpoints, 4)

	get := schema.Endpoints[0]
	assert.Equal(t, "GET /books/{id}", get.Label())
	assert.Equal(t, ir.Capture("id", ir.Int(0)), get.Path[1])
	assert.Equal(t, ir.Ref("Book", ""), get.Response)

	list := schema.Endpoints[1]
	assert.Equal(t, "listBooks", list.Name)
	assert.Equal(t, "List books.", list.Documentation.Summary)
	assert.Equal(t, []ir.QueryParam{
		{Name: "author", Kind: ir.QueryNormal, Type: ir.String()},
		{Name: "inPrint", Kind: ir.QueryFlag, Type: ir.Bool()},
		{Name: "tag", Kind: ir.QueryList, Type: ir.String()},
	}, list.Query)

	assert.Equal(t, ir.Ref("Book", ""), schema.Endpoints[2].Body)
	assert.Equal(t, ir.Empty(), schema.Endpoints[3].Response)
}

func TestParseDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown key", "endpoints: []\nextra: 1\n", "field extra not found"},
		{"no endpoints", "name: x\n", "Document.Endpoints: must be at least 1"},
		{
			"bad method",
			"endpoints:\n  - {method: TRACE, path: /x}\n",
			"Document.Endpoints[0].Method: must be one of",
		},
		{
			"relative path",
			"endpoints:\n  - {method: GET, path: x}\n",
			`Document.Endpoints[0].Path: must start with "/"`,
		},
		{
			"bad query kind",
			"endpoints:\n  - method: GET\n    path: /x\n    query: [{name: q, kind: many}]\n",
			"Document.Endpoints[0].Query[0].Kind: must be one of: normal flag list",
		},
		{
			"alias and fields",
			"types:\n  - {name: T, alias: int, fields: [{name: a, type: int}]}\nendpoints:\n  - {method: GET, path: /x}\n",
			"Document.Types[0].Alias: must be empty when Fields is set",
		},
		{
			"dotted type name",
			"types:\n  - {name: a.T, alias: int}\nendpoints:\n  - {method: GET, path: /x}\n",
			"Document.Types[0].Name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseDocument_ValidationErrorIsTyped(t *testing.T) {
	_, err := ParseDocument([]byte("name: x\n"))
	var verr *validate.Error
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "Document.Endpoints")
}

func TestDocument_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown type", "endpoints:\n  - {method: GET, path: /x, response: Missing}\n", "unknown type: Missing"},
		{"bad type expression", "endpoints:\n  - {method: GET, path: /x, response: \"map[string\"}\n", "unterminated map key"},
		{"bad path", "endpoints:\n  - {method: GET, path: \"/x/{id\"}\n", "/x/{id"},
		{"duplicate endpoint", "endpoints:\n  - {method: GET, path: /x}\n  - {method: GET, path: /x}\n", "duplicate endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &DocumentProvider{}
			_, err := p.BuildSchema(context.Background(), DocumentInputOptions{Data: []byte(tt.doc)})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDocumentProvider_NoInput(t *testing.T) {
	p := &DocumentProvider{}
	_, err := p.BuildSchema(context.Background(), DocumentInputOptions{})
	assert.ErrorContains(t, err, "no API document")
}
