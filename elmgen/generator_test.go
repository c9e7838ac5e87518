package elmgen

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	servantelm "github.com/jhickner/servant-elm"
	"github.com/jhickner/servant-elm/elmgen/elm"
	"github.com/jhickner/servant-elm/elmgen/ir"
)

type Book struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Subtitle *string  `json:"subtitle,omitempty"`
	Tags     []string `json:"tags"`
}

type NewBook struct {
	Title string `json:"title"`
}

type Page[T any] struct {
	Items []T    `json:"items"`
	Next  string `json:"next"`
}

type Upper string

func (Upper) MarshalJSON() ([]byte, error) { return nil, nil }

type Shout struct {
	Text Upper `json:"text"`
}

func bookstoreAPI() *servantelm.API {
	return servantelm.New().Register(
		servantelm.Get[[]Book]("books").
			Query(servantelm.Param[string]("author")).
			Flag("inPrint").
			QueryList(servantelm.Param[string]("tag")),
		servantelm.Get[Book]("books", servantelm.Capture[int]("id")).Doc("Fetch one book."),
		servantelm.Post[Book]("books").Body(servantelm.BodyOf[NewBook]()),
		servantelm.Delete[servantelm.NoContent]("books", servantelm.Capture[int]("id")),
	)
}

func generated(t *testing.T, res *GenerateResult, path string) string {
	t.Helper()
	for _, f := range res.Files {
		if f.Path == path {
			return string(f.Content)
		}
	}
	t.Fatalf("no file %s in %+v", path, res.Files)
	return ""
}

func TestGenerate_Reflection(t *testing.T) {
	res, err := FromAPI(bookstoreAPI()).
		WithURLPrefix("http://localhost:8000").
		ModuleName("Generated.Api").
		Generate()
	require.NoError(t, err)

	assert.Equal(t, 4, res.Endpoints)
	content := generated(t, res, "Generated/Api.elm")

	for _, want := range []string{
		"module Generated.Api exposing (..)\n",
		"type alias Book =\n",
		"type alias NewBook =\n",
		"getBooks : Maybe String -> Bool -> List String -> Task.Task Http.Error (List Book)",
		"getBooksBy : Int -> Task.Task Http.Error Book",
		"postBooks : NewBook -> Task.Task Http.Error Book",
		"deleteBooksBy : Int -> Task.Task Http.Error ()",
		"{-| Fetch one book.",
		`"http://localhost:8000" ++ "/" ++ "books"`,
	} {
		assert.Contains(t, content, want)
	}
	assert.Equal(t, 1, strings.Count(content, "decodeBook : "))
	assert.Less(t, strings.Index(content, "getBooks :"), strings.Index(content, "deleteBooksBy :"))
}

func TestGenerate_WithoutComments(t *testing.T) {
	res, err := FromAPI(bookstoreAPI()).PreserveComments("none").Generate()
	require.NoError(t, err)
	assert.NotContains(t, generated(t, res, "Api.elm"), "{-|")
}

func TestGenerate_GenericResponse(t *testing.T) {
	api := servantelm.New().Register(servantelm.Get[Page[Book]]("books"))
	res, err := Generate(api, nil)
	require.NoError(t, err)

	content := generated(t, res, "Api.elm")
	assert.Contains(t, content, "type alias PageBook =")
	assert.Contains(t, content, "getBooks : Task.Task Http.Error PageBook")
}

// PageBook shares its Elm name with the Page[Book] instantiation.
type PageBook struct {
	Total int `json:"total"`
}

func TestGenerate_TypeNameCollision(t *testing.T) {
	api := servantelm.New().Register(
		servantelm.Get[Page[Book]]("books"),
		servantelm.Get[PageBook]("totals"),
	)
	_, err := Generate(api, nil)

	var reqErr *elm.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "type_name_collision", reqErr.Code)
	assert.ErrorContains(t, err, "GET /totals")
	assert.ErrorContains(t, err, "both become Elm type PageBook")
}

func TestGenerate_ToDir(t *testing.T) {
	dir := t.TempDir()
	res, err := FromAPI(bookstoreAPI()).ModuleName("Generated.Api").ToDir(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "Generated", "Api.elm"))
	require.NoError(t, err)
	assert.Equal(t, generated(t, res, "Generated/Api.elm"), string(data))
}

func TestGenerate_LogsWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	api := servantelm.New().Register(servantelm.Get[Shout]("shout"))
	res, err := FromAPI(api).WithLogger(logger).Generate()
	require.NoError(t, err)

	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, "custom_marshaler", res.Warnings[0].Code)
	assert.Contains(t, buf.String(), "code=custom_marshaler")
}

func TestGenerate_Errors(t *testing.T) {
	_, err := Generate(nil, nil)
	assert.ErrorContains(t, err, "api is nil")

	_, err = GenerateSchema(nil, nil)
	assert.ErrorContains(t, err, "schema is nil")

	_, err = FromAPI(bookstoreAPI()).Provider("magic").Generate()
	assert.ErrorContains(t, err, "invalid config")

	_, err = Generate(bookstoreAPI(), &Config{Provider: "magic"})
	assert.ErrorContains(t, err, `unknown provider: "magic"`)

	api := servantelm.New().Register(servantelm.Get[chan int]("feed"))
	_, err = Generate(api, nil)
	assert.ErrorContains(t, err, "GET /feed: response")

	_, err = FromAPI(bookstoreAPI()).ModuleName("api.v1").Generate()
	assert.ErrorContains(t, err, "invalid Elm module name")
}

func TestGenerateSchema(t *testing.T) {
	schema := &ir.Schema{}
	schema.AddEndpoint(ir.EndpointDescriptor{
		HTTPMethod: "GET",
		Path:       []ir.PathSegment{ir.Static("ping")},
		Response:   ir.String(),
	})

	res, err := FromSchema(schema).Generate()
	require.NoError(t, err)
	assert.Contains(t, generated(t, res, "Api.elm"), "getPing : Task.Task Http.Error String")

	bad := &ir.Schema{}
	bad.AddEndpoint(ir.EndpointDescriptor{
		HTTPMethod: "GET",
		Path:       []ir.PathSegment{ir.Static("books")},
		Response:   ir.Ref("Missing", ""),
	})
	_, err = GenerateSchema(bad, nil)
	assert.ErrorContains(t, err, "invalid schema")
}

func TestBuildSchema_Endpoints(t *testing.T) {
	schema, err := BuildSchema(context.Background(), bookstoreAPI(), nil)
	require.NoError(t, err)
	require.Len(t, schema.Endpoints, 4)

	list := schema.Endpoints[0]
	require.Len(t, list.Query, 3)
	assert.Equal(t, ir.QueryFlag, list.Query[1].Kind)
	assert.Equal(t, ir.QueryList, list.Query[2].Kind)

	get := schema.Endpoints[1]
	assert.Equal(t, "Fetch one book.", get.Documentation.Summary)
	require.Len(t, get.Path, 2)
	assert.True(t, get.Path[1].Capture)
	assert.Equal(t, "id", get.Path[1].Name)

	assert.NotNil(t, schema.Endpoints[2].Body)
	assert.Nil(t, schema.Endpoints[3].Body)

	assert.NotNil(t, schema.FindType(ir.GoIdentifier{Name: "Book", Package: "github.com/jhickner/servant-elm/elmgen"}))
	assert.NotNil(t, schema.FindType(ir.GoIdentifier{Name: "NewBook", Package: "github.com/jhickner/servant-elm/elmgen"}))
}

func TestCollectRootTypes(t *testing.T) {
	api := servantelm.New().Register(
		servantelm.Get[map[string][]*Book]("books"),
		servantelm.Get[Page[Book]]("pages"),
		servantelm.Post[int]("books").Body(servantelm.BodyOf[NewBook]()),
		servantelm.Put[time.Time]("clock"),
	)
	names, pkgs := collectRootTypes(api.Routes())
	assert.Equal(t, []string{"Book", "NewBook"}, names)
	assert.Equal(t, []string{"github.com/jhickner/servant-elm/elmgen"}, pkgs)
}

func TestApplyConfigDefaults(t *testing.T) {
	cfg := applyConfigDefaults(nil)
	assert.Equal(t, "reflection", cfg.Provider)
	assert.Equal(t, "Api", cfg.ModuleName)
	assert.Equal(t, 2, cfg.IndentSize)
	assert.Equal(t, "lf", cfg.LineEnding)
	assert.Equal(t, "default", cfg.PreserveComments)
	assert.NotNil(t, cfg.Logger)

	in := &Config{Provider: "source", ModuleName: "Client"}
	out := applyConfigDefaults(in)
	assert.Equal(t, "source", out.Provider)
	assert.Equal(t, "Client", out.ModuleName)
	assert.Nil(t, in.Logger, "input config must not be modified")
}
