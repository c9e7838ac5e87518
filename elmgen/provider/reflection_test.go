package provider

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhickner/servant-elm/elmgen/ir"
)

type BookID int

type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type Book struct {
	Timestamps
	ID       BookID          `json:"id"`
	Title    string          `json:"title"`
	Tags     []string        `json:"tags,omitempty"`
	Author   *Author         `json:"author"`
	Ratings  map[string]int  `json:"ratings"`
	Cover    []byte          `json:"cover"`
	Extra    json.RawMessage `json:"extra"`
	Price    json.Number     `json:"price"`
	Secret   string          `json:"-"`
	Dash     string          `json:"-,"`
	internal string
	Meta     map[BookID]string `json:"meta"`
}

type Author struct {
	Name  string  `json:"name"`
	Books []*Book `json:"books"`
}

type Page[T any] struct {
	Items []T `json:"items"`
	Next  int `json:"next,omitzero"`
}

type Shape interface{ Area() float64 }

type Drawing struct {
	Shape Shape `json:"shape"`
}

type Upper string

func (u Upper) MarshalJSON() ([]byte, error) { return json.Marshal(string(u)) }

type Loud struct {
	Word Upper `json:"word"`
}

func describeRoot(t *testing.T, root any) *ir.Schema {
	t.Helper()
	p := &ReflectionProvider{}
	schema, err := p.BuildSchema(context.Background(), ReflectionInputOptions{
		RootTypes: []reflect.Type{reflect.TypeOf(root)},
	})
	require.NoError(t, err)
	return schema
}

func structNamed(t *testing.T, schema *ir.Schema, name string) *ir.StructDescriptor {
	t.Helper()
	for _, td := range schema.Types {
		if td.TypeName().Name == name {
			s, ok := td.(*ir.StructDescriptor)
			require.True(t, ok, "%s is %T", name, td)
			return s
		}
	}
	t.Fatalf("type %s not found", name)
	return nil
}

func fieldNamed(fields []ir.FieldDescriptor, name string) *ir.FieldDescriptor {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i]
		}
	}
	return nil
}

func TestReflectionProvider_Struct(t *testing.T) {
	schema := describeRoot(t, Book{})

	book := structNamed(t, schema, "Book")
	var names []string
	for _, f := range book.Fields {
		names = append(names, f.JSONName)
	}
	assert.Equal(t, []string{
		"created_at", "updated_at", "id", "title", "tags", "author",
		"ratings", "cover", "extra", "price", "-", "meta",
	}, names)

	assert.True(t, fieldNamed(book.Fields, "UpdatedAt").Optional)
	assert.True(t, fieldNamed(book.Fields, "Tags").Optional)
	assert.False(t, fieldNamed(book.Fields, "Title").Optional)

	kinds := map[string]ir.TypeDescriptor{
		"CreatedAt": ir.Time(),
		"Title":     ir.String(),
		"Cover":     ir.Bytes(),
		"Extra":     ir.Any(),
		"Price":     ir.Float(64),
	}
	for name, want := range kinds {
		assert.Equal(t, want, fieldNamed(book.Fields, name).Type, name)
	}

	id := fieldNamed(book.Fields, "ID").Type
	require.IsType(t, &ir.ReferenceDescriptor{}, id)
	assert.Equal(t, "BookID", id.(*ir.ReferenceDescriptor).Target.Name)

	author := fieldNamed(book.Fields, "Author").Type
	require.IsType(t, &ir.PtrDescriptor{}, author)

	meta := fieldNamed(book.Fields, "Meta").Type
	require.IsType(t, &ir.MapDescriptor{}, meta)
}

func TestReflectionProvider_DeclaresReachableTypes(t *testing.T) {
	schema := describeRoot(t, Book{})

	var names []string
	for _, td := range schema.Types {
		names = append(names, td.TypeName().Name)
	}
	assert.ElementsMatch(t, []string{"Book", "BookID", "Author"}, names)

	for _, td := range schema.Types {
		if td.TypeName().Name == "BookID" {
			alias, ok := td.(*ir.AliasDescriptor)
			require.True(t, ok)
			assert.Equal(t, ir.Int(0), alias.Underlying)
		}
	}
	assert.Empty(t, schema.Validate())
}

func TestReflectionProvider_Generic(t *testing.T) {
	schema := describeRoot(t, Page[Book]{})

	page := structNamed(t, schema, "Page_Book")
	assert.True(t, fieldNamed(page.Fields, "Next").Optional)
	items := fieldNamed(page.Fields, "Items").Type.(*ir.ArrayDescriptor)
	assert.Equal(t, "Book", items.Element.(*ir.ReferenceDescriptor).Target.Name)
}

func TestReflectionProvider_Warnings(t *testing.T) {
	tests := []struct {
		name string
		root any
		code string
	}{
		{"interface", Drawing{}, "interface_type"},
		{"custom marshaler", Loud{}, "custom_marshaler"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := describeRoot(t, tt.root)
			require.NotEmpty(t, schema.Warnings)
			assert.Equal(t, tt.code, schema.Warnings[0].Code)
		})
	}
}

func TestReflectionProvider_Errors(t *testing.T) {
	type withChan struct {
		C chan int `json:"c"`
	}
	type withFunc struct {
		F func() `json:"f"`
	}
	type withAnon struct {
		A struct{ X int } `json:"a"`
	}
	type badKey struct {
		M map[[2]int]string `json:"m"`
	}

	tests := []struct {
		name string
		root any
		want string
	}{
		{"chan", withChan{}, "unsupported type"},
		{"func", withFunc{}, "unsupported type"},
		{"anonymous struct", withAnon{}, "anonymous struct"},
		{"map key", badKey{}, "unsupported map key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &ReflectionProvider{}
			_, err := p.BuildSchema(context.Background(), ReflectionInputOptions{
				RootTypes: []reflect.Type{reflect.TypeOf(tt.root)},
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReflectionProvider_NoRoots(t *testing.T) {
	p := &ReflectionProvider{}
	_, err := p.BuildSchema(context.Background(), ReflectionInputOptions{})
	assert.Error(t, err)
}

func TestTypeBuilder_Describe(t *testing.T) {
	b := NewTypeBuilder(&ir.Schema{})
	ctx := context.Background()

	tests := []struct {
		typ  reflect.Type
		want ir.TypeDescriptor
	}{
		{reflect.TypeFor[string](), ir.String()},
		{reflect.TypeFor[int64](), ir.Int(64)},
		{reflect.TypeFor[[]bool](), ir.Slice(ir.Bool())},
		{reflect.TypeFor[*float32](), ir.Ptr(ir.Float(32))},
		{reflect.TypeFor[time.Duration](), ir.Duration()},
		{reflect.TypeFor[struct{}](), ir.Empty()},
		{reflect.TypeFor[any](), ir.Any()},
	}
	for _, tt := range tests {
		got, err := b.Describe(ctx, tt.typ)
		require.NoError(t, err, tt.typ.String())
		assert.Equal(t, tt.want, got, tt.typ.String())
	}
	assert.Empty(t, b.Schema().Types)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err := b.Describe(cancelled, reflect.TypeFor[string]())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSanitizeTypeName(t *testing.T) {
	tests := map[string]string{
		"Book":                         "Book",
		"Page[example.com/api.Book]":   "Page_Book",
		"Pair[string,int]":             "Pair_string_int",
		"Page[*example.com/api.Book]":  "Page_PtrBook",
		"Page[[]example.com/api.Book]": "Page_ListBook",
		"Page[example.com/api.Wrap[example.com/api.Book]]": "Page_Wrap_Book",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeTypeName(in), in)
	}
}
