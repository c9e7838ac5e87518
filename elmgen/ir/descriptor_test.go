package ir

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDescriptorKinds(t *testing.T) {
	tests := []struct {
		desc TypeDescriptor
		want DescriptorKind
		name string
	}{
		{&StructDescriptor{}, KindStruct, "Struct"},
		{&AliasDescriptor{}, KindAlias, "Alias"},
		{String(), KindPrimitive, "Primitive"},
		{Slice(String()), KindArray, "Array"},
		{Map(String(), Int(0)), KindMap, "Map"},
		{Ref("Book", ""), KindReference, "Reference"},
		{Ptr(String()), KindPtr, "Ptr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.desc.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
			if got := tt.desc.Kind().String(); got != tt.name {
				t.Errorf("Kind().String() = %q, want %q", got, tt.name)
			}
		})
	}
}

func TestExprBaseZeroValues(t *testing.T) {
	for _, d := range []TypeDescriptor{String(), Slice(Bool()), Map(String(), Any()), Ref("X", ""), Ptr(Time())} {
		if !d.TypeName().IsZero() {
			t.Errorf("%v: TypeName() should be zero", d.Kind())
		}
		if !d.Doc().IsZero() {
			t.Errorf("%v: Doc() should be zero", d.Kind())
		}
		if !d.Src().IsZero() {
			t.Errorf("%v: Src() should be zero", d.Kind())
		}
	}
}

func TestPrimitiveKindString(t *testing.T) {
	kinds := map[PrimitiveKind]string{
		PrimitiveBool:     "Bool",
		PrimitiveInt:      "Int",
		PrimitiveUint:     "Uint",
		PrimitiveFloat:    "Float",
		PrimitiveString:   "String",
		PrimitiveBytes:    "Bytes",
		PrimitiveTime:     "Time",
		PrimitiveDuration: "Duration",
		PrimitiveAny:      "Any",
		PrimitiveEmpty:    "Empty",
		PrimitiveKind(99): "Unknown",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("PrimitiveKind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestEndpointJSON(t *testing.T) {
	ep := EndpointDescriptor{
		HTTPMethod: "GET",
		Path:       []PathSegment{Static("books"), Capture("id", Int(64))},
		Query:      []QueryParam{{Name: "tag", Kind: QueryList, Type: String()}},
		Response:   Ref("Book", ""),
	}

	data, err := json.Marshal(ep)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got := string(data)

	for _, want := range []string{
		`"httpMethod":"GET"`,
		`"path":"/books/{id}"`,
		`"kind":"list"`,
		`"kind":"reference","name":"Book"`,
		`"primitiveKind":"Int","bitSize":64`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("JSON missing %s\ngot: %s", want, got)
		}
	}
	if strings.Contains(got, `"body"`) {
		t.Errorf("nil body should be omitted: %s", got)
	}
}

func TestStructJSON(t *testing.T) {
	s := &StructDescriptor{
		Name:   GoIdentifier{Name: "Book"},
		Fields: []FieldDescriptor{{Name: "Title", JSONName: "title", Type: String(), Optional: true}},
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got := string(data)
	for _, want := range []string{`"kind":"struct"`, `"jsonName":"title"`, `"optional":true`} {
		if !strings.Contains(got, want) {
			t.Errorf("JSON missing %s\ngot: %s", want, got)
		}
	}
}
