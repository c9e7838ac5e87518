// Package provider implements input providers that build an IR schema from
// Go runtime types, Go source, OpenAPI documents, or YAML API documents.
package provider

import (
	"context"
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/jhickner/servant-elm/elmgen/ir"
)

// ReflectionProvider extracts types using runtime reflection.
// It needs no source access, but cannot see doc comments.
type ReflectionProvider struct{}

// ReflectionInputOptions configures reflection-based type extraction.
type ReflectionInputOptions struct {
	// RootTypes are the types to extract. Every named type reachable
	// from them is added to the schema.
	RootTypes []reflect.Type
}

// BuildSchema extracts types and returns a Schema.
func (p *ReflectionProvider) BuildSchema(ctx context.Context, opts ReflectionInputOptions) (*ir.Schema, error) {
	if len(opts.RootTypes) == 0 {
		return nil, fmt.Errorf("no root types provided")
	}

	b := NewTypeBuilder(&ir.Schema{})
	for _, t := range opts.RootTypes {
		if _, err := b.Describe(ctx, t); err != nil {
			return nil, err
		}
	}
	return b.Schema(), nil
}

var (
	timeType          = reflect.TypeFor[time.Time]()
	durationType      = reflect.TypeFor[time.Duration]()
	numberType        = reflect.TypeFor[json.Number]()
	rawMessageType    = reflect.TypeFor[json.RawMessage]()
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// TypeBuilder converts Go runtime types into IR descriptors. Named types
// become references, and their declarations are added to the schema the
// first time they are seen.
//
// A TypeBuilder is not safe for concurrent use.
type TypeBuilder struct {
	schema     *ir.Schema
	visited    map[reflect.Type]bool // declarations already in the schema
	processing map[reflect.Type]bool // declarations currently being built
}

// NewTypeBuilder returns a builder that adds declarations to schema.
func NewTypeBuilder(schema *ir.Schema) *TypeBuilder {
	return &TypeBuilder{
		schema:     schema,
		visited:    make(map[reflect.Type]bool),
		processing: make(map[reflect.Type]bool),
	}
}

// Schema returns the schema the builder writes to.
func (b *TypeBuilder) Schema() *ir.Schema { return b.schema }

// Describe returns the descriptor for t.
func (b *TypeBuilder) Describe(ctx context.Context, t reflect.Type) (ir.TypeDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("nil type")
	}
	return b.describe(t)
}

func (b *TypeBuilder) describe(t reflect.Type) (ir.TypeDescriptor, error) {
	if desc := b.special(t); desc != nil {
		return desc, nil
	}
	if err := unsupported(t); err != nil {
		return nil, err
	}
	if isNamed(t) && t.Kind() != reflect.Interface {
		if err := b.declare(t); err != nil {
			return nil, err
		}
		return ir.Ref(typeName(t), t.PkgPath()), nil
	}
	return b.describeKind(t)
}

// describeKind converts t by its kind, ignoring any declared name.
func (b *TypeBuilder) describeKind(t reflect.Type) (ir.TypeDescriptor, error) {
	switch t.Kind() {
	case reflect.Bool:
		return ir.Bool(), nil
	case reflect.String:
		return ir.String(), nil
	case reflect.Int:
		return ir.Int(0), nil
	case reflect.Int8:
		return ir.Int(8), nil
	case reflect.Int16:
		return ir.Int(16), nil
	case reflect.Int32:
		return ir.Int(32), nil
	case reflect.Int64:
		return ir.Int(64), nil
	case reflect.Uint, reflect.Uintptr:
		return ir.Uint(0), nil
	case reflect.Uint8:
		return ir.Uint(8), nil
	case reflect.Uint16:
		return ir.Uint(16), nil
	case reflect.Uint32:
		return ir.Uint(32), nil
	case reflect.Uint64:
		return ir.Uint(64), nil
	case reflect.Float32:
		return ir.Float(32), nil
	case reflect.Float64:
		return ir.Float(64), nil

	case reflect.Pointer:
		elem, err := b.describe(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Ptr(elem), nil

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return ir.Bytes(), nil
		}
		elem, err := b.describe(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Slice(elem), nil

	case reflect.Array:
		elem, err := b.describe(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Array(elem, t.Len()), nil

	case reflect.Map:
		if err := validateMapKey(t.Key()); err != nil {
			return nil, err
		}
		key, err := b.describe(t.Key())
		if err != nil {
			return nil, err
		}
		value, err := b.describe(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Map(key, value), nil

	case reflect.Interface:
		if t.NumMethod() > 0 {
			b.addWarning("interface_type", fmt.Sprintf("interface type %s mapped to any", t), t.Name())
		}
		return ir.Any(), nil

	case reflect.Struct:
		if t.NumField() == 0 {
			return ir.Empty(), nil
		}
		return nil, fmt.Errorf("anonymous struct %s: declare a named type", t)
	}
	return nil, fmt.Errorf("unsupported type: %s", t)
}

// special handles types with a fixed JSON encoding.
func (b *TypeBuilder) special(t reflect.Type) ir.TypeDescriptor {
	switch t {
	case timeType:
		return ir.Time()
	case durationType:
		return ir.Duration()
	case numberType:
		return ir.Float(64)
	case rawMessageType:
		return ir.Any()
	}
	if isNamed(t) && t.Kind() != reflect.Interface && hasCustomMarshaler(t) {
		b.addWarning("custom_marshaler", fmt.Sprintf("type %s implements a custom marshaler, mapped to any", t.Name()), t.Name())
		return ir.Any()
	}
	return nil
}

// declare adds the declaration of named type t to the schema.
func (b *TypeBuilder) declare(t reflect.Type) error {
	if b.visited[t] {
		return nil
	}
	if b.processing[t] {
		// The reference is enough; the declaration is finished by the caller up the stack.
		return nil
	}
	b.processing[t] = true
	defer delete(b.processing, t)

	id := ir.GoIdentifier{Name: typeName(t), Package: t.PkgPath()}
	var decl ir.TypeDescriptor
	if t.Kind() == reflect.Struct {
		fields, err := b.fields(t, map[reflect.Type]bool{t: true})
		if err != nil {
			return fmt.Errorf("type %s: %w", t, err)
		}
		decl = &ir.StructDescriptor{Name: id, Fields: fields}
	} else {
		underlying, err := b.describeKind(t)
		if err != nil {
			return fmt.Errorf("type %s: %w", t, err)
		}
		decl = &ir.AliasDescriptor{Name: id, Underlying: underlying}
	}

	b.visited[t] = true
	b.schema.AddType(decl)
	return nil
}

// fields collects the serialized fields of struct t, flattening embedded
// structs that have no json name.
func (b *TypeBuilder) fields(t reflect.Type, embedding map[reflect.Type]bool) ([]ir.FieldDescriptor, error) {
	var out []ir.FieldDescriptor
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, opts := parseJSONTag(f.Tag.Get("json"))
		if name == "-" && len(opts) == 0 {
			continue
		}

		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && ft != timeType {
				if embedding[ft] {
					b.addWarning("cycle_detected", fmt.Sprintf("recursive embedding of %s in %s", ft, t), t.Name())
					continue
				}
				embedding[ft] = true
				inner, err := b.fields(ft, embedding)
				delete(embedding, ft)
				if err != nil {
					return nil, err
				}
				out = append(out, inner...)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}

		desc, err := b.describe(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		if name == "" {
			name = f.Name
		}
		out = append(out, ir.FieldDescriptor{
			Name:     f.Name,
			Type:     desc,
			JSONName: name,
			Optional: hasOption(opts, "omitempty") || hasOption(opts, "omitzero"),
		})
	}
	return out, nil
}

func (b *TypeBuilder) addWarning(code, msg, typeName string) {
	b.schema.AddWarning(ir.Warning{Code: code, Message: msg, TypeName: typeName})
}

func isNamed(t reflect.Type) bool {
	return t.Name() != "" && t.PkgPath() != ""
}

func unsupported(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return fmt.Errorf("unsupported type %s: %s cannot be encoded as JSON", t, t.Kind())
	}
	return nil
}

func hasCustomMarshaler(t reflect.Type) bool {
	for _, c := range []reflect.Type{t, reflect.PointerTo(t)} {
		if c.Implements(jsonMarshalerType) || c.Implements(textMarshalerType) {
			return true
		}
	}
	return false
}

// validateMapKey accepts the key types encoding/json can serialize.
func validateMapKey(k reflect.Type) error {
	switch k.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return nil
	}
	if k.Implements(textMarshalerType) || reflect.PointerTo(k).Implements(textMarshalerType) {
		return nil
	}
	return fmt.Errorf("unsupported map key type: %s", k)
}

// typeName returns the declared name of t. Generic instantiations such as
// Page[example.com/api.Book] become Page_Book.
func typeName(t reflect.Type) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, sanitizeTypeName(t.Name()))
}

func sanitizeTypeName(name string) string {
	open := strings.IndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return name
	}
	parts := []string{name[:open]}
	for _, arg := range splitTypeArgs(name[open+1 : len(name)-1]) {
		parts = append(parts, sanitizeTypeArg(arg))
	}
	return strings.Join(parts, "_")
}

func sanitizeTypeArg(arg string) string {
	arg = strings.TrimSpace(arg)
	prefix := ""
	for {
		switch {
		case strings.HasPrefix(arg, "*"):
			prefix += "Ptr"
			arg = arg[1:]
			continue
		case strings.HasPrefix(arg, "[]"):
			prefix += "List"
			arg = arg[2:]
			continue
		}
		break
	}
	// Strip the package path but keep any nested type arguments.
	head, rest := arg, ""
	if i := strings.IndexByte(arg, '['); i >= 0 {
		head, rest = arg[:i], arg[i:]
	}
	if i := strings.LastIndexByte(head, '.'); i >= 0 {
		head = head[i+1:]
	}
	return prefix + sanitizeTypeName(head+rest)
}

// splitTypeArgs splits a type argument list on top-level commas.
func splitTypeArgs(s string) []string {
	var args []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, s[start:i])
				start = i + 1
			}
		}
	}
	return append(args, s[start:])
}

func parseJSONTag(tag string) (name string, opts []string) {
	if tag == "" {
		return "", nil
	}
	parts := strings.Split(tag, ",")
	return parts[0], parts[1:]
}

func hasOption(opts []string, want string) bool {
	for _, o := range opts {
		if o == want {
			return true
		}
	}
	return false
}
