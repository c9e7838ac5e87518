package provider

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"reflect"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/jhickner/servant-elm/elmgen/ir"
)

// SourceProvider extracts types by analyzing Go source code. Unlike
// ReflectionProvider it preserves doc comments on types and fields.
type SourceProvider struct{}

// SourceInputOptions configures source-based type extraction.
type SourceInputOptions struct {
	// Packages are the Go package paths to analyze.
	Packages []string

	// RootTypes are the type names to extract (e.g., "Book", "CreateBookRequest").
	// If empty, all exported types in the packages are extracted.
	RootTypes []string
}

// BuildSchema analyzes source code and returns a Schema.
// Every named type reachable from RootTypes is extracted.
func (p *SourceProvider) BuildSchema(ctx context.Context, opts SourceInputOptions) (*ir.Schema, error) {
	if len(opts.Packages) == 0 {
		return nil, fmt.Errorf("no packages specified")
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(cfg, opts.Packages...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found")
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors)
		}
	}

	b := &schemaBuilder{
		pkgs:       pkgs,
		schema:     &ir.Schema{},
		namedTypes: make(map[string]bool),
		docs:       make(map[token.Pos]*ast.CommentGroup),
	}
	b.indexComments()

	// packages.Load returns packages in dependency order, not input order.
	main := pkgs[0]
	for _, pkg := range pkgs {
		if pkg.PkgPath == opts.Packages[0] {
			main = pkg
			break
		}
	}
	b.schema.Package = ir.PackageInfo{Path: main.PkgPath, Name: main.Name}
	if len(main.GoFiles) > 0 {
		b.schema.Package.Dir = filepath.Dir(main.GoFiles[0])
	}

	if len(opts.RootTypes) > 0 {
		for _, name := range opts.RootTypes {
			if err := b.extractRootType(name); err != nil {
				return nil, fmt.Errorf("failed to extract root type %s: %w", name, err)
			}
		}
	} else if err := b.extractAllExportedTypes(); err != nil {
		return nil, fmt.Errorf("failed to extract exported types: %w", err)
	}

	for len(b.pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		named := b.pending[0]
		b.pending = b.pending[1:]
		if err := b.extractNamedType(named); err != nil {
			return nil, err
		}
	}

	return b.schema, nil
}

// schemaBuilder accumulates types while walking the loaded packages.
type schemaBuilder struct {
	pkgs       []*packages.Package
	schema     *ir.Schema
	namedTypes map[string]bool // key: pkgPath.Name
	pending    []*types.Named
	docs       map[token.Pos]*ast.CommentGroup // declaring identifier -> doc comment
}

// indexComments records the doc comment of every type spec and struct
// field, keyed by the position of the declaring identifier.
func (b *schemaBuilder) indexComments() {
	for _, pkg := range b.pkgs {
		for _, file := range pkg.Syntax {
			ast.Inspect(file, func(n ast.Node) bool {
				switch node := n.(type) {
				case *ast.GenDecl:
					if node.Tok != token.TYPE {
						return true
					}
					for _, spec := range node.Specs {
						ts := spec.(*ast.TypeSpec)
						doc := ts.Doc
						if doc == nil && len(node.Specs) == 1 {
							doc = node.Doc
						}
						if doc != nil {
							b.docs[ts.Name.Pos()] = doc
						}
					}
				case *ast.Field:
					doc := node.Doc
					if doc == nil {
						doc = node.Comment
					}
					if doc == nil {
						return true
					}
					for _, name := range node.Names {
						b.docs[name.Pos()] = doc
					}
				}
				return true
			})
		}
	}
}

// extractRootType finds and extracts a named type by name.
func (b *schemaBuilder) extractRootType(name string) error {
	for _, pkg := range b.pkgs {
		tn, ok := pkg.Types.Scope().Lookup(name).(*types.TypeName)
		if !ok {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok {
			return fmt.Errorf("type %s is not a defined type", name)
		}
		return b.extractNamedType(named)
	}
	return fmt.Errorf("type %s not found in any package", name)
}

// extractAllExportedTypes extracts all exported types from all packages.
func (b *schemaBuilder) extractAllExportedTypes() error {
	for _, pkg := range b.pkgs {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !tn.Exported() {
				continue
			}
			named, ok := tn.Type().(*types.Named)
			if !ok || named.TypeParams().Len() > 0 {
				// Generic types are described per instantiation.
				continue
			}
			if err := b.extractNamedType(named); err != nil {
				return err
			}
		}
	}
	return nil
}

// extractNamedType adds the declaration of named to the schema.
func (b *schemaBuilder) extractNamedType(named *types.Named) error {
	tn := named.Obj()
	key := b.typeKey(named)
	if b.namedTypes[key] {
		return nil
	}
	b.namedTypes[key] = true

	id := ir.GoIdentifier{Name: b.namedTypeName(named), Package: pkgPath(named.Obj())}
	doc := b.documentation(tn.Pos())
	src := b.source(tn.Pos())

	if b.hasCustomMarshaler(named) {
		b.addWarning("custom_marshaler", fmt.Sprintf("type %s implements a custom marshaler, mapped to any", tn.Name()), tn.Name())
		b.schema.AddType(&ir.AliasDescriptor{Name: id, Underlying: ir.Any(), Documentation: doc, Source: src})
		return nil
	}

	switch underlying := named.Underlying().(type) {
	case *types.Struct:
		fields, err := b.structFields(underlying, map[*types.Struct]bool{underlying: true})
		if err != nil {
			return fmt.Errorf("type %s: %w", tn.Name(), err)
		}
		b.schema.AddType(&ir.StructDescriptor{Name: id, Fields: fields, Documentation: doc, Source: src})

	case *types.Interface:
		if !underlying.Empty() {
			b.addWarning("interface_type", fmt.Sprintf("interface type %s mapped to any", tn.Name()), tn.Name())
		}
		b.schema.AddType(&ir.AliasDescriptor{Name: id, Underlying: ir.Any(), Documentation: doc, Source: src})

	default:
		desc, err := b.convertType(underlying)
		if err != nil {
			return fmt.Errorf("type %s: %w", tn.Name(), err)
		}
		b.schema.AddType(&ir.AliasDescriptor{Name: id, Underlying: desc, Documentation: doc, Source: src})
	}
	return nil
}

// structFields converts the serialized fields of st, flattening embedded
// structs without a json name.
func (b *schemaBuilder) structFields(st *types.Struct, embedding map[*types.Struct]bool) ([]ir.FieldDescriptor, error) {
	var out []ir.FieldDescriptor
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		name, opts := parseJSONTag(reflect.StructTag(st.Tag(i)).Get("json"))
		if name == "-" && len(opts) == 0 {
			continue
		}

		if field.Embedded() && name == "" {
			ft := field.Type()
			if ptr, ok := ft.(*types.Pointer); ok {
				ft = ptr.Elem()
			}
			if inner, ok := ft.Underlying().(*types.Struct); ok && !isTimeType(ft) {
				if embedding[inner] {
					b.addWarning("cycle_detected", fmt.Sprintf("recursive embedding of %s", ft), field.Name())
					continue
				}
				embedding[inner] = true
				fields, err := b.structFields(inner, embedding)
				delete(embedding, inner)
				if err != nil {
					return nil, err
				}
				out = append(out, fields...)
				continue
			}
		}
		if !field.Exported() {
			continue
		}

		desc, err := b.convertType(field.Type())
		if err != nil {
			return nil, fmt.Errorf("failed to convert field %s: %w", field.Name(), err)
		}
		if name == "" {
			name = field.Name()
		}
		out = append(out, ir.FieldDescriptor{
			Name:          field.Name(),
			Type:          desc,
			JSONName:      name,
			Optional:      hasOption(opts, "omitempty") || hasOption(opts, "omitzero"),
			Documentation: b.documentation(field.Pos()),
		})
	}
	return out, nil
}

// convertType converts a Go type to an IR TypeDescriptor, queueing every
// named type it references for extraction.
func (b *schemaBuilder) convertType(t types.Type) (ir.TypeDescriptor, error) {
	if desc := b.handleSpecialType(t); desc != nil {
		return desc, nil
	}

	switch typ := t.(type) {
	case *types.Basic:
		return convertBasicType(typ)

	case *types.Named:
		if _, ok := typ.Underlying().(*types.Interface); ok {
			return b.convertType(typ.Underlying())
		}
		b.pending = append(b.pending, typ)
		return ir.Ref(b.namedTypeName(typ), pkgPath(typ.Obj())), nil

	case *types.Alias:
		return b.convertType(types.Unalias(typ))

	case *types.Pointer:
		elem, err := b.convertType(typ.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Ptr(elem), nil

	case *types.Slice:
		elem, err := b.convertType(typ.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Slice(elem), nil

	case *types.Array:
		elem, err := b.convertType(typ.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Array(elem, int(typ.Len())), nil

	case *types.Map:
		if !b.isValidMapKey(typ.Key()) {
			return nil, fmt.Errorf("unsupported map key type: %s", typ.Key())
		}
		key, err := b.convertType(typ.Key())
		if err != nil {
			return nil, err
		}
		value, err := b.convertType(typ.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Map(key, value), nil

	case *types.Interface:
		if !typ.Empty() {
			b.addWarning("interface_type", fmt.Sprintf("interface type %s mapped to any", typ), "")
		}
		return ir.Any(), nil

	case *types.Struct:
		if typ.NumFields() == 0 {
			return ir.Empty(), nil
		}
		return nil, fmt.Errorf("anonymous struct %s: declare a named type", typ)

	case *types.TypeParam:
		return nil, fmt.Errorf("uninstantiated type parameter %s", typ.Obj().Name())

	case *types.Chan, *types.Signature:
		return nil, fmt.Errorf("unsupported type: %s", t)
	}
	return nil, fmt.Errorf("unknown type: %T", t)
}

// handleSpecialType handles []byte, time.Time, time.Duration and the
// encoding/json types.
func (b *schemaBuilder) handleSpecialType(t types.Type) ir.TypeDescriptor {
	switch typ := t.(type) {
	case *types.Slice:
		if basic, ok := typ.Elem().(*types.Basic); ok && basic.Kind() == types.Uint8 {
			return ir.Bytes()
		}

	case *types.Named:
		obj := typ.Obj()
		switch pkgPath(obj) + "." + obj.Name() {
		case "time.Time":
			return ir.Time()
		case "time.Duration":
			return ir.Duration()
		case "encoding/json.Number":
			return ir.Float(64)
		case "encoding/json.RawMessage":
			return ir.Any()
		}
		if b.hasCustomMarshaler(typ) {
			b.addWarning("custom_marshaler", fmt.Sprintf("type %s implements a custom marshaler, mapped to any", obj.Name()), obj.Name())
			return ir.Any()
		}
	}
	return nil
}

// hasCustomMarshaler reports whether the type or its pointer declares
// MarshalJSON or MarshalText.
func (b *schemaBuilder) hasCustomMarshaler(named *types.Named) bool {
	return hasMethod(named, "MarshalJSON") || hasMethod(named, "MarshalText")
}

func hasMethod(named *types.Named, name string) bool {
	obj, _, _ := types.LookupFieldOrMethod(types.NewPointer(named), true, named.Obj().Pkg(), name)
	fn, ok := obj.(*types.Func)
	if !ok {
		return false
	}
	sig := fn.Type().(*types.Signature)
	return sig.Params().Len() == 0 && sig.Results().Len() == 2
}

// isValidMapKey checks if a type is a valid JSON map key.
func (b *schemaBuilder) isValidMapKey(t types.Type) bool {
	switch typ := t.(type) {
	case *types.Basic:
		kind := typ.Kind()
		return kind == types.String || kind >= types.Int && kind <= types.Uint64
	case *types.Named:
		if hasMethod(typ, "MarshalText") {
			return true
		}
		return b.isValidMapKey(typ.Underlying())
	case *types.Alias:
		return b.isValidMapKey(types.Unalias(typ))
	}
	return false
}

func convertBasicType(basic *types.Basic) (ir.TypeDescriptor, error) {
	switch basic.Kind() {
	case types.Bool:
		return ir.Bool(), nil
	case types.String:
		return ir.String(), nil
	case types.Int:
		return ir.Int(0), nil
	case types.Int8:
		return ir.Int(8), nil
	case types.Int16:
		return ir.Int(16), nil
	case types.Int32:
		return ir.Int(32), nil
	case types.Int64:
		return ir.Int(64), nil
	case types.Uint, types.Uintptr:
		return ir.Uint(0), nil
	case types.Uint8:
		return ir.Uint(8), nil
	case types.Uint16:
		return ir.Uint(16), nil
	case types.Uint32:
		return ir.Uint(32), nil
	case types.Uint64:
		return ir.Uint(64), nil
	case types.Float32:
		return ir.Float(32), nil
	case types.Float64:
		return ir.Float(64), nil
	}
	return nil, fmt.Errorf("unsupported basic type: %s", basic)
}

// typeKey generates a unique key for a named type.
func (b *schemaBuilder) typeKey(named *types.Named) string {
	return pkgPath(named.Obj()) + "." + b.namedTypeName(named)
}

// namedTypeName returns the declared name, with type arguments folded in
// the same way the reflection provider names generic instantiations.
func (b *schemaBuilder) namedTypeName(named *types.Named) string {
	args := named.TypeArgs()
	if args.Len() == 0 {
		return named.Obj().Name()
	}
	parts := make([]string, 0, args.Len())
	for i := 0; i < args.Len(); i++ {
		parts = append(parts, types.TypeString(args.At(i), func(p *types.Package) string { return p.Path() }))
	}
	return sanitizeTypeName(named.Obj().Name() + "[" + strings.Join(parts, ",") + "]")
}

// documentation returns the doc comment attached at pos.
func (b *schemaBuilder) documentation(pos token.Pos) ir.Documentation {
	return parseDocumentation(b.docs[pos])
}

// parseDocumentation splits a comment group into summary, body and
// deprecation notice.
func parseDocumentation(cg *ast.CommentGroup) ir.Documentation {
	if cg == nil {
		return ir.Documentation{}
	}

	lines := strings.Split(strings.TrimSpace(cg.Text()), "\n")
	var deprecated *string
	for i, line := range lines {
		if strings.HasPrefix(line, "Deprecated:") {
			msg := strings.TrimSpace(strings.TrimPrefix(line, "Deprecated:"))
			deprecated = &msg
			lines = append(lines[:i], lines[i+1:]...)
			break
		}
	}

	var summary string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			summary = trimmed
			break
		}
	}

	return ir.Documentation{
		Summary:    summary,
		Body:       strings.TrimSpace(strings.Join(lines, "\n")),
		Deprecated: deprecated,
	}
}

// source resolves pos against the loaded file sets.
func (b *schemaBuilder) source(pos token.Pos) ir.Source {
	if !pos.IsValid() {
		return ir.Source{}
	}
	for _, pkg := range b.pkgs {
		if pkg.Fset != nil {
			p := pkg.Fset.Position(pos)
			return ir.Source{File: p.Filename, Line: p.Line, Column: p.Column}
		}
	}
	return ir.Source{}
}

func (b *schemaBuilder) addWarning(code, msg, typeName string) {
	b.schema.AddWarning(ir.Warning{Code: code, Message: msg, TypeName: typeName})
}

func pkgPath(obj types.Object) string {
	if obj == nil || obj.Pkg() == nil {
		return ""
	}
	return obj.Pkg().Path()
}

func isTimeType(t types.Type) bool {
	named, ok := t.(*types.Named)
	return ok && pkgPath(named.Obj()) == "time" && named.Obj().Name() == "Time"
}
