package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/jhickner/servant-elm/elmgen/ir"
)

const componentPrefix = "#/components/schemas/"

// OpenAPIProvider builds a schema from an OpenAPI 3 document. Component
// schemas become named types and operations become endpoints.
type OpenAPIProvider struct{}

// OpenAPIInputOptions selects the document to load. Exactly one of Path and
// Data is used; Path wins when both are set.
type OpenAPIInputOptions struct {
	// Path is a YAML or JSON file on disk.
	Path string

	// Data is the document itself.
	Data []byte

	// SkipValidation disables kin-openapi's document validation.
	SkipValidation bool
}

// BuildSchema loads and validates the document and converts it.
//
// Paths are emitted in lexical order and operations sharing a path in
// ir.HTTPMethods order. Only JSON request and response bodies are
// understood; an operation with any other request body is skipped with a
// warning.
func (p *OpenAPIProvider) BuildSchema(ctx context.Context, opts OpenAPIInputOptions) (*ir.Schema, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	var (
		doc *openapi3.T
		err error
	)
	switch {
	case opts.Path != "":
		doc, err = loader.LoadFromFile(opts.Path)
	case len(opts.Data) > 0:
		doc, err = loader.LoadFromData(opts.Data)
	default:
		return nil, fmt.Errorf("no OpenAPI document provided")
	}
	if err != nil {
		return nil, fmt.Errorf("load OpenAPI document: %w", err)
	}
	if !opts.SkipValidation {
		if err := doc.Validate(ctx); err != nil {
			return nil, fmt.Errorf("validate OpenAPI document: %w", err)
		}
	}

	c := &openAPIConverter{
		schema: &ir.Schema{},
		used:   make(map[string]bool),
	}
	c.schema.Package = ir.PackageInfo{Path: opts.Path}
	if doc.Info != nil {
		c.schema.Package.Name = doc.Info.Title
	}
	if err := c.components(doc); err != nil {
		return nil, err
	}
	if err := c.paths(ctx, doc); err != nil {
		return nil, err
	}
	return c.schema, nil
}

type openAPIConverter struct {
	schema *ir.Schema
	used   map[string]bool // declared type names
}

func (c *openAPIConverter) components(doc *openapi3.T) error {
	if doc.Components == nil {
		return nil
	}
	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
		c.used[componentName(name)] = true
	}
	sort.Strings(names)

	for _, name := range names {
		ref := doc.Components.Schemas[name]
		if ref == nil || ref.Value == nil {
			return fmt.Errorf("component %s: missing schema", name)
		}
		if err := c.declare(componentName(name), ref.Value); err != nil {
			return fmt.Errorf("component %s: %w", name, err)
		}
	}
	return nil
}

// declare adds a named type for s.
func (c *openAPIConverter) declare(name string, s *openapi3.Schema) error {
	id := ir.GoIdentifier{Name: name}
	doc := schemaDocumentation(s)

	if isObject(s) && len(s.Properties) > 0 {
		required := make(map[string]bool, len(s.Required))
		for _, r := range s.Required {
			required[r] = true
		}
		props := make([]string, 0, len(s.Properties))
		for prop := range s.Properties {
			props = append(props, prop)
		}
		sort.Strings(props)

		fields := make([]ir.FieldDescriptor, 0, len(props))
		for _, prop := range props {
			ref := s.Properties[prop]
			t, err := c.typeOf(ref, name+exportedName(prop))
			if err != nil {
				return fmt.Errorf("property %s: %w", prop, err)
			}
			f := ir.FieldDescriptor{
				Name:     prop,
				Type:     t,
				JSONName: prop,
				Optional: !required[prop],
			}
			if ref.Value != nil {
				f.Documentation = schemaDocumentation(ref.Value)
			}
			fields = append(fields, f)
		}
		c.schema.AddType(&ir.StructDescriptor{Name: id, Fields: fields, Documentation: doc})
		return nil
	}

	t, err := c.typeOf(openapi3.NewSchemaRef("", s), name+"Value")
	if err != nil {
		return err
	}
	c.schema.AddType(&ir.AliasDescriptor{Name: id, Underlying: t, Documentation: doc})
	return nil
}

// typeOf converts a schema reference. Inline objects with properties are
// declared under a name derived from hint.
func (c *openAPIConverter) typeOf(ref *openapi3.SchemaRef, hint string) (ir.TypeDescriptor, error) {
	if ref == nil {
		return ir.Any(), nil
	}
	if ref.Ref != "" {
		if !strings.HasPrefix(ref.Ref, componentPrefix) {
			return nil, fmt.Errorf("unsupported reference %q", ref.Ref)
		}
		return ir.Ref(componentName(strings.TrimPrefix(ref.Ref, componentPrefix)), ""), nil
	}
	s := ref.Value
	if s == nil {
		return ir.Any(), nil
	}

	t, err := c.valueType(s, hint)
	if err != nil {
		return nil, err
	}
	if s.Nullable || (s.Type != nil && s.Type.Includes(openapi3.TypeNull)) {
		return ir.Ptr(t), nil
	}
	return t, nil
}

func (c *openAPIConverter) valueType(s *openapi3.Schema, hint string) (ir.TypeDescriptor, error) {
	if len(s.AllOf) == 1 {
		return c.typeOf(s.AllOf[0], hint)
	}
	if len(s.AllOf) > 0 || len(s.OneOf) > 0 || len(s.AnyOf) > 0 {
		c.schema.AddWarning(ir.Warning{
			Code:     "composed_schema",
			Message:  fmt.Sprintf("%s: allOf/oneOf/anyOf mapped to any", hint),
			TypeName: hint,
		})
		return ir.Any(), nil
	}

	switch {
	case is(s, openapi3.TypeString):
		switch s.Format {
		case "date-time":
			return ir.Time(), nil
		case "byte", "binary":
			return ir.Bytes(), nil
		}
		return ir.String(), nil
	case is(s, openapi3.TypeInteger):
		switch s.Format {
		case "int32":
			return ir.Int(32), nil
		case "int64":
			return ir.Int(64), nil
		}
		return ir.Int(0), nil
	case is(s, openapi3.TypeNumber):
		if s.Format == "float" {
			return ir.Float(32), nil
		}
		return ir.Float(64), nil
	case is(s, openapi3.TypeBoolean):
		return ir.Bool(), nil
	case is(s, openapi3.TypeArray):
		elem, err := c.typeOf(s.Items, hint+"Item")
		if err != nil {
			return nil, err
		}
		return ir.Slice(elem), nil
	case isObject(s):
		if len(s.Properties) > 0 {
			name := c.fresh(hint)
			if err := c.declare(name, s); err != nil {
				return nil, err
			}
			return ir.Ref(name, ""), nil
		}
		if extra := s.AdditionalProperties.Schema; extra != nil {
			value, err := c.typeOf(extra, hint+"Value")
			if err != nil {
				return nil, err
			}
			return ir.Map(ir.String(), value), nil
		}
		return ir.Map(ir.String(), ir.Any()), nil
	}
	return ir.Any(), nil
}

// fresh reserves a type name based on hint.
func (c *openAPIConverter) fresh(hint string) string {
	name := componentName(hint)
	for i := 2; c.used[name]; i++ {
		name = fmt.Sprintf("%s%d", componentName(hint), i)
	}
	c.used[name] = true
	return name
}

func (c *openAPIConverter) paths(ctx context.Context, doc *openapi3.T) error {
	if doc.Paths == nil {
		return nil
	}
	items := doc.Paths.Map()
	paths := make([]string, 0, len(items))
	for path := range items {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		item := items[path]
		for _, method := range ir.HTTPMethods {
			op := item.GetOperation(method)
			if op == nil {
				continue
			}
			ep, ok, err := c.endpoint(method, path, item, op)
			if err != nil {
				return fmt.Errorf("%s %s: %w", method, path, err)
			}
			if ok {
				c.schema.AddEndpoint(ep)
			}
		}
	}
	return nil
}

func (c *openAPIConverter) endpoint(method, path string, item *openapi3.PathItem, op *openapi3.Operation) (ir.EndpointDescriptor, bool, error) {
	segments, err := ir.ParsePath(path)
	if err != nil {
		return ir.EndpointDescriptor{}, false, err
	}
	ep := ir.EndpointDescriptor{
		Name:          op.OperationID,
		HTTPMethod:    method,
		Path:          segments,
		Documentation: ir.Documentation{Summary: op.Summary, Body: op.Description},
	}
	if op.Deprecated {
		msg := ""
		ep.Documentation.Deprecated = &msg
	}
	hint := op.OperationID
	if hint == "" {
		hint = strings.ToLower(method) + " " + path
	}
	hint = exportedName(hint)

	for _, param := range parameters(item, op) {
		t, err := c.typeOf(param.Schema, hint+exportedName(param.Name))
		if err != nil {
			return ep, false, fmt.Errorf("parameter %s: %w", param.Name, err)
		}
		switch param.In {
		case openapi3.ParameterInPath:
			found := false
			for i := range ep.Path {
				if ep.Path[i].Capture && ep.Path[i].Name == param.Name {
					ep.Path[i].Type = t
					found = true
				}
			}
			if !found {
				return ep, false, fmt.Errorf("path parameter %s does not appear in the path", param.Name)
			}
		case openapi3.ParameterInQuery:
			ep.Query = append(ep.Query, queryParam(param.Name, t))
		default:
			c.schema.AddWarning(ir.Warning{
				Code:    "ignored_parameter",
				Message: fmt.Sprintf("%s %s: %s parameter %s is not sent by the generated client", method, path, param.In, param.Name),
			})
		}
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		media := jsonMedia(op.RequestBody.Value.Content)
		if media == nil {
			c.schema.AddWarning(ir.Warning{
				Code:    "skipped_endpoint",
				Message: fmt.Sprintf("%s %s: request body is not JSON", method, path),
			})
			return ep, false, nil
		}
		body, err := c.typeOf(media.Schema, hint+"Body")
		if err != nil {
			return ep, false, fmt.Errorf("request body: %w", err)
		}
		ep.Body = body
	}

	ep.Response = ir.Empty()
	if media := successMedia(op.Responses); media != nil && media.Schema != nil {
		res, err := c.typeOf(media.Schema, hint+"Response")
		if err != nil {
			return ep, false, fmt.Errorf("response: %w", err)
		}
		ep.Response = res
	}
	return ep, true, nil
}

func queryParam(name string, t ir.TypeDescriptor) ir.QueryParam {
	switch typ := t.(type) {
	case *ir.ArrayDescriptor:
		return ir.QueryParam{Name: name, Kind: ir.QueryList, Type: typ.Element}
	case *ir.PrimitiveDescriptor:
		if typ.PrimitiveKind == ir.PrimitiveBool {
			return ir.QueryParam{Name: name, Kind: ir.QueryFlag, Type: ir.Bool()}
		}
	}
	return ir.QueryParam{Name: name, Kind: ir.QueryNormal, Type: t}
}

// parameters merges path-level and operation-level parameters; an
// operation parameter replaces a path parameter with the same name and location.
func parameters(item *openapi3.PathItem, op *openapi3.Operation) []*openapi3.Parameter {
	var out []*openapi3.Parameter
	index := make(map[string]int)
	for _, list := range []openapi3.Parameters{item.Parameters, op.Parameters} {
		for _, ref := range list {
			if ref == nil || ref.Value == nil {
				continue
			}
			key := ref.Value.In + ":" + ref.Value.Name
			if i, ok := index[key]; ok {
				out[i] = ref.Value
				continue
			}
			index[key] = len(out)
			out = append(out, ref.Value)
		}
	}
	return out
}

// successMedia returns the JSON content of the 200, 201 or default response.
func successMedia(responses *openapi3.Responses) *openapi3.MediaType {
	if responses == nil {
		return nil
	}
	for _, code := range []string{"200", "201", "default"} {
		r := responses.Value(code)
		if r == nil || r.Value == nil {
			continue
		}
		return jsonMedia(r.Value.Content)
	}
	return nil
}

func jsonMedia(content openapi3.Content) *openapi3.MediaType {
	if m := content.Get("application/json"); m != nil {
		return m
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.HasSuffix(strings.SplitN(k, ";", 2)[0], "+json") {
			return content[k]
		}
	}
	return nil
}

func schemaDocumentation(s *openapi3.Schema) ir.Documentation {
	doc := ir.Documentation{Summary: s.Title, Body: s.Description}
	if doc.Summary == "" {
		doc.Summary, _, _ = strings.Cut(s.Description, "\n")
	}
	if s.Deprecated {
		msg := ""
		doc.Deprecated = &msg
	}
	return doc
}

func is(s *openapi3.Schema, typ string) bool {
	return s.Type != nil && s.Type.Includes(typ)
}

func isObject(s *openapi3.Schema) bool {
	return is(s, openapi3.TypeObject) || (s.Type == nil && len(s.Properties) > 0)
}

// componentName turns a component key into an identifier.
func componentName(name string) string {
	out := strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, name)
	if out == "" || unicode.IsDigit(rune(out[0])) {
		out = "T" + out
	}
	return out
}

// exportedName joins the words of s in PascalCase: "get /books/{id}" -> "GetBooksId".
func exportedName(s string) string {
	var b strings.Builder
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}
