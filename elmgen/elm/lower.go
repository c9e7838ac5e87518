package elm

import (
	"fmt"
	"strings"

	"github.com/jhickner/servant-elm/elmgen/elm/syntax"
	"github.com/jhickner/servant-elm/elmgen/ir"
)

// LowerOptions configures LowerSchema.
type LowerOptions struct {
	// EmitComments attaches documentation to type aliases and request functions.
	EmitComments bool
}

// lowerer converts IR endpoints of one schema into Requests.
type lowerer struct {
	schema   *ir.Schema
	opts     LowerOptions
	warnings []ir.Warning
	warned   map[string]bool
	// declared maps each emitted Elm type name to its Go type.
	declared map[string]ir.GoIdentifier
}

func newLowerer(schema *ir.Schema, opts LowerOptions) *lowerer {
	l := &lowerer{
		schema:   schema,
		opts:     opts,
		warned:   make(map[string]bool),
		declared: make(map[string]ir.GoIdentifier),
	}
	seen := make(map[string]ir.GoIdentifier)
	for _, t := range schema.Types {
		id := t.TypeName()
		name := typeName(id.Name)
		if prev, ok := seen[name]; ok && prev != id {
			l.warn("type_name_collision", name, fmt.Sprintf("%s.%s and %s.%s both become Elm type %s", prev.Package, prev.Name, id.Package, id.Name, name))
			continue
		}
		seen[name] = id
	}
	return l
}

func (l *lowerer) warn(code, typeName, msg string) {
	key := code + "\x00" + typeName
	if l.warned[key] {
		return
	}
	l.warned[key] = true
	l.warnings = append(l.warnings, ir.Warning{Code: code, Message: msg, TypeName: typeName})
}

// NewRequest lowers a single endpoint of schema into a Request.
func NewRequest(schema *ir.Schema, ep ir.EndpointDescriptor) (*Request, error) {
	return newLowerer(schema, LowerOptions{EmitComments: true}).request(ep)
}

// LowerSchema lowers every endpoint of schema in declaration order.
// Warnings describe lossy or suspicious conversions; they never stop lowering.
// Two reachable Go types that map to the same Elm name fail with a
// type_name_collision *RequestError.
func LowerSchema(schema *ir.Schema, opts LowerOptions) ([]*Request, []ir.Warning, error) {
	l := newLowerer(schema, opts)
	reqs := make([]*Request, 0, len(schema.Endpoints))
	for _, ep := range schema.Endpoints {
		req, err := l.request(ep)
		if err != nil {
			return nil, l.warnings, err
		}
		reqs = append(reqs, req)
	}
	return reqs, l.warnings, nil
}

func (l *lowerer) request(ep ir.EndpointDescriptor) (*Request, error) {
	fail := func(err error) (*Request, error) {
		return nil, fmt.Errorf("%s: %w", ep.Label(), err)
	}

	req := &Request{Method: strings.ToUpper(ep.HTTPMethod)}
	if l.opts.EmitComments {
		req.Doc = docText(ep.Documentation)
	}

	// Names bound inside the generated function body are unavailable to arguments.
	used := map[string]bool{"request": true, "params": true, "body": true}
	bind := func(name string) string {
		n := valueName(name)
		for used[n] {
			n += "_"
		}
		used[n] = true
		return n
	}

	var argRoots []ir.TypeDescriptor
	for _, seg := range ep.Path {
		if !seg.Capture {
			req.Segments = append(req.Segments, Static(seg.Name))
			continue
		}
		t, err := l.elmType(seg.Type)
		if err != nil {
			return fail(fmt.Errorf("capture %q: %w", seg.Name, err))
		}
		arg := bind(seg.Name)
		req.Segments = append(req.Segments, Capture(arg))
		req.ArgNames = append(req.ArgNames, arg)
		req.ArgTypes = append(req.ArgTypes, t)
		argRoots = append(argRoots, seg.Type)
	}

	for _, q := range ep.Query {
		arg := bind(q.Name)
		var t syntax.Type
		switch q.Kind {
		case ir.QueryFlag:
			t = syntax.Con("Bool")
			req.QueryArgs = append(req.QueryArgs, QueryArg{Name: q.Name, Arg: arg, Kind: ArgFlag})
		case ir.QueryList:
			elem := q.Type
			if arr, ok := elem.(*ir.ArrayDescriptor); ok {
				elem = arr.Element
			}
			et, err := l.elmType(elem)
			if err != nil {
				return fail(fmt.Errorf("query %q: %w", q.Name, err))
			}
			t = syntax.Con("List", et)
			argRoots = append(argRoots, elem)
			req.QueryArgs = append(req.QueryArgs, QueryArg{Name: q.Name, Arg: arg, Kind: ArgList})
		case ir.QueryNormal:
			vt, err := l.elmType(q.Type)
			if err != nil {
				return fail(fmt.Errorf("query %q: %w", q.Name, err))
			}
			t = maybe(q.Type, vt)
			argRoots = append(argRoots, q.Type)
			req.QueryArgs = append(req.QueryArgs, QueryArg{Name: q.Name, Arg: arg, Kind: ArgNormal})
		default:
			return fail(fmt.Errorf("query %q: unknown kind %v", q.Name, q.Kind))
		}
		req.ArgNames = append(req.ArgNames, arg)
		req.ArgTypes = append(req.ArgTypes, t)
	}

	if ep.Body != nil {
		bt, err := l.elmType(ep.Body)
		if err != nil {
			return fail(fmt.Errorf("body: %w", err))
		}
		enc, err := l.encoder(ep.Body, 0)
		if err != nil {
			return fail(fmt.Errorf("body: %w", err))
		}
		req.ArgNames = append(req.ArgNames, "body")
		req.ArgTypes = append(req.ArgTypes, bt)
		req.BodyEncoder = enc
	}

	response := ep.Response
	if response == nil {
		response = ir.Empty()
	}
	rt, err := l.elmType(response)
	if err != nil {
		return fail(fmt.Errorf("response: %w", err))
	}
	dec, err := l.decoder(response)
	if err != nil {
		return fail(fmt.Errorf("response: %w", err))
	}
	req.Result = rt
	req.Decoder = dec

	roots := append(argRoots, ep.Body, response)
	named, err := l.reachable(roots...)
	if err != nil {
		return fail(err)
	}
	for _, t := range named {
		if err := l.declare(ep, t.TypeName()); err != nil {
			return nil, err
		}
		d, err := l.typeDecl(t)
		if err != nil {
			return fail(err)
		}
		req.TypeDefs = append(req.TypeDefs, d)
	}

	decoded, err := l.reachable(response)
	if err != nil {
		return fail(err)
	}
	for _, t := range decoded {
		d, err := l.decoderDecl(t)
		if err != nil {
			return fail(err)
		}
		req.DecoderDefs = append(req.DecoderDefs, d)
	}

	encoded, err := l.reachable(ep.Body)
	if err != nil {
		return fail(err)
	}
	for _, t := range encoded {
		d, err := l.encoderDecl(t)
		if err != nil {
			return fail(err)
		}
		req.EncoderDefs = append(req.EncoderDefs, d)
	}
	return req, nil
}

// declare records that id is emitted as an Elm type alias.
func (l *lowerer) declare(ep ir.EndpointDescriptor, id ir.GoIdentifier) error {
	name := typeName(id.Name)
	prev, ok := l.declared[name]
	if !ok {
		l.declared[name] = id
		return nil
	}
	if prev == id {
		return nil
	}
	return &RequestError{
		Endpoint: ep.Label(),
		Code:     "type_name_collision",
		Message:  fmt.Sprintf("%s and %s both become Elm type %s", refName(prev), refName(id), name),
	}
}

// maybe wraps t in Maybe unless the IR type already is nullable.
func maybe(src ir.TypeDescriptor, t syntax.Type) syntax.Type {
	if _, ok := src.(*ir.PtrDescriptor); ok {
		return t
	}
	return syntax.Con("Maybe", t)
}

// reachable returns the named types used by roots, dependencies first.
// Nil roots are skipped.
func (l *lowerer) reachable(roots ...ir.TypeDescriptor) ([]ir.TypeDescriptor, error) {
	var out []ir.TypeDescriptor
	done := make(map[ir.GoIdentifier]bool)
	active := make(map[ir.GoIdentifier]bool)

	var visit func(t ir.TypeDescriptor) error
	visitNamed := func(t ir.TypeDescriptor) error {
		id := t.TypeName()
		if done[id] {
			return nil
		}
		if active[id] {
			l.warn("recursive_type", id.Name, fmt.Sprintf("type %s refers to itself; Elm type aliases cannot be recursive", id.Name))
			return nil
		}
		active[id] = true
		switch t := t.(type) {
		case *ir.StructDescriptor:
			for _, f := range t.Fields {
				if f.Skip {
					continue
				}
				if err := visit(f.Type); err != nil {
					return err
				}
			}
		case *ir.AliasDescriptor:
			if err := visit(t.Underlying); err != nil {
				return err
			}
		}
		delete(active, id)
		done[id] = true
		out = append(out, t)
		return nil
	}
	visit = func(t ir.TypeDescriptor) error {
		switch t := t.(type) {
		case nil:
			return nil
		case *ir.ReferenceDescriptor:
			target := l.schema.FindType(t.Target)
			if target == nil {
				return fmt.Errorf("unknown type %s", refName(t.Target))
			}
			return visitNamed(target)
		case *ir.StructDescriptor, *ir.AliasDescriptor:
			return visitNamed(t)
		case *ir.ArrayDescriptor:
			return visit(t.Element)
		case *ir.MapDescriptor:
			return visit(t.Value)
		case *ir.PtrDescriptor:
			return visit(t.Element)
		}
		return nil
	}

	for _, r := range roots {
		if err := visit(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func refName(id ir.GoIdentifier) string {
	if id.Package == "" {
		return id.Name
	}
	return id.Package + "." + id.Name
}

// elmType maps an IR type to the Elm type that holds its JSON value.
func (l *lowerer) elmType(t ir.TypeDescriptor) (syntax.Type, error) {
	switch t := t.(type) {
	case nil:
		return nil, fmt.Errorf("missing type")
	case *ir.PrimitiveDescriptor:
		switch t.PrimitiveKind {
		case ir.PrimitiveBool:
			return syntax.Con("Bool"), nil
		case ir.PrimitiveInt, ir.PrimitiveUint, ir.PrimitiveDuration:
			return syntax.Con("Int"), nil
		case ir.PrimitiveFloat:
			return syntax.Con("Float"), nil
		case ir.PrimitiveString, ir.PrimitiveBytes:
			return syntax.Con("String"), nil
		case ir.PrimitiveTime:
			return syntax.Con("Date"), nil
		case ir.PrimitiveAny:
			return syntax.Con("Json.Decode.Value"), nil
		case ir.PrimitiveEmpty:
			return &syntax.TUnit{}, nil
		}
		return nil, fmt.Errorf("unsupported primitive %s", t.PrimitiveKind)
	case *ir.ArrayDescriptor:
		elem, err := l.elmType(t.Element)
		if err != nil {
			return nil, err
		}
		return syntax.Con("List", elem), nil
	case *ir.MapDescriptor:
		if p, ok := t.Key.(*ir.PrimitiveDescriptor); !ok || p.PrimitiveKind != ir.PrimitiveString {
			l.warn("map_key_as_string", "", "non-string map keys are decoded as String")
		}
		value, err := l.elmType(t.Value)
		if err != nil {
			return nil, err
		}
		return syntax.Con("Dict", syntax.Con("String"), value), nil
	case *ir.PtrDescriptor:
		elem, err := l.elmType(t.Element)
		if err != nil {
			return nil, err
		}
		return maybe(t.Element, elem), nil
	case *ir.ReferenceDescriptor:
		return syntax.Con(typeName(t.Target.Name)), nil
	case *ir.StructDescriptor, *ir.AliasDescriptor:
		return syntax.Con(typeName(t.TypeName().Name)), nil
	}
	return nil, fmt.Errorf("unsupported type %s", t.Kind())
}

// decoder returns a Json.Decode.Decoder expression for t.
func (l *lowerer) decoder(t ir.TypeDescriptor) (syntax.Expr, error) {
	switch t := t.(type) {
	case nil:
		return nil, fmt.Errorf("missing type")
	case *ir.PrimitiveDescriptor:
		switch t.PrimitiveKind {
		case ir.PrimitiveBool:
			return syntax.V("Json.Decode.bool"), nil
		case ir.PrimitiveInt, ir.PrimitiveUint, ir.PrimitiveDuration:
			return syntax.V("Json.Decode.int"), nil
		case ir.PrimitiveFloat:
			return syntax.V("Json.Decode.float"), nil
		case ir.PrimitiveString, ir.PrimitiveBytes:
			return syntax.V("Json.Decode.string"), nil
		case ir.PrimitiveTime:
			return syntax.V("Json.Decode.Extra.date"), nil
		case ir.PrimitiveAny:
			return syntax.V("Json.Decode.value"), nil
		case ir.PrimitiveEmpty:
			return syntax.Apply(syntax.V("Json.Decode.succeed"), &syntax.Unit{}), nil
		}
		return nil, fmt.Errorf("unsupported primitive %s", t.PrimitiveKind)
	case *ir.ArrayDescriptor:
		elem, err := l.decoder(t.Element)
		if err != nil {
			return nil, err
		}
		return syntax.Apply(syntax.V("Json.Decode.list"), elem), nil
	case *ir.MapDescriptor:
		value, err := l.decoder(t.Value)
		if err != nil {
			return nil, err
		}
		return syntax.Apply(syntax.V("Json.Decode.dict"), value), nil
	case *ir.PtrDescriptor:
		if _, ok := t.Element.(*ir.PtrDescriptor); ok {
			return l.decoder(t.Element)
		}
		elem, err := l.decoder(t.Element)
		if err != nil {
			return nil, err
		}
		return syntax.Apply(syntax.V("Json.Decode.maybe"), elem), nil
	case *ir.ReferenceDescriptor:
		return syntax.V("decode" + typeName(t.Target.Name)), nil
	case *ir.StructDescriptor, *ir.AliasDescriptor:
		return syntax.V("decode" + typeName(t.TypeName().Name)), nil
	}
	return nil, fmt.Errorf("unsupported type %s", t.Kind())
}

// encoder returns a function expression of type a -> Json.Encode.Value for t.
// depth numbers lambda variables of nested dictionaries.
func (l *lowerer) encoder(t ir.TypeDescriptor, depth int) (syntax.Expr, error) {
	switch t := t.(type) {
	case nil:
		return nil, fmt.Errorf("missing type")
	case *ir.PrimitiveDescriptor:
		switch t.PrimitiveKind {
		case ir.PrimitiveBool:
			return syntax.V("Json.Encode.bool"), nil
		case ir.PrimitiveInt, ir.PrimitiveUint, ir.PrimitiveDuration:
			return syntax.V("Json.Encode.int"), nil
		case ir.PrimitiveFloat:
			return syntax.V("Json.Encode.float"), nil
		case ir.PrimitiveString, ir.PrimitiveBytes:
			return syntax.V("Json.Encode.string"), nil
		case ir.PrimitiveTime:
			return syntax.Infix(syntax.V("Json.Encode.string"), "<<", syntax.V("toString")), nil
		case ir.PrimitiveAny:
			return syntax.V("identity"), nil
		case ir.PrimitiveEmpty:
			return &syntax.Lambda{Params: []string{"_"}, Body: syntax.V("Json.Encode.null")}, nil
		}
		return nil, fmt.Errorf("unsupported primitive %s", t.PrimitiveKind)
	case *ir.ArrayDescriptor:
		elem, err := l.encoder(t.Element, depth)
		if err != nil {
			return nil, err
		}
		return syntax.Infix(syntax.V("Json.Encode.list"), "<<", syntax.Apply(syntax.V("List.map"), elem)), nil
	case *ir.MapDescriptor:
		value, err := l.encoder(t.Value, depth+1)
		if err != nil {
			return nil, err
		}
		k, v := "k", "v"
		if depth > 0 {
			k, v = fmt.Sprintf("k%d", depth), fmt.Sprintf("v%d", depth)
		}
		pair := &syntax.Lambda{
			Params: []string{"(" + k + ", " + v + ")"},
			Body:   &syntax.Tuple{Items: []syntax.Expr{syntax.V(k), syntax.Apply(value, syntax.V(v))}},
		}
		return syntax.Infix(
			syntax.Infix(syntax.V("Json.Encode.object"), "<<", syntax.Apply(syntax.V("List.map"), pair)),
			"<<",
			syntax.V("Dict.toList"),
		), nil
	case *ir.PtrDescriptor:
		if _, ok := t.Element.(*ir.PtrDescriptor); ok {
			return l.encoder(t.Element, depth)
		}
		elem, err := l.encoder(t.Element, depth)
		if err != nil {
			return nil, err
		}
		return maybeEncoder(elem), nil
	case *ir.ReferenceDescriptor:
		return syntax.V("encode" + typeName(t.Target.Name)), nil
	case *ir.StructDescriptor, *ir.AliasDescriptor:
		return syntax.V("encode" + typeName(t.TypeName().Name)), nil
	}
	return nil, fmt.Errorf("unsupported type %s", t.Kind())
}

func maybeEncoder(elem syntax.Expr) syntax.Expr {
	return syntax.Infix(
		syntax.Apply(syntax.V("Maybe.withDefault"), syntax.V("Json.Encode.null")),
		"<<",
		syntax.Apply(syntax.V("Maybe.map"), elem),
	)
}

func docText(d ir.Documentation) string {
	if d.Body != "" {
		return d.Body
	}
	return d.Summary
}
