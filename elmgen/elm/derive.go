package elm

import (
	"fmt"

	"github.com/jhickner/servant-elm/elmgen/elm/syntax"
	"github.com/jhickner/servant-elm/elmgen/ir"
)

// recordField is a struct field resolved to its Elm name and wire name.
type recordField struct {
	name     string
	json     string
	src      ir.TypeDescriptor
	optional bool // typed Maybe on top of src
	absent   bool // may be missing from the JSON object
}

// recordFields resolves the serialized fields of s, skipping json:"-" fields.
func recordFields(s *ir.StructDescriptor) []recordField {
	used := make(map[string]bool, len(s.Fields))
	var out []recordField
	for _, f := range s.Fields {
		if f.Skip {
			continue
		}
		json := f.JSONName
		if json == "" {
			json = f.Name
		}
		name := valueName(json)
		for used[name] {
			name += "_"
		}
		used[name] = true
		_, isPtr := f.Type.(*ir.PtrDescriptor)
		out = append(out, recordField{
			name:     name,
			json:     json,
			src:      f.Type,
			optional: f.Optional && !isPtr,
			absent:   f.Optional,
		})
	}
	return out
}

func (l *lowerer) typeDecl(t ir.TypeDescriptor) (syntax.Decl, error) {
	name := typeName(t.TypeName().Name)
	doc := ""
	if l.opts.EmitComments {
		doc = docText(t.Doc())
	}
	switch t := t.(type) {
	case *ir.StructDescriptor:
		rec := &syntax.TRecord{}
		for _, f := range recordFields(t) {
			ft, err := l.elmType(f.src)
			if err != nil {
				return nil, fmt.Errorf("type %s field %s: %w", name, f.json, err)
			}
			if f.optional {
				ft = syntax.Con("Maybe", ft)
			}
			rec.Fields = append(rec.Fields, syntax.TField{Name: f.name, Type: ft})
		}
		return &syntax.TypeAlias{Name: name, Type: rec, Doc: doc}, nil
	case *ir.AliasDescriptor:
		ut, err := l.elmType(t.Underlying)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}
		return &syntax.TypeAlias{Name: name, Type: ut, Doc: doc}, nil
	}
	return nil, fmt.Errorf("type %s: cannot declare %s", name, t.Kind())
}

func (l *lowerer) decoderDecl(t ir.TypeDescriptor) (syntax.Decl, error) {
	name := typeName(t.TypeName().Name)
	decl := &syntax.FuncDecl{
		Name:      "decode" + name,
		Signature: syntax.Con("Json.Decode.Decoder", syntax.Con(name)),
	}
	switch t := t.(type) {
	case *ir.StructDescriptor:
		chain := &syntax.Chain{Head: syntax.Apply(syntax.V("Json.Decode.succeed"), syntax.V(name)), Op: "|:"}
		for _, f := range recordFields(t) {
			src := f.src
			if p, ok := src.(*ir.PtrDescriptor); ok && f.absent {
				src = p.Element
			}
			d, err := l.decoder(src)
			if err != nil {
				return nil, fmt.Errorf("type %s field %s: %w", name, f.json, err)
			}
			var field syntax.Expr = syntax.Infix(syntax.S(f.json), ":=", d)
			if f.absent {
				field = syntax.Apply(syntax.V("Json.Decode.maybe"), field)
			}
			chain.Tail = append(chain.Tail, field)
		}
		decl.Body = chain
	case *ir.AliasDescriptor:
		d, err := l.decoder(t.Underlying)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}
		decl.Body = d
	default:
		return nil, fmt.Errorf("type %s: cannot decode %s", name, t.Kind())
	}
	return decl, nil
}

func (l *lowerer) encoderDecl(t ir.TypeDescriptor) (syntax.Decl, error) {
	name := typeName(t.TypeName().Name)
	decl := &syntax.FuncDecl{
		Name:      "encode" + name,
		Signature: syntax.Func(syntax.Con(name), syntax.Con("Json.Encode.Value")),
	}
	switch t := t.(type) {
	case *ir.StructDescriptor:
		pairs := &syntax.List{Multiline: true}
		for _, f := range recordFields(t) {
			enc, err := l.encoder(f.src, 0)
			if err != nil {
				return nil, fmt.Errorf("type %s field %s: %w", name, f.json, err)
			}
			if f.optional {
				enc = maybeEncoder(enc)
			}
			pairs.Items = append(pairs.Items, &syntax.Tuple{Items: []syntax.Expr{
				syntax.S(f.json),
				syntax.Apply(enc, syntax.V("x."+f.name)),
			}})
		}
		decl.Params = []string{"x"}
		decl.Body = &syntax.Call{Fn: syntax.V("Json.Encode.object"), Args: []syntax.Expr{pairs}, Multiline: true}
	case *ir.AliasDescriptor:
		enc, err := l.encoder(t.Underlying, 0)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}
		decl.Body = enc
	default:
		return nil, fmt.Errorf("type %s: cannot encode %s", name, t.Kind())
	}
	return decl, nil
}
