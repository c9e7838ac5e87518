package provider

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jhickner/servant-elm/elmgen/internal/validate"
	"github.com/jhickner/servant-elm/elmgen/ir"
)

// DocumentProvider builds a schema from a YAML API document:
//
//	name: bookstore
//	types:
//	  - name: Book
//	    doc: A catalogued title.
//	    fields:
//	      - {name: id, type: int}
//	      - {name: title, type: string}
//	      - {name: subtitle, type: string, optional: true}
//	  - name: BookID
//	    alias: int
//	endpoints:
//	  - method: GET
//	    path: /books/{id:int}
//	    response: Book
//	  - method: GET
//	    path: /books
//	    query:
//	      - {name: tag, kind: list, type: string}
//	    response: "[]Book"
//
// Type expressions use the notation accepted by ir.ParseTypeExpr.
type DocumentProvider struct{}

// DocumentInputOptions selects the document to load. Path wins when both
// are set.
type DocumentInputOptions struct {
	Path string
	Data []byte
}

// Document is the decoded form of an API document.
type Document struct {
	Name      string             `yaml:"name"`
	Types     []DocumentType     `yaml:"types" validate:"dive"`
	Endpoints []DocumentEndpoint `yaml:"endpoints" validate:"min=1,dive"`
}

// DocumentType declares a record (Fields) or an alias (Alias).
type DocumentType struct {
	Name   string          `yaml:"name" validate:"required,excludesall=."`
	Doc    string          `yaml:"doc"`
	Alias  string          `yaml:"alias" validate:"required_without=Fields,excluded_with=Fields"`
	Fields []DocumentField `yaml:"fields" validate:"dive"`
}

// DocumentField is one record field.
type DocumentField struct {
	Name     string `yaml:"name" validate:"required"`
	Type     string `yaml:"type" validate:"required"`
	JSON     string `yaml:"json"`
	Optional bool   `yaml:"optional"`
	Doc      string `yaml:"doc"`
}

// DocumentEndpoint is one endpoint. Path captures may carry a type:
// /books/{id:int}.
type DocumentEndpoint struct {
	Name     string          `yaml:"name"`
	Method   string          `yaml:"method" validate:"required,oneof=GET POST PUT PATCH DELETE HEAD OPTIONS"`
	Path     string          `yaml:"path" validate:"required,startswith=/"`
	Query    []DocumentQuery `yaml:"query" validate:"dive"`
	Body     string          `yaml:"body"`
	Response string          `yaml:"response"`
	Doc      string          `yaml:"doc"`
}

// DocumentQuery is one query parameter. Kind is normal (default), flag or list.
type DocumentQuery struct {
	Name string `yaml:"name" validate:"required"`
	Kind string `yaml:"kind" validate:"omitempty,oneof=normal flag list"`
	Type string `yaml:"type"`
}

// BuildSchema reads, validates and converts the document.
func (p *DocumentProvider) BuildSchema(ctx context.Context, opts DocumentInputOptions) (*ir.Schema, error) {
	data := opts.Data
	if opts.Path != "" {
		var err error
		data, err = os.ReadFile(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("read API document: %w", err)
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no API document provided")
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schema, err := doc.Schema()
	if err != nil {
		return nil, err
	}
	schema.Package.Path = opts.Path
	return schema, nil
}

// ParseDocument decodes and validates a YAML API document. Unknown keys
// are rejected.
func ParseDocument(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse API document: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid API document: %w", err)
	}
	return &doc, nil
}

// Schema converts the document into IR.
func (d *Document) Schema() (*ir.Schema, error) {
	schema := &ir.Schema{Package: ir.PackageInfo{Name: d.Name}}

	for _, t := range d.Types {
		decl, err := t.descriptor()
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", t.Name, err)
		}
		schema.AddType(decl)
	}
	for _, e := range d.Endpoints {
		ep, err := e.descriptor()
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", e.Method, e.Path, err)
		}
		schema.AddEndpoint(ep)
	}

	if errs := schema.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		return nil, fmt.Errorf("invalid API document: %s", strings.Join(msgs, "; "))
	}
	return schema, nil
}

func (t DocumentType) descriptor() (ir.TypeDescriptor, error) {
	id := ir.GoIdentifier{Name: t.Name}
	doc := docText(t.Doc)
	if t.Alias != "" {
		underlying, err := ir.ParseTypeExpr(t.Alias)
		if err != nil {
			return nil, err
		}
		return &ir.AliasDescriptor{Name: id, Underlying: underlying, Documentation: doc}, nil
	}

	fields := make([]ir.FieldDescriptor, 0, len(t.Fields))
	for _, f := range t.Fields {
		typ, err := ir.ParseTypeExpr(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		json := f.JSON
		if json == "" {
			json = f.Name
		}
		fields = append(fields, ir.FieldDescriptor{
			Name:          f.Name,
			Type:          typ,
			JSONName:      json,
			Optional:      f.Optional,
			Documentation: docText(f.Doc),
		})
	}
	return &ir.StructDescriptor{Name: id, Fields: fields, Documentation: doc}, nil
}

func (e DocumentEndpoint) descriptor() (ir.EndpointDescriptor, error) {
	segments, err := ir.ParsePath(e.Path)
	if err != nil {
		return ir.EndpointDescriptor{}, err
	}
	ep := ir.EndpointDescriptor{
		Name:          e.Name,
		HTTPMethod:    e.Method,
		Path:          segments,
		Documentation: docText(e.Doc),
		Response:      ir.Empty(),
	}

	for _, q := range e.Query {
		kind, _ := ir.ParseQueryKind(q.Kind)
		param := ir.QueryParam{Name: q.Name, Kind: kind}
		switch {
		case kind == ir.QueryFlag:
			param.Type = ir.Bool()
		case q.Type == "":
			param.Type = ir.String()
		default:
			if param.Type, err = ir.ParseTypeExpr(q.Type); err != nil {
				return ep, fmt.Errorf("query %s: %w", q.Name, err)
			}
		}
		ep.Query = append(ep.Query, param)
	}

	if e.Body != "" {
		if ep.Body, err = ir.ParseTypeExpr(e.Body); err != nil {
			return ep, fmt.Errorf("body: %w", err)
		}
	}
	if e.Response != "" {
		if ep.Response, err = ir.ParseTypeExpr(e.Response); err != nil {
			return ep, fmt.Errorf("response: %w", err)
		}
	}
	return ep, nil
}

func docText(s string) ir.Documentation {
	s = strings.TrimSpace(s)
	if s == "" {
		return ir.Documentation{}
	}
	summary, _, _ := strings.Cut(s, "\n")
	return ir.Documentation{Summary: summary, Body: s}
}
