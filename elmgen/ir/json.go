package ir

import "encoding/json"

// JSON serialization support for IR types.
// All type descriptors include a "kind" field for type discrimination.

// MarshalJSON implements json.Marshaler for StructDescriptor.
func (d *StructDescriptor) MarshalJSON() ([]byte, error) {
	type Alias StructDescriptor
	return json.Marshal(&struct {
		Kind string `json:"kind"`
		*Alias
	}{
		Kind:  "struct",
		Alias: (*Alias)(d),
	})
}

// MarshalJSON implements json.Marshaler for AliasDescriptor.
func (d *AliasDescriptor) MarshalJSON() ([]byte, error) {
	type Alias AliasDescriptor
	return json.Marshal(&struct {
		Kind string `json:"kind"`
		*Alias
	}{
		Kind:  "alias",
		Alias: (*Alias)(d),
	})
}

// MarshalJSON implements json.Marshaler for PrimitiveDescriptor.
func (d *PrimitiveDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind          string `json:"kind"`
		PrimitiveKind string `json:"primitiveKind"`
		BitSize       int    `json:"bitSize,omitempty"`
	}{
		Kind:          "primitive",
		PrimitiveKind: d.PrimitiveKind.String(),
		BitSize:       d.BitSize,
	})
}

// MarshalJSON implements json.Marshaler for ArrayDescriptor.
func (d *ArrayDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind    string         `json:"kind"`
		Element TypeDescriptor `json:"element"`
		Length  int            `json:"length"`
	}{
		Kind:    "array",
		Element: d.Element,
		Length:  d.Length,
	})
}

// MarshalJSON implements json.Marshaler for MapDescriptor.
func (d *MapDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind  string         `json:"kind"`
		Key   TypeDescriptor `json:"key"`
		Value TypeDescriptor `json:"value"`
	}{
		Kind:  "map",
		Key:   d.Key,
		Value: d.Value,
	})
}

// MarshalJSON implements json.Marshaler for ReferenceDescriptor.
func (d *ReferenceDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind string `json:"kind"`
		Name string `json:"name"`
		Pkg  string `json:"package,omitempty"`
	}{
		Kind: "reference",
		Name: d.Target.Name,
		Pkg:  d.Target.Package,
	})
}

// MarshalJSON implements json.Marshaler for PtrDescriptor.
func (d *PtrDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Kind    string         `json:"kind"`
		Element TypeDescriptor `json:"element"`
	}{
		Kind:    "ptr",
		Element: d.Element,
	})
}

// MarshalJSON implements json.Marshaler for GoIdentifier.
func (id GoIdentifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name    string `json:"name"`
		Package string `json:"package,omitempty"`
	}{
		Name:    id.Name,
		Package: id.Package,
	})
}

// MarshalJSON implements json.Marshaler for FieldDescriptor.
func (f FieldDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name     string         `json:"name"`
		Type     TypeDescriptor `json:"type"`
		JSONName string         `json:"jsonName"`
		Optional bool           `json:"optional,omitempty"`
		Skip     bool           `json:"skip,omitempty"`
		Doc      string         `json:"doc,omitempty"`
	}{
		Name:     f.Name,
		Type:     f.Type,
		JSONName: f.JSONName,
		Optional: f.Optional,
		Skip:     f.Skip,
		Doc:      f.Documentation.Summary,
	})
}

// MarshalJSON implements json.Marshaler for PathSegment.
func (p PathSegment) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name    string         `json:"name"`
		Capture bool           `json:"capture,omitempty"`
		Type    TypeDescriptor `json:"type,omitempty"`
	}{
		Name:    p.Name,
		Capture: p.Capture,
		Type:    p.Type,
	})
}

// MarshalJSON implements json.Marshaler for QueryParam.
func (q QueryParam) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name string         `json:"name"`
		Kind string         `json:"kind"`
		Type TypeDescriptor `json:"type,omitempty"`
	}{
		Name: q.Name,
		Kind: q.Kind.String(),
		Type: q.Type,
	})
}

// MarshalJSON implements json.Marshaler for EndpointDescriptor.
func (e EndpointDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Name       string         `json:"name,omitempty"`
		HTTPMethod string         `json:"httpMethod"`
		Path       string         `json:"path"`
		Segments   []PathSegment  `json:"segments"`
		Query      []QueryParam   `json:"query,omitempty"`
		Body       TypeDescriptor `json:"body,omitempty"`
		Response   TypeDescriptor `json:"response,omitempty"`
		Doc        string         `json:"doc,omitempty"`
	}{
		Name:       e.Name,
		HTTPMethod: e.HTTPMethod,
		Path:       e.PathString(),
		Segments:   e.Path,
		Query:      e.Query,
		Body:       e.Body,
		Response:   e.Response,
		Doc:        e.Documentation.Summary,
	})
}
