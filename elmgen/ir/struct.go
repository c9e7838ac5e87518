package ir

// StructDescriptor represents a record type: a Go struct, an OpenAPI object
// component, or a type declared in an API document.
type StructDescriptor struct {
	// Name is the type identifier.
	Name GoIdentifier

	// Fields contains the serialized fields in declaration order.
	// Embedded Go structs are already flattened by the providers.
	Fields []FieldDescriptor

	// Documentation for this type.
	Documentation Documentation

	// Source location, when the provider knows it.
	Source Source
}

// Kind returns KindStruct.
func (d *StructDescriptor) Kind() DescriptorKind { return KindStruct }

// TypeName returns the struct's name.
func (d *StructDescriptor) TypeName() GoIdentifier { return d.Name }

// Doc returns the struct's documentation.
func (d *StructDescriptor) Doc() Documentation { return d.Documentation }

// Src returns the struct's source location.
func (d *StructDescriptor) Src() Source { return d.Source }

func (*StructDescriptor) sealed() {}

// FieldDescriptor represents a single field within a struct.
type FieldDescriptor struct {
	// Name is the declared field name.
	Name string

	// Type is the field's type descriptor.
	Type TypeDescriptor

	// JSONName is the serialized property name.
	// Falls back to Name if no json tag or property name is present.
	JSONName string

	// Optional indicates the field can be absent from the JSON object
	// (json:",omitempty", json:",omitzero", or a non-required OpenAPI property).
	// Generators type optional fields as Maybe.
	Optional bool

	// Skip indicates json:"-" was set.
	Skip bool

	// Documentation for this field.
	Documentation Documentation
}

// Field returns a FieldDescriptor whose JSON name equals its declared name.
func Field(name string, typ TypeDescriptor) FieldDescriptor {
	return FieldDescriptor{Name: name, JSONName: name, Type: typ}
}

// AliasDescriptor represents a defined type over another type,
// e.g. `type UserID string`.
type AliasDescriptor struct {
	// Name is the type identifier.
	Name GoIdentifier

	// Underlying is the aliased type.
	Underlying TypeDescriptor

	// Documentation for this type.
	Documentation Documentation

	// Source location, when the provider knows it.
	Source Source
}

// Kind returns KindAlias.
func (d *AliasDescriptor) Kind() DescriptorKind { return KindAlias }

// TypeName returns the alias's name.
func (d *AliasDescriptor) TypeName() GoIdentifier { return d.Name }

// Doc returns the alias's documentation.
func (d *AliasDescriptor) Doc() Documentation { return d.Documentation }

// Src returns the alias's source location.
func (d *AliasDescriptor) Src() Source { return d.Source }

func (*AliasDescriptor) sealed() {}
