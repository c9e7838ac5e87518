// Package ir defines the intermediate representation consumed by the Elm generator.
// Providers (reflection, Go source, OpenAPI, API documents) produce a Schema of named
// type descriptors and ordered endpoints; generators lower it into target source.
package ir

// GoIdentifier names a declared type together with the package it came from.
// Name is always a valid identifier; Package is empty for types that do not
// originate in Go code (OpenAPI components, API documents).
type GoIdentifier struct {
	Name    string
	Package string
}

// IsZero returns true if the identifier is empty.
func (id GoIdentifier) IsZero() bool {
	return id.Name == "" && id.Package == ""
}

// Documentation holds doc comments attached to a type, field or endpoint.
type Documentation struct {
	// Summary is the first sentence, suitable for one-line comments.
	Summary string

	// Body is the complete text, including the summary.
	Body string

	// Deprecated is non-nil if the symbol is marked deprecated.
	// The string value is the deprecation message (may be empty).
	Deprecated *string
}

// IsZero returns true if the documentation is empty.
func (d Documentation) IsZero() bool {
	return d.Summary == "" && d.Body == "" && d.Deprecated == nil
}

// Source represents source code location information.
type Source struct {
	File   string
	Line   int
	Column int
}

// IsZero returns true if the source location is empty.
func (s Source) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// Warning represents a non-fatal issue encountered while building or generating.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string

	// Source is the location that triggered the warning, if applicable.
	Source *Source

	// TypeName is the type that triggered the warning, if applicable.
	TypeName string
}

// PackageInfo describes where a schema came from.
type PackageInfo struct {
	// Path is the import path or input file.
	Path string

	// Name is a short display name.
	Name string

	// Dir is the filesystem directory, if known.
	Dir string
}

// IsZero returns true if the package info is empty.
func (p PackageInfo) IsZero() bool {
	return p.Path == "" && p.Name == "" && p.Dir == ""
}
