package ir

// Schema represents a complete API: named types plus endpoints in declaration order.
type Schema struct {
	// Package describes where the schema came from.
	Package PackageInfo

	// Types contains top-level named type descriptors.
	// Only Struct and Alias descriptors appear here; expression types appear
	// nested within fields and endpoints. Generators MUST NOT rely on any
	// particular ordering and MUST tolerate circular references.
	Types []TypeDescriptor

	// Endpoints contains the API's endpoints in declaration order.
	// Generated output follows this order.
	Endpoints []EndpointDescriptor

	// Warnings contains non-fatal issues encountered during schema building.
	Warnings []Warning
}

// AddType adds a named type descriptor to the schema.
func (s *Schema) AddType(t TypeDescriptor) {
	s.Types = append(s.Types, t)
}

// AddEndpoint appends an endpoint to the schema.
func (s *Schema) AddEndpoint(e EndpointDescriptor) {
	s.Endpoints = append(s.Endpoints, e)
}

// AddWarning adds a warning to the schema.
func (s *Schema) AddWarning(w Warning) {
	s.Warnings = append(s.Warnings, w)
}

// FindType looks up a type by name. Returns nil if not found.
func (s *Schema) FindType(name GoIdentifier) TypeDescriptor {
	for _, t := range s.Types {
		if t.TypeName() == name {
			return t
		}
	}
	return nil
}

// Validate checks the schema for structural issues.
// Returns all validation errors found (not just the first).
func (s *Schema) Validate() []error {
	var errors []*ValidationError

	typeNames := make(map[GoIdentifier]bool)
	for _, t := range s.Types {
		name := t.TypeName()
		if name.IsZero() {
			continue
		}
		if typeNames[name] {
			errors = append(errors, &ValidationError{
				Code:    "duplicate_type",
				Message: "duplicate type name: " + name.Name + " (package: " + name.Package + ")",
			})
		}
		typeNames[name] = true
	}

	for _, t := range s.Types {
		switch d := t.(type) {
		case *StructDescriptor:
			for _, field := range d.Fields {
				if field.Type == nil {
					errors = append(errors, &ValidationError{
						Code:    "missing_field_type",
						Message: "field " + d.Name.Name + "." + field.Name + " has no type",
					})
					continue
				}
				errors = append(errors, validateTypeReferences(field.Type, typeNames, "field "+d.Name.Name+"."+field.Name)...)
			}
		case *AliasDescriptor:
			errors = append(errors, validateTypeReferences(d.Underlying, typeNames, "alias "+d.Name.Name)...)
		}
	}

	seen := make(map[string]bool)
	for _, ep := range s.Endpoints {
		label := ep.Label()
		if !IsHTTPMethod(ep.HTTPMethod) {
			errors = append(errors, &ValidationError{
				Code:    "invalid_method",
				Message: "endpoint " + label + " uses unknown HTTP method " + ep.HTTPMethod,
			})
		}
		if seen[label] {
			errors = append(errors, &ValidationError{
				Code:    "duplicate_endpoint",
				Message: "duplicate endpoint: " + label,
			})
		}
		seen[label] = true

		for _, seg := range ep.Path {
			if seg.Name == "" {
				errors = append(errors, &ValidationError{
					Code:    "empty_segment",
					Message: "endpoint " + label + " has an empty path segment",
				})
				continue
			}
			if !seg.Capture {
				continue
			}
			if seg.Type == nil {
				errors = append(errors, &ValidationError{
					Code:    "missing_capture_type",
					Message: "endpoint " + label + " capture " + seg.Name + " has no type",
				})
				continue
			}
			errors = append(errors, validateTypeReferences(seg.Type, typeNames, "endpoint "+label+" capture "+seg.Name)...)
		}

		for _, q := range ep.Query {
			if q.Name == "" {
				errors = append(errors, &ValidationError{
					Code:    "empty_query_name",
					Message: "endpoint " + label + " has an unnamed query parameter",
				})
			}
			if q.Kind < QueryNormal || q.Kind > QueryList {
				errors = append(errors, &ValidationError{
					Code:    "invalid_query_kind",
					Message: "endpoint " + label + " query " + q.Name + " has unknown kind",
				})
			}
			if q.Kind != QueryFlag && q.Type == nil {
				errors = append(errors, &ValidationError{
					Code:    "missing_query_type",
					Message: "endpoint " + label + " query " + q.Name + " has no type",
				})
				continue
			}
			if q.Kind != QueryFlag {
				errors = append(errors, validateTypeReferences(q.Type, typeNames, "endpoint "+label+" query "+q.Name)...)
			}
		}

		if ep.Body != nil {
			errors = append(errors, validateTypeReferences(ep.Body, typeNames, "endpoint "+label+" Body")...)
		}
		if ep.Response == nil {
			errors = append(errors, &ValidationError{
				Code:    "missing_response",
				Message: "endpoint " + label + " has no response type",
			})
		} else {
			errors = append(errors, validateTypeReferences(ep.Response, typeNames, "endpoint "+label+" Response")...)
		}
	}

	var result []error
	for _, e := range errors {
		result = append(result, e)
	}
	return result
}

// validateTypeReferences recursively walks a TypeDescriptor and checks that all
// ReferenceDescriptors point to types that exist in typeNames.
func validateTypeReferences(td TypeDescriptor, typeNames map[GoIdentifier]bool, context string) []*ValidationError {
	if td == nil {
		return nil
	}

	var errors []*ValidationError

	switch d := td.(type) {
	case *ReferenceDescriptor:
		if !typeNames[d.Target] {
			errors = append(errors, &ValidationError{
				Code:    "missing_type_reference",
				Message: context + " references unknown type: " + d.Target.Name,
			})
		}
	case *ArrayDescriptor:
		errors = append(errors, validateTypeReferences(d.Element, typeNames, context)...)
	case *MapDescriptor:
		errors = append(errors, validateTypeReferences(d.Key, typeNames, context)...)
		errors = append(errors, validateTypeReferences(d.Value, typeNames, context)...)
	case *PtrDescriptor:
		errors = append(errors, validateTypeReferences(d.Element, typeNames, context)...)
	}

	return errors
}

// ValidationError represents a schema validation error.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
