package ir

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseTypeExpr parses the compact type notation used by API documents and
// route templates:
//
//	string int int32 uint64 float64 bool bytes time duration any unit
//	[]T  *T  map[string]T  Name  pkg.Name
func ParseTypeExpr(expr string) (TypeDescriptor, error) {
	s := strings.TrimSpace(expr)
	switch {
	case s == "":
		return nil, fmt.Errorf("empty type expression")
	case strings.HasPrefix(s, "[]"):
		elem, err := ParseTypeExpr(s[2:])
		if err != nil {
			return nil, err
		}
		return Slice(elem), nil
	case strings.HasPrefix(s, "*"):
		elem, err := ParseTypeExpr(s[1:])
		if err != nil {
			return nil, err
		}
		return Ptr(elem), nil
	case strings.HasPrefix(s, "map["):
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, fmt.Errorf("type %q: unterminated map key", expr)
		}
		key, err := ParseTypeExpr(s[4:end])
		if err != nil {
			return nil, err
		}
		value, err := ParseTypeExpr(s[end+1:])
		if err != nil {
			return nil, err
		}
		return Map(key, value), nil
	}

	if p := parsePrimitive(s); p != nil {
		return p, nil
	}

	pkg, name := "", s
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		pkg, name = s[:i], s[i+1:]
	}
	if !isIdentifier(name) {
		return nil, fmt.Errorf("type %q: invalid type name", expr)
	}
	return Ref(name, pkg), nil
}

func parsePrimitive(s string) *PrimitiveDescriptor {
	switch s {
	case "string":
		return String()
	case "bool":
		return Bool()
	case "int":
		return Int(0)
	case "int8":
		return Int(8)
	case "int16":
		return Int(16)
	case "int32":
		return Int(32)
	case "int64":
		return Int(64)
	case "uint":
		return Uint(0)
	case "uint8":
		return Uint(8)
	case "uint16":
		return Uint(16)
	case "uint32":
		return Uint(32)
	case "uint64":
		return Uint(64)
	case "float", "float64":
		return Float(64)
	case "float32":
		return Float(32)
	case "bytes":
		return Bytes()
	case "time":
		return Time()
	case "duration":
		return Duration()
	case "any":
		return Any()
	case "unit", "empty":
		return Empty()
	}
	return nil
}

// ParsePath splits a route template such as "/books/{id:int}/reviews" into
// segments. A capture without a type is a string. Empty components are ignored,
// so "" and "/" both yield no segments.
func ParsePath(path string) ([]PathSegment, error) {
	var segments []PathSegment
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, "{") {
			if strings.ContainsAny(part, "{}") {
				return nil, fmt.Errorf("path %q: malformed segment %q", path, part)
			}
			segments = append(segments, Static(part))
			continue
		}
		if !strings.HasSuffix(part, "}") {
			return nil, fmt.Errorf("path %q: unterminated capture %q", path, part)
		}
		inner := part[1 : len(part)-1]
		name, typeExpr, hasType := strings.Cut(inner, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("path %q: capture without a name", path)
		}
		var typ TypeDescriptor = String()
		if hasType {
			t, err := ParseTypeExpr(typeExpr)
			if err != nil {
				return nil, fmt.Errorf("path %q: capture %q: %w", path, name, err)
			}
			typ = t
		}
		segments = append(segments, Capture(name, typ))
	}
	return segments, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
