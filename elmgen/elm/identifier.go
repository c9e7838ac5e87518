package elm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Elm 0.17 reserved words.
var reservedWords = map[string]bool{
	"if":           true,
	"then":         true,
	"else":         true,
	"case":         true,
	"of":           true,
	"let":          true,
	"in":           true,
	"type":         true,
	"module":       true,
	"where":        true,
	"import":       true,
	"exposing":     true,
	"as":           true,
	"port":         true,
	"infix":        true,
	"infixl":       true,
	"infixr":       true,
	"alias":        true,
	"effect":       true,
	"command":      true,
	"subscription": true,
}

// escapeReservedWord escapes a reserved word by appending an underscore.
func escapeReservedWord(name string) string {
	if reservedWords[name] {
		return name + "_"
	}
	return name
}

// isValueIdentifier reports whether name can be used as an Elm value or
// parameter name as-is.
func isValueIdentifier(name string) bool {
	if name == "" || reservedWords[name] {
		return false
	}
	for i, r := range name {
		switch {
		case i == 0 && !unicode.IsLower(r):
			return false
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
		default:
			return false
		}
	}
	return true
}

// words splits s on every character that cannot appear in an identifier.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// camelCase joins tokens into one identifier: the first word lower-cased at
// its first letter, the rest capitalized. Non-identifier characters split
// words and are dropped, as are empty tokens.
func camelCase(tokens ...string) string {
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, tok := range tokens {
		for _, w := range words(tok) {
			if b.Len() == 0 {
				b.WriteString(lowerFirst(w))
				continue
			}
			b.WriteString(title.String(w))
		}
	}
	return b.String()
}

// valueName converts an arbitrary wire name into a usable Elm value name.
func valueName(name string) string {
	s := camelCase(name)
	if s == "" {
		return "x_"
	}
	if r := rune(s[0]); unicode.IsDigit(r) {
		s = "x" + s
	}
	return escapeReservedWord(s)
}

// typeName converts a declared type name into an Elm type name.
func typeName(name string) string {
	s := camelCase(name)
	if s == "" {
		return "T"
	}
	if unicode.IsDigit(rune(s[0])) {
		return "T" + s
	}
	return upperFirst(s)
}

func lowerFirst(s string) string {
	for i, r := range s {
		return string(unicode.ToLower(r)) + s[i+len(string(r)):]
	}
	return s
}

func upperFirst(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}
