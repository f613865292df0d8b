// Package naming implements the deterministic name transforms applied to
// schema identifiers before they reach generated code. Every function is pure.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// KeyStyle selects how raw field names become property keys.
type KeyStyle string

const (
	// KeyCamel converts snake_case field names to lowerCamel ("old_states" -> "oldStates").
	KeyCamel KeyStyle = "camel"
	// KeySnake keeps the raw field name.
	KeySnake KeyStyle = "snake"
)

// SnakeToCamel converts a snake_case name to lowerCamel. The first segment
// is kept as written; each following non-empty segment is capitalized.
//
//	old_states   -> oldStates
//	entities_by_id -> entitiesById
//	already      -> already
func SnakeToCamel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	parts := strings.Split(s, "_")
	var sb strings.Builder
	sb.Grow(len(s))
	first := true
	for _, p := range parts {
		if p == "" {
			continue
		}
		if first {
			sb.WriteString(p)
			first = false
			continue
		}
		sb.WriteString(Capitalize(p))
	}
	return sb.String()
}

// FieldKey returns the property key for a raw field name under style.
func FieldKey(name string, style KeyStyle) string {
	if style == KeySnake {
		return name
	}
	return SnakeToCamel(name)
}

// FlattenName returns the local name of a nested type: the package prefix and
// the leading dot are stripped and the remaining nesting dots become
// underscores.
//
//	FlattenName("simple", ".simple.Nested.InnerMessage") -> "Nested_InnerMessage"
//	FlattenName("", ".Foo") -> "Foo"
func FlattenName(pkg, fullName string) string {
	name := strings.TrimPrefix(fullName, ".")
	if pkg != "" && strings.HasPrefix(name, pkg+".") {
		name = name[len(pkg)+1:]
	}
	return strings.ReplaceAll(name, ".", "_")
}

// PackageOf returns the package portion of a fully-qualified name, given the
// set of known packages. The longest matching package wins. An empty string
// is returned when no package matches.
func PackageOf(fullName string, packages []string) string {
	name := strings.TrimPrefix(fullName, ".")
	best := ""
	for _, p := range packages {
		if p == "" || len(p) <= len(best) {
			continue
		}
		if strings.HasPrefix(name, p+".") {
			best = p
		}
	}
	return best
}

// MethodName returns the rendered name of an RPC method. With lower set the
// first rune is lowercased ("GetWidget" -> "getWidget").
func MethodName(name string, lower bool) string {
	if !lower {
		return name
	}
	return Uncapitalize(name)
}

// Capitalize uppercases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Uncapitalize lowercases the first rune of s.
func Uncapitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// Singular returns a naive English singular of a plural identifier.
//
//	ids -> id, widgets -> widget, entities -> entity, address -> address
func Singular(s string) string {
	switch {
	case strings.HasSuffix(s, "ies") && len(s) > 3:
		return s[:len(s)-3] + "y"
	case strings.HasSuffix(s, "ss"):
		return s
	case strings.HasSuffix(s, "s") && len(s) > 1:
		return s[:len(s)-1]
	}
	return s
}
