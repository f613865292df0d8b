package ir

import "strings"

// MetaKind identifies the variant of a MetaShape.
type MetaKind int

const (
	MetaPrimitive MetaKind = iota // Named primitive ("number", "string", ...)
	MetaObject                    // Reference to a named message or enum
	MetaArray                     // Array of an element MetaShape
	MetaMap                       // Map from a primitive key to a value MetaShape
	MetaUnion                     // Union of alternatives
	MetaAbsent                    // Absent marker, only valid inside a union
)

// String returns the discriminator used in emitted metadata.
func (k MetaKind) String() string {
	switch k {
	case MetaPrimitive:
		return "primitive"
	case MetaObject:
		return "object"
	case MetaArray:
		return "array"
	case MetaMap:
		return "map"
	case MetaUnion:
		return "union"
	case MetaAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// MetaShape is the runtime-inspectable mirror of a Shape. It is a plain
// value tree that needs no language-level reflection to consume.
type MetaShape interface {
	MetaKind() MetaKind
	sealedMeta()
}

// Primitive names a primitive runtime type.
type Primitive struct {
	Name string
}

// ObjectRef refers to a named message or enum.
type ObjectRef struct {
	FullName string // ".simple.Child"
	Name     string // "Child"
}

// ArrayOf is an array of Element.
type ArrayOf struct {
	Element MetaShape
}

// MapOf is a map keyed by a primitive.
type MapOf struct {
	Key   string
	Value MetaShape
}

// UnionOf is a flat union of alternatives. Alternatives are never UnionOf
// themselves and contain at most one Absent.
type UnionOf struct {
	Choices []MetaShape
}

// Absent marks the absent state of an optional value.
type Absent struct{}

func (Primitive) MetaKind() MetaKind { return MetaPrimitive }
func (ObjectRef) MetaKind() MetaKind { return MetaObject }
func (ArrayOf) MetaKind() MetaKind   { return MetaArray }
func (MapOf) MetaKind() MetaKind     { return MetaMap }
func (UnionOf) MetaKind() MetaKind   { return MetaUnion }
func (Absent) MetaKind() MetaKind    { return MetaAbsent }

func (Primitive) sealedMeta() {}
func (ObjectRef) sealedMeta() {}
func (ArrayOf) sealedMeta()   {}
func (MapOf) sealedMeta()     {}
func (UnionOf) sealedMeta()   {}
func (Absent) sealedMeta()    {}

// Union builds a flat UnionOf. Nested unions are spliced into the result and
// duplicate Absent markers are dropped, keeping the first occurrence.
func Union(choices ...MetaShape) UnionOf {
	out := make([]MetaShape, 0, len(choices))
	seenAbsent := false
	var add func(MetaShape)
	add = func(m MetaShape) {
		switch m := m.(type) {
		case UnionOf:
			for _, c := range m.Choices {
				add(c)
			}
		case Absent:
			if !seenAbsent {
				seenAbsent = true
				out = append(out, m)
			}
		default:
			out = append(out, m)
		}
	}
	for _, c := range choices {
		add(c)
	}
	return UnionOf{Choices: out}
}

// EqualMeta reports whether two MetaShapes are structurally identical.
func EqualMeta(a, b MetaShape) bool {
	switch a := a.(type) {
	case Primitive:
		b, ok := b.(Primitive)
		return ok && a == b
	case ObjectRef:
		b, ok := b.(ObjectRef)
		return ok && a == b
	case Absent:
		_, ok := b.(Absent)
		return ok
	case ArrayOf:
		b, ok := b.(ArrayOf)
		return ok && EqualMeta(a.Element, b.Element)
	case MapOf:
		b, ok := b.(MapOf)
		return ok && a.Key == b.Key && EqualMeta(a.Value, b.Value)
	case UnionOf:
		b, ok := b.(UnionOf)
		if !ok || len(a.Choices) != len(b.Choices) {
			return false
		}
		for i := range a.Choices {
			if !EqualMeta(a.Choices[i], b.Choices[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// MetaString returns a compact debug rendering of m.
func MetaString(m MetaShape) string {
	switch m := m.(type) {
	case Primitive:
		return m.Name
	case ObjectRef:
		return "ObjectRef(" + m.FullName + ", " + m.Name + ")"
	case ArrayOf:
		return "ArrayOf(" + MetaString(m.Element) + ")"
	case MapOf:
		return "MapOf(" + m.Key + ", " + MetaString(m.Value) + ")"
	case UnionOf:
		parts := make([]string, len(m.Choices))
		for i, c := range m.Choices {
			parts[i] = MetaString(c)
		}
		return "UnionOf(" + strings.Join(parts, ", ") + ")"
	case Absent:
		return "absent"
	default:
		return "?"
	}
}
