package ir

// ShapeKind identifies the variant of a Shape.
type ShapeKind int

const (
	ShapeScalar   ShapeKind = iota // Scalar value
	ShapeEnum                      // Reference to an enum
	ShapeMessage                   // Reference to a message
	ShapeSequence                  // Ordered repeatable values
	ShapeAssoc                     // Unordered key -> value mapping
	ShapeOptional                  // Value present or absent
	ShapeWrapper                   // Unboxed well-known wrapper (Optional(Scalar))
)

// String returns the string representation of the shape kind.
func (k ShapeKind) String() string {
	switch k {
	case ShapeScalar:
		return "Scalar"
	case ShapeEnum:
		return "EnumRef"
	case ShapeMessage:
		return "MessageRef"
	case ShapeSequence:
		return "Sequence"
	case ShapeAssoc:
		return "Assoc"
	case ShapeOptional:
		return "Optional"
	case ShapeWrapper:
		return "WrapperScalar"
	default:
		return "Unknown"
	}
}

// Shape is the resolved value space of a field, independent of any
// rendering syntax. The set of implementations is closed.
//
// All variants are comparable values, so two shapes can be compared with ==.
type Shape interface {
	// Kind returns the variant for type switching.
	Kind() ShapeKind

	// String returns a debug rendering such as "Sequence(EnumRef(.pkg.E))".
	String() string

	// Ensure only types in this package can implement Shape.
	sealed()
}

// Scalar is a protobuf scalar value.
type Scalar struct {
	ScalarKind ScalarKind
}

// EnumRef refers to an enum.
type EnumRef struct {
	Type TypeName
}

// MessageRef refers to a message.
type MessageRef struct {
	Type TypeName
}

// Sequence is an ordered, repeatable list of Element. Element is never Optional.
type Sequence struct {
	Element Shape
}

// Assoc is an unordered mapping with unique scalar keys.
type Assoc struct {
	Key   ScalarKind
	Value Shape
}

// Optional is a value that may be absent. Absence is distinct from the zero
// value of Inner.
type Optional struct {
	Inner Shape
}

// WrapperScalar is a well-known boxed scalar (google.protobuf.StringValue and
// friends) collapsed to its scalar. Its value space is Optional(Scalar(ScalarKind)).
type WrapperScalar struct {
	ScalarKind ScalarKind
}

func (Scalar) Kind() ShapeKind        { return ShapeScalar }
func (EnumRef) Kind() ShapeKind       { return ShapeEnum }
func (MessageRef) Kind() ShapeKind    { return ShapeMessage }
func (Sequence) Kind() ShapeKind      { return ShapeSequence }
func (Assoc) Kind() ShapeKind         { return ShapeAssoc }
func (Optional) Kind() ShapeKind      { return ShapeOptional }
func (WrapperScalar) Kind() ShapeKind { return ShapeWrapper }

func (s Scalar) String() string     { return "Scalar(" + s.ScalarKind.String() + ")" }
func (s EnumRef) String() string    { return "EnumRef(" + s.Type.FullName + ")" }
func (s MessageRef) String() string { return "MessageRef(" + s.Type.FullName + ")" }
func (s Sequence) String() string   { return "Sequence(" + s.Element.String() + ")" }
func (s Assoc) String() string {
	return "Assoc(" + s.Key.String() + ", " + s.Value.String() + ")"
}
func (s Optional) String() string      { return "Optional(" + s.Inner.String() + ")" }
func (s WrapperScalar) String() string { return "WrapperScalar(" + s.ScalarKind.String() + ")" }

func (Scalar) sealed()        {}
func (EnumRef) sealed()       {}
func (MessageRef) sealed()    {}
func (Sequence) sealed()      {}
func (Assoc) sealed()         {}
func (Optional) sealed()      {}
func (WrapperScalar) sealed() {}

// Convenience constructors.

// ScalarOf returns a Scalar shape.
func ScalarOf(k ScalarKind) Scalar { return Scalar{ScalarKind: k} }

// EnumOf returns an EnumRef shape.
func EnumOf(fullName, name string) EnumRef {
	return EnumRef{Type: TypeName{FullName: fullName, Name: name}}
}

// MessageOf returns a MessageRef shape.
func MessageOf(fullName, name string) MessageRef {
	return MessageRef{Type: TypeName{FullName: fullName, Name: name}}
}

// SequenceOf returns a Sequence shape.
func SequenceOf(elem Shape) Sequence { return Sequence{Element: elem} }

// AssocOf returns an Assoc shape.
func AssocOf(key ScalarKind, value Shape) Assoc { return Assoc{Key: key, Value: value} }

// OptionalOf returns an Optional shape.
func OptionalOf(inner Shape) Optional { return Optional{Inner: inner} }

// WrapperOf returns a WrapperScalar shape.
func WrapperOf(k ScalarKind) WrapperScalar { return WrapperScalar{ScalarKind: k} }

// Expand rewrites every WrapperScalar(k) in s into Optional(Scalar(k)).
func Expand(s Shape) Shape {
	switch s := s.(type) {
	case WrapperScalar:
		return OptionalOf(ScalarOf(s.ScalarKind))
	case Sequence:
		return SequenceOf(Expand(s.Element))
	case Assoc:
		return AssocOf(s.Key, Expand(s.Value))
	case Optional:
		return OptionalOf(Expand(s.Inner))
	default:
		return s
	}
}

// IsAbsentable reports whether the value space of s contains an absent state.
func IsAbsentable(s Shape) bool {
	switch s.(type) {
	case Optional, WrapperScalar:
		return true
	}
	return false
}
