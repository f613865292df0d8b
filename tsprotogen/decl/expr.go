package decl

import (
	"github.com/Vilsol/ts-proto/tsprotogen/ir"
	"github.com/Vilsol/ts-proto/tsprotogen/resolve"
)

// TypeExpr is a type expression of the declaration tree.
type TypeExpr interface {
	sealedExpr()
}

// Keyword is a built-in type: string, number, boolean, Uint8Array, Date,
// undefined, void.
type Keyword struct {
	Name string
}

// Ref names a declared type. FullName is empty for types that are not
// schema declarations (Context, Metadata).
type Ref struct {
	Name     string
	FullName string
}

// Array is T[].
type Array struct {
	Element TypeExpr
}

// Index is an index-signature object, { [key: K]: V }.
type Index struct {
	Key   TypeExpr
	Value TypeExpr
}

// Union is T1 | T2 | ...
type Union struct {
	Types []TypeExpr
}

// Generic is an instantiated generic type, Name<Args...>.
type Generic struct {
	Name string
	Args []TypeExpr
}

// Object is an anonymous object type.
type Object struct {
	Properties []Property
}

// Literal is a string literal type, e.g. 'object'.
type Literal struct {
	Value string
}

func (Keyword) sealedExpr() {}
func (Ref) sealedExpr()     {}
func (Array) sealedExpr()   {}
func (Index) sealedExpr()   {}
func (Union) sealedExpr()   {}
func (Generic) sealedExpr() {}
func (Object) sealedExpr()  {}
func (Literal) sealedExpr() {}

// Common keywords.
var (
	Undefined = Keyword{Name: "undefined"}
	Void      = Keyword{Name: "void"}
	String    = Keyword{Name: "string"}
)

// NewUnion builds a union, flattening nested unions and keeping a single
// trailing undefined.
func NewUnion(types ...TypeExpr) TypeExpr {
	var out []TypeExpr
	undef := false
	var add func(t TypeExpr)
	add = func(t TypeExpr) {
		switch t := t.(type) {
		case Union:
			for _, c := range t.Types {
				add(c)
			}
		case Keyword:
			if t == Undefined {
				undef = true
				return
			}
			out = append(out, t)
		default:
			out = append(out, t)
		}
	}
	for _, t := range types {
		add(t)
	}
	if undef {
		out = append(out, Undefined)
	}
	if len(out) == 1 {
		return out[0]
	}
	return Union{Types: out}
}

// FromShape returns the type expression of a resolved shape.
//
//	Scalar(k)        -> string | number | boolean | Uint8Array
//	EnumRef, MessageRef -> the local type name
//	MessageRef(Timestamp) -> Date
//	Sequence(e)      -> T[]
//	Assoc(k, v)      -> { [key: MapKeyName(k)]: V }
//	Optional(i)      -> T | undefined
//	WrapperScalar(k) -> T | undefined
//
// An Optional whose inner shape already admits undefined does not repeat it.
func FromShape(s ir.Shape) TypeExpr {
	switch s := s.(type) {
	case ir.Scalar:
		return Keyword{Name: resolve.PrimitiveName(s.ScalarKind)}
	case ir.EnumRef:
		return Ref{Name: s.Type.Name, FullName: s.Type.FullName}
	case ir.MessageRef:
		if s.Type.FullName == resolve.TimestampType {
			return Keyword{Name: resolve.DateName}
		}
		return Ref{Name: s.Type.Name, FullName: s.Type.FullName}
	case ir.Sequence:
		return Array{Element: FromShape(s.Element)}
	case ir.Assoc:
		return Index{Key: Keyword{Name: resolve.MapKeyName(s.Key)}, Value: FromShape(s.Value)}
	case ir.Optional:
		return NewUnion(FromShape(s.Inner), Undefined)
	case ir.WrapperScalar:
		return NewUnion(Keyword{Name: resolve.PrimitiveName(s.ScalarKind)}, Undefined)
	default:
		return Keyword{Name: "unknown"}
	}
}

// Walk calls fn for e and every type expression nested in it.
func Walk(e TypeExpr, fn func(TypeExpr)) {
	if e == nil {
		return
	}
	fn(e)
	switch e := e.(type) {
	case Array:
		Walk(e.Element, fn)
	case Index:
		Walk(e.Key, fn)
		Walk(e.Value, fn)
	case Union:
		for _, t := range e.Types {
			Walk(t, fn)
		}
	case Generic:
		for _, t := range e.Args {
			Walk(t, fn)
		}
	case Object:
		for _, p := range e.Properties {
			Walk(p.Type, fn)
		}
	}
}
