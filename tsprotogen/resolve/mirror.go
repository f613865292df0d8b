package resolve

import (
	"fmt"

	"github.com/Vilsol/ts-proto/tsprotogen/ir"
)

// PrimitiveName returns the runtime type name of a scalar kind.
func PrimitiveName(k ir.ScalarKind) string {
	switch {
	case k == ir.ScalarBool:
		return "boolean"
	case k == ir.ScalarString:
		return "string"
	case k == ir.ScalarBytes:
		return "Uint8Array"
	case k.IsNumeric():
		return "number"
	default:
		return "unknown"
	}
}

// MapKeyName returns the key type of a map keyed by k. Declarations and
// mirrors both use it. Index signatures only accept string and number
// keys, so bool keys are strings.
func MapKeyName(k ir.ScalarKind) string {
	if k.IsNumeric() {
		return "number"
	}
	return "string"
}

// Mirror translates a Shape into its MetaShape. The translation is purely
// structural:
//
//	Scalar(k)        -> Primitive(PrimitiveName(k))
//	EnumRef, MessageRef -> ObjectRef(full, local)
//	MessageRef(Timestamp) -> Primitive(Date)
//	Sequence(e)      -> ArrayOf(Mirror(e))
//	Assoc(k, v)      -> MapOf(MapKeyName(k), Mirror(v))
//	Optional(i)      -> UnionOf(absent, Mirror(i)...), flattened
//	WrapperScalar(k) -> UnionOf(Primitive, absent)
func Mirror(s ir.Shape) ir.MetaShape {
	switch s := s.(type) {
	case ir.Scalar:
		return ir.Primitive{Name: PrimitiveName(s.ScalarKind)}
	case ir.EnumRef:
		return ir.ObjectRef{FullName: s.Type.FullName, Name: s.Type.Name}
	case ir.MessageRef:
		if s.Type.FullName == TimestampType {
			return ir.Primitive{Name: DateName}
		}
		return ir.ObjectRef{FullName: s.Type.FullName, Name: s.Type.Name}
	case ir.Sequence:
		return ir.ArrayOf{Element: Mirror(s.Element)}
	case ir.Assoc:
		return ir.MapOf{Key: MapKeyName(s.Key), Value: Mirror(s.Value)}
	case ir.Optional:
		return ir.Union(ir.Absent{}, Mirror(s.Inner))
	case ir.WrapperScalar:
		return ir.Union(ir.Primitive{Name: PrimitiveName(s.ScalarKind)}, ir.Absent{})
	default:
		panic(fmt.Sprintf("resolve: unhandled shape %T", s))
	}
}

// MirrorOneof returns the MetaShape of a oneof group rendered as a union:
// the absent marker followed by the mirror of every case.
func MirrorOneof(g OneofGroup) ir.MetaShape {
	choices := make([]ir.MetaShape, 0, len(g.Cases)+1)
	choices = append(choices, ir.Absent{})
	for _, c := range g.Cases {
		choices = append(choices, Mirror(c.Shape))
	}
	return ir.Union(choices...)
}

// MirrorMember returns the MetaShape of a resolved message member.
func MirrorMember(m Member) ir.MetaShape {
	if m.Oneof != nil {
		return MirrorOneof(*m.Oneof)
	}
	return Mirror(m.Shape)
}

// MirrorService returns the request and response table of svc. Unknown
// method types are reported as UnknownTypeReference.
func (r *Resolver) MirrorService(svc *ir.ServiceDescriptor) (ir.MetaService, error) {
	out := ir.MetaService{Name: svc.Name, Methods: make([]ir.MetaMethod, 0, len(svc.Methods))}
	for _, m := range svc.Methods {
		path := svc.FullName + "." + m.Name
		for _, t := range []string{m.InputType, m.OutputType} {
			if _, ok := r.reg.Message(t); !ok {
				return ir.MetaService{}, ir.Errorf(ir.CodeUnknownTypeReference, path, "unknown message %s", t)
			}
		}
		out.Methods = append(out.Methods, ir.MetaMethod{
			Name:     m.Name,
			Request:  m.InputType,
			Response: m.OutputType,
		})
	}
	return out, nil
}

// Conforms reports whether meta describes the value space of shape. It is
// checked independently of Mirror: optional layers of shape collapse to a
// single absent alternative, so Optional(WrapperScalar(k)) conforms to
// UnionOf(absent, Primitive) in either order.
func Conforms(shape ir.Shape, meta ir.MetaShape) bool {
	core, absentable := stripOptional(shape)
	if !absentable {
		return conformsCore(core, meta)
	}
	u, ok := meta.(ir.UnionOf)
	if !ok {
		return false
	}
	absent := 0
	var rest []ir.MetaShape
	for _, c := range u.Choices {
		if _, ok := c.(ir.Absent); ok {
			absent++
			continue
		}
		rest = append(rest, c)
	}
	if absent != 1 || len(rest) != 1 {
		return false
	}
	return conformsCore(core, rest[0])
}

func stripOptional(s ir.Shape) (ir.Shape, bool) {
	absentable := false
	for {
		switch v := s.(type) {
		case ir.Optional:
			s = v.Inner
			absentable = true
		case ir.WrapperScalar:
			return ir.ScalarOf(v.ScalarKind), true
		default:
			return s, absentable
		}
	}
}

func conformsCore(s ir.Shape, meta ir.MetaShape) bool {
	switch s := s.(type) {
	case ir.Scalar:
		p, ok := meta.(ir.Primitive)
		return ok && p.Name == PrimitiveName(s.ScalarKind)
	case ir.EnumRef:
		o, ok := meta.(ir.ObjectRef)
		return ok && o.FullName == s.Type.FullName && o.Name == s.Type.Name
	case ir.MessageRef:
		if s.Type.FullName == TimestampType {
			p, ok := meta.(ir.Primitive)
			return ok && p.Name == DateName
		}
		o, ok := meta.(ir.ObjectRef)
		return ok && o.FullName == s.Type.FullName && o.Name == s.Type.Name
	case ir.Sequence:
		a, ok := meta.(ir.ArrayOf)
		return ok && Conforms(s.Element, a.Element)
	case ir.Assoc:
		m, ok := meta.(ir.MapOf)
		return ok && m.Key == MapKeyName(s.Key) && Conforms(s.Value, m.Value)
	}
	return false
}
