// Package resolve maps field descriptors to Shapes and mirrors Shapes into
// MetaShapes. Every artifact that describes a field goes through Resolver, so
// declarations, metadata tables and service signatures agree on one decision
// per field.
package resolve

import (
	"github.com/Vilsol/ts-proto/tsprotogen/ir"
	"github.com/Vilsol/ts-proto/tsprotogen/naming"
	"github.com/Vilsol/ts-proto/tsprotogen/option"
)

// Resolver resolves fields under one configuration. It holds no mutable
// state and is safe for concurrent use.
type Resolver struct {
	reg *Registry
	cfg *option.Config
}

// New creates a Resolver. A nil cfg means option.Default().
func New(reg *Registry, cfg *option.Config) *Resolver {
	if cfg == nil {
		d := option.Default()
		cfg = &d
	}
	return &Resolver{reg: reg, cfg: option.ApplyDefaults(cfg)}
}

// Registry returns the lookup table used by the resolver.
func (r *Resolver) Registry() *Registry { return r.reg }

// Config returns the configuration used by the resolver.
func (r *Resolver) Config() *option.Config { return r.cfg }

// position distinguishes a field in its own right from an element of a
// Sequence, an Assoc value or a oneof union case. Elements are never wrapped.
type position int

const (
	positionField position = iota
	positionElement
)

type fieldKey struct {
	message string
	field   string
}

// state tracks the (message, field) pairs being resolved by one top-level call.
type state struct {
	inProgress map[fieldKey]bool
}

// Resolve returns the Shape of field declared in msg.
//
// Precedence: map detection, repeated, well-known wrappers, optional
// wrapping, base case. A cycle through map entries or a map-valued map
// is an UnsupportedShape error. A reference to an undeclared type is an
// UnknownTypeReference error.
func (r *Resolver) Resolve(field *ir.FieldDescriptor, msg *ir.MessageDescriptor) (ir.Shape, error) {
	st := &state{inProgress: make(map[fieldKey]bool)}
	return r.resolve(st, field, msg, positionField)
}

func (r *Resolver) resolve(st *state, f *ir.FieldDescriptor, msg *ir.MessageDescriptor, pos position) (ir.Shape, error) {
	path := ir.FieldPath(msg, f.Name)
	if err := f.Validate(); err != nil {
		return nil, ir.Errorf(ir.CodeUnsupportedShape, path, "%v", err)
	}

	key := fieldKey{field: f.Name}
	if msg != nil {
		key.message = msg.FullName
	}
	if st.inProgress[key] {
		return nil, ir.Errorf(ir.CodeUnsupportedShape, path, "resolution cycle through %s", path)
	}
	st.inProgress[key] = true
	defer delete(st.inProgress, key)

	if f.Repeated {
		if entry, ok := r.mapEntry(f); ok {
			return r.resolveMap(st, f, entry, path)
		}
		elem, err := r.base(f, path)
		if err != nil {
			return nil, err
		}
		// Sequence elements are never absentable; a repeated wrapper is a
		// list of its scalar.
		if w, ok := elem.(ir.WrapperScalar); ok {
			elem = ir.ScalarOf(w.ScalarKind)
		}
		return ir.SequenceOf(elem), nil
	}

	shape, err := r.base(f, path)
	if err != nil {
		return nil, err
	}
	if pos == positionElement {
		return shape, nil
	}
	if r.wrapOptional(f) {
		return ir.OptionalOf(shape), nil
	}
	return shape, nil
}

// mapEntry returns the entry message when f is a map field: a repeated
// reference to a map-entry message whose fields are exactly key and value.
func (r *Resolver) mapEntry(f *ir.FieldDescriptor) (*ir.MessageDescriptor, bool) {
	if !f.IsMessage() {
		return nil, false
	}
	entry, ok := r.reg.Message(f.Message)
	if !ok || !isMapEntry(entry) {
		return nil, false
	}
	return entry, true
}

func isMapEntry(m *ir.MessageDescriptor) bool {
	return m.MapEntry && len(m.Fields) == 2 && m.Field("key") != nil && m.Field("value") != nil
}

func (r *Resolver) resolveMap(st *state, f *ir.FieldDescriptor, entry *ir.MessageDescriptor, path string) (ir.Shape, error) {
	keyField := entry.Field("key")
	if keyField.Scalar == ir.ScalarNone || keyField.Repeated {
		return nil, ir.Errorf(ir.CodeUnsupportedShape, path, "map key of %s must be a scalar", entry.FullName)
	}
	value, err := r.resolve(st, entry.Field("value"), entry, positionElement)
	if err != nil {
		return nil, err
	}
	if value.Kind() == ir.ShapeAssoc {
		return nil, ir.Errorf(ir.CodeUnsupportedShape, path, "map value cannot be a map")
	}
	return ir.AssocOf(keyField.Scalar, value), nil
}

// base resolves the single-value shape of f, ignoring repeated and
// optionality: wrapper unboxing, then scalar, enum or message reference.
func (r *Resolver) base(f *ir.FieldDescriptor, path string) (ir.Shape, error) {
	switch {
	case f.Scalar != ir.ScalarNone:
		return ir.ScalarOf(f.Scalar), nil
	case f.Enum != "":
		if _, ok := r.reg.Enum(f.Enum); !ok {
			return nil, ir.Errorf(ir.CodeUnknownTypeReference, path, "unknown enum %s", f.Enum)
		}
		return ir.EnumRef{Type: r.reg.TypeName(f.Enum)}, nil
	}

	if k, ok := WrapperKind(f.Message); ok && r.cfg.WrapperUnboxing {
		return ir.WrapperOf(k), nil
	}
	m, ok := r.reg.Message(f.Message)
	if !ok {
		return nil, ir.Errorf(ir.CodeUnknownTypeReference, path, "unknown message %s", f.Message)
	}
	if isMapEntry(m) {
		return nil, ir.Errorf(ir.CodeUnsupportedShape, path, "map entry %s referenced outside a map field", m.FullName)
	}
	return ir.MessageRef{Type: r.reg.TypeName(f.Message)}, nil
}

func (r *Resolver) wrapOptional(f *ir.FieldDescriptor) bool {
	if f.InOneof() {
		return r.cfg.OneofStrategy == option.OneofProperties
	}
	if f.Proto3Optional {
		return true
	}
	return f.IsMessage() && r.cfg.OptionalFields
}

// Member is one property of a resolved message. Exactly one of Field and
// Oneof is set.
type Member struct {
	// Key is the property key under the configured key naming.
	Key string

	// Field and Shape describe a plain property.
	Field *ir.FieldDescriptor
	Shape ir.Shape

	// Oneof is set for a oneof group rendered as a single union property.
	Oneof *OneofGroup
}

// OneofGroup is a oneof rendered as a tagged union.
type OneofGroup struct {
	Name  string
	Index int32
	Cases []OneofCase
}

// OneofCase is one alternative of a OneofGroup. Its Shape is never Optional.
type OneofCase struct {
	Key   string
	Field *ir.FieldDescriptor
	Shape ir.Shape
}

// ResolveMessage resolves every field of msg in declaration order. Under the
// unions oneof strategy the members of each group are replaced by one Member
// at the position of the group's first field.
func (r *Resolver) ResolveMessage(msg *ir.MessageDescriptor) ([]Member, error) {
	members := make([]Member, 0, len(msg.Fields))
	groups := make(map[int32]*OneofGroup)
	for i := range msg.Fields {
		f := &msg.Fields[i]
		if f.InOneof() && r.cfg.OneofStrategy == option.OneofUnions {
			idx := *f.OneofIndex
			g, ok := groups[idx]
			if !ok {
				g = &OneofGroup{Name: oneofName(msg, idx), Index: idx}
				groups[idx] = g
				members = append(members, Member{Key: r.Key(g.Name), Oneof: g})
			}
			c, err := r.resolveCase(f, msg)
			if err != nil {
				return nil, err
			}
			g.Cases = append(g.Cases, c)
			continue
		}
		shape, err := r.Resolve(f, msg)
		if err != nil {
			return nil, err
		}
		members = append(members, Member{Key: r.Key(f.Name), Field: f, Shape: shape})
	}
	return members, nil
}

// OneofGroups resolves the real oneof groups of msg as tagged unions,
// regardless of the configured strategy.
func (r *Resolver) OneofGroups(msg *ir.MessageDescriptor) ([]OneofGroup, error) {
	groups := make([]OneofGroup, len(msg.Oneofs))
	for i := range groups {
		groups[i] = OneofGroup{Name: msg.Oneofs[i], Index: int32(i)}
	}
	for i := range msg.Fields {
		f := &msg.Fields[i]
		if !f.InOneof() || int(*f.OneofIndex) >= len(groups) {
			continue
		}
		c, err := r.resolveCase(f, msg)
		if err != nil {
			return nil, err
		}
		g := &groups[*f.OneofIndex]
		g.Cases = append(g.Cases, c)
	}
	out := groups[:0]
	for _, g := range groups {
		if len(g.Cases) > 0 {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *Resolver) resolveCase(f *ir.FieldDescriptor, msg *ir.MessageDescriptor) (OneofCase, error) {
	st := &state{inProgress: make(map[fieldKey]bool)}
	shape, err := r.resolve(st, f, msg, positionElement)
	if err != nil {
		return OneofCase{}, err
	}
	return OneofCase{Key: r.Key(f.Name), Field: f, Shape: shape}, nil
}

// Key returns the property key of a raw field or oneof name.
func (r *Resolver) Key(name string) string {
	return naming.FieldKey(name, r.cfg.KeyNaming)
}

func oneofName(msg *ir.MessageDescriptor, idx int32) string {
	if int(idx) < len(msg.Oneofs) {
		return msg.Oneofs[idx]
	}
	return "oneof"
}
