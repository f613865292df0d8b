package resolve

import (
	"slices"

	"github.com/Vilsol/ts-proto/tsprotogen/ir"
	"github.com/Vilsol/ts-proto/tsprotogen/naming"
)

// Registry is a flat lookup table from fully-qualified names to the
// declarations of a schema. It is built once per run and never modified.
type Registry struct {
	messages map[string]*ir.MessageDescriptor
	enums    map[string]*ir.EnumDescriptor
	services map[string]*ir.ServiceDescriptor
	files    map[string]*ir.File // keyed by declared type name
	packages []string
}

// NewRegistry indexes every file of schema, including files that are not
// generated. A name declared twice keeps its first declaration.
func NewRegistry(schema *ir.Schema) *Registry {
	r := &Registry{
		messages: make(map[string]*ir.MessageDescriptor),
		enums:    make(map[string]*ir.EnumDescriptor),
		services: make(map[string]*ir.ServiceDescriptor),
		files:    make(map[string]*ir.File),
	}
	if schema == nil {
		return r
	}
	for _, f := range schema.Files {
		if !slices.Contains(r.packages, f.Package) {
			r.packages = append(r.packages, f.Package)
		}
		for _, m := range f.Messages {
			if _, ok := r.messages[m.FullName]; ok {
				continue
			}
			r.messages[m.FullName] = m
			r.files[m.FullName] = f
		}
		for _, e := range f.Enums {
			if _, ok := r.enums[e.FullName]; ok {
				continue
			}
			r.enums[e.FullName] = e
			r.files[e.FullName] = f
		}
		for _, s := range f.Services {
			if _, ok := r.services[s.FullName]; ok {
				continue
			}
			r.services[s.FullName] = s
			r.files[s.FullName] = f
		}
	}
	return r
}

// Message returns the message with the given fully-qualified name.
func (r *Registry) Message(fullName string) (*ir.MessageDescriptor, bool) {
	m, ok := r.messages[fullName]
	return m, ok
}

// Enum returns the enum with the given fully-qualified name.
func (r *Registry) Enum(fullName string) (*ir.EnumDescriptor, bool) {
	e, ok := r.enums[fullName]
	return e, ok
}

// Service returns the service with the given fully-qualified name.
func (r *Registry) Service(fullName string) (*ir.ServiceDescriptor, bool) {
	s, ok := r.services[fullName]
	return s, ok
}

// FileOf returns the file declaring fullName, or nil.
func (r *Registry) FileOf(fullName string) *ir.File {
	return r.files[fullName]
}

// TypeName returns the fully-qualified and flattened local name of a type.
// The local name is relative to the package of the declaring file.
func (r *Registry) TypeName(fullName string) ir.TypeName {
	pkg := ""
	if f := r.files[fullName]; f != nil {
		pkg = f.Package
	} else {
		pkg = naming.PackageOf(fullName, r.packages)
	}
	return ir.TypeName{FullName: fullName, Name: naming.FlattenName(pkg, fullName)}
}

// Lookup returns the reference shape for a message or enum name, or an
// UnknownTypeReference error.
func (r *Registry) Lookup(fullName string) (ir.Shape, error) {
	if _, ok := r.messages[fullName]; ok {
		return ir.MessageRef{Type: r.TypeName(fullName)}, nil
	}
	if _, ok := r.enums[fullName]; ok {
		return ir.EnumRef{Type: r.TypeName(fullName)}, nil
	}
	return nil, ir.Errorf(ir.CodeUnknownTypeReference, fullName, "type %s is not declared in any input file", fullName)
}

// wrapperKinds maps the well-known boxed scalar messages to their scalar.
var wrapperKinds = map[string]ir.ScalarKind{
	".google.protobuf.DoubleValue": ir.ScalarDouble,
	".google.protobuf.FloatValue":  ir.ScalarFloat,
	".google.protobuf.Int64Value":  ir.ScalarInt64,
	".google.protobuf.UInt64Value": ir.ScalarUint64,
	".google.protobuf.Int32Value":  ir.ScalarInt32,
	".google.protobuf.UInt32Value": ir.ScalarUint32,
	".google.protobuf.BoolValue":   ir.ScalarBool,
	".google.protobuf.StringValue": ir.ScalarString,
	".google.protobuf.BytesValue":  ir.ScalarBytes,
}

// WrapperKind reports the scalar boxed by a well-known wrapper message.
func WrapperKind(fullName string) (ir.ScalarKind, bool) {
	k, ok := wrapperKinds[fullName]
	return k, ok
}

// EmptyType is the fully-qualified name of google.protobuf.Empty.
const EmptyType = ".google.protobuf.Empty"

// TimestampType is the fully-qualified name of google.protobuf.Timestamp.
// Its values are rendered as DateName.
const TimestampType = ".google.protobuf.Timestamp"

// DateName is the runtime type of a Timestamp.
const DateName = "Date"
