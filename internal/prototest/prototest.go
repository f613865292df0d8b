// Package prototest provides schema builders and assertions for tests.
// This package is designed to be import-cycle safe and can be used from any
// package within the module.
package prototest

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/Vilsol/ts-proto/tsprotogen/ir"
	"github.com/Vilsol/ts-proto/tsprotogen/naming"
)

// Scalar returns a scalar field.
func Scalar(name string, number int32, kind ir.ScalarKind) ir.FieldDescriptor {
	return ir.FieldDescriptor{Name: name, JSONName: naming.SnakeToCamel(name), Number: number, Scalar: kind}
}

// Message returns a field referencing a message by fully-qualified name.
func Message(name string, number int32, typ string) ir.FieldDescriptor {
	return ir.FieldDescriptor{Name: name, JSONName: naming.SnakeToCamel(name), Number: number, Message: typ}
}

// Enum returns a field referencing an enum by fully-qualified name.
func Enum(name string, number int32, typ string) ir.FieldDescriptor {
	return ir.FieldDescriptor{Name: name, JSONName: naming.SnakeToCamel(name), Number: number, Enum: typ}
}

// Repeated marks f as repeated.
func Repeated(f ir.FieldDescriptor) ir.FieldDescriptor {
	f.Repeated = true
	return f
}

// Optional marks f with the proto3 optional label.
func Optional(f ir.FieldDescriptor) ir.FieldDescriptor {
	f.Proto3Optional = true
	return f
}

// InOneof places f in oneof group idx.
func InOneof(f ir.FieldDescriptor, idx int32) ir.FieldDescriptor {
	f.OneofIndex = &idx
	return f
}

// Msg returns a message with the given fields.
func Msg(fullName string, fields ...ir.FieldDescriptor) *ir.MessageDescriptor {
	return &ir.MessageDescriptor{
		FullName: fullName,
		Name:     fullName[strings.LastIndex(fullName, ".")+1:],
		Fields:   fields,
	}
}

// MapEntry returns a synthetic map entry message with the given key and value.
func MapEntry(fullName string, key ir.ScalarKind, value ir.FieldDescriptor) *ir.MessageDescriptor {
	value.Name = "value"
	value.JSONName = "value"
	value.Number = 2
	m := Msg(fullName, Scalar("key", 1, key), value)
	m.MapEntry = true
	return m
}

// EnumOf returns an enum with values numbered from zero.
func EnumOf(fullName string, values ...string) *ir.EnumDescriptor {
	e := &ir.EnumDescriptor{
		FullName: fullName,
		Name:     fullName[strings.LastIndex(fullName, ".")+1:],
	}
	for i, v := range values {
		e.Values = append(e.Values, ir.EnumValue{Name: v, Number: int32(i)})
	}
	return e
}

// FileBuilder builds an ir.File.
type FileBuilder struct {
	file *ir.File
}

// NewFile starts a generated file in package pkg.
func NewFile(name, pkg string) *FileBuilder {
	return &FileBuilder{file: &ir.File{Name: name, Package: pkg, Generate: true}}
}

// Messages appends messages, assigning declaration paths.
func (b *FileBuilder) Messages(msgs ...*ir.MessageDescriptor) *FileBuilder {
	for _, m := range msgs {
		if m.Path == nil {
			m.Path = ir.Path{4, int32(len(b.file.Messages))}
		}
		for i := range m.Fields {
			if m.Fields[i].Path == nil {
				m.Fields[i].Path = m.Path.Append(2, int32(i))
			}
		}
		b.file.Messages = append(b.file.Messages, m)
	}
	return b
}

// Enums appends enums.
func (b *FileBuilder) Enums(enums ...*ir.EnumDescriptor) *FileBuilder {
	for _, e := range enums {
		if e.Path == nil {
			e.Path = ir.Path{5, int32(len(b.file.Enums))}
		}
		b.file.Enums = append(b.file.Enums, e)
	}
	return b
}

// Services appends services.
func (b *FileBuilder) Services(svcs ...*ir.ServiceDescriptor) *FileBuilder {
	for _, s := range svcs {
		if s.Path == nil {
			s.Path = ir.Path{6, int32(len(b.file.Services))}
		}
		b.file.Services = append(b.file.Services, s)
	}
	return b
}

// Depends records imported file names.
func (b *FileBuilder) Depends(names ...string) *FileBuilder {
	b.file.Dependencies = append(b.file.Dependencies, names...)
	return b
}

// Comment sets the leading file comment.
func (b *FileBuilder) Comment(c string) *FileBuilder {
	b.file.Comment = c
	return b
}

// Comments sets the comment source.
func (b *FileBuilder) Comments(src ir.CommentSource) *FileBuilder {
	b.file.Comments = src
	return b
}

// Imported marks the file as a dependency that is not generated.
func (b *FileBuilder) Imported() *FileBuilder {
	b.file.Generate = false
	return b
}

// Build returns the file.
func (b *FileBuilder) Build() *ir.File {
	return b.file
}

// Schema returns a schema over files.
func Schema(files ...*ir.File) *ir.Schema {
	return &ir.Schema{Files: files}
}

// WellKnownFile returns the non-generated google/protobuf files used by most
// schemas: the nine scalar wrappers and Empty.
func WellKnownFile() *ir.File {
	b := NewFile("google/protobuf/wrappers.proto", "google.protobuf").Imported()
	for _, w := range []struct {
		name string
		kind ir.ScalarKind
	}{
		{"DoubleValue", ir.ScalarDouble},
		{"FloatValue", ir.ScalarFloat},
		{"Int64Value", ir.ScalarInt64},
		{"UInt64Value", ir.ScalarUint64},
		{"Int32Value", ir.ScalarInt32},
		{"UInt32Value", ir.ScalarUint32},
		{"BoolValue", ir.ScalarBool},
		{"StringValue", ir.ScalarString},
		{"BytesValue", ir.ScalarBytes},
	} {
		b.Messages(Msg(".google.protobuf."+w.name, Scalar("value", 1, w.kind)))
	}
	b.Messages(Msg(".google.protobuf.Empty"))
	return b.Build()
}

// MapComments is a CommentSource backed by a map keyed by Path.String().
type MapComments map[string]string

// Comment implements ir.CommentSource.
func (m MapComments) Comment(path ir.Path) (string, bool) {
	c, ok := m[path.String()]
	return c, ok
}

// ExpectNoDiff fails the test with a unified diff when want and got differ.
func ExpectNoDiff(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  5,
	})
	t.Error(diff)
}

// ExpectContains fails the test for every entry of want missing from got.
func ExpectContains(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("output missing %q\ngot:\n%s", w, got)
		}
	}
}

// ExpectNotContains fails the test for every entry of unwanted present in got.
func ExpectNotContains(t *testing.T, got string, unwanted ...string) {
	t.Helper()
	for _, w := range unwanted {
		if strings.Contains(got, w) {
			t.Errorf("output should not contain %q\ngot:\n%s", w, got)
		}
	}
}

// TimestampFile returns a non-generated google/protobuf/timestamp.proto.
func TimestampFile() *ir.File {
	return NewFile("google/protobuf/timestamp.proto", "google.protobuf").Imported().
		Messages(Msg(".google.protobuf.Timestamp", Scalar("seconds", 1, ir.ScalarInt64), Scalar("nanos", 2, ir.ScalarInt32))).
		Build()
}
