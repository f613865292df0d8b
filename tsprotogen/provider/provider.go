// Package provider converts compiled protobuf descriptors into the schema
// model. Parsing .proto sources is left to protoc or buf; this package reads
// their output: a FileDescriptorSet or a plugin CodeGeneratorRequest.
package provider

import (
	"bytes"
	"fmt"
	"os"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/Vilsol/ts-proto/tsprotogen/ir"
)

// Field numbers of the descriptor messages, used to build SourceCodeInfo paths.
const (
	fileMessageField   = 4
	fileEnumField      = 5
	fileServiceField   = 6
	msgFieldField      = 2
	msgNestedField     = 3
	msgEnumField       = 4
	enumValueField     = 2
	serviceMethodField = 2
)

var scalarKinds = map[descriptorpb.FieldDescriptorProto_Type]ir.ScalarKind{
	descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:   ir.ScalarDouble,
	descriptorpb.FieldDescriptorProto_TYPE_FLOAT:    ir.ScalarFloat,
	descriptorpb.FieldDescriptorProto_TYPE_INT64:    ir.ScalarInt64,
	descriptorpb.FieldDescriptorProto_TYPE_UINT64:   ir.ScalarUint64,
	descriptorpb.FieldDescriptorProto_TYPE_INT32:    ir.ScalarInt32,
	descriptorpb.FieldDescriptorProto_TYPE_FIXED64:  ir.ScalarFixed64,
	descriptorpb.FieldDescriptorProto_TYPE_FIXED32:  ir.ScalarFixed32,
	descriptorpb.FieldDescriptorProto_TYPE_BOOL:     ir.ScalarBool,
	descriptorpb.FieldDescriptorProto_TYPE_STRING:   ir.ScalarString,
	descriptorpb.FieldDescriptorProto_TYPE_BYTES:    ir.ScalarBytes,
	descriptorpb.FieldDescriptorProto_TYPE_UINT32:   ir.ScalarUint32,
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED32: ir.ScalarSfixed32,
	descriptorpb.FieldDescriptorProto_TYPE_SFIXED64: ir.ScalarSfixed64,
	descriptorpb.FieldDescriptorProto_TYPE_SINT32:   ir.ScalarSint32,
	descriptorpb.FieldDescriptorProto_TYPE_SINT64:   ir.ScalarSint64,
}

// FromCodeGeneratorRequest converts the files of a plugin request. Only the
// files listed in FileToGenerate are marked for generation.
func FromCodeGeneratorRequest(req *pluginpb.CodeGeneratorRequest) (*ir.Schema, error) {
	if len(req.GetFileToGenerate()) == 0 {
		return nil, fmt.Errorf("code generator request lists no files to generate")
	}
	return convert(req.GetProtoFile(), req.GetFileToGenerate())
}

// FromFileDescriptorSet converts set. When generate is empty every file is
// marked for generation.
func FromFileDescriptorSet(set *descriptorpb.FileDescriptorSet, generate []string) (*ir.Schema, error) {
	return convert(set.GetFile(), generate)
}

func convert(files []*descriptorpb.FileDescriptorProto, generate []string) (*ir.Schema, error) {
	want := make(map[string]bool, len(generate))
	for _, name := range generate {
		want[name] = true
	}
	schema := &ir.Schema{Files: make([]*ir.File, 0, len(files))}
	seen := make(map[string]bool, len(files))
	for _, fd := range files {
		f, err := ConvertFile(fd, len(want) == 0 || want[fd.GetName()])
		if err != nil {
			return nil, err
		}
		seen[f.Name] = true
		schema.Files = append(schema.Files, f)
	}
	for _, name := range generate {
		if !seen[name] {
			return nil, fmt.Errorf("file to generate %q is not in the descriptor set", name)
		}
	}
	return schema, nil
}

// ConvertFile converts one file descriptor. Nested messages and enums are
// flattened in declaration order, parents before children.
func ConvertFile(fd *descriptorpb.FileDescriptorProto, generate bool) (*ir.File, error) {
	if fd.GetName() == "" {
		return nil, fmt.Errorf("file descriptor has no name")
	}
	comments := NewSourceComments(fd.GetSourceCodeInfo())
	f := &ir.File{
		Name:         fd.GetName(),
		Package:      fd.GetPackage(),
		Generate:     generate,
		Dependencies: fd.GetDependency(),
		Comments:     comments,
	}
	f.Comment, _ = comments.Comment(syntaxPath)

	prefix := "."
	if f.Package != "" {
		prefix = "." + f.Package + "."
	}
	c := &converter{file: f}
	for i, m := range fd.GetMessageType() {
		if err := c.message(m, prefix, ir.Path{fileMessageField, int32(i)}); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	for i, e := range fd.GetEnumType() {
		c.enum(e, prefix, ir.Path{fileEnumField, int32(i)})
	}
	for i, s := range fd.GetService() {
		c.service(s, prefix, ir.Path{fileServiceField, int32(i)})
	}
	return f, nil
}

type converter struct {
	file *ir.File
}

func (c *converter) message(m *descriptorpb.DescriptorProto, prefix string, path ir.Path) error {
	full := prefix + m.GetName()
	msg := &ir.MessageDescriptor{
		FullName:   full,
		Name:       m.GetName(),
		MapEntry:   m.GetOptions().GetMapEntry(),
		Deprecated: m.GetOptions().GetDeprecated(),
		Path:       path,
	}

	// Oneofs holding only a proto3 optional field are synthetic; the real
	// ones are renumbered densely.
	synthetic := make(map[int32]bool)
	for _, f := range m.GetField() {
		if f.GetProto3Optional() && f.OneofIndex != nil {
			synthetic[f.GetOneofIndex()] = true
		}
	}
	remap := make(map[int32]int32)
	for i, o := range m.GetOneofDecl() {
		if synthetic[int32(i)] {
			continue
		}
		remap[int32(i)] = int32(len(msg.Oneofs))
		msg.Oneofs = append(msg.Oneofs, o.GetName())
	}

	for i, fp := range m.GetField() {
		f, err := convertField(fp, path.Append(msgFieldField, int32(i)))
		if err != nil {
			return fmt.Errorf("%s.%s: %w", full, fp.GetName(), err)
		}
		if fp.OneofIndex != nil && !fp.GetProto3Optional() {
			idx, ok := remap[fp.GetOneofIndex()]
			if !ok {
				return fmt.Errorf("%s.%s: oneof index %d out of range", full, fp.GetName(), fp.GetOneofIndex())
			}
			f.OneofIndex = &idx
		}
		msg.Fields = append(msg.Fields, f)
	}
	c.file.Messages = append(c.file.Messages, msg)

	for i, n := range m.GetNestedType() {
		if err := c.message(n, full+".", path.Append(msgNestedField, int32(i))); err != nil {
			return err
		}
	}
	for i, e := range m.GetEnumType() {
		c.enum(e, full+".", path.Append(msgEnumField, int32(i)))
	}
	return nil
}

func convertField(fp *descriptorpb.FieldDescriptorProto, path ir.Path) (ir.FieldDescriptor, error) {
	f := ir.FieldDescriptor{
		Name:           fp.GetName(),
		JSONName:       fp.GetJsonName(),
		Number:         fp.GetNumber(),
		Repeated:       fp.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REPEATED,
		Proto3Optional: fp.GetProto3Optional(),
		Deprecated:     fp.GetOptions().GetDeprecated(),
		Path:           path,
	}
	switch t := fp.GetType(); t {
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		f.Message = fp.GetTypeName()
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		f.Enum = fp.GetTypeName()
	default:
		k, ok := scalarKinds[t]
		if !ok {
			return f, fmt.Errorf("unsupported field type %s", t)
		}
		f.Scalar = k
	}
	if err := f.Validate(); err != nil {
		return f, err
	}
	return f, nil
}

func (c *converter) enum(e *descriptorpb.EnumDescriptorProto, prefix string, path ir.Path) {
	enum := &ir.EnumDescriptor{
		FullName:   prefix + e.GetName(),
		Name:       e.GetName(),
		Deprecated: e.GetOptions().GetDeprecated(),
		Path:       path,
	}
	for i, v := range e.GetValue() {
		enum.Values = append(enum.Values, ir.EnumValue{
			Name:   v.GetName(),
			Number: v.GetNumber(),
			Path:   path.Append(enumValueField, int32(i)),
		})
	}
	c.file.Enums = append(c.file.Enums, enum)
}

func (c *converter) service(s *descriptorpb.ServiceDescriptorProto, prefix string, path ir.Path) {
	svc := &ir.ServiceDescriptor{
		FullName:   prefix + s.GetName(),
		Name:       s.GetName(),
		Deprecated: s.GetOptions().GetDeprecated(),
		Path:       path,
	}
	for i, m := range s.GetMethod() {
		svc.Methods = append(svc.Methods, ir.MethodDescriptor{
			Name:            m.GetName(),
			InputType:       m.GetInputType(),
			OutputType:      m.GetOutputType(),
			ClientStreaming: m.GetClientStreaming(),
			ServerStreaming: m.GetServerStreaming(),
			Deprecated:      m.GetOptions().GetDeprecated(),
			Path:            path.Append(serviceMethodField, int32(i)),
		})
	}
	c.file.Services = append(c.file.Services, svc)
}

// LoadDescriptorSet reads a FileDescriptorSet from path. Binary output of
// `protoc --descriptor_set_out` and its protojson form are both accepted.
func LoadDescriptorSet(path string) (*descriptorpb.FileDescriptorSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor set: %w", err)
	}
	return ParseDescriptorSet(data)
}

// ParseDescriptorSet decodes a binary or protojson FileDescriptorSet.
func ParseDescriptorSet(data []byte) (*descriptorpb.FileDescriptorSet, error) {
	set := &descriptorpb.FileDescriptorSet{}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := protojson.Unmarshal(trimmed, set); err != nil {
			return nil, fmt.Errorf("decode descriptor set json: %w", err)
		}
		return set, nil
	}
	if err := proto.Unmarshal(data, set); err != nil {
		return nil, fmt.Errorf("decode descriptor set: %w", err)
	}
	return set, nil
}
