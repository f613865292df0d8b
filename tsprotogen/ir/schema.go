package ir

import "fmt"

// Schema is the complete, read-only input of one generation run.
// Cross-file references are already resolved to fully-qualified names.
type Schema struct {
	// Files contains every file known to the run, including dependencies
	// that are only consulted for type lookup.
	Files []*File
}

// Generated returns the files whose Generate flag is set, in input order.
func (s *Schema) Generated() []*File {
	var out []*File
	for _, f := range s.Files {
		if f.Generate {
			out = append(out, f)
		}
	}
	return out
}

// FindFile looks up a file by name. Returns nil if not found.
func (s *Schema) FindFile(name string) *File {
	for _, f := range s.Files {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// File is one schema file.
type File struct {
	// Name is the slash-separated file name, e.g. "simple/simple.proto".
	Name string

	// Package is the dotted protobuf package, e.g. "simple". May be empty.
	Package string

	// Generate is true if output should be produced for this file.
	Generate bool

	// Dependencies lists the names of imported files.
	Dependencies []string

	// Comment is the leading file comment (attached to the syntax statement).
	Comment string

	// Messages contains all messages including nested ones, flattened in
	// declaration order (parents before children).
	Messages []*MessageDescriptor

	// Enums contains all enums including nested ones.
	Enums []*EnumDescriptor

	// Services contains the services declared in this file.
	Services []*ServiceDescriptor

	// Comments supplies declaration comments. Nil means no comments.
	Comments CommentSource
}

// CommentAt returns the comment for path, tolerating a nil source.
func (f *File) CommentAt(path Path) string {
	if f.Comments == nil {
		return ""
	}
	c, _ := f.Comments.Comment(path)
	return c
}

// MessageDescriptor describes a message.
type MessageDescriptor struct {
	// FullName is the fully-qualified name, e.g. ".simple.Nested.InnerMessage".
	FullName string

	// Name is the unqualified proto name, e.g. "InnerMessage".
	Name string

	// Fields contains the fields in declaration order.
	Fields []FieldDescriptor

	// Oneofs contains the names of the real (non-synthetic) oneof groups,
	// indexed by FieldDescriptor.OneofIndex.
	Oneofs []string

	// MapEntry is true iff this is the synthetic key/value carrier of a map field.
	MapEntry bool

	// Deprecated is true if the message carries the deprecated option.
	Deprecated bool

	// Path locates the message in its file.
	Path Path
}

// Field returns the field with the given raw name, or nil.
func (m *MessageDescriptor) Field(name string) *FieldDescriptor {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			return &m.Fields[i]
		}
	}
	return nil
}

// FieldDescriptor describes a single message field.
// Exactly one of Scalar, Message and Enum is set.
type FieldDescriptor struct {
	// Name is the raw proto field name, e.g. "old_states".
	Name string

	// JSONName is the lowerCamel JSON name supplied by the compiler, if any.
	JSONName string

	// Number is the field number.
	Number int32

	// Scalar is the scalar kind, or ScalarNone for message and enum fields.
	Scalar ScalarKind

	// Message is the fully-qualified referenced message name.
	Message string

	// Enum is the fully-qualified referenced enum name.
	Enum string

	// Repeated is true for repeated (and map) fields.
	Repeated bool

	// OneofIndex is the index into MessageDescriptor.Oneofs for members of a
	// real oneof group. Nil for fields outside any group. Synthetic oneofs of
	// proto3 optional fields never appear here.
	OneofIndex *int32

	// Proto3Optional is true for fields declared with the proto3 optional label.
	Proto3Optional bool

	// Deprecated is true if the field carries the deprecated option.
	Deprecated bool

	// Path locates the field in its file.
	Path Path
}

// InOneof reports whether the field belongs to a real oneof group.
func (f FieldDescriptor) InOneof() bool {
	return f.OneofIndex != nil && !f.Proto3Optional
}

// IsMessage reports whether the field references a message.
func (f FieldDescriptor) IsMessage() bool {
	return f.Message != ""
}

// Validate checks that exactly one of Scalar, Message and Enum is set.
func (f FieldDescriptor) Validate() error {
	set := 0
	if f.Scalar != ScalarNone {
		if !f.Scalar.Valid() {
			return fmt.Errorf("field %s has invalid scalar kind %d", f.Name, int(f.Scalar))
		}
		set++
	}
	if f.Message != "" {
		set++
	}
	if f.Enum != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("field %s must reference exactly one of scalar, message or enum (got %d)", f.Name, set)
	}
	return nil
}

// EnumDescriptor describes an enumeration.
type EnumDescriptor struct {
	// FullName is the fully-qualified name, e.g. ".simple.Child.Type".
	FullName string

	// Name is the unqualified proto name, e.g. "Type".
	Name string

	// Values contains the enum values in declaration order.
	Values []EnumValue

	// Deprecated is true if the enum carries the deprecated option.
	Deprecated bool

	// Path locates the enum in its file.
	Path Path
}

// EnumValue is a single enum constant.
type EnumValue struct {
	Name   string
	Number int32
	Path   Path
}

// ServiceDescriptor describes an RPC service.
type ServiceDescriptor struct {
	// FullName is the fully-qualified name, e.g. ".simple.PingService".
	FullName string

	// Name is the unqualified service name.
	Name string

	// Methods contains the methods in declaration order.
	Methods []MethodDescriptor

	// Deprecated is true if the service carries the deprecated option.
	Deprecated bool

	// Path locates the service in its file.
	Path Path
}

// MethodDescriptor describes a single RPC method.
type MethodDescriptor struct {
	Name            string
	InputType       string // fully-qualified
	OutputType      string // fully-qualified
	ClientStreaming bool
	ServerStreaming bool
	Deprecated      bool
	Path            Path
}
