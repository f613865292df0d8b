// Package ir defines the Intermediate Representation shared by every stage of
// generation: the schema model read from protobuf descriptors, the resolved
// Shape of each field, and the MetaShape mirror emitted as runtime metadata.
// Everything in this package is immutable once constructed.
package ir

import "strconv"

// TypeName identifies a named message or enum.
type TypeName struct {
	// FullName is the fully-qualified dotted name with a leading dot.
	// Example: ".simple.Nested.InnerMessage"
	FullName string

	// Name is the flattened local name used in generated code.
	// Example: "Nested_InnerMessage"
	Name string
}

// IsZero returns true if the type name is empty.
func (n TypeName) IsZero() bool {
	return n.FullName == "" && n.Name == ""
}

// Path locates a declaration inside its file descriptor, using the field
// numbers and indices of google.protobuf.SourceCodeInfo.Location.path.
type Path []int32

// Append returns a new path with elems appended. The receiver is never modified.
func (p Path) Append(elems ...int32) Path {
	out := make(Path, 0, len(p)+len(elems))
	out = append(out, p...)
	return append(out, elems...)
}

// String returns the path as a dotted list of integers, e.g. "4.0.2.1".
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	buf := make([]byte, 0, len(p)*3)
	for i, v := range p {
		if i > 0 {
			buf = append(buf, '.')
		}
		buf = strconv.AppendInt(buf, int64(v), 10)
	}
	return string(buf)
}

// CommentSource supplies the comment attached to a declaration, if any.
// Implementations must tolerate paths that have no comment.
type CommentSource interface {
	Comment(path Path) (string, bool)
}

// NoComments is a CommentSource that never returns a comment.
type NoComments struct{}

// Comment implements CommentSource.
func (NoComments) Comment(Path) (string, bool) { return "", false }

// Warning represents a non-fatal issue encountered during generation.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the fully-qualified element that triggered the warning.
	Path string
}
