package ir

import "fmt"

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	// CodeUnknownTypeReference: a field or method refers to a name absent from the schema.
	CodeUnknownTypeReference ErrorCode = "unknown_type_reference"

	// CodeUnsupportedShape: a resolution cycle or a combination the resolver
	// cannot represent, such as a map whose value is itself a map.
	CodeUnsupportedShape ErrorCode = "unsupported_shape"

	// CodeAmbiguousBatchPattern: a method name looks like a batch method but its
	// request/response do not have the required shape. Only fatal in strict mode.
	CodeAmbiguousBatchPattern ErrorCode = "ambiguous_batch_pattern"
)

// Sentinels for use with errors.Is. They match any *Error with the same code.
var (
	ErrUnknownTypeReference  = &Error{Code: CodeUnknownTypeReference}
	ErrUnsupportedShape      = &Error{Code: CodeUnsupportedShape}
	ErrAmbiguousBatchPattern = &Error{Code: CodeAmbiguousBatchPattern}
)

// Error is a fatal generation error. Path is the fully-qualified element
// that caused it, e.g. ".simple.SimpleWithMap.entities_by_id".
type Error struct {
	Code    ErrorCode
	Path    string
	Message string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
}

// Is matches errors with the same code, so that errors.Is(err, ErrUnsupportedShape)
// holds for any unsupported shape error regardless of path.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Path == "" || t.Path == e.Path)
}

// Errorf creates a new error with a formatted message.
func Errorf(code ErrorCode, path string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	}
}

// Warning converts the error into a non-fatal warning.
func (e *Error) Warning() Warning {
	return Warning{Code: e.Code, Message: e.Message, Path: e.Path}
}

// FieldPath returns the fully-qualified path of a field within a message.
func FieldPath(msg *MessageDescriptor, field string) string {
	if msg == nil {
		return field
	}
	return msg.FullName + "." + field
}
