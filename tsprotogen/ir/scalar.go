package ir

// ScalarKind identifies a protobuf scalar value type.
type ScalarKind int

const (
	ScalarNone ScalarKind = iota // Not a scalar (message or enum field)
	ScalarBool
	ScalarInt32
	ScalarInt64
	ScalarUint32
	ScalarUint64
	ScalarSint32
	ScalarSint64
	ScalarFixed32
	ScalarFixed64
	ScalarSfixed32
	ScalarSfixed64
	ScalarFloat
	ScalarDouble
	ScalarString
	ScalarBytes
)

var scalarNames = [...]string{
	ScalarNone:     "none",
	ScalarBool:     "bool",
	ScalarInt32:    "int32",
	ScalarInt64:    "int64",
	ScalarUint32:   "uint32",
	ScalarUint64:   "uint64",
	ScalarSint32:   "sint32",
	ScalarSint64:   "sint64",
	ScalarFixed32:  "fixed32",
	ScalarFixed64:  "fixed64",
	ScalarSfixed32: "sfixed32",
	ScalarSfixed64: "sfixed64",
	ScalarFloat:    "float",
	ScalarDouble:   "double",
	ScalarString:   "string",
	ScalarBytes:    "bytes",
}

// String returns the protobuf spelling of the scalar kind.
func (k ScalarKind) String() string {
	if k < 0 || int(k) >= len(scalarNames) {
		return "unknown"
	}
	return scalarNames[k]
}

// IsNumeric reports whether values of this kind are numbers.
func (k ScalarKind) IsNumeric() bool {
	switch k {
	case ScalarInt32, ScalarInt64, ScalarUint32, ScalarUint64,
		ScalarSint32, ScalarSint64, ScalarFixed32, ScalarFixed64,
		ScalarSfixed32, ScalarSfixed64, ScalarFloat, ScalarDouble:
		return true
	}
	return false
}

// Valid reports whether k names one of the fifteen protobuf scalar kinds.
func (k ScalarKind) Valid() bool {
	return k > ScalarNone && k <= ScalarBytes
}

// ScalarKinds returns every valid scalar kind in declaration order.
func ScalarKinds() []ScalarKind {
	kinds := make([]ScalarKind, 0, ScalarBytes)
	for k := ScalarBool; k <= ScalarBytes; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// ParseScalarKind returns the kind with the given protobuf spelling.
func ParseScalarKind(s string) (ScalarKind, bool) {
	for k := ScalarBool; k <= ScalarBytes; k++ {
		if scalarNames[k] == s {
			return k, true
		}
	}
	return ScalarNone, false
}
