package service

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Vilsol/ts-proto/tsprotogen/ir"
	"github.com/Vilsol/ts-proto/tsprotogen/naming"
	"github.com/Vilsol/ts-proto/tsprotogen/resolve"
)

const batchPrefix = "Batch"

// accessor is a single-key convenience method derived from a batch method.
type accessor struct {
	name  string   // GetWidget
	param string   // id
	key   ir.Shape // element of the request sequence
	value ir.Shape // element of the response sequence or map value
}

// IsBatchName reports whether name follows the batch naming convention:
// "Batch" followed by an uppercase letter.
func IsBatchName(name string) bool {
	rest, ok := strings.CutPrefix(name, batchPrefix)
	if !ok {
		return false
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsUpper(r)
}

// AccessorName returns the name of the accessor synthesized for a batch
// method: the Batch prefix is replaced by Get and the rest is singularized.
//
//	BatchGetWidgets -> GetWidget
//	BatchQueryEntities -> GetQueryEntity
func AccessorName(name string) string {
	rest := strings.TrimPrefix(name, batchPrefix)
	if !strings.HasPrefix(rest, "Get") {
		rest = "Get" + rest
	}
	return naming.Singular(rest)
}

// detectAccessor matches the batch pattern of m. It returns (nil, nil) for
// methods that are not named like batch methods, and an
// AmbiguousBatchPattern error when the name matches but the shapes do not.
//
// The request must have exactly one field, a sequence of scalars or
// messages. The response must have exactly one field, either a sequence or
// a map keyed by the request element's scalar kind.
func detectAccessor(r *resolve.Resolver, m *Method) (*accessor, *ir.Error) {
	if !IsBatchName(m.Desc.Name) {
		return nil, nil
	}
	mismatch := func(format string, args ...any) (*accessor, *ir.Error) {
		return nil, ir.Errorf(ir.CodeAmbiguousBatchPattern, m.path, format, args...)
	}

	reg := r.Registry()
	req, _ := reg.Message(m.Desc.InputType)
	resp, _ := reg.Message(m.Desc.OutputType)
	if len(req.Fields) != 1 {
		return mismatch("batch request %s must have exactly one field, has %d", req.FullName, len(req.Fields))
	}
	if len(resp.Fields) != 1 {
		return mismatch("batch response %s must have exactly one field, has %d", resp.FullName, len(resp.Fields))
	}

	reqField := &req.Fields[0]
	reqShape, err := r.Resolve(reqField, req)
	if err != nil {
		return mismatch("batch request field: %v", err)
	}
	seq, ok := reqShape.(ir.Sequence)
	if !ok {
		return mismatch("batch request field %s must be repeated, is %s", reqField.Name, reqShape)
	}
	switch seq.Element.(type) {
	case ir.Scalar, ir.MessageRef:
	default:
		return mismatch("batch request field %s must hold scalars or messages, holds %s", reqField.Name, seq.Element)
	}

	respField := &resp.Fields[0]
	respShape, err := r.Resolve(respField, resp)
	if err != nil {
		return mismatch("batch response field: %v", err)
	}
	var value ir.Shape
	switch s := respShape.(type) {
	case ir.Sequence:
		value = s.Element
	case ir.Assoc:
		key, ok := seq.Element.(ir.Scalar)
		if !ok || key.ScalarKind != s.Key {
			return mismatch("batch response map %s is keyed by %s, request holds %s", respField.Name, s.Key, seq.Element)
		}
		value = s.Value
	default:
		return mismatch("batch response field %s must be repeated or a map, is %s", respField.Name, respShape)
	}

	return &accessor{
		name:  AccessorName(m.Desc.Name),
		param: naming.Singular(r.Key(reqField.Name)),
		key:   seq.Element,
		value: value,
	}, nil
}
