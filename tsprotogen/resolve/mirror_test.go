package resolve

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/Vilsol/ts-proto/internal/prototest"
	"github.com/Vilsol/ts-proto/tsprotogen/ir"
	"github.com/Vilsol/ts-proto/tsprotogen/option"
)

func TestPrimitiveName(t *testing.T) {
	tests := []struct {
		kind ir.ScalarKind
		want string
	}{
		{ir.ScalarBool, "boolean"},
		{ir.ScalarString, "string"},
		{ir.ScalarBytes, "Uint8Array"},
		{ir.ScalarInt64, "number"},
		{ir.ScalarDouble, "number"},
		{ir.ScalarSfixed32, "number"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := PrimitiveName(tt.kind); got != tt.want {
				t.Errorf("PrimitiveName(%s) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestMapKeyName(t *testing.T) {
	tests := []struct {
		kind ir.ScalarKind
		want string
	}{
		{ir.ScalarString, "string"},
		{ir.ScalarBool, "string"},
		{ir.ScalarInt32, "number"},
		{ir.ScalarInt64, "number"},
		{ir.ScalarUint32, "number"},
		{ir.ScalarSfixed64, "number"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := MapKeyName(tt.kind); got != tt.want {
				t.Errorf("MapKeyName(%s) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestMirror(t *testing.T) {
	child := ir.ObjectRef{FullName: ".simple.Child", Name: "Child"}
	str := ir.Primitive{Name: "string"}
	num := ir.Primitive{Name: "number"}

	tests := []struct {
		name  string
		shape ir.Shape
		want  ir.MetaShape
	}{
		{"scalar", ir.ScalarOf(ir.ScalarInt32), num},
		{"enum", ir.EnumOf(".simple.StateEnum", "StateEnum"), ir.ObjectRef{FullName: ".simple.StateEnum", Name: "StateEnum"}},
		{"message", ir.MessageOf(".simple.Child", "Child"), child},
		{"sequence", ir.SequenceOf(ir.MessageOf(".simple.Child", "Child")), ir.ArrayOf{Element: child}},
		{"assoc", ir.AssocOf(ir.ScalarInt64, ir.MessageOf(".simple.Child", "Child")), ir.MapOf{Key: "number", Value: child}},
		{"optional", ir.OptionalOf(ir.MessageOf(".simple.Child", "Child")), ir.UnionOf{Choices: []ir.MetaShape{ir.Absent{}, child}}},
		{"wrapper", ir.WrapperOf(ir.ScalarString), ir.UnionOf{Choices: []ir.MetaShape{str, ir.Absent{}}}},
		{
			"optional wrapper is flattened",
			ir.OptionalOf(ir.WrapperOf(ir.ScalarString)),
			ir.UnionOf{Choices: []ir.MetaShape{ir.Absent{}, str}},
		},
		{
			"double optional is flattened",
			ir.OptionalOf(ir.OptionalOf(ir.ScalarOf(ir.ScalarBool))),
			ir.UnionOf{Choices: []ir.MetaShape{ir.Absent{}, ir.Primitive{Name: "boolean"}}},
		},
		{"timestamp", ir.MessageOf(TimestampType, "Timestamp"), ir.Primitive{Name: "Date"}},
		{"timestamp map", ir.AssocOf(ir.ScalarString, ir.MessageOf(TimestampType, "Timestamp")), ir.MapOf{Key: "string", Value: ir.Primitive{Name: "Date"}}},
		{"bool keyed assoc", ir.AssocOf(ir.ScalarBool, ir.ScalarOf(ir.ScalarString)), ir.MapOf{Key: "string", Value: str}},
		{
			"assoc of wrapper",
			ir.AssocOf(ir.ScalarString, ir.WrapperOf(ir.ScalarInt64)),
			ir.MapOf{Key: "string", Value: ir.UnionOf{Choices: []ir.MetaShape{num, ir.Absent{}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mirror(tt.shape)
			if !ir.EqualMeta(got, tt.want) {
				t.Errorf("Mirror(%s) = %s, want %s", tt.shape, ir.MetaString(got), ir.MetaString(tt.want))
			}
			if !Conforms(tt.shape, got) {
				t.Errorf("Conforms(%s, Mirror) = false", tt.shape)
			}
		})
	}
}

func TestConforms_Rejects(t *testing.T) {
	child := ir.ObjectRef{FullName: ".simple.Child", Name: "Child"}
	tests := []struct {
		name  string
		shape ir.Shape
		meta  ir.MetaShape
	}{
		{"wrong primitive", ir.ScalarOf(ir.ScalarBool), ir.Primitive{Name: "number"}},
		{"optional without union", ir.OptionalOf(ir.MessageOf(".simple.Child", "Child")), child},
		{"union without absent", ir.OptionalOf(ir.MessageOf(".simple.Child", "Child")), ir.UnionOf{Choices: []ir.MetaShape{child}}},
		{"absent for required", ir.MessageOf(".simple.Child", "Child"), ir.Union(ir.Absent{}, child)},
		{"array vs map", ir.SequenceOf(ir.ScalarOf(ir.ScalarInt32)), ir.MapOf{Key: "number", Value: ir.Primitive{Name: "number"}}},
		{"map key", ir.AssocOf(ir.ScalarString, ir.ScalarOf(ir.ScalarInt32)), ir.MapOf{Key: "number", Value: ir.Primitive{Name: "number"}}},
		{"bool map key", ir.AssocOf(ir.ScalarBool, ir.ScalarOf(ir.ScalarString)), ir.MapOf{Key: "boolean", Value: ir.Primitive{Name: "string"}}},
		{"timestamp object", ir.MessageOf(TimestampType, "Timestamp"), ir.ObjectRef{FullName: TimestampType, Name: "Timestamp"}},
		{"object name", ir.MessageOf(".simple.Child", "Child"), ir.ObjectRef{FullName: ".simple.Child", Name: "Kid"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Conforms(tt.shape, tt.meta) {
				t.Errorf("Conforms(%s, %s) = true, want false", tt.shape, ir.MetaString(tt.meta))
			}
		})
	}
}

func TestMirrorOneof(t *testing.T) {
	g := OneofGroup{
		Name: "choice",
		Cases: []OneofCase{
			{Key: "aString", Shape: ir.ScalarOf(ir.ScalarString)},
			{Key: "aWrapper", Shape: ir.WrapperOf(ir.ScalarBool)},
		},
	}
	got := MirrorOneof(g)
	want := ir.UnionOf{Choices: []ir.MetaShape{ir.Absent{}, ir.Primitive{Name: "string"}, ir.Primitive{Name: "boolean"}}}
	if !ir.EqualMeta(got, want) {
		t.Errorf("MirrorOneof() = %s, want %s", ir.MetaString(got), ir.MetaString(want))
	}
}

func TestMirrorService(t *testing.T) {
	svc := &ir.ServiceDescriptor{
		FullName: ".pkg.WidgetService",
		Name:     "WidgetService",
		Methods: []ir.MethodDescriptor{
			{Name: "GetWidget", InputType: ".pkg.Widget", OutputType: ".pkg.Entity"},
		},
	}
	r, _ := newResolver(t, holderSchema(), nil)
	got, err := r.MirrorService(svc)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Methods) != 1 {
		t.Fatalf("len(Methods) = %d", len(got.Methods))
	}
	if m := got.Methods[0]; m.Request != ".pkg.Widget" || m.Response != ".pkg.Entity" {
		t.Errorf("method = %+v, want request .pkg.Widget and response .pkg.Entity", m)
	}

	svc.Methods[0].InputType = ".pkg.Missing"
	_, err = r.MirrorService(svc)
	if !errors.Is(err, ir.ErrUnknownTypeReference) {
		t.Errorf("MirrorService() error = %v, want UnknownTypeReference", err)
	}
}

// randomSchema generates a package of messages and enums whose fields cover
// every resolution branch: scalars, enums, messages, wrappers, maps,
// repeated fields, oneof members and proto3 optionals.
func randomSchema(rng *rand.Rand) (*ir.Schema, []*ir.MessageDescriptor) {
	const pkg = "gen"
	kinds := ir.ScalarKinds()
	keyKinds := []ir.ScalarKind{ir.ScalarString, ir.ScalarInt32, ir.ScalarInt64, ir.ScalarUint32, ir.ScalarBool, ir.ScalarSfixed64}
	wrappers := []string{
		".google.protobuf.DoubleValue", ".google.protobuf.FloatValue", ".google.protobuf.Int64Value",
		".google.protobuf.UInt64Value", ".google.protobuf.Int32Value", ".google.protobuf.UInt32Value",
		".google.protobuf.BoolValue", ".google.protobuf.StringValue", ".google.protobuf.BytesValue",
	}

	nMsgs := 3 + rng.IntN(4)
	names := make([]string, nMsgs)
	for i := range names {
		names[i] = fmt.Sprintf(".%s.M%d", pkg, i)
	}
	enums := []*ir.EnumDescriptor{prototest.EnumOf("."+pkg+".E0", "A", "B"), prototest.EnumOf("."+pkg+".M0.Inner", "X")}

	var msgs, entries []*ir.MessageDescriptor
	for _, name := range names {
		msg := prototest.Msg(name)
		nOneofs := rng.IntN(3)
		for o := 0; o < nOneofs; o++ {
			msg.Oneofs = append(msg.Oneofs, fmt.Sprintf("group_%d", o))
		}
		nFields := 1 + rng.IntN(10)
		for j := 0; j < nFields; j++ {
			fname := fmt.Sprintf("field_%d", j)
			num := int32(j + 1)
			var f ir.FieldDescriptor
			switch rng.IntN(5) {
			case 0:
				f = prototest.Scalar(fname, num, kinds[rng.IntN(len(kinds))])
			case 1:
				f = prototest.Enum(fname, num, enums[rng.IntN(len(enums))].FullName)
			case 2:
				f = prototest.Message(fname, num, names[rng.IntN(len(names))])
			case 3:
				f = prototest.Message(fname, num, wrappers[rng.IntN(len(wrappers))])
			case 4:
				entryName := fmt.Sprintf("%s.Field%dEntry", name, j)
				var value ir.FieldDescriptor
				switch rng.IntN(4) {
				case 0:
					value = prototest.Scalar("", 0, kinds[rng.IntN(len(kinds))])
				case 1:
					value = prototest.Enum("", 0, enums[0].FullName)
				case 2:
					value = prototest.Message("", 0, names[rng.IntN(len(names))])
				case 3:
					value = prototest.Message("", 0, wrappers[rng.IntN(len(wrappers))])
				}
				entry := prototest.MapEntry(entryName, keyKinds[rng.IntN(len(keyKinds))], value)
				entries = append(entries, entry)
				f = prototest.Repeated(prototest.Message(fname, num, entryName))
				msg.Fields = append(msg.Fields, f)
				continue
			}
			switch rng.IntN(4) {
			case 0:
				f.Repeated = true
			case 1:
				if nOneofs > 0 {
					f = prototest.InOneof(f, int32(rng.IntN(nOneofs)))
				}
			case 2:
				if !f.IsMessage() {
					f = prototest.Optional(f)
				}
			}
			msg.Fields = append(msg.Fields, f)
		}
		msgs = append(msgs, msg)
	}

	all := append(append([]*ir.MessageDescriptor{}, msgs...), entries...)
	file := prototest.NewFile("gen/gen.proto", pkg).Enums(enums...).Messages(all...).Build()
	return prototest.Schema(prototest.WellKnownFile(), file), msgs
}

func configMatrix() []option.Config {
	var out []option.Config
	for _, oneof := range []option.OneofStrategy{option.OneofProperties, option.OneofUnions} {
		for _, unbox := range []bool{true, false} {
			for _, optional := range []bool{true, false} {
				cfg := option.Default()
				cfg.OneofStrategy = oneof
				cfg.WrapperUnboxing = unbox
				cfg.OptionalFields = optional
				out = append(out, cfg)
			}
		}
	}
	return out
}

func TestMirror_IsomorphismProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(20240501, 7))
	for iter := 0; iter < 200; iter++ {
		schema, msgs := randomSchema(rng)
		reg := NewRegistry(schema)
		for _, cfg := range configMatrix() {
			r := New(reg, &cfg)
			for _, msg := range msgs {
				for i := range msg.Fields {
					f := &msg.Fields[i]
					shape, err := r.Resolve(f, msg)
					if err != nil {
						t.Fatalf("iter %d: Resolve(%s.%s) error = %v", iter, msg.FullName, f.Name, err)
					}
					again, err := r.Resolve(f, msg)
					if err != nil || again != shape {
						t.Fatalf("iter %d: %s.%s not idempotent: %s then %v (%v)", iter, msg.FullName, f.Name, shape, again, err)
					}
					if seq, ok := shape.(ir.Sequence); ok && ir.IsAbsentable(seq.Element) {
						t.Errorf("iter %d: %s.%s: sequence of absentable %s", iter, msg.FullName, f.Name, shape)
					}
					meta := Mirror(shape)
					if !Conforms(shape, meta) {
						t.Errorf("iter %d: %s.%s: Mirror(%s) = %s does not conform",
							iter, msg.FullName, f.Name, shape, ir.MetaString(meta))
					}
					if u, ok := meta.(ir.UnionOf); ok {
						for _, c := range u.Choices {
							if _, nested := c.(ir.UnionOf); nested {
								t.Errorf("iter %d: %s.%s: nested union %s", iter, msg.FullName, f.Name, ir.MetaString(meta))
							}
						}
					}
				}

				members, err := r.ResolveMessage(msg)
				if err != nil {
					t.Fatalf("iter %d: ResolveMessage(%s) error = %v", iter, msg.FullName, err)
				}
				for _, m := range members {
					if m.Oneof == nil {
						continue
					}
					meta, ok := MirrorMember(m).(ir.UnionOf)
					if !ok || len(meta.Choices) == 0 {
						t.Fatalf("iter %d: oneof %s mirrored to %T", iter, m.Key, MirrorMember(m))
					}
					if _, ok := meta.Choices[0].(ir.Absent); !ok {
						t.Errorf("iter %d: oneof %s: first choice %T, want absent", iter, m.Key, meta.Choices[0])
					}
				}
			}
		}
	}
}
