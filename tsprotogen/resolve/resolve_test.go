package resolve

import (
	"errors"
	"testing"
	"time"

	"github.com/Vilsol/ts-proto/internal/prototest"
	"github.com/Vilsol/ts-proto/tsprotogen/ir"
	"github.com/Vilsol/ts-proto/tsprotogen/option"
)

// holderSchema builds package "pkg" with a message exercising every branch
// of resolution.
func holderSchema() *ir.Schema {
	holder := prototest.Msg(".pkg.Holder",
		prototest.Repeated(prototest.Enum("old_states", 1, ".pkg.StateEnum")),
		prototest.Repeated(prototest.Message("entities_by_id", 2, ".pkg.Holder.EntitiesByIdEntry")),
		prototest.Repeated(prototest.Message("name_lookup", 3, ".pkg.Holder.NameLookupEntry")),
		prototest.Message("child", 4, ".pkg.Widget"),
		prototest.Optional(prototest.Scalar("maybe", 5, ir.ScalarInt32)),
		prototest.Message("wrapped", 6, ".google.protobuf.StringValue"),
		prototest.InOneof(prototest.Scalar("a_string", 7, ir.ScalarString), 0),
		prototest.InOneof(prototest.Message("a_widget", 8, ".pkg.Widget"), 0),
		prototest.Scalar("plain", 9, ir.ScalarUint64),
		prototest.Repeated(prototest.Message("widgets", 10, ".pkg.Widget")),
		prototest.Enum("state", 11, ".pkg.StateEnum"),
		prototest.Repeated(prototest.Message("wrapped_list", 12, ".google.protobuf.BoolValue")),
		prototest.Repeated(prototest.Message("wrapped_by_key", 13, ".pkg.Holder.WrappedByKeyEntry")),
	)
	holder.Oneofs = []string{"choice"}

	file := prototest.NewFile("pkg/holder.proto", "pkg").
		Enums(prototest.EnumOf(".pkg.StateEnum", "UNKNOWN", "ON", "OFF")).
		Messages(
			prototest.Msg(".pkg.Widget", prototest.Scalar("id", 1, ir.ScalarInt32)),
			prototest.Msg(".pkg.Entity", prototest.Scalar("id", 1, ir.ScalarInt32)),
			holder,
			prototest.MapEntry(".pkg.Holder.EntitiesByIdEntry", ir.ScalarInt32, prototest.Message("", 0, ".pkg.Entity")),
			prototest.MapEntry(".pkg.Holder.NameLookupEntry", ir.ScalarString, prototest.Scalar("", 0, ir.ScalarString)),
			prototest.MapEntry(".pkg.Holder.WrappedByKeyEntry", ir.ScalarString, prototest.Message("", 0, ".google.protobuf.Int64Value")),
		).
		Build()
	return prototest.Schema(prototest.WellKnownFile(), file)
}

func newResolver(t *testing.T, schema *ir.Schema, mutate func(*option.Config)) (*Resolver, *Registry) {
	t.Helper()
	cfg := option.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	reg := NewRegistry(schema)
	return New(reg, &cfg), reg
}

func holder(t *testing.T, reg *Registry) *ir.MessageDescriptor {
	t.Helper()
	m, ok := reg.Message(".pkg.Holder")
	if !ok {
		t.Fatal("Holder not registered")
	}
	return m
}

var (
	widgetRef = ir.MessageOf(".pkg.Widget", "Widget")
	entityRef = ir.MessageOf(".pkg.Entity", "Entity")
	stateRef  = ir.EnumOf(".pkg.StateEnum", "StateEnum")
)

func TestResolve_Defaults(t *testing.T) {
	r, reg := newResolver(t, holderSchema(), nil)
	msg := holder(t, reg)

	tests := []struct {
		field string
		want  ir.Shape
	}{
		{"old_states", ir.SequenceOf(stateRef)},
		{"entities_by_id", ir.AssocOf(ir.ScalarInt32, entityRef)},
		{"name_lookup", ir.AssocOf(ir.ScalarString, ir.ScalarOf(ir.ScalarString))},
		{"child", ir.OptionalOf(widgetRef)},
		{"maybe", ir.OptionalOf(ir.ScalarOf(ir.ScalarInt32))},
		{"wrapped", ir.OptionalOf(ir.WrapperOf(ir.ScalarString))},
		{"a_string", ir.OptionalOf(ir.ScalarOf(ir.ScalarString))},
		{"a_widget", ir.OptionalOf(widgetRef)},
		{"plain", ir.ScalarOf(ir.ScalarUint64)},
		{"widgets", ir.SequenceOf(widgetRef)},
		{"state", stateRef},
		{"wrapped_list", ir.SequenceOf(ir.ScalarOf(ir.ScalarBool))},
		{"wrapped_by_key", ir.AssocOf(ir.ScalarString, ir.WrapperOf(ir.ScalarInt64))},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := r.Resolve(msg.Field(tt.field), msg)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolve_ConfigDecisionPoints(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*option.Config)
		field  string
		want   ir.Shape
	}{
		{
			name:   "optional fields off",
			mutate: func(c *option.Config) { c.OptionalFields = false },
			field:  "child",
			want:   widgetRef,
		},
		{
			name:   "optional fields off keeps proto3 optional",
			mutate: func(c *option.Config) { c.OptionalFields = false },
			field:  "maybe",
			want:   ir.OptionalOf(ir.ScalarOf(ir.ScalarInt32)),
		},
		{
			name:   "wrapper boxed",
			mutate: func(c *option.Config) { c.WrapperUnboxing = false },
			field:  "wrapped",
			want:   ir.OptionalOf(ir.MessageOf(".google.protobuf.StringValue", "StringValue")),
		},
		{
			name:   "wrapper boxed in sequence",
			mutate: func(c *option.Config) { c.WrapperUnboxing = false },
			field:  "wrapped_list",
			want:   ir.SequenceOf(ir.MessageOf(".google.protobuf.BoolValue", "BoolValue")),
		},
		{
			name:   "oneof unions leaves member unwrapped",
			mutate: func(c *option.Config) { c.OneofStrategy = option.OneofUnions },
			field:  "a_string",
			want:   ir.ScalarOf(ir.ScalarString),
		},
		{
			name:   "oneof unions leaves message member unwrapped",
			mutate: func(c *option.Config) { c.OneofStrategy = option.OneofUnions },
			field:  "a_widget",
			want:   widgetRef,
		},
		{
			name: "oneof properties wraps even without optional fields",
			mutate: func(c *option.Config) {
				c.OptionalFields = false
			},
			field: "a_widget",
			want:  ir.OptionalOf(widgetRef),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, reg := newResolver(t, holderSchema(), tt.mutate)
			msg := holder(t, reg)
			got, err := r.Resolve(msg.Field(tt.field), msg)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	r, reg := newResolver(t, holderSchema(), nil)
	msg := holder(t, reg)
	for i := range msg.Fields {
		f := &msg.Fields[i]
		a, err := r.Resolve(f, msg)
		if err != nil {
			t.Fatalf("%s: %v", f.Name, err)
		}
		b, err := r.Resolve(f, msg)
		if err != nil {
			t.Fatalf("%s: %v", f.Name, err)
		}
		if a != b {
			t.Errorf("%s: first %s, second %s", f.Name, a, b)
		}
	}
}

func TestResolve_MapDetectionExactness(t *testing.T) {
	build := func(mutate func(entry *ir.MessageDescriptor)) (*Resolver, *ir.MessageDescriptor) {
		entry := prototest.MapEntry(".pkg.Outer.ItemsEntry", ir.ScalarString, prototest.Message("", 0, ".pkg.Widget"))
		mutate(entry)
		outer := prototest.Msg(".pkg.Outer", prototest.Repeated(prototest.Message("items", 1, ".pkg.Outer.ItemsEntry")))
		schema := prototest.Schema(prototest.NewFile("pkg/outer.proto", "pkg").
			Messages(prototest.Msg(".pkg.Widget"), outer, entry).Build())
		return New(NewRegistry(schema), nil), outer
	}

	tests := []struct {
		name   string
		mutate func(entry *ir.MessageDescriptor)
		want   ir.Shape
	}{
		{
			name:   "map entry",
			mutate: func(*ir.MessageDescriptor) {},
			want:   ir.AssocOf(ir.ScalarString, widgetRef),
		},
		{
			name:   "map entry flag cleared",
			mutate: func(e *ir.MessageDescriptor) { e.MapEntry = false },
			want:   ir.SequenceOf(ir.MessageOf(".pkg.Outer.ItemsEntry", "Outer_ItemsEntry")),
		},
		{
			name:   "value renamed",
			mutate: func(e *ir.MessageDescriptor) { e.Fields[1].Name = "val" },
			want:   ir.SequenceOf(ir.MessageOf(".pkg.Outer.ItemsEntry", "Outer_ItemsEntry")),
		},
		{
			name:   "key renamed",
			mutate: func(e *ir.MessageDescriptor) { e.Fields[0].Name = "k" },
			want:   ir.SequenceOf(ir.MessageOf(".pkg.Outer.ItemsEntry", "Outer_ItemsEntry")),
		},
		{
			name: "extra field",
			mutate: func(e *ir.MessageDescriptor) {
				e.Fields = append(e.Fields, prototest.Scalar("extra", 3, ir.ScalarBool))
			},
			want: ir.SequenceOf(ir.MessageOf(".pkg.Outer.ItemsEntry", "Outer_ItemsEntry")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, outer := build(tt.mutate)
			got, err := r.Resolve(&outer.Fields[0], outer)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolve_OptionalWrapping(t *testing.T) {
	r := New(NewRegistry(nil), nil)
	f := prototest.Optional(prototest.Scalar("count", 1, ir.ScalarInt32))
	msg := prototest.Msg(".pkg.Counter", f)

	got, err := r.Resolve(&msg.Fields[0], msg)
	if err != nil {
		t.Fatal(err)
	}
	if want := ir.Shape(ir.OptionalOf(ir.ScalarOf(ir.ScalarInt32))); got != want {
		t.Errorf("with flag: %s, want %s", got, want)
	}

	msg.Fields[0].Proto3Optional = false
	got, err = r.Resolve(&msg.Fields[0], msg)
	if err != nil {
		t.Fatal(err)
	}
	if want := ir.Shape(ir.ScalarOf(ir.ScalarInt32)); got != want {
		t.Errorf("without flag: %s, want %s", got, want)
	}
}

func TestResolve_OneofUniformity(t *testing.T) {
	r, reg := newResolver(t, holderSchema(), nil)
	msg := holder(t, reg)
	for _, name := range []string{"a_string", "a_widget"} {
		got, err := r.Resolve(msg.Field(name), msg)
		if err != nil {
			t.Fatal(err)
		}
		if got.Kind() != ir.ShapeOptional {
			t.Errorf("%s resolved to %s, want Optional", name, got)
		}
	}
}

func TestResolve_CycleDetection(t *testing.T) {
	// The value of LoopEntry is itself a map whose entry is LoopEntry.
	entry := prototest.MapEntry(".pkg.Cyclic.LoopEntry", ir.ScalarString,
		prototest.Repeated(prototest.Message("", 0, ".pkg.Cyclic.LoopEntry")))
	cyclic := prototest.Msg(".pkg.Cyclic", prototest.Repeated(prototest.Message("loop", 1, ".pkg.Cyclic.LoopEntry")))
	schema := prototest.Schema(prototest.NewFile("pkg/cyclic.proto", "pkg").Messages(cyclic, entry).Build())
	r := New(NewRegistry(schema), nil)

	done := make(chan error, 1)
	go func() {
		_, err := r.Resolve(&cyclic.Fields[0], cyclic)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ir.ErrUnsupportedShape) {
			t.Fatalf("Resolve() error = %v, want UnsupportedShape", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Resolve() did not terminate")
	}
}

func TestResolve_SelfReferencingMapValue(t *testing.T) {
	// A singular value that names its own entry message.
	entry := prototest.MapEntry(".pkg.Self.LoopEntry", ir.ScalarString, prototest.Message("", 0, ".pkg.Self.LoopEntry"))
	self := prototest.Msg(".pkg.Self", prototest.Repeated(prototest.Message("loop", 1, ".pkg.Self.LoopEntry")))
	schema := prototest.Schema(prototest.NewFile("pkg/self.proto", "pkg").Messages(self, entry).Build())
	r := New(NewRegistry(schema), nil)

	_, err := r.Resolve(&self.Fields[0], self)
	if !errors.Is(err, ir.ErrUnsupportedShape) {
		t.Fatalf("Resolve() error = %v, want UnsupportedShape", err)
	}
}

func TestResolve_MapOfMap(t *testing.T) {
	inner := prototest.MapEntry(".pkg.Outer.InnerEntry", ir.ScalarString, prototest.Scalar("", 0, ir.ScalarString))
	outerEntry := prototest.MapEntry(".pkg.Outer.NestedEntry", ir.ScalarString,
		prototest.Repeated(prototest.Message("", 0, ".pkg.Outer.InnerEntry")))
	outer := prototest.Msg(".pkg.Outer", prototest.Repeated(prototest.Message("nested", 1, ".pkg.Outer.NestedEntry")))
	schema := prototest.Schema(prototest.NewFile("pkg/outer.proto", "pkg").Messages(outer, outerEntry, inner).Build())
	r := New(NewRegistry(schema), nil)

	_, err := r.Resolve(&outer.Fields[0], outer)
	if !errors.Is(err, ir.ErrUnsupportedShape) {
		t.Fatalf("Resolve() error = %v, want UnsupportedShape", err)
	}
	var e *ir.Error
	if !errors.As(err, &e) || e.Path != ".pkg.Outer.nested" {
		t.Errorf("error path = %v, want .pkg.Outer.nested", err)
	}
}

func TestResolve_UnknownTypeReference(t *testing.T) {
	tests := []struct {
		name  string
		field ir.FieldDescriptor
	}{
		{"message", prototest.Message("ghost", 1, ".pkg.Ghost")},
		{"enum", prototest.Enum("ghost", 1, ".pkg.GhostEnum")},
		{"repeated message", prototest.Repeated(prototest.Message("ghost", 1, ".pkg.Ghost"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := prototest.Msg(".pkg.Haunted", tt.field)
			schema := prototest.Schema(prototest.NewFile("pkg/h.proto", "pkg").Messages(msg).Build())
			r := New(NewRegistry(schema), nil)
			_, err := r.Resolve(&msg.Fields[0], msg)
			if !errors.Is(err, ir.ErrUnknownTypeReference) {
				t.Fatalf("Resolve() error = %v, want UnknownTypeReference", err)
			}
			if !errors.Is(err, &ir.Error{Code: ir.CodeUnknownTypeReference, Path: ".pkg.Haunted.ghost"}) {
				t.Errorf("error %v does not carry path .pkg.Haunted.ghost", err)
			}
		})
	}
}

func TestResolve_EndToEndOldStates(t *testing.T) {
	r, reg := newResolver(t, holderSchema(), nil)
	msg := holder(t, reg)

	shape, err := r.Resolve(msg.Field("old_states"), msg)
	if err != nil {
		t.Fatal(err)
	}
	if want := ir.Shape(ir.SequenceOf(stateRef)); shape != want {
		t.Fatalf("Resolve() = %s, want %s", shape, want)
	}

	meta := Mirror(shape)
	want := ir.ArrayOf{Element: ir.ObjectRef{FullName: ".pkg.StateEnum", Name: "StateEnum"}}
	if !ir.EqualMeta(meta, want) {
		t.Errorf("Mirror() = %s, want %s", ir.MetaString(meta), ir.MetaString(want))
	}
}

func TestResolveMessage(t *testing.T) {
	t.Run("properties", func(t *testing.T) {
		r, reg := newResolver(t, holderSchema(), nil)
		members, err := r.ResolveMessage(holder(t, reg))
		if err != nil {
			t.Fatal(err)
		}
		if len(members) != 13 {
			t.Fatalf("len(members) = %d, want 13", len(members))
		}
		wantKeys := []string{"oldStates", "entitiesById", "nameLookup", "child", "maybe", "wrapped", "aString", "aWidget"}
		for i, k := range wantKeys {
			if members[i].Key != k {
				t.Errorf("members[%d].Key = %q, want %q", i, members[i].Key, k)
			}
			if members[i].Oneof != nil {
				t.Errorf("members[%d] should not be a oneof group", i)
			}
		}
	})

	t.Run("unions", func(t *testing.T) {
		r, reg := newResolver(t, holderSchema(), func(c *option.Config) {
			c.OneofStrategy = option.OneofUnions
			c.KeyNaming = "snake"
		})
		members, err := r.ResolveMessage(holder(t, reg))
		if err != nil {
			t.Fatal(err)
		}
		if len(members) != 12 {
			t.Fatalf("len(members) = %d, want 12", len(members))
		}
		g := members[6]
		if g.Oneof == nil || g.Key != "choice" {
			t.Fatalf("members[6] = %+v, want oneof group choice", g)
		}
		if len(g.Oneof.Cases) != 2 {
			t.Fatalf("len(Cases) = %d, want 2", len(g.Oneof.Cases))
		}
		if g.Oneof.Cases[0].Key != "a_string" || g.Oneof.Cases[0].Shape != ir.Shape(ir.ScalarOf(ir.ScalarString)) {
			t.Errorf("Cases[0] = %+v", g.Oneof.Cases[0])
		}
		if g.Oneof.Cases[1].Shape != ir.Shape(widgetRef) {
			t.Errorf("Cases[1].Shape = %s", g.Oneof.Cases[1].Shape)
		}
		if members[7].Key != "plain" {
			t.Errorf("members[7].Key = %q, want plain", members[7].Key)
		}
	})
}

func TestOneofGroups(t *testing.T) {
	r, reg := newResolver(t, holderSchema(), nil)
	groups, err := r.OneofGroups(holder(t, reg))
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || groups[0].Name != "choice" || len(groups[0].Cases) != 2 {
		t.Fatalf("OneofGroups() = %+v", groups)
	}
	for _, c := range groups[0].Cases {
		if ir.IsAbsentable(c.Shape) {
			t.Errorf("case %s resolved to absentable %s", c.Key, c.Shape)
		}
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(holderSchema())

	if got := reg.TypeName(".pkg.Holder.EntitiesByIdEntry").Name; got != "Holder_EntitiesByIdEntry" {
		t.Errorf("TypeName().Name = %q", got)
	}
	if got := reg.TypeName(".google.protobuf.StringValue").Name; got != "StringValue" {
		t.Errorf("TypeName().Name = %q", got)
	}
	if f := reg.FileOf(".pkg.Widget"); f == nil || f.Name != "pkg/holder.proto" {
		t.Errorf("FileOf() = %v", f)
	}

	shape, err := reg.Lookup(".pkg.StateEnum")
	if err != nil || shape != ir.Shape(stateRef) {
		t.Errorf("Lookup(enum) = %v, %v", shape, err)
	}
	if _, err := reg.Lookup(".pkg.Nope"); !errors.Is(err, ir.ErrUnknownTypeReference) {
		t.Errorf("Lookup(missing) error = %v", err)
	}
}
