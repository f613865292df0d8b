package prototest

import "github.com/Vilsol/ts-proto/tsprotogen/ir"

// Names of the files in SimpleSchema.
const (
	SimpleFile = "simple.proto"
	ThingFile  = "import_dir/thing.proto"
)

// SimpleSchema returns a two-file schema in package "simple" covering
// scalars, nested types, enums, wrappers, maps, oneofs, proto3 optional
// fields, a cross-file reference and a service.
func SimpleSchema() *ir.Schema {
	thing := NewFile(ThingFile, "simple").
		Messages(Msg(".simple.ImportedThing", Scalar("name", 1, ir.ScalarString))).
		Build()

	stateEnum := &ir.EnumDescriptor{
		FullName: ".simple.StateEnum",
		Name:     "StateEnum",
		Values: []ir.EnumValue{
			{Name: "UNKNOWN", Number: 0},
			{Name: "ON", Number: 2},
			{Name: "OFF", Number: 3},
		},
	}

	oneof := Msg(".simple.OneOfMessage",
		InOneof(Scalar("first", 1, ir.ScalarString), 0),
		InOneof(Scalar("last", 2, ir.ScalarString), 0),
	)
	oneof.Oneofs = []string{"name_fields"}

	simple := NewFile(SimpleFile, "simple").
		Depends(ThingFile, "google/protobuf/wrappers.proto").
		Comment("Adding a comment to the syntax will become the first\ncomment in the output source file.").
		Comments(MapComments{
			"4.0":     "Example comment on the Simple message",
			"4.0.2.0": "Name field",
			"6.0.2.0": "Ping answers with the input.",
		}).
		Messages(
			Msg(".simple.Simple",
				Scalar("name", 1, ir.ScalarString),
				Scalar("age", 2, ir.ScalarInt32),
				Message("child", 3, ".simple.Child"),
				Enum("state", 4, ".simple.StateEnum"),
				Repeated(Message("grand_children", 5, ".simple.Child")),
				Repeated(Enum("old_states", 6, ".simple.StateEnum")),
				Message("thing", 7, ".simple.ImportedThing"),
				Scalar("blob", 8, ir.ScalarBytes),
			),
			Msg(".simple.Child",
				Scalar("name", 1, ir.ScalarString),
				Enum("type", 2, ".simple.Child.Type"),
			),
			oneof,
			Msg(".simple.SimpleWithWrappers",
				Message("name", 1, ".google.protobuf.StringValue"),
				Repeated(Message("coins", 2, ".google.protobuf.Int32Value")),
			),
			Msg(".simple.Entity", Scalar("id", 1, ir.ScalarInt32)),
			Msg(".simple.SimpleWithMap",
				Repeated(Message("entities_by_id", 1, ".simple.SimpleWithMap.EntitiesByIdEntry")),
				Repeated(Message("name_lookup", 2, ".simple.SimpleWithMap.NameLookupEntry")),
			),
			MapEntry(".simple.SimpleWithMap.EntitiesByIdEntry", ir.ScalarInt32, Message("", 0, ".simple.Entity")),
			MapEntry(".simple.SimpleWithMap.NameLookupEntry", ir.ScalarString, Scalar("", 0, ir.ScalarString)),
			Msg(".simple.SimpleButOptional",
				Optional(Scalar("name", 1, ir.ScalarString)),
				Optional(Message("child", 2, ".simple.Child")),
			),
			Msg(".simple.PingRequest", Scalar("input", 1, ir.ScalarString)),
			Msg(".simple.PingResponse", Scalar("output", 1, ir.ScalarString)),
		).
		Enums(
			stateEnum,
			EnumOf(".simple.Child.Type", "UNKNOWN", "GOOD", "BAD"),
		).
		Services(&ir.ServiceDescriptor{
			FullName: ".simple.PingService",
			Name:     "PingService",
			Methods: []ir.MethodDescriptor{
				{Name: "Ping", InputType: ".simple.PingRequest", OutputType: ".simple.PingResponse", Path: ir.Path{6, 0, 2, 0}},
			},
		}).
		Build()

	return Schema(WellKnownFile(), thing, simple)
}
