package tsprotogen

import (
	"context"
	"log/slog"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/Vilsol/ts-proto/tsprotogen/ir"
	"github.com/Vilsol/ts-proto/tsprotogen/naming"
	"github.com/Vilsol/ts-proto/tsprotogen/option"
	"github.com/Vilsol/ts-proto/tsprotogen/provider"
	"github.com/Vilsol/ts-proto/tsprotogen/sink"
	"github.com/Vilsol/ts-proto/tsprotogen/typescript"
)

// Generator provides a fluent API for code generation.
// Create with FromSchema() or FromDescriptorSet() and configure with method
// chaining. The first configuration error is kept and returned by the
// terminal operation.
//
// Example:
//
//	tsprotogen.FromDescriptorSet(set, "simple.proto").
//	    OneofStrategy(option.OneofUnions).
//	    WithFlavor(option.FlavorController).
//	    ToDir(ctx, "./client/src/proto")
type Generator struct {
	schema  *ir.Schema
	cfg     option.Config
	opts    Options
	err     error
	flavors bool // set once WithFlavor replaced the defaults
}

// FromSchema creates a Generator for an already converted schema.
func FromSchema(schema *ir.Schema) *Generator {
	return &Generator{schema: schema, cfg: option.Default()}
}

// FromDescriptorSet creates a Generator for a compiled descriptor set.
// Only the named files are generated; with no names every file is.
func FromDescriptorSet(set *descriptorpb.FileDescriptorSet, files ...string) *Generator {
	schema, err := provider.FromFileDescriptorSet(set, files)
	return &Generator{schema: schema, cfg: option.Default(), err: err}
}

// WithConfig replaces the whole configuration.
func (g *Generator) WithConfig(cfg option.Config) *Generator {
	g.cfg = cfg
	return g
}

// Parameter applies a protoc-style parameter string such as
// "oneof=unions,serviceFlavor=client" on top of the current configuration.
func (g *Generator) Parameter(param string) *Generator {
	if g.err == nil {
		g.err = option.DecodeValues(&g.cfg, option.ParameterValues(param))
	}
	return g
}

// OneofStrategy selects oneof rendering.
// Valid values: "properties" (default), "unions".
func (g *Generator) OneofStrategy(s option.OneofStrategy) *Generator {
	g.cfg.OneofStrategy = s
	return g
}

// KeyNaming selects property keys. Valid values: "camel" (default), "snake".
func (g *Generator) KeyNaming(style naming.KeyStyle) *Generator {
	g.cfg.KeyNaming = style
	return g
}

// WithFlavor adds a service flavor. The first call replaces the default
// plain flavor; later calls add to it.
func (g *Generator) WithFlavor(f option.ServiceFlavor) *Generator {
	if !g.flavors {
		g.cfg.ServiceFlavors = nil
		g.flavors = true
	}
	if !g.cfg.HasFlavor(f) {
		g.cfg.ServiceFlavors = append(g.cfg.ServiceFlavors, f)
	}
	return g
}

// WithoutWrapperUnboxing keeps google.protobuf wrapper messages as messages.
func (g *Generator) WithoutWrapperUnboxing() *Generator {
	g.cfg.WrapperUnboxing = false
	return g
}

// WithoutOptionals renders singular message fields as required.
func (g *Generator) WithoutOptionals() *Generator {
	g.cfg.OptionalFields = false
	return g
}

// LowerCaseMethodNames lowercases the first letter of service methods.
func (g *Generator) LowerCaseMethodNames() *Generator {
	g.cfg.LowerCaseMethodNames = true
	return g
}

// WithContext adds a leading ctx parameter to controller and client methods.
func (g *Generator) WithContext() *Generator {
	g.cfg.Context = true
	return g
}

// WithMetadata adds a trailing optional metadata parameter to controller
// and client methods.
func (g *Generator) WithMetadata() *Generator {
	g.cfg.Metadata = true
	return g
}

// StrictBatch makes batch pattern mismatches fatal.
func (g *Generator) StrictBatch() *Generator {
	g.cfg.StrictBatch = true
	return g
}

// WithoutMeta disables meta interfaces and meta tables.
func (g *Generator) WithoutMeta() *Generator {
	g.cfg.EmitMeta = false
	return g
}

// WithMetaJSON enables <file>.meta.json output.
func (g *Generator) WithMetaJSON() *Generator {
	g.cfg.EmitMetaJSON = true
	return g
}

// WithoutComments drops schema comments from the output.
func (g *Generator) WithoutComments() *Generator {
	g.cfg.EmitComments = false
	return g
}

// Logger sets the logger used by the run.
func (g *Generator) Logger(l *slog.Logger) *Generator {
	g.opts.Logger = l
	return g
}

// Parallelism bounds the number of files generated concurrently.
func (g *Generator) Parallelism(n int) *Generator {
	g.opts.Parallelism = n
	return g
}

// Format sets indentation and line endings.
func (g *Generator) Format(f typescript.Format) *Generator {
	g.opts.Format = f
	return g
}

// Config returns a copy of the configuration built so far.
func (g *Generator) Config() option.Config {
	return *option.ApplyDefaults(&g.cfg)
}

// ToSink generates files into s.
// This is a terminal operation.
func (g *Generator) ToSink(ctx context.Context, s sink.OutputSink) (*Result, error) {
	if g.err != nil {
		return nil, g.err
	}
	opts := g.opts
	opts.Sink = s
	return Run(ctx, g.schema, &g.cfg, opts)
}

// ToDir generates files to the specified directory.
// This is a terminal operation that writes files to disk.
func (g *Generator) ToDir(ctx context.Context, dir string) (*Result, error) {
	return g.ToSink(ctx, sink.NewFilesystemSink(dir))
}

// Generate returns generated files in memory without writing to disk.
// Use ToDir() to write files to disk instead.
func (g *Generator) Generate(ctx context.Context) (map[string][]byte, *Result, error) {
	mem := sink.NewMemorySink()
	result, err := g.ToSink(ctx, mem)
	if err != nil {
		return nil, nil, err
	}
	return mem.Files(), result, nil
}
