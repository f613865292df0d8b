// Package tsprotogen generates TypeScript declarations and metadata mirrors
// from protobuf schemas.
//
// Run drives one generation: it resolves every generated file of a schema,
// renders the declaration files and hands them to an output sink. Outputs are
// buffered until every file has succeeded, so a failing run writes nothing.
package tsprotogen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Vilsol/ts-proto/tsprotogen/decl"
	"github.com/Vilsol/ts-proto/tsprotogen/ir"
	"github.com/Vilsol/ts-proto/tsprotogen/option"
	"github.com/Vilsol/ts-proto/tsprotogen/resolve"
	"github.com/Vilsol/ts-proto/tsprotogen/sink"
	"github.com/Vilsol/ts-proto/tsprotogen/typescript"
)

// Options controls where and how a run writes its output.
type Options struct {
	// Sink receives the generated files. Required.
	Sink sink.OutputSink

	// Logger receives debug records per file and warnings.
	// Default: slog.Default()
	Logger *slog.Logger

	// Parallelism bounds the number of files generated concurrently.
	// Default: GOMAXPROCS
	Parallelism int

	// Format controls indentation and line endings of .ts files.
	Format typescript.Format
}

// GeneratedFile describes one written output.
type GeneratedFile struct {
	// Path is the sink-relative output path, e.g. "simple/simple.ts".
	Path string

	// Source is the schema file the output was generated from.
	Source string

	// Size is the content length in bytes.
	Size int
}

// Result describes a successful run.
type Result struct {
	// Files lists the written outputs in schema order.
	Files []GeneratedFile

	// Warnings contains non-fatal issues, such as batch-looking methods
	// whose messages do not fit the batch pattern.
	Warnings []ir.Warning
}

type output struct {
	path    string
	source  string
	content []byte
}

type fileOutput struct {
	files    []output
	warnings []ir.Warning
}

// Run generates every file of schema marked for generation.
// A nil cfg means option.Default().
func Run(ctx context.Context, schema *ir.Schema, cfg *option.Config, opts Options) (*Result, error) {
	if schema == nil {
		return nil, errors.New("schema is required")
	}
	if opts.Sink == nil {
		return nil, errors.New("output sink is required")
	}
	if cfg == nil {
		d := option.Default()
		cfg = &d
	}
	cfg = option.ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := opts.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	r := resolve.New(resolve.NewRegistry(schema), cfg)
	gen := &fileGenerator{
		resolver: r,
		builder:  decl.NewBuilder(r),
		emitter:  typescript.NewEmitter(opts.Format),
		metaJSON: cfg.EmitMetaJSON,
		logger:   logger,
	}

	files := schema.Generated()
	logger.Debug("generating", "files", len(files), "parallelism", limit)

	outputs := make([]fileOutput, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := gen.generate(f)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	for _, out := range outputs {
		for _, w := range out.warnings {
			logger.Warn(w.Message, "code", w.Code, "path", w.Path)
			result.Warnings = append(result.Warnings, w)
		}
		for _, o := range out.files {
			if err := opts.Sink.WriteFile(ctx, o.path, o.content); err != nil {
				return nil, fmt.Errorf("write %s: %w", o.path, err)
			}
			result.Files = append(result.Files, GeneratedFile{Path: o.path, Source: o.source, Size: len(o.content)})
		}
	}
	return result, nil
}

// fileGenerator renders single files. Every field is read-only, so one
// value is shared by all workers of a run.
type fileGenerator struct {
	resolver *resolve.Resolver
	builder  *decl.Builder
	emitter  *typescript.Emitter
	metaJSON bool
	logger   *slog.Logger
}

func (g *fileGenerator) generate(src *ir.File) (fileOutput, error) {
	file, warnings, err := g.builder.Build(src)
	if err != nil {
		return fileOutput{}, err
	}
	content := g.emitter.EmitFile(file)
	g.logger.Debug("generated file",
		"source", src.Name,
		"path", file.Path,
		"interfaces", len(file.Interfaces),
		"enums", len(file.Enums),
		"services", len(file.Services),
		"bytes", len(content))

	out := fileOutput{
		files:    []output{{path: file.Path, source: src.Name, content: content}},
		warnings: warnings,
	}
	if !g.metaJSON {
		return out, nil
	}

	doc, err := decl.BuildMetaDocument(g.resolver, src)
	if err != nil {
		return fileOutput{}, err
	}
	data, err := doc.MarshalIndent()
	if err != nil {
		return fileOutput{}, fmt.Errorf("marshal metadata: %w", err)
	}
	out.files = append(out.files, output{path: decl.MetaJSONPath(src.Name), source: src.Name, content: data})
	return out, nil
}
