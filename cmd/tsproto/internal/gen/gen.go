package gen

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Vilsol/ts-proto/cmd/tsproto/internal/load"
	"github.com/Vilsol/ts-proto/tsprotogen"
	"github.com/Vilsol/ts-proto/tsprotogen/sink"
	"github.com/Vilsol/ts-proto/tsprotogen/typescript"
)

type Cmd struct {
	Descriptor string   `arg:"" help:"FileDescriptorSet produced by protoc --descriptor_set_out or buf build (binary or JSON)." type:"existingfile"`
	Out        string   `help:"Output directory for generated files." short:"o" default:"."`
	Txtar      string   `help:"Write a single txtar archive to this path instead of a directory ('-' for stdout)."`
	Config     string   `help:"YAML configuration file." short:"c" type:"existingfile"`
	Param      []string `help:"Option in protoc parameter form, e.g. oneof=unions. Repeatable." short:"p"`
	File       []string `help:"Schema file to generate (default: every file in the set). Repeatable." short:"f"`
	Indent     string   `help:"Indentation style." enum:"space,tab" default:"space"`
	CRLF       bool     `help:"Use CRLF line endings." name:"crlf"`
	Jobs       int      `help:"Files generated concurrently (default: GOMAXPROCS)." short:"j"`
}

func (c *Cmd) Run(logger *slog.Logger, stdout io.Writer) error {
	schema, err := load.Schema(c.Descriptor, c.File)
	if err != nil {
		return err
	}
	cfg, err := load.Config(c.Config, c.Param)
	if err != nil {
		return err
	}

	format := typescript.Format{IndentStyle: c.Indent}
	if c.CRLF {
		format.LineEnding = "crlf"
	}
	opts := tsprotogen.Options{
		Logger:      logger,
		Parallelism: c.Jobs,
		Format:      format,
	}

	ctx := context.Background()
	if c.Txtar != "" {
		archive := sink.NewTxtarSink("generated by tsproto from " + c.Descriptor)
		opts.Sink = archive
		result, err := tsprotogen.Run(ctx, schema, cfg, opts)
		if err != nil {
			return err
		}
		if err := writeArchive(archive, c.Txtar, stdout); err != nil {
			return err
		}
		if c.Txtar != "-" {
			report(stdout, result, c.Txtar)
		}
		return nil
	}

	opts.Sink = sink.NewFilesystemSink(c.Out)
	result, err := tsprotogen.Run(ctx, schema, cfg, opts)
	if err != nil {
		return err
	}
	report(stdout, result, c.Out)
	return nil
}

func writeArchive(archive *sink.TxtarSink, path string, stdout io.Writer) error {
	if path == "-" {
		_, err := archive.WriteTo(stdout)
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	if _, err := archive.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	return f.Close()
}

func report(w io.Writer, result *tsprotogen.Result, dest string) {
	for _, f := range result.Files {
		fmt.Fprintf(w, "✓ %s -> %s\n", f.Source, f.Path)
	}
	fmt.Fprintf(w, "Generated %d files in %s", len(result.Files), dest)
	if n := len(result.Warnings); n > 0 {
		fmt.Fprintf(w, " (%d warnings)", n)
	}
	fmt.Fprintln(w)
}
