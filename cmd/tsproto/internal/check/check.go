package check

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Vilsol/ts-proto/cmd/tsproto/internal/load"
	"github.com/Vilsol/ts-proto/tsprotogen"
	"github.com/Vilsol/ts-proto/tsprotogen/sink"
)

type Cmd struct {
	Descriptor string   `arg:"" help:"FileDescriptorSet to check (binary or JSON)." type:"existingfile"`
	Config     string   `help:"YAML configuration file." short:"c" type:"existingfile"`
	Param      []string `help:"Option in protoc parameter form. Repeatable." short:"p"`
	File       []string `help:"Schema file to check (default: every file in the set). Repeatable." short:"f"`
	Strict     bool     `help:"Fail when any warning is reported."`
}

// Run generates into memory and reports what would be written.
func (c *Cmd) Run(logger *slog.Logger, stdout io.Writer) error {
	schema, err := load.Schema(c.Descriptor, c.File)
	if err != nil {
		return err
	}
	cfg, err := load.Config(c.Config, c.Param)
	if err != nil {
		return err
	}

	result, err := tsprotogen.Run(context.Background(), schema, cfg, tsprotogen.Options{
		Sink:   sink.NewMemorySink(),
		Logger: logger,
	})
	if err != nil {
		return err
	}

	for _, f := range result.Files {
		fmt.Fprintf(stdout, "✓ %s -> %s (%d bytes)\n", f.Source, f.Path, f.Size)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(stdout, "! %s: %s: %s\n", w.Path, w.Code, w.Message)
	}
	if c.Strict && len(result.Warnings) > 0 {
		return fmt.Errorf("%d warnings", len(result.Warnings))
	}
	fmt.Fprintln(stdout, "✓ Check passed")
	return nil
}
