package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/Vilsol/ts-proto/cmd/tsproto/internal/check"
	"github.com/Vilsol/ts-proto/cmd/tsproto/internal/gen"
)

type CLI struct {
	Verbose bool `help:"Log debug records to stderr." short:"v"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate TypeScript declarations from a descriptor set."`
	Check   check.Cmd  `cmd:"" help:"Resolve a descriptor set and report problems without writing files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run(stdout io.Writer) error {
	fmt.Fprintln(stdout, Version())
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("tsproto"),
		kong.Description("Generate TypeScript declarations and metadata mirrors from protobuf schemas."),
		kong.UsageOnError(),
	)
	ctx.Bind(newLogger(os.Stderr, cli.Verbose))
	ctx.BindTo(os.Stdout, (*io.Writer)(nil))
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
