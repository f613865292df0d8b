// Command protoc-gen-ts_proto is a protoc plugin that writes TypeScript
// declarations and metadata mirrors.
//
//	protoc --plugin=protoc-gen-ts_proto --ts_proto_out=. --ts_proto_opt=oneof=unions simple.proto
//
// Logs go to stderr; stdout carries only the plugin response. Set
// TSPROTO_LOG=debug for per-file records.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Vilsol/ts-proto/tsprotogen/plugin"
)

func main() {
	level := slog.LevelWarn
	if strings.EqualFold(os.Getenv("TSPROTO_LOG"), "debug") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := plugin.Main(context.Background(), os.Stdin, os.Stdout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "protoc-gen-ts_proto: %v\n", err)
		os.Exit(1)
	}
}
