// Package plugin implements the protoc plugin protocol: a
// CodeGeneratorRequest is read from stdin and a CodeGeneratorResponse is
// written to stdout.
package plugin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/pluginpb"

	"github.com/Vilsol/ts-proto/tsprotogen"
	"github.com/Vilsol/ts-proto/tsprotogen/option"
	"github.com/Vilsol/ts-proto/tsprotogen/provider"
	"github.com/Vilsol/ts-proto/tsprotogen/sink"
)

// SupportedFeatures is advertised in every response.
const SupportedFeatures = uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL)

// Run answers req. Generation failures are reported in the response's Error
// field; protoc shows them to the user and writes no files.
func Run(ctx context.Context, req *pluginpb.CodeGeneratorRequest, logger *slog.Logger) *pluginpb.CodeGeneratorResponse {
	if logger == nil {
		logger = slog.Default()
	}
	resp := &pluginpb.CodeGeneratorResponse{SupportedFeatures: proto.Uint64(SupportedFeatures)}
	fail := func(err error) *pluginpb.CodeGeneratorResponse {
		logger.Error("generation failed", "error", err)
		resp.Error = proto.String(err.Error())
		resp.File = nil
		return resp
	}

	cfg, err := option.ParseParameter(req.GetParameter())
	if err != nil {
		return fail(err)
	}
	schema, err := provider.FromCodeGeneratorRequest(req)
	if err != nil {
		return fail(err)
	}

	out := &responseSink{resp: resp}
	result, err := tsprotogen.Run(ctx, schema, cfg, tsprotogen.Options{Sink: out, Logger: logger})
	if err != nil {
		return fail(err)
	}
	logger.Debug("plugin response", "files", len(result.Files), "warnings", len(result.Warnings))
	return resp
}

// Main reads one request from r and writes the response to w. An error is
// returned only when the protocol itself breaks; generation errors travel
// inside the response.
func Main(ctx context.Context, r io.Reader, w io.Writer, logger *slog.Logger) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	req := &pluginpb.CodeGeneratorRequest{}
	if err := proto.Unmarshal(data, req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	resp := Run(ctx, req, logger)

	out, err := proto.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// responseSink appends written files to a plugin response.
type responseSink struct {
	mu   sync.Mutex
	resp *pluginpb.CodeGeneratorResponse
}

func (s *responseSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := sink.ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resp.File = append(s.resp.File, &pluginpb.CodeGeneratorResponse_File{
		Name:    proto.String(path),
		Content: proto.String(string(content)),
	})
	return nil
}
