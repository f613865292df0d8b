package option

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Vilsol/ts-proto/tsprotogen/naming"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.OneofStrategy != OneofProperties {
		t.Errorf("OneofStrategy = %q, want %q", cfg.OneofStrategy, OneofProperties)
	}
	if !cfg.WrapperUnboxing || !cfg.OptionalFields || !cfg.EmitMeta || !cfg.EmitComments {
		t.Errorf("boolean defaults wrong: %+v", cfg)
	}
	if cfg.KeyNaming != naming.KeyCamel {
		t.Errorf("KeyNaming = %q, want camel", cfg.KeyNaming)
	}
	if len(cfg.ServiceFlavors) != 1 || cfg.ServiceFlavors[0] != FlavorPlain {
		t.Errorf("ServiceFlavors = %v, want [plain]", cfg.ServiceFlavors)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	in := &Config{}
	out := ApplyDefaults(in)
	if in.OneofStrategy != "" {
		t.Error("ApplyDefaults mutated its input")
	}
	if out.OneofStrategy != OneofProperties || out.KeyNaming != naming.KeyCamel {
		t.Errorf("ApplyDefaults() = %+v", out)
	}
	if !out.HasFlavor(FlavorPlain) {
		t.Error("ApplyDefaults should default to the plain flavor")
	}
	if out.WrapperUnboxing {
		t.Error("ApplyDefaults should leave booleans alone")
	}
}

func TestParameterValues(t *testing.T) {
	values := ParameterValues("oneof=unions, useContext ,serviceFlavor=controller,serviceFlavor=client,,")
	if got := values.Get("oneof"); got != "unions" {
		t.Errorf("oneof = %q", got)
	}
	if got := values.Get("useContext"); got != "true" {
		t.Errorf("useContext = %q, want true", got)
	}
	if got := values["serviceFlavor"]; len(got) != 2 || got[0] != "controller" || got[1] != "client" {
		t.Errorf("serviceFlavor = %v", got)
	}
	if len(values) != 3 {
		t.Errorf("len(values) = %d, want 3", len(values))
	}
}

func TestParseParameter(t *testing.T) {
	tests := []struct {
		name    string
		param   string
		check   func(t *testing.T, cfg *Config)
		wantErr string
	}{
		{
			name:  "empty",
			param: "",
			check: func(t *testing.T, cfg *Config) {
				if cfg.OneofStrategy != OneofProperties || !cfg.WrapperUnboxing {
					t.Errorf("expected defaults, got %+v", cfg)
				}
			},
		},
		{
			name:  "oneof unions",
			param: "oneof=unions",
			check: func(t *testing.T, cfg *Config) {
				if cfg.OneofStrategy != OneofUnions {
					t.Errorf("OneofStrategy = %q", cfg.OneofStrategy)
				}
			},
		},
		{
			name:  "disable booleans",
			param: "unboxWrappers=false,useOptionals=false,outputMetaTypings=false",
			check: func(t *testing.T, cfg *Config) {
				if cfg.WrapperUnboxing || cfg.OptionalFields || cfg.EmitMeta {
					t.Errorf("booleans not cleared: %+v", cfg)
				}
				if !cfg.EmitComments {
					t.Error("unrelated default changed")
				}
			},
		},
		{
			name:  "flavors replace default",
			param: "serviceFlavor=client,serviceFlavor=controller,useContext,addGrpcMetadata",
			check: func(t *testing.T, cfg *Config) {
				if cfg.HasFlavor(FlavorPlain) {
					t.Error("plain should be replaced")
				}
				ordered := cfg.OrderedFlavors()
				if len(ordered) != 2 || ordered[0] != FlavorController || ordered[1] != FlavorClient {
					t.Errorf("OrderedFlavors() = %v", ordered)
				}
				if !cfg.Context || !cfg.Metadata {
					t.Error("context/metadata not set")
				}
			},
		},
		{
			name:  "snake keys",
			param: "keyNaming=snake,lowerCaseServiceMethods=true",
			check: func(t *testing.T, cfg *Config) {
				if cfg.KeyNaming != naming.KeySnake || !cfg.LowerCaseMethodNames {
					t.Errorf("got %+v", cfg)
				}
			},
		},
		{name: "bad oneof", param: "oneof=tagged", wantErr: "oneof: must be one of: properties unions"},
		{name: "bad flavor", param: "serviceFlavor=grpc-web", wantErr: "serviceFlavor[0]"},
		{name: "bad key naming", param: "keyNaming=kebab", wantErr: "keyNaming"},
		{name: "unknown key", param: "doesNotExist=1", wantErr: "decode options"},
		{name: "bad bool", param: "strictBatch=maybe", wantErr: "decode options"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseParameter(tt.param)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("ParseParameter(%q) succeeded, want error containing %q", tt.param, tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseParameter(%q) error = %v", tt.param, err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestParseYAML(t *testing.T) {
	cfg, err := ParseYAML([]byte(`
oneof: unions
serviceFlavor: [streaming, client]
strictBatch: true
`))
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}
	if cfg.OneofStrategy != OneofUnions || !cfg.StrictBatch {
		t.Errorf("got %+v", cfg)
	}
	if cfg.HasFlavor(FlavorPlain) || !cfg.HasFlavor(FlavorStreaming) || !cfg.HasFlavor(FlavorClient) {
		t.Errorf("ServiceFlavors = %v", cfg.ServiceFlavors)
	}
	if !cfg.WrapperUnboxing {
		t.Error("unset keys should keep defaults")
	}
}

func TestParseYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "nope: 1\n"},
		{"invalid value", "keyNaming: kebab\n"},
		{"malformed", "oneof: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseYAML([]byte(tt.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseYAML_Empty(t *testing.T) {
	cfg, err := ParseYAML(nil)
	if err != nil {
		t.Fatalf("ParseYAML(nil) error = %v", err)
	}
	if cfg.OneofStrategy != OneofProperties {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tsproto.yaml")
	if err := os.WriteFile(path, []byte("outputMetaJSON: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if !cfg.EmitMetaJSON {
		t.Error("EmitMetaJSON not set")
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFile() on missing file should fail")
	}
}
