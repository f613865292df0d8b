// Package load turns command line inputs into a schema and a configuration.
package load

import (
	"strings"

	"github.com/Vilsol/ts-proto/tsprotogen/ir"
	"github.com/Vilsol/ts-proto/tsprotogen/option"
	"github.com/Vilsol/ts-proto/tsprotogen/provider"
)

// Schema reads the descriptor set at path and marks files for generation.
// With no files every file of the set is generated.
func Schema(path string, files []string) (*ir.Schema, error) {
	set, err := provider.LoadDescriptorSet(path)
	if err != nil {
		return nil, err
	}
	return provider.FromFileDescriptorSet(set, files)
}

// Config builds the run configuration. The YAML file is applied first, then
// every --param value in order, so parameters win.
func Config(configPath string, params []string) (*option.Config, error) {
	cfg := option.Default()
	if configPath != "" {
		loaded, err := option.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	if len(params) > 0 {
		values := option.ParameterValues(strings.Join(params, ","))
		if err := option.DecodeValues(&cfg, values); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
