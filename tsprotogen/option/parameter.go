package option

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"reflect"
	"strings"

	"github.com/gorilla/schema"
	"gopkg.in/yaml.v3"

	"github.com/Vilsol/ts-proto/tsprotogen/naming"
)

var schemaDecoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(false)
	d.RegisterConverter(OneofStrategy(""), func(s string) reflect.Value {
		return reflect.ValueOf(OneofStrategy(s))
	})
	d.RegisterConverter(ServiceFlavor(""), func(s string) reflect.Value {
		return reflect.ValueOf(ServiceFlavor(s))
	})
	d.RegisterConverter(naming.KeyStyle(""), func(s string) reflect.Value {
		return reflect.ValueOf(naming.KeyStyle(s))
	})
	return d
}

// ParameterValues splits a protoc parameter string into url.Values.
//
// The parameter is a comma separated list of key=value pairs. A bare key is
// shorthand for key=true, and a key may repeat to build a list:
//
//	oneof=unions,useContext,serviceFlavor=controller,serviceFlavor=client
func ParameterValues(param string) url.Values {
	values := url.Values{}
	for _, part := range strings.Split(param, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			value = "true"
		}
		key = strings.TrimSpace(key)
		values.Add(key, strings.TrimSpace(value))
	}
	return values
}

// ParseParameter decodes a protoc parameter string on top of Default and
// validates the result. Unknown keys are rejected.
func ParseParameter(param string) (*Config, error) {
	cfg := Default()
	if err := DecodeValues(&cfg, ParameterValues(param)); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DecodeValues decodes values into cfg and validates the result. Fields not
// named in values keep their current value.
func DecodeValues(cfg *Config, values url.Values) error {
	if len(values) == 0 {
		return cfg.Validate()
	}
	if err := schemaDecoder.Decode(cfg, values); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	return cfg.Validate()
}

// LoadFile reads a YAML configuration file on top of Default and validates
// the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseYAML decodes a YAML document on top of Default and validates the result.
func ParseYAML(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
