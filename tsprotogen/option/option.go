// Package option holds the read-only configuration of one generation run and
// the decoders that build it from a protoc parameter string or a YAML file.
package option

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Vilsol/ts-proto/tsprotogen/naming"
)

// OneofStrategy selects how oneof groups are rendered.
type OneofStrategy string

const (
	// OneofProperties renders each member as an independently optional property.
	OneofProperties OneofStrategy = "properties"
	// OneofUnions renders the group as a single tagged union property.
	OneofUnions OneofStrategy = "unions"
)

// ServiceFlavor names one service interface variant.
type ServiceFlavor string

const (
	// FlavorPlain returns a single asynchronous value and ignores streaming flags.
	FlavorPlain ServiceFlavor = "plain"
	// FlavorStreaming honors server and client streaming flags.
	FlavorStreaming ServiceFlavor = "streaming"
	// FlavorController is the server-side controller interface.
	FlavorController ServiceFlavor = "controller"
	// FlavorClient is the client-side interface. Every call returns a stream.
	FlavorClient ServiceFlavor = "client"
)

// Flavors returns every known service flavor in rendering order.
func Flavors() []ServiceFlavor {
	return []ServiceFlavor{FlavorPlain, FlavorStreaming, FlavorController, FlavorClient}
}

// Config controls every resolution and signature decision of a run.
// It is never modified once generation has started.
type Config struct {
	// OneofStrategy selects oneof rendering.
	// Default: "properties"
	OneofStrategy OneofStrategy `schema:"oneof" yaml:"oneof" validate:"oneof=properties unions"`

	// WrapperUnboxing collapses google.protobuf.*Value wrappers to optional scalars.
	// Default: true
	WrapperUnboxing bool `schema:"unboxWrappers" yaml:"unboxWrappers"`

	// OptionalFields renders singular message fields as optional.
	// Default: true
	OptionalFields bool `schema:"useOptionals" yaml:"useOptionals"`

	// KeyNaming selects property keys of both declarations and meta tables.
	// Default: "camel"
	KeyNaming naming.KeyStyle `schema:"keyNaming" yaml:"keyNaming" validate:"oneof=camel snake"`

	// ServiceFlavors lists the service interface variants to emit.
	// Default: ["plain"]
	ServiceFlavors []ServiceFlavor `schema:"serviceFlavor" yaml:"serviceFlavor" validate:"dive,oneof=plain streaming controller client"`

	// LowerCaseMethodNames lowercases the first letter of method names.
	LowerCaseMethodNames bool `schema:"lowerCaseServiceMethods" yaml:"lowerCaseServiceMethods"`

	// Context injects a call-scoped "ctx: Context" parameter first in
	// controller and client signatures.
	Context bool `schema:"useContext" yaml:"useContext"`

	// Metadata appends an optional "metadata?: Metadata" parameter to
	// controller and client signatures.
	Metadata bool `schema:"addGrpcMetadata" yaml:"addGrpcMetadata"`

	// StrictBatch turns batch pattern mismatches into fatal errors.
	StrictBatch bool `schema:"strictBatch" yaml:"strictBatch"`

	// EmitMeta writes meta interfaces and meta<Name> constants.
	// Default: true
	EmitMeta bool `schema:"outputMetaTypings" yaml:"outputMetaTypings"`

	// EmitMetaJSON additionally writes a <file>.meta.json document.
	EmitMetaJSON bool `schema:"outputMetaJSON" yaml:"outputMetaJSON"`

	// EmitComments copies schema comments into JSDoc blocks.
	// Default: true
	EmitComments bool `schema:"comments" yaml:"comments"`
}

// Default returns the configuration used when no option is given.
func Default() Config {
	return Config{
		OneofStrategy:   OneofProperties,
		WrapperUnboxing: true,
		OptionalFields:  true,
		KeyNaming:       naming.KeyCamel,
		ServiceFlavors:  []ServiceFlavor{FlavorPlain},
		EmitMeta:        true,
		EmitComments:    true,
	}
}

// ApplyDefaults returns a copy of cfg with empty enumerated fields set to
// their defaults. Boolean fields are left as they are.
func ApplyDefaults(cfg *Config) *Config {
	// Make a copy to avoid mutating the input
	result := *cfg

	if result.OneofStrategy == "" {
		result.OneofStrategy = OneofProperties
	}
	if result.KeyNaming == "" {
		result.KeyNaming = naming.KeyCamel
	}
	if len(result.ServiceFlavors) == 0 {
		result.ServiceFlavors = []ServiceFlavor{FlavorPlain}
	} else {
		result.ServiceFlavors = slices.Clone(result.ServiceFlavors)
	}

	return &result
}

// HasFlavor reports whether f is among the configured flavors.
func (c *Config) HasFlavor(f ServiceFlavor) bool {
	return slices.Contains(c.ServiceFlavors, f)
}

// OrderedFlavors returns the configured flavors without duplicates, in the
// canonical order of Flavors.
func (c *Config) OrderedFlavors() []ServiceFlavor {
	var out []ServiceFlavor
	for _, f := range Flavors() {
		if c.HasFlavor(f) {
			out = append(out, f)
		}
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("schema"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks enumerated option values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return fmt.Errorf("validate options: %w", err)
	}
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		messages = append(messages, fmt.Sprintf("%s: %s (got %q)", ve.Field(), formatValidationError(ve), fmt.Sprint(ve.Value())))
	}
	return fmt.Errorf("invalid options: %s", strings.Join(messages, "; "))
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
