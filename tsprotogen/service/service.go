// Package service derives RPC interface signatures from service descriptors.
//
// Each method moves through a fixed lifecycle (see Stage): its request and
// response are resolved once, then every configured Flavor selects its
// signature from the same resolved shapes.
package service

import (
	"fmt"

	"github.com/Vilsol/ts-proto/tsprotogen/ir"
	"github.com/Vilsol/ts-proto/tsprotogen/option"
	"github.com/Vilsol/ts-proto/tsprotogen/resolve"
)

// Interface is one generated service interface.
type Interface struct {
	Name   string
	Flavor option.ServiceFlavor

	// Generic is true when the interface takes a Context type parameter.
	Generic bool

	Methods []Signature
}

// ControllerMethods lists the methods a controller registers, split by
// whether the client streams requests.
type ControllerMethods struct {
	Name      string // e.g. "PingServiceControllerMethods"
	Unary     []string
	Streaming []string
}

// Service is the generated form of one service descriptor.
type Service struct {
	Desc       *ir.ServiceDescriptor
	Interfaces []Interface

	// Controller is set when the controller flavor is configured.
	Controller *ControllerMethods

	Warnings []ir.Warning
}

// Build generates the interfaces of svc for every configured flavor.
func Build(svc *ir.ServiceDescriptor, r *resolve.Resolver) (*Service, error) {
	cfg := r.Config()
	flavors := make([]Flavor, 0, len(cfg.ServiceFlavors))
	for _, name := range cfg.OrderedFlavors() {
		f, err := Get(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", svc.FullName, err)
		}
		flavors = append(flavors, f)
	}
	if len(flavors) == 0 {
		return nil, fmt.Errorf("%s: no service flavor configured", svc.FullName)
	}
	opts := Options{
		Context:   cfg.Context,
		Metadata:  cfg.Metadata,
		LowerCase: cfg.LowerCaseMethodNames,
	}

	out := &Service{Desc: svc}
	ifaces := make([]Interface, len(flavors))
	for i, f := range flavors {
		ifaces[i] = Interface{
			Name:    f.InterfaceName(svc.Name),
			Flavor:  f.Name(),
			Generic: f.Capabilities().Injection && opts.Context,
		}
	}

	var ctrl *ControllerMethods
	if cfg.HasFlavor(option.FlavorController) {
		ctrl = &ControllerMethods{Name: svc.Name + "ControllerMethods"}
	}

	for i := range svc.Methods {
		m := NewMethod(svc, &svc.Methods[i])
		if err := m.Resolve(r); err != nil {
			return nil, err
		}
		out.Warnings = append(out.Warnings, m.Warnings()...)
		if err := m.Apply(flavors, opts); err != nil {
			return nil, err
		}
		sigs, err := m.Emit()
		if err != nil {
			return nil, err
		}
		for j, f := range flavors {
			ifaces[j].Methods = append(ifaces[j].Methods, sigs[f]...)
		}
		if ctrl != nil {
			name := sigs[flavors[0]][0].Name
			if m.Desc.ClientStreaming {
				ctrl.Streaming = append(ctrl.Streaming, name)
			} else {
				ctrl.Unary = append(ctrl.Unary, name)
			}
		}
	}

	out.Interfaces = ifaces
	out.Controller = ctrl
	return out, nil
}
