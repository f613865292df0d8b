package service

import (
	"fmt"

	"github.com/Vilsol/ts-proto/tsprotogen/option"
)

// Capabilities declares which schema features a flavor honors.
type Capabilities struct {
	// ServerStreaming: server-streaming methods return a stream.
	ServerStreaming bool

	// ClientStreaming: client-streaming methods take a stream of requests.
	// Flavors without it reject such methods.
	ClientStreaming bool

	// AlwaysStream: every method returns a stream regardless of its flags.
	AlwaysStream bool

	// Injection: the flavor accepts the call context and metadata parameters.
	Injection bool
}

// Flavor is one service interface variant.
type Flavor interface {
	// Name returns the flavor identifier (e.g., "plain", "controller").
	Name() option.ServiceFlavor

	// InterfaceName returns the name of the generated interface for a service.
	InterfaceName(service string) string

	// Capabilities returns the streaming and injection support of the flavor.
	Capabilities() Capabilities

	// returnKind selects the return family of a method.
	returnKind(streaming, empty bool) ReturnKind
}

// Get returns a flavor by name, or an error if unknown.
func Get(name option.ServiceFlavor) (Flavor, error) {
	switch name {
	case option.FlavorPlain:
		return plainFlavor{}, nil
	case option.FlavorStreaming:
		return streamingFlavor{}, nil
	case option.FlavorController:
		return controllerFlavor{}, nil
	case option.FlavorClient:
		return clientFlavor{}, nil
	default:
		return nil, fmt.Errorf("unknown service flavor: %q", name)
	}
}

// plainFlavor returns a single asynchronous value for every method.
type plainFlavor struct{}

func (plainFlavor) Name() option.ServiceFlavor      { return option.FlavorPlain }
func (plainFlavor) InterfaceName(svc string) string { return svc }
func (plainFlavor) Capabilities() Capabilities      { return Capabilities{} }
func (plainFlavor) returnKind(bool, bool) ReturnKind {
	return ReturnPromise
}

// streamingFlavor honors both streaming flags.
type streamingFlavor struct{}

func (streamingFlavor) Name() option.ServiceFlavor      { return option.FlavorStreaming }
func (streamingFlavor) InterfaceName(svc string) string { return svc + "Streaming" }
func (streamingFlavor) Capabilities() Capabilities {
	return Capabilities{ServerStreaming: true, ClientStreaming: true}
}
func (streamingFlavor) returnKind(streaming, _ bool) ReturnKind {
	if streaming {
		return ReturnObservable
	}
	return ReturnPromise
}

// controllerFlavor is the server-side interface. Unary methods may answer
// with a promise, a stream or a plain value. An Empty response is void,
// streaming or not.
type controllerFlavor struct{}

func (controllerFlavor) Name() option.ServiceFlavor      { return option.FlavorController }
func (controllerFlavor) InterfaceName(svc string) string { return svc + "Controller" }
func (controllerFlavor) Capabilities() Capabilities {
	return Capabilities{ServerStreaming: true, ClientStreaming: true, Injection: true}
}
func (controllerFlavor) returnKind(streaming, empty bool) ReturnKind {
	switch {
	case empty:
		return ReturnVoid
	case streaming:
		return ReturnObservable
	default:
		return ReturnAny
	}
}

// clientFlavor always returns a stream.
type clientFlavor struct{}

func (clientFlavor) Name() option.ServiceFlavor      { return option.FlavorClient }
func (clientFlavor) InterfaceName(svc string) string { return svc + "Client" }
func (clientFlavor) Capabilities() Capabilities {
	return Capabilities{ServerStreaming: true, ClientStreaming: true, AlwaysStream: true, Injection: true}
}
func (clientFlavor) returnKind(bool, bool) ReturnKind {
	return ReturnObservable
}
