package service

import (
	"fmt"

	"github.com/Vilsol/ts-proto/tsprotogen/ir"
	"github.com/Vilsol/ts-proto/tsprotogen/naming"
	"github.com/Vilsol/ts-proto/tsprotogen/resolve"
)

// Stage is the lifecycle position of a Method.
type Stage int

const (
	StageDraft         Stage = iota // Raw descriptor only
	StageShapeResolved              // Request and response shapes attached
	StageFlavorApplied              // Signatures selected for every flavor
	StageEmitted                    // Terminal
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageDraft:
		return "Draft"
	case StageShapeResolved:
		return "ShapeResolved"
	case StageFlavorApplied:
		return "FlavorApplied"
	case StageEmitted:
		return "Emitted"
	default:
		return "Unknown"
	}
}

// StageError reports an operation invoked in the wrong stage.
type StageError struct {
	Method string
	Op     string
	Stage  Stage
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: cannot %s in stage %s", e.Method, e.Op, e.Stage)
}

// ParamKind identifies the role of a signature parameter.
type ParamKind int

const (
	ParamContext       ParamKind = iota // ctx: Context
	ParamRequest                        // request: Req
	ParamRequestStream                  // request: Observable<Req>
	ParamKey                            // single key of a batch accessor
	ParamMetadata                       // metadata?: Metadata
)

// Param is one signature parameter.
type Param struct {
	Name     string
	Kind     ParamKind
	Shape    ir.Shape // nil for context and metadata
	Optional bool
}

// ReturnKind is the return family of a signature.
type ReturnKind int

const (
	ReturnPromise    ReturnKind = iota // Promise<T>
	ReturnObservable                   // Observable<T>
	ReturnAny                          // Promise<T> | Observable<T> | T
	ReturnVoid                         // void
)

// String returns the string representation of the return kind.
func (k ReturnKind) String() string {
	switch k {
	case ReturnPromise:
		return "Promise"
	case ReturnObservable:
		return "Observable"
	case ReturnAny:
		return "Any"
	case ReturnVoid:
		return "Void"
	default:
		return "Unknown"
	}
}

// Return is the result type of a signature.
type Return struct {
	Kind  ReturnKind
	Shape ir.Shape // nil for ReturnVoid
}

// Signature is one rendered method of a service interface.
type Signature struct {
	// Name is the rendered method name.
	Name string

	// Method is the proto method this signature derives from.
	Method string

	Params []Param
	Return Return

	// Accessor is true for a synthesized batch accessor.
	Accessor bool

	Deprecated bool
	Path       ir.Path
}

// Method carries one RPC method through Draft, ShapeResolved, FlavorApplied
// and Emitted. Every transition is checked; calling an operation out of
// order returns a *StageError.
type Method struct {
	Service *ir.ServiceDescriptor
	Desc    *ir.MethodDescriptor

	stage    Stage
	path     string
	request  ir.MessageRef
	response ir.MessageRef
	empty    bool
	accessor *accessor

	signatures map[Flavor][]Signature
	warnings   []ir.Warning
}

// NewMethod returns a Method in the Draft stage.
func NewMethod(svc *ir.ServiceDescriptor, m *ir.MethodDescriptor) *Method {
	return &Method{
		Service:    svc,
		Desc:       m,
		stage:      StageDraft,
		path:       svc.FullName + "." + m.Name,
		signatures: make(map[Flavor][]Signature),
	}
}

// Stage returns the current stage.
func (m *Method) Stage() Stage { return m.stage }

// Path returns the fully-qualified method path, e.g. ".pkg.Svc.Method".
func (m *Method) Path() string { return m.path }

// Warnings returns the non-fatal issues found while resolving.
func (m *Method) Warnings() []ir.Warning { return m.warnings }

// Request returns the resolved request shape.
func (m *Method) Request() ir.MessageRef { return m.request }

// Response returns the resolved response shape.
func (m *Method) Response() ir.MessageRef { return m.response }

func (m *Method) transition(op string, from, to Stage) error {
	if m.stage != from {
		return &StageError{Method: m.path, Op: op, Stage: m.stage}
	}
	m.stage = to
	return nil
}

// Resolve attaches the request and response shapes and detects batch
// accessors. A batch pattern mismatch is recorded as a warning, or returned
// as an AmbiguousBatchPattern error when StrictBatch is set.
func (m *Method) Resolve(r *resolve.Resolver) error {
	if m.stage != StageDraft {
		return &StageError{Method: m.path, Op: "resolve", Stage: m.stage}
	}
	reg := r.Registry()
	in, err := lookupMessage(reg, m.Desc.InputType, m.path)
	if err != nil {
		return err
	}
	out, err := lookupMessage(reg, m.Desc.OutputType, m.path)
	if err != nil {
		return err
	}
	m.request = in
	m.response = out
	m.empty = m.Desc.OutputType == resolve.EmptyType

	acc, batchErr := detectAccessor(r, m)
	if batchErr != nil {
		if r.Config().StrictBatch {
			return batchErr
		}
		m.warnings = append(m.warnings, batchErr.Warning())
	}
	m.accessor = acc

	return m.transition("resolve", StageDraft, StageShapeResolved)
}

func lookupMessage(reg *resolve.Registry, name, path string) (ir.MessageRef, error) {
	if _, ok := reg.Message(name); !ok {
		return ir.MessageRef{}, ir.Errorf(ir.CodeUnknownTypeReference, path, "unknown message %s", name)
	}
	return ir.MessageRef{Type: reg.TypeName(name)}, nil
}

// Options are the signature decisions taken from the run configuration.
type Options struct {
	Context   bool
	Metadata  bool
	LowerCase bool
}

// Apply selects the signatures of every flavor. A flavor that cannot
// represent the method fails with UnsupportedShape.
func (m *Method) Apply(flavors []Flavor, opts Options) error {
	if m.stage != StageShapeResolved {
		return &StageError{Method: m.path, Op: "apply flavors", Stage: m.stage}
	}
	for _, f := range flavors {
		sigs, err := m.signaturesFor(f, opts)
		if err != nil {
			return err
		}
		m.signatures[f] = sigs
	}
	return m.transition("apply flavors", StageShapeResolved, StageFlavorApplied)
}

// Emit returns the signatures selected per flavor and moves the method to
// its terminal stage. Emit may be called once.
func (m *Method) Emit() (map[Flavor][]Signature, error) {
	if err := m.transition("emit", StageFlavorApplied, StageEmitted); err != nil {
		return nil, err
	}
	return m.signatures, nil
}

func (m *Method) signaturesFor(f Flavor, opts Options) ([]Signature, error) {
	caps := f.Capabilities()
	if m.Desc.ClientStreaming && !caps.ClientStreaming {
		return nil, ir.Errorf(ir.CodeUnsupportedShape, m.path,
			"client streaming is not supported by the %s service flavor", f.Name())
	}

	inject := caps.Injection
	var params []Param
	if inject && opts.Context {
		params = append(params, Param{Name: "ctx", Kind: ParamContext})
	}
	req := Param{Name: "request", Kind: ParamRequest, Shape: m.request}
	if m.Desc.ClientStreaming {
		req.Kind = ParamRequestStream
	}
	params = append(params, req)
	if inject && opts.Metadata {
		params = append(params, Param{Name: "metadata", Kind: ParamMetadata, Optional: true})
	}

	streaming := caps.AlwaysStream || (caps.ServerStreaming && m.Desc.ServerStreaming)
	ret := Return{Kind: f.returnKind(streaming, m.empty), Shape: m.response}
	if ret.Kind == ReturnVoid {
		ret.Shape = nil
	}

	sigs := []Signature{{
		Name:       naming.MethodName(m.Desc.Name, opts.LowerCase),
		Method:     m.Desc.Name,
		Params:     params,
		Return:     ret,
		Deprecated: m.Desc.Deprecated,
		Path:       m.Desc.Path,
	}}

	if m.accessor != nil {
		var accParams []Param
		if inject && opts.Context {
			accParams = append(accParams, Param{Name: "ctx", Kind: ParamContext})
		}
		accParams = append(accParams, Param{Name: m.accessor.param, Kind: ParamKey, Shape: m.accessor.key})
		sigs = append(sigs, Signature{
			Name:       naming.MethodName(m.accessor.name, opts.LowerCase),
			Method:     m.Desc.Name,
			Params:     accParams,
			Return:     Return{Kind: ReturnPromise, Shape: m.accessor.value},
			Accessor:   true,
			Deprecated: m.Desc.Deprecated,
			Path:       m.Desc.Path,
		})
	}
	return sigs, nil
}
