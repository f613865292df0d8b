package decl

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Vilsol/ts-proto/tsprotogen/ir"
	"github.com/Vilsol/ts-proto/tsprotogen/resolve"
	"github.com/Vilsol/ts-proto/tsprotogen/service"
)

// Well-known runtime modules referenced by generated services.
const (
	moduleRxJS   = "rxjs"
	moduleGRPC   = "grpc"
	moduleNestJS = "@nestjs/microservices"
)

// Builder assembles declaration files. Every type decision is delegated to
// the shared Resolver so declarations and metadata agree.
type Builder struct {
	r *resolve.Resolver
}

// NewBuilder returns a Builder using r.
func NewBuilder(r *resolve.Resolver) *Builder {
	return &Builder{r: r}
}

// Build returns the declaration tree of src together with the non-fatal
// warnings raised while generating its services.
func (b *Builder) Build(src *ir.File) (*File, []ir.Warning, error) {
	cfg := b.r.Config()
	reg := b.r.Registry()
	out := &File{
		Path:    OutputPath(src.Name),
		Source:  src.Name,
		Package: src.Package,
	}
	if cfg.EmitComments {
		out.Comment = src.Comment
	}

	for _, msg := range src.Messages {
		if msg.MapEntry {
			continue
		}
		members, err := b.r.ResolveMessage(msg)
		if err != nil {
			return nil, nil, err
		}
		name := reg.TypeName(msg.FullName).Name
		iface := Interface{Name: name, Doc: b.doc(src, msg.Path, msg.Deprecated)}
		for _, m := range members {
			iface.Properties = append(iface.Properties, b.property(src, m))
		}
		out.Interfaces = append(out.Interfaces, iface)
		if cfg.EmitMeta {
			out.MetaTables = append(out.MetaTables, metaTable(name, members))
		}
	}

	for _, e := range src.Enums {
		enum := Enum{Name: reg.TypeName(e.FullName).Name, Doc: b.doc(src, e.Path, e.Deprecated)}
		for _, v := range e.Values {
			enum.Values = append(enum.Values, EnumMember{Name: v.Name, Number: v.Number, Doc: b.doc(src, v.Path, false)})
		}
		enum.Values = append(enum.Values, EnumMember{Name: "UNRECOGNIZED", Number: -1})
		out.Enums = append(out.Enums, enum)
	}

	var warnings []ir.Warning
	for _, svc := range src.Services {
		built, err := service.Build(svc, b.r)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, built.Warnings...)
		for _, iface := range built.Interfaces {
			out.Services = append(out.Services, b.serviceInterface(src, svc, iface))
		}
		if c := built.Controller; c != nil {
			out.Controllers = append(out.Controllers, Controller{
				Name:      c.Name,
				Service:   svc.Name,
				Unary:     c.Unary,
				Streaming: c.Streaming,
			})
		}
		if cfg.EmitMeta {
			meta, err := b.r.MirrorService(svc)
			if err != nil {
				return nil, nil, err
			}
			out.ServiceMetas = append(out.ServiceMetas, serviceMetaTable(built, meta))
		}
	}

	if cfg.EmitMeta {
		out.MetaTypes = MetaInterfaces()
	}
	out.Imports = b.imports(src, out)
	return out, warnings, nil
}

func (b *Builder) doc(src *ir.File, path ir.Path, deprecated bool) Doc {
	d := Doc{Deprecated: deprecated}
	if b.r.Config().EmitComments {
		d.Body = src.CommentAt(path)
	}
	return d
}

func (b *Builder) property(src *ir.File, m resolve.Member) Property {
	if g := m.Oneof; g != nil {
		cases := make([]TypeExpr, 0, len(g.Cases))
		for _, c := range g.Cases {
			cases = append(cases, Object{Properties: []Property{
				{Name: "$case", Type: Literal{Value: c.Key}},
				{Name: c.Key, Type: FromShape(c.Shape)},
			}})
		}
		return Property{Name: m.Key, Type: NewUnion(cases...), Optional: true}
	}
	return Property{
		Name:     m.Key,
		Type:     FromShape(m.Shape),
		Optional: m.Field.Proto3Optional,
		Doc:      b.doc(src, m.Field.Path, m.Field.Deprecated),
	}
}

func (b *Builder) serviceInterface(src *ir.File, svc *ir.ServiceDescriptor, iface service.Interface) Interface {
	out := Interface{Name: iface.Name, Doc: b.doc(src, svc.Path, svc.Deprecated)}
	if iface.Generic {
		out.TypeParams = []string{"Context"}
	}
	for _, sig := range iface.Methods {
		m := Method{Name: sig.Name, Returns: returnExpr(sig.Return)}
		if !sig.Accessor {
			m.Doc = b.doc(src, sig.Path, sig.Deprecated)
		}
		for _, p := range sig.Params {
			m.Params = append(m.Params, paramDecl(p))
		}
		out.Methods = append(out.Methods, m)
	}
	return out
}

func paramDecl(p service.Param) Param {
	switch p.Kind {
	case service.ParamContext:
		return Param{Name: p.Name, Type: Ref{Name: "Context"}}
	case service.ParamMetadata:
		return Param{Name: p.Name, Type: Ref{Name: "Metadata"}, Optional: p.Optional}
	case service.ParamRequestStream:
		return Param{Name: p.Name, Type: Generic{Name: "Observable", Args: []TypeExpr{FromShape(p.Shape)}}}
	default:
		return Param{Name: p.Name, Type: FromShape(p.Shape), Optional: p.Optional}
	}
}

func returnExpr(r service.Return) TypeExpr {
	if r.Kind == service.ReturnVoid {
		return Void
	}
	t := FromShape(r.Shape)
	promise := Generic{Name: "Promise", Args: []TypeExpr{t}}
	observable := Generic{Name: "Observable", Args: []TypeExpr{t}}
	switch r.Kind {
	case service.ReturnObservable:
		return observable
	case service.ReturnAny:
		return Union{Types: []TypeExpr{promise, observable, t}}
	default:
		return promise
	}
}

func metaTable(name string, members []resolve.Member) MetaTable {
	t := MetaTable{Name: "meta" + name, Target: name}
	for _, m := range members {
		t.Entries = append(t.Entries, MetaEntry{Key: m.Key, Meta: resolve.MirrorMember(m)})
	}
	return t
}

// serviceMetaTable keys the table by the methods of the first generated
// interface, accessors included, so it covers every key of that interface.
func serviceMetaTable(built *service.Service, meta ir.MetaService) ServiceMetaTable {
	first := built.Interfaces[0]
	t := ServiceMetaTable{Name: "meta" + built.Desc.Name, Target: first.Name}
	if first.Generic {
		t.Target += "<any>"
	}
	byMethod := make(map[string]ir.MetaMethod, len(meta.Methods))
	for _, m := range meta.Methods {
		byMethod[m.Name] = m
	}
	seen := make(map[string]bool)
	for _, sig := range first.Methods {
		if seen[sig.Name] {
			continue
		}
		seen[sig.Name] = true
		if sig.Accessor {
			t.Methods = append(t.Methods, accessorMetaEntry(sig))
			continue
		}
		m := byMethod[sig.Method]
		t.Methods = append(t.Methods, ServiceMetaEntry{Key: sig.Name, Request: m.Request, Response: m.Response})
	}
	return t
}

// accessorMetaEntry describes an accessor by its key and element types.
func accessorMetaEntry(sig service.Signature) ServiceMetaEntry {
	e := ServiceMetaEntry{Key: sig.Name, Response: metaTypeName(sig.Return.Shape)}
	for _, p := range sig.Params {
		if p.Kind == service.ParamKey {
			e.Request = metaTypeName(p.Shape)
		}
	}
	return e
}

// metaTypeName names s the way MetaS entries name types: the full name of
// a declaration or a primitive name.
func metaTypeName(s ir.Shape) string {
	switch s := s.(type) {
	case ir.Scalar:
		return resolve.PrimitiveName(s.ScalarKind)
	case ir.WrapperScalar:
		return resolve.PrimitiveName(s.ScalarKind)
	case ir.MessageRef:
		if s.Type.FullName == resolve.TimestampType {
			return resolve.DateName
		}
		return s.Type.FullName
	case ir.EnumRef:
		return s.Type.FullName
	case ir.Optional:
		return metaTypeName(s.Inner)
	default:
		return ir.MetaString(resolve.Mirror(s))
	}
}

// imports collects the named imports of out: schema types declared in other
// files and the runtime types used by service signatures.
func (b *Builder) imports(src *ir.File, out *File) []Import {
	reg := b.r.Registry()
	byModule := make(map[string]map[string]bool)
	add := func(from, name string) {
		if byModule[from] == nil {
			byModule[from] = make(map[string]bool)
		}
		byModule[from][name] = true
	}
	visit := func(e TypeExpr) {
		Walk(e, func(t TypeExpr) {
			switch t := t.(type) {
			case Ref:
				if t.FullName == "" {
					if t.Name == "Metadata" {
						add(moduleGRPC, "Metadata")
					}
					return
				}
				f := reg.FileOf(t.FullName)
				if f == nil || f.Name == src.Name {
					return
				}
				add(RelativeImport(src.Name, f.Name), t.Name)
			case Generic:
				if t.Name == "Observable" {
					add(moduleRxJS, "Observable")
				}
			}
		})
	}

	for _, iface := range out.Interfaces {
		for _, p := range iface.Properties {
			visit(p.Type)
		}
	}
	for _, iface := range out.Services {
		for _, m := range iface.Methods {
			for _, p := range m.Params {
				visit(p.Type)
			}
			visit(m.Returns)
		}
	}
	if len(out.Controllers) > 0 {
		add(moduleNestJS, "GrpcMethod")
		add(moduleNestJS, "GrpcStreamMethod")
	}

	modules := make([]string, 0, len(byModule))
	for m := range byModule {
		modules = append(modules, m)
	}
	sort.Strings(modules)
	imports := make([]Import, 0, len(modules))
	for _, m := range modules {
		names := make([]string, 0, len(byModule[m]))
		for n := range byModule[m] {
			names = append(names, n)
		}
		sort.Strings(names)
		imports = append(imports, Import{Names: names, From: m})
	}
	return imports
}

// RelativeImport returns the module specifier that imports the output of
// the schema file to from the output of the schema file from.
//
//	RelativeImport("simple.proto", "import_dir/thing.proto") -> "./import_dir/thing"
//	RelativeImport("a/b.proto", "c/d.proto") -> "../c/d"
func RelativeImport(from, to string) string {
	target := strings.TrimSuffix(to, ".proto")
	rel, err := filepath.Rel(filepath.Dir(filepath.FromSlash(from)), filepath.FromSlash(target))
	if err != nil {
		return "./" + target
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

// BuildMetaDocument returns the language-independent metadata of src. It
// holds the same MetaShapes as the meta tables of the declaration file.
func BuildMetaDocument(r *resolve.Resolver, src *ir.File) (*ir.MetaDocument, error) {
	doc := &ir.MetaDocument{File: src.Name, Package: src.Package, Messages: []ir.MetaMessage{}}
	reg := r.Registry()
	for _, msg := range src.Messages {
		if msg.MapEntry {
			continue
		}
		members, err := r.ResolveMessage(msg)
		if err != nil {
			return nil, err
		}
		mm := ir.MetaMessage{
			Name:     reg.TypeName(msg.FullName).Name,
			FullName: msg.FullName,
			Fields:   make([]ir.MetaField, 0, len(members)),
		}
		for _, m := range members {
			mm.Fields = append(mm.Fields, ir.MetaField{Key: m.Key, Meta: resolve.MirrorMember(m)})
		}
		doc.Messages = append(doc.Messages, mm)
	}
	for _, svc := range src.Services {
		ms, err := r.MirrorService(svc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Name, err)
		}
		doc.Services = append(doc.Services, ms)
	}
	return doc, nil
}
