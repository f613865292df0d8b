// Package typescript serializes declaration trees as TypeScript source.
package typescript

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Vilsol/ts-proto/tsprotogen/decl"
)

// Format controls the text layout of emitted files.
type Format struct {
	IndentStyle string // "space" or "tab"
	IndentSize  int    // Spaces per indent level (when IndentStyle is "space")
	LineEnding  string // "lf" or "crlf"
}

// DefaultFormat is two-space indentation with LF line endings.
func DefaultFormat() Format {
	return Format{IndentStyle: "space", IndentSize: 2, LineEnding: "lf"}
}

// Emitter renders declaration files.
type Emitter struct {
	format Format
	indent string
}

// NewEmitter returns an Emitter for f. Zero fields take their defaults.
func NewEmitter(f Format) *Emitter {
	def := DefaultFormat()
	if f.IndentStyle == "" {
		f.IndentStyle = def.IndentStyle
	}
	if f.IndentSize == 0 {
		f.IndentSize = def.IndentSize
	}
	if f.LineEnding == "" {
		f.LineEnding = def.LineEnding
	}
	indent := "\t"
	if f.IndentStyle == "space" {
		indent = strings.Repeat(" ", f.IndentSize)
	}
	return &Emitter{format: f, indent: indent}
}

// EmitFile renders f. Sections are separated by a blank line and the file
// ends with a single newline.
func (e *Emitter) EmitFile(f *decl.File) []byte {
	var sections []string
	add := func(fn func(buf *bytes.Buffer)) {
		var buf bytes.Buffer
		fn(&buf)
		if buf.Len() > 0 {
			sections = append(sections, strings.TrimRight(buf.String(), "\n"))
		}
	}

	if strings.TrimSpace(f.Comment) != "" {
		add(func(buf *bytes.Buffer) {
			for _, line := range strings.Split(strings.TrimRight(f.Comment, "\n"), "\n") {
				buf.WriteString(strings.TrimRight("// "+line, " "))
				buf.WriteString("\n")
			}
		})
	}
	if len(f.Imports) > 0 {
		add(func(buf *bytes.Buffer) {
			for _, imp := range f.Imports {
				fmt.Fprintf(buf, "import { %s } from %s;\n", strings.Join(imp.Names, ", "), quote(imp.From))
			}
		})
	}
	for _, iface := range f.Interfaces {
		add(func(buf *bytes.Buffer) { e.emitInterface(buf, iface) })
	}
	for _, enum := range f.Enums {
		add(func(buf *bytes.Buffer) { e.emitEnum(buf, enum) })
	}
	for _, svc := range f.Services {
		add(func(buf *bytes.Buffer) { e.emitInterface(buf, svc) })
	}
	for _, c := range f.Controllers {
		add(func(buf *bytes.Buffer) { e.emitController(buf, c) })
	}
	for _, iface := range f.MetaTypes {
		add(func(buf *bytes.Buffer) { e.emitInterface(buf, iface) })
	}
	for _, t := range f.MetaTables {
		add(func(buf *bytes.Buffer) { e.emitMetaTable(buf, t) })
	}
	for _, t := range f.ServiceMetas {
		add(func(buf *bytes.Buffer) { e.emitServiceMetaTable(buf, t) })
	}
	add(func(buf *bytes.Buffer) {
		fmt.Fprintf(buf, "export const protobufPackage = %s;\n", quote(f.Package))
	})

	out := strings.Join(sections, "\n\n") + "\n"
	if e.format.LineEnding == "crlf" {
		out = strings.ReplaceAll(out, "\n", "\r\n")
	}
	return []byte(out)
}

func (e *Emitter) emitInterface(buf *bytes.Buffer, iface decl.Interface) {
	e.emitJSDoc(buf, "", iface.Doc)
	buf.WriteString("export interface ")
	buf.WriteString(escapeReservedWord(iface.Name))
	if len(iface.TypeParams) > 0 {
		buf.WriteString("<" + strings.Join(iface.TypeParams, ", ") + ">")
	}
	if len(iface.Extends) > 0 {
		buf.WriteString(" extends ")
		buf.WriteString(strings.Join(iface.Extends, ", "))
	}
	buf.WriteString(" {\n")

	for _, p := range iface.Properties {
		e.emitJSDoc(buf, e.indent, p.Doc)
		buf.WriteString(e.indent)
		buf.WriteString(emitProperty(p))
		buf.WriteString(";\n")
	}
	for _, m := range iface.Methods {
		e.emitJSDoc(buf, e.indent, m.Doc)
		buf.WriteString(e.indent)
		buf.WriteString(m.Name)
		buf.WriteString("(")
		for i, p := range m.Params {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(escapeReservedWord(p.Name))
			if p.Optional {
				buf.WriteString("?")
			}
			buf.WriteString(": ")
			buf.WriteString(EmitTypeExpr(p.Type))
		}
		buf.WriteString("): ")
		buf.WriteString(EmitTypeExpr(m.Returns))
		buf.WriteString(";\n")
	}
	buf.WriteString("}\n")
}

func emitProperty(p decl.Property) string {
	var b strings.Builder
	if p.Readonly {
		b.WriteString("readonly ")
	}
	b.WriteString(propertyName(p.Name))
	if p.Optional {
		b.WriteString("?")
	}
	b.WriteString(": ")
	b.WriteString(EmitTypeExpr(p.Type))
	return b.String()
}

func (e *Emitter) emitEnum(buf *bytes.Buffer, enum decl.Enum) {
	e.emitJSDoc(buf, "", enum.Doc)
	buf.WriteString("export enum ")
	buf.WriteString(escapeReservedWord(enum.Name))
	buf.WriteString(" {\n")
	for _, v := range enum.Values {
		e.emitJSDoc(buf, e.indent, v.Doc)
		fmt.Fprintf(buf, "%s%s = %d,\n", e.indent, propertyName(v.Name), v.Number)
	}
	buf.WriteString("}\n")
}

// emitController renders the registration helper of a controller:
// a class decorator that binds every method to its gRPC handler.
func (e *Emitter) emitController(buf *bytes.Buffer, c decl.Controller) {
	i1, i2, i3 := e.indent, strings.Repeat(e.indent, 2), strings.Repeat(e.indent, 3)
	list := func(names []string) string {
		quoted := make([]string, len(names))
		for i, n := range names {
			quoted[i] = quote(n)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	}
	loop := func(variable, decorator string, names []string) {
		fmt.Fprintf(buf, "%sconst %s: string[] = %s;\n", i2, variable, list(names))
		fmt.Fprintf(buf, "%sfor (const method of %s) {\n", i2, variable)
		fmt.Fprintf(buf, "%sconst descriptor: any = Reflect.getOwnPropertyDescriptor(constructor.prototype, method);\n", i3)
		fmt.Fprintf(buf, "%s%s(%s, method)(constructor.prototype[method], method, descriptor);\n", i3, decorator, quote(c.Service))
		fmt.Fprintf(buf, "%s}\n", i2)
	}

	fmt.Fprintf(buf, "export function %s() {\n", c.Name)
	fmt.Fprintf(buf, "%sreturn function (constructor: Function) {\n", i1)
	loop("grpcMethods", "GrpcMethod", c.Unary)
	loop("grpcStreamMethods", "GrpcStreamMethod", c.Streaming)
	fmt.Fprintf(buf, "%s};\n", i1)
	buf.WriteString("}\n")
}

func (e *Emitter) emitMetaTable(buf *bytes.Buffer, t decl.MetaTable) {
	fmt.Fprintf(buf, "export const %s: { [key in keyof %s]: MetaI | string } = {\n", t.Name, t.Target)
	for _, entry := range t.Entries {
		fmt.Fprintf(buf, "%s%s: %s,\n", e.indent, propertyName(entry.Key), MetaLiteral(entry.Meta))
	}
	buf.WriteString("};\n")
}

func (e *Emitter) emitServiceMetaTable(buf *bytes.Buffer, t decl.ServiceMetaTable) {
	fmt.Fprintf(buf, "export const %s: { [key in keyof %s]: MetaS } = {\n", t.Name, t.Target)
	for _, m := range t.Methods {
		fmt.Fprintf(buf, "%s%s: {request: %s, response: %s} as MetaS,\n",
			e.indent, propertyName(m.Key), quote(m.Request), quote(m.Response))
	}
	buf.WriteString("};\n")
}

// EmitTypeExpr renders a type expression.
func EmitTypeExpr(t decl.TypeExpr) string {
	switch t := t.(type) {
	case decl.Keyword:
		return t.Name
	case decl.Ref:
		return escapeReservedWord(t.Name)
	case decl.Literal:
		return quote(t.Value)
	case decl.Array:
		elem := EmitTypeExpr(t.Element)
		if _, ok := t.Element.(decl.Union); ok {
			elem = "(" + elem + ")"
		}
		return elem + "[]"
	case decl.Index:
		return fmt.Sprintf("{ [key: %s]: %s }", EmitTypeExpr(t.Key), EmitTypeExpr(t.Value))
	case decl.Union:
		parts := make([]string, len(t.Types))
		for i, c := range t.Types {
			parts[i] = EmitTypeExpr(c)
		}
		return strings.Join(parts, " | ")
	case decl.Generic:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = EmitTypeExpr(a)
		}
		return t.Name + "<" + strings.Join(args, ", ") + ">"
	case decl.Object:
		if len(t.Properties) == 0 {
			return "{}"
		}
		parts := make([]string, len(t.Properties))
		for i, p := range t.Properties {
			parts[i] = emitProperty(p)
		}
		return "{ " + strings.Join(parts, "; ") + " }"
	default:
		return "unknown"
	}
}

// emitJSDoc emits JSDoc-style documentation comments.
func (e *Emitter) emitJSDoc(buf *bytes.Buffer, indent string, doc decl.Doc) {
	if doc.IsZero() {
		return
	}

	body := strings.TrimSpace(doc.Body)
	var lines []string
	if body != "" {
		lines = strings.Split(body, "\n")
	}
	if len(lines) == 1 && !doc.Deprecated {
		// Single line
		buf.WriteString(indent)
		buf.WriteString("/** ")
		buf.WriteString(escapeComment(strings.TrimSpace(lines[0])))
		buf.WriteString(" */\n")
		return
	}

	// Multi-line
	buf.WriteString(indent)
	buf.WriteString("/**\n")
	for _, line := range lines {
		buf.WriteString(indent)
		buf.WriteString(strings.TrimRight(" * "+escapeComment(strings.TrimSpace(line)), " "))
		buf.WriteString("\n")
	}
	if doc.Deprecated {
		buf.WriteString(indent)
		buf.WriteString(" * @deprecated\n")
	}
	buf.WriteString(indent)
	buf.WriteString(" */\n")
}

// escapeComment keeps a comment body from closing the JSDoc block early.
func escapeComment(s string) string {
	return strings.ReplaceAll(s, "*/", "*\\/")
}
