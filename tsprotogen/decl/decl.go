// Package decl builds the declaration tree of one output file from resolved
// schema files. The tree is independent of text layout; the typescript
// package serializes it.
package decl

import (
	"strings"

	"github.com/Vilsol/ts-proto/tsprotogen/ir"
)

// File is the declaration tree of one generated file. Sections are emitted
// in field order.
type File struct {
	// Path is the output path, e.g. "simple/simple.ts".
	Path string

	// Source is the schema file name the declarations come from.
	Source string

	Package string

	// Comment is the leading file comment.
	Comment string

	Imports      []Import
	Interfaces   []Interface
	Enums        []Enum
	Services     []Interface
	Controllers  []Controller
	MetaTypes    []Interface
	MetaTables   []MetaTable
	ServiceMetas []ServiceMetaTable
}

// Import is a named import, import { Names } from 'From'.
type Import struct {
	Names []string
	From  string
}

// Doc is the documentation attached to a declaration.
type Doc struct {
	Body       string
	Deprecated bool
}

// IsZero returns true if there is nothing to emit.
func (d Doc) IsZero() bool {
	return strings.TrimSpace(d.Body) == "" && !d.Deprecated
}

// Interface is an interface declaration holding properties, methods or both.
type Interface struct {
	Name       string
	TypeParams []string
	Extends    []string
	Doc        Doc
	Properties []Property
	Methods    []Method
}

// Property is one interface property.
type Property struct {
	Name string
	Type TypeExpr

	// Optional adds the ? marker.
	Optional bool
	Readonly bool
	Doc      Doc
}

// Method is one interface method.
type Method struct {
	Name    string
	Params  []Param
	Returns TypeExpr
	Doc     Doc
}

// Param is one method parameter.
type Param struct {
	Name     string
	Type     TypeExpr
	Optional bool
}

// Enum is an enum declaration.
type Enum struct {
	Name   string
	Doc    Doc
	Values []EnumMember
}

// EnumMember is one enum constant.
type EnumMember struct {
	Name   string
	Number int32
	Doc    Doc
}

// Controller is the method registration helper of a controller interface.
type Controller struct {
	// Name is the helper name, e.g. "PingServiceControllerMethods".
	Name string

	// Service is the proto service name passed to the registration calls.
	Service string

	Unary     []string
	Streaming []string
}

// MetaTable is the metadata constant of one message:
//
//	export const metaSimple: { [key in keyof Simple]: MetaI | string } = { ... };
type MetaTable struct {
	Name    string
	Target  string
	Entries []MetaEntry
}

// MetaEntry is one property of a MetaTable.
type MetaEntry struct {
	Key  string
	Meta ir.MetaShape
}

// ServiceMetaTable is the request/response constant of one service.
type ServiceMetaTable struct {
	Name    string
	Target  string
	Methods []ServiceMetaEntry
}

// ServiceMetaEntry is one method of a ServiceMetaTable.
type ServiceMetaEntry struct {
	Key      string
	Request  string
	Response string
}

// OutputPath returns the declaration file path for a schema file name.
//
//	simple/simple.proto -> simple/simple.ts
func OutputPath(name string) string {
	return strings.TrimSuffix(name, ".proto") + ".ts"
}

// MetaJSONPath returns the metadata document path for a schema file name.
//
//	simple/simple.proto -> simple/simple.meta.json
func MetaJSONPath(name string) string {
	return strings.TrimSuffix(name, ".proto") + ".meta.json"
}
