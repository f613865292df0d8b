package typescript

import (
	"strings"

	"github.com/Vilsol/ts-proto/tsprotogen/ir"
)

// MetaLiteral renders a MetaShape as the value of a meta table entry.
//
//	Primitive  'string'
//	ObjectRef  {meta:'object', type:'.simple.Child', name:'Child'} as MetaO
//	ArrayOf    {meta:'array', type:'number'} as MetaA
//	MapOf      {meta:'map', key:'number', value:'string'} as MetaM
//	UnionOf    {meta:'union', choices: [undefined, 'string']} as MetaU
//	Absent     undefined
func MetaLiteral(m ir.MetaShape) string {
	switch m := m.(type) {
	case ir.Primitive:
		return quote(m.Name)
	case ir.ObjectRef:
		return "{meta:'object', type:" + quote(m.FullName) + ", name:" + quote(m.Name) + "} as MetaO"
	case ir.ArrayOf:
		return "{meta:'array', type:" + MetaLiteral(m.Element) + "} as MetaA"
	case ir.MapOf:
		return "{meta:'map', key:" + quote(m.Key) + ", value:" + MetaLiteral(m.Value) + "} as MetaM"
	case ir.UnionOf:
		choices := make([]string, len(m.Choices))
		for i, c := range m.Choices {
			choices[i] = MetaLiteral(c)
		}
		return "{meta:'union', choices: [" + strings.Join(choices, ", ") + "]} as MetaU"
	case ir.Absent:
		return "undefined"
	default:
		return "undefined"
	}
}
