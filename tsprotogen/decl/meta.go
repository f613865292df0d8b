package decl

func metaKind(kind string) Property {
	return Property{Name: "meta", Type: Literal{Value: kind}, Readonly: true}
}

func readonly(name string, t TypeExpr) Property {
	return Property{Name: name, Type: t, Readonly: true}
}

// MetaInterfaces returns the interfaces typing the meta tables: MetaI and
// its object, array, map and union refinements, plus MetaS for services.
func MetaInterfaces() []Interface {
	metaOrString := Union{Types: []TypeExpr{Ref{Name: "MetaI"}, String}}
	return []Interface{
		{
			Name: "MetaI",
			Properties: []Property{readonly("meta", Union{Types: []TypeExpr{
				Literal{Value: "object"}, Literal{Value: "array"}, Literal{Value: "map"}, Literal{Value: "union"},
			}})},
		},
		{
			Name:    "MetaO",
			Extends: []string{"MetaI"},
			Properties: []Property{
				metaKind("object"),
				readonly("type", String),
				readonly("name", String),
			},
		},
		{
			Name:    "MetaA",
			Extends: []string{"MetaI"},
			Properties: []Property{
				metaKind("array"),
				readonly("type", metaOrString),
			},
		},
		{
			Name:    "MetaM",
			Extends: []string{"MetaI"},
			Properties: []Property{
				metaKind("map"),
				readonly("key", String),
				readonly("value", metaOrString),
			},
		},
		{
			Name:    "MetaU",
			Extends: []string{"MetaI"},
			Properties: []Property{
				metaKind("union"),
				readonly("choices", Generic{Name: "Array", Args: []TypeExpr{
					Union{Types: []TypeExpr{Ref{Name: "MetaI"}, String, Undefined}},
				}}),
			},
		},
		{
			Name: "MetaS",
			Properties: []Property{
				readonly("request", String),
				readonly("response", String),
			},
		},
	}
}
