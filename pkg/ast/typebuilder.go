package ast

import (
	"strconv"

	"github.com/gnana997/ui5dts/pkg/typeparser"
)

// builtinTypeNames maps JSDoc spellings to their TypeScript equivalents.
var builtinTypeNames = map[string]string{
	"*":         "any",
	"?":         "any",
	"long":      "number",
	"int":       "number",
	"integer":   "number",
	"float":     "number",
	"double":    "number",
	"Number":    "number",
	"function":  "Function",
	"bool":      "boolean",
	"Boolean":   "boolean",
	"String":    "string",
	"Object":    "object",
	"DomRef":    "Element",
	"DOMRef":    "Element",
	"undefined": "undefined",
}

// commonTypos are misspellings that occur in shipped api.json files.
var commonTypos = map[string]string{
	"sting":    "string",
	"strng":    "string",
	"Sting":    "string",
	"boolen":   "boolean",
	"bolean":   "boolean",
	"booelan":  "boolean",
	"Interger": "number",
	"interger": "number",
	"fuction":  "Function",
	"funtion":  "Function",
}

// TypeBuilder builds IR types for the generic type expression parser.
type TypeBuilder struct {
	// Typos holds library specific corrections from the directives. They are
	// applied before the built-in tables.
	Typos map[string]string
}

var _ typeparser.Builder[Type] = (*TypeBuilder)(nil)

// ParseType parses a JSDoc type expression into an IR type.
func (b *TypeBuilder) ParseType(expr string) (Type, error) {
	return typeparser.Parse[Type](expr, b)
}

func (b *TypeBuilder) correct(name string) string {
	if fixed, ok := b.Typos[name]; ok {
		return fixed
	}
	if fixed, ok := commonTypos[name]; ok {
		return fixed
	}
	return name
}

func (b *TypeBuilder) Literal(lit string) Type {
	return &LiteralType{Literal: lit}
}

func (b *TypeBuilder) SimpleType(name string) Type {
	name = b.correct(name)
	if mapped, ok := builtinTypeNames[name]; ok && name != "Object" {
		name = mapped
	}
	return Ref(name)
}

// NormalizeType maps a bare name to its canonical type. Bare container names
// receive default type arguments.
func (b *TypeBuilder) NormalizeType(name string) Type {
	name = b.correct(name)
	switch name {
	case "array", "Array":
		return &ArrayType{ElementType: Ref("any")}
	case "Promise":
		return Ref("Promise", Ref("any"))
	case "map":
		return Ref("Record", Ref("string"), Ref("any"))
	}
	if mapped, ok := builtinTypeNames[name]; ok {
		name = mapped
	}
	return Ref(name)
}

func (b *TypeBuilder) Array(elem Type) Type {
	return &ArrayType{ElementType: elem}
}

func (b *TypeBuilder) Object(key, value Type) Type {
	return Ref("Record", key, value)
}

func (b *TypeBuilder) Set(elem Type) Type {
	return Ref("Set", elem)
}

func (b *TypeBuilder) Promise(fulfilled Type) Type {
	return Ref("Promise", fulfilled)
}

func (b *TypeBuilder) Function(sig typeparser.FunctionSig[Type]) Type {
	fn := &FunctionType{}
	for i, p := range sig.Params {
		param := &Parameter{
			Name:     "p" + strconv.Itoa(i+1),
			Type:     p.Type,
			Optional: p.Optional,
			Rest:     p.Repeatable,
		}
		if p.Repeatable {
			param.Type = &ArrayType{ElementType: p.Type, Variadic: true}
		}
		fn.Parameters = append(fn.Parameters, param)
	}
	if sig.HasThis {
		fn.This = sig.This
	}
	switch {
	case sig.HasNew:
		fn.IsConstructor = true
		fn.ReturnType = sig.New
	case sig.HasReturn:
		fn.ReturnType = sig.Return
	default:
		fn.ReturnType = Ref("void")
	}
	return fn
}

func (b *TypeBuilder) Structure(fields []typeparser.Field[Type]) Type {
	lit := &TypeLiteral{}
	for _, f := range fields {
		lit.Members = append(lit.Members, &Variable{Name: f.Name, Type: f.Type, Optional: f.Optional})
	}
	return lit
}

func (b *TypeBuilder) Union(types []Type) Type {
	return Union(types...)
}

func (b *TypeBuilder) Nullable(t Type) Type {
	return Union(t, Ref("null"))
}

// Optional leaves the type untouched; optionality of api.json entities is
// recorded on the parameter or property, not on the type.
func (b *TypeBuilder) Optional(t Type) Type {
	return t
}

func (b *TypeBuilder) Repeatable(t Type) Type {
	return &ArrayType{ElementType: t, Variadic: true}
}

func (b *TypeBuilder) TypeApplication(base Type, args []Type) Type {
	if ref, ok := base.(*TypeReference); ok {
		cp := *ref
		cp.TypeArguments = append(append([]Type(nil), ref.TypeArguments...), args...)
		return &cp
	}
	return base
}
