package codegen

import (
	"fmt"
	"strings"

	"github.com/okeefe/mcpbind/internal/schema"
)

// ExprKind tags a TypeExpr variant.
type ExprKind int

const (
	ExprAny ExprKind = iota
	ExprScalar
	ExprEnum
	ExprArray
	ExprMap
	ExprOpaque
	ExprOptional
)

// TypeExpr is a composable type descriptor for the generated TypeScript.
// The zero value is the untyped placeholder.
type TypeExpr struct {
	Kind   ExprKind
	Scalar string    // ExprScalar: TypeScript primitive name
	Elem   *TypeExpr // ExprArray, ExprMap, ExprOptional
	Values []any     // ExprEnum: literal values as declared
}

// scalarTypes maps schema primitive names to TypeScript primitives.
var scalarTypes = map[string]string{
	"string":  "string",
	"number":  "number",
	"integer": "number",
	"boolean": "boolean",
	"null":    "null",
}

// Resolve converts a schema node into a type expression. It is total:
// unknown or unsupported shapes degrade to the untyped placeholder instead
// of failing. Optional fields are wrapped exactly once.
func Resolve(node *schema.Node, required bool) TypeExpr {
	switch node.Kind() {
	case schema.KindNullUnion:
		residual, count := node.Residual()
		if count != 1 {
			return optional(anyExpr())
		}
		return Resolve(residual, false)

	case schema.KindMultiUnion:
		return wrap(anyExpr(), required)

	case schema.KindEnum:
		return wrap(TypeExpr{Kind: ExprEnum, Values: node.Enum}, required)

	case schema.KindPrimitive:
		return wrap(TypeExpr{Kind: ExprScalar, Scalar: scalarTypes[node.Types[0]]}, required)

	case schema.KindArray:
		elem := Resolve(node.Items, true)
		return wrap(TypeExpr{Kind: ExprArray, Elem: &elem}, required)

	case schema.KindObjectMap:
		elem := Resolve(node.AdditionalProps, true)
		return wrap(TypeExpr{Kind: ExprMap, Elem: &elem}, required)

	case schema.KindObjectOpaque:
		return wrap(TypeExpr{Kind: ExprOpaque}, required)

	default:
		return wrap(anyExpr(), required)
	}
}

func anyExpr() TypeExpr {
	return TypeExpr{Kind: ExprAny}
}

func optional(e TypeExpr) TypeExpr {
	return TypeExpr{Kind: ExprOptional, Elem: &e}
}

func wrap(e TypeExpr, required bool) TypeExpr {
	if required || e.Kind == ExprOptional {
		return e
	}
	return optional(e)
}

// Render produces the TypeScript source text for the expression.
func (e TypeExpr) Render() string {
	switch e.Kind {
	case ExprScalar:
		return e.Scalar

	case ExprEnum:
		parts := make([]string, len(e.Values))
		for i, v := range e.Values {
			parts[i] = renderLiteral(v)
		}
		return strings.Join(parts, " | ")

	case ExprArray:
		elem := e.Elem.Render()
		if strings.Contains(elem, "|") {
			return "(" + elem + ")[]"
		}
		return elem + "[]"

	case ExprMap:
		return "Record<string, " + e.Elem.Render() + ">"

	case ExprOpaque:
		return "Record<string, any>"

	case ExprOptional:
		return e.Elem.Render() + " | null"

	default:
		return "any"
	}
}

// renderLiteral renders one enum value as declared: strings become quoted
// literals, everything else prints verbatim.
func renderLiteral(v any) string {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
