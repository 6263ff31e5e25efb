package message

import (
	"strings"
	"unicode"
)

// NamingStrategy derives CloudEvents type names from fully-qualified case
// names such as "github.com/fxsml/unioncase/fizzbuzz.Fizz".
type NamingStrategy interface {
	TypeName(caseName string) string
}

// KebabNaming converts the package and PascalCase type name to
// dot-separated lowercase.
// Example: "example.com/shop/orders.OrderCreated" → "orders.order.created"
var KebabNaming NamingStrategy = kebabNaming{}

// SnakeNaming converts the package and PascalCase type name to
// underscore-separated lowercase.
// Example: "example.com/shop/orders.OrderCreated" → "orders_order_created"
var SnakeNaming NamingStrategy = snakeNaming{}

type kebabNaming struct{}

func (kebabNaming) TypeName(caseName string) string {
	return joinName(caseName, ".")
}

type snakeNaming struct{}

func (snakeNaming) TypeName(caseName string) string {
	return joinName(caseName, "_")
}

func joinName(caseName, sep string) string {
	if i := strings.LastIndexByte(caseName, '/'); i >= 0 {
		caseName = caseName[i+1:]
	}
	pkg, typ, ok := strings.Cut(caseName, ".")
	if !ok {
		return splitPascalCase(pkg, sep)
	}
	if typ == "" {
		return strings.ToLower(pkg)
	}
	return strings.ToLower(pkg) + sep + splitPascalCase(typ, sep)
}

// splitPascalCase splits a PascalCase string into lowercase words joined by sep.
func splitPascalCase(s string, sep string) string {
	if s == "" {
		return ""
	}

	var words []string
	var current strings.Builder

	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, strings.ToLower(current.String()))
			current.Reset()
		}
		current.WriteRune(r)
	}

	if current.Len() > 0 {
		words = append(words, strings.ToLower(current.String()))
	}

	return strings.Join(words, sep)
}
