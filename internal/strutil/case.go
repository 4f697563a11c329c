package strutil

import "strings"

// reservedWords are identifiers that cannot be used as declaration names in
// the generated TypeScript. Covers ECMAScript reserved words plus the
// strict-mode and TypeScript additions that break declarations.
var reservedWords = map[string]struct{}{
	"await": {}, "break": {}, "case": {}, "catch": {}, "class": {},
	"const": {}, "continue": {}, "debugger": {}, "default": {}, "delete": {},
	"do": {}, "else": {}, "enum": {}, "export": {}, "extends": {},
	"false": {}, "finally": {}, "for": {}, "function": {}, "if": {},
	"implements": {}, "import": {}, "in": {}, "instanceof": {},
	"interface": {}, "let": {}, "new": {}, "null": {}, "package": {},
	"private": {}, "protected": {}, "public": {}, "return": {}, "static": {},
	"super": {}, "switch": {}, "this": {}, "throw": {}, "true": {},
	"try": {}, "typeof": {}, "var": {}, "void": {}, "while": {},
	"with": {}, "yield": {},
}

// Sanitize turns a tool or server name into a valid TypeScript identifier.
// Hyphens and dots become underscores; a name that lands on a reserved word
// gets a trailing underscore. Sanitize is idempotent.
func Sanitize(name string) string {
	s := strings.NewReplacer("-", "_", ".", "_").Replace(name)
	if _, reserved := reservedWords[s]; reserved {
		s += "_"
	}
	return s
}

// ToPascalCase converts a string to PascalCase.
// Handles snake_case, kebab-case, and space-separated strings.
func ToPascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})

	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[0:1]) + part[1:]
		}
	}

	return strings.Join(parts, "")
}

// ToCamelCase converts a string to camelCase.
// Handles snake_case, kebab-case, space-separated, PascalCase, and
// already-camelCase strings.
func ToCamelCase(s string) string {
	if len(s) == 0 {
		return s
	}

	// Already camelCase or PascalCase: just lowercase the first char.
	if !strings.ContainsAny(s, "_- ") {
		return strings.ToLower(s[0:1]) + s[1:]
	}

	pascal := ToPascalCase(s)
	if len(pascal) == 0 {
		return pascal
	}
	return strings.ToLower(pascal[0:1]) + pascal[1:]
}

// ToSnakeCase converts camelCase or PascalCase to snake_case. Runs of
// uppercase letters stay together, so "parseHTTPHeader" becomes
// "parse_http_header".
func ToSnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	runes := []rune(s)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			prevLower := i > 0 && isLowerOrDigit(runes[i-1])
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || (i > 0 && runes[i-1] != '_' && nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

func isLowerOrDigit(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
