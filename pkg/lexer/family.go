package lexer

import "fmt"

// Family is a lexical family hint. The lexer does not parse grammars; the
// hint only selects the keyword table used for classification.
type Family string

const (
	// FamilyCLike covers curly-brace languages (C, C++, Java, and kin).
	FamilyCLike Family = "clike"
	// FamilyGeneric is the fallback for unknown languages. Lexing rules are
	// identical to FamilyCLike with a broader keyword table.
	FamilyGeneric Family = "generic"
)

// ParseFamily converts a string hint into a Family. Empty means generic.
func ParseFamily(s string) (Family, error) {
	switch s {
	case "", "generic", "unknown":
		return FamilyGeneric, nil
	case "clike", "c", "cpp", "c++":
		return FamilyCLike, nil
	default:
		return "", fmt.Errorf("unsupported language family: %q", s)
	}
}

var clikeKeywords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"switch": true, "case": true, "default": true, "break": true,
	"continue": true, "return": true, "goto": true,
	"struct": true, "class": true, "enum": true, "union": true,
	"namespace": true, "interface": true, "template": true, "typename": true,
	"typedef": true, "using": true,
	"const": true, "static": true, "extern": true, "inline": true,
	"virtual": true, "explicit": true, "friend": true, "operator": true,
	"public": true, "private": true, "protected": true,
	"try": true, "catch": true, "throw": true, "new": true, "delete": true,
	"sizeof": true, "volatile": true, "register": true, "auto": true,
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"bool": true, "true": true, "false": true, "nullptr": true,
	"this": true, "final": true, "override": true, "constexpr": true,
	"noexcept": true, "mutable": true,
}

var genericKeywords = func() map[string]bool {
	kw := make(map[string]bool, len(clikeKeywords)+32)
	for k := range clikeKeywords {
		kw[k] = true
	}
	for _, k := range []string{
		"func", "fn", "def", "let", "var", "function", "lambda",
		"elif", "except", "finally", "match", "impl", "trait", "mod",
		"pub", "async", "await", "yield", "in", "is", "not", "and", "or",
		"end", "begin", "then", "when", "import", "package", "type",
	} {
		kw[k] = true
	}
	return kw
}()

// Keywords returns the keyword table for a family.
func (f Family) Keywords() map[string]bool {
	if f == FamilyCLike {
		return clikeKeywords
	}
	return genericKeywords
}

// Valid reports whether the family is one the engine supports.
func (f Family) Valid() bool {
	return f == FamilyCLike || f == FamilyGeneric
}
