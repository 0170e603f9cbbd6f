package n3

import (
	"regexp"
	"strings"
)

// Built-in namespaces
const (
	MathNamespace   = "http://www.w3.org/2000/10/swap/math#"
	StringNamespace = "http://www.w3.org/2000/10/swap/string#"
	ListNamespace   = "http://www.w3.org/2000/10/swap/list#"
	TimeNamespace   = "http://www.w3.org/2000/10/swap/time#"
	LogNamespace    = "http://www.w3.org/2000/10/swap/log#"
	TypeNamespace   = "http://www.w3.org/2000/10/swap/type#"
)

// Builtin is a reference to a built-in function.
// Catalog entries carry the full URI; entries discovered in text that are
// not in the catalog have Custom set and URI equal to Prefixed.
type Builtin struct {
	URI       string
	Prefixed  string
	Namespace string
	Custom    bool
}

// BuiltinNamespaces maps each built-in prefix to its namespace IRI
var BuiltinNamespaces = map[string]string{
	"math":   MathNamespace,
	"string": StringNamespace,
	"list":   ListNamespace,
	"time":   TimeNamespace,
	"log":    LogNamespace,
	"type":   TypeNamespace,
}

var builtinNames = []struct {
	prefix string
	names  []string
}{
	{"math", []string{
		"sum", "difference", "product", "quotient", "integerQuotient", "remainder",
		"negation", "absoluteValue", "rounded", "floor", "ceiling", "exponentiation",
		"greaterThan", "lessThan", "notGreaterThan", "notLessThan", "equalTo", "notEqualTo",
		"max", "min", "sin", "cos", "tan", "logarithm",
	}},
	{"string", []string{
		"concatenation", "contains", "containsIgnoringCase", "startsWith", "endsWith",
		"equalIgnoringCase", "notEqualIgnoringCase", "greaterThan", "lessThan",
		"notGreaterThan", "notLessThan", "matches", "notMatches", "replace", "scrape",
		"length", "substring", "format", "upperCase", "lowerCase",
	}},
	{"list", []string{
		"append", "first", "rest", "last", "member", "in", "length", "remove",
		"memberAt", "sort", "unique", "iterate",
	}},
	{"time", []string{
		"day", "month", "year", "hour", "minute", "second", "dayOfWeek", "timeZone",
		"inSeconds", "localTime", "gmTime", "currentTime",
	}},
	{"log", []string{
		"implies", "equalTo", "notEqualTo", "includes", "notIncludes", "semantics",
		"content", "parsedAsN3", "conclusion", "conjunction", "uri", "rawType",
		"dtlit", "langlit", "call",
	}},
	{"type", []string{
		"isLiteral", "isIRI", "isBlank", "isNumeric", "isString", "isList", "datatype",
	}},
}

var defaultCatalog = buildCatalog()

func buildCatalog() []Builtin {
	var catalog []Builtin
	for _, group := range builtinNames {
		ns := BuiltinNamespaces[group.prefix]
		for _, name := range group.names {
			catalog = append(catalog, Builtin{
				URI:       ns + name,
				Prefixed:  group.prefix + ":" + name,
				Namespace: group.prefix,
			})
		}
	}
	return catalog
}

// DefaultCatalog returns a copy of the built-in catalog
func DefaultCatalog() []Builtin {
	return append([]Builtin(nil), defaultCatalog...)
}

var builtinRefRegex = regexp.MustCompile(`\b(math|string|list|time|log|type):([A-Za-z_][A-Za-z0-9_\-]*)`)

// BuiltinResolver finds built-in references in text
type BuiltinResolver struct {
	catalog []Builtin
}

// NewBuiltinResolver creates a resolver over the given catalog
func NewBuiltinResolver(catalog []Builtin) *BuiltinResolver {
	return &BuiltinResolver{catalog: catalog}
}

var defaultResolver = NewBuiltinResolver(defaultCatalog)

// Resolve returns the catalog entries whose URI or prefixed name occurs in
// text, followed by custom entries for any other well-formed reference in
// one of the built-in namespaces. This is a plain containment scan; it does
// not look at where in the document a reference appears.
func (r *BuiltinResolver) Resolve(text string) []Builtin {
	found := []Builtin{}
	seen := make(map[string]bool)

	for _, b := range r.catalog {
		if strings.Contains(text, b.URI) || (b.Prefixed != "" && strings.Contains(text, b.Prefixed)) {
			found = append(found, b)
			seen[b.Prefixed] = true
		}
	}

	for _, m := range builtinRefRegex.FindAllStringSubmatch(text, -1) {
		prefixed := m[0]
		if seen[prefixed] {
			continue
		}
		seen[prefixed] = true
		found = append(found, Builtin{
			URI:       prefixed,
			Prefixed:  prefixed,
			Namespace: m[1],
			Custom:    true,
		})
	}

	return found
}

// Catalog returns a copy of the entries the resolver matches against
func (r *BuiltinResolver) Catalog() []Builtin {
	return append([]Builtin(nil), r.catalog...)
}

// Lookup returns the catalog entry for a prefixed name or full URI
func (r *BuiltinResolver) Lookup(name string) (Builtin, bool) {
	for _, b := range r.catalog {
		if b.Prefixed == name || b.URI == name {
			return b, true
		}
	}
	return Builtin{}, false
}
