package n3

import (
	"regexp"
	"strings"
)

// PrefixMap maps a prefix name (without the colon) to its namespace IRI
type PrefixMap map[string]string

var (
	// Matches "@prefix ex: <http://example.org/> ." and "PREFIX ex: <...> ."
	prefixDeclRegex = regexp.MustCompile(`(?i)(?:@prefix|\bprefix)\s+([A-Za-z_][\w\-]*)?:\s*<([^<>]+)>\s*\.`)

	// Matches a line that begins with a prefix keyword
	prefixLineRegex = regexp.MustCompile(`(?i)^\s*(?:@prefix|prefix)\s`)
)

// ExtractPrefixes scans the text for prefix declarations.
// Malformed declarations are skipped. If a prefix is declared more than
// once, the last declaration wins.
func ExtractPrefixes(text string) PrefixMap {
	prefixes := PrefixMap{}
	for _, m := range prefixDeclRegex.FindAllStringSubmatch(text, -1) {
		prefixes[m[1]] = m[2]
	}
	return prefixes
}

// Expand resolves a prefixed name such as "ex:thing" against the map.
// It reports false if the name has no colon or the prefix is unknown.
func (m PrefixMap) Expand(name string) (string, bool) {
	idx := strings.Index(name, ":")
	if idx < 0 {
		return "", false
	}
	ns, ok := m[name[:idx]]
	if !ok {
		return "", false
	}
	return ns + name[idx+1:], true
}

// stripPrefixLines drops every line that starts with a prefix keyword
// and joins the remaining lines with a single space.
func stripPrefixLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if prefixLineRegex.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, " ")
}
