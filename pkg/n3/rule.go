package n3

import (
	"regexp"
	"strings"
)

var (
	logCallRegex  = regexp.MustCompile(`^log:call\s*\(([^)]+)\)\s*$`)
	funcCallRegex = regexp.MustCompile(`^<([^>]+)>\s*\(([^)]*)\)\s*$`)
)

// isRuleStatement reports whether stmt contains "=>" outside quoted
// literals and <...> identifiers. Such a statement is either a rule or
// dropped, never read as triples.
func isRuleStatement(stmt string) bool {
	inQuote := false
	inIRI := false
	for i := 0; i < len(stmt); i++ {
		ch := stmt[i]
		switch {
		case inQuote:
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inQuote = false
			}
		case inIRI:
			if ch == '>' || isSpace(ch) {
				inIRI = false
			}
		case ch == '"':
			inQuote = true
		case ch == '<':
			inIRI = i+1 < len(stmt) && !isSpace(stmt[i+1]) && stmt[i+1] != '='
		case ch == '=' && i+1 < len(stmt) && stmt[i+1] == '>':
			return true
		}
	}
	return false
}

// extractRuleBlocks locates the "{ antecedent } => { consequent }" blocks of
// stmt and returns their contents without the outer braces. ok is false
// when either block is missing or its braces never balance.
func extractRuleBlocks(stmt string) (antecedent, consequent string, ok bool) {
	start := strings.IndexByte(stmt, '{')
	if start < 0 {
		return "", "", false
	}
	antecedent, end, ok := balancedBlock(stmt, start)
	if !ok {
		return "", "", false
	}

	arrow := strings.Index(stmt[end:], "=>")
	if arrow < 0 {
		return "", "", false
	}
	rest := end + arrow + len("=>")

	open := strings.IndexByte(stmt[rest:], '{')
	if open < 0 {
		return "", "", false
	}
	consequent, _, ok = balancedBlock(stmt, rest+open)
	if !ok {
		return "", "", false
	}

	return strings.TrimSpace(antecedent), strings.TrimSpace(consequent), true
}

// balancedBlock scans from the "{" at start until the matching "}".
// It returns the text between the braces and the index just past the
// closing brace.
func balancedBlock(s string, start int) (string, int, bool) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start+1 : i], i + 1, true
			}
		}
	}
	return "", 0, false
}

// parseFormula splits a rule block into statements and parses each one
func parseFormula(block string) ([]*Triple, error) {
	triples := []*Triple{}
	for _, line := range SplitStatements(block) {
		parsed, err := parseRuleLine(line)
		if err != nil {
			return nil, err
		}
		triples = append(triples, parsed...)
	}
	return triples, nil
}

// parseRuleLine parses one statement of a rule block. The log:call and
// <iri>(...) call forms each produce a single synthetic triple; anything
// else goes through the triple parser.
func parseRuleLine(line string) ([]*Triple, error) {
	if m := logCallRegex.FindStringSubmatch(line); m != nil {
		args := splitArgs(m[1])
		var object Term
		if len(args) == 2 {
			object = NewLiteral(args[1])
		} else {
			object = literalList(args[1:])
		}
		return []*Triple{NewTriple(NewIRI("log:call"), NewIRI(args[0]), object)}, nil
	}

	if m := funcCallRegex.FindStringSubmatch(line); m != nil {
		var args []string
		for _, arg := range splitArgs(m[2]) {
			if arg != "" {
				args = append(args, arg)
			}
		}
		var object Term
		switch {
		case len(args) > 1:
			object = literalList(args)
		case len(args) == 1:
			object = NewLiteral(args[0])
		default:
			object = NewLiteral("")
		}
		return []*Triple{NewTriple(NewIRI(m[1]), NewIRI("call"), object)}, nil
	}

	return parseTriples(line)
}

func splitArgs(s string) []string {
	args := strings.Split(s, ",")
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}
	return args
}

func literalList(values []string) *List {
	elements := make([]Term, len(values))
	for i, v := range values {
		elements[i] = NewLiteral(v)
	}
	return NewList(elements...)
}
