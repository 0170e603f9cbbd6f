package n3

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Token alternatives in priority order: <iri>, quoted literal with an
	// attached datatype or language suffix, any run of non-whitespace.
	tokenRegex = regexp.MustCompile(`<[^>]+>|"(?:[^"\\]|\\.)*"(?:\^\^<[^>]*>|\^\^[^\s<>"]+|@[A-Za-z0-9\-]+)?|\S+`)

	literalRegex = regexp.MustCompile(`^"((?:[^"\\]|\\.)*)"(?:\^\^<([^>]+)>|\^\^([^\s<>"]+)|@([A-Za-z]+(?:-[A-Za-z0-9]+)*))?$`)

	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Tokens that never form part of a triple
var structuralTokens = map[string]bool{
	"":   true,
	"{":  true,
	"}":  true,
	"=>": true,
	"(":  true,
	")":  true,
}

// tokenize splits a statement into term tokens
func tokenize(stmt string) []string {
	return tokenRegex.FindAllString(stmt, -1)
}

// parseTriples parses a statement fragment into triples.
// One layer of surrounding braces is removed first. Tokens are grouped
// in a fixed stride of three; groups containing a structural token are
// skipped and a trailing partial group is dropped.
func parseTriples(fragment string) ([]*Triple, error) {
	text := strings.TrimSpace(fragment)
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		text = text[1 : len(text)-1]
	}

	var triples []*Triple
	for _, stmt := range SplitStatements(text) {
		tokens := tokenize(stmt)
		for i := 0; i+2 < len(tokens); i += 3 {
			t0, t1, t2 := tokens[i], tokens[i+1], tokens[i+2]
			if structuralTokens[t0] || structuralTokens[t1] || structuralTokens[t2] {
				continue
			}

			subject, err := ParseTerm(t0)
			if err != nil {
				return nil, err
			}
			predicate, err := ParseTerm(t1)
			if err != nil {
				return nil, err
			}
			object, err := ParseTerm(t2)
			if err != nil {
				return nil, err
			}
			triples = append(triples, NewTriple(subject, predicate, object))
		}
	}

	return triples, nil
}

// ParseTerm classifies a single, already trimmed token.
//
// Prefixed names, bare numbers and keywords are returned as IRIs holding
// the raw token; they are not expanded against any prefix map.
func ParseTerm(token string) (Term, error) {
	if token == "" {
		return nil, &TermError{Token: token, Reason: "empty token"}
	}

	switch {
	case strings.HasPrefix(token, "<") && strings.HasSuffix(token, ">"):
		return NewIRI(token[1 : len(token)-1]), nil

	case strings.HasPrefix(token, `"`):
		return parseLiteral(token)

	case strings.HasPrefix(token, "?"):
		if len(token) < 2 {
			return nil, &TermError{Token: token, Reason: "variable name missing after ?"}
		}
		return NewVariable(token[1:]), nil

	case strings.HasPrefix(token, "_:"):
		if len(token) < 3 {
			return nil, &TermError{Token: token, Reason: "blank node id missing after _:"}
		}
		return NewBlankNode(token[2:]), nil

	case strings.HasPrefix(token, "(") && strings.HasSuffix(token, ")"):
		// Elements are whitespace separated, so nested lists with inner
		// whitespace are not supported.
		inner := strings.TrimSpace(token[1 : len(token)-1])
		if inner == "" {
			return NewList(), nil
		}
		parts := whitespaceRegex.Split(inner, -1)
		elements := make([]Term, 0, len(parts))
		for _, part := range parts {
			elem, err := ParseTerm(part)
			if err != nil {
				return nil, err
			}
			elements = append(elements, elem)
		}
		return NewList(elements...), nil
	}

	return NewIRI(token), nil
}

func parseLiteral(token string) (*Literal, error) {
	m := literalRegex.FindStringSubmatch(token)
	if m == nil {
		return nil, &TermError{Token: token, Reason: "invalid literal format"}
	}

	lit := NewLiteral(m[1])
	switch {
	case m[2] != "":
		lit.Datatype = m[2]
	case m[3] != "":
		lit.Datatype = m[3]
	case m[4] != "":
		lit.Language = m[4]
	}
	return lit, nil
}

// TermError reports a token that cannot be classified as a term
type TermError struct {
	Token  string
	Reason string
}

func (e *TermError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("malformed term: %s", e.Reason)
	}
	return fmt.Sprintf("malformed term %q: %s", e.Token, e.Reason)
}

func (e *TermError) Unwrap() error {
	return ErrMalformedTerm
}
