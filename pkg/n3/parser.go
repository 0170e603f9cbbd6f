// Package n3 parses N3Logic documents into triples, implication rules and
// built-in references for editor tooling.
package n3

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

var (
	ErrInvalidInput  = errors.New("input must be valid UTF-8 text")
	ErrMalformedTerm = errors.New("malformed term")
)

// Options configures a Parse call
type Options struct {
	// Debug enables trace logging at entry, per statement, per rule and exit
	Debug bool

	// Logger receives trace output when Debug is set (slog.Default() if nil)
	Logger *slog.Logger

	// Resolver overrides the built-in resolver (default catalog if nil)
	Resolver *BuiltinResolver
}

func (o Options) logger() *slog.Logger {
	if !o.Debug {
		return slog.New(slog.DiscardHandler)
	}
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) resolver() *BuiltinResolver {
	if o.Resolver != nil {
		return o.Resolver
	}
	return defaultResolver
}

// ParseError wraps any fatal failure of a Parse call with a best-effort
// 1-based source line.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseBytes parses a document held in a byte slice
func ParseBytes(data []byte, opts Options) (*ParseResult, error) {
	if !utf8.Valid(data) {
		return nil, &ParseError{Line: 1, Err: ErrInvalidInput}
	}
	return Parse(string(data), opts)
}

// Parse parses a complete N3Logic document.
//
// Statements whose rule blocks cannot be extracted are dropped without an
// error. A malformed term anywhere aborts the whole call.
func Parse(text string, opts Options) (*ParseResult, error) {
	log := opts.logger()
	log.Debug("parse started", slog.Int("bytes", len(text)))

	if !utf8.ValidString(text) {
		return nil, &ParseError{Line: 1, Err: ErrInvalidInput}
	}

	result := newParseResult()

	stripped := stripComments(text)
	result.Prefixes = ExtractPrefixes(text)
	log.Debug("prefixes extracted", slog.Int("count", len(result.Prefixes)))

	statements := SplitStatements(stripPrefixLines(stripped))
	for i, stmt := range statements {
		log.Debug("statement", slog.Int("index", i), slog.String("text", stmt))

		if isRuleStatement(stmt) {
			rule, ok, err := parseRule(stmt)
			if err != nil {
				return nil, wrapError(text, err)
			}
			if !ok {
				log.Debug("rule dropped", slog.Int("index", i))
				continue
			}
			log.Debug("rule parsed",
				slog.Int("index", len(result.Rules)),
				slog.Int("antecedent", len(rule.Antecedent.Triples)),
				slog.Int("consequent", len(rule.Consequent.Triples)))
			result.Rules = append(result.Rules, rule)
			continue
		}

		triples, err := parseTriples(stmt)
		if err != nil {
			return nil, wrapError(text, err)
		}
		result.Triples = append(result.Triples, triples...)
	}

	result.Builtins = opts.resolver().Resolve(stripped)

	log.Debug("parse finished",
		slog.Int("triples", len(result.Triples)),
		slog.Int("rules", len(result.Rules)),
		slog.Int("builtins", len(result.Builtins)))

	return result, nil
}

func parseRule(stmt string) (*Rule, bool, error) {
	antecedentText, consequentText, ok := extractRuleBlocks(stmt)
	if !ok {
		return nil, false, nil
	}
	antecedent, err := parseFormula(antecedentText)
	if err != nil {
		return nil, false, err
	}
	consequent, err := parseFormula(consequentText)
	if err != nil {
		return nil, false, err
	}
	return NewRule(antecedent, consequent), true, nil
}

// wrapError attaches the line of the offending token to err
func wrapError(text string, err error) error {
	line := 1
	var termErr *TermError
	if errors.As(err, &termErr) && termErr.Token != "" {
		if idx := strings.Index(text, termErr.Token); idx >= 0 {
			line = strings.Count(text[:idx], "\n") + 1
		}
	}
	return &ParseError{Line: line, Err: err}
}
