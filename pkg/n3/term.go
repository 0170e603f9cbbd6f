package n3

import (
	"fmt"
	"strings"
)

// TermType represents the type of an N3 term
type TermType byte

const (
	TermTypeIRI TermType = iota + 1
	TermTypeLiteral
	TermTypeVariable
	TermTypeBlankNode
	TermTypeList
)

func (t TermType) String() string {
	switch t {
	case TermTypeIRI:
		return "IRI"
	case TermTypeLiteral:
		return "Literal"
	case TermTypeVariable:
		return "Variable"
	case TermTypeBlankNode:
		return "BlankNode"
	case TermTypeList:
		return "List"
	default:
		return "Unknown"
	}
}

// Term represents an N3 term (IRI, literal, variable, blank node, or list)
type Term interface {
	Type() TermType
	String() string
	Equals(other Term) bool
}

// IRI represents an absolute or prefixed identifier.
// Value is the raw token text; prefixed names are never expanded.
type IRI struct {
	Value string
}

func NewIRI(value string) *IRI {
	return &IRI{Value: value}
}

func (n *IRI) Type() TermType {
	return TermTypeIRI
}

// String renders absolute IRIs in angle brackets and bare tokens
// (prefixed names, numbers, keywords) verbatim.
func (n *IRI) String() string {
	if strings.ContainsAny(n.Value, "/#") {
		return fmt.Sprintf("<%s>", n.Value)
	}
	return n.Value
}

func (n *IRI) Equals(other Term) bool {
	if on, ok := other.(*IRI); ok {
		return n.Value == on.Value
	}
	return false
}

// Literal represents a quoted literal
type Literal struct {
	Value    string
	Datatype string // for typed literals
	Language string // for language-tagged strings
}

func NewLiteral(value string) *Literal {
	return &Literal{Value: value}
}

func NewLiteralWithLanguage(value, language string) *Literal {
	return &Literal{Value: value, Language: language}
}

func NewLiteralWithDatatype(value, datatype string) *Literal {
	return &Literal{Value: value, Datatype: datatype}
}

func (l *Literal) Type() TermType {
	return TermTypeLiteral
}

func (l *Literal) String() string {
	result := fmt.Sprintf(`"%s"`, l.Value)
	if l.Language != "" {
		result += "@" + l.Language
	} else if l.Datatype != "" {
		if strings.ContainsAny(l.Datatype, "/#") {
			result += "^^<" + l.Datatype + ">"
		} else {
			result += "^^" + l.Datatype
		}
	}
	return result
}

func (l *Literal) Equals(other Term) bool {
	if ol, ok := other.(*Literal); ok {
		return l.Value == ol.Value && l.Datatype == ol.Datatype && l.Language == ol.Language
	}
	return false
}

// Variable represents a rule-scoped placeholder (?name)
type Variable struct {
	Name string
}

func NewVariable(name string) *Variable {
	return &Variable{Name: name}
}

func (v *Variable) Type() TermType {
	return TermTypeVariable
}

func (v *Variable) String() string {
	return "?" + v.Name
}

func (v *Variable) Equals(other Term) bool {
	if ov, ok := other.(*Variable); ok {
		return v.Name == ov.Name
	}
	return false
}

// BlankNode represents a blank node
type BlankNode struct {
	ID string
}

func NewBlankNode(id string) *BlankNode {
	return &BlankNode{ID: id}
}

func (b *BlankNode) Type() TermType {
	return TermTypeBlankNode
}

func (b *BlankNode) String() string {
	return fmt.Sprintf("_:%s", b.ID)
}

func (b *BlankNode) Equals(other Term) bool {
	if ob, ok := other.(*BlankNode); ok {
		return b.ID == ob.ID
	}
	return false
}

// List represents an ordered collection of terms
type List struct {
	Elements []Term
}

func NewList(elements ...Term) *List {
	if elements == nil {
		elements = []Term{}
	}
	return &List{Elements: elements}
}

func (l *List) Type() TermType {
	return TermTypeList
}

func (l *List) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (l *List) Equals(other Term) bool {
	ol, ok := other.(*List)
	if !ok || len(l.Elements) != len(ol.Elements) {
		return false
	}
	for i := range l.Elements {
		if !l.Elements[i].Equals(ol.Elements[i]) {
			return false
		}
	}
	return true
}

// Triple represents a subject-predicate-object statement
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

func NewTriple(subject, predicate, object Term) *Triple {
	return &Triple{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
	}
}

func (t *Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.Subject, t.Predicate, t.Object)
}

func (t *Triple) Equals(other *Triple) bool {
	if other == nil {
		return false
	}
	return t.Subject.Equals(other.Subject) &&
		t.Predicate.Equals(other.Predicate) &&
		t.Object.Equals(other.Object)
}

// Formula is an ordered group of triples
type Formula struct {
	Triples []*Triple
}

func (f Formula) String() string {
	parts := make([]string, len(f.Triples))
	for i, t := range f.Triples {
		parts[i] = t.String()
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

// Rule is an implication antecedent => consequent
type Rule struct {
	Antecedent Formula
	Consequent Formula
}

func NewRule(antecedent, consequent []*Triple) *Rule {
	return &Rule{
		Antecedent: Formula{Triples: antecedent},
		Consequent: Formula{Triples: consequent},
	}
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s => %s .", r.Antecedent, r.Consequent)
}

// AntecedentVariables returns the distinct variable names used in the
// antecedent, in the order they first appear. Variables nested in lists
// are included.
func (r *Rule) AntecedentVariables() []string {
	seen := make(map[string]bool)
	var names []string
	var visit func(Term)
	visit = func(t Term) {
		switch v := t.(type) {
		case *Variable:
			if !seen[v.Name] {
				seen[v.Name] = true
				names = append(names, v.Name)
			}
		case *List:
			for _, e := range v.Elements {
				visit(e)
			}
		}
	}
	for _, t := range r.Antecedent.Triples {
		visit(t.Subject)
		visit(t.Predicate)
		visit(t.Object)
	}
	return names
}

// ParseResult is the output of a single Parse call
type ParseResult struct {
	Triples  []*Triple
	Rules    []*Rule
	Builtins []Builtin
	Prefixes PrefixMap
}

func newParseResult() *ParseResult {
	return &ParseResult{
		Triples:  []*Triple{},
		Rules:    []*Rule{},
		Builtins: []Builtin{},
		Prefixes: PrefixMap{},
	}
}
