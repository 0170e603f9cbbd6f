package n3

import (
	"encoding/json"
	"fmt"
)

// termJSON is the wire form shared by every term type
type termJSON struct {
	Type     string            `json:"type"`
	Value    *string           `json:"value,omitempty"`
	Datatype string            `json:"datatype,omitempty"`
	Language string            `json:"language,omitempty"`
	Elements []json.RawMessage `json:"elements,omitempty"`
}

func (n *IRI) MarshalJSON() ([]byte, error) {
	return json.Marshal(termJSON{Type: "IRI", Value: &n.Value})
}

func (l *Literal) MarshalJSON() ([]byte, error) {
	return json.Marshal(termJSON{Type: "Literal", Value: &l.Value, Datatype: l.Datatype, Language: l.Language})
}

func (v *Variable) MarshalJSON() ([]byte, error) {
	return json.Marshal(termJSON{Type: "Variable", Value: &v.Name})
}

func (b *BlankNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(termJSON{Type: "BlankNode", Value: &b.ID})
}

func (l *List) MarshalJSON() ([]byte, error) {
	elements := l.Elements
	if elements == nil {
		elements = []Term{}
	}
	return json.Marshal(struct {
		Type     string `json:"type"`
		Elements []Term `json:"elements"`
	}{Type: "List", Elements: elements})
}

// UnmarshalTerm decodes a term from its JSON wire form
func UnmarshalTerm(data []byte) (Term, error) {
	var tj termJSON
	if err := json.Unmarshal(data, &tj); err != nil {
		return nil, err
	}

	value := ""
	if tj.Value != nil {
		value = *tj.Value
	}

	switch tj.Type {
	case "IRI":
		return NewIRI(value), nil
	case "Literal":
		return &Literal{Value: value, Datatype: tj.Datatype, Language: tj.Language}, nil
	case "Variable":
		return NewVariable(value), nil
	case "BlankNode":
		return NewBlankNode(value), nil
	case "List":
		elements := make([]Term, 0, len(tj.Elements))
		for _, raw := range tj.Elements {
			elem, err := UnmarshalTerm(raw)
			if err != nil {
				return nil, err
			}
			elements = append(elements, elem)
		}
		return NewList(elements...), nil
	default:
		return nil, fmt.Errorf("unknown term type: %q", tj.Type)
	}
}

type tripleJSON struct {
	Subject   json.RawMessage `json:"subject"`
	Predicate json.RawMessage `json:"predicate"`
	Object    json.RawMessage `json:"object"`
}

func (t *Triple) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subject   Term `json:"subject"`
		Predicate Term `json:"predicate"`
		Object    Term `json:"object"`
	}{t.Subject, t.Predicate, t.Object})
}

func (t *Triple) UnmarshalJSON(data []byte) error {
	var tj tripleJSON
	if err := json.Unmarshal(data, &tj); err != nil {
		return err
	}
	var err error
	if t.Subject, err = UnmarshalTerm(tj.Subject); err != nil {
		return fmt.Errorf("subject: %w", err)
	}
	if t.Predicate, err = UnmarshalTerm(tj.Predicate); err != nil {
		return fmt.Errorf("predicate: %w", err)
	}
	if t.Object, err = UnmarshalTerm(tj.Object); err != nil {
		return fmt.Errorf("object: %w", err)
	}
	return nil
}

type formulaJSON struct {
	Type    string    `json:"type"`
	Triples []*Triple `json:"triples"`
}

func (f Formula) MarshalJSON() ([]byte, error) {
	triples := f.Triples
	if triples == nil {
		triples = []*Triple{}
	}
	return json.Marshal(formulaJSON{Type: "Formula", Triples: triples})
}

func (f *Formula) UnmarshalJSON(data []byte) error {
	var fj formulaJSON
	if err := json.Unmarshal(data, &fj); err != nil {
		return err
	}
	f.Triples = fj.Triples
	if f.Triples == nil {
		f.Triples = []*Triple{}
	}
	return nil
}

type ruleJSON struct {
	Type       string  `json:"type"`
	Antecedent Formula `json:"antecedent"`
	Consequent Formula `json:"consequent"`
}

func (r *Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(ruleJSON{Type: "Rule", Antecedent: r.Antecedent, Consequent: r.Consequent})
}

func (r *Rule) UnmarshalJSON(data []byte) error {
	var rj ruleJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return err
	}
	r.Antecedent = rj.Antecedent
	r.Consequent = rj.Consequent
	return nil
}

type builtinJSON struct {
	URI       string `json:"uri"`
	Prefixed  string `json:"prefixed,omitempty"`
	Namespace string `json:"namespace,omitempty"`
	Custom    bool   `json:"custom,omitempty"`
}

func (b Builtin) MarshalJSON() ([]byte, error) {
	return json.Marshal(builtinJSON(b))
}

func (b *Builtin) UnmarshalJSON(data []byte) error {
	var bj builtinJSON
	if err := json.Unmarshal(data, &bj); err != nil {
		return err
	}
	*b = Builtin(bj)
	return nil
}

type resultJSON struct {
	Triples  []*Triple `json:"triples"`
	Rules    []*Rule   `json:"rules"`
	Builtins []Builtin `json:"builtins"`
	Prefixes PrefixMap `json:"prefixes"`
}

func (r *ParseResult) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Triples:  r.Triples,
		Rules:    r.Rules,
		Builtins: r.Builtins,
		Prefixes: r.Prefixes,
	}
	if out.Triples == nil {
		out.Triples = []*Triple{}
	}
	if out.Rules == nil {
		out.Rules = []*Rule{}
	}
	if out.Builtins == nil {
		out.Builtins = []Builtin{}
	}
	if out.Prefixes == nil {
		out.Prefixes = PrefixMap{}
	}
	return json.Marshal(out)
}

func (r *ParseResult) UnmarshalJSON(data []byte) error {
	var rj resultJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return err
	}
	*r = *newParseResult()
	if rj.Triples != nil {
		r.Triples = rj.Triples
	}
	if rj.Rules != nil {
		r.Rules = rj.Rules
	}
	if rj.Builtins != nil {
		r.Builtins = rj.Builtins
	}
	if rj.Prefixes != nil {
		r.Prefixes = rj.Prefixes
	}
	return nil
}
