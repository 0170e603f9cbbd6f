package n3

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMarshalTerm(t *testing.T) {
	tests := []struct {
		term Term
		want string
	}{
		{NewIRI("ex:a"), `{"type":"IRI","value":"ex:a"}`},
		{NewLiteral("x"), `{"type":"Literal","value":"x"}`},
		{NewLiteralWithLanguage("x", "en"), `{"type":"Literal","value":"x","language":"en"}`},
		{NewLiteralWithDatatype("5", "http://www.w3.org/2001/XMLSchema#integer"), `{"type":"Literal","value":"5","datatype":"http://www.w3.org/2001/XMLSchema#integer"}`},
		{NewVariable("x"), `{"type":"Variable","value":"x"}`},
		{NewBlankNode("b0"), `{"type":"BlankNode","value":"b0"}`},
		{NewList(), `{"type":"List","elements":[]}`},
		{NewList(NewLiteral("1"), NewVariable("y")), `{"type":"List","elements":[{"type":"Literal","value":"1"},{"type":"Variable","value":"y"}]}`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.term)
		if err != nil {
			t.Fatalf("Marshal %s failed: %v", tt.term, err)
		}
		if string(data) != tt.want {
			t.Errorf("Marshal %s:\n got  %s\n want %s", tt.term, data, tt.want)
		}
	}
}

func TestUnmarshalTerm_UnknownType(t *testing.T) {
	if _, err := UnmarshalTerm([]byte(`{"type":"Graph","value":"g"}`)); err == nil {
		t.Error("Expected error for unknown term type")
	}
}

func TestParseResult_JSONRoundTrip(t *testing.T) {
	input := `@prefix ex: <http://example.org/> .
ex:a ex:b "5"^^<http://www.w3.org/2001/XMLSchema#integer> .
_:n ex:tags (ex:x) .
_:n ex:none () .
{ ?x a ex:Human . log:call(math:sum, 1, 2) . } => { ?x a ex:Mortal . } .`

	original := mustParse(t, input)
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded ParseResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if diff := cmp.Diff(original, &decoded); diff != "" {
		t.Errorf("Round trip mismatch (-original +decoded):\n%s", diff)
	}
}

func TestParseResult_MarshalEmpty(t *testing.T) {
	data, err := json.Marshal(mustParse(t, ""))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"triples":[],"rules":[],"builtins":[],"prefixes":{}}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
}

func TestRule_MarshalShape(t *testing.T) {
	result := mustParse(t, `{ ?x a ?y . } => { ?x b ?y . } .`)
	data, err := json.Marshal(result.Rules[0])
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for _, fragment := range []string{`"type":"Rule"`, `"antecedent":{"type":"Formula","triples":[`, `"consequent":{"type":"Formula"`} {
		if !strings.Contains(string(data), fragment) {
			t.Errorf("Expected %s in %s", fragment, data)
		}
	}
}
