package n3

import (
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	if len(catalog) == 0 {
		t.Fatal("Expected a non-empty catalog")
	}

	namespaces := make(map[string]int)
	for _, b := range catalog {
		namespaces[b.Namespace]++
		if b.Custom {
			t.Errorf("Catalog entry %s should not be custom", b.Prefixed)
		}
		ns, ok := BuiltinNamespaces[b.Namespace]
		if !ok {
			t.Errorf("Unknown namespace %q for %s", b.Namespace, b.Prefixed)
			continue
		}
		if b.URI != ns+b.Prefixed[len(b.Namespace)+1:] {
			t.Errorf("URI %s does not match prefixed name %s", b.URI, b.Prefixed)
		}
	}
	for prefix := range BuiltinNamespaces {
		if namespaces[prefix] == 0 {
			t.Errorf("No catalog entries for namespace %s", prefix)
		}
	}

	// Callers get a copy
	catalog[0].URI = "changed"
	if DefaultCatalog()[0].URI == "changed" {
		t.Error("DefaultCatalog should return a copy")
	}
}

func TestBuiltinResolver_Resolve(t *testing.T) {
	resolver := NewBuiltinResolver(DefaultCatalog())

	tests := []struct {
		name     string
		text     string
		expected []string // prefixed names, in order
		custom   []bool
	}{
		{"none", "ex:a ex:b ex:c .", nil, nil},
		{"prefixed", "?x math:sum(1,2) ?y .", []string{"math:sum"}, []bool{false}},
		{"full URI", "?x <http://www.w3.org/2000/10/swap/string#concatenation> ?y .", []string{"string:concatenation"}, []bool{false}},
		{"unknown namespace", "?x foo:bar ?y .", nil, nil},
		{"custom in known namespace", "?x math:frobnicate ?y .", []string{"math:frobnicate"}, []bool{true}},
		{"duplicates collapsed", "math:sum math:sum math:zzz math:zzz", []string{"math:sum", "math:zzz"}, []bool{false, true}},
		{"containment ignores word boundaries", "?x xmath:sum ?y .", []string{"math:sum"}, []bool{false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Resolve(tt.text)
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %d builtins, got %d: %+v", len(tt.expected), len(got), got)
			}
			for i, b := range got {
				if b.Prefixed != tt.expected[i] {
					t.Errorf("Builtin %d: expected %s, got %s", i, tt.expected[i], b.Prefixed)
				}
				if b.Custom != tt.custom[i] {
					t.Errorf("Builtin %d: expected custom=%v, got %v", i, tt.custom[i], b.Custom)
				}
				if b.Custom && b.URI != b.Prefixed {
					t.Errorf("Custom builtin %d: URI %s should equal prefixed name", i, b.URI)
				}
			}
		})
	}
}

func TestBuiltinResolver_CustomCatalog(t *testing.T) {
	resolver := NewBuiltinResolver([]Builtin{
		{URI: "http://example.org/fn#double", Prefixed: "fn:double", Namespace: "fn"},
	})

	got := resolver.Resolve("?x fn:double ?y . ?y math:sum ?z .")
	if len(got) != 2 {
		t.Fatalf("Expected 2 builtins, got %d", len(got))
	}
	if got[0].URI != "http://example.org/fn#double" || got[0].Custom {
		t.Errorf("Expected catalog entry for fn:double, got %+v", got[0])
	}
	if got[1].Prefixed != "math:sum" || !got[1].Custom {
		t.Errorf("math:sum is not in this catalog and should be custom, got %+v", got[1])
	}

	if _, ok := resolver.Lookup("fn:double"); !ok {
		t.Error("Lookup by prefixed name failed")
	}
	if _, ok := resolver.Lookup("math:sum"); ok {
		t.Error("Lookup should not find entries outside the catalog")
	}

	catalog := resolver.Catalog()
	if len(catalog) != 1 || catalog[0].Prefixed != "fn:double" {
		t.Fatalf("unexpected catalog %+v", catalog)
	}
	catalog[0].URI = "changed"
	if resolver.Catalog()[0].URI == "changed" {
		t.Error("Catalog should return a copy")
	}
}

func TestExtractPrefixes(t *testing.T) {
	input := `@prefix ex: <http://example.org/> .
@PREFIX up: <http://upper.example/> .
prefix low: <http://lower.example/> . @prefix a: <http://a.example/> .
@prefix : <http://default.example/> .
@prefix broken: <http://broken.example/>
@prefix unbalanced: <http://unbalanced.example/ .
@prefix ex: <http://example.org/v2/> .`

	prefixes := ExtractPrefixes(input)
	expected := map[string]string{
		"ex":  "http://example.org/v2/",
		"up":  "http://upper.example/",
		"low": "http://lower.example/",
		"a":   "http://a.example/",
		"":    "http://default.example/",
	}

	if len(prefixes) != len(expected) {
		t.Errorf("Expected %d prefixes, got %d: %v", len(expected), len(prefixes), prefixes)
	}
	for name, ns := range expected {
		if prefixes[name] != ns {
			t.Errorf("Prefix %q: expected %s, got %s", name, ns, prefixes[name])
		}
	}
}

func TestPrefixMap_Expand(t *testing.T) {
	prefixes := PrefixMap{"ex": "http://example.org/", "": "http://default.example/"}

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"ex:alice", "http://example.org/alice", true},
		{":thing", "http://default.example/thing", true},
		{"foaf:name", "", false},
		{"plain", "", false},
	}
	for _, tt := range tests {
		got, ok := prefixes.Expand(tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Expand(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}
