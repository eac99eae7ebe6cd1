package rdf

import "testing"

func TestNormalizeLiteralCanonicalForms(t *testing.T) {
	cases := []struct {
		name string
		in   Node
		want string
	}{
		{"integer with leading zeros", NewTypedLiteral("007", XSDInteger), "7"},
		{"boolean 1", NewTypedLiteral("1", XSDBoolean), "true"},
		{"boolean 0", NewTypedLiteral("0", XSDBoolean), "false"},
		{"decimal missing fraction", NewTypedLiteral("3", XSDDecimal), "3.0"},
		{"decimal already canonical", NewTypedLiteral("3.50", XSDDecimal), "3.50"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := normalizeLiteral(c.in)
			if got.Value() != c.want {
				t.Fatalf("normalizeLiteral(%q) = %q, want %q", c.in.Value(), got.Value(), c.want)
			}
		})
	}
}

func TestNormalizeLiteralLeavesLangTaggedAlone(t *testing.T) {
	n := NewLangLiteral("007", "en")
	if got := normalizeLiteral(n); got.Value() != "007" {
		t.Fatalf("expected a language-tagged literal to pass through unchanged, got %q", got.Value())
	}
}

func TestCanonicalizerRelabelsIsomorphicGraphsIdentically(t *testing.T) {
	// Two documents naming their blank nodes differently but with the same
	// shape must canonicalize to the same output.
	p := NewURI("http://example.org/p")
	o := NewURI("http://example.org/o")

	build := func(label string) []Statement {
		return []Statement{{Subject: NewBlank(label), Predicate: p, Object: o}}
	}

	c1 := &statementCollector{}
	canon1 := NewCanonicalizer(c1)
	for _, s := range build("x0") {
		canon1.Statement(s, StatementFlags{})
	}
	canon1.Flush()

	c2 := &statementCollector{}
	canon2 := NewCanonicalizer(c2)
	for _, s := range build("other") {
		canon2.Statement(s, StatementFlags{})
	}
	canon2.Flush()

	if len(c1.stmts) != 1 || len(c2.stmts) != 1 {
		t.Fatalf("expected exactly one canonicalized statement each")
	}
	if c1.stmts[0].Subject.Value() != c2.stmts[0].Subject.Value() {
		t.Fatalf("expected isomorphic documents to relabel to the same blank label: %q vs %q",
			c1.stmts[0].Subject.Value(), c2.stmts[0].Subject.Value())
	}
}

func TestCanonicalizerGivesDistinctBlanksDistinctLabels(t *testing.T) {
	p := NewURI("http://example.org/p")
	o1 := NewURI("http://example.org/o1")
	o2 := NewURI("http://example.org/o2")

	c := &statementCollector{}
	canon := NewCanonicalizer(c)
	canon.Statement(Statement{Subject: NewBlank("a"), Predicate: p, Object: o1}, StatementFlags{})
	canon.Statement(Statement{Subject: NewBlank("b"), Predicate: p, Object: o2}, StatementFlags{})
	canon.Flush()

	if len(c.stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(c.stmts))
	}
	if c.stmts[0].Subject.Value() == c.stmts[1].Subject.Value() {
		t.Fatalf("expected blank nodes with different neighborhoods to get distinct labels")
	}
}
