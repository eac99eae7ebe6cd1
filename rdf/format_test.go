package rdf

import "testing"

func TestParseSyntax(t *testing.T) {
	cases := []struct {
		in   string
		want Syntax
		ok   bool
	}{
		{"turtle", SyntaxTurtle, true},
		{"TTL", SyntaxTurtle, true},
		{"trig", SyntaxTriG, true},
		{"nt", SyntaxNTriples, true},
		{"NQuads", SyntaxNQuads, true},
		{"  ntriples  ", SyntaxNTriples, true},
		{"bogus", "", false},
	}
	for _, c := range cases {
		got, ok := ParseSyntax(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("ParseSyntax(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestGuessSyntaxByExtension(t *testing.T) {
	cases := []struct {
		path string
		want Syntax
		ok   bool
	}{
		{"doc.ttl", SyntaxTurtle, true},
		{"doc.TRIG", SyntaxTriG, true},
		{"doc.nt", SyntaxNTriples, true},
		{"doc.nq", SyntaxNQuads, true},
		{"doc.json", "", false},
		{"doc", "", false},
	}
	for _, c := range cases {
		got, ok := GuessSyntax(c.path)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("GuessSyntax(%q) = (%q, %v), want (%q, %v)", c.path, got, ok, c.want, c.ok)
		}
	}
}

func TestGuessSyntaxFromContentType(t *testing.T) {
	cases := []struct {
		in   string
		want Syntax
		ok   bool
	}{
		{"text/turtle", SyntaxTurtle, true},
		{"text/turtle; charset=utf-8", SyntaxTurtle, true},
		{"application/trig", SyntaxTriG, true},
		{"application/n-triples", SyntaxNTriples, true},
		{"application/n-quads", SyntaxNQuads, true},
		{"application/json", "", false},
	}
	for _, c := range cases {
		got, ok := GuessSyntaxFromContentType(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("GuessSyntaxFromContentType(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestIsQuadSyntax(t *testing.T) {
	if SyntaxTurtle.IsQuadSyntax() {
		t.Fatalf("turtle should not be a quad syntax")
	}
	if !SyntaxTriG.IsQuadSyntax() {
		t.Fatalf("trig should be a quad syntax")
	}
	if SyntaxNTriples.IsQuadSyntax() {
		t.Fatalf("ntriples should not be a quad syntax")
	}
	if !SyntaxNQuads.IsQuadSyntax() {
		t.Fatalf("nquads should be a quad syntax")
	}
}
