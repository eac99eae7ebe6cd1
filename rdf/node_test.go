package rdf

import "testing"

func TestNodeEqual(t *testing.T) {
	a := NewURI("http://example.org/s")
	b := NewURI("http://example.org/s")
	c := NewURI("http://example.org/other")
	if !a.Equal(b) {
		t.Fatalf("expected equal URIs to compare equal")
	}
	if a.Equal(c) {
		t.Fatalf("expected different URIs to compare unequal")
	}
}

func TestNodeEqualLiteralDatatypeAndLanguage(t *testing.T) {
	plain := NewLiteral("hello")
	typed := NewTypedLiteral("hello", XSDString)
	lang := NewLangLiteral("hello", "en")
	langOther := NewLangLiteral("hello", "fr")

	if plain.Equal(lang) {
		t.Fatalf("plain literal must not equal a language-tagged literal")
	}
	if !lang.Equal(NewLangLiteral("hello", "en")) {
		t.Fatalf("equal language tags must compare equal")
	}
	if lang.Equal(langOther) {
		t.Fatalf("different language tags must not compare equal")
	}
	_ = typed
}

func TestNodeFlagsComputedAtConstruction(t *testing.T) {
	n := NewLiteral("line one\nline two")
	if !n.Flags().HasNewline {
		t.Fatalf("expected HasNewline flag set for multi-line lexical form")
	}
	quoted := NewLiteral(`has "quotes"`)
	if !quoted.Flags().HasQuote {
		t.Fatalf("expected HasQuote flag set")
	}
	plain := NewLiteral("plain")
	if plain.Flags().HasNewline || plain.Flags().HasQuote {
		t.Fatalf("expected no flags set for a plain lexical form")
	}
}

func TestValidateLanguageTag(t *testing.T) {
	cases := []struct {
		tag string
		ok  bool
	}{
		{"en", true},
		{"en-US", true},
		{"en-US-x1", true},
		{"", false},
		{"-en", false},
		{"en-", false},
		{"123", false},
	}
	for _, c := range cases {
		if got := ValidateLanguageTag(c.tag); got != c.ok {
			t.Errorf("ValidateLanguageTag(%q) = %v, want %v", c.tag, got, c.ok)
		}
	}
}

func TestNodeStringRendersBlankAndURI(t *testing.T) {
	if got := NewURI("http://x/").String(); got != "<http://x/>" {
		t.Fatalf("unexpected URI rendering: %q", got)
	}
	if got := NewBlank("b1").String(); got != "_:b1" {
		t.Fatalf("unexpected blank rendering: %q", got)
	}
}

func TestNodeQuotedTripleStringAndEqual(t *testing.T) {
	s := NewURI("http://example.org/s")
	p := NewURI("http://example.org/p")
	o := NewURI("http://example.org/o")
	qt := NewQuotedTriple(s, p, o)

	if got, want := qt.String(), "<< <http://example.org/s> <http://example.org/p> <http://example.org/o> >>"; got != want {
		t.Fatalf("unexpected quoted triple rendering: got %q, want %q", got, want)
	}
	if qt.Kind() != KindQuotedTriple {
		t.Fatalf("expected Kind() == KindQuotedTriple, got %s", qt.Kind())
	}
	if !qt.QuotedSubject().Equal(s) || !qt.QuotedPredicate().Equal(p) || !qt.QuotedObject().Equal(o) {
		t.Fatalf("expected embedded terms to round-trip through the accessors")
	}
	if !qt.Equal(NewQuotedTriple(s, p, o)) {
		t.Fatalf("expected quoted triples with equal embedded terms to compare equal")
	}
	if qt.Equal(NewQuotedTriple(s, p, NewURI("http://example.org/other"))) {
		t.Fatalf("expected quoted triples with different objects to compare unequal")
	}
	if qt.Equal(o) {
		t.Fatalf("a quoted triple must not equal a plain URI")
	}
}

func TestNodeIsZero(t *testing.T) {
	var zero Node
	if !zero.IsZero() {
		t.Fatalf("expected zero-value Node to be IsZero")
	}
	if NewURI("http://x/").IsZero() {
		t.Fatalf("expected constructed Node not to be IsZero")
	}
}
