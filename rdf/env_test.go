package rdf

import "testing"

func TestEnvSetPrefixReplacesExisting(t *testing.T) {
	env := NewEnv()
	env.SetPrefix("eg", "http://example.org/")
	env.SetPrefix("eg", "http://example.com/")
	ns, ok := env.Namespace("eg")
	if !ok || ns != "http://example.com/" {
		t.Fatalf("expected SetPrefix to replace prior mapping, got %q", ns)
	}
	if len(env.Prefixes()) != 1 {
		t.Fatalf("expected a single declared prefix, got %v", env.Prefixes())
	}
}

func TestEnvResolveCurie(t *testing.T) {
	env := NewEnv()
	env.SetPrefix("eg", "http://example.org/")
	node, err := env.ResolveCurie("eg:s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.Kind() != KindURI || node.Value() != "http://example.org/s" {
		t.Fatalf("unexpected resolved node: %+v", node)
	}
}

func TestEnvResolveCurieUndefinedPrefix(t *testing.T) {
	env := NewEnv()
	if _, err := env.ResolveCurie("nope:s"); err == nil {
		t.Fatalf("expected an error for an undefined prefix")
	}
}

func TestEnvResolveReferenceRelative(t *testing.T) {
	env := NewEnv()
	env.SetBase("http://example.org/base/")
	if got := env.ResolveReference("x"); got != "http://example.org/base/x" {
		t.Fatalf("unexpected resolution: %q", got)
	}
	if got := env.ResolveReference("http://other.org/y"); got != "http://other.org/y" {
		t.Fatalf("expected an absolute reference to pass through unchanged: %q", got)
	}
}

func TestEnvResolveReferenceNoBase(t *testing.T) {
	env := NewEnv()
	if got := env.ResolveReference("x"); got != "x" {
		t.Fatalf("expected no-base resolution to be a no-op, got %q", got)
	}
}

func TestEnvQualifyURILongestPrefixWins(t *testing.T) {
	env := NewEnv()
	env.SetPrefix("eg", "http://example.org/")
	env.SetPrefix("egsub", "http://example.org/sub/")
	node, ok := env.QualifyURI("http://example.org/sub/item")
	if !ok {
		t.Fatalf("expected a qualifying prefix to be found")
	}
	if node.Value() != "egsub:item" {
		t.Fatalf("expected the longest matching namespace to win, got %q", node.Value())
	}
}

func TestEnvQualifyURINoMatch(t *testing.T) {
	env := NewEnv()
	env.SetPrefix("eg", "http://example.org/")
	if _, ok := env.QualifyURI("http://other.org/s"); ok {
		t.Fatalf("expected no match for an unrelated namespace")
	}
}
