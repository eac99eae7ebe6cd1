package rdf

import (
	"net/url"
	"sort"
	"strings"
)

// Env is the base URI plus ordered prefix table that resolves CURIEs and
// qualifies absolute URIs. Setting a prefix replaces any prior mapping of
// that name ("last write wins"); an Env is not safe for concurrent mutation
// from multiple goroutines — callers serialize access to one the same way
// they would any other mutable parser state.
type Env struct {
	base     string
	hasBase  bool
	prefixes map[string]string
	order    []string // insertion order, for deterministic Writer directive output
}

// NewEnv constructs an empty environment with no base URI and no prefixes.
func NewEnv() *Env {
	return &Env{prefixes: make(map[string]string)}
}

// Base returns the current base URI and whether one has been set.
func (e *Env) Base() (string, bool) { return e.base, e.hasBase }

// SetBase replaces the base URI used to resolve relative references.
func (e *Env) SetBase(uri string) {
	e.base = uri
	e.hasBase = true
}

// SetPrefix maps name to namespace, replacing any existing mapping.
func (e *Env) SetPrefix(name, namespace string) {
	if _, exists := e.prefixes[name]; !exists {
		e.order = append(e.order, name)
	}
	e.prefixes[name] = namespace
}

// Namespace returns the namespace bound to name, if any.
func (e *Env) Namespace(name string) (string, bool) {
	ns, ok := e.prefixes[name]
	return ns, ok
}

// Prefixes returns the prefix table in the order prefixes were first
// declared, for deterministic @prefix emission.
func (e *Env) Prefixes() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// SortedPrefixes returns the prefix table sorted by name, for deterministic
// comparisons in tests.
func (e *Env) SortedPrefixes() []string {
	out := e.Prefixes()
	sort.Strings(out)
	return out
}

// ResolveCurie expands a CURIE "prefix:local" against the environment,
// returning a URI node. An undefined prefix is reported as ErrBadCurie;
// whether that's fatal or a dropped, logged statement is up to the caller
// (strict vs. lax parsing mode).
func (e *Env) ResolveCurie(curie string) (Node, error) {
	prefix, local, ok := strings.Cut(curie, ":")
	if !ok {
		return Node{}, ErrBadCurie
	}
	ns, ok := e.Namespace(prefix)
	if !ok {
		return Node{}, ErrBadCurie
	}
	return NewURI(ns + local), nil
}

// ResolveReference resolves a possibly-relative URI reference against the
// current base, per RFC 3986. If no base is set, the reference is
// returned unchanged.
func (e *Env) ResolveReference(ref string) string {
	if !e.hasBase {
		return ref
	}
	return resolveAgainstBase(e.base, ref)
}

// resolveAgainstBase expands ref, a possibly-relative IRI reference,
// against base per RFC 3986 §5 ("Reference Resolution"). A ref carrying its
// own scheme is already absolute and passes through unchanged; otherwise
// net/url.ResolveReference does the work. Either string failing to parse as
// a URL at all (malformed input neither Turtle nor RFC 3986 really allows,
// but the lexer doesn't reject it upstream) falls back to directory-style
// concatenation against base's last path separator.
func resolveAgainstBase(base, ref string) string {
	if rel, err := url.Parse(ref); err == nil && rel.Scheme != "" {
		return ref
	}
	baseURL, baseErr := url.Parse(base)
	relURL, relErr := url.Parse(ref)
	if baseErr != nil || relErr != nil {
		return concatAgainstBase(base, ref)
	}
	return baseURL.ResolveReference(relURL).String()
}

// concatAgainstBase is the fallback for when base or ref doesn't parse as a
// URL at all: plain directory-style concatenation, trimming base back to
// its last '/'.
func concatAgainstBase(base, ref string) string {
	if strings.HasSuffix(base, "/") {
		return base + ref
	}
	if i := strings.LastIndex(base, "/"); i >= 0 {
		return base[:i+1] + ref
	}
	return base + "/" + ref
}

// QualifyURI abbreviates value as a CURIE against the longest matching
// namespace, returning (Node{}, false) if no prefix covers it or the matched
// suffix is not a valid PN_LOCAL.
func (e *Env) QualifyURI(value string) (Node, bool) {
	bestPrefix, bestNS := "", ""
	found := false
	for prefix, ns := range e.prefixes {
		if !strings.HasPrefix(value, ns) {
			continue
		}
		local := value[len(ns):]
		if !isPnLocal(local) {
			continue
		}
		if len(ns) > len(bestNS) {
			bestPrefix, bestNS, found = prefix, ns, true
		}
	}
	if !found {
		return Node{}, false
	}
	local := value[len(bestNS):]
	if bestPrefix == "" {
		return NewCurie(":" + local), true
	}
	return NewCurie(bestPrefix + ":" + local), true
}

// Clone returns a deep copy of e (base, prefix table and prefix order), so
// the copy's prefix table can be changed without affecting e.
func (e *Env) Clone() *Env {
	clone := &Env{base: e.base, hasBase: e.hasBase, prefixes: make(map[string]string, len(e.prefixes))}
	clone.order = append(clone.order, e.order...)
	for k, v := range e.prefixes {
		clone.prefixes[k] = v
	}
	return clone
}
