package rdf

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
)

// Canonicalizer wraps a downstream Sink, normalizing numeric-literal
// lexical forms and relabeling blank nodes to stable, content-derived
// labels before forwarding. Blank-node relabeling is neighborhood-hash
// based: a label is a function
// of the statements touching that blank node, not of the original label
// text, so two isomorphic documents canonicalize to identical output
// regardless of their original blank-node naming.
type Canonicalizer struct {
	next Sink

	buffered []Statement
	prefixes map[string]string
	base     string
}

// NewCanonicalizer builds a Canonicalizer forwarding into next. Because
// stable blank-node labeling requires seeing every statement touching a
// blank node first, a Canonicalizer buffers the whole document in memory
// and only forwards statements when Flush is called; End events are
// dropped.
func NewCanonicalizer(next Sink) *Canonicalizer {
	return &Canonicalizer{next: next, prefixes: make(map[string]string)}
}

func (c *Canonicalizer) Base(uri string) Status {
	c.base = uri
	return c.next.Base(uri)
}

func (c *Canonicalizer) Prefix(name, ns string) Status {
	c.prefixes[name] = ns
	return c.next.Prefix(name, ns)
}

func (c *Canonicalizer) End(Node, EndKind) Status { return StatusSuccess }

// Statement normalizes stmt's literals and buffers it for relabeling;
// nothing is forwarded until Flush is called.
func (c *Canonicalizer) Statement(stmt Statement, flags StatementFlags) Status {
	stmt.Subject = normalizeLiteral(stmt.Subject)
	stmt.Predicate = normalizeLiteral(stmt.Predicate)
	stmt.Object = normalizeLiteral(stmt.Object)
	c.buffered = append(c.buffered, stmt)
	return StatusSuccess
}

// Flush computes stable blank-node labels for every buffered statement and
// forwards them (in a deterministic, sorted order) to the downstream Sink,
// then clears the buffer. Call it once the whole document has been fed in.
func (c *Canonicalizer) Flush() Status {
	labels := stableBlankLabels(c.buffered)
	relabeled := make([]Statement, len(c.buffered))
	for i, stmt := range c.buffered {
		relabeled[i] = Statement{
			Subject:   relabelBlank(stmt.Subject, labels),
			Predicate: stmt.Predicate,
			Object:    relabelBlank(stmt.Object, labels),
			Graph:     relabelBlank(stmt.Graph, labels),
			HasGraph:  stmt.HasGraph,
		}
	}
	sortStatements(relabeled)
	for _, stmt := range relabeled {
		if st := c.next.Statement(stmt, StatementFlags{}); !st.OK() {
			return st
		}
	}
	c.buffered = c.buffered[:0]
	return StatusSuccess
}

func relabelBlank(n Node, labels map[string]string) Node {
	if n.Kind() != KindBlank {
		return n
	}
	if label, ok := labels[n.Value()]; ok {
		return NewBlank(label)
	}
	return n
}

// stableBlankLabels computes one neighborhood-hash label per distinct
// blank-node value seen in stmts: the hash of every (role, predicate,
// neighbor-lexical-form) triple touching that blank node, so the label
// depends only on graph shape, not on parse order or original naming.
func stableBlankLabels(stmts []Statement) map[string]string {
	neighborhoods := make(map[string][]string)
	record := func(blank, role, predicate, other string) {
		neighborhoods[blank] = append(neighborhoods[blank], role+"\x1f"+predicate+"\x1f"+other)
	}
	for _, s := range stmts {
		if s.Subject.Kind() == KindBlank {
			record(s.Subject.Value(), "S", s.Predicate.String(), s.Object.String())
		}
		if s.Object.Kind() == KindBlank {
			record(s.Object.Value(), "O", s.Predicate.String(), s.Subject.String())
		}
		if s.HasGraph && s.Graph.Kind() == KindBlank {
			record(s.Graph.Value(), "G", s.Predicate.String(), s.Subject.String())
		}
	}
	labels := make(map[string]string, len(neighborhoods))
	for blank, facts := range neighborhoods {
		sortedFacts := append([]string(nil), facts...)
		sortStrings(sortedFacts)
		sum := sha256.Sum256([]byte(strings.Join(sortedFacts, "\x00")))
		labels[blank] = "c" + hex.EncodeToString(sum[:])[:16]
	}
	return labels
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func sortStatements(stmts []Statement) {
	key := func(s Statement) string {
		g := ""
		if s.HasGraph {
			g = s.Graph.String()
		}
		return g + "\x1f" + s.Subject.String() + "\x1f" + s.Predicate.String() + "\x1f" + s.Object.String()
	}
	for i := 1; i < len(stmts); i++ {
		for j := i; j > 0 && key(stmts[j-1]) > key(stmts[j]); j-- {
			stmts[j-1], stmts[j] = stmts[j], stmts[j-1]
		}
	}
}

// normalizeLiteral rewrites xsd:integer/decimal/double/float/boolean and
// xsd:base64Binary literals to their canonical lexical form. Non-literal
// nodes and literals whose lexical form is already malformed
// are returned unchanged.
func normalizeLiteral(n Node) Node {
	if n.Kind() != KindLiteral || n.Language() != "" {
		return n
	}
	dt := n.Datatype()
	if dt.IsZero() {
		return n
	}
	switch {
	case dt.Equal(XSDInteger):
		if v, err := strconv.ParseInt(n.Value(), 10, 64); err == nil {
			return NewTypedLiteral(strconv.FormatInt(v, 10), dt)
		}
	case dt.Equal(XSDBoolean):
		switch n.Value() {
		case "1", "true":
			return NewTypedLiteral("true", dt)
		case "0", "false":
			return NewTypedLiteral("false", dt)
		}
	case dt.Equal(XSDDecimal):
		return NewTypedLiteral(canonicalDecimal(n.Value()), dt)
	case dt.Equal(XSDDouble), dt.Equal(XSDFloat):
		if v, err := strconv.ParseFloat(n.Value(), 64); err == nil {
			return NewTypedLiteral(canonicalDouble(v), dt)
		}
	case dt.Equal(XSDBase64):
		if raw, err := base64.StdEncoding.DecodeString(n.Value()); err == nil {
			return NewTypedLiteral(base64.StdEncoding.EncodeToString(raw), dt)
		}
	}
	return n
}

// canonicalDecimal ensures a lexical xsd:decimal always has a '.' and at
// least one fractional digit, per the XSD canonical-mapping rule; it does
// not reformat exponents since xsd:decimal forbids them.
func canonicalDecimal(s string) string {
	if !strings.Contains(s, ".") {
		return s + ".0"
	}
	return s
}

// canonicalDouble renders v the way xsd:double's canonical mapping
// requires: scientific notation with a single digit before the decimal
// point and an explicit "E" exponent.
func canonicalDouble(v float64) string {
	return strconv.FormatFloat(v, 'E', -1, 64)
}
