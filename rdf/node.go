package rdf

import (
	"strings"
)

// NodeKind identifies the variant of a Node: URI, CURIE, blank node or
// literal.
type NodeKind uint8

const (
	// KindURI is an absolute or relative URI reference.
	KindURI NodeKind = iota
	// KindCurie is a prefix:local shortcut, resolvable against an Env.
	KindCurie
	// KindBlank is a document-local blank node label.
	KindBlank
	// KindLiteral is a lexical value with optional datatype/language.
	KindLiteral
	// KindQuotedTriple is an RDF-star "<< s p o >>" term: a structured
	// (subject, predicate, object) triple usable as a statement's subject
	// or object, not merely an opaque string.
	KindQuotedTriple
)

func (k NodeKind) String() string {
	switch k {
	case KindURI:
		return "uri"
	case KindCurie:
		return "curie"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	case KindQuotedTriple:
		return "quoted-triple"
	default:
		return "unknown"
	}
}

// NodeFlags caches derived properties of a Node's lexical form, computed
// once at construction because the Writer consults them on every emitted
// statement.
type NodeFlags struct {
	HasNewline  bool
	HasQuote    bool
	HasDatatype bool
	HasLanguage bool
}

// Node is an immutable, tagged RDF term: a URI, a CURIE, a blank node or a
// literal. Values are compared by variant, lexical string, datatype and
// language; Node is safe to use as a map key only through keyOf, since
// Literal carries a Datatype pointer.
type Node struct {
	kind     NodeKind
	lexical  string // URI value, CURIE "prefix:local", blank label, or literal lexical form
	datatype *Node  // literal only; nil means xsd:string (or rdf:langString if Lang != "")
	language string // literal only
	flags    NodeFlags

	// quoted holds the embedded (subject, predicate, object) of a
	// KindQuotedTriple node; nil for every other kind.
	quoted *quotedTripleTerms
}

// quotedTripleTerms is the structured payload of a KindQuotedTriple Node,
// kept out of Node's main fields so the common case (URI/CURIE/blank/
// literal) pays no extra allocation.
type quotedTripleTerms struct {
	subject   Node
	predicate Node
	object    Node
}

// Kind returns the Node's variant.
func (n Node) Kind() NodeKind { return n.kind }

// Value returns the raw lexical string: the URI, the "prefix:local" CURIE
// text, the blank label (without "_:"), or the literal's lexical form.
func (n Node) Value() string { return n.lexical }

// Datatype returns the literal's datatype IRI, or the zero Node (IsZero) if
// none was set. Meaningless for non-literal kinds.
func (n Node) Datatype() Node {
	if n.datatype == nil {
		return Node{}
	}
	return *n.datatype
}

// Language returns the literal's language tag, or "" if none. Meaningless
// for non-literal kinds.
func (n Node) Language() string { return n.language }

// QuotedSubject, QuotedPredicate and QuotedObject return the embedded terms
// of a KindQuotedTriple Node, or the zero Node for any other kind.
func (n Node) QuotedSubject() Node {
	if n.quoted == nil {
		return Node{}
	}
	return n.quoted.subject
}

func (n Node) QuotedPredicate() Node {
	if n.quoted == nil {
		return Node{}
	}
	return n.quoted.predicate
}

func (n Node) QuotedObject() Node {
	if n.quoted == nil {
		return Node{}
	}
	return n.quoted.object
}

// Flags returns the cached derived flags computed at construction time.
func (n Node) Flags() NodeFlags { return n.flags }

// IsZero reports whether n is the zero Node (no variant set).
func (n Node) IsZero() bool {
	return n.kind == KindURI && n.lexical == "" && n.datatype == nil && n.language == ""
}

// String renders n the way it would appear inside a Turtle/TriG statement
// (not a full document serialization — the Writer handles abbreviation,
// escaping and CURIE qualification in context).
func (n Node) String() string {
	switch n.kind {
	case KindURI:
		return "<" + n.lexical + ">"
	case KindCurie:
		return n.lexical
	case KindBlank:
		return "_:" + n.lexical
	case KindLiteral:
		quoted := quoteLiteral(n.lexical, n.flags)
		if n.language != "" {
			return quoted + "@" + n.language
		}
		if n.datatype != nil {
			return quoted + "^^" + n.datatype.String()
		}
		return quoted
	case KindQuotedTriple:
		return "<< " + n.quoted.subject.String() + " " + n.quoted.predicate.String() + " " + n.quoted.object.String() + " >>"
	default:
		return ""
	}
}

func quoteLiteral(lexical string, flags NodeFlags) string {
	if flags.HasNewline {
		var b strings.Builder
		b.Grow(len(lexical) + 6)
		b.WriteString(`"""`)
		b.WriteString(lexical)
		b.WriteString(`"""`)
		return b.String()
	}
	var b strings.Builder
	b.Grow(len(lexical) + 2)
	b.WriteByte('"')
	b.WriteString(lexical)
	b.WriteByte('"')
	return b.String()
}

// Equal reports deep equality: same variant, lexical string, datatype and
// language (or, for a KindQuotedTriple, the same embedded subject,
// predicate and object, recursively).
func (n Node) Equal(other Node) bool {
	if n.kind != other.kind {
		return false
	}
	if n.kind == KindQuotedTriple {
		return n.quoted.subject.Equal(other.quoted.subject) &&
			n.quoted.predicate.Equal(other.quoted.predicate) &&
			n.quoted.object.Equal(other.quoted.object)
	}
	if n.lexical != other.lexical {
		return false
	}
	if n.language != other.language {
		return false
	}
	nd, od := n.Datatype(), other.Datatype()
	if nd.IsZero() != od.IsZero() {
		return false
	}
	if !nd.IsZero() && nd.lexical != od.lexical {
		return false
	}
	return true
}

// NewURI constructs a URI node.
func NewURI(value string) Node {
	return Node{kind: KindURI, lexical: value, flags: computeFlags(value, false, "")}
}

// NewCurie constructs a CURIE node ("prefix:local"); it is not resolved
// against an Env until the Writer or Env.ResolveCurie is asked to do so.
func NewCurie(value string) Node {
	return Node{kind: KindCurie, lexical: value, flags: computeFlags(value, false, "")}
}

// NewBlank constructs a blank node with the given label (without the
// leading "_:").
func NewBlank(label string) Node {
	return Node{kind: KindBlank, lexical: label, flags: computeFlags(label, false, "")}
}

// NewLiteral constructs a plain literal (datatype xsd:string, no language).
func NewLiteral(lexical string) Node {
	return Node{kind: KindLiteral, lexical: lexical, flags: computeFlags(lexical, false, "")}
}

// NewLangLiteral constructs a language-tagged literal (datatype implicitly
// rdf:langString). The language tag must match
// [a-zA-Z]+('-'[a-zA-Z0-9]+)*; callers that cannot guarantee this should
// use ValidateLanguageTag first.
func NewLangLiteral(lexical, lang string) Node {
	return Node{kind: KindLiteral, lexical: lexical, language: lang, flags: computeFlags(lexical, false, lang)}
}

// NewTypedLiteral constructs a datatyped literal. datatype must itself be a
// URI or CURIE node; passing anything else yields an unusable literal
// (callers in this package always pass a URI).
func NewTypedLiteral(lexical string, datatype Node) Node {
	dt := datatype
	return Node{kind: KindLiteral, lexical: lexical, datatype: &dt, flags: computeFlags(lexical, true, "")}
}

// NewQuotedTriple constructs an RDF-star "<< s p o >>" term: a structured
// triple usable as a statement's subject or object. subject must be a URI,
// CURIE, blank node or another quoted triple; predicate must be a URI or
// CURIE; object may additionally be a literal.
func NewQuotedTriple(subject, predicate, object Node) Node {
	return Node{kind: KindQuotedTriple, quoted: &quotedTripleTerms{subject: subject, predicate: predicate, object: object}}
}

func computeFlags(lexical string, hasDatatype bool, lang string) NodeFlags {
	f := NodeFlags{HasDatatype: hasDatatype, HasLanguage: lang != ""}
	for i := 0; i < len(lexical); i++ {
		switch lexical[i] {
		case '\n', '\r':
			f.HasNewline = true
		case '"':
			f.HasQuote = true
		}
	}
	return f
}

// ValidateLanguageTag reports whether lang matches the BCP 47-derived
// grammar Turtle requires of literal language tags:
// [a-zA-Z]+('-'[a-zA-Z0-9]+)*.
func ValidateLanguageTag(lang string) bool {
	if lang == "" {
		return false
	}
	segments := strings.Split(lang, "-")
	for i, seg := range segments {
		if seg == "" {
			return false
		}
		for j := 0; j < len(seg); j++ {
			c := seg[j]
			alpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
			digit := c >= '0' && c <= '9'
			if i == 0 {
				if !alpha {
					return false
				}
			} else if !alpha && !digit {
				return false
			}
		}
	}
	return true
}

// RDFType is the rdf:type URI, used for the "a" keyword shortcut.
var RDFType = NewURI("http://www.w3.org/1999/02/22-rdf-syntax-ns#type")

// RDFFirst, RDFRest and RDFNil back collection ( ... ) expansion.
var (
	RDFFirst = NewURI("http://www.w3.org/1999/02/22-rdf-syntax-ns#first")
	RDFRest  = NewURI("http://www.w3.org/1999/02/22-rdf-syntax-ns#rest")
	RDFNil   = NewURI("http://www.w3.org/1999/02/22-rdf-syntax-ns#nil")
)

// RDFLangString is the implicit datatype of language-tagged literals.
var RDFLangString = NewURI("http://www.w3.org/1999/02/22-rdf-syntax-ns#langString")

// xsd datatypes used by numeric-literal shortcuts and the Canonicalizer.
var (
	XSDString  = NewURI("http://www.w3.org/2001/XMLSchema#string")
	XSDBoolean = NewURI("http://www.w3.org/2001/XMLSchema#boolean")
	XSDInteger = NewURI("http://www.w3.org/2001/XMLSchema#integer")
	XSDDecimal = NewURI("http://www.w3.org/2001/XMLSchema#decimal")
	XSDDouble  = NewURI("http://www.w3.org/2001/XMLSchema#double")
	XSDFloat   = NewURI("http://www.w3.org/2001/XMLSchema#float")
	XSDBase64  = NewURI("http://www.w3.org/2001/XMLSchema#base64Binary")
)
