package rdf

import "fmt"

// Cursor records where a Statement was parsed from: a document name plus a
// 1-based line and a 0-based column.
type Cursor struct {
	Document string
	Line     int
	Column   int
}

func (c Cursor) String() string {
	if c.Document == "" && c.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", c.Document, c.Line, c.Column)
}

// Statement is an (subject, predicate, object, graph?, origin?) tuple.
// Subject is a URI/CURIE/blank node, predicate is a URI/CURIE, object is
// any Node, graph (if present) is a URI/CURIE/blank node. Origin, if
// present, records where it was parsed. Nodes are referenced, not owned;
// equality compares the four nodes, and Origin is metadata excluded from
// equality.
type Statement struct {
	Subject   Node
	Predicate Node
	Object    Node
	Graph     Node
	HasGraph  bool
	Origin    *Cursor
}

// InDefaultGraph reports whether the statement has no named graph.
func (s Statement) InDefaultGraph() bool { return !s.HasGraph }

// ToTriple drops the graph, returning the triple-only projection.
func (s Statement) ToTriple() Statement {
	s.Graph = Node{}
	s.HasGraph = false
	return s
}

// WithGraph returns a copy of s placed in the given named graph.
func (s Statement) WithGraph(graph Node) Statement {
	s.Graph = graph
	s.HasGraph = true
	return s
}

// Equal compares the four nodes only; Origin is metadata and does not
// participate in equality.
func (s Statement) Equal(other Statement) bool {
	if !s.Subject.Equal(other.Subject) || !s.Predicate.Equal(other.Predicate) || !s.Object.Equal(other.Object) {
		return false
	}
	if s.HasGraph != other.HasGraph {
		return false
	}
	if s.HasGraph && !s.Graph.Equal(other.Graph) {
		return false
	}
	return true
}

// Pattern is a Statement with some fields set to wildcard (nil) for Model
// lookups. A nil field matches anything; Graph is
// three-valued: a nil Graph matches every graph (including the default
// graph), a nil Graph with DefaultGraphOnly set matches only the default
// graph, and a bound Graph matches exactly that named graph.
type Pattern struct {
	Subject   *Node
	Predicate *Node
	Object    *Node
	Graph     *Node // nil means any graph unless DefaultGraphOnly is set
	// DefaultGraphOnly restricts Graph wildcard matching to the default
	// graph; it is ignored if Graph is non-nil.
	DefaultGraphOnly bool
}

// Matches reports whether s satisfies p.
func (p Pattern) Matches(s Statement) bool {
	if p.Subject != nil && !p.Subject.Equal(s.Subject) {
		return false
	}
	if p.Predicate != nil && !p.Predicate.Equal(s.Predicate) {
		return false
	}
	if p.Object != nil && !p.Object.Equal(s.Object) {
		return false
	}
	if p.Graph != nil {
		return s.HasGraph && p.Graph.Equal(s.Graph)
	}
	if p.DefaultGraphOnly {
		return !s.HasGraph
	}
	return true
}

// boundMask returns a bitmask of which pattern fields are bound, used by
// Model index selection (bit 0=S, 1=P, 2=O, 3=G).
func (p Pattern) boundMask() uint8 {
	var mask uint8
	if p.Subject != nil {
		mask |= 1 << 0
	}
	if p.Predicate != nil {
		mask |= 1 << 1
	}
	if p.Object != nil {
		mask |= 1 << 2
	}
	if p.Graph != nil {
		mask |= 1 << 3
	}
	return mask
}
