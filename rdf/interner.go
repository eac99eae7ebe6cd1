package rdf

import "sync"

// nodeKey is the hash-cons key for a Node: two equal Nodes must produce
// the same key, and the key must distinguish every field equality
// compares.
type nodeKey struct {
	kind     NodeKind
	lexical  string
	datatype string
	language string
}

func keyOf(n Node) nodeKey {
	if n.kind == KindQuotedTriple {
		// n.lexical is unused for this kind, so two distinct quoted
		// triples would otherwise collide on the same (kind, "", "", "")
		// key; n.String() recursively covers the embedded subject,
		// predicate and object and is collision-free the same way it is
		// for every other kind's lexical form.
		return nodeKey{kind: n.kind, lexical: n.String()}
	}
	dt := ""
	if n.datatype != nil {
		dt = n.datatype.lexical
	}
	return nodeKey{kind: n.kind, lexical: n.lexical, datatype: dt, language: n.language}
}

// NodeSet is a hash-consed node store with refcounts: a structure returning
// canonical shared references for equal node values. Multiple Intern calls
// with equal values return the same pointer; Deref decrements and frees
// when the refcount reaches zero. NodeSet is append-only from the
// perspective of parsing and is safe for concurrent use — the World that
// owns it may be shared read-mostly across a process, though one World per
// thread avoids the locking this type performs internally.
type NodeSet struct {
	mu      sync.Mutex
	entries map[nodeKey]*internedNode
}

type internedNode struct {
	node     Node
	refcount int
}

// NewNodeSet constructs an empty interner.
func NewNodeSet() *NodeSet {
	return &NodeSet{entries: make(map[nodeKey]*internedNode)}
}

// InternPtr returns the canonical *Node for n, incrementing its refcount.
// Calling InternPtr twice with equal values returns the identical pointer.
func (s *NodeSet) InternPtr(n Node) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := keyOf(n)
	if e, ok := s.entries[k]; ok {
		e.refcount++
		return &e.node
	}
	e := &internedNode{node: n, refcount: 1}
	s.entries[k] = e
	return &e.node
}

// Intern is InternPtr dereferenced, for callers that want a plain Node
// value (e.g. building a Statement) but still want the dedup/refcount
// bookkeeping.
func (s *NodeSet) Intern(n Node) Node {
	return *s.InternPtr(n)
}

// Deref decrements n's refcount, freeing its entry once it reaches zero.
// Deref on a Node never interned through this set is a no-op.
func (s *NodeSet) Deref(n Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := keyOf(n)
	e, ok := s.entries[k]
	if !ok {
		return
	}
	e.refcount--
	if e.refcount <= 0 {
		delete(s.entries, k)
	}
}

// Len reports the number of distinct interned nodes currently live.
func (s *NodeSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// FreeSet releases every entry. Every pointer previously returned by
// InternPtr on this set is invalidated by FreeSet; callers must not
// dereference them afterward.
func (s *NodeSet) FreeSet() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[nodeKey]*internedNode)
}
