package rdf

// Inserter adapts a *Model to the Sink interface with an explicit target
// graph override, letting a Reader load an entire document into one named
// graph regardless of what graph (if any) its statements declare — the
// common "load this file as graph X" operation.
type Inserter struct {
	model      *Model
	graph      Node
	hasGraph   bool
	lastStatus Status
}

// NewInserter builds an Inserter writing into model. If graph is non-nil,
// every incoming statement is rewritten into that graph regardless of its
// own Graph field; pass nil to preserve each statement's own graph as-is.
func NewInserter(model *Model, graph *Node) *Inserter {
	ins := &Inserter{model: model}
	if graph != nil {
		ins.graph, ins.hasGraph = *graph, true
	}
	return ins
}

func (ins *Inserter) Base(string) Status          { return StatusSuccess }
func (ins *Inserter) Prefix(string, string) Status { return StatusSuccess }
func (ins *Inserter) End(Node, EndKind) Status     { return StatusSuccess }

func (ins *Inserter) Statement(stmt Statement, _ StatementFlags) Status {
	if ins.hasGraph {
		stmt = stmt.WithGraph(ins.graph)
	}
	st := ins.model.Add(stmt)
	ins.lastStatus = st
	if st == StatusIDClash {
		// A suppressed duplicate is not a pipeline failure.
		return StatusSuccess
	}
	return st
}

// LastStatus returns the Status of the most recent Add call, including
// StatusIDClash suppressions a caller may want to count.
func (ins *Inserter) LastStatus() Status { return ins.lastStatus }

// FilterMode selects whether Filter's Pattern list is an allow-list or a
// deny-list.
type FilterMode uint8

const (
	// FilterInclusive forwards only statements matching at least one
	// pattern.
	FilterInclusive FilterMode = iota
	// FilterExclusive forwards every statement except those matching at
	// least one pattern.
	FilterExclusive
)

// Filter wraps a downstream Sink, forwarding only statements passing its
// Pattern list under Mode. Base/Prefix/End events always pass through
// unfiltered, since they describe document structure rather than data.
type Filter struct {
	next     Sink
	patterns []Pattern
	mode     FilterMode
}

// NewFilter builds a Filter forwarding into next.
func NewFilter(next Sink, mode FilterMode, patterns ...Pattern) *Filter {
	return &Filter{next: next, patterns: patterns, mode: mode}
}

func (f *Filter) Base(uri string) Status           { return f.next.Base(uri) }
func (f *Filter) Prefix(name, ns string) Status    { return f.next.Prefix(name, ns) }
func (f *Filter) End(node Node, kind EndKind) Status { return f.next.End(node, kind) }

func (f *Filter) Statement(stmt Statement, flags StatementFlags) Status {
	matched := false
	for _, p := range f.patterns {
		if p.Matches(stmt) {
			matched = true
			break
		}
	}
	pass := matched
	if f.mode == FilterExclusive {
		pass = !matched
	}
	if !pass {
		return StatusSuccess
	}
	return f.next.Statement(stmt, flags)
}

// Tee broadcasts every event to all of its downstream Sinks, returning the
// first non-Success Status any of them produces (first-failure-wins)
// while still dispatching to every sink regardless of
// earlier failures, so partial side effects in one branch don't starve
// the others.
type Tee struct {
	sinks []Sink
}

// NewTee builds a Tee broadcasting to every given Sink.
func NewTee(sinks ...Sink) *Tee { return &Tee{sinks: sinks} }

func (t *Tee) Base(uri string) Status {
	return t.broadcast(func(s Sink) Status { return s.Base(uri) })
}

func (t *Tee) Prefix(name, ns string) Status {
	return t.broadcast(func(s Sink) Status { return s.Prefix(name, ns) })
}

func (t *Tee) Statement(stmt Statement, flags StatementFlags) Status {
	return t.broadcast(func(s Sink) Status { return s.Statement(stmt, flags) })
}

func (t *Tee) End(node Node, kind EndKind) Status {
	return t.broadcast(func(s Sink) Status { return s.End(node, kind) })
}

func (t *Tee) broadcast(call func(Sink) Status) Status {
	first := StatusSuccess
	sawFailure := false
	for _, s := range t.sinks {
		if st := call(s); !st.OK() && !sawFailure {
			first, sawFailure = st, true
		}
	}
	return first
}
