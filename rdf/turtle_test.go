package rdf

import (
	"bytes"
	"strings"
	"testing"
)

// statementCollector is a minimal Sink that records every EventStatement it
// receives, for assertions against parsed documents.
type statementCollector struct {
	NopSink
	stmts []Statement
}

func (c *statementCollector) Statement(stmt Statement, _ StatementFlags) Status {
	c.stmts = append(c.stmts, stmt)
	return StatusSuccess
}

func mustReadTurtle(t *testing.T, input string, sink Sink) {
	t.Helper()
	world := NewWorld()
	r, err := NewReader(world, SyntaxTurtle, strings.NewReader(input), "<test>", nil, ReaderFlags{})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	r.Start(sink)
	if st := r.ReadDocument(); st != StatusSuccess {
		t.Fatalf("ReadDocument: %s", st)
	}
}

// Prefix expansion.
func TestPrefixExpansion(t *testing.T) {
	input := "@prefix eg: <http://example.org/> .\neg:s eg:p eg:o .\n"
	c := &statementCollector{}
	mustReadTurtle(t, input, c)

	if len(c.stmts) != 1 {
		t.Fatalf("expected exactly one statement, got %d", len(c.stmts))
	}
	s := c.stmts[0]
	want := []struct {
		node Node
		name string
	}{
		{s.Subject, "subject"},
		{s.Predicate, "predicate"},
		{s.Object, "object"},
	}
	wantValues := []string{
		"http://example.org/s",
		"http://example.org/p",
		"http://example.org/o",
	}
	for i, w := range want {
		if w.node.Kind() != KindURI || w.node.Value() != wantValues[i] {
			t.Fatalf("%s: expected %q, got %+v", w.name, wantValues[i], w.node)
		}
	}
}

// A prefixed-name object immediately followed by the statement-terminating
// '.', with no intervening whitespace, must not swallow that '.' into the
// local name (PN_LOCAL cannot end in '.'; the same trailing-dot tie-break
// applies to prefixed names as it does to numeric literals and
// blank-node labels).
func TestPrefixedNameTrailingDotIsStatementEnd(t *testing.T) {
	input := "@prefix eg: <http://example.org/> .\neg:s eg:p eg:o.\n"
	c := &statementCollector{}
	mustReadTurtle(t, input, c)

	if len(c.stmts) != 1 {
		t.Fatalf("expected exactly one statement, got %d", len(c.stmts))
	}
	if got := c.stmts[0].Object.Value(); got != "http://example.org/o" {
		t.Fatalf("object: expected %q, got %q", "http://example.org/o", got)
	}
}

// Blank collection expansion.
func TestBlankCollection(t *testing.T) {
	input := `<http://example.org/a> <http://example.org/b> ( "x" "y" ) .` + "\n"
	c := &statementCollector{}
	mustReadTurtle(t, input, c)

	if len(c.stmts) != 5 {
		t.Fatalf("expected 5 statements (1 link + 2 rdf:first + 2 rdf:rest), got %d", len(c.stmts))
	}

	// The list's own statements come first; the last statement links
	// <a> <b> to the list head.
	last := len(c.stmts) - 1
	head := c.stmts[last]
	if head.Predicate.Value() != "http://example.org/b" || head.Object.Kind() != KindBlank {
		t.Fatalf("unexpected head-linking statement: %+v", head)
	}
	g1 := head.Object

	var firstX, restToG2, firstY, restToNil bool
	for _, s := range c.stmts[:last] {
		switch {
		case s.Subject.Equal(g1) && s.Predicate.Equal(RDFFirst) && s.Object.Value() == "x":
			firstX = true
		case s.Subject.Equal(g1) && s.Predicate.Equal(RDFRest) && s.Object.Kind() == KindBlank:
			restToG2 = true
			g2 := s.Object
			for _, s2 := range c.stmts[:last] {
				if s2.Subject.Equal(g2) && s2.Predicate.Equal(RDFFirst) && s2.Object.Value() == "y" {
					firstY = true
				}
				if s2.Subject.Equal(g2) && s2.Predicate.Equal(RDFRest) && s2.Object.Equal(RDFNil) {
					restToNil = true
				}
			}
		}
	}
	if !firstX || !restToG2 || !firstY || !restToNil {
		t.Fatalf("collection did not expand to the expected rdf:first/rdf:rest chain: %+v", c.stmts)
	}
}

func TestEmptyCollectionIsRDFNil(t *testing.T) {
	input := `<http://example.org/a> <http://example.org/b> () .` + "\n"
	c := &statementCollector{}
	mustReadTurtle(t, input, c)
	if len(c.stmts) != 1 {
		t.Fatalf("expected exactly one statement for an empty collection, got %d", len(c.stmts))
	}
	if !c.stmts[0].Object.Equal(RDFNil) {
		t.Fatalf("expected object to be rdf:nil, got %+v", c.stmts[0].Object)
	}
}

// Nested anonymous blank-node property lists.
func TestNestedAnonymousBlankNodes(t *testing.T) {
	input := "<http://example.org/a> <http://example.org/p> [ <http://example.org/p2> [ <http://example.org/p3> <http://example.org/o> ] ] .\n"
	c := &statementCollector{}
	mustReadTurtle(t, input, c)
	if len(c.stmts) != 3 {
		t.Fatalf("expected 3 statements for doubly-nested blank property lists, got %d", len(c.stmts))
	}
}

// A blank-node property list and a collection nested inside a TriG named
// graph block must have every one of their expanded statements (including
// the inner rdf:first/rdf:rest chain) tagged with that graph, not silently
// dropped into the default graph.
func TestNestedBlankStructuresInheritEnclosingGraph(t *testing.T) {
	input := "@prefix eg: <http://example.org/> .\n" +
		"eg:g {\n" +
		"  eg:a eg:p [ eg:p2 ( \"x\" \"y\" ) ] .\n" +
		"}\n"
	world := NewWorld()
	r, err := NewReader(world, SyntaxTriG, strings.NewReader(input), "<test>", nil, ReaderFlags{})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	c := &statementCollector{}
	r.Start(c)
	if st := r.ReadDocument(); st != StatusSuccess {
		t.Fatalf("ReadDocument: %s", st)
	}
	if len(c.stmts) == 0 {
		t.Fatalf("expected at least one statement")
	}
	for _, s := range c.stmts {
		if !s.HasGraph || s.Graph.Value() != "http://example.org/g" {
			t.Fatalf("statement did not inherit the enclosing graph: %+v", s)
		}
	}
}

// Writer round-trip: the nested "[ ... ]" property lists a Reader expands
// into plain blank-labeled statements must be inlined back into bracket
// syntax by the Writer, not left as dangling "_:bN" labels.
func TestWriterInlinesNestedAnonymousBlankNodes(t *testing.T) {
	input := "<http://example.org/a> <http://example.org/p> [ <http://example.org/p2> [ <http://example.org/p3> <http://example.org/o> ] ] .\n"
	world := NewWorld()
	r, err := NewReader(world, SyntaxTurtle, strings.NewReader(input), "<test>", nil, ReaderFlags{})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	var buf bytes.Buffer
	w := NewWriter(&buf, NewEnv(), false, WriterFlags{})
	r.Start(w)
	if st := r.ReadDocument(); st != StatusSuccess {
		t.Fatalf("ReadDocument: %s", st)
	}
	if st := w.Finish(); st != StatusSuccess {
		t.Fatalf("Finish: %s", st)
	}

	got := buf.String()
	if !strings.Contains(got, "<http://example.org/p2> [ <http://example.org/p3> <http://example.org/o> ]") {
		t.Fatalf("expected nested blank property lists inlined as brackets, got %q", got)
	}
	if strings.Contains(got, "_:") {
		t.Fatalf("expected no dangling blank labels once inlined, got %q", got)
	}

	c := &statementCollector{}
	mustReadTurtle(t, got, c)
	if len(c.stmts) != 3 {
		t.Fatalf("round-tripped output parsed to %d statements, want 3, output: %q", len(c.stmts), got)
	}
}

// Writer round-trip for scenario 2: a parsed rdf:first/rdf:rest/rdf:nil
// chain must be re-serialized as "( ... )" collection syntax.
func TestWriterInlinesCollections(t *testing.T) {
	input := `<http://example.org/a> <http://example.org/b> ( "x" "y" ) .` + "\n"
	world := NewWorld()
	r, err := NewReader(world, SyntaxTurtle, strings.NewReader(input), "<test>", nil, ReaderFlags{})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	var buf bytes.Buffer
	w := NewWriter(&buf, NewEnv(), false, WriterFlags{})
	r.Start(w)
	if st := r.ReadDocument(); st != StatusSuccess {
		t.Fatalf("ReadDocument: %s", st)
	}
	if st := w.Finish(); st != StatusSuccess {
		t.Fatalf("Finish: %s", st)
	}

	got := buf.String()
	if !strings.Contains(got, `( "x" "y" )`) {
		t.Fatalf("expected collection inlined as '( ... )', got %q", got)
	}
	if strings.Contains(got, "_:") {
		t.Fatalf("expected no dangling rdf:first/rdf:rest cells, got %q", got)
	}

	c := &statementCollector{}
	mustReadTurtle(t, got, c)
	if len(c.stmts) != 5 {
		t.Fatalf("round-tripped output parsed to %d statements, want 5, output: %q", len(c.stmts), got)
	}
}

// Empty collections and empty anonymous nodes round-trip to "()"/"[]"
// rather than a buffered-but-empty bracket.
func TestWriterInlinesEmptyAnonAndCollection(t *testing.T) {
	input := "<http://example.org/a> <http://example.org/p> [] , ( ) .\n"
	world := NewWorld()
	r, err := NewReader(world, SyntaxTurtle, strings.NewReader(input), "<test>", nil, ReaderFlags{})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	var buf bytes.Buffer
	w := NewWriter(&buf, NewEnv(), false, WriterFlags{})
	r.Start(w)
	if st := r.ReadDocument(); st != StatusSuccess {
		t.Fatalf("ReadDocument: %s", st)
	}
	if st := w.Finish(); st != StatusSuccess {
		t.Fatalf("Finish: %s", st)
	}
	got := buf.String()
	if !strings.Contains(got, "[]") {
		t.Fatalf("expected an empty anonymous node to render as '[]', got %q", got)
	}
	if !strings.Contains(got, "()") {
		t.Fatalf("expected an empty collection to render as '()', got %q", got)
	}
}

// Writer ','/';' abbreviation.
func TestWriterAbbreviation(t *testing.T) {
	s := NewURI("http://example.org/s")
	p := NewURI("http://example.org/p")
	q := NewURI("http://example.org/q")
	o1 := NewURI("http://example.org/o1")
	o2 := NewURI("http://example.org/o2")
	o3 := NewURI("http://example.org/o3")

	var buf bytes.Buffer
	w := NewWriter(&buf, NewEnv(), false, WriterFlags{})
	if st := w.Statement(Statement{Subject: s, Predicate: p, Object: o1}, StatementFlags{}); !st.OK() {
		t.Fatalf("Statement: %s", st)
	}
	if st := w.Statement(Statement{Subject: s, Predicate: p, Object: o2}, StatementFlags{}); !st.OK() {
		t.Fatalf("Statement: %s", st)
	}
	if st := w.Statement(Statement{Subject: s, Predicate: q, Object: o3}, StatementFlags{}); !st.OK() {
		t.Fatalf("Statement: %s", st)
	}
	if st := w.Finish(); st != StatusSuccess {
		t.Fatalf("Finish: %s", st)
	}

	got := buf.String()
	if !strings.Contains(got, "<http://example.org/o1>,\n") {
		t.Fatalf("expected ',' abbreviation between o1/o2, got: %s", got)
	}
	if !strings.Contains(got, ";\n") || !strings.Contains(got, "<http://example.org/q>") {
		t.Fatalf("expected ';' abbreviation before predicate q, got: %s", got)
	}
	if !strings.HasSuffix(got, ".\n") {
		t.Fatalf("expected output to end with a terminating '.', got: %s", got)
	}
}

// Pattern query via Model.
func TestModelPatternQuery(t *testing.T) {
	world := NewWorld()
	m := NewModel(world, OrderSPOG, 0, ModelFlags{})
	s := NewURI("http://example.org/s")
	p := NewURI("http://example.org/p")
	o := NewURI("http://example.org/o")
	o2 := NewURI("http://example.org/o2")
	o3 := NewURI("http://example.org/o3")

	if st := m.Add(Statement{Subject: s, Predicate: p, Object: o}); st != StatusSuccess {
		t.Fatalf("Add: %s", st)
	}
	if st := m.Add(Statement{Subject: s, Predicate: p, Object: o2}); st != StatusSuccess {
		t.Fatalf("Add: %s", st)
	}

	if !m.Ask(Pattern{Subject: &s, Predicate: &p}) {
		t.Fatalf("expected Ask(s,p,nil) to be true")
	}
	if n := m.CountMatching(Pattern{Subject: &s, Predicate: &p}); n != 2 {
		t.Fatalf("expected count 2, got %d", n)
	}
	if got := m.Get(Pattern{Object: &o3}); len(got) != 0 {
		t.Fatalf("expected find(nil,nil,o3) to be empty, got %v", got)
	}
}

// Idempotent insert.
func TestModelIdempotentInsertWithDedup(t *testing.T) {
	world := NewWorld()
	m := NewModel(world, OrderSPOG, 0, ModelFlags{DedupDefaultGraph: true})
	s := NewURI("s")
	p := NewURI("p")
	o := NewURI("o")
	if st := m.Add(Statement{Subject: s, Predicate: p, Object: o}); st != StatusSuccess {
		t.Fatalf("first Add: %s", st)
	}
	if st := m.Add(Statement{Subject: s, Predicate: p, Object: o}); st != StatusFailure {
		t.Fatalf("expected second identical Add to report StatusFailure, got %s", st)
	}
	if m.Count() != 1 {
		t.Fatalf("expected model to still contain exactly one statement, got %d", m.Count())
	}
}

// Re-adding the exact same statement must be rejected even without
// DedupDefaultGraph set, and even when the statement carries a graph.
func TestModelIdempotentInsertWithoutDedupFlag(t *testing.T) {
	world := NewWorld()
	m := NewModel(world, OrderSPOG, 0, ModelFlags{})
	s := NewURI("s")
	p := NewURI("p")
	o := NewURI("o")
	stmt := Statement{Subject: s, Predicate: p, Object: o}
	if st := m.Add(stmt); st != StatusSuccess {
		t.Fatalf("first Add: %s", st)
	}
	if st := m.Add(stmt); st != StatusFailure {
		t.Fatalf("expected second identical Add to report StatusFailure, got %s", st)
	}
	if m.Count() != 1 {
		t.Fatalf("expected model to still contain exactly one statement, got %d", m.Count())
	}

	g := NewURI("g")
	quad := Statement{Subject: s, Predicate: p, Object: o, Graph: g, HasGraph: true}
	if st := m.Add(quad); st != StatusSuccess {
		t.Fatalf("first quad Add: %s", st)
	}
	if st := m.Add(quad); st != StatusFailure {
		t.Fatalf("expected second identical quad Add to report StatusFailure, got %s", st)
	}
	if m.Count() != 2 {
		t.Fatalf("expected model to contain exactly two statements, got %d", m.Count())
	}
}

// Index equivalence: Find must agree across maintained
// indexes regardless of which one Model happens to pick.
func TestModelIndexEquivalence(t *testing.T) {
	world := NewWorld()
	m := NewModel(world, OrderSPOG, 0, ModelFlags{})
	m.AddIndex(OrderPOSG, 0)
	m.AddIndex(OrderOSPG, 0)

	s1, s2 := NewURI("s1"), NewURI("s2")
	p := NewURI("p")
	o := NewURI("o")
	m.Add(Statement{Subject: s1, Predicate: p, Object: o})
	m.Add(Statement{Subject: s2, Predicate: p, Object: o})

	byPredicate := m.Get(Pattern{Predicate: &p})
	byObject := m.Get(Pattern{Object: &o})
	if len(byPredicate) != 2 || len(byObject) != 2 {
		t.Fatalf("expected both queries to return 2 statements regardless of index used: %d / %d", len(byPredicate), len(byObject))
	}
}

func TestLaxModeRecoversFromBadStatement(t *testing.T) {
	// One malformed line between two valid N-Triples lines; NTriplesReader's
	// lax mode should skip it and still emit both valid statements.
	input := strings.Join([]string{
		`<http://example.org/s1> <http://example.org/p> <http://example.org/o1> .`,
		`this is not a valid ntriples line`,
		`<http://example.org/s2> <http://example.org/p> <http://example.org/o2> .`,
		"",
	}, "\n")
	world := NewWorld()
	nt := NewNTriplesReader(strings.NewReader(input), world, "<test>", false, true)
	c := &statementCollector{}
	if st := nt.ReadDocument(c); st != StatusSuccess {
		t.Fatalf("ReadDocument: %s", st)
	}
	if len(c.stmts) != 2 {
		t.Fatalf("expected exactly 2 recovered statements, got %d", len(c.stmts))
	}
}

func TestLaxModeRecoversFromBadTurtleStatement(t *testing.T) {
	// A statement missing its object sits between two valid ones; in lax
	// mode the Turtle parser should resync to the next '.' and still emit
	// both valid statements instead of aborting the whole document.
	input := strings.Join([]string{
		"@prefix eg: <http://example.org/> .",
		"eg:s1 eg:p eg:o1 .",
		"eg:s eg:p .",
		"eg:s2 eg:p eg:o2 .",
		"",
	}, "\n")
	world := NewWorld()
	r, err := NewReader(world, SyntaxTurtle, strings.NewReader(input), "<test>", nil, ReaderFlags{Lax: true})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	c := &statementCollector{}
	r.Start(c)
	if st := r.ReadDocument(); st != StatusSuccess {
		t.Fatalf("ReadDocument: %s", st)
	}
	if len(c.stmts) != 2 {
		t.Fatalf("expected exactly 2 recovered statements, got %d", len(c.stmts))
	}
	if got := c.stmts[0].Object.Value(); got != "http://example.org/o1" {
		t.Fatalf("first statement object: expected %q, got %q", "http://example.org/o1", got)
	}
	if got := c.stmts[1].Object.Value(); got != "http://example.org/o2" {
		t.Fatalf("second statement object: expected %q, got %q", "http://example.org/o2", got)
	}
}

func TestStrictModeAbortsOnBadTurtleStatement(t *testing.T) {
	// Without Lax set, the same malformed statement aborts the document
	// instead of being skipped.
	input := strings.Join([]string{
		"@prefix eg: <http://example.org/> .",
		"eg:s1 eg:p eg:o1 .",
		"eg:s eg:p .",
		"eg:s2 eg:p eg:o2 .",
		"",
	}, "\n")
	world := NewWorld()
	r, err := NewReader(world, SyntaxTurtle, strings.NewReader(input), "<test>", nil, ReaderFlags{})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	c := &statementCollector{}
	r.Start(c)
	if st := r.ReadDocument(); st == StatusSuccess {
		t.Fatalf("expected a failing Status without Lax, got StatusSuccess with %d statements", len(c.stmts))
	}
}

// RDF-star quoted triples parse into a structured Node, not an opaque
// string, and round-trip through the Writer as "<< s p o >>" syntax.
func TestParserBuildsStructuredQuotedTriple(t *testing.T) {
	input := "@prefix eg: <http://example.org/> .\n<< eg:s eg:p eg:o >> eg:certainty \"0.9\" .\n"
	world := NewWorld()
	r, err := NewReader(world, SyntaxTurtle, strings.NewReader(input), "<test>", nil, ReaderFlags{QuotedTriples: true})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	c := &statementCollector{}
	r.Start(c)
	if st := r.ReadDocument(); st != StatusSuccess {
		t.Fatalf("ReadDocument: %s", st)
	}
	if len(c.stmts) != 1 {
		t.Fatalf("expected exactly one statement, got %d", len(c.stmts))
	}
	subj := c.stmts[0].Subject
	if subj.Kind() != KindQuotedTriple {
		t.Fatalf("expected subject to be a KindQuotedTriple, got %s", subj.Kind())
	}
	if got, want := subj.QuotedSubject().Value(), "http://example.org/s"; got != want {
		t.Fatalf("quoted subject: expected %q, got %q", want, got)
	}
	if got, want := subj.QuotedPredicate().Value(), "http://example.org/p"; got != want {
		t.Fatalf("quoted predicate: expected %q, got %q", want, got)
	}
	if got, want := subj.QuotedObject().Value(), "http://example.org/o"; got != want {
		t.Fatalf("quoted object: expected %q, got %q", want, got)
	}

	var buf bytes.Buffer
	env := NewEnv()
	w := NewWriter(&buf, env, false, WriterFlags{Verbatim: true})
	if st := w.Statement(c.stmts[0], StatementFlags{}); !st.OK() {
		t.Fatalf("Statement: %s", st)
	}
	w.Finish()
	if !strings.Contains(buf.String(), "<< <http://example.org/s> <http://example.org/p> <http://example.org/o> >>") {
		t.Fatalf("expected writer output to contain a real << s p o >> term, got %q", buf.String())
	}
}

// A blank-node property list or collection embedded inside a quoted triple
// must not be asserted into the enclosing graph: it names structure inside
// an unasserted term, not a new triple about the document.
func TestQuotedTripleDoesNotAssertNestedPropertyList(t *testing.T) {
	input := "@prefix eg: <http://example.org/> .\n<< eg:s eg:p [ eg:q eg:v ] >> eg:certainty \"0.9\" .\n"
	world := NewWorld()
	r, err := NewReader(world, SyntaxTurtle, strings.NewReader(input), "<test>", nil, ReaderFlags{QuotedTriples: true})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	c := &statementCollector{}
	r.Start(c)
	if st := r.ReadDocument(); st == StatusSuccess {
		t.Fatalf("expected a blank-node property list inside a quoted triple's object position to be rejected")
	}
	if len(c.stmts) != 0 {
		t.Fatalf("expected no statements to have been asserted, got %d: %+v", len(c.stmts), c.stmts)
	}
}
