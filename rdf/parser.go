package rdf

import (
	"fmt"
	"io"
)

// frameKind tags what a parser frame is in the middle of producing. The
// parser keeps an explicit slice-backed stack of these instead of relying
// solely on Go's call stack, so nesting depth (collections inside
// collections, blank-node property lists inside property lists, RDF-star
// quoted triples) can be bounded by Limits.StackBytes and Limits.MaxAnonDepth
// and reported with a
// StatusOverflow rather than a runtime stack overflow.
type frameKind uint8

const (
	frameTopLevel frameKind = iota
	frameGraphBlock
	framePropertyList // subject already known, scanning verb/object pairs
	frameBlankPropList
	frameCollection
	frameQuotedTriple
)

// frame is one explicit entry on the parser's frame stack. Not every field
// is meaningful for every frameKind; see the frameKind doc comments at each
// construction site.
type frame struct {
	kind frameKind

	subject  Node
	hasSubj  bool
	graph    Node
	hasGraph bool

	// collection bookkeeping: head is the blank node naming the list's
	// first cons cell (emitted lazily once the first item is seen), prev
	// is the most recent cons cell's blank node (for rdf:rest chaining).
	head    Node
	hasHead bool
	prev    Node
}

// parser drives the lexer with one token of lookahead and an explicit frame
// stack, emitting Events to a Sink. It implements the Turtle/TriG grammar;
// N-Triples/N-Quads are handled separately by NTriplesReader since they are
// a much smaller, line-oriented grammar.
type parser struct {
	lx   *lexer
	sink Sink
	env  *Env
	w    *World

	// pending is a small lookahead queue (at most 2 tokens deep, for the
	// "graphTerm '{'" TriG production) since the lexer itself only offers
	// one token of pushback.
	pending []token

	stack     []frame
	maxFrames int

	doc      string
	trig     bool
	variables bool
	quotedTriples bool
	stopOnError bool
	lax bool

	blankSeq map[string]Node
}

func newParser(lx *lexer, sink Sink, env *Env, w *World, doc string, trig, variables, quotedTriples, lax bool) *parser {
	limits := w.Limits.normalized()
	// Each frame is a small fixed-size struct; approximate how many fit in
	// the configured stack budget the way a real call-stack bound would, so
	// deeply nested input fails with StatusOverflow instead of exhausting
	// memory.
	const approxFrameSize = 96
	maxFrames := limits.StackBytes / approxFrameSize
	if maxFrames < 8 {
		maxFrames = 8
	}
	if limits.MaxAnonDepth < maxFrames {
		maxFrames = limits.MaxAnonDepth
	}
	lx.lax = lax
	return &parser{
		lx: lx, sink: sink, env: env, w: w, doc: doc,
		trig: trig, variables: variables, quotedTriples: quotedTriples,
		maxFrames: maxFrames, lax: lax,
		blankSeq: make(map[string]Node),
	}
}

func (p *parser) cursor() Cursor { return p.lx.cursor() }

func (p *parser) fail(status Status, err error) Status {
	p.w.log("parser", LogErr, map[string]any{"cursor": p.cursor().String()}, err.Error())
	_ = newParseError(status, p.cursor(), err)
	return status
}

func (p *parser) push(f frame) Status {
	if len(p.stack) >= p.maxFrames {
		return p.fail(StatusOverflow, fmt.Errorf("%w: nesting exceeds configured stack budget", ErrOverflow))
	}
	p.stack = append(p.stack, f)
	return StatusSuccess
}

func (p *parser) pop() frame {
	f := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return f
}

func (p *parser) top() *frame { return &p.stack[len(p.stack)-1] }

func (p *parser) next() (token, error) {
	if len(p.pending) > 0 {
		tok := p.pending[0]
		p.pending = p.pending[1:]
		return tok, nil
	}
	return p.lx.next()
}

func (p *parser) peek() (token, error) {
	return p.peekAt(0)
}

// peekAt returns the token n positions ahead (0 = next token to be
// returned by next()) without consuming anything, filling the pending
// queue from the lexer as needed.
func (p *parser) peekAt(n int) (token, error) {
	for len(p.pending) <= n {
		tok, err := p.lx.next()
		if err != nil {
			return token{}, err
		}
		p.pending = append(p.pending, tok)
	}
	return p.pending[n], nil
}

// ParseDocument drives the whole Turtle/TriG document into sink, returning
// the terminal Status (StatusSuccess on clean EOF).
func (p *parser) ParseDocument() Status {
	for {
		tok, err := p.peek()
		if err != nil {
			if err == io.EOF {
				return StatusSuccess
			}
			return p.fail(StatusBadSyntax, err)
		}
		if tok.kind == tokEOF {
			return StatusSuccess
		}
		if st := p.statementWithRecovery(); st != StatusSuccess {
			return st
		}
	}
}

// statementWithRecovery parses one top-level statement. In lax mode, a
// malformed statement is dropped rather than aborting the document: parsing
// resumes at the next statement boundary ('.') instead of propagating the
// failure. Errors outside the Bad* family (overflow, sink rejection) still
// abort even in lax mode, since those indicate a problem the caller needs
// to know about rather than one input statement being malformed.
func (p *parser) statementWithRecovery() Status {
	st := p.statement()
	if st == StatusSuccess || !p.lax || !isRecoverableStatus(st) {
		return st
	}
	p.w.log("parser", LogWarning, map[string]any{"cursor": p.cursor().String()}, "skipped malformed statement")
	p.resyncToStatementBoundary()
	return StatusSuccess
}

// isRecoverableStatus reports whether st reflects a malformed production
// that lax mode can drop and resume past, as opposed to a structural
// failure (overflow, a sink rejecting a write) that should still abort.
func isRecoverableStatus(st Status) bool {
	switch st {
	case StatusBadSyntax, StatusBadArg, StatusBadCurie, StatusBadText:
		return true
	default:
		return false
	}
}

// resyncToStatementBoundary discards tokens until it consumes a top-level
// '.' or reaches EOF, the same statement-boundary recovery NTriplesReader
// gets for free from its line-oriented grammar. A '}' is also treated as a
// boundary, but is pushed back rather than consumed so an enclosing TriG
// graph block still sees it and closes normally. Lexer errors end the scan
// early, leaving the next peek to report EOF/failure as usual.
func (p *parser) resyncToStatementBoundary() {
	for {
		tok, err := p.next()
		if err != nil || tok.kind == tokEOF || tok.kind == tokDot {
			return
		}
		if tok.kind == tokRBrace {
			p.pending = append([]token{tok}, p.pending...)
			return
		}
	}
}

// statement parses one top-level production: a directive, or a
// triples-block terminated by '.', or (in TriG mode) a graph block.
func (p *parser) statement() Status {
	tok, err := p.peek()
	if err != nil {
		return p.fail(StatusBadSyntax, err)
	}
	switch tok.kind {
	case tokPrefixKw, tokBaseKw:
		return p.directive()
	default:
		if p.trig {
			if tok.kind == tokLBrace {
				return p.graphBlock(Node{}, false)
			}
			if p.isGraphNameToken(tok.kind) {
				if second, err := p.peekAt(1); err == nil && second.kind == tokLBrace {
					return p.namedGraphBlock()
				}
			}
		}
		return p.triplesBlock()
	}
}

func (p *parser) isGraphNameToken(k tokenKind) bool {
	switch k {
	case tokIRIRef, tokPNameLN, tokPNameNS, tokBlankNode:
		return true
	default:
		return false
	}
}

func (p *parser) directive() Status {
	tok, _ := p.next()
	isAt := false
	switch tok.kind {
	case tokPrefixKw:
		isAt = true
	}
	nameTok, err := p.next()
	if err != nil {
		return p.fail(StatusBadSyntax, err)
	}
	switch tok.kind {
	case tokPrefixKw:
		if nameTok.kind != tokPNameNS {
			return p.fail(StatusBadSyntax, fmt.Errorf("%w: expected prefix name after @prefix", ErrBadSyntax))
		}
		iriTok, err := p.next()
		if err != nil || iriTok.kind != tokIRIRef {
			return p.fail(StatusBadSyntax, fmt.Errorf("%w: expected IRI after prefix name", ErrBadSyntax))
		}
		prefix := nameTok.text[:len(nameTok.text)-1]
		ns := p.env.ResolveReference(iriTok.text)
		p.env.SetPrefix(prefix, ns)
		if isAt {
			if err := p.expectDot(); err != nil {
				return p.fail(StatusBadSyntax, err)
			}
		} else {
			p.skipOptionalDot()
		}
		return p.sink.Prefix(prefix, ns)
	case tokBaseKw:
		if nameTok.kind != tokIRIRef {
			return p.fail(StatusBadSyntax, fmt.Errorf("%w: expected IRI after @base", ErrBadSyntax))
		}
		base := p.env.ResolveReference(nameTok.text)
		p.env.SetBase(base)
		if isAt {
			if err := p.expectDot(); err != nil {
				return p.fail(StatusBadSyntax, err)
			}
		} else {
			p.skipOptionalDot()
		}
		return p.sink.Base(base)
	default:
		return p.fail(StatusBadSyntax, fmt.Errorf("%w: unexpected directive token", ErrBadSyntax))
	}
}

func (p *parser) expectDot() error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	if tok.kind != tokDot {
		return fmt.Errorf("%w: expected '.'", ErrBadSyntax)
	}
	return nil
}

// skipOptionalDot tolerates the SPARQL-style PREFIX/BASE forms, which have
// no trailing '.'; a following '.' (if any) is still consumed.
func (p *parser) skipOptionalDot() {
	tok, err := p.peek()
	if err == nil && tok.kind == tokDot {
		p.next()
	}
}

// namedGraphBlock parses "graphTerm '{' triplesBlock* '}'", the TriG form
// with no leading GRAPH keyword; the caller has already confirmed (via 2
// tokens of lookahead) that this is the production in play.
func (p *parser) namedGraphBlock() Status {
	nameTok, _ := p.next()
	node, err := p.resolveGraphTerm(nameTok)
	if err != nil {
		return p.fail(StatusBadSyntax, err)
	}
	brace, _ := p.next()
	if brace.kind != tokLBrace {
		return p.fail(StatusBadSyntax, fmt.Errorf("%w: expected '{'", ErrBadSyntax))
	}
	return p.graphBlock(node, true)
}

func (p *parser) resolveGraphTerm(tok token) (Node, error) {
	switch tok.kind {
	case tokIRIRef:
		return NewURI(p.env.ResolveReference(tok.text)), nil
	case tokPNameLN, tokPNameNS:
		return p.env.ResolveCurie(tok.text)
	case tokBlankNode:
		return NewBlank(tok.text), nil
	default:
		return Node{}, fmt.Errorf("%w: expected graph name", ErrBadSyntax)
	}
}

// graphBlock parses "{ triplesBlock* }", already past the opening '{'
// (named=false means this is the default-graph "{ ... }" TriG shorthand).
func (p *parser) graphBlock(graph Node, named bool) Status {
	if st := p.push(frame{kind: frameGraphBlock, graph: graph, hasGraph: named}); st != StatusSuccess {
		return st
	}
	defer p.pop()
	for {
		tok, err := p.peek()
		if err != nil {
			return p.fail(StatusBadSyntax, err)
		}
		if tok.kind == tokRBrace {
			p.next()
			return p.sink.End(graph, EndGraph)
		}
		if tok.kind == tokPrefixKw || tok.kind == tokBaseKw {
			if st := p.directiveWithRecovery(); st != StatusSuccess {
				return st
			}
			continue
		}
		if st := p.triplesInGraphWithRecovery(graph, named); st != StatusSuccess {
			return st
		}
	}
}

// directiveWithRecovery and triplesInGraphWithRecovery give a TriG graph
// block's nested productions the same lax-mode recovery ParseDocument gives
// top-level statements, so one malformed statement inside "{ ... }" does
// not abort the whole document.
func (p *parser) directiveWithRecovery() Status {
	st := p.directive()
	if st == StatusSuccess || !p.lax || !isRecoverableStatus(st) {
		return st
	}
	p.w.log("parser", LogWarning, map[string]any{"cursor": p.cursor().String()}, "skipped malformed directive")
	p.resyncToStatementBoundary()
	return StatusSuccess
}

func (p *parser) triplesInGraphWithRecovery(graph Node, hasGraph bool) Status {
	st := p.triplesBlockInGraph(graph, hasGraph)
	if st == StatusSuccess || !p.lax || !isRecoverableStatus(st) {
		return st
	}
	p.w.log("parser", LogWarning, map[string]any{"cursor": p.cursor().String()}, "skipped malformed statement")
	p.resyncToStatementBoundary()
	return StatusSuccess
}

// triplesBlock parses one "subject predicateObjectList '.'" production in
// the default graph.
func (p *parser) triplesBlock() Status {
	return p.triplesBlockInGraph(Node{}, false)
}

func (p *parser) triplesBlockInGraph(graph Node, hasGraph bool) Status {
	subj, flags, err := p.subject(graph, hasGraph)
	if err != nil {
		return p.fail(StatusBadSyntax, err)
	}
	if st := p.predicateObjectList(subj, graph, hasGraph, flags); st != StatusSuccess {
		return st
	}
	tok, err := p.next()
	if err != nil {
		return p.fail(StatusBadSyntax, err)
	}
	if tok.kind != tokDot {
		return p.fail(StatusBadSyntax, fmt.Errorf("%w: expected '.' at end of statement", ErrBadSyntax))
	}
	return StatusSuccess
}

// subject parses the subject position: an IRIref, prefixed name, blank
// node label, "[...]" anonymous/property-list blank node, or "(...)"
// collection. It returns the resulting Node plus the StatementFlags that
// mark how it should be re-serialized.
func (p *parser) subject(graph Node, hasGraph bool) (Node, StatementFlags, error) {
	tok, err := p.next()
	if err != nil {
		return Node{}, StatementFlags{}, err
	}
	switch tok.kind {
	case tokIRIRef:
		return NewURI(p.env.ResolveReference(tok.text)), StatementFlags{}, nil
	case tokPNameLN, tokPNameNS:
		n, err := p.env.ResolveCurie(tok.text)
		return n, StatementFlags{}, err
	case tokBlankNode:
		return NewBlank(tok.text), StatementFlags{}, nil
	case tokLBracket:
		n, flags, err := p.blankPropertyList(graph, hasGraph)
		flags.StartAnonSubject = true
		return n, flags, err
	case tokLParen:
		n, flags, err := p.collection(graph, hasGraph)
		flags.StartListSubject = true
		return n, flags, err
	case tokLDoubleAngle:
		if !p.quotedTriples {
			return Node{}, StatementFlags{}, fmt.Errorf("%w: RDF-star quoted triples not enabled", ErrBadSyntax)
		}
		n, err := p.quotedTriple()
		return n, StatementFlags{}, err
	case tokVar:
		if !p.variables {
			return Node{}, StatementFlags{}, fmt.Errorf("%w: variables not enabled", ErrBadSyntax)
		}
		return NewBlank("?" + tok.text), StatementFlags{}, nil
	default:
		if tok.kind == tokDot {
			// Leave the statement boundary for lax-mode resync to find.
			p.pending = append([]token{tok}, p.pending...)
		}
		return Node{}, StatementFlags{}, fmt.Errorf("%w: unexpected token %s in subject position", ErrBadSyntax, tok.kind)
	}
}

// predicateObjectList parses "verb objectList (';' verb objectList)*" and
// emits one Statement per (verb, object) pair, chaining ','/';' shorthand
// flags for the Writer.
func (p *parser) predicateObjectList(subj, graph Node, hasGraph bool, subjFlags StatementFlags) Status {
	first := true
	for {
		tok, err := p.peek()
		if err != nil {
			return p.fail(StatusBadSyntax, err)
		}
		if tok.kind == tokDot || tok.kind == tokRBracket || tok.kind == tokRParen || tok.kind == tokRBrace {
			if first {
				return p.fail(StatusBadSyntax, fmt.Errorf("%w: expected predicate", ErrBadSyntax))
			}
			return StatusSuccess
		}
		pred, err := p.verb()
		if err != nil {
			return p.fail(StatusBadSyntax, err)
		}
		if st := p.objectList(subj, pred, graph, hasGraph, subjFlags); st != StatusSuccess {
			return st
		}
		subjFlags = StatementFlags{} // only the first triple carries start-of-subject markers
		first = false
		next, err := p.peek()
		if err != nil {
			return p.fail(StatusBadSyntax, err)
		}
		if next.kind != tokSemicolon {
			return StatusSuccess
		}
		p.next()
		// Trailing ';' with nothing after it is legal (ends the list).
		after, err := p.peek()
		if err == nil && (after.kind == tokDot || after.kind == tokRBracket || after.kind == tokRParen || after.kind == tokRBrace) {
			return StatusSuccess
		}
	}
}

func (p *parser) verb() (Node, error) {
	tok, err := p.next()
	if err != nil {
		return Node{}, err
	}
	switch tok.kind {
	case tokA:
		return RDFType, nil
	case tokIRIRef:
		return NewURI(p.env.ResolveReference(tok.text)), nil
	case tokPNameLN, tokPNameNS:
		return p.env.ResolveCurie(tok.text)
	default:
		return Node{}, fmt.Errorf("%w: expected predicate, got %s", ErrBadSyntax, tok.kind)
	}
}

// objectList parses "object (',' object)*", emitting one Statement per
// object with TerseObject set on every entry after the first, marking it as
// produced by the ',' abbreviation.
func (p *parser) objectList(subj, pred, graph Node, hasGraph bool, subjFlags StatementFlags) Status {
	terse := false
	for {
		obj, objFlags, err := p.object(graph, hasGraph)
		if err != nil {
			return p.fail(StatusBadSyntax, err)
		}
		flags := subjFlags
		flags.StartAnonObject = objFlags.StartAnonSubject
		flags.StartListObject = objFlags.StartListSubject
		flags.EmptySubject = objFlags.EmptySubject
		flags.TerseObject = terse
		stmt := Statement{Subject: subj, Predicate: pred, Object: obj, Origin: cursorPtr(p.cursor())}
		if hasGraph {
			stmt = stmt.WithGraph(graph)
		}
		if st := p.sink.Statement(stmt, flags); !st.OK() {
			return st
		}
		subjFlags = StatementFlags{}
		tok, err := p.peek()
		if err != nil {
			return p.fail(StatusBadSyntax, err)
		}
		if tok.kind != tokComma {
			return StatusSuccess
		}
		p.next()
		terse = true
	}
}

// object parses one object term, recursing into blank-node property lists,
// collections, or quoted triples as needed.
func (p *parser) object(graph Node, hasGraph bool) (Node, StatementFlags, error) {
	tok, err := p.next()
	if err != nil {
		return Node{}, StatementFlags{}, err
	}
	switch tok.kind {
	case tokIRIRef:
		return NewURI(p.env.ResolveReference(tok.text)), StatementFlags{}, nil
	case tokPNameLN, tokPNameNS:
		n, err := p.env.ResolveCurie(tok.text)
		return n, StatementFlags{}, err
	case tokBlankNode:
		return NewBlank(tok.text), StatementFlags{}, nil
	case tokLBracket:
		n, flags, err := p.blankPropertyList(graph, hasGraph)
		flags.StartAnonSubject = true
		return n, flags, err
	case tokLParen:
		n, flags, err := p.collection(graph, hasGraph)
		flags.StartListSubject = true
		return n, flags, err
	case tokLDoubleAngle:
		if !p.quotedTriples {
			return Node{}, StatementFlags{}, fmt.Errorf("%w: RDF-star quoted triples not enabled", ErrBadSyntax)
		}
		n, err := p.quotedTriple()
		return n, StatementFlags{}, err
	case tokString:
		return p.literalFromString(tok)
	case tokInteger:
		return NewTypedLiteral(tok.text, XSDInteger), StatementFlags{}, nil
	case tokDecimal:
		return NewTypedLiteral(tok.text, XSDDecimal), StatementFlags{}, nil
	case tokDouble:
		return NewTypedLiteral(tok.text, XSDDouble), StatementFlags{}, nil
	case tokBoolean:
		return NewTypedLiteral(tok.text, XSDBoolean), StatementFlags{}, nil
	case tokVar:
		if !p.variables {
			return Node{}, StatementFlags{}, fmt.Errorf("%w: variables not enabled", ErrBadSyntax)
		}
		return NewBlank("?" + tok.text), StatementFlags{}, nil
	default:
		if tok.kind == tokDot {
			// Leave the statement boundary for lax-mode resync to find.
			p.pending = append([]token{tok}, p.pending...)
		}
		return Node{}, StatementFlags{}, fmt.Errorf("%w: unexpected token %s in object position", ErrBadSyntax, tok.kind)
	}
}

// literalFromString handles the "STRING ('@' LANGTAG | '^^' iri)?"
// production, the object grammar's one spot requiring 1 extra token of
// lookahead beyond what object()'s caller already consumed.
func (p *parser) literalFromString(strTok token) (Node, StatementFlags, error) {
	tok, err := p.peek()
	if err != nil {
		return NewLiteral(strTok.text), StatementFlags{}, nil
	}
	if tok.kind == tokLangTag {
		p.next()
		if !ValidateLanguageTag(tok.text) {
			return Node{}, StatementFlags{}, fmt.Errorf("%w: invalid language tag %q", ErrBadSyntax, tok.text)
		}
		return NewLangLiteral(strTok.text, tok.text), StatementFlags{}, nil
	}
	if tok.kind == tokDatatype {
		p.next()
		dtTok, err := p.next()
		if err != nil {
			return Node{}, StatementFlags{}, err
		}
		var dt Node
		switch dtTok.kind {
		case tokIRIRef:
			dt = NewURI(p.env.ResolveReference(dtTok.text))
		case tokPNameLN, tokPNameNS:
			dt, err = p.env.ResolveCurie(dtTok.text)
			if err != nil {
				return Node{}, StatementFlags{}, err
			}
		default:
			return Node{}, StatementFlags{}, fmt.Errorf("%w: expected datatype IRI", ErrBadSyntax)
		}
		return NewTypedLiteral(strTok.text, dt), StatementFlags{}, nil
	}
	return NewLiteral(strTok.text), StatementFlags{}, nil
}

// blankPropertyList parses "'[' predicateObjectList? ']'", already past the
// '['. An immediately-closed "[]" is the anonymous-blank shorthand with no
// statements of its own.
func (p *parser) blankPropertyList(graph Node, hasGraph bool) (Node, StatementFlags, error) {
	if st := p.push(frame{kind: frameBlankPropList}); st != StatusSuccess {
		return Node{}, StatementFlags{}, fmt.Errorf("%w: blank node nesting too deep", ErrOverflow)
	}
	defer p.pop()

	label := p.w.NextBlankLabel()
	blank := NewBlank(label)

	tok, err := p.peek()
	if err != nil {
		return Node{}, StatementFlags{}, err
	}
	if tok.kind == tokRBracket {
		p.next()
		return blank, StatementFlags{EmptySubject: true}, nil
	}
	if st := p.predicateObjectList(blank, graph, hasGraph, StatementFlags{OpenAnon: true}); st != StatusSuccess {
		return Node{}, StatementFlags{}, fmt.Errorf("%w: malformed blank node property list", ErrBadSyntax)
	}
	closeTok, err := p.next()
	if err != nil || closeTok.kind != tokRBracket {
		return Node{}, StatementFlags{}, fmt.Errorf("%w: expected ']'", ErrBadSyntax)
	}
	if st := p.sink.End(blank, EndAnonymous); !st.OK() {
		return Node{}, StatementFlags{}, fmt.Errorf("%w: sink rejected blank node list end", ErrBadWrite)
	}
	return blank, StatementFlags{}, nil
}

// collection parses "'(' object* ')'", already past the '(', expanding it
// into an rdf:first/rdf:rest/rdf:nil chain. An empty "()" is rdf:nil
// directly, with no cons cells emitted.
func (p *parser) collection(graph Node, hasGraph bool) (Node, StatementFlags, error) {
	if st := p.push(frame{kind: frameCollection}); st != StatusSuccess {
		return Node{}, StatementFlags{}, fmt.Errorf("%w: collection nesting too deep", ErrOverflow)
	}
	defer p.pop()

	tok, err := p.peek()
	if err != nil {
		return Node{}, StatementFlags{}, err
	}
	if tok.kind == tokRParen {
		p.next()
		return RDFNil, StatementFlags{}, nil
	}

	var head Node
	var prev Node
	havePrev := false
	for {
		tok, err := p.peek()
		if err != nil {
			return Node{}, StatementFlags{}, err
		}
		if tok.kind == tokRParen {
			p.next()
			break
		}
		item, itemFlags, err := p.object(graph, hasGraph)
		if err != nil {
			return Node{}, StatementFlags{}, err
		}
		cell := NewBlank(p.w.NextBlankLabel())
		firstFlags := StatementFlags{
			StartAnonObject: itemFlags.StartAnonSubject,
			StartListObject: itemFlags.StartListSubject,
			EmptySubject:    itemFlags.EmptySubject,
		}
		if !havePrev {
			head = cell
			havePrev = true
			firstFlags.OpenList = true
		} else {
			restStmt := Statement{Subject: prev, Predicate: RDFRest, Object: cell}
			if hasGraph {
				restStmt = restStmt.WithGraph(graph)
			}
			if st := p.sink.Statement(restStmt, StatementFlags{}); !st.OK() {
				return Node{}, StatementFlags{}, fmt.Errorf("%w: sink rejected rdf:rest", ErrBadWrite)
			}
		}
		firstStmt := Statement{Subject: cell, Predicate: RDFFirst, Object: item}
		if hasGraph {
			firstStmt = firstStmt.WithGraph(graph)
		}
		if st := p.sink.Statement(firstStmt, firstFlags); !st.OK() {
			return Node{}, StatementFlags{}, fmt.Errorf("%w: sink rejected rdf:first", ErrBadWrite)
		}
		prev = cell
	}
	if !havePrev {
		return RDFNil, StatementFlags{}, nil
	}
	finalRest := Statement{Subject: prev, Predicate: RDFRest, Object: RDFNil}
	if hasGraph {
		finalRest = finalRest.WithGraph(graph)
	}
	if st := p.sink.Statement(finalRest, StatementFlags{}); !st.OK() {
		return Node{}, StatementFlags{}, fmt.Errorf("%w: sink rejected rdf:rest rdf:nil", ErrBadWrite)
	}
	if st := p.sink.End(head, EndList); !st.OK() {
		return Node{}, StatementFlags{}, fmt.Errorf("%w: sink rejected list end", ErrBadWrite)
	}
	return head, StatementFlags{}, nil
}

// quotedTriple parses "'<<' qtSubject verb qtObject '>>'" (RDF-star, an
// extension gated behind ReaderFlags so default parsing stays pure RDF
// 1.1), producing a real KindQuotedTriple Node carrying its embedded
// subject/predicate/object as structured terms rather than an opaque
// string (see DESIGN.md).
//
// The embedded subject and object are deliberately restricted to
// qtTerm's grammar (IRI, CURIE, blank label, literal-for-object, or a
// nested quoted triple) rather than the full subject()/object()
// productions: those also parse "[...]" blank-node property lists and
// "(...)" collections, which emit Statement events onto the enclosing
// sink as a side effect. Reusing them here would incorrectly assert
// those nested triples into the enclosing graph merely because they
// happened to appear inside a quoted, unasserted term.
func (p *parser) quotedTriple() (Node, error) {
	if st := p.push(frame{kind: frameQuotedTriple}); st != StatusSuccess {
		return Node{}, fmt.Errorf("%w: quoted-triple nesting too deep", ErrOverflow)
	}
	defer p.pop()

	subj, err := p.qtTerm(false)
	if err != nil {
		return Node{}, err
	}
	pred, err := p.verb()
	if err != nil {
		return Node{}, err
	}
	obj, err := p.qtTerm(true)
	if err != nil {
		return Node{}, err
	}
	closeTok, err := p.next()
	if err != nil || closeTok.kind != tokRDoubleAngle {
		return Node{}, fmt.Errorf("%w: expected '>>'", ErrBadSyntax)
	}
	return NewQuotedTriple(subj, pred, obj), nil
}

// qtTerm parses one term inside a quoted triple: an IRI, a CURIE, a blank
// node label, a nested "<< ... >>" quoted triple, or (only when
// allowLiteral is set, i.e. the object position) a literal. It never
// dispatches a Statement event, unlike subject()/object().
func (p *parser) qtTerm(allowLiteral bool) (Node, error) {
	tok, err := p.next()
	if err != nil {
		return Node{}, err
	}
	switch tok.kind {
	case tokIRIRef:
		return NewURI(p.env.ResolveReference(tok.text)), nil
	case tokPNameLN, tokPNameNS:
		return p.env.ResolveCurie(tok.text)
	case tokBlankNode:
		return NewBlank(tok.text), nil
	case tokLDoubleAngle:
		return p.quotedTriple()
	case tokString:
		if !allowLiteral {
			return Node{}, fmt.Errorf("%w: literal not allowed as quoted-triple subject", ErrBadSyntax)
		}
		n, _, err := p.literalFromString(tok)
		return n, err
	case tokInteger:
		if !allowLiteral {
			return Node{}, fmt.Errorf("%w: literal not allowed as quoted-triple subject", ErrBadSyntax)
		}
		return NewTypedLiteral(tok.text, XSDInteger), nil
	case tokDecimal:
		if !allowLiteral {
			return Node{}, fmt.Errorf("%w: literal not allowed as quoted-triple subject", ErrBadSyntax)
		}
		return NewTypedLiteral(tok.text, XSDDecimal), nil
	case tokDouble:
		if !allowLiteral {
			return Node{}, fmt.Errorf("%w: literal not allowed as quoted-triple subject", ErrBadSyntax)
		}
		return NewTypedLiteral(tok.text, XSDDouble), nil
	case tokBoolean:
		if !allowLiteral {
			return Node{}, fmt.Errorf("%w: literal not allowed as quoted-triple subject", ErrBadSyntax)
		}
		return NewTypedLiteral(tok.text, XSDBoolean), nil
	default:
		return Node{}, fmt.Errorf("%w: unexpected token %s in quoted triple", ErrBadSyntax, tok.kind)
	}
}
