package rdf

import (
	"fmt"
	"io"
)

// ReaderFlags toggles optional grammar extensions and tolerance modes. The
// zero value is strict RDF 1.1 Turtle/TriG/N-Triples/N-Quads with no
// SPARQL-style variables and no RDF-star.
type ReaderFlags struct {
	// Lax tolerates invalid UTF-8 (replacing with U+FFFD) and skips a
	// malformed statement instead of failing the whole document: a bad
	// line for NTriplesReader, or a resync to the next top-level '.' for
	// the Turtle/TriG parser.
	Lax bool
	// Variables accepts SPARQL-style "?name" terms, represented as blank
	// nodes labeled "?name" rather than a distinct Node kind.
	Variables bool
	// QuotedTriples accepts RDF-star "<< s p o >>" terms.
	QuotedTriples bool
	// Relative leaves IRIs unresolved against Base instead of eagerly
	// absolutizing them (reserved for callers building a Writer that must
	// reproduce relative references verbatim; the parser in this package
	// always resolves, so this flag currently has no effect).
	Relative bool
}

// Reader parses a Turtle, TriG, N-Triples or N-Quads document into a Sink,
// with an explicit Start/ReadChunk/Finish lifecycle so a caller can drive
// it incrementally instead of committing to ReadDocument's run-to-completion
// call.
type Reader struct {
	world  *World
	env    *Env
	syntax Syntax
	flags  ReaderFlags
	doc    string

	lx   *lexer
	p    *parser
	nt   *NTriplesReader
	done bool

	// startedSink is the Sink bound by Start, kept directly since the
	// NTriplesReader path (unlike the Turtle/TriG parser) does not hold
	// its own reference to it.
	startedSink Sink
}

// NewReader constructs a Reader for syntax, reading from r. doc names the
// source for Cursor reporting (a file path or "<input>"); env, if nil,
// defaults to a fresh *Env.
func NewReader(world *World, syntax Syntax, r io.Reader, doc string, env *Env, flags ReaderFlags) (*Reader, error) {
	if world == nil {
		return nil, fmt.Errorf("%w: nil World", ErrBadArg)
	}
	if env == nil {
		env = NewEnv()
	}
	rd := &Reader{world: world, env: env, syntax: syntax, flags: flags, doc: doc}
	switch syntax {
	case SyntaxTurtle, SyntaxTriG:
		rd.lx = newLexer(r, doc, 0)
	case SyntaxNTriples:
		rd.nt = NewNTriplesReader(r, world, doc, false, flags.Lax)
	case SyntaxNQuads:
		rd.nt = NewNTriplesReader(r, world, doc, true, flags.Lax)
	default:
		return nil, fmt.Errorf("%w: unknown syntax %q", ErrUnsupportedFormat, syntax)
	}
	return rd, nil
}

// Start binds sink as the destination for this Reader's events. It must be
// called before ReadChunk or ReadDocument.
func (r *Reader) Start(sink Sink) {
	if r.lx != nil {
		r.p = newParser(r.lx, sink, r.env, r.world, r.doc, r.syntax == SyntaxTriG, r.flags.Variables, r.flags.QuotedTriples, r.flags.Lax)
	}
	r.startedSink = sink
}

// ReadChunk parses up to maxStatements top-level statements (directives
// count toward the budget too) and returns StatusSuccess once the document
// is exhausted, or StatusFailure if more input remains for a subsequent
// call — a cooperative-scheduling hook so a caller can interleave parsing
// with other work without dedicating a goroutine to it. Internally this
// package still performs blocking reads against r, so genuinely
// asynchronous chunk delivery is not supported; the budget
// bounds CPU/event work per call, not I/O wait.
func (r *Reader) ReadChunk(maxStatements int) Status {
	if r.done {
		return StatusSuccess
	}
	if maxStatements <= 0 {
		maxStatements = 1
	}
	if r.nt != nil {
		for i := 0; i < maxStatements; i++ {
			stmt, status := r.nt.next()
			if status == StatusNoData {
				r.done = true
				return StatusSuccess
			}
			if status != StatusSuccess {
				if r.flags.Lax {
					continue
				}
				return status
			}
			if st := r.startedSink.Statement(stmt, StatementFlags{}); !st.OK() {
				return st
			}
		}
		return StatusFailure
	}
	for i := 0; i < maxStatements; i++ {
		tok, err := r.p.peek()
		if err != nil {
			if err == io.EOF {
				r.done = true
				return StatusSuccess
			}
			return StatusBadSyntax
		}
		if tok.kind == tokEOF {
			r.done = true
			return StatusSuccess
		}
		if st := r.p.statementWithRecovery(); st != StatusSuccess {
			return st
		}
	}
	return StatusFailure
}

// ReadDocument calls ReadChunk with a budget of 4096 statements until the
// document is exhausted or a call fails, the common case when a caller
// just wants the whole document.
func (r *Reader) ReadDocument() Status {
	for {
		st := r.ReadChunk(4096)
		if st != StatusFailure {
			return st
		}
	}
}

// Finish releases Reader-owned resources. Turtle/TriG parsing holds no
// resources beyond the lexer's buffered reader, so Finish is a no-op
// placeholder kept for symmetry with Writer.Finish's lifecycle pairing.
func (r *Reader) Finish() Status { return StatusSuccess }

// Env returns the Reader's environment (base URI and prefix table), which
// accumulates @prefix/@base declarations as parsing proceeds.
func (r *Reader) Env() *Env { return r.env }
