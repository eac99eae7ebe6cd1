package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// NTriplesReader decodes the line-oriented N-Triples/N-Quads grammar: one
// statement per line, no prefixes, no collections, no anonymous blank
// nodes, absolute IRIs only. It is a distinct, smaller state machine from
// Reader/parser.go rather than that parser restricted to a subset, keeping
// a dedicated line-based decoder instead of routing N-Triples through the
// full Turtle grammar.
type NTriplesReader struct {
	br      *bufio.Scanner
	quads   bool
	doc     string
	lineNum int
	world   *World
	lax     bool
}

// NewNTriplesReader constructs a reader for either N-Triples (quads=false) or
// N-Quads (quads=true) input.
func NewNTriplesReader(r io.Reader, world *World, doc string, quads bool, lax bool) *NTriplesReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &NTriplesReader{br: sc, quads: quads, doc: doc, world: world, lax: lax}
}

// ReadDocument drains every statement into sink, calling Sink.Statement once
// per line and returning the first non-success Status encountered (or
// StatusSuccess at clean EOF).
func (r *NTriplesReader) ReadDocument(sink Sink) Status {
	for {
		stmt, status := r.next()
		if status == StatusNoData {
			return StatusSuccess
		}
		if status != StatusSuccess {
			if r.lax {
				r.world.log("ntriples", LogWarning, map[string]any{"line": r.lineNum}, "skipped malformed line")
				continue
			}
			return status
		}
		if st := sink.Statement(stmt, StatementFlags{}); !st.OK() {
			return st
		}
	}
}

// next scans forward to the next non-blank, non-comment line and parses it.
// StatusNoData means clean end of input.
func (r *NTriplesReader) next() (Statement, Status) {
	for {
		if !r.br.Scan() {
			if err := r.br.Err(); err != nil {
				return Statement{}, StatusBadText
			}
			return Statement{}, StatusNoData
		}
		r.lineNum++
		line := strings.TrimSpace(r.br.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		stmt, err := r.parseLine(line)
		if err != nil {
			return Statement{}, StatusBadSyntax
		}
		return stmt, StatusSuccess
	}
}

func (r *NTriplesReader) cursor() Cursor {
	return Cursor{Document: r.doc, Line: r.lineNum, Column: 0}
}

// parseLine drives a throwaway lexer over one line, reusing the Turtle
// lexer's token productions (lexIRIRef, lexString, lexBlankLabel) since
// N-Triples terms are a strict subset of Turtle's.
func (r *NTriplesReader) parseLine(line string) (Statement, error) {
	lx := newLexer(strings.NewReader(line), r.doc, len(line)+1)
	lx.lax = r.lax

	subject, err := r.nextTerm(lx, false)
	if err != nil {
		return Statement{}, err
	}
	predicate, err := r.nextTerm(lx, false)
	if err != nil {
		return Statement{}, err
	}
	if predicate.Kind() != KindURI {
		return Statement{}, fmt.Errorf("%w: predicate must be an IRI", ErrBadSyntax)
	}
	object, err := r.nextTerm(lx, true)
	if err != nil {
		return Statement{}, err
	}

	stmt := Statement{Subject: subject, Predicate: predicate, Object: object, Origin: cursorPtr(r.cursor())}

	if r.quads {
		tok, err := lx.next()
		if err != nil {
			return Statement{}, err
		}
		if tok.kind != tokDot {
			graph, err := r.termFromToken(tok)
			if err != nil {
				return Statement{}, err
			}
			stmt = stmt.WithGraph(graph)
			dot, err := lx.next()
			if err != nil {
				return Statement{}, err
			}
			if dot.kind != tokDot {
				return Statement{}, fmt.Errorf("%w: expected '.'", ErrBadSyntax)
			}
			return stmt, nil
		}
		return stmt, nil
	}

	tok, err := lx.next()
	if err != nil {
		return Statement{}, err
	}
	if tok.kind != tokDot {
		return Statement{}, fmt.Errorf("%w: expected '.'", ErrBadSyntax)
	}
	return stmt, nil
}

func (r *NTriplesReader) nextTerm(lx *lexer, allowLiteral bool) (Node, error) {
	tok, err := lx.next()
	if err != nil {
		return Node{}, err
	}
	if tok.kind == tokString && !allowLiteral {
		return Node{}, fmt.Errorf("%w: literal not allowed here", ErrBadSyntax)
	}
	return r.termFromToken2(lx, tok)
}

// termFromToken converts a bare token with no further lookahead needed
// (blank node, or the start of an IRI already scanned whole by lexIRIRef).
func (r *NTriplesReader) termFromToken(tok token) (Node, error) {
	switch tok.kind {
	case tokIRIRef:
		if !isAbsoluteIRI(tok.text) {
			return Node{}, fmt.Errorf("%w: relative IRI not allowed here", ErrBadSyntax)
		}
		return NewURI(tok.text), nil
	case tokBlankNode:
		return NewBlank(tok.text), nil
	default:
		return Node{}, fmt.Errorf("%w: unexpected token %s", ErrBadSyntax, tok.kind)
	}
}

// termFromToken2 additionally handles literals, which may need a further
// '@lang' or '^^datatype' token consumed from lx.
func (r *NTriplesReader) termFromToken2(lx *lexer, tok token) (Node, error) {
	if tok.kind != tokString {
		return r.termFromToken(tok)
	}
	p, err := lx.peekRune()
	if err == nil && p == '@' {
		lx.readRune()
		langTok, err := lx.lexAtWord(lx.cursor())
		if err != nil {
			return Node{}, err
		}
		if !ValidateLanguageTag(langTok.text) {
			return Node{}, fmt.Errorf("%w: invalid language tag %q", ErrBadSyntax, langTok.text)
		}
		return NewLangLiteral(tok.text, langTok.text), nil
	}
	if err == nil && p == '^' {
		lx.readRune()
		p2, _ := lx.readRune()
		if p2 != '^' {
			return Node{}, fmt.Errorf("%w: expected '^^'", ErrBadSyntax)
		}
		dtTok, err := lx.next()
		if err != nil || dtTok.kind != tokIRIRef {
			return Node{}, fmt.Errorf("%w: expected datatype IRI", ErrBadSyntax)
		}
		if !isAbsoluteIRI(dtTok.text) {
			return Node{}, fmt.Errorf("%w: relative datatype IRI not allowed here", ErrBadSyntax)
		}
		return NewTypedLiteral(tok.text, NewURI(dtTok.text)), nil
	}
	return NewLiteral(tok.text), nil
}

func cursorPtr(c Cursor) *Cursor { return &c }

// isAbsoluteIRI reports whether value has a valid URI scheme prefix
// ("scheme:..."), the restriction N-Triples/N-Quads place on every IRI,
// unlike Turtle/TriG, which also allow relative references.
func isAbsoluteIRI(value string) bool {
	colon := strings.IndexByte(value, ':')
	if colon <= 0 {
		return false
	}
	scheme := value[:colon]
	for i := 0; i < len(scheme); i++ {
		c := scheme[i]
		alnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if i == 0 {
			if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
				return false
			}
			continue
		}
		if !alnum && c != '+' && c != '-' && c != '.' {
			return false
		}
	}
	return true
}

// NTriplesWriter serializes Statements as N-Triples or N-Quads lines.
type NTriplesWriter struct {
	w     *bufio.Writer
	quads bool
	ascii bool
}

// NewNTriplesWriter constructs a writer; ascii forces \uXXXX escaping of
// non-ASCII codepoints in IRIs and literals, mirroring WriterFlags.ASCII.
func NewNTriplesWriter(w io.Writer, quads bool, ascii bool) *NTriplesWriter {
	return &NTriplesWriter{w: bufio.NewWriter(w), quads: quads, ascii: ascii}
}

func (w *NTriplesWriter) Base(string) Status          { return StatusSuccess }
func (w *NTriplesWriter) Prefix(string, string) Status { return StatusSuccess }
func (w *NTriplesWriter) End(Node, EndKind) Status     { return StatusSuccess }

func (w *NTriplesWriter) Statement(stmt Statement, _ StatementFlags) Status {
	if _, err := w.w.WriteString(w.renderNode(stmt.Subject)); err != nil {
		return StatusBadWrite
	}
	w.w.WriteByte(' ')
	w.w.WriteString(w.renderNode(stmt.Predicate))
	w.w.WriteByte(' ')
	w.w.WriteString(w.renderNode(stmt.Object))
	if w.quads && stmt.HasGraph {
		w.w.WriteByte(' ')
		w.w.WriteString(w.renderNode(stmt.Graph))
	}
	if _, err := w.w.WriteString(" .\n"); err != nil {
		return StatusBadWrite
	}
	return StatusSuccess
}

// Flush flushes the underlying buffered writer.
func (w *NTriplesWriter) Flush() error { return w.w.Flush() }

func (w *NTriplesWriter) renderNode(n Node) string {
	switch n.Kind() {
	case KindBlank:
		return "_:" + n.Value()
	case KindLiteral:
		s := escapeNTString(n.Value(), w.ascii)
		if n.Language() != "" {
			return s + "@" + n.Language()
		}
		if dt := n.Datatype(); !dt.IsZero() {
			return s + "^^<" + escapeNTIRI(dt.Value(), w.ascii) + ">"
		}
		return s
	case KindQuotedTriple:
		return "<< " + w.renderNode(n.QuotedSubject()) + " " + w.renderNode(n.QuotedPredicate()) + " " + w.renderNode(n.QuotedObject()) + " >>"
	default: // KindURI, KindCurie (already resolved by the caller)
		return "<" + escapeNTIRI(n.Value(), w.ascii) + ">"
	}
}

// escapeNTIRI renders value as the contents of an IRIREF token ("<...>"),
// UCHAR-escaping every byte the grammar disallows raw inside one: the
// backslash itself, '<', '>', '"', '{', '}', '|', '^', '`', and every
// control character #x00-#x20. Leaving any of these unescaped (most
// dangerously '>', which would prematurely close the token) lets a Node's
// lexical value corrupt the surrounding syntax; see IRIREF in the Turtle/
// N-Triples grammar.
func escapeNTIRI(value string, ascii bool) string {
	var b strings.Builder
	for _, r := range value {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '<', '>', '"', '{', '}', '|', '^', '`':
			fmt.Fprintf(&b, `\u%04X`, r)
		default:
			if r <= 0x20 {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			writeEscapedRune(&b, r, ascii)
		}
	}
	return b.String()
}

func escapeNTString(value string, ascii bool) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range value {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			writeEscapedRune(&b, r, ascii)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func writeEscapedRune(b *strings.Builder, r rune, ascii bool) {
	if !ascii || r < 0x80 {
		b.WriteRune(r)
		return
	}
	if r > 0xFFFF {
		fmt.Fprintf(b, `\U%08X`, r)
		return
	}
	fmt.Fprintf(b, `\u%04X`, r)
}
