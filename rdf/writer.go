package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriterFlags configures Turtle/TriG serialization.
type WriterFlags struct {
	// ASCII forces \uXXXX/\UXXXXXXXX escaping of non-ASCII codepoints.
	ASCII bool
	// Verbatim disables CURIE abbreviation: every IRI is written in full
	// "<...>" form even if a matching prefix is declared.
	Verbatim bool
	// Expanded disables ','/';' grouping: every statement is written as
	// its own complete "s p o ." line.
	Expanded bool
	// Indent is the per-level indentation string (default two spaces).
	Indent string
}

func (f WriterFlags) indent() string {
	if f.Indent == "" {
		return "  "
	}
	return f.Indent
}

// writerFrame tracks the abbreviation state for one nesting level: the
// current graph, the last subject/predicate written (for ','/';' grouping),
// and the indent depth.
type writerFrame struct {
	graph       Node
	hasGraph    bool
	lastSubject Node
	hasSubject  bool
	lastPred    Node
	hasPred     bool
	depth       int
}

// openBlock buffers the statements belonging to a "[ ... ]" or "( ... )"
// block that has not yet been spliced into its parent's output. The Reader
// emits a nested blank's own statements — and its closing EventEnd — before
// the statement that actually uses that blank as a subject or object
// (the recursive-descent parse finishes the nested term fully before
// returning to the enclosing predicateObjectList), so by the time the
// Writer learns a blank was meant to be inlined, it would already have
// committed that blank's lines to the stream under the old one-statement-
// at-a-time design. Buffering here until the splice point (the StartAnon*/
// StartList* flagged statement) solves that ordering problem: push on the
// Open* flag, accumulate into the block instead of the enclosing target,
// pop and stash the finished text on EventEnd, then splice it in by blank
// label wherever the referencing statement renders that blank.
type openBlock struct {
	node   Node
	isList bool

	// anon (property-list) buffering: text accumulates the rendered
	// "pred obj (';' pred obj)* (',' obj)*" body; last tracks the most
	// recent predicate written so a repeated verb can still fold to ','.
	text strings.Builder
	last writerFrame

	// list buffering: cursor is the blank label of the rdf:first/rdf:rest
	// cons cell currently being awaited; items accumulates each rendered
	// element in list order.
	cursor string
	items  []string
}

// Writer is an event-driven Turtle/TriG pretty-printer: it implements Sink,
// so a Reader (or a Model range) can stream directly into it. It tracks an
// explicit frame stack mirroring the nesting the Reader signaled via
// StatementFlags/EventEnd.
type Writer struct {
	w     *bufio.Writer
	env   *Env
	flags WriterFlags
	trig  bool
	stack []writerFrame

	// open is the stack of anon/list blocks currently being buffered;
	// closed maps a blank label to its finished "[ ... ]"/"( ... )" text,
	// ready to be spliced in (and removed) the first time it is referenced.
	open   []*openBlock
	closed map[string]string

	err   error
	wrote bool
}

// NewWriter constructs a Writer. env supplies the prefix table and base URI
// used for CURIE abbreviation (ignored if flags.Verbatim); trig enables
// named-graph block output.
func NewWriter(w io.Writer, env *Env, trig bool, flags WriterFlags) *Writer {
	if env == nil {
		env = NewEnv()
	}
	wr := &Writer{w: bufio.NewWriter(w), env: env, flags: flags, trig: trig, closed: make(map[string]string)}
	wr.stack = []writerFrame{{}}
	return wr
}

func (w *Writer) top() *writerFrame { return &w.stack[len(w.stack)-1] }

func (w *Writer) fail(err error) Status {
	if w.err == nil {
		w.err = err
	}
	return StatusBadWrite
}

// Base emits an "@base <...> ." directive.
func (w *Writer) Base(uri string) Status {
	w.env.SetBase(uri)
	if _, err := fmt.Fprintf(w.w, "@base <%s> .\n", escapeNTIRI(uri, w.flags.ASCII)); err != nil {
		return w.fail(err)
	}
	w.wrote = true
	return StatusSuccess
}

// Prefix emits an "@prefix name: <namespace> ." directive and records it
// for subsequent CURIE abbreviation.
func (w *Writer) Prefix(name, namespace string) Status {
	w.env.SetPrefix(name, namespace)
	if w.flags.Verbatim {
		return StatusSuccess
	}
	label := name + ":"
	if _, err := fmt.Fprintf(w.w, "@prefix %s <%s> .\n", label, escapeNTIRI(namespace, w.flags.ASCII)); err != nil {
		return w.fail(err)
	}
	w.wrote = true
	return StatusSuccess
}

// Statement writes one triple/quad, applying ','/';' abbreviation against
// the current frame's last subject/predicate unless flags.Expanded is set.
// A statement flagged Open* starts a new buffered block (see openBlock);
// while any block is open, every statement is routed into the innermost
// open block instead of the top-level stream.
func (w *Writer) Statement(stmt Statement, flags StatementFlags) Status {
	if flags.OpenAnon || flags.OpenList {
		blk := &openBlock{node: stmt.Subject, isList: flags.OpenList}
		if flags.OpenList {
			blk.cursor = stmt.Subject.Value()
		}
		w.open = append(w.open, blk)
	}

	if len(w.open) > 0 {
		return w.statementInBlock(stmt, flags)
	}
	return w.statementTopLevel(stmt, flags)
}

// statementInBlock accumulates one statement into the innermost open
// "[ ... ]"/"( ... )" block rather than the document stream.
func (w *Writer) statementInBlock(stmt Statement, flags StatementFlags) Status {
	blk := w.open[len(w.open)-1]

	if blk.isList {
		switch {
		case stmt.Predicate.Equal(RDFFirst):
			blk.items = append(blk.items, w.renderObjectTerm(stmt.Object, flags))
		case stmt.Predicate.Equal(RDFRest) && !stmt.Object.Equal(RDFNil):
			blk.cursor = stmt.Object.Value()
		}
		w.wrote = true
		return StatusSuccess
	}

	objText := w.renderObjectTerm(stmt.Object, flags)
	switch {
	case blk.text.Len() == 0:
		blk.text.WriteString(w.renderTerm(stmt.Predicate))
		blk.text.WriteByte(' ')
		blk.text.WriteString(objText)
	case !w.flags.Expanded && blk.last.hasPred && blk.last.lastPred.Equal(stmt.Predicate):
		blk.text.WriteString(" , ")
		blk.text.WriteString(objText)
	default:
		blk.text.WriteString(" ; ")
		blk.text.WriteString(w.renderTerm(stmt.Predicate))
		blk.text.WriteByte(' ')
		blk.text.WriteString(objText)
	}
	blk.last.hasPred, blk.last.lastPred = true, stmt.Predicate
	w.wrote = true
	return StatusSuccess
}

// statementTopLevel is the original flat-stream writer logic (graph
// transitions, ','/';' abbreviation against the current frame), now
// routing subject/object rendering through the splice-aware helpers so a
// reference to a just-closed block is inlined instead of written by label.
func (w *Writer) statementTopLevel(stmt Statement, flags StatementFlags) Status {
	f := w.top()

	if w.trig && stmt.HasGraph && (!f.hasGraph || !f.graph.Equal(stmt.Graph)) {
		if f.hasGraph {
			if st := w.closeGraphBlock(); st != StatusSuccess {
				return st
			}
			f = w.top()
		}
		if _, err := fmt.Fprintf(w.w, "%s {\n", w.renderTerm(stmt.Graph)); err != nil {
			return w.fail(err)
		}
		w.stack = append(w.stack, writerFrame{graph: stmt.Graph, hasGraph: true, depth: f.depth + 1})
		f = w.top()
	} else if w.trig && !stmt.HasGraph && f.hasGraph {
		if st := w.closeGraphBlock(); st != StatusSuccess {
			return st
		}
		f = w.top()
	}

	sameSubject := !w.flags.Expanded && f.hasSubject && f.lastSubject.Equal(stmt.Subject) && !flags.StartAnonSubject && !flags.StartListSubject
	samePredicate := sameSubject && f.hasPred && f.lastPred.Equal(stmt.Predicate)

	subjText := w.renderSubjectTerm(stmt.Subject, flags)
	predText := w.renderTerm(stmt.Predicate)
	objText := w.renderObjectTerm(stmt.Object, flags)

	indent := strings.Repeat(w.flags.indent(), f.depth+1)
	switch {
	case samePredicate:
		if _, err := w.w.WriteString(",\n" + indent + strings.Repeat(" ", len(predText)+1) + objText); err != nil {
			return w.fail(err)
		}
	case sameSubject:
		if _, err := fmt.Fprintf(w.w, ";\n%s%s %s", indent, predText, objText); err != nil {
			return w.fail(err)
		}
	default:
		if f.hasSubject {
			if _, err := w.w.WriteString(" .\n"); err != nil {
				return w.fail(err)
			}
		}
		if _, err := fmt.Fprintf(w.w, "%s%s %s %s", indent, subjText, predText, objText); err != nil {
			return w.fail(err)
		}
	}
	w.wrote = true
	f.hasSubject, f.lastSubject = true, stmt.Subject
	f.hasPred, f.lastPred = true, stmt.Predicate
	return StatusSuccess
}

// renderObjectTerm renders stmt.Object, splicing in a finished "[ ... ]"/
// "( ... )" block when flags marks this object as the splice point for a
// blank whose own statements were buffered earlier.
func (w *Writer) renderObjectTerm(n Node, flags StatementFlags) string {
	if flags.StartAnonObject && flags.EmptySubject {
		return "[]"
	}
	if flags.StartListObject && n.Equal(RDFNil) {
		return "()"
	}
	if (flags.StartAnonObject || flags.StartListObject) && n.Kind() == KindBlank {
		if text, ok := w.closed[n.Value()]; ok {
			delete(w.closed, n.Value())
			return text
		}
	}
	return w.renderTerm(n)
}

// renderSubjectTerm is renderObjectTerm's counterpart for the (rarer) case
// where the anon/list block itself is the statement's subject, e.g.
// "[ <p> <o> ] <p2> <o2> .".
func (w *Writer) renderSubjectTerm(n Node, flags StatementFlags) string {
	if flags.StartAnonSubject && flags.EmptySubject {
		return "[]"
	}
	if flags.StartListSubject && n.Equal(RDFNil) {
		return "()"
	}
	if (flags.StartAnonSubject || flags.StartListSubject) && n.Kind() == KindBlank {
		if text, ok := w.closed[n.Value()]; ok {
			delete(w.closed, n.Value())
			return text
		}
	}
	return w.renderTerm(n)
}

// End pops the innermost open block (for EndAnonymous/EndList) and stashes
// its finished "[ ... ]"/"( ... )" text for the first statement that
// references the block's blank by label, or closes a TriG graph block
// (EndGraph).
func (w *Writer) End(node Node, kind EndKind) Status {
	if kind == EndGraph {
		return w.closeGraphBlock()
	}
	if len(w.open) == 0 {
		return StatusSuccess
	}
	blk := w.open[len(w.open)-1]
	w.open = w.open[:len(w.open)-1]
	w.closed[blk.node.Value()] = renderBlock(blk)
	w.wrote = true
	return StatusSuccess
}

func renderBlock(blk *openBlock) string {
	if blk.isList {
		return "(" + joinWithLeadingSpace(blk.items) + " )"
	}
	return "[ " + blk.text.String() + " ]"
}

func joinWithLeadingSpace(items []string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteByte(' ')
		b.WriteString(item)
	}
	return b.String()
}

func (w *Writer) closeGraphBlock() Status {
	if len(w.stack) <= 1 {
		return StatusSuccess
	}
	if w.top().hasSubject {
		if _, err := w.w.WriteString(" .\n"); err != nil {
			return w.fail(err)
		}
	}
	w.stack = w.stack[:len(w.stack)-1]
	if _, err := w.w.WriteString("}\n"); err != nil {
		return w.fail(err)
	}
	w.top().hasSubject = false
	w.top().hasPred = false
	return StatusSuccess
}

// Finish closes any still-open statement/graph block and flushes the
// underlying writer (mirrors Reader.Finish). Per DESIGN.md's Open
// Questions resolution on AnonymousEnd requiredness, any anon/list block
// a caller forgot to close with EventEnd is closed here too, so it is at
// least available for splicing rather than silently losing its buffered
// text.
func (w *Writer) Finish() Status {
	for len(w.open) > 0 {
		blk := w.open[len(w.open)-1]
		w.open = w.open[:len(w.open)-1]
		w.closed[blk.node.Value()] = renderBlock(blk)
	}
	for len(w.stack) > 1 {
		if st := w.closeGraphBlock(); st != StatusSuccess {
			return st
		}
	}
	if w.top().hasSubject {
		if _, err := w.w.WriteString(" .\n"); err != nil {
			return w.fail(err)
		}
		w.top().hasSubject = false
	}
	if err := w.w.Flush(); err != nil {
		return w.fail(err)
	}
	if w.err != nil {
		return StatusBadWrite
	}
	return StatusSuccess
}

// renderTerm renders n in context, abbreviating as a CURIE when possible
// and not suppressed by flags.Verbatim.
func (w *Writer) renderTerm(n Node) string {
	switch n.Kind() {
	case KindURI:
		if !w.flags.Verbatim {
			if curie, ok := w.env.QualifyURI(n.Value()); ok {
				return curie.Value()
			}
		}
		if n.Equal(RDFType) {
			return "a"
		}
		return "<" + escapeNTIRI(n.Value(), w.flags.ASCII) + ">"
	case KindCurie:
		return n.Value()
	case KindBlank:
		return "_:" + n.Value()
	case KindLiteral:
		return w.renderLiteral(n)
	case KindQuotedTriple:
		return "<< " + w.renderTerm(n.QuotedSubject()) + " " + w.renderTerm(n.QuotedPredicate()) + " " + w.renderTerm(n.QuotedObject()) + " >>"
	default:
		return ""
	}
}

func (w *Writer) renderLiteral(n Node) string {
	if n.Equal(RDFNil) {
		return "()"
	}
	dt := n.Datatype()
	if n.Language() == "" && !dt.IsZero() {
		switch {
		case dt.Equal(XSDInteger) && isValidIntegerLexical(n.Value()):
			return n.Value()
		case dt.Equal(XSDDecimal) && isValidDecimalLexical(n.Value()):
			return n.Value()
		case dt.Equal(XSDDouble) && isValidDoubleLexical(n.Value()):
			return n.Value()
		case dt.Equal(XSDBoolean) && (n.Value() == "true" || n.Value() == "false"):
			return n.Value()
		}
	}
	lexical := escapeNTString(n.Value(), w.flags.ASCII)
	if n.Language() != "" {
		return lexical + "@" + n.Language()
	}
	if !dt.IsZero() && !dt.Equal(XSDString) {
		return lexical + "^^" + w.renderTerm(dt)
	}
	return lexical
}

func isValidIntegerLexical(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i = 1
	}
	if i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isValidDecimalLexical(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i = 1
	}
	sawDigit, sawDot := false, false
	for ; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			sawDigit = true
		case s[i] == '.' && !sawDot:
			sawDot = true
		default:
			return false
		}
	}
	return sawDigit && sawDot
}

func isValidDoubleLexical(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i = 1
	}
	sawDigit, sawE := false, false
	for ; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			sawDigit = true
		case s[i] == '.':
		case (s[i] == 'e' || s[i] == 'E') && !sawE:
			sawE = true
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				i++
			}
		default:
			return false
		}
	}
	return sawDigit && sawE
}
