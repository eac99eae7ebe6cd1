package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// tokenKind enumerates the terminals of the Turtle/TriG grammar.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokError
	tokIRIRef
	tokPNameNS   // "prefix:"
	tokPNameLN   // "prefix:local"
	tokBlankNode // "_:label"
	tokAnonBlank // "[]" with only whitespace inside
	tokString    // unescaped literal lexical form
	tokInteger
	tokDecimal
	tokDouble
	tokBoolean
	tokA
	tokPrefixKw  // @prefix or PREFIX
	tokBaseKw    // @base or BASE
	tokLangTag   // text following '@'
	tokDatatype  // '^^'
	tokDot
	tokComma
	tokSemicolon
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokLDoubleAngle // "<<"
	tokRDoubleAngle // ">>"
	tokVar          // "?name" (SPARQL-style variable, gated by Flags.Variables)
)

func (k tokenKind) String() string {
	names := [...]string{
		"EOF", "Error", "IRIRef", "PNameNS", "PNameLN", "BlankNode",
		"AnonBlank", "String", "Integer", "Decimal", "Double", "Boolean",
		"A", "PrefixKw", "BaseKw", "LangTag", "Datatype", "Dot", "Comma",
		"Semicolon", "LBracket", "RBracket", "LParen", "RParen", "LBrace",
		"RBrace", "LDoubleAngle", "RDoubleAngle", "Var",
	}
	if int(k) >= 0 && int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// token is one lexical unit plus its source position and (for literals)
// its already-unescaped text.
type token struct {
	kind tokenKind
	text string
	pos  Cursor
}

// lexer is a pull-style, channel-free scanner over a buffered byte stream,
// so a Reader can suspend and resume token-at-a-time rather than committing
// to a goroutine-plus-channel design. It tracks line/column for Cursor
// reporting and classifies runes using the PN_CHARS_* tables in qname.go.
type lexer struct {
	r    *bufio.Reader
	doc  string
	line int
	col  int

	// one-rune pushback, since most productions need only 1 lookahead;
	// peeked holds an already-read rune awaiting reuse.
	havePeek bool
	peeked   rune
	peekErr  error

	lax        bool
	allowLax   bool
	maxLineLen int
}

func newLexer(r io.Reader, doc string, bufSize int) *lexer {
	if bufSize <= 0 {
		bufSize = 4096
	}
	return &lexer{r: bufio.NewReaderSize(r, bufSize), doc: doc, line: 1, col: 0}
}

func (lx *lexer) cursor() Cursor { return Cursor{Document: lx.doc, Line: lx.line, Column: lx.col} }

// readRune returns the next rune, advancing position bookkeeping. io.EOF
// is returned as (0, io.EOF); invalid UTF-8 surfaces as ErrBadText unless
// lax is set, in which case it is replaced with U+FFFD.
func (lx *lexer) readRune() (rune, error) {
	if lx.havePeek {
		lx.havePeek = false
		r, err := lx.peeked, lx.peekErr
		if err == nil {
			lx.advance(r)
		}
		return r, err
	}
	r, size, err := lx.r.ReadRune()
	if err != nil {
		return 0, err
	}
	if r == utf8.RuneError && size == 1 {
		if lx.lax {
			lx.advance(r)
			return utf8.RuneError, nil
		}
		return 0, ErrBadText
	}
	lx.advance(r)
	return r, nil
}

func (lx *lexer) advance(r rune) {
	if r == '\n' {
		lx.line++
		lx.col = 0
	} else {
		lx.col++
	}
}

func (lx *lexer) peekRune() (rune, error) {
	if lx.havePeek {
		return lx.peeked, lx.peekErr
	}
	r, size, err := lx.r.ReadRune()
	if err == nil && r == utf8.RuneError && size == 1 {
		if lx.lax {
			r, err = utf8.RuneError, nil
		} else {
			err = ErrBadText
		}
	}
	lx.havePeek = true
	lx.peeked = r
	lx.peekErr = err
	return r, err
}

// peek2 looks one rune past whatever peekRune would return, without
// consuming either. It relies on peekRune having already pulled its rune
// out of the underlying bufio.Reader into lx.peeked, so a raw Peek on the
// reader now sees the byte(s) that follow it.
func (lx *lexer) peek2() (rune, error) {
	if _, err := lx.peekRune(); err != nil {
		return 0, err
	}
	bs, err := lx.r.Peek(utf8.UTFMax)
	if len(bs) == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	r, _ := utf8.DecodeRune(bs)
	return r, nil
}

// skipInsignificant consumes whitespace and '#' comments.
func (lx *lexer) skipInsignificant() error {
	for {
		r, err := lx.peekRune()
		if err != nil {
			return err
		}
		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			lx.readRune()
		case r == '#':
			for {
				r, err := lx.readRune()
				if err != nil || r == '\n' {
					break
				}
			}
		default:
			return nil
		}
	}
}

// next scans and returns the next token, skipping whitespace/comments.
func (lx *lexer) next() (token, error) {
	if err := lx.skipInsignificant(); err != nil {
		if err == io.EOF {
			return token{kind: tokEOF, pos: lx.cursor()}, nil
		}
		return token{}, err
	}
	start := lx.cursor()
	r, err := lx.readRune()
	if err != nil {
		if err == io.EOF {
			return token{kind: tokEOF, pos: start}, nil
		}
		return token{}, err
	}
	switch r {
	case '.':
		// A '.' followed by a digit belongs to a decimal; otherwise it
		// terminates the statement.
		p, _ := lx.peekRune()
		if isDigit(p) {
			return lx.lexNumberFrom(start, ".")
		}
		return token{kind: tokDot, text: ".", pos: start}, nil
	case ',':
		return token{kind: tokComma, text: ",", pos: start}, nil
	case ';':
		return token{kind: tokSemicolon, text: ";", pos: start}, nil
	case '[':
		return lx.lexBracket(start)
	case ']':
		return token{kind: tokRBracket, text: "]", pos: start}, nil
	case '(':
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case ')':
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case '{':
		if p, _ := lx.peekRune(); p == '|' {
			lx.readRune()
			return token{kind: tokError, text: "{|", pos: start}, fmt.Errorf("annotation syntax not supported: %w", ErrBadSyntax)
		}
		return token{kind: tokLBrace, text: "{", pos: start}, nil
	case '}':
		return token{kind: tokRBrace, text: "}", pos: start}, nil
	case '<':
		if p, _ := lx.peekRune(); p == '<' {
			lx.readRune()
			return token{kind: tokLDoubleAngle, text: "<<", pos: start}, nil
		}
		return lx.lexIRIRef(start)
	case '>':
		if p, _ := lx.peekRune(); p == '>' {
			lx.readRune()
			return token{kind: tokRDoubleAngle, text: ">>", pos: start}, nil
		}
		return token{}, ErrBadSyntax
	case '"', '\'':
		return lx.lexString(start, r)
	case '_':
		if p, _ := lx.peekRune(); p == ':' {
			lx.readRune()
			return lx.lexBlankLabel(start)
		}
		return token{}, ErrBadSyntax
	case '@':
		return lx.lexAtWord(start)
	case '?':
		return lx.lexVariable(start)
	case '+', '-':
		return lx.lexNumberFrom(start, string(r))
	default:
		if isDigit(r) {
			return lx.lexNumberFrom(start, string(r))
		}
		if isPnCharsBase(r) || r == ':' {
			return lx.lexPrefixedName(start, r)
		}
		return token{}, fmt.Errorf("%w: unexpected character %q", ErrBadSyntax, r)
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isAlpha(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }

// lexBracket distinguishes "[" "]"  anonymous-blank shorthand from the
// start of a blank-node property list; both consume only the "[" here,
// the parser decides which production it's in by peeking for "]".
func (lx *lexer) lexBracket(start Cursor) (token, error) {
	return token{kind: tokLBracket, text: "[", pos: start}, nil
}

func (lx *lexer) lexIRIRef(start Cursor) (token, error) {
	var b strings.Builder
	for {
		r, err := lx.readRune()
		if err != nil {
			return token{}, ErrNoData
		}
		switch r {
		case '>':
			return token{kind: tokIRIRef, text: b.String(), pos: start}, nil
		case '\\':
			decoded, err := lx.readUnicodeEscape()
			if err != nil {
				return token{}, err
			}
			b.WriteRune(decoded)
		case ' ', '<', '"', '{', '}', '|', '^', '`', '\n', '\r', '\t':
			if !lx.lax {
				return token{}, fmt.Errorf("%w: disallowed character %q in IRI", ErrBadSyntax, r)
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
}

// readUnicodeEscape consumes "u" XXXX or "U" XXXXXXXX after a backslash
// already consumed.
func (lx *lexer) readUnicodeEscape() (rune, error) {
	r, err := lx.readRune()
	if err != nil {
		return 0, ErrNoData
	}
	var n int
	switch r {
	case 'u':
		n = 4
	case 'U':
		n = 8
	case 't':
		return '\t', nil
	case 'b':
		return '\b', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 'f':
		return '\f', nil
	case '"':
		return '"', nil
	case '\'':
		return '\'', nil
	case '\\':
		return '\\', nil
	default:
		return 0, fmt.Errorf("%w: invalid escape \\%c", ErrBadSyntax, r)
	}
	var v rune
	for i := 0; i < n; i++ {
		d, err := lx.readRune()
		if err != nil {
			return 0, ErrNoData
		}
		v = v*16 + rune(hexVal(d))
		if hexVal(d) < 0 {
			return 0, fmt.Errorf("%w: invalid hex digit %q in unicode escape", ErrBadSyntax, d)
		}
	}
	return v, nil
}

func hexVal(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	default:
		return -1
	}
}

// lexString scans a '...'/"..."/'''...'''/"""..."""-delimited literal,
// already unescaping common and unicode escapes.
func (lx *lexer) lexString(start Cursor, quote rune) (token, error) {
	long := false
	if p1, _ := lx.peekRune(); p1 == quote {
		lx.readRune()
		if p2, _ := lx.peekRune(); p2 == quote {
			lx.readRune()
			long = true
		} else {
			return token{kind: tokString, text: "", pos: start}, nil
		}
	}
	var b strings.Builder
	quoteRun := 0
	for {
		r, err := lx.readRune()
		if err != nil {
			return token{}, ErrNoData
		}
		if r == '\\' {
			quoteRun = 0
			decoded, err := lx.readUnicodeEscape()
			if err != nil {
				return token{}, err
			}
			b.WriteRune(decoded)
			continue
		}
		if r == quote {
			if !long {
				return token{kind: tokString, text: b.String(), pos: start}, nil
			}
			quoteRun++
			if quoteRun == 3 {
				return token{kind: tokString, text: b.String(), pos: start}, nil
			}
			continue
		}
		if quoteRun > 0 {
			for i := 0; i < quoteRun; i++ {
				b.WriteRune(quote)
			}
			quoteRun = 0
		}
		if (r == '\n' || r == '\r') && !long {
			return token{}, fmt.Errorf("%w: newline in single-quoted string", ErrBadSyntax)
		}
		b.WriteRune(r)
	}
}

func (lx *lexer) lexBlankLabel(start Cursor) (token, error) {
	var b strings.Builder
	r, err := lx.readRune()
	if err != nil || !(isPnCharsU(r) || isDigit(r)) {
		return token{}, fmt.Errorf("%w: invalid blank node label", ErrBadSyntax)
	}
	b.WriteRune(r)
	for {
		p, perr := lx.peekRune()
		if perr != nil || !(isPnChars(p) || p == '.') {
			break
		}
		if p == '.' {
			// A blank-node label cannot end in '.': only consume it if
			// another label character follows.
			next, nerr := lx.peek2()
			if nerr != nil || !isPnChars(next) {
				break
			}
			lx.readRune()
			b.WriteRune('.')
			continue
		}
		lx.readRune()
		b.WriteRune(p)
	}
	return token{kind: tokBlankNode, text: b.String(), pos: start}, nil
}

func (lx *lexer) lexAtWord(start Cursor) (token, error) {
	var b strings.Builder
	for {
		p, err := lx.peekRune()
		if err != nil || !(isAlpha(p) || p == '-') {
			break
		}
		lx.readRune()
		b.WriteRune(p)
	}
	word := b.String()
	switch strings.ToLower(word) {
	case "prefix":
		return token{kind: tokPrefixKw, text: word, pos: start}, nil
	case "base":
		return token{kind: tokBaseKw, text: word, pos: start}, nil
	default:
		return token{kind: tokLangTag, text: word, pos: start}, nil
	}
}

func (lx *lexer) lexVariable(start Cursor) (token, error) {
	var b strings.Builder
	for {
		p, err := lx.peekRune()
		if err != nil || !(isPnChars(p)) {
			break
		}
		lx.readRune()
		b.WriteRune(p)
	}
	return token{kind: tokVar, text: b.String(), pos: start}, nil
}

// isTerminator reports whether r can legally follow a keyword ("a", "true",
// "false") or a number.
func isTerminator(r rune, err error) bool {
	if err != nil {
		return true // EOF
	}
	switch r {
	case ' ', '\t', '\r', '\n', ',', ';', '.', ')', ']', '}':
		return true
	default:
		return false
	}
}

func (lx *lexer) lexNumberFrom(start Cursor, prefix string) (token, error) {
	var b strings.Builder
	b.WriteString(prefix)
	gotDot := strings.Contains(prefix, ".")
	gotE := false
	for {
		p, err := lx.peekRune()
		if err != nil {
			break
		}
		switch {
		case isDigit(p):
			lx.readRune()
			b.WriteRune(p)
		case p == '.' && !gotDot && !gotE:
			// A '.' only belongs to the number if a digit follows;
			// otherwise it is the statement terminator and must be left
			// unconsumed for the next token.
			next, nerr := lx.peek2()
			if nerr != nil || !isDigit(next) {
				goto done
			}
			lx.readRune()
			gotDot = true
			b.WriteByte('.')
		case (p == 'e' || p == 'E') && !gotE:
			lx.readRune()
			gotE = true
			b.WriteRune(p)
			if sign, _ := lx.peekRune(); sign == '+' || sign == '-' {
				lx.readRune()
				b.WriteRune(sign)
			}
		default:
			goto done
		}
	}
done:
	if b.Len() == 0 || b.String() == "+" || b.String() == "-" {
		return token{}, fmt.Errorf("%w: malformed number", ErrBadSyntax)
	}
	return token{kind: numberKind(gotDot, gotE), text: b.String(), pos: start}, nil
}

func numberKind(gotDot, gotE bool) tokenKind {
	switch {
	case gotE:
		return tokDouble
	case gotDot:
		return tokDecimal
	default:
		return tokInteger
	}
}

// lexPrefixedName scans PNAME_NS / PNAME_LN / the "a" and boolean
// keywords, using one character of lookahead into a bounded buffer.
func (lx *lexer) lexPrefixedName(start Cursor, first rune) (token, error) {
	var b strings.Builder
	b.WriteRune(first)
	sawColon := first == ':'
	for {
		p, err := lx.peekRune()
		if err != nil {
			break
		}
		if p == ':' && !sawColon {
			lx.readRune()
			b.WriteRune(p)
			sawColon = true
			continue
		}
		if sawColon {
			if p == '.' {
				// A '.' is only part of PN_LOCAL if another local-name
				// character follows; a trailing '.' is the statement
				// terminator and must be left unconsumed, the same
				// lookahead lexBlankLabel uses for its own trailing '.'.
				next, nerr := lx.peek2()
				if nerr != nil || !(isPnChars(next) || next == '.' || next == '%' || next == '\\') {
					break
				}
				lx.readRune()
				b.WriteRune(p)
				continue
			}
			if isPnChars(p) || p == '%' || p == '\\' {
				lx.readRune()
				if p == '\\' {
					esc, eerr := lx.readRune()
					if eerr != nil {
						return token{}, ErrNoData
					}
					b.WriteRune(esc)
					continue
				}
				b.WriteRune(p)
				continue
			}
			break
		}
		if isPnChars(p) {
			lx.readRune()
			b.WriteRune(p)
			continue
		}
		break
	}
	word := b.String()
	if !sawColon {
		next, nerr := lx.peekRune()
		if word == "a" && isTerminator(next, nerr) {
			return token{kind: tokA, text: word, pos: start}, nil
		}
		if (word == "true" || word == "false") && isTerminator(next, nerr) {
			return token{kind: tokBoolean, text: word, pos: start}, nil
		}
		return token{}, fmt.Errorf("%w: expected ':' in prefixed name %q", ErrBadSyntax, word)
	}
	if strings.HasSuffix(word, ":") {
		return token{kind: tokPNameNS, text: word, pos: start}, nil
	}
	return token{kind: tokPNameLN, text: word, pos: start}, nil
}
