package rdf

import "errors"

// Sentinel errors for the common, non-positional failure modes. Failures
// discovered while scanning a document are returned by the Reader as a
// Status; the ParseError
// type can wrap one of these through Unwrap, but no Reader method returns
// a *ParseError.
var (
	// ErrUnsupportedFormat indicates an unsupported syntax.
	ErrUnsupportedFormat = errors.New("unsupported RDF format")

	// ErrBadArg indicates an invalid argument to a CORE operation, e.g. a
	// pattern with no nodes bound, or a writer asked to exceed its depth
	// bound outside lax mode.
	ErrBadArg = errors.New("rdf: bad argument")

	// ErrBadStack indicates the parser's explicit frame stack would exceed
	// its configured byte budget.
	ErrBadStack = errors.New("rdf: parser stack exhausted")

	// ErrBadSyntax indicates a grammatical violation of the Turtle/TriG
	// grammar.
	ErrBadSyntax = errors.New("rdf: bad syntax")

	// ErrBadText indicates invalid UTF-8 in strict mode.
	ErrBadText = errors.New("rdf: invalid text encoding")

	// ErrBadCurie indicates a CURIE whose prefix is undefined.
	ErrBadCurie = errors.New("rdf: undefined CURIE prefix")

	// ErrBadWrite indicates the byte sink returned a short write.
	ErrBadWrite = errors.New("rdf: short write")

	// ErrNoData indicates premature end of input mid-production.
	ErrNoData = errors.New("rdf: unexpected end of input")

	// ErrNotFound indicates a lookup found nothing and the caller asked
	// for an error rather than a Failure status.
	ErrNotFound = errors.New("rdf: not found")

	// ErrIDClash indicates two blank-node generators in the same document
	// produced a colliding label.
	ErrIDClash = errors.New("rdf: blank node id clash")

	// ErrOverflow indicates a counter (blank-node generator, nesting
	// depth) exceeded its representable range.
	ErrOverflow = errors.New("rdf: overflow")

	// ErrClosed indicates an operation on an already-closed Reader,
	// Writer or Model.
	ErrClosed = errors.New("rdf: use of closed resource")
)
