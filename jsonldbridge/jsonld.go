// Package jsonldbridge wires github.com/piprate/json-gold into the rdf
// event pipeline as an external collaborator: it is not a fifth core
// syntax alongside Turtle/TriG/N-Triples/N-Quads, but a document in
// JSON-LD form can still be imported into, or exported out of, that
// pipeline by going through N-Quads as the interchange format (ToRDF/
// FromRDF via ld.NQuadRDFSerializer).
package jsonldbridge

import (
	"bytes"
	"fmt"

	ld "github.com/piprate/json-gold/ld"

	"github.com/geoknoesis/rdf-go/rdf"
)

// Options configures JSON-LD expansion/compaction (trimmed to the fields
// this bridge needs; full manifest/test-suite knobs like MaxQuads stay
// out of scope here).
type Options struct {
	// Base resolves relative IRIs during expansion; empty uses the
	// document's own context.
	Base string
	// ProcessingMode selects "json-ld-1.0" or "json-ld-1.1"; empty uses
	// json-gold's default.
	ProcessingMode string
	// UseNativeTypes controls whether ToRDF emits native xsd:integer/
	// xsd:double/xsd:boolean types for JSON numbers/booleans rather than
	// always emitting xsd:string.
	UseNativeTypes bool
}

func (o Options) toGoldOptions() *ld.JsonLdOptions {
	g := ld.NewJsonLdOptions(o.Base)
	if o.ProcessingMode != "" {
		g.ProcessingMode = o.ProcessingMode
	}
	g.UseNativeTypes = o.UseNativeTypes
	return g
}

// Import parses a JSON-LD document (already decoded into Go values per
// encoding/json's conventions — map[string]interface{}, []interface{},
// etc.) and feeds the resulting statements into sink as a Turtle/NQuads
// Reader would: one EventStatement per RDF quad json-gold's ToRDF
// produces, no Base/Prefix events (JSON-LD context expansion has already
// absorbed any prefixing).
func Import(doc interface{}, opts Options, sink rdf.Sink) rdf.Status {
	proc := ld.NewJsonLdProcessor()
	goldOpts := opts.toGoldOptions()
	result, err := proc.ToRDF(doc, goldOpts)
	if err != nil {
		return rdf.StatusBadSyntax
	}
	dataset, ok := result.(*ld.RDFDataset)
	if !ok {
		return rdf.StatusInternal
	}
	serializer := &ld.NQuadRDFSerializer{}
	serialized, err := serializer.Serialize(dataset)
	if err != nil {
		return rdf.StatusBadSyntax
	}
	nquads, ok := serialized.(string)
	if !ok {
		return rdf.StatusInternal
	}
	return importNQuads(nquads, sink)
}

// importNQuads re-parses json-gold's N-Quads serialization through this
// module's own NTriplesReader, so the bridge produces exactly the same
// rdf.Statement/rdf.Node values a native N-Quads document would — callers
// downstream of sink cannot tell a statement arrived via JSON-LD.
func importNQuads(nquads string, sink rdf.Sink) rdf.Status {
	world := rdf.NewWorld()
	reader := rdf.NewNTriplesReader(bytes.NewReader([]byte(nquads)), world, "<jsonld>", true, false)
	return reader.ReadDocument(sink)
}

// Emit renders stmts as a JSON-LD document (the generic "expanded form"
// json-gold's FromRDF produces — a caller wanting compacted/framed output
// should pass the result through ld.JsonLdProcessor.Compact themselves,
// since compaction needs a context this bridge has no opinion about).
func Emit(stmts []rdf.Statement, opts Options) (interface{}, error) {
	nquads, err := statementsToNQuads(stmts)
	if err != nil {
		return nil, err
	}
	proc := ld.NewJsonLdProcessor()
	goldOpts := opts.toGoldOptions()
	goldOpts.Format = "application/n-quads"
	return proc.FromRDF(nquads, goldOpts)
}

// statementsToNQuads renders stmts through this module's own NTriplesWriter
// in quad mode, giving json-gold's FromRDF exactly the N-Quads text our
// Writer would have produced for the same statements.
func statementsToNQuads(stmts []rdf.Statement) (string, error) {
	var buf bytes.Buffer
	w := rdf.NewNTriplesWriter(&buf, true, false)
	for _, stmt := range stmts {
		if st := w.Statement(stmt, rdf.StatementFlags{}); !st.OK() {
			return "", fmt.Errorf("jsonldbridge: %s", st)
		}
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// EmitterSink buffers every EventStatement it receives and renders them as
// a JSON-LD document on Flush, letting a Reader (or any upstream Sink
// chain) feed straight into JSON-LD output the same way it would feed a
// rdf.Writer.
type EmitterSink struct {
	rdf.NopSink
	opts Options
	buf  []rdf.Statement
}

// NewEmitterSink builds an EmitterSink.
func NewEmitterSink(opts Options) *EmitterSink {
	return &EmitterSink{opts: opts}
}

func (e *EmitterSink) Statement(stmt rdf.Statement, _ rdf.StatementFlags) rdf.Status {
	e.buf = append(e.buf, stmt)
	return rdf.StatusSuccess
}

// Flush renders the buffered statements as a JSON-LD document and clears
// the buffer.
func (e *EmitterSink) Flush() (interface{}, error) {
	doc, err := Emit(e.buf, e.opts)
	e.buf = e.buf[:0]
	return doc, err
}
