// Package rdf provides a compact, streaming RDF model for the
// Turtle-derived family of textual syntaxes: Turtle, TriG, N-Triples and
// N-Quads.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// It is built around four pieces that compose through one event protocol:
//   - Node: an immutable lexical value (URI, CURIE, blank node or literal).
//   - Reader: a byte stream to event stream parser (NewReader, ReadChunk,
//     ReadDocument).
//   - Writer: an event stream to byte stream pretty-printer, including the
//     abbreviation machinery for anonymous blank-node syntax ([ ... ]) and
//     collection syntax ( ... ).
//   - Model: an indexed statement store for pattern queries, filled by an
//     Inserter sink.
//
// A Reader feeds a Sink, and Writers, Inserters and the pipeline stages
// are Sinks: events flow from a Reader into any chain of
// Filter/Tee/Canonicalizer sinks before landing in an Inserter (Model) or
// a Writer (bytes). This lets a caller re-serialize,
// filter, or index a document without buffering it in memory.
//
// Example (streaming a Turtle document into a Model):
//
//	w := rdf.NewWorld()
//	m := rdf.NewModel(w, rdf.OrderSPOG, 0, rdf.ModelFlags{})
//	ins := rdf.NewInserter(m, nil)
//	r, err := rdf.NewReader(w, rdf.SyntaxTurtle, src, "doc.ttl", nil, rdf.ReaderFlags{})
//	if err != nil {
//	    // handle error
//	}
//	r.Start(ins)
//	if st := r.ReadDocument(); st != rdf.StatusSuccess {
//	    // handle parse failure
//	}
//
// Example (re-serializing while filtering to one predicate):
//
//	out := rdf.NewWriter(dst, env, false, rdf.WriterFlags{})
//	f := rdf.NewFilter(out, rdf.FilterInclusive, rdf.Pattern{Predicate: &predicate})
//	r, err := rdf.NewReader(w, rdf.SyntaxTurtle, src, "doc.ttl", env, rdf.ReaderFlags{})
//	if err != nil {
//	    // handle error
//	}
//	r.Start(f)
//	r.ReadDocument()
//	out.Finish()
//
// Four syntaxes are fixed by design (no arbitrary-syntax extensibility);
// JSON-LD is reachable only through the separate jsonldbridge package,
// which treats this package's event stream as its interchange format
// rather than becoming a fifth CORE syntax.
package rdf
