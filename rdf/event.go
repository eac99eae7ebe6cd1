package rdf

// EventKind tags the variant of an Event flowing through a Sink chain.
type EventKind uint8

const (
	// EventBase is emitted when the document's base URI changes.
	EventBase EventKind = iota
	// EventPrefix is emitted when a prefix is (re)declared.
	EventPrefix
	// EventStatement carries one parsed or synthesized Statement.
	EventStatement
	// EventEnd closes the most recently opened anonymous-blank, list or
	// graph context.
	EventEnd
)

// StatementFlags are per-statement abbreviation markers a Reader (or a
// Model-range Writer) attaches to an EventStatement so the Writer knows
// which shorthand syntax produced/should produce it.
type StatementFlags struct {
	EmptySubject     bool
	StartAnonSubject bool
	StartAnonObject  bool
	StartListSubject bool
	StartListObject  bool
	TerseSubject     bool
	TerseObject      bool

	// OpenAnon and OpenList mark the first Statement whose Subject is a
	// freshly minted "[...]"/"(...)" blank: the Writer uses them to start
	// buffering that blank's own statements instead of emitting them at
	// the current nesting level, so it can later splice the finished
	// "[...]"/"(...)" text in at the StartAnon*/StartList* splice point
	// above. They carry no meaning for a caller driving a Sink directly;
	// only the Reader sets them.
	OpenAnon bool
	OpenList bool
}

// Event is the tagged union flowing between a Reader, Filter/Tee/
// Canonicalizer sinks, a Writer, and an Inserter. Only the fields relevant
// to Kind are meaningful.
type Event struct {
	Kind EventKind

	// EventBase
	BaseURI string

	// EventPrefix
	PrefixName string
	PrefixNS   string

	// EventStatement
	Statement Statement
	StmtFlags StatementFlags

	// EventEnd — the node whose anonymous/list/graph context is closing
	// (the blank node for [ ... ] and ( ... ), the graph node for a TriG
	// block). EndKind further disambiguates for sinks that care.
	EndNode Node
	EndKind EndKind
}

// EndKind disambiguates what kind of context an EventEnd is closing.
type EndKind uint8

const (
	EndAnonymous EndKind = iota
	EndList
	EndGraph
)

// Sink is the uniform interface for consumers of RDF events. Every
// pipeline element — Writer, Inserter, Filter, Tee, Canonicalizer —
// implements it; composition is by wrapping one Sink inside another.
type Sink interface {
	// Base handles an EventBase.
	Base(uri string) Status
	// Prefix handles an EventPrefix.
	Prefix(name, namespace string) Status
	// Statement handles an EventStatement.
	Statement(stmt Statement, flags StatementFlags) Status
	// End handles an EventEnd.
	End(node Node, kind EndKind) Status
}

// Dispatch sends ev to sink by Kind, a convenience for callers holding a
// generic Event (e.g. Tee, or a Reader replaying buffered events).
func Dispatch(sink Sink, ev Event) Status {
	switch ev.Kind {
	case EventBase:
		return sink.Base(ev.BaseURI)
	case EventPrefix:
		return sink.Prefix(ev.PrefixName, ev.PrefixNS)
	case EventStatement:
		return sink.Statement(ev.Statement, ev.StmtFlags)
	case EventEnd:
		return sink.End(ev.EndNode, ev.EndKind)
	default:
		return StatusBadArg
	}
}

// NopSink implements Sink by accepting and discarding every event,
// returning StatusSuccess. Embed it to get default no-op handling of
// events a Sink doesn't care about.
type NopSink struct{}

func (NopSink) Base(string) Status                    { return StatusSuccess }
func (NopSink) Prefix(string, string) Status           { return StatusSuccess }
func (NopSink) Statement(Statement, StatementFlags) Status { return StatusSuccess }
func (NopSink) End(Node, EndKind) Status               { return StatusSuccess }
