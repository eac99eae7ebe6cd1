package rdf

import (
	"fmt"
	"strings"

	"github.com/google/btree"
)

// IndexOrder names one of the four field permutations a Model can maintain
// a B-tree index over. The first index a Model is built with is its
// primary index and is never dropped; AddIndex adds the others lazily.
type IndexOrder uint8

const (
	OrderSPOG IndexOrder = iota
	OrderPOSG
	OrderOSPG
	OrderGSPO
)

func (o IndexOrder) String() string {
	switch o {
	case OrderSPOG:
		return "SPOG"
	case OrderPOSG:
		return "POSG"
	case OrderOSPG:
		return "OSPG"
	case OrderGSPO:
		return "GSPO"
	default:
		return "unknown"
	}
}

// modelEntry is the B-tree item: a Statement plus the key string for its
// tree's ordering, computed once at insertion.
type modelEntry struct {
	key  string
	stmt Statement
}

func (e *modelEntry) Less(other btree.Item) bool {
	return e.key < other.(*modelEntry).key
}

// ModelFlags configures a Model's duplicate-handling policy.
type ModelFlags struct {
	// DedupDefaultGraph merges a statement into the default graph's entry
	// even if an equal statement already exists under a different named
	// graph's index bucket — i.e. (s,p,o) is deduplicated across graphs
	// when HasGraph is false for the incoming statement and a prior
	// insertion of the same (s,p,o) exists anywhere. This matches the
	// resolved Open Question in DESIGN.md: yes, dedupe across graphs for
	// default-graph statements.
	DedupDefaultGraph bool
}

// Model is an in-memory, multi-index RDF store, backed by one or more
// github.com/google/btree.BTree instances keyed by different field
// permutations so Find can pick whichever index covers the most bound
// Pattern fields.
type Model struct {
	world   *World
	flags   ModelFlags
	indexes map[IndexOrder]*btree.BTree
	primary IndexOrder
	version uint64
	count   int
}

// NewModel constructs a Model whose primary index is primary. degree
// controls the B-tree's branching factor (0 or less selects 32).
func NewModel(world *World, primary IndexOrder, degree int, flags ModelFlags) *Model {
	if degree <= 0 {
		degree = 32
	}
	m := &Model{
		world:   world,
		flags:   flags,
		indexes: map[IndexOrder]*btree.BTree{primary: btree.New(degree)},
		primary: primary,
	}
	return m
}

// AddIndex builds and maintains an additional index in order, backfilling
// it from the primary index's current contents. A no-op if order is
// already indexed.
func (m *Model) AddIndex(order IndexOrder, degree int) {
	if _, ok := m.indexes[order]; ok {
		return
	}
	if degree <= 0 {
		degree = 32
	}
	tree := btree.New(degree)
	m.indexes[m.primary].Ascend(func(it btree.Item) bool {
		e := it.(*modelEntry)
		tree.ReplaceOrInsert(&modelEntry{key: indexKey(order, e.stmt), stmt: e.stmt})
		return true
	})
	m.indexes[order] = tree
}

// indexKey builds the composite B-tree key for stmt under order. Each
// field is rendered through Node.String() so keys sort lexicographically in
// a stable, collision-free way (URIs/literals/blanks never share a leading
// delimiter byte with each other's String() form).
func indexKey(order IndexOrder, stmt Statement) string {
	g := "\x00"
	if stmt.HasGraph {
		g = stmt.Graph.String()
	}
	var parts [4]string
	switch order {
	case OrderSPOG:
		parts = [4]string{stmt.Subject.String(), stmt.Predicate.String(), stmt.Object.String(), g}
	case OrderPOSG:
		parts = [4]string{stmt.Predicate.String(), stmt.Object.String(), stmt.Subject.String(), g}
	case OrderOSPG:
		parts = [4]string{stmt.Object.String(), stmt.Subject.String(), stmt.Predicate.String(), g}
	case OrderGSPO:
		parts = [4]string{g, stmt.Subject.String(), stmt.Predicate.String(), stmt.Object.String()}
	}
	return strings.Join(parts[:], "\x1f")
}

// Statement implements Sink by calling Add and returning its Status, so a
// Reader can stream straight into a Model via Inserter, or a Model can be
// used as a Sink directly.
func (m *Model) Statement(stmt Statement, _ StatementFlags) Status {
	return m.Add(stmt)
}

func (m *Model) Base(string) Status          { return StatusSuccess }
func (m *Model) Prefix(string, string) Status { return StatusSuccess }
func (m *Model) End(Node, EndKind) Status    { return StatusSuccess }

// Add inserts stmt into every maintained index. Adding a statement that
// already exists, exactly as given, is a no-op that reports StatusFailure
// rather than inserting a second time or double-counting it. If
// flags.DedupDefaultGraph is also set and stmt is in the default graph, an
// equal triple already present under a different named graph likewise
// suppresses the insert, reported as StatusIDClash since that case merges
// across graphs rather than colliding on an identical key.
func (m *Model) Add(stmt Statement) Status {
	primary := m.indexes[m.primary]
	key := indexKey(m.primary, stmt)
	if primary.Get(&modelEntry{key: key}) != nil {
		return StatusFailure
	}
	if !stmt.HasGraph && m.flags.DedupDefaultGraph {
		if m.tripleExistsAnyGraph(stmt.ToTriple()) {
			return StatusIDClash
		}
	}
	for order, tree := range m.indexes {
		tree.ReplaceOrInsert(&modelEntry{key: indexKey(order, stmt), stmt: stmt})
	}
	m.count++
	m.version++
	return StatusSuccess
}

func (m *Model) tripleExistsAnyGraph(triple Statement) bool {
	found := false
	m.Find(Pattern{Subject: &triple.Subject, Predicate: &triple.Predicate, Object: &triple.Object}, func(Statement) bool {
		found = true
		return false
	})
	return found
}

// Erase removes stmt from every maintained index, returning StatusNotFound
// if it was not present.
func (m *Model) Erase(stmt Statement) Status {
	removed := false
	for order, tree := range m.indexes {
		if it := tree.Delete(&modelEntry{key: indexKey(order, stmt)}); it != nil {
			removed = true
		}
	}
	if !removed {
		return StatusNotFound
	}
	m.count--
	m.version++
	return StatusSuccess
}

// Count returns the number of statements currently stored.
func (m *Model) Count() int { return m.count }

// Ask reports whether any statement matches p.
func (m *Model) Ask(p Pattern) bool {
	found := false
	m.Find(p, func(Statement) bool {
		found = true
		return false
	})
	return found
}

// CountMatching counts statements matching p without materializing them.
func (m *Model) CountMatching(p Pattern) int {
	n := 0
	m.Find(p, func(Statement) bool {
		n++
		return true
	})
	return n
}

// bestIndexFor picks whichever maintained index covers the most leading,
// contiguous bound fields of p in that index's key order, falling back to
// the primary index (a full scan with in-memory filtering) if no index's
// leading fields are bound at all.
func (m *Model) bestIndexFor(p Pattern) IndexOrder {
	mask := p.boundMask()
	best, bestScore := m.primary, -1
	for order := range m.indexes {
		score := leadingBoundScore(order, mask)
		if score > bestScore {
			best, bestScore = order, score
		}
	}
	return best
}

// leadingBoundScore counts how many of order's leading key fields are
// bound in mask (bit0=S,1=P,2=O,3=G).
func leadingBoundScore(order IndexOrder, mask uint8) int {
	var fieldOrder [4]uint8
	switch order {
	case OrderSPOG:
		fieldOrder = [4]uint8{0, 1, 2, 3}
	case OrderPOSG:
		fieldOrder = [4]uint8{1, 2, 0, 3}
	case OrderOSPG:
		fieldOrder = [4]uint8{2, 0, 1, 3}
	case OrderGSPO:
		fieldOrder = [4]uint8{3, 0, 1, 2}
	}
	score := 0
	for _, f := range fieldOrder {
		if mask&(1<<f) == 0 {
			break
		}
		score++
	}
	return score
}

// Find calls visit for every statement matching p, in the chosen index's
// key order, stopping early if visit returns false. Find picks whichever
// maintained index has the longest bound-field prefix, and falls back to
// scanning the primary index with in-memory filtering when no index's
// prefix is bound.
func (m *Model) Find(p Pattern, visit func(Statement) bool) {
	order := m.bestIndexFor(p)
	tree := m.indexes[order]
	mask := p.boundMask()
	if leadingBoundScore(order, mask) == 0 {
		tree.Ascend(func(it btree.Item) bool {
			e := it.(*modelEntry)
			if p.Matches(e.stmt) {
				return visit(e.stmt)
			}
			return true
		})
		return
	}
	lowKey, highKey := rangeKeysFor(order, p)
	tree.AscendRange(&modelEntry{key: lowKey}, &modelEntry{key: highKey}, func(it btree.Item) bool {
		e := it.(*modelEntry)
		if p.Matches(e.stmt) {
			return visit(e.stmt)
		}
		return true
	})
}

// rangeKeysFor builds a [low, high) key range covering every entry whose
// bound leading fields (per order) equal p's bound fields, by appending a
// sentinel byte higher than any real key suffix.
func rangeKeysFor(order IndexOrder, p Pattern) (string, string) {
	var bound [4]string
	var have [4]bool
	if p.Subject != nil {
		bound[0], have[0] = p.Subject.String(), true
	}
	if p.Predicate != nil {
		bound[1], have[1] = p.Predicate.String(), true
	}
	if p.Object != nil {
		bound[2], have[2] = p.Object.String(), true
	}
	if p.Graph != nil {
		bound[3], have[3] = p.Graph.String(), true
	}
	var fieldOrder [4]uint8
	switch order {
	case OrderSPOG:
		fieldOrder = [4]uint8{0, 1, 2, 3}
	case OrderPOSG:
		fieldOrder = [4]uint8{1, 2, 0, 3}
	case OrderOSPG:
		fieldOrder = [4]uint8{2, 0, 1, 3}
	case OrderGSPO:
		fieldOrder = [4]uint8{3, 0, 1, 2}
	}
	var prefix []string
	for _, f := range fieldOrder {
		if !have[f] {
			break
		}
		prefix = append(prefix, bound[f])
	}
	low := strings.Join(prefix, "\x1f")
	high := low + "\x1f\xff\xff\xff\xff"
	return low, high
}

// Get returns every statement matching p as a slice, a convenience wrapper
// around Find for callers that don't need streaming/early-exit.
func (m *Model) Get(p Pattern) []Statement {
	var out []Statement
	m.Find(p, func(s Statement) bool {
		out = append(out, s)
		return true
	})
	return out
}

// GetStatement returns the first statement matching p, or StatusNotFound.
func (m *Model) GetStatement(p Pattern) (Statement, Status) {
	var result Statement
	found := false
	m.Find(p, func(s Statement) bool {
		result, found = s, true
		return false
	})
	if !found {
		return Statement{}, StatusNotFound
	}
	return result, StatusSuccess
}

// Version returns a counter incremented on every Add/Erase, so a caller
// holding results from an earlier query can detect that the Model changed.
// Find and Get return slices; no iterator type checks this counter.
func (m *Model) Version() uint64 { return m.version }

// WriteTo streams every statement into sink in SPOG order when that index
// is maintained (statements grouped by subject, then predicate), otherwise
// in the primary index's order, so a Writer receiving them gets ','/';'
// grouping for free.
func (m *Model) WriteTo(sink Sink) Status {
	order := m.primary
	if _, ok := m.indexes[OrderSPOG]; ok {
		order = OrderSPOG
	}
	tree := m.indexes[order]
	var status Status = StatusSuccess
	tree.Ascend(func(it btree.Item) bool {
		e := it.(*modelEntry)
		if st := sink.Statement(e.stmt, StatementFlags{}); !st.OK() {
			status = st
			return false
		}
		return true
	})
	return status
}

// errIndexNotMaintained is returned by operations that require an index
// this Model was not configured to maintain.
var errIndexNotMaintained = fmt.Errorf("%w: index not maintained by this Model", ErrBadArg)

// RequireIndex reports an error if order is not one of this Model's
// maintained indexes, for callers that want to fail fast on
// misconfiguration rather than silently falling back to a full scan.
func (m *Model) RequireIndex(order IndexOrder) error {
	if _, ok := m.indexes[order]; !ok {
		return errIndexNotMaintained
	}
	return nil
}
