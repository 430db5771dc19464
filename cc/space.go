package cc

import "fmt"

// SpaceConfig configures a Space. The zero value is ready to use.
type SpaceConfig struct {
	// Name labels the space in String() output; purely diagnostic.
	Name string
}

// Stats is a snapshot of a Space's lifetime counters, analogous to the
// teacher repo's *Statistics structs (GCAvoidanceStatistics,
// RefCountStatistics): a plain value type a caller can log, export as
// metrics, or assert against in tests, rather than a side channel the
// library writes to on its own.
type Stats struct {
	Created             int64 // Objects ever created in this space.
	ReclaimedByRefCount int64 // Objects freed by ordinary ref-count decay.
	ReclaimedByCollect  int64 // Objects freed by a CollectCycles call.
	Collections         int64 // Number of CollectCycles calls made.
	LastCollected       int   // Objects reclaimed by the most recent CollectCycles call.
}

// Space owns a set of tracked blocks and the single collector instance that
// can reclaim cycles among them. A Space must be used from a single
// logical owner at a time — see CollectCycles for what happens when that
// invariant is violated from within a destructor.
type Space struct {
	config SpaceConfig

	// head is the sentinel of the circular, doubly-linked list of tracked
	// headers. An empty list has head.next == head.prev == &head.
	head header

	trackedCount int
	collecting   bool
	closed       bool

	stats Stats

	nextDebugID int
}

// NewSpace constructs an empty Space ready to track objects.
func NewSpace(config SpaceConfig) *Space {
	sp := &Space{config: config}
	sp.head.next = &sp.head
	sp.head.prev = &sp.head

	return sp
}

func (sp *Space) nextDebugName() int {
	id := sp.nextDebugID
	sp.nextDebugID++

	return id
}

// CountTracked returns the number of blocks currently linked into this
// space's list — every tracked-type block ever created here, minus every one
// that has since been unlinked by an ordinary Release or by CollectCycles.
func (sp *Space) CountTracked() int {
	return sp.trackedCount
}

// Stats returns a snapshot of this space's lifetime counters.
func (sp *Space) Stats() Stats {
	return sp.stats
}

// Close runs one final CollectCycles pass to break any cycles still held
// only by this space, per spec: after Close, CountTracked must be zero
// unless some block is still externally referenced by a live Cc handle, in
// which case that block is simply left allocated (a programmer-visible
// leak, not a library error). Close is idempotent.
func (sp *Space) Close() {
	if sp.closed {
		return
	}

	sp.closed = true
	sp.CollectCycles()
}

func (sp *Space) String() string {
	name := sp.config.Name
	if name == "" {
		name = "default"
	}

	return fmt.Sprintf("Space{%s, tracked: %d, collections: %d, reclaimed: %d+%d}",
		name, sp.trackedCount, sp.stats.Collections, sp.stats.ReclaimedByRefCount, sp.stats.ReclaimedByCollect)
}
