package cc

import (
	"fmt"

	"github.com/orizon-lang/ccbox/cc/internal/tracelog"
)

// CollectCycles runs the trial-deletion algorithm against this space's list
// of tracked blocks and returns the number reclaimed.
//
// The algorithm, in order:
//
//  1. Snapshot: copy every block's real ref_count into a scratch trial
//     count and mark it COLLECTING.
//  2. Subtract: call Trace on every block; each edge to a COLLECTING target
//     decrements that target's trial count by one. What remains on a block
//     is the number of references held from outside the tracked set.
//  3. Revive: any still-COLLECTING block with a positive trial count is
//     reachable from outside; clear its flag and recursively do the same to
//     everything it points to, reviving a zeroed trial count to one along
//     the way. What is still COLLECTING afterward is genuinely unreachable.
//  4. Stage: pin every still-COLLECTING block by adding one unit to its real
//     ref_count and collecting it into a to-drop list. This is what lets a
//     destructor in step 5 drop a handle to a doomed peer without freeing it
//     out from under the loop.
//  5. Destroy: run each staged block's destructor (not a full Release — the
//     block itself is kept alive by the Pass 4 pin). Assert afterward that
//     every staged block's real ref_count is back down to exactly 1 — the
//     pin and nothing else — or the Trace/Destroy implementation is buggy.
//  6. Release: drop the Pass 4 pin on every staged block. Each now reaches
//     zero and is unlinked; because valueDropped is already set from step 5,
//     the destructor does not run a second time.
//
// There is no separate "restore list shape" pass here: the reference
// implementation repurposes the prev pointer itself as scratch storage
// during Passes 1-3 and must rebuild it before touching the list again.
// This port keeps trialCount/collecting as ordinary header fields instead
// (see header.go), so prev/next are never disturbed and nothing needs
// restoring — a representation choice the spec explicitly allows, and one
// that is close to mandatory in Go: the real garbage collector scans
// pointer-typed struct fields precisely and does not tolerate one holding a
// tagged integer instead of a valid pointer or nil.
//
// CollectCycles is not reentrant: calling it again from within a destructor
// it is itself running (directly, or transitively through a dropped handle)
// panics rather than corrupting the list, since the space is single-
// threaded by design (see Space) and there is no safe way to
// interleave two trial-deletion passes over the same list.
func (sp *Space) CollectCycles() int {
	if sp.collecting {
		panic("cc: re-entrant CollectCycles call from within a destructor")
	}

	sp.collecting = true
	defer func() { sp.collecting = false }()

	tracelog.Log("collect", "collect_cycles")

	snapshotRefs(&sp.head)
	subtractInternalEdges(&sp.head)
	reviveReachable(&sp.head)

	toDrop := stageUnreachable(&sp.head)

	if tracelog.Capturing() {
		tracelog.Log("collect", fmt.Sprintf("%d unreachable objects", len(toDrop)))
	}

	for _, h := range toDrop {
		h.dyn.destroy()
		h.valueDropped = true
	}

	for _, h := range toDrop {
		if h.refCount != 1 {
			panic("cc: buggy trace or drop implementation: unexpected ref count after collecting cycle")
		}
	}

	for _, h := range toDrop {
		releaseHeader(h, true)
	}

	sp.stats.Collections++
	sp.stats.LastCollected = len(toDrop)

	return len(toDrop)
}

// snapshotRefs is Pass 1.
func snapshotRefs(list *header) {
	visitList(list, func(h *header) {
		h.trialCount = int64(h.refCount)
		h.collecting = true
	})
}

// subtractInternalEdges is Pass 2.
func subtractInternalEdges(list *header) {
	visitList(list, func(h *header) {
		h.dyn.traverse(func(target *header) {
			if target.collecting {
				target.trialCount--
			}
		})
	})
}

// reviveReachable is Pass 3.
func reviveReachable(list *header) {
	var revive func(h *header)

	revive = func(h *header) {
		if !h.collecting {
			return
		}

		h.collecting = false

		if h.trialCount == 0 {
			h.trialCount = 1 // Revived: something outside the doomed set reaches it.
		}

		h.dyn.traverse(revive)
	}

	visitList(list, func(h *header) {
		if h.collecting && h.trialCount > 0 {
			h.collecting = false
			h.dyn.traverse(revive)
		}
	})
}

// stageUnreachable is Pass 4: pin every block still marked COLLECTING (the
// genuinely unreachable set) and return them as a slice, since the list
// itself is not touched until Pass 6's releaseHeader calls unlink it block
// by block.
func stageUnreachable(list *header) []*header {
	var toDrop []*header

	visitList(list, func(h *header) {
		if h.unreachable() {
			h.refCount++ // gc_clone: pin without going through an external handle.
			toDrop = append(toDrop, h)
		}
	})

	return toDrop
}
