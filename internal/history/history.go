// Package history implements a bounded, snapshot-based undo/redo stack over a
// page document. Entries are full copies of the section sequence, not diffs:
// documents are tens of sections, so whole snapshots trade a little memory for
// the absence of patch-conflict bugs.
package history

import (
	"github.com/emrgen/storefront/internal/document"
)

// DefaultLimit caps the stack depth. Once exceeded the oldest entry is
// evicted, never an error.
const DefaultLimit = 50

// History holds the snapshot stack and a cursor pointing at the currently
// active entry. Not safe for concurrent use; the editor session serializes
// access.
type History struct {
	entries  []document.Sections
	cursor   int
	limit    int
	skipNext bool
}

// New creates an empty history with the given depth cap. Non-positive limits
// fall back to DefaultLimit.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}

	return &History{
		entries: make([]document.Sections, 0),
		cursor:  -1,
		limit:   limit,
	}
}

// Record pushes a snapshot. If prior undos moved the cursor off the end, the
// redone future is truncated first: a new edit discards it. When the stack
// overflows the cap, the oldest entry is evicted and the cursor shifts.
//
// A record arriving while the suppression latch is armed is swallowed and the
// latch cleared; this keeps undo/redo from re-recording their own side effect.
func (h *History) Record(snapshot document.Sections) {
	if h.skipNext {
		h.skipNext = false
		return
	}

	if h.cursor < len(h.entries)-1 {
		h.entries = h.entries[:h.cursor+1]
	}

	h.entries = append(h.entries, snapshot.Clone())
	h.cursor++

	if len(h.entries) > h.limit {
		h.entries = h.entries[1:]
		h.cursor--
	}
}

// Undo steps the cursor back and returns the now-active snapshot. Returns
// false at the bottom of the stack; the caller leaves state unchanged.
func (h *History) Undo() (document.Sections, bool) {
	if h.cursor <= 0 {
		return nil, false
	}

	h.cursor--
	h.skipNext = true

	return h.entries[h.cursor].Clone(), true
}

// Redo steps the cursor forward and returns the now-active snapshot.
func (h *History) Redo() (document.Sections, bool) {
	if h.cursor >= len(h.entries)-1 {
		return nil, false
	}

	h.cursor++
	h.skipNext = true

	return h.entries[h.cursor].Clone(), true
}

// Reset clears history down to a single entry. Used when a document is freshly
// loaded from the server, so server-fetched state is never an undoable past.
func (h *History) Reset(initial document.Sections) {
	h.entries = []document.Sections{initial.Clone()}
	h.cursor = 0
	h.skipNext = false
}

func (h *History) CanUndo() bool {
	return h.cursor > 0
}

func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

// Len returns the number of entries currently on the stack.
func (h *History) Len() int {
	return len(h.entries)
}
