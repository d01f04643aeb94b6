// Package conversations keeps the transcript a session builds its requests
// from.
package conversations

import (
	"sync"

	"github.com/jimli1231/eletron-vrm/core/llms"
	"github.com/jinzhu/copier"
)

// Reader exposes the transcript to collaborators that must not change it.
type Reader interface {
	// Snapshot returns the turns recorded so far. Ordering: oldest -> newest.
	Snapshot() []llms.Turn
	Len() int
}

var _ Reader = (*History)(nil)

// History is an append-only log of conversation turns. Turns are never
// modified once recorded, the only way to remove them is Clear.
//
// History is safe for concurrent use.
type History struct {
	mu    sync.RWMutex
	turns []llms.Turn
	// generation changes on every Clear so a call can tell whether the
	// transcript it started from is still the current one.
	generation uint64
}

func NewHistory(turns ...llms.Turn) *History {
	return &History{turns: cloneTurns(turns)}
}

func (h *History) RecordUser(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, llms.NewUserTurn(text))
}

func (h *History) RecordModel(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, llms.NewModelTurn(text))
}

// RecordModelAt appends a model turn only if the history was not cleared
// since generation was read. It reports whether the turn was recorded.
func (h *History) RecordModelAt(generation uint64, text string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.generation != generation {
		return false
	}
	h.turns = append(h.turns, llms.NewModelTurn(text))
	return true
}

// Clear empties the history atomically.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
	h.generation++
}

// Generation identifies the current transcript. It changes on every Clear.
func (h *History) Generation() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.generation
}

// Snapshot returns a copy of all recorded turns that later calls to the
// History never affect.
func (h *History) Snapshot() []llms.Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return cloneTurns(h.turns)
}

// SnapshotAt is Snapshot together with the generation it was taken at.
func (h *History) SnapshotAt() ([]llms.Turn, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return cloneTurns(h.turns), h.generation
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}

// Values iterates over a snapshot of the history, oldest first.
func (h *History) Values(yield func(llms.Turn) bool) {
	for _, turn := range h.Snapshot() {
		if !yield(turn) {
			return
		}
	}
}

// RValues iterates over a snapshot of the history, newest first.
func (h *History) RValues(yield func(llms.Turn) bool) {
	snapshot := h.Snapshot()
	for i := len(snapshot) - 1; i >= 0; i-- {
		if !yield(snapshot[i]) {
			return
		}
	}
}

func cloneTurns(turns []llms.Turn) []llms.Turn {
	clone := make([]llms.Turn, 0, len(turns))
	if err := copier.CopyWithOption(&clone, turns, copier.Option{DeepCopy: true}); err != nil {
		// Turns only hold strings.
		clone = append(make([]llms.Turn, 0, len(turns)), turns...)
	}
	if clone == nil {
		clone = []llms.Turn{}
	}
	return clone
}
