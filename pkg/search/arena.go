package search

import "github.com/mciura/antares/pkg/havannah"

// CellEval pairs a candidate cell with its current search value.
// ZerothCell denotes the pass/null child.
type CellEval struct {
	Cell  havannah.Cell
	Value int
}

// arena is the searcher-private, append-only pool of scored-move
// vectors: vectors are appended once, then mutated in place (partial
// sort, occasional growth for the defender's lazily-grown pass child),
// and never freed until the searcher itself is discarded. Index 0 is
// the reserved "not yet expanded" id.
type arena struct {
	vectors [][]CellEval
}

func newArena() *arena {
	a := &arena{vectors: make([][]CellEval, 1, 1<<20)}
	a.vectors[0] = nil
	return a
}

// Alloc appends a new vector and returns its id.
func (a *arena) Alloc(v []CellEval) uint32 {
	a.vectors = append(a.vectors, v)
	return uint32(len(a.vectors) - 1)
}

// Get returns the vector named by id. id must be nonzero and live.
func (a *arena) Get(id uint32) []CellEval { return a.vectors[id] }

// Set replaces the vector named by id in place (used after an in-place
// sort or push_back reallocates the backing slice).
func (a *arena) Set(id uint32, v []CellEval) { a.vectors[id] = v }
