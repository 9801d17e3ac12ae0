package havannah

// chainSet is a per-player union-find over real cells, augmented with
// per-root bitmasks of which virtual edges and corners the chain has
// touched. It underlies the bridge and fork classifiers: a chain wins
// by bridge once its touchedCorners bitmask has two bits set, and by
// fork once its touchedEdges bitmask has three bits set.
//
// Every mutation is logged so Position.UndoAll can roll a chainSet back
// exactly, the same "record enough to reverse" discipline CounterGo's
// move-making applies to castling rights and en-passant state.
type chainSet struct {
	parent         [NumCells + 1]int32
	rank           [NumCells + 1]uint8
	touchedEdges   [NumCells + 1]uint8
	touchedCorners [NumCells + 1]uint8
	inChain        [NumCells + 1]bool
	log            []chainLogEntry
}

type chainLogEntry struct {
	cell           int32 // cell whose parent changed, or the placed cell's own entry
	prevParent     int32
	prevRank       uint8
	isPlacement    bool // true: this entry clears inChain/touchedEdges/touchedCorners on undo
	rootTouchEdge  uint8
	rootTouchCorn  uint8
	rootCellOfEdit int32 // root cell whose touched bitmasks were overwritten, 0 if none
}

func newChainSet() *chainSet {
	return &chainSet{}
}

func (s *chainSet) find(c Cell) int32 {
	root := int32(c)
	for s.parent[root] != 0 {
		root = s.parent[root]
	}
	return root
}

func (s *chainSet) findCompress(c Cell) int32 {
	// Path compression is skipped: with per-move undo logging, a
	// compressed path is one more edit we'd have to log and reverse
	// for no asymptotic benefit at this board size (<= 169 cells).
	return s.find(c)
}

// mark returns the current log length, to be passed to undoTo later.
func (s *chainSet) mark() int { return len(s.log) }

// undoTo reverses every logged mutation back to the given mark, in LIFO
// order, restoring the chainSet to its exact prior state.
func (s *chainSet) undoTo(mark int) {
	for len(s.log) > mark {
		e := s.log[len(s.log)-1]
		s.log = s.log[:len(s.log)-1]
		s.parent[e.cell] = e.prevParent
		s.rank[e.cell] = e.prevRank
		if e.rootCellOfEdit != 0 {
			s.touchedEdges[e.rootCellOfEdit] = e.rootTouchEdge
			s.touchedCorners[e.rootCellOfEdit] = e.rootTouchCorn
		}
		if e.isPlacement {
			s.inChain[e.cell] = false
			s.touchedEdges[e.cell] = 0
			s.touchedCorners[e.cell] = 0
		}
	}
}

func (s *chainSet) logPlacement(c Cell) {
	s.log = append(s.log, chainLogEntry{cell: int32(c), prevParent: 0, prevRank: 0, isPlacement: true})
}

// union merges the chains rooted at a and b, OR-ing their touch
// bitmasks together, and logs enough to reverse the merge.
func (s *chainSet) union(a, b Cell) int32 {
	ra, rb := s.find(a), s.find(b)
	if ra == rb {
		return ra
	}
	if s.rank[ra] < s.rank[rb] {
		ra, rb = rb, ra
	}
	s.log = append(s.log, chainLogEntry{
		cell:           rb,
		prevParent:     s.parent[rb],
		prevRank:       s.rank[rb],
		rootCellOfEdit: ra,
		rootTouchEdge:  s.touchedEdges[ra],
		rootTouchCorn:  s.touchedCorners[ra],
	})
	s.parent[rb] = ra
	if s.rank[ra] == s.rank[rb] {
		s.rank[ra]++
	}
	s.touchedEdges[ra] |= s.touchedEdges[rb]
	s.touchedCorners[ra] |= s.touchedCorners[rb]
	return ra
}

// place adds c as a new singleton chain, unions it with every same-
// player neighbor chain already present, and reports whether doing so
// created a cycle (i.e. c has two or more neighbors already in the
// same chain before this call).
func (s *chainSet) place(c Cell, friendlyNeighbors []Cell) (root int32, formedCycle bool) {
	s.logPlacement(c)
	s.inChain[c] = true
	if e := EdgeOf(c); e >= 0 {
		s.touchedEdges[c] = 1 << uint(e)
	}
	if k := CornerOf(c); k >= 0 {
		s.touchedCorners[c] = 1 << uint(k)
	}

	root = int32(c)
	seenRoots := map[int32]bool{int32(c): true}
	for _, n := range friendlyNeighbors {
		nr := s.find(n)
		if seenRoots[nr] {
			formedCycle = true
		}
		seenRoots[nr] = true
		root = s.union(Cell(root), n)
	}
	return root, formedCycle
}

func (s *chainSet) touchedEdgeCount(root int32) int {
	return popcount6(s.touchedEdges[root])
}

func (s *chainSet) touchedCornerCount(root int32) int {
	return popcount6(s.touchedCorners[root])
}

func popcount6(mask uint8) int {
	n := 0
	for mask != 0 {
		n += int(mask & 1)
		mask >>= 1
	}
	return n
}

// chainCells collects every real cell currently unioned under root.
// O(NumCells); called only on the rare move that forms a cycle, to run
// the ring-enclosure flood fill.
func (s *chainSet) chainCells(root int32) []Cell {
	var out []Cell
	for c := 1; c <= NumCells; c++ {
		if s.inChain[c] && s.find(Cell(c)) == root {
			out = append(out, Cell(c))
		}
	}
	return out
}
