package havannah

const empty = -1

// Position is the board/game state the evaluator and searcher operate
// over: per-player stones, a dense available-move index, an incremental
// Zobrist hash, and one chainSet per player for winning-condition
// classification. It has no notion of time control or engine options;
// those live above it, in the driver.
type Position struct {
	occupant  [NumCells + 1]int8 // empty, or Player value
	toMove    Player
	moveCount int
	hash      Hash

	avail    []Cell
	cellSlot [NumCells + 1]int32

	chains [2]*chainSet
}

// NewPosition returns an empty board with White to move.
func NewPosition() *Position {
	p := &Position{
		toMove: White,
		chains: [2]*chainSet{newChainSet(), newChainSet()},
	}
	for i := range p.occupant {
		p.occupant[i] = empty
	}
	p.avail = make([]Cell, NumCells)
	for c := 1; c <= NumCells; c++ {
		p.avail[c-1] = Cell(c)
		p.cellSlot[c] = int32(c - 1)
	}
	return p
}

func (p *Position) ToMove() Player   { return p.toMove }
func (p *Position) Hash() Hash       { return p.hash }
func (p *Position) MoveCount() int   { return p.moveCount }
func (p *Position) CellIsEmpty(c Cell) bool {
	return c >= 1 && int(c) <= NumCells && p.occupant[c] == empty
}

// Occupant returns the player occupying a real cell, or (_, false) if
// empty.
func (p *Position) Occupant(c Cell) (Player, bool) {
	v := p.occupant[c]
	if v == empty {
		return 0, false
	}
	return Player(v), true
}

// NumAvailableMoves is the size of the dense MoveIndex space right now.
func (p *Position) NumAvailableMoves() MoveIndex { return MoveIndex(len(p.avail)) }

func (p *Position) MoveIndexToCell(m MoveIndex) Cell { return p.avail[m] }

func (p *Position) CellToMoveIndex(c Cell) MoveIndex { return MoveIndex(p.cellSlot[c]) }

// removeFromAvail swap-removes c from the dense available list and
// returns the (idx, displacedCell) pair a memento needs to reverse it.
func (p *Position) removeFromAvail(c Cell) (idx int32, displaced Cell) {
	idx = p.cellSlot[c]
	last := int32(len(p.avail)) - 1
	displaced = p.avail[last]
	p.avail[idx] = displaced
	p.cellSlot[displaced] = idx
	p.avail = p.avail[:last]
	p.cellSlot[c] = -1
	return idx, displaced
}

func (p *Position) restoreToAvail(c Cell, idx int32, displaced Cell) {
	p.avail = p.avail[:len(p.avail)+1]
	last := int32(len(p.avail)) - 1
	p.avail[last] = displaced
	p.cellSlot[displaced] = last
	p.avail[idx] = c
	p.cellSlot[c] = idx
}

// Memento is the information MakeMoveReversibly records so that a
// subsequent UndoAll can restore the exact prior position. Callers
// stack mementos LIFO, mirroring CounterGo's search.go MakeMove /
// UnmakeMove discipline where every field the move touched is saved
// before the move and restored after.
type Memento struct {
	cell        Cell
	player      Player
	prevHash    Hash
	prevToMove  Player
	availIdx    int32
	displaced   Cell
	chainMark   int
	chainRoot   int32
	won         WinningCondition
}

// MakeMoveReversibly places player's stone at c, updates the hash,
// chains, and move index, and returns a Memento that UndoAll will
// consume to reverse exactly this call. c must currently be empty. The
// caller names player explicitly rather than relying on whichever side
// ToMove reports — GTP's `play <color> <move>` names an explicit color
// too, and swap needs to replay a stone under the other player without
// disturbing turn order.
func (p *Position) MakeMoveReversibly(player Player, c Cell) Memento {
	m := Memento{
		cell:       c,
		player:     player,
		prevHash:   p.hash,
		prevToMove: p.toMove,
		chainMark:  p.chains[player].mark(),
	}

	p.occupant[c] = int8(player)
	m.availIdx, m.displaced = p.removeFromAvail(c)
	p.hash = ModifyZobristHash(p.hash, player, c)
	p.moveCount++
	p.toMove = Opponent(player)

	var neighborBuf [6]Cell
	neighbors := Neighbors(c, neighborBuf[:0])
	var friendly []Cell
	for _, n := range neighbors {
		if occ, ok := p.Occupant(n); ok && occ == player {
			friendly = append(friendly, n)
		}
	}

	root, formedCycle := p.chains[player].place(c, friendly)
	m.chainRoot = root
	m.won = p.classifyWin(player, root, formedCycle)

	return m
}

// WinningCondition reports what MakeMoveReversibly's move completed, if
// anything, without requiring the caller to keep its own copy of the
// classification result.
func (m Memento) WinningCondition() WinningCondition { return m.won }

// Cell is the cell MakeMoveReversibly placed this Memento's stone on.
func (m Memento) Cell() Cell { return m.cell }

// Player is the side MakeMoveReversibly placed this Memento's stone
// for. A caller implementing the pie-rule swap needs both this and Cell
// to undo the sole opening move and replay it under the other color.
func (m Memento) Player() Player { return m.player }

// UndoAll reverses a Memento previously returned by MakeMoveReversibly.
// Mementos must be undone in exact LIFO order relative to how they were
// made, the same contract CounterGo's alphaBeta recursion relies on for
// MakeMove/UnmakeMove pairs.
func (p *Position) UndoAll(m Memento) {
	p.toMove = m.prevToMove
	p.moveCount--
	p.hash = m.prevHash
	p.occupant[m.cell] = empty
	p.restoreToAvail(m.cell, m.availIdx, m.displaced)
	p.chains[m.player].undoTo(m.chainMark)
}

// MakePermanentMove plays a move for driving a real game forward (as
// opposed to search's throwaway exploration), returning the Memento
// the caller must hold onto for a later UndoPermanentMove. Use
// m.WinningCondition() to learn whether this move ended the game.
func (p *Position) MakePermanentMove(player Player, c Cell) Memento {
	return p.MakeMoveReversibly(player, c)
}

// UndoPermanentMove reverses the most recent MakePermanentMove. Callers
// (the driver's Undo operation) are responsible for keeping their own
// stack of Mementos across permanent moves, the same way UndoAll expects
// LIFO ordering within a search.
func (p *Position) UndoPermanentMove(m Memento) {
	p.UndoAll(m)
}

// classifyWin determines whether placing a stone that merged into
// chain root (possibly forming a cycle) wins the game for player.
func (p *Position) classifyWin(player Player, root int32, formedCycle bool) WinningCondition {
	cs := p.chains[player]
	if cs.touchedCornerCount(root) >= 2 {
		return Bridge
	}
	if cs.touchedEdgeCount(root) >= 3 {
		return Fork
	}
	if formedCycle && p.chainEnclosesCell(cs, root) {
		return Ring
	}
	return NoWinningCondition
}

// chainEnclosesCell reports whether the chain rooted at root forms a
// ring: a cycle that separates at least one cell from the board's
// outer boundary. It floods the complement of the chain inward from
// every boundary cell not in the chain; any cell left unreached is
// enclosed.
func (p *Position) chainEnclosesCell(cs *chainSet, root int32) bool {
	cells := cs.chainCells(root)
	inChain := make(map[Cell]bool, len(cells))
	for _, c := range cells {
		inChain[c] = true
	}

	visited := make(map[Cell]bool, NumCells)
	var stack []Cell
	for c := 1; c <= NumCells; c++ {
		cell := Cell(c)
		if inChain[cell] || visited[cell] {
			continue
		}
		if IsBoundary(cell) {
			visited[cell] = true
			stack = append(stack, cell)
		}
	}

	var nbuf [6]Cell
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range Neighbors(cur, nbuf[:0]) {
			if inChain[n] || visited[n] {
				continue
			}
			visited[n] = true
			stack = append(stack, n)
		}
	}

	for c := 1; c <= NumCells; c++ {
		cell := Cell(c)
		if !inChain[cell] && !visited[cell] {
			return true
		}
	}
	return false
}
