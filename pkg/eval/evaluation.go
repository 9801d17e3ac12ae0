// Package eval computes, for every currently empty cell, a lower bound
// on the number of additional stones one side must place to complete
// any of Havannah's three winning structures. It is a pure function of
// a position and a side; it holds no state of its own across calls.
package eval

import "github.com/mciura/antares/pkg/havannah"

// MaxDistance mirrors havannah.MaxDistance so callers outside this
// package don't need to import havannah just to recognize "unreachable".
const MaxDistance = havannah.MaxDistance

// Evaluation is a dense MoveIndex -> int map, one entry per cell the
// position currently lists as available. It is stack-local to whoever
// builds it: the evaluator itself, and the search driver when it
// combines two searchers' root evaluations.
type Evaluation struct {
	pos    *havannah.Position
	values []int
}

// New builds an Evaluation sized to pos's current move count, with
// every cell set to MaxDistance.
func New(pos *havannah.Position) *Evaluation {
	e := &Evaluation{
		pos:    pos,
		values: make([]int, pos.NumAvailableMoves()),
	}
	e.SetAllMovesTo(MaxDistance)
	return e
}

// SetAllMovesTo resets every cell in the map to v.
func (e *Evaluation) SetAllMovesTo(v int) {
	for i := range e.values {
		e.values[i] = v
	}
}

// Get returns the value stored for MoveIndex m.
func (e *Evaluation) Get(m havannah.MoveIndex) int { return e.values[m] }

// Set stores v for MoveIndex m.
func (e *Evaluation) Set(m havannah.MoveIndex, v int) { e.values[m] = v }

// GetCell and SetCell are Get/Set addressed by Cell rather than
// MoveIndex, for callers (the search driver's combine, fillEvaluation,
// the engine's evaluation rendering) that think in cells.
func (e *Evaluation) GetCell(c havannah.Cell) int {
	return e.values[e.pos.CellToMoveIndex(c)]
}

func (e *Evaluation) SetCell(c havannah.Cell, v int) {
	e.values[e.pos.CellToMoveIndex(c)] = v
}

// Len is the number of currently available cells this map covers.
func (e *Evaluation) Len() int { return len(e.values) }

// SetToMinimum sets every cell of e to min(a[cell], b[cell]). e may
// alias a or b.
func (e *Evaluation) SetToMinimum(a, b *Evaluation) {
	for i := range e.values {
		v := a.values[i]
		if b.values[i] < v {
			v = b.values[i]
		}
		e.values[i] = v
	}
}

// SetToSum sets every cell of e to the saturated sum a[cell]+b[cell],
// capped at MaxDistance. e may alias a or b.
func (e *Evaluation) SetToSum(a, b *Evaluation) {
	for i := range e.values {
		v := a.values[i] + b.values[i]
		if v > MaxDistance {
			v = MaxDistance
		}
		e.values[i] = v
	}
}

// SetToCombination sets every cell c of e to the number of additional
// stones needed to connect both chainA and chainB through c: the
// two-distance from each target, summed, less one when c is a member
// of both chains already (the stone that would otherwise be counted as
// "still needed" by both BFS passes is in fact the same, single stone).
//
// The exact subtraction rule is not preserved anywhere in the
// reference material available here; this is the natural reading of
// "how many more stones to join both targets, subtracting a
// double-counting correction when a cell lies in both chains" and is
// recorded as a design decision in DESIGN.md.
func (e *Evaluation) SetToCombination(bfsA, bfsB havannah.BfsResult, chainA, chainB []havannah.Cell) {
	inA := cellSet(chainA)
	inB := cellSet(chainB)
	for m := 0; m < len(e.values); m++ {
		c := e.pos.MoveIndexToCell(havannah.MoveIndex(m))
		da := bfsA.Distance(c)
		db := bfsB.Distance(c)
		if da >= MaxDistance || db >= MaxDistance {
			e.values[m] = MaxDistance
			continue
		}
		v := da + db
		if inA[c] && inB[c] {
			v--
		}
		if v < 0 {
			v = 0
		}
		if v > MaxDistance {
			v = MaxDistance
		}
		e.values[m] = v
	}
}

func cellSet(cells []havannah.Cell) map[havannah.Cell]bool {
	s := make(map[havannah.Cell]bool, len(cells))
	for _, c := range cells {
		s[c] = true
	}
	return s
}

// GetBaselineDistance returns the minimum value across the map: the
// best achievable moves-to-win estimate from the current position.
func (e *Evaluation) GetBaselineDistance() int {
	best := MaxDistance
	for _, v := range e.values {
		if v < best {
			best = v
		}
	}
	return best
}

// GetEvaluation is GetBaselineDistance under the name the engine uses
// for the scalar it reports to the front end.
func (e *Evaluation) GetEvaluation() int { return e.GetBaselineDistance() }

// GoalRing, GoalBridge, GoalFork, GoalTotal name the four named partial
// goals EvaluatePartialGoal accepts alongside a concrete endpoint pair;
// they are encoded the way antares.cc's Frontend::GetConnection encodes
// them: cell1 == ZerothCell and cell2 either ZerothCell itself (ring) or
// one of three small negative tags, -13..-15, distinct from any
// edge/corner cell (-1..-12 are already taken).
const (
	GoalRing   = havannah.Cell(0)
	GoalBridge = havannah.Cell(-13)
	GoalFork   = havannah.Cell(-14)
	GoalTotal  = havannah.Cell(-15)
)

// EvaluateRingFrames refines evaluation with the player's ring
// templates: for each frame of n empty cells whose occupation would
// close a ring, every remaining cell gets min(current, n-1).
// pkg/havannah's RingFrame enumerates only the minimal hexagon template
// (see its doc comment); each frame's remaining-cell count stands in
// for the general "n empty cells" case in the degenerate scenario
// where there is exactly one topological way to close that hexagon.
func EvaluateRingFrames(pos *havannah.Position, player havannah.Player, evaluation *Evaluation) {
	count := pos.RingFrameCount(player)
	for i := 0; i < count; i++ {
		frame := pos.RingFrame(player, i)
		if len(frame) == 0 {
			continue
		}
		movesToWin := len(frame) - 1
		for _, c := range frame {
			if v := evaluation.GetCell(c); movesToWin < v {
				evaluation.SetCell(c, movesToWin)
			}
		}
	}
}

// EvaluateBridgeFrames refines evaluation with the two-distance
// combination of every distinct pair of the player's six corner
// virtual chains.
func EvaluateBridgeFrames(pos *havannah.Position, player havannah.Player, evaluation *Evaluation) {
	var fromCorner [6]havannah.BfsResult
	for i := 0; i < 6; i++ {
		fromCorner[i] = pos.ComputeTwoDistance(player, havannah.CornerCells(i))
	}
	tmp := New(pos)
	for i := 0; i < 6; i++ {
		for j := i + 1; j < 6; j++ {
			tmp.SetToCombination(fromCorner[i], fromCorner[j], havannah.CornerCells(i), havannah.CornerCells(j))
			evaluation.SetToMinimum(evaluation, tmp)
		}
	}
}

// forkPartitions is the fixed set of three ways to pair up the board's
// six edges into three opposite-ish pairs, following the reference
// engine's EvaluateForkFrames exactly: partition 0 pairs adjacent
// indices (0,1)(2,3)(4,5), and partitions 1 and 2 index the
// edge-distance maps via the rotated patterns that engine hard-codes.
// The controlling invariant is that the overall fork result must stay
// invariant under 60-degree board rotation; this exact triple of
// partitions is what achieves that, not an arbitrary choice.
var forkPartitions = [3][3][2]int{
	{{0, 1}, {2, 3}, {4, 5}},
	{{0, 4}, {2, 1}, {5, 3}},
	{{0, 3}, {2, 4}, {5, 1}},
}

// EvaluateForkFrames refines evaluation with, for every one of the
// player's current chains, the cheapest way to connect that chain
// outward to three edges via one of the three fixed partitions of the
// six edges into pairs.
func EvaluateForkFrames(pos *havannah.Position, player havannah.Player, evaluation *Evaluation) {
	chains := pos.GetCurrentChains(player)
	if len(chains) == 0 {
		return
	}
	var fromEdge [6]havannah.BfsResult
	for i := 0; i < 6; i++ {
		fromEdge[i] = pos.ComputeTwoDistance(player, havannah.EdgeCells(i))
	}
	for _, chain := range chains {
		fromCenter := pos.ComputeTwoDistance(player, chain.Cells)
		var fromOutside [6]*Evaluation
		for j := 0; j < 6; j++ {
			fromOutside[j] = New(pos)
			fromOutside[j].SetToCombination(fromCenter, fromEdge[j], chain.Cells, havannah.EdgeCells(j))
		}
		best := New(pos)
		a, b, partSum := New(pos), New(pos), New(pos)
		for _, partition := range forkPartitions {
			a.SetToMinimum(fromOutside[partition[0][0]], fromOutside[partition[0][1]])
			b.SetToMinimum(fromOutside[partition[1][0]], fromOutside[partition[1][1]])
			partSum.SetToSum(a, b)
			a.SetToMinimum(fromOutside[partition[2][0]], fromOutside[partition[2][1]])
			partSum.SetToSum(partSum, a)
			best.SetToMinimum(best, partSum)
		}
		evaluation.SetToMinimum(evaluation, best)
	}
}

// EvaluateForPlayer is the full evaluator: the pointwise minimum
// across fork, bridge, and ring goal families.
func EvaluateForPlayer(pos *havannah.Position, player havannah.Player) *Evaluation {
	evaluation := New(pos)
	EvaluateForkFrames(pos, player, evaluation)
	EvaluateBridgeFrames(pos, player, evaluation)
	EvaluateRingFrames(pos, player, evaluation)
	return evaluation
}

// EvaluatePartialGoal restricts evaluation to a single named goal
// (ring, bridge, fork, total) or to a specific pair of concrete
// endpoints (real cells or edge/corner virtual chains), mirroring
// antares.cc's Engine::EvaluatePartialGoal dispatch exactly.
func EvaluatePartialGoal(pos *havannah.Position, player havannah.Player, cell1, cell2 havannah.Cell) *Evaluation {
	switch {
	case cell1 == GoalRing && cell2 == GoalRing:
		evaluation := New(pos)
		EvaluateRingFrames(pos, player, evaluation)
		return evaluation
	case cell1 == GoalRing && cell2 == GoalBridge:
		evaluation := New(pos)
		EvaluateBridgeFrames(pos, player, evaluation)
		return evaluation
	case cell1 == GoalRing && cell2 == GoalFork:
		evaluation := New(pos)
		EvaluateForkFrames(pos, player, evaluation)
		return evaluation
	case cell1 == GoalRing && cell2 == GoalTotal:
		return EvaluateForPlayer(pos, player)
	}
	chainA := endpointCells(pos, cell1)
	chainB := endpointCells(pos, cell2)
	bfsA := pos.ComputeTwoDistance(player, chainA)
	bfsB := pos.ComputeTwoDistance(player, chainB)
	evaluation := New(pos)
	evaluation.SetToCombination(bfsA, bfsB, chainA, chainB)
	return evaluation
}

// endpointCells decodes a partial-goal endpoint: a real cell (1 or
// more) is treated as a singleton chain, -1..-6 is an edge chain,
// -7..-12 is a corner chain; anything else, ZerothCell included, yields
// no cells.
func endpointCells(pos *havannah.Position, c havannah.Cell) []havannah.Cell {
	switch {
	case c >= 1:
		return []havannah.Cell{c}
	case havannah.IsEdgeCell(c):
		return havannah.EdgeCells(havannah.EdgeIndex(c))
	case havannah.IsCornerCell(c):
		return havannah.CornerCells(havannah.CornerIndex(c))
	default:
		return nil
	}
}
