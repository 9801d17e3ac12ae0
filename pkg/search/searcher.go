// Package search implements Antares' dual-threaded, iterative-deepening
// alpha-beta search: one Searcher plays the attacker, trying to force a
// win, and a second plays the defender, trying to prove one impossible;
// each keeps its own transposition table, and they share a common depth
// cap so that whichever finishes its current iteration first can rein
// in the other.
package search

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/mciura/antares/pkg/eval"
	"github.com/mciura/antares/pkg/havannah"
)

// Centi-potential score units and the sentinel outcomes an Attack/Defend
// call can settle on. Won and Lost sit just outside the range a real
// evaluation can reach so they always dominate an alpha-beta window;
// Infinity bounds the window itself.
const (
	PotentialScale = 100
	Won            = -101
	Lost           = 10000
	Draw           = 5000
	Infinity       = 20000
)

// errAborted unwinds both recursions the instant the shared depth cap
// drops below the frame currently executing. It carries no state and is
// never handled anywhere but the searcher's own top-level loop.
var errAborted = errors.New("search: depth cap lowered mid-recursion")

// invariantError marks a transposition-table state that should be
// impossible if the recursion above obeyed the depth-then-expand
// discipline this package relies on; it is not a user-facing error.
type invariantError struct{ msg string }

func (e invariantError) Error() string { return "search: invariant violated: " + e.msg }

// Searcher owns one side of the dual search: its own scratch position
// (so the two threads never contend on board state), its own
// transposition table and move-list arena, and a pointer to the depth
// cap both searchers race to lower.
type Searcher struct {
	pos            *havannah.Position
	attacker       havannah.Player
	defender       havannah.Player
	tt             *TT
	arena          *arena
	maxDepth       *atomic.Int32
	logger         *Logger
	coords         havannah.CoordinateScheme
	solved         atomic.Bool
	rootEvaluation *eval.Evaluation
}

// NewSearcher returns a Searcher for pos (which it does not mutate on
// return: every recursive move is undone before the call that made it
// returns), rooted at attacker's perspective, with its own private
// transposition table and move-list arena — each side runs an
// independent search tree, only the depth cap is shared with the
// searcher playing the other side.
func NewSearcher(pos *havannah.Position, attacker havannah.Player, ttCapacityLog2 uint, maxDepth *atomic.Int32, logger *Logger, coords havannah.CoordinateScheme) *Searcher {
	return &Searcher{
		pos:      pos,
		attacker: attacker,
		defender: havannah.Opponent(attacker),
		tt:       New(ttCapacityLog2),
		arena:    newArena(),
		maxDepth: maxDepth,
		logger:   logger,
		coords:   coords,
	}
}

// TTSize reports the table's current approximate occupancy, for the
// driver's periodic diagnostics.
func (s *Searcher) TTSize() int64 { return s.tt.NumElements() }

// Solved reports whether this searcher's iterative deepening has run
// to completion (as opposed to being cut short by the shared depth
// cap).
func (s *Searcher) Solved() bool { return s.solved.Load() }

// RootEvaluation is the per-cell result this searcher settled on for
// the root position: for the attacker, "moves until I can force a win
// through this cell"; for the defender, the same question from the
// opposite side. Valid only after SearchForAttacker/SearchForDefender
// returns.
func (s *Searcher) RootEvaluation() *eval.Evaluation { return s.rootEvaluation }

func (s *Searcher) checkAbort(depth int) {
	if int32(depth) > s.maxDepth.Load() {
		panic(errAborted)
	}
}

func runProtected(f func()) (aborted bool) {
	defer func() {
		if r := recover(); r != nil {
			if r == errAborted {
				aborted = true
				return
			}
			panic(r)
		}
	}()
	f()
	return false
}

// SearchForAttacker runs the attacker's iterative-deepening loop until
// either the shared depth cap forces an abort or the position is
// resolved (a forced win, a forced draw, or only one reasonable move
// remains at the root).
func (s *Searcher) SearchForAttacker() {
	runProtected(func() {
		depth := 0
		for ; depth < int(s.maxDepth.Load()); depth++ {
			s.attack(0, -Infinity, Infinity, depth, 0, 2*depth, false)
			s.logAttackerIteration(depth)
			if s.attackerIterationIsConclusive(depth) {
				break
			}
		}
		s.maxDepth.Store(int32(depth + 1))
	})
	s.fillEvaluation(0)
	s.solved.Store(true)
}

// SearchForDefender is SearchForAttacker's mirror image.
func (s *Searcher) SearchForDefender() {
	runProtected(func() {
		depth := 0
		for ; depth < int(s.maxDepth.Load()); depth++ {
			s.defend(0, -Infinity, Infinity, depth, 0, 2*depth)
			s.logDefenderIteration(depth)
			if s.defenderIterationIsConclusive(depth) {
				break
			}
		}
		s.maxDepth.Store(int32(depth + 1))
	})
	s.fillEvaluation(0)
	s.solved.Store(true)
}

func (s *Searcher) attackerIterationIsConclusive(depth int) bool {
	ref, found := s.tt.FindValue(0)
	if !found {
		return true
	}
	moves := s.arena.Get(ref.Load().MovesIndex)
	if len(moves) == 0 {
		return true
	}
	if moves[0].Value <= Won+PotentialScale*depth {
		return true
	}
	if len(moves) == 1 {
		return true
	}
	return moves[1].Value >= Draw
}

func (s *Searcher) defenderIterationIsConclusive(depth int) bool {
	ref, found := s.tt.FindValue(0)
	if !found {
		return true
	}
	moves := s.arena.Get(ref.Load().MovesIndex)
	if len(moves) == 0 {
		return true
	}
	if moves[0].Value >= Lost-PotentialScale*depth {
		return true
	}
	if len(moves) == 1 {
		return true
	}
	return moves[1].Value <= Draw
}

// attack evaluates the position at hash from the attacker's side: the
// attacker to move is trying to reach a winning structure. depth is the
// plies of search budget remaining; level is the ply from the root
// (used to decide whether "pass" is a legal candidate, whether this is
// the horizon, and whether alpha/beta cutoffs apply); lastWasDefenderPass carries over whether the
// immediately preceding defender ply passed, which changes how the
// horizon's mobility count is computed.
func (s *Searcher) attack(hash uint64, alpha, beta, depth, level, maxLevel int, lastWasDefenderPass bool) int {
	s.checkAbort(depth)

	ref, found := s.tt.FindValue(hash)
	var movesIndex uint32
	if found {
		node := ref.Load()
		if int(node.Depth) == depth && boundSatisfies(node, alpha, beta) {
			return int(node.Score)
		}
		movesIndex = node.MovesIndex
		if movesIndex == 0 {
			panic(invariantError{"attacker node has no move list"})
		}
	} else {
		movesIndex = s.expandMoves(s.attacker, level)
	}
	moves := s.arena.Get(movesIndex)

	passIndex := 0
	if lastWasDefenderPass {
		passIndex = 1
	}

	var value int
	var kind Kind

	if depth == 0 || level > maxLevel {
		value = Draw
		if len(moves) > passIndex {
			value = horizonValue(moves, passIndex)
		}
		kind = KindExact
	} else {
		kind = KindBeta
		i := 0
		for ; i < len(moves); i++ {
			if moves[i].Cell == havannah.ZerothCell {
				if level != 0 {
					continue
				}
				value = s.defend(hash+uint64(havannah.AttackerPassHash), alpha, beta, depth, level+1, maxLevel)
				moves[i].Value = value
			} else {
				memento := s.pos.MakeMoveReversibly(s.attacker, moves[i].Cell)
				if memento.WinningCondition() != havannah.NoWinningCondition {
					s.pos.UndoAll(memento)
					value = Won
					moves[i].Value = value
					kind = KindAlpha
					i++
					break
				}
				childHash := uint64(havannah.ModifyZobristHash(havannah.Hash(hash), s.attacker, moves[i].Cell))
				value = s.defend(childHash, alpha-PotentialScale, beta-PotentialScale, depth-1, level+1, maxLevel) + PotentialScale
				moves[i].Value = value
				s.pos.UndoAll(memento)
			}
			if level > 0 && value <= alpha {
				kind = KindAlpha
				i++
				break
			}
			if level > 0 && value < beta {
				kind = KindExact
				beta = value
			}
		}
		if i > len(moves) {
			i = len(moves)
		}
		sortAscending(moves[:i])
		if len(moves) == 0 {
			value = Draw
		} else {
			value = moves[0].Value
		}
	}

	s.store(ref, found, hash, Value{Score: int32(value), Kind: kind, Depth: int32(depth), MovesIndex: movesIndex})
	return value
}

// defend is attack's mirror: the defender to move is trying to
// establish that the attacker can never complete a winning structure.
func (s *Searcher) defend(hash uint64, alpha, beta, depth, level, maxLevel int) int {
	s.checkAbort(depth)

	ref, found := s.tt.FindValue(hash)
	var movesIndex uint32
	if found {
		node := ref.Load()
		if int(node.Depth) == depth && boundSatisfies(node, alpha, beta) {
			return int(node.Score)
		}
		movesIndex = node.MovesIndex
		if movesIndex == 0 {
			panic(invariantError{"defender node has no move list"})
		}
	} else {
		movesIndex = s.arena.Alloc([]CellEval{{Cell: havannah.ZerothCell, Value: alpha}})
	}
	moves := s.arena.Get(movesIndex)

	kind := KindAlpha
	value := 0
	i := 0
	for ; i < len(moves); i++ {
		if moves[i].Cell == havannah.ZerothCell {
			childHash := hash + uint64(havannah.DefenderPassHash)
			value = s.attack(childHash, alpha-PotentialScale, beta-PotentialScale, depth, level+1, maxLevel, true)
			moves[i].Value = value
			if value < beta {
				moves = s.appendInterestingNodesIfNotPresent(movesIndex, childHash, moves)
			}
		} else {
			memento := s.pos.MakeMoveReversibly(s.defender, moves[i].Cell)
			if memento.WinningCondition() != havannah.NoWinningCondition {
				s.pos.UndoAll(memento)
				value = Lost
				moves[i].Value = value
				kind = KindBeta
				i++
				break
			}
			childHash := uint64(havannah.ModifyZobristHash(havannah.Hash(hash), s.defender, moves[i].Cell))
			value = s.attack(childHash, alpha+PotentialScale, beta+PotentialScale, depth+1, level+1, maxLevel, false) - PotentialScale
			moves[i].Value = value
			s.pos.UndoAll(memento)
		}
		if level > 0 && value >= beta {
			kind = KindBeta
			i++
			break
		}
		if level > 0 && value > alpha {
			kind = KindExact
			alpha = value
		}
	}
	if i > len(moves) {
		i = len(moves)
	}
	sortDescending(moves[:i])
	value = Draw
	if len(moves) > 0 {
		value = moves[0].Value
	}

	s.store(ref, found, hash, Value{Score: int32(value), Kind: kind, Depth: int32(depth), MovesIndex: movesIndex})
	return value
}

func boundSatisfies(node Value, alpha, beta int) bool {
	switch node.Kind {
	case KindExact:
		return true
	case KindAlpha:
		return int(node.Score) <= alpha
	case KindBeta:
		return int(node.Score) >= beta
	}
	return false
}

func (s *Searcher) store(ref ValueRef, hadRef bool, hash uint64, v Value) {
	if !hadRef {
		var ok bool
		ref, ok = s.tt.InsertKey(hash)
		if !ok {
			return
		}
	}
	ref.Store(v)
}

// horizonValue implements the mobility-adjusted leaf score: the target
// is the value of the (passIndex)th-cheapest move, and the leaf's score
// is that target minus the count of moves at least as cheap. A side
// with many equally good ways to make progress is closer to winning
// than the raw distance number alone suggests.
func horizonValue(moves []CellEval, passIndex int) int {
	target := moves[passIndex].Value
	mobility := 0
	for _, ce := range moves {
		if ce.Value < target || (ce.Value == target && ce.Cell >= havannah.ZerothCell) {
			mobility++
		} else {
			break
		}
	}
	return target - mobility
}

// appendInterestingNodesIfNotPresent grows a defender node's lazily
// built move list with any attacker reply, from the position reached
// after the defender passes, whose value ties the attacker's best
// reply — these are the attacking side's other equally-threatening
// continuations, and the defender must refute them too before it can
// trust a value above alpha for its own pass. When a full transposition
// table could not cache that attacker node, the list is returned
// unchanged.
func (s *Searcher) appendInterestingNodesIfNotPresent(movesIndex uint32, passHash uint64, moves []CellEval) []CellEval {
	ref, found := s.tt.FindValue(passHash)
	if !found {
		if s.tt.NumElements() >= int64(s.tt.Capacity()) {
			return moves
		}
		panic(invariantError{"append: attacker node missing after pass"})
	}
	node := ref.Load()
	if node.MovesIndex == 0 {
		panic(invariantError{"append: attacker node has no move list"})
	}
	attacks := s.arena.Get(node.MovesIndex)
	if len(attacks) == 0 {
		return moves
	}
	present := len(moves)
	best := attacks[0].Value
	for _, ce := range attacks {
		if ce.Value > best {
			break
		}
		if present == 1 || !containsCell(moves[:present], ce.Cell) {
			moves = append(moves, ce)
		}
	}
	s.arena.Set(movesIndex, moves)
	return moves
}

func containsCell(moves []CellEval, c havannah.Cell) bool {
	for _, m := range moves {
		if m.Cell == c {
			return true
		}
	}
	return false
}

// expandMoves builds the candidate move list for player at this level.
// The empty board and the reply to a single stone are handled as fixed
// scans (the evaluator has nothing to say about them); every other
// position is pruned to cells the evaluator judges promising, plus
// cells adjacent to enough of the player's own stones to be tactically
// relevant even when the raw distance estimate undersells them.
func (s *Searcher) expandMoves(player havannah.Player, level int) uint32 {
	var moves []CellEval
	var baseline int

	switch {
	case s.pos.MoveCount() == 0:
		baseline = (havannah.SideLength + 1) * (havannah.SideLength + 1) / 3
		moves = firstMoveCandidates(baseline)
	case s.pos.MoveCount() == 1:
		baseline = (havannah.SideLength + 1) * (havannah.SideLength + 1) / 3
		for m := 0; m < int(s.pos.NumAvailableMoves()); m++ {
			c := s.pos.MoveIndexToCell(havannah.MoveIndex(m))
			moves = append(moves, CellEval{Cell: c, Value: PotentialScale * baseline})
		}
	default:
		ev := eval.EvaluateForPlayer(s.pos, player)
		baseline = ev.GetBaselineDistance()
		for m := 0; m < int(s.pos.NumAvailableMoves()); m++ {
			mi := havannah.MoveIndex(m)
			c := s.pos.MoveIndexToCell(mi)
			v := ev.Get(mi)
			if v < baseline || isNeighborMaskCandidate(s.pos, c, player) {
				moves = append(moves, CellEval{Cell: c, Value: PotentialScale * v})
			}
		}
	}

	if level == 0 {
		moves = append(moves, CellEval{Cell: havannah.ZerothCell, Value: PotentialScale * baseline})
	}
	sortAscending(moves)
	return s.arena.Alloc(moves)
}

// firstMoveCandidates scans a canonical sixth of the board (the
// hexagon has sixfold symmetry, so the opening reply need only be
// searched in one wedge) rather than every empty cell.
func firstMoveCandidates(baseline int) []CellEval {
	mid := havannah.SideLength - 1
	past := 2*havannah.SideLength - 1
	var moves []CellEval
	for y := mid; y < past; y++ {
		for x := mid; x <= y; x++ {
			c := havannah.XYToCell(x, y)
			if c == havannah.ZerothCell {
				continue
			}
			moves = append(moves, CellEval{Cell: c, Value: PotentialScale * baseline})
		}
	}
	return moves
}

// isNeighborMaskCandidate widens the pruned candidate set to cells that
// are tactically close to the player's existing stones even when their
// raw distance estimate is no better than the baseline: either the
// cell already touches two or more friendly stones, or it touches one
// friendly stone and no hostile one (a safe extension point).
func isNeighborMaskCandidate(pos *havannah.Position, c havannah.Cell, player havannah.Player) bool {
	var buf [6]havannah.Cell
	friendly, hostile := 0, 0
	for _, n := range havannah.Neighbors(c, buf[:0]) {
		if occ, ok := pos.Occupant(n); ok {
			if occ == player {
				friendly++
			} else {
				hostile++
			}
		}
	}
	if friendly >= 2 {
		return true
	}
	return friendly >= 1 && hostile == 0
}

func sortAscending(moves []CellEval) {
	insertionSort(moves, func(a, b CellEval) bool {
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		return a.Cell > b.Cell
	})
}

func sortDescending(moves []CellEval) {
	insertionSort(moves, func(a, b CellEval) bool {
		if a.Value != b.Value {
			return a.Value > b.Value
		}
		return a.Cell < b.Cell
	})
}

// insertionSort is used instead of sort.Slice for these short,
// mostly-already-sorted move lists (a handful to a few dozen entries,
// re-sorted after only their touched prefix changed): no interface
// dispatch, no allocation, and the almost-sorted case it runs on most
// often is exactly its best case.
func insertionSort(moves []CellEval, less func(a, b CellEval) bool) {
	for i := 1; i < len(moves); i++ {
		v := moves[i]
		j := i - 1
		for j >= 0 && less(v, moves[j]) {
			moves[j+1] = moves[j]
			j--
		}
		moves[j+1] = v
	}
}

// fillEvaluation copies the root move list's per-cell values into
// RootEvaluation, splitting out the pass entry as the value every
// non-candidate cell should report.
func (s *Searcher) fillEvaluation(hash uint64) {
	s.rootEvaluation = eval.New(s.pos)
	ref, found := s.tt.FindValue(hash)
	if !found {
		return
	}
	moves := s.arena.Get(ref.Load().MovesIndex)
	nullValue := Lost
	for _, ce := range moves {
		if ce.Cell == havannah.ZerothCell {
			nullValue = ce.Value
		}
	}
	s.rootEvaluation.SetAllMovesTo(nullValue)
	for _, ce := range moves {
		if ce.Cell != havannah.ZerothCell {
			s.rootEvaluation.SetCell(ce.Cell, ce.Value)
		}
	}
}

func (s *Searcher) principalVariation(hash uint64, player havannah.Player) string {
	var b strings.Builder
	h := hash
	p := player
	for step := 0; step < 40; step++ {
		ref, found := s.tt.FindValue(h)
		if !found {
			break
		}
		node := ref.Load()
		moves := s.arena.Get(node.MovesIndex)
		if len(moves) == 0 {
			break
		}
		ce := moves[0]
		if ce.Cell == havannah.ZerothCell {
			fmt.Fprintf(&b, " (%d)pass(%d)", node.Score, ce.Value)
			if p == s.attacker {
				h += uint64(havannah.AttackerPassHash)
			} else {
				h += uint64(havannah.DefenderPassHash)
			}
		} else {
			fmt.Fprintf(&b, " (%d)%s(%d)", node.Score, havannah.CellName(ce.Cell, s.coords), ce.Value)
			h = uint64(havannah.ModifyZobristHash(havannah.Hash(h), p, ce.Cell))
		}
		p = havannah.Opponent(p)
	}
	return b.String()
}

func (s *Searcher) logAttackerIteration(depth int) {
	if s.logger == nil {
		return
	}
	main := s.principalVariation(0, s.attacker)
	pass := s.principalVariation(uint64(havannah.AttackerPassHash), s.defender)
	s.logger.Log(fmt.Sprintf("A%d %d %s |%s", depth, s.tt.NumElements(), main, pass))
}

func (s *Searcher) logDefenderIteration(depth int) {
	if s.logger == nil {
		return
	}
	main := s.principalVariation(0, s.defender)
	pass := s.principalVariation(uint64(havannah.DefenderPassHash), s.attacker)
	s.logger.Log(fmt.Sprintf("D%d %d %s | %s", depth, s.tt.NumElements(), main, pass))
}
