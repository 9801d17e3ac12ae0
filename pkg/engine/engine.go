// Package engine exposes Antares' game-level operations over a single
// board: the small surface a GTP front end (or any other driver) needs
// — reset, undo, play a move, ask for the engine's own move, and read
// back an evaluation or the board itself.
package engine

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/mciura/antares/pkg/eval"
	"github.com/mciura/antares/pkg/havannah"
	"github.com/mciura/antares/pkg/search"
)

// Options holds the two knobs a front end can change mid-session.
type Options struct {
	UseLgCoordinates bool
	SecondsPerMove   float64
}

// DefaultOptions matches antares.cc's defaults: rhombus coordinates,
// one second per move.
func DefaultOptions() Options {
	return Options{UseLgCoordinates: false, SecondsPerMove: 1.0}
}

// CoordinateScheme is the havannah.CoordinateScheme these options
// select for cell-name rendering.
func (o Options) CoordinateScheme() havannah.CoordinateScheme {
	if o.UseLgCoordinates {
		return havannah.LgCoordinates
	}
	return havannah.RhombusCoordinates
}

// Outcome is the game-level result Move reports: which color has won,
// that the board filled with no winner, or that the game is still
// open. It is deliberately distinct from havannah.WinningCondition,
// which names the winning structure (ring/bridge/fork) rather than the
// color that achieved it.
type Outcome int

const (
	NoOutcome Outcome = iota
	WhiteWon
	Draw
	BlackWon
)

// Engine is the game-level state a front end drives: the current
// position, its permanent-move history (for Undo), the last outcome
// reached, and the options governing move rendering and search budget.
type Engine struct {
	pos        *havannah.Position
	history    []havannah.Memento
	winner     Outcome
	hasSwapped bool
	opts       Options
	logger     *search.Logger
}

// New returns an Engine over a fresh empty board.
func New(opts Options, logger *search.Logger) *Engine {
	return &Engine{
		pos:    havannah.NewPosition(),
		opts:   opts,
		logger: logger,
	}
}

// Options returns the engine's current configuration.
func (e *Engine) Options() Options { return e.opts }

// SetOption applies one name/value pair, mirroring antares.cc's
// Frontend::SetOption dispatch.
func (e *Engine) SetOption(name, value string) error {
	switch name {
	case "use_lg_coordinates":
		switch value {
		case "true", "1":
			e.opts.UseLgCoordinates = true
		case "false", "0":
			e.opts.UseLgCoordinates = false
		default:
			return fmt.Errorf("engine: use_lg_coordinates wants true/false, got %q", value)
		}
	case "seconds_per_move":
		var v float64
		if _, err := fmt.Sscanf(value, "%g", &v); err != nil || v <= 0 {
			return fmt.Errorf("engine: seconds_per_move wants a positive number, got %q", value)
		}
		e.opts.SecondsPerMove = v
	default:
		return fmt.Errorf("engine: unknown option %q", name)
	}
	return nil
}

// Reset clears the board and history, starting a new game.
func (e *Engine) Reset() {
	e.pos = havannah.NewPosition()
	e.history = nil
	e.winner = NoOutcome
	e.hasSwapped = false
}

// Undo reverses the most recent Move, if any.
func (e *Engine) Undo() error {
	if len(e.history) == 0 {
		return fmt.Errorf("engine: no move to undo")
	}
	last := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.pos.UndoPermanentMove(last)
	e.winner = NoOutcome
	return nil
}

// Move plays text ("pass", a coordinate in either scheme, or the
// pie-rule "swap") as player's stone. An edge/corner tag parses but is
// rejected, since it names no board cell.
func (e *Engine) Move(player havannah.Player, text string) (Outcome, error) {
	if strings.ToLower(strings.TrimSpace(text)) == "swap" {
		return e.swap()
	}
	c, err := havannah.ParseCell(text)
	if err != nil {
		return NoOutcome, err
	}
	if c == havannah.ZerothCell {
		e.winner = NoOutcome
		return NoOutcome, nil
	}
	if !e.pos.CellIsEmpty(c) {
		return NoOutcome, fmt.Errorf("engine: cell %q is occupied", text)
	}
	m := e.pos.MakePermanentMove(player, c)
	e.history = append(e.history, m)
	e.winner = e.outcomeOf(player, m.WinningCondition())
	return e.winner, nil
}

// swap implements the pie rule: the reply to White's opening stone may
// take it over instead of playing elsewhere. Only legal once, and only
// as the very next move after the first stone.
func (e *Engine) swap() (Outcome, error) {
	if len(e.history) != 1 || e.hasSwapped {
		return NoOutcome, fmt.Errorf("engine: swap is only legal as the reply to the first move")
	}
	opening := e.history[0]
	cell, owner := opening.Cell(), opening.Player()
	e.pos.UndoPermanentMove(opening)
	e.history[0] = e.pos.MakePermanentMove(havannah.Opponent(owner), cell)
	e.hasSwapped = true
	e.winner = NoOutcome
	return NoOutcome, nil
}

// outcomeOf turns the structure a move completed (if any) into the
// color-indexed Outcome Move and SuggestMove report: a win belongs to
// whichever player just moved, and a board with no available moves left
// and no winner is a draw.
func (e *Engine) outcomeOf(player havannah.Player, won havannah.WinningCondition) Outcome {
	if won != havannah.NoWinningCondition {
		if player == havannah.White {
			return WhiteWon
		}
		return BlackWon
	}
	if e.pos.NumAvailableMoves() == 0 {
		return Draw
	}
	return NoOutcome
}

// Winner is the Outcome the most recent move produced, or NoOutcome if
// the game is still open.
func (e *Engine) Winner() Outcome { return e.winner }

// Position exposes the underlying board, for callers (the GTP layer,
// the spectator hub) that need read-only access beyond this surface.
func (e *Engine) Position() *havannah.Position { return e.pos }

// GetBoardString renders the board under the engine's configured
// coordinate scheme.
func (e *Engine) GetBoardString() string {
	return e.pos.GetBoardString(e.opts.CoordinateScheme())
}

// GetEvaluation runs the pure evaluator (no search) for player and
// returns its baseline distance: the fewest additional stones that
// side needs anywhere on the board to complete a winning structure.
func (e *Engine) GetEvaluation(player havannah.Player) int {
	return eval.EvaluateForPlayer(e.pos, player).GetBaselineDistance()
}

// GetPartialEvaluationString runs EvaluatePartialGoal for player
// restricted to the named goal or endpoint pair and renders it as one
// terse line per available cell.
func (e *Engine) GetPartialEvaluationString(player havannah.Player, cell1, cell2 havannah.Cell) string {
	ev := eval.EvaluatePartialGoal(e.pos, player, cell1, cell2)
	return e.renderEvaluation(ev)
}

// GetPlayerEvaluationString is GetPartialEvaluationString restricted to
// the combined "total" goal (ring, bridge, and fork all considered).
func (e *Engine) GetPlayerEvaluationString(player havannah.Player) string {
	return e.renderEvaluation(eval.EvaluateForPlayer(e.pos, player))
}

func (e *Engine) renderEvaluation(ev *eval.Evaluation) string {
	scheme := e.opts.CoordinateScheme()
	var out []byte
	for m := 0; m < ev.Len(); m++ {
		c := e.pos.MoveIndexToCell(havannah.MoveIndex(m))
		out = append(out, []byte(fmt.Sprintf("%s %d\n", havannah.CellName(c, scheme), ev.GetCell(c)))...)
	}
	return string(out)
}

// SuggestMove runs the dual-threaded search for player and returns its
// chosen cell and that cell's combined evaluation, mirroring
// antares.cc's Engine::SuggestMove: build an attacker and a defender
// searcher over independent scratch positions, race them against a
// shared depth cap and a wall-clock budget, then pick the cell whose
// defender score minus attacker score is highest — the move the
// opponent finds hardest to answer while the engine itself stays
// closest to winning. seconds overrides opts.SecondsPerMove for this
// one call when positive, mirroring engine.cc's SuggestMove falling
// back to seconds_per_move_ only when the caller passes <= 0.
func (e *Engine) SuggestMove(player havannah.Player, seconds float64) (havannah.Cell, int, error) {
	if e.pos.NumAvailableMoves() == 0 {
		return havannah.ZerothCell, 0, fmt.Errorf("engine: no legal moves remain")
	}
	budget := e.opts.SecondsPerMove
	if seconds > 0 {
		budget = seconds
	}

	attackerPos := e.clonePosition()
	defenderPos := e.clonePosition()

	var maxDepth atomic.Int32
	maxDepth.Store(100)

	attacker := search.NewSearcher(attackerPos, player, search.DefaultCapacityLog2, &maxDepth, e.logger, e.opts.CoordinateScheme())
	defender := search.NewSearcher(defenderPos, havannah.Opponent(player), search.DefaultCapacityLog2, &maxDepth, e.logger, e.opts.CoordinateScheme())

	driver := search.NewDriver(attacker, defender, budget)
	cell, value, err := driver.Run()
	if err != nil {
		return havannah.ZerothCell, 0, err
	}

	m := e.pos.MakePermanentMove(player, cell)
	e.history = append(e.history, m)
	e.winner = e.outcomeOf(player, m.WinningCondition())
	return cell, value, nil
}

// clonePosition replays e.pos's move history onto a fresh Position so
// each searcher gets an independent scratch board to mutate during its
// own recursion, never contending with the other thread or with the
// engine's authoritative position.
func (e *Engine) clonePosition() *havannah.Position {
	p := havannah.NewPosition()
	replayOnto(p, e.pos)
	return p
}

// replayOnto copies src's occupants onto dst move by move in board
// order, rebuilding dst's chains and hash identically to src's. Both
// positions end up with the same move count and availability, which is
// all a Searcher needs from its scratch copy.
func replayOnto(dst, src *havannah.Position) {
	type placed struct {
		cell   havannah.Cell
		player havannah.Player
	}
	var stones []placed
	for c := havannah.Cell(1); c <= havannah.NumCells; c++ {
		if occ, ok := src.Occupant(c); ok {
			stones = append(stones, placed{c, occ})
		}
	}
	for _, s := range stones {
		dst.MakePermanentMove(s.player, s.cell)
	}
}
