package eval

import (
	"testing"

	"github.com/mciura/antares/pkg/havannah"
)

func TestNewEvaluationStartsAtMaxDistance(t *testing.T) {
	pos := havannah.NewPosition()
	e := New(pos)
	if e.Len() != havannah.NumCells {
		t.Fatalf("Len() = %d, want %d on an empty board", e.Len(), havannah.NumCells)
	}
	for m := 0; m < e.Len(); m++ {
		if v := e.Get(havannah.MoveIndex(m)); v != MaxDistance {
			t.Fatalf("cell at move index %d = %d, want MaxDistance", m, v)
		}
	}
}

func TestSetToMinimumIsPointwise(t *testing.T) {
	pos := havannah.NewPosition()
	a, b, out := New(pos), New(pos), New(pos)
	for m := 0; m < a.Len(); m++ {
		a.Set(havannah.MoveIndex(m), m)
		b.Set(havannah.MoveIndex(m), a.Len()-m)
	}
	out.SetToMinimum(a, b)
	for m := 0; m < out.Len(); m++ {
		want := m
		if a.Len()-m < want {
			want = a.Len() - m
		}
		if got := out.Get(havannah.MoveIndex(m)); got != want {
			t.Fatalf("move %d: min = %d, want %d", m, got, want)
		}
	}
}

func TestSetToSumSaturatesAtMaxDistance(t *testing.T) {
	pos := havannah.NewPosition()
	a, b, out := New(pos), New(pos), New(pos)
	a.SetAllMovesTo(MaxDistance - 1)
	b.SetAllMovesTo(MaxDistance - 1)
	out.SetToSum(a, b)
	for m := 0; m < out.Len(); m++ {
		if got := out.Get(havannah.MoveIndex(m)); got != MaxDistance {
			t.Fatalf("move %d: saturated sum = %d, want MaxDistance", m, got)
		}
	}
}

func TestGetBaselineDistancePicksTheMinimum(t *testing.T) {
	pos := havannah.NewPosition()
	e := New(pos)
	if e.Len() == 0 {
		t.Fatal("expected at least one available move on an empty board")
	}
	e.Set(havannah.MoveIndex(0), 3)
	e.Set(havannah.MoveIndex(1), 1)
	if got := e.GetBaselineDistance(); got != 1 {
		t.Fatalf("GetBaselineDistance() = %d, want 1", got)
	}
}

// TestEvaluateForPlayerStartsFinite checks that, on an empty board, every
// cell has some finite route to at least one winning structure — the board
// is small enough that nothing should come back at MaxDistance from the
// empty position.
func TestEvaluateForPlayerStartsFinite(t *testing.T) {
	pos := havannah.NewPosition()
	ev := EvaluateForPlayer(pos, havannah.White)
	for m := 0; m < ev.Len(); m++ {
		if v := ev.Get(havannah.MoveIndex(m)); v >= MaxDistance {
			t.Fatalf("move %d evaluated as unreachable on an empty board", m)
		}
	}
}

// TestEvaluateForPlayerIsMonotoneUnderOwnStone checks that playing an
// additional stone for a side never increases that side's own baseline
// distance: the evaluator's bound can only tighten as more of a winning
// structure is already in place, never loosen.
func TestEvaluateForPlayerIsMonotoneUnderOwnStone(t *testing.T) {
	pos := havannah.NewPosition()
	before := EvaluateForPlayer(pos, havannah.White).GetBaselineDistance()

	var center havannah.Cell
	for c := havannah.Cell(1); c <= havannah.NumCells; c++ {
		if pos.CellIsEmpty(c) {
			center = c
			break
		}
	}
	pos.MakePermanentMove(havannah.White, center)

	after := EvaluateForPlayer(pos, havannah.White).GetBaselineDistance()
	if after > before {
		t.Fatalf("baseline distance grew from %d to %d after adding a stone", before, after)
	}
}

func TestEvaluatePartialGoalTotalMatchesEvaluateForPlayer(t *testing.T) {
	pos := havannah.NewPosition()
	total := EvaluatePartialGoal(pos, havannah.Black, GoalRing, GoalTotal)
	full := EvaluateForPlayer(pos, havannah.Black)
	for m := 0; m < total.Len(); m++ {
		if total.Get(havannah.MoveIndex(m)) != full.Get(havannah.MoveIndex(m)) {
			t.Fatalf("move %d: GoalTotal = %d, EvaluateForPlayer = %d", m, total.Get(havannah.MoveIndex(m)), full.Get(havannah.MoveIndex(m)))
		}
	}
}

// TestEvaluateForPlayerIsRotationInvariant checks the controlling
// invariant behind EvaluateForkFrames's six-way partition of the
// board: evaluating a position and evaluating the same stones rotated
// 60 degrees around the center must agree, cell for cell, once the
// rotation is undone.
func TestEvaluateForPlayerIsRotationInvariant(t *testing.T) {
	whiteCells := []havannah.Cell{
		havannah.XYToCell(6, 6),
		havannah.XYToCell(7, 9),
		havannah.XYToCell(10, 8),
	}
	blackCells := []havannah.Cell{
		havannah.XYToCell(5, 4),
		havannah.XYToCell(9, 10),
	}

	pos := havannah.NewPosition()
	for _, c := range whiteCells {
		pos.MakePermanentMove(havannah.White, c)
	}
	for _, c := range blackCells {
		pos.MakePermanentMove(havannah.Black, c)
	}

	rotated := havannah.NewPosition()
	for _, c := range whiteCells {
		rotated.MakePermanentMove(havannah.White, havannah.Rotate60(c))
	}
	for _, c := range blackCells {
		rotated.MakePermanentMove(havannah.Black, havannah.Rotate60(c))
	}

	want := EvaluateForPlayer(pos, havannah.White)
	got := EvaluateForPlayer(rotated, havannah.White)

	for c := havannah.Cell(1); c <= havannah.NumCells; c++ {
		if !pos.CellIsEmpty(c) {
			continue
		}
		rc := havannah.Rotate60(c)
		if want.GetCell(c) != got.GetCell(rc) {
			t.Fatalf("cell %d evaluates to %d, its rotation %d evaluates to %d on the rotated board, want equal",
				c, want.GetCell(c), rc, got.GetCell(rc))
		}
	}
}

func TestEvaluatePartialGoalBetweenTwoCorners(t *testing.T) {
	pos := havannah.NewPosition()
	c1 := havannah.CornerCell(0)
	c2 := havannah.CornerCell(3)
	ev := EvaluatePartialGoal(pos, havannah.White, c1, c2)
	if ev.GetBaselineDistance() >= MaxDistance {
		t.Fatal("two opposite corners should have a finite connecting distance on an empty board")
	}
}
