package search

import (
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mciura/antares/pkg/havannah"
)

// Driver runs an attacker Searcher and a defender Searcher concurrently
// over the same root position, polling them on a wall-clock budget, and
// combines their two root evaluations into a single chosen move.
type Driver struct {
	attacker       *Searcher
	defender       *Searcher
	secondsPerMove float64
	maxDepth       *atomic.Int32
}

// NewDriver pairs two Searchers built over the same position but each
// with its own scratch copy and its own transposition table, and a
// shared depth cap the caller is expected to have passed to both via
// NewSearcher.
func NewDriver(attacker, defender *Searcher, secondsPerMove float64) *Driver {
	return &Driver{attacker: attacker, defender: defender, secondsPerMove: secondsPerMove, maxDepth: attacker.maxDepth}
}

// Run launches both searches, waits for them to settle or for the
// wall-clock budget to expire, and returns the cell and combined score
// the attacker's move should be.
func (d *Driver) Run() (havannah.Cell, int, error) {
	var g errgroup.Group
	g.Go(func() error {
		d.attacker.SearchForAttacker()
		return nil
	})
	g.Go(func() error {
		d.defender.SearchForDefender()
		return nil
	})

	deadline := time.Now().Add(time.Duration(d.secondsPerMove * float64(time.Second)))
	lastLog := time.Now()
	for {
		if d.attacker.Solved() && d.defender.Solved() {
			break
		}
		if time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Second)
		if time.Since(lastLog) >= 10*time.Second {
			d.logTableSizes()
			lastLog = time.Now()
		}
	}
	d.maxDepth.Store(0)

	if err := g.Wait(); err != nil {
		return havannah.ZerothCell, 0, err
	}

	return combine(d.attacker, d.defender)
}

func (d *Driver) logTableSizes() {
	if d.attacker.logger == nil {
		return
	}
	d.attacker.logger.Log(fmt.Sprintf("tt sizes: attacker=%d defender=%d", d.attacker.TTSize(), d.defender.TTSize()))
}

// combine picks, among every cell the root position still lists as
// available, the one maximizing defenderEval(cell) - attackerEval(cell)
// — the move that costs the opponent the most additional distance to
// defend while costing the engine the least to press its own attack.
func combine(attacker, defender *Searcher) (havannah.Cell, int, error) {
	attackEval := attacker.RootEvaluation()
	defendEval := defender.RootEvaluation()
	if attackEval == nil || defendEval == nil || attackEval.Len() == 0 {
		return havannah.ZerothCell, 0, fmt.Errorf("search: no evaluation produced")
	}

	best := havannah.ZerothCell
	bestValue := -Infinity
	for m := 0; m < attackEval.Len(); m++ {
		c := attacker.pos.MoveIndexToCell(havannah.MoveIndex(m))
		v := defendEval.GetCell(c) - attackEval.GetCell(c)
		if best == havannah.ZerothCell || v > bestValue {
			best = c
			bestValue = v
		}
	}
	if best == havannah.ZerothCell {
		return havannah.ZerothCell, 0, fmt.Errorf("search: no candidate move found")
	}
	return best, bestValue, nil
}
