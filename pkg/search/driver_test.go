package search

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/mciura/antares/pkg/havannah"
)

// TestDriverRunRespectsDeadlineAndResetsDepthCap checks the two
// timing guarantees Run makes to its caller: it returns once both
// searchers report Solved (rather than always waiting out the full
// wall-clock budget), and it resets the shared depth cap to 0 before
// handing control back, so a subsequent move starts its own search
// fresh rather than inheriting whatever depth the previous move's
// searchers last reached.
func TestDriverRunRespectsDeadlineAndResetsDepthCap(t *testing.T) {
	pos := havannah.NewPosition()

	var maxDepth atomic.Int32
	maxDepth.Store(1)

	attacker := NewSearcher(pos, havannah.White, 10, &maxDepth, nil, havannah.RhombusCoordinates)
	defender := NewSearcher(pos, havannah.Black, 10, &maxDepth, nil, havannah.RhombusCoordinates)

	d := NewDriver(attacker, defender, 30)

	done := make(chan struct{})
	var cell havannah.Cell
	var err error
	go func() {
		cell, _, err = d.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return once both searchers settled, want it not to wait out the 30s budget")
	}

	if err != nil {
		t.Fatalf("Run returned an error: %v", err)
	}
	if cell == havannah.ZerothCell {
		t.Fatal("Run should return a real candidate move on an empty board")
	}
	if got := maxDepth.Load(); got != 0 {
		t.Fatalf("maxDepth after Run = %d, want 0: the next move's searchers must not inherit this move's depth", got)
	}
}
