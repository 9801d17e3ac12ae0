package havannah

import "testing"

func TestCellEnumerationCovers(t *testing.T) {
	if NumCells != 169 {
		t.Fatalf("NumCells = %d, want 169 for SideLength=8", NumCells)
	}
	seen := map[Cell]bool{}
	for c := Cell(1); c <= NumCells; c++ {
		x, y := CellToXY(c)
		if XYToCell(x, y) != c {
			t.Fatalf("XYToCell(%d,%d) round-trip mismatch for cell %d", x, y, c)
		}
		seen[c] = true
	}
	if len(seen) != NumCells {
		t.Fatalf("got %d distinct cells, want %d", len(seen), NumCells)
	}
}

func TestNeighborCounts(t *testing.T) {
	for c := Cell(1); c <= NumCells; c++ {
		var buf [6]Cell
		n := Neighbors(c, buf[:0])
		if len(n) < 3 || len(n) > 6 {
			t.Fatalf("cell %d has %d neighbors, want 3..6", c, len(n))
		}
	}
}

func TestCornersAndEdgesPartitionBoundary(t *testing.T) {
	cornerCount, edgeCount := 0, 0
	for c := Cell(1); c <= NumCells; c++ {
		isCorner := CornerOf(c) >= 0
		isEdge := EdgeOf(c) >= 0
		if isCorner && isEdge {
			t.Fatalf("cell %d classified as both corner and edge", c)
		}
		if isCorner {
			cornerCount++
		}
		if isEdge {
			edgeCount++
		}
	}
	if cornerCount != 6 {
		t.Fatalf("corner count = %d, want 6", cornerCount)
	}
	wantEdge := 6 * (SideLength - 2)
	if edgeCount != wantEdge {
		t.Fatalf("edge count = %d, want %d", edgeCount, wantEdge)
	}
}

func TestRotate60IsSixCycle(t *testing.T) {
	for c := Cell(1); c <= NumCells; c++ {
		cur := c
		for i := 0; i < 6; i++ {
			cur = Rotate60(cur)
			if cur == ZerothCell {
				t.Fatalf("cell %d: rotation left the board after %d steps", c, i+1)
			}
		}
		if cur != c {
			t.Fatalf("cell %d: six rotations did not return to start, got %d", c, cur)
		}
	}
}

func TestRotate60PreservesBoundaryKind(t *testing.T) {
	for c := Cell(1); c <= NumCells; c++ {
		r := Rotate60(c)
		if (CornerOf(c) >= 0) != (CornerOf(r) >= 0) {
			t.Fatalf("cell %d: corner-ness not preserved under rotation", c)
		}
		if (EdgeOf(c) >= 0) != (EdgeOf(r) >= 0) {
			t.Fatalf("cell %d: edge-ness not preserved under rotation", c)
		}
	}
}

func TestCellNameRoundTrip(t *testing.T) {
	for c := Cell(1); c <= NumCells; c++ {
		for _, scheme := range []CoordinateScheme{RhombusCoordinates, LgCoordinates} {
			name := CellName(c, scheme)
			got, err := ParseCell(name)
			if err != nil {
				t.Fatalf("cell %d scheme %v: ParseCell(%q) error: %v", c, scheme, name, err)
			}
			if got != c {
				t.Fatalf("cell %d scheme %v: round trip via %q gave %d", c, scheme, name, got)
			}
		}
	}
	for i, name := range edgeNames {
		c, err := ParseCell(name)
		if err != nil || c != EdgeCell(i) {
			t.Fatalf("edge name %q: got cell %d, err %v, want %d", name, c, err, EdgeCell(i))
		}
	}
	for i, name := range cornerNames {
		c, err := ParseCell(name)
		if err != nil || c != CornerCell(i) {
			t.Fatalf("corner name %q: got cell %d, err %v, want %d", name, c, err, CornerCell(i))
		}
	}
}

// TestMakeMoveReversiblyRestoresPosition checks that MakeMoveReversibly
// followed by UndoAll restores a position byte-for-byte, starting from a
// non-empty baseline so the check isn't just "everything unwinds to the
// zero value".
func TestMakeMoveReversiblyRestoresPosition(t *testing.T) {
	p := NewPosition()
	baseline := XYToCell(boardRadius-2, boardRadius-2)
	p.MakePermanentMove(White, baseline)

	hashBefore := p.Hash()
	moveCountBefore := p.MoveCount()
	availBefore := append([]Cell(nil), p.avail...)

	c1 := XYToCell(boardRadius, boardRadius)
	m1 := p.MakeMoveReversibly(Black, c1)
	c2 := XYToCell(boardRadius+1, boardRadius)
	m2 := p.MakeMoveReversibly(White, c2)

	p.UndoAll(m2)
	p.UndoAll(m1)

	if p.Hash() != hashBefore {
		t.Fatalf("hash after full undo = %d, want %d", p.Hash(), hashBefore)
	}
	if p.MoveCount() != moveCountBefore {
		t.Fatalf("move count after full undo = %d, want %d", p.MoveCount(), moveCountBefore)
	}
	if len(p.avail) != len(availBefore) {
		t.Fatalf("avail length after full undo = %d, want %d", len(p.avail), len(availBefore))
	}
	for i, c := range p.avail {
		if c != availBefore[i] {
			t.Fatalf("avail[%d] after full undo = %d, want %d", i, c, availBefore[i])
		}
	}
	for _, c := range []Cell{c1, c2} {
		if !p.CellIsEmpty(c) {
			t.Fatalf("cell %d should be empty after undo", c)
		}
	}
}

// TestHashInvolution checks that applying the same modification twice
// is a no-op, the property incremental undo relies on.
func TestHashInvolution(t *testing.T) {
	var h Hash = 0x1234
	got := ModifyZobristHash(ModifyZobristHash(h, White, 5), White, 5)
	if got != h {
		t.Fatalf("ModifyZobristHash is not an involution: got %d, want %d", got, h)
	}
}

func TestPassHashesAreDistinctFromPieceKeys(t *testing.T) {
	if AttackerPassHash == DefenderPassHash {
		t.Fatal("attacker and defender pass hashes must not collide")
	}
	for c := Cell(1); c <= NumCells; c++ {
		if pieceKeys[White][c] == AttackerPassHash || pieceKeys[White][c] == DefenderPassHash {
			t.Fatalf("piece key for cell %d collides with a pass hash", c)
		}
	}
}

func TestChainBridgeWin(t *testing.T) {
	p := NewPosition()
	// Walk White stones from corner 0 to corner 1 along edge 0, which
	// must touch both corner virtual chains and declare Bridge.
	a := cornerCube[0]
	b := cornerCube[1]
	N := boardRadius
	step := [3]int{(b[0] - a[0]) / N, (b[1] - a[1]) / N, (b[2] - a[2]) / N}
	var won WinningCondition
	for k := 0; k <= N; k++ {
		q := a[0] + k*step[0]
		r := a[1] + k*step[1]
		x, y := cubeToXY(q, r)
		c := XYToCell(x, y)
		won = p.MakePermanentMove(White, c).WinningCondition()
	}
	if won != Bridge {
		t.Fatalf("walking a full edge between two corners should declare Bridge, got %v", won)
	}
}
