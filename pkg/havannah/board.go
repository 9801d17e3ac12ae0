package havannah

// Board geometry embeds the hex-hex board in a (2*SideLength-1)-wide
// rhombus of axial coordinates (x, y), valid where |x-y| <= boardRadius.
// Neighbor offsets and the 60-degree rotation below follow the standard
// cube-coordinate identities for hex grids (q = x-mid, r = mid-y,
// s = y-x, q+r+s = 0).

var neighborDeltas = [6][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 0}, {-1, -1}, {0, -1},
}

func xyValid(x, y int) bool {
	if x < 0 || x >= boardWidth || y < 0 || y >= boardWidth {
		return false
	}
	d := x - y
	if d < 0 {
		d = -d
	}
	return d <= boardRadius
}

// xyToCellID and cellIDToXY are built once at init from a deterministic
// row-major walk over valid (x, y) pairs, assigning Cell IDs 1..NumCells.
var xyToCellID [boardWidth][boardWidth]Cell
var cellIDToXY [NumCells + 1][2]int

func init() {
	var next Cell = 1
	for y := 0; y < boardWidth; y++ {
		for x := 0; x < boardWidth; x++ {
			if xyValid(x, y) {
				xyToCellID[x][y] = next
				cellIDToXY[next] = [2]int{x, y}
				next++
			}
		}
	}
	if int(next)-1 != NumCells {
		panic("havannah: cell enumeration mismatch")
	}
	initEdgesAndCorners()
}

// XYToCell returns the Cell at axial coordinate (x, y), or ZerothCell if
// the coordinate is off-board.
func XYToCell(x, y int) Cell {
	if !xyValid(x, y) {
		return ZerothCell
	}
	return xyToCellID[x][y]
}

// CellToXY returns the axial coordinate of a real Cell.
func CellToXY(c Cell) (x, y int) {
	p := cellIDToXY[c]
	return p[0], p[1]
}

func cubeCoords(x, y int) (q, r, s int) {
	q = x - boardRadius
	r = boardRadius - y
	s = y - x
	return
}

func cubeToXY(q, r int) (x, y int) {
	return q + boardRadius, boardRadius - r
}

// rotate60 rotates cube coordinates by one 60-degree step.
func rotate60(q, r, s int) (int, int, int) {
	return -r, -s, -q
}

// Neighbors appends the up-to-6 real neighbors of c to dst and returns
// the extended slice. Off-board neighbors are omitted.
func Neighbors(c Cell, dst []Cell) []Cell {
	x, y := CellToXY(c)
	for _, d := range neighborDeltas {
		if n := XYToCell(x+d[0], y+d[1]); n != ZerothCell {
			dst = append(dst, n)
		}
	}
	return dst
}

// edgeOf and cornerOf classify a real cell's boundary membership, or -1
// if the cell is interior. A cell is a corner if two of its cube
// coordinates sit at the board radius; an edge if exactly one does.
var cellEdgeIndex [NumCells + 1]int8
var cellCornerIndex [NumCells + 1]int8

var cornerCube [6][3]int

func initEdgesAndCorners() {
	for i := range cellEdgeIndex {
		cellEdgeIndex[i] = -1
		cellCornerIndex[i] = -1
	}

	N := boardRadius
	cornerCube[0] = [3]int{N, -N, 0}
	for i := 1; i < 6; i++ {
		q, r, s := rotate60(cornerCube[i-1][0], cornerCube[i-1][1], cornerCube[i-1][2])
		cornerCube[i] = [3]int{q, r, s}
	}

	for i := 0; i < 6; i++ {
		x, y := cubeToXY(cornerCube[i][0], cornerCube[i][1])
		cellCornerIndex[XYToCell(x, y)] = int8(i)
	}

	for i := 0; i < 6; i++ {
		a := cornerCube[i]
		b := cornerCube[(i+1)%6]
		step := [3]int{(b[0] - a[0]) / N, (b[1] - a[1]) / N, (b[2] - a[2]) / N}
		for k := 1; k < N; k++ {
			q := a[0] + k*step[0]
			r := a[1] + k*step[1]
			x, y := cubeToXY(q, r)
			cellEdgeIndex[XYToCell(x, y)] = int8(i)
		}
	}
}

// EdgeOf returns the 0..5 edge index a real cell lies on, or -1.
func EdgeOf(c Cell) int { return int(cellEdgeIndex[c]) }

// CornerOf returns the 0..5 corner index a real cell lies on, or -1.
func CornerOf(c Cell) int { return int(cellCornerIndex[c]) }

// edgeCellSet and cornerCellSet are the fixed geometric membership of
// each virtual edge/corner chain, mirroring original_source/engine.cc's
// static Position::GetEdgeChain(i)/GetCornerChain(i): these never
// change as the game is played, unlike a player's own stone chains.
var edgeCellSet [6][]Cell
var cornerCellSet [6][1]Cell

func init() {
	for c := Cell(1); c <= NumCells; c++ {
		if e := EdgeOf(c); e >= 0 {
			edgeCellSet[e] = append(edgeCellSet[e], c)
		}
		if k := CornerOf(c); k >= 0 {
			cornerCellSet[k][0] = c
		}
	}
}

// EdgeCells returns the fixed set of real cells on edge i (0..5).
func EdgeCells(i int) []Cell { return edgeCellSet[i] }

// CornerCells returns the single real cell at corner i (0..5), as a
// slice so it composes with BFS source lists.
func CornerCells(i int) []Cell { return cornerCellSet[i][:] }

// IsBoundary reports whether c touches either a virtual edge or corner.
func IsBoundary(c Cell) bool { return EdgeOf(c) >= 0 || CornerOf(c) >= 0 }

// Rotate60 maps a real cell to the cell 60 degrees clockwise around the
// board center; used only by evaluator symmetry tests, never by search.
func Rotate60(c Cell) Cell {
	x, y := CellToXY(c)
	q, r, s := cubeCoords(x, y)
	q2, r2, _ := rotate60(q, r, s)
	nx, ny := cubeToXY(q2, r2)
	return XYToCell(nx, ny)
}
