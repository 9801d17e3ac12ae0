package havannah

// Chain is a read-only snapshot of one of a player's current stone
// groups: its cells plus which virtual edges/corners it has already
// touched. Returned by GetCurrentChains for the evaluator to compute
// two-distance BFS from.
type Chain struct {
	Cells          []Cell
	TouchedEdges   uint8
	TouchedCorners uint8
}

// GetCurrentChains returns one Chain per maximal connected group of
// player's stones currently on the board.
func (p *Position) GetCurrentChains(player Player) []Chain {
	cs := p.chains[player]
	byRoot := map[int32][]Cell{}
	for c := 1; c <= NumCells; c++ {
		if cs.inChain[c] {
			root := cs.find(Cell(c))
			byRoot[root] = append(byRoot[root], Cell(c))
		}
	}
	chains := make([]Chain, 0, len(byRoot))
	for root, cells := range byRoot {
		chains = append(chains, Chain{
			Cells:          cells,
			TouchedEdges:   cs.touchedEdges[root],
			TouchedCorners: cs.touchedCorners[root],
		})
	}
	return chains
}

// RingFrameCount and RingFrame enumerate the minimal-hexagon ring
// templates available to player: for every interior cell with six
// on-board neighbors, no opponent stone on its perimeter, and a
// perimeter partly (not wholly) filled by player, the list of
// as-yet-unfilled perimeter cells. This is a deliberately small
// realization of the "ring frame" contract (spec's pair-list format);
// DESIGN.md notes which ring shapes it does not enumerate.
func (p *Position) RingFrameCount(player Player) int {
	return len(p.ringFrames(player))
}

func (p *Position) RingFrame(player Player, i int) []Cell {
	frames := p.ringFrames(player)
	if i < 0 || i >= len(frames) {
		return nil
	}
	return frames[i]
}

func (p *Position) ringFrames(player Player) [][]Cell {
	opponent := Opponent(player)
	var frames [][]Cell
	var nbuf [6]Cell
	for c := 1; c <= NumCells; c++ {
		center := Cell(c)
		neighbors := Neighbors(center, nbuf[:0])
		if len(neighbors) != 6 {
			continue // skip boundary centers; their ring would run off-board
		}
		dead := false
		var remaining []Cell
		for _, n := range neighbors {
			if occ, ok := p.Occupant(n); ok {
				if occ == opponent {
					dead = true
					break
				}
				continue // already player's own stone, not "remaining"
			}
			remaining = append(remaining, n)
		}
		if dead || len(remaining) == 0 || len(remaining) == 6 {
			continue // dead, already a ring, or wholly unstarted (no signal yet)
		}
		frames = append(frames, remaining)
	}
	return frames
}
