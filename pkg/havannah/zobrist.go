package havannah

import "math/rand"

// Hash is a Zobrist-style incremental position hash. It is mutated in
// place by ModifyZobristHash, never recomputed from scratch, mirroring
// CounterGo's common/position.go Zobrist scheme (deterministic seed,
// XOR composition).
type Hash uint64

// pieceKeys[player][cell] is built once from a fixed seed, exactly as
// CounterGo's initKeys seeds rand.New(rand.NewSource(0)) so that two
// processes compute identical hashes for identical positions.
var pieceKeys [2][NumCells + 1]Hash

// AttackerPassHash and DefenderPassHash are folded into the hash when a
// side passes. They must not cancel each other or any real piece key,
// so they are fixed, distinct, high-entropy constants rather than drawn
// from the same table as pieceKeys.
const (
	AttackerPassHash Hash = 0x9e3779b97f4a7c15
	DefenderPassHash Hash = 0x61c8864680b583eb
)

func init() {
	src := rand.New(rand.NewSource(0))
	for p := 0; p < 2; p++ {
		for c := 1; c <= NumCells; c++ {
			pieceKeys[p][c] = Hash(src.Uint64())
		}
	}
}

// ModifyZobristHash XORs the key for (player, cell) into h and returns
// the result. Calling it twice with the same arguments is an involution:
// it both applies and undoes the same placement.
func ModifyZobristHash(h Hash, player Player, c Cell) Hash {
	return h ^ pieceKeys[player][c]
}
