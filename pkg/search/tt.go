package search

import "sync/atomic"

// Kind is the bound type a transposition-table entry records.
type Kind uint8

const (
	KindExact Kind = iota
	KindAlpha
	KindBeta
)

// Value is the unpacked form of a transposition-table entry: a score in
// centi-potential units, the bound kind it represents, the search depth
// it was stored at, and the id of this node's move-list vector in the
// searcher's arena.
type Value struct {
	Score      int32
	Kind       Kind
	Depth      int32
	MovesIndex uint32
}

// pack/unpack lay Value out as a single uint64 word so a reader never
// observes a torn mix of one writer's depth with another's score; that
// atomicity is the only property this encoding needs to preserve. The
// exact bit split is not load-bearing otherwise. scoreBits is wide
// enough to hold an unrefined, evaluator-scaled horizon value (up to
// MaxDistance centi-units) with headroom for the alpha/beta window
// shifting by PotentialScale at every ply; idBits keeps the move-list
// arena's full 32-bit id space; depthBits still comfortably covers the
// iterative-deepening depths this search runs to in practice.
const (
	scoreBits = 22
	kindBits  = 2
	depthBits = 8
	idBits    = 32

	scoreMask = (uint64(1) << scoreBits) - 1
	kindMask  = (uint64(1) << kindBits) - 1
	depthMask = (uint64(1) << depthBits) - 1
	idMask    = (uint64(1) << idBits) - 1

	scoreShift = kindBits + depthBits + idBits
	kindShift  = depthBits + idBits
	depthShift = idBits

	scoreBias = int32(1) << (scoreBits - 1) // bias so negative scores pack unsigned
)

func packValue(v Value) uint64 {
	biased := uint64(v.Score+scoreBias) & scoreMask
	return biased<<scoreShift |
		(uint64(v.Kind)&kindMask)<<kindShift |
		(uint64(v.Depth)&depthMask)<<depthShift |
		uint64(v.MovesIndex)&idMask
}

func unpackValue(w uint64) Value {
	return Value{
		Score:      int32((w>>scoreShift)&scoreMask) - scoreBias,
		Kind:       Kind((w >> kindShift) & kindMask),
		Depth:      int32((w >> depthShift) & depthMask),
		MovesIndex: uint32(w & idMask),
	}
}

// emptyKey is the sentinel marking an unused slot. Hash 0 is remapped
// to emptySubstitute so a real position can never collide with it.
const emptyKey = uint64(0)
const emptySubstituteKey = ^uint64(0)

func canonicalKey(hash uint64) uint64 {
	if hash == emptyKey {
		return emptySubstituteKey
	}
	return hash
}

type ttSlot struct {
	key   atomic.Uint64
	value atomic.Uint64
}

// TT is a fixed-capacity, open-addressed, wait-free transposition
// table. Any number of goroutines may call FindValue and InsertKey
// concurrently; there is no global lock and no resizing.
type TT struct {
	slots []ttSlot
	count atomic.Int64
}

// DefaultCapacityLog2 is the default table size: 2^27 logical slots.
const DefaultCapacityLog2 = 27

// New returns a TT with 2^capacityLog2 slots. Tests use small values;
// production searchers use DefaultCapacityLog2.
func New(capacityLog2 uint) *TT {
	return &TT{slots: make([]ttSlot, uint64(1)<<capacityLog2)}
}

func (t *TT) probe(hash uint64) int {
	return int(hash % uint64(len(t.slots)))
}

// FindValue returns a pointer-like handle to the value word for hash,
// or (ValueRef{}, false) if hash has never been inserted. The handle's
// Load/Store let the caller read or update the value in place.
func (t *TT) FindValue(hash uint64) (ValueRef, bool) {
	key := canonicalKey(hash)
	n := len(t.slots)
	start := t.probe(hash)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		k := t.slots[idx].key.Load()
		if k == key {
			return ValueRef{slot: &t.slots[idx]}, true
		}
		if k == emptyKey {
			return ValueRef{}, false
		}
	}
	return ValueRef{}, false
}

// InsertKey reserves a slot for hash, returning a handle to its value
// word. If hash is already present, it returns the existing slot
// (idempotent against races: concurrent InsertKey calls for the same
// key converge on the same slot). Returns (ValueRef{}, false) if the
// table is saturated — the caller must silently skip caching.
func (t *TT) InsertKey(hash uint64) (ValueRef, bool) {
	key := canonicalKey(hash)
	n := len(t.slots)
	start := t.probe(hash)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		slot := &t.slots[idx]
		k := slot.key.Load()
		if k == key {
			return ValueRef{slot: slot}, true
		}
		if k == emptyKey {
			if slot.key.CompareAndSwap(emptyKey, key) {
				t.count.Add(1)
				return ValueRef{slot: slot}, true
			}
			// Lost the race: re-read and either this is our key
			// (another inserter beat us to the exact same key) or
			// someone else's, in which case keep probing.
			if slot.key.Load() == key {
				return ValueRef{slot: slot}, true
			}
		}
	}
	return ValueRef{}, false
}

// NumElements is an approximate, monotonic count used only for logging.
func (t *TT) NumElements() int64 { return t.count.Load() }

// Capacity is the table's fixed logical slot count.
func (t *TT) Capacity() int { return len(t.slots) }

// ValueRef is a handle to one slot's value word.
type ValueRef struct {
	slot *ttSlot
}

// Valid reports whether this ref names a real slot.
func (r ValueRef) Valid() bool { return r.slot != nil }

// Load reads the current value. Safe to call concurrently with Store.
func (r ValueRef) Load() Value { return unpackValue(r.slot.value.Load()) }

// Store writes a new value in place, atomically.
func (r ValueRef) Store(v Value) { r.slot.value.Store(packValue(v)) }
