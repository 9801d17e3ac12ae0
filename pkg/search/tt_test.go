package search

import "testing"

func TestPackUnpackValueRoundTrips(t *testing.T) {
	cases := []Value{
		{Score: 0, Kind: KindExact, Depth: 0, MovesIndex: 0},
		{Score: Won, Kind: KindExact, Depth: 5, MovesIndex: 42},
		{Score: Lost, Kind: KindExact, Depth: 255, MovesIndex: 1 << 31},
		{Score: -999900, Kind: KindAlpha, Depth: 12, MovesIndex: 7},
		{Score: 999900, Kind: KindBeta, Depth: 200, MovesIndex: 0xFFFFFFFF},
	}
	for _, v := range cases {
		got := unpackValue(packValue(v))
		if got != v {
			t.Fatalf("round trip of %+v gave %+v", v, got)
		}
	}
}

func TestInsertKeyIsIdempotent(t *testing.T) {
	tt := New(8)
	ref1, ok1 := tt.InsertKey(12345)
	ref2, ok2 := tt.InsertKey(12345)
	if !ok1 || !ok2 {
		t.Fatal("both inserts of the same key should succeed")
	}
	ref1.Store(Value{Score: 7, Kind: KindExact, Depth: 1, MovesIndex: 1})
	if got := ref2.Load().Score; got != 7 {
		t.Fatalf("second InsertKey returned a different slot: Score = %d, want 7", got)
	}
	if tt.NumElements() != 1 {
		t.Fatalf("NumElements() = %d, want 1 after inserting one distinct key twice", tt.NumElements())
	}
}

func TestFindValueMissesAnUninsertedKey(t *testing.T) {
	tt := New(8)
	if _, ok := tt.FindValue(999); ok {
		t.Fatal("FindValue should miss a key that was never inserted")
	}
}

func TestFindValueAfterInsert(t *testing.T) {
	tt := New(8)
	ref, ok := tt.InsertKey(42)
	if !ok {
		t.Fatal("InsertKey(42) should succeed on a fresh table")
	}
	ref.Store(Value{Score: -5, Kind: KindBeta, Depth: 3, MovesIndex: 9})

	found, ok := tt.FindValue(42)
	if !ok {
		t.Fatal("FindValue should hit a key just inserted")
	}
	if got := found.Load(); got.Score != -5 || got.Kind != KindBeta || got.Depth != 3 || got.MovesIndex != 9 {
		t.Fatalf("FindValue returned %+v, want Score=-5 Kind=KindBeta Depth=3 MovesIndex=9", got)
	}
}

func TestZeroHashDoesNotCollideWithEmptySlot(t *testing.T) {
	tt := New(8)
	ref, ok := tt.InsertKey(0)
	if !ok {
		t.Fatal("InsertKey(0) should succeed")
	}
	ref.Store(Value{Score: 3, Kind: KindExact, Depth: 0, MovesIndex: 0})

	if _, ok := tt.FindValue(999999); ok {
		t.Fatal("an unrelated hash should not be found just because hash 0 was inserted")
	}
	found, ok := tt.FindValue(0)
	if !ok || found.Load().Score != 3 {
		t.Fatal("hash 0 itself must still be findable after remapping past the empty sentinel")
	}
}
