package depot

import (
	"errors"
	"slices"
	"testing"

	"go.uber.org/zap"
)

type storageFixture struct {
	s                *DataStorage
	pos, vel, frozen ComponentID
}

func newStorageFixture(t *testing.T, chunkSize int) storageFixture {
	t.Helper()
	reg := newRegistry(maskWidth)
	pos, err := reg.register("Position", 16, func(c int) column { return newTypedColumn[Position](c) })
	if err != nil {
		t.Fatalf("Failed to register Position: %v", err)
	}
	vel, err := reg.register("Velocity", 16, func(c int) column { return newTypedColumn[Velocity](c) })
	if err != nil {
		t.Fatalf("Failed to register Velocity: %v", err)
	}
	frozen, err := reg.register("Frozen", 0, nil)
	if err != nil {
		t.Fatalf("Failed to register Frozen: %v", err)
	}
	return storageFixture{
		s:      newDataStorage(reg, chunkSize, func() uint64 { return 7 }, zap.NewNop()),
		pos:    pos,
		vel:    vel,
		frozen: frozen,
	}
}

// fill writes n entities, ids 1..n, into archetype a with a Position of X=id
// and, when a carries it, a Velocity of Y=id.
func (f storageFixture) fill(t *testing.T, a Archetype, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		id := EntityID(i)
		if err := f.s.SetComponentData(id, a, f.pos, Position{X: float64(i)}); err != nil {
			t.Fatalf("SetComponentData(%d) failed: %v", id, err)
		}
		if a.HasComponent(f.vel) {
			if err := f.s.SetComponentData(id, a, f.vel, Velocity{Y: float64(i)}); err != nil {
				t.Fatalf("SetComponentData(%d) failed: %v", id, err)
			}
		}
	}
}

// TestStorageGrowsByChunk tests capacity growth in whole chunks
func TestStorageGrowsByChunk(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		entities  int
		wantCap   int
	}{
		{"Single chunk", 4, 3, 4},
		{"Exact fit", 4, 4, 4},
		{"Second chunk", 4, 5, 8},
		{"Many chunks", 2, 7, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStorageFixture(t, tt.chunkSize)
			a := NewArchetype(f.pos)
			f.fill(t, a, tt.entities)

			p, ok := f.s.Partition(a)
			if !ok {
				t.Fatalf("partition for %v was not created", a)
			}
			if p.Len() != tt.entities {
				t.Errorf("Len = %d, want %d", p.Len(), tt.entities)
			}
			if p.Cap() != tt.wantCap {
				t.Errorf("Cap = %d, want %d", p.Cap(), tt.wantCap)
			}
			for i := 1; i <= tt.entities; i++ {
				got, ok := f.s.Get(EntityID(i), a, f.pos)
				if !ok || got.(Position).X != float64(i) {
					t.Errorf("entity %d Position = %v, want X=%d", i, got, i)
				}
			}
			if err := f.s.Verify(); err != nil {
				t.Errorf("Verify: %v", err)
			}
		})
	}
}

// TestTransferCompactsSource tests swap-remove when an entity leaves a partition
func TestTransferCompactsSource(t *testing.T) {
	tests := []struct {
		name      string
		moved     EntityID
		wantOrder []EntityID
	}{
		{"From first row", 1, []EntityID{4, 2, 3}},
		{"From middle row", 2, []EntityID{1, 4, 3}},
		{"From last row", 4, []EntityID{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStorageFixture(t, 2)
			src := NewArchetype(f.pos, f.vel)
			dst := NewArchetype(f.pos)
			f.fill(t, src, 4)

			if err := f.s.TransferData(tt.moved, src, dst); err != nil {
				t.Fatalf("TransferData failed: %v", err)
			}

			p, _ := f.s.Partition(src)
			if p.Len() != 3 {
				t.Errorf("source Len = %d, want 3", p.Len())
			}
			if got := p.Entities(); !slices.Equal(got, tt.wantOrder) {
				t.Errorf("source rows = %v, want %v", got, tt.wantOrder)
			}
			for _, id := range tt.wantOrder {
				v, ok := f.s.Get(id, src, f.vel)
				if !ok || v.(Velocity).Y != float64(id) {
					t.Errorf("entity %d Velocity = %v after compaction, want Y=%d", id, v, id)
				}
			}
			if _, ok := p.Row(tt.moved); ok {
				t.Errorf("entity %d still indexed in source", tt.moved)
			}

			got, ok := f.s.Get(tt.moved, dst, f.pos)
			if !ok || got.(Position).X != float64(tt.moved) {
				t.Errorf("moved Position = %v, want X=%d", got, tt.moved)
			}
			if _, ok := f.s.Get(tt.moved, dst, f.vel); ok {
				t.Errorf("Velocity present in destination without the component")
			}
			if err := f.s.Verify(); err != nil {
				t.Errorf("Verify: %v", err)
			}
		})
	}
}

func TestTransferRoundTrip(t *testing.T) {
	f := newStorageFixture(t, 4)
	a := NewArchetype(f.pos, f.vel)
	b := NewArchetype(f.pos, f.frozen)
	f.fill(t, a, 3)

	if err := f.s.TransferData(2, a, b); err != nil {
		t.Fatalf("TransferData A->B failed: %v", err)
	}
	if err := f.s.TransferData(2, b, a); err != nil {
		t.Fatalf("TransferData B->A failed: %v", err)
	}

	got, ok := f.s.Get(2, a, f.pos)
	if !ok || got.(Position) != (Position{X: 2}) {
		t.Errorf("Position after round trip = %v, want {2 0}", got)
	}
	// Velocity is not shared with B, so it comes back zeroed.
	v, ok := f.s.Get(2, a, f.vel)
	if !ok || v.(Velocity) != (Velocity{}) {
		t.Errorf("Velocity after round trip = %v, want zero", v)
	}
	if err := f.s.Verify(); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestEmptyPartitionTracking(t *testing.T) {
	f := newStorageFixture(t, 4)
	a := NewArchetype(f.pos)
	b := NewArchetype(f.pos, f.frozen)
	f.fill(t, a, 2)

	p, _ := f.s.Partition(a)
	if _, ok := p.EmptiedAt(); ok {
		t.Errorf("EmptiedAt reported for an occupied partition")
	}

	for _, id := range []EntityID{1, 2} {
		if err := f.s.TransferData(id, a, b); err != nil {
			t.Fatalf("TransferData(%d) failed: %v", id, err)
		}
	}

	empty := f.s.EmptyPartitions()
	if len(empty) != 1 || !empty[0].Equal(a) {
		t.Errorf("EmptyPartitions = %v, want [%v]", empty, a)
	}
	if at, ok := p.EmptiedAt(); !ok || at != 7 {
		t.Errorf("EmptiedAt = %d, %v, want 7, true", at, ok)
	}
	if p.Cap() != 4 {
		t.Errorf("empty partition Cap = %d, want 4", p.Cap())
	}
}

func TestStorageInvariantErrors(t *testing.T) {
	f := newStorageFixture(t, 4)
	a := NewArchetype(f.pos)
	f.fill(t, a, 1)

	tests := []struct {
		name string
		op   func() error
	}{
		{"Component outside archetype", func() error {
			return f.s.SetComponentData(1, a, f.vel, Velocity{})
		}},
		{"Mismatched value type", func() error {
			return f.s.SetComponentData(1, a, f.pos, "nope")
		}},
		{"Transfer without a source row", func() error {
			return f.s.TransferData(9, a, NewArchetype(f.pos, f.vel))
		}},
		{"Remove without a row", func() error {
			return f.s.Remove(9, a)
		}},
		{"Duplicate insert", func() error {
			return f.s.Insert(1, a)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inv InvariantError
			if err := tt.op(); !errors.As(err, &inv) {
				t.Errorf("error = %v, want InvariantError", err)
			}
		})
	}
}

func TestTransferFromMissingPartition(t *testing.T) {
	f := newStorageFixture(t, 4)
	a := NewArchetype(f.pos)
	f.fill(t, a, 1)
	before := len(f.s.Partitions())

	var inv InvariantError
	err := f.s.TransferData(1, NewArchetype(f.vel), NewArchetype(f.pos, f.vel))
	if !errors.As(err, &inv) {
		t.Fatalf("error = %v, want InvariantError", err)
	}
	if got := len(f.s.Partitions()); got != before {
		t.Errorf("Partitions = %d after rejected transfer, want %d", got, before)
	}
	if empty := f.s.EmptyPartitions(); len(empty) != 0 {
		t.Errorf("EmptyPartitions = %v, want none", empty)
	}
}

func TestStorageTagsHaveNoColumn(t *testing.T) {
	f := newStorageFixture(t, 4)
	a := NewArchetype(f.pos, f.frozen)

	if err := f.s.SetComponentData(1, a, f.frozen, nil); err != nil {
		t.Fatalf("tag write failed: %v", err)
	}
	if _, ok := f.s.Get(1, a, f.frozen); ok {
		t.Errorf("Get returned a value for a tag")
	}
	got, ok := f.s.Get(1, a, f.pos)
	if !ok || got.(Position) != (Position{}) {
		t.Errorf("unwritten Position = %v, want zero", got)
	}
}
