package depot

import (
	"slices"
	"testing"
)

// TestArchetypeOverlapAndDiff checks the merge-walk set operations
func TestArchetypeOverlapAndDiff(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []ComponentID
		overlap []ComponentID
		diffAB  []ComponentID
		diffBA  []ComponentID
	}{
		{
			name:    "Disjoint",
			a:       []ComponentID{1, 3},
			b:       []ComponentID{2, 4},
			overlap: nil,
			diffAB:  []ComponentID{2, 4},
			diffBA:  []ComponentID{1, 3},
		},
		{
			name:    "Partial overlap",
			a:       []ComponentID{1, 2, 5},
			b:       []ComponentID{2, 5, 9},
			overlap: []ComponentID{2, 5},
			diffAB:  []ComponentID{9},
			diffBA:  []ComponentID{1},
		},
		{
			name:    "Subset",
			a:       []ComponentID{4},
			b:       []ComponentID{0, 4, 7},
			overlap: []ComponentID{4},
			diffAB:  []ComponentID{0, 7},
			diffBA:  nil,
		},
		{
			name:    "Identical",
			a:       []ComponentID{3, 1},
			b:       []ComponentID{1, 3},
			overlap: []ComponentID{1, 3},
			diffAB:  nil,
			diffBA:  nil,
		},
		{
			name:    "Empty side",
			a:       nil,
			b:       []ComponentID{6},
			overlap: nil,
			diffAB:  []ComponentID{6},
			diffBA:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := NewArchetype(tt.a...), NewArchetype(tt.b...)

			if got := a.Overlap(b); !slices.Equal(got, tt.overlap) {
				t.Errorf("Overlap(A,B) = %v, want %v", got, tt.overlap)
			}
			if got := b.Overlap(a); !slices.Equal(got, tt.overlap) {
				t.Errorf("Overlap(B,A) = %v, want %v", got, tt.overlap)
			}
			if got := a.Diff(b); !slices.Equal(got, tt.diffAB) {
				t.Errorf("Diff(A,B) = %v, want %v", got, tt.diffAB)
			}
			if got := b.Diff(a); !slices.Equal(got, tt.diffBA) {
				t.Errorf("Diff(B,A) = %v, want %v", got, tt.diffBA)
			}

			// Diff(A,B) and Diff(B,A) partition the symmetric difference
			symmetric := append(a.Diff(b), b.Diff(a)...)
			for _, id := range symmetric {
				if a.HasComponent(id) == b.HasComponent(id) {
					t.Errorf("id %d is in both or neither archetype", id)
				}
			}
			if len(symmetric)+2*len(tt.overlap) != a.Len()+b.Len() {
				t.Errorf("symmetric difference %v does not cover A=%v B=%v", symmetric, a, b)
			}
		})
	}
}

// TestArchetypeImmutability tests that add/remove return new archetypes
func TestArchetypeImmutability(t *testing.T) {
	base := NewArchetype(5, 1, 3, 3)

	if base.Key() != "1,3,5" {
		t.Fatalf("Key = %q, want %q", base.Key(), "1,3,5")
	}

	added := base.AddComponent(2)
	if !slices.Equal(added.IDs(), []ComponentID{1, 2, 3, 5}) {
		t.Errorf("AddComponent ids = %v, want [1 2 3 5]", added.IDs())
	}
	if base.Len() != 3 || base.HasComponent(2) {
		t.Errorf("receiver archetype changed: %v", base)
	}

	roundTrip := added.RemoveComponent(2)
	if !roundTrip.Equal(base) {
		t.Errorf("add then remove = %v, want %v", roundTrip, base)
	}

	if same := base.AddComponent(3); !same.Equal(base) {
		t.Errorf("adding a present id changed the archetype: %v", same)
	}
	if same := base.RemoveComponent(9); !same.Equal(base) {
		t.Errorf("removing an absent id changed the archetype: %v", same)
	}

	if !NewArchetype().Equal(Archetype{}) {
		t.Errorf("empty archetype is not equal to the zero value")
	}
}

func TestArchetypeHasComponent(t *testing.T) {
	a := NewArchetype(2, 4, 8)
	for id, want := range map[ComponentID]bool{0: false, 2: true, 3: false, 4: true, 8: true, 9: false} {
		if got := a.HasComponent(id); got != want {
			t.Errorf("HasComponent(%d) = %v, want %v", id, got, want)
		}
	}
}
