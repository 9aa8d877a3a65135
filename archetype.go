package depot

import (
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/TheBitDrifter/mask"
	iter_util "github.com/TheBitDrifter/util/iter"
)

// Archetype is an immutable, sorted set of component ids. Every distinct
// archetype owns exactly one storage partition.
//
// Archetypes are values: AddComponent and RemoveComponent return a new
// archetype and leave the receiver untouched, so an archetype can be shared
// freely between entities and used as a key through Key.
type Archetype struct {
	ids  []ComponentID
	key  string
	bits mask.Mask
}

// NewArchetype builds an archetype from ids in any order. Duplicates collapse.
func NewArchetype(ids ...ComponentID) Archetype {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return newSortedArchetype(slices.Compact(sorted))
}

func archetypeFromSeq(seq iter.Seq[ComponentID]) Archetype {
	return NewArchetype(iter_util.Collect(seq)...)
}

func newSortedArchetype(ids []ComponentID) Archetype {
	a := Archetype{ids: ids}
	var key strings.Builder
	for i, id := range ids {
		if i > 0 {
			key.WriteByte(',')
		}
		key.WriteString(strconv.FormatUint(uint64(id), 10))
		a.bits.Mark(uint32(id))
	}
	a.key = key.String()
	return a
}

// Key is the canonical hash of the archetype. Two archetypes share a
// partition iff their keys are equal.
func (a Archetype) Key() string {
	return a.key
}

func (a Archetype) Len() int {
	return len(a.ids)
}

// IDs returns a copy of the sorted component ids.
func (a Archetype) IDs() []ComponentID {
	return slices.Clone(a.ids)
}

func (a Archetype) All() iter.Seq[ComponentID] {
	return slices.Values(a.ids)
}

func (a Archetype) Equal(other Archetype) bool {
	return a.key == other.key
}

func (a Archetype) String() string {
	return "[" + a.key + "]"
}

// HasComponent scans the sorted ids and stops at the first larger one.
func (a Archetype) HasComponent(id ComponentID) bool {
	for _, local := range a.ids {
		if local == id {
			return true
		}
		if local > id {
			return false
		}
	}
	return false
}

func (a Archetype) AddComponent(id ComponentID) Archetype {
	at, found := slices.BinarySearch(a.ids, id)
	if found {
		return a
	}
	ids := make([]ComponentID, 0, len(a.ids)+1)
	ids = append(ids, a.ids[:at]...)
	ids = append(ids, id)
	ids = append(ids, a.ids[at:]...)
	return newSortedArchetype(ids)
}

func (a Archetype) RemoveComponent(id ComponentID) Archetype {
	at, found := slices.BinarySearch(a.ids, id)
	if !found {
		return a
	}
	ids := make([]ComponentID, 0, len(a.ids)-1)
	ids = append(ids, a.ids[:at]...)
	ids = append(ids, a.ids[at+1:]...)
	return newSortedArchetype(ids)
}

// Overlap returns the ids present in both archetypes, ascending.
func (a Archetype) Overlap(other Archetype) []ComponentID {
	var out []ComponentID
	i, j := 0, 0
	for i < len(a.ids) && j < len(other.ids) {
		switch {
		case a.ids[i] == other.ids[j]:
			out = append(out, a.ids[i])
			i++
			j++
		case a.ids[i] < other.ids[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// Diff returns the ids of other that are absent from a, ascending.
// a.Diff(b) is what appears moving from a to b; b.Diff(a) is what disappears.
func (a Archetype) Diff(other Archetype) []ComponentID {
	var out []ComponentID
	i := 0
	for _, id := range other.ids {
		for i < len(a.ids) && a.ids[i] < id {
			i++
		}
		if i < len(a.ids) && a.ids[i] == id {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (a Archetype) containsAll(bits mask.Mask) bool {
	return a.bits.ContainsAll(bits)
}

func (a Archetype) containsNone(bits mask.Mask) bool {
	return a.bits.ContainsNone(bits)
}
