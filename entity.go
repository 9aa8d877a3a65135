package depot

import (
	"github.com/TheBitDrifter/mask"
)

// EntityID identifies an entity. Ids come from a monotonic generator that
// starts at 1; 0 is never a live entity.
type EntityID uint32

// changeSet is a double-buffered set of component ids. next fills during a
// tick and becomes now at the tick boundary.
type changeSet struct {
	now, next       mask.Mask
	nowIDs, nextIDs []ComponentID
}

func (cs *changeSet) announce(id ComponentID) {
	bit := bitsOf(id)
	if cs.next.ContainsAll(bit) {
		return
	}
	cs.next.Mark(uint32(id))
	cs.nextIDs = append(cs.nextIDs, id)
}

// advance routes the ids entering now to route and the ids leaving it to
// expire. Leaving now changes only edge-triggered matches.
func (cs *changeSet) advance(route, expire func(ComponentID)) {
	for _, id := range cs.nowIDs {
		expire(id)
	}
	for _, id := range cs.nextIDs {
		route(id)
	}
	cs.now, cs.nowIDs = cs.next, cs.nextIDs
	cs.next, cs.nextIDs = noBits, nil
}

func (cs *changeSet) pending() bool {
	return len(cs.nowIDs) > 0 || len(cs.nextIDs) > 0
}

func (cs *changeSet) has(bits mask.Mask) bool {
	return cs.now.ContainsAll(bits)
}

// Entity is the world's record of one entity. The archetype is replaced,
// never mutated, when components change.
type Entity struct {
	id        EntityID
	archetype Archetype
	added     changeSet
	removed   changeSet
}

func newEntity(id EntityID) *Entity {
	return &Entity{id: id}
}

func (e *Entity) ID() EntityID {
	return e.id
}

func (e *Entity) Archetype() Archetype {
	return e.archetype
}

func (e *Entity) HasComponent(c ComponentType) bool {
	return e.archetype.HasComponent(c.ID())
}

// JustAdded reports whether c was added in the tick before the current one.
func (e *Entity) JustAdded(c ComponentType) bool {
	return e.added.has(bitsOf(c.ID()))
}

// JustRemoved reports whether c was removed in the tick before the current one.
func (e *Entity) JustRemoved(c ComponentType) bool {
	return e.removed.has(bitsOf(c.ID()))
}

func (e *Entity) announceAdd(id ComponentID) {
	e.added.announce(id)
}

func (e *Entity) announceRemove(id ComponentID) {
	e.removed.announce(id)
}

// advance folds next into now for both change sets. It reports whether
// the entity still carries a visible change.
func (e *Entity) advance(route, expire func(ComponentID)) bool {
	e.added.advance(route, expire)
	e.removed.advance(route, expire)
	return e.added.pending() || e.removed.pending()
}

// forEachTracked routes every id the entity is visible under: its
// archetype and both change sets.
func (e *Entity) forEachTracked(route func(ComponentID)) {
	for _, id := range e.archetype.ids {
		route(id)
	}
	for _, cs := range []*changeSet{&e.added, &e.removed} {
		for _, id := range cs.nowIDs {
			route(id)
		}
		for _, id := range cs.nextIDs {
			route(id)
		}
	}
}

var noBits mask.Mask

func bitsOf(ids ...ComponentID) mask.Mask {
	var bits mask.Mask
	for _, id := range ids {
		bits.Mark(uint32(id))
	}
	return bits
}
