package depot

// EntityBuilder collects the initial components of an entity. Builders
// from World.NewEntity apply on Commit; builders from a command buffer
// apply when the buffer executes.
type EntityBuilder struct {
	world     *World
	buffer    *CommandBuffer
	id        EntityID
	pending   *pendingEntity
	committed bool
	err       error
}

func newEntityBuilder(w *World, buffer *CommandBuffer) *EntityBuilder {
	id := w.reserveID()
	return &EntityBuilder{
		world:   w,
		buffer:  buffer,
		id:      id,
		pending: newPendingEntity(id),
	}
}

// ID is reserved at construction, so it can be referenced (for example as
// a Parent value) before the entity exists.
func (b *EntityBuilder) ID() EntityID {
	return b.id
}

// Add stages component values. A later value for the same component wins.
// The first failure is kept and reported by Err and Commit.
func (b *EntityBuilder) Add(values ...ComponentValue) *EntityBuilder {
	if b.err != nil {
		return b
	}
	if b.committed || (b.buffer != nil && b.buffer.state != BufferOpen) {
		b.err = ClosedBufferError{}
		return b
	}
	for _, cv := range values {
		if !b.world.registry.known(cv.id) {
			b.err = UnknownComponentError{Component: cv.id}
			return b
		}
		b.pending.set(cv.id, pendingChange{value: cv.value})
	}
	return b
}

func (b *EntityBuilder) Err() error {
	return b.err
}

// Commit creates the entity and its components as a single archetype
// transition. The new components are visible to JustAdded during the next
// tick's systems.
func (b *EntityBuilder) Commit() (EntityID, error) {
	if b.buffer != nil {
		return b.id, ErrDeferredCommit
	}
	if b.err != nil {
		return b.id, b.err
	}
	if b.committed {
		return b.id, ClosedBufferError{}
	}
	if b.world.ticking {
		return b.id, ErrTickInProgress
	}
	b.committed = true
	return b.world.commitImmediate(b)
}
