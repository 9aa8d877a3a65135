package depot

type bufferState int

const (
	BufferOpen bufferState = iota
	BufferSubmitted
	BufferClosed
)

type pendingChange struct {
	remove bool
	value  any
}

// pendingEntity is the coalesced change record of one entity. A later
// operation on the same component replaces an earlier one.
type pendingEntity struct {
	id      EntityID
	changes map[ComponentID]pendingChange
	order   []ComponentID
}

func newPendingEntity(id EntityID) *pendingEntity {
	return &pendingEntity{id: id, changes: make(map[ComponentID]pendingChange)}
}

func (p *pendingEntity) set(id ComponentID, change pendingChange) {
	if _, seen := p.changes[id]; !seen {
		p.order = append(p.order, id)
	}
	p.changes[id] = change
}

// CommandBuffer records structural changes and applies them in one pass.
// Within Execute, component changes apply first, then entity creations,
// then entity destructions, each in submission order.
type CommandBuffer struct {
	world *World
	async bool
	state bufferState

	pending        map[EntityID]*pendingEntity
	order          []EntityID
	creates        []*EntityBuilder
	reserved       map[EntityID]struct{}
	destroys       []EntityID
	pendingDestroy map[EntityID]struct{}
}

func newCommandBuffer(w *World, async bool) *CommandBuffer {
	return &CommandBuffer{
		world:          w,
		async:          async,
		pending:        make(map[EntityID]*pendingEntity),
		reserved:       make(map[EntityID]struct{}),
		pendingDestroy: make(map[EntityID]struct{}),
	}
}

func (b *CommandBuffer) State() bufferState {
	return b.state
}

func (b *CommandBuffer) Async() bool {
	return b.async
}

// writable accepts live entities and entities this buffer creates.
func (b *CommandBuffer) writable(id EntityID) error {
	if b.state != BufferOpen {
		return ClosedBufferError{}
	}
	if b.world.HasEntity(id) {
		return nil
	}
	if _, ok := b.reserved[id]; ok {
		return nil
	}
	return UnknownEntityError{Entity: id}
}

func (b *CommandBuffer) record(id EntityID, c ComponentID, change pendingChange) error {
	if err := b.writable(id); err != nil {
		return err
	}
	if _, ok := b.reserved[id]; ok {
		return PendingEntityError{Entity: id}
	}
	if !b.world.registry.known(c) {
		return UnknownComponentError{Component: c}
	}
	// Entity is going away this buffer; component changes are moot.
	if _, destroyed := b.pendingDestroy[id]; destroyed {
		return nil
	}
	p, ok := b.pending[id]
	if !ok {
		p = newPendingEntity(id)
		b.pending[id] = p
		b.order = append(b.order, id)
	}
	p.set(c, change)
	return nil
}

// AddComponent queues the component value for the entity. Adding a
// component the entity already has overwrites its value.
func (b *CommandBuffer) AddComponent(id EntityID, cv ComponentValue) error {
	return b.record(id, cv.id, pendingChange{value: cv.value})
}

func (b *CommandBuffer) RemoveComponent(id EntityID, c ComponentType) error {
	return b.record(id, c.ID(), pendingChange{remove: true})
}

// CreateEntity reserves an id and returns a builder. The entity is
// registered when the buffer executes, after component changes, so its
// components are staged with EntityBuilder.Add rather than AddComponent.
// The id may be passed to RemoveEntity.
func (b *CommandBuffer) CreateEntity() (*EntityBuilder, error) {
	if b.state != BufferOpen {
		return nil, ClosedBufferError{}
	}
	builder := newEntityBuilder(b.world, b)
	b.creates = append(b.creates, builder)
	b.reserved[builder.id] = struct{}{}
	return builder, nil
}

func (b *CommandBuffer) RemoveEntity(id EntityID) error {
	if err := b.writable(id); err != nil {
		return err
	}
	if _, queued := b.pendingDestroy[id]; queued {
		return nil
	}
	b.pendingDestroy[id] = struct{}{}
	b.destroys = append(b.destroys, id)
	if _, hasMods := b.pending[id]; hasMods {
		delete(b.pending, id)
	}
	return nil
}

// Execute applies every recorded change and closes the buffer. Async
// buffers are applied by the world after Submit instead.
func (b *CommandBuffer) Execute() error {
	if b.async {
		return ErrAsyncBuffer
	}
	return b.execute()
}

// Submit hands an async buffer to the world. It is applied once, during
// the next tick, after the systems' buffer.
func (b *CommandBuffer) Submit() error {
	if !b.async {
		return ErrSyncBuffer
	}
	if b.state != BufferOpen {
		return ClosedBufferError{}
	}
	b.state = BufferSubmitted
	b.world.async = append(b.world.async, b)
	return nil
}

func (b *CommandBuffer) execute() error {
	if b.state == BufferClosed {
		return ClosedBufferError{}
	}
	b.state = BufferClosed
	w := b.world

	for _, id := range b.order {
		p, ok := b.pending[id]
		if !ok {
			continue
		}
		e, ok := w.entities[id]
		if !ok {
			if _, gone := w.destroyedThisTick[id]; gone {
				continue
			}
			return UnknownEntityError{Entity: id}
		}
		if err := w.applyChanges(e, p); err != nil {
			return err
		}
	}

	for _, builder := range b.creates {
		if _, err := w.spawn(builder); err != nil {
			return err
		}
	}

	for _, id := range b.destroys {
		if err := w.despawn(id); err != nil {
			return err
		}
	}
	return nil
}
