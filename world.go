package depot

import (
	"fmt"
	"slices"
	"time"

	"github.com/TheBitDrifter/bark"
	"go.uber.org/zap"
)

var _ Resolver = &World{}

// World owns the component registry, entity table, storage partitions,
// query caches and system schedule. It is driven one tick at a time by the
// host through Tick or Step and is not safe for concurrent use.
type World struct {
	config   Config
	log      *zap.Logger
	registry *registry
	storage  *DataStorage
	queries  *queryCache
	parent   Component[EntityID]

	entities   map[EntityID]*Entity
	nextEntity EntityID

	tree    *DependencyTree[string]
	systems map[string]System
	order   []string

	dt       time.Duration
	lastStep time.Time
	ticks    uint64
	ticking  bool
	poisoned error

	async             []*CommandBuffer
	touched           map[EntityID]struct{}
	deltas            map[ComponentID]struct{}
	expired           map[ComponentID]struct{}
	populationChanged bool
	destroyedThisTick map[EntityID]struct{}
}

type WorldOption func(*World)

func WithConfig(cfg Config) WorldOption {
	return func(w *World) {
		w.config = cfg
	}
}

func WithLogger(log *zap.Logger) WorldOption {
	return func(w *World) {
		if log != nil {
			w.log = log
		}
	}
}

func NewWorld(opts ...WorldOption) (*World, error) {
	w := &World{
		config:            DefaultConfig(),
		log:               zap.NewNop(),
		entities:          make(map[EntityID]*Entity),
		nextEntity:        1,
		tree:              NewDependencyTree[string](),
		systems:           make(map[string]System),
		touched:           make(map[EntityID]struct{}),
		deltas:            make(map[ComponentID]struct{}),
		expired:           make(map[ComponentID]struct{}),
		destroyedThisTick: make(map[EntityID]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid world config: %w", err)
	}
	w.registry = newRegistry(w.config.MaxComponents)
	w.storage = newDataStorage(w.registry, w.config.ChunkSize, func() uint64 { return w.ticks }, w.log)
	w.queries = newQueryCache(w.config.MaxQueries)

	parent, err := RegisterComponent[EntityID](w, "Parent")
	if err != nil {
		return nil, fmt.Errorf("failed to register parent relationship: %w", err)
	}
	w.parent = parent
	return w, nil
}

// ParentComponent is the relationship component read by the Parent
// condition. Its value is the parent's id; the reference is weak.
func (w *World) ParentComponent() Component[EntityID] {
	return w.parent
}

func (w *World) Config() Config {
	return w.config
}

func (w *World) Logger() *zap.Logger {
	return w.log
}

// Component returns the descriptor registered under id.
func (w *World) Component(id ComponentID) (ComponentDescriptor, bool) {
	return w.registry.descriptor(id)
}

func (w *World) Storage() *DataStorage {
	return w.storage
}

// Dt is the elapsed time handed to the current (or last) tick.
func (w *World) Dt() time.Duration {
	return w.dt
}

// Ticks counts completed ticks.
func (w *World) Ticks() uint64 {
	return w.ticks
}

func (w *World) Entity(id EntityID) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

func (w *World) HasEntity(id EntityID) bool {
	_, ok := w.entities[id]
	return ok
}

func (w *World) EntityCount() int {
	return len(w.entities)
}

func (w *World) ParentOf(e *Entity) (EntityID, bool) {
	id, ok := w.parent.Get(w, e.id)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// NewEntity returns a builder that creates the entity on Commit.
func (w *World) NewEntity() *EntityBuilder {
	return newEntityBuilder(w, nil)
}

// NewAsyncCommandBuffer returns a buffer for use outside the system pass,
// such as from a host event callback. It checks entity ids as operations
// are recorded and is applied during the tick after Submit.
func (w *World) NewAsyncCommandBuffer() *CommandBuffer {
	return newCommandBuffer(w, true)
}

func (w *World) reserveID() EntityID {
	id := w.nextEntity
	w.nextEntity++
	return id
}

// RegisterQuery returns the handle for the condition list, creating and
// populating its cache on first sight. Structurally equal lists share one
// handle regardless of order.
func (w *World) RegisterQuery(conditions ...Condition) (QueryID, error) {
	hash := queryHash(conditions)
	if id, ok := w.queries.GetIndex(hash); ok {
		return id, nil
	}
	q := newQuery(conditions, w)
	id, err := w.queries.Register(q)
	if err != nil {
		return 0, err
	}
	q.recalculate(w.entities, w)
	w.log.Debug("query registered",
		zap.Uint32("query", uint32(id)),
		zap.String("hash", q.hash),
		zap.Int("matched", len(q.entities)),
	)
	return id, nil
}

// QueryEntities returns the committed matches of a query in id order.
func (w *World) QueryEntities(id QueryID) []EntityID {
	q, ok := w.queries.GetItem(id)
	if !ok {
		return nil
	}
	return slices.Clone(q.entities)
}

// QueryArchetypes returns the distinct archetypes of the committed matches.
func (w *World) QueryArchetypes(id QueryID) []Archetype {
	q, ok := w.queries.GetItem(id)
	if !ok {
		return nil
	}
	return slices.Clone(q.archetypes)
}

func (w *World) Cursor(id QueryID) *Cursor {
	return newCursor(w, id)
}

// Step ticks with the time elapsed since the previous Step. The first
// Step ticks with a zero dt.
func (w *World) Step(now time.Time) error {
	var dt time.Duration
	if !w.lastStep.IsZero() {
		dt = now.Sub(w.lastStep)
	}
	w.lastStep = now
	return w.Tick(dt)
}

// Tick runs one full pass: systems in dependency order against a shared
// command buffer, then that buffer, then submitted async buffers, then the
// change-set advance and query recomputation. A failed tick poisons the
// world; the caller must discard it.
func (w *World) Tick(dt time.Duration) error {
	if w.poisoned != nil {
		return ErrWorldPoisoned
	}
	if w.ticking {
		return ErrTickInProgress
	}
	w.ticking = true
	defer func() { w.ticking = false }()

	w.dt = dt
	if err := w.tick(); err != nil {
		w.poisoned = err
		w.log.Error("tick failed, world poisoned", zap.Uint64("tick", w.ticks), zap.Error(err))
		return bark.AddTrace(err)
	}
	w.ticks++
	return nil
}

func (w *World) tick() error {
	ecb := newCommandBuffer(w, false)
	for _, name := range w.order {
		if err := w.systems[name].Execute(ecb); err != nil {
			return fmt.Errorf("system %q failed: %w", name, err)
		}
	}
	if err := ecb.execute(); err != nil {
		return fmt.Errorf("failed to apply command buffer: %w", err)
	}

	submitted := w.async
	w.async = nil
	for i, buffer := range submitted {
		if err := buffer.execute(); err != nil {
			return fmt.Errorf("failed to apply async command buffer %d: %w", i, err)
		}
	}

	w.advance()
	w.refresh()
	clear(w.destroyedThisTick)
	return nil
}

func (w *World) route(id ComponentID) {
	w.deltas[id] = struct{}{}
}

// expire records an id whose JustAdded/JustRemoved window closed.
func (w *World) expire(id ComponentID) {
	w.expired[id] = struct{}{}
}

// advance folds every entity's next change-sets into now. Only entities
// with a visible or pending change are visited; for the rest the fold is
// a no-op.
func (w *World) advance() {
	for id := range w.touched {
		e, ok := w.entities[id]
		if !ok || !e.advance(w.route, w.expire) {
			delete(w.touched, id)
		}
	}
}

// refresh recomputes the queries invalidated since the last refresh.
func (w *World) refresh() {
	for _, id := range w.queries.stale(w.deltas, w.expired, w.populationChanged) {
		q, _ := w.queries.GetItem(id)
		q.recalculate(w.entities, w)
	}
	clear(w.deltas)
	clear(w.expired)
	w.populationChanged = false
}

// applyChanges moves the entity to old + adds - removes, announces the
// difference, then writes the added values.
func (w *World) applyChanges(e *Entity, p *pendingEntity) error {
	prev := e.archetype
	next := archetypeFromSeq(func(yield func(ComponentID) bool) {
		for _, id := range prev.ids {
			if change, ok := p.changes[id]; ok && change.remove {
				continue
			}
			if !yield(id) {
				return
			}
		}
		for _, id := range p.order {
			if p.changes[id].remove || prev.HasComponent(id) {
				continue
			}
			if !yield(id) {
				return
			}
		}
	})

	if !next.Equal(prev) {
		if err := w.storage.TransferData(e.id, prev, next); err != nil {
			return err
		}
		e.archetype = next
		for _, id := range prev.Diff(next) {
			e.announceAdd(id)
		}
		for _, id := range next.Diff(prev) {
			e.announceRemove(id)
		}
		w.touched[e.id] = struct{}{}
	}

	for _, id := range p.order {
		change := p.changes[id]
		if change.remove {
			continue
		}
		if err := w.storage.SetComponentData(e.id, next, id, change.value); err != nil {
			return err
		}
		// A new parent id keeps the archetype but changes what Parent sees.
		if id == ParentComponentID && prev.HasComponent(id) {
			w.route(id)
		}
	}
	return nil
}

func (w *World) spawn(b *EntityBuilder) (*Entity, error) {
	if b.err != nil {
		return nil, b.err
	}
	if _, exists := w.entities[b.id]; exists {
		return nil, invariantf("entity %d spawned twice", b.id)
	}
	e := newEntity(b.id)
	if err := w.storage.Insert(e.id, e.archetype); err != nil {
		return nil, err
	}
	w.entities[e.id] = e
	w.populationChanged = true
	if err := w.applyChanges(e, b.pending); err != nil {
		return nil, err
	}
	return e, nil
}

func (w *World) despawn(id EntityID) error {
	e, ok := w.entities[id]
	if !ok {
		if _, gone := w.destroyedThisTick[id]; gone {
			return nil
		}
		return UnknownEntityError{Entity: id}
	}
	if err := w.storage.Remove(id, e.archetype); err != nil {
		return err
	}
	e.forEachTracked(w.route)
	delete(w.entities, id)
	delete(w.touched, id)
	w.destroyedThisTick[id] = struct{}{}
	w.populationChanged = true
	return nil
}

// commitImmediate applies a builder outside a tick. The new entity's
// change-sets are folded right away so its components read as just added
// for the coming tick, exactly as if it had been created during the
// previous one.
func (w *World) commitImmediate(b *EntityBuilder) (EntityID, error) {
	if w.poisoned != nil {
		return b.id, ErrWorldPoisoned
	}
	e, err := w.spawn(b)
	if err != nil {
		w.poisoned = err
		w.log.Error("entity commit failed, world poisoned", zap.Uint32("entity", uint32(b.id)), zap.Error(err))
		return b.id, bark.AddTrace(err)
	}
	if e.advance(w.route, w.expire) {
		w.touched[e.id] = struct{}{}
	}
	w.refresh()
	return e.id, nil
}
