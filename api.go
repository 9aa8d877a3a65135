package depot

// ComponentType is anything that names a component id: Component, Tag,
// ComponentValue or a bare ComponentID.
type ComponentType interface {
	ID() ComponentID
}

// Condition is a predicate over committed entity state. Components lists
// every id the predicate reads; a query is recomputed when one of them
// changes on any entity.
type Condition interface {
	Evaluate(e *Entity, r Resolver) bool
	Components() []ComponentID
	Hash() string
}

// Resolver looks entities up by id for conditions that follow
// relationships. Lookups of dead ids report false.
type Resolver interface {
	Entity(id EntityID) (*Entity, bool)
	ParentOf(e *Entity) (EntityID, bool)
}

// System runs once per tick in dependency order. It reads committed state
// and writes only through the command buffer.
type System interface {
	Execute(ecb *CommandBuffer) error
}

// SystemConstructor builds a system against the world it is registered in.
type SystemConstructor func(w *World) (System, error)
