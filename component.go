package depot

import (
	"unsafe"

	"go.uber.org/zap"
)

// ComponentID is the dense numeric id assigned to a component at
// registration. Ids are stable for the lifetime of a World.
type ComponentID uint32

// ID lets a raw ComponentID stand in wherever a ComponentType is accepted.
func (id ComponentID) ID() ComponentID {
	return id
}

// ComponentDescriptor describes the storage of one component id.
// Tags carry no value storage and report a zero Width.
type ComponentDescriptor struct {
	ID    ComponentID
	Name  string
	Width uintptr
	Tag   bool

	newColumn func(capacity int) column
}

type registry struct {
	descriptors []ComponentDescriptor
	byName      map[string]ComponentID
	limit       int
}

func newRegistry(limit int) *registry {
	return &registry{
		byName: make(map[string]ComponentID),
		limit:  limit,
	}
}

func (r *registry) register(name string, width uintptr, newColumn func(int) column) (ComponentID, error) {
	if _, exists := r.byName[name]; exists {
		return 0, DuplicateComponentError{Name: name}
	}
	if len(r.descriptors) >= r.limit {
		return 0, ComponentLimitError{Limit: r.limit}
	}
	id := ComponentID(len(r.descriptors))
	r.descriptors = append(r.descriptors, ComponentDescriptor{
		ID:        id,
		Name:      name,
		Width:     width,
		Tag:       newColumn == nil,
		newColumn: newColumn,
	})
	r.byName[name] = id
	return id, nil
}

func (r *registry) descriptor(id ComponentID) (ComponentDescriptor, bool) {
	if int(id) >= len(r.descriptors) {
		return ComponentDescriptor{}, false
	}
	return r.descriptors[id], true
}

func (r *registry) known(id ComponentID) bool {
	return int(id) < len(r.descriptors)
}

// Component is the typed handle of a value-carrying component.
type Component[T any] struct {
	id   ComponentID
	name string
}

// RegisterComponent binds a fresh id to a value type T.
func RegisterComponent[T any](w *World, name string) (Component[T], error) {
	var zero T
	id, err := w.registry.register(name, unsafe.Sizeof(zero), func(capacity int) column {
		return newTypedColumn[T](capacity)
	})
	if err != nil {
		return Component[T]{}, err
	}
	w.log.Debug("component registered",
		zap.String("name", name),
		zap.Uint32("id", uint32(id)),
		zap.Uintptr("width", unsafe.Sizeof(zero)),
	)
	return Component[T]{id: id, name: name}, nil
}

func (c Component[T]) ID() ComponentID {
	return c.id
}

func (c Component[T]) Name() string {
	return c.name
}

// Value pairs the component with a value for builders and command buffers.
func (c Component[T]) Value(v T) ComponentValue {
	return ComponentValue{id: c.id, value: v}
}

// Tag is a marker component with no value storage.
type Tag struct {
	id   ComponentID
	name string
}

// RegisterTag binds a fresh id with no storage.
func (w *World) RegisterTag(name string) (Tag, error) {
	id, err := w.registry.register(name, 0, nil)
	if err != nil {
		return Tag{}, err
	}
	w.log.Debug("tag registered", zap.String("name", name), zap.Uint32("id", uint32(id)))
	return Tag{id: id, name: name}, nil
}

func (t Tag) ID() ComponentID {
	return t.id
}

func (t Tag) Name() string {
	return t.name
}

func (t Tag) Value() ComponentValue {
	return ComponentValue{id: t.id}
}

// ComponentValue is a (component, value) pair. Tag values carry nil.
type ComponentValue struct {
	id    ComponentID
	value any
}

func (cv ComponentValue) ID() ComponentID {
	return cv.id
}
