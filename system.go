package depot

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

type systemOptions struct {
	after  []string
	before []string
}

type SystemOption func(*systemOptions)

// After orders the system after each named system.
func After(names ...string) SystemOption {
	return func(o *systemOptions) {
		o.after = append(o.after, names...)
	}
}

// Before orders the system before each named system.
func Before(names ...string) SystemOption {
	return func(o *systemOptions) {
		o.before = append(o.before, names...)
	}
}

// RegisterSystem constructs the system and schedules it. Ordering edges
// may name systems that are registered later. A registration that would
// close a cycle fails with a CycleError and leaves the schedule unchanged.
func (w *World) RegisterSystem(name string, ctor SystemConstructor, opts ...SystemOption) error {
	if w.ticking {
		return ErrTickInProgress
	}
	if _, exists := w.systems[name]; exists {
		return DuplicateSystemError{Name: name}
	}
	var o systemOptions
	for _, opt := range opts {
		opt(&o)
	}
	edges := make([]Edge[string], 0, len(o.after)+len(o.before))
	for _, dep := range o.after {
		edges = append(edges, Edge[string]{From: dep, To: name})
	}
	for _, dep := range o.before {
		edges = append(edges, Edge[string]{From: name, To: dep})
	}

	sys, err := ctor(w)
	if err != nil {
		return fmt.Errorf("failed to construct system %q: %w", name, err)
	}
	if err := w.tree.Add(name, edges...); err != nil {
		w.log.Warn("system rejected", zap.String("system", name), zap.Error(err))
		return err
	}
	w.systems[name] = sys
	w.order = w.tree.Ordered()
	w.log.Info("system registered", zap.String("system", name), zap.Strings("order", w.order))
	return nil
}

// AddSystemEdge orders first before then after registration.
func (w *World) AddSystemEdge(first, then string) error {
	if w.ticking {
		return ErrTickInProgress
	}
	if err := w.tree.AddDependency(first, then); err != nil {
		w.log.Warn("system edge rejected", zap.String("from", first), zap.String("to", then), zap.Error(err))
		return err
	}
	w.order = w.tree.Ordered()
	return nil
}

// SystemOrder lists system names in execution order.
func (w *World) SystemOrder() []string {
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(ecb *CommandBuffer) error

func (f SystemFunc) Execute(ecb *CommandBuffer) error {
	return f(ecb)
}

// QuerySystem is a system bound to one query, built by NewQuerySystem.
type QuerySystem struct {
	world *World
	query QueryID
	run   func(s *QuerySystem, ecb *CommandBuffer) error
}

// NewQuerySystem returns a constructor that registers the condition list
// as the system's query and calls run once per tick.
func NewQuerySystem(conditions []Condition, run func(s *QuerySystem, ecb *CommandBuffer) error) SystemConstructor {
	return func(w *World) (System, error) {
		id, err := w.RegisterQuery(conditions...)
		if err != nil {
			return nil, err
		}
		return &QuerySystem{world: w, query: id, run: run}, nil
	}
}

func (s *QuerySystem) Execute(ecb *CommandBuffer) error {
	return s.run(s, ecb)
}

func (s *QuerySystem) World() *World {
	return s.world
}

func (s *QuerySystem) Query() QueryID {
	return s.query
}

func (s *QuerySystem) Dt() time.Duration {
	return s.world.dt
}

// Entities returns the committed matches of the system's query.
func (s *QuerySystem) Entities() []EntityID {
	return s.world.QueryEntities(s.query)
}

func (s *QuerySystem) Archetypes() []Archetype {
	return s.world.QueryArchetypes(s.query)
}

func (s *QuerySystem) Cursor() *Cursor {
	return s.world.Cursor(s.query)
}
