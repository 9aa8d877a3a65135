package depot

import (
	"testing"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Health struct {
	Value int
}

type fixture struct {
	w      *World
	pos    Component[Position]
	vel    Component[Velocity]
	health Component[Health]
	frozen Tag
}

func newFixture(t *testing.T, opts ...WorldOption) fixture {
	t.Helper()
	w, err := NewWorld(opts...)
	if err != nil {
		t.Fatalf("Failed to create world: %v", err)
	}
	f := fixture{w: w}
	if f.pos, err = RegisterComponent[Position](w, "Position"); err != nil {
		t.Fatalf("Failed to register Position: %v", err)
	}
	if f.vel, err = RegisterComponent[Velocity](w, "Velocity"); err != nil {
		t.Fatalf("Failed to register Velocity: %v", err)
	}
	if f.health, err = RegisterComponent[Health](w, "Health"); err != nil {
		t.Fatalf("Failed to register Health: %v", err)
	}
	if f.frozen, err = w.RegisterTag("Frozen"); err != nil {
		t.Fatalf("Failed to register Frozen: %v", err)
	}
	return f
}

func (f fixture) spawn(t *testing.T, values ...ComponentValue) EntityID {
	t.Helper()
	id, err := f.w.NewEntity().Add(values...).Commit()
	if err != nil {
		t.Fatalf("Failed to commit entity: %v", err)
	}
	return id
}

func (f fixture) query(t *testing.T, conditions ...Condition) QueryID {
	t.Helper()
	id, err := f.w.RegisterQuery(conditions...)
	if err != nil {
		t.Fatalf("Failed to register query: %v", err)
	}
	return id
}

func (f fixture) tick(t *testing.T) {
	t.Helper()
	if err := f.w.Tick(0); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
}

// once returns a system that runs fn on its first execution only.
func once(fn func(ecb *CommandBuffer) error) SystemConstructor {
	done := false
	return func(*World) (System, error) {
		return SystemFunc(func(ecb *CommandBuffer) error {
			if done {
				return nil
			}
			done = true
			return fn(ecb)
		}), nil
	}
}
