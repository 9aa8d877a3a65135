package depot_test

import (
	"fmt"
	"time"

	"github.com/TheBitDrifter/depot"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

func Example_movement() {
	world, _ := depot.NewWorld()
	position, _ := depot.RegisterComponent[Position](world, "Position")
	velocity, _ := depot.RegisterComponent[Velocity](world, "Velocity")

	id, _ := world.NewEntity().
		Add(position.Value(Position{}), velocity.Value(Velocity{X: 1, Y: 2})).
		Commit()

	world.RegisterSystem("movement", depot.NewQuerySystem(
		[]depot.Condition{depot.Includes(position, velocity)},
		func(s *depot.QuerySystem, ecb *depot.CommandBuffer) error {
			dt := s.Dt().Seconds()
			for _, e := range s.Entities() {
				p, _ := position.Get(s.World(), e)
				v, _ := velocity.Get(s.World(), e)
				p.X += v.X * dt
				p.Y += v.Y * dt
				if err := ecb.AddComponent(e, position.Value(p)); err != nil {
					return err
				}
			}
			return nil
		},
	))

	for range 3 {
		world.Tick(time.Second)
	}

	p, _ := position.Get(world, id)
	fmt.Printf("%.0f %.0f\n", p.X, p.Y)
	// Output: 3 6
}

func Example_justAdded() {
	world, _ := depot.NewWorld()
	position, _ := depot.RegisterComponent[Position](world, "Position")
	spawned, _ := world.RegisterQuery(depot.JustAdded(position))

	world.NewEntity().Add(position.Value(Position{})).Commit()
	fmt.Println(len(world.QueryEntities(spawned)))

	world.Tick(0)
	fmt.Println(len(world.QueryEntities(spawned)))
	// Output:
	// 1
	// 0
}

func Example_systemOrder() {
	world, _ := depot.NewWorld()
	noop := func(*depot.World) (depot.System, error) {
		return depot.SystemFunc(func(*depot.CommandBuffer) error { return nil }), nil
	}

	world.RegisterSystem("render", noop, depot.After("physics"))
	world.RegisterSystem("input", noop, depot.Before("physics"))
	world.RegisterSystem("physics", noop)

	fmt.Println(world.SystemOrder())

	err := world.AddSystemEdge("render", "input")
	fmt.Println(err)
	// Output:
	// [input physics render]
	// circular dependency: physics -> render -> input -> physics
}
