/*
Package depot provides an in-memory Entity-Component-System core: archetype
partitioned columnar storage, cached queries invalidated by component, a
deferred command buffer and a dependency ordered system schedule.

Core Concepts:

  - Entity: an id plus the archetype it currently lives in.
  - Component: a typed per-entity value, or a Tag with no value.
  - Archetype: the sorted set of component ids an entity carries. Each
    distinct archetype has its own storage partition.
  - Query: a cached list of entities matching a condition list.
  - CommandBuffer: the only way systems change the world. It is applied
    once per tick, after every system has run.

Basic Usage:

	world, _ := depot.NewWorld()

	position, _ := depot.RegisterComponent[Vec2](world, "Position")
	velocity, _ := depot.RegisterComponent[Vec2](world, "Velocity")

	world.NewEntity().
		Add(position.Value(Vec2{}), velocity.Value(Vec2{X: 1})).
		Commit()

	world.RegisterSystem("movement", depot.NewQuerySystem(
		[]depot.Condition{depot.Includes(position, velocity)},
		func(s *depot.QuerySystem, ecb *depot.CommandBuffer) error {
			dt := s.Dt().Seconds()
			for _, id := range s.Entities() {
				p, _ := position.Get(s.World(), id)
				v, _ := velocity.Get(s.World(), id)
				p.X += v.X * dt
				p.Y += v.Y * dt
				if err := ecb.AddComponent(id, position.Value(p)); err != nil {
					return err
				}
			}
			return nil
		},
	))

	world.Tick(time.Second)

Tick order:

Every tick runs the systems in dependency order, applies the shared command
buffer, applies async buffers submitted since the last tick, folds each
entity's pending added/removed sets into the visible ones, and finally
recomputes the queries whose components changed. JustAdded and JustRemoved
therefore hold for exactly one tick's worth of systems.
*/
package depot
