// Package glitter is a particle engine for games built on a fixed tick.
//
// A [System] stores its particles as flat float64 records. The first two
// slots of every record hold the lifetime and age in ticks; [System.Bind]
// reserves further slots and returns a [StoreBinding] that modules read and
// write through. Everything else a module needs (constants, easings,
// interpolated colours) is expressed as a [ReadBinding].
//
// Each tick, a system runs its global modules, ages every particle and runs
// the per-particle update modules such as [PhysicsModule]. Expired particles
// are removed after the pass. Each frame, render modules such as
// [SpriteRenderModule] and [LineRenderModule] turn the records into quads and
// segments on a [DrawList], interpolating between the previous and current
// tick.
//
// A [Manager] owns the systems, isolates failures between them and defers
// additions and removals made mid-pass.
//
// # Quick start
//
//	var pos, prev, vel *glitter.StoreBinding
//	sys, err := glitter.NewSystem("sparks", func(s *glitter.System) error {
//		pos, prev, vel = s.Bind(3), s.Bind(3), s.Bind(3)
//		phys, err := glitter.NewPhysicsModule(pos, prev, vel)
//		if err != nil {
//			return err
//		}
//		s.AddUpdateModule(phys)
//		return nil
//	})
//	if err != nil {
//		return err
//	}
//	m := glitter.NewManager(glitter.WithLogger(logger))
//	m.Add(sys)
//	sys.AddParticle(40, 0, 1, 0, 0, 1, 0, 0.1, 0.2, 0)
//
// The ebitenhost package drives a Manager inside an Ebitengine game loop.
// The glitter/ecs module mirrors manager events into a donburi world.
package glitter
