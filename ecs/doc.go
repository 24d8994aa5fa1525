// Package ecs bridges glitter particle systems into a [Donburi] world.
//
// [NewDonburiSink] implements glitter.EventSink. Each registered system gets
// an entity carrying [SystemComponent], and every lifecycle event is
// republished as [SystemEventType].
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	manager := glitter.NewManager(glitter.WithEventSink(sink))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
