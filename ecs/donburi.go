package ecs

import (
	"github.com/google/uuid"
	"github.com/phanxgames/glitter"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// SystemEventType is the Donburi event type for particle system lifecycle
// events. Subscribe to this in your ECS systems to react to systems being
// added, removed or reloaded.
var SystemEventType = events.NewEventType[glitter.SystemEvent]()

// SystemInfo mirrors a registered particle system on an entity.
type SystemInfo struct {
	Name      string
	ID        uuid.UUID
	Particles int
}

// SystemComponent is attached to one entity per registered particle system.
var SystemComponent = donburi.NewComponentType[SystemInfo]()

// DonburiSink is a glitter.EventSink that keeps one entity per registered
// system and republishes every event as SystemEventType.
type DonburiSink struct {
	world    donburi.World
	entities map[uuid.UUID]donburi.Entity
}

var _ glitter.EventSink = (*DonburiSink)(nil)

// NewDonburiSink creates a sink backed by a Donburi world. Events are queued
// and delivered by SystemEventType.ProcessEvents.
func NewDonburiSink(world donburi.World) *DonburiSink {
	return &DonburiSink{world: world, entities: make(map[uuid.UUID]donburi.Entity)}
}

// Publish implements glitter.EventSink.
func (s *DonburiSink) Publish(e glitter.SystemEvent) {
	switch e.Type {
	case glitter.EventSystemAdded:
		if _, ok := s.entities[e.ID]; !ok {
			entity := s.world.Create(SystemComponent)
			s.entities[e.ID] = entity
		}
		s.set(e)
	case glitter.EventSystemRemoved:
		if entity, ok := s.entities[e.ID]; ok {
			if s.world.Valid(entity) {
				s.world.Remove(entity)
			}
			delete(s.entities, e.ID)
		}
	case glitter.EventSystemReloaded:
		s.set(e)
	}
	SystemEventType.Publish(s.world, e)
}

func (s *DonburiSink) set(e glitter.SystemEvent) {
	entity, ok := s.entities[e.ID]
	if !ok || !s.world.Valid(entity) {
		return
	}
	SystemComponent.SetValue(s.world.Entry(entity), SystemInfo{
		Name:      e.Name,
		ID:        e.ID,
		Particles: e.Particles,
	})
}

// Entity returns the entity mirroring the system with the given ID.
func (s *DonburiSink) Entity(id uuid.UUID) (donburi.Entity, bool) {
	entity, ok := s.entities[id]
	return entity, ok
}
