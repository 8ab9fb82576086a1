// Package ecs provides ECS adapters for canopy.
package ecs

import (
	"github.com/phanxgames/canopy"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// InteractionEventType is the Donburi event type for canopy interaction events.
// Subscribe to this in your ECS systems to receive pointer, key, focus and
// geometry events after the tree has handled them.
var InteractionEventType = events.NewEventType[canopy.InteractionEvent]()

// Element links a donburi entry to the canopy entity it mirrors.
var Element = donburi.NewComponentType[canopy.Entity]()

var elements = donburi.NewQuery(filter.Contains(Element))

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Interaction events are published to InteractionEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) canopy.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event canopy.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}

// Link creates an entry carrying the Element component for e, plus any
// extra components, and returns it.
func Link(world donburi.World, e canopy.Entity, components ...donburi.IComponentType) donburi.Entity {
	id := world.Create(append([]donburi.IComponentType{Element}, components...)...)
	Element.SetValue(world.Entry(id), e)
	return id
}

// Find returns the entry linked to e, or nil.
func Find(world donburi.World, e canopy.Entity) *donburi.Entry {
	var found *donburi.Entry
	elements.Each(world, func(entry *donburi.Entry) {
		if found == nil && *Element.Get(entry) == e {
			found = entry
		}
	})
	return found
}

// Unlink removes every entry linked to e. Call it after removing e from
// the tree.
func Unlink(world donburi.World, e canopy.Entity) int {
	var stale []donburi.Entity
	elements.Each(world, func(entry *donburi.Entry) {
		if *Element.Get(entry) == e {
			stale = append(stale, entry.Entity())
		}
	})
	for _, id := range stale {
		world.Remove(id)
	}
	return len(stale)
}
