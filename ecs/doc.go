// Package ecs bridges canopy's interaction events into an ECS world.
//
// The primary adapter is [NewDonburiStore], which republishes every delivered
// built-in event (mouse, press, key, focus, geometry) into a [Donburi] world
// as an [InteractionEventType] event. [Link] and [Find] associate donburi
// entries with canopy entities so systems can react per element.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	cx := canopy.New(canopy.WithEntityStore(store))
//	ecs.Link(world, button, Health)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
