// Package ecs provides ECS adapters for tableau stages.
//
// [NewDonburiStore] bridges stage load and reload outcomes into a [Donburi]
// world as typed events. Subscribe to [StageEventType] in your ECS systems
// to receive them. [NewSceneMirror] does the same and also keeps one entity
// per scene object alive in the world, replacing the set on every
// successful reload.
//
// Usage:
//
//	mirror := ecs.NewSceneMirror(world)
//	stage.SetEventStore(mirror)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
