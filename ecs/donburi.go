// Package ecs provides ECS adapters for tableau.
package ecs

import (
	"github.com/phanxgames/tableau"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// StageEventType is the Donburi event type for stage load outcomes.
var StageEventType = events.NewEventType[tableau.StageEvent]()

// Placement locates a spawned scene object.
type Placement struct {
	ObjectID string
	X, Y     int
}

// Components attached by SpawnObjects. TextureRef and Repeat are only
// present on entities whose object carries them.
var (
	PlacementComponent  = donburi.NewComponentType[Placement]()
	TextureRefComponent = donburi.NewComponentType[tableau.TextureRef]()
	RepeatComponent     = donburi.NewComponentType[tableau.Repeat]()
)

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EventStore backed by a Donburi world.
// Stage events are published to StageEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) tableau.EventStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event tableau.StageEvent) {
	StageEventType.Publish(s.world, event)
}

// SpawnObjects creates one entity per scene object and returns them in
// object order.
func SpawnObjects(world donburi.World, scene *tableau.Scene) []donburi.Entity {
	entities := make([]donburi.Entity, 0, len(scene.Objects))
	for i := range scene.Objects {
		obj := &scene.Objects[i]

		types := []donburi.IComponentType{PlacementComponent}
		ref, hasRef := obj.TextureRef()
		if hasRef {
			types = append(types, TextureRefComponent)
		}
		rep, hasRep := obj.Repeat()
		if hasRep {
			types = append(types, RepeatComponent)
		}

		e := world.Create(types...)
		entry := world.Entry(e)
		PlacementComponent.SetValue(entry, Placement{ObjectID: obj.ID, X: obj.X, Y: obj.Y})
		if hasRef {
			TextureRefComponent.SetValue(entry, ref)
		}
		if hasRep {
			RepeatComponent.SetValue(entry, rep)
		}
		entities = append(entities, e)
	}
	return entities
}

// DespawnObjects removes entities from world. Entities that are no longer
// valid are skipped.
func DespawnObjects(world donburi.World, entities []donburi.Entity) {
	for _, e := range entities {
		if world.Valid(e) {
			world.Remove(e)
		}
	}
}

// SceneMirror is an EventStore that publishes stage events like
// NewDonburiStore and mirrors the live scene's objects as entities.
type SceneMirror struct {
	world    donburi.World
	entities []donburi.Entity
}

// NewSceneMirror creates a SceneMirror for world.
func NewSceneMirror(world donburi.World) *SceneMirror {
	return &SceneMirror{world: world}
}

// Entities returns the entities spawned for the live scene.
func (m *SceneMirror) Entities() []donburi.Entity {
	return m.entities
}

// EmitEvent publishes event. On EventLoaded the previous entities are
// despawned and the new scene's objects spawned; a failed reload leaves
// them untouched.
func (m *SceneMirror) EmitEvent(event tableau.StageEvent) {
	if event.Type == tableau.EventLoaded && event.Scene != nil {
		DespawnObjects(m.world, m.entities)
		m.entities = SpawnObjects(m.world, event.Scene)
	}
	StageEventType.Publish(m.world, event)
}
