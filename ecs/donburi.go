package ecs

import (
	"github.com/phanxgames/tessera"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// SceneEventType is the Donburi event type for tessera scene events.
// Subscribe to this in your ECS systems to receive entity lifecycle, map
// and input events.
var SceneEventType = events.NewEventType[tessera.Event]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world.
// Scene events are published to SceneEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) tessera.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event tessera.Event) {
	SceneEventType.Publish(s.world, event)
}
