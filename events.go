package tessera

import "github.com/hajimehoshi/ebiten/v2"

// EventType identifies a kind of scene event.
type EventType uint8

const (
	EventEntityCreated   EventType = iota // an entity was created
	EventEntityDestroyed                  // an entity and its components were destroyed
	EventMapLoaded                        // a tile map finished loading
	EventKeyPressed                       // a key went down this tick
	EventKeyReleased                      // a key went up this tick
	EventResized                          // the window layout size changed
)

func (t EventType) String() string {
	switch t {
	case EventEntityCreated:
		return "EntityCreated"
	case EventEntityDestroyed:
		return "EntityDestroyed"
	case EventMapLoaded:
		return "MapLoaded"
	case EventKeyPressed:
		return "KeyPressed"
	case EventKeyReleased:
		return "KeyReleased"
	case EventResized:
		return "Resized"
	default:
		return "Unknown"
	}
}

// Event is published to the scene's EventSink. Fields not relevant to Type
// are zero.
type Event struct {
	Type   EventType
	Entity Entity
	Name   string // entity name or map source
	Key    ebiten.Key
	Width  int
	Height int
	Count  int // tiles created, for EventMapLoaded
}

// EventSink receives scene events, e.g. to forward them into an external
// ECS. See the ecs module for a donburi-backed sink.
type EventSink interface {
	EmitEvent(event Event)
}
