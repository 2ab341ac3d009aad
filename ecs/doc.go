// Package ecs provides ECS adapters for tessera's scene event stream.
//
// The primary adapter is [NewDonburiSink], which bridges tessera scene
// events (entity created/destroyed, map loaded, key input, resize) into a
// [Donburi] world as typed events. Subscribe to [SceneEventType] in your
// ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	scene.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
