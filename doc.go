// Package tessera is a small 2D tile and sprite runtime for [Ebitengine].
//
// Tessera keeps game state in an entity-component store, builds worlds from
// Tiled JSON maps, composes sprite transforms, selects animation frames from
// texture atlases, and renders everything through one batched pass per
// frame.
//
// # Quick start
//
// [Run] opens a window and drives a [Game] for you:
//
//	scene := tessera.NewScene()
//	res := tessera.NewResourceManager()
//	cam := tessera.NewCamera(mgl64.Vec2{}, 800, 600)
//	game := tessera.NewGame(scene, tessera.NewRenderer(scene, res), cam)
//	tessera.Run(game, tessera.RunConfig{Title: "My Game", Width: 800, Height: 600})
//
// # Entities and components
//
// An [Entity] is a generational handle. Components are plain structs
// attached by type:
//
//	hero := scene.CreateEntity("hero")
//	tex, _ := res.LoadTexture("hero.png", "hero")
//	tessera.AddComponent(scene, hero, tessera.NewSpriteRenderer(tex))
//
// Every entity starts with a [Name], a [Tag] and a [Transform]. Adding a
// component the entity already has fails with [ErrDuplicateComponent];
// reading one it lacks fails with [ErrComponentMissing].
//
// Iterate entities holding a set of components with [View], [View2] and
// [View3]:
//
//	for e, ref := range tessera.View2[tessera.Transform, tessera.PlayerControlled](scene) {
//		ref.First.Position = ref.First.Position.Add(ref.Second.Direction.Mul(ref.Second.Speed * dt))
//		_ = e
//	}
//
// # Tile maps
//
// [TileMapDecoder] reads Tiled JSON (CSV or base64 layer data, optionally
// zlib or gzip compressed) and spawns one entity per tile. Flip flags in
// the high GID bits become sprite flips.
//
// # Rendering
//
// [Renderer.Render] produces backend-neutral [DrawCommand] values:
// sprite quads, collider debug outlines and text glyphs. [Renderer.Submit]
// batches them onto an ebiten image.
//
// [Ebitengine]: https://ebitengine.org
package tessera
