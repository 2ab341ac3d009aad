package main

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/phanxgames/tessera"
)

const (
	ghostGrid     = 5
	ghostSpacing  = 50.0
	ghostSize     = 56.0
	pacmanSize    = 52.0
	pacmanSpeed   = 150.0
	pacmanFrames  = 3
	pacmanFrameDt = 100 * time.Millisecond
)

// world holds the entities main touches after setup.
type world struct {
	scene         *tessera.Scene
	pacman        tessera.Entity
	status        tessera.Entity
	showColliders bool
}

// populate spawns the ghosts, the player and the text overlay. Textures
// and the font come from the asset manifest.
func populate(scene *tessera.Scene, res *tessera.ResourceManager) (*world, error) {
	w := &world{scene: scene}

	ghostTex, ok := res.Texture("ghost")
	if !ok {
		return nil, fmt.Errorf("texture %q not in manifest", "ghost")
	}
	for i := 0; i < ghostGrid; i++ {
		for j := 0; j < ghostGrid; j++ {
			e := scene.CreateEntity(fmt.Sprintf("Blinky%d", ghostGrid*i+j))
			t, _ := tessera.GetComponent[tessera.Transform](scene, e)
			t.Position = mgl64.Vec2{100 + float64(i)*ghostSpacing, 100 + float64(j)*ghostSpacing}
			t.Size = mgl64.Vec2{ghostSize, ghostSize}
			if _, err := tessera.AddComponent(scene, e, tessera.NewSpriteRenderer(ghostTex)); err != nil {
				return nil, err
			}
			if _, err := tessera.AddComponent(scene, e, tessera.BoxCollider{Size: mgl64.Vec2{1, 1}, DrawDebug: true}); err != nil {
				return nil, err
			}
			if _, err := tessera.SetComponent(scene, e, tessera.TagEnemy); err != nil {
				return nil, err
			}
		}
	}

	pacTex, ok := res.Texture("pacman")
	if !ok {
		return nil, fmt.Errorf("texture %q not in manifest", "pacman")
	}
	w.pacman = scene.CreateEntity("Pacman")
	t, _ := tessera.GetComponent[tessera.Transform](scene, w.pacman)
	t.Position = mgl64.Vec2{425, 630}
	t.Size = mgl64.Vec2{pacmanSize, pacmanSize}
	if _, err := tessera.AddComponent(scene, w.pacman, tessera.NewSpriteRenderer(pacTex)); err != nil {
		return nil, err
	}
	if err := tessera.AttachFrameSource(scene, w.pacman, tessera.NewFlipbook(scene, pacmanFrames, pacmanFrameDt)); err != nil {
		return nil, err
	}
	if _, err := tessera.AddComponent(scene, w.pacman, tessera.BoxCollider{Size: mgl64.Vec2{1, 1}, DrawDebug: true}); err != nil {
		return nil, err
	}
	if _, err := tessera.AddComponent(scene, w.pacman, tessera.PlayerControlled{Speed: pacmanSpeed}); err != nil {
		return nil, err
	}
	if _, err := tessera.SetComponent(scene, w.pacman, tessera.TagPlayer); err != nil {
		return nil, err
	}

	font, ok := res.Font("arcade")
	if !ok {
		return nil, fmt.Errorf("font %q not in manifest", "arcade")
	}
	if _, err := w.text("Title", "hello pac-man! - # 500 @$", mgl64.Vec2{10, 10}, 3, font); err != nil {
		return nil, err
	}
	status, err := w.text("Status", "", mgl64.Vec2{10, 45}, 1, font)
	if err != nil {
		return nil, err
	}
	w.status = status
	return w, nil
}

func (w *world) text(name, s string, pos mgl64.Vec2, size float64, font tessera.FontHandle) (tessera.Entity, error) {
	e := w.scene.CreateEntity(name)
	t, _ := tessera.GetComponent[tessera.Transform](w.scene, e)
	t.Position = pos
	_, err := tessera.AddComponent(w.scene, e, tessera.FontRenderer{
		Text:  s,
		Font:  font,
		Color: tessera.ColorWhite,
		Size:  size,
	})
	return e, err
}

// setShowColliders toggles every collider outline and keeps the status
// line in sync.
func (w *world) setShowColliders(show bool) {
	w.showColliders = show
	for _, bc := range tessera.View[tessera.BoxCollider](w.scene) {
		bc.DrawDebug = show
	}
	fr, err := tessera.GetComponent[tessera.FontRenderer](w.scene, w.status)
	if err != nil {
		return
	}
	if show {
		fr.Text = "collision view enabled"
	} else {
		fr.Text = "collision view disabled"
	}
}
