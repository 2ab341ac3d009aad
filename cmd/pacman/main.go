// Command pacman is the tessera demo: a Pac-Man maze loaded from a Tiled
// map, a grid of ghosts with collider outlines and a Lua-driven player.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/tessera"
	"github.com/phanxgames/tessera/internal/assets"
	"github.com/phanxgames/tessera/internal/audio"
	"github.com/phanxgames/tessera/internal/config"
	"github.com/phanxgames/tessera/internal/scripting"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profileMode := flag.String("profile", "", "write a profile: cpu, mem or trace")
	flag.Parse()
	if p := startProfile(*profileMode); p != nil {
		defer p.Stop()
	}

	// 1. Load config
	cfgPath := "res/pacman.toml"
	if p := os.Getenv("TESSERA_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Resources
	scene := tessera.NewScene(tessera.WithLogger(log))
	res := tessera.NewResourceManager(tessera.WithResourceLogger(log))
	defer res.ReleaseAll()

	manifest, err := assets.Load(cfg.Assets.Manifest)
	if err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	tilesets, err := manifest.Apply(res)
	if err != nil {
		return fmt.Errorf("assets: %w", err)
	}

	// 4. World
	decoder := tessera.NewTileMapDecoder(scene, res, tessera.WithPixelsPerUnit(cfg.Map.PixelsPerUnit))
	if _, err := decoder.DecodeFile(cfg.Map.Path, tilesets); err != nil {
		return fmt.Errorf("map: %w", err)
	}
	w, err := populate(scene, res)
	if err != nil {
		return fmt.Errorf("populate: %w", err)
	}

	// 5. Rendering
	cam := tessera.NewCamera(mgl64.Vec2{cfg.Camera.X, cfg.Camera.Y}, float64(cfg.Window.Width), float64(cfg.Window.Height))
	cam.Zoom = cfg.Camera.Zoom
	renderer := tessera.NewRenderer(scene, res, tessera.WithDebug(cfg.Debug.Stats))
	renderer.CullEnabled = cfg.Camera.Cull
	w.setShowColliders(cfg.Debug.ShowColliders)

	game := tessera.NewGame(scene, renderer, cam)
	game.ScreenshotDir = cfg.Debug.Screenshots

	// 6. Scripts
	scripts, err := scripting.NewEngine(scene, cfg.Scripts.Dir, log)
	if err != nil {
		return fmt.Errorf("scripts: %w", err)
	}
	defer scripts.Close()
	game.Input.AddHandler(scripts)

	// 7. Audio
	sfx := audio.NewPlayer(cfg.Audio.SampleRate, log)
	for _, s := range manifest.Sounds {
		if err := sfx.Load(s.Name, manifest.Resolve(s.Path)); err != nil {
			log.Warn("sound not loaded", zap.String("name", s.Name), zap.Error(err))
		}
	}
	if err := sfx.Initialize(); err != nil {
		log.Warn("audio disabled", zap.Error(err))
	}
	sfx.SetMuted(cfg.Audio.Muted)
	defer sfx.Cleanup()

	quit := false
	game.Input.OnKeyPressed(func(ctx tessera.KeyContext) {
		switch ctx.Key {
		case ebiten.KeyEscape:
			quit = true
			return
		case ebiten.KeyC:
			w.setShowColliders(!w.showColliders)
		}
		sfx.Play("chomp")
		log.Info("key pressed", zap.Stringer("key", ctx.Key), zap.Bool("injected", ctx.Injected))
	})
	game.Input.OnKeyReleased(func(ctx tessera.KeyContext) {
		log.Debug("key released", zap.Stringer("key", ctx.Key))
	})

	var runner *tessera.TestRunner
	if cfg.Debug.TestScript != "" {
		data, err := os.ReadFile(cfg.Debug.TestScript)
		if err != nil {
			return fmt.Errorf("test script: %w", err)
		}
		if runner, err = tessera.LoadTestScript(data); err != nil {
			return fmt.Errorf("test script: %w", err)
		}
		game.SetTestRunner(runner)
	}

	game.SetUpdateFunc(func(dt time.Duration) error {
		if quit || (runner != nil && runner.Done()) {
			return ebiten.Termination
		}
		scripts.Update(dt)
		return nil
	})

	log.Info("starting", zap.Int("entities", scene.Len()), zap.String("map", cfg.Map.Path))
	err = tessera.Run(game, tessera.RunConfig{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Resizable:  cfg.Window.Resizable,
		ShowFPS:    cfg.Window.ShowFPS,
		ClearColor: tessera.Color{A: 1},
	})
	log.Info("shutting down")
	return err
}

func startProfile(mode string) interface{ Stop() } {
	switch mode {
	case "":
		return nil
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	case "mem":
		return profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	case "trace":
		return profile.Start(profile.TraceProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	default:
		fmt.Fprintf(os.Stderr, "unknown profile mode %q, profiling disabled\n", mode)
		return nil
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
