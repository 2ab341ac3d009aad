// Command tessera-inspect loads a game's map and assets without opening a
// window and browses the resulting entities in the terminal.
//
//	tessera-inspect -config res/pacman.toml
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/tessera"
	"github.com/phanxgames/tessera/internal/assets"
	"github.com/phanxgames/tessera/internal/config"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "res/pacman.toml", "game config file")
	logPath := flag.String("log", "", "write logs to this file")
	flag.Parse()
	if p := os.Getenv("TESSERA_CONFIG"); p != "" {
		*cfgPath = p
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := newLogger(*logPath)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	scene := tessera.NewScene(tessera.WithLogger(log))
	tm, err := load(scene, cfg, log)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	defer screen.Fini()

	newInspector(screen, scene, tm).run()
	return nil
}

// load decodes the configured map into scene. Textures are registered
// without pixels, so nothing touches the GPU.
func load(scene *tessera.Scene, cfg *config.Config, log *zap.Logger) (*tessera.TileMap, error) {
	res := tessera.NewResourceManager(
		tessera.WithResourceLogger(log),
		tessera.WithImageLoader(func(string) (*ebiten.Image, error) { return nil, nil }),
	)
	manifest, err := assets.Load(cfg.Assets.Manifest)
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	tilesets, err := manifest.Apply(res)
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	decoder := tessera.NewTileMapDecoder(scene, res, tessera.WithPixelsPerUnit(cfg.Map.PixelsPerUnit))
	tm, err := decoder.DecodeFile(cfg.Map.Path, tilesets)
	if err != nil {
		return nil, fmt.Errorf("map: %w", err)
	}
	return tm, nil
}

// newLogger discards logs unless path is set; the terminal belongs to the UI.
func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.OutputPaths = []string{path}
	zapCfg.ErrorOutputPaths = []string{path}
	return zapCfg.Build()
}
