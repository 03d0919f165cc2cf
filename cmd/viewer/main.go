package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"skinpack-studio/internal/config"
	"skinpack-studio/internal/logging"
	"skinpack-studio/internal/preview"
	"skinpack-studio/internal/skin"
	"skinpack-studio/internal/texture"
	"skinpack-studio/internal/viewer"
)

const (
	screenWidth  = 1024
	screenHeight = 768
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	dir := flag.String("dir", ".", "Directory of skin textures")
	geometry := flag.String("geometry", "", "Skin geometry: slim or classic")
	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	cfg.Resolve(config.Flags{Geometry: *geometry})
	log := logging.New(os.Stderr, cfg.LogLevel)

	idx, err := texture.BuildIndex(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", *dir, err)
		os.Exit(1)
	}

	// Sources that are not skin-sized PNGs are converted for display only.
	var items []preview.Item
	for _, e := range idx.Entries() {
		data, _, err := texture.ConvertFile(e.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", e.Path, err)
			continue
		}
		items = append(items, preview.Item{Name: e.Stem, Data: data, Geometry: cfg.Geometry})
	}
	if len(items) == 0 {
		gen := texture.NewPlaceholderGenerator(nil)
		p, err := gen.Generate(64, 64)
		if err == nil {
			items = append(items, preview.Item{Name: p.Label, Data: p.PNG, Geometry: skin.GeometrySlim})
		}
	}
	fmt.Printf("Skins: %d from %s\n", len(items), *dir)

	tracker := preview.NewTracker()
	game := viewer.New(tracker, items, screenWidth, screenHeight, cfg.Supersample, log)
	defer game.Close()

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Skin Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
