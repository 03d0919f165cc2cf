package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"skinpack-studio/internal/batch"
	"skinpack-studio/internal/config"
	"skinpack-studio/internal/logging"
	"skinpack-studio/internal/pack"
	"skinpack-studio/internal/skin"
	"skinpack-studio/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	envFile := flag.String("env", ".env", "Path to .env file")
	name := flag.String("name", "", "Pack display name (default: random)")
	desc := flag.String("desc", "", "Pack description (default: generated)")
	lang := flag.String("lang", "", "Language code, e.g. en_US")
	geometry := flag.String("geometry", "", "Skin geometry: slim or classic")
	dir := flag.String("dir", "", "Directory of skin textures")
	outputDir := flag.String("out", "", "Output directory (default: .)")
	previews := flag.Bool("previews", false, "Render a WebP preview per skin")
	previewDir := flag.String("preview-dir", "", "Preview directory (default: <out>/previews)")
	fill := flag.Float64("fill", 0.9, "Crop previews to the model and fill this share of the frame (0 disables)")
	workers := flag.Int("workers", 0, "Number of preview workers (default: NumCPU)")
	placeholders := flag.Int("placeholders", 0, "Add N generated placeholder skins")
	convert := flag.Bool("convert", false, "Convert TGA/WebP/JPEG and odd-sized PNG sources")

	flag.Parse()

	if err := config.LoadEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	// Load config
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

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		OutputDir:  *outputDir,
		PreviewDir: *previewDir,
		Workers:    *workers,
		Language:   *lang,
		Geometry:   *geometry,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Collect sources
	paths := flag.Args()
	if *dir != "" {
		idx, err := texture.BuildIndex(*dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", *dir, err)
			os.Exit(1)
		}
		for _, e := range idx.Entries() {
			paths = append(paths, e.Path)
		}
		fmt.Printf("Textures: %d indexed in %s\n", idx.Len(), *dir)
	}

	var entries []skin.Entry
	for _, p := range paths {
		e, err := loadEntry(ctx, p, cfg.Geometry, *convert)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s: %v\n", p, err)
			continue
		}
		entries = append(entries, e)
	}

	gen := texture.NewPlaceholderGenerator(nil)
	for i := 0; i < *placeholders; i++ {
		e := skin.NewEntry("")
		e.Geometry = cfg.Geometry
		p, err := gen.Generate(64, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating placeholder: %v\n", err)
			os.Exit(1)
		}
		e.Placeholder = p.PNG
		entries = append(entries, e)
	}

	if len(entries) == 0 {
		fmt.Println("No skins to pack. Pass files, -dir or -placeholders.")
		os.Exit(0)
	}

	d := pack.Descriptor{DisplayName: *name, Description: *desc, Language: cfg.Language}

	fmt.Println("Skin Pack Builder → .mcpack")
	fmt.Printf("Skins: %d, Language: %s, Geometry: %s\n", len(entries), cfg.Language, cfg.Geometry)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	assembler := pack.NewAssembler(pack.NewZipArchiver(cfg.CompressionLevel),
		pack.WithPlaceholders(gen),
		pack.WithLogger(log),
	)
	inputs := make([]pack.Input, len(entries))
	for i, e := range entries {
		inputs[i] = pack.Input{Entry: e}
	}

	archive, err := assembler.Build(ctx, d, inputs)
	if err != nil {
		var entryErr *pack.EntryError
		if errors.As(err, &entryErr) {
			fmt.Fprintf(os.Stderr, "Error: skin %d (%s): %v\n", entryErr.Index, entryErr.Name, entryErr.Err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	outPath := filepath.Join(cfg.OutputDir, archive.FileName)
	if err := pack.WriteFile(outPath, archive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Pack: %s (%d bytes)\n", outPath, len(archive.Data))
	fmt.Printf("Pack UUID: %s\n", archive.PackID)
	for i, e := range entries {
		fmt.Printf("  %-12s %s\n", archive.Textures[i], e.Name)
	}

	failed := 0
	if *previews {
		failed = renderPreviews(cfg, entries, *fill)
	}

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	if failed > 0 {
		os.Exit(1)
	}
}

// loadEntry reads one texture file into an entry named after the file.
// Without convert, only PNG files are taken, byte for byte. The result must
// pass texture validation.
func loadEntry(ctx context.Context, path, geometry string, convert bool) (skin.Entry, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var data []byte
	var err error
	switch {
	case convert:
		data, _, err = texture.ConvertFile(path)
	case strings.EqualFold(filepath.Ext(base), ".png"):
		data, err = os.ReadFile(path)
	default:
		err = errors.New("not a PNG, use -convert")
	}
	if err != nil {
		return skin.Entry{}, err
	}
	if _, err := texture.Validate(ctx, texture.Candidate{Name: stem + ".png", Data: data}); err != nil {
		return skin.Entry{}, err
	}

	e := skin.NewEntry(stem)
	e.Geometry = geometry
	e.Upload = data
	e.UploadName = base
	return e, nil
}

func renderPreviews(cfg config.Config, entries []skin.Entry, fill float64) int {
	jobs := make([]batch.Job, len(entries))
	for i, e := range entries {
		jobs[i] = batch.Job{
			Name:     e.Name,
			Stem:     fmt.Sprintf("%02d-%s", i+1, e.SafeName),
			Geometry: e.Geometry,
			Data:     e.Source(),
		}
	}

	results := batch.Run(batch.Config{
		OutputDir:   cfg.PreviewDir,
		RenderSize:  cfg.RenderSize,
		Supersample: cfg.Supersample,
		Yaw:         0.5,
		Workers:     cfg.Workers,
		Progress:    os.Stdout,
		FillRatio:   fill,
	}, jobs)

	success, failed := 0, 0
	for _, r := range results {
		if r.Success {
			success++
			continue
		}
		failed++
		fmt.Printf("  preview %s: %s\n", r.Name, r.Error)
	}
	fmt.Printf("Previews: %d/%d in %s\n", success, len(jobs), cfg.PreviewDir)

	// Write manifest
	os.MkdirAll(cfg.PreviewDir, 0755)
	manifestPath := filepath.Join(cfg.PreviewDir, "previews.json")
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}
	return failed
}
