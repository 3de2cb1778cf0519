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

	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to a JSON render config")
	sceneType := flag.String("scene", "", "Scene: "+strings.Join(scene.Names(), ", ")+" (default "+config.DefaultScene+")")
	width := flag.Int("width", 0, "Image width in pixels (0 = scene default)")
	samples := flag.Int("samples", 0, "Samples per pixel (0 = scene default)")
	depth := flag.Int("depth", 0, "Maximum bounce depth (scene default when not set)")
	seed := flag.Int64("seed", 0, "Random seed for sampling and the final scene layout")
	workers := flag.Int("workers", 0, "Parallel workers (0 = CPU count)")
	profile := flag.String("profile", "", "Color profile: gamma2 or linear")
	out := flag.String("output", "", "Output file, format from extension (.ppm .png .webp .tga .bmp .tiff, optional .gz .zst .sz)")
	supersample := flag.Int("supersample", 0, "Render at N times the width and downsample")
	manifest := flag.Bool("manifest", false, "Write a JSON manifest next to the image")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Path Tracer")
		fmt.Println("Usage: pathtracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		for _, info := range scene.ListScenes() {
			fmt.Printf("  %-10s - %s\n", info.ID, info.Description)
		}
		fmt.Println()
		fmt.Println("Output defaults to output/<scene>/render_<timestamp>.png")
		return
	}

	flags := config.Flags{
		Scene:       *sceneType,
		Width:       *width,
		Samples:     *samples,
		Workers:     *workers,
		Profile:     *profile,
		Output:      *out,
		Supersample: *supersample,
		Manifest:    *manifest,
	}
	// Zero is a valid seed and depth, so only explicit flags override the config
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			flags.Seed = seed
		case "depth":
			flags.Depth = depth
		}
	})

	cfg, err := loadConfig(*configPath, flags)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("Starting Path Tracer...")
	if _, err := run(ctx, cfg, renderer.NewDefaultLogger(), time.Now()); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("Render cancelled")
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// loadConfig reads the optional config file, applies flags and validates
func loadConfig(path string, flags config.Flags) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	cfg.Resolve(flags)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// defaultOutputPath returns output/<scene>/render_<timestamp>.png
func defaultOutputPath(sceneName string, now time.Time) string {
	timestamp := now.Format("20060102_150405")
	return filepath.Join("output", sceneName, fmt.Sprintf("render_%s.png", timestamp))
}

// createScene builds the configured scene with overrides applied
func createScene(cfg config.Config) (*scene.Scene, error) {
	s, err := scene.ByName(cfg.Scene, cfg.SceneSeed())
	if err != nil {
		return nil, err
	}
	cfg.Apply(s)
	return s, nil
}

// run renders the configured scene, saves the image and returns its path
func run(ctx context.Context, cfg config.Config, logger core.Logger, now time.Time) (string, error) {
	selectedScene, err := createScene(cfg)
	if err != nil {
		return "", err
	}
	logger.Printf("Using %s scene (%d objects)...\n", selectedScene.Name, selectedScene.World.Len())

	camera, err := renderer.NewCamera(selectedScene.Camera)
	if err != nil {
		return "", err
	}
	raytracer, err := renderer.NewRaytracer(camera, selectedScene.World, selectedScene.Sampling, logger)
	if err != nil {
		return "", err
	}

	frame, stats, err := raytracer.Render(ctx)
	if err != nil {
		return "", err
	}
	logger.Printf("Render completed in %v, mean luminance %.4f\n", stats.Duration, stats.MeanLuminance)

	outWidth, outHeight := cfg.OutputSize(selectedScene.Camera)
	img := output.Downsample(frame.Image(cfg.ColorProfile()), outWidth, outHeight)

	filename := cfg.Output
	if filename == "" {
		filename = defaultOutputPath(selectedScene.Name, now)
	}
	if err := output.Save(filename, img, output.Options{}); err != nil {
		return "", err
	}
	logger.Printf("Render saved as %s\n", filename)

	if cfg.Manifest {
		bounds := img.Bounds()
		manifestPath := output.ManifestPath(filename)
		err := output.WriteManifest(manifestPath, output.Manifest{
			CreatedAt:       now.UTC().Format(time.RFC3339),
			Scene:           selectedScene.Name,
			Image:           filepath.Base(filename),
			Width:           bounds.Dx(),
			Height:          bounds.Dy(),
			Supersample:     cfg.Supersample,
			SamplesPerPixel: selectedScene.Sampling.SamplesPerPixel,
			MaxDepth:        selectedScene.Sampling.MaxDepth,
			Seed:            selectedScene.Sampling.Seed,
			Workers:         stats.Workers,
			Profile:         cfg.ColorProfile().String(),
			DurationMs:      stats.Duration.Milliseconds(),
			TotalSamples:    stats.TotalSamples,
			MeanLuminance:   stats.MeanLuminance,
			ImageLuminance:  renderer.CalculateAverageLuminance(img),
		})
		if err != nil {
			return "", err
		}
		logger.Printf("Manifest saved as %s\n", manifestPath)
	}

	return filename, nil
}
