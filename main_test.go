package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/scene"
)

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneType   string
		expectError bool
	}{
		{"final scene", "final", false},
		{"materials scene", "materials", false},
		{"normals scene", "normals", false},
		{"empty scene", "empty", false},
		{"unknown scene", "cornell", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Config{Scene: tt.sceneType, Width: 64}
			s, err := createScene(cfg)

			if tt.expectError {
				if !errors.Is(err, scene.ErrUnknownScene) {
					t.Errorf("Expected ErrUnknownScene for scene type '%s', got %v", tt.sceneType, err)
				}
				if s != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s'", tt.sceneType)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if s.Camera.Width != 64 {
				t.Errorf("Width override not applied, got %d", s.Camera.Width)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.json")
	if err := os.WriteFile(path, []byte(`{"scene": "normals", "width": 80, "profile": "linear"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path, config.Flags{Width: 40})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Scene != "normals" || cfg.Width != 40 || cfg.Profile != "linear" {
		t.Errorf("Unexpected config %+v", cfg)
	}

	if _, err := loadConfig("", config.Flags{Scene: "nope"}); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.json"), config.Flags{}); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestDefaultOutputPath(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	expected := filepath.Join("output", "final", "render_20240305_140709.png")
	if got := defaultOutputPath("final", now); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	seed := int64(3)
	depth := 4
	cfg := config.Config{}
	cfg.Resolve(config.Flags{
		Scene:       "normals",
		Width:       32,
		Samples:     2,
		Depth:       &depth,
		Seed:        &seed,
		Output:      filepath.Join(dir, "render.ppm.zst"),
		Supersample: 2,
		Manifest:    true,
	})
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	path, err := run(context.Background(), cfg, core.NopLogger{}, time.Now())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	img, err := output.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Rendered at 64x36 and downsampled by 2
	if size := img.Bounds().Size(); size.X != 32 || size.Y != 18 {
		t.Errorf("Expected 32x18 image, got %v", size)
	}

	m, err := output.ReadManifest(filepath.Join(dir, "render.json"))
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if m.Scene != "normals" || m.Width != 32 || m.Supersample != 2 || m.Seed != 3 || m.SamplesPerPixel != 2 {
		t.Errorf("Unexpected manifest %+v", m)
	}
	if m.TotalSamples != 64*36*2 {
		t.Errorf("Expected %d samples, got %d", 64*36*2, m.TotalSamples)
	}
	if m.MaxDepth != 4 {
		t.Errorf("Expected max depth 4, got %d", m.MaxDepth)
	}
	if m.ImageLuminance <= 0 || m.ImageLuminance > 1 {
		t.Errorf("Expected image luminance in (0, 1], got %f", m.ImageLuminance)
	}
}

func TestRun_SupersampleKeepsRequestedHeight(t *testing.T) {
	// 40 wide at 16:9 is 23 rows; the 120x68 supersampled frame would floor to 22
	cfg := config.Config{}
	cfg.Resolve(config.Flags{
		Scene:       "empty",
		Width:       40,
		Samples:     1,
		Output:      filepath.Join(t.TempDir(), "render.png"),
		Supersample: 3,
	})

	path, err := run(context.Background(), cfg, core.NopLogger{}, time.Now())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	img, err := output.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if size := img.Bounds().Size(); size.X != 40 || size.Y != 23 {
		t.Errorf("Expected 40x23 image, got %v", size)
	}
}

func TestRun_ZeroDepth(t *testing.T) {
	// With no bounces every sphere hit is black, so only the sky contributes
	depth := 0
	cfg := config.Config{}
	cfg.Resolve(config.Flags{
		Scene:    "materials",
		Width:    16,
		Samples:  1,
		Depth:    &depth,
		Output:   filepath.Join(t.TempDir(), "render.png"),
		Manifest: true,
	})

	path, err := run(context.Background(), cfg, core.NopLogger{}, time.Now())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	m, err := output.ReadManifest(output.ManifestPath(path))
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if m.MaxDepth != 0 {
		t.Errorf("Expected max depth 0, got %d", m.MaxDepth)
	}
}

func TestRun_Cancelled(t *testing.T) {
	cfg := config.Config{}
	cfg.Resolve(config.Flags{Scene: "empty", Width: 16, Output: filepath.Join(t.TempDir(), "render.png")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := run(ctx, cfg, core.NopLogger{}, time.Now()); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(cfg.Output); !os.IsNotExist(err) {
		t.Error("Cancelled render should not write an image")
	}
}
