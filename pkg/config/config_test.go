package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

func intPtr(v int) *int { return &v }

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "render.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{
		"scene": "materials",
		"width": 320,
		"samples_per_pixel": 16,
		"look_from": [1, 2, 3],
		"defocus_angle": 0,
		"seed": 0,
		"profile": "linear",
		"output": "out/render.png"
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scene != "materials" || cfg.Width != 320 || cfg.SamplesPerPixel != 16 {
		t.Errorf("Unexpected config %+v", cfg)
	}
	if cfg.LookFrom == nil || *cfg.LookFrom != [3]float64{1, 2, 3} {
		t.Errorf("Expected look_from [1 2 3], got %v", cfg.LookFrom)
	}
	if cfg.DefocusAngle == nil || *cfg.DefocusAngle != 0 {
		t.Error("An explicit zero defocus angle should be kept")
	}
	if cfg.Seed == nil || *cfg.Seed != 0 {
		t.Error("An explicit zero seed should be kept")
	}
	if cfg.MaxDepth != nil {
		t.Error("A missing max_depth should stay nil")
	}
	if cfg.LookAt != nil || cfg.VUp != nil {
		t.Error("Missing vectors should stay nil")
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := Load(writeConfig(t, `{"width": "wide"}`)); err == nil {
		t.Error("Expected error for malformed file")
	}
}

func TestResolve(t *testing.T) {
	seed := int64(9)
	depth := 3
	tests := []struct {
		name   string
		file   Config
		flags  Flags
		expect func(t *testing.T, c Config)
	}{
		{
			name: "defaults",
			expect: func(t *testing.T, c Config) {
				if c.Scene != DefaultScene || c.Profile != "gamma2" || c.Supersample != 1 {
					t.Errorf("Unexpected defaults %+v", c)
				}
				if c.Seed != nil {
					t.Error("Seed should stay unset")
				}
			},
		},
		{
			name:  "flags override file",
			file:  Config{Scene: "normals", Width: 100, SamplesPerPixel: 10, Profile: "linear"},
			flags: Flags{Scene: "Empty", Width: 200, Samples: 20, Depth: &depth, Seed: &seed, Output: "a.ppm", Manifest: true},
			expect: func(t *testing.T, c Config) {
				if c.Scene != "empty" || c.Width != 200 || c.SamplesPerPixel != 20 || c.MaxDepth == nil || *c.MaxDepth != 3 {
					t.Errorf("Flags not applied: %+v", c)
				}
				if c.Seed == nil || *c.Seed != 9 {
					t.Errorf("Expected seed 9, got %v", c.Seed)
				}
				if c.Profile != "linear" || c.Output != "a.ppm" || !c.Manifest {
					t.Errorf("File values lost: %+v", c)
				}
			},
		},
		{
			name:  "zero flags keep file",
			file:  Config{Width: 100, Workers: 3, Supersample: 2},
			flags: Flags{},
			expect: func(t *testing.T, c Config) {
				if c.Width != 100 || c.Workers != 3 || c.Supersample != 2 {
					t.Errorf("File values overwritten: %+v", c)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.file
			cfg.Resolve(tt.flags)
			tt.expect(t, cfg)
			if err := cfg.Validate(); err != nil {
				t.Errorf("Resolved config should validate: %v", err)
			}
		})
	}

	// The flag value is copied, not aliased
	cfg := Config{}
	cfg.Resolve(Flags{Seed: &seed})
	seed = 100
	if *cfg.Seed != 9 {
		t.Errorf("Config seed changed with the flag variable: %d", *cfg.Seed)
	}
}

func TestValidate(t *testing.T) {
	negative := -1.0
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown scene", func(c *Config) { c.Scene = "cornell" }},
		{"negative width", func(c *Config) { c.Width = -1 }},
		{"negative aspect", func(c *Config) { c.AspectRatio = -2 }},
		{"flat fov", func(c *Config) { c.VFov = 180 }},
		{"negative defocus", func(c *Config) { c.DefocusAngle = &negative }},
		{"negative focus", func(c *Config) { c.FocusDistance = -3 }},
		{"negative samples", func(c *Config) { c.SamplesPerPixel = -5 }},
		{"negative depth", func(c *Config) { c.MaxDepth = intPtr(-1) }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"huge supersample", func(c *Config) { c.Supersample = MaxSupersample + 1 }},
		{"unknown profile", func(c *Config) { c.Profile = "srgb" }},
		{"unknown output format", func(c *Config) { c.Output = "render.jpg" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{}
			cfg.Resolve(Flags{})
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestApply(t *testing.T) {
	defocus := 0.0
	seed := int64(5)
	cfg := Config{
		Scene:           "final",
		Width:           300,
		AspectRatio:     2.0,
		VFov:            30,
		LookFrom:        &[3]float64{1, 2, 3},
		LookAt:          &[3]float64{0, 1, 0},
		DefocusAngle:    &defocus,
		SamplesPerPixel: 8,
		MaxDepth:        intPtr(4),
		Seed:            &seed,
		Workers:         2,
		Supersample:     2,
	}
	cfg.Resolve(Flags{})

	s := scene.NewFinalScene(cfg.SceneSeed())
	cfg.Apply(s)

	expectedCamera := renderer.CameraConfig{
		Center:        core.NewVec3(1, 2, 3),
		LookAt:        core.NewVec3(0, 1, 0),
		Up:            core.NewVec3(0, 1, 0),
		Width:         600,
		AspectRatio:   2.0,
		VFov:          30,
		DefocusAngle:  0,
		FocusDistance: 10,
	}
	if s.Camera != expectedCamera {
		t.Errorf("Camera mismatch:\n got %+v\nwant %+v", s.Camera, expectedCamera)
	}

	expectedSampling := renderer.SamplingConfig{SamplesPerPixel: 8, MaxDepth: 4, Seed: 5, Workers: 2}
	if s.Sampling != expectedSampling {
		t.Errorf("Sampling mismatch: got %+v, want %+v", s.Sampling, expectedSampling)
	}
}

func TestApply_EmptyConfigKeepsScene(t *testing.T) {
	cfg := Config{}
	cfg.Resolve(Flags{})

	s := scene.NewMaterialsScene()
	before := *s
	cfg.Apply(s)
	if s.Camera != before.Camera || s.Sampling != before.Sampling {
		t.Errorf("Empty config changed the scene: %+v -> %+v", before, *s)
	}
	if cfg.SceneSeed() != renderer.DefaultSamplingConfig().Seed {
		t.Errorf("Unset seed should fall back to the default, got %d", cfg.SceneSeed())
	}
	if cfg.ColorProfile() != renderer.ProfileGamma2 {
		t.Errorf("Expected gamma2 profile, got %v", cfg.ColorProfile())
	}
}

func TestApply_ZeroMaxDepth(t *testing.T) {
	path := writeConfig(t, `{"scene": "materials", "max_depth": 0}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Resolve(Flags{})
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	s := scene.NewMaterialsScene()
	cfg.Apply(s)
	if s.Sampling.MaxDepth != 0 {
		t.Errorf("Expected max depth 0 from the file, got %d", s.Sampling.MaxDepth)
	}

	// A zero depth flag overrides the file as well
	cfg = Config{MaxDepth: intPtr(7)}
	cfg.Resolve(Flags{Depth: intPtr(0)})
	s = scene.NewMaterialsScene()
	cfg.Apply(s)
	if s.Sampling.MaxDepth != 0 {
		t.Errorf("Expected max depth 0 from the flag, got %d", s.Sampling.MaxDepth)
	}
}

func TestOutputSize(t *testing.T) {
	tests := []struct {
		name        string
		width       int
		supersample int
		wantW       int
		wantH       int
	}{
		{"no supersample", 40, 1, 40, 23},
		{"rounding differs from the scaled frame", 40, 3, 40, 23},
		{"even split", 32, 2, 32, 18},
		{"wide", 400, 4, 400, 225},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Scene: "empty", Width: tt.width, Supersample: tt.supersample}
			cfg.Resolve(Flags{})
			s := scene.NewEmptyScene()
			cfg.Apply(s)

			w, h := cfg.OutputSize(s.Camera)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Expected %dx%d, got %dx%d", tt.wantW, tt.wantH, w, h)
			}
		})
	}
}

func TestValidate_VFovMessage(t *testing.T) {
	cfg := Config{VFov: 200}
	cfg.Resolve(Flags{})
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) || !strings.Contains(err.Error(), "or 0 to keep the scene's") {
		t.Errorf("Expected the vfov error to explain the zero default, got %v", err)
	}

	cfg.VFov = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Zero vfov keeps the scene default and should validate, got %v", err)
	}
}
