package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// ErrInvalidConfig is returned by Validate for settings that cannot be rendered
var ErrInvalidConfig = errors.New("invalid config")

// DefaultScene is rendered when neither the file nor the flags pick one
const DefaultScene = "final"

// MaxSupersample bounds the render size multiplier
const MaxSupersample = 8

// Config holds the render settings. Zero or missing fields keep the scene's defaults.
type Config struct {
	Scene string `json:"scene"`

	// Camera
	Width         int         `json:"width"`
	AspectRatio   float64     `json:"aspect_ratio"`
	VFov          float64     `json:"vfov"`
	LookFrom      *[3]float64 `json:"look_from,omitempty"`
	LookAt        *[3]float64 `json:"look_at,omitempty"`
	VUp           *[3]float64 `json:"vup,omitempty"`
	DefocusAngle  *float64    `json:"defocus_angle,omitempty"` // 0 is meaningful, so nil means unset
	FocusDistance float64     `json:"focus_distance"`

	// Sampling
	SamplesPerPixel int    `json:"samples_per_pixel"`
	MaxDepth        *int   `json:"max_depth,omitempty"` // 0 disables bouncing, so nil means unset
	Seed            *int64 `json:"seed,omitempty"`
	Workers         int    `json:"workers"`

	// Output
	Profile     string `json:"profile"`
	Output      string `json:"output"`
	Supersample int    `json:"supersample"`
	Manifest    bool   `json:"manifest"`
}

// Flags holds CLI flag values that override config file settings.
// Zero values and nil pointers leave the file's value alone.
type Flags struct {
	Scene       string
	Width       int
	Samples     int
	Depth       *int
	Seed        *int64
	Workers     int
	Profile     string
	Output      string
	Supersample int
	Manifest    bool
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve applies CLI flags over the file values and fills in defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Scene != "" {
		c.Scene = flags.Scene
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Samples > 0 {
		c.SamplesPerPixel = flags.Samples
	}
	if flags.Depth != nil {
		depth := *flags.Depth
		c.MaxDepth = &depth
	}
	if flags.Seed != nil {
		seed := *flags.Seed
		c.Seed = &seed
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Profile != "" {
		c.Profile = flags.Profile
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}
	if flags.Manifest {
		c.Manifest = true
	}

	if c.Scene == "" {
		c.Scene = DefaultScene
	}
	c.Scene = strings.ToLower(strings.TrimSpace(c.Scene))
	if c.Profile == "" {
		c.Profile = renderer.ProfileGamma2.String()
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
}

// Validate reports the first setting that cannot be rendered
func (c *Config) Validate() error {
	if !slices.Contains(scene.Names(), c.Scene) {
		return fmt.Errorf("%w: scene %q is not one of %s", ErrInvalidConfig, c.Scene, strings.Join(scene.Names(), ", "))
	}

	switch {
	case c.Width < 0:
		return fmt.Errorf("%w: width must not be negative, got %d", ErrInvalidConfig, c.Width)
	case c.AspectRatio < 0:
		return fmt.Errorf("%w: aspect_ratio must not be negative, got %f", ErrInvalidConfig, c.AspectRatio)
	case c.VFov < 0 || c.VFov >= 180:
		return fmt.Errorf("%w: vfov must be in (0, 180), or 0 to keep the scene's, got %f", ErrInvalidConfig, c.VFov)
	case c.DefocusAngle != nil && *c.DefocusAngle < 0:
		return fmt.Errorf("%w: defocus_angle must not be negative, got %f", ErrInvalidConfig, *c.DefocusAngle)
	case c.FocusDistance < 0:
		return fmt.Errorf("%w: focus_distance must not be negative, got %f", ErrInvalidConfig, c.FocusDistance)
	case c.SamplesPerPixel < 0:
		return fmt.Errorf("%w: samples_per_pixel must not be negative, got %d", ErrInvalidConfig, c.SamplesPerPixel)
	case c.MaxDepth != nil && *c.MaxDepth < 0:
		return fmt.Errorf("%w: max_depth must not be negative, got %d", ErrInvalidConfig, *c.MaxDepth)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	case c.Supersample < 1 || c.Supersample > MaxSupersample:
		return fmt.Errorf("%w: supersample must be in [1, %d], got %d", ErrInvalidConfig, MaxSupersample, c.Supersample)
	}

	if _, err := renderer.ParseColorProfile(c.Profile); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Output != "" {
		if _, _, err := output.FormatFromPath(c.Output); err != nil {
			return fmt.Errorf("%w: output: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// ColorProfile returns the parsed profile, falling back to gamma2
func (c *Config) ColorProfile() renderer.ColorProfile {
	profile, _ := renderer.ParseColorProfile(c.Profile)
	return profile
}

// Apply folds the configured overrides into the scene's camera and sampling settings.
// The camera width is multiplied by the supersample factor so the image can be
// downsampled to the requested width afterwards.
func (c *Config) Apply(s *scene.Scene) {
	cam := &s.Camera
	if c.Width > 0 {
		cam.Width = c.Width
	}
	if c.AspectRatio > 0 {
		cam.AspectRatio = c.AspectRatio
	}
	if c.VFov > 0 {
		cam.VFov = c.VFov
	}
	if c.LookFrom != nil {
		cam.Center = vec(*c.LookFrom)
	}
	if c.LookAt != nil {
		cam.LookAt = vec(*c.LookAt)
	}
	if c.VUp != nil {
		cam.Up = vec(*c.VUp)
	}
	if c.DefocusAngle != nil {
		cam.DefocusAngle = *c.DefocusAngle
	}
	if c.FocusDistance > 0 {
		cam.FocusDistance = c.FocusDistance
	}
	if c.Supersample > 1 {
		cam.Width *= c.Supersample
	}

	sampling := &s.Sampling
	if c.SamplesPerPixel > 0 {
		sampling.SamplesPerPixel = c.SamplesPerPixel
	}
	if c.MaxDepth != nil {
		sampling.MaxDepth = *c.MaxDepth
	}
	if c.Seed != nil {
		sampling.Seed = *c.Seed
	}
	if c.Workers > 0 {
		sampling.Workers = c.Workers
	}
}

// OutputSize returns the image size to save for a camera that Apply has
// already scaled by the supersample factor. The height is derived from the
// requested width, not divided down from the supersampled height.
func (c *Config) OutputSize(cam renderer.CameraConfig) (width, height int) {
	if c.Supersample > 1 {
		cam.Width /= c.Supersample
	}
	return cam.Width, cam.ImageHeight()
}

// SceneSeed returns the seed used to lay out random scenes
func (c *Config) SceneSeed() int64 {
	if c.Seed != nil {
		return *c.Seed
	}
	return renderer.DefaultSamplingConfig().Seed
}

func vec(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}
