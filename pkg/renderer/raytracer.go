package renderer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// ErrInvalidSampling is returned for sampling settings that cannot produce an image
var ErrInvalidSampling = errors.New("invalid sampling configuration")

// hitEpsilon keeps scattered rays from re-hitting the surface they leave
const hitEpsilon = 0.001

var (
	// White is the background color straight down
	White = core.NewVec3(1.0, 1.0, 1.0)
	// SkyBlue is the background color straight up
	SkyBlue = core.NewVec3(0.5, 0.7, 1.0)
)

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	SamplesPerPixel int   // Number of rays per pixel
	MaxDepth        int   // Maximum ray bounce depth
	Seed            int64 // Base seed, each scanline derives its own generator from it
	Workers         int   // Number of parallel workers (0 = use CPU count)
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
		Seed:            42,
		Workers:         0,
	}
}

// Validate rejects settings that would divide by zero or never sample
func (c SamplingConfig) Validate() error {
	if c.SamplesPerPixel <= 0 {
		return fmt.Errorf("%w: samples per pixel must be positive, got %d", ErrInvalidSampling, c.SamplesPerPixel)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth must not be negative, got %d", ErrInvalidSampling, c.MaxDepth)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidSampling, c.Workers)
	}
	return nil
}

// ProgressFunc receives the number of finished scanlines after each one completes
type ProgressFunc func(done, total int)

// Raytracer handles the rendering process
type Raytracer struct {
	camera     *Camera
	world      geometry.Shape
	config     SamplingConfig
	logger     core.Logger
	onProgress ProgressFunc
}

// NewRaytracer creates a new raytracer. The world must not be modified while rendering.
func NewRaytracer(camera *Camera, world geometry.Shape, config SamplingConfig, logger core.Logger) (*Raytracer, error) {
	if camera == nil {
		return nil, fmt.Errorf("%w: camera is required", ErrInvalidCamera)
	}
	if world == nil {
		return nil, errors.New("world is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Raytracer{
		camera: camera,
		world:  world,
		config: config,
		logger: logger,
	}, nil
}

// SetProgressCallback registers a function called after every finished scanline.
// Calls happen on the goroutine running Render, one at a time.
func (rt *Raytracer) SetProgressCallback(fn ProgressFunc) {
	rt.onProgress = fn
}

// Config returns the sampling configuration
func (rt *Raytracer) Config() SamplingConfig {
	return rt.config
}

// Camera returns the camera rays are generated from
func (rt *Raytracer) Camera() *Camera {
	return rt.camera
}

// BackgroundColor blends white and sky blue by the ray's vertical direction
func BackgroundColor(r core.Ray) core.Vec3 {
	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	a := 0.5 * (unitDirection.Y + 1.0)

	return White.Multiply(1.0 - a).Add(SkyBlue.Multiply(a))
}

// RayColor returns the radiance carried back along r.
// depth counts the scatter steps still allowed, so at most depth+1 bounces contribute.
func (rt *Raytracer) RayColor(r core.Ray, depth int, random *rand.Rand) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth < 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}

	hit, isHit := rt.world.Hit(r, core.NewInterval(hitEpsilon, math.Inf(1)))
	if !isHit {
		return BackgroundColor(r)
	}

	// Surfaces without a material are shaded by their normal
	if hit.Material == nil {
		return hit.Normal.Add(White).Multiply(0.5)
	}

	scatter, didScatter := hit.Material.Scatter(r, *hit, random)
	if !didScatter {
		return core.Vec3{X: 0, Y: 0, Z: 0} // Material absorbed the ray
	}

	return scatter.Attenuation.MultiplyVec(rt.RayColor(scatter.Scattered, depth-1, random))
}

// ScanlineSeed derives the generator seed for a scanline so results do not depend on scheduling
func ScanlineSeed(seed int64, row int) int64 {
	// +42 keeps row 0 of seed 0 away from the zero seed
	return seed*1_000_003 + int64(row) + 42
}

// renderScanline samples every pixel of row j into the frame and returns the number of samples taken
func (rt *Raytracer) renderScanline(j int, frame *Frame) int {
	random := rand.New(rand.NewSource(ScanlineSeed(rt.config.Seed, j)))
	samples := 0

	for i := 0; i < frame.Width; i++ {
		var ps PixelStats
		for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
			ray := rt.camera.GetRay(i, j, random)
			ps.AddSample(rt.RayColor(ray, rt.config.MaxDepth, random))
		}
		frame.Set(i, j, ps.GetColor())
		samples += ps.SampleCount
	}

	return samples
}

// Render traces the whole image. Scanlines run in parallel and the context is
// checked between scanlines; a cancelled render returns the context error.
func (rt *Raytracer) Render(ctx context.Context) (*Frame, RenderStats, error) {
	startTime := time.Now()
	width, height := rt.camera.Width(), rt.camera.Height()
	frame := NewFrame(width, height)

	numWorkers := rt.config.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = min(numWorkers, height)

	pool := NewWorkerPool(ctx, rt, frame, numWorkers)
	pool.Start()
	defer pool.Stop()

	rt.logger.Printf("Rendering %dx%d, %d samples per pixel, max depth %d (using %d workers)...\n",
		width, height, rt.config.SamplesPerPixel, rt.config.MaxDepth, pool.GetNumWorkers())

	// Scanlines are submitted top to bottom
	submitted := 0
	for j := 0; j < height; j++ {
		if ctx.Err() != nil {
			break
		}
		pool.SubmitTask(ScanlineTask{Row: j})
		submitted++
	}

	stats := RenderStats{
		TotalPixels: width * height,
		Workers:     pool.GetNumWorkers(),
	}
	logEvery := max(1, height/10)

	var renderErr error
	for i := 0; i < submitted; i++ {
		result, ok := pool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			if renderErr == nil {
				renderErr = result.Error
			}
			continue
		}

		stats.Scanlines++
		stats.TotalSamples += result.Samples

		if rt.onProgress != nil {
			rt.onProgress(stats.Scanlines, height)
		}
		if stats.Scanlines%logEvery == 0 {
			rt.logger.Printf("Scanlines remaining: %d\n", height-stats.Scanlines)
		}
	}

	if renderErr == nil {
		renderErr = ctx.Err()
	}
	if renderErr != nil {
		rt.logger.Printf("Render stopped after %d of %d scanlines: %v\n", stats.Scanlines, height, renderErr)
		return nil, stats, renderErr
	}

	stats.Duration = time.Since(startTime)
	stats.MeanLuminance = frame.MeanLuminance()
	rt.logger.Printf("Done in %v (%.0f samples/s)\n", stats.Duration, stats.SamplesPerSecond())

	return frame, stats, nil
}
