package renderer

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ErrInvalidCamera is returned when a camera configuration cannot produce a viewport
var ErrInvalidCamera = errors.New("invalid camera configuration")

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	Center        core.Vec3 // Camera position (look from)
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction hint (usually (0,1,0))
	Width         int       // Image width in pixels, height is derived
	AspectRatio   float64   // Width / height ratio
	VFov          float64   // Vertical field of view in degrees
	DefocusAngle  float64   // Cone angle of rays through each pixel in degrees, 0 disables depth of field
	FocusDistance float64   // Distance from the camera to the plane of perfect focus
}

// DefaultCameraConfig looks down -z from the origin with a 90 degree field of view
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		Width:         400,
		AspectRatio:   16.0 / 9.0,
		VFov:          90.0,
		DefocusAngle:  0.0,
		FocusDistance: 1.0,
	}
}

// Camera generates rays for rendering. It is immutable once built and safe to share between workers.
type Camera struct {
	config       CameraConfig
	imageHeight  int
	center       core.Vec3
	pixel00Loc   core.Vec3 // Location of pixel (0, 0)
	pixelDeltaU  core.Vec3 // Offset to pixel to the right
	pixelDeltaV  core.Vec3 // Offset to pixel below
	u, v, w      core.Vec3 // Camera frame basis vectors
	defocusDiskU core.Vec3 // Defocus disk horizontal radius
	defocusDiskV core.Vec3 // Defocus disk vertical radius
}

// Validate checks the configuration for values that would divide by zero or leave the frame undefined
func (c CameraConfig) Validate() error {
	switch {
	case c.Width <= 0:
		return fmt.Errorf("%w: width must be positive, got %d", ErrInvalidCamera, c.Width)
	case c.AspectRatio <= 0 || math.IsNaN(c.AspectRatio) || math.IsInf(c.AspectRatio, 0):
		return fmt.Errorf("%w: aspect ratio must be positive and finite, got %f", ErrInvalidCamera, c.AspectRatio)
	case c.VFov <= 0 || c.VFov >= 180:
		return fmt.Errorf("%w: vertical fov must be in (0, 180), got %f", ErrInvalidCamera, c.VFov)
	case c.FocusDistance <= 0:
		return fmt.Errorf("%w: focus distance must be positive, got %f", ErrInvalidCamera, c.FocusDistance)
	case c.DefocusAngle < 0 || c.DefocusAngle >= 180:
		return fmt.Errorf("%w: defocus angle must be in [0, 180), got %f", ErrInvalidCamera, c.DefocusAngle)
	}

	view := c.Center.Subtract(c.LookAt)
	if view.NearZero() {
		return fmt.Errorf("%w: camera center and look-at point coincide", ErrInvalidCamera)
	}
	if c.Up.Cross(view).NearZero() {
		return fmt.Errorf("%w: up vector is parallel to the view direction", ErrInvalidCamera)
	}
	return nil
}

// ImageHeight returns the derived image height, never less than 1
func (c CameraConfig) ImageHeight() int {
	return max(1, int(math.Round(float64(c.Width)/c.AspectRatio)))
}

// NewCamera validates the config and precomputes the viewport
func NewCamera(config CameraConfig) (*Camera, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	imageHeight := config.ImageHeight()

	theta := config.VFov * math.Pi / 180.0
	h := math.Tan(theta / 2)
	viewportHeight := 2 * h * config.FocusDistance
	viewportWidth := viewportHeight * (float64(config.Width) / float64(imageHeight))

	// Right-handed orthonormal frame, the camera looks down -w
	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	// Vectors across the horizontal and down the vertical viewport edges
	viewportU := u.Multiply(viewportWidth)
	viewportV := v.Negate().Multiply(viewportHeight)

	pixelDeltaU := viewportU.Divide(float64(config.Width))
	pixelDeltaV := viewportV.Divide(float64(imageHeight))

	viewportUpperLeft := config.Center.
		Subtract(w.Multiply(config.FocusDistance)).
		Subtract(viewportU.Multiply(0.5)).
		Subtract(viewportV.Multiply(0.5))
	pixel00Loc := viewportUpperLeft.Add(pixelDeltaU.Add(pixelDeltaV).Multiply(0.5))

	defocusRadius := config.FocusDistance * math.Tan(config.DefocusAngle*math.Pi/180.0/2)

	return &Camera{
		config:       config,
		imageHeight:  imageHeight,
		center:       config.Center,
		pixel00Loc:   pixel00Loc,
		pixelDeltaU:  pixelDeltaU,
		pixelDeltaV:  pixelDeltaV,
		u:            u,
		v:            v,
		w:            w,
		defocusDiskU: u.Multiply(defocusRadius),
		defocusDiskV: v.Multiply(defocusRadius),
	}, nil
}

// GetRay generates a jittered ray through pixel (i, j), counted from the top-left corner
func (c *Camera) GetRay(i, j int, random *rand.Rand) core.Ray {
	offset := core.SampleSquare(random)
	pixelSample := c.PixelCenter(i, j).
		Add(c.pixelDeltaU.Multiply(offset.X)).
		Add(c.pixelDeltaV.Multiply(offset.Y))

	rayOrigin := c.center
	if c.config.DefocusAngle > 0 {
		rayOrigin = c.defocusDiskSample(random)
	}

	return core.NewRay(rayOrigin, pixelSample.Subtract(rayOrigin))
}

// PixelCenter returns the point on the focus plane at the center of pixel (i, j)
func (c *Camera) PixelCenter(i, j int) core.Vec3 {
	return c.pixel00Loc.
		Add(c.pixelDeltaU.Multiply(float64(i))).
		Add(c.pixelDeltaV.Multiply(float64(j)))
}

// defocusDiskSample returns a random point on the camera's defocus disk
func (c *Camera) defocusDiskSample(random *rand.Rand) core.Vec3 {
	p := core.RandomInUnitDisk(random)
	return c.center.Add(c.defocusDiskU.Multiply(p.X)).Add(c.defocusDiskV.Multiply(p.Y))
}

// Width returns the image width in pixels
func (c *Camera) Width() int {
	return c.config.Width
}

// Height returns the image height in pixels
func (c *Camera) Height() int {
	return c.imageHeight
}

// Center returns the camera position
func (c *Camera) Center() core.Vec3 {
	return c.center
}

// GetCameraForward returns the camera's forward direction
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w.Negate()
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}
