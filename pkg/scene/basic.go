package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// NewMaterialsScene creates three spheres showing each material on a large ground sphere
func NewMaterialsScene() *Scene {
	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	glass := material.NewDielectric(1.50)
	// Air inside glass, the inner sphere makes the left one hollow
	bubble := material.NewDielectric(1.00 / 1.50)
	metal := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 1.0)

	world := geometry.NewList(
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, ground),
		geometry.NewSphere(core.NewVec3(0, 0, -1.2), 0.5, center),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, glass),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.4, bubble),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, metal),
	)

	return &Scene{
		Name:  "materials",
		World: world,
		Camera: renderer.CameraConfig{
			Center:        core.NewVec3(-2, 2, 1),
			LookAt:        core.NewVec3(0, 0, -1),
			Up:            core.NewVec3(0, 1, 0),
			Width:         400,
			AspectRatio:   16.0 / 9.0,
			VFov:          20.0,
			DefocusAngle:  10.0,
			FocusDistance: 3.4,
		},
		Sampling: defaultSampling(),
	}
}

// NewNormalsScene creates a sphere with no material over a ground sphere, both shaded by their normals
func NewNormalsScene() *Scene {
	world := geometry.NewList(
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, nil),
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, nil),
	)

	return &Scene{
		Name:     "normals",
		World:    world,
		Camera:   renderer.DefaultCameraConfig(),
		Sampling: defaultSampling(),
	}
}

// NewEmptyScene creates a scene with no objects, every ray sees the background
func NewEmptyScene() *Scene {
	return &Scene{
		Name:     "empty",
		World:    geometry.NewList(),
		Camera:   renderer.DefaultCameraConfig(),
		Sampling: defaultSampling(),
	}
}
