package scene

import (
	"errors"
	"fmt"
	"strings"

	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// ErrUnknownScene is returned when a scene name has no builder
var ErrUnknownScene = errors.New("unknown scene")

// Scene contains all the elements needed for rendering
type Scene struct {
	Name     string
	World    *geometry.List
	Camera   renderer.CameraConfig
	Sampling renderer.SamplingConfig
}

// SceneInfo describes a built-in scene for listings
type SceneInfo struct {
	ID          string `json:"id"`          // Name accepted by ByName
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"`
	Seeded      bool   `json:"seeded"` // Layout depends on the seed
}

type builder struct {
	info  SceneInfo
	build func(seed int64) *Scene
}

var builders = []builder{
	{
		info: SceneInfo{
			ID:          "final",
			Description: "Random field of small spheres around three large glass, diffuse and metal spheres",
			Seeded:      true,
		},
		build: NewFinalScene,
	},
	{
		info: SceneInfo{
			ID:          "materials",
			Description: "Diffuse, hollow glass and fuzzy metal spheres on a diffuse ground",
		},
		build: func(int64) *Scene { return NewMaterialsScene() },
	},
	{
		info: SceneInfo{
			ID:          "normals",
			Description: "Unshaded sphere colored by its surface normal",
		},
		build: func(int64) *Scene { return NewNormalsScene() },
	},
	{
		info: SceneInfo{
			ID:          "empty",
			Description: "Nothing but the sky gradient",
		},
		build: func(int64) *Scene { return NewEmptyScene() },
	},
}

// ByName builds the named scene. The seed only affects scenes with random layouts.
func ByName(name string, seed int64) (*Scene, error) {
	id := strings.ToLower(strings.TrimSpace(name))
	for _, b := range builders {
		if b.info.ID == id {
			return b.build(seed), nil
		}
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownScene, name, strings.Join(Names(), ", "))
}

// Names returns the names accepted by ByName
func Names() []string {
	names := make([]string, len(builders))
	for i, b := range builders {
		names[i] = b.info.ID
	}
	return names
}

// ListScenes returns display information for every built-in scene
func ListScenes() []SceneInfo {
	infos := make([]SceneInfo, len(builders))
	for i, b := range builders {
		info := b.info
		info.DisplayName = titleCase(info.ID) + " Scene"
		infos[i] = info
	}
	return infos
}

// titleCase converts "some-name" or "some_name" to "Some Name"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}

// defaultSampling is shared by the small preview scenes
func defaultSampling() renderer.SamplingConfig {
	return renderer.SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
		Seed:            42,
	}
}
