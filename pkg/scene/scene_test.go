package scene

import (
	"errors"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"final", "Final"},
		{"hollow-glass", "Hollow Glass"},
		{"sky_only", "Sky Only"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if result := titleCase(tc.input); result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			s, err := ByName(name, 1)
			if err != nil {
				t.Fatalf("ByName(%q): %v", name, err)
			}
			if s.Name != name {
				t.Errorf("Expected scene name %q, got %q", name, s.Name)
			}
			if s.World == nil {
				t.Fatal("Scene has no world")
			}
			if err := s.Camera.Validate(); err != nil {
				t.Errorf("Scene camera invalid: %v", err)
			}
			if err := s.Sampling.Validate(); err != nil {
				t.Errorf("Scene sampling invalid: %v", err)
			}
		})
	}

	if s, err := ByName("  Materials ", 0); err != nil || s.Name != "materials" {
		t.Errorf("Lookup should ignore case and spaces, got %v, %v", s, err)
	}

	_, err := ByName("cornell", 0)
	if !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
}

func TestListScenes(t *testing.T) {
	infos := ListScenes()
	names := Names()
	if len(infos) != len(names) {
		t.Fatalf("Expected %d scene infos, got %d", len(names), len(infos))
	}
	for i, info := range infos {
		if info.ID != names[i] {
			t.Errorf("Info %d has ID %q, expected %q", i, info.ID, names[i])
		}
		if info.DisplayName == "" || info.Description == "" {
			t.Errorf("Scene %q is missing display text: %+v", info.ID, info)
		}
	}
	if !infos[0].Seeded || infos[0].ID != "final" {
		t.Errorf("Final scene should be listed first and marked seeded, got %+v", infos[0])
	}
}

func TestFinalScene(t *testing.T) {
	s := NewFinalScene(42)

	// Ground + up to 22x22 small spheres + 3 large spheres
	if n := s.World.Len(); n < 4+400 || n > 1+22*22+3 {
		t.Errorf("Unexpected sphere count %d", n)
	}

	expected := renderer.CameraConfig{
		Center:        core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		Width:         1200,
		AspectRatio:   16.0 / 9.0,
		VFov:          20.0,
		DefocusAngle:  0.6,
		FocusDistance: 10.0,
	}
	if s.Camera != expected {
		t.Errorf("Unexpected camera %+v", s.Camera)
	}
	if s.Sampling.SamplesPerPixel != 500 || s.Sampling.MaxDepth != 50 || s.Sampling.Seed != 42 {
		t.Errorf("Unexpected sampling %+v", s.Sampling)
	}

	// No small sphere intrudes on the clearing by the metal sphere
	clearing := core.NewVec3(4, 0.2, 0)
	for _, shape := range s.World.Shapes {
		sphere := shape.(*geometry.Sphere)
		if sphere.Radius == 0.2 && sphere.Center.Subtract(clearing).Length() <= 0.9 {
			t.Errorf("Small sphere at %v is inside the clearing", sphere.Center)
		}
	}
}

func TestFinalScene_SeedDeterminesLayout(t *testing.T) {
	centers := func(seed int64) []core.Vec3 {
		var out []core.Vec3
		for _, shape := range NewFinalScene(seed).World.Shapes {
			out = append(out, shape.(*geometry.Sphere).Center)
		}
		return out
	}

	a, b := centers(5), centers(5)
	if len(a) != len(b) {
		t.Fatalf("Same seed produced %d and %d spheres", len(a), len(b))
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			t.Fatalf("Same seed produced different sphere %d: %v vs %v", i, a[i], b[i])
		}
	}

	c := centers(6)
	same := len(a) == len(c)
	for i := 0; same && i < len(a); i++ {
		same = a[i].Equals(c[i])
	}
	if same {
		t.Error("Different seeds should produce different layouts")
	}
}

func TestNormalsScene(t *testing.T) {
	s := NewNormalsScene()
	if s.World.Len() != 2 {
		t.Fatalf("Expected 2 spheres, got %d", s.World.Len())
	}
	for _, shape := range s.World.Shapes {
		if sphere := shape.(*geometry.Sphere); sphere.Material != nil {
			t.Errorf("Normals scene sphere at %v should have no material", sphere.Center)
		}
	}
	if s.Camera != renderer.DefaultCameraConfig() {
		t.Errorf("Normals scene should use the default camera, got %+v", s.Camera)
	}
}

func TestMaterialsScene(t *testing.T) {
	s := NewMaterialsScene()
	if s.World.Len() != 5 {
		t.Fatalf("Expected 5 spheres, got %d", s.World.Len())
	}
	for _, shape := range s.World.Shapes {
		if sphere := shape.(*geometry.Sphere); sphere.Material == nil {
			t.Errorf("Materials scene sphere at %v has no material", sphere.Center)
		}
	}
}

func TestEmptyScene(t *testing.T) {
	s := NewEmptyScene()
	if s.World.Len() != 0 {
		t.Errorf("Empty scene has %d shapes", s.World.Len())
	}
	if _, ok := s.World.Hit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), core.UniverseInterval()); ok {
		t.Error("Empty scene should never report a hit")
	}
}
