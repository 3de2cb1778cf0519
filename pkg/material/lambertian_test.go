package material

import (
	"math/rand"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

func TestLambertian_AlwaysScattersWithAlbedo(t *testing.T) {
	albedo := core.NewVec3(0.5, 0.7, 0.9)
	lambertian := NewLambertian(albedo)
	random := rand.New(rand.NewSource(42))

	tests := []struct {
		name   string
		ray    core.Ray
		normal core.Vec3
	}{
		{"head on", core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1)), core.NewVec3(0, 0, 1)},
		{"grazing", core.NewRay(core.NewVec3(-1, 0, 0.01), core.NewVec3(1, 0, -0.01)), core.NewVec3(0, 0, 1)},
		{"back face", core.NewRay(core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 1)), core.NewVec3(0, 0, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: tt.normal}
			for i := 0; i < 500; i++ {
				scatter, didScatter := lambertian.Scatter(tt.ray, hit, random)
				if !didScatter {
					t.Fatal("Lambertian should always scatter")
				}
				if !scatter.Attenuation.Equals(albedo) {
					t.Fatalf("Attenuation should equal albedo: expected %v, got %v", albedo, scatter.Attenuation)
				}
				if !scatter.Scattered.Origin.Equals(hit.Point) {
					t.Fatalf("Scattered ray should start at the hit point, got %v", scatter.Scattered.Origin)
				}
				if scatter.Scattered.Direction.NearZero() {
					t.Fatal("Scattered direction must never be degenerate")
				}
				if scatter.Scattered.Direction.Dot(tt.normal) < -1e-9 {
					t.Fatalf("Scattered direction points into the surface: %v", scatter.Scattered.Direction)
				}
			}
		})
	}
}
