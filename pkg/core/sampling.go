package core

import (
	"math"
	"math/rand"
)

// unitVectorEpsilon rejects samples so close to the origin that normalizing them is unstable
const unitVectorEpsilon = 1e-160

// RandomUnitVector returns a uniformly distributed direction on the unit sphere.
// Points are drawn from the [-1,1]³ cube and kept only if they fall inside the unit ball.
func RandomUnitVector(random *rand.Rand) Vec3 {
	for {
		p := RandomVec3Range(random, -1, 1)
		lensq := p.LengthSquared()
		if unitVectorEpsilon < lensq && lensq <= 1 {
			return p.Divide(math.Sqrt(lensq))
		}
	}
}

// RandomInUnitDisk generates a random point in a unit disk (for depth of field)
func RandomInUnitDisk(random *rand.Rand) Vec3 {
	for {
		// Generate random point in [-1,1] x [-1,1] square
		p := NewVec3(2*random.Float64()-1, 2*random.Float64()-1, 0)
		// Accept if inside unit disk
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
}

// SampleSquare returns a jitter offset uniform in [-0.5, 0.5]² with Z = 0
func SampleSquare(random *rand.Rand) Vec3 {
	return NewVec3(random.Float64()-0.5, random.Float64()-0.5, 0)
}
