package renderer

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ColorProfile selects how averaged linear colors become 8-bit channel values.
// The profiles produce visibly different brightness for the same scene.
type ColorProfile int

const (
	// ProfileGamma2 applies a square-root gamma, clamps to [0, 0.999] and scales by 256
	ProfileGamma2 ColorProfile = iota
	// ProfileLinear clamps to [0, 1] and scales by 255.999 without gamma
	ProfileLinear
)

var (
	gammaIntensity  = core.NewInterval(0.000, 0.999)
	linearIntensity = core.NewInterval(0.0, 1.0)
)

// String implements fmt.Stringer
func (p ColorProfile) String() string {
	switch p {
	case ProfileGamma2:
		return "gamma2"
	case ProfileLinear:
		return "linear"
	default:
		return fmt.Sprintf("ColorProfile(%d)", int(p))
	}
}

// ParseColorProfile resolves a profile name; the empty string selects gamma2
func ParseColorProfile(raw string) (ColorProfile, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gamma2", "gamma", "":
		return ProfileGamma2, nil
	case "linear", "raw":
		return ProfileLinear, nil
	default:
		return ProfileGamma2, fmt.Errorf("unknown color profile %q", raw)
	}
}

// LinearToGamma maps a linear component to gamma 2 space. Non-positive and NaN inputs map to 0.
func LinearToGamma(linear float64) float64 {
	if linear > 0 {
		return math.Sqrt(linear)
	}
	return 0
}

// Channel converts one linear color component to its 8-bit value
func (p ColorProfile) Channel(linear float64) uint8 {
	switch p {
	case ProfileLinear:
		if math.IsNaN(linear) {
			linear = 0
		}
		return uint8(255.999 * linearIntensity.Clamp(linear))
	default:
		return uint8(256 * gammaIntensity.Clamp(LinearToGamma(linear)))
	}
}

// ToRGBA converts an averaged linear color to an opaque 8-bit color
func (p ColorProfile) ToRGBA(c core.Vec3) color.RGBA {
	return color.RGBA{
		R: p.Channel(c.X),
		G: p.Channel(c.Y),
		B: p.Channel(c.Z),
		A: 255,
	}
}
