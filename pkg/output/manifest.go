package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Manifest describes a saved render so tooling can reproduce it
type Manifest struct {
	Version         int     `json:"version"`
	CreatedAt       string  `json:"created_at"`
	Scene           string  `json:"scene"`
	Image           string  `json:"image"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Supersample     int     `json:"supersample,omitempty"`
	SamplesPerPixel int     `json:"samples_per_pixel"`
	MaxDepth        int     `json:"max_depth"`
	Seed            int64   `json:"seed"`
	Workers         int     `json:"workers"`
	Profile         string  `json:"profile"`
	DurationMs      int64   `json:"duration_ms"`
	TotalSamples    int     `json:"total_samples"`
	MeanLuminance   float64 `json:"mean_luminance"`
	ImageLuminance  float64 `json:"image_luminance"` // Of the saved 8-bit image
}

// ManifestVersion is written into every manifest
const ManifestVersion = 1

// ManifestPath returns the sidecar path for an image, e.g. out/render.png.zst -> out/render.json
func ManifestPath(imagePath string) string {
	return stripExtensions(imagePath) + ".json"
}

// WriteManifest writes m as indented JSON to path
func WriteManifest(path string, m Manifest) error {
	if m.Version == 0 {
		m.Version = ManifestVersion
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create manifest directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return m, nil
}
