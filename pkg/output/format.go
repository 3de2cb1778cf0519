package output

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned for image formats or extensions with no encoder
var ErrUnknownFormat = errors.New("unknown image format")

// Format names an image encoding
type Format string

const (
	FormatPPM  Format = "ppm"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
	FormatTGA  Format = "tga"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// Formats lists every supported image format
var Formats = []Format{FormatPPM, FormatPNG, FormatWebP, FormatTGA, FormatBMP, FormatTIFF}

// Compression names a stream compressor wrapped around the encoded image
type Compression string

const (
	CompressionNone   Compression = ""
	CompressionGzip   Compression = "gz"
	CompressionZstd   Compression = "zst"
	CompressionSnappy Compression = "sz"
)

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatPPM:
		return "image/x-portable-pixmap"
	case FormatTGA:
		return "image/x-tga"
	default:
		return "image/" + string(f)
	}
}

// ParseFormat resolves a format name, accepting common aliases
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "ppm", "pnm":
		return FormatPPM, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	case "tga":
		return FormatTGA, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FormatFromPath resolves the image format and compression from a file name,
// e.g. "render.ppm.zst" is a zstd-compressed PPM.
func FormatFromPath(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))

	compression := CompressionNone
	for _, c := range []Compression{CompressionGzip, CompressionZstd, CompressionSnappy} {
		if strings.HasSuffix(name, "."+string(c)) {
			compression = c
			name = strings.TrimSuffix(name, "."+string(c))
			break
		}
	}

	ext := filepath.Ext(name)
	if ext == "" {
		return "", compression, fmt.Errorf("%w: %q has no extension", ErrUnknownFormat, path)
	}
	format, err := ParseFormat(ext)
	if err != nil {
		return "", compression, err
	}
	return format, compression, nil
}

// stripExtensions removes the image and compression extensions from path
func stripExtensions(path string) string {
	_, compression, _ := FormatFromPath(path)
	if compression != CompressionNone {
		path = path[:len(path)-len(compression)-1]
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}
