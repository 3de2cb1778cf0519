package output

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Options controls how Save writes an image
type Options struct {
	// Format overrides the format derived from the file extension
	Format Format
	// Compression overrides the compression derived from the file extension
	Compression Compression
}

// Save encodes img to path, creating parent directories as needed.
// The format and compression come from the file name unless opts overrides them.
// A failed save removes the partial file.
func Save(path string, img image.Image, opts Options) (err error) {
	format, compression, pathErr := FormatFromPath(path)
	if opts.Format != "" {
		format = opts.Format
	} else if pathErr != nil {
		return pathErr
	}
	if opts.Compression != CompressionNone {
		compression = opts.Compression
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close image file: %w", closeErr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	buffered := bufio.NewWriter(file)
	stream, err := compressWriter(buffered, compression)
	if err != nil {
		return err
	}

	if err := Encode(stream, img, format); err != nil {
		stream.Close()
		return err
	}
	// Compressor first, then the buffer beneath it
	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to finish %s stream: %w", compression, err)
	}
	if err := buffered.Flush(); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}

// Load decodes an image written by Save, using the file name to pick the decoder
func Load(path string) (image.Image, error) {
	format, compression, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	reader, err := decompressReader(bufio.NewReader(file), compression)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	img, err := Decode(reader, format)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Decode reads one image in the given format from r
func Decode(r io.Reader, format Format) (image.Image, error) {
	switch format {
	case FormatPPM:
		return ReadPPM(r)
	case FormatPNG:
		return png.Decode(r)
	case FormatWebP:
		return webp.Decode(r)
	case FormatTGA:
		return tga.Decode(r)
	case FormatBMP:
		return bmp.Decode(r)
	case FormatTIFF:
		return tiff.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
