package processor

import (
	"fmt"
	"strings"

	"github.com/nfnt/resize"
)

// Format names an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// OutputFormat is the single encoding every resized image is written in.
// For WebP a nil Quality means lossless.
type OutputFormat struct {
	Format  Format
	Quality *float32
}

// PNG returns the PNG output format.
func PNG() OutputFormat {
	return OutputFormat{Format: FormatPNG}
}

// WebP returns the WebP output format; pass nil for lossless.
func WebP(quality *float32) OutputFormat {
	return OutputFormat{Format: FormatWebP, Quality: quality}
}

// ContentType returns the MIME type of the encoded output.
func (o OutputFormat) ContentType() string {
	if o.Format == FormatWebP {
		return "image/webp"
	}
	return "image/png"
}

// Lossless reports whether the encoder keeps every pixel.
func (o OutputFormat) Lossless() bool {
	return o.Format == FormatPNG || o.Quality == nil
}

// ParseOutputFormat builds an OutputFormat from configuration values.
func ParseOutputFormat(name string, quality *float32) (OutputFormat, error) {
	switch Format(strings.ToLower(name)) {
	case FormatPNG:
		return PNG(), nil
	case FormatWebP, "":
		if quality != nil && (*quality < 0 || *quality > 100) {
			return OutputFormat{}, fmt.Errorf("webp quality must be within 0..100, got %v", *quality)
		}
		return WebP(quality), nil
	default:
		return OutputFormat{}, fmt.Errorf("unsupported output format: %s", name)
	}
}

// filters maps configuration names to resize interpolation functions.
var filters = map[string]resize.InterpolationFunction{
	"nearest":  resize.NearestNeighbor,
	"bilinear": resize.Bilinear,
	"bicubic":  resize.Bicubic,
	"lanczos3": resize.Lanczos3,
}

// ParseFilter returns the interpolation function for name. Empty selects
// bilinear.
func ParseFilter(name string) (resize.InterpolationFunction, error) {
	if name == "" {
		return resize.Bilinear, nil
	}
	f, ok := filters[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unsupported resize filter: %s", name)
	}
	return f, nil
}
