package processor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"github.com/chai2010/webp"
	"github.com/gabriel-vasile/mimetype"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrUnsupportedFormat is returned when the bytes are not an image the
// decoder registry knows.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Transcoder decodes stored bytes, resizes them exactly to a target size and
// re-encodes them in the configured output format.
type Transcoder interface {
	Transcode(buf []byte, width, height int) ([]byte, error)
	ContentType() string
}

// NativeProcessor implements Transcoder using pure Go decoders and
// nfnt/resize. WebP goes through libwebp.
type NativeProcessor struct {
	output OutputFormat
	filter resize.InterpolationFunction
}

// NewNativeProcessor creates a processor writing the given output format.
func NewNativeProcessor(output OutputFormat, filter resize.InterpolationFunction) *NativeProcessor {
	return &NativeProcessor{
		output: output,
		filter: filter,
	}
}

// ContentType returns the MIME type of every Transcode result.
func (p *NativeProcessor) ContentType() string {
	return p.output.ContentType()
}

// Transcode guesses the container from content, decodes it, resizes to
// exactly width x height and encodes to the configured format.
func (p *NativeProcessor) Transcode(buf []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}

	mtype := mimetype.Detect(buf)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mtype.String())
	}

	img, format, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", mtype.String(), err)
	}

	thumbnail := resize.Resize(uint(width), uint(height), img, p.filter)

	out, err := p.encode(thumbnail)
	if err != nil {
		return nil, fmt.Errorf("encode %s from %s: %w", p.output.Format, format, err)
	}
	return out, nil
}

func (p *NativeProcessor) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer

	switch p.output.Format {
	case FormatWebP:
		opts := &webp.Options{Lossless: true}
		if p.output.Quality != nil {
			opts = &webp.Options{Quality: *p.output.Quality}
		}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return nil, err
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}
