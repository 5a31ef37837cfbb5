// Package metadata describes what kind of object a stored file is.
package metadata

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind is the tag of a Metadata value.
type Kind string

const (
	KindFile  Kind = "File"
	KindText  Kind = "Text"
	KindImage Kind = "Image"
	KindVideo Kind = "Video"
	KindAudio Kind = "Audio"
)

// Metadata is recorded at upload time and never mutated afterwards.
// Width and Height are only meaningful for Image and Video.
type Metadata struct {
	Kind   Kind
	Width  int
	Height int
}

// Image returns image metadata with the given dimensions.
func Image(width, height int) Metadata {
	return Metadata{Kind: KindImage, Width: width, Height: height}
}

// File returns metadata for a plain, non-media file.
func File() Metadata {
	return Metadata{Kind: KindFile}
}

// IsImage reports whether the object is a raster image.
func (m Metadata) IsImage() bool {
	return m.Kind == KindImage
}

// Dimensions returns the stored image size. ok is false for every kind
// except Image, including Video.
func (m Metadata) Dimensions() (width, height int, ok bool) {
	if !m.IsImage() {
		return 0, 0, false
	}
	return m.Width, m.Height, true
}

func (m Metadata) String() string {
	switch m.Kind {
	case KindImage, KindVideo:
		return fmt.Sprintf("%s(%dx%d)", m.Kind, m.Width, m.Height)
	default:
		return string(m.Kind)
	}
}

type wireMetadata struct {
	Type   Kind `json:"type"`
	Width  int  `json:"width,omitempty"`
	Height int  `json:"height,omitempty"`
}

// MarshalJSON encodes the union as {"type": "...", ...}.
func (m Metadata) MarshalJSON() ([]byte, error) {
	w := wireMetadata{Type: m.Kind}
	if m.Kind == KindImage || m.Kind == KindVideo {
		w.Width, w.Height = m.Width, m.Height
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the tagged union. Unknown tags are rejected; image
// dimensions must be strictly positive.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var w wireMetadata
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	switch w.Type {
	case KindImage:
		if w.Width <= 0 || w.Height <= 0 {
			return fmt.Errorf("metadata: image dimensions must be positive, got %dx%d", w.Width, w.Height)
		}
		*m = Image(w.Width, w.Height)
	case KindVideo:
		*m = Metadata{Kind: KindVideo, Width: w.Width, Height: w.Height}
	case KindFile, KindText, KindAudio:
		*m = Metadata{Kind: w.Type}
	default:
		return fmt.Errorf("metadata: unknown type %q", w.Type)
	}
	return nil
}
