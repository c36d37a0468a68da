package decode

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Register the decoders for the supported formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// Artifact is a validated, decoded in-memory image
type Artifact struct {
	Image  image.Image
	Format string
	Width  int
	Height int
}

// Decoder turns raw bytes into an artifact.
// The scale hint is the display scale factor the artifact will be
// rendered at; implementations may use it to size the decoded image.
type Decoder interface {
	Decode(data []byte, scale float64) (*Artifact, error)
}

// Std is a decoder backed by the stdlib image decoders
type Std struct{}

// Decode decodes and validates image data.
// A scale hint above 1 downscales the image accordingly, so a hint of
// 2 yields an artifact with half the source dimensions.
func (Std) Decode(data []byte, scale float64) (*Artifact, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if scale > 1 {
		width = int(float64(width) / scale)
		height = int(float64(height) / scale)
		if width < 1 {
			width = 1
		}
		if height < 1 {
			height = 1
		}

		scaled := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
		img = scaled
	}

	return &Artifact{
		Image:  img,
		Format: format,
		Width:  width,
		Height: height,
	}, nil
}

// Errors
var (
	ErrInvalidImage = errors.New("invalid image data")
)
