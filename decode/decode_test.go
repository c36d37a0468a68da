package decode_test

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/picfetch/picfetch/decode"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatal(err)
	}

	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	var decoder decode.Std

	t.Run("valid image", func(t *testing.T) {
		artifact, err := decoder.Decode(pngBytes(t, 8, 4), 1)
		if err != nil {
			t.Fatal(err)
		}

		if artifact.Format != "png" {
			t.Fatalf("wrong format %s", artifact.Format)
		}

		if artifact.Width != 8 || artifact.Height != 4 {
			t.Fatalf("wrong size %dx%d", artifact.Width, artifact.Height)
		}
	})

	t.Run("scale hint", func(t *testing.T) {
		artifact, err := decoder.Decode(pngBytes(t, 8, 4), 2)
		if err != nil {
			t.Fatal(err)
		}

		if artifact.Width != 4 || artifact.Height != 2 {
			t.Fatalf("wrong size %dx%d", artifact.Width, artifact.Height)
		}
	})

	t.Run("invalid image", func(t *testing.T) {
		_, err := decoder.Decode([]byte("not an image"), 1)
		if err == nil {
			t.Fatal("no error")
		}

		if !errors.Is(err, decode.ErrInvalidImage) {
			t.Fatalf("wrong error %s", err)
		}
	})
}
