// Package imaging owns the codec boundary of the asset pipeline: decoding
// raw source images into mutable in-memory pixels, applying transforms, and
// encoding the result to WebP.
package imaging

import (
	"bytes"
	"fmt"
	"image"

	"github.com/chai2010/webp"
	_ "github.com/lukegb/dds" // registers the DDS decoder
	_ "image/png"             // registered for tooling and tests

	"golang.org/x/image/draw"
)

// Image is a decoded, mutable in-memory image.
type Image struct {
	pixels *image.NRGBA
}

// Decode converts raw source bytes into an Image. The source format is
// sniffed; DDS is the production format, PNG is supported for tooling.
func Decode(raw []byte) (*Image, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	pixels := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(pixels, pixels.Bounds(), src, bounds.Min, draw.Src)
	return &Image{pixels: pixels}, nil
}

// Bounds returns the current pixel bounds.
func (i *Image) Bounds() image.Rectangle {
	return i.pixels.Bounds()
}

// NRGBA exposes the backing pixels for transforms and tests.
func (i *Image) NRGBA() *image.NRGBA {
	return i.pixels
}

// EncodeWebP encodes the image losslessly to WebP.
func (i *Image) EncodeWebP() ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, i.pixels, &webp.Options{Lossless: true}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
