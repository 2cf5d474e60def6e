package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	// Decoders for every extension the discovery allow-list accepts.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// InputFromFile reads an image file and prepares it for recognition. The file
// base name becomes the input ID.
func InputFromFile(path string, opts ...InputOption) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("read image: %w", err)
	}
	return InputFromBytes(filepath.Base(path), data, opts...)
}

// InputFromBytes decodes an encoded image, converts it to grayscale and
// re-encodes it as PNG for the engine. Grayscale input measurably improves
// recognition on photographs and scans.
func InputFromBytes(id string, data []byte, opts ...InputOption) (Input, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Input{}, fmt.Errorf("decode image: %w", err)
	}
	gray := image.NewGray(img.Bounds())
	draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return Input{}, fmt.Errorf("encode grayscale image: %w", err)
	}
	in := Input{
		ID:     id,
		Image:  buf.Bytes(),
		Format: ImageFormatPNG,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in, nil
}
