package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 50), G: uint8(y * 50), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestInputFromBytes(t *testing.T) {
	in, err := InputFromBytes("img-1", encodePNG(t, 4, 3), WithLanguages("deu", "eng"))
	if err != nil {
		t.Fatalf("InputFromBytes() error = %v", err)
	}
	if in.ID != "img-1" {
		t.Fatalf("unexpected id: %s", in.ID)
	}
	if in.Format != ImageFormatPNG {
		t.Fatalf("unexpected format: %v", in.Format)
	}
	if !reflect.DeepEqual(in.Languages, []string{"deu", "eng"}) {
		t.Fatalf("unexpected languages: %+v", in.Languages)
	}

	decoded, err := png.Decode(bytes.NewReader(in.Image))
	if err != nil {
		t.Fatalf("decode prepared image: %v", err)
	}
	if _, ok := decoded.(*image.Gray); !ok {
		t.Fatalf("prepared image is %T, want *image.Gray", decoded)
	}
	if b := decoded.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("dimensions changed: %dx%d", b.Dx(), b.Dy())
	}
}

func TestInputFromBytesRejectsGarbage(t *testing.T) {
	if _, err := InputFromBytes("bad", []byte("not an image")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestInputFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, encodePNG(t, 2, 2), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	in, err := InputFromFile(path)
	if err != nil {
		t.Fatalf("InputFromFile() error = %v", err)
	}
	if in.ID != "photo.png" {
		t.Fatalf("unexpected id: %s", in.ID)
	}
}

func TestInputFromFileMissing(t *testing.T) {
	if _, err := InputFromFile(filepath.Join(t.TempDir(), "absent.png")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
