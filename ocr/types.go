package ocr

import (
	"context"
	"errors"
)

// ErrEngine marks failures caused by an unavailable or misconfigured OCR
// engine, as opposed to problems with a particular input image.
var ErrEngine = errors.New("ocr engine unavailable or misconfigured")

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
	ImageFormatBMP  ImageFormat = "image/bmp"
	ImageFormatTIFF ImageFormat = "image/tiff"
	ImageFormatGIF  ImageFormat = "image/gif"
)

// Input encapsulates a single image submitted for OCR.
type Input struct {
	// ID is an optional caller-provided identifier that is echoed back in the
	// corresponding Result.
	ID string
	// Image is the encoded image payload in the format specified by Format.
	Image []byte
	// Format declares the image content type (e.g., image/png).
	Format ImageFormat
	// Languages is a list of trained-data hints (e.g., "eng", "deu") that
	// providers can use to select recognition models.
	Languages []string
	// Metadata allows callers to pass through engine-specific knobs (e.g.,
	// "tessedit_pageseg_mode" for Tesseract) without hard-coding them into the
	// API surface.
	Metadata map[string]string
}

// Result captures OCR output for a single input image.
type Result struct {
	// InputID mirrors the Input.ID that produced this result.
	InputID string
	// PlainText contains the linearized text extracted from the image.
	PlainText string
}

// Engine is the OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}
