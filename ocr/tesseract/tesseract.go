// Package tesseract provides the default, gosseract-backed OCR engine.
package tesseract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/wudi/textsort/ocr"
)

func init() {
	ocr.SetDefaultEngine(NewEngine())
}

// Engine implements ocr.Engine using the gosseract client.
type Engine struct {
	clientFactory  func() *gosseract.Client
	tessdataPrefix string
}

// NewEngine constructs a Tesseract-backed OCR engine using the system
// trained-data location.
func NewEngine() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

// NewEngineWithTessdata constructs an engine reading trained data from the
// given directory. It fails up front with ocr.ErrEngine when the directory
// does not exist, so a bad override surfaces before the first image instead
// of hanging every recognition.
func NewEngineWithTessdata(dir string) (*Engine, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: tessdata prefix %q: %v", ocr.ErrEngine, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: tessdata prefix %q is not a directory", ocr.ErrEngine, dir)
	}
	return &Engine{clientFactory: gosseract.NewClient, tessdataPrefix: dir}, nil
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single image input. A fresh client is created
// per call so the engine is safe for concurrent use.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	select {
	case <-ctx.Done():
		return ocr.Result{}, ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if e.tessdataPrefix != "" {
		if err := c.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			return ocr.Result{}, fmt.Errorf("set tessdata prefix: %w: %w", ocr.ErrEngine, err)
		}
	}
	if err := c.SetImageFromBytes(in.Image); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w: %w", ocr.ErrEngine, err)
		}
	}
	for k, v := range in.Metadata {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w: %w", ocr.ErrEngine, err)
	}
	return ocr.Result{
		InputID:   in.ID,
		PlainText: strings.TrimSpace(text),
	}, nil
}
