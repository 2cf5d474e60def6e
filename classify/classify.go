// Package classify turns OCR output into a text/no-text decision using a
// tunable density threshold.
package classify

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"unicode"

	"github.com/wudi/textsort/observability"
	"github.com/wudi/textsort/ocr"
)

// Result is the outcome of classifying one image file. Err records an
// absorbed per-item failure; such items are always reported as not
// containing text so a broken OCR run never causes a file to be moved.
type Result struct {
	Path         string
	ContainsText bool
	Ratio        float64
	Err          error
}

// Decide applies the density rule: non-whitespace recognized characters per
// image pixel, compared strictly against the threshold. A ratio exactly equal
// to the threshold counts as no text. Non-positive area yields ratio 0.
func Decide(text string, area int, threshold float64) (bool, float64) {
	if area <= 0 {
		return false, 0
	}
	count := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			count++
		}
	}
	ratio := float64(count) / float64(area)
	return ratio > threshold, ratio
}

// Classifier evaluates image files against a density threshold using an OCR
// engine.
type Classifier struct {
	engine    ocr.Engine
	threshold float64
	inputOpts []ocr.InputOption
	log       observability.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger handle. Defaults to a no-op logger.
func WithLogger(log observability.Logger) Option {
	return func(c *Classifier) { c.log = log }
}

// WithInputOptions forwards OCR input options (language hints, whitelists)
// to every recognition call.
func WithInputOptions(opts ...ocr.InputOption) Option {
	return func(c *Classifier) { c.inputOpts = opts }
}

// New constructs a Classifier. The threshold is a fraction of non-whitespace
// characters per pixel in (0, 1).
func New(engine ocr.Engine, threshold float64, opts ...Option) *Classifier {
	c := &Classifier{
		engine:    engine,
		threshold: threshold,
		log:       observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify runs OCR on the file at path and applies Decide. Decode and
// recognition failures never propagate: the item is reported as containing no
// text with Err populated, so the caller leaves the file untouched.
func (c *Classifier) Classify(ctx context.Context, path string) Result {
	res := c.classify(ctx, path)
	if res.Err != nil {
		c.log.Error("classification failed",
			observability.String("path", path),
			observability.Error("error", res.Err))
	}
	return res
}

func (c *Classifier) classify(ctx context.Context, path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("read image: %w", err)}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("decode image: %w", err)}
	}

	in, err := ocr.InputFromBytes(path, data, c.inputOpts...)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	recognized, err := c.engine.Recognize(ctx, in)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("recognize: %w", err)}
	}

	contains, ratio := Decide(recognized.PlainText, cfg.Width*cfg.Height, c.threshold)
	return Result{Path: path, ContainsText: contains, Ratio: ratio}
}
