package ocr

import "context"

var defaultEngine Engine = &noopEngine{}

// DefaultEngine returns the process default OCR engine. Importing the
// tesseract subpackage replaces the initial no-op engine.
func DefaultEngine() Engine {
	return defaultEngine
}

// SetDefaultEngine sets the process default OCR engine.
func SetDefaultEngine(engine Engine) {
	defaultEngine = engine
}

type noopEngine struct{}

func (n noopEngine) Name() string {
	return "noop"
}

func (n noopEngine) Recognize(ctx context.Context, input Input) (Result, error) {
	return Result{InputID: input.ID}, nil
}
