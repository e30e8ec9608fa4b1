//go:build !ocr

package ocr

import "errors"

// ErrEngineNotEnabled is returned when the gosseract engine is requested but
// was not compiled in. Rebuild with -tags ocr to enable it.
var ErrEngineNotEnabled = errors.New("gosseract engine not enabled; rebuild with -tags ocr")

func newGosseractEngine(Config) (Engine, error) {
	return nil, ErrEngineNotEnabled
}
