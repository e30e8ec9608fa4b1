//go:build !ocr

package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGosseractEngineDisabled(t *testing.T) {
	e, err := NewExtractor(Config{Engine: EngineGosseract}, nil)
	assert.ErrorIs(t, err, ErrEngineNotEnabled)
	assert.Nil(t, e)
}
