//go:build ocr

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// gosseractEngine links libtesseract through gosseract. Build with -tags ocr.
type gosseractEngine struct {
	cfg Config
}

func newGosseractEngine(cfg Config) (Engine, error) {
	return &gosseractEngine{cfg: cfg}, nil
}

func (g *gosseractEngine) Name() string { return EngineGosseract }

// Recognize uses a fresh client per call; gosseract clients are not safe for
// concurrent use.
func (g *gosseractEngine) Recognize(ctx context.Context, path string) (string, float32, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if g.cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(g.cfg.TessdataDir); err != nil {
			return "", 0, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(g.cfg.Language); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}
	if g.cfg.PSM > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(g.cfg.PSM)); err != nil {
			return "", 0, fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}
	if err := client.SetImage(path); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("OCR failed: %w", err)
	}

	var conf float32
	if g.cfg.TSVConfidence {
		if boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD); err == nil && len(boxes) > 0 {
			var sum float64
			for _, b := range boxes {
				sum += b.Confidence
			}
			conf = float32(sum / float64(len(boxes)) / 100.0)
		}
	}
	return text, conf, nil
}
