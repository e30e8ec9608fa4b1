package ocr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Engine recognizes the text of one raster image. Confidence is in 0..1, or 0
// when the engine does not report one.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, path string) (text string, confidence float32, err error)
}

// tesseractEngine shells out to the tesseract CLI.
type tesseractEngine struct {
	cfg    Config
	runner Runner
}

func (t *tesseractEngine) Name() string { return EngineTesseract }

func (t *tesseractEngine) Recognize(ctx context.Context, path string) (string, float32, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, t.args(path)...)
	if err != nil {
		return "", 0, fmt.Errorf("tesseract: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	var conf float32
	if t.cfg.TSVConfidence {
		// a failed confidence pass leaves the heuristic alone
		conf, _ = t.tsvConfidence(ctx, path)
	}
	return string(out), conf, nil
}

func (t *tesseractEngine) args(path string) []string {
	args := []string{path, "stdout", "-l", t.cfg.Language}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	return args
}

// tsvConfidence runs tesseract in TSV mode and returns mean word conf in 0..1.
func (t *tesseractEngine) tsvConfidence(ctx context.Context, path string) (float32, error) {
	args := append(t.args(path), "tsv")
	out, _, err := t.runner.Run(ctx, t.cfg.Tesseract, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %w", err)
	}
	return meanTSVConfidence(string(out)), nil
}

func meanTSVConfidence(tsv string) float32 {
	var sum, n float64
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || ln == "" {
			continue
		} // header
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := strings.TrimSpace(cols[10])
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil && v >= 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float32(sum / n / 100.0)
}
