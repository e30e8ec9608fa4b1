package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// extractPDF reads the embedded text layer and falls back to rasterizing the
// pages through the OCR engine when the layer is empty.
func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	text, pages, warns, err := e.pdfToText(ctx, path)
	if err == nil && strings.TrimSpace(text) != "" {
		text = Clean(strings.ReplaceAll(text, "\f", "\n"))
		return ExtractionResult{
			Text:       text,
			Pages:      pages,
			Method:     "pdf-text",
			Warnings:   warns,
			Confidence: blendConfidence(0.95, heuristicConfidence(text)),
		}, nil
	}
	if err != nil {
		e.logger.Warn("pdftotext failed, falling back to ocr", "path", path, "error", err)
		warns = append(warns, err.Error())
	}

	text, pages, conf, w2, err := e.pdfToOCR(ctx, path)
	warns = append(warns, w2...)
	if err != nil {
		return ExtractionResult{Warnings: warns, Engine: e.engine.Name()}, err
	}
	text = Clean(text)
	return ExtractionResult{
		Text:       text,
		Pages:      pages,
		Method:     "pdf-ocr",
		Engine:     e.engine.Name(),
		Language:   e.cfg.Language,
		Warnings:   warns,
		Confidence: blendConfidence(conf, heuristicConfidence(text)),
	}, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, []string{string(errb)}, fmt.Errorf("pdftotext: %w", err)
	}
	text = string(out)
	// A form-feed \f is used as page separator by default
	pages = 1 + strings.Count(strings.TrimRight(text, "\f"), "\f")
	return text, pages, nil, nil
}

func (e *Extractor) pdfToOCR(ctx context.Context, path string) (text string, pages int, conf float32, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "pl-pp-*")
	if err != nil {
		return "", 0, 0, nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", strconv.Itoa(e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", 0, 0, []string{string(errb)}, fmt.Errorf("pdftoppm: %w", err)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, 0, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	var (
		b     strings.Builder
		warns []string
		sum   float32
		n     int
	)
	for _, img := range matches {
		txt, c, err := e.engine.Recognize(ctx, img)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(txt)
		if c > 0 {
			sum += c
			n++
		}
	}
	if b.Len() == 0 && len(warns) > 0 {
		return "", len(matches), 0, warns, fmt.Errorf("ocr failed on every rendered page")
	}
	if n > 0 {
		conf = sum / float32(n)
	}
	return b.String(), len(matches), conf, warns, nil
}
