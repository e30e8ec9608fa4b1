// Package ocr turns a price-list page file (image, PDF or plain text) into text
// for the extraction core, and resolves page locations into local files.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/pricelist-tracker/constants"
	"github.com/joseph-ayodele/pricelist-tracker/internal/common"
)

const (
	EngineTesseract = "tesseract"
	EngineGosseract = "gosseract"
)

type Config struct {
	Engine    string // EngineTesseract (CLI, default) or EngineGosseract
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Language    string // default "spa"
	DPI         int    // rasterization DPI for scanned PDFs, default 300
	MaxPages    int    // 0 = no limit
	TessdataDir string

	// TSVConfidence runs a second tesseract pass in TSV mode to read word confidences.
	TSVConfidence bool
	PSM           int // e.g., 6 is good for uniform block of text
}

type ExtractionResult struct {
	Text         string
	Pages        int
	SourceFormat constants.SourceFormat
	Method       string // "text" | "pdf-text" | "pdf-ocr" | "image-ocr"
	Engine       string
	Language     string
	Duration     time.Duration
	Warnings     []string
	Confidence   float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	engine Engine
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the command runner used for the pdf tools and the tesseract CLI.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithEngine replaces the image recognition engine.
func WithEngine(en Engine) Option {
	return func(e *Extractor) {
		if en != nil {
			e.engine = en
		}
	}
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Engine == "" {
		cfg.Engine = EngineTesseract
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "spa"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}

	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	if e.engine == nil {
		en, err := newEngine(cfg, e.runner)
		if err != nil {
			return nil, err
		}
		e.engine = en
	}
	return e, nil
}

func newEngine(cfg Config, r Runner) (Engine, error) {
	switch cfg.Engine {
	case EngineTesseract:
		return &tesseractEngine{cfg: cfg, runner: r}, nil
	case EngineGosseract:
		return newGosseractEngine(cfg)
	default:
		return nil, fmt.Errorf("unsupported ocr engine %q", cfg.Engine)
	}
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	format, ok := constants.MapExtToFormat(ext)
	if !ok {
		e.logger.Error("unsupported ocr extension", "extension", ext)
		return ExtractionResult{}, common.NewAppError("OCR_ERROR",
			fmt.Sprintf("unsupported extension: %q", ext), errors.Join(common.ErrOCR, common.ErrInvalidInput))
	}
	e.logger.Debug("starting ocr extraction", "path", path, "format", format, "engine", e.engine.Name())

	var (
		res ExtractionResult
		err error
	)
	switch format {
	case constants.SourceFormatPDF:
		res, err = e.extractPDF(ctx, path)
	case constants.SourceFormatImage:
		res, err = e.extractImage(ctx, path)
	default:
		res, err = e.extractText(path)
	}
	res.SourceFormat = format
	res.Duration = time.Since(start)
	if err != nil {
		return res, common.NewAppError("OCR_ERROR", fmt.Sprintf("%s extraction failed", format), errors.Join(common.ErrOCR, err))
	}
	e.logger.Info("ocr extraction finished",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds())
	return res, nil
}

func (e *Extractor) extractImage(ctx context.Context, path string) (ExtractionResult, error) {
	txt, engineConf, err := e.engine.Recognize(ctx, path)
	if err != nil {
		return ExtractionResult{Engine: e.engine.Name()}, err
	}
	txt = Clean(txt)
	return ExtractionResult{
		Text:       txt,
		Pages:      1,
		Method:     "image-ocr",
		Engine:     e.engine.Name(),
		Language:   e.cfg.Language,
		Confidence: blendConfidence(engineConf, heuristicConfidence(txt)),
	}, nil
}

func (e *Extractor) extractText(path string) (ExtractionResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{}, err
	}
	txt := Clean(string(b))
	return ExtractionResult{
		Text:       txt,
		Pages:      1,
		Method:     "text",
		Confidence: heuristicConfidence(txt),
	}, nil
}
