package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pricelist-tracker/internal/common"
	"github.com/joseph-ayodele/pricelist-tracker/internal/core"
	"github.com/joseph-ayodele/pricelist-tracker/internal/core/ocr"
	"github.com/joseph-ayodele/pricelist-tracker/internal/core/pricelist"
	"github.com/joseph-ayodele/pricelist-tracker/internal/repository"
)

var (
	cfg    *common.Config
	logger *slog.Logger

	inmem      bool
	logLevel   string
	vocabulary string
)

var rootCmd = &cobra.Command{
	Use:   "pricelist",
	Short: "Extract line items from OCR'd supplier price-list pages",
	Long: `pricelist turns scanned supplier price-list pages into structured rows
(name, price, unit, quantity, display format).

Pages are queued as jobs, OCR'd, run through layout-aware extraction and stored
with the provider, organization and list they belong to. Configuration comes
from the environment (DB_URL, OCR_LANG, WORKERS, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = common.LoadConfig()
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if vocabulary != "" {
			cfg.Extract.VocabularyPath = vocabulary
		}
		logger = common.NewLogger(cfg.Log.Level, cfg.Log.Format)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&inmem, "inmem", false, "use an in-memory SQLite database")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (default: $LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&vocabulary, "vocabulary", "", "vocabulary YAML overriding the embedded one (default: $VOCABULARY_PATH)")

	rootCmd.AddCommand(extractCmd, addJobCmd, runCmd, serveCmd, exportCmd, progressCmd, retryCmd)
}

// openDB opens the configured store, or a private in-memory one with --inmem.
func openDB(ctx context.Context) (*repository.DB, error) {
	if inmem {
		logger.Info("using in-memory database")
		return repository.OpenInMemory(ctx, logger)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := repository.Open(ctx, repository.Config{
		Driver:           cfg.Database.Driver,
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := db.HealthCheck(ctx, cfg.Database.DialTimeout); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newExtractor() (*pricelist.Extractor, error) {
	vocab, err := pricelist.LoadVocabulary(cfg.Extract.VocabularyPath)
	if err != nil {
		return nil, err
	}
	return pricelist.NewExtractor(vocab,
		pricelist.WithLogger(logger),
		pricelist.WithMinLineLength(cfg.Extract.MinLineLength),
		pricelist.WithSimilarityFloor(cfg.Extract.SimilarityFloor),
	), nil
}

func newOCR() (*ocr.Extractor, error) {
	return ocr.NewExtractor(ocr.Config{
		Engine:      cfg.OCR.Engine,
		Tesseract:   cfg.OCR.TesseractPath,
		Pdftotext:   cfg.OCR.PdfToTextPath,
		Pdftoppm:    cfg.OCR.PdfToPPMPath,
		Language:    cfg.OCR.Language,
		DPI:         cfg.OCR.DPI,
		TessdataDir: cfg.OCR.TessdataDir,
	}, logger)
}

// newProcessor wires the OCR source, the extraction core and the repositories.
func newProcessor(db *repository.DB) (*core.Processor, repository.PageJobRepository, repository.PriceItemRepository, error) {
	extractor, err := newExtractor()
	if err != nil {
		return nil, nil, nil, err
	}
	engine, err := newOCR()
	if err != nil {
		return nil, nil, nil, err
	}
	source := ocr.NewSource(ocr.NewFetcher(cfg.OCR.FetchTimeout, logger), engine, logger)
	jobs := repository.NewPageJobRepository(db, logger)
	items := repository.NewPriceItemRepository(db, logger)
	return core.NewProcessor(logger, source, extractor, jobs, items), jobs, items, nil
}
