package ocr

import (
	"context"
	"log/slog"
)

// Source fetches a page location and returns its text.
type Source struct {
	fetcher   *Fetcher
	extractor *Extractor
	logger    *slog.Logger
}

func NewSource(fetcher *Fetcher, extractor *Extractor, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{fetcher: fetcher, extractor: extractor, logger: logger}
}

// PageText downloads (when needed) and OCRs one page.
func (s *Source) PageText(ctx context.Context, location string) (string, error) {
	path, cleanup, err := s.fetcher.Fetch(ctx, location)
	if err != nil {
		return "", err
	}
	defer cleanup()

	res, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return "", err
	}
	for _, w := range res.Warnings {
		if w != "" {
			s.logger.Warn("ocr warning", "source", location, "warning", truncate(w, 512))
		}
	}
	return res.Text, nil
}
