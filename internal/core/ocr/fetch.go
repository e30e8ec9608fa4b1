package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/joseph-ayodele/pricelist-tracker/constants"
	"github.com/joseph-ayodele/pricelist-tracker/internal/common"
)

// maxDownloadBytes caps a single page download.
const maxDownloadBytes = 64 << 20

// Fetcher resolves a page location into a local file. http(s) URLs are
// downloaded into a temp file; anything else is treated as a local path.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

func NewFetcher(timeout time.Duration, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}, logger: logger}
}

// Fetch returns the local path of location and a cleanup func that must be
// called once the file is no longer needed.
func (f *Fetcher) Fetch(ctx context.Context, location string) (string, func(), error) {
	noop := func() {}
	location = strings.TrimSpace(location)
	if location == "" {
		return "", noop, fetchError("empty source location", common.ErrInvalidInput)
	}

	u, err := url.Parse(location)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return f.download(ctx, u)
		case "file":
			location = u.Path
		}
	}

	if _, err := os.Stat(location); err != nil {
		return "", noop, fetchError(fmt.Sprintf("source %q", location), err)
	}
	return location, noop, nil
}

func (f *Fetcher) download(ctx context.Context, u *url.URL) (string, func(), error) {
	noop := func() {}
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", noop, fetchError("build request", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("page download failed", "url", u.Redacted(), "error", err)
		return "", noop, fetchError("download", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Error("page download failed", "url", u.Redacted(), "status", resp.StatusCode)
		return "", noop, fetchError(fmt.Sprintf("download %s", u.Redacted()), fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	ext := extFor(u.Path, resp.Header.Get("Content-Type"))
	tmp, err := os.CreateTemp("", "pl-page-*."+ext)
	if err != nil {
		return "", noop, fetchError("create temp file", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, maxDownloadBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return "", noop, fetchError("write download", err)
	}
	if n > maxDownloadBytes {
		cleanup()
		return "", noop, fetchError("download", fmt.Errorf("body exceeds %d bytes", maxDownloadBytes))
	}

	f.logger.Debug("page downloaded",
		"url", u.Redacted(),
		"bytes", n,
		"ext", ext,
		"duration_ms", time.Since(start).Milliseconds())
	return tmp.Name(), cleanup, nil
}

// extFor picks a source extension from the URL path, then the content type.
// Unknown sources are treated as images.
func extFor(urlPath, contentType string) string {
	if ext := constants.NormalizeExt(path.Ext(urlPath)); ext != "" {
		if _, ok := constants.MapExtToFormat(ext); ok {
			return ext
		}
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "application/pdf":
			return "pdf"
		case "text/plain":
			return "txt"
		case "image/png":
			return "png"
		case "image/tiff":
			return "tiff"
		case "image/jpeg":
			return "jpg"
		}
	}
	return "jpg"
}

func fetchError(msg string, err error) error {
	return common.NewAppError("FETCH_ERROR", msg, errors.Join(common.ErrFetch, err))
}
