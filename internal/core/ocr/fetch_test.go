package ocr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pricelist-tracker/internal/common"
)

func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/lists/page-1.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("GRANADAS 2,10\nMELON 1,20\n"))
	})
	mux.HandleFunc("/render", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	})
	mux.HandleFunc("/missing.png", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchDownloadsHTTP(t *testing.T) {
	srv := newPageServer(t)
	f := NewFetcher(5*time.Second, nil)

	path, cleanup, err := f.Fetch(context.Background(), srv.URL+"/lists/page-1.txt")
	require.NoError(t, err)
	assert.Equal(t, ".txt", filepath.Ext(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "GRANADAS 2,10\nMELON 1,20\n", string(b))

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFetchUsesContentType(t *testing.T) {
	srv := newPageServer(t)
	f := NewFetcher(5*time.Second, nil)

	path, cleanup, err := f.Fetch(context.Background(), srv.URL+"/render")
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, ".pdf", filepath.Ext(path))
}

func TestFetchErrors(t *testing.T) {
	srv := newPageServer(t)
	f := NewFetcher(5*time.Second, nil)

	tests := []struct {
		name     string
		location string
	}{
		{"http status", srv.URL + "/missing.png"},
		{"missing local file", filepath.Join(t.TempDir(), "nope.png")},
		{"empty", "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cleanup, err := f.Fetch(context.Background(), tt.location)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrFetch)
			cleanup()
		})
	}
}

func TestFetchLocalPaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o600))
	f := NewFetcher(time.Second, nil)

	got, cleanup, err := f.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	cleanup()
	_, err = os.Stat(path)
	assert.NoError(t, err, "local sources are never removed")

	got, _, err = f.Fetch(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestExtFor(t *testing.T) {
	assert.Equal(t, "png", extFor("/a/b.PNG", ""))
	assert.Equal(t, "pdf", extFor("/a/b", "application/pdf; charset=binary"))
	assert.Equal(t, "jpg", extFor("/a/b.php", "image/jpeg"))
	assert.Equal(t, "jpg", extFor("/a/b", ""))
}

func TestSourcePageText(t *testing.T) {
	srv := newPageServer(t)
	e := newTestExtractor(t, Config{}, &stubRunner{})
	s := NewSource(NewFetcher(5*time.Second, nil), e, nil)

	txt, err := s.PageText(context.Background(), srv.URL+"/lists/page-1.txt")
	require.NoError(t, err)
	assert.Equal(t, "GRANADAS 2,10\nMELON 1,20", txt)

	_, err = s.PageText(context.Background(), srv.URL+"/missing.png")
	assert.ErrorIs(t, err, common.ErrFetch)
}
