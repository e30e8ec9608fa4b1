// Package ingest turns a directory of scanned price-list pages into page jobs.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/pricelist-tracker/internal/entity"
)

// JobCreator stores new page jobs; repository.PageJobRepository satisfies it.
type JobCreator interface {
	Create(ctx context.Context, job *entity.PageJob) (*entity.PageJob, error)
}

// ListRef names the price list the pages belong to.
type ListRef struct {
	ProviderID     string
	OrganizationID string
	ListID         string
}

type FileResult struct {
	Path       string
	JobID      string
	PageNumber int
	Err        string
}

type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

type DirectoryIngestor struct {
	jobs   JobCreator
	logger *slog.Logger
}

func NewDirectoryIngestor(jobs JobCreator, logger *slog.Logger) *DirectoryIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectoryIngestor{jobs: jobs, logger: logger}
}

// IngestDirectory walks root, keeps accepted page files (skipping hidden ones if
// requested), and queues them as pages 1..n of the list in file-name page order.
// Returns per-file results + aggregate stats.
func (d *DirectoryIngestor) IngestDirectory(ctx context.Context, ref ListRef, root string, skipHidden bool) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}
	if ref.ListID == "" {
		return nil, DirStats{}, errors.New("list id is required")
	}

	var (
		paths   []string
		results []FileResult
		stats   DirStats
	)
	err := filepath.WalkDir(root, func(path string, de fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil // continue walking
		}
		if skipHidden && path != root && IsHidden(path) {
			if de.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if de.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	sort.SliceStable(paths, func(i, j int) bool { return pageLess(paths[i], paths[j]) })
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, stats, err
		}
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			abs = path
		}
		job, err := d.jobs.Create(ctx, &entity.PageJob{
			ProviderID:     ref.ProviderID,
			OrganizationID: ref.OrganizationID,
			ListID:         ref.ListID,
			PageNumber:     i + 1,
			SourceURL:      abs,
		})
		if err != nil {
			d.logger.Error("queue page failed", "path", path, "error", err)
			results = append(results, FileResult{Path: path, PageNumber: i + 1, Err: err.Error()})
			stats.Failed++
			continue
		}
		results = append(results, FileResult{Path: path, JobID: job.ID.String(), PageNumber: i + 1})
		stats.Succeeded++
	}

	d.logger.Info("directory ingested",
		"root", root,
		"list_id", ref.ListID,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed)
	return results, stats, nil
}
