package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pricelist-tracker/constants"
	"github.com/joseph-ayodele/pricelist-tracker/internal/common"
	"github.com/joseph-ayodele/pricelist-tracker/internal/core/pricelist"
	"github.com/joseph-ayodele/pricelist-tracker/internal/core/schema"
	"github.com/joseph-ayodele/pricelist-tracker/internal/entity"
	"github.com/joseph-ayodele/pricelist-tracker/internal/repository"
)

// PageSource returns the OCR text of a page location.
type PageSource interface {
	PageText(ctx context.Context, location string) (string, error)
}

// JobResult summarizes one processed page job.
type JobResult struct {
	JobID  uuid.UUID
	Status constants.JobStatus
	Layout string
	Items  int
}

// RunSummary counts the outcome of a RunPending pass.
type RunSummary struct {
	Processed int
	Failed    int
	Skipped   int
	Items     int
}

// Processor coordinates fetch and OCR, extraction, and storage of page jobs.
type Processor struct {
	logger    *slog.Logger
	source    PageSource
	extractor *pricelist.Extractor
	jobs      repository.PageJobRepository
	items     repository.PriceItemRepository
}

func NewProcessor(
	logger *slog.Logger,
	source PageSource,
	extractor *pricelist.Extractor,
	jobs repository.PageJobRepository,
	items repository.PriceItemRepository,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if extractor == nil {
		extractor = pricelist.NewExtractor(nil, pricelist.WithLogger(logger))
	}
	return &Processor{
		logger:    logger,
		source:    source,
		extractor: extractor,
		jobs:      jobs,
		items:     items,
	}
}

// ProcessJob claims a pending job and runs it to a terminal status. A job that
// cannot be claimed yields an ErrConflict error and is left untouched. Faults
// after the claim mark the job as error and are returned.
func (p *Processor) ProcessJob(ctx context.Context, job *entity.PageJob) (*JobResult, error) {
	ctx = common.WithJobID(ctx, job.ID.String())
	log := common.LoggerFromContext(ctx, p.logger).With("list_id", job.ListID, "page", job.PageNumber)

	ok, err := p.jobs.Claim(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Debug("page job skipped, not pending")
		return nil, common.NewAppError("CONFLICT", fmt.Sprintf("page job %s is not pending", job.ID), common.ErrConflict)
	}

	page, err := p.run(ctx, job)
	if err != nil {
		log.Error("page job failed", "err", err)
		// the job must leave processing even when ctx is already done
		if markErr := p.jobs.MarkError(context.WithoutCancel(ctx), job.ID, err.Error()); markErr != nil {
			return nil, errors.Join(err, markErr)
		}
		return &JobResult{JobID: job.ID, Status: constants.JobStatusError}, err
	}

	layout := page.Layout.String()
	// items are committed; record that even if ctx was cancelled meanwhile
	if err := p.jobs.MarkProcessed(context.WithoutCancel(ctx), job.ID, len(page.Items), layout); err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		log.Warn("page job produced no items", "layout", layout)
	}
	return &JobResult{JobID: job.ID, Status: constants.JobStatusProcessed, Layout: layout, Items: len(page.Items)}, nil
}

func (p *Processor) run(ctx context.Context, job *entity.PageJob) (pricelist.Page, error) {
	text, err := p.source.PageText(ctx, job.SourceURL)
	if err != nil {
		return pricelist.Page{}, fmt.Errorf("read page: %w", err)
	}

	page := p.extractor.ExtractPage(text)
	if err := schema.ValidatePage(page); err != nil {
		return pricelist.Page{}, err
	}

	rows := make([]entity.PriceItem, 0, len(page.Items))
	for _, it := range page.Items {
		rows = append(rows, entity.PriceItem{
			ProviderID:     job.ProviderID,
			OrganizationID: job.OrganizationID,
			ListID:         job.ListID,
			PageNumber:     job.PageNumber,
			Name:           it.Name,
			Price:          it.Price,
			Unit:           string(it.Unit),
			Quantity:       it.Quantity,
			DisplayFormat:  it.DisplayFormat,
			VATPercent:     constants.DefaultVATPercent,
			WastePercent:   constants.DefaultWastePercent,
		})
	}
	if err := p.items.ReplaceForJob(ctx, job.ID, rows); err != nil {
		return pricelist.Page{}, fmt.Errorf("store items: %w", err)
	}
	return page, nil
}

// ProcessByID loads a job and processes it.
func (p *Processor) ProcessByID(ctx context.Context, id uuid.UUID) (*JobResult, error) {
	job, err := p.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.ProcessJob(ctx, job)
}

// RunPending processes up to limit pending jobs (all when limit <= 0) in page
// order. Job failures are counted, not returned; only store and context errors
// stop the pass.
func (p *Processor) RunPending(ctx context.Context, limit int) (RunSummary, error) {
	var sum RunSummary
	pending, err := p.jobs.ListPending(ctx, limit)
	if err != nil {
		return sum, err
	}
	p.logger.Info("processing pending page jobs", "count", len(pending))

	for _, job := range pending {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		res, err := p.ProcessJob(ctx, job)
		switch {
		case errors.Is(err, common.ErrConflict):
			sum.Skipped++
		case res != nil && res.Status == constants.JobStatusError:
			sum.Failed++
		case err != nil:
			return sum, err
		default:
			sum.Processed++
			sum.Items += res.Items
		}
	}
	p.logger.Info("pending page jobs done",
		"processed", sum.Processed,
		"failed", sum.Failed,
		"skipped", sum.Skipped,
		"items", sum.Items)
	return sum, nil
}
