package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pricelist-tracker/constants"
	"github.com/joseph-ayodele/pricelist-tracker/internal/common"
	"github.com/joseph-ayodele/pricelist-tracker/internal/entity"
	"github.com/joseph-ayodele/pricelist-tracker/internal/repository"
)

// fakeSource serves page text by location.
type fakeSource map[string]string

func (f fakeSource) PageText(_ context.Context, location string) (string, error) {
	txt, ok := f[location]
	if !ok {
		return "", common.NewAppError("FETCH_ERROR", location, errors.Join(common.ErrFetch, errors.New("404")))
	}
	return txt, nil
}

var codedPage = strings.Join([]string{
	"FRUTAS GARCÍA",
	"CÓDIGO DESCRIPCIÓN PVP",
	"AB1234 Tomate pera",
	"Caja 4 x 2,5 kg",
	"12,40",
	"AB1235 Pimiento rojo 3,15",
}, "\n")

type fixture struct {
	proc  *Processor
	jobs  repository.PageJobRepository
	items repository.PriceItemRepository
}

func newFixture(t *testing.T, src PageSource) fixture {
	t.Helper()
	db, err := repository.OpenInMemory(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	jobs := repository.NewPageJobRepository(db, nil)
	items := repository.NewPriceItemRepository(db, nil)
	return fixture{proc: NewProcessor(nil, src, nil, jobs, items), jobs: jobs, items: items}
}

func (f fixture) addJob(t *testing.T, page int, source string) *entity.PageJob {
	t.Helper()
	job, err := f.jobs.Create(context.Background(), &entity.PageJob{
		ProviderID:     "prov-7",
		OrganizationID: "org-3",
		ListID:         "list-42",
		PageNumber:     page,
		SourceURL:      source,
	})
	require.NoError(t, err)
	return job
}

func TestProcessJobStoresItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fakeSource{"p1": codedPage})
	job := f.addJob(t, 1, "p1")

	res, err := f.proc.ProcessJob(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusProcessed, res.Status)
	assert.Equal(t, "coded_table", res.Layout)
	assert.Equal(t, 2, res.Items)

	stored, err := f.jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusProcessed, stored.Status)
	assert.Equal(t, 2, stored.ItemCount)
	assert.Equal(t, "coded_table", stored.Layout)

	items, err := f.items.ListByJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	first := items[0]
	assert.Equal(t, "Tomate pera", first.Name)
	assert.InDelta(t, 12.40, first.Price, 1e-9)
	assert.Equal(t, "kg", first.Unit)
	assert.InDelta(t, 2.5, first.Quantity, 1e-9)
	assert.Equal(t, "4 x 2,5 kg", first.DisplayFormat)
	assert.Equal(t, "prov-7", first.ProviderID)
	assert.Equal(t, "org-3", first.OrganizationID)
	assert.Equal(t, "list-42", first.ListID)
	assert.InDelta(t, 10.0, first.VATPercent, 1e-9)
	assert.Zero(t, first.WastePercent)
	assert.Equal(t, "Pimiento rojo", items[1].Name)
}

func TestProcessJobMarksErrorOnFetchFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fakeSource{})
	job := f.addJob(t, 1, "https://example.test/missing.jpg")

	res, err := f.proc.ProcessJob(ctx, job)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrFetch)
	assert.Equal(t, constants.JobStatusError, res.Status)

	stored, err := f.jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusError, stored.Status)
	assert.Contains(t, stored.Error, "read page")
}

func TestProcessJobEmptyPageIsProcessed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fakeSource{"blank": "IVA incluido\n~~ ~~"})
	job := f.addJob(t, 1, "blank")

	res, err := f.proc.ProcessJob(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusProcessed, res.Status)
	assert.Zero(t, res.Items)
}

func TestProcessJobNotPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fakeSource{"p1": codedPage})
	job := f.addJob(t, 1, "p1")

	_, err := f.proc.ProcessJob(ctx, job)
	require.NoError(t, err)

	_, err = f.proc.ProcessJob(ctx, job)
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestProcessJobReplacesItemsOnRerun(t *testing.T) {
	ctx := context.Background()
	src := fakeSource{"p1": codedPage}
	f := newFixture(t, src)
	job := f.addJob(t, 1, "p1")

	_, err := f.proc.ProcessJob(ctx, job)
	require.NoError(t, err)

	src["p1"] = "Granadas Kg 2,10"
	require.NoError(t, f.jobs.MarkError(ctx, job.ID, "wrong scan"))
	require.NoError(t, f.jobs.Requeue(ctx, job.ID))
	res, err := f.proc.ProcessByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Items)

	items, err := f.items.ListByJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Granadas", items[0].Name)
}

func TestProcessByIDNotFound(t *testing.T) {
	f := newFixture(t, fakeSource{})
	_, err := f.proc.ProcessByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRunPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fakeSource{"p1": codedPage, "p2": "Granadas Kg 2,10"})
	f.addJob(t, 2, "p2")
	f.addJob(t, 1, "p1")
	f.addJob(t, 3, "p3-missing")

	sum, err := f.proc.RunPending(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, RunSummary{Processed: 2, Failed: 1, Items: 3}, sum)

	p, err := f.jobs.Progress(ctx, "list-42")
	require.NoError(t, err)
	assert.True(t, p.Done())
	assert.Equal(t, 2, p.Processed)
	assert.Equal(t, 1, p.Failed)

	items, err := f.items.ListByList(ctx, "list-42")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, 1, items[0].PageNumber)
	assert.Equal(t, "Granadas", items[2].Name)

	sum, err = f.proc.RunPending(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, RunSummary{}, sum)
}

func TestRunPendingStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newFixture(t, fakeSource{"p1": codedPage})
	f.addJob(t, 1, "p1")

	pending, err := f.jobs.ListPending(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	cancel()
	_, err = f.proc.RunPending(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

// cancelAfterStore cancels the run's context once the items are committed.
type cancelAfterStore struct {
	repository.PriceItemRepository
	cancel context.CancelFunc
}

func (c cancelAfterStore) ReplaceForJob(ctx context.Context, jobID uuid.UUID, items []entity.PriceItem) error {
	err := c.PriceItemRepository.ReplaceForJob(ctx, jobID, items)
	c.cancel()
	return err
}

func TestProcessJobFinishesAfterCancelDuringStore(t *testing.T) {
	f := newFixture(t, fakeSource{"p1": codedPage})
	job := f.addJob(t, 1, "p1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc := NewProcessor(nil, fakeSource{"p1": codedPage}, nil, f.jobs, cancelAfterStore{PriceItemRepository: f.items, cancel: cancel})

	res, err := proc.ProcessJob(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusProcessed, res.Status)

	stored, err := f.jobs.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusProcessed, stored.Status)
	assert.Equal(t, 2, stored.ItemCount)

	pending, err := f.jobs.ListPending(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
