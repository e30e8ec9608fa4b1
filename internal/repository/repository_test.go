package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pricelist-tracker/constants"
	"github.com/joseph-ayodele/pricelist-tracker/internal/common"
	"github.com/joseph-ayodele/pricelist-tracker/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newJob(listID string, page int) *entity.PageJob {
	return &entity.PageJob{
		ProviderID:     "prov-1",
		OrganizationID: "org-1",
		ListID:         listID,
		PageNumber:     page,
		SourceURL:      "https://example.test/list/page.jpg",
	}
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.EnsureSchema(context.Background()))
	assert.NoError(t, db.HealthCheck(context.Background(), 0))
}

func TestPageJobLifecycle(t *testing.T) {
	ctx := context.Background()
	jobs := NewPageJobRepository(openTestDB(t), nil)

	created, err := jobs.Create(ctx, newJob("list-1", 1))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, constants.JobStatusPending, created.Status)

	got, err := jobs.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "list-1", got.ListID)
	assert.Equal(t, 1, got.PageNumber)
	assert.False(t, got.CreatedAt.IsZero())

	ok, err := jobs.Claim(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = jobs.Claim(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok, "a processing job cannot be claimed twice")

	require.NoError(t, jobs.MarkProcessed(ctx, created.ID, 12, "vertical_list"))
	got, err = jobs.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusProcessed, got.Status)
	assert.Equal(t, 12, got.ItemCount)
	assert.Equal(t, "vertical_list", got.Layout)

}

func TestRequeueOnlyFailedJobs(t *testing.T) {
	ctx := context.Background()
	jobs := NewPageJobRepository(openTestDB(t), nil)

	job, err := jobs.Create(ctx, newJob("list-1", 1))
	require.NoError(t, err)
	assert.ErrorIs(t, jobs.Requeue(ctx, job.ID), common.ErrConflict, "pending")

	_, err = jobs.Claim(ctx, job.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, jobs.Requeue(ctx, job.ID), common.ErrConflict, "processing")

	require.NoError(t, jobs.MarkProcessed(ctx, job.ID, 3, "coded_table"))
	assert.ErrorIs(t, jobs.Requeue(ctx, job.ID), common.ErrConflict, "processed")
	got, err := jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusProcessed, got.Status)
	assert.Equal(t, 3, got.ItemCount)

	require.NoError(t, jobs.MarkError(ctx, job.ID, "ocr failed"))
	require.NoError(t, jobs.Requeue(ctx, job.ID))
	got, err = jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusPending, got.Status)
	assert.Empty(t, got.Error)
	assert.Zero(t, got.ItemCount)

	assert.ErrorIs(t, jobs.Requeue(ctx, uuid.New()), common.ErrNotFound)
}

func TestEnsureSchemaEnforcesItemJobReference(t *testing.T) {
	ctx := context.Background()
	items := NewPriceItemRepository(openTestDB(t), nil)
	err := items.ReplaceForJob(ctx, uuid.New(), []entity.PriceItem{{ListID: "list-1", PageNumber: 1, Name: "a", Price: 1, Unit: "kg", Quantity: 1}})
	assert.ErrorIs(t, err, common.ErrDatabase)
}

func TestPageJobNotFound(t *testing.T) {
	ctx := context.Background()
	jobs := NewPageJobRepository(openTestDB(t), nil)

	_, err := jobs.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = jobs.MarkError(ctx, uuid.New(), "boom")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListPendingOrder(t *testing.T) {
	ctx := context.Background()
	jobs := NewPageJobRepository(openTestDB(t), nil)

	for _, page := range []int{3, 1, 2} {
		_, err := jobs.Create(ctx, newJob("list-1", page))
		require.NoError(t, err)
	}
	done, err := jobs.Create(ctx, newJob("list-1", 4))
	require.NoError(t, err)
	_, err = jobs.Claim(ctx, done.ID)
	require.NoError(t, err)

	pending, err := jobs.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{pending[0].PageNumber, pending[1].PageNumber, pending[2].PageNumber})

	limited, err := jobs.ListPending(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestClaimIsExclusive(t *testing.T) {
	ctx := context.Background()
	jobs := NewPageJobRepository(openTestDB(t), nil)
	job, err := jobs.Create(ctx, newJob("list-1", 1))
	require.NoError(t, err)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		claims int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := jobs.Claim(ctx, job.ID)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				claims++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, claims)
}

func TestProgress(t *testing.T) {
	ctx := context.Background()
	jobs := NewPageJobRepository(openTestDB(t), nil)

	var ids []uuid.UUID
	for page := 1; page <= 4; page++ {
		j, err := jobs.Create(ctx, newJob("list-1", page))
		require.NoError(t, err)
		ids = append(ids, j.ID)
	}
	_, err := jobs.Create(ctx, newJob("list-2", 1))
	require.NoError(t, err)

	_, err = jobs.Claim(ctx, ids[0])
	require.NoError(t, err)
	require.NoError(t, jobs.MarkProcessed(ctx, ids[0], 3, "coded_table"))
	_, err = jobs.Claim(ctx, ids[1])
	require.NoError(t, err)
	require.NoError(t, jobs.MarkError(ctx, ids[1], "ocr failed"))
	_, err = jobs.Claim(ctx, ids[2])
	require.NoError(t, err)

	p, err := jobs.Progress(ctx, "list-1")
	require.NoError(t, err)
	assert.Equal(t, entity.Progress{ListID: "list-1", Total: 4, Pending: 1, Processing: 1, Processed: 1, Failed: 1}, *p)
	assert.False(t, p.Done())
	assert.InDelta(t, 50.0, p.Percent(), 1e-9)

	empty, err := jobs.Progress(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
}

func TestReplaceItems(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	jobs := NewPageJobRepository(db, nil)
	items := NewPriceItemRepository(db, nil)

	job, err := jobs.Create(ctx, newJob("list-1", 2))
	require.NoError(t, err)

	row := func(name string, price float64) entity.PriceItem {
		return entity.PriceItem{
			ProviderID: job.ProviderID, OrganizationID: job.OrganizationID, ListID: job.ListID,
			PageNumber: job.PageNumber, Name: name, Price: price, Unit: "kg", Quantity: 1,
			VATPercent: constants.DefaultVATPercent,
		}
	}

	require.NoError(t, items.ReplaceForJob(ctx, job.ID, []entity.PriceItem{row("Granadas", 2.10), row("Melón", 1.20)}))
	require.NoError(t, items.ReplaceForJob(ctx, job.ID, []entity.PriceItem{row("Sandía", 0.80)}))

	got, err := items.ListByJob(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Sandía", got[0].Name)
	assert.InDelta(t, 0.80, got[0].Price, 1e-9)
	assert.InDelta(t, 10.0, got[0].VATPercent, 1e-9)
	assert.Equal(t, job.ID, got[0].JobID)

	require.NoError(t, items.ReplaceForJob(ctx, job.ID, nil))
	got, err = items.ListByJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListByListOrdersPages(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	jobs := NewPageJobRepository(db, nil)
	items := NewPriceItemRepository(db, nil)

	for _, page := range []int{2, 1} {
		job, err := jobs.Create(ctx, newJob("list-1", page))
		require.NoError(t, err)
		require.NoError(t, items.ReplaceForJob(ctx, job.ID, []entity.PriceItem{
			{ListID: "list-1", PageNumber: page, Name: "a", Price: 1, Unit: "kg", Quantity: 1},
			{ListID: "list-1", PageNumber: page, Name: "b", Price: 2, Unit: "kg", Quantity: 1},
		}))
	}

	got, err := items.ListByList(ctx, "list-1")
	require.NoError(t, err)
	require.Len(t, got, 4)
	var order []string
	for _, it := range got {
		order = append(order, it.Name)
	}
	assert.Equal(t, []string{"a", "b", "a", "b"}, order)
	assert.Equal(t, 1, got[0].PageNumber)
	assert.Equal(t, 2, got[3].PageNumber)
}
