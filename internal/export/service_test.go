package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/pricelist-tracker/internal/entity"
	"github.com/joseph-ayodele/pricelist-tracker/internal/repository"
)

func TestExportListXLSX(t *testing.T) {
	ctx := context.Background()
	db, err := repository.OpenInMemory(ctx, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	jobs := repository.NewPageJobRepository(db, nil)
	items := repository.NewPriceItemRepository(db, nil)

	for _, page := range []int{2, 1} {
		job, err := jobs.Create(ctx, &entity.PageJob{ProviderID: "p", OrganizationID: "o", ListID: "list-9", PageNumber: page, SourceURL: "x"})
		require.NoError(t, err)
		name := "Granadas"
		if page == 2 {
			name = "Melón"
		}
		require.NoError(t, items.ReplaceForJob(ctx, job.ID, []entity.PriceItem{{
			ListID: "list-9", PageNumber: page, Name: name, Price: 2.5, Unit: "kg", Quantity: 1,
			DisplayFormat: "caja 5 kg", VATPercent: 10,
		}}))
	}

	data, err := NewService(items, nil).ExportListXLSX(ctx, "list-9")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, []string{"1", "Granadas", "2.5", "kg", "1", "caja 5 kg", "10", "0"}, rows[1])
	assert.Equal(t, "Melón", rows[2][1])
}

func TestExportEmptyList(t *testing.T) {
	ctx := context.Background()
	db, err := repository.OpenInMemory(ctx, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	data, err := NewService(repository.NewPriceItemRepository(db, nil), nil).ExportListXLSX(ctx, "nothing")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, headers, rows[0])
}
