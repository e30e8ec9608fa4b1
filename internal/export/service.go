package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/pricelist-tracker/internal/repository"
)

// SheetName is the worksheet holding the exported items.
const SheetName = "Items"

var headers = []string{
	"Page",
	"Name",
	"Price",
	"Unit",
	"Quantity",
	"Format",
	"VAT %",
	"Waste %",
}

// Service is a tiny façade over the item repository that produces XLSX bytes for exports.
type Service struct {
	items  repository.PriceItemRepository
	logger *slog.Logger
}

func NewService(items repository.PriceItemRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{items: items, logger: logger}
}

// ExportListXLSX returns an XLSX workbook (as bytes) with every stored item of a
// price list, in page order. A list without items yields only the header row.
func (s *Service) ExportListXLSX(ctx context.Context, listID string) ([]byte, error) {
	start := time.Now()

	items, err := s.items.ListByList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	for i, it := range items {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}
		write(1, it.PageNumber)
		write(2, it.Name)
		write(3, it.Price)
		write(4, it.Unit)
		write(5, it.Quantity)
		write(6, it.DisplayFormat)
		write(7, it.VATPercent)
		write(8, it.WastePercent)
	}

	_ = f.SetColWidth(SheetName, "A", "A", 8)  // page
	_ = f.SetColWidth(SheetName, "B", "B", 36) // name
	_ = f.SetColWidth(SheetName, "C", "E", 12) // price, unit, quantity
	_ = f.SetColWidth(SheetName, "F", "F", 20) // format
	_ = f.SetColWidth(SheetName, "G", "H", 10) // percents
	_ = f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("price list exported",
		"list_id", listID,
		"rows", len(items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
