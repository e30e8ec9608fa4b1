package server

import (
	"context"
	"log/slog"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/pricelist-tracker/internal/common"
	"github.com/joseph-ayodele/pricelist-tracker/internal/core/pricelist"
	"github.com/joseph-ayodele/pricelist-tracker/internal/entity"
	"github.com/joseph-ayodele/pricelist-tracker/internal/export"
	"github.com/joseph-ayodele/pricelist-tracker/internal/repository"
)

const (
	maxTextLength   = 1 << 20
	maxListIDLength = 128
)

type ExtractionServer struct {
	extractor *pricelist.Extractor
	jobs      repository.PageJobRepository
	export    *export.Service
	logger    *slog.Logger
}

func NewExtractionServer(extractor *pricelist.Extractor, jobs repository.PageJobRepository, exp *export.Service, logger *slog.Logger) *ExtractionServer {
	if logger == nil {
		logger = slog.Default()
	}
	if extractor == nil {
		extractor = pricelist.NewExtractor(nil, pricelist.WithLogger(logger))
	}
	return &ExtractionServer{extractor: extractor, jobs: jobs, export: exp, logger: logger}
}

func (s *ExtractionServer) ExtractText(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	text := req.GetValue()
	v := common.NewValidator().
		Field("text", text, common.Required, common.MaxLength(maxTextLength))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	page := s.extractor.ExtractPage(text)
	out, err := structpb.NewStruct(PageToMap(page))
	if err != nil {
		return nil, common.InternalErrorf("encode page: %v", err)
	}
	common.LoggerFromContext(ctx, s.logger).Debug("text extracted", "layout", page.Layout.String(), "items", len(page.Items))
	return out, nil
}

func (s *ExtractionServer) GetProgress(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	listID, err := listIDFrom(req)
	if err != nil {
		return nil, err
	}
	p, err := s.jobs.Progress(ctx, listID)
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Error("progress failed", "list_id", listID, "error", err)
		return nil, common.ToStatus(err)
	}
	out, err := structpb.NewStruct(ProgressToMap(p))
	if err != nil {
		return nil, common.InternalErrorf("encode progress: %v", err)
	}
	return out, nil
}

func (s *ExtractionServer) ExportList(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	listID, err := listIDFrom(req)
	if err != nil {
		return nil, err
	}
	data, err := s.export.ExportListXLSX(ctx, listID)
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Error("export failed", "list_id", listID, "error", err)
		return nil, common.ToStatus(err)
	}
	return wrapperspb.Bytes(data), nil
}

func listIDFrom(req *wrapperspb.StringValue) (string, error) {
	listID := strings.TrimSpace(req.GetValue())
	v := common.NewValidator().
		Field("list_id", listID, common.Required, common.MaxLength(maxListIDLength))
	if err := common.ValidateAndReturnError(v); err != nil {
		return "", err
	}
	return listID, nil
}

// PageToMap renders an extracted page as plain values for structpb and JSON output.
func PageToMap(p pricelist.Page) map[string]any {
	items := make([]any, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, map[string]any{
			"name":           it.Name,
			"price":          it.Price,
			"unit":           string(it.Unit),
			"quantity":       it.Quantity,
			"display_format": it.DisplayFormat,
		})
	}
	return map[string]any{
		"layout":     p.Layout.String(),
		"lines":      p.Lines,
		"candidates": p.Candidates,
		"items":      items,
	}
}

// ProgressToMap renders list progress as plain values.
func ProgressToMap(p *entity.Progress) map[string]any {
	return map[string]any{
		"list_id":    p.ListID,
		"total":      p.Total,
		"pending":    p.Pending,
		"processing": p.Processing,
		"processed":  p.Processed,
		"failed":     p.Failed,
		"done":       p.Done(),
		"percent":    p.Percent(),
	}
}
