package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/pricelist-tracker/internal/common"
	"github.com/joseph-ayodele/pricelist-tracker/internal/entity"
)

const tableItems = "price_list_items"

var itemColumns = []string{
	"id", "job_id", "provider_id", "organization_id", "list_id", "page_number", "position",
	"name", "price", "unit", "quantity", "display_format", "vat_percent", "waste_percent", "created_at",
}

type PriceItemRepository interface {
	// ReplaceForJob swaps the stored items of a page job for items in one transaction.
	ReplaceForJob(ctx context.Context, jobID uuid.UUID, items []entity.PriceItem) error
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.PriceItem, error)
	ListByList(ctx context.Context, listID string) ([]entity.PriceItem, error)
}

type priceItemRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewPriceItemRepository(db *DB, log *slog.Logger) PriceItemRepository {
	if log == nil {
		log = slog.Default()
	}
	return &priceItemRepo{db: db, log: log, now: time.Now}
}

func (r *priceItemRepo) ReplaceForJob(ctx context.Context, jobID uuid.UUID, items []entity.PriceItem) (err error) {
	tx, err := r.db.sqlDB().BeginTx(ctx, nil)
	if err != nil {
		return common.NewAppError("DB_ERROR", "begin item replace", errors.Join(common.ErrDatabase, err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	b := r.db.builder()
	query, args := b.Delete(tableItems).Where(entsql.EQ("job_id", jobID.String())).Query()
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return common.NewAppError("DB_ERROR", "delete job items", errors.Join(common.ErrDatabase, err))
	}

	if len(items) > 0 {
		now := formatTime(r.now())
		ins := b.Insert(tableItems).Columns(itemColumns...)
		for i, it := range items {
			id := it.ID
			if id == uuid.Nil {
				id = uuid.New()
			}
			ins.Values(
				id.String(), jobID.String(), it.ProviderID, it.OrganizationID, it.ListID, it.PageNumber, i,
				it.Name, it.Price, it.Unit, it.Quantity, it.DisplayFormat, it.VATPercent, it.WastePercent, now,
			)
		}
		query, args = ins.Query()
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return common.NewAppError("DB_ERROR", "insert job items", errors.Join(common.ErrDatabase, err))
		}
	}

	if err = tx.Commit(); err != nil {
		return common.NewAppError("DB_ERROR", "commit item replace", errors.Join(common.ErrDatabase, err))
	}
	r.log.Debug("job items replaced", "job_id", jobID, "items", len(items))
	return nil
}

func (r *priceItemRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]entity.PriceItem, error) {
	return r.list(ctx, entsql.EQ("job_id", jobID.String()), "position")
}

// ListByList returns the items of every page of a list in page order.
func (r *priceItemRepo) ListByList(ctx context.Context, listID string) ([]entity.PriceItem, error) {
	return r.list(ctx, entsql.EQ("list_id", listID), "page_number", "position")
}

func (r *priceItemRepo) list(ctx context.Context, where *entsql.Predicate, orderBy ...string) ([]entity.PriceItem, error) {
	b := r.db.builder()
	query, args := b.Select(itemColumns...).
		From(b.Table(tableItems)).
		Where(where).
		OrderBy(orderBy...).
		Query()
	rows, err := r.db.sqlDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "list items", errors.Join(common.ErrDatabase, err))
	}
	defer rows.Close()

	var out []entity.PriceItem
	for rows.Next() {
		var (
			it               entity.PriceItem
			id, jobID, added string
		)
		if err := rows.Scan(&id, &jobID, &it.ProviderID, &it.OrganizationID, &it.ListID, &it.PageNumber, &it.Position,
			&it.Name, &it.Price, &it.Unit, &it.Quantity, &it.DisplayFormat, &it.VATPercent, &it.WastePercent, &added); err != nil {
			return nil, common.NewAppError("DB_ERROR", "scan item", errors.Join(common.ErrDatabase, err))
		}
		if it.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("bad item id %q: %w", id, err)
		}
		if it.JobID, err = uuid.Parse(jobID); err != nil {
			return nil, fmt.Errorf("bad job id %q: %w", jobID, err)
		}
		it.CreatedAt = parseTime(added)
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DB_ERROR", "list items", errors.Join(common.ErrDatabase, err))
	}
	return out, nil
}
