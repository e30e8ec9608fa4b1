package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/pricelist-tracker/constants"
	"github.com/joseph-ayodele/pricelist-tracker/internal/common"
	"github.com/joseph-ayodele/pricelist-tracker/internal/entity"
)

const tableJobs = "price_list_jobs"

var jobColumns = []string{
	"id", "provider_id", "organization_id", "list_id", "page_number", "source_url",
	"status", "error", "item_count", "layout", "created_at", "updated_at",
}

type PageJobRepository interface {
	Create(ctx context.Context, job *entity.PageJob) (*entity.PageJob, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.PageJob, error)
	ListPending(ctx context.Context, limit int) ([]*entity.PageJob, error)
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, itemCount int, layout string) error
	MarkError(ctx context.Context, id uuid.UUID, message string) error
	Requeue(ctx context.Context, id uuid.UUID) error
	Progress(ctx context.Context, listID string) (*entity.Progress, error)
}

type pageJobRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewPageJobRepository(db *DB, log *slog.Logger) PageJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &pageJobRepo{db: db, log: log, now: time.Now}
}

// Create inserts a pending job. A zero ID is replaced by a new one.
func (r *pageJobRepo) Create(ctx context.Context, job *entity.PageJob) (*entity.PageJob, error) {
	out := *job
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	if out.Status == "" {
		out.Status = constants.JobStatusPending
	}
	now := r.now().UTC()
	out.CreatedAt, out.UpdatedAt = now, now

	query, args := r.db.builder().Insert(tableJobs).
		Columns(jobColumns...).
		Values(
			out.ID.String(), out.ProviderID, out.OrganizationID, out.ListID, out.PageNumber, out.SourceURL,
			string(out.Status), out.Error, out.ItemCount, out.Layout, formatTime(now), formatTime(now),
		).
		Query()
	if _, err := r.db.sqlDB().ExecContext(ctx, query, args...); err != nil {
		r.log.Error("page job create failed", "list_id", out.ListID, "page", out.PageNumber, "err", err)
		return nil, common.NewAppError("DB_ERROR", "create page job", errors.Join(common.ErrDatabase, err))
	}
	r.log.Info("page job created", "job_id", out.ID, "list_id", out.ListID, "page", out.PageNumber)
	return &out, nil
}

func (r *pageJobRepo) Get(ctx context.Context, id uuid.UUID) (*entity.PageJob, error) {
	b := r.db.builder()
	query, args := b.Select(jobColumns...).
		From(b.Table(tableJobs)).
		Where(entsql.EQ("id", id.String())).
		Query()
	row := r.db.sqlDB().QueryRowContext(ctx, query, args...)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("page job %s", id), common.ErrNotFound)
	}
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "get page job", errors.Join(common.ErrDatabase, err))
	}
	return job, nil
}

// ListPending returns pending jobs ordered by list and page number.
func (r *pageJobRepo) ListPending(ctx context.Context, limit int) ([]*entity.PageJob, error) {
	b := r.db.builder()
	sel := b.Select(jobColumns...).
		From(b.Table(tableJobs)).
		Where(entsql.EQ("status", string(constants.JobStatusPending))).
		OrderBy("list_id", "page_number", "created_at")
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()
	rows, err := r.db.sqlDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "list pending jobs", errors.Join(common.ErrDatabase, err))
	}
	defer rows.Close()

	var out []*entity.PageJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "scan page job", errors.Join(common.ErrDatabase, err))
		}
		out = append(out, job)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DB_ERROR", "list pending jobs", errors.Join(common.ErrDatabase, err))
	}
	return out, nil
}

// Claim moves a job from pending to processing. It reports false when another
// worker got there first or the job is not pending.
func (r *pageJobRepo) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	query, args := r.db.builder().Update(tableJobs).
		Set("status", string(constants.JobStatusProcessing)).
		Set("error", "").
		Set("updated_at", formatTime(r.now())).
		Where(entsql.And(
			entsql.EQ("id", id.String()),
			entsql.EQ("status", string(constants.JobStatusPending)),
		)).
		Query()
	res, err := r.db.sqlDB().ExecContext(ctx, query, args...)
	if err != nil {
		return false, common.NewAppError("DB_ERROR", "claim page job", errors.Join(common.ErrDatabase, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, common.NewAppError("DB_ERROR", "claim page job", errors.Join(common.ErrDatabase, err))
	}
	if n == 0 {
		r.log.Debug("page job not claimable", "job_id", id)
		return false, nil
	}
	r.log.Info("page job claimed", "job_id", id)
	return true, nil
}

func (r *pageJobRepo) MarkProcessed(ctx context.Context, id uuid.UUID, itemCount int, layout string) error {
	err := r.finish(ctx, id, constants.JobStatusProcessed, func(u *entsql.UpdateBuilder) {
		u.Set("item_count", itemCount).Set("layout", layout).Set("error", "")
	})
	if err != nil {
		r.log.Error("page job finish(processed) failed", "job_id", id, "err", err)
		return err
	}
	r.log.Info("page job finished", "job_id", id, "status", constants.JobStatusProcessed, "items", itemCount, "layout", layout)
	return nil
}

func (r *pageJobRepo) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	err := r.finish(ctx, id, constants.JobStatusError, func(u *entsql.UpdateBuilder) {
		u.Set("error", message)
	})
	if err != nil {
		r.log.Error("page job finish(error) failed", "job_id", id, "err", err)
		return err
	}
	r.log.Warn("page job finished", "job_id", id, "status", constants.JobStatusError, "error", message)
	return nil
}

// Requeue puts a failed job back to pending, clearing its error. Jobs in any
// other status yield an ErrConflict error.
func (r *pageJobRepo) Requeue(ctx context.Context, id uuid.UUID) error {
	query, args := r.db.builder().Update(tableJobs).
		Set("status", string(constants.JobStatusPending)).
		Set("error", "").
		Set("item_count", 0).
		Set("layout", "").
		Set("updated_at", formatTime(r.now())).
		Where(entsql.And(
			entsql.EQ("id", id.String()),
			entsql.EQ("status", string(constants.JobStatusError)),
		)).
		Query()
	res, err := r.db.sqlDB().ExecContext(ctx, query, args...)
	if err != nil {
		return common.NewAppError("DB_ERROR", "requeue page job", errors.Join(common.ErrDatabase, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return common.NewAppError("DB_ERROR", "requeue page job", errors.Join(common.ErrDatabase, err))
	}
	if n == 0 {
		job, err := r.Get(ctx, id)
		if err != nil {
			return err
		}
		return common.NewAppError("CONFLICT", fmt.Sprintf("page job %s is %s, not error", id, job.Status), common.ErrConflict)
	}
	r.log.Info("page job requeued", "job_id", id)
	return nil
}

func (r *pageJobRepo) finish(ctx context.Context, id uuid.UUID, status constants.JobStatus, set func(*entsql.UpdateBuilder)) error {
	u := r.db.builder().Update(tableJobs).
		Set("status", string(status)).
		Set("updated_at", formatTime(r.now()))
	set(u)
	query, args := u.Where(entsql.EQ("id", id.String())).Query()
	res, err := r.db.sqlDB().ExecContext(ctx, query, args...)
	if err != nil {
		return common.NewAppError("DB_ERROR", "update page job", errors.Join(common.ErrDatabase, err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError("NOT_FOUND", fmt.Sprintf("page job %s", id), common.ErrNotFound)
	}
	return nil
}

// Progress counts the jobs of a list per status.
func (r *pageJobRepo) Progress(ctx context.Context, listID string) (*entity.Progress, error) {
	b := r.db.builder()
	query, args := b.Select("status", entsql.Count("*")).
		From(b.Table(tableJobs)).
		Where(entsql.EQ("list_id", listID)).
		GroupBy("status").
		Query()
	rows, err := r.db.sqlDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "job progress", errors.Join(common.ErrDatabase, err))
	}
	defer rows.Close()

	p := &entity.Progress{ListID: listID}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, common.NewAppError("DB_ERROR", "job progress", errors.Join(common.ErrDatabase, err))
		}
		p.Total += n
		switch constants.JobStatus(status) {
		case constants.JobStatusPending:
			p.Pending += n
		case constants.JobStatusProcessing:
			p.Processing += n
		case constants.JobStatusProcessed:
			p.Processed += n
		case constants.JobStatusError:
			p.Failed += n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DB_ERROR", "job progress", errors.Join(common.ErrDatabase, err))
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(s rowScanner) (*entity.PageJob, error) {
	var (
		job                  entity.PageJob
		id, status           string
		createdAt, updatedAt string
	)
	err := s.Scan(&id, &job.ProviderID, &job.OrganizationID, &job.ListID, &job.PageNumber, &job.SourceURL,
		&status, &job.Error, &job.ItemCount, &job.Layout, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if job.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("bad job id %q: %w", id, err)
	}
	job.Status = constants.JobStatus(status)
	if !job.Status.Valid() {
		return nil, fmt.Errorf("job %s has unknown status %q", id, status)
	}
	job.CreatedAt = parseTime(createdAt)
	job.UpdatedAt = parseTime(updatedAt)
	return &job, nil
}
