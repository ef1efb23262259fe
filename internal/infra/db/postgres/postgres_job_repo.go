package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"course-ai-platform/internal/domain"
	"course-ai-platform/internal/domain/model"
	"course-ai-platform/internal/domain/ports/repository"
)

var _ repository.GenerationJobRepository = (*generationJobRepo)(nil)

type generationJobRepo struct {
	pool *pgxpool.Pool
}

func NewGenerationJobRepo(pool *pgxpool.Pool) *generationJobRepo {
	return &generationJobRepo{pool: pool}
}

func (r *generationJobRepo) BeginProcessing(ctx context.Context, tx repository.Tx, subjectID int64, kind model.SubjectKind) (*model.GenerationJob, error) {
	// The conditional upsert refuses to reopen COMPLETED/FAILED jobs; when
	// the guard filters the update out, RETURNING yields no row and we read
	// the terminal job back instead.
	const q = `
INSERT INTO generation_jobs (subject_id, subject_kind, status, last_error, created_at, updated_at)
VALUES ($1, $2, 'PROCESSING', '', now(), now())
ON CONFLICT (subject_id, subject_kind) DO UPDATE SET
  status = 'PROCESSING',
  last_error = '',
  updated_at = now()
WHERE generation_jobs.status NOT IN ('COMPLETED', 'FAILED')
RETURNING subject_id, subject_kind, status, last_error, created_at, updated_at;`

	row, err := pickRow(ctx, r.pool, tx, q, subjectID, string(kind))
	if err != nil {
		return nil, err
	}
	job, err := scanJob(row)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres: begin job: %w", err)
	}
	return r.Find(ctx, tx, subjectID, kind)
}

func (r *generationJobRepo) SetTerminal(ctx context.Context, tx repository.Tx, subjectID int64, kind model.SubjectKind, status model.JobStatus, lastError string) error {
	if !status.Terminal() {
		return domain.ErrInvalidArgument
	}
	// Unconditional terminal upsert: duplicated callbacks and the
	// dispatch-failure race resolve to whichever write lands last.
	const q = `
INSERT INTO generation_jobs (subject_id, subject_kind, status, last_error, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (subject_id, subject_kind) DO UPDATE SET
  status = EXCLUDED.status,
  last_error = EXCLUDED.last_error,
  updated_at = now();`

	if _, err := execSQL(ctx, r.pool, tx, q, subjectID, string(kind), string(status), lastError); err != nil {
		return fmt.Errorf("postgres: set terminal status: %w", err)
	}
	return nil
}

func (r *generationJobRepo) Find(ctx context.Context, tx repository.Tx, subjectID int64, kind model.SubjectKind) (*model.GenerationJob, error) {
	const q = `
SELECT subject_id, subject_kind, status, last_error, created_at, updated_at
FROM generation_jobs
WHERE subject_id = $1 AND subject_kind = $2;`

	row, err := pickRow(ctx, r.pool, tx, q, subjectID, string(kind))
	if err != nil {
		return nil, err
	}
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: find job: %w", err)
	}
	return job, nil
}

func scanJob(row pgx.Row) (*model.GenerationJob, error) {
	var (
		job       model.GenerationJob
		kindStr   string
		statusStr string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&job.SubjectID, &kindStr, &statusStr, &job.LastError, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	job.SubjectKind = model.SubjectKind(kindStr)
	job.Status = model.JobStatus(statusStr)
	job.CreatedAt = createdAt
	job.UpdatedAt = updatedAt
	return &job, nil
}
