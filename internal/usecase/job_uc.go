// File: internal/usecase/job_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"course-ai-platform/internal/domain"
	"course-ai-platform/internal/domain/model"
	"course-ai-platform/internal/domain/ports/repository"
	"course-ai-platform/internal/infra/metrics"
	red "course-ai-platform/internal/infra/redis"
)

// Compile-time check
var _ JobLifecycle = (*jobLifecycle)(nil)

// JobLifecycle owns the generation job status machine:
// PENDING -> PROCESSING -> {COMPLETED, FAILED}. Complete and Fail are
// idempotent and safe under concurrent invocation for the same subject;
// whichever terminal write lands last wins, and neither ever reopens a job.
type JobLifecycle interface {
	Begin(ctx context.Context, subjectID int64, kind model.SubjectKind) (*model.GenerationJob, error)
	// Complete persists the artifacts and the terminal status in one
	// transaction: COMPLETED when artifacts is non-empty, FAILED otherwise.
	Complete(ctx context.Context, subjectID int64, kind model.SubjectKind, artifacts []*model.GeneratedArtifact) error
	Fail(ctx context.Context, subjectID int64, kind model.SubjectKind, reason string) error
	CurrentStatus(ctx context.Context, subjectID int64, kind model.SubjectKind) (model.JobStatus, error)
}

type jobLifecycle struct {
	jobs      repository.GenerationJobRepository
	artifacts repository.ArtifactRepository
	tm        repository.TransactionManager
	locker    red.Locker
	lockTTL   time.Duration
	log       *zerolog.Logger
}

func NewJobLifecycle(
	jobs repository.GenerationJobRepository,
	artifacts repository.ArtifactRepository,
	tm repository.TransactionManager,
	locker red.Locker,
	lockTTL time.Duration,
	log *zerolog.Logger,
) *jobLifecycle {
	return &jobLifecycle{jobs: jobs, artifacts: artifacts, tm: tm, locker: locker, lockTTL: lockTTL, log: log}
}

func (j *jobLifecycle) Begin(ctx context.Context, subjectID int64, kind model.SubjectKind) (*model.GenerationJob, error) {
	job, err := j.jobs.BeginProcessing(ctx, repository.NoTX, subjectID, kind)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		// Stale dispatch retried after the worker already called back.
		j.log.Warn().Int64("subject_id", subjectID).Str("kind", string(kind)).
			Str("status", string(job.Status)).Msg("begin refused: job already terminal")
	}
	return job, nil
}

func (j *jobLifecycle) Complete(ctx context.Context, subjectID int64, kind model.SubjectKind, artifacts []*model.GeneratedArtifact) error {
	status := model.JobStatusCompleted
	lastError := ""
	if len(artifacts) == 0 {
		status = model.JobStatusFailed
		lastError = "worker reported completion with no artifacts"
	}
	return j.writeTerminal(ctx, subjectID, kind, status, lastError, artifacts)
}

func (j *jobLifecycle) Fail(ctx context.Context, subjectID int64, kind model.SubjectKind, reason string) error {
	return j.writeTerminal(ctx, subjectID, kind, model.JobStatusFailed, reason, nil)
}

func (j *jobLifecycle) CurrentStatus(ctx context.Context, subjectID int64, kind model.SubjectKind) (model.JobStatus, error) {
	job, err := j.jobs.Find(ctx, repository.NoTX, subjectID, kind)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// No dispatch has happened yet.
			return model.JobStatusPending, nil
		}
		return "", err
	}
	return job.Status, nil
}

// writeTerminal serializes terminal writes per subject and keeps artifact
// persistence atomic with the status change. The callback path and the
// dispatch-failure path race here; the lock plus a single transaction
// guarantee last-write-wins with no partial state.
func (j *jobLifecycle) writeTerminal(ctx context.Context, subjectID int64, kind model.SubjectKind, status model.JobStatus, lastError string, artifacts []*model.GeneratedArtifact) error {
	key := red.JobLockKey(string(kind), subjectID)
	token, err := j.locker.TryLock(ctx, key, j.lockTTL)
	if err != nil {
		return err
	}
	defer func() { _ = j.locker.Unlock(ctx, key, token) }()

	err = j.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if len(artifacts) > 0 {
			inserted, err := j.artifacts.SaveAll(ctx, tx, artifacts)
			if err != nil {
				return err
			}
			if inserted < len(artifacts) {
				j.log.Info().Int64("subject_id", subjectID).Int("duplicates", len(artifacts)-inserted).
					Msg("callback redelivery: duplicate artifacts skipped")
			}
		}
		return j.jobs.SetTerminal(ctx, tx, subjectID, kind, status, lastError)
	})
	if err != nil {
		return err
	}
	metrics.IncJob(string(kind), string(status))
	return nil
}
