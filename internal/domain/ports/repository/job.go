package repository

import (
	"context"

	"course-ai-platform/internal/domain/model"
)

type GenerationJobRepository interface {
	// BeginProcessing creates the job in PROCESSING state, or advances an
	// existing non-terminal job to PROCESSING. A job already in a terminal
	// state is returned unchanged; a stale dispatch retried after the worker
	// has called back must not reopen it.
	BeginProcessing(ctx context.Context, tx Tx, subjectID int64, kind model.SubjectKind) (*model.GenerationJob, error)

	// SetTerminal unconditionally writes COMPLETED or FAILED. Terminal states
	// may overwrite each other (last write wins); writing a non-terminal
	// status through this method is a programming error.
	SetTerminal(ctx context.Context, tx Tx, subjectID int64, kind model.SubjectKind, status model.JobStatus, lastError string) error

	// Find returns the job for a subject, or domain.ErrNotFound.
	Find(ctx context.Context, tx Tx, subjectID int64, kind model.SubjectKind) (*model.GenerationJob, error)
}
