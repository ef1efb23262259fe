package repository

import (
	"context"

	"course-ai-platform/internal/domain/model"
)

type ArtifactRepository interface {
	// SaveAll appends artifacts for a subject. Re-delivery of the same
	// callback must not create duplicate rows; implementations dedupe on
	// content identity and report how many rows were actually inserted.
	SaveAll(ctx context.Context, tx Tx, artifacts []*model.GeneratedArtifact) (int, error)

	ListBySubject(ctx context.Context, tx Tx, subjectID int64, kind model.SubjectKind) ([]*model.GeneratedArtifact, error)
}
