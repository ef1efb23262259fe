package repository

import (
	"context"

	"course-ai-platform/internal/domain/model"
)

// CatalogRepository exposes read-only lookups against the entities owned
// by the surrounding CRUD backend: courses, lectures, assessments,
// enrollments and uploaded materials.
type CatalogRepository interface {
	FindCourse(ctx context.Context, tx Tx, courseID int64) (*model.Course, error)
	FindLecture(ctx context.Context, tx Tx, lectureID int64) (*model.Lecture, error)
	FindAssessment(ctx context.Context, tx Tx, assessmentID int64) (*model.Assessment, error)

	// CreateQuizAssessment creates the assessment shell a quiz generation
	// job will fill via callback, returning its ID.
	CreateQuizAssessment(ctx context.Context, tx Tx, courseID int64, title string) (int64, error)

	IsEnrolled(ctx context.Context, tx Tx, userID, courseID int64) (bool, error)

	// LatestMaterial returns the most recent material of the given type for
	// a lecture, or domain.ErrNotFound.
	LatestMaterial(ctx context.Context, tx Tx, lectureID int64, materialType string) (*model.Material, error)
}
