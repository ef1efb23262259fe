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

var _ repository.CatalogRepository = (*catalogRepo)(nil)

// catalogRepo reads the course/lecture/assessment/material tables owned by
// the surrounding CRUD backend. Everything except CreateQuizAssessment is
// read-only.
type catalogRepo struct {
	pool *pgxpool.Pool
}

func NewCatalogRepo(pool *pgxpool.Pool) *catalogRepo {
	return &catalogRepo{pool: pool}
}

func (r *catalogRepo) FindCourse(ctx context.Context, tx repository.Tx, courseID int64) (*model.Course, error) {
	const q = `SELECT id, teacher_id, title FROM courses WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, courseID)
	if err != nil {
		return nil, err
	}
	var c model.Course
	if err := row.Scan(&c.ID, &c.TeacherID, &c.Title); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: querying course: %w", err)
	}
	return &c, nil
}

func (r *catalogRepo) FindLecture(ctx context.Context, tx repository.Tx, lectureID int64) (*model.Lecture, error) {
	const q = `SELECT id, course_id, title FROM lectures WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, lectureID)
	if err != nil {
		return nil, err
	}
	var l model.Lecture
	if err := row.Scan(&l.ID, &l.CourseID, &l.Title); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: querying lecture: %w", err)
	}
	return &l, nil
}

func (r *catalogRepo) FindAssessment(ctx context.Context, tx repository.Tx, assessmentID int64) (*model.Assessment, error) {
	const q = `SELECT id, course_id, title, type FROM assessments WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, assessmentID)
	if err != nil {
		return nil, err
	}
	var a model.Assessment
	if err := row.Scan(&a.ID, &a.CourseID, &a.Title, &a.Type); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: querying assessment: %w", err)
	}
	return &a, nil
}

func (r *catalogRepo) CreateQuizAssessment(ctx context.Context, tx repository.Tx, courseID int64, title string) (int64, error) {
	const q = `
INSERT INTO assessments (course_id, title, type, created_at)
VALUES ($1, $2, 'QUIZ', now())
RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q, courseID, title)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("postgres: creating quiz assessment: %w", err)
	}
	return id, nil
}

func (r *catalogRepo) IsEnrolled(ctx context.Context, tx repository.Tx, userID, courseID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2);`
	row, err := pickRow(ctx, r.pool, tx, q, userID, courseID)
	if err != nil {
		return false, err
	}
	var enrolled bool
	if err := row.Scan(&enrolled); err != nil {
		return false, fmt.Errorf("postgres: querying enrollment: %w", err)
	}
	return enrolled, nil
}

func (r *catalogRepo) LatestMaterial(ctx context.Context, tx repository.Tx, lectureID int64, materialType string) (*model.Material, error) {
	const q = `
SELECT id, lecture_id, material_type, file_path, created_at
FROM materials
WHERE lecture_id = $1 AND material_type = $2
ORDER BY created_at DESC
LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, lectureID, materialType)
	if err != nil {
		return nil, err
	}
	var (
		m         model.Material
		createdAt time.Time
	)
	if err := row.Scan(&m.ID, &m.LectureID, &m.MaterialType, &m.FilePath, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: querying material: %w", err)
	}
	m.CreatedAt = createdAt
	return &m, nil
}
