// File: internal/usecase/guard_uc.go
package usecase

import (
	"context"

	"course-ai-platform/internal/domain"
	"course-ai-platform/internal/domain/model"
	"course-ai-platform/internal/domain/ports/repository"
)

// Capability is the access level an operation demands on a subject.
type Capability string

const (
	// CapabilityOwner: the teacher who owns the course containing the subject.
	CapabilityOwner Capability = "OWNER"
	// CapabilityParticipant: the owner or a student enrolled in that course.
	CapabilityParticipant Capability = "PARTICIPANT"
)

// SubjectRef identifies a lecture or an assessment.
type SubjectRef struct {
	Kind model.SubjectKind
	ID   int64
}

func LectureSubject(id int64) SubjectRef {
	return SubjectRef{Kind: model.SubjectLectureContent, ID: id}
}

func AssessmentSubject(id int64) SubjectRef {
	return SubjectRef{Kind: model.SubjectQuiz, ID: id}
}

// Compile-time check
var _ AuthGuard = (*authGuard)(nil)

// AuthGuard is the single authorization gate in front of every core
// operation. A missing principal or subject is domain.ErrNotFound; a
// resolved principal lacking the capability is domain.ErrForbidden.
type AuthGuard interface {
	Authorize(ctx context.Context, principal model.Principal, subject SubjectRef, cap Capability) error
	// ResolveCourse maps a subject to its owning course. Shared with the
	// dispatch path, which needs the course for quiz assessment creation.
	ResolveCourse(ctx context.Context, subject SubjectRef) (*model.Course, error)
}

type authGuard struct {
	catalog repository.CatalogRepository
}

func NewAuthGuard(catalog repository.CatalogRepository) *authGuard {
	return &authGuard{catalog: catalog}
}

func (g *authGuard) Authorize(ctx context.Context, principal model.Principal, subject SubjectRef, cap Capability) error {
	if principal.UserID == 0 {
		return domain.ErrNotFound
	}
	course, err := g.ResolveCourse(ctx, subject)
	if err != nil {
		return err
	}

	isOwner := course.TeacherID == principal.UserID && principal.Role == model.RoleTeacher
	if cap == CapabilityOwner {
		if isOwner {
			return nil
		}
		return domain.ErrForbidden
	}

	if isOwner {
		return nil
	}
	enrolled, err := g.catalog.IsEnrolled(ctx, repository.NoTX, principal.UserID, course.ID)
	if err != nil {
		return err
	}
	if !enrolled {
		return domain.ErrForbidden
	}
	return nil
}

func (g *authGuard) ResolveCourse(ctx context.Context, subject SubjectRef) (*model.Course, error) {
	var courseID int64
	switch subject.Kind {
	case model.SubjectLectureContent:
		lecture, err := g.catalog.FindLecture(ctx, repository.NoTX, subject.ID)
		if err != nil {
			return nil, err
		}
		courseID = lecture.CourseID
	case model.SubjectQuiz:
		assessment, err := g.catalog.FindAssessment(ctx, repository.NoTX, subject.ID)
		if err != nil {
			return nil, err
		}
		courseID = assessment.CourseID
	default:
		return nil, domain.ErrInvalidArgument
	}
	return g.catalog.FindCourse(ctx, repository.NoTX, courseID)
}
