// File: internal/usecase/guard_uc_test.go
package usecase

import (
	"context"
	"errors"
	"testing"

	"course-ai-platform/internal/domain"
	"course-ai-platform/internal/domain/model"
)

func seededCatalog() *memCatalogRepo {
	cat := newMemCatalogRepo()
	cat.addCourse(10, 100, "Databases")
	cat.addLecture(1, 10, "Indexes")
	cat.addAssessment(50, 10, "Indexes - AI Quiz")
	cat.enroll(200, 10)
	return cat
}

func teacherPrincipal() model.Principal {
	return model.Principal{UserID: 100, Role: model.RoleTeacher}
}

func studentPrincipal() model.Principal {
	return model.Principal{UserID: 200, Role: model.RoleStudent}
}

func TestAuthGuard_OwnerCapability(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	guard := NewAuthGuard(seededCatalog())

	if err := guard.Authorize(ctx, teacherPrincipal(), LectureSubject(1), CapabilityOwner); err != nil {
		t.Fatalf("owning teacher refused: %v", err)
	}
	if err := guard.Authorize(ctx, studentPrincipal(), LectureSubject(1), CapabilityOwner); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("enrolled student granted OWNER: %v", err)
	}
	// A teacher who does not own the course is not the owner either.
	other := model.Principal{UserID: 101, Role: model.RoleTeacher}
	if err := guard.Authorize(ctx, other, LectureSubject(1), CapabilityOwner); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-owning teacher granted OWNER: %v", err)
	}
}

func TestAuthGuard_ParticipantCapability(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	guard := NewAuthGuard(seededCatalog())

	if err := guard.Authorize(ctx, teacherPrincipal(), LectureSubject(1), CapabilityParticipant); err != nil {
		t.Fatalf("owner refused PARTICIPANT: %v", err)
	}
	if err := guard.Authorize(ctx, studentPrincipal(), LectureSubject(1), CapabilityParticipant); err != nil {
		t.Fatalf("enrolled student refused PARTICIPANT: %v", err)
	}
	outsider := model.Principal{UserID: 300, Role: model.RoleStudent}
	if err := guard.Authorize(ctx, outsider, LectureSubject(1), CapabilityParticipant); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("unenrolled student granted PARTICIPANT: %v", err)
	}
}

func TestAuthGuard_AssessmentSubjectResolvesCourse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	guard := NewAuthGuard(seededCatalog())

	if err := guard.Authorize(ctx, studentPrincipal(), AssessmentSubject(50), CapabilityParticipant); err != nil {
		t.Fatalf("enrolled student refused on assessment: %v", err)
	}
}

func TestAuthGuard_MissingSubjectIsNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	guard := NewAuthGuard(seededCatalog())

	if err := guard.Authorize(ctx, teacherPrincipal(), LectureSubject(999), CapabilityOwner); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing lecture, got %v", err)
	}
}

func TestAuthGuard_MissingPrincipalIsNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	guard := NewAuthGuard(seededCatalog())

	if err := guard.Authorize(ctx, model.Principal{}, LectureSubject(1), CapabilityParticipant); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for zero principal, got %v", err)
	}
}
