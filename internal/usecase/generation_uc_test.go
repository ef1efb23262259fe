// File: internal/usecase/generation_uc_test.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"course-ai-platform/internal/domain"
	"course-ai-platform/internal/domain/model"
	"course-ai-platform/internal/domain/ports/adapter"
	"course-ai-platform/internal/infra/worker"
)

type genFixture struct {
	uc        *generationUC
	jobs      *memJobRepo
	arts      *memArtifactRepo
	cat       *memCatalogRepo
	delegator *fakeDelegator
	cancel    context.CancelFunc
}

func newGenFixture(t *testing.T) *genFixture {
	t.Helper()
	cat := seededCatalog()
	cat.addMaterial(1, "PDF", "/files/indexes.pdf", time.Now())

	jobs := newMemJobRepo()
	arts := newMemArtifactRepo()
	lc := NewJobLifecycle(jobs, arts, &fakeTxManager{}, &fakeLocker{}, 30*time.Second, testLogger())
	fd := newFakeDelegator()

	pool := worker.NewPool(2)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	t.Cleanup(func() {
		cancel()
		pool.Stop()
	})

	uc := NewGenerationUseCase(NewAuthGuard(cat), lc, cat, arts, fd, pool, 5*time.Second, testLogger())
	return &genFixture{uc: uc, jobs: jobs, arts: arts, cat: cat, delegator: fd, cancel: cancel}
}

func awaitDispatch(t *testing.T, fd *fakeDelegator) adapter.DispatchRequest {
	t.Helper()
	select {
	case req := <-fd.dispatchCh:
		return req
	case <-time.After(2 * time.Second):
		t.Fatalf("no dispatch reached the worker")
		return adapter.DispatchRequest{}
	}
}

func TestDispatchLectureContent_HappyPath(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newGenFixture(t)

	job, err := f.uc.DispatchLectureContent(ctx, teacherPrincipal(), 1)
	if err != nil {
		t.Fatalf("DispatchLectureContent: %v", err)
	}
	if job.Status != model.JobStatusProcessing {
		t.Fatalf("expected PROCESSING before callback, got %s", job.Status)
	}

	req := awaitDispatch(t, f.delegator)
	if req.Stage != adapter.StagePDFProcessing {
		t.Fatalf("wrong stage: %s", req.Stage)
	}
	if req.LectureID != 1 || req.PDFPath != "/files/indexes.pdf" {
		t.Fatalf("wrong dispatch payload: %+v", req)
	}
}

func TestDispatchLectureContent_RequiresOwner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newGenFixture(t)

	_, err := f.uc.DispatchLectureContent(ctx, studentPrincipal(), 1)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("student allowed to dispatch: %v", err)
	}
	if f.delegator.dispatchCount() != 0 {
		t.Fatalf("dispatch reached the worker despite authorization failure")
	}
}

func TestDispatchLectureContent_NoSourceDocument(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newGenFixture(t)
	f.cat.addLecture(2, 10, "Transactions") // no material attached

	_, err := f.uc.DispatchLectureContent(ctx, teacherPrincipal(), 2)
	if !errors.Is(err, domain.ErrNoSourceDocument) {
		t.Fatalf("expected ErrNoSourceDocument, got %v", err)
	}
	if _, err := f.jobs.Find(ctx, nil, 2, model.SubjectLectureContent); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("job created despite missing source document")
	}
}

func TestDispatchLectureContent_TerminalJobSkipsDispatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newGenFixture(t)

	if err := f.jobs.SetTerminal(ctx, nil, 1, model.SubjectLectureContent, model.JobStatusCompleted, ""); err != nil {
		t.Fatalf("seed terminal: %v", err)
	}
	job, err := f.uc.DispatchLectureContent(ctx, teacherPrincipal(), 1)
	if err != nil {
		t.Fatalf("DispatchLectureContent: %v", err)
	}
	if job.Status != model.JobStatusCompleted {
		t.Fatalf("terminal job reopened: %s", job.Status)
	}
	select {
	case <-f.delegator.dispatchCh:
		t.Fatalf("dispatched for an already-completed job")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatchLectureContent_WorkerErrorFailsJob(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newGenFixture(t)
	f.delegator.dispatchErr = &adapter.ExternalServiceError{StatusCode: 0, Message: "connection refused"}

	if _, err := f.uc.DispatchLectureContent(ctx, teacherPrincipal(), 1); err != nil {
		t.Fatalf("dispatch itself should not error: %v", err)
	}
	awaitDispatch(t, f.delegator)

	// Failure marking runs detached; poll for it.
	deadline := time.Now().Add(2 * time.Second)
	for {
		job, err := f.jobs.Find(ctx, nil, 1, model.SubjectLectureContent)
		if err == nil && job.Status == model.JobStatusFailed {
			if !strings.Contains(job.LastError, "connection refused") {
				t.Fatalf("failure reason lost: %q", job.LastError)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never marked FAILED after worker error")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDispatchQuiz_CreatesAssessmentShell(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newGenFixture(t)

	assessmentID, job, err := f.uc.DispatchQuiz(ctx, teacherPrincipal(), 10, 1)
	if err != nil {
		t.Fatalf("DispatchQuiz: %v", err)
	}
	if job.Status != model.JobStatusProcessing {
		t.Fatalf("expected PROCESSING, got %s", job.Status)
	}

	shell, err := f.cat.FindAssessment(ctx, nil, assessmentID)
	if err != nil {
		t.Fatalf("assessment shell missing: %v", err)
	}
	if shell.Title != "Indexes - AI Quiz" {
		t.Fatalf("wrong shell title: %q", shell.Title)
	}

	req := awaitDispatch(t, f.delegator)
	if req.Stage != adapter.StageQuizGeneration {
		t.Fatalf("wrong stage: %s", req.Stage)
	}
	if req.AssessmentID != assessmentID {
		t.Fatalf("dispatch bound to wrong assessment: %d", req.AssessmentID)
	}
	if req.QuestionCount != 5 || len(req.QuestionTypes) != 3 {
		t.Fatalf("quiz defaults not applied: %+v", req)
	}
}

func TestDispatchQuiz_CourseMismatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newGenFixture(t)

	_, _, err := f.uc.DispatchQuiz(ctx, teacherPrincipal(), 99, 1)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for course mismatch, got %v", err)
	}
}

func TestStatus_ReadableByParticipant(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newGenFixture(t)

	status, err := f.uc.Status(ctx, studentPrincipal(), LectureSubject(1))
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != model.JobStatusPending {
		t.Fatalf("expected PENDING before any dispatch, got %s", status)
	}
}

func TestListArtifacts_GuardedAndOrdered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newGenFixture(t)

	seed := []*model.GeneratedArtifact{
		{SubjectID: 1, SubjectKind: model.SubjectLectureContent, ContentType: model.ContentScript, ContentData: "a"},
		{SubjectID: 1, SubjectKind: model.SubjectLectureContent, ContentType: model.ContentSummary, ContentData: "b"},
	}
	if _, err := f.arts.SaveAll(ctx, nil, seed); err != nil {
		t.Fatalf("seed artifacts: %v", err)
	}

	got, err := f.uc.ListArtifacts(ctx, studentPrincipal(), LectureSubject(1))
	if err != nil {
		t.Fatalf("ListArtifacts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(got))
	}

	outsider := model.Principal{UserID: 300, Role: model.RoleStudent}
	if _, err := f.uc.ListArtifacts(ctx, outsider, LectureSubject(1)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("outsider allowed to list artifacts: %v", err)
	}
}
