// File: internal/usecase/generation_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"course-ai-platform/internal/domain"
	"course-ai-platform/internal/domain/model"
	"course-ai-platform/internal/domain/ports/adapter"
	"course-ai-platform/internal/domain/ports/repository"
	"course-ai-platform/internal/infra/worker"
)

const sourceMaterialType = "PDF"

// Defaults the worker expects for quiz generation.
var defaultQuizQuestionTypes = []string{"MULTIPLE_CHOICE", "OX", "ESSAY"}

const defaultQuizQuestionCount = 5

// Compile-time checks
var (
	_ GenerationUseCase = (*generationUC)(nil)
	_ SourceResolver    = (*generationUC)(nil)
)

// GenerationUseCase drives the fire-and-forget generation paths. Dispatch
// methods return as soon as the job is PROCESSING and the outbound worker
// call has been handed to the pool; callers learn the outcome by polling
// the status methods.
type GenerationUseCase interface {
	DispatchLectureContent(ctx context.Context, principal model.Principal, lectureID int64) (*model.GenerationJob, error)
	// DispatchQuiz creates the assessment shell the callback will fill and
	// returns its ID alongside the job.
	DispatchQuiz(ctx context.Context, principal model.Principal, courseID, lectureID int64) (int64, *model.GenerationJob, error)
	Status(ctx context.Context, principal model.Principal, subject SubjectRef) (model.JobStatus, error)
	ListArtifacts(ctx context.Context, principal model.Principal, subject SubjectRef) ([]*model.GeneratedArtifact, error)
}

type generationUC struct {
	guard     AuthGuard
	jobs      JobLifecycle
	catalog   repository.CatalogRepository
	artifacts repository.ArtifactRepository
	delegator adapter.DelegatorAdapter
	pool      *worker.Pool
	// outbound deadline for the detached call; independent of the
	// originating request's context, which is gone by the time it runs
	callTimeout time.Duration
	log         *zerolog.Logger
}

func NewGenerationUseCase(
	guard AuthGuard,
	jobs JobLifecycle,
	catalog repository.CatalogRepository,
	artifacts repository.ArtifactRepository,
	delegator adapter.DelegatorAdapter,
	pool *worker.Pool,
	callTimeout time.Duration,
	log *zerolog.Logger,
) *generationUC {
	return &generationUC{
		guard:       guard,
		jobs:        jobs,
		catalog:     catalog,
		artifacts:   artifacts,
		delegator:   delegator,
		pool:        pool,
		callTimeout: callTimeout,
		log:         log,
	}
}

func (g *generationUC) DispatchLectureContent(ctx context.Context, principal model.Principal, lectureID int64) (*model.GenerationJob, error) {
	subject := LectureSubject(lectureID)
	if err := g.guard.Authorize(ctx, principal, subject, CapabilityOwner); err != nil {
		return nil, err
	}

	material, err := g.LatestSource(ctx, lectureID)
	if err != nil {
		return nil, err
	}

	job, err := g.jobs.Begin(ctx, lectureID, model.SubjectLectureContent)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		return job, nil
	}

	g.launch(subject, adapter.DispatchRequest{
		Stage:     adapter.StagePDFProcessing,
		LectureID: lectureID,
		PDFPath:   material.FilePath,
	})
	return job, nil
}

func (g *generationUC) DispatchQuiz(ctx context.Context, principal model.Principal, courseID, lectureID int64) (int64, *model.GenerationJob, error) {
	subject := LectureSubject(lectureID)
	if err := g.guard.Authorize(ctx, principal, subject, CapabilityOwner); err != nil {
		return 0, nil, err
	}
	lecture, err := g.catalog.FindLecture(ctx, repository.NoTX, lectureID)
	if err != nil {
		return 0, nil, err
	}
	if lecture.CourseID != courseID {
		return 0, nil, domain.ErrInvalidArgument
	}

	material, err := g.LatestSource(ctx, lectureID)
	if err != nil {
		return 0, nil, err
	}

	assessmentID, err := g.catalog.CreateQuizAssessment(ctx, repository.NoTX, courseID, lecture.Title+" - AI Quiz")
	if err != nil {
		return 0, nil, err
	}

	job, err := g.jobs.Begin(ctx, assessmentID, model.SubjectQuiz)
	if err != nil {
		return 0, nil, err
	}

	g.launch(AssessmentSubject(assessmentID), adapter.DispatchRequest{
		Stage:         adapter.StageQuizGeneration,
		AssessmentID:  assessmentID,
		PDFPath:       material.FilePath,
		QuestionTypes: defaultQuizQuestionTypes,
		QuestionCount: defaultQuizQuestionCount,
	})
	return assessmentID, job, nil
}

func (g *generationUC) Status(ctx context.Context, principal model.Principal, subject SubjectRef) (model.JobStatus, error) {
	if err := g.guard.Authorize(ctx, principal, subject, CapabilityParticipant); err != nil {
		return "", err
	}
	return g.jobs.CurrentStatus(ctx, subject.ID, subject.Kind)
}

func (g *generationUC) ListArtifacts(ctx context.Context, principal model.Principal, subject SubjectRef) ([]*model.GeneratedArtifact, error) {
	if err := g.guard.Authorize(ctx, principal, subject, CapabilityParticipant); err != nil {
		return nil, err
	}
	return g.artifacts.ListBySubject(ctx, repository.NoTX, subject.ID, subject.Kind)
}

// LatestSource returns the newest PDF attached to the lecture, the document
// every generation and streaming session starts from.
func (g *generationUC) LatestSource(ctx context.Context, lectureID int64) (*model.Material, error) {
	material, err := g.catalog.LatestMaterial(ctx, repository.NoTX, lectureID, sourceMaterialType)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNoSourceDocument
		}
		return nil, err
	}
	return material, nil
}

// launch hands the outbound worker call to the pool so the originating
// request returns immediately. The failure handler runs as its own unit of
// work with a fresh context; the request that triggered the dispatch has
// long since returned.
func (g *generationUC) launch(subject SubjectRef, req adapter.DispatchRequest) {
	task := func(context.Context) error {
		callCtx, cancel := context.WithTimeout(context.Background(), g.callTimeout)
		defer cancel()

		if err := g.delegator.Dispatch(callCtx, req); err != nil {
			g.log.Error().Err(err).Int64("subject_id", subject.ID).Str("kind", string(subject.Kind)).
				Msg("ai worker dispatch failed")
			g.failDetached(subject, err.Error())
		}
		return nil
	}
	if err := g.pool.Submit(task); err != nil {
		g.log.Error().Err(err).Int64("subject_id", subject.ID).Msg("dispatch task rejected by pool")
		g.failDetached(subject, "dispatch queue saturated")
	}
}

func (g *generationUC) failDetached(subject SubjectRef, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := g.jobs.Fail(ctx, subject.ID, subject.Kind, reason); err != nil {
		g.log.Error().Err(err).Int64("subject_id", subject.ID).Msg("failed to mark job FAILED")
	}
}
