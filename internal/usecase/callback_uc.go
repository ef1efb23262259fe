// File: internal/usecase/callback_uc.go
package usecase

import (
	"context"
	"crypto/subtle"

	"github.com/rs/zerolog"

	"course-ai-platform/internal/domain"
	"course-ai-platform/internal/domain/model"
	"course-ai-platform/internal/domain/ports/repository"
	"course-ai-platform/internal/infra/metrics"
)

// ArtifactInput is one generated item as the worker reports it.
type ArtifactInput struct {
	ContentType        string `json:"contentType"`
	ContentData        string `json:"contentData"`
	MaterialReferences string `json:"materialReferences"`
	QuestionID         string `json:"aiQuestionId"`
}

// Compile-time check
var _ CallbackUseCase = (*callbackUC)(nil)

// CallbackUseCase ingests completion reports from the AI worker. The worker
// authenticates with the shared secret, not a user token, so this path
// bypasses the guard entirely.
type CallbackUseCase interface {
	Receive(ctx context.Context, secret string, subject SubjectRef, inputs []ArtifactInput) error
}

type callbackUC struct {
	secret  string
	catalog repository.CatalogRepository
	jobs    JobLifecycle
	log     *zerolog.Logger
}

func NewCallbackUseCase(secret string, catalog repository.CatalogRepository, jobs JobLifecycle, log *zerolog.Logger) *callbackUC {
	return &callbackUC{secret: secret, catalog: catalog, jobs: jobs, log: log}
}

func (c *callbackUC) Receive(ctx context.Context, secret string, subject SubjectRef, inputs []ArtifactInput) error {
	if subtle.ConstantTimeCompare([]byte(secret), []byte(c.secret)) != 1 {
		metrics.IncCallback("rejected")
		return domain.ErrCallbackRejected
	}

	if err := c.subjectExists(ctx, subject); err != nil {
		metrics.IncCallback("unknown_subject")
		return err
	}

	artifacts := make([]*model.GeneratedArtifact, 0, len(inputs))
	for _, in := range inputs {
		artifacts = append(artifacts, &model.GeneratedArtifact{
			SubjectID:          subject.ID,
			SubjectKind:        subject.Kind,
			ContentType:        model.ContentType(in.ContentType),
			ContentData:        in.ContentData,
			MaterialReferences: in.MaterialReferences,
			QuestionID:         in.QuestionID,
		})
	}

	if err := c.jobs.Complete(ctx, subject.ID, subject.Kind, artifacts); err != nil {
		metrics.IncCallback("error")
		return err
	}

	result := "completed"
	if len(artifacts) == 0 {
		// An empty report still closes the job, as FAILED.
		result = "empty"
		c.log.Warn().Int64("subject_id", subject.ID).Str("kind", string(subject.Kind)).
			Msg("callback carried no artifacts")
	}
	metrics.IncCallback(result)
	return nil
}

func (c *callbackUC) subjectExists(ctx context.Context, subject SubjectRef) error {
	switch subject.Kind {
	case model.SubjectLectureContent:
		_, err := c.catalog.FindLecture(ctx, repository.NoTX, subject.ID)
		return err
	case model.SubjectQuiz:
		_, err := c.catalog.FindAssessment(ctx, repository.NoTX, subject.ID)
		return err
	default:
		return domain.ErrInvalidArgument
	}
}
