// File: internal/usecase/stream_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"course-ai-platform/internal/domain"
	"course-ai-platform/internal/domain/model"
	"course-ai-platform/internal/domain/ports/adapter"
)

// Compile-time check
var _ StreamUseCase = (*streamUC)(nil)

// StreamUseCase relays the synchronous streaming-session protocol to the AI
// worker. The worker owns all session state; this layer adds authorization
// and translates the worker's waiting-for-answer rejection into a normal
// response.
type StreamUseCase interface {
	Initialize(ctx context.Context, principal model.Principal, lectureID int64) (*adapter.InitializeResult, error)
	NextContent(ctx context.Context, principal model.Principal, lectureID int64) (*adapter.ContentResult, error)
	Session(ctx context.Context, principal model.Principal, lectureID int64) (*adapter.SessionResult, error)
	Answer(ctx context.Context, principal model.Principal, lectureID int64, questionID, answer string) (*adapter.AnswerResult, error)
	Cancel(ctx context.Context, principal model.Principal, lectureID int64) error
}

type streamUC struct {
	guard     AuthGuard
	delegator adapter.DelegatorAdapter
	sources   SourceResolver
	log       *zerolog.Logger
}

// SourceResolver locates the document a streaming session is built from.
type SourceResolver interface {
	LatestSource(ctx context.Context, lectureID int64) (*model.Material, error)
}

func NewStreamUseCase(guard AuthGuard, delegator adapter.DelegatorAdapter, sources SourceResolver, log *zerolog.Logger) *streamUC {
	return &streamUC{guard: guard, delegator: delegator, sources: sources, log: log}
}

func (s *streamUC) Initialize(ctx context.Context, principal model.Principal, lectureID int64) (*adapter.InitializeResult, error) {
	if err := s.guard.Authorize(ctx, principal, LectureSubject(lectureID), CapabilityOwner); err != nil {
		return nil, err
	}
	material, err := s.sources.LatestSource(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	return s.delegator.InitializeStream(ctx, lectureID, material.FilePath)
}

func (s *streamUC) NextContent(ctx context.Context, principal model.Principal, lectureID int64) (*adapter.ContentResult, error) {
	if err := s.guard.Authorize(ctx, principal, LectureSubject(lectureID), CapabilityParticipant); err != nil {
		return nil, err
	}
	res, err := s.delegator.NextContent(ctx, lectureID)
	if err != nil {
		if adapter.IsWaitingForAnswer(err) {
			// The session is paused on an unanswered question. Not an error:
			// the client should resubmit the answer, then pull again.
			return &adapter.ContentResult{
				Status:           "WAITING_FOR_ANSWER",
				LectureID:        lectureID,
				WaitingForAnswer: true,
				HasMore:          true,
			}, nil
		}
		return nil, err
	}
	return res, nil
}

func (s *streamUC) Session(ctx context.Context, principal model.Principal, lectureID int64) (*adapter.SessionResult, error) {
	if err := s.guard.Authorize(ctx, principal, LectureSubject(lectureID), CapabilityParticipant); err != nil {
		return nil, err
	}
	return s.delegator.Session(ctx, lectureID)
}

func (s *streamUC) Answer(ctx context.Context, principal model.Principal, lectureID int64, questionID, answer string) (*adapter.AnswerResult, error) {
	if err := s.guard.Authorize(ctx, principal, LectureSubject(lectureID), CapabilityParticipant); err != nil {
		return nil, err
	}
	if questionID == "" || answer == "" {
		return nil, domain.ErrInvalidArgument
	}
	res, err := s.delegator.AnswerQuestion(ctx, lectureID, questionID, answer)
	if err != nil {
		return nil, err
	}
	if res.Status != "PROCESSING" && res.Supplementary == "" {
		s.log.Warn().Int64("lecture_id", lectureID).Str("question_id", questionID).
			Str("status", res.Status).Msg("answer accepted but no supplementary produced")
		return nil, domain.ErrSupplementaryGeneration
	}
	return res, nil
}

func (s *streamUC) Cancel(ctx context.Context, principal model.Principal, lectureID int64) error {
	if err := s.guard.Authorize(ctx, principal, LectureSubject(lectureID), CapabilityParticipant); err != nil {
		return err
	}
	return s.delegator.CancelStream(ctx, lectureID)
}
