// File: internal/infra/web/server.go
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"course-ai-platform/internal/usecase"
)

// Server exposes the generation, streaming and callback endpoints. The
// callback routes authenticate with the worker's shared secret instead of a
// user token, so they sit outside the principal middleware.
type Server struct {
	genUC      usecase.GenerationUseCase
	streamUC   usecase.StreamUseCase
	callbackUC usecase.CallbackUseCase
	auth       *AuthManager
	log        *zerolog.Logger
}

func NewServer(
	genUC usecase.GenerationUseCase,
	streamUC usecase.StreamUseCase,
	callbackUC usecase.CallbackUseCase,
	auth *AuthManager,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		genUC:      genUC,
		streamUC:   streamUC,
		callbackUC: callbackUC,
		auth:       auth,
		log:        logger,
	}
}

func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(func(next http.Handler) http.Handler { return Chain(next, TraceID(), RequestLog(s.log), Recover(s.log)) })

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler { return s.auth.RequirePrincipal()(next) })

		r.Route("/lectures/{lectureID}", func(r chi.Router) {
			r.Post("/ai-content", s.handleDispatchLectureContent)
			r.Get("/ai-content", s.handleListLectureArtifacts)
			r.Get("/ai-content/status", s.handleLectureStatus)

			// The streaming stages proxy to the worker synchronously and can
			// take a while; give them a generous per-request deadline.
			r.Group(func(r chi.Router) {
				r.Use(func(next http.Handler) http.Handler { return Timeout(5 * time.Minute)(next) })
				r.Post("/stream/initialize", s.handleStreamInitialize)
				r.Post("/stream/next", s.handleStreamNext)
				r.Get("/stream/session", s.handleStreamSession)
				r.Post("/stream/answer", s.handleStreamAnswer)
				r.Post("/stream/cancel", s.handleStreamCancel)
			})
		})

		r.Post("/courses/{courseID}/quizzes", s.handleDispatchQuiz)
		r.Get("/assessments/{assessmentID}/status", s.handleAssessmentStatus)
		r.Get("/assessments/{assessmentID}/artifacts", s.handleListAssessmentArtifacts)
	})

	r.Route("/api/ai/callback", func(r chi.Router) {
		r.Post("/lectures/{lectureID}", s.handleLectureCallback)
		r.Post("/assessments/{assessmentID}", s.handleAssessmentCallback)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
