// File: internal/infra/web/handlers.go
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"course-ai-platform/internal/domain"
	"course-ai-platform/internal/domain/model"
	"course-ai-platform/internal/domain/ports/adapter"
	"course-ai-platform/internal/usecase"
)

const (
	callbackSecretHeader = "X-AI-SECRET-KEY"
	callbackAckMessage   = "Callback received successfully."
)

type statusResponse struct {
	Status model.JobStatus `json:"status"`
}

type quizDispatchRequest struct {
	LectureID int64 `json:"lectureId"`
}

type quizDispatchResponse struct {
	AssessmentID int64           `json:"assessmentId"`
	Status       model.JobStatus `json:"status"`
}

type answerRequest struct {
	QuestionID string `json:"aiQuestionId"`
	Answer     string `json:"answer"`
}

type artifactResponse struct {
	ID                 string    `json:"id"`
	ContentType        string    `json:"contentType"`
	ContentData        string    `json:"contentData"`
	MaterialReferences string    `json:"materialReferences,omitempty"`
	QuestionID         string    `json:"aiQuestionId,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}


func (s *Server) handleDispatchLectureContent(w http.ResponseWriter, r *http.Request) {
	lectureID, ok := pathID(w, r, "lectureID")
	if !ok {
		return
	}
	job, err := s.genUC.DispatchLectureContent(r.Context(), principalFrom(r.Context()), lectureID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, statusResponse{Status: job.Status})
}

func (s *Server) handleListLectureArtifacts(w http.ResponseWriter, r *http.Request) {
	lectureID, ok := pathID(w, r, "lectureID")
	if !ok {
		return
	}
	s.listArtifacts(w, r, usecase.LectureSubject(lectureID))
}

func (s *Server) handleListAssessmentArtifacts(w http.ResponseWriter, r *http.Request) {
	assessmentID, ok := pathID(w, r, "assessmentID")
	if !ok {
		return
	}
	s.listArtifacts(w, r, usecase.AssessmentSubject(assessmentID))
}

func (s *Server) listArtifacts(w http.ResponseWriter, r *http.Request, subject usecase.SubjectRef) {
	artifacts, err := s.genUC.ListArtifacts(r.Context(), principalFrom(r.Context()), subject)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]artifactResponse, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, artifactResponse{
			ID:                 a.ID,
			ContentType:        string(a.ContentType),
			ContentData:        a.ContentData,
			MaterialReferences: a.MaterialReferences,
			QuestionID:         a.QuestionID,
			CreatedAt:          a.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLectureStatus(w http.ResponseWriter, r *http.Request) {
	lectureID, ok := pathID(w, r, "lectureID")
	if !ok {
		return
	}
	s.subjectStatus(w, r, usecase.LectureSubject(lectureID))
}

func (s *Server) handleAssessmentStatus(w http.ResponseWriter, r *http.Request) {
	assessmentID, ok := pathID(w, r, "assessmentID")
	if !ok {
		return
	}
	s.subjectStatus(w, r, usecase.AssessmentSubject(assessmentID))
}

func (s *Server) subjectStatus(w http.ResponseWriter, r *http.Request, subject usecase.SubjectRef) {
	status, err := s.genUC.Status(r.Context(), principalFrom(r.Context()), subject)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: status})
}

func (s *Server) handleDispatchQuiz(w http.ResponseWriter, r *http.Request) {
	courseID, ok := pathID(w, r, "courseID")
	if !ok {
		return
	}
	var req quizDispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LectureID == 0 {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	assessmentID, job, err := s.genUC.DispatchQuiz(r.Context(), principalFrom(r.Context()), courseID, req.LectureID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, quizDispatchResponse{AssessmentID: assessmentID, Status: job.Status})
}

func (s *Server) handleStreamInitialize(w http.ResponseWriter, r *http.Request) {
	lectureID, ok := pathID(w, r, "lectureID")
	if !ok {
		return
	}
	res, err := s.streamUC.Initialize(r.Context(), principalFrom(r.Context()), lectureID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStreamNext(w http.ResponseWriter, r *http.Request) {
	lectureID, ok := pathID(w, r, "lectureID")
	if !ok {
		return
	}
	res, err := s.streamUC.NextContent(r.Context(), principalFrom(r.Context()), lectureID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStreamSession(w http.ResponseWriter, r *http.Request) {
	lectureID, ok := pathID(w, r, "lectureID")
	if !ok {
		return
	}
	res, err := s.streamUC.Session(r.Context(), principalFrom(r.Context()), lectureID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStreamAnswer(w http.ResponseWriter, r *http.Request) {
	lectureID, ok := pathID(w, r, "lectureID")
	if !ok {
		return
	}
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	res, err := s.streamUC.Answer(r.Context(), principalFrom(r.Context()), lectureID, req.QuestionID, req.Answer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStreamCancel(w http.ResponseWriter, r *http.Request) {
	lectureID, ok := pathID(w, r, "lectureID")
	if !ok {
		return
	}
	if err := s.streamUC.Cancel(r.Context(), principalFrom(r.Context()), lectureID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "CANCEL_REQUESTED"})
}

func (s *Server) handleLectureCallback(w http.ResponseWriter, r *http.Request) {
	lectureID, ok := pathID(w, r, "lectureID")
	if !ok {
		return
	}
	s.receiveCallback(w, r, usecase.LectureSubject(lectureID))
}

func (s *Server) handleAssessmentCallback(w http.ResponseWriter, r *http.Request) {
	assessmentID, ok := pathID(w, r, "assessmentID")
	if !ok {
		return
	}
	s.receiveCallback(w, r, usecase.AssessmentSubject(assessmentID))
}

// receiveCallback ingests the worker's result report. The body is a bare
// JSON array of artifact descriptors; responses are plain text, matching
// what the worker already expects.
func (s *Server) receiveCallback(w http.ResponseWriter, r *http.Request, subject usecase.SubjectRef) {
	var inputs []usecase.ArtifactInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	err := s.callbackUC.Receive(r.Context(), r.Header.Get(callbackSecretHeader), subject, inputs)
	if err != nil {
		if errors.Is(err, domain.ErrCallbackRejected) {
			http.Error(w, "Invalid secret key", http.StatusForbidden)
			return
		}
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(callbackAckMessage))
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses. Worker failures come
// back as 502 so callers can tell platform faults from worker faults.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ext *adapter.ExternalServiceError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, domain.ErrNoSourceDocument):
		http.Error(w, "No source document uploaded for this lecture", http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, "Invalid request", http.StatusBadRequest)
	case errors.Is(err, domain.ErrSupplementaryGeneration):
		http.Error(w, "Supplementary content generation failed", http.StatusBadGateway)
	case errors.As(err, &ext):
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":        "ai worker error",
			"workerStatus": ext.StatusCode,
			"message":      ext.Message,
		})
	default:
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}
