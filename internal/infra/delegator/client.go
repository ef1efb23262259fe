// File: internal/infra/delegator/client.go
package delegator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"course-ai-platform/internal/config"
	"course-ai-platform/internal/domain/ports/adapter"
	"course-ai-platform/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ adapter.DelegatorAdapter = (*HTTPClient)(nil)

const dispatchPath = "/api/delegator/dispatch"

// HTTPClient talks to the external AI worker. Every call, asynchronous
// dispatch and synchronous stage alike, goes through the same endpoint
// with a {stage, payload} envelope.
type HTTPClient struct {
	baseURL string
	secret  string
	cli     *http.Client
	log     *zerolog.Logger
}

func NewHTTPClient(cfg config.WorkerConfig, logger *zerolog.Logger) *HTTPClient {
	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		secret:  cfg.SecretKey,
		cli: &http.Client{
			Transport: transport,
			Timeout:   cfg.ResponseTimeout, // generation can take minutes
		},
		log: logger,
	}
}

func (c *HTTPClient) Dispatch(ctx context.Context, req adapter.DispatchRequest) error {
	payload := map[string]interface{}{
		"pdf_path": req.PDFPath,
		"pdfPath":  req.PDFPath,
	}
	switch req.Stage {
	case adapter.StageQuizGeneration:
		payload["assessment_id"] = req.AssessmentID
		payload["assessmentId"] = req.AssessmentID
		payload["questionTypes"] = req.QuestionTypes
		payload["questionCount"] = req.QuestionCount
	default:
		payload["lecture_id"] = req.LectureID
		payload["lectureId"] = req.LectureID
	}
	// Success is any 2xx; the body is ignored.
	return c.call(ctx, req.Stage, payload, nil)
}

func (c *HTTPClient) InitializeStream(ctx context.Context, lectureID int64, pdfPath string) (*adapter.InitializeResult, error) {
	payload := lecturePayload(lectureID)
	payload["pdf_path"] = pdfPath
	payload["pdfPath"] = pdfPath

	var out adapter.InitializeResult
	if err := c.call(ctx, adapter.StageInitialize, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) NextContent(ctx context.Context, lectureID int64) (*adapter.ContentResult, error) {
	var out adapter.ContentResult
	if err := c.call(ctx, adapter.StageNextContent, lecturePayload(lectureID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Session(ctx context.Context, lectureID int64) (*adapter.SessionResult, error) {
	var out adapter.SessionResult
	if err := c.call(ctx, adapter.StageSession, lecturePayload(lectureID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) AnswerQuestion(ctx context.Context, lectureID int64, questionID, answer string) (*adapter.AnswerResult, error) {
	payload := lecturePayload(lectureID)
	payload["ai_question_id"] = questionID
	payload["aiQuestionId"] = questionID
	payload["answer"] = answer

	var out adapter.AnswerResult
	if err := c.call(ctx, adapter.StageAnswerQuestion, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CancelStream(ctx context.Context, lectureID int64) error {
	return c.call(ctx, adapter.StageCancel, lecturePayload(lectureID), nil)
}

// lecturePayload carries the lecture identifier under both key spellings
// the worker has accepted historically.
func lecturePayload(lectureID int64) map[string]interface{} {
	return map[string]interface{}{
		"lecture_id": lectureID,
		"lectureId":  lectureID,
	}
}

// call posts the stage envelope and decodes a 2xx response into out (when
// non-nil). 4xx/5xx and transport failures come back as
// *adapter.ExternalServiceError.
func (c *HTTPClient) call(ctx context.Context, stage string, payload map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"stage":   stage,
		"payload": payload,
	})
	if err != nil {
		return fmt.Errorf("marshal stage envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+dispatchPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build stage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("X-AI-SECRET-KEY", c.secret)
	}

	start := time.Now()
	resp, err := c.cli.Do(req)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		metrics.ObserveDelegatorCall(stage, latency, false)
		metrics.IncDelegatorError(stage, 0)
		c.log.Warn().Err(err).Str("stage", stage).Msg("ai worker unreachable")
		return &adapter.ExternalServiceError{StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveDelegatorCall(stage, latency, false)
		metrics.IncDelegatorError(stage, resp.StatusCode)
		msg := extractErrorMessage(raw, resp.StatusCode)
		c.log.Warn().Str("stage", stage).Int("status", resp.StatusCode).Str("message", msg).Msg("ai worker error response")
		return &adapter.ExternalServiceError{StatusCode: resp.StatusCode, Message: msg}
	}

	metrics.ObserveDelegatorCall(stage, latency, true)
	if out == nil {
		return nil
	}
	if len(raw) == 0 {
		return &adapter.ExternalServiceError{StatusCode: resp.StatusCode, Message: "ai worker response is empty"}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", stage, err)
	}
	return nil
}
