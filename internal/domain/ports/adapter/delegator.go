package adapter

import "context"

// Stage names understood by the external AI worker. Every call to the
// worker carries exactly one of these in the request envelope.
const (
	StagePDFProcessing  = "pdf_processing"
	StageQuizGeneration = "quiz_generation"
	StageInitialize     = "initialize"
	StageNextContent    = "get_next_content"
	StageSession        = "get_session"
	StageAnswerQuestion = "answer_question"
	StageCancel         = "cancel"
)

// DispatchRequest is the fire-and-forget generation request. Exactly one
// of LectureID/AssessmentID is set, matching the stage.
type DispatchRequest struct {
	Stage        string
	LectureID    int64
	AssessmentID int64
	PDFPath      string
	// Quiz generation parameters; ignored for lecture content.
	QuestionTypes []string
	QuestionCount int
}

type Chapter struct {
	Title     string `json:"title"`
	StartPage int    `json:"startPage"`
	EndPage   int    `json:"endPage"`
}

type InitializeResult struct {
	Status        string    `json:"status"`
	LectureID     int64     `json:"lectureId"`
	TotalChapters int       `json:"totalChapters"`
	Chapters      []Chapter `json:"chapters,omitempty"`
}

type ContentResult struct {
	Status           string `json:"status"`
	LectureID        int64  `json:"lectureId"`
	ContentType      string `json:"contentType,omitempty"`
	ContentData      string `json:"contentData,omitempty"`
	ChapterTitle     string `json:"chapterTitle,omitempty"`
	HasMore          bool   `json:"hasMore"`
	WaitingForAnswer bool   `json:"waitingForAnswer"`
	QuestionID       string `json:"aiQuestionId,omitempty"`
}

type SessionResult struct {
	Status        string      `json:"status"`
	LectureID     int64       `json:"lectureId"`
	ServiceStatus string      `json:"serviceStatus,omitempty"`
	Chapters      interface{} `json:"chapters,omitempty"`
	Questions     interface{} `json:"questions,omitempty"`
	CreatedAt     string      `json:"createdAt,omitempty"`
	UpdatedAt     string      `json:"updatedAt,omitempty"`
	Error         interface{} `json:"error,omitempty"`
}

type AnswerResult struct {
	Status        string `json:"status"`
	LectureID     int64  `json:"lectureId"`
	QuestionID    string `json:"aiQuestionId,omitempty"`
	Question      string `json:"question,omitempty"`
	ChapterTitle  string `json:"chapterTitle,omitempty"`
	Supplementary string `json:"supplementary,omitempty"`
	CanContinue   bool   `json:"canContinue"`
}

// DelegatorAdapter is the port to the external AI worker. Dispatch is the
// asynchronous generation entry point; the rest are the synchronous
// streaming-session stages. Session state lives entirely in the worker:
// these calls relay its answers and never cache anything locally.
type DelegatorAdapter interface {
	Dispatch(ctx context.Context, req DispatchRequest) error
	InitializeStream(ctx context.Context, lectureID int64, pdfPath string) (*InitializeResult, error)
	NextContent(ctx context.Context, lectureID int64) (*ContentResult, error)
	Session(ctx context.Context, lectureID int64) (*SessionResult, error)
	AnswerQuestion(ctx context.Context, lectureID int64, questionID, answer string) (*AnswerResult, error)
	CancelStream(ctx context.Context, lectureID int64) error
}
