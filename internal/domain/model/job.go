package model

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// Terminal reports whether the status can no longer move back to
// PENDING or PROCESSING. COMPLETED and FAILED may still overwrite each
// other so that duplicated callback delivery stays last-write-wins.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

type SubjectKind string

const (
	SubjectLectureContent SubjectKind = "LECTURE_CONTENT"
	SubjectQuiz           SubjectKind = "QUIZ"
)

// GenerationJob tracks one request to produce AI content for a lecture
// or an assessment. There is at most one job per (subject, kind).
type GenerationJob struct {
	SubjectID   int64
	SubjectKind SubjectKind
	Status      JobStatus
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
