package model

import "time"

type ContentType string

const (
	ContentScript    ContentType = "SCRIPT"
	ContentSummary   ContentType = "SUMMARY"
	ContentVisualAid ContentType = "VISUAL_AID"
	ContentQuizData  ContentType = "QUIZ_DATA"
)

// GeneratedArtifact is one persisted unit of AI-produced content.
// Artifacts are append-only; they are written exclusively by the
// callback path and never mutated afterwards.
type GeneratedArtifact struct {
	ID                 string // ULID, sortable by creation time
	SubjectID          int64
	SubjectKind        SubjectKind
	ContentType        ContentType
	ContentData        string // opaque text/JSON blob
	MaterialReferences string // opaque provenance JSON
	QuestionID         string // set when produced for an interactive question
	CreatedAt          time.Time
}
