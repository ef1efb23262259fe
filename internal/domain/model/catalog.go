package model

import "time"

// The catalog entities below are owned by the surrounding CRUD backend.
// This module only reads them to resolve subjects, source documents and
// ownership/enrollment facts.

type Role string

const (
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// Principal is the acting user, resolved once at the request boundary
// and passed explicitly into every core operation.
type Principal struct {
	UserID int64
	Role   Role
}

type Course struct {
	ID        int64
	TeacherID int64
	Title     string
}

type Lecture struct {
	ID       int64
	CourseID int64
	Title    string
}

type Assessment struct {
	ID       int64
	CourseID int64
	Title    string
	Type     string // QUIZ, EXAM, ...
}

// Material is an uploaded source document attached to a lecture.
type Material struct {
	ID           int64
	LectureID    int64
	MaterialType string // "PDF"
	FilePath     string
	CreatedAt    time.Time
}
