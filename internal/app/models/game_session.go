package models

import (
	"time"

	"github.com/google/uuid"
)

// GameSession is one quiz attempt, stored in the 'game_sessions' table.
// StudentID is a weak reference to users.id used only for lookups.
// Percentage is score/totalQuestions*100 as written by the quiz flow.
type GameSession struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	StudentID        uuid.UUID     `json:"studentId" db:"student_id"`
	Level            int           `json:"level" db:"level"`
	Score            int           `json:"score" db:"score"`
	TotalQuestions   int           `json:"totalQuestions" db:"total_questions"`
	Percentage       float64       `json:"percentage" db:"percentage"`
	TimeTakenSeconds int           `json:"timeTakenSeconds" db:"time_taken_seconds"`
	StartTime        *time.Time    `json:"startTime,omitempty" db:"start_time"`
	EndTime          *time.Time    `json:"endTime,omitempty" db:"end_time"`
	Status           SessionStatus `json:"status" db:"status"`
	Performance      Performance   `json:"performance"`
	FeedbackText     *string       `json:"feedbackText,omitempty" db:"feedback_text"`
	Answers          []Answer      `json:"answers,omitempty" db:"answers"`
	CreatedAt        time.Time     `json:"createdAt" db:"created_at"`
}

// Performance holds the per-session derived metrics
type Performance struct {
	Accuracy               float64 `json:"accuracy" db:"accuracy"`
	AverageTimePerQuestion float64 `json:"averageTimePerQuestion" db:"average_time_per_question"`
}

// Answer is one question outcome inside a session
type Answer struct {
	QuestionID       string `json:"questionId"`
	ProvidedAnswer   string `json:"providedAnswer"`
	CorrectAnswer    string `json:"correctAnswer"`
	Correct          bool   `json:"correct"`
	TimeTakenSeconds int    `json:"timeTakenSeconds"`
}

// SessionWithUser is a session joined with its owning user.
// User is nil when the referenced user no longer exists.
type SessionWithUser struct {
	Session GameSession
	User    *User
}
