package reporting

import (
	"strings"
	"time"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models"
	"github.com/MICA1991/financelitracy-quiz/internal/app/models/dto"
)

// ProjectSession flattens a session and its owner into a display row
func ProjectSession(s models.SessionWithUser) dto.SessionRow {
	gs := s.Session
	return dto.SessionRow{
		ID:                     gs.ID.String(),
		StudentName:            FirstNonEmpty(s.User, NameChain),
		StudentIdentifier:      FirstNonEmpty(s.User, IdentifierChain),
		Contact:                FirstNonEmpty(s.User, ContactChain),
		Level:                  gs.Level,
		Score:                  gs.Score,
		TotalQuestions:         gs.TotalQuestions,
		Percentage:             gs.Percentage,
		TimeTakenSeconds:       gs.TimeTakenSeconds,
		Accuracy:               gs.Performance.Accuracy,
		AverageTimePerQuestion: gs.Performance.AverageTimePerQuestion,
		StartTime:              gs.StartTime,
		EndTime:                gs.EndTime,
		CreatedAt:              gs.CreatedAt,
		HasFeedback:            strings.TrimSpace(deref(gs.FeedbackText)) != "",
	}
}

// ProjectSessions keeps the input order; callers rely on the store's sort
func ProjectSessions(sessions []models.SessionWithUser) []dto.SessionRow {
	rows := make([]dto.SessionRow, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, ProjectSession(s))
	}
	return rows
}

// ProjectSessionDetail builds the drill-down view of one session
func ProjectSessionDetail(s models.SessionWithUser) dto.SessionDetail {
	answers := make([]dto.AnswerRow, 0, len(s.Session.Answers))
	for _, a := range s.Session.Answers {
		answers = append(answers, dto.AnswerRow{
			QuestionID:       a.QuestionID,
			ProvidedAnswer:   a.ProvidedAnswer,
			CorrectAnswer:    a.CorrectAnswer,
			Correct:          a.Correct,
			TimeTakenSeconds: a.TimeTakenSeconds,
		})
	}

	return dto.SessionDetail{
		Session:      ProjectSession(s),
		FeedbackText: strings.TrimSpace(deref(s.Session.FeedbackText)),
		Answers:      answers,
		Student:      SummarizeUser(s.User),
	}
}

// SummarizeUser returns the owning user's identity summary, nil for a dangling reference
func SummarizeUser(u *models.User) *dto.UserSummary {
	if u == nil {
		return nil
	}
	createdAt := u.CreatedAt
	summary := &dto.UserSummary{
		ID:          u.ID.String(),
		StudentName: FirstNonEmpty(u, NameChain),
		StudentID:   FirstNonEmpty(u, IdentifierChain),
		Contact:     FirstNonEmpty(u, ContactChain),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
	}
	if !createdAt.Equal(time.Time{}) {
		summary.CreatedAt = &createdAt
	}
	return summary
}

// ProjectStudent flattens a user into a student listing row
func ProjectStudent(u models.User) dto.StudentRow {
	return dto.StudentRow{
		ID:                u.ID.String(),
		StudentName:       FirstNonEmpty(&u, NameChain),
		StudentIdentifier: FirstNonEmpty(&u, IdentifierChain),
		Contact:           FirstNonEmpty(&u, ContactChain),
		IsActive:          u.IsActive,
		CreatedAt:         u.CreatedAt,
		LastLoginAt:       u.LastLoginAt,
	}
}

// ProjectStudents keeps the input order
func ProjectStudents(users []models.User) []dto.StudentRow {
	rows := make([]dto.StudentRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, ProjectStudent(u))
	}
	return rows
}
