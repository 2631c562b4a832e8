package reporting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models"
)

func strPtr(s string) *string { return &s }

func TestFirstNonEmpty_NameChain(t *testing.T) {
	cases := []struct {
		name string
		user *models.User
		want string
	}{
		{"external wins", &models.User{StudentName: "Legacy", ExternalAuthDisplayName: strPtr("Asha Verma")}, "Asha Verma"},
		{"blank external falls through", &models.User{StudentName: "Legacy", ExternalAuthDisplayName: strPtr("   ")}, "Legacy"},
		{"nil external falls through", &models.User{StudentName: "Legacy"}, "Legacy"},
		{"nothing set", &models.User{}, NotAvailable},
		{"no user", nil, NotAvailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FirstNonEmpty(tc.user, NameChain))
		})
	}
}

func TestFirstNonEmpty_ContactChain(t *testing.T) {
	u := &models.User{MobileNumber: "9876543210"}
	assert.Equal(t, "9876543210", FirstNonEmpty(u, ContactChain))

	u.ExternalAuthEmail = strPtr("asha@example.org")
	assert.Equal(t, "asha@example.org", FirstNonEmpty(u, ContactChain))

	assert.Equal(t, NotAvailable, FirstNonEmpty(&models.User{}, ContactChain))
}

func TestFirstNonEmpty_CustomChain(t *testing.T) {
	chain := []UserField{
		func(*models.User) string { return "" },
		func(*models.User) string { return "second" },
		func(*models.User) string { return "third" },
	}
	assert.Equal(t, "second", FirstNonEmpty(&models.User{}, chain))
	assert.Equal(t, NotAvailable, FirstNonEmpty(&models.User{}, nil))
}

func TestProjectSession(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Minute)
	id := uuid.New()

	row := ProjectSession(models.SessionWithUser{
		Session: models.GameSession{
			ID:               id,
			Level:            2,
			Score:            7,
			TotalQuestions:   10,
			Percentage:       70,
			TimeTakenSeconds: 120,
			StartTime:        &start,
			EndTime:          &end,
			Performance:      models.Performance{Accuracy: 70, AverageTimePerQuestion: 12},
			FeedbackText:     strPtr("great quiz"),
		},
		User: &models.User{StudentName: "Ravi", StudentID: "FL-7", MobileNumber: "555"},
	})

	assert.Equal(t, id.String(), row.ID)
	assert.Equal(t, "Ravi", row.StudentName)
	assert.Equal(t, "FL-7", row.StudentIdentifier)
	assert.Equal(t, "555", row.Contact)
	assert.Equal(t, 2, row.Level)
	assert.Equal(t, 7, row.Score)
	assert.Equal(t, 10, row.TotalQuestions)
	assert.Equal(t, 70.0, row.Percentage)
	assert.Equal(t, 120, row.TimeTakenSeconds)
	assert.Equal(t, 70.0, row.Accuracy)
	assert.Equal(t, 12.0, row.AverageTimePerQuestion)
	assert.True(t, row.HasFeedback)
}

func TestProjectSession_DanglingUserAndBlankFeedback(t *testing.T) {
	row := ProjectSession(models.SessionWithUser{
		Session: models.GameSession{FeedbackText: strPtr("  ")},
	})

	assert.Equal(t, NotAvailable, row.StudentName)
	assert.Equal(t, NotAvailable, row.StudentIdentifier)
	assert.Equal(t, NotAvailable, row.Contact)
	assert.False(t, row.HasFeedback)
}

func TestProjectSessions_KeepsOrder(t *testing.T) {
	in := []models.SessionWithUser{
		{Session: models.GameSession{Score: 3}},
		{Session: models.GameSession{Score: 9}},
		{Session: models.GameSession{Score: 1}},
	}

	rows := ProjectSessions(in)
	require.Len(t, rows, 3)
	assert.Equal(t, []int{3, 9, 1}, []int{rows[0].Score, rows[1].Score, rows[2].Score})
}

func TestProjectSessionDetail(t *testing.T) {
	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	detail := ProjectSessionDetail(models.SessionWithUser{
		Session: models.GameSession{
			Score:        1,
			FeedbackText: strPtr(" Loved it "),
			Answers: []models.Answer{
				{QuestionID: "q1", ProvidedAnswer: "Asset", CorrectAnswer: "Asset", Correct: true, TimeTakenSeconds: 5},
				{QuestionID: "q2", ProvidedAnswer: "Liability", CorrectAnswer: "Equity", TimeTakenSeconds: 9},
			},
		},
		User: &models.User{ID: uuid.New(), StudentName: "Meera", IsActive: true, CreatedAt: created},
	})

	assert.Equal(t, "Loved it", detail.FeedbackText)
	require.Len(t, detail.Answers, 2)
	assert.True(t, detail.Answers[0].Correct)
	assert.Equal(t, "Equity", detail.Answers[1].CorrectAnswer)
	require.NotNil(t, detail.Student)
	assert.Equal(t, "Meera", detail.Student.StudentName)
	require.NotNil(t, detail.Student.CreatedAt)
	assert.Equal(t, created, *detail.Student.CreatedAt)
	assert.True(t, detail.Session.HasFeedback)
}

func TestProjectSessionDetail_NoUser(t *testing.T) {
	detail := ProjectSessionDetail(models.SessionWithUser{})
	assert.Nil(t, detail.Student)
	assert.NotNil(t, detail.Answers)
	assert.Empty(t, detail.Answers)
}

func TestProjectStudent(t *testing.T) {
	row := ProjectStudent(models.User{
		StudentName:       "Old Name",
		StudentID:         "",
		ExternalAuthEmail: strPtr("k@example.org"),
		IsActive:          true,
	})
	assert.Equal(t, "Old Name", row.StudentName)
	assert.Equal(t, NotAvailable, row.StudentIdentifier)
	assert.Equal(t, "k@example.org", row.Contact)
}

func TestMatchesSearch(t *testing.T) {
	u := &models.User{
		StudentName:       "Asha Verma",
		StudentID:         "FL-2024-001",
		MobileNumber:      "9876543210",
		ExternalAuthEmail: strPtr("asha@Example.org"),
	}

	for _, term := range []string{"", "asha", "VERMA", "fl-2024", "98765", "example.ORG", "  asha  "} {
		assert.True(t, MatchesSearch(u, term), "term=%q", term)
	}
	for _, term := range []string{"ravi", "a.*", "%"} {
		assert.False(t, MatchesSearch(u, term), "term=%q", term)
	}
	assert.False(t, MatchesSearch(nil, "asha"))
}
