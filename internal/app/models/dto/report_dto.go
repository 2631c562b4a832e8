package dto

import "time"

// OverviewCounts holds the dashboard headline numbers
type OverviewCounts struct {
	TotalStudents  int64 `json:"totalStudents" example:"412"`
	TotalAdmins    int64 `json:"totalAdmins" example:"3"`
	TotalSessions  int64 `json:"totalSessions" example:"2280"`
	TotalQuestions int64 `json:"totalQuestions" example:"150"`
	RecentSessions int64 `json:"recentSessions" example:"96"`
	NewStudents    int64 `json:"newStudents" example:"12"`
}

// DashboardResponse is the admin dashboard payload
type DashboardResponse struct {
	Overview   OverviewCounts `json:"overview"`
	LevelStats []LevelStat    `json:"levelStats"`
}

// LevelStat summarises completed sessions of one level
type LevelStat struct {
	Level               int     `json:"level" example:"1"`
	TotalSessions       int64   `json:"totalSessions" example:"2"`
	AverageScore        float64 `json:"averageScore" example:"7"`
	AveragePercentage   float64 `json:"averagePercentage" example:"70"`
	TotalQuestions      int64   `json:"totalQuestions" example:"20"`
	TotalCorrectAnswers int64   `json:"totalCorrectAnswers" example:"14"`
}

// StudentPerformance summarises one student's completed sessions
type StudentPerformance struct {
	TotalSessions       int64   `json:"totalSessions"`
	TotalQuestions      int64   `json:"totalQuestions"`
	TotalCorrectAnswers int64   `json:"totalCorrectAnswers"`
	AverageScore        float64 `json:"averageScore"`
	AveragePercentage   float64 `json:"averagePercentage"`
	AverageTime         float64 `json:"averageTime"`
	BestScore           int     `json:"bestScore"`
	BestPercentage      float64 `json:"bestPercentage"`
}

// SessionRow is the display-ready projection of a session and its owner
type SessionRow struct {
	ID                     string     `json:"id"`
	StudentName            string     `json:"studentName" example:"Asha Verma"`
	StudentIdentifier      string     `json:"studentIdentifier" example:"FL-2024-001"`
	Contact                string     `json:"contact" example:"asha@example.org"`
	Level                  int        `json:"level"`
	Score                  int        `json:"score"`
	TotalQuestions         int        `json:"totalQuestions"`
	Percentage             float64    `json:"percentage"`
	TimeTakenSeconds       int        `json:"timeTakenSeconds"`
	Accuracy               float64    `json:"accuracy"`
	AverageTimePerQuestion float64    `json:"averageTimePerQuestion"`
	StartTime              *time.Time `json:"startTime,omitempty"`
	EndTime                *time.Time `json:"endTime,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
	HasFeedback            bool       `json:"hasFeedback"`
}

// AnswerRow is one question outcome in the session drill-down
type AnswerRow struct {
	QuestionID       string `json:"questionId"`
	ProvidedAnswer   string `json:"providedAnswer"`
	CorrectAnswer    string `json:"correctAnswer"`
	Correct          bool   `json:"correct"`
	TimeTakenSeconds int    `json:"timeTakenSeconds"`
}

// UserSummary carries the owning user's identity fields
type UserSummary struct {
	ID          string     `json:"id"`
	StudentName string     `json:"studentName"`
	StudentID   string     `json:"studentId"`
	Contact     string     `json:"contact"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// SessionDetail is the single-session drill-down view
type SessionDetail struct {
	Session      SessionRow   `json:"session"`
	FeedbackText string       `json:"feedbackText,omitempty"`
	Answers      []AnswerRow  `json:"answers"`
	Student      *UserSummary `json:"student"`
}

// StudentRow is one entry of the student listing
type StudentRow struct {
	ID                string     `json:"id"`
	StudentName       string     `json:"studentName"`
	StudentIdentifier string     `json:"studentIdentifier"`
	Contact           string     `json:"contact"`
	IsActive          bool       `json:"isActive"`
	CreatedAt         time.Time  `json:"createdAt"`
	LastLoginAt       *time.Time `json:"lastLoginAt,omitempty"`
}

// StudentReport is the per-student drill-down. Performance is null when the
// student has no completed sessions.
type StudentReport struct {
	Student        UserSummary         `json:"student"`
	Performance    *StudentPerformance `json:"performance"`
	RecentSessions []SessionRow        `json:"recentSessions"`
}

// QuestionLevelStat summarises the active question bank for one level
type QuestionLevelStat struct {
	Level                    int     `json:"level"`
	ActiveQuestions          int64   `json:"activeQuestions"`
	TotalUsage               int64   `json:"totalUsage"`
	AverageCorrectAnswerRate float64 `json:"averageCorrectAnswerRate"`
}
