package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models"
)

func sessionFixture(level, score, total int, pct float64, secs int) models.GameSession {
	return models.GameSession{
		Level:            level,
		Score:            score,
		TotalQuestions:   total,
		Percentage:       pct,
		TimeTakenSeconds: secs,
		Status:           models.SessionStatusCompleted,
	}
}

func TestSummarizeLevels_Scenario(t *testing.T) {
	sessions := []models.GameSession{
		sessionFixture(1, 8, 10, 80, 60),
		sessionFixture(1, 6, 10, 60, 90),
	}

	stats := SummarizeLevels(AccumulateLevels(sessions))
	require.Len(t, stats, 1)

	s := stats[0]
	assert.Equal(t, 1, s.Level)
	assert.Equal(t, int64(2), s.TotalSessions)
	assert.InDelta(t, 7.0, s.AverageScore, 1e-9)
	assert.InDelta(t, 70.0, s.AveragePercentage, 1e-9)
	assert.Equal(t, int64(20), s.TotalQuestions)
	assert.Equal(t, int64(14), s.TotalCorrectAnswers)
}

func TestSummarizeLevels_SortedAndUnique(t *testing.T) {
	groups := []LevelAggregate{
		{Level: 3, Sessions: 1, SumScore: 4, SumPercentage: 40, SumQuestions: 10},
		{Level: 1, Sessions: 2, SumScore: 10, SumPercentage: 100, SumQuestions: 20},
		{Level: 3, Sessions: 1, SumScore: 6, SumPercentage: 60, SumQuestions: 10},
		{Level: 2, Sessions: 0},
	}

	stats := SummarizeLevels(groups)
	require.Len(t, stats, 2)
	assert.Equal(t, 1, stats[0].Level)
	assert.Equal(t, 3, stats[1].Level)
	assert.Equal(t, int64(2), stats[1].TotalSessions)
	assert.InDelta(t, 5.0, stats[1].AverageScore, 1e-9)
	assert.InDelta(t, 50.0, stats[1].AveragePercentage, 1e-9)
}

func TestSummarizeLevels_Deterministic(t *testing.T) {
	sessions := []models.GameSession{
		sessionFixture(2, 3, 5, 60, 30),
		sessionFixture(1, 8, 10, 80, 60),
		sessionFixture(3, 9, 10, 90, 45),
		sessionFixture(2, 5, 5, 100, 20),
	}

	first := SummarizeLevels(AccumulateLevels(sessions))
	second := SummarizeLevels(AccumulateLevels(sessions))
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestSummarizeLevels_Empty(t *testing.T) {
	stats := SummarizeLevels(nil)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}

func TestSummarizeStudent_NoSessionsIsNil(t *testing.T) {
	assert.Nil(t, SummarizeStudent(AccumulateStudent(nil)))
}

func TestSummarizeStudent_ZeroScoreIsNotNil(t *testing.T) {
	perf := SummarizeStudent(AccumulateStudent([]models.GameSession{sessionFixture(1, 0, 10, 0, 40)}))
	require.NotNil(t, perf)
	assert.Equal(t, int64(1), perf.TotalSessions)
	assert.Equal(t, 0, perf.BestScore)
	assert.Zero(t, perf.AverageScore)
}

func TestSummarizeStudent_Values(t *testing.T) {
	perf := SummarizeStudent(AccumulateStudent([]models.GameSession{
		sessionFixture(1, 8, 10, 80, 60),
		sessionFixture(2, 6, 10, 60, 90),
		sessionFixture(2, 9, 12, 75, 30),
	}))
	require.NotNil(t, perf)

	assert.Equal(t, int64(3), perf.TotalSessions)
	assert.Equal(t, int64(32), perf.TotalQuestions)
	assert.Equal(t, int64(23), perf.TotalCorrectAnswers)
	assert.InDelta(t, 23.0/3, perf.AverageScore, 1e-9)
	assert.InDelta(t, 215.0/3, perf.AveragePercentage, 1e-9)
	assert.InDelta(t, 60.0, perf.AverageTime, 1e-9)
	assert.Equal(t, 9, perf.BestScore)
	assert.Equal(t, 80.0, perf.BestPercentage)
}

func TestSummarizeQuestions(t *testing.T) {
	items := []models.FinancialItem{
		{Level: 2, UsageCount: 10, CorrectAnswerRate: 0.5, IsActive: true},
		{Level: 1, UsageCount: 4, CorrectAnswerRate: 0.25, IsActive: true},
		{Level: 2, UsageCount: 6, CorrectAnswerRate: 0.75, IsActive: true},
		{Level: 1, UsageCount: 100, CorrectAnswerRate: 1, IsActive: false},
	}

	stats := SummarizeQuestions(AccumulateQuestions(items))
	require.Len(t, stats, 2)
	assert.Equal(t, 1, stats[0].Level)
	assert.Equal(t, int64(1), stats[0].ActiveQuestions)
	assert.Equal(t, int64(4), stats[0].TotalUsage)
	assert.Equal(t, 2, stats[1].Level)
	assert.Equal(t, int64(16), stats[1].TotalUsage)
	assert.InDelta(t, 0.625, stats[1].AverageCorrectAnswerRate, 1e-9)
}

func TestRecentWindowStart(t *testing.T) {
	now := time.Date(2024, 6, 8, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), RecentWindowStart(now))
}
