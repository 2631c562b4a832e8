package reporting

import (
	"sort"
	"time"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models"
	"github.com/MICA1991/financelitracy-quiz/internal/app/models/dto"
)

// RecentWindow is the look-back used for "recent sessions" and "new students"
const RecentWindow = 7 * 24 * time.Hour

// RecentWindowStart returns the inclusive lower bound of the recent window
func RecentWindowStart(now time.Time) time.Time {
	return now.Add(-RecentWindow)
}

// LevelAggregate is the raw group-by-level result a store returns
type LevelAggregate struct {
	Level         int
	Sessions      int64
	SumScore      int64
	SumPercentage float64
	SumQuestions  int64
}

// StudentAggregate is the raw aggregate over one student's completed sessions
type StudentAggregate struct {
	Sessions       int64
	SumScore       int64
	SumPercentage  float64
	SumQuestions   int64
	SumTimeSeconds int64
	BestScore      int
	BestPercentage float64
}

// QuestionAggregate is the raw group-by-level result over active questions
type QuestionAggregate struct {
	Level          int
	Questions      int64
	SumUsage       int64
	SumCorrectRate float64
}

// SummarizeLevels turns store groups into level statistics ordered by level.
// Groups reporting the same level are merged first so every level appears once.
func SummarizeLevels(groups []LevelAggregate) []dto.LevelStat {
	merged := make(map[int]LevelAggregate, len(groups))
	for _, g := range groups {
		m := merged[g.Level]
		m.Level = g.Level
		m.Sessions += g.Sessions
		m.SumScore += g.SumScore
		m.SumPercentage += g.SumPercentage
		m.SumQuestions += g.SumQuestions
		merged[g.Level] = m
	}

	stats := make([]dto.LevelStat, 0, len(merged))
	for _, g := range merged {
		if g.Sessions == 0 {
			continue
		}
		n := float64(g.Sessions)
		stats = append(stats, dto.LevelStat{
			Level:               g.Level,
			TotalSessions:       g.Sessions,
			AverageScore:        float64(g.SumScore) / n,
			AveragePercentage:   g.SumPercentage / n,
			TotalQuestions:      g.SumQuestions,
			TotalCorrectAnswers: g.SumScore,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Level < stats[j].Level })
	return stats
}

// SummarizeStudent returns nil when the student has no completed sessions,
// so callers can tell "never played" from "scored zero".
func SummarizeStudent(a StudentAggregate) *dto.StudentPerformance {
	if a.Sessions == 0 {
		return nil
	}
	n := float64(a.Sessions)
	return &dto.StudentPerformance{
		TotalSessions:       a.Sessions,
		TotalQuestions:      a.SumQuestions,
		TotalCorrectAnswers: a.SumScore,
		AverageScore:        float64(a.SumScore) / n,
		AveragePercentage:   a.SumPercentage / n,
		AverageTime:         float64(a.SumTimeSeconds) / n,
		BestScore:           a.BestScore,
		BestPercentage:      a.BestPercentage,
	}
}

// SummarizeQuestions turns question groups into per-level bank statistics
func SummarizeQuestions(groups []QuestionAggregate) []dto.QuestionLevelStat {
	stats := make([]dto.QuestionLevelStat, 0, len(groups))
	for _, g := range groups {
		if g.Questions == 0 {
			continue
		}
		stats = append(stats, dto.QuestionLevelStat{
			Level:                    g.Level,
			ActiveQuestions:          g.Questions,
			TotalUsage:               g.SumUsage,
			AverageCorrectAnswerRate: g.SumCorrectRate / float64(g.Questions),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Level < stats[j].Level })
	return stats
}

// AccumulateLevels groups sessions by level. Stores without server-side
// grouping use it to produce the same shape a GROUP BY would.
func AccumulateLevels(sessions []models.GameSession) []LevelAggregate {
	byLevel := make(map[int]*LevelAggregate)
	order := make([]int, 0)
	for _, s := range sessions {
		g, ok := byLevel[s.Level]
		if !ok {
			g = &LevelAggregate{Level: s.Level}
			byLevel[s.Level] = g
			order = append(order, s.Level)
		}
		g.Sessions++
		g.SumScore += int64(s.Score)
		g.SumPercentage += s.Percentage
		g.SumQuestions += int64(s.TotalQuestions)
	}

	out := make([]LevelAggregate, 0, len(order))
	for _, level := range order {
		out = append(out, *byLevel[level])
	}
	return out
}

// AccumulateStudent folds one student's sessions into a StudentAggregate
func AccumulateStudent(sessions []models.GameSession) StudentAggregate {
	var a StudentAggregate
	for i, s := range sessions {
		a.Sessions++
		a.SumScore += int64(s.Score)
		a.SumPercentage += s.Percentage
		a.SumQuestions += int64(s.TotalQuestions)
		a.SumTimeSeconds += int64(s.TimeTakenSeconds)
		if i == 0 || s.Score > a.BestScore {
			a.BestScore = s.Score
		}
		if i == 0 || s.Percentage > a.BestPercentage {
			a.BestPercentage = s.Percentage
		}
	}
	return a
}

// AccumulateQuestions groups active questions by level
func AccumulateQuestions(items []models.FinancialItem) []QuestionAggregate {
	byLevel := make(map[int]*QuestionAggregate)
	order := make([]int, 0)
	for _, it := range items {
		if !it.IsActive {
			continue
		}
		g, ok := byLevel[it.Level]
		if !ok {
			g = &QuestionAggregate{Level: it.Level}
			byLevel[it.Level] = g
			order = append(order, it.Level)
		}
		g.Questions++
		g.SumUsage += int64(it.UsageCount)
		g.SumCorrectRate += it.CorrectAnswerRate
	}

	out := make([]QuestionAggregate, 0, len(order))
	for _, level := range order {
		out = append(out, *byLevel[level])
	}
	return out
}
