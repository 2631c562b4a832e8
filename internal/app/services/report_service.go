package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models"
	"github.com/MICA1991/financelitracy-quiz/internal/app/models/dto"
	"github.com/MICA1991/financelitracy-quiz/internal/app/reporting"
	"github.com/MICA1991/financelitracy-quiz/internal/app/repositories"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/apperrors"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/helpers"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/logger"
)

// RecentSessionsLimit is how many sessions a student report lists
const RecentSessionsLimit = 10

// DefaultMaxExportRows bounds a single export when no limit is configured
const DefaultMaxExportRows = 50000

// SessionStore reads game sessions
type SessionStore interface {
	FindSessions(ctx context.Context, q reporting.SessionQuery) ([]models.SessionWithUser, error)
	CountSessions(ctx context.Context, f reporting.SessionFilter) (int64, error)
	AggregateLevels(ctx context.Context, f reporting.SessionFilter) ([]reporting.LevelAggregate, error)
	AggregateStudent(ctx context.Context, f reporting.SessionFilter) (reporting.StudentAggregate, error)
	FindSessionByID(ctx context.Context, id uuid.UUID) (*models.SessionWithUser, error)
}

// UserStore reads user records
type UserStore interface {
	FindStudents(ctx context.Context, q reporting.StudentQuery) ([]models.User, error)
	CountStudents(ctx context.Context, f reporting.StudentFilter) (int64, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CountActiveByRole(ctx context.Context, role models.RoleType) (int64, error)
	CountStudentsCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// QuestionStore reads the question bank
type QuestionStore interface {
	CountActiveQuestions(ctx context.Context) (int64, error)
	AggregateQuestionsByLevel(ctx context.Context) ([]reporting.QuestionAggregate, error)
}

// ReportService defines the admin reporting operations
type ReportService interface {
	GetDashboard(ctx context.Context) (*dto.DashboardResponse, error)
	GetLevelStats(ctx context.Context) ([]dto.LevelStat, error)
	ListSessions(ctx context.Context, q reporting.SessionQuery) (*dto.PaginatedResponse[dto.SessionRow], error)
	GetSessionDetail(ctx context.Context, id uuid.UUID) (*dto.SessionDetail, error)
	ListStudents(ctx context.Context, q reporting.StudentQuery) (*dto.PaginatedResponse[dto.StudentRow], error)
	GetStudentReport(ctx context.Context, id uuid.UUID) (*dto.StudentReport, error)
	GetQuestionStats(ctx context.Context) ([]dto.QuestionLevelStat, error)
	ExportSessions(ctx context.Context, q reporting.SessionQuery) (*reporting.Document, error)
}

// ReportOptions tunes the report service
type ReportOptions struct {
	// MaxExportRows rejects exports larger than this; 0 uses DefaultMaxExportRows
	MaxExportRows int
	// Now overrides the clock, used by tests
	Now func() time.Time
}

type reportServiceImpl struct {
	sessions      SessionStore
	users         UserStore
	questions     QuestionStore
	exporter      *reporting.Exporter
	maxExportRows int
	now           func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(
	sessions SessionStore,
	users UserStore,
	questions QuestionStore,
	exporter *reporting.Exporter,
	opts ReportOptions,
) ReportService {
	if opts.MaxExportRows <= 0 {
		opts.MaxExportRows = DefaultMaxExportRows
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &reportServiceImpl{
		sessions:      sessions,
		users:         users,
		questions:     questions,
		exporter:      exporter,
		maxExportRows: opts.MaxExportRows,
		now:           opts.Now,
	}
}

func completedSessions() reporting.SessionFilter {
	return reporting.SessionFilter{Status: models.SessionStatusCompleted}
}

// GetDashboard runs the overview counts and level grouping concurrently.
// The first failing store call cancels the rest.
func (s *reportServiceImpl) GetDashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	since := reporting.RecentWindowStart(s.now())
	recent := completedSessions()
	recent.From = &since

	var (
		resp   dto.DashboardResponse
		groups []reporting.LevelAggregate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		resp.Overview.TotalStudents, err = s.users.CountActiveByRole(gctx, models.RoleStudent)
		return err
	})
	g.Go(func() (err error) {
		resp.Overview.TotalAdmins, err = s.users.CountActiveByRole(gctx, models.RoleAdmin)
		return err
	})
	g.Go(func() (err error) {
		resp.Overview.TotalSessions, err = s.sessions.CountSessions(gctx, completedSessions())
		return err
	})
	g.Go(func() (err error) {
		resp.Overview.TotalQuestions, err = s.questions.CountActiveQuestions(gctx)
		return err
	})
	g.Go(func() (err error) {
		resp.Overview.RecentSessions, err = s.sessions.CountSessions(gctx, recent)
		return err
	})
	g.Go(func() (err error) {
		resp.Overview.NewStudents, err = s.users.CountStudentsCreatedSince(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		groups, err = s.sessions.AggregateLevels(gctx, completedSessions())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.LevelStats = reporting.SummarizeLevels(groups)
	return &resp, nil
}

// GetLevelStats groups all completed sessions by level
func (s *reportServiceImpl) GetLevelStats(ctx context.Context) ([]dto.LevelStat, error) {
	groups, err := s.sessions.AggregateLevels(ctx, completedSessions())
	if err != nil {
		return nil, err
	}
	return reporting.SummarizeLevels(groups), nil
}

// ListSessions returns one page of projected session rows
func (s *reportServiceImpl) ListSessions(ctx context.Context, q reporting.SessionQuery) (*dto.PaginatedResponse[dto.SessionRow], error) {
	total, err := s.sessions.CountSessions(ctx, q.Filter)
	if err != nil {
		return nil, err
	}

	rows := []dto.SessionRow{}
	if total > 0 {
		sessions, err := s.sessions.FindSessions(ctx, q)
		if err != nil {
			return nil, err
		}
		rows = reporting.ProjectSessions(sessions)
	}

	return &dto.PaginatedResponse[dto.SessionRow]{
		Items:      rows,
		Pagination: helpers.NewPaginationInfo(total, q.Page.Page, q.Page.Limit),
	}, nil
}

// GetSessionDetail returns one session with its answers and owner summary
func (s *reportServiceImpl) GetSessionDetail(ctx context.Context, id uuid.UUID) (*dto.SessionDetail, error) {
	session, err := s.sessions.FindSessionByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, apperrors.NewResourceNotFoundError(apperrors.ErrSessionNotFound, "Game session not found")
		}
		return nil, err
	}

	detail := reporting.ProjectSessionDetail(*session)
	return &detail, nil
}

// ListStudents returns one page of active students
func (s *reportServiceImpl) ListStudents(ctx context.Context, q reporting.StudentQuery) (*dto.PaginatedResponse[dto.StudentRow], error) {
	total, err := s.users.CountStudents(ctx, q.Filter)
	if err != nil {
		return nil, err
	}

	rows := []dto.StudentRow{}
	if total > 0 {
		users, err := s.users.FindStudents(ctx, q)
		if err != nil {
			return nil, err
		}
		rows = reporting.ProjectStudents(users)
	}

	return &dto.PaginatedResponse[dto.StudentRow]{
		Items:      rows,
		Pagination: helpers.NewPaginationInfo(total, q.Page.Page, q.Page.Limit),
	}, nil
}

// GetStudentReport returns a student's summary, performance and latest sessions.
// Admins, unknown ids and deactivated students are all reported as not found.
func (s *reportServiceImpl) GetStudentReport(ctx context.Context, id uuid.UUID) (*dto.StudentReport, error) {
	user, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewResourceNotFoundError(apperrors.ErrStudentNotFound, "Student not found")
		}
		return nil, err
	}
	if user.Role != models.RoleStudent || !user.IsActive {
		logger.Warn().Str("userID", id.String()).Str("role", string(user.Role)).Bool("active", user.IsActive).Msg("Student report requested for non-visible user")
		return nil, apperrors.NewResourceNotFoundError(apperrors.ErrStudentNotFound, "Student not found")
	}

	filter := completedSessions()
	filter.StudentID = &user.ID

	var (
		agg    reporting.StudentAggregate
		recent []models.SessionWithUser
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		agg, err = s.sessions.AggregateStudent(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.sessions.FindSessions(gctx, reporting.SessionQuery{
			Filter: filter,
			Sort:   reporting.SortSpec{Field: reporting.DefaultSortField},
			Page:   reporting.Pagination{Page: 1, Limit: RecentSessionsLimit},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.StudentReport{
		Student:        *reporting.SummarizeUser(user),
		Performance:    reporting.SummarizeStudent(agg),
		RecentSessions: reporting.ProjectSessions(recent),
	}, nil
}

// GetQuestionStats summarizes the active question bank per level
func (s *reportServiceImpl) GetQuestionStats(ctx context.Context) ([]dto.QuestionLevelStat, error) {
	groups, err := s.questions.AggregateQuestionsByLevel(ctx)
	if err != nil {
		return nil, err
	}
	return reporting.SummarizeQuestions(groups), nil
}

// ExportSessions renders every session matching q, ignoring its page window.
// Result sets above the configured row limit are rejected before any rows are read.
func (s *reportServiceImpl) ExportSessions(ctx context.Context, q reporting.SessionQuery) (*reporting.Document, error) {
	q = q.Unpaged()

	total, err := s.sessions.CountSessions(ctx, q.Filter)
	if err != nil {
		return nil, err
	}
	if total > int64(s.maxExportRows) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("export matches %d sessions, more than the limit of %d; narrow the filters", total, s.maxExportRows),
		).WithDetails(map[string]interface{}{"matched": total, "limit": s.maxExportRows})
	}

	sessions, err := s.sessions.FindSessions(ctx, q)
	if err != nil {
		return nil, err
	}

	doc, err := s.exporter.Render(reporting.ProjectSessions(sessions))
	if err != nil {
		logger.Error().Err(err).Int("rows", len(sessions)).Msg("Failed to render session export")
		return nil, err
	}

	logger.Info().Int("rows", doc.Rows).Int("bytes", len(doc.Content)).Str("filename", doc.Filename).Msg("Session export rendered")
	return doc, nil
}
