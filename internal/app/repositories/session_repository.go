package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models"
	"github.com/MICA1991/financelitracy-quiz/internal/app/reporting"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/dberrors"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/logger"
)

// SessionRepository reads game sessions joined with their owning users
type SessionRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{
		db: db,
		sb: statementBuilder(),
	}
}

var sessionColumns = []string{
	"gs.id", "gs.student_id", "gs.level", "gs.score", "gs.total_questions",
	"gs.percentage", "gs.time_taken_seconds", "gs.start_time", "gs.end_time",
	"gs.status", "gs.accuracy", "gs.average_time_per_question", "gs.feedback_text",
	"gs.created_at",
	"u.id", "u.role", "u.student_name", "u.student_id", "u.mobile_number",
	"u.external_auth_email", "u.external_auth_display_name", "u.is_active",
	"u.created_at", "u.last_login_at",
}

// sessionSortColumns maps allowed API sort keys to columns
var sessionSortColumns = map[string]string{
	"createdAt":        "gs.created_at",
	"score":            "gs.score",
	"percentage":       "gs.percentage",
	"timeTakenSeconds": "gs.time_taken_seconds",
	"level":            "gs.level",
}

func (r *SessionRepository) from(cols ...string) squirrel.SelectBuilder {
	return r.sb.Select(cols...).
		From("game_sessions gs").
		LeftJoin("users u ON u.id = gs.student_id")
}

// sessionConditions turns a filter into a WHERE clause; all bounds are inclusive.
// Sessions of deactivated users are hidden, sessions whose user row is gone are kept.
func sessionConditions(f reporting.SessionFilter) squirrel.And {
	where := squirrel.And{squirrel.Expr("u.is_active IS NOT FALSE")}
	if f.Status != "" {
		where = append(where, squirrel.Eq{"gs.status": string(f.Status)})
	}
	if f.Level != nil {
		where = append(where, squirrel.Eq{"gs.level": *f.Level})
	}
	if f.StudentID != nil {
		where = append(where, squirrel.Expr("gs.student_id = ?", *f.StudentID))
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"gs.created_at": *f.From})
	}
	if f.To != nil {
		where = append(where, squirrel.LtOrEq{"gs.created_at": *f.To})
	}
	if f.MinScore != nil {
		where = append(where, squirrel.GtOrEq{"gs.score": *f.MinScore})
	}
	if f.MaxScore != nil {
		where = append(where, squirrel.LtOrEq{"gs.score": *f.MaxScore})
	}
	if f.Search != "" {
		where = append(where, userSearch("u", f.Search))
	}
	return where
}

func (r *SessionRepository) listQuery(q reporting.SessionQuery) squirrel.SelectBuilder {
	column, ok := sessionSortColumns[q.Sort.Field]
	if !ok {
		column = sessionSortColumns[reporting.DefaultSortField]
	}

	sb := r.from(sessionColumns...).
		Where(sessionConditions(q.Filter)).
		OrderBy(orderClause(column, q.Sort.Ascending, "gs.id")...)
	if q.Page.Limit > 0 {
		sb = sb.Limit(uint64(q.Page.Limit)).Offset(uint64(q.Page.Skip))
	}
	return sb
}

// FindSessions returns one page of sessions in the requested order.
// A zero limit returns every matching session.
func (r *SessionRepository) FindSessions(ctx context.Context, q reporting.SessionQuery) ([]models.SessionWithUser, error) {
	query, args, err := r.listQuery(q).ToSql()
	if err != nil {
		return nil, storeError("find_sessions", err, q.Filter.Shape())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError("find_sessions", err, q.Filter.Shape())
	}
	defer rows.Close()

	sessions := make([]models.SessionWithUser, 0)
	for rows.Next() {
		s, err := scanSessionWithUser(rows)
		if err != nil {
			return nil, storeError("find_sessions", err, q.Filter.Shape())
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("find_sessions", err, q.Filter.Shape())
	}

	logger.Debug().Int("page", q.Page.Page).Int("limit", q.Page.Limit).Int("returned", len(sessions)).Msg("Fetched game sessions")
	return sessions, nil
}

// CountSessions counts sessions matching the filter
func (r *SessionRepository) CountSessions(ctx context.Context, f reporting.SessionFilter) (int64, error) {
	query, args, err := r.from("COUNT(*)").Where(sessionConditions(f)).ToSql()
	if err != nil {
		return 0, storeError("count_sessions", err, f.Shape())
	}

	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, storeError("count_sessions", err, f.Shape())
	}
	return total, nil
}

// AggregateLevels groups matching sessions by level
func (r *SessionRepository) AggregateLevels(ctx context.Context, f reporting.SessionFilter) ([]reporting.LevelAggregate, error) {
	query, args, err := r.from(
		"gs.level",
		"COUNT(*)",
		"COALESCE(SUM(gs.score), 0)",
		"COALESCE(SUM(gs.percentage), 0)",
		"COALESCE(SUM(gs.total_questions), 0)",
	).
		Where(sessionConditions(f)).
		GroupBy("gs.level").
		OrderBy("gs.level ASC").
		ToSql()
	if err != nil {
		return nil, storeError("aggregate_levels", err, f.Shape())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError("aggregate_levels", err, f.Shape())
	}
	defer rows.Close()

	groups := make([]reporting.LevelAggregate, 0)
	for rows.Next() {
		var g reporting.LevelAggregate
		if err := rows.Scan(&g.Level, &g.Sessions, &g.SumScore, &g.SumPercentage, &g.SumQuestions); err != nil {
			return nil, storeError("aggregate_levels", err, f.Shape())
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("aggregate_levels", err, f.Shape())
	}
	return groups, nil
}

// AggregateStudent folds every matching session into one aggregate row
func (r *SessionRepository) AggregateStudent(ctx context.Context, f reporting.SessionFilter) (reporting.StudentAggregate, error) {
	var a reporting.StudentAggregate

	query, args, err := r.from(
		"COUNT(*)",
		"COALESCE(SUM(gs.score), 0)",
		"COALESCE(SUM(gs.percentage), 0)",
		"COALESCE(SUM(gs.total_questions), 0)",
		"COALESCE(SUM(gs.time_taken_seconds), 0)",
		"COALESCE(MAX(gs.score), 0)",
		"COALESCE(MAX(gs.percentage), 0)",
	).Where(sessionConditions(f)).ToSql()
	if err != nil {
		return a, storeError("aggregate_student", err, f.Shape())
	}

	err = r.db.QueryRow(ctx, query, args...).Scan(
		&a.Sessions, &a.SumScore, &a.SumPercentage, &a.SumQuestions,
		&a.SumTimeSeconds, &a.BestScore, &a.BestPercentage,
	)
	if err != nil {
		return reporting.StudentAggregate{}, storeError("aggregate_student", err, f.Shape())
	}
	return a, nil
}

// FindSessionByID returns a single session with its answers, whatever its status
func (r *SessionRepository) FindSessionByID(ctx context.Context, id uuid.UUID) (*models.SessionWithUser, error) {
	cols := append(append([]string{}, sessionColumns...), "COALESCE(gs.answers, '[]'::jsonb)")
	query, args, err := r.from(cols...).Where(squirrel.Expr("gs.id = ?", id)).Limit(1).ToSql()
	if err != nil {
		return nil, storeError("find_session", err, nil)
	}

	var answers []models.Answer
	s, err := scanSessionWithUser(r.db.QueryRow(ctx, query, args...), &answers)
	if err != nil {
		if dberrors.IsNoRows(err) {
			logger.Warn().Str("sessionID", id.String()).Msg("Game session not found by ID")
			return nil, ErrSessionNotFound
		}
		return nil, storeError("find_session", err, nil)
	}
	s.Session.Answers = answers
	return &s, nil
}

// scanSessionWithUser reads one sessionColumns row. Extra destinations are
// scanned after the fixed columns.
func scanSessionWithUser(row pgx.Row, extra ...any) (models.SessionWithUser, error) {
	var (
		s       models.GameSession
		status  string
		userID  pgtype.UUID
		role    *string
		name    *string
		sid     *string
		mobile  *string
		email   *string
		display *string
		active  *bool
		created *time.Time
		login   *time.Time
	)

	dest := []any{
		&s.ID, &s.StudentID, &s.Level, &s.Score, &s.TotalQuestions,
		&s.Percentage, &s.TimeTakenSeconds, &s.StartTime, &s.EndTime,
		&status, &s.Performance.Accuracy, &s.Performance.AverageTimePerQuestion, &s.FeedbackText,
		&s.CreatedAt,
		&userID, &role, &name, &sid, &mobile, &email, &display, &active, &created, &login,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return models.SessionWithUser{}, err
	}
	s.Status = models.SessionStatus(status)

	out := models.SessionWithUser{Session: s}
	if userID.Valid {
		u := &models.User{
			ID:                      uuid.UUID(userID.Bytes),
			StudentName:             valueOf(name),
			StudentID:               valueOf(sid),
			MobileNumber:            valueOf(mobile),
			ExternalAuthEmail:       email,
			ExternalAuthDisplayName: display,
			LastLoginAt:             login,
		}
		if role != nil {
			u.Role = models.RoleType(*role)
		}
		if active != nil {
			u.IsActive = *active
		}
		if created != nil {
			u.CreatedAt = *created
		}
		out.User = u
	}
	return out, nil
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
