package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models"
	"github.com/MICA1991/financelitracy-quiz/internal/app/reporting"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/dberrors"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/logger"
)

// UserRepository reads user records
type UserRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{
		db: db,
		sb: statementBuilder(),
	}
}

var userColumns = []string{
	"u.id", "u.role", "u.student_name", "u.student_id", "u.mobile_number",
	"u.external_auth_email", "u.external_auth_display_name", "u.is_active",
	"u.created_at", "u.last_login_at",
}

var studentSortColumns = map[string]string{
	"createdAt":    "u.created_at",
	"studentName":  "u.student_name",
	"studentId":    "u.student_id",
	"mobileNumber": "u.mobile_number",
	"lastLoginAt":  "u.last_login_at",
}

// activeStudents restricts a query to visible student accounts
func activeStudents() squirrel.Eq {
	return squirrel.Eq{"u.role": string(models.RoleStudent), "u.is_active": true}
}

func studentConditions(f reporting.StudentFilter) squirrel.And {
	where := squirrel.And{activeStudents()}
	if f.Search != "" {
		where = append(where, userSearch("u", f.Search))
	}
	return where
}

func (r *UserRepository) listQuery(q reporting.StudentQuery) squirrel.SelectBuilder {
	column, ok := studentSortColumns[q.Sort.Field]
	if !ok {
		column = studentSortColumns[reporting.DefaultSortField]
	}

	sb := r.sb.Select(userColumns...).
		From("users u").
		Where(studentConditions(q.Filter)).
		OrderBy(orderClause(column, q.Sort.Ascending, "u.id")...)
	if q.Page.Limit > 0 {
		sb = sb.Limit(uint64(q.Page.Limit)).Offset(uint64(q.Page.Skip))
	}
	return sb
}

// FindStudents returns one page of active students
func (r *UserRepository) FindStudents(ctx context.Context, q reporting.StudentQuery) ([]models.User, error) {
	query, args, err := r.listQuery(q).ToSql()
	if err != nil {
		return nil, storeError("find_students", err, q.Filter.Shape())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError("find_students", err, q.Filter.Shape())
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storeError("find_students", err, q.Filter.Shape())
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("find_students", err, q.Filter.Shape())
	}
	return users, nil
}

// CountStudents counts active students matching the filter
func (r *UserRepository) CountStudents(ctx context.Context, f reporting.StudentFilter) (int64, error) {
	query, args, err := r.sb.Select("COUNT(*)").From("users u").Where(studentConditions(f)).ToSql()
	if err != nil {
		return 0, storeError("count_students", err, f.Shape())
	}
	return r.count(ctx, "count_students", query, args, f.Shape())
}

// FindUserByID returns a user regardless of role or active flag
func (r *UserRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query, args, err := r.sb.Select(userColumns...).
		From("users u").
		Where(squirrel.Expr("u.id = ?", id)).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, storeError("find_user", err, nil)
	}

	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			logger.Warn().Str("userID", id.String()).Msg("User not found by ID")
			return nil, ErrUserNotFound
		}
		return nil, storeError("find_user", err, nil)
	}
	return u, nil
}

// CountActiveByRole counts active users holding role
func (r *UserRepository) CountActiveByRole(ctx context.Context, role models.RoleType) (int64, error) {
	query, args, err := r.sb.Select("COUNT(*)").
		From("users u").
		Where(squirrel.Eq{"u.role": string(role), "u.is_active": true}).
		ToSql()
	if err != nil {
		return 0, storeError("count_users_by_role", err, nil)
	}
	return r.count(ctx, "count_users_by_role", query, args, map[string]interface{}{"role": string(role)})
}

// CountStudentsCreatedSince counts active students created at or after since
func (r *UserRepository) CountStudentsCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	query, args, err := r.sb.Select("COUNT(*)").
		From("users u").
		Where(squirrel.And{activeStudents(), squirrel.GtOrEq{"u.created_at": since}}).
		ToSql()
	if err != nil {
		return 0, storeError("count_new_students", err, nil)
	}
	return r.count(ctx, "count_new_students", query, args, map[string]interface{}{"since": true})
}

func (r *UserRepository) count(ctx context.Context, op, query string, args []interface{}, shape map[string]interface{}) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, storeError(op, err, shape)
	}
	return total, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		u      models.User
		role   string
		name   *string
		sid    *string
		mobile *string
	)
	err := row.Scan(
		&u.ID, &role, &name, &sid, &mobile,
		&u.ExternalAuthEmail, &u.ExternalAuthDisplayName, &u.IsActive,
		&u.CreatedAt, &u.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = models.RoleType(role)
	u.StudentName = valueOf(name)
	u.StudentID = valueOf(sid)
	u.MobileNumber = valueOf(mobile)
	return &u, nil
}
