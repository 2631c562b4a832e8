package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/MICA1991/financelitracy-quiz/internal/pkg/apperrors"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/dberrors"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/logger"
)

// Lookup errors shared by every store implementation
var (
	ErrSessionNotFound = errors.New("game session not found")
	ErrUserNotFound    = errors.New("user not found")
)

// DBTX is the subset of pgxpool.Pool used by the repositories
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories holds all the repository instances
type Repositories struct {
	SessionRepository  *SessionRepository
	UserRepository     *UserRepository
	QuestionRepository *QuestionRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db DBTX) *Repositories {
	return &Repositories{
		SessionRepository:  NewSessionRepository(db),
		UserRepository:     NewUserRepository(db),
		QuestionRepository: NewQuestionRepository(db),
	}
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// storeError logs a failed store call with its operation and filter shape, then wraps it
func storeError(op string, err error, shape map[string]interface{}) error {
	event := logger.Error().Err(err).Str("operation", op).Str("class", dberrors.Classify(err))
	if shape != nil {
		event = event.Interface("filter", shape)
	}
	event.Msg("Record store operation failed")
	return apperrors.NewStoreError(op, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching term literally anywhere in a value
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// userSearch ORs a case-insensitive substring match over the user text columns
func userSearch(alias, term string) squirrel.Sqlizer {
	pattern := containsPattern(term)
	cols := []string{"student_name", "student_id", "mobile_number", "external_auth_email", "external_auth_display_name"}
	or := squirrel.Or{}
	for _, c := range cols {
		or = append(or, squirrel.ILike{alias + "." + c: pattern})
	}
	return or
}

func orderClause(column string, ascending bool, tiebreak string) []string {
	dir := "DESC"
	if ascending {
		dir = "ASC"
	}
	return []string{column + " " + dir, tiebreak + " " + dir}
}
