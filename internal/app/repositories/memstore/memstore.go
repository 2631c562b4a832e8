// Package memstore is an in-memory record store with the same query semantics
// as the Postgres repositories. It backs fixture-driven exports and tests.
package memstore

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models"
	"github.com/MICA1991/financelitracy-quiz/internal/app/reporting"
	"github.com/MICA1991/financelitracy-quiz/internal/app/repositories"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/apperrors"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/helpers"
)

// Store keeps users, sessions and questions in memory
type Store struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]models.User
	sessions  []models.GameSession
	questions []models.FinancialItem
}

// New creates an empty Store
func New() *Store {
	return &Store{users: make(map[uuid.UUID]models.User)}
}

// Fixtures is the JSON document accepted by LoadFixtures
type Fixtures struct {
	Users     []models.User          `json:"users"`
	Sessions  []models.GameSession   `json:"sessions"`
	Questions []models.FinancialItem `json:"questions"`
}

// LoadFixtures decodes a Fixtures document and adds every record in it
func (s *Store) LoadFixtures(r io.Reader) error {
	var fx Fixtures
	if err := json.NewDecoder(r).Decode(&fx); err != nil {
		return fmt.Errorf("failed to decode fixtures: %w", err)
	}
	for _, u := range fx.Users {
		s.AddUser(u)
	}
	for _, gs := range fx.Sessions {
		s.AddSession(gs)
	}
	for _, q := range fx.Questions {
		s.AddQuestion(q)
	}
	return nil
}

// AddUser inserts or replaces a user
func (s *Store) AddUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// AddSession appends a session
func (s *Store) AddSession(gs models.GameSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, gs)
}

// AddQuestion appends a question
func (s *Store) AddQuestion(q models.FinancialItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append(s.questions, q)
}

func (s *Store) owner(id uuid.UUID) *models.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return &u
}

func (s *Store) matchSessions(f reporting.SessionFilter) []models.SessionWithUser {
	out := make([]models.SessionWithUser, 0)
	for _, gs := range s.sessions {
		u := s.owner(gs.StudentID)
		if matchSession(gs, u, f) {
			out = append(out, models.SessionWithUser{Session: gs, User: u})
		}
	}
	return out
}

// matchSession mirrors the SQL WHERE clause, including hiding sessions of deactivated users
func matchSession(gs models.GameSession, u *models.User, f reporting.SessionFilter) bool {
	switch {
	case u != nil && !u.IsActive:
		return false
	case f.Status != "" && gs.Status != f.Status:
		return false
	case f.Level != nil && gs.Level != *f.Level:
		return false
	case f.StudentID != nil && gs.StudentID != *f.StudentID:
		return false
	case f.From != nil && gs.CreatedAt.Before(*f.From):
		return false
	case f.To != nil && gs.CreatedAt.After(*f.To):
		return false
	case f.MinScore != nil && gs.Score < *f.MinScore:
		return false
	case f.MaxScore != nil && gs.Score > *f.MaxScore:
		return false
	case f.Search != "" && !reporting.MatchesSearch(u, f.Search):
		return false
	}
	return true
}

// FindSessions returns one page of matching sessions. A zero limit returns all of them.
func (s *Store) FindSessions(ctx context.Context, q reporting.SessionQuery) ([]models.SessionWithUser, error) {
	if err := alive(ctx, "find_sessions"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.matchSessions(q.Filter)
	less := sessionLess(q.Sort.Field)
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].Session, matched[j].Session
		if q.Sort.Ascending {
			return less(a, b)
		}
		return less(b, a)
	})
	return window(matched, q.Page), nil
}

// CountSessions counts matching sessions
func (s *Store) CountSessions(ctx context.Context, f reporting.SessionFilter) (int64, error) {
	if err := alive(ctx, "count_sessions"); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.matchSessions(f))), nil
}

// AggregateLevels groups matching sessions by level
func (s *Store) AggregateLevels(ctx context.Context, f reporting.SessionFilter) ([]reporting.LevelAggregate, error) {
	if err := alive(ctx, "aggregate_levels"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reporting.AccumulateLevels(plain(s.matchSessions(f))), nil
}

// AggregateStudent folds matching sessions into one aggregate
func (s *Store) AggregateStudent(ctx context.Context, f reporting.SessionFilter) (reporting.StudentAggregate, error) {
	if err := alive(ctx, "aggregate_student"); err != nil {
		return reporting.StudentAggregate{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reporting.AccumulateStudent(plain(s.matchSessions(f))), nil
}

// FindSessionByID returns one session regardless of status
func (s *Store) FindSessionByID(ctx context.Context, id uuid.UUID) (*models.SessionWithUser, error) {
	if err := alive(ctx, "find_session"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, gs := range s.sessions {
		if gs.ID == id {
			return &models.SessionWithUser{Session: gs, User: s.owner(gs.StudentID)}, nil
		}
	}
	return nil, repositories.ErrSessionNotFound
}

func (s *Store) matchStudents(f reporting.StudentFilter) []models.User {
	out := make([]models.User, 0)
	for _, u := range s.users {
		if u.Role != models.RoleStudent || !u.IsActive {
			continue
		}
		if !reporting.MatchesSearch(&u, f.Search) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// FindStudents returns one page of active students
func (s *Store) FindStudents(ctx context.Context, q reporting.StudentQuery) ([]models.User, error) {
	if err := alive(ctx, "find_students"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.matchStudents(q.Filter)
	less := userLess(q.Sort.Field)
	sort.Slice(matched, func(i, j int) bool {
		if q.Sort.Ascending {
			return less(matched[i], matched[j])
		}
		return less(matched[j], matched[i])
	})
	return window(matched, q.Page), nil
}

// CountStudents counts active students matching the filter
func (s *Store) CountStudents(ctx context.Context, f reporting.StudentFilter) (int64, error) {
	if err := alive(ctx, "count_students"); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.matchStudents(f))), nil
}

// FindUserByID returns a user regardless of role or active flag
func (s *Store) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := alive(ctx, "find_user"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u := s.owner(id); u != nil {
		return u, nil
	}
	return nil, repositories.ErrUserNotFound
}

// CountActiveByRole counts active users holding role
func (s *Store) CountActiveByRole(ctx context.Context, role models.RoleType) (int64, error) {
	if err := alive(ctx, "count_users_by_role"); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, u := range s.users {
		if u.Role == role && u.IsActive {
			n++
		}
	}
	return n, nil
}

// CountStudentsCreatedSince counts active students created at or after since
func (s *Store) CountStudentsCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	if err := alive(ctx, "count_new_students"); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, u := range s.matchStudents(reporting.StudentFilter{}) {
		if !u.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// CountActiveQuestions counts questions that are not soft-deleted
func (s *Store) CountActiveQuestions(ctx context.Context) (int64, error) {
	if err := alive(ctx, "count_questions"); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, q := range s.questions {
		if q.IsActive {
			n++
		}
	}
	return n, nil
}

// AggregateQuestionsByLevel groups active questions by level
func (s *Store) AggregateQuestionsByLevel(ctx context.Context) ([]reporting.QuestionAggregate, error) {
	if err := alive(ctx, "aggregate_questions"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return reporting.AccumulateQuestions(s.questions), nil
}

// alive reports a cancelled or expired context the way the Postgres store does
func alive(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewStoreError(op, err)
	}
	return nil
}

func plain(in []models.SessionWithUser) []models.GameSession {
	out := make([]models.GameSession, 0, len(in))
	for _, s := range in {
		out = append(out, s.Session)
	}
	return out
}

func window[T any](items []T, p reporting.Pagination) []T {
	start, end := helpers.CalculateSliceIndices(p.Page, p.Limit, len(items))
	return items[start:end]
}

func idLess(a, b uuid.UUID) bool {
	return strings.Compare(a.String(), b.String()) < 0
}

// sessionLess orders by the sort key, then by id like the SQL tiebreak
func sessionLess(field string) func(a, b models.GameSession) bool {
	var key func(a, b models.GameSession) int
	switch field {
	case "score":
		key = func(a, b models.GameSession) int { return cmp.Compare(a.Score, b.Score) }
	case "percentage":
		key = func(a, b models.GameSession) int { return cmp.Compare(a.Percentage, b.Percentage) }
	case "timeTakenSeconds":
		key = func(a, b models.GameSession) int { return cmp.Compare(a.TimeTakenSeconds, b.TimeTakenSeconds) }
	case "level":
		key = func(a, b models.GameSession) int { return cmp.Compare(a.Level, b.Level) }
	default:
		key = func(a, b models.GameSession) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	return func(a, b models.GameSession) bool {
		if c := key(a, b); c != 0 {
			return c < 0
		}
		return idLess(a.ID, b.ID)
	}
}

// userLess orders by the sort key. Missing login times sort last ascending,
// matching Postgres NULL ordering.
func userLess(field string) func(a, b models.User) bool {
	var key func(a, b models.User) int
	switch field {
	case "studentName":
		key = func(a, b models.User) int { return strings.Compare(a.StudentName, b.StudentName) }
	case "studentId":
		key = func(a, b models.User) int { return strings.Compare(a.StudentID, b.StudentID) }
	case "mobileNumber":
		key = func(a, b models.User) int { return strings.Compare(a.MobileNumber, b.MobileNumber) }
	case "lastLoginAt":
		key = func(a, b models.User) int { return cmpOptionalTime(a.LastLoginAt, b.LastLoginAt) }
	default:
		key = func(a, b models.User) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	return func(a, b models.User) bool {
		if c := key(a, b); c != 0 {
			return c < 0
		}
		return idLess(a.ID, b.ID)
	}
}

func cmpOptionalTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}
