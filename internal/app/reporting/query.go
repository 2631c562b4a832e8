package reporting

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/apperrors"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

const dateLayout = "2006-01-02"

// Params are the raw admin listing parameters as they arrive on the query string
type Params struct {
	Page      string `form:"page"`
	Limit     string `form:"limit"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
	Search    string `form:"search"`
	Level     string `form:"level"`
	StudentID string `form:"studentId"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	MinScore  string `form:"minScore"`
	MaxScore  string `form:"maxScore"`
}

// Pagination is a validated page window. Limit 0 means unbounded.
type Pagination struct {
	Page  int
	Limit int
	Skip  int
}

// SessionFilter selects game sessions. Nil bounds are not applied.
type SessionFilter struct {
	Status    models.SessionStatus
	Level     *int
	StudentID *uuid.UUID
	From      *time.Time
	To        *time.Time
	MinScore  *int
	MaxScore  *int
	Search    string
}

// Shape lists which filters are set, without their values, for logging
func (f SessionFilter) Shape() map[string]interface{} {
	return map[string]interface{}{
		"status":    string(f.Status),
		"level":     f.Level != nil,
		"studentId": f.StudentID != nil,
		"from":      f.From != nil,
		"to":        f.To != nil,
		"minScore":  f.MinScore != nil,
		"maxScore":  f.MaxScore != nil,
		"search":    f.Search != "",
	}
}

// SessionQuery is a complete, validated session listing request
type SessionQuery struct {
	Filter SessionFilter
	Sort   SortSpec
	Page   Pagination
}

// Unpaged drops the page window, used for exports
func (q SessionQuery) Unpaged() SessionQuery {
	q.Page = Pagination{}
	return q
}

// StudentFilter selects active students
type StudentFilter struct {
	Search string
}

// Shape lists which filters are set, for logging
func (f StudentFilter) Shape() map[string]interface{} {
	return map[string]interface{}{"search": f.Search != ""}
}

// StudentQuery is a complete, validated student listing request
type StudentQuery struct {
	Filter StudentFilter
	Sort   SortSpec
	Page   Pagination
}

// BuildSessionQuery validates listing parameters for completed game sessions,
// reading plain dates as UTC days.
func BuildSessionQuery(p Params) (SessionQuery, error) {
	return BuildSessionQueryIn(p, time.UTC)
}

// BuildSessionQueryIn is BuildSessionQuery with plain dates taken as calendar days
// in loc, the zone exports render timestamps in. Only a page or limit that is not
// a positive integer is rejected; other malformed values drop the corresponding filter.
func BuildSessionQueryIn(p Params, loc *time.Location) (SessionQuery, error) {
	if loc == nil {
		loc = time.UTC
	}
	page, err := ParsePagination(p.Page, p.Limit)
	if err != nil {
		return SessionQuery{}, err
	}

	filter := SessionFilter{
		Status:   models.SessionStatusCompleted,
		Level:    optionalInt(p.Level),
		MinScore: optionalInt(p.MinScore),
		MaxScore: optionalInt(p.MaxScore),
		From:     optionalTime(p.StartDate, loc, false),
		To:       optionalTime(p.EndDate, loc, true),
		Search:   strings.TrimSpace(p.Search),
	}
	if id, err := uuid.Parse(strings.TrimSpace(p.StudentID)); err == nil {
		filter.StudentID = &id
	}

	return SessionQuery{
		Filter: filter,
		Sort:   ResolveSort(EntitySessions, p.SortBy, p.SortOrder),
		Page:   page,
	}, nil
}

// BuildStudentQuery validates listing parameters for the student listing
func BuildStudentQuery(p Params) (StudentQuery, error) {
	page, err := ParsePagination(p.Page, p.Limit)
	if err != nil {
		return StudentQuery{}, err
	}

	return StudentQuery{
		Filter: StudentFilter{Search: strings.TrimSpace(p.Search)},
		Sort:   ResolveSort(EntityStudents, p.SortBy, p.SortOrder),
		Page:   page,
	}, nil
}

// ParsePagination parses 1-based page and limit. Empty values take the defaults,
// limit is clamped to MaxLimit.
func ParsePagination(pageStr, limitStr string) (Pagination, error) {
	page, err := positiveInt("page", pageStr, DefaultPage)
	if err != nil {
		return Pagination{}, err
	}
	limit, err := positiveInt("limit", limitStr, DefaultLimit)
	if err != nil {
		return Pagination{}, err
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Pagination{
		Page:  page,
		Limit: limit,
		Skip:  (page - 1) * limit,
	}, nil
}

func positiveInt(field, raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("%s must be a positive integer", field)).
			WithDetails(map[string]interface{}{"field": field, "value": raw})
	}
	return n, nil
}

func optionalInt(raw string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &n
}

// optionalTime accepts RFC3339 or a plain date in loc. A plain date used as an
// upper bound covers the whole day.
func optionalTime(raw string, loc *time.Location, endOfDay bool) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return nil
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t
}
