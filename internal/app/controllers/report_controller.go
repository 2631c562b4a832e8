package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models/dto"
	"github.com/MICA1991/financelitracy-quiz/internal/app/reporting"
	"github.com/MICA1991/financelitracy-quiz/internal/app/services"
	"github.com/MICA1991/financelitracy-quiz/internal/middleware"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/apperrors"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/logger"
)

// ReportController serves the admin reporting endpoints
type ReportController struct {
	reportService services.ReportService
	// location is the zone plain startDate/endDate values are read in
	location *time.Location
}

// NewReportController creates a new ReportController. A nil location reads dates as UTC.
func NewReportController(reportService services.ReportService, location *time.Location) *ReportController {
	if location == nil {
		location = time.UTC
	}
	return &ReportController{reportService: reportService, location: location}
}

// GetDashboard handles the admin dashboard overview
// @Summary Get dashboard statistics
// @Description Returns overview counts for the last 7 days and per-level statistics over completed sessions
// @Tags admin-reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=dto.DashboardResponse} "Dashboard retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/dashboard [get]
func (c *ReportController) GetDashboard(ctx *gin.Context) {
	dashboard, err := c.reportService.GetDashboard(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dashboard, "Dashboard retrieved successfully"))
}

// GetLevelStats handles per-level statistics
// @Summary Get level statistics
// @Description Groups completed sessions by level, ascending
// @Tags admin-reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=[]dto.LevelStat} "Level statistics retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/stats/levels [get]
func (c *ReportController) GetLevelStats(ctx *gin.Context) {
	stats, err := c.reportService.GetLevelStats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(stats, "Level statistics retrieved successfully"))
}

// GetQuestionStats handles question bank statistics
// @Summary Get question statistics
// @Description Summarizes active questions per level with usage and correct answer rate
// @Tags admin-reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StructuredResponse{data=[]dto.QuestionLevelStat} "Question statistics retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/stats/questions [get]
func (c *ReportController) GetQuestionStats(ctx *gin.Context) {
	stats, err := c.reportService.GetQuestionStats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(stats, "Question statistics retrieved successfully"))
}

// ListSessions handles the paginated completed session listing
// @Summary List game sessions
// @Description Lists completed game sessions with filtering, search, sorting and pagination
// @Tags admin-reports
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 20, max: 100)"
// @Param sortBy query string false "Sort field (createdAt, score, percentage, timeTakenSeconds, level)"
// @Param sortOrder query string false "Sort order (asc, desc)"
// @Param search query string false "Case-insensitive match on student name, id, mobile, email or display name"
// @Param level query int false "Filter by level"
// @Param studentId query string false "Filter by student UUID"
// @Param startDate query string false "Created on or after (YYYY-MM-DD or RFC3339)"
// @Param endDate query string false "Created on or before (YYYY-MM-DD or RFC3339)"
// @Param minScore query int false "Minimum score"
// @Param maxScore query int false "Maximum score"
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse[dto.SessionRow]} "Sessions retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid pagination parameters"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/sessions [get]
func (c *ReportController) ListSessions(ctx *gin.Context) {
	var params reporting.Params
	if err := ctx.ShouldBindQuery(&params); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("Invalid query parameters"))
		return
	}

	query, err := reporting.BuildSessionQueryIn(params, c.location)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, err := c.reportService.ListSessions(ctx.Request.Context(), query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(page, "Sessions retrieved successfully"))
}

// GetSessionDetail handles a single session drill-down
// @Summary Get game session details
// @Description Returns one session of any status with its answers and owner summary
// @Tags admin-reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session UUID"
// @Success 200 {object} dto.StructuredResponse{data=dto.SessionDetail} "Session retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid session ID"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/sessions/{id} [get]
func (c *ReportController) GetSessionDetail(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id", "session")
	if !ok {
		return
	}

	detail, err := c.reportService.GetSessionDetail(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(detail, "Session retrieved successfully"))
}

// ListStudents handles the paginated active student listing
// @Summary List students
// @Description Lists active students with search, sorting and pagination
// @Tags admin-reports
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 20, max: 100)"
// @Param sortBy query string false "Sort field (createdAt, studentName, studentId, mobileNumber, lastLoginAt)"
// @Param sortOrder query string false "Sort order (asc, desc)"
// @Param search query string false "Case-insensitive match on student name, id, mobile, email or display name"
// @Success 200 {object} dto.StructuredResponse{data=dto.PaginatedResponse[dto.StudentRow]} "Students retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid pagination parameters"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/students [get]
func (c *ReportController) ListStudents(ctx *gin.Context) {
	var params reporting.Params
	if err := ctx.ShouldBindQuery(&params); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("Invalid query parameters"))
		return
	}

	query, err := reporting.BuildStudentQuery(params)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, err := c.reportService.ListStudents(ctx.Request.Context(), query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(page, "Students retrieved successfully"))
}

// GetStudentReport handles the per-student performance report
// @Summary Get student report
// @Description Returns a student's profile, aggregate performance and latest completed sessions
// @Tags admin-reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student UUID"
// @Success 200 {object} dto.StructuredResponse{data=dto.StudentReport} "Student report retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/students/{id} [get]
func (c *ReportController) GetStudentReport(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id", "student")
	if !ok {
		return
	}

	report, err := c.reportService.GetStudentReport(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(report, "Student report retrieved successfully"))
}

// ExportSessions handles the spreadsheet download of completed sessions
// @Summary Export game sessions
// @Description Downloads every completed session matching the filters as an xlsx workbook. Pagination parameters are ignored.
// @Tags admin-reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param sortBy query string false "Sort field"
// @Param sortOrder query string false "Sort order (asc, desc)"
// @Param search query string false "Search term"
// @Param level query int false "Filter by level"
// @Param studentId query string false "Filter by student UUID"
// @Param startDate query string false "Created on or after"
// @Param endDate query string false "Created on or before"
// @Param minScore query int false "Minimum score"
// @Param maxScore query int false "Maximum score"
// @Success 200 {file} file "Spreadsheet"
// @Failure 400 {object} dto.ErrorResponse "Too many matching sessions"
// @Failure 500 {object} dto.ErrorResponse "Export failed"
// @Router /admin/export/sessions [get]
func (c *ReportController) ExportSessions(ctx *gin.Context) {
	var params reporting.Params
	if err := ctx.ShouldBindQuery(&params); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("Invalid query parameters"))
		return
	}
	params.Page, params.Limit = "", ""

	query, err := reporting.BuildSessionQueryIn(params, c.location)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	// nothing is written until the whole document rendered
	doc, err := c.reportService.ExportSessions(ctx.Request.Context(), query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	logger.Info().
		Str("userID", ctx.GetString(middleware.UserIDKey)).
		Int("rows", doc.Rows).
		Interface("filter", query.Filter.Shape()).
		Msg("Session export downloaded")

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	ctx.Header("Content-Length", fmt.Sprint(len(doc.Content)))
	ctx.Data(http.StatusOK, doc.ContentType, doc.Content)
}

func parseUUIDParam(ctx *gin.Context, name, entity string) (uuid.UUID, bool) {
	raw := ctx.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError(fmt.Sprintf("Invalid %s ID", entity)).
			WithDetails(map[string]interface{}{"field": name, "value": raw}))
		return uuid.Nil, false
	}
	return id, true
}
