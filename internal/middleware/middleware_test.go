package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models"
	"github.com/MICA1991/financelitracy-quiz/internal/app/models/dto"
	"github.com/MICA1991/financelitracy-quiz/internal/app/reporting"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/apperrors"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func serveError(err error) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { HandleAPIError(c, err) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w
}

func TestHandleAPIError_Mapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"validation", apperrors.NewValidationError("page must be a positive integer"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"session not found", apperrors.NewResourceNotFoundError(apperrors.ErrSessionNotFound, "Game session not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"expired", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"invalid token", apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"forbidden", apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden},
		{"store", apperrors.NewStoreError("count_sessions", errors.New("conn refused")), http.StatusInternalServerError, dto.ErrorCodeDatabaseError},
		{"export", apperrors.NewExportRenderError(errors.New("sheet name too long")), http.StatusInternalServerError, dto.ErrorCodeExportFailed},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveError(tt.err)
			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestHandleAPIError_ValidationKeepsMessageAndDetails(t *testing.T) {
	err := apperrors.NewValidationError("export too large").
		WithDetails(map[string]interface{}{"limit": 10})

	resp := decodeError(t, serveError(err))
	assert.Equal(t, "export too large", resp.Message)
	assert.Equal(t, map[string]interface{}{"limit": float64(10)}, resp.Error.Details)
}

func TestHandleAPIError_ValidationNamesField(t *testing.T) {
	_, err := reporting.ParsePagination("1", "-5")
	require.Error(t, err)

	resp := decodeError(t, serveError(err))
	assert.Equal(t, "limit", resp.Error.Field)
	assert.Equal(t, "limit must be a positive integer", resp.Message)
}

func TestHandleAPIError_DebugInfo(t *testing.T) {
	err := apperrors.NewStoreError("find_sessions", errors.New("relation does not exist"))

	resp := decodeError(t, serveError(err))
	assert.Equal(t, "Failed to read report data", resp.Message)
	assert.Contains(t, resp.Error.DebugInfo, "relation does not exist")

	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	resp = decodeError(t, serveError(err))
	assert.Empty(t, resp.Error.DebugInfo)
}

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "test",
	})
}

func protectedRouter(jwt *auth.JWTService) *gin.Engine {
	m := NewAuthMiddleware(jwt)
	r := gin.New()
	r.GET("/admin", m.JWTAuth(), m.RoleRequired(models.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UserIDKey))
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	jwt := newTestJWT()
	adminID := uuid.New()
	adminToken, err := jwt.GenerateAccessToken(adminID, "admin@example.org", models.RoleAdmin)
	require.NoError(t, err)
	studentToken, err := jwt.GenerateAccessToken(uuid.New(), "s@example.org", models.RoleStudent)
	require.NoError(t, err)

	expired := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: -time.Minute, TokenIssuer: "test"})
	expiredToken, err := expired.GenerateAccessToken(adminID, "admin@example.org", models.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		code   dto.ErrorCode
	}{
		{"missing header", "", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"expired", "Bearer " + expiredToken, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"student", "Bearer " + studentToken, http.StatusForbidden, dto.ErrorCodeForbidden},
	}

	r := protectedRouter(jwt)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
		})
	}

	t.Run("admin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, adminID.String(), w.Body.String())
	})
}

func TestRoleRequiredWithoutAuth(t *testing.T) {
	r := gin.New()
	r.GET("/x", NewAuthMiddleware(newTestJWT()).RoleRequired(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("reuses incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})
}
