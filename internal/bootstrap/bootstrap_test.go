package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models"
	"github.com/MICA1991/financelitracy-quiz/internal/config"
	"github.com/MICA1991/financelitracy-quiz/internal/middleware"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  mode: test
  allowed_origins: ["https://admin.example.org"]
jwt:
  secret: bootstrap-secret
  issuer: financelitracy
export:
  timezone: Asia/Kolkata
`), 0o600))
	t.Setenv(ConfigPathEnv, path)

	cfg, _, err := LoadConfigAndSetupLogger()
	require.NoError(t, err)
	return cfg
}

func TestExporterConfig(t *testing.T) {
	cfg := testConfig(t)

	ec := ExporterConfig(cfg)
	assert.Equal(t, "Game Sessions", ec.SheetName)
	assert.Equal(t, "game_sessions_export", ec.FilenamePrefix)
	assert.Equal(t, "Asia/Kolkata", ec.Location.String())
}

func TestRouter(t *testing.T) {
	cfg := testConfig(t)
	deps, err := BuildDependencies(cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	router := SetupRouter(cfg, deps, zerolog.Nop())

	t.Run("health is public", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("admin requires a token", func(t *testing.T) {
		for _, path := range []string{
			"/api/v1/admin/dashboard",
			"/api/v1/admin/stats/levels",
			"/api/v1/admin/stats/questions",
			"/api/v1/admin/sessions",
			"/api/v1/admin/sessions/" + uuid.NewString(),
			"/api/v1/admin/students",
			"/api/v1/admin/students/" + uuid.NewString(),
			"/api/v1/admin/export/sessions",
		} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		}
	})

	t.Run("students are forbidden", func(t *testing.T) {
		token, err := deps.JWTService.GenerateAccessToken(uuid.New(), "s@example.org", models.RoleStudent)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin reaches validation before the store", func(t *testing.T) {
		token, err := deps.JWTService.GenerateAccessToken(uuid.New(), "a@example.org", models.RoleAdmin)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/sessions?limit=-1", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/admin/export/sessions", nil)
		req.Header.Set("Origin", "https://admin.example.org")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://admin.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestNewJWTService(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWT.AccessTokenExpiration = "not-a-duration"

	jwt := NewJWTService(cfg)
	id := uuid.New()
	token, err := jwt.GenerateAccessToken(id, "a@example.org", models.RoleAdmin)
	require.NoError(t, err)

	claims, err := jwt.ValidateAndExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}
