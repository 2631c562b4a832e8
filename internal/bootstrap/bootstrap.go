package bootstrap

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/MICA1991/financelitracy-quiz/internal/app/controllers"
	"github.com/MICA1991/financelitracy-quiz/internal/app/reporting"
	appRepos "github.com/MICA1991/financelitracy-quiz/internal/app/repositories"
	appRoutes "github.com/MICA1991/financelitracy-quiz/internal/app/routes"
	appServices "github.com/MICA1991/financelitracy-quiz/internal/app/services"
	"github.com/MICA1991/financelitracy-quiz/internal/config"
	"github.com/MICA1991/financelitracy-quiz/internal/db"
	appMiddleware "github.com/MICA1991/financelitracy-quiz/internal/middleware"
	pkgAuth "github.com/MICA1991/financelitracy-quiz/internal/pkg/auth"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/helpers"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/logger"
)

// ConfigPathEnv overrides the default config file location
const ConfigPathEnv = "CONFIG_PATH"

// Dependencies holds all the application dependencies
type Dependencies struct {
	ReportService    appServices.ReportService // Interface type
	ReportController *appControllers.ReportController
	HealthController *appControllers.HealthController
	AuthMiddleware   *appMiddleware.AuthMiddleware
	Repos            *appRepos.Repositories
	JWTService       *pkgAuth.JWTService
	Logger           zerolog.Logger
}

// ConfigPath returns the config file to load, configs/config.yaml unless overridden
func ConfigPath() string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p
	}
	return filepath.Join("configs", "config.yaml")
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(ConfigPath())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger // Get the configured global logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection. The schema is owned by
// the quiz application; reporting never migrates it.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database.Pool, nil
}

// ExporterConfig maps the export section of the config onto the exporter
func ExporterConfig(cfg *config.Config) reporting.ExporterConfig {
	return reporting.ExporterConfig{
		SheetName:      cfg.Export.SheetName,
		FilenamePrefix: cfg.Export.FilenamePrefix,
		Location:       cfg.ExportLocation(),
	}
}

// NewJWTService builds the token validator from the JWT config section
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
}

// BuildDependencies initializes application repositories, services, and controllers.
// dbPool may be nil only in tests that replace the stores.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)
	deps.JWTService = NewJWTService(cfg)

	deps.ReportService = appServices.NewReportService(
		deps.Repos.SessionRepository,
		deps.Repos.UserRepository,
		deps.Repos.QuestionRepository,
		reporting.NewExporter(ExporterConfig(cfg)),
		appServices.ReportOptions{MaxExportRows: cfg.Export.MaxRows},
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.ReportController = appControllers.NewReportController(deps.ReportService, cfg.ExportLocation())
	deps.HealthController = appControllers.NewHealthController(pinger(dbPool))

	return deps, nil
}

func pinger(pool *pgxpool.Pool) appControllers.Pinger {
	if pool == nil {
		return nil
	}
	return pool
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else if cfg.Server.Mode == "test" {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", appMiddleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", "Content-Length", appMiddleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	appRoutes.SetupRouter(router,
		deps.HealthController,
		deps.ReportController,
		deps.AuthMiddleware,
	)

	return router
}
