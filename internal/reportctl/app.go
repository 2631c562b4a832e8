// Package reportctl implements the reportctl command, the operator tool for offline exports,
// quick dashboard checks and minting admin tokens for local testing.
package reportctl

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/MICA1991/financelitracy-quiz/internal/app/models"
	"github.com/MICA1991/financelitracy-quiz/internal/app/reporting"
	"github.com/MICA1991/financelitracy-quiz/internal/app/repositories"
	"github.com/MICA1991/financelitracy-quiz/internal/app/repositories/memstore"
	"github.com/MICA1991/financelitracy-quiz/internal/app/services"
	"github.com/MICA1991/financelitracy-quiz/internal/bootstrap"
	"github.com/MICA1991/financelitracy-quiz/internal/config"
	"github.com/MICA1991/financelitracy-quiz/internal/db"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/logger"
)

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	labelColor = color.New(color.FgCyan)
)

var sourceFlags = []cli.Flag{
	&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: filepath.Join("configs", "config.yaml"), Usage: "config file, used when --fixtures is not set"},
	&cli.StringFlag{Name: "fixtures", Aliases: []string{"f"}, Usage: "read records from a JSON fixtures file instead of Postgres"},
	&cli.StringFlag{Name: "timezone", Usage: "IANA zone for export timestamps, overrides the config"},
	&cli.IntFlag{Name: "max-rows", Usage: "reject exports matching more sessions, overrides the config"},
}

var filterFlags = []cli.Flag{
	&cli.StringFlag{Name: "search", Usage: "case-insensitive match on student fields"},
	&cli.StringFlag{Name: "level"},
	&cli.StringFlag{Name: "student-id", Usage: "student UUID"},
	&cli.StringFlag{Name: "start-date", Usage: "YYYY-MM-DD or RFC3339"},
	&cli.StringFlag{Name: "end-date", Usage: "YYYY-MM-DD or RFC3339, a plain date covers the whole day"},
	&cli.StringFlag{Name: "min-score"},
	&cli.StringFlag{Name: "max-score"},
	&cli.StringFlag{Name: "sort-by", Value: reporting.DefaultSortField},
	&cli.StringFlag{Name: "sort-order", Value: "desc"},
}

// NewApp builds the reportctl command tree writing human output to out
func NewApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "reportctl",
		Usage:     "admin reporting tools for the financial literacy quiz",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "log debug output to stderr"},
		},
		Before: func(c *cli.Context) error {
			level := logger.WarnLevel
			if c.Bool("verbose") {
				level = logger.DebugLevel
			}
			logger.Configure(logger.Config{Level: level, Pretty: true, Output: os.Stderr})
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "export",
				Usage:  "write completed sessions matching the filters to an xlsx file",
				Flags:  append(append([]cli.Flag{&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file or directory", Value: "."}}, sourceFlags...), filterFlags...),
				Action: exportAction,
			},
			{
				Name:   "dashboard",
				Usage:  "print the dashboard overview and level statistics",
				Flags:  sourceFlags,
				Action: dashboardAction,
			},
			{
				Name:  "token",
				Usage: "mint an access token signed with the configured secret",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: filepath.Join("configs", "config.yaml")},
					&cli.StringFlag{Name: "user-id", Usage: "subject UUID, random when empty"},
					&cli.StringFlag{Name: "email", Value: "admin@localhost"},
					&cli.StringFlag{Name: "role", Value: string(models.RoleAdmin)},
				},
				Action: tokenAction,
			},
		},
	}
}

// source is an opened record store plus its teardown
type source struct {
	service services.ReportService
	// location is the export zone, also used to read --start-date and --end-date
	location *time.Location
	close    func()
}

func openSource(c *cli.Context) (*source, error) {
	exporterCfg := reporting.ExporterConfig{}
	opts := services.ReportOptions{}

	var (
		sessions  services.SessionStore
		users     services.UserStore
		questions services.QuestionStore
		closeFn   = func() {}
	)

	if path := c.String("fixtures"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open fixtures: %w", err)
		}
		defer f.Close()

		store := memstore.New()
		if err := store.LoadFixtures(f); err != nil {
			return nil, err
		}
		sessions, users, questions = store, store, store
	} else {
		cfg, err := config.LoadConfig(c.String("config"))
		if err != nil {
			return nil, err
		}
		database, err := db.NewPostgresDB(cfg)
		if err != nil {
			return nil, err
		}
		repos := repositories.NewRepositories(database.Pool)
		sessions, users, questions = repos.SessionRepository, repos.UserRepository, repos.QuestionRepository
		exporterCfg = bootstrap.ExporterConfig(cfg)
		opts.MaxExportRows = cfg.Export.MaxRows
		closeFn = database.Close
	}

	if tz := c.String("timezone"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			closeFn()
			return nil, fmt.Errorf("unknown timezone %q: %w", tz, err)
		}
		exporterCfg.Location = loc
	}
	if n := c.Int("max-rows"); n > 0 {
		opts.MaxExportRows = n
	}

	svc := services.NewReportService(sessions, users, questions, reporting.NewExporter(exporterCfg), opts)
	return &source{service: svc, location: exporterCfg.Location, close: closeFn}, nil
}

func paramsFromFlags(c *cli.Context) reporting.Params {
	return reporting.Params{
		SortBy:    c.String("sort-by"),
		SortOrder: c.String("sort-order"),
		Search:    c.String("search"),
		Level:     c.String("level"),
		StudentID: c.String("student-id"),
		StartDate: c.String("start-date"),
		EndDate:   c.String("end-date"),
		MinScore:  c.String("min-score"),
		MaxScore:  c.String("max-score"),
	}
}

func exportAction(c *cli.Context) error {
	src, err := openSource(c)
	if err != nil {
		return err
	}
	defer src.close()

	query, err := reporting.BuildSessionQueryIn(paramsFromFlags(c), src.location)
	if err != nil {
		return err
	}

	doc, err := src.service.ExportSessions(c.Context, query)
	if err != nil {
		return err
	}

	target := c.String("out")
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		target = filepath.Join(target, doc.Filename)
	}
	if err := os.WriteFile(target, doc.Content, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	logger.Debug().Interface("filter", query.Filter.Shape()).Str("path", target).Msg("Export written")
	okColor.Fprintf(c.App.Writer, "exported %d sessions", doc.Rows)
	fmt.Fprintf(c.App.Writer, " to %s\n", target)
	return nil
}

func dashboardAction(c *cli.Context) error {
	src, err := openSource(c)
	if err != nil {
		return err
	}
	defer src.close()

	dash, err := src.service.GetDashboard(c.Context)
	if err != nil {
		return err
	}

	w := c.App.Writer
	o := dash.Overview
	for _, line := range []struct {
		label string
		value int64
	}{
		{"students", o.TotalStudents},
		{"admins", o.TotalAdmins},
		{"completed sessions", o.TotalSessions},
		{"active questions", o.TotalQuestions},
		{"sessions, last 7 days", o.RecentSessions},
		{"new students, last 7 days", o.NewStudents},
	} {
		labelColor.Fprintf(w, "%-26s", line.label)
		fmt.Fprintf(w, "%d\n", line.value)
	}

	if len(dash.LevelStats) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	labelColor.Fprintf(w, "%-6s %8s %10s %10s\n", "level", "sessions", "avg score", "avg %")
	for _, ls := range dash.LevelStats {
		fmt.Fprintf(w, "%-6d %8d %10.2f %10.2f\n", ls.Level, ls.TotalSessions, ls.AverageScore, ls.AveragePercentage)
	}
	return nil
}

func tokenAction(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	id := uuid.New()
	if raw := c.String("user-id"); raw != "" {
		if id, err = uuid.Parse(raw); err != nil {
			return fmt.Errorf("invalid --user-id: %w", err)
		}
	}

	token, err := bootstrap.NewJWTService(cfg).GenerateAccessToken(id, c.String("email"), models.RoleType(c.String("role")))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, token)
	return nil
}

// Run executes the app and reports a failure in red
func Run(ctx context.Context, args []string, out io.Writer) int {
	if err := NewApp(out).RunContext(ctx, args); err != nil {
		color.New(color.FgRed).Fprintf(out, "error: %v\n", err)
		return 1
	}
	return 0
}
