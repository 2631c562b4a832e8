package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MICA1991/financelitracy-quiz/internal/pkg/logger"
	"github.com/MICA1991/financelitracy-quiz/internal/server"
)

// @title FinanceLitracy Admin Reporting API
// @version 1.0
// @description Read-only admin reporting and export API for the financial literacy quiz

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Admin access token, "Bearer <token>"

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Server stopped with errors")
		stop()
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
