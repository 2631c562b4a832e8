package dberrors

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsNoRows reports whether a single-row lookup found nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsTimeout reports whether the store call ran out of time, either through the
// caller's context or a server-side statement timeout (57014 query_canceled).
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "57014"
}

// IsConnectionError reports whether the failure happened before a query reached
// the server (dial, TLS, pool exhaustion).
func IsConnectionError(err error) bool {
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}

// Classify returns a short label used in store error logs.
func Classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsNoRows(err):
		return "not_found"
	case IsTimeout(err):
		return "timeout"
	case IsConnectionError(err):
		return "connection"
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return "pg_" + pgErr.Code
		}
		return "unknown"
	}
}
