package postgres

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"gestock/internal/core/apperror"
)

// markUnavailable classifies connectivity failures as DATA_SOURCE_UNAVAILABLE
// so callers can tell "the database is down" apart from "the data is wrong".
// Query errors (bad SQL, constraint violations) pass through untouched.
func markUnavailable(err error) error {
	if err == nil {
		return nil
	}
	if isConnectivity(err) {
		return apperror.NewDataSourceUnavailable(err)
	}
	return err
}

func isConnectivity(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	// 57P01 admin_shutdown, 57P02 crash_shutdown, 57P03 cannot_connect_now,
	// 53300 too_many_connections
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "57P01", "57P02", "57P03", "53300":
			return true
		}
	}

	return pgconn.Timeout(err)
}
