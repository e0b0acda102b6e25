package postgres

import (
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

// IsUndefinedTable reports the "schema not provisioned" class of failure:
// the database answers but the migrations have not been applied.
func IsUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && (pgErr.Code == "42P01" || pgErr.Code == "3F000") {
		return true
	}
	return false
}

// IsConnectionError reports the "store unreachable" class of failure.
func IsConnectionError(err error) bool {
	var connErr *pgconn.ConnectError

	if errors.As(err, &connErr) {
		return true
	}

	var netErr net.Error

	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "failed to connect") ||
		strings.Contains(msg, "closed pool")
}
