package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aliskhannn/lexiquiz/internal/domain/entities"
)

// Classify marks transient database failures with entities.ErrStorageUnavailable.
// Any other error is returned unchanged.
func Classify(err error) error {
	if err == nil || errors.Is(err, entities.ErrStorageUnavailable) {
		return err
	}
	if IsTransient(err) {
		return fmt.Errorf("%w: %w", entities.ErrStorageUnavailable, err)
	}
	return err
}

// IsTransient reports whether err is a connection failure, a timeout or a
// serialization failure the caller may retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "40001", pgErr.Code == "40P01", pgErr.Code == "55P03":
			return true // serialization_failure, deadlock_detected, lock_not_available
		case strings.HasPrefix(pgErr.Code, "08"):
			return true // connection exception class
		case pgErr.Code == "57P01", pgErr.Code == "57P03":
			return true // admin_shutdown, cannot_connect_now
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "conn closed") || strings.Contains(msg, "connection refused")
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
