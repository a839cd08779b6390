package postgres

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"medialib/internal/domain"
)

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505 = unique_violation
		return pgErr.Code == "23505"
	}
	return false
}

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// RemoteError converts a database failure into a domain.RemoteError carrying
// the closest HTTP status. op prefixes the message.
func RemoteError(op string, err error) error {
	status := http.StatusInternalServerError
	switch {
	case IsPgNoRowsError(err):
		status = http.StatusNotFound
	case IsPgDuplicateError(err):
		status = http.StatusConflict
	}
	return &domain.RemoteError{
		Message: fmt.Sprintf("%s: %v", op, err),
		Status:  status,
		Err:     err,
	}
}
