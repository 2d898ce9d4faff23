package repository

import (
	"fmt"

	"github.com/aliskhannn/lexiquiz/internal/infra/postgres"
)

// wrapErr annotates err with the failed operation and marks transient failures.
func wrapErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, postgres.Classify(err))
}
