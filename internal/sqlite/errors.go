package sqlite

import (
	"errors"
	"strings"

	"github.com/rpggio/billable/internal/repository"
)

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// classify maps constraint failures to repository errors and passes the
// rest through unchanged.
func classify(err error) error {
	switch {
	case isUniqueViolation(err):
		return errors.Join(repository.ErrDuplicate, err)
	case isForeignKeyViolation(err):
		return errors.Join(repository.ErrForeignKeyViolation, err)
	default:
		return err
	}
}
