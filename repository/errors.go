package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrTimeout is returned when a query exceeds its time budget. Callers
	// may retry.
	ErrTimeout = errors.New("query timeout")
)

const (
	mysqlDuplicateEntry      = 1062
	mysqlQueryInterrupted    = 1317
	mysqlMaxExecTimeExceeded = 3024
)

// translate maps driver and gorm errors onto the package sentinels, keeping
// the original error in the chain.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		case mysqlMaxExecTimeExceeded, mysqlQueryInterrupted:
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
	}
	// sqlite drivers without error translation only carry the message
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
