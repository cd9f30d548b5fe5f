package services

import (
	"errors"
	"fmt"

	"hotel-pms/apperror"
	"hotel-pms/repository"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Name is what goes into history entries.
func (a Actor) Name() string {
	if a.UserID == "" {
		return "system"
	}
	return a.UserID
}

// SystemActor runs background work such as reconciliation.
var SystemActor = Actor{Role: RoleAdmin}

// storeErr classifies a repository error about entity.
func storeErr(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound("%s not found", entity)
	default:
		return classify(err, entity)
	}
}

// classify keeps apperror values, turns timeouts into StoreTimeout and wraps
// anything else with context.
func classify(err error, action string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	if errors.Is(err, repository.ErrTimeout) {
		return apperror.StoreTimeout(err)
	}
	return fmt.Errorf("%s: %w", action, err)
}
