// Package permission answers the role questions asked by the HTTP layer.
package permission

import (
	"context"
	"errors"

	"eventsales/backend/internal/models"
	"eventsales/backend/internal/repository"
)

// coorganizerRoles grant organizer-level access to an event.
var coorganizerRoles = []string{models.RoleOwner, models.RoleOrganizer, models.RoleCoorganizer}

// Store is the subset of the repository the checker reads.
type Store interface {
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	HasEventRole(ctx context.Context, userID, eventID int64, roles []string) (bool, error)
}

type Checker struct {
	store Store
}

func NewChecker(store Store) *Checker {
	return &Checker{store: store}
}

// IsAdmin reports whether the user is an admin or super admin.
func (c *Checker) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	user, err := c.store.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsAdmin || user.IsSuperAdmin, nil
}

// IsCoorganizer reports whether the user may see organizer data of the event.
// Admins always may.
func (c *Checker) IsCoorganizer(ctx context.Context, userID, eventID int64) (bool, error) {
	admin, err := c.IsAdmin(ctx, userID)
	if err != nil || admin {
		return admin, err
	}
	return c.store.HasEventRole(ctx, userID, eventID, coorganizerRoles)
}
