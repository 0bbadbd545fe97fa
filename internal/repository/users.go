package repository

import (
	"context"
	"strings"

	"eventsales/backend/internal/models"
)

const userColumns = `id, email, password_hash, is_admin, is_super_admin, created_at`

func (r *Repository) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	var out models.User
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&out.ID, &out.Email, &out.PasswordHash, &out.IsAdmin, &out.IsSuperAdmin, &out.CreatedAt)
	if err != nil {
		return out, notFound(err, ErrUserNotFound)
	}
	return out, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var out models.User
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)).
		Scan(&out.ID, &out.Email, &out.PasswordHash, &out.IsAdmin, &out.IsSuperAdmin, &out.CreatedAt)
	if err != nil {
		return out, notFound(err, ErrUserNotFound)
	}
	return out, nil
}

// HasEventRole reports whether the user holds any of roles on the event.
func (r *Repository) HasEventRole(ctx context.Context, userID, eventID int64, roles []string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM users_events_roles
	WHERE user_id = $1 AND event_id = $2 AND role = ANY($3)
) OR ($4 = ANY($3) AND EXISTS (
	SELECT 1 FROM events WHERE id = $2 AND owner_id = $1
));`, userID, eventID, roles, models.RoleOwner).Scan(&ok)
	return ok, err
}
