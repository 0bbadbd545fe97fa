package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"eventsales/backend/internal/jsonapi"
	"eventsales/backend/internal/repository"
)

// RoleChecker answers the role questions asked before a handler runs.
type RoleChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	IsCoorganizer(ctx context.Context, userID, eventID int64) (bool, error)
}

// EventFetcher resolves the event a request is about, for example from the
// ticket in the URL. A repository not-found error yields 404.
type EventFetcher func(r *http.Request) (int64, error)

// RequireAdmin lets only admins and super admins through.
func RequireAdmin(checker RoleChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(logger, func(r *http.Request, userID int64) (bool, error) {
		return checker.IsAdmin(r.Context(), userID)
	})
}

// RequireCoorganizer lets through admins and users holding an organizer
// role on the event returned by fetch.
func RequireCoorganizer(checker RoleChecker, fetch EventFetcher, logger *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(logger, func(r *http.Request, userID int64) (bool, error) {
		eventID, err := fetch(r)
		if err != nil {
			return false, err
		}
		return checker.IsCoorganizer(r.Context(), userID, eventID)
	})
}

func requireRole(logger *slog.Logger, allowed func(*http.Request, int64) (bool, error)) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				unauthorized(w, "authentication required")
				return
			}
			ok, err := allowed(r, userID)
			switch {
			case repository.IsNotFound(err):
				jsonapi.WriteErrors(w, http.StatusNotFound, jsonapi.ErrorObject{Detail: err.Error()})
				return
			case err != nil:
				logger.Error("permission_check", "action", "permission_check", "status", "error", "user_id", userID, "path", r.URL.Path, "error", err)
				jsonapi.WriteErrors(w, http.StatusInternalServerError, jsonapi.ErrorObject{Detail: "permission check failed"})
				return
			case !ok:
				logger.Warn("permission_check", "action", "permission_check", "status", "denied", "user_id", userID, "path", r.URL.Path)
				jsonapi.WriteErrors(w, http.StatusForbidden, jsonapi.ErrorObject{Detail: "you are not allowed to access this resource"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
