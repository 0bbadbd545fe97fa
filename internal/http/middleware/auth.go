package middleware

import (
	"context"
	"net/http"
	"strings"

	"eventsales/backend/internal/auth"
	"eventsales/backend/internal/jsonapi"
)

type contextKey string

const userIDKey contextKey = "user_id"

func UserIDFromContext(ctx context.Context) (int64, bool) {
	val, ok := ctx.Value(userIDKey).(int64)
	return val, ok
}

// WithUserID stores an authenticated user id on ctx and reports it to the
// request logger.
func WithUserID(ctx context.Context, userID int64) context.Context {
	noteUserID(ctx, userID)
	return context.WithValue(ctx, userIDKey, userID)
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return authenticate(secret, true)
}

// OptionalAuthMiddleware lets anonymous requests through but still rejects
// a token that does not verify.
func OptionalAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return authenticate(secret, false)
}

func authenticate(secret string, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if required {
					unauthorized(w, "missing Authorization")
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				unauthorized(w, "invalid Authorization")
				return
			}
			claims, err := auth.ParseAccessToken(secret, parts[1])
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	jsonapi.WriteErrors(w, http.StatusUnauthorized, jsonapi.ErrorObject{Detail: detail})
}
