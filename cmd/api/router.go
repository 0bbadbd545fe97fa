package main

import (
	"log/slog"
	"net/http"
	"time"

	"eventsales/backend/internal/http/handlers"
	"eventsales/backend/internal/http/middleware"
	"eventsales/backend/internal/rate"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func newRouter(h *handlers.Handler, roles middleware.RoleChecker, limiter *rate.KeyedLimiter, cache *middleware.ResponseCache, jwtSecret string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(10 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(limiter))

		// Login sits outside token checks so a stale token cannot block it.
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuthMiddleware(jwtSecret))

			r.Group(func(r chi.Router) {
				r.Use(cache.Middleware)
				r.Get("/video-channels", h.ListVideoChannels)
				r.Get("/video-channels/{id}", h.GetVideoChannel)
				r.Get("/video-streams/{video_stream_id}/video-channel", h.GetStreamVideoChannel)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(roles, logger))
				r.Get("/admin/sales/events", h.ListEventSales)
				r.Post("/admin/sales/events/export", h.ExportEventSales)
				r.Post("/video-channels", h.CreateVideoChannel)
				r.Patch("/video-channels/{id}", h.UpdateVideoChannel)
				r.Delete("/video-channels/{id}", h.DeleteVideoChannel)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireCoorganizer(roles, h.TicketEventID, logger))
				r.Get("/order-statistics/tickets/{id}", h.GetTicketOrderStatistics)
				r.Get("/tickets/{id}/order-statistics", h.GetTicketOrderStatistics)
			})
		})
	})
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
