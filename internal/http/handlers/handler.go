package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"eventsales/backend/internal/config"
	authmw "eventsales/backend/internal/http/middleware"
	"eventsales/backend/internal/models"
	"eventsales/backend/internal/sales"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// Store is the persistence used by the HTTP handlers.
type Store interface {
	ListEvents(ctx context.Context, limit, offset int) ([]models.Event, int, error)
	GetTicket(ctx context.Context, id int64) (models.Ticket, error)
	GetTicketEventID(ctx context.Context, id int64) (int64, error)
	ListTicketSaleLines(ctx context.Context, ticketID int64) ([]models.SaleLine, error)
	ListVideoChannels(ctx context.Context, limit, offset int) ([]models.VideoChannel, int, error)
	GetVideoChannel(ctx context.Context, id int64) (models.VideoChannel, error)
	CreateVideoChannel(ctx context.Context, in models.VideoChannelInput) (models.VideoChannel, error)
	UpdateVideoChannel(ctx context.Context, id int64, patch models.VideoChannelPatch) (models.VideoChannel, error)
	DeleteVideoChannel(ctx context.Context, id int64) error
	GetVideoStream(ctx context.Context, id int64) (models.VideoStream, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

type Handler struct {
	store     Store
	roles     authmw.RoleChecker
	reporter  *sales.Reporter
	exporter  *sales.Exporter
	cache     *authmw.ResponseCache
	cfg       *config.Config
	logger    *slog.Logger
	validator *validator.Validate
}

func New(store Store, roles authmw.RoleChecker, reporter *sales.Reporter, exporter *sales.Exporter, cache *authmw.ResponseCache, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:     store,
		roles:     roles,
		reporter:  reporter,
		exporter:  exporter,
		cache:     cache,
		cfg:       cfg,
		logger:    logger,
		validator: newValidator(),
	}
}

// newValidator reports field errors under their JSON attribute names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}

func (h *Handler) loggerForRequest(r *http.Request) *slog.Logger {
	logger := h.logger
	if logger == nil {
		return slog.Default()
	}
	if reqID := chimw.GetReqID(r.Context()); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if userID, ok := authmw.UserIDFromContext(r.Context()); ok {
		logger = logger.With("user_id", userID)
	}
	return logger
}

// isAdminCaller reports whether the request carries an admin identity.
// Anonymous callers are never admins.
func (h *Handler) isAdminCaller(ctx context.Context, r *http.Request) (bool, error) {
	userID, ok := authmw.UserIDFromContext(r.Context())
	if !ok || h.roles == nil {
		return false, nil
	}
	return h.roles.IsAdmin(ctx, userID)
}
