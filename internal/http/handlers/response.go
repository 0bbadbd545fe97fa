package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"eventsales/backend/internal/jsonapi"
	"eventsales/backend/internal/repository"
	"eventsales/backend/internal/sales"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// writeJSON writes a plain JSON body, used outside of resource documents.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError writes a JSON:API error document with a single error.
func writeError(w http.ResponseWriter, status int, message string) {
	jsonapi.WriteErrors(w, status, jsonapi.ErrorObject{Detail: message})
}

type actionLogger interface {
	Error(string, ...any)
	Warn(string, ...any)
}

// handleError maps domain and decoding errors onto HTTP statuses.
func (h *Handler) handleError(logger actionLogger, w http.ResponseWriter, action string, err error) {
	var validationErrs validator.ValidationErrors
	switch {
	case repository.IsNotFound(err):
		logger.Warn(action, "status", "not_found", "error", err)
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &validationErrs):
		logger.Warn(action, "status", "invalid_attributes", "error", err)
		jsonapi.WriteErrors(w, http.StatusUnprocessableEntity, validationErrors(validationErrs)...)
	case errors.Is(err, jsonapi.ErrMalformed):
		logger.Warn(action, "status", "invalid_request", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, jsonapi.ErrInvalidPage):
		logger.Warn(action, "status", "invalid_request", "error", err)
		jsonapi.WriteErrors(w, http.StatusBadRequest, jsonapi.ErrorObject{
			Detail: err.Error(),
			Source: &jsonapi.ErrorSource{Parameter: "page"},
		})
	case errors.Is(err, jsonapi.ErrTypeMismatch), errors.Is(err, jsonapi.ErrIDMismatch):
		logger.Warn(action, "status", "conflict", "error", err)
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, sales.ErrExportDisabled):
		logger.Warn(action, "status", "unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error(action, "status", "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func validationErrors(errs validator.ValidationErrors) []jsonapi.ErrorObject {
	out := make([]jsonapi.ErrorObject, 0, len(errs))
	for _, fe := range errs {
		out = append(out, jsonapi.ErrorObject{
			Detail: validationMessage(fe),
			Source: &jsonapi.ErrorSource{Pointer: "/data/attributes/" + fe.Field()},
		})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Missing data for required field."
	case "url":
		return "Not a valid URL."
	case "max":
		return "Longer than maximum length " + fe.Param() + "."
	case "min":
		return "Shorter than minimum length " + fe.Param() + "."
	default:
		return "Invalid value."
	}
}

// idParam reads a positive integer URL parameter. A malformed id is reported
// as notFound since no such resource can exist.
func idParam(r *http.Request, name string, notFound error) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, notFound
	}
	return id, nil
}
