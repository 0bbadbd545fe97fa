package handlers

import (
	"net/http"

	"eventsales/backend/internal/jsonapi"
	"eventsales/backend/internal/schema"
)

// ListEventSales serves the admin sales listing. Each read recomputes the
// totals of the page and writes them back to the events.
func (h *Handler) ListEventSales(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	page, err := jsonapi.ParsePage(r.URL.Query())
	if err != nil {
		h.handleError(logger, w, "list_event_sales", err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	events, total, err := h.store.ListEvents(ctx, page.Limit(), page.Offset())
	if err != nil {
		h.handleError(logger, w, "list_event_sales", err)
		return
	}
	resources := make([]jsonapi.Resource, 0, len(events))
	for _, event := range events {
		resources = append(resources, schema.EventInfo(event))
	}
	if err := h.reporter.AttachEventSales(ctx, resources); err != nil {
		h.handleError(logger, w, "list_event_sales", err)
		return
	}

	logger.Info("list_event_sales", "status", "success", "events", len(resources), "total", total)
	jsonapi.Write(w, http.StatusOK, jsonapi.Many(
		resources,
		jsonapi.PageMeta(total),
		jsonapi.PageLinks(r.URL.Path, r.URL.Query(), page, total),
	))
}

// ExportEventSales refreshes every event and uploads the totals as CSV.
func (h *Handler) ExportEventSales(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	export, err := h.exporter.Export(r.Context())
	if err != nil {
		h.handleError(logger, w, "export_event_sales", err)
		return
	}
	logger.Info("export_event_sales", "status", "success", "key", export.Key, "events", export.Events)
	jsonapi.Write(w, http.StatusCreated, jsonapi.One(
		schema.SalesExport(export.ID, export.DownloadURL, export.Events, export.CreatedAt),
	))
}
