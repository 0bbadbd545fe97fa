package handlers

import (
	"net/http"

	"eventsales/backend/internal/jsonapi"
	"eventsales/backend/internal/repository"
	"eventsales/backend/internal/schema"
	"eventsales/backend/internal/ticketing"
)

// TicketEventID resolves the event of the ticket in the URL, for the
// coorganizer check in front of the statistics routes.
func (h *Handler) TicketEventID(r *http.Request) (int64, error) {
	ticketID, err := idParam(r, "id", repository.ErrTicketNotFound)
	if err != nil {
		return 0, err
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()
	return h.store.GetTicketEventID(ctx, ticketID)
}

// GetTicketOrderStatistics serves the per-status statistics of one ticket.
func (h *Handler) GetTicketOrderStatistics(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	ticketID, err := idParam(r, "id", repository.ErrTicketNotFound)
	if err != nil {
		h.handleError(logger, w, "ticket_order_statistics", err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	ticket, err := h.store.GetTicket(ctx, ticketID)
	if err != nil {
		h.handleError(logger, w, "ticket_order_statistics", err)
		return
	}
	lines, err := h.store.ListTicketSaleLines(ctx, ticketID)
	if err != nil {
		h.handleError(logger, w, "ticket_order_statistics", err)
		return
	}

	stats := ticketing.TicketStatistics(lines)
	jsonapi.Write(w, http.StatusOK, jsonapi.One(schema.OrderStatisticsTicket(ticket, stats)))
}
