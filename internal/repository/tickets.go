package repository

import (
	"context"

	"eventsales/backend/internal/models"
)

func (r *Repository) GetTicket(ctx context.Context, id int64) (models.Ticket, error) {
	var out models.Ticket
	var price string
	err := r.pool.QueryRow(ctx, `
SELECT id, event_id, name, price::text
FROM tickets
WHERE id = $1;`, id).Scan(&out.ID, &out.EventID, &out.Name, &price)
	if err != nil {
		return out, notFound(err, ErrTicketNotFound)
	}
	out.Price, err = parseMoney(price)
	return out, err
}

// GetTicketEventID resolves the event a ticket is sold for.
func (r *Repository) GetTicketEventID(ctx context.Context, id int64) (int64, error) {
	var eventID int64
	if err := r.pool.QueryRow(ctx, `SELECT event_id FROM tickets WHERE id = $1`, id).Scan(&eventID); err != nil {
		return 0, notFound(err, ErrTicketNotFound)
	}
	return eventID, nil
}
