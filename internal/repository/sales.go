package repository

import (
	"context"

	"eventsales/backend/internal/models"
)

const saleLineQuery = `
SELECT
	o.event_id,
	o.id,
	ot.ticket_id,
	o.status,
	COALESCE(ot.price, 0)::text,
	COALESCE(ot.quantity, 0),
	COALESCE(dc.value, 0)::text
FROM orders_tickets ot
JOIN orders o ON o.id = ot.order_id
LEFT JOIN discount_codes dc ON dc.id = o.discount_code_id`

// ListEventSaleLines returns every order-ticket line of orders belonging to the given events.
func (r *Repository) ListEventSaleLines(ctx context.Context, eventIDs []int64) ([]models.SaleLine, error) {
	if len(eventIDs) == 0 {
		return []models.SaleLine{}, nil
	}
	return querySaleLines(ctx, r.pool, saleLineQuery+`
WHERE o.event_id = ANY($1)
ORDER BY o.event_id, o.id;`, eventIDs)
}

// ListTicketSaleLines returns every order-ticket line of one ticket, any order status.
func (r *Repository) ListTicketSaleLines(ctx context.Context, ticketID int64) ([]models.SaleLine, error) {
	return querySaleLines(ctx, r.pool, saleLineQuery+`
WHERE ot.ticket_id = $1
ORDER BY o.id;`, ticketID)
}

func querySaleLines(ctx context.Context, q queryRunner, query string, args ...interface{}) ([]models.SaleLine, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.SaleLine, 0)
	for rows.Next() {
		var line models.SaleLine
		var price, discount string
		if err := rows.Scan(
			&line.EventID,
			&line.OrderID,
			&line.TicketID,
			&line.Status,
			&price,
			&line.Quantity,
			&discount,
		); err != nil {
			return nil, err
		}
		if line.Price, err = parseMoney(price); err != nil {
			return nil, err
		}
		if line.Discount, err = parseMoney(discount); err != nil {
			return nil, err
		}
		items = append(items, line)
	}
	return items, rows.Err()
}
