package repository

import (
	"context"
	"database/sql"
	"fmt"

	"eventsales/backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const eventColumns = `
	e.id,
	e.identifier,
	e.name,
	e.owner_id,
	COALESCE(u.email, ''),
	e.starts_at,
	e.ends_at,
	e.online,
	COALESCE(e.location_name, ''),
	COALESCE(e.payment_currency, ''),
	COALESCE(e.payment_country, ''),
	e.created_at,
	e.deleted_at,
	e.completed_order_sales::text,
	e.placed_order_sales::text,
	e.pending_order_sales::text,
	e.completed_order_tickets,
	e.placed_order_tickets,
	e.pending_order_tickets`

// ListEvents returns one page of events ordered by id, with the total count.
// A limit of 0 returns every event.
func (r *Repository) ListEvents(ctx context.Context, limit, offset int) ([]models.Event, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}

	var limitArg interface{}
	if limit > 0 {
		limitArg = limit
	}
	rows, err := r.pool.Query(ctx, `
SELECT`+eventColumns+`
FROM events e
LEFT JOIN users u ON u.id = e.owner_id
ORDER BY e.id
LIMIT $1 OFFSET $2;`, limitArg, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetEventsByIDs returns the events that still exist among ids, ordered by id.
func (r *Repository) GetEventsByIDs(ctx context.Context, ids []int64) ([]models.Event, error) {
	if len(ids) == 0 {
		return []models.Event{}, nil
	}
	rows, err := r.pool.Query(ctx, `
SELECT`+eventColumns+`
FROM events e
LEFT JOIN users u ON u.id = e.owner_id
WHERE e.id = ANY($1)
ORDER BY e.id;`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *Repository) GetEvent(ctx context.Context, id int64) (models.Event, error) {
	event, err := scanEvent(r.pool.QueryRow(ctx, `
SELECT`+eventColumns+`
FROM events e
LEFT JOIN users u ON u.id = e.owner_id
WHERE e.id = $1;`, id))
	if err != nil {
		return models.Event{}, notFound(err, ErrEventNotFound)
	}
	return event, nil
}

// SaveEventSales writes the cached report columns of every event in one batch.
func (r *Repository) SaveEventSales(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(`
UPDATE events
SET completed_order_sales = $2::text::numeric,
	placed_order_sales = $3::text::numeric,
	pending_order_sales = $4::text::numeric,
	completed_order_tickets = $5,
	placed_order_tickets = $6,
	pending_order_tickets = $7
WHERE id = $1;`,
			event.ID,
			event.Sales.CompletedOrderSales.String(),
			event.Sales.PlacedOrderSales.String(),
			event.Sales.PendingOrderSales.String(),
			event.Sales.CompletedOrderTickets,
			event.Sales.PlacedOrderTickets,
			event.Sales.PendingOrderTickets,
		)
	}
	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for _, event := range events {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save sales of event %d: %w", event.ID, err)
		}
	}
	return nil
}

func collectEvents(rows pgx.Rows) ([]models.Event, error) {
	items := make([]models.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, event)
	}
	return items, rows.Err()
}

func scanEvent(row pgx.Row) (models.Event, error) {
	var out models.Event
	var ownerID sql.NullInt64
	var startsAt, endsAt, deletedAt sql.NullTime
	var completedSales, placedSales, pendingSales string
	if err := row.Scan(
		&out.ID,
		&out.Identifier,
		&out.Name,
		&ownerID,
		&out.OwnerEmail,
		&startsAt,
		&endsAt,
		&out.Online,
		&out.LocationName,
		&out.PaymentCurrency,
		&out.PaymentCountry,
		&out.CreatedAt,
		&deletedAt,
		&completedSales,
		&placedSales,
		&pendingSales,
		&out.Sales.CompletedOrderTickets,
		&out.Sales.PlacedOrderTickets,
		&out.Sales.PendingOrderTickets,
	); err != nil {
		return out, err
	}
	out.OwnerID = nullInt64ToPtr(ownerID)
	out.StartsAt = nullTimeToPtr(startsAt)
	out.EndsAt = nullTimeToPtr(endsAt)
	out.DeletedAt = nullTimeToPtr(deletedAt)

	var err error
	if out.Sales.CompletedOrderSales, err = parseMoney(completedSales); err != nil {
		return out, err
	}
	if out.Sales.PlacedOrderSales, err = parseMoney(placedSales); err != nil {
		return out, err
	}
	if out.Sales.PendingOrderSales, err = parseMoney(pendingSales); err != nil {
		return out, err
	}
	return out, nil
}
