// Package schema maps domain records onto JSON:API resource objects.
package schema

import (
	"strconv"
	"time"

	"eventsales/backend/internal/jsonapi"
	"eventsales/backend/internal/models"
	"eventsales/backend/internal/ticketing"
)

const (
	TypeEventInfo             = "event-info"
	TypeOrderStatisticsTicket = "order-statistics-ticket"
	TypeVideoChannel          = "video-channel"
	TypeSalesExport           = "event-sales-export"
)

// Event type labels derived from the online flag and the venue.
const (
	EventTypeTBA    = "To be announced"
	EventTypeOnline = "Online"
	EventTypeHybrid = "Hybrid"
	EventTypeVenue  = "Venue"
)

// EventType classifies an event by where it takes place.
func EventType(e models.Event) string {
	switch {
	case e.Online && e.LocationName != "":
		return EventTypeHybrid
	case e.Online:
		return EventTypeOnline
	case e.LocationName != "":
		return EventTypeVenue
	default:
		return EventTypeTBA
	}
}

// EventInfo renders an event for the admin sales listing. Sales attributes
// are attached afterwards by the report assembler.
func EventInfo(e models.Event) jsonapi.Resource {
	var ownerID interface{}
	if e.OwnerID != nil {
		ownerID = *e.OwnerID
	}
	return jsonapi.Resource{
		Type: TypeEventInfo,
		ID:   strconv.FormatInt(e.ID, 10),
		Attributes: jsonapi.Attributes(map[string]interface{}{
			"identifier":       e.Identifier,
			"name":             e.Name,
			"created_at":       e.CreatedAt,
			"deleted_at":       e.DeletedAt,
			"duration":         duration(e),
			"payment_currency": nullableString(e.PaymentCurrency),
			"payment_country":  nullableString(e.PaymentCountry),
			"type":             EventType(e),
			"owner":            e.OwnerEmail,
			"owner_id":         ownerID,
		}),
	}
}

// ApplyEventSales writes the six report attributes onto a rendered event.
func ApplyEventSales(res *jsonapi.Resource, sales models.EventSales) {
	if res.Attributes == nil {
		res.Attributes = map[string]interface{}{}
	}
	res.Attributes["completed-order-sales"] = sales.CompletedOrderSales.InexactFloat64()
	res.Attributes["placed-order-sales"] = sales.PlacedOrderSales.InexactFloat64()
	res.Attributes["pending-order-sales"] = sales.PendingOrderSales.InexactFloat64()
	res.Attributes["completed-order-tickets"] = sales.CompletedOrderTickets
	res.Attributes["placed-order-tickets"] = sales.PlacedOrderTickets
	res.Attributes["pending-order-tickets"] = sales.PendingOrderTickets
}

// duration is the scheduled length in seconds, or nil when the schedule is open.
func duration(e models.Event) interface{} {
	if e.StartsAt == nil || e.EndsAt == nil {
		return nil
	}
	return int64(e.EndsAt.Sub(*e.StartsAt) / time.Second)
}

// OrderStatisticsTicket renders the order statistics of one ticket.
func OrderStatisticsTicket(ticket models.Ticket, stats ticketing.TicketStats) jsonapi.Resource {
	id := strconv.FormatInt(ticket.ID, 10)
	return jsonapi.Resource{
		Type: TypeOrderStatisticsTicket,
		ID:   id,
		Attributes: map[string]interface{}{
			"identifier": nil,
			"tickets":    counts(stats.Tickets),
			"orders":     counts(stats.Orders),
			"sales":      amounts(stats.Sales),
		},
		Links: map[string]string{"self": "/v1/order-statistics/tickets/" + id},
	}
}

func counts(b ticketing.CountBreakdown) map[string]int64 {
	return map[string]int64{
		"total":     b.Total,
		"draft":     b.Draft,
		"cancelled": b.Cancelled,
		"pending":   b.Pending,
		"expired":   b.Expired,
		"placed":    b.Placed,
		"completed": b.Completed,
	}
}

func amounts(b ticketing.AmountBreakdown) map[string]float64 {
	return map[string]float64{
		"total":     b.Total.InexactFloat64(),
		"draft":     b.Draft.InexactFloat64(),
		"cancelled": b.Cancelled.InexactFloat64(),
		"pending":   b.Pending.InexactFloat64(),
		"expired":   b.Expired.InexactFloat64(),
		"placed":    b.Placed.InexactFloat64(),
		"completed": b.Completed.InexactFloat64(),
	}
}

// VideoChannel renders a channel. The public field set omits provider
// credentials and bookkeeping.
func VideoChannel(c models.VideoChannel, full bool) jsonapi.Resource {
	id := strconv.FormatInt(c.ID, 10)
	attrs := map[string]interface{}{
		"name":     c.Name,
		"provider": c.Provider,
		"url":      c.URL,
		"icon_url": nullableString(c.IconURL),
	}
	if full {
		attrs["api_url"] = nullableString(c.APIURL)
		attrs["api_key"] = nullableString(c.APIKey)
		attrs["extra"] = c.Extra
		attrs["created_at"] = c.CreatedAt
		attrs["updated_at"] = c.UpdatedAt
	}
	return jsonapi.Resource{
		Type:       TypeVideoChannel,
		ID:         id,
		Attributes: jsonapi.Attributes(attrs),
		Links:      map[string]string{"self": "/v1/video-channels/" + id},
	}
}

// VideoChannels renders a page of channels with one field set.
func VideoChannels(items []models.VideoChannel, full bool) []jsonapi.Resource {
	out := make([]jsonapi.Resource, 0, len(items))
	for _, item := range items {
		out = append(out, VideoChannel(item, full))
	}
	return out
}

// SalesExport renders a finished sales export.
func SalesExport(id, downloadURL string, events int, createdAt time.Time) jsonapi.Resource {
	return jsonapi.Resource{
		Type: TypeSalesExport,
		ID:   id,
		Attributes: jsonapi.Attributes(map[string]interface{}{
			"download_url": downloadURL,
			"event_count":  events,
			"created_at":   createdAt,
		}),
	}
}

func nullableString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
