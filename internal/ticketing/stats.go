package ticketing

import (
	"eventsales/backend/internal/models"

	"github.com/shopspring/decimal"
)

// summaryStatuses are the order statuses reported on the admin sales listing.
var summaryStatuses = []string{
	models.OrderStatusCompleted,
	models.OrderStatusPlaced,
	models.OrderStatusPending,
}

// StatusTotals is the sales figure of one order status.
type StatusTotals struct {
	SalesTotal  models.Money
	TicketCount int64
}

// Summary maps completed, placed and pending to their totals.
type Summary map[string]StatusTotals

// EventSales flattens the summary into the cached event columns.
func (s Summary) EventSales() models.EventSales {
	return models.EventSales{
		CompletedOrderSales:   s[models.OrderStatusCompleted].SalesTotal,
		PlacedOrderSales:      s[models.OrderStatusPlaced].SalesTotal,
		PendingOrderSales:     s[models.OrderStatusPending].SalesTotal,
		CompletedOrderTickets: s[models.OrderStatusCompleted].TicketCount,
		PlacedOrderTickets:    s[models.OrderStatusPlaced].TicketCount,
		PendingOrderTickets:   s[models.OrderStatusPending].TicketCount,
	}
}

// NewSummary returns a summary with every reported status at zero.
func NewSummary() Summary {
	out := make(Summary, len(summaryStatuses))
	for _, status := range summaryStatuses {
		out[status] = StatusTotals{SalesTotal: decimal.Zero}
	}
	return out
}

// LineTotal is (price - discount) * quantity. It is not floored at zero.
func LineTotal(line models.SaleLine) models.Money {
	return line.Price.Sub(line.Discount).Mul(decimal.NewFromInt(line.Quantity))
}

// SummarizeEvent aggregates the order-ticket lines of a single event.
func SummarizeEvent(lines []models.SaleLine) Summary {
	out := NewSummary()
	for _, line := range lines {
		totals, ok := out[line.Status]
		if !ok {
			continue
		}
		totals.SalesTotal = totals.SalesTotal.Add(LineTotal(line))
		totals.TicketCount += line.Quantity
		out[line.Status] = totals
	}
	return out
}

// SummarizeEvents groups lines by event and summarizes each group. Every
// requested event gets an entry, even when it has no lines.
func SummarizeEvents(eventIDs []int64, lines []models.SaleLine) map[int64]Summary {
	grouped := make(map[int64][]models.SaleLine, len(eventIDs))
	for _, line := range lines {
		grouped[line.EventID] = append(grouped[line.EventID], line)
	}
	out := make(map[int64]Summary, len(eventIDs))
	for _, id := range eventIDs {
		out[id] = SummarizeEvent(grouped[id])
	}
	return out
}

// CountBreakdown holds a count per order status plus the overall total.
type CountBreakdown struct {
	Total     int64
	Draft     int64
	Cancelled int64
	Pending   int64
	Expired   int64
	Placed    int64
	Completed int64
}

func (b *CountBreakdown) add(status string, n int64) {
	b.Total += n
	switch status {
	case models.OrderStatusDraft:
		b.Draft += n
	case models.OrderStatusCancelled:
		b.Cancelled += n
	case models.OrderStatusPending:
		b.Pending += n
	case models.OrderStatusExpired:
		b.Expired += n
	case models.OrderStatusPlaced:
		b.Placed += n
	case models.OrderStatusCompleted:
		b.Completed += n
	}
}

// AmountBreakdown holds a monetary amount per order status plus the total.
type AmountBreakdown struct {
	Total     models.Money
	Draft     models.Money
	Cancelled models.Money
	Pending   models.Money
	Expired   models.Money
	Placed    models.Money
	Completed models.Money
}

func newAmountBreakdown() AmountBreakdown {
	return AmountBreakdown{
		Total:     decimal.Zero,
		Draft:     decimal.Zero,
		Cancelled: decimal.Zero,
		Pending:   decimal.Zero,
		Expired:   decimal.Zero,
		Placed:    decimal.Zero,
		Completed: decimal.Zero,
	}
}

func (b *AmountBreakdown) add(status string, amount models.Money) {
	switch status {
	case models.OrderStatusDraft:
		b.Draft = b.Draft.Add(amount)
	case models.OrderStatusCancelled:
		b.Cancelled = b.Cancelled.Add(amount)
	case models.OrderStatusPending:
		b.Pending = b.Pending.Add(amount)
	case models.OrderStatusExpired:
		b.Expired = b.Expired.Add(amount)
	case models.OrderStatusPlaced:
		b.Placed = b.Placed.Add(amount)
	case models.OrderStatusCompleted:
		b.Completed = b.Completed.Add(amount)
	default:
		return
	}
	b.Total = b.Total.Add(amount)
}

// TicketStats is the order statistics of a single ticket.
type TicketStats struct {
	Tickets CountBreakdown
	Orders  CountBreakdown
	Sales   AmountBreakdown
}

// TicketStatistics aggregates the order-ticket lines of one ticket. Orders
// are counted once even when they carry several lines.
func TicketStatistics(lines []models.SaleLine) TicketStats {
	out := TicketStats{Sales: newAmountBreakdown()}
	seenOrder := map[int64]struct{}{}
	for _, line := range lines {
		out.Tickets.add(line.Status, line.Quantity)

		// An order has a single status, so one entry per order id is enough.
		if _, exists := seenOrder[line.OrderID]; !exists {
			out.Orders.add(line.Status, 1)
			seenOrder[line.OrderID] = struct{}{}
		}

		// Free or empty lines never contribute, so a discount cannot push them negative.
		if line.Price.IsZero() || line.Quantity == 0 {
			continue
		}
		out.Sales.add(line.Status, LineTotal(line))
	}
	return out
}
