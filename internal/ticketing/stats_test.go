package ticketing

import (
	"testing"

	"eventsales/backend/internal/models"

	"github.com/shopspring/decimal"
)

func money(v string) models.Money {
	return decimal.RequireFromString(v)
}

func line(orderID int64, status, price string, qty int64, discount string) models.SaleLine {
	return models.SaleLine{
		EventID:  1,
		OrderID:  orderID,
		TicketID: 10,
		Status:   status,
		Price:    money(price),
		Quantity: qty,
		Discount: money(discount),
	}
}

func assertMoney(t *testing.T, name string, got models.Money, want string) {
	t.Helper()
	if !got.Equal(money(want)) {
		t.Fatalf("expected %s=%s, got %s", name, want, got)
	}
}

// TestSummarizeEventEmpty verifies an event without orders reports zeros.
func TestSummarizeEventEmpty(t *testing.T) {
	summary := SummarizeEvent(nil)
	for _, status := range []string{models.OrderStatusCompleted, models.OrderStatusPlaced, models.OrderStatusPending} {
		totals, ok := summary[status]
		if !ok {
			t.Fatalf("expected %s entry", status)
		}
		assertMoney(t, status+" sales", totals.SalesTotal, "0")
		if totals.TicketCount != 0 {
			t.Fatalf("expected %s tickets=0, got %d", status, totals.TicketCount)
		}
	}
	sales := summary.EventSales()
	if sales.CompletedOrderTickets != 0 || !sales.PendingOrderSales.IsZero() {
		t.Fatalf("expected zero event sales, got %+v", sales)
	}
}

// TestSummarizeEvent verifies totals per status with and without discounts.
func TestSummarizeEvent(t *testing.T) {
	lines := []models.SaleLine{
		line(1, models.OrderStatusCompleted, "10.00", 2, "0"),
		line(2, models.OrderStatusCompleted, "25.50", 1, "0"),
		line(3, models.OrderStatusPlaced, "10.00", 3, "2.50"),
		line(4, models.OrderStatusPending, "40.00", 1, "0"),
		line(5, models.OrderStatusDraft, "99.00", 5, "0"),
		line(6, models.OrderStatusCancelled, "99.00", 5, "0"),
	}

	summary := SummarizeEvent(lines)
	assertMoney(t, "completed sales", summary[models.OrderStatusCompleted].SalesTotal, "45.50")
	if summary[models.OrderStatusCompleted].TicketCount != 3 {
		t.Fatalf("expected completed tickets=3, got %d", summary[models.OrderStatusCompleted].TicketCount)
	}
	assertMoney(t, "placed sales", summary[models.OrderStatusPlaced].SalesTotal, "22.50")
	if summary[models.OrderStatusPlaced].TicketCount != 3 {
		t.Fatalf("expected placed tickets=3, got %d", summary[models.OrderStatusPlaced].TicketCount)
	}
	assertMoney(t, "pending sales", summary[models.OrderStatusPending].SalesTotal, "40")
	if _, ok := summary[models.OrderStatusDraft]; ok {
		t.Fatalf("draft orders must not be summarized")
	}
}

// TestLineTotalIsNotFloored verifies a discount above the price yields a negative contribution.
func TestLineTotalIsNotFloored(t *testing.T) {
	got := LineTotal(line(1, models.OrderStatusCompleted, "5.00", 2, "8.00"))
	assertMoney(t, "line total", got, "-6")
}

// TestSummarizeEventsFillsMissingEvents verifies every requested event gets a summary.
func TestSummarizeEventsFillsMissingEvents(t *testing.T) {
	first := line(1, models.OrderStatusCompleted, "10", 1, "0")
	second := line(2, models.OrderStatusPlaced, "7", 2, "0")
	second.EventID = 2

	out := SummarizeEvents([]int64{1, 2, 3}, []models.SaleLine{first, second})
	if len(out) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(out))
	}
	assertMoney(t, "event 1 completed", out[1][models.OrderStatusCompleted].SalesTotal, "10")
	assertMoney(t, "event 2 placed", out[2][models.OrderStatusPlaced].SalesTotal, "14")
	if out[3][models.OrderStatusCompleted].TicketCount != 0 {
		t.Fatalf("expected empty summary for event 3")
	}
}

// TestTicketStatistics verifies per-status tickets, distinct orders and sales.
func TestTicketStatistics(t *testing.T) {
	lines := []models.SaleLine{
		line(1, models.OrderStatusCompleted, "10", 2, "0"),
		line(1, models.OrderStatusCompleted, "10", 1, "0"),
		line(2, models.OrderStatusCompleted, "12", 1, "2"),
		line(3, models.OrderStatusPending, "10", 4, "0"),
		line(4, models.OrderStatusDraft, "10", 1, "0"),
		line(5, models.OrderStatusExpired, "0", 3, "1"),
		line(6, models.OrderStatusCancelled, "10", 0, "0"),
	}

	stats := TicketStatistics(lines)

	if stats.Tickets.Total != 12 || stats.Tickets.Completed != 4 || stats.Tickets.Pending != 4 || stats.Tickets.Expired != 3 {
		t.Fatalf("unexpected ticket counts: %+v", stats.Tickets)
	}
	if stats.Orders.Total != 6 {
		t.Fatalf("expected 6 distinct orders, got %d", stats.Orders.Total)
	}
	if stats.Orders.Completed != 2 {
		t.Fatalf("expected 2 completed orders, got %d", stats.Orders.Completed)
	}
	if stats.Orders.Cancelled != 1 || stats.Orders.Placed != 0 {
		t.Fatalf("unexpected order counts: %+v", stats.Orders)
	}

	assertMoney(t, "completed sales", stats.Sales.Completed, "40")
	assertMoney(t, "pending sales", stats.Sales.Pending, "40")
	assertMoney(t, "draft sales", stats.Sales.Draft, "10")
	assertMoney(t, "expired sales", stats.Sales.Expired, "0")
	assertMoney(t, "cancelled sales", stats.Sales.Cancelled, "0")
	assertMoney(t, "total sales", stats.Sales.Total, "90")
}

// TestTicketStatisticsEmpty verifies every breakdown defaults to zero.
func TestTicketStatisticsEmpty(t *testing.T) {
	stats := TicketStatistics(nil)
	if stats.Tickets != (CountBreakdown{}) || stats.Orders != (CountBreakdown{}) {
		t.Fatalf("expected zero counts, got %+v %+v", stats.Tickets, stats.Orders)
	}
	assertMoney(t, "total sales", stats.Sales.Total, "0")
	assertMoney(t, "completed sales", stats.Sales.Completed, "0")
}
