package models

import "github.com/shopspring/decimal"

// Money is a monetary amount in the event's payment currency.
type Money = decimal.Decimal

const (
	OrderStatusDraft     = "draft"
	OrderStatusPending   = "pending"
	OrderStatusExpired   = "expired"
	OrderStatusCancelled = "cancelled"
	OrderStatusPlaced    = "placed"
	OrderStatusCompleted = "completed"
)

// OrderStatuses lists every order lifecycle stage.
var OrderStatuses = []string{
	OrderStatusDraft,
	OrderStatusCancelled,
	OrderStatusPending,
	OrderStatusExpired,
	OrderStatusPlaced,
	OrderStatusCompleted,
}

// Ticket is a sellable item definition of an event.
type Ticket struct {
	ID      int64
	EventID int64
	Name    string
	Price   Money
}

// SaleLine is one order-ticket row joined with its order and discount code.
type SaleLine struct {
	EventID  int64
	OrderID  int64
	TicketID int64
	Status   string
	Price    Money
	Quantity int64
	Discount Money
}
