package models

import "time"

// User represents an account able to call the API.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	IsSuperAdmin bool      `json:"isSuperAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Event roles that grant organizer-level access to an event.
const (
	RoleOwner       = "owner"
	RoleOrganizer   = "organizer"
	RoleCoorganizer = "coorganizer"
)

// Event is an event row together with its cached sales totals.
type Event struct {
	ID              int64
	Identifier      string
	Name            string
	OwnerID         *int64
	OwnerEmail      string
	StartsAt        *time.Time
	EndsAt          *time.Time
	Online          bool
	LocationName    string
	PaymentCurrency string
	PaymentCountry  string
	CreatedAt       time.Time
	DeletedAt       *time.Time
	Sales           EventSales
}

// EventSales holds the report values cached on the event row.
type EventSales struct {
	CompletedOrderSales   Money
	PlacedOrderSales      Money
	PendingOrderSales     Money
	CompletedOrderTickets int64
	PlacedOrderTickets    int64
	PendingOrderTickets   int64
}
