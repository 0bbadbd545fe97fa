package sales

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"eventsales/backend/internal/models"
	"eventsales/backend/internal/schema"

	"github.com/google/uuid"
)

const (
	exportContentType = "text/csv"
	exportLinkTTL     = 15 * time.Minute
)

// ErrExportDisabled is returned when no object storage is configured.
var ErrExportDisabled = errors.New("sales export is not configured")

// ObjectStore uploads export files and signs download links for them.
type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) error
	PresignGetObject(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Export describes one uploaded CSV report.
type Export struct {
	ID          string
	Key         string
	DownloadURL string
	Events      int
	CreatedAt   time.Time
}

// Exporter refreshes every event and publishes the totals as CSV.
type Exporter struct {
	reporter *Reporter
	store    Store
	objects  ObjectStore
	now      func() time.Time
}

// NewExporter returns an exporter. A nil object store disables exports.
func NewExporter(reporter *Reporter, store Store, objects ObjectStore) *Exporter {
	return &Exporter{reporter: reporter, store: store, objects: objects, now: time.Now}
}

func (e *Exporter) Export(ctx context.Context) (Export, error) {
	if e == nil || e.objects == nil {
		return Export{}, ErrExportDisabled
	}
	if _, err := e.reporter.RefreshAll(ctx, defaultRefreshBatch); err != nil {
		return Export{}, err
	}
	events, _, err := e.store.ListEvents(ctx, 0, 0)
	if err != nil {
		return Export{}, fmt.Errorf("list events: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, events); err != nil {
		return Export{}, err
	}

	now := e.now().UTC()
	id := uuid.NewString()
	key := fmt.Sprintf("exports/sales/%s/%s.csv", now.Format("2006/01/02"), id)
	if err := e.objects.PutObject(ctx, key, exportContentType, buf.Bytes()); err != nil {
		return Export{}, fmt.Errorf("upload export: %w", err)
	}
	link, err := e.objects.PresignGetObject(ctx, key, exportLinkTTL)
	if err != nil {
		return Export{}, fmt.Errorf("presign export: %w", err)
	}
	return Export{ID: id, Key: key, DownloadURL: link, Events: len(events), CreatedAt: now}, nil
}

var csvHeader = []string{
	"id",
	"identifier",
	"name",
	"type",
	"owner",
	"payment_currency",
	"completed_order_sales",
	"placed_order_sales",
	"pending_order_sales",
	"completed_order_tickets",
	"placed_order_tickets",
	"pending_order_tickets",
}

// WriteCSV writes one row per event with its cached totals.
func WriteCSV(w io.Writer, events []models.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, event := range events {
		row := []string{
			strconv.FormatInt(event.ID, 10),
			event.Identifier,
			event.Name,
			schema.EventType(event),
			event.OwnerEmail,
			event.PaymentCurrency,
			event.Sales.CompletedOrderSales.StringFixed(2),
			event.Sales.PlacedOrderSales.StringFixed(2),
			event.Sales.PendingOrderSales.StringFixed(2),
			strconv.FormatInt(event.Sales.CompletedOrderTickets, 10),
			strconv.FormatInt(event.Sales.PlacedOrderTickets, 10),
			strconv.FormatInt(event.Sales.PendingOrderTickets, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
