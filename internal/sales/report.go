// Package sales assembles the per-event sales report served to admins.
package sales

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"eventsales/backend/internal/jsonapi"
	"eventsales/backend/internal/models"
	"eventsales/backend/internal/schema"
	"eventsales/backend/internal/ticketing"

	"golang.org/x/sync/singleflight"
)

const (
	defaultRefreshBatch = 200
	refreshTimeout      = 30 * time.Second
)

// Store is the persistence the reporter reads from and writes back to.
type Store interface {
	ListEvents(ctx context.Context, limit, offset int) ([]models.Event, int, error)
	GetEventsByIDs(ctx context.Context, ids []int64) ([]models.Event, error)
	ListEventSaleLines(ctx context.Context, eventIDs []int64) ([]models.SaleLine, error)
	SaveEventSales(ctx context.Context, events []models.Event) error
}

// Reporter recomputes cached sales totals of events and writes them back.
type Reporter struct {
	store  Store
	logger *slog.Logger
	group  singleflight.Group
}

func NewReporter(store Store, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{store: store, logger: logger}
}

// AttachEventSales refreshes the events behind a page of event-info
// resources and adds the six sales attributes to each of them.
func (r *Reporter) AttachEventSales(ctx context.Context, resources []jsonapi.Resource) error {
	if len(resources) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(resources))
	for _, res := range resources {
		id, err := strconv.ParseInt(res.ID, 10, 64)
		if err != nil {
			return fmt.Errorf("event resource id %q: %w", res.ID, err)
		}
		ids = append(ids, id)
	}

	totals, err := r.Refresh(ctx, ids)
	if err != nil {
		return err
	}
	for i := range resources {
		id, _ := strconv.ParseInt(resources[i].ID, 10, 64)
		schema.ApplyEventSales(&resources[i], totals[id])
	}
	return nil
}

// Refresh recomputes and saves the totals of the given events. Concurrent
// calls for the same set of events share one computation and one write.
// Events that no longer exist are absent from the result.
func (r *Reporter) Refresh(ctx context.Context, ids []int64) (map[int64]models.EventSales, error) {
	ids = normalizeIDs(ids)
	if len(ids) == 0 {
		return map[int64]models.EventSales{}, nil
	}
	ch := r.group.DoChan(refreshKey(ids), func() (interface{}, error) {
		// The shared run outlives any single caller that gives up.
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return r.refresh(runCtx, ids)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			r.logger.Debug("sales_refresh", "action", "sales_refresh", "status", "shared", "events", len(ids))
		}
		return res.Val.(map[int64]models.EventSales), nil
	}
}

func (r *Reporter) refresh(ctx context.Context, ids []int64) (map[int64]models.EventSales, error) {
	events, err := r.store.GetEventsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	lines, err := r.store.ListEventSaleLines(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load sale lines: %w", err)
	}

	summaries := ticketing.SummarizeEvents(ids, lines)
	out := make(map[int64]models.EventSales, len(events))
	for i := range events {
		events[i].Sales = summaries[events[i].ID].EventSales()
		out[events[i].ID] = events[i].Sales
	}
	if err := r.store.SaveEventSales(ctx, events); err != nil {
		return nil, fmt.Errorf("save event sales: %w", err)
	}
	return out, nil
}

// RefreshAll walks every event in id order and refreshes it batch by batch.
// It returns the number of events refreshed.
func (r *Reporter) RefreshAll(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = defaultRefreshBatch
	}
	refreshed := 0
	for offset := 0; ; offset += batchSize {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		events, total, err := r.store.ListEvents(ctx, batchSize, offset)
		if err != nil {
			return refreshed, fmt.Errorf("list events: %w", err)
		}
		if len(events) == 0 {
			break
		}
		ids := make([]int64, 0, len(events))
		for _, event := range events {
			ids = append(ids, event.ID)
		}
		totals, err := r.Refresh(ctx, ids)
		if err != nil {
			return refreshed, err
		}
		refreshed += len(totals)
		if offset+len(events) >= total {
			break
		}
	}
	r.logger.Info("sales_refresh_all", "action", "sales_refresh_all", "status", "success", "events", refreshed)
	return refreshed, nil
}

func normalizeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func refreshKey(ids []int64) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}
