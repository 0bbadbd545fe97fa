package sales

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"eventsales/backend/internal/jsonapi"
	"eventsales/backend/internal/models"
	"eventsales/backend/internal/schema"

	"github.com/shopspring/decimal"
)

type memoryStore struct {
	mu       sync.Mutex
	events   map[int64]models.Event
	lines    []models.SaleLine
	saves    [][]models.Event
	listCall int
	block    chan struct{}
	entered  chan struct{}
}

func (s *memoryStore) savesCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

func newMemoryStore(events ...models.Event) *memoryStore {
	s := &memoryStore{events: map[int64]models.Event{}}
	for _, e := range events {
		s.events[e.ID] = e
	}
	return s
}

func (s *memoryStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(s.events))
	for id := range s.events {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *memoryStore) ListEvents(_ context.Context, limit, offset int) ([]models.Event, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCall++
	ids := s.sortedIDs()
	if offset > len(ids) {
		offset = len(ids)
	}
	end := len(ids)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]models.Event, 0, end-offset)
	for _, id := range ids[offset:end] {
		out = append(out, s.events[id])
	}
	return out, len(ids), nil
}

func (s *memoryStore) GetEventsByIDs(ctx context.Context, ids []int64) ([]models.Event, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Event, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.events[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memoryStore) ListEventSaleLines(_ context.Context, eventIDs []int64) ([]models.SaleLine, error) {
	want := map[int64]bool{}
	for _, id := range eventIDs {
		want[id] = true
	}
	out := make([]models.SaleLine, 0)
	for _, line := range s.lines {
		if want[line.EventID] {
			out = append(out, line)
		}
	}
	return out, nil
}

func (s *memoryStore) SaveEventSales(ctx context.Context, events []models.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := make([]models.Event, len(events))
	copy(batch, events)
	s.saves = append(s.saves, batch)
	for _, e := range events {
		s.events[e.ID] = e
	}
	return nil
}

func line(eventID, orderID int64, status, price string, qty int64, discount string) models.SaleLine {
	return models.SaleLine{
		EventID:  eventID,
		OrderID:  orderID,
		Status:   status,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
		Discount: decimal.RequireFromString(discount),
	}
}

func TestAttachEventSalesPatchesAndSaves(t *testing.T) {
	store := newMemoryStore(models.Event{ID: 1, Name: "one"}, models.Event{ID: 2, Name: "two"})
	store.lines = []models.SaleLine{
		line(1, 10, models.OrderStatusCompleted, "20", 2, "0"),
		line(1, 11, models.OrderStatusCompleted, "15", 1, "5"),
		line(1, 12, models.OrderStatusPending, "20", 3, "0"),
		line(1, 13, models.OrderStatusCancelled, "20", 9, "0"),
	}
	reporter := NewReporter(store, nil)

	page := []jsonapi.Resource{
		schema.EventInfo(store.events[1]),
		schema.EventInfo(store.events[2]),
	}
	if err := reporter.AttachEventSales(context.Background(), page); err != nil {
		t.Fatalf("AttachEventSales: %v", err)
	}

	if len(store.saves) != 1 || len(store.saves[0]) != 2 {
		t.Fatalf("expected one save of two events, got %v", store.saves)
	}
	got := page[0].Attributes
	if got["completed-order-sales"] != 50.0 || got["completed-order-tickets"] != int64(3) {
		t.Fatalf("unexpected completed totals %v", got)
	}
	if got["pending-order-sales"] != 60.0 || got["pending-order-tickets"] != int64(3) {
		t.Fatalf("unexpected pending totals %v", got)
	}
	if got["placed-order-sales"] != 0.0 || got["placed-order-tickets"] != int64(0) {
		t.Fatalf("unexpected placed totals %v", got)
	}
	empty := page[1].Attributes
	for _, key := range []string{"completed-order-sales", "placed-order-sales", "pending-order-sales"} {
		if empty[key] != 0.0 {
			t.Fatalf("expected %s to be zero for an event without orders, got %v", key, empty[key])
		}
	}

	saved := store.events[1].Sales
	if !saved.CompletedOrderSales.Equal(decimal.NewFromInt(50)) || saved.PendingOrderTickets != 3 {
		t.Fatalf("expected totals written back to the event, got %+v", saved)
	}
}

func TestAttachEventSalesRecomputesOnEveryRead(t *testing.T) {
	store := newMemoryStore(models.Event{ID: 1})
	reporter := NewReporter(store, nil)

	for i := 0; i < 2; i++ {
		page := []jsonapi.Resource{schema.EventInfo(store.events[1])}
		if err := reporter.AttachEventSales(context.Background(), page); err != nil {
			t.Fatalf("AttachEventSales: %v", err)
		}
		store.lines = append(store.lines, line(1, int64(i), models.OrderStatusPlaced, "10", 1, "0"))
	}
	if len(store.saves) != 2 {
		t.Fatalf("expected a write per read, got %d", len(store.saves))
	}
	if store.saves[1][0].Sales.PlacedOrderTickets != 1 {
		t.Fatalf("expected second read to see the new order, got %+v", store.saves[1][0].Sales)
	}
}

func TestAttachEventSalesRejectsBadIDs(t *testing.T) {
	reporter := NewReporter(newMemoryStore(), nil)
	err := reporter.AttachEventSales(context.Background(), []jsonapi.Resource{{Type: schema.TypeEventInfo, ID: "abc"}})
	if err == nil {
		t.Fatalf("expected error for non-numeric id")
	}
}

func TestRefreshCoalescesIdenticalRequests(t *testing.T) {
	store := newMemoryStore(models.Event{ID: 1}, models.Event{ID: 2})
	store.block = make(chan struct{})
	store.entered = make(chan struct{}, 2)
	reporter := NewReporter(store, nil)

	var wg sync.WaitGroup
	run := func(ids []int64) {
		defer wg.Done()
		if _, err := reporter.Refresh(context.Background(), ids); err != nil {
			t.Errorf("Refresh: %v", err)
		}
	}
	wg.Add(1)
	go run([]int64{1, 2})
	<-store.entered

	wg.Add(1)
	go run([]int64{2, 1, 2})
	time.Sleep(50 * time.Millisecond)
	close(store.block)
	wg.Wait()

	if len(store.saves) != 1 {
		t.Fatalf("expected one shared write, got %d", len(store.saves))
	}
}

func TestRefreshSurvivesFirstCallerCancel(t *testing.T) {
	store := newMemoryStore(models.Event{ID: 1})
	store.lines = []models.SaleLine{line(1, 1, models.OrderStatusCompleted, "10", 1, "0")}
	store.block = make(chan struct{})
	store.entered = make(chan struct{}, 2)
	reporter := NewReporter(store, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := reporter.Refresh(firstCtx, []int64{1})
		firstErr <- err
	}()
	<-store.entered

	type result struct {
		totals map[int64]models.EventSales
		err    error
	}
	second := make(chan result, 1)
	go func() {
		totals, err := reporter.Refresh(context.Background(), []int64{1})
		second <- result{totals, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected first caller to see context.Canceled, got %v", err)
	}
	close(store.block)

	res := <-second
	if res.err != nil {
		t.Fatalf("expected waiting caller to succeed, got %v", res.err)
	}
	if !res.totals[1].CompletedOrderSales.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected totals %+v", res.totals[1])
	}
	if n := store.savesCount(); n != 1 {
		t.Fatalf("expected one write, got %d", n)
	}
}

func TestRefreshAllWalksEveryBatch(t *testing.T) {
	var events []models.Event
	for id := int64(1); id <= 5; id++ {
		events = append(events, models.Event{ID: id})
	}
	store := newMemoryStore(events...)
	store.lines = []models.SaleLine{line(5, 1, models.OrderStatusCompleted, "7.5", 2, "0")}
	reporter := NewReporter(store, nil)

	n, err := reporter.RefreshAll(context.Background(), 2)
	if err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 events refreshed, got %d", n)
	}
	if len(store.saves) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(store.saves))
	}
	if !store.events[5].Sales.CompletedOrderSales.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("unexpected totals of last event %+v", store.events[5].Sales)
	}
}
