package handlers

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"eventsales/backend/internal/config"
	"eventsales/backend/internal/models"
	"eventsales/backend/internal/repository"
	"eventsales/backend/internal/sales"
)

const testSecret = "test-secret"

// memoryStore backs the handlers and the reporter in tests.
type memoryStore struct {
	mu       sync.Mutex
	events   map[int64]models.Event
	lines    []models.SaleLine
	saves    int
	tickets  map[int64]models.Ticket
	channels map[int64]models.VideoChannel
	streams  map[int64]models.VideoStream
	users    map[string]models.User
	nextID   int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		events:   map[int64]models.Event{},
		tickets:  map[int64]models.Ticket{},
		channels: map[int64]models.VideoChannel{},
		streams:  map[int64]models.VideoStream{},
		users:    map[string]models.User{},
		nextID:   100,
	}
}

func (s *memoryStore) ListEvents(_ context.Context, limit, offset int) ([]models.Event, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.events))
	for id := range s.events {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	start, end := window(len(ids), limit, offset)
	out := make([]models.Event, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, s.events[id])
	}
	return out, len(ids), nil
}

func (s *memoryStore) GetEventsByIDs(_ context.Context, ids []int64) ([]models.Event, error) {
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

func (s *memoryStore) SaveEventSales(_ context.Context, events []models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	for _, e := range events {
		s.events[e.ID] = e
	}
	return nil
}

func (s *memoryStore) GetTicket(_ context.Context, id int64) (models.Ticket, error) {
	t, ok := s.tickets[id]
	if !ok {
		return models.Ticket{}, repository.ErrTicketNotFound
	}
	return t, nil
}

func (s *memoryStore) GetTicketEventID(ctx context.Context, id int64) (int64, error) {
	t, err := s.GetTicket(ctx, id)
	return t.EventID, err
}

func (s *memoryStore) ListTicketSaleLines(_ context.Context, ticketID int64) ([]models.SaleLine, error) {
	out := make([]models.SaleLine, 0)
	for _, line := range s.lines {
		if line.TicketID == ticketID {
			out = append(out, line)
		}
	}
	return out, nil
}

func (s *memoryStore) ListVideoChannels(_ context.Context, limit, offset int) ([]models.VideoChannel, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.channels))
	for id := range s.channels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	start, end := window(len(ids), limit, offset)
	out := make([]models.VideoChannel, 0, end-start)
	for _, id := range ids[start:end] {
		out = append(out, s.channels[id])
	}
	return out, len(ids), nil
}

func (s *memoryStore) GetVideoChannel(_ context.Context, id int64) (models.VideoChannel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.channels[id]
	if !ok {
		return models.VideoChannel{}, repository.ErrVideoChannelNotFound
	}
	return c, nil
}

func (s *memoryStore) CreateVideoChannel(_ context.Context, in models.VideoChannelInput) (models.VideoChannel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := time.Now().UTC()
	c := models.VideoChannel{
		ID:        s.nextID,
		Name:      in.Name,
		Provider:  in.Provider,
		URL:       in.URL,
		IconURL:   in.IconURL,
		APIURL:    in.APIURL,
		APIKey:    in.APIKey,
		Extra:     in.Extra,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.channels[c.ID] = c
	return c, nil
}

func (s *memoryStore) UpdateVideoChannel(_ context.Context, id int64, patch models.VideoChannelPatch) (models.VideoChannel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.channels[id]
	if !ok {
		return models.VideoChannel{}, repository.ErrVideoChannelNotFound
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.URL != nil {
		c.URL = *patch.URL
	}
	if patch.IconURL != nil {
		c.IconURL = *patch.IconURL
	}
	if patch.APIURL != nil {
		c.APIURL = *patch.APIURL
	}
	s.channels[id] = c
	return c, nil
}

func (s *memoryStore) DeleteVideoChannel(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.channels[id]; !ok {
		return repository.ErrVideoChannelNotFound
	}
	delete(s.channels, id)
	return nil
}

func (s *memoryStore) GetVideoStream(_ context.Context, id int64) (models.VideoStream, error) {
	st, ok := s.streams[id]
	if !ok {
		return models.VideoStream{}, repository.ErrVideoStreamNotFound
	}
	return st, nil
}

func (s *memoryStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	u, ok := s.users[email]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func window(n, limit, offset int) (int, int) {
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}

// staticRoles treats the listed users as admins and the pairs as coorganizers.
type staticRoles struct {
	admins       map[int64]bool
	coorganizers map[[2]int64]bool
}

func (s staticRoles) IsAdmin(_ context.Context, userID int64) (bool, error) {
	return s.admins[userID], nil
}

func (s staticRoles) IsCoorganizer(_ context.Context, userID, eventID int64) (bool, error) {
	return s.admins[userID] || s.coorganizers[[2]int64{userID, eventID}], nil
}

func newTestHandler(store *memoryStore, roles staticRoles, objects sales.ObjectStore) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reporter := sales.NewReporter(store, logger)
	var exporter *sales.Exporter
	if objects != nil {
		exporter = sales.NewExporter(reporter, store, objects)
	}
	cfg := &config.Config{JWTSecret: testSecret}
	return New(store, roles, reporter, exporter, nil, cfg, logger)
}
