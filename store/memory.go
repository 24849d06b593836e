package store

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"go.lepak.sg/metro-planner/model"
)

// Memory keeps everything in process. It is used when no database is
// configured, and in tests.
type Memory struct {
	lock    sync.RWMutex
	users   map[string]model.User
	tickets map[string]model.Ticket
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[string]model.User),
		tickets: make(map[string]model.Ticket),
	}
}

func (m *Memory) CreateUser(_ context.Context, u model.User) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	key := strings.ToLower(u.Username)
	if _, ok := m.users[key]; ok {
		return ErrExists
	}
	m.users[key] = u
	return nil
}

func (m *Memory) GetUser(_ context.Context, username string) (model.User, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	u, ok := m.users[strings.ToLower(username)]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) SaveTicket(_ context.Context, t model.Ticket) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, ok := m.tickets[t.BookingID]; ok {
		return ErrExists
	}
	m.tickets[t.BookingID] = clone(t)
	return nil
}

func (m *Memory) UpdateTicket(_ context.Context, t model.Ticket) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	cur, ok := m.tickets[t.BookingID]
	if !ok {
		return ErrNotFound
	}
	cur.Status = t.Status
	cur.CancelledAt = t.CancelledAt
	m.tickets[t.BookingID] = clone(cur)
	return nil
}

func (m *Memory) GetTicket(_ context.Context, bookingID string) (model.Ticket, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	t, ok := m.tickets[bookingID]
	if !ok {
		return model.Ticket{}, ErrNotFound
	}
	return clone(t), nil
}

func (m *Memory) ListTickets(_ context.Context, opt ListOptions) ([]model.Ticket, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	var out []model.Ticket
	for _, t := range m.tickets {
		if opt.match(&t) {
			out = append(out, clone(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BookedAt.Equal(out[j].BookedAt) {
			return out[i].BookingID < out[j].BookingID
		}
		return out[i].BookedAt.Before(out[j].BookedAt)
	})
	return out, nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

func (m *Memory) Close() error {
	return nil
}

// clone copies the slice and pointer fields so callers never share them with the map.
func clone(t model.Ticket) model.Ticket {
	t.TicketIDs = slices.Clone(t.TicketIDs)
	if t.CancelledAt != nil {
		at := *t.CancelledAt
		t.CancelledAt = &at
	}
	return t
}
