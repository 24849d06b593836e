// Package ticket books and cancels journey tickets.
package ticket

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"go.lepak.sg/metro-planner/data"
	"go.lepak.sg/metro-planner/journey"
	"go.lepak.sg/metro-planner/model"
	"go.lepak.sg/metro-planner/store"
)

var (
	ErrUnreachable    = errors.New("no route between these stations")
	ErrNoFare         = errors.New("no fare covers this journey")
	ErrNotCancellable = errors.New("ticket is not booked")
)

type Service struct {
	registry *data.Registry
	store    store.Store
	now      func() time.Time
}

func NewService(registry *data.Registry, s store.Store) *Service {
	return &Service{registry: registry, store: s, now: time.Now}
}

type BookParam struct {
	From  string `json:"from" validate:"required"`
	To    string `json:"to" validate:"required"`
	Type  string `json:"type" validate:"required"`
	Count int    `json:"count" validate:"required,gt=0"`
	// Filled in from the caller's token
	Username string `json:"-"`
}

// Book prices the journey and stores one booking holding Count tickets.
func (s *Service) Book(ctx context.Context, p BookParam) (model.Ticket, error) {
	typ, err := model.ParseTicketType(p.Type)
	if err != nil {
		return model.Ticket{}, data.ValidationError(err.Error())
	}
	if err := typ.ValidateCount(p.Count); err != nil {
		return model.Ticket{}, data.ValidationError(err.Error())
	}

	snap := s.registry.Snapshot()
	start, end, err := snap.Directory.Pair(p.From, p.To)
	if err != nil {
		return model.Ticket{}, err
	}

	q := journey.Plan(snap.Directory, snap.Fares, start, end)
	switch {
	case !q.Reachable():
		return model.Ticket{}, ErrUnreachable
	case q.Fare == data.NoFare:
		return model.Ticket{}, fmt.Errorf("%w: %d stops", ErrNoFare, q.Stops)
	}

	ids := make([]string, p.Count)
	for i := range ids {
		ids[i] = newTicketID()
	}

	t := model.Ticket{
		BookingID:       uuid.NewString(),
		TicketIDs:       ids,
		Type:            typ,
		From:            start.Name,
		To:              end.Name,
		Count:           p.Count,
		Stops:           q.Stops,
		Fare:            p.Count * q.Fare * typ.FareMultiplier(),
		ValidityMinutes: typ.Validity(),
		BookedAt:        s.now().UTC(),
		Status:          model.Booked,
		BookedBy:        p.Username,
	}
	if err := s.store.SaveTicket(ctx, t); err != nil {
		return model.Ticket{}, fmt.Errorf("save ticket: %w", err)
	}

	log.Printf("booked %s: %d x %s %s -> %s for %s", t.BookingID, t.Count, t.Type, t.From, t.To, t.BookedBy)
	return t, nil
}

// Get returns a booking owned by username. An empty username matches any owner.
func (s *Service) Get(ctx context.Context, username, bookingID string) (model.Ticket, error) {
	t, err := s.store.GetTicket(ctx, bookingID)
	if err != nil {
		return model.Ticket{}, err
	}
	if username != "" && t.BookedBy != username {
		return model.Ticket{}, store.ErrNotFound
	}
	return t, nil
}

func (s *Service) Cancel(ctx context.Context, username, bookingID string) (model.Ticket, error) {
	t, err := s.Get(ctx, username, bookingID)
	if err != nil {
		return model.Ticket{}, err
	}
	if t.Status != model.Booked {
		return model.Ticket{}, ErrNotCancellable
	}

	now := s.now().UTC()
	t.Status = model.Cancelled
	t.CancelledAt = &now
	if err := s.store.UpdateTicket(ctx, t); err != nil {
		return model.Ticket{}, fmt.Errorf("update ticket: %w", err)
	}

	log.Printf("cancelled %s for %s", t.BookingID, t.BookedBy)
	return t, nil
}

// List returns the bookings of username, or of everyone if username is empty.
// status may be empty, BOOKED or CANCELLED.
func (s *Service) List(ctx context.Context, username, status string) ([]model.Ticket, error) {
	st := model.TicketStatus(strings.ToUpper(strings.TrimSpace(status)))
	switch st {
	case "", model.Booked, model.Cancelled:
	default:
		return nil, data.ValidationError(fmt.Sprintf("unknown ticket status %q", status))
	}
	return s.store.ListTickets(ctx, store.ListOptions{BookedBy: username, Status: st})
}

func newTicketID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
