// Package store persists users and ticket bookings.
package store

import (
	"context"
	"errors"

	"go.lepak.sg/metro-planner/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// ListOptions filters ListTickets. Zero values match everything.
type ListOptions struct {
	BookedBy string
	Status   model.TicketStatus
}

func (o ListOptions) match(t *model.Ticket) bool {
	if o.BookedBy != "" && t.BookedBy != o.BookedBy {
		return false
	}
	if o.Status != "" && t.Status != o.Status {
		return false
	}
	return true
}

type Store interface {
	CreateUser(ctx context.Context, u model.User) error
	GetUser(ctx context.Context, username string) (model.User, error)

	SaveTicket(ctx context.Context, t model.Ticket) error
	// UpdateTicket overwrites the status fields of an existing booking.
	UpdateTicket(ctx context.Context, t model.Ticket) error
	GetTicket(ctx context.Context, bookingID string) (model.Ticket, error)
	// ListTickets returns matching bookings, oldest first.
	ListTickets(ctx context.Context, opt ListOptions) ([]model.Ticket, error)

	Ping(ctx context.Context) error
	Close() error
}
