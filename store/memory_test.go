package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.lepak.sg/metro-planner/model"
)

func Test_Memory_Users(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	u := model.User{Username: "Commuter1", PasswordHash: "x", CreatedAt: time.Now()}
	if err := m.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	if err := m.CreateUser(ctx, model.User{Username: "commuter1"}); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}

	got, err := m.GetUser(ctx, "COMMUTER1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Username != "Commuter1" {
		t.Errorf("unexpected user %+v", got)
	}
	if _, err := m.GetUser(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func Test_Memory_Tickets(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	tickets := []model.Ticket{
		{BookingID: "c", TicketIDs: []string{"C1"}, BookedAt: base.Add(2 * time.Minute), Status: model.Booked, BookedBy: "alice"},
		{BookingID: "a", TicketIDs: []string{"A1", "A2"}, BookedAt: base, Status: model.Booked, BookedBy: "alice"},
		{BookingID: "b", TicketIDs: []string{"B1"}, BookedAt: base.Add(time.Minute), Status: model.Booked, BookedBy: "bob"},
	}
	for _, tk := range tickets {
		if err := m.SaveTicket(ctx, tk); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.SaveTicket(ctx, tickets[0]); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}

	all, err := m.ListTickets(ctx, ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].BookingID != "a" || all[2].BookingID != "c" {
		t.Errorf("expected a, b, c in booking order, got %+v", all)
	}

	now := base.Add(time.Hour)
	cancel := model.Ticket{BookingID: "a", Status: model.Cancelled, CancelledAt: &now}
	if err := m.UpdateTicket(ctx, cancel); err != nil {
		t.Fatal(err)
	}
	if err := m.UpdateTicket(ctx, model.Ticket{BookingID: "zzz"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	got, err := m.GetTicket(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.Cancelled || got.CancelledAt == nil || len(got.TicketIDs) != 2 {
		t.Errorf("unexpected ticket %+v", got)
	}

	// returned values must not alias stored ones
	got.TicketIDs[0] = "changed"
	again, _ := m.GetTicket(ctx, "a")
	if again.TicketIDs[0] != "A1" {
		t.Error("stored ticket modified through returned value")
	}

	booked, err := m.ListTickets(ctx, ListOptions{BookedBy: "alice", Status: model.Booked})
	if err != nil {
		t.Fatal(err)
	}
	if len(booked) != 1 || booked[0].BookingID != "c" {
		t.Errorf("expected only c, got %+v", booked)
	}

	if _, err := m.GetTicket(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
