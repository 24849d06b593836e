package model

import (
	"fmt"
	"strings"
	"time"
)

type TicketType string

const (
	SingleJourney TicketType = "SJT"
	ReturnJourney TicketType = "RJT"
	Family        TicketType = "FAMILY"
	Group         TicketType = "GROUP"
	// Store value pass. It has a validity but cannot be booked as a journey ticket.
	StoreValuePass TicketType = "SVP"
)

const defaultValidity = 120

var validity = map[TicketType]int{
	SingleJourney:  120,
	ReturnJourney:  180,
	Family:         300,
	Group:          300,
	StoreValuePass: 1440,
}

// BookableTypes are the types a journey ticket can be issued as.
var BookableTypes = []TicketType{SingleJourney, ReturnJourney, Family, Group}

func ParseTicketType(s string) (TicketType, error) {
	t := TicketType(strings.ToUpper(strings.TrimSpace(s)))
	for _, b := range BookableTypes {
		if t == b {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown ticket type %q", s)
}

// Validity is how long a ticket stays valid after booking, in minutes.
func (t TicketType) Validity() int {
	if v, ok := validity[t]; ok {
		return v
	}
	return defaultValidity
}

// FareMultiplier is applied to the single-trip fare of every passenger.
func (t TicketType) FareMultiplier() int {
	if t == ReturnJourney {
		return 2
	}
	return 1
}

// ValidateCount checks the number of passengers allowed on one booking.
func (t TicketType) ValidateCount(n int) error {
	lo, hi := 1, 6
	switch t {
	case Family:
		lo, hi = 2, 5
	case Group:
		lo, hi = 20, 255
	}
	if n < lo || n > hi {
		return fmt.Errorf("%s tickets are for %d to %d passengers, got %d", t, lo, hi, n)
	}
	return nil
}

type TicketStatus string

const (
	Booked    TicketStatus = "BOOKED"
	Cancelled TicketStatus = "CANCELLED"
)

// Ticket is one booking. It carries one ticket ID per passenger.
type Ticket struct {
	BookingID       string       `json:"bookingId"`
	TicketIDs       []string     `json:"ticketIds"`
	Type            TicketType   `json:"type"`
	From            string       `json:"from"`
	To              string       `json:"to"`
	Count           int          `json:"count"`
	Stops           int          `json:"stops"`
	Fare            int          `json:"fare"` // total for all passengers
	ValidityMinutes int          `json:"validityMinutes"`
	BookedAt        time.Time    `json:"bookedAt"`
	Status          TicketStatus `json:"status"`
	CancelledAt     *time.Time   `json:"cancelledAt,omitempty"`
	BookedBy        string       `json:"bookedBy"`
}

func (t *Ticket) ValidUntil() time.Time {
	return t.BookedAt.Add(time.Duration(t.ValidityMinutes) * time.Minute)
}

type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
