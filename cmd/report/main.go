package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"go.lepak.sg/metro-planner/model"
	"go.lepak.sg/metro-planner/store"
	"go.lepak.sg/metro-planner/ticket"
)

const (
	envDsn  = "DSN"
	timeout = 30 * time.Second
)

var (
	out    = flag.String("o", "", "output file (default: tickets-YYMMDD.xlsx)")
	status = flag.String("status", "", "only BOOKED or CANCELLED bookings")
	user   = flag.String("user", "", "only bookings made by this user")
)

func main() {
	flag.Parse()

	dsn := os.Getenv(envDsn)
	if dsn == "" {
		panic("where is dsn?")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	db, err := store.OpenMySQL(ctx, dsn)
	if err != nil {
		panic(err)
	}
	defer func() {
		err = db.Close()
		if err != nil {
			log.Printf("error closing db: %v", err)
		}
	}()

	tickets, err := db.ListTickets(ctx, store.ListOptions{BookedBy: *user, Status: model.TicketStatus(*status)})
	if err != nil {
		log.Fatalf("error: listing tickets: %v", err)
	}

	name := *out
	if name == "" {
		name = fmt.Sprintf("tickets-%s.xlsx", time.Now().Format("060102"))
	}
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		log.Fatalf("error: %v", err)
	}
	defer f.Close()

	if err := ticket.Export(f, tickets); err != nil {
		log.Fatalf("error: writing report: %v", err)
	}
	fmt.Printf("wrote %d bookings to %s\n", len(tickets), name)
}
