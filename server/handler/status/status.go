package status

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"go.lepak.sg/metro-planner/data"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by store.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	GitRev   string
	Registry *data.Registry
	Store    Pinger
}

type result struct {
	Version        string `json:"version"`
	NetworkVersion uint64 `json:"network_version"`
	Stations       int    `json:"stations"`
	FareRules      int    `json:"fare_rules"`
	MaxFareStops   int    `json:"max_fare_stops"`
	Store          string `json:"store"`
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("content-type", "application/json")

	snap := h.Registry.Snapshot()
	res := result{
		Version:        h.GitRev,
		NetworkVersion: snap.Version,
		Stations:       snap.Directory.Len(),
		FareRules:      len(snap.Fares),
		MaxFareStops:   snap.Fares.MaxStops(),
		Store:          "ok",
	}

	code := http.StatusOK
	if h.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.Store.Ping(ctx); err != nil {
			log.Printf("error: store ping: %v", err)
			res.Store = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}

	b, err := json.Marshal(res)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Printf("error: marshal of status result: %s", err.Error())
		return
	}

	w.WriteHeader(code)
	_, err = w.Write(b)
	if err != nil {
		log.Printf("error: writing response: %s", err.Error())
		return
	}
}
