// Package stations serves the station directory and the admin edits to it.
package stations

import (
	"errors"
	"log"
	"net/http"

	"go.lepak.sg/metro-planner/auth"
	"go.lepak.sg/metro-planner/data"
	"go.lepak.sg/metro-planner/model"
	"go.lepak.sg/metro-planner/server/handler/respond"
)

type Handler struct {
	Registry *data.Registry
}

type listResult struct {
	Version      uint64         `json:"version"`
	Interchanges []string       `json:"interchanges"`
	Stations     []data.Station `json:"stations"`
}

type addRequest struct {
	Line       string `json:"line" validate:"required"`
	Name       string `json:"name" validate:"required,max=64"`
	HasParking bool   `json:"hasParking"`
	HasFeeder  bool   `json:"hasFeeder"`
}

type updateRequest struct {
	// Empty keeps the current name
	Name       string `json:"name" validate:"max=64"`
	HasParking bool   `json:"hasParking"`
	HasFeeder  bool   `json:"hasFeeder"`
}

// List serves GET /v1/stations.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	snap := h.Registry.Snapshot()
	line := r.URL.Query().Get("line")

	var stations []data.Station
	if line == "" {
		stations = snap.Directory.Stations()
	} else if data.IsLine(line) {
		stations = snap.Directory.Line(line)
	} else {
		respond.Error(w, http.StatusBadRequest, "unknown line "+line)
		return
	}
	if stations == nil {
		stations = []data.Station{}
	}

	if r.URL.Query().Get("format") == "pb" {
		b, err := model.PackStations(snap.Version, stations)
		if err != nil {
			respond.Err(w, err)
			return
		}
		respond.Bytes(w, "application/x-protobuf", b)
		return
	}

	respond.JSON(w, http.StatusOK, listResult{
		Version:      snap.Version,
		Interchanges: snap.Directory.Interchanges(),
		Stations:     stations,
	})
}

// Add serves POST /v1/admin/stations.
func (h Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Err(w, err)
		return
	}

	s, err := h.Registry.AddStation(req.Line, req.Name, req.HasParking, req.HasFeeder)
	if err != nil {
		respond.Err(w, err)
		return
	}
	audit(r, "added", s)
	respond.JSON(w, http.StatusCreated, s)
}

// Update serves PUT /v1/admin/stations/{id}.
func (h Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Err(w, err)
		return
	}

	s, err := h.Registry.UpdateStation(r.PathValue("id"), req.Name, req.HasParking, req.HasFeeder)
	if err != nil {
		byIDErr(w, err)
		return
	}
	audit(r, "updated", s)
	respond.JSON(w, http.StatusOK, s)
}

// Delete serves DELETE /v1/admin/stations/{id}.
func (h Handler) Delete(w http.ResponseWriter, r *http.Request) {
	s, err := h.Registry.DeleteStation(r.PathValue("id"))
	if err != nil {
		byIDErr(w, err)
		return
	}
	audit(r, "deleted", s)
	respond.JSON(w, http.StatusOK, s)
}

// An unknown id in the path is a missing resource, not a bad request.
func byIDErr(w http.ResponseWriter, err error) {
	if errors.Is(err, data.ErrUnknownStation) {
		respond.Error(w, http.StatusNotFound, err.Error())
		return
	}
	respond.Err(w, err)
}

func audit(r *http.Request, what string, s data.Station) {
	by := "unknown"
	if c, ok := auth.ClaimsFrom(r.Context()); ok {
		by = c.Username
	}
	log.Printf("station %s %s by %s: %s line %s", what, s.ID, by, s.Name, s.Line)
}
