// Package tickets serves booking, cancellation and the admin report.
package tickets

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"go.lepak.sg/metro-planner/auth"
	"go.lepak.sg/metro-planner/server/handler/respond"
	"go.lepak.sg/metro-planner/ticket"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service *ticket.Service
	metrics *metrics
}

func New(s *ticket.Service, reg prometheus.Registerer) *Handler {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Handler{service: s, metrics: newMetrics(reg)}
}

// Every route here sits behind auth.Middleware.
func username(r *http.Request) string {
	c, _ := auth.ClaimsFrom(r.Context())
	if c == nil {
		return ""
	}
	return c.Username
}

// Book serves POST /v1/tickets.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	var p ticket.BookParam
	if err := respond.Decode(w, r, &p); err != nil {
		h.reject(w, err)
		return
	}
	p.Username = username(r)

	t, err := h.service.Book(r.Context(), p)
	if err != nil {
		h.reject(w, err)
		return
	}

	h.metrics.Booked.Inc()
	h.metrics.Revenue.Add(float64(t.Fare))
	respond.JSON(w, http.StatusCreated, t)
}

// List serves GET /v1/tickets.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), username(r), r.URL.Query().Get("status"))
	if err != nil {
		respond.Err(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// Get serves GET /v1/tickets/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Get(r.Context(), username(r), r.PathValue("id"))
	if err != nil {
		respond.Err(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, t)
}

// Cancel serves DELETE /v1/tickets/{id}.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Cancel(r.Context(), username(r), r.PathValue("id"))
	if err != nil {
		respond.Err(w, err)
		return
	}
	h.metrics.Cancelled.Inc()
	respond.JSON(w, http.StatusOK, t)
}

// QR serves GET /v1/tickets/{id}/qr[?ticket=].
func (h *Handler) QR(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Get(r.Context(), username(r), r.PathValue("id"))
	if err != nil {
		respond.Err(w, err)
		return
	}

	png, err := ticket.QR(t, r.URL.Query().Get("ticket"))
	if err != nil {
		respond.Err(w, err)
		return
	}
	respond.Bytes(w, "image/png", png)
}

// Report serves GET /v1/admin/report[?status=], every user's bookings as xlsx.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), "", r.URL.Query().Get("status"))
	if err != nil {
		respond.Err(w, err)
		return
	}

	var buf bytes.Buffer
	if err := ticket.Export(&buf, list); err != nil {
		respond.Err(w, err)
		return
	}

	name := fmt.Sprintf("tickets-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("content-disposition", "attachment; filename="+strconv.Quote(name))
	respond.Bytes(w, contentTypeXLSX, buf.Bytes())
}

func (h *Handler) reject(w http.ResponseWriter, err error) {
	code := respond.StatusOf(err)
	h.metrics.Rejected.WithLabelValues(strconv.Itoa(code)).Inc()
	respond.Err(w, err)
}
