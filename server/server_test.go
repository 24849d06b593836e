package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"go.lepak.sg/metro-planner/auth"
	"go.lepak.sg/metro-planner/data"
	"go.lepak.sg/metro-planner/model"
	"go.lepak.sg/metro-planner/store"
)

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body interface{}) (int, []byte) {
	c.t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		c.t.Fatal(err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatal(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatal(err)
	}
	return resp.StatusCode, b
}

func (c *client) login(username, password string) {
	c.t.Helper()
	code, b := c.do(http.MethodPost, "/v1/auth/login", map[string]string{"username": username, "password": password})
	if code != http.StatusOK {
		c.t.Fatalf("login %s: %d %s", username, code, b)
	}
	var res struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(b, &res); err != nil {
		c.t.Fatal(err)
	}
	c.token = res.Token
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	reg, err := data.OpenRegistry("")
	if err != nil {
		t.Fatal(err)
	}
	st := store.NewMemory()
	a, err := auth.New(auth.NewParam{
		Store:         st,
		Secret:        []byte("test"),
		Cost:          bcrypt.MinCost,
		AdminUser:     "admin",
		AdminPassword: "Adm1n@pass",
	})
	if err != nil {
		t.Fatal(err)
	}

	mux, stop := NewMux(context.Background(), Deps{
		Registry:   reg,
		Store:      st,
		Auth:       a,
		GitRev:     "test",
		CacheSize:  64,
		Registerer: prometheus.NewRegistry(),
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		stop()
	})
	return srv
}

func Test_Server_CommuterFlow(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL}

	if code, _ := c.do(http.MethodGet, "/v1/status", nil); code != http.StatusOK {
		t.Errorf("status: %d", code)
	}
	if code, _ := c.do(http.MethodGet, "/v1/journey?from=Egmore&to=Guindy", nil); code != http.StatusOK {
		t.Errorf("journey: %d", code)
	}
	if code, _ := c.do(http.MethodGet, "/v1/tickets", nil); code != http.StatusUnauthorized {
		t.Errorf("tickets without token: expected 401, got %d", code)
	}

	creds := map[string]string{"username": "commuter1", "password": "Passw0rd!"}
	if code, b := c.do(http.MethodPost, "/v1/auth/signup", creds); code != http.StatusCreated {
		t.Fatalf("signup: %d %s", code, b)
	}
	if code, _ := c.do(http.MethodPost, "/v1/auth/signup", creds); code != http.StatusConflict {
		t.Errorf("second signup: expected 409, got %d", code)
	}
	if code, _ := c.do(http.MethodPost, "/v1/auth/login", map[string]string{"username": "commuter1", "password": "nope"}); code != http.StatusUnauthorized {
		t.Errorf("bad password: expected 401, got %d", code)
	}
	c.login("commuter1", "Passw0rd!")

	code, b := c.do(http.MethodPost, "/v1/tickets", map[string]interface{}{"from": "Egmore", "to": "Guindy", "type": "RJT", "count": 2})
	if code != http.StatusCreated {
		t.Fatalf("book: %d %s", code, b)
	}
	var tk model.Ticket
	if err := json.Unmarshal(b, &tk); err != nil {
		t.Fatal(err)
	}
	if tk.BookedBy != "commuter1" || len(tk.TicketIDs) != 2 || tk.ValidityMinutes != 180 {
		t.Errorf("unexpected ticket %+v", tk)
	}

	if code, _ := c.do(http.MethodPost, "/v1/tickets", map[string]interface{}{"from": "Egmore", "to": "Atlantis", "type": "SJT", "count": 1}); code != http.StatusBadRequest {
		t.Errorf("unknown station: expected 400, got %d", code)
	}

	code, b = c.do(http.MethodGet, "/v1/tickets/"+tk.BookingID+"/qr?ticket="+tk.TicketIDs[1], nil)
	if code != http.StatusOK || !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Errorf("qr: %d", code)
	}

	if code, _ := c.do(http.MethodGet, "/v1/admin/report", nil); code != http.StatusForbidden {
		t.Errorf("report as commuter: expected 403, got %d", code)
	}

	if code, _ := c.do(http.MethodDelete, "/v1/tickets/"+tk.BookingID, nil); code != http.StatusOK {
		t.Errorf("cancel: %d", code)
	}
	if code, _ := c.do(http.MethodDelete, "/v1/tickets/"+tk.BookingID, nil); code != http.StatusConflict {
		t.Errorf("second cancel: expected 409, got %d", code)
	}

	code, b = c.do(http.MethodGet, "/v1/tickets?status=cancelled", nil)
	var list []model.Ticket
	if err := json.Unmarshal(b, &list); err != nil || code != http.StatusOK {
		t.Fatalf("list: %d %v", code, err)
	}
	if len(list) != 1 || list[0].Status != model.Cancelled {
		t.Errorf("unexpected list %+v", list)
	}
}

func Test_Server_AdminFlow(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL}
	c.login("admin", "Adm1n@pass")

	code, b := c.do(http.MethodPost, "/v1/admin/stations", map[string]interface{}{"line": "Green", "name": "Poonamallee"})
	if code != http.StatusCreated {
		t.Fatalf("add station: %d %s", code, b)
	}

	if code, b := c.do(http.MethodGet, "/v1/journey?from=Egmore&to=Poonamallee", nil); code != http.StatusOK {
		t.Errorf("journey to new station: %d %s", code, b)
	}

	code, b = c.do(http.MethodGet, "/v1/admin/report", nil)
	if code != http.StatusOK || !bytes.HasPrefix(b, []byte("PK")) {
		t.Errorf("report: %d", code)
	}
}
