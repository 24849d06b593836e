package plan

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"go.lepak.sg/metro-planner/data"
	"go.lepak.sg/metro-planner/model"
)

func newHandler(t *testing.T, cacheSize int) (*handler, *data.Registry) {
	t.Helper()
	reg, err := data.OpenRegistry("")
	if err != nil {
		t.Fatal(err)
	}
	h, err := New(NewParam{Registry: reg, CacheSize: cacheSize, Registerer: prometheus.NewRegistry()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(h.Stop)
	return h, reg
}

func get(h http.Handler, from, to, format string) *httptest.ResponseRecorder {
	q := url.Values{"from": {from}, "to": {to}}
	if format != "" {
		q.Set("format", format)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/journey?"+q.Encode(), nil))
	return rec
}

func Test_Plan_JSON(t *testing.T) {
	h, _ := newHandler(t, 0)

	rec := get(h, "wimco nagar", "Koyambedu", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var res result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if !res.Reachable || res.Stops != 20 || res.Fare != 50 || res.Minutes != 33 {
		t.Errorf("unexpected result %+v", res)
	}
	if res.From != "Wimco Nagar" || res.Interchange != "Chennai Central" {
		t.Errorf("unexpected result %+v", res)
	}
	if len(res.Path) != 21 {
		t.Errorf("expected 21 stations in path, got %d", len(res.Path))
	}
	if len(res.Routes[data.LineBlue]) != 51 || len(res.Routes[data.LineGreen]) != 33 {
		t.Errorf("unexpected routes %v", res.Routes)
	}
}

func Test_Plan_Protobuf(t *testing.T) {
	h, _ := newHandler(t, 0)

	rec := get(h, "Guindy", "Vadapalani", "pb")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("content-type"); ct != contentTypeProtobuf {
		t.Errorf("unexpected content type %q", ct)
	}

	st, err := model.UnpackStruct(rec.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if ic := st.GetFields()["interchange"].GetStringValue(); ic != "Alandur" {
		t.Errorf("expected Alandur, got %q", ic)
	}
}

func Test_Plan_BadRequests(t *testing.T) {
	h, _ := newHandler(t, 0)

	for _, c := range [][2]string{{"", "Egmore"}, {"Egmore", "egmore"}, {"Egmore", "Atlantis"}, {"Eg;more", "LIC"}} {
		rec := get(h, c[0], c[1], "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%q -> %q: expected 400, got %d", c[0], c[1], rec.Code)
		}
	}

	if got := testutil.ToFloat64(h.metrics.Errors); got != 4 {
		t.Errorf("expected 4 errors counted, got %v", got)
	}
}

func Test_Plan_Unreachable(t *testing.T) {
	dir, err := data.NewDirectory([]data.NamedLine{
		{Name: data.LineBlue, Prefix: "B", Line: data.Line{{ID: "B1", Name: "North"}}},
		{Name: data.LineGreen, Prefix: "G", Line: data.Line{{ID: "G1", Name: "East"}}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	h, err := New(NewParam{Registry: data.NewRegistry(dir, nil, ""), Registerer: prometheus.NewRegistry()})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Stop()

	rec := get(h, "North", "East", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var res result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Reachable || res.Stops != 0 || res.Fare != data.NoFare || res.Interchange != "" || len(res.Path) != 0 {
		t.Errorf("unexpected result %+v", res)
	}
	if got := testutil.ToFloat64(h.metrics.Unreachable); got != 1 {
		t.Errorf("expected 1 unreachable, got %v", got)
	}
}

func Test_Plan_CacheFollowsVersion(t *testing.T) {
	h, reg := newHandler(t, 16)

	get(h, "Egmore", "LIC", "")
	get(h, "egmore", "lic", "")
	if got := testutil.ToFloat64(h.metrics.CacheHits); got != 1 {
		t.Errorf("expected 1 cache hit, got %v", got)
	}

	if _, err := reg.UpdateStation("G2", "Egmore Junction", true, true); err != nil {
		t.Fatal(err)
	}
	if rec := get(h, "Egmore", "LIC", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("renamed station served from cache: %d", rec.Code)
	}
	if rec := get(h, "Egmore Junction", "LIC", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if got := testutil.ToFloat64(h.metrics.CacheHits); got != 1 {
		t.Errorf("expected still 1 cache hit, got %v", got)
	}
}

func Test_Plan_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "network.yaml")
	dir, fares, err := data.LoadNetwork("")
	if err != nil {
		t.Fatal(err)
	}
	if err := data.SaveNetwork(path, dir, fares); err != nil {
		t.Fatal(err)
	}
	reg, err := data.OpenRegistry(path)
	if err != nil {
		t.Fatal(err)
	}

	h, err := New(NewParam{Registry: reg, ReloadInterval: 10 * time.Millisecond, Registerer: prometheus.NewRegistry()})
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for reg.Snapshot().Version < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if reg.Snapshot().Version < 2 {
		t.Error("network was not reloaded")
	}

	// a broken file keeps the current version
	if err := os.WriteFile(path, []byte("lines: ["), 0644); err != nil {
		t.Fatal(err)
	}
	for testutil.ToFloat64(h.metrics.BgErrors) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	h.Stop()

	if testutil.ToFloat64(h.metrics.BgErrors) == 0 {
		t.Error("expected a reload error")
	}
	if reg.Snapshot().Directory.Len() != dir.Len() {
		t.Error("broken file replaced the network")
	}
}
