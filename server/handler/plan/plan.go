package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"github.com/prometheus/client_golang/prometheus"

	"go.lepak.sg/metro-planner/data"
	"go.lepak.sg/metro-planner/journey"
	"go.lepak.sg/metro-planner/model"
	"go.lepak.sg/metro-planner/server/handler/respond"
)

const (
	contentTypeJSON     = "application/json"
	contentTypeProtobuf = "application/x-protobuf"
)

type handler struct {
	registry *data.Registry

	// Encoded responses keyed by network version and query. Publishing a new
	// network changes the version, so stale entries are never hit again and
	// age out of the LRU. nil when caching is off.
	cache gcache.Cache

	// This is the context for reloading, when it's cancelled the reload
	// goroutine exits
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	tick     *time.Ticker
	interval time.Duration

	metrics *metrics
}

type cached struct {
	contentType string
	body        []byte
}

type result struct {
	From        string            `json:"from"`
	To          string            `json:"to"`
	Reachable   bool              `json:"reachable"`
	Path        []data.Station    `json:"path"`
	Stops       int               `json:"stops"`
	Interchange string            `json:"interchange,omitempty"`
	Fare        int               `json:"fare"`
	Minutes     int               `json:"minutes"`
	Routes      map[string]string `json:"routes"`
	Version     uint64            `json:"version"`
}

type NewParam struct {
	Ctx      context.Context
	Registry *data.Registry
	// How often to reread the network file. 0 never rereads it.
	ReloadInterval time.Duration
	// Number of responses to keep. 0 disables the cache.
	CacheSize  int
	Registerer prometheus.Registerer
}

func New(p NewParam) (*handler, error) {
	if p.Registry == nil {
		return nil, fmt.Errorf("plan handler: nil registry")
	}
	if p.Ctx == nil {
		p.Ctx = context.Background()
	}
	if p.Registerer == nil {
		p.Registerer = prometheus.DefaultRegisterer
	}

	h := &handler{
		registry: p.Registry,
		interval: p.ReloadInterval,
		metrics:  newMetrics(p.Registerer),
	}
	if !h.metrics.valid() {
		return nil, fmt.Errorf("plan handler: metrics not initialized")
	}
	if p.CacheSize > 0 {
		h.cache = gcache.New(p.CacheSize).LRU().Build()
	}
	h.ctx, h.cancel = context.WithCancel(p.Ctx)

	if p.ReloadInterval > 0 {
		h.tick = time.NewTicker(p.ReloadInterval)
		h.wg.Add(1)
		go h.reload()
	}

	return h, nil
}

func MustNew(p NewParam) *handler {
	h, err := New(p)
	if err != nil {
		log.Panic(err)
	}
	return h
}

func (h *handler) reload() {
	defer h.wg.Done()
	running := true
	for running {
		select {
		case <-h.ctx.Done():
			log.Print("exiting reload loop")
			running = false
			continue
		case <-h.tick.C:
		}

		startTime := time.Now()
		err := h.registry.Reload()
		h.metrics.BgLatency.Observe(time.Since(startTime).Seconds())
		h.metrics.BgRequests.Inc()
		if err != nil {
			h.metrics.BgErrors.Inc()
			log.Printf("error: network reload failed, keeping version %d: %v", h.registry.Snapshot().Version, err)
			continue
		}
		h.metrics.BgLastUpdated.SetToCurrentTime()
	}
}

func (h *handler) Stop() {
	h.cancel()
	h.wg.Wait()
	if h.tick != nil {
		h.tick.Stop()
	}
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	var err error

	defer func() {
		h.metrics.Latency.Observe(time.Since(startTime).Seconds())
		h.metrics.Requests.Inc()
		if err != nil {
			h.metrics.Errors.Inc()
		}
	}()

	q := r.URL.Query()
	from, to, format := q.Get("from"), q.Get("to"), q.Get("format")

	// Read once, so the whole request sees one network version
	snap := h.registry.Snapshot()
	key := fmt.Sprintf("%d|%s|%s|%s", snap.Version,
		strings.ToLower(strings.TrimSpace(from)), strings.ToLower(strings.TrimSpace(to)), format)

	if h.cache != nil {
		if v, cerr := h.cache.Get(key); cerr == nil {
			h.metrics.CacheHits.Inc()
			c := v.(cached)
			respond.Bytes(w, c.contentType, c.body)
			return
		}
	}

	start, end, err := snap.Directory.Pair(from, to)
	if err != nil {
		respond.Err(w, err)
		return
	}

	quote := journey.Plan(snap.Directory, snap.Fares, start, end)
	if !quote.Reachable() {
		h.metrics.Unreachable.Inc()
	}
	maps := model.RouteMaps(snap.Directory, quote.Path)

	var c cached
	switch format {
	case "pb":
		c.contentType = contentTypeProtobuf
		c.body, err = model.PackQuote(quote, maps)
	default:
		c.contentType = contentTypeJSON
		c.body, err = json.Marshal(newResult(start, end, quote, maps, snap.Version))
	}
	if err != nil {
		respond.Err(w, err)
		return
	}

	if h.cache != nil {
		if cerr := h.cache.Set(key, c); cerr != nil {
			log.Printf("error: caching plan: %v", cerr)
		}
	}
	respond.Bytes(w, c.contentType, c.body)
}

func newResult(start, end data.Station, q journey.Quote, maps map[string]model.Position, version uint64) result {
	res := result{
		From:        start.Name,
		To:          end.Name,
		Reachable:   q.Reachable(),
		Path:        q.Path,
		Stops:       q.Stops,
		Interchange: q.Interchange,
		Fare:        q.Fare,
		Minutes:     q.Minutes,
		Routes:      make(map[string]string, len(maps)),
		Version:     version,
	}
	if res.Path == nil {
		res.Path = []data.Station{}
	}
	for line, p := range maps {
		res.Routes[line] = p.ToString()
	}
	return res
}
