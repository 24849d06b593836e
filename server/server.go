package server

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.lepak.sg/metro-planner/auth"
	"go.lepak.sg/metro-planner/data"
	"go.lepak.sg/metro-planner/server/handler/account"
	"go.lepak.sg/metro-planner/server/handler/plan"
	"go.lepak.sg/metro-planner/server/handler/stations"
	"go.lepak.sg/metro-planner/server/handler/status"
	"go.lepak.sg/metro-planner/server/handler/tickets"
	"go.lepak.sg/metro-planner/store"
	"go.lepak.sg/metro-planner/ticket"
)

type Deps struct {
	Registry *data.Registry
	Store    store.Store
	Auth     *auth.Service
	GitRev   string

	ReloadInterval time.Duration
	CacheSize      int

	// prometheus.DefaultRegisterer if nil
	Registerer prometheus.Registerer
}

// NewMux builds the API routes. Call stop once the mux is no longer served.
func NewMux(ctx context.Context, d Deps) (mux *http.ServeMux, stop func()) {
	planner := plan.MustNew(plan.NewParam{
		Ctx:            ctx,
		Registry:       d.Registry,
		ReloadInterval: d.ReloadInterval,
		CacheSize:      d.CacheSize,
		Registerer:     d.Registerer,
	})
	st := stations.Handler{Registry: d.Registry}
	acc := account.Handler{Auth: d.Auth}
	tk := tickets.New(ticket.NewService(d.Registry, d.Store), d.Registerer)

	user := func(f http.HandlerFunc) http.Handler { return d.Auth.Middleware(f) }
	admin := func(f http.HandlerFunc) http.Handler { return d.Auth.AdminOnly(f) }

	mux = http.NewServeMux()
	mux.Handle("GET /v1/status", status.Handler{GitRev: d.GitRev, Registry: d.Registry, Store: d.Store})
	mux.Handle("GET /v1/journey", planner)
	mux.HandleFunc("GET /v1/stations", st.List)

	mux.HandleFunc("POST /v1/auth/signup", acc.Signup)
	mux.HandleFunc("POST /v1/auth/login", acc.Login)

	mux.Handle("POST /v1/tickets", user(tk.Book))
	mux.Handle("GET /v1/tickets", user(tk.List))
	mux.Handle("GET /v1/tickets/{id}", user(tk.Get))
	mux.Handle("DELETE /v1/tickets/{id}", user(tk.Cancel))
	mux.Handle("GET /v1/tickets/{id}/qr", user(tk.QR))

	mux.Handle("POST /v1/admin/stations", admin(st.Add))
	mux.Handle("PUT /v1/admin/stations/{id}", admin(st.Update))
	mux.Handle("DELETE /v1/admin/stations/{id}", admin(st.Delete))
	mux.Handle("GET /v1/admin/report", admin(tk.Report))

	return mux, planner.Stop
}

// StartHttp starts the http server. It blocks until the context is cancelled, then it will shut down the server.
// It will also start a secondary server to serve prometheus metrics. We could attach pprof, expvar etc to it.
// Obviously, in the reverse proxy config, only route requests to the first addr and not the second
func StartHttp(ctx context.Context, addr string, promAddr string, d Deps) {
	wg := &sync.WaitGroup{}
	promMux := http.NewServeMux()
	promMux.Handle("/metrics", promhttp.Handler())
	promSrv := &http.Server{
		Addr:    promAddr,
		Handler: promMux,
	}
	wg.Add(1)
	go func(wg *sync.WaitGroup, promSrv *http.Server) {
		defer wg.Done()
		err := promSrv.ListenAndServe()
		if err != http.ErrServerClosed {
			log.Fatalf("prom handler: %v", err)
		}
	}(wg, promSrv)

	mux, stop := NewMux(ctx, d)
	defer stop()
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	wg.Add(1)
	go func(wg *sync.WaitGroup, srv *http.Server) {
		defer wg.Done()
		err := srv.ListenAndServe()
		if err != http.ErrServerClosed {
			log.Fatalf("main handler: %v", err)
		}
	}(wg, srv)
	log.Printf("listening on %s, metrics on %s", addr, promAddr)

	// block here
	<-ctx.Done()

	err := srv.Shutdown(context.Background())
	if err != nil {
		log.Printf("error shutting down main server: %v", err)
	}

	err = promSrv.Shutdown(context.Background())
	if err != nil {
		log.Printf("error shutting down prom server: %v", err)
	}

	wg.Wait()
}
