package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"go.lepak.sg/metro-planner/auth"
	"go.lepak.sg/metro-planner/config"
	"go.lepak.sg/metro-planner/data"
	"go.lepak.sg/metro-planner/server"
	"go.lepak.sg/metro-planner/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	reg, err := data.OpenRegistry(cfg.NetworkFile)
	if err != nil {
		log.Fatalf("network: %v", err)
	}

	var st store.Store
	if cfg.DSN == "" {
		log.Print("warn: DSN not set, tickets and users are kept in memory")
		st = store.NewMemory()
	} else {
		st, err = store.OpenMySQL(ctx, cfg.DSN)
		if err != nil {
			log.Fatalf("store: %v", err)
		}
	}
	defer func() {
		err = st.Close()
		if err != nil {
			log.Printf("error closing store: %v", err)
		}
	}()

	a, err := auth.New(auth.NewParam{
		Store:         st,
		Secret:        cfg.JWTSecret,
		TTL:           cfg.TokenTTL,
		AdminUser:     cfg.AdminUser,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	server.StartHttp(ctx, cfg.Addr, cfg.PromAddr, server.Deps{
		Registry:       reg,
		Store:          st,
		Auth:           a,
		GitRev:         cfg.GitRev,
		ReloadInterval: cfg.ReloadInterval,
		CacheSize:      cfg.CacheSize,
	})
}
