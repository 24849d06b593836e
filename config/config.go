// Package config reads the server configuration from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

const (
	envAddr           = "ADDR"
	envPromAddr       = "PROM_ADDR"
	envDsn            = "DSN"
	envNetworkFile    = "NETWORK_FILE"
	envReloadInterval = "RELOAD_INTERVAL"
	envJwtSecret      = "JWT_SECRET"
	envTokenTTL       = "TOKEN_TTL"
	envAdminUser      = "ADMIN_USER"
	envAdminPassword  = "ADMIN_PASSWORD"
	envGitRev         = "GIT_REV"
	envCacheSize      = "CACHE_SIZE"

	defaultAddr      = "0.0.0.0:8080"
	defaultPromAddr  = "127.0.0.1:9100"
	defaultAdminUser = "admin"
	defaultTokenTTL  = 24 * time.Hour
	defaultCacheSize = 1024
)

type Config struct {
	Addr     string
	PromAddr string

	// Empty means tickets and users are kept in memory only
	DSN string

	// Empty means the built-in network. Station edits are saved here.
	NetworkFile string
	// How often the network file is reread. 0 disables it.
	ReloadInterval time.Duration

	JWTSecret     []byte
	TokenTTL      time.Duration
	AdminUser     string
	AdminPassword string

	GitRev    string
	CacheSize int
}

func Load() (Config, error) {
	cfg := Config{
		Addr:          valueOrDefault(envAddr, defaultAddr),
		PromAddr:      valueOrDefault(envPromAddr, defaultPromAddr),
		DSN:           os.Getenv(envDsn),
		NetworkFile:   os.Getenv(envNetworkFile),
		AdminUser:     valueOrDefault(envAdminUser, defaultAdminUser),
		AdminPassword: os.Getenv(envAdminPassword),
		GitRev:        os.Getenv(envGitRev),
	}

	var err error
	if cfg.ReloadInterval, err = parseDuration(envReloadInterval, 0); err != nil {
		return Config{}, err
	}
	if cfg.TokenTTL, err = parseDuration(envTokenTTL, defaultTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.CacheSize, err = parseInt(envCacheSize, defaultCacheSize); err != nil {
		return Config{}, err
	}
	if cfg.CacheSize < 0 {
		return Config{}, fmt.Errorf("invalid %s: %d is negative", envCacheSize, cfg.CacheSize)
	}

	if s := os.Getenv(envJwtSecret); s != "" {
		cfg.JWTSecret = []byte(s)
	} else {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return Config{}, err
		}
		cfg.JWTSecret = []byte(hex.EncodeToString(b))
		log.Printf("warn: %s not set, tokens will not survive a restart", envJwtSecret)
	}

	if cfg.AdminPassword == "" {
		log.Printf("warn: %s not set, admin login disabled", envAdminPassword)
		cfg.AdminUser = ""
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return n, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return d, nil
}
