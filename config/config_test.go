package config

import (
	"testing"
	"time"
)

func Test_Load_Defaults(t *testing.T) {
	for _, k := range []string{envAddr, envPromAddr, envDsn, envNetworkFile, envReloadInterval,
		envJwtSecret, envTokenTTL, envAdminUser, envAdminPassword, envGitRev, envCacheSize} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != defaultAddr || cfg.PromAddr != defaultPromAddr {
		t.Errorf("unexpected addrs %q %q", cfg.Addr, cfg.PromAddr)
	}
	if cfg.TokenTTL != defaultTokenTTL || cfg.CacheSize != defaultCacheSize || cfg.ReloadInterval != 0 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if len(cfg.JWTSecret) == 0 {
		t.Error("expected a generated secret")
	}
	if cfg.AdminUser != "" {
		t.Errorf("admin without password must be disabled, got %q", cfg.AdminUser)
	}
}

func Test_Load_Env(t *testing.T) {
	t.Setenv(envAddr, "127.0.0.1:1234")
	t.Setenv(envJwtSecret, "s3cret")
	t.Setenv(envAdminPassword, "Adm1n@pass")
	t.Setenv(envAdminUser, "")
	t.Setenv(envReloadInterval, "30s")
	t.Setenv(envCacheSize, "0")
	t.Setenv(envTokenTTL, "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != "127.0.0.1:1234" || string(cfg.JWTSecret) != "s3cret" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.AdminUser != defaultAdminUser || cfg.ReloadInterval != 30*time.Second || cfg.CacheSize != 0 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func Test_Load_Invalid(t *testing.T) {
	cases := map[string]string{
		envReloadInterval: "soon",
		envTokenTTL:       "1 day",
		envCacheSize:      "many",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%q: expected error", k, v)
			}
		})
	}

	t.Setenv(envCacheSize, "-1")
	if _, err := Load(); err == nil {
		t.Error("negative cache size: expected error")
	}
}
