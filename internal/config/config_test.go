package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_DefaultsWithEmptyFile(t *testing.T) {
	c, err := Load(writeConfig(t, "identity:\n  kind: memory\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Server.Addr != ":8080" {
		t.Fatalf("addr = %q", c.Server.Addr)
	}
	if c.Storage.Driver != "memory" {
		t.Fatalf("driver = %q", c.Storage.Driver)
	}
	if c.CacheTTL() != 30*time.Second {
		t.Fatalf("cache ttl = %v", c.CacheTTL())
	}
	if c.Rate.Exchange.Limit != 30 || c.ExchangeWindow() != time.Minute {
		t.Fatalf("rate defaults = %d/%v", c.Rate.Exchange.Limit, c.ExchangeWindow())
	}
	if c.Redirects.Enforce {
		t.Fatal("redirect allowlist must default to off")
	}
}

func TestLoad_YAMLValues(t *testing.T) {
	c, err := Load(writeConfig(t, `
app:
  env: prod
server:
  addr: ":9090"
storage:
  driver: postgres
  dsn: postgres://u:p@db/gatejohn
cache:
  kind: redis
  ttl: 10s
  redis:
    addr: redis:6379
session:
  base_url: https://abcdwxyz.supahost.co
identity:
  kind: http
  base_url: https://auth.internal
  service_key: sk-123
admin:
  api_key: top-secret
`))
	if err != nil {
		t.Fatal(err)
	}
	if !c.IsProd() {
		t.Fatal("expected prod")
	}
	if c.Cache.Redis.Addr != "redis:6379" || c.CacheTTL() != 10*time.Second {
		t.Fatalf("cache = %+v", c.Cache)
	}
	if c.Identity.BaseURL != "https://auth.internal" || c.Admin.APIKey != "top-secret" {
		t.Fatalf("identity/admin not parsed: %+v", c.Identity)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("IDENTITY_KIND", "memory")
	t.Setenv("REDIRECT_ENFORCE", "true")
	t.Setenv("REDIRECT_ALLOWED_HOSTS", "app.example.com, dash.example.com")

	c, err := Load(writeConfig(t, "server:\n  addr: \":8080\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Server.Addr != ":7070" {
		t.Fatalf("env override lost: %q", c.Server.Addr)
	}
	if !c.Redirects.Enforce || len(c.Redirects.AllowedHosts) != 2 {
		t.Fatalf("redirects = %+v", c.Redirects)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"unknown driver", "storage:\n  driver: sqlite\n"},
		{"postgres without dsn", "storage:\n  driver: postgres\nidentity:\n  kind: memory\n"},
		{"http identity without base url", "identity:\n  kind: http\n"},
		{"memory identity in prod", "app:\n  env: prod\nidentity:\n  kind: memory\n"},
		{"bad cache ttl", "cache:\n  ttl: banana\nidentity:\n  kind: memory\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}
