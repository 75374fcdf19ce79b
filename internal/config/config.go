package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		// postgres | memory
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
			Migrate         bool   `yaml:"migrate"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	// Cache de tenants frente al control plane.
	Cache struct {
		// memory | redis | off
		Kind  string `yaml:"kind"`
		TTL   string `yaml:"ttl"`
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	// Session gobierna la cookie que recibe el browser.
	Session struct {
		// BaseURL del deployment; de acá se deriva el domain id del
		// nombre de cookie si CookieDomainID viene vacío.
		BaseURL        string `yaml:"base_url"`
		CookieDomainID string `yaml:"cookie_domain_id"`
	} `yaml:"session"`

	// Identity es el directorio de usuarios contra el que se aprovisiona
	// y autentica.
	Identity struct {
		// http | memory
		Kind       string `yaml:"kind"`
		BaseURL    string `yaml:"base_url"`
		ServiceKey string `yaml:"service_key"`
	} `yaml:"identity"`

	Admin struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"admin"`

	Rate struct {
		Enabled bool `yaml:"enabled"`

		Exchange struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"exchange"`
	} `yaml:"rate"`

	// Redirects: allowlist opcional para redirect_to. Apagada por defecto
	// para no romper el contrato histórico del endpoint.
	Redirects struct {
		Enforce      bool     `yaml:"enforce"`
		AllowedHosts []string `yaml:"allowed_hosts"`
	} `yaml:"redirects"`

	Security struct {
		// base64(32 bytes); cifra los secretos de SSO en reposo.
		SecretBoxMasterKey string `yaml:"secretbox_master_key"`
	} `yaml:"security"`
}

func Load(path string) (*Config, error) {
	var c Config

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = "30s"
	}
	if c.Identity.Kind == "" {
		c.Identity.Kind = "http"
	}
	if c.Rate.Exchange.Limit == 0 {
		c.Rate.Exchange.Limit = 30
	}
	if c.Rate.Exchange.Window == "" {
		c.Rate.Exchange.Window = "1m"
	}

	c.applyEnvOverrides()

	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// IsProd indica si el deployment corre en producción.
func (c *Config) IsProd() bool {
	return strings.EqualFold(c.App.Env, "prod")
}

// CacheTTL ya validada por validate().
func (c *Config) CacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Cache.TTL)
	return d
}

// ExchangeWindow ya validada por validate().
func (c *Config) ExchangeWindow() time.Duration {
	d, _ := time.ParseDuration(c.Rate.Exchange.Window)
	return d
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && strings.TrimSpace(c.Storage.DSN) == "" {
		return fmt.Errorf("config: storage.dsn is required with the postgres driver")
	}

	switch c.Cache.Kind {
	case "memory", "redis", "off":
	default:
		return fmt.Errorf("config: unknown cache kind %q", c.Cache.Kind)
	}
	if c.Cache.Kind == "redis" && strings.TrimSpace(c.Cache.Redis.Addr) == "" {
		return fmt.Errorf("config: cache.redis.addr is required with the redis cache")
	}

	switch c.Identity.Kind {
	case "http", "memory":
	default:
		return fmt.Errorf("config: unknown identity kind %q", c.Identity.Kind)
	}
	if c.Identity.Kind == "http" && strings.TrimSpace(c.Identity.BaseURL) == "" {
		return fmt.Errorf("config: identity.base_url is required with the http directory")
	}

	// En prod no hay directorio en memoria: las cuentas se evaporan.
	if c.IsProd() && c.Identity.Kind == "memory" {
		return fmt.Errorf("config: identity.kind=memory is not allowed in prod")
	}

	for _, pair := range []struct{ name, val string }{
		{"cache.ttl", c.Cache.TTL},
		{"rate.exchange.window", c.Rate.Exchange.Window},
		{"storage.postgres.conn_max_lifetime", c.Storage.Postgres.ConnMaxLifetime},
	} {
		if pair.val == "" {
			continue
		}
		if _, err := time.ParseDuration(pair.val); err != nil {
			return fmt.Errorf("config: invalid duration for %s: %w", pair.name, err)
		}
	}

	return nil
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("DATABASE_DSN"); ok {
		c.Storage.DSN = v
	}

	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("CACHE_TTL"); ok {
		c.Cache.TTL = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}

	if v, ok := getEnvStr("SESSION_BASE_URL"); ok {
		c.Session.BaseURL = v
	}
	if v, ok := getEnvStr("SESSION_COOKIE_DOMAIN_ID"); ok {
		c.Session.CookieDomainID = v
	}

	if v, ok := getEnvStr("IDENTITY_KIND"); ok {
		c.Identity.Kind = v
	}
	if v, ok := getEnvStr("IDENTITY_BASE_URL"); ok {
		c.Identity.BaseURL = v
	}
	if v, ok := getEnvStr("IDENTITY_SERVICE_KEY"); ok {
		c.Identity.ServiceKey = v
	}

	if v, ok := getEnvStr("ADMIN_API_KEY"); ok {
		c.Admin.APIKey = v
	}

	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_EXCHANGE_LIMIT"); ok {
		c.Rate.Exchange.Limit = v
	}
	if v, ok := getEnvStr("RATE_EXCHANGE_WINDOW"); ok {
		c.Rate.Exchange.Window = v
	}

	if v, ok := getEnvBool("REDIRECT_ENFORCE"); ok {
		c.Redirects.Enforce = v
	}
	if v, ok := getEnvCSV("REDIRECT_ALLOWED_HOSTS"); ok {
		c.Redirects.AllowedHosts = v
	}

	if v, ok := getEnvStr("SECRETBOX_MASTER_KEY"); ok {
		c.Security.SecretBoxMasterKey = v
	}
}
