package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/gatejohn/internal/config"
	httpx "github.com/dropDatabas3/gatejohn/internal/http"
	adminctrl "github.com/dropDatabas3/gatejohn/internal/http/controllers/admin"
	healthctrl "github.com/dropDatabas3/gatejohn/internal/http/controllers/health"
	ssoctrl "github.com/dropDatabas3/gatejohn/internal/http/controllers/sso"
	"github.com/dropDatabas3/gatejohn/internal/http/router"
	ssosvc "github.com/dropDatabas3/gatejohn/internal/http/services/sso"
	"github.com/dropDatabas3/gatejohn/internal/identity"
	"github.com/dropDatabas3/gatejohn/internal/observability/logger"
	"github.com/dropDatabas3/gatejohn/internal/rate"
	"github.com/dropDatabas3/gatejohn/internal/security/secretbox"
	"github.com/dropDatabas3/gatejohn/internal/session"
	"github.com/dropDatabas3/gatejohn/internal/store"
	"github.com/dropDatabas3/gatejohn/internal/store/memory"
	pgdriver "github.com/dropDatabas3/gatejohn/internal/store/pg"
	"github.com/dropDatabas3/gatejohn/internal/tenantcache"
)

// version/commit se inyectan en build time via -ldflags.
var (
	version = "dev"
	commit  = ""
)

func main() {
	// .env primero: el resto del arranque lee ambiente.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
		if _, err := os.Stat(cfgPath); err != nil {
			cfgPath = "" // defaults + env
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       os.Getenv("LOG_LEVEL"),
		ServiceName: "gatejohn",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	lg := logger.L()

	// secretbox lee la master key de ambiente; si vino por YAML la
	// publicamos antes del primer uso.
	if cfg.Security.SecretBoxMasterKey != "" && os.Getenv("SECRETBOX_MASTER_KEY") == "" {
		_ = os.Setenv("SECRETBOX_MASTER_KEY", cfg.Security.SecretBoxMasterKey)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ─── Control plane ───

	var (
		repo    store.TenantRepository
		pgPool  func() *pgxpool.Pool
		cleanup func()
	)
	switch cfg.Storage.Driver {
	case "postgres":
		st, err := pgdriver.New(ctx, cfg.Storage.DSN, pgdriver.Config{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			lg.Fatal("control plane connection failed", logger.Err(err))
		}
		if cfg.Storage.Postgres.Migrate {
			if err := st.Migrate(ctx); err != nil {
				lg.Fatal("migrations failed", logger.Err(err))
			}
		}
		repo = st
		pgPool = st.Pool
		cleanup = st.Close
	default:
		repo = memory.New()
		lg.Warn("using in-memory control plane; tenants will not survive restarts")
	}
	if cleanup != nil {
		defer cleanup()
	}

	// Cache de tenants delante del control plane.
	if cfg.Cache.Kind != "off" {
		repo = tenantcache.New(repo, tenantcache.Config{
			Kind: cfg.Cache.Kind,
			TTL:  cfg.CacheTTL(),
			Redis: tenantcache.RedisConfig{
				Addr:   cfg.Cache.Redis.Addr,
				DB:     cfg.Cache.Redis.DB,
				Prefix: cfg.Cache.Redis.Prefix,
			},
		})
	}

	// ─── Directorio de identidad ───

	var directory identity.Directory
	if cfg.Identity.Kind == "memory" {
		directory = identity.NewMemoryDirectory()
		lg.Warn("using in-memory identity directory; accounts will not survive restarts")
	} else {
		directory = identity.NewHTTPDirectory(cfg.Identity.BaseURL, cfg.Identity.ServiceKey)
	}

	// ─── Service + controllers ───

	secrets := store.NewSecretboxSource()
	bridge := ssosvc.NewBridgeService(repo, secrets, directory)

	domainID := cfg.Session.CookieDomainID
	if domainID == "" && cfg.Session.BaseURL != "" {
		domainID = session.DomainIDFromURL(cfg.Session.BaseURL)
	}

	ssoController := ssoctrl.NewSSOController(bridge, ssoctrl.Config{
		Cookies: session.CookieConfig{
			DomainID:   domainID,
			Production: cfg.IsProd(),
		},
		Configured: secretbox.IsSecretBoxReady(),
		Redirects: ssoctrl.RedirectPolicy{
			Enforce:      cfg.Redirects.Enforce,
			AllowedHosts: cfg.Redirects.AllowedHosts,
		},
	})

	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{ControlPlanePool: pgPool})
	if err != nil {
		lg.Fatal("metrics registration failed", logger.Err(err))
	}

	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		if cfg.Cache.Kind == "redis" {
			client := rdb.NewClient(&rdb.Options{Addr: cfg.Cache.Redis.Addr, DB: cfg.Cache.Redis.DB})
			limiter = rate.NewRedisLimiter(client, "rl:", cfg.Rate.Exchange.Limit, cfg.ExchangeWindow())
		} else {
			limiter = rate.NewMemoryLimiter(cfg.Rate.Exchange.Limit, cfg.ExchangeWindow())
		}
	}

	handler := router.New(router.Deps{
		SSO:             ssoController,
		Admin:           adminctrl.NewTenantsController(repo),
		Health:          healthctrl.NewHealthController(repo, directory, version, commit),
		Metrics:         metricsHandler,
		AdminAPIKey:     cfg.Admin.APIKey,
		ExchangeLimiter: limiter,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		lg.Info("server listening",
			logger.String("addr", cfg.Server.Addr),
			logger.String("storage", cfg.Storage.Driver),
			logger.String("identity", cfg.Identity.Kind),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", logger.Err(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", logger.Err(err))
	}
}
