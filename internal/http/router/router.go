// Package router arma el árbol de rutas del servicio sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/gatejohn/internal/http"
	adminctrl "github.com/dropDatabas3/gatejohn/internal/http/controllers/admin"
	healthctrl "github.com/dropDatabas3/gatejohn/internal/http/controllers/health"
	ssoctrl "github.com/dropDatabas3/gatejohn/internal/http/controllers/sso"
	httperrors "github.com/dropDatabas3/gatejohn/internal/http/errors"
	mw "github.com/dropDatabas3/gatejohn/internal/http/middlewares"
	"github.com/dropDatabas3/gatejohn/internal/rate"
)

// Deps contiene todo lo que el router necesita ya construido.
type Deps struct {
	SSO     *ssoctrl.SSOController
	Admin   *adminctrl.TenantsController
	Health  *healthctrl.HealthController
	Metrics http.Handler // nil deshabilita /metrics

	AdminAPIKey string

	// ExchangeLimiter limita el endpoint público por IP. nil lo apaga.
	ExchangeLimiter rate.Limiter
}

// New construye el handler raíz.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Infra común a todo el árbol. Recover primero para cubrir al resto.
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		httpx.WithMetrics,
		mw.WithLogging(),
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	// Health: sin rate limit ni cache headers especiales.
	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	// Endpoint público de intercambio. no-store: emite cookies.
	r.Group(func(r chi.Router) {
		r.Use(mw.WithNoStore())
		if deps.ExchangeLimiter != nil {
			r.Use(mw.WithRateLimit(mw.RateLimitConfig{
				Limiter: deps.ExchangeLimiter,
				KeyFunc: mw.IPOnlyRateKey,
			}))
		}
		r.Get("/v1/{slug}/sso", deps.SSO.Exchange)
	})

	// Superficie admin: API key + no-store.
	r.Route("/v1/admin", func(r chi.Router) {
		r.Use(mw.RequireAdminKey(deps.AdminAPIKey), mw.WithNoStore())

		r.Post("/tenants", deps.Admin.Create)
		r.Get("/tenants/{slug}", deps.Admin.Get)
		r.Put("/tenants/{slug}/sso-secret", deps.Admin.SetSSOSecret)
		r.Delete("/tenants/{slug}/sso-secret", deps.Admin.ClearSSOSecret)
	})

	return r
}
