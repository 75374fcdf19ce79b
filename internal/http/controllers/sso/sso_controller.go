// Package sso contiene el controller del endpoint de intercambio:
// GET /v1/{slug}/sso?redirect_to=...&jwt=...
package sso

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/gatejohn/internal/http"
	httperrors "github.com/dropDatabas3/gatejohn/internal/http/errors"
	svc "github.com/dropDatabas3/gatejohn/internal/http/services/sso"
	"github.com/dropDatabas3/gatejohn/internal/observability/logger"
	"github.com/dropDatabas3/gatejohn/internal/session"
)

// RedirectPolicy restringe los destinos de redirect_to. Apagada por
// defecto: el contrato original reenvía a cualquier URL que mande el
// cliente y hay deployments que dependen de eso. Encenderla es opt-in
// por configuración.
type RedirectPolicy struct {
	Enforce      bool
	AllowedHosts []string
}

func (p RedirectPolicy) allows(raw string) bool {
	if !p.Enforce {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	// Relativas siempre permitidas: se quedan en el mismo host.
	if u.Host == "" && !u.IsAbs() {
		return true
	}
	for _, h := range p.AllowedHosts {
		if strings.EqualFold(u.Host, h) {
			return true
		}
	}
	return false
}

// Config agrupa lo que el controller necesita además del service.
type Config struct {
	Cookies session.CookieConfig

	// Configured indica que el deployment tiene secretbox y directorio
	// operativos. En falso, el endpoint responde SERVER_MISCONFIGURED
	// después de validar parámetros (mismo orden que el contrato).
	Configured bool

	Redirects RedirectPolicy
}

// SSOController maneja el intercambio de aserciones por sesiones.
type SSOController struct {
	service svc.Service
	cfg     Config
}

// NewSSOController crea el controller del bridge.
func NewSSOController(service svc.Service, cfg Config) *SSOController {
	return &SSOController{service: service, cfg: cfg}
}

// Exchange maneja GET /v1/{slug}/sso.
// Orden del contrato: params → configuración del server → pipeline.
// Todo fallo posterior a la validación de params sale como 500 con un
// code que lo distingue; el body nunca filtra el secreto ni la causa.
func (c *SSOController) Exchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("SSOController.Exchange"),
		logger.TenantSlug(slug),
	)

	q := r.URL.Query()
	redirectTo := q.Get("redirect_to")
	assertion := q.Get("jwt")

	// 1. Parámetros. Único 400 del endpoint; nada más se toca antes.
	if redirectTo == "" || assertion == "" {
		log.Warn("exchange rejected", logger.Outcome("missing_params"))
		httperrors.WriteError(w, httperrors.ErrMissingParams)
		return
	}

	if !c.cfg.Redirects.allows(redirectTo) {
		log.Warn("exchange rejected", logger.Outcome("redirect_not_allowed"))
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("redirect_to not allowed"))
		return
	}

	// 2. Infraestructura del propio server.
	if !c.cfg.Configured {
		log.Error("exchange failed", logger.Outcome("server_misconfigured"))
		httperrors.WriteError(w, httperrors.ErrServerMisconfigured)
		return
	}

	// 3. Pipeline completo.
	start := time.Now()
	res, err := c.service.Exchange(ctx, slug, assertion)
	if err != nil {
		outcome, appErr := mapExchangeError(err)
		httpx.ObserveExchange(slug, outcome, time.Since(start))
		log.Warn("exchange failed", logger.Outcome(outcome), logger.Err(err))
		httperrors.WriteError(w, appErr)
		return
	}
	httpx.ObserveExchange(slug, "success", time.Since(start))

	serialized, err := res.Session.Serialize()
	if err != nil {
		log.Error("session serialization failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	http.SetCookie(w, session.NewCookie(c.cfg.Cookies, serialized))

	log.Info("exchange completed",
		logger.Outcome("success"),
		logger.TenantID(res.Tenant.ID),
		logger.Email(res.NamespacedEmail),
	)

	http.Redirect(w, r, redirectTo, http.StatusFound)
}

// mapExchangeError traduce errores del service a la taxonomía HTTP.
func mapExchangeError(err error) (outcome string, appErr *httperrors.AppError) {
	switch {
	case errors.Is(err, svc.ErrTenantNotFound):
		return "tenant_not_found", httperrors.ErrTenantNotFound
	case errors.Is(err, svc.ErrTenantMisconfigured):
		return "tenant_misconfigured", httperrors.ErrTenantMisconfigured
	case errors.Is(err, svc.ErrInvalidAssertion):
		return "invalid_assertion", httperrors.ErrInvalidAssertion
	case errors.Is(err, svc.ErrInvalidPayload):
		return "invalid_payload", httperrors.ErrInvalidPayload
	case errors.Is(err, svc.ErrProvisioningFailed):
		return "provisioning_failed", httperrors.ErrProvisioningFailed
	case errors.Is(err, svc.ErrAuthFailed):
		return "auth_failed", httperrors.ErrAuthenticationFailed
	default:
		return "internal_error", httperrors.ErrInternalServerError.WithCause(err)
	}
}
