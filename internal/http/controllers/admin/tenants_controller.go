// Package admin contiene los controllers de administración del control
// plane: altas de tenant y ciclo de vida del secreto de SSO.
package admin

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dropDatabas3/gatejohn/internal/controlplane"
	dto "github.com/dropDatabas3/gatejohn/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/gatejohn/internal/http/errors"
	"github.com/dropDatabas3/gatejohn/internal/observability/logger"
	"github.com/dropDatabas3/gatejohn/internal/security/secretbox"
	"github.com/dropDatabas3/gatejohn/internal/store"
)

// slugRe: minúsculas, dígitos y guiones, sin guiones en los extremos.
var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

const maxBodyBytes = 1 << 20

// TenantsController administra tenants y sus secretos de SSO.
type TenantsController struct {
	repo store.TenantRepository
}

// NewTenantsController crea el controller de administración.
func NewTenantsController(repo store.TenantRepository) *TenantsController {
	return &TenantsController{repo: repo}
}

// Get maneja GET /v1/admin/tenants/{slug}.
func (c *TenantsController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	t, err := c.repo.GetBySlug(ctx, slug)
	if err != nil {
		if store.IsTenantNotFound(err) {
			httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("tenant not found"))
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, toResponse(t))
}

// Create maneja POST /v1/admin/tenants.
func (c *TenantsController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("TenantsController.Create"))

	var req dto.CreateTenantRequest
	if err := decodeJSON(r, &req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.TrimSpace(req.Slug)
	if req.Name == "" || req.Slug == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("name and slug are required"))
		return
	}
	if !slugRe.MatchString(req.Slug) {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("slug must be lowercase alphanumeric with hyphens"))
		return
	}

	t := &controlplane.Tenant{
		ID:   uuid.NewString(),
		Name: req.Name,
		Slug: req.Slug,
		Settings: controlplane.TenantSettings{
			LogoURL:       req.LogoURL,
			BrandColor:    req.BrandColor,
			PrimaryDomain: req.PrimaryDomain,
		},
	}

	if err := c.repo.Create(ctx, t); err != nil {
		if store.IsConflict(err) {
			httperrors.WriteError(w, httperrors.ErrConflict.WithDetail("slug already in use"))
			return
		}
		log.Error("tenant create failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	// Releer para devolver timestamps reales del store.
	created, err := c.repo.GetBySlug(ctx, t.Slug)
	if err != nil {
		created = t
	}

	log.Info("tenant created", logger.TenantID(t.ID), logger.TenantSlug(t.Slug))
	httperrors.WriteJSON(w, http.StatusCreated, toResponse(created))
}

// SetSSOSecret maneja PUT /v1/admin/tenants/{slug}/sso-secret.
// Cifra con secretbox antes de tocar el repo; el claro no se persiste
// ni se loguea.
func (c *TenantsController) SetSSOSecret(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("TenantsController.SetSSOSecret"), logger.TenantSlug(slug))

	if !secretbox.IsSecretBoxReady() {
		httperrors.WriteError(w, httperrors.ErrServerMisconfigured.WithDetail("secretbox master key not configured"))
		return
	}

	var req dto.SetSSOSecretRequest
	if err := decodeJSON(r, &req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}
	if strings.TrimSpace(req.Secret) == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("secret is required"))
		return
	}

	enc, err := secretbox.Encrypt(req.Secret)
	if err != nil {
		log.Error("secret encryption failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	if err := c.repo.UpdateSSOSecret(ctx, slug, enc); err != nil {
		if store.IsTenantNotFound(err) {
			httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("tenant not found"))
			return
		}
		log.Error("secret rotation failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	log.Info("sso secret rotated")
	w.WriteHeader(http.StatusNoContent)
}

// ClearSSOSecret maneja DELETE /v1/admin/tenants/{slug}/sso-secret.
// Deja al tenant sin SSO: el exchange pasa a responder
// TENANT_MISCONFIGURED hasta la próxima rotación.
func (c *TenantsController) ClearSSOSecret(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("TenantsController.ClearSSOSecret"), logger.TenantSlug(slug))

	if err := c.repo.UpdateSSOSecret(ctx, slug, ""); err != nil {
		if store.IsTenantNotFound(err) {
			httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("tenant not found"))
			return
		}
		log.Error("secret clear failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	log.Info("sso secret cleared")
	w.WriteHeader(http.StatusNoContent)
}

func toResponse(t *controlplane.Tenant) dto.TenantResponse {
	return dto.TenantResponse{
		ID:            t.ID,
		Name:          t.Name,
		Slug:          t.Slug,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		LogoURL:       t.Settings.LogoURL,
		BrandColor:    t.Settings.BrandColor,
		PrimaryDomain: t.Settings.PrimaryDomain,
		SSOConfigured: t.HasSSOSecret(),
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
