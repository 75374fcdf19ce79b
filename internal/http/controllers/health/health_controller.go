// Package health contiene los controllers de liveness y readiness.
package health

import (
	"context"
	"net/http"
	"time"

	httperrors "github.com/dropDatabas3/gatejohn/internal/http/errors"
	"github.com/dropDatabas3/gatejohn/internal/identity"
	"github.com/dropDatabas3/gatejohn/internal/observability/logger"
	"github.com/dropDatabas3/gatejohn/internal/store"
)

const checkTimeout = 3 * time.Second

// HealthController verifica las dependencias del bridge: el control
// plane de tenants y el directorio de identidad.
type HealthController struct {
	repo      store.TenantRepository
	directory identity.Directory

	version string
	commit  string
}

// NewHealthController crea el controller de health.
func NewHealthController(repo store.TenantRepository, directory identity.Directory, version, commit string) *HealthController {
	return &HealthController{repo: repo, directory: directory, version: version, commit: commit}
}

type componentStatus struct {
	Status string `json:"status"` // ok | unavailable
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"` // ready | unavailable | ok
	Version    string                     `json:"version,omitempty"`
	Commit     string                     `json:"commit,omitempty"`
	Components map[string]componentStatus `json:"components,omitempty"`
}

// Healthz maneja GET /healthz: liveness puro, sin tocar dependencias.
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	httperrors.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: c.version, Commit: c.commit})
}

// Readyz maneja GET /readyz: el server está listo si puede resolver
// tenants y hablar con el directorio.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	components := map[string]componentStatus{
		"controlplane": check(func() error { return c.repo.Ping(ctx) }),
		"directory":    check(func() error { return c.directory.Ping(ctx) }),
	}

	status := "ready"
	code := http.StatusOK
	for name, comp := range components {
		if comp.Status != "ok" {
			status = "unavailable"
			code = http.StatusServiceUnavailable
			log.Warn("dependency unavailable", logger.Component(name), logger.String("error", comp.Error))
		}
	}

	httperrors.WriteJSON(w, code, healthResponse{
		Status:     status,
		Version:    c.version,
		Commit:     c.commit,
		Components: components,
	})
}

func check(fn func() error) componentStatus {
	if err := fn(); err != nil {
		return componentStatus{Status: "unavailable", Error: err.Error()}
	}
	return componentStatus{Status: "ok"}
}
