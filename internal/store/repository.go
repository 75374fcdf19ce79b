// Package store define el acceso al control plane de tenants.
//
// El bridge trata al directorio de tenants como un colaborador de solo
// lectura; la escritura existe únicamente para la Admin API que respalda
// la settings card del dashboard.
package store

import (
	"context"

	"github.com/dropDatabas3/gatejohn/internal/controlplane"
)

// TenantRepository define operaciones sobre tenants (Control Plane).
type TenantRepository interface {
	// GetBySlug busca un tenant por su slug.
	// Retorna ErrTenantNotFound si no existe.
	GetBySlug(ctx context.Context, slug string) (*controlplane.Tenant, error)

	// Create crea un nuevo tenant.
	// Retorna ErrConflict si el slug ya existe.
	Create(ctx context.Context, tenant *controlplane.Tenant) error

	// UpdateSSOSecret guarda el secreto de SSO (ya cifrado) del tenant.
	// Un valor vacío desconfigura SSO para el tenant.
	// Retorna ErrTenantNotFound si el slug no existe.
	UpdateSSOSecret(ctx context.Context, slug string, secretEnc string) error

	// Ping verifica la conexión al backend.
	Ping(ctx context.Context) error
}

// SecretSource resuelve el secreto de aserción (en claro) de un tenant.
// Separado de TenantRepository para que el pipeline del bridge dependa
// solo de lo que necesita.
type SecretSource interface {
	// AssertionSecret retorna los bytes del shared secret del tenant.
	// Retorna ErrSecretNotConfigured si el tenant no tiene SSO utilizable.
	AssertionSecret(ctx context.Context, tenant *controlplane.Tenant) ([]byte, error)
}
