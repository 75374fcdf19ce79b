// Package sso contiene el service del bridge de aserciones:
// la pieza que convierte un JWT firmado por un tercero en una sesión
// propia, aprovisionando la cuenta namespaceada si hace falta.
package sso

import (
	"context"
	"errors"

	"github.com/dropDatabas3/gatejohn/internal/controlplane"
	"github.com/dropDatabas3/gatejohn/internal/identity"
)

// Errores del service. El controller hace pattern-match con errors.Is;
// la causa original viaja adentro para los logs.
var (
	ErrTenantNotFound      = errors.New("sso: tenant not found")
	ErrTenantMisconfigured = errors.New("sso: tenant has no usable sso secret")
	ErrInvalidAssertion    = errors.New("sso: invalid assertion")
	ErrInvalidPayload      = errors.New("sso: assertion payload incomplete")
	ErrProvisioningFailed  = errors.New("sso: account provisioning failed")
	ErrAuthFailed          = errors.New("sso: directory sign-in rejected")
)

// TenantResolver es la porción del control plane que el bridge necesita.
type TenantResolver interface {
	GetBySlug(ctx context.Context, slug string) (*controlplane.Tenant, error)
}

// SecretSource resuelve el shared secret (en claro) del tenant.
type SecretSource interface {
	AssertionSecret(ctx context.Context, tenant *controlplane.Tenant) ([]byte, error)
}

// Result es la salida de un intercambio exitoso.
type Result struct {
	Tenant          *controlplane.Tenant
	NamespacedEmail string
	Session         *identity.Session
}

// Service define la operación única del bridge.
type Service interface {
	// Exchange ejecuta el pipeline completo:
	// resolver tenant → secreto → verificar → validar claims →
	// namespacear → aprovisionar (idempotente) → autenticar.
	// Primer fallo corta; no hay retries en ningún paso.
	Exchange(ctx context.Context, tenantSlug, assertionToken string) (*Result, error)
}
