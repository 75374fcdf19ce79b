package sso

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/gatejohn/internal/assertion"
	"github.com/dropDatabas3/gatejohn/internal/identity"
	"github.com/dropDatabas3/gatejohn/internal/observability/logger"
	"github.com/dropDatabas3/gatejohn/internal/store"
)

// BridgeService es la implementación por defecto de Service.
// Sin estado propio: cada invocación es un pipeline lineal independiente
// y las invocaciones concurrentes no comparten nada mutable. La única
// garantía de corrección entre requests duplicados es la idempotencia
// del create en el directorio.
type BridgeService struct {
	tenants   TenantResolver
	secrets   SecretSource
	directory identity.Directory
}

// NewBridgeService arma el service con sus colaboradores.
func NewBridgeService(tenants TenantResolver, secrets SecretSource, directory identity.Directory) *BridgeService {
	return &BridgeService{tenants: tenants, secrets: secrets, directory: directory}
}

func (s *BridgeService) Exchange(ctx context.Context, tenantSlug, assertionToken string) (*Result, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("BridgeService.Exchange"), logger.TenantSlug(tenantSlug))

	// 1. Tenant
	tenant, err := s.tenants.GetBySlug(ctx, tenantSlug)
	if err != nil {
		if store.IsTenantNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrTenantNotFound, tenantSlug)
		}
		return nil, fmt.Errorf("%w: %v", ErrTenantNotFound, err)
	}

	// 2. Secreto del tenant. Ausencia es error de configuración duro,
	// distinto de tenant inexistente: el tenant está pero SSO no sirve.
	secret, err := s.secrets.AssertionSecret(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTenantMisconfigured, err)
	}

	// 3. Verificación de firma + estructura. La causa queda para
	// diagnóstico; el secreto jamás viaja en el error.
	rawClaims, err := assertion.VerifyHS256(assertionToken, secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}

	// 4. Claims requeridas. Firma válida con payload incompleto se
	// rechaza igual.
	claims, err := assertion.ExtractClaims(rawClaims)
	if err != nil {
		return nil, ErrInvalidPayload
	}

	// 5. Namespacing determinístico; no puede fallar.
	email := identity.NamespaceEmail(claims.Email, tenant.ID)

	// 6. Aprovisionamiento idempotente. password == email namespaceado
	// (contrato heredado, ver identity.NamespaceEmail). El perfil se
	// fija solo acá: logins posteriores no actualizan name/avatar.
	err = s.directory.CreateAccount(ctx, email, email, identity.Profile{
		Name:      claims.Name,
		AvatarURL: claims.AvatarURL,
	})
	switch {
	case err == nil:
		log.Debug("account provisioned", logger.TenantID(tenant.ID))
	case errors.Is(err, identity.ErrAlreadyExists):
		// Único caso recuperado localmente en todo el pipeline.
	default:
		return nil, fmt.Errorf("%w: %v", ErrProvisioningFailed, err)
	}

	// 7. Autenticación. Un fallo acá recién después de un create
	// exitoso no debería pasar con un directorio sano; surfear igual.
	sess, err := s.directory.Authenticate(ctx, email, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	return &Result{
		Tenant:          tenant,
		NamespacedEmail: email,
		Session:         sess,
	}, nil
}

var _ Service = (*BridgeService)(nil)
