package store

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/gatejohn/internal/controlplane"
	"github.com/dropDatabas3/gatejohn/internal/security/secretbox"
)

// SecretboxSource resuelve el secreto de aserción descifrando
// Settings.SSOSecretEnc con la clave maestra de secretbox.
//
// No cachea: una rotación del secreto debe surtir efecto en el request
// siguiente.
type SecretboxSource struct{}

// NewSecretboxSource crea el SecretSource por defecto.
func NewSecretboxSource() *SecretboxSource { return &SecretboxSource{} }

func (s *SecretboxSource) AssertionSecret(ctx context.Context, tenant *controlplane.Tenant) ([]byte, error) {
	if !tenant.HasSSOSecret() {
		return nil, ErrSecretNotConfigured
	}
	plain, err := secretbox.Decrypt(tenant.Settings.SSOSecretEnc)
	if err != nil {
		// La causa va al log, nunca al cliente; el secreto mismo jamás
		// se incluye en el error.
		return nil, fmt.Errorf("decrypt sso secret for tenant %s: %w", tenant.Slug, err)
	}
	return []byte(plain), nil
}
