package store

import "errors"

// Errores comunes del control plane de tenants.
var (
	// ErrTenantNotFound indica que el slug no resuelve a ningún tenant.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrSecretNotConfigured indica que el tenant existe pero no tiene
	// secreto de SSO configurado. Es un error de configuración, no
	// una condición reintentable.
	ErrSecretNotConfigured = errors.New("sso secret not configured for tenant")

	// ErrConflict indica que el slug ya existe al crear un tenant.
	ErrConflict = errors.New("conflict")
)

// IsTenantNotFound helper para verificar si el error es por tenant no encontrado.
func IsTenantNotFound(err error) bool {
	return errors.Is(err, ErrTenantNotFound)
}

// IsSecretNotConfigured helper para verificar falta de secreto SSO.
func IsSecretNotConfigured(err error) bool {
	return errors.Is(err, ErrSecretNotConfigured)
}

// IsConflict helper para verificar colisión de slug en el alta.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
