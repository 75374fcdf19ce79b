// internal/controlplane/types.go
package controlplane

import "time"

// Tenant representa un arrendatario (aislamiento lógico) del dashboard.
// El bridge solo lee tenants; la mutación vive en el subsistema de
// administración (ver controllers/admin).
type Tenant struct {
	// UUID en string (evita dependencia a libs externas en el modelo).
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	Slug      string         `json:"slug" yaml:"slug"` // único; usado en paths/URLs
	CreatedAt time.Time      `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt" yaml:"updatedAt"`
	Settings  TenantSettings `json:"settings" yaml:"settings"`
}

// TenantSettings: branding y configuración de integraciones por tenant.
type TenantSettings struct {
	LogoURL       string `json:"logoUrl,omitempty" yaml:"logoUrl,omitempty"`
	BrandColor    string `json:"brandColor,omitempty" yaml:"brandColor,omitempty"`
	PrimaryDomain string `json:"primaryDomain,omitempty" yaml:"primaryDomain,omitempty"`

	// SSOSecretEnc es el shared secret de SSO cifrado con secretbox.
	// Nunca se expone por la API; los admins lo setean vía
	// PUT /v1/admin/tenants/{slug}/sso-secret.
	SSOSecretEnc string `json:"ssoSecretEnc,omitempty" yaml:"ssoSecretEnc,omitempty"`
}

// HasSSOSecret indica si el tenant tiene SSO utilizable.
func (t *Tenant) HasSSOSecret() bool {
	return t != nil && t.Settings.SSOSecretEnc != ""
}
