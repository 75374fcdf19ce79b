// Package admin define los contratos JSON de la superficie de
// administración.
package admin

import "time"

// CreateTenantRequest: alta de tenant.
type CreateTenantRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`

	LogoURL       string `json:"logo_url,omitempty"`
	BrandColor    string `json:"brand_color,omitempty"`
	PrimaryDomain string `json:"primary_domain,omitempty"`
}

// SetSSOSecretRequest: alta o rotación del shared secret de SSO.
// El secreto llega en claro por esta API (canal admin autenticado) y se
// persiste cifrado; jamás vuelve a salir.
type SetSSOSecretRequest struct {
	Secret string `json:"secret"`
}

// TenantResponse: representación pública de un tenant.
// SSOConfigured reemplaza al secreto: la API nunca lo echoa, ni cifrado.
type TenantResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	LogoURL       string    `json:"logo_url,omitempty"`
	BrandColor    string    `json:"brand_color,omitempty"`
	PrimaryDomain string    `json:"primary_domain,omitempty"`
	SSOConfigured bool      `json:"sso_configured"`
}
