// Package session serializa la sesión del directorio en la cookie que
// recibe el browser.
package session

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	cookiePrefix = "sb-"
	cookieSuffix = "-auth-token"

	// devDomainID reemplaza al host-derived id fuera de producción.
	devDomainID = "localhost"

	// CookieMaxAge: 7 días. La sesión subyacente puede expirar antes;
	// la cookie solo es el transporte.
	CookieMaxAge = 7 * 24 * time.Hour
)

// CookieConfig viene inyectada desde la configuración del deployment.
// El handler nunca lee ambiente de proceso para decidir el nombre.
type CookieConfig struct {
	// DomainID identifica el deployment en producción (derivado del
	// root domain, sin esquema). Ej: "abcdwxyz" de https://abcdwxyz.host.co
	DomainID string

	// Production decide entre DomainID y el nombre fijo de desarrollo.
	Production bool
}

// Name devuelve el nombre de cookie, estable entre requests para que el
// browser sobreescriba en lugar de acumular.
func (c CookieConfig) Name() string {
	id := devDomainID
	if c.Production && c.DomainID != "" {
		id = c.DomainID
	}
	return cookiePrefix + id + cookieSuffix
}

// NewCookie arma la cookie de sesión con los atributos del contrato:
// Path=/, Secure, Max-Age 7d, SameSite=Lax.
// El valor viaja URL-encodeado: el JSON de la sesión contiene comillas y
// comas, que no son octetos válidos de cookie.
func NewCookie(cfg CookieConfig, serialized string) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.Name(),
		Value:    url.QueryEscape(serialized),
		Path:     "/",
		Secure:   true,
		MaxAge:   int(CookieMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	}
}

// DecodeValue revierte el encoding del valor de la cookie.
func DecodeValue(raw string) (string, error) {
	return url.QueryUnescape(raw)
}

// DomainIDFromURL deriva el identificador de deployment desde una URL
// base: quita el esquema y se queda con el primer label del host.
// "https://abcdwxyz.supahost.co" => "abcdwxyz".
func DomainIDFromURL(raw string) string {
	s := raw
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/:"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "."); i >= 0 {
		s = s[:i]
	}
	return s
}
