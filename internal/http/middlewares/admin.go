package middlewares

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dropDatabas3/gatejohn/internal/http/errors"
)

// RequireAdminKey protege las rutas de administración con una API key
// estática (header X-Admin-API-Key). Comparación en tiempo constante.
// Si no hay key configurada, la superficie admin queda cerrada: nunca
// degradamos a "abierto por defecto".
func RequireAdminKey(apiKey string) Middleware {
	key := []byte(strings.TrimSpace(apiKey))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(key) == 0 {
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("admin api key not configured"))
				return
			}

			got := []byte(strings.TrimSpace(r.Header.Get("X-Admin-API-Key")))
			if len(got) == 0 || subtle.ConstantTimeCompare(key, got) != 1 {
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("invalid admin api key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
