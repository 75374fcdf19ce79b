// Package assertion verifica los tokens firmados que un sistema externo
// presenta para dar fe de la identidad de un usuario.
//
// El token es HS256 bajo el shared secret del tenant. Ninguna claim se
// considera confiable antes de VerifyHS256; el token se descarta después
// de la verificación, nunca se persiste.
package assertion

import (
	"errors"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken cubre firma inválida, token malformado o expirado.
	ErrInvalidToken = errors.New("invalid_jwt")

	// ErrMissingClaims indica firma válida pero payload incompleto
	// (falta email o name).
	ErrMissingClaims = errors.New("missing_claims")
)

// Claims son los datos atestiguados por el emisor externo, ya validados.
type Claims struct {
	Email     string
	Name      string
	AvatarURL string // opcional; vacío = ausente
}

// VerifyHS256 valida firma (HS256) con el secreto del tenant y chequea
// exp/nbf con una pequeña tolerancia. Devuelve las claims como map[string]any.
func VerifyHS256(token string, secret []byte) (map[string]any, error) {
	if strings.TrimSpace(token) == "" || len(secret) == 0 {
		return nil, ErrInvalidToken
	}

	keyfunc := func(t *jwtv5.Token) (any, error) {
		return secret, nil
	}

	// La tolerancia absorbe clock skew con el emisor externo; Parse ya
	// valida exp/nbf con ella incluida.
	tok, err := jwtv5.Parse(token, keyfunc,
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithLeeway(30*time.Second),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	out := make(map[string]any, len(claims))
	for k, v := range claims {
		out[k] = v
	}
	return out, nil
}

// ExtractClaims valida la forma del payload ya verificado.
// email y name son obligatorios; un token bien firmado pero incompleto
// se rechaza igual.
func ExtractClaims(raw map[string]any) (*Claims, error) {
	email, _ := raw["email"].(string)
	name, _ := raw["name"].(string)
	if strings.TrimSpace(email) == "" || strings.TrimSpace(name) == "" {
		return nil, ErrMissingClaims
	}

	avatar, _ := raw["avatar_url"].(string)

	return &Claims{
		Email:     email,
		Name:      name,
		AvatarURL: avatar,
	}, nil
}
