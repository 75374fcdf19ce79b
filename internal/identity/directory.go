// Package identity modela el directorio de usuarios como colaborador
// externo opaco: crear cuenta y autenticar. La implementación HTTP habla
// con la Admin API del directorio gestionado; la de memoria sirve para
// desarrollo y tests.
package identity

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrAlreadyExists: la cuenta ya estaba aprovisionada. Para el bridge
	// esto es éxito, no fallo (el create es idempotente desde su punto
	// de vista).
	ErrAlreadyExists = errors.New("account already exists")

	// ErrAuthFailed: el directorio rechazó las credenciales.
	ErrAuthFailed = errors.New("authentication failed")
)

// Profile son los campos de perfil que se fijan SOLO al crear la cuenta.
// Logins posteriores no los actualizan (limitación documentada del
// contrato, no un descuido).
type Profile struct {
	Name      string
	AvatarURL string
}

// Session es la credencial efímera que devuelve el directorio.
// El bridge la trata como opaca más allá de poder serializarla en una
// cookie; se entrega al browser y no se retiene del lado del servidor.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Serialize devuelve la representación JSON que viaja en la cookie.
func (s *Session) Serialize() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Directory define las dos operaciones que el bridge necesita del
// directorio de identidad.
type Directory interface {
	// CreateAccount aprovisiona una cuenta. Retorna ErrAlreadyExists si
	// el email ya estaba registrado; cualquier otro error es fallo real.
	CreateAccount(ctx context.Context, email, password string, profile Profile) error

	// Authenticate inicia sesión con email/password y devuelve la sesión.
	// Retorna ErrAuthFailed si el directorio rechaza las credenciales.
	Authenticate(ctx context.Context, email, password string) (*Session, error)

	// Ping verifica que el directorio esté alcanzable.
	Ping(ctx context.Context) error
}
