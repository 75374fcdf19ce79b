package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/dropDatabas3/gatejohn/internal/security/password"
)

// MemoryDirectory es un directorio en memoria para desarrollo y tests.
// Hashea contraseñas con argon2id igual que un directorio real; las
// sesiones son tokens opacos aleatorios.
type MemoryDirectory struct {
	mu       sync.Mutex
	accounts map[string]memoryAccount

	// SessionTTL en segundos (default 3600).
	SessionTTL int
}

type memoryAccount struct {
	passwordHash string
	profile      Profile
	createdAt    time.Time
}

// NewMemoryDirectory crea un directorio vacío.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		accounts:   make(map[string]memoryAccount),
		SessionTTL: 3600,
	}
}

func (d *MemoryDirectory) CreateAccount(ctx context.Context, email, pass string, profile Profile) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.accounts[email]; ok {
		return ErrAlreadyExists
	}

	phc, err := password.Hash(password.Default, pass)
	if err != nil {
		return err
	}
	d.accounts[email] = memoryAccount{
		passwordHash: phc,
		profile:      profile,
		createdAt:    time.Now(),
	}
	return nil
}

func (d *MemoryDirectory) Authenticate(ctx context.Context, email, pass string) (*Session, error) {
	d.mu.Lock()
	acct, ok := d.accounts[email]
	d.mu.Unlock()

	if !ok || !password.Verify(pass, acct.passwordHash) {
		return nil, ErrAuthFailed
	}

	var tok [24]byte
	if _, err := rand.Read(tok[:]); err != nil {
		return nil, err
	}
	ttl := d.SessionTTL
	if ttl <= 0 {
		ttl = 3600
	}
	return &Session{
		AccessToken: hex.EncodeToString(tok[:]),
		TokenType:   "bearer",
		ExpiresIn:   ttl,
		ExpiresAt:   time.Now().Add(time.Duration(ttl) * time.Second).Unix(),
	}, nil
}

func (d *MemoryDirectory) Ping(ctx context.Context) error { return nil }

// Count devuelve la cantidad de cuentas aprovisionadas (para tests).
func (d *MemoryDirectory) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.accounts)
}

// ProfileOf devuelve el perfil guardado de una cuenta (para tests).
func (d *MemoryDirectory) ProfileOf(email string) (Profile, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	acct, ok := d.accounts[email]
	return acct.profile, ok
}
