package sso

import (
	"context"
	"errors"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatejohn/internal/controlplane"
	"github.com/dropDatabas3/gatejohn/internal/identity"
	"github.com/dropDatabas3/gatejohn/internal/store"
	"github.com/dropDatabas3/gatejohn/internal/store/memory"
)

// fakeSecrets sirve secretos en claro por tenant ID.
type fakeSecrets struct{ byTenant map[string][]byte }

func (f *fakeSecrets) AssertionSecret(_ context.Context, t *controlplane.Tenant) ([]byte, error) {
	s, ok := f.byTenant[t.ID]
	if !ok {
		return nil, store.ErrSecretNotConfigured
	}
	return s, nil
}

func sign(t *testing.T, secret []byte, claims jwtv5.MapClaims) string {
	t.Helper()
	if _, ok := claims["iat"]; !ok {
		claims["iat"] = time.Now().Unix()
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	s, err := tok.SignedString(secret)
	require.NoError(t, err)
	return s
}

func newFixture(t *testing.T) (*BridgeService, *identity.MemoryDirectory, []byte) {
	t.Helper()
	tenants := memory.New()
	require.NoError(t, tenants.Create(context.Background(), &controlplane.Tenant{
		ID: "acme-id", Slug: "acme", Name: "Acme",
	}))
	require.NoError(t, tenants.Create(context.Background(), &controlplane.Tenant{
		ID: "globex-id", Slug: "globex", Name: "Globex",
	}))

	secret := []byte("S-acme")
	secrets := &fakeSecrets{byTenant: map[string][]byte{
		"acme-id":   secret,
		"globex-id": []byte("S-globex"),
	}}
	dir := identity.NewMemoryDirectory()
	return NewBridgeService(tenants, secrets, dir), dir, secret
}

func TestExchange_EndToEnd_FirstAndSecondLogin(t *testing.T) {
	svc, dir, secret := newFixture(t)
	ctx := context.Background()

	token := sign(t, secret, jwtv5.MapClaims{"email": "a@ex.com", "name": "A"})

	// Primer login: crea la cuenta namespaceada y emite sesión.
	res, err := svc.Exchange(ctx, "acme", token)
	require.NoError(t, err)
	require.Equal(t, "a+acme-id@ex.com", res.NamespacedEmail)
	require.NotNil(t, res.Session)
	require.NotEmpty(t, res.Session.AccessToken)
	require.Equal(t, 1, dir.Count())

	// Segundo login idéntico: misma cuenta, sin duplicados, nueva sesión.
	res2, err := svc.Exchange(ctx, "acme", token)
	require.NoError(t, err)
	require.Equal(t, res.NamespacedEmail, res2.NamespacedEmail)
	require.Equal(t, 1, dir.Count(), "provisioning must be idempotent")
}

func TestExchange_NamespacingInjectiveAcrossTenants(t *testing.T) {
	svc, dir, _ := newFixture(t)
	ctx := context.Background()

	tokAcme := sign(t, []byte("S-acme"), jwtv5.MapClaims{"email": "a@ex.com", "name": "A"})
	tokGlobex := sign(t, []byte("S-globex"), jwtv5.MapClaims{"email": "a@ex.com", "name": "A"})

	resA, err := svc.Exchange(ctx, "acme", tokAcme)
	require.NoError(t, err)
	resB, err := svc.Exchange(ctx, "globex", tokGlobex)
	require.NoError(t, err)

	require.NotEqual(t, resA.NamespacedEmail, resB.NamespacedEmail)
	require.Equal(t, 2, dir.Count())
}

func TestExchange_WrongSecret(t *testing.T) {
	svc, dir, _ := newFixture(t)

	token := sign(t, []byte("otro-secreto"), jwtv5.MapClaims{"email": "a@ex.com", "name": "A"})
	_, err := svc.Exchange(context.Background(), "acme", token)

	require.ErrorIs(t, err, ErrInvalidAssertion)
	require.Equal(t, 0, dir.Count(), "no account may be created on bad signature")
}

func TestExchange_ValidSignatureIncompletePayload(t *testing.T) {
	svc, dir, secret := newFixture(t)

	for _, claims := range []jwtv5.MapClaims{
		{"name": "A"},                    // sin email
		{"email": "a@ex.com"},            // sin name
		{"email": "", "name": "A"},       // email vacío
		{"email": "a@ex.com", "name": ""},// name vacío
	} {
		token := sign(t, secret, claims)
		_, err := svc.Exchange(context.Background(), "acme", token)
		require.ErrorIs(t, err, ErrInvalidPayload)
	}
	require.Equal(t, 0, dir.Count())
}

func TestExchange_TenantNotFound(t *testing.T) {
	svc, _, secret := newFixture(t)

	token := sign(t, secret, jwtv5.MapClaims{"email": "a@ex.com", "name": "A"})
	_, err := svc.Exchange(context.Background(), "desconocido", token)

	require.ErrorIs(t, err, ErrTenantNotFound)
}

func TestExchange_TenantWithoutSecret(t *testing.T) {
	tenants := memory.New()
	require.NoError(t, tenants.Create(context.Background(), &controlplane.Tenant{
		ID: "t1", Slug: "sin-sso", Name: "SinSSO",
	}))
	svc := NewBridgeService(tenants, &fakeSecrets{byTenant: map[string][]byte{}}, identity.NewMemoryDirectory())

	token := sign(t, []byte("x"), jwtv5.MapClaims{"email": "a@ex.com", "name": "A"})
	_, err := svc.Exchange(context.Background(), "sin-sso", token)

	require.ErrorIs(t, err, ErrTenantMisconfigured)
}

// brokenDirectory falla donde se le pida.
type brokenDirectory struct {
	identity.Directory
	failCreate bool
	failAuth   bool
}

func (b *brokenDirectory) CreateAccount(ctx context.Context, email, pass string, p identity.Profile) error {
	if b.failCreate {
		return errors.New("directory unavailable")
	}
	return b.Directory.CreateAccount(ctx, email, pass, p)
}

func (b *brokenDirectory) Authenticate(ctx context.Context, email, pass string) (*identity.Session, error) {
	if b.failAuth {
		return nil, identity.ErrAuthFailed
	}
	return b.Directory.Authenticate(ctx, email, pass)
}

func TestExchange_ProvisioningFailureSurfaces(t *testing.T) {
	tenants := memory.New()
	require.NoError(t, tenants.Create(context.Background(), &controlplane.Tenant{ID: "t1", Slug: "acme"}))
	secrets := &fakeSecrets{byTenant: map[string][]byte{"t1": []byte("S")}}
	svc := NewBridgeService(tenants, secrets, &brokenDirectory{Directory: identity.NewMemoryDirectory(), failCreate: true})

	token := sign(t, []byte("S"), jwtv5.MapClaims{"email": "a@ex.com", "name": "A"})
	_, err := svc.Exchange(context.Background(), "acme", token)

	require.ErrorIs(t, err, ErrProvisioningFailed)
}

func TestExchange_AuthFailureAfterProvisionSurfaces(t *testing.T) {
	tenants := memory.New()
	require.NoError(t, tenants.Create(context.Background(), &controlplane.Tenant{ID: "t1", Slug: "acme"}))
	secrets := &fakeSecrets{byTenant: map[string][]byte{"t1": []byte("S")}}
	svc := NewBridgeService(tenants, secrets, &brokenDirectory{Directory: identity.NewMemoryDirectory(), failAuth: true})

	token := sign(t, []byte("S"), jwtv5.MapClaims{"email": "a@ex.com", "name": "A"})
	_, err := svc.Exchange(context.Background(), "acme", token)

	require.ErrorIs(t, err, ErrAuthFailed)
}
