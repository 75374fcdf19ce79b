package admin

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatejohn/internal/controlplane"
	dto "github.com/dropDatabas3/gatejohn/internal/http/dto/admin"
	"github.com/dropDatabas3/gatejohn/internal/security/secretbox"
	"github.com/dropDatabas3/gatejohn/internal/store/memory"
)

func setupSecretbox(t *testing.T) {
	t.Helper()
	secretbox.UnsafeResetSecretBoxForTests()
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i * 3)
	}
	t.Setenv("SECRETBOX_MASTER_KEY", base64.StdEncoding.EncodeToString(raw))
	t.Cleanup(secretbox.UnsafeResetSecretBoxForTests)
}

func newAdminHandler(repo *memory.Repo) http.Handler {
	r := chi.NewRouter()
	c := NewTenantsController(repo)
	r.Post("/v1/admin/tenants", c.Create)
	r.Get("/v1/admin/tenants/{slug}", c.Get)
	r.Put("/v1/admin/tenants/{slug}/sso-secret", c.SetSSOSecret)
	r.Delete("/v1/admin/tenants/{slug}/sso-secret", c.ClearSSOSecret)
	return r
}

func doReq(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetTenant(t *testing.T) {
	h := newAdminHandler(memory.New())

	rec := doReq(h, http.MethodPost, "/v1/admin/tenants", `{"name":"Acme","slug":"acme","brand_color":"#ff0000"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created dto.TenantResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, "acme", created.Slug)
	require.False(t, created.SSOConfigured)

	got := doReq(h, http.MethodGet, "/v1/admin/tenants/acme", "")
	require.Equal(t, http.StatusOK, got.Code)
	var fetched dto.TenantResponse
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &fetched))
	require.Equal(t, created.ID, fetched.ID)
}

func TestCreateTenant_Validation(t *testing.T) {
	h := newAdminHandler(memory.New())

	for name, body := range map[string]string{
		"missing name": `{"slug":"acme"}`,
		"missing slug": `{"name":"Acme"}`,
		"bad slug":     `{"name":"Acme","slug":"Not A Slug"}`,
		"bad json":     `{`,
	} {
		rec := doReq(h, http.MethodPost, "/v1/admin/tenants", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestCreateTenant_DuplicateSlug(t *testing.T) {
	h := newAdminHandler(memory.New())

	first := doReq(h, http.MethodPost, "/v1/admin/tenants", `{"name":"Acme","slug":"acme"}`)
	require.Equal(t, http.StatusCreated, first.Code)

	dup := doReq(h, http.MethodPost, "/v1/admin/tenants", `{"name":"Other","slug":"acme"}`)
	require.Equal(t, http.StatusConflict, dup.Code)
}

func TestSetAndClearSSOSecret(t *testing.T) {
	setupSecretbox(t)

	repo := memory.New()
	require.NoError(t, repo.Create(context.Background(), &controlplane.Tenant{
		ID: "t1", Slug: "acme", Name: "Acme",
	}))
	h := newAdminHandler(repo)

	rec := doReq(h, http.MethodPut, "/v1/admin/tenants/acme/sso-secret", `{"secret":"S-acme"}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	// El GET reporta configurado pero jamás echoa el secreto.
	got := doReq(h, http.MethodGet, "/v1/admin/tenants/acme", "")
	var resp dto.TenantResponse
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &resp))
	require.True(t, resp.SSOConfigured)
	require.NotContains(t, got.Body.String(), "S-acme")

	// Persistido cifrado, no en claro.
	stored, err := repo.GetBySlug(context.Background(), "acme")
	require.NoError(t, err)
	require.NotEmpty(t, stored.Settings.SSOSecretEnc)
	require.NotContains(t, stored.Settings.SSOSecretEnc, "S-acme")
	plain, err := secretbox.Decrypt(stored.Settings.SSOSecretEnc)
	require.NoError(t, err)
	require.Equal(t, "S-acme", plain)

	// Borrar deshabilita SSO.
	del := doReq(h, http.MethodDelete, "/v1/admin/tenants/acme/sso-secret", "")
	require.Equal(t, http.StatusNoContent, del.Code)
	stored, err = repo.GetBySlug(context.Background(), "acme")
	require.NoError(t, err)
	require.False(t, stored.HasSSOSecret())
}

func TestSetSSOSecret_UnknownTenant(t *testing.T) {
	setupSecretbox(t)
	h := newAdminHandler(memory.New())

	rec := doReq(h, http.MethodPut, "/v1/admin/tenants/nope/sso-secret", `{"secret":"x"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetSSOSecret_EmptySecret(t *testing.T) {
	setupSecretbox(t)
	h := newAdminHandler(memory.New())

	rec := doReq(h, http.MethodPut, "/v1/admin/tenants/acme/sso-secret", `{"secret":"  "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
