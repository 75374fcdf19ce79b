package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newFakeDirectory(t *testing.T, existing map[string]bool) (*httptest.Server, *HTTPDirectory) {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/admin/users", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer service-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req createUserRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if existing[req.Email] {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"msg": "A user with this email address has already been registered",
			})
			return
		}
		existing[req.Email] = true
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "u1", "email": req.Email})
	})

	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if !existing[creds["email"]] || creds["password"] != creds["email"] {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		_ = json.NewEncoder(w).Encode(Session{
			AccessToken: "tok-123",
			TokenType:   "bearer",
			ExpiresIn:   3600,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, NewHTTPDirectory(srv.URL, "service-key")
}

func TestHTTPDirectory_CreateThenAuthenticate(t *testing.T) {
	_, dir := newFakeDirectory(t, map[string]bool{})
	ctx := context.Background()

	email := "a+t1@ex.com"
	if err := dir.CreateAccount(ctx, email, email, Profile{Name: "A"}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	s, err := dir.Authenticate(ctx, email, email)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if s.AccessToken == "" {
		t.Fatal("empty access token")
	}
}

func TestHTTPDirectory_DuplicateIsAlreadyExists(t *testing.T) {
	_, dir := newFakeDirectory(t, map[string]bool{"a+t1@ex.com": true})

	err := dir.CreateAccount(context.Background(), "a+t1@ex.com", "a+t1@ex.com", Profile{Name: "A"})
	if err != ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestHTTPDirectory_AuthFailed(t *testing.T) {
	_, dir := newFakeDirectory(t, map[string]bool{})

	_, err := dir.Authenticate(context.Background(), "nadie@ex.com", "x")
	if err != ErrAuthFailed {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestMemoryDirectory_Idempotence(t *testing.T) {
	dir := NewMemoryDirectory()
	ctx := context.Background()
	email := "a+t1@ex.com"

	if err := dir.CreateAccount(ctx, email, email, Profile{Name: "A", AvatarURL: "https://img"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := dir.CreateAccount(ctx, email, email, Profile{Name: "B"}); err != ErrAlreadyExists {
		t.Fatalf("second create: expected ErrAlreadyExists, got %v", err)
	}
	if dir.Count() != 1 {
		t.Fatalf("want exactly one account, got %d", dir.Count())
	}

	// El perfil queda el de la creación, no se pisa en reintentos.
	p, _ := dir.ProfileOf(email)
	if p.Name != "A" {
		t.Fatalf("profile overwritten: %+v", p)
	}

	if _, err := dir.Authenticate(ctx, email, email); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if _, err := dir.Authenticate(ctx, email, "wrong"); err != ErrAuthFailed {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}
