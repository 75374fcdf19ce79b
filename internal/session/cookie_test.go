package session

import (
	"net/http"
	"strings"
	"testing"
)

func TestCookieName_ProdVsDev(t *testing.T) {
	prod := CookieConfig{DomainID: "abcdwxyz", Production: true}
	if got := prod.Name(); got != "sb-abcdwxyz-auth-token" {
		t.Fatalf("prod name: %q", got)
	}

	dev := CookieConfig{DomainID: "abcdwxyz", Production: false}
	if got := dev.Name(); got != "sb-localhost-auth-token" {
		t.Fatalf("dev name: %q", got)
	}

	// Producción sin DomainID configurado cae al nombre de desarrollo
	// en lugar de producir "sb--auth-token".
	empty := CookieConfig{Production: true}
	if got := empty.Name(); got != "sb-localhost-auth-token" {
		t.Fatalf("empty domain id: %q", got)
	}
}

func TestCookieName_StableAcrossRequests(t *testing.T) {
	cfg := CookieConfig{DomainID: "abcdwxyz", Production: true}
	if cfg.Name() != cfg.Name() {
		t.Fatal("cookie name must be stable")
	}
}

func TestNewCookie_Attributes(t *testing.T) {
	c := NewCookie(CookieConfig{DomainID: "x", Production: true}, `{"access_token":"t"}`)

	if c.Path != "/" {
		t.Fatalf("path: %q", c.Path)
	}
	if !c.Secure {
		t.Fatal("cookie must be Secure")
	}
	if c.MaxAge != 7*24*3600 {
		t.Fatalf("max-age: %d", c.MaxAge)
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("samesite: %v", c.SameSite)
	}
	// Valor URL-encodeado (el JSON crudo no sobrevive la sanitización
	// de cookies de net/http) y reversible.
	decoded, err := DecodeValue(c.Value)
	if err != nil {
		t.Fatal(err)
	}
	if decoded != `{"access_token":"t"}` {
		t.Fatalf("decoded value: %q", decoded)
	}
	for _, bad := range []byte{'"', ',', ' '} {
		if strings.IndexByte(c.Value, bad) >= 0 {
			t.Fatalf("cookie value contains invalid octet %q: %s", bad, c.Value)
		}
	}
}

func TestDomainIDFromURL(t *testing.T) {
	cases := map[string]string{
		"https://abcdwxyz.supahost.co":      "abcdwxyz",
		"http://abcdwxyz.supahost.co:8000":  "abcdwxyz",
		"https://abcdwxyz.supahost.co/path": "abcdwxyz",
		"abcdwxyz.supahost.co":              "abcdwxyz",
		"localhost":                         "localhost",
	}
	for in, want := range cases {
		if got := DomainIDFromURL(in); got != want {
			t.Fatalf("DomainIDFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}
