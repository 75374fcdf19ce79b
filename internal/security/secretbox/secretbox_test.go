package secretbox

import (
	"encoding/base64"
	"os"
	"strings"
	"testing"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	UnsafeResetSecretBoxForTests()

	// Clave de 32 bytes -> base64
	raw := make([]byte, 32)
	for i := 0; i < 32; i++ {
		raw[i] = byte(i + 1)
	}
	os.Setenv("SECRETBOX_MASTER_KEY", base64.StdEncoding.EncodeToString(raw))

	msg := "sso-shared-secret ✓ — sensible"
	ct, err := Encrypt(msg)
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	pt, err := Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt err: %v", err)
	}
	if pt != msg {
		t.Fatalf("plaintext mismatch: got %q want %q", pt, msg)
	}
}

func TestDecrypt_DetectsTamper(t *testing.T) {
	UnsafeResetSecretBoxForTests()

	raw := make([]byte, 32)
	for i := 0; i < 32; i++ {
		raw[i] = byte(255 - i)
	}
	os.Setenv("SECRETBOX_MASTER_KEY", base64.StdEncoding.EncodeToString(raw))

	ct, err := Encrypt("top secret")
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	parts := strings.Split(ct, "|")
	if len(parts) != 2 {
		t.Fatalf("unexpected ct format")
	}
	// corromper un byte del ciphertext (base64 -> bytes -> flip -> base64)
	bs, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatal(err)
	}
	if len(bs) == 0 {
		t.Fatal("empty ct")
	}
	bs[0] ^= 0x01
	corrupted := parts[0] + "|" + base64.StdEncoding.EncodeToString(bs)

	if _, err := Decrypt(corrupted); err == nil {
		t.Fatalf("expected auth error, got nil")
	}
}

func TestEncrypt_ErrorWhenNoKey(t *testing.T) {
	UnsafeResetSecretBoxForTests()
	os.Unsetenv("SECRETBOX_MASTER_KEY")

	if _, err := Encrypt("x"); err == nil {
		t.Fatalf("expected error when key missing")
	}
}

// El gate de readiness es lo primero que se consulta en el proceso (main
// y el Admin API lo chequean antes de cualquier Encrypt), así que tiene
// que cargar la clave por sí solo.
func TestIsSecretBoxReady_LoadsKeyWithoutPriorUse(t *testing.T) {
	UnsafeResetSecretBoxForTests()

	raw := make([]byte, 32)
	for i := 0; i < 32; i++ {
		raw[i] = byte(i * 7)
	}
	os.Setenv("SECRETBOX_MASTER_KEY", base64.StdEncoding.EncodeToString(raw))

	if !IsSecretBoxReady() {
		t.Fatalf("IsSecretBoxReady() = false con SECRETBOX_MASTER_KEY válida")
	}
	// Y el cifrado funciona sin pasos extra.
	if _, err := Encrypt("x"); err != nil {
		t.Fatalf("Encrypt tras readiness: %v", err)
	}
}

func TestIsSecretBoxReady_FalseWhenMissingOrInvalid(t *testing.T) {
	UnsafeResetSecretBoxForTests()
	os.Unsetenv("SECRETBOX_MASTER_KEY")
	if IsSecretBoxReady() {
		t.Fatalf("ready sin clave")
	}

	UnsafeResetSecretBoxForTests()
	os.Setenv("SECRETBOX_MASTER_KEY", base64.StdEncoding.EncodeToString([]byte("short")))
	if IsSecretBoxReady() {
		t.Fatalf("ready con clave de tamaño inválido")
	}
}
