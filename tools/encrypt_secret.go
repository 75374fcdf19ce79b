package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dropDatabas3/gatejohn/internal/security/secretbox"
)

// Cifra un valor con SECRETBOX_MASTER_KEY para seedear
// tenant_config.integration_sso_secret_enc a mano (sin pasar por el
// Admin API).
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run encrypt_secret.go <plaintext_secret>")
	}

	encrypted, err := secretbox.Encrypt(os.Args[1])
	if err != nil {
		log.Fatalf("Encryption failed: %v", err)
	}

	fmt.Printf("Encrypted: %s\n", encrypted)
}
