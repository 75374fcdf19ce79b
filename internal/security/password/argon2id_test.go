package password

import "testing"

func TestHashVerify_RoundTrip(t *testing.T) {
	phc, err := Hash(Default, "a+tenant@ex.com")
	if err != nil {
		t.Fatalf("Hash err: %v", err)
	}
	if !Verify("a+tenant@ex.com", phc) {
		t.Fatalf("Verify should accept the original password")
	}
	if Verify("otra-cosa", phc) {
		t.Fatalf("Verify should reject a different password")
	}
}

func TestVerify_MalformedPHC(t *testing.T) {
	bad := []string{
		"",
		"$argon2id$v=19$m=65536,t=3,p=1$salt", // faltan secciones
		"$bcrypt$v=19$m=1,t=1,p=1$aaaa$bbbb",
		"$argon2id$v=18$m=65536,t=3,p=1$aaaa$bbbb",
		"$argon2id$v=19$m=0,t=3,p=1$aaaa$bbbb",
	}
	for _, phc := range bad {
		if Verify("x", phc) {
			t.Fatalf("Verify should reject malformed phc: %q", phc)
		}
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	if _, err := Hash(Default, ""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}
