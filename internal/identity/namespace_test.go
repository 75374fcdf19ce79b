package identity

import "testing"

func TestNamespaceEmail_Deterministic(t *testing.T) {
	a := NamespaceEmail("a@ex.com", "t1")
	b := NamespaceEmail("a@ex.com", "t1")
	if a != b {
		t.Fatalf("not deterministic: %q vs %q", a, b)
	}
	if a != "a+t1@ex.com" {
		t.Fatalf("got %q want %q", a, "a+t1@ex.com")
	}
}

func TestNamespaceEmail_InjectiveAcrossTenants(t *testing.T) {
	a := NamespaceEmail("a@ex.com", "tenant-a")
	b := NamespaceEmail("a@ex.com", "tenant-b")
	if a == b {
		t.Fatalf("same external email under two tenants must not collide: %q", a)
	}
}

func TestNamespaceEmail_OnlyFirstAt(t *testing.T) {
	// Solo se reescribe el primer '@'; el resto del local-part queda igual.
	got := NamespaceEmail("weird@name@ex.com", "t1")
	if got != "weird+t1@name@ex.com" {
		t.Fatalf("got %q", got)
	}
}

func TestNamespaceEmail_NoAtPassthrough(t *testing.T) {
	if got := NamespaceEmail("sin-arroba", "t1"); got != "sin-arroba" {
		t.Fatalf("got %q", got)
	}
}
