package services

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	password := "Secure#123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if strings.Contains(hash, password) {
		t.Fatal("hash contains the raw password")
	}
	if parts := strings.Split(hash, "$"); len(parts) != 2 {
		t.Fatalf("hash format = %q, want salt$hash", hash)
	}

	ok, err := VerifyPassword(hash, password)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Error("correct password rejected")
	}

	ok, err = VerifyPassword(hash, "Wrong#123")
	if err != nil {
		t.Fatalf("VerifyPassword wrong password: %v", err)
	}
	if ok {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	first, err := HashPassword("Secure#123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("Secure#123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password are identical; salt is not random")
	}
}

func TestHashPasswordRejectsWeakPasswords(t *testing.T) {
	for _, weak := range []string{"", "short", "longenoughbutplain", "nospecial1"} {
		if _, err := HashPassword(weak); err == nil {
			t.Errorf("HashPassword(%q) accepted a weak password", weak)
		}
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("not-a-valid-hash", "Secure#123"); err == nil {
		t.Error("malformed stored hash accepted")
	}
}
