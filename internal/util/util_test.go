package util

import (
	"strings"
	"testing"
)

// fastParams keeps the KDF cheap in tests.
var fastParams = Argon2idParams{Time: 1, MemoryKiB: 8 * 1024, Parallelism: 1, SaltLen: 16, KeyLen: 32}

func TestHashSecret(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		encoded, err := HashSecret("hunter2-hunter2", fastParams)
		if err != nil {
			t.Fatalf("HashSecret failed: %v", err)
		}
		if !strings.HasPrefix(encoded, "$argon2id$") {
			t.Errorf("expected PHC prefix, got %q", encoded)
		}
		ok, err := VerifySecret("hunter2-hunter2", encoded)
		if err != nil {
			t.Fatalf("VerifySecret failed: %v", err)
		}
		if !ok {
			t.Error("expected matching secret to verify")
		}
	})

	t.Run("WrongSecret", func(t *testing.T) {
		encoded, err := HashSecret("correct horse", fastParams)
		if err != nil {
			t.Fatalf("HashSecret failed: %v", err)
		}
		ok, err := VerifySecret("battery staple", encoded)
		if err != nil {
			t.Fatalf("VerifySecret failed: %v", err)
		}
		if ok {
			t.Error("expected mismatching secret to fail")
		}
	})

	t.Run("DistinctSalts", func(t *testing.T) {
		h1, err := HashSecret("same input", fastParams)
		if err != nil {
			t.Fatal(err)
		}
		h2, err := HashSecret("same input", fastParams)
		if err != nil {
			t.Fatal(err)
		}
		if h1 == h2 {
			t.Error("expected each hash to use a fresh salt")
		}
	})

	t.Run("MalformedHash", func(t *testing.T) {
		if _, err := VerifySecret("x", "not-a-phc-string"); err == nil {
			t.Error("expected error for malformed hash")
		}
	})
}

func TestRandomDigits(t *testing.T) {
	code, err := RandomDigits(6)
	if err != nil {
		t.Fatalf("RandomDigits failed: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6 digits, got %q", code)
	}
	for _, ch := range code {
		if ch < '0' || ch > '9' {
			t.Fatalf("non-digit %q in code %q", ch, code)
		}
	}
}

func TestRandomToken(t *testing.T) {
	tok, err := RandomToken(32)
	if err != nil {
		t.Fatalf("RandomToken failed: %v", err)
	}
	if strings.ContainsAny(tok, ".=+/") {
		t.Errorf("token %q contains characters outside the URL-safe alphabet", tok)
	}
	tok2, err := RandomToken(32)
	if err != nil {
		t.Fatal(err)
	}
	if tok == tok2 {
		t.Error("tokens should be unique")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ada@Example.COM "); got != "ada@example.com" {
		t.Errorf("got %q", got)
	}
}
