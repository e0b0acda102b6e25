package security

import (
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	if hash == "correct horse battery staple" {
		t.Fatalf("hash must not equal the plaintext")
	}

	// bcrypt hashes self-describe their cost
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected a bcrypt hash, got %q", hash)
	}

	if err := CheckPassword(hash, "correct horse battery staple"); err != nil {
		t.Fatalf("CheckPassword rejected the right password: %v", err)
	}

	if err := CheckPassword(hash, "wrong password"); err == nil {
		t.Fatalf("CheckPassword accepted the wrong password")
	}
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	h1, err := HashPassword("tajne123456")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	h2, err := HashPassword("tajne123456")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	if h1 == h2 {
		t.Fatalf("two hashes of the same password must differ")
	}
}
