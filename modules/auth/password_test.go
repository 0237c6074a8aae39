package auth

import (
	"strings"
	"testing"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher()
	password := "my-secure-password-123"

	hash, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if hash == password {
		t.Error("Hash() returned plaintext password")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() = %v, want bcrypt format", hash)
	}

	if !hasher.Verify(password, hash) {
		t.Error("Verify() failed for correct password")
	}
	if hasher.Verify("wrong-password", hash) {
		t.Error("Verify() succeeded for wrong password")
	}
}

func TestPasswordHasher_DifferentHashesForSamePassword(t *testing.T) {
	hasher := NewPasswordHasher()
	password := "same-password"

	hash1, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	hash2, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// bcrypt salts each hash
	if hash1 == hash2 {
		t.Error("expected different hashes for the same password")
	}
}

func TestPasswordHasher_CostConfiguration(t *testing.T) {
	if got := NewPasswordHasher().Cost(); got != DefaultBcryptCost {
		t.Errorf("default Cost() = %d, want %d", got, DefaultBcryptCost)
	}
	if got := NewPasswordHasherWithCost(10).Cost(); got != 10 {
		t.Errorf("Cost() = %d, want 10", got)
	}

	// Out-of-range costs fall back to the default
	for _, cost := range []int{-1, 0, 100} {
		if got := NewPasswordHasherWithCost(cost).Cost(); got != DefaultBcryptCost {
			t.Errorf("Cost() for %d = %d, want %d", cost, got, DefaultBcryptCost)
		}
	}
}

func TestPasswordHasher_VerifyInvalidHash(t *testing.T) {
	hasher := NewPasswordHasher()

	if hasher.Verify("password", "not-a-bcrypt-hash") {
		t.Error("Verify() succeeded for malformed hash")
	}
	if hasher.Verify("password", "") {
		t.Error("Verify() succeeded for empty hash")
	}
}
