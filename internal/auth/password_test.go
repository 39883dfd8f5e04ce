package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter2hunter2" {
		t.Fatal("hash equals plaintext")
	}

	if err := ComparePassword(hash, "hunter2hunter2"); err != nil {
		t.Fatalf("compare with correct password: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatal("compare accepted wrong password")
	}
}
