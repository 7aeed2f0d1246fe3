package authutil

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		pw   string
		want error
	}{
		{"secret", nil},
		{"abcdef1", nil},
		{"", ErrPasswordTooShort},
		{"abcde", ErrPasswordTooShort},
		{strings.Repeat("a", 72), nil},
		{strings.Repeat("a", 73), ErrPasswordTooLong},
	}
	for _, tt := range tests {
		if got := ValidatePassword(tt.pw); got != tt.want {
			t.Errorf("ValidatePassword(len %d) = %v, want %v", len(tt.pw), got, tt.want)
		}
	}
}

func TestHashPassword_DifferentHashesForSamePassword(t *testing.T) {
	h1, err := HashPassword("SecurePassword123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	h2, err := HashPassword("SecurePassword123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if h1 == h2 {
		t.Error("expected different hashes for same password (random salt)")
	}
	if !strings.HasPrefix(h1, "$2") {
		t.Errorf("expected bcrypt hash, got %q", h1)
	}
}

func TestHashPassword_Verifies(t *testing.T) {
	hash, err := HashPassword("SecurePassword123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("SecurePassword123")) != nil {
		t.Error("expected hash to verify against the original password")
	}
	if cost, _ := bcrypt.Cost([]byte(hash)); cost != BcryptCost {
		t.Errorf("cost = %d, want %d", cost, BcryptCost)
	}
}

func TestNewResetToken(t *testing.T) {
	token, digest, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	if len(token) != 40 {
		t.Errorf("token length = %d, want 40", len(token))
	}
	if digest == token {
		t.Error("digest must differ from token")
	}
	if HashResetToken(token) != digest {
		t.Error("HashResetToken must reproduce the stored digest")
	}

	other, _, _ := NewResetToken()
	if other == token {
		t.Error("tokens should be random")
	}
}
