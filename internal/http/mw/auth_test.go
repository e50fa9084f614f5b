package mw

import (
	"testing"
	"time"
)

var testSecret = []byte("test-secret-key-for-unit-tests!!")

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-1", "user@example.com", false, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("expected email to round-trip, got %s", claims.Email)
	}
	if claims.IsAdmin {
		t.Error("expected non-admin claims")
	}
}

func TestAdminClaimRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, "admin-1", "admin@example.com", true, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if !claims.IsAdmin {
		t.Error("expected admin claims")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-1", "", false, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := ValidateToken([]byte("a-different-secret-entirely!!!!!"), token); err == nil {
		t.Error("expected validation to fail with wrong secret")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-1", "", false, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := ValidateToken(testSecret, token); err == nil {
		t.Error("expected validation to fail for expired token")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := ValidateToken(testSecret, "not.a.token"); err == nil {
		t.Error("expected validation to fail for malformed token")
	}
}
