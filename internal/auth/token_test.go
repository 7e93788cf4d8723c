package auth

import (
	"testing"

	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: 42, Username: "Test_master", Role: models.RoleMaster}

	tok, err := GenerateToken("secret", user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseToken("secret", tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	id, _ := claims.UserID()
	if id != 42 || claims.Role != models.RoleMaster || claims.Username != "Test_master" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tok, err := GenerateToken("secret", &models.User{ID: 1, Role: models.RoleCustomer})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken("other", tok); err == nil {
		t.Fatal("expected error for wrong secret")
	}
	if _, err := ParseToken("secret", "garbage"); err == nil {
		t.Fatal("expected error for garbage token")
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("test_pass1234")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "test_pass1234") {
		t.Fatal("expected password to match")
	}
	if CheckPassword(hash, "nope") {
		t.Fatal("expected mismatch")
	}
}
