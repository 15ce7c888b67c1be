package services

import (
	"testing"
	"time"

	"github.com/Simhateja17/whatsapp/models"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	user := models.User{ID: "u-1", Username: "ann", Email: "ann@example.com"}

	token, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "ann@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, err := NewTokenService("secret-a", time.Hour).GenerateToken(models.User{ID: "u-1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := NewTokenService("secret-b", time.Hour).ParseToken(token); err == nil {
		t.Fatalf("token signed with another secret must not parse")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)
	token, err := svc.GenerateToken(models.User{ID: "u-1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := svc.ParseToken(token); err == nil {
		t.Fatalf("expired token must not parse")
	}
}
