package client_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Simhateja17/whatsapp/client"
)

func signedTestToken(t *testing.T, userID, email string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"email":  email,
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestTokenStoreRoundTrip(t *testing.T) {
	store := client.NewTokenStore(filepath.Join(t.TempDir(), "token"))

	if err := store.Save(signedTestToken(t, "u-9", "nina@example.com")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	token, identity, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}
	if identity.UserID != "u-9" || identity.Email != "nina@example.com" {
		t.Fatalf("identity = %+v", identity)
	}
}

func TestTokenStoreMissingFileMeansSignedOut(t *testing.T) {
	store := client.NewTokenStore(filepath.Join(t.TempDir(), "token"))
	token, identity, err := store.Load()
	if err != nil || token != "" || identity != nil {
		t.Fatalf("Load of missing file = (%q, %+v, %v), want empty", token, identity, err)
	}
}

func TestTokenStoreUndecodableTokenClearsAndFailsAuth(t *testing.T) {
	store := client.NewTokenStore(filepath.Join(t.TempDir(), "token"))
	if err := store.Save("not-a-jwt"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, _, err := store.Load()
	if !errors.Is(err, client.ErrAuth) {
		t.Fatalf("got %v, want ErrAuth", err)
	}

	// The broken token was cleared; the next load starts clean.
	token, identity, err := store.Load()
	if err != nil || token != "" || identity != nil {
		t.Fatalf("second Load = (%q, %+v, %v), want empty", token, identity, err)
	}
}
