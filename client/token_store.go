package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore persists the bearer token in one file at a fixed path, the
// Go analogue of the browser's single localStorage key.
type TokenStore struct {
	path string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// DefaultTokenStore places the token under the user's home directory.
func DefaultTokenStore() (*TokenStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return NewTokenStore(filepath.Join(home, ".whatsapp", "token")), nil
}

func (s *TokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

// Load reads the persisted token and decodes the identity from it. A
// missing file means signed out. An undecodable token is treated as an
// auth failure and the file is cleared, so the next load starts clean.
func (s *TokenStore) Load() (string, *Identity, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to read token: %w", err)
	}
	token := string(raw)
	identity, err := DecodeIdentity(token)
	if err != nil {
		s.Clear()
		return "", nil, ErrAuth
	}
	return token, identity, nil
}

func (s *TokenStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// DecodeIdentity extracts {userId, email} from the token without verifying
// the signature. Verification is the server's job; the client only derives
// who it is acting as.
func DecodeIdentity(token string) (*Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	userID, _ := claims["userId"].(string)
	email, _ := claims["email"].(string)
	if userID == "" {
		return nil, errors.New("token has no userId claim")
	}
	return &Identity{UserID: userID, Email: email}, nil
}
