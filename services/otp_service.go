package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidOTP is returned when the submitted code does not match the
// outstanding one, has expired, or was already consumed or superseded.
var ErrInvalidOTP = errors.New("invalid or expired code")

// OTPService generates and verifies one-time sign-in codes. Only a bcrypt
// hash of the code is stored; the plaintext goes back to the caller, who is
// responsible for delivering it to the user's email.
type OTPService struct {
	store OTPStore
	ttl   time.Duration
}

func NewOTPService(store OTPStore, ttl time.Duration) *OTPService {
	return &OTPService{store: store, ttl: ttl}
}

// Issue creates a fresh 6-digit code for the email and stores its hash.
// Any code previously outstanding for the same email is superseded: the
// store keeps one hash per email, so the old code can no longer verify.
func (s *OTPService) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}
	if err := s.store.Put(ctx, email, string(hash), s.ttl); err != nil {
		return "", fmt.Errorf("failed to store code: %w", err)
	}
	return code, nil
}

// Verify checks the code against the outstanding hash and consumes it on
// success. A code verifies at most once.
func (s *OTPService) Verify(ctx context.Context, email, code string) error {
	hash, err := s.store.Get(ctx, email)
	if errors.Is(err, ErrOTPNotFound) {
		return ErrInvalidOTP
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return ErrInvalidOTP
	}
	return s.store.Delete(ctx, email)
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
