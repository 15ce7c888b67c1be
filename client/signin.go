package client

import (
	"context"
	"sync"
)

type SignInState int

const (
	StateUnauthenticated SignInState = iota
	StateOtpRequested
	StateAuthenticated
)

func (s SignInState) String() string {
	switch s {
	case StateOtpRequested:
		return "otp-requested"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// SignIn drives the OTP sign-in flow:
// Unauthenticated -> OtpRequested -> Authenticated, and back to
// Unauthenticated whenever the token is absent, invalid, or cleared.
type SignIn struct {
	api    *Client
	tokens *TokenStore
	mail   *EmailSender // nil when the caller delivers the code itself

	mu           sync.Mutex
	state        SignInState
	identity     *Identity
	pendingEmail string
}

// NewSignIn restores the session from the token store: a valid persisted
// token starts Authenticated, anything else starts Unauthenticated.
func NewSignIn(api *Client, tokens *TokenStore, mail *EmailSender) *SignIn {
	s := &SignIn{api: api, tokens: tokens, mail: mail}
	token, identity, err := tokens.Load()
	if err == nil && token != "" {
		s.state = StateAuthenticated
		s.identity = identity
		api.SetToken(token)
	}
	return s
}

// RequestOTP asks the server for a fresh code and relays it to the user's
// inbox. Calling it again while a code is pending supersedes the old one:
// the server keeps a single outstanding code per email, so a later verify
// with the earlier code fails.
func (s *SignIn) RequestOTP(ctx context.Context, name, email string) error {
	issue, err := s.api.RequestOTP(ctx, name, email)
	if err != nil {
		return err
	}
	if s.mail != nil {
		if err := s.mail.SendOTP(ctx, issue.Name, issue.Email, issue.OTP); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.state = StateOtpRequested
	s.pendingEmail = email
	s.mu.Unlock()
	return nil
}

// Verify submits the code for the pending email. On success the token is
// persisted and the identity derived from it.
func (s *SignIn) Verify(ctx context.Context, otp string) error {
	s.mu.Lock()
	if s.state != StateOtpRequested {
		s.mu.Unlock()
		return &ValidationError{Message: "no code has been requested"}
	}
	email := s.pendingEmail
	s.mu.Unlock()

	token, err := s.api.VerifyOTP(ctx, email, otp)
	if err != nil {
		return err
	}
	identity, err := DecodeIdentity(token)
	if err != nil {
		return ErrAuth
	}
	if err := s.tokens.Save(token); err != nil {
		return err
	}
	s.api.SetToken(token)

	s.mu.Lock()
	s.state = StateAuthenticated
	s.identity = identity
	s.pendingEmail = ""
	s.mu.Unlock()
	return nil
}

// SignOut clears the persisted token and resets to Unauthenticated.
func (s *SignIn) SignOut() error {
	err := s.tokens.Clear()
	s.api.SetToken("")

	s.mu.Lock()
	s.state = StateUnauthenticated
	s.identity = nil
	s.pendingEmail = ""
	s.mu.Unlock()
	return err
}

func (s *SignIn) State() SignInState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the signed-in identity, or nil.
func (s *SignIn) Identity() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}
