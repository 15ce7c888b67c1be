package client

import "errors"

// Failure taxonomy. Network and auth failures are sentinels to match with
// errors.Is; validation failures carry the server's message verbatim and
// are matched with errors.As.
var (
	// ErrNetwork covers transport failures and server errors. The user
	// sees a generic message; nothing is retried automatically.
	ErrNetwork = errors.New("network failure")

	// ErrAuth means the token is missing, invalid, or expired. Callers
	// redirect to sign-in without surfacing an error.
	ErrAuth = errors.New("authentication required")
)

// ValidationError is a 4xx rejection; Message is shown to the user as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
