// Package client is the Go client for the chat service: REST calls, the
// live socket, and the client-side state machines (presence reduction,
// thread assembly, debounced search, and the sign-in flow).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Client calls the REST API. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken sets the bearer token sent with subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// OTPIssue is the response of request-otp. The plaintext code transits
// through the client to the mail relay; see EmailSender.
type OTPIssue struct {
	Name  string `json:"name"`
	OTP   string `json:"otp"`
	Email string `json:"email"`
}

func (c *Client) RequestOTP(ctx context.Context, name, email string) (*OTPIssue, error) {
	var out OTPIssue
	err := c.do(ctx, http.MethodPost, "/api/auth/request-otp",
		map[string]string{"name": name, "email": email}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/verify-otp",
		map[string]string{"email": email, "otp": otp}, &out)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) Conversation(ctx context.Context, id string) (*Conversation, error) {
	var out Conversation
	if err := c.do(ctx, http.MethodGet, "/api/conversations/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	var out []Message
	if err := c.do(ctx, http.MethodGet, "/api/conversations/"+conversationID+"/messages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ConversationsForUser(ctx context.Context, userID string) ([]Conversation, error) {
	var out []Conversation
	if err := c.do(ctx, http.MethodGet, "/api/conversations/user/"+userID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchUsers(ctx context.Context, query, currentUserID string) ([]User, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("currentUserId", currentUserID)
	var out []User
	if err := c.do(ctx, http.MethodGet, "/api/users/search?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) InitiateConversation(ctx context.Context, userID1, userID2 string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/api/conversations/initiate",
		map[string]string{"userId1": userID1, "userId2": userID2}, &out)
	if err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrAuth
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var body struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Error != "" {
			return &ValidationError{Message: body.Error}
		}
		return &ValidationError{Message: resp.Status}
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: server returned %s", ErrNetwork, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
