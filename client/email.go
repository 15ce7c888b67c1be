package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const emailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// EmailConfig is the third-party mail relay's opaque credentials.
type EmailConfig struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
}

func EmailConfigFromEnv() EmailConfig {
	return EmailConfig{
		ServiceID:  os.Getenv("EMAILJS_SERVICE_ID"),
		TemplateID: os.Getenv("EMAILJS_TEMPLATE_ID"),
		PublicKey:  os.Getenv("EMAILJS_PUBLIC_KEY"),
	}
}

// EmailSender relays a one-time code to the user's inbox through EmailJS.
// The code is visible to this client and to the relay; that is the trust
// model this system ships with, not something to paper over here.
type EmailSender struct {
	cfg      EmailConfig
	http     *http.Client
	endpoint string
}

func NewEmailSender(cfg EmailConfig) *EmailSender {
	return &EmailSender{
		cfg:      cfg,
		http:     &http.Client{Timeout: 10 * time.Second},
		endpoint: emailJSEndpoint,
	}
}

func (e *EmailSender) SendOTP(ctx context.Context, name, toEmail, otp string) error {
	payload := map[string]interface{}{
		"service_id":  e.cfg.ServiceID,
		"template_id": e.cfg.TemplateID,
		"user_id":     e.cfg.PublicKey,
		"template_params": map[string]string{
			"name":     name,
			"otp":      otp,
			"to_email": toEmail,
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: mail relay returned %s", ErrNetwork, resp.Status)
	}
	return nil
}
