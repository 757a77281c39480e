package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/salescribe-team/salescribe/pkg/config"
)

// Client sends transactional email through the Resend API. Billing uses
// it for cancellation confirmations and payment failure notices.
type Client struct {
	apiKey  string
	baseURL string
	from    string
	client  *http.Client
}

// NewClient creates an email client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewClient(cfg *config.EmailConfig) *Client {
	var key, base, from string
	if cfg != nil {
		key = cfg.APIKey
		base = cfg.BaseURL
		from = cfg.From
	}
	if key == "" {
		key = os.Getenv("RESEND_API_KEY")
	}
	if base == "" {
		base = os.Getenv("RESEND_API_URL")
		if base == "" {
			base = "https://api.resend.com"
		}
	}
	if from == "" {
		from = os.Getenv("EMAIL_FROM_ADDRESS")
		if from == "" {
			from = "SaleScribe <billing@salescribe.app>"
		}
	}

	return &Client{
		apiKey:  key,
		baseURL: base,
		from:    from,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send delivers one email. Callers treat failures as non-fatal.
func (c *Client) Send(ctx context.Context, to, subject, html string) error {
	body := sendRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email send failed: status %d body=%s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SendCancellationNotice confirms that subscriptions were cancelled.
func (c *Client) SendCancellationNotice(ctx context.Context, to string, cancelled, total int) error {
	subject := "Your SaleScribe subscription has been cancelled"
	html := fmt.Sprintf(
		"<p>We processed your cancellation request: %d of %d subscriptions cancelled.</p>"+
			"<p>Your team keeps access until the end of the current billing period.</p>",
		cancelled, total)
	return c.Send(ctx, to, subject, html)
}

// SendPaymentFailureNotice warns the billing owner that a payment failed.
func (c *Client) SendPaymentFailureNotice(ctx context.Context, to string) error {
	subject := "Payment failed for your SaleScribe subscription"
	html := "<p>Your latest payment could not be processed. Please update your payment method " +
		"to keep voice report transcription active for your team.</p>"
	return c.Send(ctx, to, subject, html)
}
