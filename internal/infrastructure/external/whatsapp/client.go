package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/salescribe-team/salescribe/pkg/config"
	"github.com/salescribe-team/salescribe/pkg/validator"
)

// Client is a minimal client for the WhatsApp Cloud API. It covers the
// media and message endpoints the transcription flow needs.
type Client struct {
	accessToken     string
	phoneNumberID   string
	baseURL         string
	confirmTemplate string
	templateLang    string
	client          *http.Client
}

// NewClient creates a WhatsApp client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewClient(cfg *config.WhatsAppConfig) *Client {
	var token, phoneID, base, tmpl, lang string
	if cfg != nil {
		token = cfg.AccessToken
		phoneID = cfg.PhoneNumberID
		base = cfg.BaseURL
		tmpl = cfg.ConfirmTemplate
		lang = cfg.TemplateLang
	}
	if token == "" {
		token = os.Getenv("WHATSAPP_ACCESS_TOKEN")
	}
	if phoneID == "" {
		phoneID = os.Getenv("WHATSAPP_PHONE_NUMBER_ID")
	}
	if base == "" {
		base = os.Getenv("WHATSAPP_API_URL")
		if base == "" {
			base = "https://graph.facebook.com/v21.0"
		}
	}
	if lang == "" {
		lang = "en"
	}

	return &Client{
		accessToken:     token,
		phoneNumberID:   phoneID,
		baseURL:         base,
		confirmTemplate: tmpl,
		templateLang:    lang,
		client:          &http.Client{Timeout: 30 * time.Second},
	}
}

// mediaInfo is the response shape for GET /{media-id}
type mediaInfo struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
	ID       string `json:"id"`
}

// ResolveMediaURL looks up the short-lived download URL for a media id.
func (c *Client) ResolveMediaURL(ctx context.Context, mediaID string) (string, string, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", "", fmt.Errorf("whatsapp media lookup failed: status %d body=%s", resp.StatusCode, string(body))
	}

	var info mediaInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", "", fmt.Errorf("decode media response: %w", err)
	}
	if info.URL == "" {
		return "", "", fmt.Errorf("whatsapp media %s has no download url", mediaID)
	}
	return info.URL, info.MimeType, nil
}

// DownloadMedia fetches media bytes from a resolved URL. Download URLs
// expire quickly, so transient failures are retried with backoff.
func (c *Client) DownloadMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	var audio []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.accessToken)

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden {
			return backoff.Permanent(fmt.Errorf("whatsapp media download failed: status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("whatsapp media download failed: status %d", resp.StatusCode)
		}

		audio, err = io.ReadAll(resp.Body)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return audio, nil
}

// FetchMedia resolves and downloads a media id in one call.
func (c *Client) FetchMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	url, mimeType, err := c.ResolveMediaURL(ctx, mediaID)
	if err != nil {
		return nil, "", err
	}
	audio, err := c.DownloadMedia(ctx, url)
	if err != nil {
		return nil, "", err
	}
	return audio, mimeType, nil
}

type textMessage struct {
	MessagingProduct string            `json:"messaging_product"`
	To               string            `json:"to"`
	Type             string            `json:"type"`
	Text             map[string]string `json:"text"`
}

// SendText sends a plain text message to a phone number in E.164 format.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	if !validator.IsE164(to) {
		return fmt.Errorf("invalid recipient phone number: %s", to)
	}

	msg := textMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             map[string]string{"body": body},
	}
	return c.post(ctx, msg)
}

type templateMessage struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Template         templateContents `json:"template"`
}

type templateContents struct {
	Name       string              `json:"name"`
	Language   map[string]string   `json:"language"`
	Components []templateComponent `json:"components,omitempty"`
}

type templateComponent struct {
	Type       string              `json:"type"`
	Parameters []templateParameter `json:"parameters"`
}

type templateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTemplate sends the pre-approved confirmation template with the
// transcript text as its body parameter. Falls back to a plain text
// message when no template is configured or the send fails, so the
// seller always receives the transcript.
func (c *Client) SendTemplate(ctx context.Context, to, bodyParam string) error {
	if c.confirmTemplate == "" {
		return c.SendText(ctx, to, bodyParam)
	}
	if !validator.IsE164(to) {
		return fmt.Errorf("invalid recipient phone number: %s", to)
	}

	msg := templateMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
		Template: templateContents{
			Name:     c.confirmTemplate,
			Language: map[string]string{"code": c.templateLang},
			Components: []templateComponent{
				{
					Type: "body",
					Parameters: []templateParameter{
						{Type: "text", Text: bodyParam},
					},
				},
			},
		},
	}
	if err := c.post(ctx, msg); err != nil {
		return c.SendText(ctx, to, bodyParam)
	}
	return nil
}

// Button is one interactive reply button.
type Button struct {
	ID    string
	Title string
}

type interactiveMessage struct {
	MessagingProduct string             `json:"messaging_product"`
	To               string             `json:"to"`
	Type             string             `json:"type"`
	Interactive      interactivePayload `json:"interactive"`
}

type interactivePayload struct {
	Type   string            `json:"type"`
	Body   map[string]string `json:"body"`
	Action interactiveAction `json:"action"`
}

type interactiveAction struct {
	Buttons []interactiveButton `json:"buttons"`
}

type interactiveButton struct {
	Type  string      `json:"type"`
	Reply buttonReply `json:"reply"`
}

type buttonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SendInteractive sends a message with reply buttons. Button ids carry
// the transcript id so replies can be routed without guessing.
func (c *Client) SendInteractive(ctx context.Context, to, body string, buttons []Button) error {
	if !validator.IsE164(to) {
		return fmt.Errorf("invalid recipient phone number: %s", to)
	}

	ib := make([]interactiveButton, 0, len(buttons))
	for _, b := range buttons {
		ib = append(ib, interactiveButton{
			Type:  "reply",
			Reply: buttonReply{ID: b.ID, Title: b.Title},
		})
	}

	msg := interactiveMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "interactive",
		Interactive: interactivePayload{
			Type:   "button",
			Body:   map[string]string{"text": body},
			Action: interactiveAction{Buttons: ib},
		},
	}
	return c.post(ctx, msg)
}

func (c *Client) post(ctx context.Context, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp send failed: status %d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
