package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/salescribe-team/salescribe/pkg/config"
)

// Client is a minimal client for the Stripe API. Stripe accepts
// form-encoded requests and returns JSON, so no SDK is needed for the
// handful of endpoints billing uses.
type Client struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewClient creates a Stripe client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewClient(cfg *config.StripeConfig) *Client {
	var key, base string
	if cfg != nil {
		key = cfg.SecretKey
		base = cfg.BaseURL
	}
	if key == "" {
		key = os.Getenv("STRIPE_SECRET_KEY")
	}
	if base == "" {
		base = os.Getenv("STRIPE_API_URL")
		if base == "" {
			base = "https://api.stripe.com"
		}
	}

	return &Client{
		secretKey: key,
		baseURL:   base,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// CheckoutSession is the subset of checkout session fields billing reads.
type CheckoutSession struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Customer string `json:"customer"`
	Status   string `json:"status"`
}

// Customer is a minimal customer shape.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SubscriptionItem is one line on a subscription. Metadata carries the
// usage_type tag that marks the metered line.
type SubscriptionItem struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
	Price    struct {
		ID        string `json:"id"`
		Recurring struct {
			UsageType string `json:"usage_type"`
			Interval  string `json:"interval"`
		} `json:"recurring"`
	} `json:"price"`
}

// Subscription is the subset of subscription fields billing reads.
type Subscription struct {
	ID                 string `json:"id"`
	Customer           string `json:"customer"`
	Status             string `json:"status"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	CancelAtPeriodEnd  bool   `json:"cancel_at_period_end"`
	Metadata           map[string]string `json:"metadata"`
	Items              struct {
		Data []SubscriptionItem `json:"data"`
	} `json:"items"`
}

type listResponse[T any] struct {
	Data    []T  `json:"data"`
	HasMore bool `json:"has_more"`
}

// CheckoutParams describes a subscription checkout session.
type CheckoutParams struct {
	CustomerEmail string
	PriceID       string
	UsagePriceID  string
	SuccessURL    string
	CancelURL     string
	// Metadata is copied onto the created subscription so webhook
	// events can be tied back to a platform user.
	Metadata map[string]string
}

// CreateCheckoutSession creates a hosted checkout session in
// subscription mode with a licensed line and a metered usage line.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("customer_email", p.CustomerEmail)
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	form.Set("line_items[0][price]", p.PriceID)
	form.Set("line_items[0][quantity]", "1")
	if p.UsagePriceID != "" {
		// Metered prices must not carry a quantity.
		form.Set("line_items[1][price]", p.UsagePriceID)
	}
	for k, v := range p.Metadata {
		form.Set("subscription_data[metadata]["+k+"]", v)
	}

	var session CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindCustomerByEmail returns the first customer with the given email,
// or nil when none exists.
func (c *Client) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("limit", "1")

	var list listResponse[Customer]
	if err := c.do(ctx, http.MethodGet, "/v1/customers?"+form.Encode(), nil, &list); err != nil {
		return nil, err
	}
	if len(list.Data) == 0 {
		return nil, nil
	}
	return &list.Data[0], nil
}

// ListSubscriptions returns all subscriptions for a customer, including
// non-active ones.
func (c *Client) ListSubscriptions(ctx context.Context, customerID string) ([]Subscription, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("status", "all")
	form.Set("limit", "100")

	var list listResponse[Subscription]
	if err := c.do(ctx, http.MethodGet, "/v1/subscriptions?"+form.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// GetSubscription fetches one subscription with its items expanded.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	var sub Subscription
	if err := c.do(ctx, http.MethodGet, "/v1/subscriptions/"+subscriptionID, nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// CancelSubscription cancels a subscription immediately, invoicing any
// pending metered usage with proration applied.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	form := url.Values{}
	form.Set("invoice_now", "true")
	form.Set("prorate", "true")

	var sub Subscription
	if err := c.do(ctx, http.MethodDelete, "/v1/subscriptions/"+subscriptionID, form, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ReportUsage records metered usage against a subscription item. The
// idempotency key makes vendor-side retries safe.
func (c *Client) ReportUsage(ctx context.Context, itemID string, quantity int64, idempotencyKey string) error {
	form := url.Values{}
	form.Set("quantity", strconv.FormatInt(quantity, 10))
	form.Set("timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	form.Set("action", "increment")

	path := "/v1/subscription_items/" + itemID + "/usage_records"
	req, err := c.newRequest(ctx, http.MethodPost, path, form)
	if err != nil {
		return err
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	return c.send(req, nil)
}

// CreateInvoiceItem adds a one-off charge to the customer's next
// invoice. Used when usage cannot be metered on a subscription item.
func (c *Client) CreateInvoiceItem(ctx context.Context, customerID string, amountCents int64, currency, description string) error {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", currency)
	form.Set("description", description)
	return c.do(ctx, http.MethodPost, "/v1/invoiceitems", form, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, form url.Values) (*http.Request, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, form)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("stripe request failed: status %d body=%s", resp.StatusCode, string(body))
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode stripe response: %w", err)
	}
	return nil
}
