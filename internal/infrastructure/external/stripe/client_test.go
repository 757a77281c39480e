package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/salescribe-team/salescribe/pkg/config"
	"github.com/salescribe-team/salescribe/pkg/signature"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.StripeConfig{SecretKey: "sk_test_123", BaseURL: baseURL})
}

func TestCreateCheckoutSession(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("mode") != "subscription" {
			t.Fatalf("expected subscription mode got %s", r.PostForm.Get("mode"))
		}
		if r.PostForm.Get("line_items[0][price]") != "price_starter" {
			t.Fatalf("unexpected licensed price %s", r.PostForm.Get("line_items[0][price]"))
		}
		if r.PostForm.Get("line_items[1][quantity]") != "" {
			t.Fatal("metered line must not carry a quantity")
		}
		if r.PostForm.Get("subscription_data[metadata][user_id]") != "user-1" {
			t.Fatalf("missing user metadata")
		}
		json.NewEncoder(w).Encode(CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/cs_1"})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	session, err := client.CreateCheckoutSession(context.Background(), CheckoutParams{
		CustomerEmail: "manager@example.com",
		PriceID:       "price_starter",
		UsagePriceID:  "price_starter_usage",
		SuccessURL:    "https://app.example.com/ok",
		CancelURL:     "https://app.example.com/cancel",
		Metadata:      map[string]string{"user_id": "user-1"},
	})
	if err != nil {
		t.Fatalf("CreateCheckoutSession failed: %v", err)
	}
	if session.URL == "" {
		t.Fatal("expected checkout url")
	}
}

func TestFindCustomerByEmail_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []interface{}{}})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	customer, err := client.FindCustomerByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("FindCustomerByEmail failed: %v", err)
	}
	if customer != nil {
		t.Fatalf("expected nil customer got %+v", customer)
	}
}

func TestReportUsage_SendsIdempotencyKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/subscription_items/si_1/usage_records" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Idempotency-Key") != "evt_123" {
			t.Fatalf("missing idempotency key")
		}
		r.ParseForm()
		if r.PostForm.Get("quantity") != "1" {
			t.Fatalf("unexpected quantity %s", r.PostForm.Get("quantity"))
		}
		if r.PostForm.Get("action") != "increment" {
			t.Fatalf("unexpected action %s", r.PostForm.Get("action"))
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"id":"mbur_1"}`)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	if err := client.ReportUsage(context.Background(), "si_1", 1, "evt_123"); err != nil {
		t.Fatalf("ReportUsage failed: %v", err)
	}
}

func TestCancelSubscription_InvoicesAndProrates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/v1/subscriptions/sub_1" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		// ParseForm ignores the body for DELETE requests, so read it directly.
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		if form.Get("invoice_now") != "true" {
			t.Fatalf("expected invoice_now=true got %q", form.Get("invoice_now"))
		}
		if form.Get("prorate") != "true" {
			t.Fatalf("expected prorate=true got %q", form.Get("prorate"))
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"id":"sub_1","status":"canceled"}`)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	sub, err := client.CancelSubscription(context.Background(), "sub_1")
	if err != nil {
		t.Fatalf("CancelSubscription failed: %v", err)
	}
	if sub.Status != "canceled" {
		t.Fatalf("unexpected status %s", sub.Status)
	}
}

func TestVerifyWebhook(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"invoice.paid","data":{"object":{}}}`)
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := signature.Sign(secret, []byte(ts+"."+string(payload)))
	header := "t=" + ts + ",v1=" + sig

	event, err := VerifyWebhook(payload, header, secret)
	if err != nil {
		t.Fatalf("VerifyWebhook failed: %v", err)
	}
	if event.Type != "invoice.paid" {
		t.Fatalf("unexpected event type %s", event.Type)
	}
}

func TestVerifyWebhook_RejectsBadSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	header := "t=" + ts + ",v1=deadbeef"

	if _, err := VerifyWebhook(payload, header, "whsec_test"); err == nil {
		t.Fatal("expected signature mismatch error")
	}
}

func TestVerifyWebhook_RejectsStaleTimestamp(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1"}`)
	ts := strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10)
	sig := signature.Sign(secret, []byte(ts+"."+string(payload)))
	header := "t=" + ts + ",v1=" + sig

	if _, err := VerifyWebhook(payload, header, secret); err == nil {
		t.Fatal("expected stale timestamp rejection")
	}
}
