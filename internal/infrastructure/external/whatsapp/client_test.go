package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/salescribe-team/salescribe/pkg/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.WhatsAppConfig{
		AccessToken:   "test-token",
		PhoneNumberID: "12345",
		BaseURL:       baseURL,
	})
}

func TestSendText_Success(t *testing.T) {
	var got map[string]interface{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Fatalf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"messaging_product": "whatsapp"})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	if err := client.SendText(context.Background(), "+14155550100", "hello"); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	if got["to"] != "+14155550100" {
		t.Fatalf("unexpected recipient %v", got["to"])
	}
	if got["type"] != "text" {
		t.Fatalf("unexpected type %v", got["type"])
	}
}

func TestSendText_RejectsInvalidNumber(t *testing.T) {
	client := newTestClient("http://localhost:0")
	if err := client.SendText(context.Background(), "415-555-0100", "hello"); err == nil {
		t.Fatal("expected error for non-E.164 number")
	}
}

func TestSendInteractive_ButtonIDs(t *testing.T) {
	var got interactiveMessage
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	buttons := []Button{
		{ID: "confirm:abc-123", Title: "Confirm"},
		{ID: "retake:abc-123", Title: "Retake"},
	}
	if err := client.SendInteractive(context.Background(), "+14155550100", "Transcript preview", buttons); err != nil {
		t.Fatalf("SendInteractive failed: %v", err)
	}

	if len(got.Interactive.Action.Buttons) != 2 {
		t.Fatalf("expected 2 buttons got %d", len(got.Interactive.Action.Buttons))
	}
	if got.Interactive.Action.Buttons[0].Reply.ID != "confirm:abc-123" {
		t.Fatalf("unexpected button id %s", got.Interactive.Action.Buttons[0].Reply.ID)
	}
	if got.Interactive.Type != "button" {
		t.Fatalf("unexpected interactive type %s", got.Interactive.Type)
	}
}

func TestSendTemplate_FallsBackToText(t *testing.T) {
	types := []string{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		msgType, _ := payload["type"].(string)
		types = append(types, msgType)
		if msgType == "template" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewClient(&config.WhatsAppConfig{
		AccessToken:     "test-token",
		PhoneNumberID:   "12345",
		BaseURL:         ts.URL,
		ConfirmTemplate: "sales_report_confirm",
	})
	if err := client.SendTemplate(context.Background(), "+14155550100", "transcript body"); err != nil {
		t.Fatalf("SendTemplate failed: %v", err)
	}
	if len(types) != 2 || types[0] != "template" || types[1] != "text" {
		t.Fatalf("expected template then text fallback, got %v", types)
	}
}

func TestFetchMedia_ResolvesAndDownloads(t *testing.T) {
	audio := []byte{0x4f, 0x67, 0x67, 0x53}
	mux := http.NewServeMux()
	var ts *httptest.Server
	mux.HandleFunc("/media-id-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(mediaInfo{URL: ts.URL + "/download", MimeType: "audio/ogg", ID: "media-id-1"})
	})
	mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) {
		w.Write(audio)
	})
	ts = httptest.NewServer(mux)
	defer ts.Close()

	client := newTestClient(ts.URL)
	got, mimeType, err := client.FetchMedia(context.Background(), "media-id-1")
	if err != nil {
		t.Fatalf("FetchMedia failed: %v", err)
	}
	if mimeType != "audio/ogg" {
		t.Fatalf("unexpected mime type %s", mimeType)
	}
	if string(got) != string(audio) {
		t.Fatalf("audio bytes mismatch")
	}
}
