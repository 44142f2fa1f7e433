package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWebhookNotifierPayload(t *testing.T) {
	payloadCh := make(chan webhookPayload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var payload webhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		payloadCh <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL)
	err := notifier.Notify(context.Background(), AlertMessage{
		StationID:         "st-1",
		Day:               "2026-01-20",
		SettlementID:      "stl-001",
		Status:            "INVESTIGATE",
		Variance:          "500.00",
		VariancePercent:   "5.00",
		RecommendedAction: "recount the drawer and review the day's readings",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	payload := <-payloadCh
	if payload.MsgType != "text" {
		t.Fatalf("msgtype mismatch: %s", payload.MsgType)
	}
	content := payload.Text.Content
	for _, want := range []string{"[Settlement Alert]", "Station: st-1", "Day: 2026-01-20", "Status: INVESTIGATE", "Variance: 500.00 (5.00%)"} {
		if !strings.Contains(content, want) {
			t.Fatalf("content missing %q:\n%s", want, content)
		}
	}
}

func TestWebhookNotifierNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL)
	if err := notifier.Notify(context.Background(), AlertMessage{StationID: "st-1"}); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}
