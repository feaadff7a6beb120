// Package gateway – openclaw_test.go tests the HTTP delivery client and
// payload formatting.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenClawGateway_Deliver(t *testing.T) {
	var got deliverRequest
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	gw := NewOpenClawGateway(OpenClawConfig{URL: srv.URL, Token: "secret"}, nil)

	err := gw.Deliver(context.Background(), "agent:designer:main", "designer", "hello")
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	if got.SessionID != "agent:designer:main" {
		t.Errorf("Expected session id passed through, got %q", got.SessionID)
	}
	if got.Agent != "designer" {
		t.Errorf("Expected agent id passed through, got %q", got.Agent)
	}
	if got.Message != "hello" {
		t.Errorf("Expected message passed through, got %q", got.Message)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Expected bearer token header, got %q", gotAuth)
	}
}

func TestOpenClawGateway_Deliver_NonOKIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("no session"))
	}))
	defer srv.Close()

	gw := NewOpenClawGateway(OpenClawConfig{URL: srv.URL}, nil)

	err := gw.Deliver(context.Background(), "agent:designer:main", "designer", "hello")
	if err == nil {
		t.Fatal("Expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("Expected status in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "no session") {
		t.Errorf("Expected body snippet in error, got %v", err)
	}
}

func TestOpenClawGateway_Deliver_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	gw := NewOpenClawGateway(OpenClawConfig{URL: srv.URL}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := gw.Deliver(ctx, "agent:designer:main", "designer", "hello"); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestFormatNotification(t *testing.T) {
	tests := []struct {
		name      string
		recipient string
		sender    string
		content   string
		taskTitle string
		want      string
	}{
		{
			name:      "full payload",
			recipient: "Designer",
			sender:    "Developer",
			content:   "please review",
			taskTitle: "Landing page",
			want:      "📬 [NOTIFICATION] @Designer: please review (from Developer on task: Landing page)",
		},
		{
			name:      "no task",
			recipient: "Designer",
			sender:    "Developer",
			content:   "ping",
			want:      "📬 [NOTIFICATION] @Designer: ping (from Developer)",
		},
		{
			name:      "no sender",
			recipient: "Designer",
			content:   "system note",
			want:      "📬 [NOTIFICATION] @Designer: system note",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatNotification(tt.recipient, tt.sender, tt.content, tt.taskTitle)
			if got != tt.want {
				t.Errorf("FormatNotification() = %q, want %q", got, tt.want)
			}
		})
	}
}
