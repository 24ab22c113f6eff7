package translator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newOpenAITestServer(t *testing.T, handler http.HandlerFunc) (*OpenAIService, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	return NewOpenAIService("test-key", server.URL, "", 0), server.Close
}

func TestOpenAIService_Translate_Success(t *testing.T) {
	var got struct {
		Model    string    `json:"model"`
		Messages []Message `json:"messages"`
	}

	svc, done := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Here is the translation: Witaj świecie"}}]}`))
	})
	defer done()

	res := svc.Translate(context.Background(), "Hello world", "Translate into Polish.", "world = świat")
	if !res.OK() {
		t.Fatalf("unexpected failure: %v", res.Failure)
	}
	if res.Text != "Witaj świecie" {
		t.Errorf("expected cleaned translation, got %q", res.Text)
	}
	if got.Model != DefaultOpenAIModel {
		t.Errorf("expected default model %q, got %q", DefaultOpenAIModel, got.Model)
	}
	if len(got.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got.Messages))
	}
	if got.Messages[1].Content != "Use the following glossary for reference:\nworld = świat" {
		t.Errorf("unexpected glossary message %q", got.Messages[1].Content)
	}
}

func TestOpenAIService_Translate_Classification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   FailureKind
	}{
		{"auth", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key","type":"invalid_request_error"}}`, KindAuth},
		{"rate limit", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"requests"}}`, KindRateLimit},
		{"bad request", http.StatusBadRequest, `{"error":{"message":"context length exceeded","type":"invalid_request_error"}}`, KindBadRequest},
		{"server", http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`, KindAPI},
		{"non-json body", http.StatusServiceUnavailable, `upstream down`, KindAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, done := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			defer done()

			res := svc.Translate(context.Background(), "Hello", "", "")
			if res.OK() {
				t.Fatal("expected failure")
			}
			if res.Failure.Kind != tt.want {
				t.Errorf("expected %s, got %s (%v)", tt.want, res.Failure.Kind, res.Failure.Cause)
			}
			if res.Service != "openai" {
				t.Errorf("expected service name on failure, got %q", res.Service)
			}
		})
	}
}

func TestOpenAIService_Translate_NoAPIKey(t *testing.T) {
	res := NewOpenAIService("", "", "", 0).Translate(context.Background(), "Hello", "", "")
	if res.OK() || res.Failure.Kind != KindAuth {
		t.Errorf("expected auth failure, got %+v", res)
	}
}

func TestOpenAIService_IsAvailable(t *testing.T) {
	svc, done := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4","object":"model"}]}`))
	})
	defer done()

	if err := svc.IsAvailable(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOpenAIService_IsAvailable_BadKey(t *testing.T) {
	svc, done := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	})
	defer done()

	if err := svc.IsAvailable(context.Background()); err == nil {
		t.Error("expected error for rejected key")
	}
}

func TestOpenAIService_IsAvailable_NoKey(t *testing.T) {
	if err := NewOpenAIService("", "", "", 0).IsAvailable(context.Background()); err == nil {
		t.Error("expected error without API key")
	}
}
