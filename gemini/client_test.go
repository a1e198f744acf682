package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/saniya177/satellisense-backend/media"
)

func newTestClient(serverURL string) *HTTPClient {
	return NewHTTPClient("test-key", "test-model", serverURL, 5*time.Second)
}

func TestGenerateParsesAnswerText(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/test-model:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query: %q", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"a coastal scene"}]}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	got, err := client.Generate(context.Background(), Request{
		Instruction: "Analyze this image",
		System:      "You are an analyst",
		Parts:       ImageParts(media.InlineImage{MIMEType: "image/jpeg", Data: "QUJD"}),
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != "a coastal scene" {
		t.Errorf("Generate = %q, want %q", got, "a coastal scene")
	}

	contents, ok := captured["contents"].([]any)
	if !ok || len(contents) != 1 {
		t.Fatalf("request carried %v contents", captured["contents"])
	}
	parts := contents[0].(map[string]any)["parts"].([]any)
	if len(parts) != 2 {
		t.Fatalf("request carried %d parts, want instruction + image", len(parts))
	}
	if text := parts[0].(map[string]any)["text"]; text != "Analyze this image" {
		t.Errorf("first part = %v, want the instruction text", text)
	}
	if _, ok := parts[1].(map[string]any)["inlineData"]; !ok {
		t.Errorf("second part carries no inlineData: %v", parts[1])
	}
	if captured["systemInstruction"] == nil {
		t.Error("system instruction was not sent")
	}
}

func TestGenerateInterleavesTextParts(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Generate(context.Background(), Request{
		Instruction: "Compare over time",
		Parts: []Part{
			{Text: "Image from 2024-01-01:"},
			{Image: &media.InlineImage{MIMEType: "image/jpeg", Data: "QQ=="}},
			{Text: "Image from 2024-06-01:"},
			{Image: &media.InlineImage{MIMEType: "image/jpeg", Data: "Qg=="}},
		},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	parts := captured["contents"].([]any)[0].(map[string]any)["parts"].([]any)
	if len(parts) != 5 {
		t.Fatalf("request carried %d parts, want 5", len(parts))
	}
	if text := parts[1].(map[string]any)["text"]; text != "Image from 2024-01-01:" {
		t.Errorf("part order lost: %v", text)
	}
}

func TestGenerateNonOKStatusIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Generate(context.Background(), Request{Instruction: "x"})

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("got %T (%v), want TransportError", err, err)
	}
	if !strings.Contains(transportErr.Detail, "429") {
		t.Errorf("detail %q does not carry the status", transportErr.Detail)
	}
	if !strings.Contains(transportErr.Detail, "quota exceeded") {
		t.Errorf("detail %q does not carry the body", transportErr.Detail)
	}
}

func TestGenerateMalformedEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no candidates", `{"candidates":[]}`},
		{"no parts", `{"candidates":[{"content":{"parts":[]}}]}`},
		{"empty text", `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`},
		{"not json", `<html>oops</html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			_, err := client.Generate(context.Background(), Request{Instruction: "x"})

			var malformedErr *MalformedResponseError
			if !errors.As(err, &malformedErr) {
				t.Fatalf("got %T (%v), want MalformedResponseError", err, err)
			}
		})
	}
}

func TestGenerateMissingAPIKey(t *testing.T) {
	client := NewHTTPClient("", "test-model", "http://unreachable.invalid", time.Second)
	_, err := client.Generate(context.Background(), Request{Instruction: "x"})

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("got %T (%v), want TransportError", err, err)
	}
}

func TestGenerateUnreachableHost(t *testing.T) {
	client := NewHTTPClient("key", "test-model", "http://127.0.0.1:1", 500*time.Millisecond)
	_, err := client.Generate(context.Background(), Request{Instruction: "x"})

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("got %T (%v), want TransportError", err, err)
	}
}
