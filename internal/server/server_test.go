// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jeranaias/haven-tui/internal/completion"
	"github.com/jeranaias/haven-tui/internal/config"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// newRelayPair starts a fake upstream and a relay pointed at it.
func newRelayPair(t *testing.T, upstream http.HandlerFunc, key string) (*httptest.Server, *httptest.Server) {
	t.Helper()
	up := httptest.NewServer(upstream)
	t.Cleanup(up.Close)

	cfg := config.Default()
	cfg.Completion.Endpoint = up.URL + "/v1"
	cfg.Completion.APIKey = key

	relay := httptest.NewServer(NewRelay(cfg, quietLogger()).Handler())
	t.Cleanup(relay.Close)
	return up, relay
}

func postCompletions(t *testing.T, relayURL string, req completion.ChatRequest) *http.Response {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(relayURL+"/v1/chat/completions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST relay: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func simpleRequest() completion.ChatRequest {
	return completion.ChatRequest{
		Model:       "test-model",
		Messages:    []completion.ChatMessage{completion.NewUserMessage("hi")},
		Temperature: 0.7,
		TopP:        1.0,
		MaxTokens:   256,
	}
}

func TestHealth(t *testing.T) {
	_, relay := newRelayPair(t, func(w http.ResponseWriter, r *http.Request) {}, "sk-x")

	resp, err := http.Get(relay.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Status        string `json:"status"`
		KeyConfigured bool   `json:"key_configured"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if body.Status != "ok" || !body.KeyConfigured {
		t.Errorf("health = %+v", body)
	}
}

func TestCompletions_InjectsCredentialUpstream(t *testing.T) {
	var gotAuth, gotPath string
	upstream := func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Write([]byte(`{"id":"cmpl-1","choices":[{"message":{"role":"assistant","content":"hi"}}]}`))
	}
	_, relay := newRelayPair(t, upstream, "sk-relay-held")

	resp := postCompletions(t, relay.URL, simpleRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if gotAuth != "Bearer sk-relay-held" {
		t.Errorf("upstream Authorization = %q", gotAuth)
	}
	if gotPath != "/v1/chat/completions" {
		t.Errorf("upstream path = %q", gotPath)
	}

	var body completion.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode relay response: %v", err)
	}
	if body.GetContent() != "hi" {
		t.Errorf("content = %q", body.GetContent())
	}
}

func TestCompletions_NoKeyIs503(t *testing.T) {
	called := false
	_, relay := newRelayPair(t, func(w http.ResponseWriter, r *http.Request) { called = true }, "")

	resp := postCompletions(t, relay.URL, simpleRequest())
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
	if called {
		t.Error("keyless relay must not call upstream")
	}
}

func TestCompletions_Validation(t *testing.T) {
	tooMany := simpleRequest()
	tooMany.Messages = nil
	for i := 0; i <= MaxMessageCount; i++ {
		tooMany.Messages = append(tooMany.Messages, completion.NewUserMessage("x"))
	}

	badRole := simpleRequest()
	badRole.Messages = []completion.ChatMessage{{Role: "operator", Content: "sudo"}}

	empty := simpleRequest()
	empty.Messages = nil

	tests := []struct {
		name string
		req  completion.ChatRequest
	}{
		{"no messages", empty},
		{"too many messages", tooMany},
		{"invalid role", badRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			_, relay := newRelayPair(t, func(w http.ResponseWriter, r *http.Request) { called = true }, "sk-x")

			resp := postCompletions(t, relay.URL, tt.req)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if called {
				t.Error("invalid request must not reach upstream")
			}

			var env errorEnvelope
			if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
				t.Fatalf("decode error envelope: %v", err)
			}
			if env.Error.Message == "" {
				t.Error("error envelope missing message")
			}
		})
	}
}

func TestCompletions_InvalidJSONIs400(t *testing.T) {
	_, relay := newRelayPair(t, func(w http.ResponseWriter, r *http.Request) {}, "sk-x")

	resp, err := http.Post(relay.URL+"/v1/chat/completions", "application/json", strings.NewReader("nope"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCompletions_ClampsGenerationParameters(t *testing.T) {
	var forwarded completion.ChatRequest
	upstream := func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&forwarded); err != nil {
			t.Errorf("decode forwarded request: %v", err)
		}
		w.Write([]byte(`{"choices":[]}`))
	}
	_, relay := newRelayPair(t, upstream, "sk-x")

	req := simpleRequest()
	req.Model = "" // relay fills the configured default
	req.Temperature = 99
	req.TopP = -5
	req.MaxTokens = 1 << 30

	resp := postCompletions(t, relay.URL, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if forwarded.Temperature != config.MaxTemperature {
		t.Errorf("forwarded temperature = %v", forwarded.Temperature)
	}
	if forwarded.TopP != config.MinTopP {
		t.Errorf("forwarded top_p = %v", forwarded.TopP)
	}
	if forwarded.MaxTokens != config.MaxMaxTokens {
		t.Errorf("forwarded max_tokens = %d", forwarded.MaxTokens)
	}
	if forwarded.Model != config.Default().Completion.Model {
		t.Errorf("forwarded model = %q, want configured default", forwarded.Model)
	}
}

func TestCompletions_UpstreamStatusPassesThrough(t *testing.T) {
	upstream := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"upstream says slow down"}}`))
	}
	_, relay := newRelayPair(t, upstream, "sk-x")

	resp := postCompletions(t, relay.URL, simpleRequest())
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want passthrough 429", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "upstream says slow down") {
		t.Errorf("body = %q, want upstream body passthrough", raw)
	}
}

func TestCompletions_MethodNotAllowed(t *testing.T) {
	_, relay := newRelayPair(t, func(w http.ResponseWriter, r *http.Request) {}, "sk-x")

	resp, err := http.Get(relay.URL + "/v1/chat/completions")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestRateLimit_EventuallyRejects(t *testing.T) {
	_, relay := newRelayPair(t, func(w http.ResponseWriter, r *http.Request) {}, "sk-x")

	// The bucket holds burstSize tokens; hammering past it must yield 429s.
	saw429 := false
	for i := 0; i < burstSize*3; i++ {
		resp, err := http.Get(relay.URL + "/health")
		if err != nil {
			t.Fatalf("GET /health: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			saw429 = true
			break
		}
	}
	if !saw429 {
		t.Error("rate limiter never rejected a burst")
	}
}

func TestRecovery_PanicBecomes500(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := Chain(RecoveryMiddleware(quietLogger()))(panicky)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}
