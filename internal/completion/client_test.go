// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jeranaias/haven-tui/internal/config"
)

func successBody(content string) string {
	resp := ChatResponse{ID: "cmpl-1", Model: "test-model"}
	resp.Choices = append(resp.Choices, struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	}{Message: NewAssistantMessage(content), FinishReason: "stop"})
	raw, _ := json.Marshal(resp)
	return string(raw)
}

func directConfig(endpoint, key string) *config.Config {
	cfg := config.Default()
	cfg.Completion.Endpoint = endpoint
	cfg.Completion.APIKey = key
	return cfg
}

func TestReply_DirectSendsBearerCredential(t *testing.T) {
	var gotAuth, gotPath string
	var gotReq ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(successBody("hello there")))
	}))
	defer srv.Close()

	cfg := directConfig(srv.URL+"/v1", "  sk-test  ")
	client := NewClient(cfg).WithHTTPClient(srv.Client())

	got, err := client.Reply(context.Background(), []ChatMessage{NewUserMessage("hi")})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if got != "hello there" {
		t.Errorf("content = %q", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q, want trimmed bearer credential", gotAuth)
	}
	if gotPath != "/v1/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotReq.Model != cfg.Completion.Model {
		t.Errorf("request model = %q", gotReq.Model)
	}
	if gotReq.MaxTokens != cfg.Generation.MaxTokens {
		t.Errorf("request max_tokens = %d", gotReq.MaxTokens)
	}
}

func TestReply_ProxyOmitsCredentialAndHitsRelayPath(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Write([]byte(successBody("relayed")))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Completion.UseProxy = true
	cfg.Completion.ProxyURL = srv.URL + "/" // trailing slash must not double up
	client := NewClient(cfg).WithHTTPClient(srv.Client())

	got, err := client.Reply(context.Background(), []ChatMessage{NewUserMessage("hi")})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if got != "relayed" {
		t.Errorf("content = %q", got)
	}
	if gotAuth != "" {
		t.Errorf("proxy mode sent Authorization %q; the relay holds the credential", gotAuth)
	}
	if gotPath != "/v1/chat/completions" {
		t.Errorf("path = %q, want /v1/chat/completions", gotPath)
	}
}

func TestReply_DirectWithoutKeyFailsBeforeNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewClient(directConfig(srv.URL, "")).WithHTTPClient(srv.Client())

	_, err := client.Reply(context.Background(), []ChatMessage{NewUserMessage("hi")})
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("err = %v, want ErrMissingCredential", err)
	}
	if called {
		t.Error("missing credential must be detected before any network I/O")
	}
}

func TestReply_TransportErrorCarriesStatusAndMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":"rate_limited","message":"slow down"}}`))
	}))
	defer srv.Close()

	client := NewClient(directConfig(srv.URL, "sk-x")).WithHTTPClient(srv.Client())

	_, err := client.Reply(context.Background(), []ChatMessage{NewUserMessage("hi")})
	var ce *ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ClientError", err)
	}
	if ce.Kind != KindTransport {
		t.Errorf("kind = %s, want transport", ce.Kind)
	}
	if ce.Status != http.StatusTooManyRequests {
		t.Errorf("status = %d", ce.Status)
	}
	if !strings.Contains(ce.Error(), "slow down") {
		t.Errorf("error %q should carry the endpoint's message", ce.Error())
	}
}

func TestReply_TransportErrorWithPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	client := NewClient(directConfig(srv.URL, "sk-x")).WithHTTPClient(srv.Client())

	_, err := client.Reply(context.Background(), []ChatMessage{NewUserMessage("hi")})
	var ce *ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ClientError", err)
	}
	if ce.Status != http.StatusBadGateway || ce.Body != "upstream exploded" {
		t.Errorf("status/body = %d/%q", ce.Status, ce.Body)
	}
}

func TestReply_UndecodableSuccessIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not json"))
	}))
	defer srv.Close()

	client := NewClient(directConfig(srv.URL, "sk-x")).WithHTTPClient(srv.Client())

	_, err := client.Reply(context.Background(), []ChatMessage{NewUserMessage("hi")})
	var ce *ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ClientError", err)
	}
	if ce.Kind != KindMalformed {
		t.Errorf("kind = %s, want malformed_response", ce.Kind)
	}
}

func TestReply_SuccessWithoutChoicesIsEmptyNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"cmpl-2","choices":[]}`))
	}))
	defer srv.Close()

	client := NewClient(directConfig(srv.URL, "sk-x")).WithHTTPClient(srv.Client())

	got, err := client.Reply(context.Background(), []ChatMessage{NewUserMessage("hi")})
	if err != nil {
		t.Fatalf("absent field must not be an error, got %v", err)
	}
	if got != "" {
		t.Errorf("content = %q, want empty", got)
	}
}

func TestReply_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse all connections

	client := NewClient(directConfig(srv.URL, "sk-x")).WithHTTPClient(&http.Client{})

	_, err := client.Reply(context.Background(), []ChatMessage{NewUserMessage("hi")})
	var ce *ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ClientError", err)
	}
	if ce.Kind != KindConnection {
		t.Errorf("kind = %s, want connection", ce.Kind)
	}
}

func TestMode(t *testing.T) {
	cfg := config.Default()
	if NewClient(cfg).Mode() != ModeDirect {
		t.Error("default mode should be direct")
	}
	cfg.Completion.UseProxy = true
	if NewClient(cfg).Mode() != ModeProxy {
		t.Error("use_proxy should select proxy mode")
	}
}

func TestFallbackText_PerKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"missing credential", ErrMissingCredential, "haven setup"},
		{"transport", newTransportError(500, "boom"), "try again"},
		{"malformed", &ClientError{Kind: KindMalformed, Message: "bad body"}, "couldn't read"},
		{"connection", &ClientError{Kind: KindConnection, Message: "dial failed"}, "check your connection"},
		{"plain error", errors.New("weird"), "weird"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FallbackText(tt.err, ModeDirect)
			if strings.TrimSpace(got) == "" {
				t.Fatal("fallback text must never be empty")
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("FallbackText = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}
