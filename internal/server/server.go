// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the same-origin relay used in proxy mode.
//
// Endpoints:
//   - POST /v1/chat/completions - forwards the wire contract upstream,
//     injecting the server-held credential
//   - GET  /health              - health check
//
// The relay exists so the client never has to hold the API key: in proxy
// mode the REPL posts here without any Authorization header, and the relay
// adds it before forwarding.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/haven-tui/internal/completion"
	"github.com/jeranaias/haven-tui/internal/config"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultPort is the default port for the relay.
	DefaultPort = 8787

	// MaxRequestBodySize caps the request body to prevent abuse (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// MaxMessageCount is the maximum number of messages in a request.
	MaxMessageCount = 200

	// upstreamTimeout bounds one forwarded call.
	upstreamTimeout = 90 * time.Second
)

// validRoles is the set of acceptable message roles.
// SECURITY: role whitelist keeps injected roles out of the upstream call.
var validRoles = map[string]bool{
	"user":      true,
	"assistant": true,
	"system":    true,
}

// ============================================================================
// RELAY
// ============================================================================

// Relay forwards chat completion requests to the configured upstream
// endpoint with the server-held API key.
type Relay struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *log.Logger
}

// NewRelay creates a relay for the given configuration.
func NewRelay(cfg *config.Config, logger *log.Logger) *Relay {
	if logger == nil {
		logger = log.Default()
	}
	return &Relay{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: upstreamTimeout},
		logger:     logger,
	}
}

// Handler returns the relay's HTTP handler with middleware applied.
func (rl *Relay) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", rl.handleCompletions)
	mux.HandleFunc("/health", rl.handleHealth)

	return Chain(
		LoggingMiddleware(rl.logger),
		RecoveryMiddleware(rl.logger),
		RateLimitMiddleware(NewLimiter()),
	)(mux)
}

// ListenAndServe runs the relay until the context is cancelled.
func (rl *Relay) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = fmt.Sprintf("127.0.0.1:%d", DefaultPort)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           rl.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rl.logger.Printf("relay listening on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// ============================================================================
// HANDLERS
// ============================================================================

// handleHealth reports relay liveness and whether a key is configured.
func (rl *Relay) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"key_configured": rl.cfg.HasAPIKey(),
	})
}

// handleCompletions validates and forwards one chat completion request.
func (rl *Relay) handleCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if !rl.cfg.HasAPIKey() {
		writeError(w, http.StatusServiceUnavailable, "relay has no API key configured")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	var req completion.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validateRequest(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Clamp generation parameters to the same bounds the config layer uses.
	clampRequest(&req)
	if req.Model == "" {
		req.Model = rl.cfg.Completion.Model
	}

	forwardBody, err := json.Marshal(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode upstream request")
		return
	}

	upstream := strings.TrimSuffix(rl.cfg.Completion.Endpoint, "/") + "/chat/completions"
	upReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost, upstream, bytes.NewReader(forwardBody))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build upstream request")
		return
	}
	upReq.Header.Set("Content-Type", "application/json")
	// The credential is injected here and only here.
	upReq.Header.Set("Authorization", "Bearer "+strings.TrimSpace(rl.cfg.Completion.APIKey))

	resp, err := rl.httpClient.Do(upReq)
	if err != nil {
		writeError(w, http.StatusBadGateway, "upstream request failed: "+err.Error())
		return
	}
	defer resp.Body.Close()

	// Pass the upstream status and body through unchanged; the client's
	// error taxonomy depends on seeing the real status.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, io.LimitReader(resp.Body, completion.MaxResponseSize)); err != nil {
		rl.logger.Printf("relay: copy upstream response: %v", err)
	}
}

// ============================================================================
// VALIDATION
// ============================================================================

// validateRequest checks structural limits and the role whitelist.
func validateRequest(req *completion.ChatRequest) error {
	if len(req.Messages) == 0 {
		return fmt.Errorf("messages must not be empty")
	}
	if len(req.Messages) > MaxMessageCount {
		return fmt.Errorf("too many messages: %d (max %d)", len(req.Messages), MaxMessageCount)
	}
	for i, msg := range req.Messages {
		if !validRoles[msg.Role] {
			return fmt.Errorf("invalid role %q at message %d", msg.Role, i)
		}
	}
	return nil
}

// clampRequest forces generation parameters into their valid ranges.
func clampRequest(req *completion.ChatRequest) {
	if req.Temperature < config.MinTemperature {
		req.Temperature = config.MinTemperature
	}
	if req.Temperature > config.MaxTemperature {
		req.Temperature = config.MaxTemperature
	}
	if req.TopP < config.MinTopP {
		req.TopP = config.MinTopP
	}
	if req.TopP > config.MaxTopP {
		req.TopP = config.MaxTopP
	}
	if req.MaxTokens < config.MinMaxTokens {
		req.MaxTokens = config.MinMaxTokens
	}
	if req.MaxTokens > config.MaxMaxTokens {
		req.MaxTokens = config.MaxMaxTokens
	}
}

// ============================================================================
// RESPONSE HELPERS
// ============================================================================

// errorEnvelope mirrors the upstream error shape so clients decode both the
// same way.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	var env errorEnvelope
	env.Error.Message = message
	writeJSON(w, status, env)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
