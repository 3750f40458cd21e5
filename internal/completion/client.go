// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package completion provides the HTTP client for the chat completion
// endpoint, in direct (bearer credential) and proxy (local relay) modes.
package completion

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/haven-tui/internal/config"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout bounds a single completion call. There is no retry and
	// no cancellation surface beyond the context; a call is awaited to
	// completion or failure.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize caps the response body read.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// completionsPath is appended to the base URL of either transport.
	completionsPath = "/chat/completions"
)

// Mode identifies the active transport.
type Mode string

const (
	// ModeDirect calls the remote endpoint with the bearer credential.
	ModeDirect Mode = "direct"
	// ModeProxy calls the local relay, which holds the credential.
	ModeProxy Mode = "proxy"
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// =============================================================================
// CLIENT
// =============================================================================

// Client sends composed message lists to the completion endpoint. The
// conversation layer issues at most one call at a time; the Client itself is
// safe for concurrent use.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewClient creates a client for the given configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: sharedHTTPClient,
	}
}

// WithHTTPClient overrides the HTTP client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Mode returns the transport selected by the configuration.
func (c *Client) Mode() Mode {
	if c.cfg.Completion.UseProxy {
		return ModeProxy
	}
	return ModeDirect
}

// baseURL returns the base URL of the active transport.
func (c *Client) baseURL() string {
	if c.Mode() == ModeProxy {
		return strings.TrimSuffix(c.cfg.Completion.ProxyURL, "/") + "/v1"
	}
	return strings.TrimSuffix(c.cfg.Completion.Endpoint, "/")
}

// Reply sends the composed message list with the configured generation
// parameters and returns the first choice's content.
//
// Error contract:
//   - direct mode with an empty key fails with ErrMissingCredential before
//     any network I/O;
//   - a non-success status yields a transport error carrying status and body;
//   - an undecodable success body yields a malformed-response error;
//   - a success body without the expected field yields "" and nil.
//
// No retries happen here; degrading a failure to display text is the
// caller's job (see FallbackText).
func (c *Client) Reply(ctx context.Context, messages []ChatMessage) (string, error) {
	if c.Mode() == ModeDirect && !c.cfg.HasAPIKey() {
		return "", ErrMissingCredential
	}

	reqBody := ChatRequest{
		Model:       c.cfg.Completion.Model,
		Messages:    messages,
		Temperature: c.cfg.Generation.Temperature,
		TopP:        c.cfg.Generation.TopP,
		MaxTokens:   c.cfg.Generation.MaxTokens,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ClientError{Kind: KindUnknown, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+completionsPath, bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Kind: KindConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Mode() == ModeDirect {
		// The relay adds the credential server-side in proxy mode.
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.cfg.Completion.APIKey))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ClientError{Kind: KindConnection, Message: "completion request failed", Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return "", &ClientError{Kind: KindConnection, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Prefer the endpoint's own error message when the body carries one.
		var apiErr apiErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			e := newTransportError(resp.StatusCode, apiErr.Error.Message)
			e.Message = e.Message + ": " + apiErr.Error.Message
			return "", e
		}
		return "", newTransportError(resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result ChatResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", &ClientError{Kind: KindMalformed, Message: "failed to decode response", Cause: err}
	}

	return result.GetContent(), nil
}

// =============================================================================
// FALLBACK TEXT
// =============================================================================

// FallbackText converts a client error into the human-readable in-band
// string shown as a normal assistant turn. The conversation never crashes on
// a failed call; this is the designed degradation path.
func FallbackText(err error, mode Mode) string {
	var ce *ClientError
	if errors.As(err, &ce) {
		switch ce.Kind {
		case KindMissingCredential:
			return "I couldn't send that: no API key is configured for direct mode. " +
				"Run 'haven setup' to add one, or enable the proxy with 'haven config set use_proxy true'."
		case KindTransport:
			return "I couldn't get a reply (" + string(mode) + " mode): the service answered " +
				ce.Error() + ". Your message is saved; please try again in a moment."
		case KindMalformed:
			return "I couldn't get a reply (" + string(mode) + " mode): the service sent a response " +
				"I couldn't read. Your message is saved; please try again."
		}
	}
	return "I couldn't reach the completion service (" + string(mode) + " mode): " + err.Error() +
		". Your message is saved; please check your connection and try again."
}
