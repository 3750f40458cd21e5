// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorKind categorizes client errors. The conversation layer never surfaces
// these as exceptions; it converts them to in-band fallback text, but keeps
// the kind for tests and logging.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindMissingCredential: direct mode with an empty API key. Raised
	// before any network I/O.
	KindMissingCredential
	// KindConnection: the request never produced an HTTP response
	// (dial failure, timeout, context cancellation).
	KindConnection
	// KindTransport: the endpoint answered with a non-success status.
	KindTransport
	// KindMalformed: a success status whose body could not be decoded.
	KindMalformed
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindMissingCredential:
		return "missing_credential"
	case KindConnection:
		return "connection"
	case KindTransport:
		return "transport"
	case KindMalformed:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// ClientError is the typed error returned by the client.
type ClientError struct {
	Kind    ErrorKind
	Message string
	// Status and Body are set for transport errors.
	Status int
	Body   string
	Cause  error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is matching against sentinel values by kind.
func (e *ClientError) Is(target error) bool {
	var ce *ClientError
	if errors.As(target, &ce) {
		return e.Kind == ce.Kind
	}
	return false
}

// ErrMissingCredential is the sentinel for direct mode without a key.
var ErrMissingCredential = &ClientError{
	Kind:    KindMissingCredential,
	Message: "no API key configured for direct mode",
}

// newTransportError builds a transport error capturing status and body text.
func newTransportError(status int, body string) *ClientError {
	return &ClientError{
		Kind:    KindTransport,
		Message: fmt.Sprintf("completion endpoint returned HTTP %d", status),
		Status:  status,
		Body:    body,
	}
}
