// Package provider wraps the external HTTP capabilities the bot consumes
// (chat completion, audio transcription, currency rates, image fetch) behind a
// uniform call contract: caller-bounded timeout, response validation, and
// classified failures. Adapters make exactly one attempt per call; there is no
// retry policy at this layer.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Kind classifies a provider failure for distinct user-facing messages.
type Kind string

const (
	// KindTimeout means the call exceeded its timeout budget.
	KindTimeout Kind = "timeout"
	// KindNetwork means a connection-level failure before any usable response.
	KindNetwork Kind = "network"
	// KindUpstreamStatus means the upstream answered with a non-2xx status.
	KindUpstreamStatus Kind = "upstream_status"
	// KindUnknown covers malformed payloads and everything unclassifiable,
	// including 2xx responses missing the expected field.
	KindUnknown Kind = "unknown"
)

// Names of the concrete providers, used in logs and error messages.
const (
	NameCompletion    = "completion"
	NameTranscription = "transcription"
	NameRates         = "rates"
	NameImage         = "image"
)

// Error is a classified provider failure.
type Error struct {
	Provider string
	Kind     Kind
	Code     int // HTTP status, set for KindUpstreamStatus
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindUpstreamStatus:
		return fmt.Sprintf("%s: upstream status %d", e.Provider, e.Code)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the classification from err, or KindUnknown when err is not
// a provider error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// ProviderOf extracts the provider name from err, if any.
func ProviderOf(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Provider
	}
	return ""
}

// classify maps a transport-level error (http.Client.Do, SDK request error)
// to the taxonomy. Deadline errors win over the generic network bucket so a
// timed-out dial is reported as a timeout, not a connection failure.
func classify(provider string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Provider: provider, Kind: KindTimeout, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Provider: provider, Kind: KindTimeout, Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return &Error{Provider: provider, Kind: KindTimeout, Err: err}
		}
		return &Error{Provider: provider, Kind: KindNetwork, Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &Error{Provider: provider, Kind: KindNetwork, Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &Error{Provider: provider, Kind: KindTimeout, Err: err}
		}
		return &Error{Provider: provider, Kind: KindNetwork, Err: err}
	}

	return &Error{Provider: provider, Kind: KindUnknown, Err: err}
}

func statusError(provider string, code int) *Error {
	return &Error{Provider: provider, Kind: KindUpstreamStatus, Code: code}
}

func unknownError(provider, reason string) *Error {
	return &Error{Provider: provider, Kind: KindUnknown, Err: errors.New(reason)}
}
