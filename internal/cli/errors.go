package cli

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/pineunity/apmec-horizon/internal/apmec"
)

// ConnectionErrorType categorizes the type of connection error.
type ConnectionErrorType int

const (
	// ConnectionErrorUnknown indicates an unclassified connection error.
	ConnectionErrorUnknown ConnectionErrorType = iota
	// ConnectionErrorTLS indicates a TLS/certificate verification error.
	ConnectionErrorTLS
	// ConnectionErrorNetwork indicates a network connectivity error (e.g., refused, unreachable).
	ConnectionErrorNetwork
	// ConnectionErrorTimeout indicates a connection timeout.
	ConnectionErrorTimeout
	// ConnectionErrorDNS indicates a DNS resolution failure.
	ConnectionErrorDNS
)

// String returns a human-readable name for the connection error type.
func (t ConnectionErrorType) String() string {
	switch t {
	case ConnectionErrorTLS:
		return "TLS certificate error"
	case ConnectionErrorNetwork:
		return "Network error"
	case ConnectionErrorTimeout:
		return "Connection timeout"
	case ConnectionErrorDNS:
		return "DNS resolution error"
	default:
		return "Connection error"
	}
}

// ConnectionError indicates the orchestration API could not be reached.
type ConnectionError struct {
	// Endpoint is the URL that could not be reached.
	Endpoint string
	// Type categorizes the connection error.
	Type ConnectionErrorType
	// Reason is the underlying error.
	Reason error
}

// ClassifyConnectionError returns a ConnectionError with the type matching
// err, or nil for a nil err.
func ClassifyConnectionError(err error, endpoint string) *ConnectionError {
	if err == nil {
		return nil
	}
	return &ConnectionError{Endpoint: endpoint, Type: connectionErrorType(err), Reason: err}
}

// connectionErrorType checks typed errors first and falls back to the
// message, since transports often flatten the chain into a string.
func connectionErrorType(err error) ConnectionErrorType {
	var dnsErr *net.DNSError
	switch {
	case isTLSError(err):
		return ConnectionErrorTLS
	case errors.As(err, &dnsErr):
		return ConnectionErrorDNS
	case isTimeoutError(err):
		return ConnectionErrorTimeout
	case containsAny(err.Error(), networkMarkers):
		return ConnectionErrorNetwork
	}
	return ConnectionErrorUnknown
}

var (
	tlsMarkers     = []string{"x509:", "certificate", "tls:", "TLS handshake"}
	timeoutMarkers = []string{"timeout", "deadline exceeded"}
	networkMarkers = []string{
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no route to host",
		"dial tcp",
		"connect:",
	}
)

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func isTLSError(err error) bool {
	if err == nil {
		return false
	}
	var (
		invalid  *x509.CertificateInvalidError
		hostname *x509.HostnameError
		unknown  x509.UnknownAuthorityError
		roots    x509.SystemRootsError
	)
	if errors.As(err, &invalid) || errors.As(err, &hostname) ||
		errors.As(err, &unknown) || errors.As(err, &roots) {
		return true
	}
	return containsAny(err.Error(), tlsMarkers)
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return containsAny(err.Error(), timeoutMarkers)
}

// Error returns the failure with guidance for the operator.
func (e *ConnectionError) Error() string {
	switch e.Type {
	case ConnectionErrorTLS:
		return fmt.Sprintf(`TLS certificate verification failed for %s: %v

Self-signed or private CA certificates can be trusted with
orchestrator.ca_cert in config.yaml, or skipped with orchestrator.insecure.`, e.Endpoint, e.Reason)
	case ConnectionErrorDNS:
		return fmt.Sprintf("DNS resolution failed for %s: %v\n\nCheck orchestrator.endpoint or --endpoint.", e.Endpoint, e.Reason)
	case ConnectionErrorTimeout:
		return fmt.Sprintf("Connection to %s timed out: %v\n\nIncrease orchestrator.timeout if the API is slow.", e.Endpoint, e.Reason)
	case ConnectionErrorNetwork:
		return fmt.Sprintf(`Connection failed to %s: %v

Possible causes:
  - Server is not running
  - The endpoint or port is wrong
  - A firewall blocks the connection`, e.Endpoint, e.Reason)
	default:
		return fmt.Sprintf("Connection failed to %s: %v", e.Endpoint, e.Reason)
	}
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *ConnectionError) Is(target error) bool {
	_, ok := target.(*ConnectionError)
	return ok
}

// AuthFailedError indicates the orchestration API rejected the credentials.
type AuthFailedError struct {
	// Endpoint is the URL where authentication failed.
	Endpoint string
	// Reason is the underlying error.
	Reason error
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthFailedError) Error() string {
	return fmt.Sprintf(`Authentication failed for %s: %v

Set a valid token with MECPANEL_TOKEN or orchestrator.auth.token in config.yaml.`, e.Endpoint, e.Reason)
}

// Unwrap returns the underlying error.
func (e *AuthFailedError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthFailedError) Is(target error) bool {
	_, ok := target.(*AuthFailedError)
	return ok
}

// FriendlyError turns client errors into errors with operator guidance.
// Other errors are returned unchanged.
func FriendlyError(err error, endpoint string) error {
	if err == nil {
		return nil
	}

	var transportErr *apmec.TransportError
	if errors.As(err, &transportErr) {
		return ClassifyConnectionError(transportErr.Err, endpoint)
	}

	var statusErr *apmec.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthFailedError{Endpoint: endpoint, Reason: err}
		}
	}

	return err
}
