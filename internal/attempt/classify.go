package attempt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

// Kind is the category of a failed exchange.
type Kind string

const (
	KindNetwork  Kind = "network"
	KindTimeout  Kind = "timeout"
	KindTLS      Kind = "tls"
	KindCORS     Kind = "cors"
	KindDecode   Kind = "decode"
	KindCanceled Kind = "canceled"
	KindOther    Kind = "other"
)

// Unreachable reports whether the endpoint could not be talked to at all, the
// cases a browser reports as a bare "failed to fetch".
func (k Kind) Unreachable() bool {
	switch k {
	case KindNetwork, KindTimeout, KindTLS, KindCORS:
		return true
	}
	return false
}

// errorName is the label shown next to a failure in the console. KindOther
// has none; the caller names it after the underlying error type.
func (k Kind) errorName() string {
	switch k {
	case KindNetwork:
		return "NetworkError"
	case KindTimeout:
		return "TimeoutError"
	case KindTLS:
		return "TLSError"
	case KindCORS:
		return "CORSError"
	case KindDecode:
		return "DecodeError"
	case KindCanceled:
		return "CanceledError"
	}
	return ""
}

type emptyBodyError struct{}

func (emptyBodyError) Error() string { return "response body is empty" }

var errEmptyBody error = emptyBodyError{}

// corsError is returned when a configured probe origin is not allowed by the
// response.
type corsError struct {
	origin  string
	allowed string
}

func (e *corsError) Error() string {
	if e.allowed == "" {
		return fmt.Sprintf("origin %s not allowed: response has no Access-Control-Allow-Origin header", e.origin)
	}
	return fmt.Sprintf("origin %s not allowed: Access-Control-Allow-Origin is %q", e.origin, e.allowed)
}

// decodeError marks a body that arrived but could not be parsed as JSON.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "invalid JSON response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func Classify(err error) Kind {
	if err == nil {
		return ""
	}

	var cors *corsError
	if errors.As(err, &cors) {
		return KindCORS
	}
	var dec *decodeError
	var syntax *json.SyntaxError
	if errors.As(err, &dec) || errors.As(err, &syntax) || errors.Is(err, errEmptyBody) {
		return KindDecode
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var (
		unknownAuthority x509.UnknownAuthorityError
		hostname         x509.HostnameError
		invalidCert      x509.CertificateInvalidError
		verify           *tls.CertificateVerificationError
		recordHeader     tls.RecordHeaderError
	)
	if errors.As(err, &unknownAuthority) || errors.As(err, &hostname) ||
		errors.As(err, &invalidCert) || errors.As(err, &verify) || errors.As(err, &recordHeader) {
		return KindTLS
	}

	var (
		opErr  *net.OpError
		dnsErr *net.DNSError
	)
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return KindNetwork
	}
	return KindOther
}
