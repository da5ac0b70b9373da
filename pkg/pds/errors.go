package pds

import (
	"errors"
	"fmt"
)

// TransportKind classifies how an operation failed before reaching the
// server, or while moving bytes.
type TransportKind string

const (
	TransportConnection TransportKind = "connection"
	TransportDNS        TransportKind = "dns"
	TransportTLS        TransportKind = "tls"
	TransportTimeout    TransportKind = "timeout"
	TransportIO         TransportKind = "io"
)

// TransportError reports a failure below the protocol layer: sockets,
// name resolution, TLS, or local file IO.
type TransportError struct {
	Kind    TransportKind
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// transportIO wraps a local IO failure.
func transportIO(message string, err error) *TransportError {
	return &TransportError{Kind: TransportIO, Message: message, Err: err}
}

// AuthKind classifies authentication and session failures.
type AuthKind string

const (
	AuthInvalidCredentials  AuthKind = "invalid_credentials"
	AuthSessionExpired      AuthKind = "session_expired"
	AuthRefreshTokenInvalid AuthKind = "refresh_token_invalid"
	AuthAccountUnavailable  AuthKind = "account_unavailable"
)

// AuthError reports a credential or session problem detected by the
// client or stated by the server.
type AuthError struct {
	Kind    AuthKind
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Kind, e.Message)
}

// ProtocolError is a structured error response from a server, or a bare
// non-2xx status when the body carried no usable shape. The file engine
// reports missing records and accounts through the same type so callers
// handle both engines uniformly.
type ProtocolError struct {
	Status  int
	Code    string
	Message string
}

func (e *ProtocolError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("xrpc error %d (%s): %s", e.Status, e.Code, e.Message)
	case e.Code != "":
		return fmt.Sprintf("xrpc error %d (%s)", e.Status, e.Code)
	default:
		return fmt.Sprintf("xrpc error %d", e.Status)
	}
}

// IsAuthError reports whether the response indicates a credential or
// token problem: a 401 status, or one of the well-known auth codes.
func (e *ProtocolError) IsAuthError() bool {
	if e.Status == 401 {
		return true
	}
	switch e.Code {
	case "AuthenticationRequired", "ExpiredToken", "InvalidToken":
		return true
	}
	return false
}

// IsAuthError reports whether err is an AuthError or an auth-flavored
// ProtocolError anywhere in its chain.
func IsAuthError(err error) bool {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return true
	}
	var protoErr *ProtocolError
	return errors.As(err, &protoErr) && protoErr.IsAuthError()
}

// IsNotFound reports whether err says a record or account does not
// exist. The file engine uses 404 statuses; network servers tend to
// send 400 with a NotFound code, so both forms count.
func IsNotFound(err error) bool {
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		return false
	}
	if protoErr.Status == 404 {
		return true
	}
	switch protoErr.Code {
	case "RecordNotFound", "AccountNotFound":
		return true
	}
	return false
}
