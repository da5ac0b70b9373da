package pds_test

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atdock/atdock.go/pkg/pds"
)

func TestTransportError(t *testing.T) {
	inner := io.ErrUnexpectedEOF
	err := &pds.TransportError{Kind: pds.TransportIO, Message: "reading record", Err: inner}
	assert.Equal(t, "io error: reading record: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, inner, "the wrapped cause should stay reachable")

	bare := &pds.TransportError{Kind: pds.TransportDNS, Message: "resolving host"}
	assert.Equal(t, "dns error: resolving host", bare.Error())
}

func TestAuthErrorMessage(t *testing.T) {
	err := &pds.AuthError{Kind: pds.AuthSessionExpired, Message: "no access token; log in first"}
	assert.Equal(t, "auth error (session_expired): no access token; log in first", err.Error())
}

func TestProtocolErrorMessage(t *testing.T) {
	testcases := []struct {
		name string
		err  *pds.ProtocolError
		want string
	}{
		{
			name: "code and message",
			err:  &pds.ProtocolError{Status: 400, Code: "RecordNotFound", Message: "could not locate record"},
			want: "xrpc error 400 (RecordNotFound): could not locate record",
		},
		{
			name: "code only",
			err:  &pds.ProtocolError{Status: 400, Code: "InvalidRequest"},
			want: "xrpc error 400 (InvalidRequest)",
		},
		{
			name: "bare status",
			err:  &pds.ProtocolError{Status: 503},
			want: "xrpc error 503",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestProtocolErrorIsAuthError(t *testing.T) {
	testcases := []struct {
		name string
		err  *pds.ProtocolError
		want bool
	}{
		{"bare 401", &pds.ProtocolError{Status: 401}, true},
		{"expired token code", &pds.ProtocolError{Status: 400, Code: "ExpiredToken"}, true},
		{"invalid token code", &pds.ProtocolError{Status: 400, Code: "InvalidToken"}, true},
		{"authentication required code", &pds.ProtocolError{Status: 400, Code: "AuthenticationRequired"}, true},
		{"unrelated 400", &pds.ProtocolError{Status: 400, Code: "InvalidRequest"}, false},
		{"server error", &pds.ProtocolError{Status: 500}, false},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.IsAuthError())
		})
	}
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, pds.IsAuthError(&pds.AuthError{Kind: pds.AuthInvalidCredentials}))
	assert.True(t, pds.IsAuthError(&pds.ProtocolError{Status: 401}))
	assert.True(t, pds.IsAuthError(fmt.Errorf("login: %w", &pds.ProtocolError{Status: 400, Code: "ExpiredToken"})),
		"wrapping should not hide the classification")
	assert.False(t, pds.IsAuthError(&pds.ProtocolError{Status: 400, Code: "InvalidRequest"}))
	assert.False(t, pds.IsAuthError(errors.New("unrelated")))
	assert.False(t, pds.IsAuthError(nil))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, pds.IsNotFound(&pds.ProtocolError{Status: 404}))
	assert.True(t, pds.IsNotFound(&pds.ProtocolError{Status: 400, Code: "RecordNotFound"}))
	assert.True(t, pds.IsNotFound(&pds.ProtocolError{Status: 400, Code: "AccountNotFound"}))
	assert.True(t, pds.IsNotFound(fmt.Errorf("get: %w", &pds.ProtocolError{Status: 404})))
	assert.False(t, pds.IsNotFound(&pds.ProtocolError{Status: 400, Code: "InvalidRequest"}))
	assert.False(t, pds.IsNotFound(errors.New("unrelated")))
	assert.False(t, pds.IsNotFound(nil))
}
