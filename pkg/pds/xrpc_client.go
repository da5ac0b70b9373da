package pds

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/atdock/atdock.go/pkg/constants"
	"github.com/atdock/atdock.go/pkg/logger"
	"github.com/atdock/atdock.go/pkg/models"
)

// XRPCBackend serves the contract over HTTP against a remote server.
type XRPCBackend struct {
	url    models.PDSURL
	client *http.Client
	logger logger.Logger
}

// NewXRPCBackend builds the network engine for url. The HTTP client
// carries no timeout of its own; callers bound operations with
// contexts.
func NewXRPCBackend(url models.PDSURL) *XRPCBackend {
	return &XRPCBackend{
		url:    url,
		client: &http.Client{},
		logger: logger.Nop(),
	}
}

// WithLogger installs l and returns the backend for chaining.
func (b *XRPCBackend) WithLogger(l logger.Logger) *XRPCBackend {
	b.logger = l
	return b
}

// URL returns the base URL this backend was built from.
func (b *XRPCBackend) URL() models.PDSURL {
	return b.url
}

func (b *XRPCBackend) backendKind() Kind {
	return KindXRPC
}

// requireToken rejects authed calls before any I/O when no token is
// held.
func requireToken(token string) error {
	if token == "" {
		return &AuthError{Kind: AuthSessionExpired, Message: "no access token; log in first"}
	}
	return nil
}

// xrpcQuery is a GET call with query parameters and a JSON response.
func xrpcQuery[T any](ctx context.Context, b *XRPCBackend, method string, params url.Values) (T, error) {
	var out T
	err := b.do(ctx, http.MethodGet, method, params, nil, "", &out)
	return out, err
}

// xrpcQueryAuthed is xrpcQuery with a bearer token.
func xrpcQueryAuthed[T any](ctx context.Context, b *XRPCBackend, method string, params url.Values, token string) (T, error) {
	var out T
	if err := requireToken(token); err != nil {
		return out, err
	}
	err := b.do(ctx, http.MethodGet, method, params, nil, token, &out)
	return out, err
}

// xrpcProcedure is a POST call with a JSON body and a JSON response.
func xrpcProcedure[T any](ctx context.Context, b *XRPCBackend, method string, body any) (T, error) {
	var out T
	err := b.do(ctx, http.MethodPost, method, nil, body, "", &out)
	return out, err
}

// xrpcProcedureAuthed is xrpcProcedure with a bearer token.
func xrpcProcedureAuthed[T any](ctx context.Context, b *XRPCBackend, method string, body any, token string) (T, error) {
	var out T
	if err := requireToken(token); err != nil {
		return out, err
	}
	err := b.do(ctx, http.MethodPost, method, nil, body, token, &out)
	return out, err
}

// xrpcProcedureAuthedNoBody is a bodyless authed POST; refreshSession
// is the one caller.
func xrpcProcedureAuthedNoBody[T any](ctx context.Context, b *XRPCBackend, method, token string) (T, error) {
	var out T
	if err := requireToken(token); err != nil {
		return out, err
	}
	err := b.do(ctx, http.MethodPost, method, nil, nil, token, &out)
	return out, err
}

// procedureAuthedNoResponse is an authed POST whose response body is
// discarded.
func (b *XRPCBackend) procedureAuthedNoResponse(ctx context.Context, method string, body any, token string) error {
	if err := requireToken(token); err != nil {
		return err
	}
	return b.do(ctx, http.MethodPost, method, nil, body, token, nil)
}

// do sends one XRPC request and decodes the response into out when out
// is non-nil. Non-2xx statuses become ProtocolErrors; failures below
// the protocol become TransportErrors.
func (b *XRPCBackend) do(ctx context.Context, httpMethod, method string, params url.Values, body any, token string, out any) error {
	endpoint := b.url.XRPCURL(method)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, endpoint, reqBody)
	if err != nil {
		return &TransportError{Kind: TransportConnection, Message: "building request", Err: err}
	}
	req.Header.Set("User-Agent", constants.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	b.logger.Debug("xrpc request", "method", method, "http_method", httpMethod)
	resp, err := b.client.Do(req)
	if err != nil {
		return classifyRequestError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseErrorResponse(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportIO("decoding response body", err)
	}
	return nil
}

// parseErrorResponse turns a non-2xx response into a ProtocolError,
// keeping the structured {error, message} body when one is present and
// falling back to the bare status otherwise.
func parseErrorResponse(resp *http.Response) error {
	protoErr := &ProtocolError{Status: resp.StatusCode}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return protoErr
	}
	var body errorResponse
	if err := json.Unmarshal(data, &body); err == nil {
		protoErr.Code = body.Error
		protoErr.Message = body.Message
	}
	return protoErr
}

// classifyRequestError sorts a failed request into the transport
// taxonomy. Caller-initiated cancellation passes through untouched so
// it stays recognizable with errors.Is.
func classifyRequestError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Kind: TransportTimeout, Message: "request deadline exceeded", Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &TransportError{Kind: TransportDNS, Message: "resolving host", Err: err}
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return &TransportError{Kind: TransportTLS, Message: "verifying server certificate", Err: err}
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return &TransportError{Kind: TransportTLS, Message: "negotiating TLS", Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Kind: TransportTimeout, Message: "request timed out", Err: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &TransportError{Kind: TransportConnection, Message: "connecting to server", Err: err}
	}

	return &TransportError{Kind: TransportIO, Message: "sending request", Err: err}
}
