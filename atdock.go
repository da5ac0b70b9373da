package atdock

import (
	"context"

	"github.com/atdock/atdock.go/pkg/logger"
	"github.com/atdock/atdock.go/pkg/models"
	"github.com/atdock/atdock.go/pkg/pds"
)

// Pds is a handle on one personal data server. Exactly one engine field
// is set; the engine set is closed, so every dispatch here is a
// two-way choice.
type Pds struct {
	file *pds.FileBackend
	xrpc *pds.XRPCBackend
	log  logger.Logger
}

// New builds a handle for url, selecting the engine by scheme.
func New(url models.PDSURL) *Pds {
	p := &Pds{log: logger.Nop()}
	switch backend := pds.New(url).(type) {
	case *pds.FileBackend:
		p.file = backend
	case *pds.XRPCBackend:
		p.xrpc = backend
	}
	return p
}

// Open parses raw as a PDS URL and builds a handle for it.
func Open(raw string) (*Pds, error) {
	url, err := models.ParsePDSURL(raw)
	if err != nil {
		return nil, err
	}
	return New(url), nil
}

// WithLogger installs l on the handle and its engine, and returns the
// handle for chaining.
func (p *Pds) WithLogger(l logger.Logger) *Pds {
	p.log = l
	if p.file != nil {
		p.file.WithLogger(l)
	} else {
		p.xrpc.WithLogger(l)
	}
	return p
}

// Backend returns the selected engine as the shared contract, for
// callers that manage tokens themselves.
func (p *Pds) Backend() pds.Backend {
	if p.file != nil {
		return p.file
	}
	return p.xrpc
}

// URL returns the address this handle was built from.
func (p *Pds) URL() models.PDSURL {
	return p.Backend().URL()
}

// Login authenticates and returns a session. File engines verify the
// password against the stored account and mint no tokens; the network
// engine calls createSession and carries the returned pair.
func (p *Pds) Login(ctx context.Context, credentials Credentials) (*Session, error) {
	if p.file != nil {
		account, err := p.file.Login(ctx, credentials.Identifier, credentials.Password)
		if err != nil {
			return nil, err
		}
		p.log.Info("logged in", "did", account.DID.String())
		return newFileSession(p.file, account.DID, p.log), nil
	}

	out, err := p.xrpc.CreateSession(ctx, credentials.Identifier, credentials.Password)
	if err != nil {
		return nil, err
	}
	did, err := models.ParseDID(out.DID)
	if err != nil {
		return nil, err
	}
	p.log.Info("logged in", "did", out.DID)
	return newXRPCSession(p.xrpc, did, out.AccessJWT, out.RefreshJWT, p.log), nil
}

// CreateAccount registers a new account on the PDS.
func (p *Pds) CreateAccount(ctx context.Context, input pds.CreateAccountInput) (pds.CreateAccountOutput, error) {
	return p.Backend().CreateAccount(ctx, input)
}

// DeleteAccount removes an account. On the network engine both token
// and password are required; the file engine ignores them.
func (p *Pds) DeleteAccount(ctx context.Context, did models.DID, token, password string) error {
	return p.Backend().DeleteAccount(ctx, did, token, password)
}

// Firehose subscribes to the event stream from its current position.
func (p *Pds) Firehose(ctx context.Context) (*pds.Subscription, error) {
	return p.Backend().Firehose(ctx, 0)
}

// FirehoseFrom subscribes from cursor on servers that support replay.
// The file engine accepts and ignores the cursor.
func (p *Pds) FirehoseFrom(ctx context.Context, cursor int64) (*pds.Subscription, error) {
	return p.Backend().Firehose(ctx, cursor)
}
