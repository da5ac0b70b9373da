package atdock

import (
	"context"
	"fmt"
	"sync"

	"github.com/atdock/atdock.go/pkg/logger"
	"github.com/atdock/atdock.go/pkg/models"
	"github.com/atdock/atdock.go/pkg/pds"
)

// Session is a logged-in capability for one DID on one PDS. The pointer
// is the shared handle: goroutines may use one session concurrently,
// and a refresh becomes visible to all of them. Exactly one engine
// field is set.
type Session struct {
	file *pds.FileBackend
	xrpc *pds.XRPCBackend
	did  models.DID
	log  logger.Logger

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

func newFileSession(backend *pds.FileBackend, did models.DID, log logger.Logger) *Session {
	return &Session{file: backend, did: did, log: log}
}

func newXRPCSession(backend *pds.XRPCBackend, did models.DID, accessToken, refreshToken string, log logger.Logger) *Session {
	return &Session{
		xrpc:         backend,
		did:          did,
		log:          log,
		accessToken:  accessToken,
		refreshToken: refreshToken,
	}
}

// RestoreSession rebuilds a session from persisted state. Network URLs
// restore the token pair; file URLs get a tokenless session, since the
// file engine never mints tokens in the first place.
func RestoreSession(url models.PDSURL, did models.DID, accessToken, refreshToken string) *Session {
	if url.IsLocal() {
		return newFileSession(pds.NewFileBackend(url), did, logger.Nop())
	}
	return newXRPCSession(pds.NewXRPCBackend(url), did, accessToken, refreshToken, logger.Nop())
}

// WithLogger installs l on the session and its engine, and returns the
// session for chaining.
func (s *Session) WithLogger(l logger.Logger) *Session {
	s.log = l
	if s.file != nil {
		s.file.WithLogger(l)
	} else {
		s.xrpc.WithLogger(l)
	}
	return s
}

func (s *Session) backend() pds.Backend {
	if s.file != nil {
		return s.file
	}
	return s.xrpc
}

// DID returns the identity this session acts as.
func (s *Session) DID() models.DID {
	return s.did
}

// PDS returns the address of the server this session talks to.
func (s *Session) PDS() models.PDSURL {
	return s.backend().URL()
}

// token snapshots the access token, holding the read lock only for the
// copy so a concurrent refresh never blocks behind a slow call.
func (s *Session) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// CreateRecord writes value into this session's repo, letting the
// engine mint the record key.
func (s *Session) CreateRecord(ctx context.Context, collection models.NSID, value models.RecordValue) (models.ATURI, error) {
	return s.backend().CreateRecord(ctx, s.did, collection, value, "", s.token())
}

// CreateRecordJSON is CreateRecord for raw JSON bytes.
func (s *Session) CreateRecordJSON(ctx context.Context, collection models.NSID, raw []byte) (models.ATURI, error) {
	value, err := models.ParseRecordValue(raw)
	if err != nil {
		return models.ATURI{}, err
	}
	return s.CreateRecord(ctx, collection, value)
}

// GetRecord fetches the record at uri, which may live in any repo on
// this PDS.
func (s *Session) GetRecord(ctx context.Context, uri models.ATURI) (models.Record, error) {
	return s.backend().GetRecord(ctx, uri, s.token())
}

// ListRecords pages through repo/collection in ascending key order.
func (s *Session) ListRecords(ctx context.Context, repo models.DID, collection models.NSID, limit int, cursor string) (pds.ListRecordsOutput, error) {
	return s.backend().ListRecords(ctx, repo, collection, limit, cursor, s.token())
}

// DeleteRecord removes the record at uri.
func (s *Session) DeleteRecord(ctx context.Context, uri models.ATURI) error {
	return s.backend().DeleteRecord(ctx, uri, s.token())
}

// Refresh rotates the token pair. File sessions have no tokens, so this
// is a no-op for them.
func (s *Session) Refresh(ctx context.Context) error {
	if s.xrpc == nil {
		return nil
	}

	s.mu.RLock()
	refreshToken := s.refreshToken
	s.mu.RUnlock()
	if refreshToken == "" {
		return &pds.AuthError{Kind: pds.AuthRefreshTokenInvalid, Message: "session holds no refresh token"}
	}

	s.log.Info("refreshing session", "did", s.did.String())
	out, err := s.xrpc.RefreshSession(ctx, refreshToken)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = out.AccessJWT
	s.refreshToken = out.RefreshJWT
	s.mu.Unlock()
	return nil
}

// ExportAccessToken returns the current access token for persistence,
// or "" for file sessions.
func (s *Session) ExportAccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// ExportRefreshToken returns the current refresh token for persistence,
// or "" for file sessions.
func (s *Session) ExportRefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// String identifies the session without exposing token state.
func (s *Session) String() string {
	return fmt.Sprintf("Session{did: %s, pds: %s, tokens: [REDACTED]}", s.did, s.PDS())
}

// GoString matches String so %#v cannot leak tokens either.
func (s *Session) GoString() string {
	return s.String()
}
