package pds

import (
	"context"

	"github.com/atdock/atdock.go/pkg/models"
)

// Kind names an engine.
type Kind string

const (
	KindFile Kind = "file"
	KindXRPC Kind = "xrpc"
)

// Backend is the operation contract shared by the two engines. The
// interface is sealed: FileBackend and XRPCBackend are the only
// implementations, and callers can rely on that set staying closed.
//
// Zero values mean "absent" for optional parameters: an empty rkey asks
// the engine to mint one, limit 0 selects the default page size, an
// empty cursor starts from the beginning. The file engine ignores
// tokens entirely; the network engine requires them on authed calls.
type Backend interface {
	// CreateRecord writes value into repo/collection under rkey and
	// returns the record's address.
	CreateRecord(ctx context.Context, repo models.DID, collection models.NSID, value models.RecordValue, rkey, token string) (models.ATURI, error)

	// GetRecord fetches the record at uri.
	GetRecord(ctx context.Context, uri models.ATURI, token string) (models.Record, error)

	// ListRecords returns one page of records from repo/collection in
	// ascending record-key order.
	ListRecords(ctx context.Context, repo models.DID, collection models.NSID, limit int, cursor, token string) (ListRecordsOutput, error)

	// DeleteRecord removes the record at uri. Deleting a record that
	// is already gone is not an error on the file engine.
	DeleteRecord(ctx context.Context, uri models.ATURI, token string) error

	// CreateAccount registers a new account and returns its DID.
	CreateAccount(ctx context.Context, input CreateAccountInput) (CreateAccountOutput, error)

	// DeleteAccount removes an account. The network engine requires
	// both a token and the account password; the file engine ignores
	// them and cascades over the account's records.
	DeleteAccount(ctx context.Context, did models.DID, token, password string) error

	// Firehose opens a subscription to the event stream. The cursor is
	// forwarded to servers that honor it; the file engine accepts and
	// ignores it.
	Firehose(ctx context.Context, cursor int64) (*Subscription, error)

	// URL returns the address this backend was built from.
	URL() models.PDSURL

	backendKind() Kind
}

// New selects the engine for url: file URLs get the filesystem engine,
// anything else the XRPC engine.
func New(url models.PDSURL) Backend {
	if url.IsLocal() {
		return NewFileBackend(url)
	}
	return NewXRPCBackend(url)
}

// ListRecordsOutput is one page of records. Cursor is set when another
// page may follow; pass it back to continue.
type ListRecordsOutput struct {
	Records []models.Record
	Cursor  string
}

// CreateAccountInput carries the fields of a registration request.
// Handle and Password are required by the file engine; Email and
// InviteCode are forwarded to servers that want them.
type CreateAccountInput struct {
	Handle     string
	Password   string
	Email      string
	InviteCode string
}

// CreateAccountOutput is the result of a registration.
type CreateAccountOutput struct {
	DID    models.DID
	Handle string
}
