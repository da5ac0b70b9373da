package pds

import "github.com/atdock/atdock.go/pkg/models"

// XRPC method NSIDs, fixed by the protocol.
const (
	methodCreateSession  = "com.atproto.server.createSession"
	methodRefreshSession = "com.atproto.server.refreshSession"
	methodCreateAccount  = "com.atproto.server.createAccount"
	methodDeleteAccount  = "com.atproto.server.deleteAccount"
	methodCreateRecord   = "com.atproto.repo.createRecord"
	methodGetRecord      = "com.atproto.repo.getRecord"
	methodListRecords    = "com.atproto.repo.listRecords"
	methodDeleteRecord   = "com.atproto.repo.deleteRecord"
	methodSubscribeRepos = "com.atproto.sync.subscribeRepos"
)

type createSessionRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// SessionOutput is a token pair minted by createSession or
// refreshSession.
type SessionOutput struct {
	DID        string `json:"did"`
	Handle     string `json:"handle"`
	AccessJWT  string `json:"accessJwt"`
	RefreshJWT string `json:"refreshJwt"`
}

type createAccountRequest struct {
	Handle     string `json:"handle"`
	Password   string `json:"password,omitempty"`
	Email      string `json:"email,omitempty"`
	InviteCode string `json:"inviteCode,omitempty"`
}

type createAccountResponse struct {
	DID    string `json:"did"`
	Handle string `json:"handle"`
}

type deleteAccountRequest struct {
	DID      string `json:"did"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

type createRecordRequest struct {
	Repo       string             `json:"repo"`
	Collection string             `json:"collection"`
	Record     models.RecordValue `json:"record"`
	RKey       string             `json:"rkey,omitempty"`
	Validate   *bool              `json:"validate,omitempty"`
}

type createRecordResponse struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// recordEnvelope is the wire form of a record, shared by getRecord and
// listRecords items.
type recordEnvelope struct {
	URI   string             `json:"uri"`
	CID   string             `json:"cid"`
	Value models.RecordValue `json:"value"`
}

func (e recordEnvelope) toRecord() (models.Record, error) {
	uri, err := models.ParseATURI(e.URI)
	if err != nil {
		return models.Record{}, err
	}
	return models.Record{URI: uri, CID: e.CID, Value: e.Value}, nil
}

type listRecordsResponse struct {
	Records []recordEnvelope `json:"records"`
	Cursor  string           `json:"cursor,omitempty"`
}

type deleteRecordRequest struct {
	Repo       string `json:"repo"`
	Collection string `json:"collection"`
	RKey       string `json:"rkey"`
	SwapRecord string `json:"swapRecord,omitempty"`
	SwapCommit string `json:"swapCommit,omitempty"`
}

// errorResponse is the structured error body servers send alongside
// non-2xx statuses.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
