package pds

import (
	"context"
	"net/url"
	"strconv"

	"github.com/atdock/atdock.go/pkg/models"
)

// CreateSession exchanges credentials for a token pair.
func (b *XRPCBackend) CreateSession(ctx context.Context, identifier, password string) (SessionOutput, error) {
	req := createSessionRequest{Identifier: identifier, Password: password}
	return xrpcProcedure[SessionOutput](ctx, b, methodCreateSession, req)
}

// RefreshSession trades a refresh token for a fresh token pair. The
// refresh token rides in the bearer header; the request has no body.
func (b *XRPCBackend) RefreshSession(ctx context.Context, refreshToken string) (SessionOutput, error) {
	if refreshToken == "" {
		return SessionOutput{}, &AuthError{Kind: AuthRefreshTokenInvalid, Message: "no refresh token held"}
	}
	return xrpcProcedureAuthedNoBody[SessionOutput](ctx, b, methodRefreshSession, refreshToken)
}

// CreateRecord posts value to the server. An empty rkey lets the server
// mint one; a provided rkey is forwarded as-is for the server to judge.
func (b *XRPCBackend) CreateRecord(ctx context.Context, repo models.DID, collection models.NSID, value models.RecordValue, rkey, token string) (models.ATURI, error) {
	req := createRecordRequest{
		Repo:       repo.String(),
		Collection: collection.String(),
		Record:     value,
		RKey:       rkey,
	}
	resp, err := xrpcProcedureAuthed[createRecordResponse](ctx, b, methodCreateRecord, req, token)
	if err != nil {
		return models.ATURI{}, err
	}
	b.logger.Debug("record created", "uri", resp.URI)
	return models.ParseATURI(resp.URI)
}

// GetRecord fetches the record at uri.
func (b *XRPCBackend) GetRecord(ctx context.Context, uri models.ATURI, token string) (models.Record, error) {
	params := url.Values{}
	params.Set("repo", uri.Repo().String())
	params.Set("collection", uri.Collection().String())
	params.Set("rkey", uri.RecordKey().String())

	envelope, err := xrpcQueryAuthed[recordEnvelope](ctx, b, methodGetRecord, params, token)
	if err != nil {
		return models.Record{}, err
	}
	return envelope.toRecord()
}

// ListRecords fetches one page of records. Zero limit and empty cursor
// are omitted from the request so the server applies its defaults.
func (b *XRPCBackend) ListRecords(ctx context.Context, repo models.DID, collection models.NSID, limit int, cursor, token string) (ListRecordsOutput, error) {
	params := url.Values{}
	params.Set("repo", repo.String())
	params.Set("collection", collection.String())
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	resp, err := xrpcQueryAuthed[listRecordsResponse](ctx, b, methodListRecords, params, token)
	if err != nil {
		return ListRecordsOutput{}, err
	}

	records := make([]models.Record, 0, len(resp.Records))
	for _, envelope := range resp.Records {
		record, err := envelope.toRecord()
		if err != nil {
			return ListRecordsOutput{}, err
		}
		records = append(records, record)
	}
	return ListRecordsOutput{Records: records, Cursor: resp.Cursor}, nil
}

// DeleteRecord removes the record at uri.
func (b *XRPCBackend) DeleteRecord(ctx context.Context, uri models.ATURI, token string) error {
	req := deleteRecordRequest{
		Repo:       uri.Repo().String(),
		Collection: uri.Collection().String(),
		RKey:       uri.RecordKey().String(),
	}
	return b.procedureAuthedNoResponse(ctx, methodDeleteRecord, req, token)
}

// CreateAccount registers an account. The call is unauthenticated; the
// token pair the server mints alongside is not captured here, so log in
// afterwards.
func (b *XRPCBackend) CreateAccount(ctx context.Context, input CreateAccountInput) (CreateAccountOutput, error) {
	req := createAccountRequest{
		Handle:     input.Handle,
		Password:   input.Password,
		Email:      input.Email,
		InviteCode: input.InviteCode,
	}
	resp, err := xrpcProcedure[createAccountResponse](ctx, b, methodCreateAccount, req)
	if err != nil {
		return CreateAccountOutput{}, err
	}
	did, err := models.ParseDID(resp.DID)
	if err != nil {
		return CreateAccountOutput{}, err
	}
	return CreateAccountOutput{DID: did, Handle: resp.Handle}, nil
}

// DeleteAccount removes an account. The server wants the token both as
// the bearer and in the body, plus the account password.
func (b *XRPCBackend) DeleteAccount(ctx context.Context, did models.DID, token, password string) error {
	if token == "" {
		return &AuthError{Kind: AuthSessionExpired, Message: "deleteAccount requires an access token"}
	}
	if password == "" {
		return &AuthError{Kind: AuthInvalidCredentials, Message: "deleteAccount requires a password"}
	}

	req := deleteAccountRequest{
		DID:      did.String(),
		Password: password,
		Token:    token,
	}
	return b.procedureAuthedNoResponse(ctx, methodDeleteAccount, req, token)
}
